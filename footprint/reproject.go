package footprint

import (
	"math"

	"github.com/nci/rasterfoot/crs"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Round rounds v to precision decimal places.
func Round(v float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

// RoundRing returns a copy of ring with every coordinate rounded.
func RoundRing(ring orb.Ring, precision int) orb.Ring {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		out[i] = orb.Point{Round(p[0], precision), Round(p[1], precision)}
	}
	return out
}

// Reproject transforms every vertex to WGS84 longitude/latitude and
// rounds the result.
func Reproject(ring orb.Ring, tr crs.Transformer, precision int) (orb.Ring, error) {
	out := make(orb.Ring, len(ring))
	for i, p := range ring {
		lon, lat, err := tr.Transform(p[0], p[1])
		if err != nil {
			return nil, errors.Wrapf(err, "vertex %d", i)
		}
		out[i] = orb.Point{Round(lon, precision), Round(lat, precision)}
	}
	return out, nil
}

// ReprojectSinusoidal applies the spherical sinusoidal inverse to every
// vertex, drops those falling outside the world and closes the ring
// again.
func ReprojectSinusoidal(ring orb.Ring, s *crs.Sinusoidal, precision int) orb.Ring {
	out := make(orb.Ring, 0, len(ring))
	for _, p := range ring {
		lon, lat := s.Inverse(p[0], p[1])
		if !crs.InWorld(lon, lat) {
			continue
		}
		out = append(out, orb.Point{Round(lon, precision), Round(lat, precision)})
	}
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}
