package index

import (
	"encoding/binary"

	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
)

const SRID = 4326

var ErrUnexpectedGeometry = errors.New("unexpected geometry type")

// toGeom converts a lon/lat polygon to a go-geom polygon tagged with the
// WGS84 SRID.
func toGeom(p orb.Polygon) *geom.Polygon {
	var flat []float64
	var ends []int
	for _, ring := range p {
		for _, pt := range ring {
			flat = append(flat, pt[0], pt[1])
		}
		ends = append(ends, len(flat))
	}
	return geom.NewPolygonFlat(geom.XY, flat, ends).SetSRID(SRID)
}

func fromGeom(g *geom.Polygon) orb.Polygon {
	poly := make(orb.Polygon, 0, g.NumLinearRings())
	for i := 0; i < g.NumLinearRings(); i++ {
		coords := g.LinearRing(i).Coords()
		ring := make(orb.Ring, len(coords))
		for j, c := range coords {
			ring[j] = orb.Point{c.X(), c.Y()}
		}
		poly = append(poly, ring)
	}
	return poly
}

// MarshalEWKB encodes p as little endian EWKB. An empty polygon encodes
// to nil, which is stored as NULL.
func MarshalEWKB(p orb.Polygon) ([]byte, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return ewkb.Marshal(toGeom(p), binary.LittleEndian)
}

func UnmarshalEWKB(data []byte) (orb.Polygon, error) {
	if len(data) == 0 {
		return nil, nil
	}
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	poly, ok := g.(*geom.Polygon)
	if !ok {
		return nil, errors.Wrapf(ErrUnexpectedGeometry, "%T", g)
	}
	return fromGeom(poly), nil
}
