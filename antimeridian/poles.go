package antimeridian

import (
	"math"

	"github.com/paulmach/orb"
)

// EnclosePoles routes every antimeridian crossing of the exterior ring
// over the pole on the side of the crossing: the ring runs up the
// meridian to ±90, along the pole and down the other side. It is meant
// for rings that encircle a pole; see Normalize.
func EnclosePoles(p orb.Polygon) orb.Polygon {
	if len(p) == 0 || len(p[0]) < 2 {
		return p
	}

	ring := p[0]
	out := make(orb.Ring, 0, len(ring)+4)
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		out = append(out, a)
		if math.Abs(b[0]-a[0]) <= 180 {
			continue
		}

		side := 1.0
		if a[0] < 0 {
			side = -1
		}
		bx := b[0] + 360*side
		t := (180*side - a[0]) / (bx - a[0])
		lat := a[1] + t*(b[1]-a[1])

		pole := 90.0
		if lat < 0 {
			pole = -90
		}
		out = append(out,
			orb.Point{180 * side, lat},
			orb.Point{180 * side, pole},
			orb.Point{-180 * side, pole},
			orb.Point{-180 * side, lat},
		)
	}
	out = append(out, ring[len(ring)-1])
	return orb.Polygon{out}
}
