package footprint

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Simplify runs Douglas-Peucker with tolerance, then again with zero
// tolerance to drop collinear vertices, then removes consecutive
// duplicates. The input is not modified.
func Simplify(ring orb.Ring, tolerance float64) orb.Ring {
	r := ring.Clone()
	r = simplify.DouglasPeucker(tolerance).Ring(r)
	r = simplify.DouglasPeucker(0).Ring(r)
	return RemoveDuplicates(r)
}

// RemoveDuplicates drops vertices equal to their predecessor.
func RemoveDuplicates(ring orb.Ring) orb.Ring {
	if len(ring) == 0 {
		return ring
	}
	out := make(orb.Ring, 1, len(ring))
	out[0] = ring[0]
	for _, p := range ring[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// OrientCCW reverses ring in place if it is clockwise.
func OrientCCW(ring orb.Ring) orb.Ring {
	if ring.Orientation() == orb.CW {
		ring.Reverse()
	}
	return ring
}
