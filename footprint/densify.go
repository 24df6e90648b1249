package footprint

import (
	"math"

	"github.com/paulmach/orb"
)

// DensifyByFactor inserts factor-1 equally spaced points inside every
// segment of the ring. A closed ring of n points (first point repeated
// at the end) becomes (n-1)*factor+1 points, still closed, with no
// trailing duplicates.
func DensifyByFactor(ring orb.Ring, factor int) orb.Ring {
	if factor <= 1 || len(ring) < 2 {
		return ring
	}
	out := make(orb.Ring, 0, (len(ring)-1)*factor+1)
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		out = append(out, a)
		for j := 1; j < factor; j++ {
			f := float64(j) / float64(factor)
			out = append(out, orb.Point{a[0] + (b[0]-a[0])*f, a[1] + (b[1]-a[1])*f})
		}
	}
	return append(out, ring[len(ring)-1])
}

// DensifyByDistance walks every segment from its start in steps of
// distance, so no output segment is longer than distance. Zero length
// segments are dropped.
func DensifyByDistance(ring orb.Ring, distance float64) orb.Ring {
	if !(distance > 0) || len(ring) < 2 {
		return ring
	}
	out := make(orb.Ring, 0, len(ring))
	for i := 0; i+1 < len(ring); i++ {
		a, b := ring[i], ring[i+1]
		dx, dy := b[0]-a[0], b[1]-a[1]
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		steps := length / distance
		for s := 0.0; s < steps; s++ {
			f := s / steps
			out = append(out, orb.Point{a[0] + dx*f, a[1] + dy*f})
		}
	}
	return append(out, ring[len(ring)-1])
}

// Densify applies d to the ring.
func Densify(ring orb.Ring, d Densification) orb.Ring {
	switch d.Kind {
	case ByFactor:
		return DensifyByFactor(ring, d.Factor)
	case ByDistance:
		return DensifyByDistance(ring, d.Distance)
	}
	return ring
}
