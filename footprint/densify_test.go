package footprint

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
)

var square = orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}

func TestDensifyByFactor(t *testing.T) {
	out := DensifyByFactor(square, 4)
	if len(out) != 17 {
		t.Fatalf("expected 17 points, got %d", len(out))
	}
	if out[1] != (orb.Point{2.5, 0}) || out[4] != (orb.Point{10, 0}) || out[16] != (orb.Point{0, 0}) {
		t.Errorf("unexpected points %v", out)
	}
	if len(DensifyByFactor(square, 1)) != len(square) {
		t.Errorf("factor 1 must leave the ring alone")
	}
	tri := orb.Ring{{0, 0}, {3, 0}, {0, 3}, {0, 0}}
	for _, k := range []int{2, 3, 7} {
		if n := len(DensifyByFactor(tri, k)); n != (len(tri)-1)*k+1 {
			t.Errorf("factor %d: expected %d points, got %d", k, (len(tri)-1)*k+1, n)
		}
	}
}

func TestDensifyByDistance(t *testing.T) {
	out := DensifyByDistance(square, 3)
	// 0, 3, 6, 9 on each of 4 sides, plus the closing vertex
	if len(out) != 17 {
		t.Fatalf("expected 17 points, got %d: %v", len(out), out)
	}
	for i := 1; i < len(out); i++ {
		if d := math.Hypot(out[i][0]-out[i-1][0], out[i][1]-out[i-1][1]); d > 3+1e-9 {
			t.Errorf("segment %d too long: %v", i, d)
		}
	}
	if out[0] != out[len(out)-1] {
		t.Errorf("ring not closed")
	}

	out = DensifyByDistance(square, 5)
	if len(out) != 9 {
		t.Errorf("expected 9 points, got %d: %v", len(out), out)
	}

	withDuplicate := orb.Ring{{0, 0}, {0, 0}, {4, 0}, {0, 0}}
	if out := DensifyByDistance(withDuplicate, 10); len(out) != 3 {
		t.Errorf("zero length segments should vanish: %v", out)
	}
}

func TestRound(t *testing.T) {
	cases := []struct {
		v         float64
		precision int
		expected  float64
	}{
		{9.12721894, 7, 9.1272189},
		{-124.45790612, 7, -124.4579061},
		{45.5, 0, 46},
		{1.23456, 2, 1.23},
	}
	for _, tc := range cases {
		if r := Round(tc.v, tc.precision); r != tc.expected {
			t.Errorf("Round(%v, %d): expected %v, got %v", tc.v, tc.precision, tc.expected, r)
		}
	}
}

func TestSimplify(t *testing.T) {
	ring := orb.Ring{{0, 0}, {5, 0}, {5, 0}, {10, 0}, {10, 5}, {10, 10}, {5, 10.001}, {0, 10}, {0, 0}}
	orig := ring.Clone()

	out := Simplify(ring, 0.01)
	expected := orb.Ring{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}}
	if !equalRing(out, expected) {
		t.Errorf("expected %v, got %v", expected, out)
	}
	if !equalRing(ring, orig) {
		t.Errorf("input modified: %v", ring)
	}
}

func TestRemoveDuplicates(t *testing.T) {
	ring := orb.Ring{{0, 0}, {0, 0}, {1, 0}, {1, 1}, {1, 1}, {0, 0}}
	out := RemoveDuplicates(ring)
	if !equalRing(out, orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 0}}) {
		t.Errorf("unexpected %v", out)
	}
}

func TestOrientCCW(t *testing.T) {
	cw := orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	if OrientCCW(cw).Orientation() != orb.CCW {
		t.Errorf("ring not reoriented")
	}
	ccw := orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if !equalRing(OrientCCW(ccw.Clone()), ccw) {
		t.Errorf("CCW ring changed")
	}
}
