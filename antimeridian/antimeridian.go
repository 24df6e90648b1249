// Package antimeridian repairs WGS84 polygons whose edges jump across the
// 180th meridian, either by splitting them into a MultiPolygon or by
// letting their longitudes run past ±180.
package antimeridian

import (
	"math"
	"sort"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

var (
	ErrUnsupportedGeometry  = errors.New("geometry is neither a Polygon nor a MultiPolygon")
	ErrPolygonEnclosingPole = errors.New("polygon encloses a pole")
	ErrUnknownStrategy      = errors.New("unknown antimeridian strategy")
)

type Strategy int

const (
	// StrategySplit cuts crossing polygons at ±180 into a MultiPolygon.
	StrategySplit Strategy = iota
	// StrategyNormalize keeps one polygon whose longitudes exceed ±180.
	StrategyNormalize
)

func (s Strategy) String() string {
	switch s {
	case StrategySplit:
		return "split"
	case StrategyNormalize:
		return "normalize"
	}
	return "unknown"
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "split":
		return StrategySplit, nil
	case "normalize", "normalise":
		return StrategyNormalize, nil
	}
	return 0, errors.Wrapf(ErrUnknownStrategy, "%q", s)
}

// Normalize unwraps the exterior ring so no edge spans more than 180
// degrees of longitude, then shifts it by 360 if its centroid lies beyond
// ±180. The boolean is false, and p is returned as is, when no edge
// crossed the antimeridian. Interior rings are dropped.
func Normalize(p orb.Polygon) (orb.Polygon, bool, error) {
	if len(p) == 0 || len(p[0]) == 0 {
		return p, false, nil
	}

	ring := p[0].Clone()
	changed := false
	for i := 0; i+1 < len(ring); i++ {
		dx := ring[i+1][0] - ring[i][0]
		if math.Abs(dx) > 180 {
			ring[i+1][0] -= math.Copysign(360, dx)
			changed = true
		}
	}
	if !changed {
		return p, false, nil
	}

	last := len(ring) - 1
	if ring[last][0] != ring[0][0] {
		return nil, false, errors.Wrapf(ErrPolygonEnclosingPole, "ring ends %v degrees from its start", ring[last][0]-ring[0][0])
	}

	c, _ := planar.CentroidArea(orb.Polygon{ring})
	switch {
	case c[0] > 180:
		translate(ring, -360)
	case c[0] < -180:
		translate(ring, 360)
	}
	return orb.Polygon{orientCCW(ring)}, true, nil
}

// Split normalizes p and cuts the result at the meridian it spans, moving
// every piece back into [-180, 180]. Each run of vertices on one side of
// the meridian becomes part of a piece; runs on the same side are joined
// along the meridian, so a ring crossing it several times yields one
// piece per connected part. Pieces are counter-clockwise, start at their
// smallest vertex and are sorted by it.
func Split(p orb.Polygon) (orb.MultiPolygon, bool, error) {
	norm, changed, err := Normalize(p)
	if err != nil || !changed {
		return nil, false, err
	}

	b := norm.Bound()
	splitter := -180.0
	if b.Max[0] > 180 {
		splitter = 180
	}

	var pieces orb.MultiPolygon
	for _, ring := range splitRing(norm[0], splitter) {
		ring = cleanRing(ring)
		if ring == nil {
			continue
		}
		pb := ring.Bound()
		switch {
		case pb.Max[0] <= -180:
			translate(ring, 360)
		case pb.Min[0] >= 180:
			translate(ring, -360)
		}
		pieces = append(pieces, orb.Polygon{startAtSmallest(orientCCW(ring))})
	}
	sortPolygons(pieces)
	return pieces, true, nil
}

// chain is a run of vertices strictly on one side of the meridian,
// starting and ending on it. side is -1 west of the meridian, 1 east.
type chain struct {
	side int
	pts  orb.Ring
}

func (c chain) start() float64 { return c.pts[0][1] }
func (c chain) end() float64   { return c.pts[len(c.pts)-1][1] }

func sideOf(pt orb.Point, m float64) int {
	switch {
	case pt[0] < m:
		return -1
	case pt[0] > m:
		return 1
	}
	return 0
}

// splitRing cuts the closed counter-clockwise ring at longitude m into
// closed rings lying on either side of it.
func splitRing(ring orb.Ring, m float64) []orb.Ring {
	n := len(ring) - 1
	if n < 3 {
		return nil
	}
	first := -1
	for i := 0; i < n; i++ {
		if sideOf(ring[i], m) != 0 {
			first = i
			break
		}
	}
	if first < 0 {
		return nil
	}
	seq := make(orb.Ring, 0, n+1)
	seq = append(seq, ring[first:n]...)
	seq = append(seq, ring[:first]...)
	seq = append(seq, seq[0])

	var chains []chain
	cur := chain{side: sideOf(seq[0], m), pts: orb.Ring{seq[0]}}
	var on []orb.Point
	for i := 1; i <= n; i++ {
		pt := seq[i]
		side := sideOf(pt, m)
		if side == 0 {
			on = append(on, pt)
			continue
		}
		if side == cur.side {
			cur.pts = append(cur.pts, on...)
			cur.pts = append(cur.pts, pt)
			on = nil
			continue
		}

		var exit, entry orb.Point
		if len(on) > 0 {
			exit, entry = on[0], on[len(on)-1]
		} else {
			a := seq[i-1]
			y := a[1] + (pt[1]-a[1])*(m-a[0])/(pt[0]-a[0])
			exit = orb.Point{m, y}
			entry = exit
		}
		cur.pts = append(cur.pts, exit)
		chains = append(chains, cur)
		cur = chain{side: side, pts: orb.Ring{entry, pt}}
		on = nil
	}

	if len(chains) == 0 {
		return []orb.Ring{ring.Clone()}
	}
	// the last run continues into the first one through seq[0]
	merged := append(cur.pts[:len(cur.pts)-1:len(cur.pts)-1], chains[0].pts...)
	chains[0].pts = merged
	return linkChains(chains)
}

// linkChains joins chains into closed rings. With the ring counter-
// clockwise, a western chain continues north along the meridian to the
// nearest western chain start and an eastern chain continues south.
func linkChains(chains []chain) []orb.Ring {
	used := make([]bool, len(chains))
	var rings []orb.Ring
	for i := range chains {
		if used[i] {
			continue
		}
		used[i] = true
		ring := append(orb.Ring{}, chains[i].pts...)
		for cur := i; ; {
			next := nextChain(chains, used, i, cur)
			if next < 0 || next == i {
				break
			}
			used[next] = true
			ring = append(ring, chains[next].pts...)
			cur = next
		}
		rings = append(rings, append(ring, ring[0]))
	}
	return rings
}

func nextChain(chains []chain, used []bool, first, cur int) int {
	c := chains[cur]
	best, bestDist := -1, 0.0
	for j, o := range chains {
		if o.side != c.side || (used[j] && j != first) {
			continue
		}
		d := (o.start() - c.end()) * float64(-c.side)
		if d < 0 {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = j, d
		}
	}
	return best
}

// Fix applies strategy s to a Polygon or to every member of a
// MultiPolygon. The boolean reports whether anything changed; when it is
// false g is returned untouched.
func Fix(g orb.Geometry, s Strategy) (orb.Geometry, bool, error) {
	switch s {
	case StrategySplit, StrategyNormalize:
	default:
		return nil, false, errors.Wrapf(ErrUnknownStrategy, "%d", int(s))
	}

	switch geom := g.(type) {
	case orb.Polygon:
		if s == StrategyNormalize {
			norm, changed, err := Normalize(geom)
			if err != nil || !changed {
				return g, false, err
			}
			return norm, true, nil
		}
		pieces, changed, err := Split(geom)
		if err != nil || !changed {
			return g, false, err
		}
		return pieces, true, nil

	case orb.MultiPolygon:
		var out orb.MultiPolygon
		changed := false
		for _, p := range geom {
			if s == StrategyNormalize {
				norm, c, err := Normalize(p)
				if err != nil {
					return g, false, err
				}
				out = append(out, norm)
				changed = changed || c
				continue
			}
			pieces, c, err := Split(p)
			if err != nil {
				return g, false, err
			}
			if c {
				out = append(out, pieces...)
			} else {
				out = append(out, p)
			}
			changed = changed || c
		}
		if !changed {
			return g, false, nil
		}
		if s == StrategySplit {
			sortPolygons(out)
		}
		return out, true, nil
	}

	return nil, false, errors.Wrapf(ErrUnsupportedGeometry, "%T", g)
}

// SplitBBox returns the RFC 7946 bounding box of a MultiPolygon split at
// the antimeridian: xmin is the westernmost longitude of the pieces east
// of it and xmax the easternmost longitude of the pieces west of it. A
// MultiPolygon with pieces on one side only gets its ordinary bounds.
func SplitBBox(mp orb.MultiPolygon) []float64 {
	b := mp.Bound()
	xmin, xmax := math.Inf(1), math.Inf(-1)
	east, west := false, false
	for _, p := range mp {
		pb := p.Bound()
		if isEastern(p, pb) {
			east = true
			xmin = math.Min(xmin, pb.Min[0])
		} else {
			west = true
			xmax = math.Max(xmax, pb.Max[0])
		}
	}
	if !east || !west {
		return []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
	}
	return []float64{xmin, b.Min[1], xmax, b.Max[1]}
}

// isEastern reports whether a piece lies in the eastern hemisphere next
// to the antimeridian.
func isEastern(p orb.Polygon, pb orb.Bound) bool {
	switch {
	case pb.Max[0] == 180:
		return true
	case pb.Min[0] == -180:
		return false
	}
	c, _ := planar.CentroidArea(p)
	return c[0] >= 0
}

func translate(ring orb.Ring, xoff float64) {
	for i := range ring {
		ring[i][0] += xoff
	}
}

// cleanRing drops repeated vertices and returns nil for rings without
// area.
func cleanRing(r orb.Ring) orb.Ring {
	if len(r) == 0 {
		return nil
	}
	out := orb.Ring{r[0]}
	for _, p := range r[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	if out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	if len(out) < 4 || planar.Area(orb.Polygon{out}) == 0 {
		return nil
	}
	return out
}

func orientCCW(r orb.Ring) orb.Ring {
	if r.Orientation() == orb.CW {
		r.Reverse()
	}
	return r
}

func less(a, b orb.Point) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}

// startAtSmallest rotates a closed ring to start at its lexicographically
// smallest vertex.
func startAtSmallest(r orb.Ring) orb.Ring {
	open := r[:len(r)-1]
	min := 0
	for i, p := range open {
		if less(p, open[min]) {
			min = i
		}
	}
	out := make(orb.Ring, 0, len(r))
	out = append(out, open[min:]...)
	out = append(out, open[:min]...)
	return append(out, out[0])
}

func sortPolygons(mp orb.MultiPolygon) {
	sort.SliceStable(mp, func(i, j int) bool {
		return less(mp[i][0][0], mp[j][0][0])
	})
}
