package footprint

import (
	"github.com/nci/rasterfoot/raster"
	"github.com/paulmach/orb"
	geom "github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// pixel steps for east, south, west, north in row-down pixel space
var (
	stepX = [4]int{1, 0, -1, 0}
	stepY = [4]int{0, 1, 0, -1}
)

// Polygonise returns the outer boundary of every 4-connected region of
// valid cells, in native coordinates. Regions are ordered by their first
// cell in row-major order. Holes are filled before tracing, so each ring
// is simple even where a hole touches the outside at a corner.
func Polygonise(mask []uint8, height, width int, t raster.Affine) []orb.Ring {
	labels, boxes := labelRegions(mask, height, width)

	var rings []orb.Ring
	for l, b := range boxes {
		in := filledRegion(labels, width, int32(l+1), b)
		ring := traceBoundary(in, b.firstX, b.firstY)
		for j, p := range ring {
			x, y := t.Apply(p[0], p[1])
			ring[j] = orb.Point{x, y}
		}
		rings = append(rings, ring)
	}
	return rings
}

// cellBox is the cell extent of a region and its first cell in row-major
// order.
type cellBox struct {
	minX, minY, maxX, maxY int
	firstX, firstY         int
}

// filledRegion reports membership of region label with every enclosed
// hole filled: a cell is outside only if it is 4-connected to the border
// of the region's box grown by one cell through cells of other labels.
func filledRegion(labels []int32, width int, label int32, b cellBox) func(x, y int) bool {
	x0, y0 := b.minX-1, b.minY-1
	w, h := b.maxX-b.minX+3, b.maxY-b.minY+3
	member := func(lx, ly int) bool {
		x, y := lx+x0, ly+y0
		if x < b.minX || y < b.minY || x > b.maxX || y > b.maxY {
			return false
		}
		return labels[y*width+x] == label
	}

	outside := make([]bool, w*h)
	outside[0] = true
	stack := []int{0}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		for d := 0; d < 4; d++ {
			nx, ny := x+stepX[d], y+stepY[d]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			n := ny*w + nx
			if !outside[n] && !member(nx, ny) {
				outside[n] = true
				stack = append(stack, n)
			}
		}
	}

	return func(x, y int) bool {
		lx, ly := x-x0, y-y0
		if lx < 0 || ly < 0 || lx >= w || ly >= h {
			return false
		}
		return !outside[ly*w+lx]
	}
}

// labelRegions numbers 4-connected regions of ones from 1 in the order
// their first cell is met in row-major order, and returns the box of
// region l at index l-1.
func labelRegions(mask []uint8, height, width int) ([]int32, []cellBox) {
	labels := make([]int32, len(mask))
	var boxes []cellBox
	var stack []int
	label := int32(0)

	for start, v := range mask {
		if v == 0 || labels[start] != 0 {
			continue
		}
		label++
		labels[start] = label
		x0, y0 := start%width, start/width
		b := cellBox{x0, y0, x0, y0, x0, y0}
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			i := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := i%width, i/width
			if x < b.minX {
				b.minX = x
			}
			if x > b.maxX {
				b.maxX = x
			}
			if y > b.maxY {
				b.maxY = y
			}
			for d := 0; d < 4; d++ {
				nx, ny := x+stepX[d], y+stepY[d]
				if nx < 0 || ny < 0 || nx >= width || ny >= height {
					continue
				}
				n := ny*width + nx
				if mask[n] != 0 && labels[n] == 0 {
					labels[n] = label
					stack = append(stack, n)
				}
			}
		}
		boxes = append(boxes, b)
	}
	return labels, boxes
}

// traceBoundary walks the pixel edges around the cells selected by in
// clockwise in row-down pixel space (region on the right), starting at
// the top left corner of cell (x0, y0), the first cell of the region.
// Only corners are kept. The ring is closed and in pixel coordinates.
func traceBoundary(in func(x, y int) bool, x0, y0 int) orb.Ring {

	// cells ahead-left and ahead-right of vertex (x, y) when heading d,
	// as offsets from the vertex
	aheadLeft := [4][2]int{{0, -1}, {0, 0}, {-1, 0}, {-1, -1}}
	aheadRight := [4][2]int{{0, 0}, {-1, 0}, {-1, -1}, {0, -1}}

	ring := orb.Ring{{float64(x0), float64(y0)}}
	x, y, d := x0, y0, 0
	for {
		x += stepX[d]
		y += stepY[d]
		if x == x0 && y == y0 {
			break
		}

		l, r := aheadLeft[d], aheadRight[d]
		nd := d
		switch {
		case !in(x+r[0], y+r[1]):
			nd = (d + 1) % 4
		case in(x+l[0], y+l[1]):
			nd = (d + 3) % 4
		}
		if nd != d {
			ring = append(ring, orb.Point{float64(x), float64(y)})
			d = nd
		}
	}
	return append(ring, ring[0])
}

// Outline reduces the regions to one ring: the only ring, or the convex
// hull of all of them. It returns nil for no regions.
func Outline(rings []orb.Ring) orb.Ring {
	switch len(rings) {
	case 0:
		return nil
	case 1:
		return rings[0]
	}

	var flat []float64
	for _, r := range rings {
		for _, p := range r {
			flat = append(flat, p[0], p[1])
		}
	}

	hull, ok := xy.ConvexHullFlat(geom.XY, flat).(*geom.Polygon)
	if !ok || hull.NumLinearRings() == 0 {
		return nil
	}
	coords := hull.LinearRing(0).FlatCoords()
	out := make(orb.Ring, 0, len(coords)/2+1)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, orb.Point{coords[i], coords[i+1]})
	}
	if len(out) > 0 && out[0] != out[len(out)-1] {
		out = append(out, out[0])
	}
	return out
}
