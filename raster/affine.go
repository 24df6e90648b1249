package raster

import "math"

// Affine maps pixel (col, row) to native coordinates:
//
//	x = a*col + b*row + c
//	y = d*col + e*row + f
//
// stored as [a, b, c, d, e, f].
type Affine [6]float64

// Apply returns the native coordinates of the pixel corner (col, row).
func (t Affine) Apply(col, row float64) (x, y float64) {
	return t[0]*col + t[1]*row + t[2], t[3]*col + t[4]*row + t[5]
}

// FromGDAL converts a GDAL geotransform [c, a, b, f, d, e].
func FromGDAL(geot [6]float64) Affine {
	return Affine{geot[1], geot[2], geot[0], geot[4], geot[5], geot[3]}
}

// GDAL returns the transform in GDAL geotransform order.
func (t Affine) GDAL() [6]float64 {
	return [6]float64{t[2], t[0], t[1], t[5], t[3], t[4]}
}

// PixelWidth is the length of one pixel step along a row in native units.
func (t Affine) PixelWidth() float64 {
	return math.Hypot(t[0], t[3])
}

// Scale returns the transform of the same extent sampled at a different
// resolution.
func (t Affine) Scale(sx, sy float64) Affine {
	return Affine{t[0] * sx, t[1] * sy, t[2], t[3] * sx, t[4] * sy, t[5]}
}
