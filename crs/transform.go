package crs

import (
	"math"

	"github.com/ctessum/geom/proj"
	"github.com/pkg/errors"
)

var ErrOutsideProjection = errors.New("coordinate outside the projection domain")

// Transformer maps native coordinates to WGS84. Output is always
// (longitude, latitude) whatever the axis order of either CRS.
type Transformer interface {
	Transform(x, y float64) (lon, lat float64, err error)
}

// NewTransformer returns a transformer from src to WGS84.
func NewTransformer(src *CRS) (Transformer, error) {
	if src == nil {
		return nil, errors.Wrap(ErrUnsupportedCRS, "missing source CRS")
	}
	if code, ok := src.EPSG(); ok && code == WGS84 {
		return identity{}, nil
	}
	if src.IsSinusoidal() {
		return NewSinusoidal(src), nil
	}

	def, err := src.definition()
	if err != nil {
		return nil, err
	}
	srcSR, err := proj.Parse(def)
	if err != nil {
		return nil, errors.Wrapf(ErrUnsupportedCRS, "parsing %s: %v", src, err)
	}
	dstSR, err := proj.Parse(epsgProj4[WGS84])
	if err != nil {
		return nil, errors.Wrap(err, "parsing WGS84 definition")
	}
	fn, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, errors.Wrapf(err, "transform from %s", src)
	}
	return &projTransformer{fn: fn}, nil
}

type identity struct{}

func (identity) Transform(x, y float64) (float64, float64, error) {
	return x, y, nil
}

type projTransformer struct {
	fn proj.Transformer
}

func (t *projTransformer) Transform(x, y float64) (float64, float64, error) {
	lon, lat, err := t.fn(x, y)
	if err != nil {
		return 0, 0, err
	}
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return 0, 0, errors.Wrapf(ErrOutsideProjection, "(%v, %v)", x, y)
	}
	return lon, lat, nil
}

// Sinusoidal inverts the spherical sinusoidal projection used by the
// MODIS and VIIRS tile grids:
//
//	lat = y / R
//	lon = lon_0 + x / (R cos(lat))
type Sinusoidal struct {
	Radius          float64
	CentralMeridian float64
}

// NewSinusoidal reads the sphere radius and central meridian of c.
func NewSinusoidal(c *CRS) *Sinusoidal {
	return &Sinusoidal{Radius: c.SphereRadius(), CentralMeridian: c.CentralMeridian()}
}

// Inverse applies the inverse equations without any domain check.
func (s *Sinusoidal) Inverse(x, y float64) (lon, lat float64) {
	phi := y / s.Radius
	lat = phi * 180 / math.Pi
	lon = s.CentralMeridian + (x/(s.Radius*math.Cos(phi)))*180/math.Pi
	return lon, lat
}

// Transform applies the inverse equations and rejects results outside
// [-180, 180] x [-90, 90].
func (s *Sinusoidal) Transform(x, y float64) (float64, float64, error) {
	lon, lat := s.Inverse(x, y)
	if !InWorld(lon, lat) {
		return 0, 0, errors.Wrapf(ErrOutsideProjection, "(%v, %v)", x, y)
	}
	return lon, lat, nil
}

// InWorld reports whether lon/lat lie within [-180, 180] x [-90, 90].
func InWorld(lon, lat float64) bool {
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}
