// Package crs describes coordinate reference systems and transforms
// native coordinates to WGS84 longitude/latitude.
package crs

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// WGS84 is the EPSG code of the geographic output CRS.
const WGS84 = 4326

// ModisSphereRadius is the radius of the sphere used by the MODIS and
// VIIRS sinusoidal tile grids.
const ModisSphereRadius = 6371007.181

var (
	ErrUnsupportedCRS = errors.New("unsupported coordinate reference system")
	ErrNoWKT          = errors.New("no WKT definition available")
)

var epsgProj4 = map[int]string{
	4326: "+proj=longlat +datum=WGS84 +no_defs",
	4283: "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs",
	3857: "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +no_defs",
	3577: "+proj=aea +lat_1=-18 +lat_2=-36 +lat_0=0 +lon_0=132 +x_0=0 +y_0=0 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs",
}

var (
	wktAuthority = regexp.MustCompile(`(?:AUTHORITY\[\s*"EPSG"\s*,\s*"(\d+)"\s*\]|ID\[\s*"EPSG"\s*,\s*(\d+)\s*\])\s*\]\s*$`)
	wktSpheroid  = regexp.MustCompile(`(?:SPHEROID|ELLIPSOID)\[\s*"[^"]*"\s*,\s*([0-9.eE+-]+)`)
	proj4Param   = regexp.MustCompile(`\+(\w+)=(\S+)`)
)

// CRS is a coordinate reference system known by EPSG code, WKT, PROJ.4
// definition, or any combination of them.
type CRS struct {
	epsg  int
	wkt   string
	proj4 string
}

// FromEPSG builds a CRS from an EPSG code. Only codes with a known PROJ.4
// definition are accepted.
func FromEPSG(code int) (*CRS, error) {
	if _, ok := epsgToProj4(code); !ok {
		return nil, errors.Wrapf(ErrUnsupportedCRS, "EPSG:%d", code)
	}
	return &CRS{epsg: code}, nil
}

// FromWKT builds a CRS from a WKT (1 or 2) string. The EPSG code is taken
// from the root authority clause when there is one.
func FromWKT(wkt string) *CRS {
	c := &CRS{wkt: strings.TrimSpace(wkt)}
	if m := wktAuthority.FindStringSubmatch(c.wkt); m != nil {
		code := m[1]
		if code == "" {
			code = m[2]
		}
		c.epsg, _ = strconv.Atoi(code)
	}
	return c
}

// FromProj4 builds a CRS from a PROJ.4 definition string.
func FromProj4(def string) *CRS {
	return &CRS{proj4: strings.TrimSpace(def)}
}

// WithProj4 attaches a PROJ.4 definition to a CRS that was built from WKT.
func (c *CRS) WithProj4(def string) *CRS {
	out := *c
	out.proj4 = strings.TrimSpace(def)
	return &out
}

// Parse accepts "EPSG:n", a PROJ.4 string or a WKT string.
func Parse(s string) (*CRS, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) == 0:
		return nil, errors.Wrap(ErrUnsupportedCRS, "empty definition")
	case strings.HasPrefix(strings.ToUpper(s), "EPSG:"):
		code, err := strconv.Atoi(s[5:])
		if err != nil {
			return nil, errors.Wrapf(ErrUnsupportedCRS, "invalid EPSG code %q", s)
		}
		return FromEPSG(code)
	case strings.HasPrefix(s, "+"):
		return FromProj4(s), nil
	default:
		return FromWKT(s), nil
	}
}

// EPSG returns the EPSG code of the CRS if it is known.
func (c *CRS) EPSG() (int, bool) {
	return c.epsg, c.epsg > 0
}

// WKT returns the WKT definition the CRS was built from.
func (c *CRS) WKT() (string, error) {
	if len(c.wkt) == 0 {
		return "", ErrNoWKT
	}
	return c.wkt, nil
}

// Proj4 returns a PROJ.4 definition of the CRS.
func (c *CRS) Proj4() (string, error) {
	if len(c.proj4) > 0 {
		return c.proj4, nil
	}
	if def, ok := epsgToProj4(c.epsg); ok {
		return def, nil
	}
	return "", errors.Wrapf(ErrUnsupportedCRS, "no PROJ.4 definition for %s", c)
}

// IsSinusoidal reports whether the CRS is a sinusoidal projection.
func (c *CRS) IsSinusoidal() bool {
	if strings.Contains(c.proj4, "+proj=sinu") {
		return true
	}
	return strings.Contains(strings.ToLower(c.wkt), "sinusoidal")
}

// SphereRadius returns the radius of the sphere (or the semi-major axis)
// the CRS is defined on, falling back to the MODIS sphere.
func (c *CRS) SphereRadius() float64 {
	params := c.proj4Params()
	for _, key := range []string{"R", "a"} {
		if v, ok := params[key]; ok {
			if r, err := strconv.ParseFloat(v, 64); err == nil && r > 0 {
				return r
			}
		}
	}
	if m := wktSpheroid.FindStringSubmatch(c.wkt); m != nil {
		if r, err := strconv.ParseFloat(m[1], 64); err == nil && r > 0 {
			return r
		}
	}
	return ModisSphereRadius
}

// CentralMeridian returns the +lon_0 parameter in degrees, zero if absent.
func (c *CRS) CentralMeridian() float64 {
	if v, ok := c.proj4Params()["lon_0"]; ok {
		if lon0, err := strconv.ParseFloat(v, 64); err == nil {
			return lon0
		}
	}
	return 0
}

func (c *CRS) proj4Params() map[string]string {
	params := make(map[string]string)
	for _, m := range proj4Param.FindAllStringSubmatch(c.proj4, -1) {
		params[m[1]] = m[2]
	}
	return params
}

// definition returns the string handed to the projection library.
func (c *CRS) definition() (string, error) {
	if def, err := c.Proj4(); err == nil {
		return def, nil
	}
	if len(c.wkt) > 0 {
		return c.wkt, nil
	}
	return "", errors.Wrapf(ErrUnsupportedCRS, "%s", c)
}

func (c *CRS) String() string {
	switch {
	case c.epsg > 0:
		return fmt.Sprintf("EPSG:%d", c.epsg)
	case len(c.proj4) > 0:
		return c.proj4
	case len(c.wkt) > 0:
		return c.wkt
	}
	return "unknown CRS"
}

func epsgToProj4(code int) (string, bool) {
	if def, ok := epsgProj4[code]; ok {
		return def, true
	}
	switch {
	case code > 32600 && code <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", code-32600), true
	case code > 32700 && code <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", code-32700), true
	}
	return "", false
}
