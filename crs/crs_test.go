package crs

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

const utm32WKT = `PROJCS["WGS 84 / UTM zone 32N",GEOGCS["WGS 84",DATUM["WGS_1984",SPHEROID["WGS 84",6378137,298.257223563,AUTHORITY["EPSG","7030"]],AUTHORITY["EPSG","6326"]],PRIMEM["Greenwich",0,AUTHORITY["EPSG","8901"]],UNIT["degree",0.0174532925199433,AUTHORITY["EPSG","9122"]],AUTHORITY["EPSG","4326"]],PROJECTION["Transverse_Mercator"],PARAMETER["latitude_of_origin",0],PARAMETER["central_meridian",9],PARAMETER["scale_factor",0.9996],PARAMETER["false_easting",500000],PARAMETER["false_northing",0],UNIT["metre",1,AUTHORITY["EPSG","9001"]],AXIS["Easting",EAST],AXIS["Northing",NORTH],AUTHORITY["EPSG","32632"]]`

const modisProj4 = "+proj=sinu +lon_0=0 +x_0=0 +y_0=0 +R=6371007.181 +units=m +no_defs"

func TestFromWKTAuthority(t *testing.T) {
	c := FromWKT(utm32WKT)
	code, ok := c.EPSG()
	if !ok || code != 32632 {
		t.Errorf("expected EPSG:32632, got %v %v", code, ok)
	}

	wkt2 := `PROJCRS["WGS 84 / UTM zone 55S",BASEGEOGCRS["WGS 84"],CONVERSION["UTM zone 55S"],ID["EPSG",32755]]`
	c = FromWKT(wkt2)
	if code, ok := c.EPSG(); !ok || code != 32755 {
		t.Errorf("expected EPSG:32755, got %v %v", code, ok)
	}

	wkt, err := c.WKT()
	if err != nil || wkt != wkt2 {
		t.Errorf("WKT round trip failed: %v", err)
	}
}

func TestFromEPSG(t *testing.T) {
	c, err := FromEPSG(32755)
	if err != nil {
		t.Fatalf("FromEPSG: %v", err)
	}
	def, err := c.Proj4()
	if err != nil {
		t.Fatalf("Proj4: %v", err)
	}
	if def != "+proj=utm +zone=55 +south +datum=WGS84 +units=m +no_defs" {
		t.Errorf("unexpected definition %q", def)
	}
	if _, err := c.WKT(); !errors.Is(err, ErrNoWKT) {
		t.Errorf("expected ErrNoWKT, got %v", err)
	}

	if _, err := FromEPSG(2193); !errors.Is(err, ErrUnsupportedCRS) {
		t.Errorf("expected ErrUnsupportedCRS, got %v", err)
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		epsg int
		sinu bool
		fail bool
	}{
		{in: "EPSG:4326", epsg: 4326},
		{in: "epsg:3577", epsg: 3577},
		{in: modisProj4, sinu: true},
		{in: utm32WKT, epsg: 32632},
		{in: "EPSG:abc", fail: true},
		{in: "", fail: true},
	}

	for _, tc := range cases {
		c, err := Parse(tc.in)
		if tc.fail {
			if err == nil {
				t.Errorf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", tc.in, err)
			continue
		}
		code, _ := c.EPSG()
		if code != tc.epsg {
			t.Errorf("%q: expected EPSG %d, got %d", tc.in, tc.epsg, code)
		}
		if c.IsSinusoidal() != tc.sinu {
			t.Errorf("%q: expected sinusoidal=%v", tc.in, tc.sinu)
		}
	}
}

func TestSphereRadius(t *testing.T) {
	if r := FromProj4(modisProj4).SphereRadius(); r != ModisSphereRadius {
		t.Errorf("unexpected radius %v", r)
	}
	wkt := `PROJCS["unnamed",GEOGCS["Unknown datum based upon the custom spheroid",DATUM["Not specified",SPHEROID["Custom spheroid",6371007.181,0]],PRIMEM["Greenwich",0],UNIT["degree",0.0174532925199433]],PROJECTION["Sinusoidal"],PARAMETER["longitude_of_center",0],UNIT["Meter",1]]`
	c := FromWKT(wkt)
	if !c.IsSinusoidal() {
		t.Errorf("expected sinusoidal WKT to be detected")
	}
	if r := c.SphereRadius(); r != 6371007.181 {
		t.Errorf("unexpected radius %v", r)
	}
}

func TestTransformUTM(t *testing.T) {
	c, _ := FromEPSG(32632)
	tr, err := NewTransformer(c)
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}

	cases := [][4]float64{
		{500000, 5000000, 9.0, 45.1534772},
		{510000, 5000000, 9.1272189, 45.1534063},
		{510000, 5010000, 9.1274196, 45.2434222},
	}
	for _, tc := range cases {
		lon, lat, err := tr.Transform(tc[0], tc[1])
		if err != nil {
			t.Errorf("transform %v: %v", tc, err)
			continue
		}
		if math.Abs(lon-tc[2]) > 1e-4 || math.Abs(lat-tc[3]) > 1e-4 {
			t.Errorf("(%v, %v): expected (%v, %v), got (%v, %v)", tc[0], tc[1], tc[2], tc[3], lon, lat)
		}
	}
}

func TestTransformIdentity(t *testing.T) {
	c, _ := FromEPSG(WGS84)
	tr, err := NewTransformer(c)
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}
	lon, lat, _ := tr.Transform(170.5, -45.25)
	if lon != 170.5 || lat != -45.25 {
		t.Errorf("identity changed coordinates: %v %v", lon, lat)
	}
}

func TestSinusoidal(t *testing.T) {
	tr, err := NewTransformer(FromProj4(modisProj4))
	if err != nil {
		t.Fatalf("NewTransformer: %v", err)
	}

	// upper left corner of MODIS tile h10v04
	lon, lat, err := tr.Transform(-8895604.157333, 5559752.598333)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if math.Abs(lat-50) > 1e-6 {
		t.Errorf("expected latitude 50, got %v", lat)
	}
	if math.Abs(lon - -124.4579) > 1e-3 {
		t.Errorf("expected longitude -124.4579, got %v", lon)
	}

	// beyond the edge of the projection at this latitude
	if _, _, err := tr.Transform(-19000000, 5559752.598333); !errors.Is(err, ErrOutsideProjection) {
		t.Errorf("expected ErrOutsideProjection, got %v", err)
	}
}
