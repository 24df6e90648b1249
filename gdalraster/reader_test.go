package gdalraster

import (
	"os"
	"testing"

	"github.com/nci/rasterfoot/raster"
)

func TestVSIPath(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a.tif": "/vsicurl/https://example.com/a.tif",
		"http://example.com/a.tif":  "/vsicurl/http://example.com/a.tif",
		"s3://bucket/key/a.tif":     "/vsis3/bucket/key/a.tif",
		"gs://bucket/a.tif":         "/vsigs/bucket/a.tif",
		"file:///data/a.tif":        "/data/a.tif",
		"/data/a.tif":               "/data/a.tif",
	}
	for in, expected := range cases {
		if out := VSIPath(in); out != expected {
			t.Errorf("%s: expected %s, got %s", in, expected, out)
		}
	}
}

func TestOpen(t *testing.T) {
	path := os.Getenv("RASTERFOOT_TEST_TIFF")
	if path == "" {
		t.Skip("RASTERFOOT_TEST_TIFF not set")
	}

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	h, w := r.Shape()
	if h <= 0 || w <= 0 {
		t.Errorf("invalid shape %dx%d", h, w)
	}
	if len(r.BandIndexes()) == 0 {
		t.Errorf("no bands")
	}
	if _, err := r.CRS().Proj4(); err != nil {
		t.Errorf("no PROJ.4 definition: %v", err)
	}

	b, err := r.ReadBand(1, 0, 0)
	if err != nil {
		t.Fatalf("ReadBand: %v", err)
	}
	if bh, bw := b.Dims(); bh != h || bw != w {
		t.Errorf("band shape %dx%d, raster %dx%d", bh, bw, h, w)
	}

	if _, err := r.ReadBand(len(r.BandIndexes())+1, 0, 0); err == nil {
		t.Errorf("expected out of range band to fail")
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := raster.Open(Open, "/no/such/raster.tif", nil); err == nil {
		t.Errorf("expected missing file to fail")
	}
}
