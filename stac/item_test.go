package stac

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
)

const itemJSON = `{
  "type": "Feature",
  "stac_version": "1.0.0",
  "id": "S2A_T32TMR",
  "geometry": null,
  "properties": {"datetime": "2021-06-01T10:20:30Z"},
  "links": [{"rel": "self", "href": "https://example.com/items/S2A_T32TMR.json"}],
  "assets": {
    "B04": {"href": "B04.tif", "type": "image/tiff; application=geotiff"},
    "B03": {"href": "s3://bucket/B03.tif"},
    "thumbnail": {"href": "../thumbs/S2A.jpg"}
  }
}`

func TestDecodeItem(t *testing.T) {
	item, err := DecodeItem([]byte(itemJSON))
	if err != nil {
		t.Fatalf("DecodeItem: %v", err)
	}
	if item.OrbGeometry() != nil {
		t.Errorf("expected no geometry")
	}
	if item.Properties["datetime"] != "2021-06-01T10:20:30Z" {
		t.Errorf("properties lost: %v", item.Properties)
	}

	if _, err := DecodeItem([]byte(`{"type": "Collection"}`)); err == nil {
		t.Errorf("expected non Feature to be rejected")
	}
}

func TestAbsoluteHref(t *testing.T) {
	item, _ := DecodeItem([]byte(itemJSON))

	cases := map[string]string{
		"B04":       "https://example.com/items/B04.tif",
		"B03":       "s3://bucket/B03.tif",
		"thumbnail": "https://example.com/thumbs/S2A.jpg",
	}
	for key, expected := range cases {
		href, ok := item.AbsoluteHref(key)
		if !ok || href != expected {
			t.Errorf("%s: expected %s, got %s (%v)", key, expected, href, ok)
		}
	}

	if _, ok := item.AbsoluteHref("B08"); ok {
		t.Errorf("missing asset resolved")
	}

	item.Links = nil
	if _, ok := item.AbsoluteHref("B04"); ok {
		t.Errorf("relative HREF resolved without a self link")
	}
	if href, ok := item.AbsoluteHref("B03"); !ok || href != "s3://bucket/B03.tif" {
		t.Errorf("absolute HREF should not need a self link")
	}

	item.SetSelfHref("/data/items/a.json")
	if href, _ := item.AbsoluteHref("B04"); href != "/data/items/B04.tif" {
		t.Errorf("unexpected local HREF %s", href)
	}
}

func TestAssetKeys(t *testing.T) {
	item, _ := DecodeItem([]byte(itemJSON))

	keys := item.AssetKeys(nil)
	if len(keys) != 3 || keys[0] != "B03" || keys[1] != "B04" || keys[2] != "thumbnail" {
		t.Errorf("unexpected keys %v", keys)
	}

	keys = item.AssetKeys([]string{"B04", "B08", "B03"})
	if len(keys) != 2 || keys[0] != "B04" || keys[1] != "B03" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestReadWrite(t *testing.T) {
	dir, err := ioutil.TempDir("", "stac")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	item := NewItem("box")
	item.Assets["data"] = &Asset{Href: "data.tif"}
	item.SetGeometry(orb.Polygon{{{170, 40}, {180, 40}, {180, 50}, {170, 50}, {170, 40}}})

	p := filepath.Join(dir, "box.json")
	if err := item.Write(p); err != nil {
		t.Fatalf("Write: %v", err)
	}

	back, err := ReadItem(p)
	if err != nil {
		t.Fatalf("ReadItem: %v", err)
	}
	if back.SelfHref() != p {
		t.Errorf("expected self link %s, got %s", p, back.SelfHref())
	}
	if href, _ := back.AbsoluteHref("data"); href != filepath.Join(dir, "data.tif") {
		t.Errorf("unexpected asset HREF %s", href)
	}

	poly, ok := back.OrbGeometry().(orb.Polygon)
	if !ok || len(poly[0]) != 5 {
		t.Fatalf("unexpected geometry %v", back.OrbGeometry())
	}
	if len(back.BBox) != 4 || back.BBox[0] != 170 || back.BBox[1] != 40 || back.BBox[2] != 180 || back.BBox[3] != 50 {
		t.Errorf("unexpected bbox %v", back.BBox)
	}
}
