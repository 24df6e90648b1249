package metrics

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
)

func TestToJSON(t *testing.T) {
	info := &MetricsInfo{
		URL:        URLInfo{RawURL: "http://localhost:8080/footprint?href=s3://b/a.tif&precision=5"},
		RemoteAddr: "10.0.0.1:43210",
		HTTPStatus: 200,
		Footprint: &FootprintInfo{
			Href:    "s3://b/a.tif",
			Polygon: orb.Polygon{{{0, 0}, {2, 0}, {2, 1}, {0, 1}, {0, 0}}},
		},
	}

	s, err := info.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	if !strings.HasSuffix(s, "\n") {
		t.Errorf("expected a JSON line")
	}

	var out map[string]interface{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", s, err)
	}
	if out["remote_host"] != "10.0.0.1" || out["remote_port"] != "43210" {
		t.Errorf("remote address not split: %v %v", out["remote_host"], out["remote_port"])
	}

	u := out["url"].(map[string]interface{})
	if u["path"] != "/footprint" {
		t.Errorf("unexpected path %v", u["path"])
	}
	if q := u["query"].(map[string]interface{}); q["href"] != "s3://b/a.tif" {
		t.Errorf("unexpected query %v", q)
	}

	fp := out["footprint"].(map[string]interface{})
	if fp["geometry"] != "POLYGON((0 0,2 0,2 1,0 1,0 0))" {
		t.Errorf("unexpected geometry %v", fp["geometry"])
	}
	if fp["geometry_area"] != 2.0 {
		t.Errorf("unexpected area %v", fp["geometry_area"])
	}
	if fp["num_out_vertices"] != 5.0 {
		t.Errorf("unexpected vertex count %v", fp["num_out_vertices"])
	}
}

func TestEmptyGeometry(t *testing.T) {
	info := &MetricsInfo{Footprint: &FootprintInfo{Degenerate: true}}
	s, err := info.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, `"geometry":"POLYGON EMPTY"`) {
		t.Errorf("expected empty geometry, got %s", s)
	}
}

func TestFileLoggerRotation(t *testing.T) {
	dir, err := ioutil.TempDir("", "metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	l := NewFileLogger(dir, 1, 2, false)
	for i := 0; i < 20; i++ {
		l.Log(&MetricsInfo{HTTPStatus: 200, Footprint: &FootprintInfo{Href: "a.tif"}})
	}
	l.Close()

	files, err := filepath.Glob(filepath.Join(dir, "metrics*.log*"))
	if err != nil {
		t.Fatal(err)
	}
	// per writer: the live file plus at most two rotated ones
	if len(files) == 0 || len(files) > 3*defaultLogWriters {
		t.Errorf("unexpected log files %v", files)
	}
	for _, f := range files {
		b, _ := ioutil.ReadFile(f)
		if strings.Count(string(b), "\n") > 1 {
			t.Errorf("%s was not rotated: %q", f, b)
		}
	}
}
