package utils

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadYAML(t *testing.T) {
	dir, err := ioutil.TempDir("", "utils")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "service.yaml")
	doc := "listen: :9090\nmemcache_servers:\n  - 127.0.0.1:11211\npostgres_dsn: dbname=footprints\n"
	if err := ioutil.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	var c ServiceConfig
	if err := LoadYAML(path, &c); err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}
	if c.Listen != ":9090" || len(c.MemcacheServers) != 1 || c.PostgresDSN != "dbname=footprints" {
		t.Errorf("unexpected config %+v", c)
	}
	if err := c.ApplyDefaults(); err != nil {
		t.Fatal(err)
	}
	if c.CacheExpiry != DefaultCacheExpiry {
		t.Errorf("expected default cache expiry, got %d", c.CacheExpiry)
	}

	if err := ioutil.WriteFile(path, []byte("listen: :9090\nbogus: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadYAML(path, &c); err == nil {
		t.Errorf("expected unknown field to be rejected")
	}

	if err := LoadYAML(filepath.Join(dir, "missing.yaml"), &c); err == nil {
		t.Errorf("expected missing file to fail")
	}
}

func TestCrawlDefaults(t *testing.T) {
	var c CrawlConfig
	c.ApplyDefaults()
	if c.Concurrency != DefaultConcurrency || c.OutputFormat != "json" {
		t.Errorf("unexpected defaults %+v", c)
	}
}

func TestLogger(t *testing.T) {
	var info, errs bytes.Buffer
	l := NewLoggerTo("FOOT", &info, &errs)
	l.Info.Printf("started")
	l.Warning.Printf("degenerate")
	l.Error.Printf("failed")

	if !strings.Contains(info.String(), "FOOT: ") || !strings.Contains(info.String(), "started") {
		t.Errorf("unexpected info output %q", info.String())
	}
	if !strings.Contains(errs.String(), "WARNING: ") || !strings.Contains(errs.String(), "ERROR: ") {
		t.Errorf("unexpected error output %q", errs.String())
	}
}
