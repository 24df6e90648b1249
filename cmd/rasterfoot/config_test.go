package main

import (
	"flag"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/nci/rasterfoot/footprint"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

const testConfig = `
service:
  listen: ":9090"
  memcache_servers: ["localhost:11211"]
crawl:
  pattern: 'type == "d" || path =~ "[.]tif$"'
footprint:
  precision: 5
  densification_factor: 4
  bands: []
`

func TestLoadConfig(t *testing.T) {
	dir, err := ioutil.TempDir("", "rasterfoot")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	p := filepath.Join(dir, "config.yaml")
	if err := ioutil.WriteFile(p, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}

	conf, err := loadConfig(p)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Service.Listen != ":9090" || len(conf.Service.MemcacheServers) != 1 {
		t.Errorf("unexpected service config %+v", conf.Service)
	}
	if conf.Crawl.Concurrency <= 0 || conf.Crawl.OutputFormat != "json" {
		t.Errorf("crawl defaults not applied: %+v", conf.Crawl)
	}

	fp, err := footprint.NewConfig(conf.Footprint)
	if err != nil {
		t.Fatal(err)
	}
	if fp.Precision != 5 || fp.Densification.Kind != footprint.ByFactor || fp.Densification.Factor != 4 {
		t.Errorf("unexpected footprint config %+v", fp)
	}
	if fp.Bands == nil || len(fp.Bands) != 0 {
		t.Errorf("expected all bands, got %v", fp.Bands)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	conf, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if len(conf.Service.Listen) == 0 {
		t.Error("expected a default listen address")
	}
	if _, err := loadConfig("/nonexistent/rasterfoot.yaml"); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func flagContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range footprintFlags {
		f.Apply(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestApplyFlags(t *testing.T) {
	prec := 3
	o := footprint.Options{Precision: &prec}
	c := flagContext(t, "-densify-distance", "100", "-nodata", "nan", "-bands", "1, 3", "-assets", "B04,visual")
	if err := applyFlags(c, &o); err != nil {
		t.Fatal(err)
	}
	if *o.Precision != 3 {
		t.Errorf("precision overridden without the flag: %d", *o.Precision)
	}
	if o.DensificationDistance == nil || *o.DensificationDistance != 100 {
		t.Errorf("unexpected densification distance %v", o.DensificationDistance)
	}
	if o.NoData == nil || !math.IsNaN(*o.NoData) {
		t.Errorf("expected NaN nodata, got %v", o.NoData)
	}
	if len(o.Bands) != 2 || o.Bands[0] != 1 || o.Bands[1] != 3 {
		t.Errorf("unexpected bands %v", o.Bands)
	}
	if len(o.AssetNames) != 2 || o.AssetNames[1] != "visual" {
		t.Errorf("unexpected asset names %v", o.AssetNames)
	}
}

func TestApplyFlagsInvalid(t *testing.T) {
	for _, args := range [][]string{{"-nodata", "none"}, {"-bands", "1,x"}} {
		o := footprint.Options{}
		if err := applyFlags(flagContext(t, args...), &o); !errors.Is(err, footprint.ErrInvalidConfiguration) {
			t.Errorf("%v: expected ErrInvalidConfiguration, got %v", args, err)
		}
	}
}

func TestParseBands(t *testing.T) {
	bands, err := parseBands("ALL")
	if err != nil || bands == nil || len(bands) != 0 {
		t.Errorf("expected an empty band list, got %v %v", bands, err)
	}
}
