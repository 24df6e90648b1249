package main

import (
	"strconv"
	"strings"

	"github.com/nci/rasterfoot/footprint"
	"github.com/nci/rasterfoot/utils"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
)

// Config is the layout of the YAML file given with --config.
type Config struct {
	Service   utils.ServiceConfig `yaml:"service"`
	Crawl     utils.CrawlConfig   `yaml:"crawl"`
	Footprint footprint.Options   `yaml:"footprint"`
}

func loadConfig(path string) (*Config, error) {
	conf := &Config{}
	if len(path) > 0 {
		if err := utils.LoadYAML(path, conf); err != nil {
			return nil, err
		}
	}
	if err := conf.Service.ApplyDefaults(); err != nil {
		return nil, err
	}
	conf.Crawl.ApplyDefaults()
	return conf, nil
}

var footprintFlags = []cli.Flag{
	cli.StringFlag{Name: "assets", Usage: "comma separated asset names tried in order"},
	cli.IntFlag{Name: "precision", Value: -1, Usage: "decimal places of output coordinates"},
	cli.IntFlag{Name: "densify-factor", Usage: "insert points so every edge becomes this many segments"},
	cli.Float64Flag{Name: "densify-distance", Usage: "insert points every this many CRS units"},
	cli.Float64Flag{Name: "simplify", Usage: "Douglas-Peucker tolerance in degrees"},
	cli.StringFlag{Name: "nodata", Usage: "nodata value overriding the raster's, may be nan"},
	cli.StringFlag{Name: "bands", Usage: `comma separated 1-based bands, or "all"`},
	cli.BoolFlag{Name: "sinusoidal", Usage: "treat the source as a sinusoidal grid and drop points outside the world"},
}

// applyFlags overrides o with the footprint flags set on c.
func applyFlags(c *cli.Context, o *footprint.Options) error {
	if v := c.String("assets"); len(v) > 0 {
		o.AssetNames = splitList(v)
	}
	if c.IsSet("precision") {
		v := c.Int("precision")
		o.Precision = &v
	}
	if c.IsSet("densify-factor") {
		v := c.Int("densify-factor")
		o.DensificationFactor = &v
	}
	if c.IsSet("densify-distance") {
		v := c.Float64("densify-distance")
		o.DensificationDistance = &v
	}
	if c.IsSet("simplify") {
		v := c.Float64("simplify")
		o.SimplifyTolerance = &v
	}
	if v := c.String("nodata"); len(v) > 0 {
		nd, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(footprint.ErrInvalidConfiguration, "nodata %q", v)
		}
		o.NoData = &nd
	}
	if v := c.String("bands"); len(v) > 0 {
		bands, err := parseBands(v)
		if err != nil {
			return err
		}
		o.Bands = bands
	}
	if c.Bool("sinusoidal") {
		o.Sinusoidal = true
	}
	return nil
}

// parseBands reads "all" as every band, which NewConfig expects as an
// empty non-nil list.
func parseBands(v string) ([]int, error) {
	if strings.EqualFold(strings.TrimSpace(v), "all") {
		return []int{}, nil
	}
	var bands []int
	for _, s := range splitList(v) {
		b, err := strconv.Atoi(s)
		if err != nil {
			return nil, errors.Wrapf(footprint.ErrInvalidConfiguration, "band %q", s)
		}
		bands = append(bands, b)
	}
	return bands, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); len(s) > 0 {
			out = append(out, s)
		}
	}
	return out
}
