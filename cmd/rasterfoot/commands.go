package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nci/rasterfoot/antimeridian"
	"github.com/nci/rasterfoot/api"
	"github.com/nci/rasterfoot/crawl"
	"github.com/nci/rasterfoot/index"
	"github.com/nci/rasterfoot/stac"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"golang.org/x/net/context"
)

var commands = cli.Commands{
	cli.Command{
		Name:      "footprint",
		Aliases:   []string{"f"},
		Usage:     "Print the footprint of each raster as a GeoJSON Feature",
		ArgsUsage: "<href>...",
		Flags:     footprintFlags,
		Action:    footprintAction,
	},
	cli.Command{
		Name:      "fix",
		Usage:     "Update STAC item geometries and repair antimeridian crossings",
		ArgsUsage: "<item.json>...",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "strategy", Value: "split", Usage: "antimeridian strategy: split or normalize"},
			cli.BoolFlag{Name: "update-geometry", Usage: "recompute the geometry from the item's assets first"},
			cli.BoolFlag{Name: "in-place", Usage: "rewrite the item files instead of printing them"},
		}, footprintFlags...),
		Action: fixAction,
	},
	cli.Command{
		Name:      "crawl",
		Usage:     "Compute the footprint of every raster under a directory",
		ArgsUsage: "<dir>",
		Flags: append([]cli.Flag{
			cli.IntFlag{Name: "conc", Usage: "concurrent directory readers and footprint workers"},
			cli.StringFlag{Name: "pattern", Usage: `govaluate filter over path and type, e.g. type == "d" || path =~ "[.]tif$"`},
			cli.BoolFlag{Name: "follow-symlinks", Usage: "follow symbolic links"},
			cli.StringFlag{Name: "format", Usage: "json or tsv"},
			cli.BoolFlag{Name: "index", Usage: "also store records in the postgres index"},
		}, footprintFlags...),
		Action: crawlAction,
	},
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve footprints and antimeridian fixes over HTTP",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "listen", Usage: "listen address"},
			cli.StringSliceFlag{Name: "memcache", Usage: "memcache server host:port"},
			cli.StringFlag{Name: "dsn", Usage: "postgres DSN of the footprint index"},
		}, footprintFlags...),
		Action: serveAction,
	},
}

func exitError(err error) error {
	return cli.NewExitError(err.Error(), 1)
}

func footprintAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("footprint: missing raster href", 2)
	}
	e, err := newEnv(c)
	if err != nil {
		return exitError(err)
	}
	defer e.close()

	enc := json.NewEncoder(os.Stdout)
	failed := 0
	for _, href := range c.Args() {
		poly, err := e.extractor.Footprint(href)
		if err != nil {
			failed++
			continue
		}
		feat := geojson.NewFeature(poly)
		if poly == nil {
			feat = &geojson.Feature{Type: "Feature"}
		} else {
			feat.BBox = geojson.NewBBox(poly.Bound())
		}
		feat.Properties = geojson.Properties{"href": href}
		if err := enc.Encode(feat); err != nil {
			return exitError(err)
		}
	}
	if failed > 0 {
		return cli.NewExitError(fmt.Sprintf("footprint: %d of %d rasters failed", failed, c.NArg()), 1)
	}
	return nil
}

func fixAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("fix: missing item path", 2)
	}
	strategy, err := antimeridian.ParseStrategy(c.String("strategy"))
	if err != nil {
		return exitError(err)
	}
	e, err := newEnv(c)
	if err != nil {
		return exitError(err)
	}
	defer e.close()

	for _, p := range c.Args() {
		item, err := stac.ReadItem(p)
		if err != nil {
			return exitError(err)
		}

		if c.Bool("update-geometry") {
			if _, err := e.extractor.UpdateItemGeometry(item); err != nil {
				return exitError(err)
			}
		}
		if item.Geometry != nil {
			changed, err := antimeridian.FixItem(item, strategy)
			if err != nil {
				return exitError(errors.Wrapf(err, "item %s", item.ID))
			}
			if changed {
				e.log.Info.Printf("item %s: antimeridian fixed with %s", item.ID, strategy)
			}
		}

		if c.Bool("in-place") {
			if err := item.Write(p); err != nil {
				return exitError(err)
			}
			continue
		}
		out, err := item.Encode()
		if err != nil {
			return exitError(err)
		}
		os.Stdout.Write(append(out, '\n'))
	}
	return nil
}

func crawlAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.NewExitError("crawl: expected one directory", 2)
	}
	e, err := newEnv(c)
	if err != nil {
		return exitError(err)
	}
	defer e.close()

	conf := e.conf.Crawl
	if c.IsSet("conc") {
		conf.Concurrency = c.Int("conc")
	}
	if c.IsSet("pattern") {
		conf.Pattern = c.String("pattern")
	}
	if c.IsSet("format") {
		conf.OutputFormat = c.String("format")
	}
	if c.Bool("follow-symlinks") {
		conf.FollowSymlinks = true
	}

	crawler, err := crawl.NewCrawler(conf.Concurrency, conf.Pattern, conf.FollowSymlinks, conf.OutputFormat, e.extractor, os.Stdout)
	if err != nil {
		return exitError(err)
	}
	crawler.Log = e.log

	if c.Bool("index") {
		store, err := openIndex(e.conf.Service.PostgresDSN)
		if err != nil {
			return exitError(err)
		}
		defer store.Close()
		crawler.Index = func(rec *crawl.Record) error {
			return store.Upsert(context.Background(), &index.Record{
				Path:    rec.Path,
				PosixID: rec.ID,
				Polygon: rec.Polygon(),
				BBox:    rec.BBox,
				Error:   rec.Error,
			})
		}
	}

	if err := crawler.Crawl(c.Args().First()); err != nil {
		return exitError(err)
	}
	return nil
}

func openIndex(dsn string) (*index.Store, error) {
	if len(dsn) == 0 {
		return nil, errors.New("no postgres_dsn configured for the footprint index")
	}
	store, err := index.Open(dsn)
	if err != nil {
		return nil, err
	}
	if err := store.Init(context.Background()); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func serveAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return exitError(err)
	}
	defer e.close()

	conf := e.conf.Service
	if c.IsSet("listen") {
		conf.Listen = c.String("listen")
	}
	if c.IsSet("memcache") {
		conf.MemcacheServers = c.StringSlice("memcache")
	}
	if c.IsSet("dsn") {
		conf.PostgresDSN = c.String("dsn")
	}

	s := api.NewServer(e.extractor, api.NewMemcache(conf.MemcacheServers), e.metrics)
	s.CacheExpiry = conf.CacheExpiry
	s.Log = e.log
	if len(conf.PostgresDSN) > 0 {
		store, err := openIndex(conf.PostgresDSN)
		if err != nil {
			return exitError(err)
		}
		defer store.Close()
		s.Index = store
	}

	e.log.Info.Printf("footprint service on %s, memcache %v", conf.Listen, conf.MemcacheServers)
	return exitError(s.ListenAndServe(conf.Listen))
}
