package main

import (
	"log"
	"os"

	"github.com/nci/rasterfoot/footprint"
	"github.com/nci/rasterfoot/gdalraster"
	"github.com/nci/rasterfoot/metrics"
	"github.com/nci/rasterfoot/utils"
	cli "gopkg.in/urfave/cli.v1"
)

func createCliApp() *cli.App {
	app := cli.NewApp()
	app.Name = "rasterfoot"
	app.Usage = "Derive WGS84 footprints of raster data for STAC items"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config, c", Usage: "YAML configuration file"},
		cli.BoolFlag{Name: "verbose, v", Usage: "log progress of every raster"},
		cli.StringFlag{Name: "log_dir", Usage: "write metrics lines to rotating files in this directory"},
	}
	app.Commands = commands
	return app
}

// env is what every command needs: the merged configuration and a GDAL
// backed extractor.
type env struct {
	conf      *Config
	log       *utils.Logger
	extractor *footprint.Extractor
	metrics   metrics.Logger
	close     func()
}

func newEnv(c *cli.Context) (*env, error) {
	conf, err := loadConfig(c.GlobalString("config"))
	if err != nil {
		return nil, err
	}
	if err := applyFlags(c, &conf.Footprint); err != nil {
		return nil, err
	}
	fpConf, err := footprint.NewConfig(conf.Footprint)
	if err != nil {
		return nil, err
	}

	verbose := c.GlobalBool("verbose")
	e := &env{
		conf:  conf,
		log:   utils.NewLogger("rasterfoot", verbose),
		close: func() {},
	}

	logDir := c.GlobalString("log_dir")
	if len(logDir) == 0 {
		logDir = conf.Service.MetricsLogDir
	}
	if len(logDir) > 0 {
		fl := metrics.NewFileLogger(logDir, conf.Service.MaxLogFileSize, conf.Service.MaxLogFiles, verbose)
		e.metrics = fl
		e.close = fl.Close
	} else if verbose {
		e.metrics = metrics.NewStdoutLogger()
	}

	gdalraster.Init()
	e.extractor = footprint.NewExtractor(gdalraster.Open, fpConf, e.log)
	e.extractor.Metrics = e.metrics
	return e, nil
}

func main() {
	if err := createCliApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
