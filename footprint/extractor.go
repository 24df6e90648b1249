// Package footprint derives the WGS84 outline of the valid data in a
// raster: mask, polygonise, densify, reproject and simplify.
package footprint

import (
	"time"

	"github.com/nci/rasterfoot/crs"
	"github.com/nci/rasterfoot/metrics"
	"github.com/nci/rasterfoot/raster"
	"github.com/nci/rasterfoot/stac"
	"github.com/nci/rasterfoot/utils"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// Extractor computes footprints of rasters opened through Open. The zero
// values of Modifier, Config, Log and Metrics are usable.
type Extractor struct {
	Open     raster.Opener
	Modifier raster.ReadHrefModifier
	Config   *Config
	Log      *utils.Logger
	Metrics  metrics.Logger
}

func NewExtractor(open raster.Opener, config *Config, log *utils.Logger) *Extractor {
	return &Extractor{Open: open, Config: config, Log: log}
}

func (e *Extractor) config() *Config {
	if e.Config == nil {
		return DefaultConfig()
	}
	return e.Config
}

func (e *Extractor) log() *utils.Logger {
	if e.Log == nil {
		return utils.DiscardLogger()
	}
	return e.Log
}

// Footprint opens href and returns the footprint of its valid data. A nil
// polygon with a nil error means the raster has no footprint.
func (e *Extractor) Footprint(href string) (orb.Polygon, error) {
	collector := metrics.NewMetricsCollector(e.Metrics)
	info := collector.Info.Footprint
	info.Href = href
	t0 := time.Now()
	defer func() {
		info.Duration = time.Since(t0)
		collector.Info.ReqTime = t0.Format(time.RFC3339)
		collector.Log()
	}()

	e.log().Info.Printf("footprint of %s: started", href)
	r, err := raster.Open(e.Open, href, e.Modifier)
	if err != nil {
		e.log().Error.Printf("footprint of %s: %v", href, err)
		info.Error = err.Error()
		return nil, err
	}
	defer r.Close()

	poly, err := e.footprint(r, info)
	if err != nil {
		e.log().Error.Printf("footprint of %s: %v", href, err)
		info.Error = err.Error()
		return nil, err
	}
	if poly == nil {
		e.log().Warning.Printf("footprint of %s: no valid data footprint", href)
	} else {
		e.log().Info.Printf("footprint of %s: finished with %d vertices in %v", href, len(poly[0]), time.Since(t0))
	}
	return poly, nil
}

// FootprintFromReader computes the footprint of an already open raster.
// The reader is not closed.
func (e *Extractor) FootprintFromReader(r raster.Reader) (orb.Polygon, error) {
	return e.footprint(r, &metrics.FootprintInfo{})
}

func (e *Extractor) footprint(r raster.Reader, info *metrics.FootprintInfo) (orb.Polygon, error) {
	cfg := e.config()

	height, width := r.Shape()
	info.Height, info.Width = height, width

	bands, err := ResolveBands(r, cfg.Bands)
	if err != nil {
		return nil, err
	}
	info.Bands = bands

	mask, err := DataMask(r, bands, cfg.NoData)
	if err != nil {
		return nil, err
	}

	transform := r.Transform()
	regions := Polygonise(mask, height, width, transform)
	info.NumRegions = len(regions)
	ring := Outline(regions)
	if ring == nil {
		info.Degenerate = true
		return nil, nil
	}

	src := r.CRS()
	if src == nil {
		return nil, errors.Wrap(crs.ErrUnsupportedCRS, "raster has no CRS")
	}
	info.CRS = src.String()

	var out orb.Ring
	if cfg.Sinusoidal {
		d := cfg.Densification
		if d.Kind == NoDensification {
			d = Densification{Kind: ByDistance, Distance: transform.PixelWidth()}
		}
		ring = Densify(ring, d)
		out = ReprojectSinusoidal(ring, crs.NewSinusoidal(src), cfg.Precision)
	} else {
		ring = Densify(ring, cfg.Densification)
		tr, err := crs.NewTransformer(src)
		if err != nil {
			return nil, err
		}
		if out, err = Reproject(ring, tr, cfg.Precision); err != nil {
			return nil, err
		}
	}
	info.NumVertices = len(ring)

	out = RemoveDuplicates(out)
	if cfg.SimplifyTolerance > 0 {
		out = Simplify(out, cfg.SimplifyTolerance)
	}
	if len(out) < 4 || out[0] != out[len(out)-1] {
		info.Degenerate = true
		return nil, nil
	}

	poly := orb.Polygon{OrientCCW(out)}
	info.Polygon = poly
	return poly, nil
}

// UpdateItemGeometry sets the geometry and bbox of item from the first of
// its assets that yields a footprint. It returns false, leaving the item
// untouched, if none does.
func (e *Extractor) UpdateItemGeometry(item *stac.Item) (bool, error) {
	for _, key := range item.AssetKeys(e.config().AssetNames) {
		href, ok := item.AbsoluteHref(key)
		if !ok {
			e.log().Info.Printf("item %s: asset %s has no absolute HREF, skipped", item.ID, key)
			continue
		}

		poly, err := e.Footprint(href)
		if err != nil {
			return false, errors.Wrapf(err, "item %s asset %s", item.ID, key)
		}
		if poly != nil {
			item.SetGeometry(poly)
			e.log().Info.Printf("item %s: geometry from asset %s", item.ID, key)
			return true, nil
		}
	}

	e.log().Warning.Printf("item %s: no asset yields a footprint", item.ID)
	return false, nil
}
