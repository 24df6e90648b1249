// Package api serves footprints and antimeridian fixes over HTTP.
package api

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	reuseport "github.com/kavu/go_reuseport"
	geo "github.com/nci/geometry"
	"github.com/nci/gomemcache/memcache"
	"github.com/nci/rasterfoot/antimeridian"
	"github.com/nci/rasterfoot/index"
	"github.com/nci/rasterfoot/metrics"
	"github.com/nci/rasterfoot/utils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"golang.org/x/net/context"
)

const maxBodySize = 16 << 20

// Footprinter computes the footprint of the raster at href.
type Footprinter interface {
	Footprint(href string) (orb.Polygon, error)
}

// Cache is the subset of the memcache client the server uses.
type Cache interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// Index stores computed footprints between requests.
type Index interface {
	Lookup(ctx context.Context, path string) (*index.Record, error)
	Upsert(ctx context.Context, rec *index.Record) error
}

type Server struct {
	Footprinter Footprinter
	Cache       Cache
	CacheExpiry int32
	Index       Index
	Metrics     metrics.Logger
	Log         *utils.Logger
}

func NewServer(footprinter Footprinter, cache Cache, metricsLogger metrics.Logger) *Server {
	return &Server{
		Footprinter: footprinter,
		Cache:       cache,
		CacheExpiry: utils.DefaultCacheExpiry,
		Metrics:     metricsLogger,
		Log:         utils.DiscardLogger(),
	}
}

// NewMemcache returns a lazily connected memcache client, or nil when no
// server is configured.
func NewMemcache(servers []string) Cache {
	if len(servers) == 0 {
		return nil
	}
	return memcache.New(servers...)
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/footprint", s.instrument(s.handleFootprint))
	mux.HandleFunc("/antimeridian", s.instrument(s.handleAntimeridian))
	return mux
}

// ListenAndServe serves Handler on a SO_REUSEPORT listener so several
// processes can share addr.
func (s *Server) ListenAndServe(addr string) error {
	l, err := reuseport.NewReusablePortListener("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", addr)
	}
	s.Log.Info.Printf("listening on %s", addr)
	return http.Serve(l, s.Handler())
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, collector *metrics.MetricsCollector)

func (s *Server) instrument(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collector := metrics.NewMetricsCollector(s.Metrics)
		t0 := time.Now()
		collector.Info.ReqTime = t0.Format(time.RFC3339)
		collector.Info.URL.RawURL = r.URL.RequestURI()
		collector.Info.RemoteAddr = r.RemoteAddr
		defer func() {
			collector.Info.ReqDuration = time.Since(t0)
			collector.Log()
		}()

		w.Header().Set("Content-Type", "application/json")
		h(w, r, collector)
	}
}

// httpJSONError writes err as a JSON error document.
func httpJSONError(w http.ResponseWriter, collector *metrics.MetricsCollector, err error, status int) {
	collector.Info.HTTPStatus = status
	http.Error(w, fmt.Sprintf(`{ "error": %q }`, err.Error()), status)
}

func cacheKey(r *http.Request) string {
	buff := md5.Sum([]byte(r.URL.RequestURI()))
	return hex.EncodeToString(buff[:])
}

func (s *Server) write(w http.ResponseWriter, collector *metrics.MetricsCollector, payload []byte) {
	collector.Info.HTTPStatus = http.StatusOK
	w.Write(payload)
}

func (s *Server) handleFootprint(w http.ResponseWriter, r *http.Request, collector *metrics.MetricsCollector) {
	if r.Method != http.MethodGet {
		httpJSONError(w, collector, errors.New("method not allowed"), http.StatusMethodNotAllowed)
		return
	}
	href := r.FormValue("href")
	if len(href) == 0 {
		httpJSONError(w, collector, errors.New("missing href parameter"), http.StatusBadRequest)
		return
	}
	collector.Info.Footprint.Href = href

	var key string
	if s.Cache != nil {
		key = cacheKey(r)
		if cached, err := s.Cache.Get(key); err == nil {
			collector.Info.CacheHit = true
			s.write(w, collector, cached.Value)
			return
		}
	}

	poly, err := s.footprint(r.Context(), href)
	if err != nil {
		s.Log.Error.Printf("footprint of %s: %v", href, err)
		collector.Info.Footprint.Error = err.Error()
		httpJSONError(w, collector, err, http.StatusBadRequest)
		return
	}
	collector.Info.Footprint.Polygon = poly

	payload, err := encodeFeature(poly, nil, map[string]interface{}{"href": href})
	if err != nil {
		httpJSONError(w, collector, err, http.StatusInternalServerError)
		return
	}
	s.write(w, collector, payload)

	if s.Cache != nil {
		// memcache may evict the entry at any time; failures are not fatal
		s.Cache.Set(&memcache.Item{Key: key, Value: payload, Expiration: s.CacheExpiry})
	}
}

// footprint consults the index before computing and records fresh
// results in it.
func (s *Server) footprint(ctx context.Context, href string) (orb.Polygon, error) {
	if s.Index != nil {
		rec, err := s.Index.Lookup(ctx, href)
		if err == nil && len(rec.Error) == 0 {
			return rec.Polygon, nil
		}
		if err != nil && !errors.Is(err, index.ErrNotFound) {
			s.Log.Warning.Printf("index lookup of %s: %v", href, err)
		}
	}

	poly, err := s.Footprinter.Footprint(href)
	if err != nil {
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.Upsert(ctx, &index.Record{Path: href, Polygon: poly}); err != nil {
			s.Log.Warning.Printf("indexing %s: %v", href, err)
		}
	}
	return poly, nil
}

func (s *Server) handleAntimeridian(w http.ResponseWriter, r *http.Request, collector *metrics.MetricsCollector) {
	if r.Method != http.MethodPost {
		httpJSONError(w, collector, errors.New("method not allowed"), http.StatusMethodNotAllowed)
		return
	}

	strategy := antimeridian.StrategySplit
	if name := r.URL.Query().Get("strategy"); len(name) > 0 {
		var err error
		if strategy, err = antimeridian.ParseStrategy(name); err != nil {
			httpJSONError(w, collector, err, http.StatusBadRequest)
			return
		}
	}

	body, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		httpJSONError(w, collector, err, http.StatusBadRequest)
		return
	}
	g, props, err := decodeFeature(body)
	if err != nil {
		httpJSONError(w, collector, err, http.StatusBadRequest)
		return
	}

	fixed, changed, err := antimeridian.Fix(g, strategy)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, antimeridian.ErrPolygonEnclosingPole) && !errors.Is(err, antimeridian.ErrUnsupportedGeometry) {
			status = http.StatusInternalServerError
		}
		httpJSONError(w, collector, err, status)
		return
	}
	w.Header().Set("X-Geometry-Changed", fmt.Sprintf("%t", changed))

	var bbox []float64
	if mp, ok := fixed.(orb.MultiPolygon); ok && changed && strategy == antimeridian.StrategySplit {
		bbox = antimeridian.SplitBBox(mp)
	}
	payload, err := encodeFeature(fixed, bbox, props)
	if err != nil {
		httpJSONError(w, collector, err, http.StatusInternalServerError)
		return
	}
	s.write(w, collector, payload)
}

// decodeFeature accepts a GeoJSON Feature whose geometry is a Polygon or a
// MultiPolygon.
func decodeFeature(body []byte) (orb.Geometry, map[string]interface{}, error) {
	var feat geo.Feature
	if err := json.Unmarshal(body, &feat); err != nil {
		return nil, nil, errors.Wrap(err, "problem unmarshalling GeoJSON feature")
	}
	switch feat.Geometry.(type) {
	case *geo.Polygon, *geo.MultiPolygon:
	default:
		return nil, nil, errors.Wrap(antimeridian.ErrUnsupportedGeometry, "only Features containing Polygon or MultiPolygon are supported")
	}

	f, err := geojson.UnmarshalFeature(body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "problem unmarshalling GeoJSON feature")
	}
	return f.Geometry, f.Properties, nil
}

func encodeFeature(g orb.Geometry, bbox []float64, props map[string]interface{}) ([]byte, error) {
	doc := struct {
		Type       string                 `json:"type"`
		Geometry   *geojson.Geometry      `json:"geometry"`
		BBox       []float64              `json:"bbox,omitempty"`
		Properties map[string]interface{} `json:"properties"`
	}{Type: "Feature", BBox: bbox, Properties: props}

	if g != nil && !isEmpty(g) {
		doc.Geometry = geojson.NewGeometry(g)
		if bbox == nil {
			b := g.Bound()
			doc.BBox = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
		}
	}
	if doc.Properties == nil {
		doc.Properties = map[string]interface{}{}
	}
	return json.Marshal(doc)
}

func isEmpty(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return len(g) == 0
	case orb.MultiPolygon:
		return len(g) == 0
	}
	return false
}
