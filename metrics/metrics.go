// Package metrics records one JSON line per footprint computation or API
// request.
package metrics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/url"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
)

type URLInfo struct {
	RawURL string            `json:"raw_url"`
	Host   string            `json:"host"`
	Path   string            `json:"path"`
	Query  map[string]string `json:"query"`
}

// FootprintInfo describes a single footprint computation.
type FootprintInfo struct {
	Href           string        `json:"href"`
	Duration       time.Duration `json:"duration"`
	Height         int           `json:"height"`
	Width          int           `json:"width"`
	Bands          []int         `json:"bands"`
	CRS            string        `json:"crs"`
	NumRegions     int           `json:"num_regions"`
	NumVertices    int           `json:"num_vertices"`
	NumOutVertices int           `json:"num_out_vertices"`
	Geometry       string        `json:"geometry"`
	GeometryArea   float64       `json:"geometry_area"`
	Degenerate     bool          `json:"degenerate"`
	Error          string        `json:"error,omitempty"`

	Polygon orb.Polygon `json:"-"`
}

type MetricsInfo struct {
	ReqTime     string         `json:"req_time"`
	ReqDuration time.Duration  `json:"req_duration"`
	URL         URLInfo        `json:"url"`
	RemoteAddr  string         `json:"remote_addr"`
	RemoteHost  string         `json:"remote_host"`
	RemotePort  string         `json:"remote_port"`
	HTTPStatus  int            `json:"http_status"`
	CacheHit    bool           `json:"cache_hit"`
	Footprint   *FootprintInfo `json:"footprint"`
}

type MetricsCollector struct {
	Info   *MetricsInfo
	logger Logger
}

func NewMetricsCollector(logger Logger) *MetricsCollector {
	return &MetricsCollector{
		Info: &MetricsInfo{
			Footprint: &FootprintInfo{},
		},
		logger: logger,
	}
}

func (m *MetricsCollector) Log() {
	if m.logger != nil {
		m.logger.Log(m.Info)
	}
}

func (i *MetricsInfo) ToJSON() (string, error) {
	if len(i.RemoteAddr) > 0 {
		i.normaliseNetworkAddr(i.RemoteAddr)
	}
	if len(i.URL.RawURL) > 0 {
		if err := i.URL.normalise(); err != nil {
			log.Printf("metrics: normalise url error: %v", err)
		}
	}
	if i.Footprint != nil {
		i.Footprint.normaliseGeometry()
	}

	buf := new(bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(i); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (i *MetricsInfo) normaliseNetworkAddr(addr string) {
	host, port, err := net.SplitHostPort(addr)
	if err == nil {
		i.RemoteHost = host
		i.RemotePort = port
	} else {
		i.RemoteHost = addr
	}
}

func (u *URLInfo) normalise() error {
	r, err := url.Parse(u.RawURL)
	if err != nil {
		return err
	}

	u.Host = r.Host
	u.Path = r.Path
	query, err := url.ParseQuery(r.RawQuery)
	if err != nil {
		return err
	}

	if u.Query == nil {
		u.Query = make(map[string]string)
	}
	for k, v := range query {
		switch {
		case len(v) == 1:
			u.Query[k] = v[0]
		case len(v) > 1:
			u.Query[k] = fmt.Sprintf("%v", v)
		default:
			u.Query[k] = ""
		}
	}
	return nil
}

// normaliseGeometry renders the footprint polygon as WKT with its area in
// square degrees.
func (f *FootprintInfo) normaliseGeometry() {
	if len(f.Polygon) == 0 {
		if len(f.Geometry) == 0 {
			f.Geometry = "POLYGON EMPTY"
		}
		return
	}
	f.Geometry = wkt.MarshalString(f.Polygon)
	f.GeometryArea = planar.Area(f.Polygon)
	f.NumOutVertices = len(f.Polygon[0])
}
