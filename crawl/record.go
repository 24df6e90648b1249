package crawl

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
)

const (
	FormatJSON = "json"
	FormatTSV  = "tsv"
)

var ErrUnknownFormat = errors.New("unknown output format")

// Record is the crawl output for one raster file.
type Record struct {
	Path     string            `json:"file_path"`
	ID       string            `json:"id"`
	INode    uint64            `json:"inode"`
	Size     int64             `json:"size"`
	MTime    time.Time         `json:"mtime"`
	Geometry *geojson.Geometry `json:"geometry"`
	BBox     []float64         `json:"bbox,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// NewRecord fills the posix part of a record. The ID changes whenever the
// file is replaced or modified.
func NewRecord(filePath string, fStat os.FileInfo) *Record {
	rec := &Record{
		Path:  filePath,
		Size:  fStat.Size(),
		MTime: fStat.ModTime().UTC(),
	}
	if stat, ok := fStat.Sys().(*syscall.Stat_t); ok {
		rec.INode = uint64(stat.Ino)
	}
	signature := fmt.Sprintf("%s%d%d%d", filePath, rec.INode, rec.Size, rec.MTime.UnixNano())
	rec.ID = fmt.Sprintf("%x", md5.Sum([]byte(signature)))
	return rec
}

// SetFootprint stores poly as the record geometry. A nil polygon leaves
// the geometry null.
func (r *Record) SetFootprint(poly orb.Polygon) {
	if len(poly) == 0 {
		r.Geometry = nil
		r.BBox = nil
		return
	}
	r.Geometry = geojson.NewGeometry(poly)
	b := poly.Bound()
	r.BBox = []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

// Polygon returns the record geometry, nil when there is none.
func (r *Record) Polygon() orb.Polygon {
	if r.Geometry == nil {
		return nil
	}
	poly, _ := r.Geometry.Geometry().(orb.Polygon)
	return poly
}

// Encode writes rec as one line in the given format. The tsv format
// prefixes the JSON document with the path and the record kind.
func Encode(w io.Writer, rec *Record, format string) error {
	out, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	switch format {
	case FormatJSON, "":
		_, err = fmt.Fprintf(w, "%s\n", out)
	case FormatTSV:
		_, err = fmt.Fprintf(w, "%s\tposix\t%s\n", rec.Path, out)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	return err
}
