// Package crawl walks a directory tree and emits the footprint of every
// raster file selected by a pattern expression.
package crawl

import (
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	goeval "github.com/edisonguo/govaluate"
	"github.com/nci/rasterfoot/utils"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

const DefaultMaxErrors = 1000

// Footprinter computes the footprint of the raster at href.
type Footprinter interface {
	Footprint(href string) (orb.Polygon, error)
}

// FootprintFunc adapts a function to the Footprinter interface.
type FootprintFunc func(href string) (orb.Polygon, error)

func (f FootprintFunc) Footprint(href string) (orb.Polygon, error) {
	return f(href)
}

// ParsePattern compiles a filter expression over the variables path and
// type ("d" or "f"). An empty pattern selects everything.
func ParsePattern(pattern string) (*goeval.EvaluableExpression, error) {
	if len(strings.TrimSpace(pattern)) == 0 {
		return nil, nil
	}

	expr, err := goeval.NewEvaluableExpression(pattern)
	if err != nil {
		return nil, errors.Wrap(err, "pattern expression")
	}

	validVariables := map[string]struct{}{"path": struct{}{}, "type": struct{}{}}
	for _, token := range expr.Tokens() {
		if token.Kind != goeval.VARIABLE {
			continue
		}
		varName, ok := token.Value.(string)
		if !ok {
			return nil, errors.Errorf("variable token '%v' failed to cast string", token.Value)
		}
		if _, found := validVariables[varName]; !found {
			return nil, errors.Errorf("variable %v is not supported. Valid variables are path and type", varName)
		}
	}
	return expr, nil
}

// Crawler walks directories with at most conc concurrent directory
// readers and conc concurrent footprint computations. Records are written
// to the sink by a single goroutine.
type Crawler struct {
	Log *utils.Logger
	// Index, when set, receives every record after it is written.
	Index func(rec *Record) error

	outputs       chan *Record
	errs          chan error
	wg            sync.WaitGroup
	concLimit     chan struct{}
	workers       *ConcLimiter
	outputDone    chan struct{}
	pattern       *goeval.EvaluableExpression
	followSymlink bool
	format        string
	footprinter   Footprinter
	sink          io.Writer
}

func NewCrawler(conc int, pattern string, followSymlink bool, format string, footprinter Footprinter, sink io.Writer) (*Crawler, error) {
	if conc < 1 {
		conc = 1
	}
	if format != FormatJSON && format != FormatTSV {
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
	expr, err := ParsePattern(pattern)
	if err != nil {
		return nil, err
	}
	return &Crawler{
		Log:           utils.DiscardLogger(),
		concLimit:     make(chan struct{}, conc),
		workers:       NewConcLimiter(conc),
		pattern:       expr,
		followSymlink: followSymlink,
		format:        format,
		footprinter:   footprinter,
		sink:          sink,
	}, nil
}

// Crawl walks root and blocks until every selected file has been written.
// Per-file footprint failures are recorded in the record; directory and
// stat failures are collected and returned together.
func (pc *Crawler) Crawl(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	pc.outputs = make(chan *Record, 4096)
	pc.errs = make(chan error, 100)
	pc.outputDone = make(chan struct{}, 1)
	go pc.outputResult()

	pc.wg.Add(1)
	pc.concLimit <- struct{}{}
	pc.crawlDir(absRoot, false)
	pc.wg.Wait()
	pc.workers.Wait()

	close(pc.outputs)
	<-pc.outputDone

	close(pc.errs)
	var msgs []string
	for err := range pc.errs {
		msgs = append(msgs, err.Error())
		if len(msgs) >= DefaultMaxErrors {
			msgs = append(msgs, " ... too many errors")
			break
		}
	}
	if len(msgs) > 0 {
		return errors.New(strings.Join(msgs, "\n"))
	}
	return nil
}

func (pc *Crawler) reportError(err error) {
	pc.Log.Error.Printf("%v", err)
	select {
	case pc.errs <- err:
	default:
	}
}

func (pc *Crawler) crawlDir(currPath string, serialised bool) {
	defer pc.wg.Done()
	if !serialised {
		defer func() { <-pc.concLimit }()
	}

	entries, err := readDir(currPath)
	if err != nil {
		pc.reportError(err)
		return
	}

	for _, fi := range entries {
		filePath := path.Join(currPath, fi.Name())
		mode := fi.Mode()

		if mode&os.ModeSymlink != 0 {
			if !pc.followSymlink {
				continue
			}
			fi, err = os.Stat(filePath)
			if err != nil {
				pc.reportError(err)
				continue
			}
			mode = fi.Mode()
		}

		if !mode.IsDir() && !mode.IsRegular() {
			continue
		}

		if pc.pattern != nil {
			ok, err := pc.evaluatePattern(filePath, mode.IsDir())
			if err != nil {
				pc.reportError(err)
				continue
			}
			if !ok {
				continue
			}
		}

		if mode.IsDir() {
			pc.wg.Add(1)
			select {
			case pc.concLimit <- struct{}{}:
				go pc.crawlDir(filePath, false)
			default:
				pc.crawlDir(filePath, true)
			}
			continue
		}

		rec := NewRecord(filePath, fi)
		pc.workers.Go(func() {
			pc.outputs <- pc.footprint(rec)
		})
	}
}

func (pc *Crawler) footprint(rec *Record) *Record {
	poly, err := pc.footprinter.Footprint(rec.Path)
	if err != nil {
		rec.Error = err.Error()
		return rec
	}
	rec.SetFootprint(poly)
	return rec
}

func readDir(dir string) ([]os.FileInfo, error) {
	dh, err := os.Open(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open dir")
	}
	defer dh.Close()

	entries, err := dh.Readdir(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read dir %s", dir)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}

func (pc *Crawler) evaluatePattern(filePath string, isDir bool) (bool, error) {
	fileType := "f"
	if isDir {
		fileType = "d"
	}

	result, err := pc.pattern.Evaluate(map[string]interface{}{"type": fileType, "path": filePath})
	if err != nil {
		return false, errors.Wrap(err, "pattern expression")
	}

	val, ok := result.(bool)
	if !ok {
		return false, errors.Errorf("pattern expression: result '%v' is not boolean", result)
	}
	return val, nil
}

func (pc *Crawler) outputResult() {
	for rec := range pc.outputs {
		if err := Encode(pc.sink, rec, pc.format); err != nil {
			pc.reportError(err)
		}
		if pc.Index != nil {
			if err := pc.Index(rec); err != nil {
				pc.reportError(err)
			}
		}
	}
	pc.outputDone <- struct{}{}
}
