// Package raster describes georeferenced raster sources: their shape,
// transform, CRS and per-band samples.
package raster

import (
	"github.com/nci/rasterfoot/crs"
	"github.com/pkg/errors"
)

var (
	ErrSourceUnavailable   = errors.New("raster source unavailable")
	ErrBandOutOfRange      = errors.New("band index out of range")
	ErrNoBandsAvailable    = errors.New("raster has no bands")
	ErrUnsupportedDataType = errors.New("unsupported band data type")
)

// Reader is an open raster source. Bands are numbered from 1.
type Reader interface {
	Shape() (height, width int)
	Transform() Affine
	CRS() *crs.CRS
	BandIndexes() []int
	DataType(band int) (string, error)

	// NoData returns the declared nodata value of a band. The boolean is
	// false when the band has none. The value may be NaN.
	NoData(band int) (float64, bool, error)

	// ReadBand reads a whole band. A zero height or width reads at the
	// native shape, anything else is resampled to height x width.
	ReadBand(band, height, width int) (Raster, error)

	Close() error
}

// ReadHrefModifier rewrites an HREF before it is opened, for instance to
// sign a URL.
type ReadHrefModifier func(href string) string

// Opener opens a raster source by HREF.
type Opener func(href string) (Reader, error)

// Identity leaves the HREF untouched.
func Identity(href string) string {
	return href
}

// Open applies modify to href and opens the result. Any failure of the
// opener is reported as ErrSourceUnavailable.
func Open(open Opener, href string, modify ReadHrefModifier) (Reader, error) {
	if modify == nil {
		modify = Identity
	}
	if open == nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s: no opener", href)
	}
	target := modify(href)
	r, err := open(target)
	if err != nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s: %v", target, err)
	}
	if r == nil {
		return nil, errors.Wrapf(ErrSourceUnavailable, "%s", target)
	}
	return r, nil
}

// CheckBand reports ErrBandOutOfRange if band is not one of r's bands.
func CheckBand(r Reader, band int) error {
	for _, b := range r.BandIndexes() {
		if b == band {
			return nil
		}
	}
	return errors.Wrapf(ErrBandOutOfRange, "band %d of %d", band, len(r.BandIndexes()))
}
