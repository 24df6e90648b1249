package footprint

import (
	"math"

	"github.com/nci/rasterfoot/raster"
	"github.com/pkg/errors"
)

// ResolveBands returns the bands that take part in the mask: band 1 for
// nil, every band for an empty list.
func ResolveBands(r raster.Reader, bands []int) ([]int, error) {
	all := r.BandIndexes()
	if len(all) == 0 {
		return nil, raster.ErrNoBandsAvailable
	}
	if bands == nil {
		bands = []int{1}
	}
	if len(bands) == 0 {
		return all, nil
	}
	for _, b := range bands {
		if err := raster.CheckBand(r, b); err != nil {
			return nil, err
		}
	}
	return bands, nil
}

// DataMask returns a height*width row-major mask, 1 where at least one of
// the bands holds data. noData overrides the nodata declared by every
// band. When no band has a nodata value the whole raster is valid.
func DataMask(r raster.Reader, bands []int, noData *float64) ([]uint8, error) {
	bands, err := ResolveBands(r, bands)
	if err != nil {
		return nil, err
	}

	type bandNoData struct {
		band  int
		value float64
		ok    bool
	}
	nds := make([]bandNoData, len(bands))
	anyNoData := false
	for i, b := range bands {
		nds[i].band = b
		if noData != nil {
			nds[i].value, nds[i].ok = *noData, true
		} else {
			v, ok, err := r.NoData(b)
			if err != nil {
				return nil, err
			}
			nds[i].value, nds[i].ok = v, ok
		}
		anyNoData = anyNoData || nds[i].ok
	}

	height, width := r.Shape()
	mask := make([]uint8, height*width)
	if !anyNoData {
		fill(mask)
		return mask, nil
	}

	for _, nd := range nds {
		if !nd.ok {
			// a band without nodata is valid everywhere
			fill(mask)
			return mask, nil
		}
		data, err := r.ReadBand(nd.band, height, width)
		if err != nil {
			return nil, err
		}
		if err := markValid(mask, data, nd.value); err != nil {
			return nil, errors.Wrapf(err, "band %d", nd.band)
		}
	}
	return mask, nil
}

func fill(mask []uint8) {
	for i := range mask {
		mask[i] = 1
	}
}

// markValid sets mask cells to 1 where the band differs from noData.
func markValid(mask []uint8, data raster.Raster, noData float64) error {
	h, w := data.Dims()
	if h*w != len(mask) {
		return errors.Errorf("band shape %dx%d does not match mask of %d cells", h, w, len(mask))
	}

	if math.IsNaN(noData) {
		switch t := data.(type) {
		case *raster.Float32Raster:
			for i, v := range t.Data {
				if v == v {
					mask[i] = 1
				}
			}
		case *raster.Float64Raster:
			for i, v := range t.Data {
				if !math.IsNaN(v) {
					mask[i] = 1
				}
			}
		default:
			// integers are never NaN
			fill(mask)
		}
		return nil
	}

	switch t := data.(type) {
	case *raster.ByteRaster:
		for i, v := range t.Data {
			if float64(v) != noData {
				mask[i] = 1
			}
		}
	case *raster.UInt16Raster:
		for i, v := range t.Data {
			if float64(v) != noData {
				mask[i] = 1
			}
		}
	case *raster.Int16Raster:
		for i, v := range t.Data {
			if float64(v) != noData {
				mask[i] = 1
			}
		}
	case *raster.UInt32Raster:
		for i, v := range t.Data {
			if float64(v) != noData {
				mask[i] = 1
			}
		}
	case *raster.Int32Raster:
		for i, v := range t.Data {
			if float64(v) != noData {
				mask[i] = 1
			}
		}
	case *raster.Float32Raster:
		nd := float32(noData)
		for i, v := range t.Data {
			if v != nd {
				mask[i] = 1
			}
		}
	case *raster.Float64Raster:
		for i, v := range t.Data {
			if v != noData {
				mask[i] = 1
			}
		}
	default:
		return errors.Wrapf(raster.ErrUnsupportedDataType, "%T", data)
	}
	return nil
}
