package raster

import (
	"github.com/nci/rasterfoot/crs"
	"github.com/pkg/errors"
)

type memBand struct {
	data   Raster
	noData *float64
}

// MemReader is a Reader over bands held in memory.
type MemReader struct {
	height, width int
	transform     Affine
	crs           *crs.CRS
	bands         []memBand
	closed        bool
}

func NewMemReader(height, width int, transform Affine, c *crs.CRS) *MemReader {
	return &MemReader{height: height, width: width, transform: transform, crs: c}
}

// AddBand appends a band. A nil noData means the band declares none.
func (m *MemReader) AddBand(r Raster, noData *float64) error {
	h, w := r.Dims()
	if h != m.height || w != m.width {
		return errors.Errorf("band shape %dx%d does not match raster shape %dx%d", h, w, m.height, m.width)
	}
	m.bands = append(m.bands, memBand{data: r, noData: noData})
	return nil
}

func (m *MemReader) Shape() (int, int) { return m.height, m.width }

func (m *MemReader) Transform() Affine { return m.transform }

func (m *MemReader) CRS() *crs.CRS { return m.crs }

func (m *MemReader) BandIndexes() []int {
	idx := make([]int, len(m.bands))
	for i := range m.bands {
		idx[i] = i + 1
	}
	return idx
}

func (m *MemReader) band(band int) (*memBand, error) {
	if band < 1 || band > len(m.bands) {
		return nil, errors.Wrapf(ErrBandOutOfRange, "band %d of %d", band, len(m.bands))
	}
	return &m.bands[band-1], nil
}

func (m *MemReader) DataType(band int) (string, error) {
	b, err := m.band(band)
	if err != nil {
		return "", err
	}
	return b.data.DataType(), nil
}

func (m *MemReader) NoData(band int) (float64, bool, error) {
	b, err := m.band(band)
	if err != nil {
		return 0, false, err
	}
	if b.noData == nil {
		return 0, false, nil
	}
	return *b.noData, true, nil
}

func (m *MemReader) ReadBand(band, height, width int) (Raster, error) {
	if m.closed {
		return nil, errors.Wrap(ErrSourceUnavailable, "reader is closed")
	}
	b, err := m.band(band)
	if err != nil {
		return nil, err
	}
	if height <= 0 || width <= 0 || (height == m.height && width == m.width) {
		return b.data, nil
	}
	return resample(b.data, height, width)
}

func (m *MemReader) Close() error {
	m.closed = true
	return nil
}

// Closed reports whether Close has been called since the reader was last
// handed out by an opener.
func (m *MemReader) Closed() bool {
	return m.closed
}

// MemOpener returns an Opener serving the given readers by HREF.
func MemOpener(readers map[string]*MemReader) Opener {
	return func(href string) (Reader, error) {
		r, ok := readers[href]
		if !ok {
			return nil, errors.Errorf("no such raster: %s", href)
		}
		r.closed = false
		return r, nil
	}
}

// resample picks the nearest source pixel for each output pixel centre.
func resample(src Raster, height, width int) (Raster, error) {
	srcH, srcW := src.Dims()
	idx := make([]int, height*width)
	for r := 0; r < height; r++ {
		sr := nearest(r, height, srcH)
		for c := 0; c < width; c++ {
			idx[r*width+c] = sr*srcW + nearest(c, width, srcW)
		}
	}

	out, err := NewRaster(src.DataType(), height, width)
	if err != nil {
		return nil, err
	}
	switch t := src.(type) {
	case *ByteRaster:
		o := out.(*ByteRaster)
		for i, j := range idx {
			o.Data[i] = t.Data[j]
		}
	case *UInt16Raster:
		o := out.(*UInt16Raster)
		for i, j := range idx {
			o.Data[i] = t.Data[j]
		}
	case *Int16Raster:
		o := out.(*Int16Raster)
		for i, j := range idx {
			o.Data[i] = t.Data[j]
		}
	case *UInt32Raster:
		o := out.(*UInt32Raster)
		for i, j := range idx {
			o.Data[i] = t.Data[j]
		}
	case *Int32Raster:
		o := out.(*Int32Raster)
		for i, j := range idx {
			o.Data[i] = t.Data[j]
		}
	case *Float32Raster:
		o := out.(*Float32Raster)
		for i, j := range idx {
			o.Data[i] = t.Data[j]
		}
	case *Float64Raster:
		o := out.(*Float64Raster)
		for i, j := range idx {
			o.Data[i] = t.Data[j]
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedDataType, "%T", src)
	}
	return out, nil
}

func nearest(i, n, srcN int) int {
	s := int((float64(i) + 0.5) * float64(srcN) / float64(n))
	if s >= srcN {
		s = srcN - 1
	}
	return s
}
