package footprint

import (
	"math"
	"testing"

	"github.com/nci/rasterfoot/crs"
	"github.com/nci/rasterfoot/raster"
	"github.com/pkg/errors"
)

func newReader(t *testing.T, height, width int, bands ...raster.Raster) *raster.MemReader {
	c, _ := crs.FromEPSG(4326)
	m := raster.NewMemReader(height, width, raster.Affine{1, 0, 0, 0, -1, float64(height)}, c)
	for _, b := range bands {
		if err := m.AddBand(b, nil); err != nil {
			t.Fatal(err)
		}
	}
	return m
}

func equalMask(a, b []uint8) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDataMaskNoData(t *testing.T) {
	c, _ := crs.FromEPSG(4326)
	m := raster.NewMemReader(2, 3, raster.Affine{1, 0, 0, 0, -1, 2}, c)
	zero := 0.0
	m.AddBand(&raster.UInt16Raster{Data: []uint16{0, 5, 0, 7, 0, 0}, Height: 2, Width: 3}, &zero)

	mask, err := DataMask(m, nil, nil)
	if err != nil {
		t.Fatalf("DataMask: %v", err)
	}
	if !equalMask(mask, []uint8{0, 1, 0, 1, 0, 0}) {
		t.Errorf("unexpected mask %v", mask)
	}

	five := 5.0
	mask, _ = DataMask(m, nil, &five)
	if !equalMask(mask, []uint8{1, 0, 1, 1, 1, 1}) {
		t.Errorf("override not applied: %v", mask)
	}
}

func TestDataMaskWithoutNoData(t *testing.T) {
	m := newReader(t, 2, 2, &raster.ByteRaster{Data: []uint8{0, 0, 0, 0}, Height: 2, Width: 2})
	mask, err := DataMask(m, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !equalMask(mask, []uint8{1, 1, 1, 1}) {
		t.Errorf("expected everything valid, got %v", mask)
	}
}

func TestDataMaskFloat(t *testing.T) {
	nan := float32(math.NaN())
	m := newReader(t, 1, 4,
		&raster.Float32Raster{Data: []float32{nan, 1, -9999, 2}, Height: 1, Width: 4})

	nd := math.NaN()
	mask, _ := DataMask(m, nil, &nd)
	if !equalMask(mask, []uint8{0, 1, 1, 1}) {
		t.Errorf("NaN nodata: unexpected mask %v", mask)
	}

	nd = -9999
	mask, _ = DataMask(m, nil, &nd)
	if !equalMask(mask, []uint8{1, 1, 0, 1}) {
		t.Errorf("-9999 nodata: unexpected mask %v", mask)
	}

	// integer bands have no NaN samples
	i := newReader(t, 1, 2, &raster.Int16Raster{Data: []int16{0, 1}, Height: 1, Width: 2})
	nd = math.NaN()
	mask, _ = DataMask(i, nil, &nd)
	if !equalMask(mask, []uint8{1, 1}) {
		t.Errorf("integer band with NaN nodata: unexpected mask %v", mask)
	}
}

func TestDataMaskBands(t *testing.T) {
	nan := math.NaN()
	b1 := &raster.Float64Raster{Data: []float64{nan, nan, 1, nan}, Height: 2, Width: 2}
	b2 := &raster.Float64Raster{Data: []float64{nan, 2, nan, nan}, Height: 2, Width: 2}
	b3 := &raster.Float64Raster{Data: []float64{nan, nan, nan, nan}, Height: 2, Width: 2}
	m := newReader(t, 2, 2, b1, b2, b3)

	cases := []struct {
		bands    []int
		expected []uint8
	}{
		{nil, []uint8{0, 0, 1, 0}},
		{[]int{2}, []uint8{0, 1, 0, 0}},
		{[]int{3}, []uint8{0, 0, 0, 0}},
		{[]int{1, 2}, []uint8{0, 1, 1, 0}},
		{[]int{2, 1}, []uint8{0, 1, 1, 0}},
		{[]int{3, 2, 1}, []uint8{0, 1, 1, 0}},
		{[]int{1, 3, 2}, []uint8{0, 1, 1, 0}},
		{[]int{}, []uint8{0, 1, 1, 0}},
	}
	for _, tc := range cases {
		mask, err := DataMask(m, tc.bands, &nan)
		if err != nil {
			t.Errorf("bands %v: %v", tc.bands, err)
			continue
		}
		if !equalMask(mask, tc.expected) {
			t.Errorf("bands %v: expected %v, got %v", tc.bands, tc.expected, mask)
		}
	}

	if _, err := DataMask(m, []int{1, 4}, &nan); !errors.Is(err, raster.ErrBandOutOfRange) {
		t.Errorf("expected ErrBandOutOfRange, got %v", err)
	}
	if _, err := DataMask(m, []int{0}, &nan); !errors.Is(err, raster.ErrBandOutOfRange) {
		t.Errorf("expected ErrBandOutOfRange, got %v", err)
	}
}

func TestDataMaskMixedNoData(t *testing.T) {
	c, _ := crs.FromEPSG(4326)
	m := raster.NewMemReader(1, 2, raster.Affine{1, 0, 0, 0, -1, 1}, c)
	zero := 0.0
	m.AddBand(&raster.ByteRaster{Data: []uint8{0, 0}, Height: 1, Width: 2}, &zero)
	m.AddBand(&raster.ByteRaster{Data: []uint8{0, 0}, Height: 1, Width: 2}, nil)

	mask, err := DataMask(m, []int{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !equalMask(mask, []uint8{1, 1}) {
		t.Errorf("a band without nodata should make every cell valid, got %v", mask)
	}
}

func TestDataMaskNoBands(t *testing.T) {
	m := newReader(t, 1, 1)
	if _, err := DataMask(m, nil, nil); !errors.Is(err, raster.ErrNoBandsAvailable) {
		t.Errorf("expected ErrNoBandsAvailable, got %v", err)
	}
}
