package raster

import "github.com/pkg/errors"

// GDAL data type names reported by readers.
const (
	Byte    = "Byte"
	UInt16  = "UInt16"
	Int16   = "Int16"
	UInt32  = "UInt32"
	Int32   = "Int32"
	Float32 = "Float32"
	Float64 = "Float64"
)

// Raster is a single band of samples in row-major order.
type Raster interface {
	Dims() (height, width int)
	DataType() string
}

type ByteRaster struct {
	Data          []uint8
	Height, Width int
}

func (br *ByteRaster) Dims() (int, int) { return br.Height, br.Width }
func (br *ByteRaster) DataType() string  { return Byte }

type UInt16Raster struct {
	Data          []uint16
	Height, Width int
}

func (u16 *UInt16Raster) Dims() (int, int) { return u16.Height, u16.Width }
func (u16 *UInt16Raster) DataType() string  { return UInt16 }

type Int16Raster struct {
	Data          []int16
	Height, Width int
}

func (s16 *Int16Raster) Dims() (int, int) { return s16.Height, s16.Width }
func (s16 *Int16Raster) DataType() string  { return Int16 }

type UInt32Raster struct {
	Data          []uint32
	Height, Width int
}

func (u32 *UInt32Raster) Dims() (int, int) { return u32.Height, u32.Width }
func (u32 *UInt32Raster) DataType() string  { return UInt32 }

type Int32Raster struct {
	Data          []int32
	Height, Width int
}

func (s32 *Int32Raster) Dims() (int, int) { return s32.Height, s32.Width }
func (s32 *Int32Raster) DataType() string  { return Int32 }

type Float32Raster struct {
	Data          []float32
	Height, Width int
}

func (f32 *Float32Raster) Dims() (int, int) { return f32.Height, f32.Width }
func (f32 *Float32Raster) DataType() string  { return Float32 }

type Float64Raster struct {
	Data          []float64
	Height, Width int
}

func (f64 *Float64Raster) Dims() (int, int) { return f64.Height, f64.Width }
func (f64 *Float64Raster) DataType() string  { return Float64 }

// NewRaster allocates a zeroed band of the named data type.
func NewRaster(dataType string, height, width int) (Raster, error) {
	n := height * width
	switch dataType {
	case Byte:
		return &ByteRaster{Data: make([]uint8, n), Height: height, Width: width}, nil
	case UInt16:
		return &UInt16Raster{Data: make([]uint16, n), Height: height, Width: width}, nil
	case Int16:
		return &Int16Raster{Data: make([]int16, n), Height: height, Width: width}, nil
	case UInt32:
		return &UInt32Raster{Data: make([]uint32, n), Height: height, Width: width}, nil
	case Int32:
		return &Int32Raster{Data: make([]int32, n), Height: height, Width: width}, nil
	case Float32:
		return &Float32Raster{Data: make([]float32, n), Height: height, Width: width}, nil
	case Float64:
		return &Float64Raster{Data: make([]float64, n), Height: height, Width: width}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedDataType, "%q", dataType)
}
