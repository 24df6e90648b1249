// Package gdalraster reads rasters through GDAL.
package gdalraster

// #include <stdlib.h>
// #include <string.h>
// #include "gdal.h"
// #include "ogr_srs_api.h"
// #include "cpl_conv.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
//
//char *getProj4(const char *projWKT)
//{
//	char *pszProj4 = NULL;
//	char *result;
//	OGRSpatialReferenceH hSRS;
//
//	hSRS = OSRNewSpatialReference(projWKT);
//	if (hSRS == NULL) {
//		return strdup("");
//	}
//	if (OSRExportToProj4(hSRS, &pszProj4) != OGRERR_NONE || pszProj4 == NULL) {
//		OSRDestroySpatialReference(hSRS);
//		return strdup("");
//	}
//	result = strdup(pszProj4);
//
//	OSRDestroySpatialReference(hSRS);
//	CPLFree(pszProj4);
//
//	return result;
//}
//
//int getEPSG(const char *projWKT)
//{
//	int code = 0;
//	const char *auth;
//	OGRSpatialReferenceH hSRS;
//
//	hSRS = OSRNewSpatialReference(projWKT);
//	if (hSRS == NULL) {
//		return 0;
//	}
//	OSRAutoIdentifyEPSG(hSRS);
//	auth = OSRGetAuthorityName(hSRS, NULL);
//	if (auth != NULL && EQUAL(auth, "EPSG")) {
//		code = atoi(OSRGetAuthorityCode(hSRS, NULL));
//	}
//	OSRDestroySpatialReference(hSRS);
//
//	return code;
//}
import "C"

import (
	"sync"
	"unsafe"

	"github.com/nci/rasterfoot/crs"
	"github.com/nci/rasterfoot/raster"
	"github.com/pkg/errors"
)

var gdalTypes = map[C.GDALDataType]string{
	C.GDT_Byte:    raster.Byte,
	C.GDT_UInt16:  raster.UInt16,
	C.GDT_Int16:   raster.Int16,
	C.GDT_UInt32:  raster.UInt32,
	C.GDT_Int32:   raster.Int32,
	C.GDT_Float32: raster.Float32,
	C.GDT_Float64: raster.Float64,
}

// Reader is a raster.Reader over an open GDAL dataset. A Reader must not
// be shared between goroutines.
type Reader struct {
	mu        sync.Mutex
	path      string
	ds        C.GDALDatasetH
	height    int
	width     int
	transform raster.Affine
	crs       *crs.CRS
	nBands    int
}

// Open opens href read-only. Remote HREFs are mapped onto the GDAL
// virtual file systems.
func Open(href string) (raster.Reader, error) {
	Init()

	path := VSIPath(href)
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	ds := C.GDALOpen(cPath, C.GA_ReadOnly)
	if ds == nil {
		return nil, errors.Errorf("GDAL could not open %s: %s", path, C.GoString(C.CPLGetLastErrorMsg()))
	}

	r := &Reader{
		path:   path,
		ds:     ds,
		height: int(C.GDALGetRasterYSize(ds)),
		width:  int(C.GDALGetRasterXSize(ds)),
		nBands: int(C.GDALGetRasterCount(ds)),
	}

	dArr := [6]C.double{}
	if C.GDALGetGeoTransform(ds, &dArr[0]) != C.CE_None {
		C.GDALClose(ds)
		return nil, errors.Errorf("%s has no geotransform", path)
	}
	r.transform = raster.FromGDAL(*(*[6]float64)(unsafe.Pointer(&dArr)))

	projWKT := C.GDALGetProjectionRef(ds)
	wkt := C.GoString(projWKT)
	if len(wkt) == 0 {
		C.GDALClose(ds)
		return nil, errors.Wrapf(crs.ErrUnsupportedCRS, "%s has no projection", path)
	}
	cProj4 := C.getProj4(projWKT)
	proj4 := C.GoString(cProj4)
	C.free(unsafe.Pointer(cProj4))

	c := crs.FromWKT(wkt)
	if _, ok := c.EPSG(); !ok {
		if code := int(C.getEPSG(projWKT)); code > 0 {
			if fromCode, err := crs.FromEPSG(code); err == nil {
				c = fromCode
			}
		}
	}
	if len(proj4) > 0 {
		c = c.WithProj4(proj4)
	}
	r.crs = c

	return r, nil
}

func (r *Reader) Shape() (int, int) { return r.height, r.width }

func (r *Reader) Transform() raster.Affine { return r.transform }

func (r *Reader) CRS() *crs.CRS { return r.crs }

func (r *Reader) BandIndexes() []int {
	idx := make([]int, r.nBands)
	for i := range idx {
		idx[i] = i + 1
	}
	return idx
}

func (r *Reader) band(band int) (C.GDALRasterBandH, error) {
	if r.ds == nil {
		return nil, errors.Wrapf(raster.ErrSourceUnavailable, "%s is closed", r.path)
	}
	if band < 1 || band > r.nBands {
		return nil, errors.Wrapf(raster.ErrBandOutOfRange, "band %d of %d", band, r.nBands)
	}
	return C.GDALGetRasterBand(r.ds, C.int(band)), nil
}

func (r *Reader) DataType(band int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hBand, err := r.band(band)
	if err != nil {
		return "", err
	}
	dType := C.GDALGetRasterDataType(hBand)
	name, ok := gdalTypes[dType]
	if !ok {
		return "", errors.Wrapf(raster.ErrUnsupportedDataType, "%s", C.GoString(C.GDALGetDataTypeName(dType)))
	}
	return name, nil
}

func (r *Reader) NoData(band int) (float64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hBand, err := r.band(band)
	if err != nil {
		return 0, false, err
	}
	var hasNoData C.int
	noData := float64(C.GDALGetRasterNoDataValue(hBand, &hasNoData))
	return noData, hasNoData != 0, nil
}

func (r *Reader) ReadBand(band, height, width int) (raster.Raster, error) {
	dataType, err := r.DataType(band)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	hBand, err := r.band(band)
	if err != nil {
		return nil, err
	}
	if height <= 0 || width <= 0 {
		height, width = r.height, r.width
	}

	out, err := raster.NewRaster(dataType, height, width)
	if err != nil {
		return nil, err
	}

	var buf unsafe.Pointer
	switch t := out.(type) {
	case *raster.ByteRaster:
		buf = unsafe.Pointer(&t.Data[0])
	case *raster.UInt16Raster:
		buf = unsafe.Pointer(&t.Data[0])
	case *raster.Int16Raster:
		buf = unsafe.Pointer(&t.Data[0])
	case *raster.UInt32Raster:
		buf = unsafe.Pointer(&t.Data[0])
	case *raster.Int32Raster:
		buf = unsafe.Pointer(&t.Data[0])
	case *raster.Float32Raster:
		buf = unsafe.Pointer(&t.Data[0])
	case *raster.Float64Raster:
		buf = unsafe.Pointer(&t.Data[0])
	}

	gerr := C.GDALRasterIO(hBand, C.GF_Read, 0, 0, C.int(r.width), C.int(r.height), buf,
		C.int(width), C.int(height), C.GDALGetRasterDataType(hBand), 0, 0)
	if gerr != C.CE_None {
		return nil, errors.Errorf("reading band %d of %s: %s", band, r.path, C.GoString(C.CPLGetLastErrorMsg()))
	}
	return out, nil
}

// Close releases the dataset handle.
func (r *Reader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ds != nil {
		C.GDALClose(r.ds)
		r.ds = nil
	}
	return nil
}
