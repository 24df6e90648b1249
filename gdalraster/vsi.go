package gdalraster

import "strings"

var vsiPrefixes = []struct {
	scheme string
	prefix string
}{
	{"http://", "/vsicurl/http://"},
	{"https://", "/vsicurl/https://"},
	{"s3://", "/vsis3/"},
	{"gs://", "/vsigs/"},
	{"file://", ""},
}

// VSIPath maps an HREF onto the path GDALOpen understands. Remote
// objects go through the GDAL virtual file systems.
func VSIPath(href string) string {
	for _, p := range vsiPrefixes {
		if strings.HasPrefix(href, p.scheme) {
			return p.prefix + href[len(p.scheme):]
		}
	}
	return href
}
