package antimeridian

import (
	"github.com/nci/rasterfoot/stac"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
)

// FixItem repairs the geometry of item in place. With StrategySplit the
// bbox follows RFC 7946 section 5.2; with StrategyNormalize it is the
// ordinary bounds of the normalized geometry.
func FixItem(item *stac.Item, s Strategy) (bool, error) {
	g := item.OrbGeometry()
	if g == nil {
		return false, errors.Wrapf(ErrUnsupportedGeometry, "item %s has no geometry", item.ID)
	}

	fixed, changed, err := Fix(g, s)
	if err != nil {
		return false, errors.Wrapf(err, "item %s", item.ID)
	}
	if !changed {
		return false, nil
	}

	if mp, ok := fixed.(orb.MultiPolygon); ok && s == StrategySplit {
		item.SetGeometryAndBBox(mp, SplitBBox(mp))
	} else {
		item.SetGeometry(fixed)
	}
	return true, nil
}
