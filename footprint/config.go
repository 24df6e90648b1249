package footprint

import (
	"math"

	"github.com/pkg/errors"
)

const (
	DefaultPrecision = 7
	MaxPrecision     = 15
)

var ErrInvalidConfiguration = errors.New("invalid footprint configuration")

// Options is the serialisable form of a footprint configuration. Unset
// pointer fields take their defaults.
//
// Bands distinguishes nil (band 1 only) from an empty list (all bands).
type Options struct {
	AssetNames            []string `yaml:"asset_names" json:"asset_names,omitempty"`
	Precision             *int     `yaml:"precision" json:"precision,omitempty"`
	DensificationFactor   *int     `yaml:"densification_factor" json:"densification_factor,omitempty"`
	DensificationDistance *float64 `yaml:"densification_distance" json:"densification_distance,omitempty"`
	SimplifyTolerance     *float64 `yaml:"simplify_tolerance" json:"simplify_tolerance,omitempty"`
	NoData                *float64 `yaml:"no_data" json:"no_data,omitempty"`
	Bands                 []int    `yaml:"bands" json:"bands,omitempty"`
	Sinusoidal            bool     `yaml:"sinusoidal" json:"sinusoidal,omitempty"`
}

type DensificationKind int

const (
	NoDensification DensificationKind = iota
	ByFactor
	ByDistance
)

// Densification is one of: none, by factor, by distance.
type Densification struct {
	Kind     DensificationKind
	Factor   int
	Distance float64
}

// Config is a validated footprint configuration.
type Config struct {
	AssetNames        []string
	Precision         int
	Densification     Densification
	SimplifyTolerance float64
	NoData            *float64
	Bands             []int
	Sinusoidal        bool
}

// DefaultConfig reads band 1 at precision 7 with neither densification
// nor simplification.
func DefaultConfig() *Config {
	return &Config{Precision: DefaultPrecision}
}

// NewConfig validates o before any raster is touched.
func NewConfig(o Options) (*Config, error) {
	c := DefaultConfig()
	c.AssetNames = o.AssetNames
	c.Sinusoidal = o.Sinusoidal

	if o.Precision != nil {
		if *o.Precision < 0 || *o.Precision > MaxPrecision {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "precision %d not in [0, %d]", *o.Precision, MaxPrecision)
		}
		c.Precision = *o.Precision
	}

	if o.DensificationFactor != nil && o.DensificationDistance != nil {
		return nil, errors.Wrap(ErrInvalidConfiguration, "densification_factor and densification_distance are mutually exclusive")
	}
	if o.DensificationFactor != nil {
		if *o.DensificationFactor < 1 {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "densification_factor %d < 1", *o.DensificationFactor)
		}
		c.Densification = Densification{Kind: ByFactor, Factor: *o.DensificationFactor}
	}
	if o.DensificationDistance != nil {
		d := *o.DensificationDistance
		if !(d > 0) || math.IsInf(d, 0) {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "densification_distance %v must be positive", d)
		}
		c.Densification = Densification{Kind: ByDistance, Distance: d}
	}

	if o.SimplifyTolerance != nil {
		tol := *o.SimplifyTolerance
		if !(tol > 0) || math.IsInf(tol, 0) {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "simplify_tolerance %v must be positive", tol)
		}
		c.SimplifyTolerance = tol
	}

	if o.NoData != nil {
		nd := *o.NoData
		c.NoData = &nd
	}

	if o.Bands != nil {
		c.Bands = append([]int{}, o.Bands...)
	}

	return c, nil
}
