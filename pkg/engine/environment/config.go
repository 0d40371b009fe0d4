package environment

import (
	"fmt"

	"lintang/cityrouter/pkg/datastructure"
)

// Coverage bounds the share of the total road length one dimension tries to cover with clusters.
type Coverage struct {
	Min float64
	Max float64
}

type Config struct {
	Weather     Coverage
	Traffic     Coverage
	Obstruction Coverage

	// LightDefault is the upper bound of the ambient value given to nodes no cluster reached.
	// It is also the lower bound of a cluster's epicenter severity.
	LightDefault  float64
	SeverityBound float64
	MinDecay      float64
	// MaxClusters stops a dimension early when clusters keep covering nothing. Zero means unlimited.
	MaxClusters int
}

func DefaultConfig() Config {
	return Config{
		Weather:       Coverage{Min: 0.1, Max: 0.6},
		Traffic:       Coverage{Min: 0.1, Max: 0.6},
		Obstruction:   Coverage{Min: 0.1, Max: 0.5},
		LightDefault:  0.333,
		SeverityBound: 0.7,
		MinDecay:      0.001,
		MaxClusters:   100000,
	}
}

func (c Config) coverage(d datastructure.ConditionDimension) Coverage {
	switch d {
	case datastructure.WEATHER:
		return c.Weather
	case datastructure.TRAFFIC:
		return c.Traffic
	default:
		return c.Obstruction
	}
}

func (c Config) Validate() error {
	for _, d := range dimensionOrder {
		cov := c.coverage(d)
		if cov.Min < 0 || cov.Max > 1 || cov.Min >= cov.Max {
			return fmt.Errorf("%w: %s coverage must satisfy 0 <= min < max <= 1, got [%v, %v)",
				datastructure.ErrConfig, d, cov.Min, cov.Max)
		}
	}
	if c.LightDefault <= 0 || c.LightDefault >= c.SeverityBound || c.SeverityBound > 1 {
		return fmt.Errorf("%w: need 0 < light default < severity bound <= 1, got %v and %v",
			datastructure.ErrConfig, c.LightDefault, c.SeverityBound)
	}
	if c.MinDecay <= 0 || c.MinDecay > 1 {
		return fmt.Errorf("%w: min decay must be within (0,1], got %v", datastructure.ErrConfig, c.MinDecay)
	}
	if c.MaxClusters < 0 {
		return fmt.Errorf("%w: max clusters must not be negative, got %d", datastructure.ErrConfig, c.MaxClusters)
	}
	return nil
}
