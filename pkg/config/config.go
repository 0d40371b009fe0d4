package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"lintang/cityrouter/pkg/datastructure"
	"lintang/cityrouter/pkg/engine/environment"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"gopkg.in/yaml.v3"
)

type Coverage struct {
	Min float64 `yaml:"min" validate:"gte=0,ltfield=Max"`
	Max float64 `yaml:"max" validate:"lte=1"`
}

type Environment struct {
	Weather       Coverage `yaml:"weather"`
	Traffic       Coverage `yaml:"traffic"`
	Obstruction   Coverage `yaml:"obstruction"`
	LightDefault  float64  `yaml:"light_default" validate:"gt=0,ltfield=SeverityBound"`
	SeverityBound float64  `yaml:"severity_bound" validate:"lte=1"`
	MinDecay      float64  `yaml:"min_decay" validate:"gt=0,lte=1"`
	MaxClusters   int      `yaml:"max_clusters" validate:"gte=0"`
}

type Routing struct {
	RiskRate     float64 `yaml:"risk_rate" validate:"gt=0,lte=1"`
	MaxRoutes    int     `yaml:"max_routes" validate:"gte=-1"` // -1 means unlimited
	MaxThreshold float64 `yaml:"max_threshold" validate:"gt=0,lte=1"`
}

type Geo struct {
	AnchorLat float64 `yaml:"anchor_lat" validate:"gte=-85,lte=85"`
	AnchorLon float64 `yaml:"anchor_lon" validate:"gte=-180,lte=180"`
}

type Config struct {
	Environment Environment `yaml:"environment"`
	Routing     Routing     `yaml:"routing"`
	Geo         Geo         `yaml:"geo"`
}

func Default() Config {
	env := environment.DefaultConfig()
	return Config{
		Environment: Environment{
			Weather:       Coverage{Min: env.Weather.Min, Max: env.Weather.Max},
			Traffic:       Coverage{Min: env.Traffic.Min, Max: env.Traffic.Max},
			Obstruction:   Coverage{Min: env.Obstruction.Min, Max: env.Obstruction.Max},
			LightDefault:  env.LightDefault,
			SeverityBound: env.SeverityBound,
			MinDecay:      env.MinDecay,
			MaxClusters:   env.MaxClusters,
		},
		Routing: Routing{
			RiskRate:     0.05,
			MaxRoutes:    -1,
			MaxThreshold: 1.0,
		},
		Geo: Geo{
			AnchorLat: -7.5655,
			AnchorLon: 110.8317,
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	bb, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: read config %s: %v", datastructure.ErrConfig, path, err)
	}
	return Parse(bb)
}

func Parse(bb []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(bb))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: parse config: %v", datastructure.ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	validate := validator.New()
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("%w: %v", datastructure.ErrConfig, err)
	}
	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Namespace(), e.Translate(trans)))
	}
	return fmt.Errorf("%w: %s", datastructure.ErrConfig, strings.Join(msgs, "; "))
}

func (c Config) EnvironmentConfig() environment.Config {
	e := c.Environment
	return environment.Config{
		Weather:       environment.Coverage{Min: e.Weather.Min, Max: e.Weather.Max},
		Traffic:       environment.Coverage{Min: e.Traffic.Min, Max: e.Traffic.Max},
		Obstruction:   environment.Coverage{Min: e.Obstruction.Min, Max: e.Obstruction.Max},
		LightDefault:  e.LightDefault,
		SeverityBound: e.SeverityBound,
		MinDecay:      e.MinDecay,
		MaxClusters:   e.MaxClusters,
	}
}

func (c Config) Anchor() datastructure.Coordinate {
	return datastructure.NewCoordinate(c.Geo.AnchorLat, c.Geo.AnchorLon)
}
