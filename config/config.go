// Package config loads and validates the YAML run configuration for a
// forecast batch.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/selamanalytics/fincast"
	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/scenario"
	"github.com/selamanalytics/fincast/timeseries"
	"github.com/selamanalytics/fincast/trend"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type ScenarioConfig struct {
	Name               string  `yaml:"name" validate:"required"`
	PositiveMultiplier float64 `yaml:"positive_multiplier" default:"1.0" validate:"gt=0"`
	NegativeMultiplier float64 `yaml:"negative_multiplier" default:"1.0" validate:"gt=0"`
}

type DomainConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max" validate:"gtefield=Min"`
}

type Config struct {
	Step    string `yaml:"step" default:"yearly" validate:"oneof=yearly quarterly monthly"`
	Horizon int    `yaml:"horizon" default:"3" validate:"gte=1"`

	Trend struct {
		Model          string  `yaml:"model" default:"linear" validate:"oneof=linear logistic"`
		Asymptote      float64 `yaml:"asymptote" default:"100.0" validate:"gt=0"`
		Zscore         float64 `yaml:"zscore" default:"1.96" validate:"gt=0"`
		MinUncertainty float64 `yaml:"min_uncertainty" default:"0.25" validate:"gt=0"`
	} `yaml:"trend"`

	Impact struct {
		DecayHorizonMonths int    `yaml:"decay_horizon_months" default:"24" validate:"gte=0"`
		RampPolicy         string `yaml:"ramp_policy" default:"linear" validate:"oneof=linear step"`
	} `yaml:"impact"`

	Overlap struct {
		Policy string  `yaml:"policy" default:"multiplicative" validate:"oneof=multiplicative additive"`
		Factor float64 `yaml:"factor" default:"1.25" validate:"gte=1"`
		Margin float64 `yaml:"margin" validate:"gte=0"`
	} `yaml:"overlap"`

	// Scenarios defaults to pessimistic/base/optimistic when omitted.
	Scenarios []ScenarioConfig `yaml:"scenarios" validate:"dive"`

	Thresholds []float64 `yaml:"thresholds"`

	DomainBounds map[string]DomainConfig `yaml:"domain_bounds" validate:"dive"`

	Logging struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"logging"`
}

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes configuration bytes, applying defaults before validation.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %s, %w", err, fincast.ErrInvalidConfiguration)
	}
	return &c, nil
}

// Options converts the configuration into forecaster options.
func (c *Config) Options() (*fincast.Options, error) {
	step, err := timeseries.ParseStep(c.Step)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err, fincast.ErrInvalidConfiguration)
	}
	model, err := trend.ParseModelType(c.Trend.Model)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err, fincast.ErrInvalidConfiguration)
	}
	ramp, err := impact.ParseRampPolicy(c.Impact.RampPolicy)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err, fincast.ErrInvalidConfiguration)
	}
	overlap, err := scenario.ParseOverlapPolicy(c.Overlap.Policy)
	if err != nil {
		return nil, fmt.Errorf("%s, %w", err, fincast.ErrInvalidConfiguration)
	}

	scenarios := scenario.DefaultSet()
	if len(c.Scenarios) > 0 {
		scenarios = make([]scenario.Scenario, 0, len(c.Scenarios))
		for _, sc := range c.Scenarios {
			scenarios = append(scenarios, scenario.Scenario{
				Name:               sc.Name,
				PositiveMultiplier: sc.PositiveMultiplier,
				NegativeMultiplier: sc.NegativeMultiplier,
			})
		}
	}

	var domains map[string]scenario.Domain
	if len(c.DomainBounds) > 0 {
		domains = make(map[string]scenario.Domain, len(c.DomainBounds))
		for code, d := range c.DomainBounds {
			domains[code] = scenario.Domain{Min: d.Min, Max: d.Max}
		}
	}

	opt := &fincast.Options{
		Step:    step,
		Horizon: c.Horizon,
		TrendOptions: &trend.Options{
			Model:          model,
			Asymptote:      c.Trend.Asymptote,
			Zscore:         c.Trend.Zscore,
			MinUncertainty: c.Trend.MinUncertainty,
		},
		ImpactOptions: &impact.Options{
			DecayHorizonMonths: c.Impact.DecayHorizonMonths,
			Ramp:               ramp,
		},
		ScenarioOptions: &scenario.Options{
			Overlap: overlap,
			Factor:  c.Overlap.Factor,
			Margin:  c.Overlap.Margin,
		},
		Scenarios:    scenarios,
		Thresholds:   c.Thresholds,
		DomainBounds: domains,
	}
	if err := opt.Valid(); err != nil {
		return nil, err
	}
	return opt, nil
}
