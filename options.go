package fincast

import (
	"errors"
	"fmt"

	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/scenario"
	"github.com/selamanalytics/fincast/timeseries"
	"github.com/selamanalytics/fincast/trend"
)

// ErrInvalidConfiguration wraps every configuration problem rejected before
// computation starts.
var ErrInvalidConfiguration = errors.New("invalid forecaster configuration")

type Options struct {
	// Step is the regularization spacing shared by every indicator.
	Step timeseries.Step

	// Horizon is the number of future periods to project.
	Horizon int

	TrendOptions    *trend.Options
	ImpactOptions   *impact.Options
	ScenarioOptions *scenario.Options

	// Scenarios to compose per indicator. Defaults to pessimistic, base,
	// optimistic.
	Scenarios []scenario.Scenario

	// Thresholds evaluated against each composed curve, e.g. a 60%
	// inclusion target.
	Thresholds []float64

	// DomainBounds clamps curves per indicator code, e.g. [0, 100] for
	// percentage indicators.
	DomainBounds map[string]scenario.Domain
}

func NewDefaultOptions() *Options {
	return &Options{
		Step:            timeseries.StepYearly,
		Horizon:         3,
		TrendOptions:    trend.NewDefaultOptions(),
		ImpactOptions:   impact.NewDefaultOptions(),
		ScenarioOptions: scenario.NewDefaultOptions(),
		Scenarios:       scenario.DefaultSet(),
	}
}

// Valid rejects configurations the pipeline cannot compute with. Everything
// it reports wraps ErrInvalidConfiguration.
func (o *Options) Valid() error {
	if o.Horizon < 1 {
		return fmt.Errorf("horizon %d, %w", o.Horizon, ErrInvalidConfiguration)
	}
	if o.ImpactOptions != nil && o.ImpactOptions.DecayHorizonMonths < 0 {
		return fmt.Errorf("decay horizon %d months, %w", o.ImpactOptions.DecayHorizonMonths, ErrInvalidConfiguration)
	}
	if len(o.Scenarios) == 0 {
		return fmt.Errorf("no scenarios requested, %w", ErrInvalidConfiguration)
	}
	seen := make(map[string]struct{}, len(o.Scenarios))
	for _, sc := range o.Scenarios {
		if err := sc.Valid(); err != nil {
			return fmt.Errorf("%s, %w", err, ErrInvalidConfiguration)
		}
		if _, ok := seen[sc.Name]; ok {
			return fmt.Errorf("duplicate scenario %q, %w", sc.Name, ErrInvalidConfiguration)
		}
		seen[sc.Name] = struct{}{}
	}
	for code, d := range o.DomainBounds {
		if err := d.Valid(); err != nil {
			return fmt.Errorf("indicator %s domain: %s, %w", code, err, ErrInvalidConfiguration)
		}
	}
	return nil
}
