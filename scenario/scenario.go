// Package scenario combines a baseline trend forecast with aggregated event
// impact under named scenario multipliers and scans the composed curves for
// milestone threshold crossings.
package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/trend"
)

var (
	ErrInvalidMultiplier    = errors.New("scenario multipliers must be positive")
	ErrNoScenarioName       = errors.New("no scenario name")
	ErrImpactLenMismatch    = errors.New("impact series does not cover the forecast grid")
	ErrUnknownOverlapPolicy = errors.New("unknown overlap policy")
	ErrDomainOrder          = errors.New("domain min exceeds max")
)

// Scenario is a named multiplier profile applied to event impact.
// PositiveMultiplier scales upward contributions, NegativeMultiplier
// downward ones. The constants are explicit configuration, not derived
// statistically.
type Scenario struct {
	Name               string  `json:"name"`
	PositiveMultiplier float64 `json:"positive_multiplier"`
	NegativeMultiplier float64 `json:"negative_multiplier"`
}

func Base() Scenario {
	return Scenario{Name: "base", PositiveMultiplier: 1.0, NegativeMultiplier: 1.0}
}

func Optimistic() Scenario {
	return Scenario{Name: "optimistic", PositiveMultiplier: 1.15, NegativeMultiplier: 0.85}
}

func Pessimistic() Scenario {
	return Scenario{Name: "pessimistic", PositiveMultiplier: 0.85, NegativeMultiplier: 1.15}
}

// DefaultSet returns the three stock scenarios in pessimistic to optimistic
// order.
func DefaultSet() []Scenario {
	return []Scenario{Pessimistic(), Base(), Optimistic()}
}

func (s *Scenario) Valid() error {
	if s.Name == "" {
		return ErrNoScenarioName
	}
	if s.PositiveMultiplier <= 0 || s.NegativeMultiplier <= 0 {
		return fmt.Errorf("scenario %s, %w", s.Name, ErrInvalidMultiplier)
	}
	return nil
}

// OverlapPolicy selects how bounds widen at periods where multiple events
// contribute simultaneously. Overlapping events increase uncertainty, not
// just magnitude.
type OverlapPolicy int

const (
	// OverlapMultiplicative scales the bound half-width by Factor.
	OverlapMultiplicative OverlapPolicy = iota
	// OverlapAdditive widens the bound half-width by Margin.
	OverlapAdditive
)

func (o OverlapPolicy) String() string {
	switch o {
	case OverlapMultiplicative:
		return "multiplicative"
	case OverlapAdditive:
		return "additive"
	}
	return "unknown"
}

func ParseOverlapPolicy(s string) (OverlapPolicy, error) {
	switch s {
	case "multiplicative":
		return OverlapMultiplicative, nil
	case "additive":
		return OverlapAdditive, nil
	}
	return 0, fmt.Errorf("%q, %w", s, ErrUnknownOverlapPolicy)
}

type Options struct {
	Overlap OverlapPolicy
	// Factor scales half-widths under OverlapMultiplicative.
	Factor float64
	// Margin widens half-widths under OverlapAdditive, in indicator units.
	Margin float64
}

func NewDefaultOptions() *Options {
	return &Options{
		Overlap: OverlapMultiplicative,
		Factor:  1.25,
	}
}

// Domain clamps curve values to a known indicator range, e.g. [0, 100] for a
// percentage.
type Domain struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (d *Domain) Valid() error {
	if d.Min > d.Max {
		return fmt.Errorf("[%.2f, %.2f], %w", d.Min, d.Max, ErrDomainOrder)
	}
	return nil
}

func (d *Domain) clamp(v float64) float64 {
	if v < d.Min {
		return d.Min
	}
	if v > d.Max {
		return d.Max
	}
	return v
}

// Point is one period of a composed scenario curve.
type Point struct {
	Period time.Time `json:"period"`
	Value  float64   `json:"value"`
	Lower  float64   `json:"lower"`
	Upper  float64   `json:"upper"`
}

// Curve is the final bounded projection for one indicator under one scenario.
type Curve struct {
	IndicatorCode string  `json:"indicator_code"`
	Scenario      string  `json:"scenario"`
	Points        []Point `json:"points"`
}

// Periods returns the curve period starts in order.
func (c *Curve) Periods() []time.Time {
	t := make([]time.Time, len(c.Points))
	for i, p := range c.Points {
		t[i] = p.Period
	}
	return t
}

// Estimates returns the point estimate series.
func (c *Curve) Estimates() []float64 {
	y := make([]float64, len(c.Points))
	for i, p := range c.Points {
		y[i] = p.Value
	}
	return y
}

// Lowers returns the lower bound series.
func (c *Curve) Lowers() []float64 {
	y := make([]float64, len(c.Points))
	for i, p := range c.Points {
		y[i] = p.Lower
	}
	return y
}

// Uppers returns the upper bound series.
func (c *Curve) Uppers() []float64 {
	y := make([]float64, len(c.Points))
	for i, p := range c.Points {
		y[i] = p.Upper
	}
	return y
}

// Compose shifts the baseline forecast by the scenario-scaled impact. Bounds
// move with the point estimate, widen at overlap periods per the configured
// policy, and are clamped afterwards so lower <= value <= upper always holds
// even when a multiplier would invert them. agg may be nil when no events
// target the indicator.
func Compose(f *trend.Forecast, agg *impact.Aggregate, sc Scenario, opt *Options, domain *Domain) (*Curve, error) {
	if err := sc.Valid(); err != nil {
		return nil, err
	}
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if agg != nil && len(agg.Total) != len(f.Points) {
		return nil, fmt.Errorf("impact has %d periods and forecast has %d, %w",
			len(agg.Total), len(f.Points), ErrImpactLenMismatch)
	}
	if domain != nil {
		if err := domain.Valid(); err != nil {
			return nil, err
		}
	}

	points := make([]Point, 0, len(f.Points))
	for i, fp := range f.Points {
		var shift float64
		overlap := false
		if agg != nil {
			shift = scaleImpact(agg.Total[i], sc)
			overlap = agg.Overlap(i)
		}

		value := fp.Estimate + shift
		lower := fp.Lower + shift
		upper := fp.Upper + shift

		if overlap {
			lower, upper = widen(value, lower, upper, opt)
		}

		// restore the bound invariant if widening or multipliers inverted it
		if lower > value {
			lower = value
		}
		if upper < value {
			upper = value
		}

		if domain != nil {
			value = domain.clamp(value)
			lower = domain.clamp(lower)
			upper = domain.clamp(upper)
		}

		points = append(points, Point{
			Period: fp.Period,
			Value:  value,
			Lower:  lower,
			Upper:  upper,
		})
	}

	return &Curve{
		IndicatorCode: f.IndicatorCode,
		Scenario:      sc.Name,
		Points:        points,
	}, nil
}

func scaleImpact(v float64, sc Scenario) float64 {
	if v > 0 {
		return v * sc.PositiveMultiplier
	}
	return v * sc.NegativeMultiplier
}

func widen(value, lower, upper float64, opt *Options) (float64, float64) {
	switch opt.Overlap {
	case OverlapAdditive:
		return lower - opt.Margin, upper + opt.Margin
	default:
		return value - (value-lower)*opt.Factor, value + (upper-value)*opt.Factor
	}
}
