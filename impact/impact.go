// Package impact converts dated events and their impact links into
// time-localized contributions on a forecast period grid and aggregates
// them across events.
package impact

import (
	"errors"
	"fmt"
	"time"

	"github.com/selamanalytics/fincast/timeseries"
)

var (
	ErrNoEventID        = errors.New("no event id")
	ErrNoEventName      = errors.New("no event name")
	ErrUnsetEventDate   = errors.New("unset event date")
	ErrLagOrder         = errors.New("lag window low exceeds high")
	ErrNegativeLag      = errors.New("negative lag months")
	ErrMagnitudeOrder   = errors.New("magnitude low exceeds high")
	ErrUnknownDirection = errors.New("unknown impact direction")
	ErrUnknownRamp      = errors.New("unknown ramp policy")
	ErrGridMismatch     = errors.New("contribution does not align with the period grid")
)

// Direction signs an event's effect on its target indicator.
type Direction int

const (
	DirectionPositive Direction = iota
	DirectionNegative
)

func (d Direction) String() string {
	switch d {
	case DirectionPositive:
		return "positive"
	case DirectionNegative:
		return "negative"
	}
	return "unknown"
}

func ParseDirection(s string) (Direction, error) {
	switch s {
	case "positive":
		return DirectionPositive, nil
	case "negative":
		return DirectionNegative, nil
	}
	return 0, fmt.Errorf("%q, %w", s, ErrUnknownDirection)
}

// Event is a dated policy or market occurrence hypothesized to shift one or
// more indicators.
type Event struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Date     time.Time `json:"date"`
	Category string    `json:"category"`
}

func NewEvent(id, name string, date time.Time, category string) Event {
	return Event{
		ID:       id,
		Name:     name,
		Date:     date,
		Category: category,
	}
}

func (e *Event) Valid() error {
	if e.ID == "" {
		return ErrNoEventID
	}
	if e.Name == "" {
		return fmt.Errorf("event %s, %w", e.ID, ErrNoEventName)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("event %s, %w", e.ID, ErrUnsetEventDate)
	}
	return nil
}

// Link models the expected shift of one indicator caused by one event. The
// magnitude range and lag window are estimates supplied by the dataset, not
// values fit from the series.
type Link struct {
	EventID       string                `json:"event_id"`
	IndicatorCode string                `json:"indicator_code"`
	Direction     Direction             `json:"direction"`
	MagnitudeLow  float64               `json:"magnitude_low"`
	MagnitudeHigh float64               `json:"magnitude_high"`
	LagLowMonths  int                   `json:"lag_months_low"`
	LagHighMonths int                   `json:"lag_months_high"`
	Confidence    timeseries.Confidence `json:"confidence"`
}

func (l *Link) Valid() error {
	if l.LagLowMonths < 0 || l.LagHighMonths < 0 {
		return fmt.Errorf("event %s indicator %s, %w", l.EventID, l.IndicatorCode, ErrNegativeLag)
	}
	if l.LagLowMonths > l.LagHighMonths {
		return fmt.Errorf("event %s indicator %s, %w", l.EventID, l.IndicatorCode, ErrLagOrder)
	}
	if l.MagnitudeLow > l.MagnitudeHigh {
		return fmt.Errorf("event %s indicator %s, %w", l.EventID, l.IndicatorCode, ErrMagnitudeOrder)
	}
	return nil
}

// midpoint is the held magnitude once the lag window has fully elapsed.
func (l *Link) midpoint() float64 {
	mag := (l.MagnitudeLow + l.MagnitudeHigh) / 2.0
	if l.Direction == DirectionNegative {
		return -mag
	}
	return mag
}

// RampPolicy shapes how a contribution builds up over the lag window. This is
// a modeling assumption, not an empirically fit curve.
type RampPolicy int

const (
	// RampLinear builds linearly from zero at lag low to the midpoint
	// magnitude at lag high.
	RampLinear RampPolicy = iota
	// RampStep applies the full midpoint magnitude from lag low onwards.
	RampStep
)

func (r RampPolicy) String() string {
	switch r {
	case RampLinear:
		return "linear"
	case RampStep:
		return "step"
	}
	return "unknown"
}

func ParseRampPolicy(s string) (RampPolicy, error) {
	switch s {
	case "linear":
		return RampLinear, nil
	case "step":
		return RampStep, nil
	}
	return 0, fmt.Errorf("%q, %w", s, ErrUnknownRamp)
}

type Options struct {
	// DecayHorizonMonths bounds how long past lag high the held magnitude
	// keeps contributing. Beyond it the shift is treated as absorbed into
	// the baseline trend, preventing a permanent step from repeating.
	DecayHorizonMonths int
	Ramp               RampPolicy
}

func NewDefaultOptions() *Options {
	return &Options{
		DecayHorizonMonths: 24,
		Ramp:               RampLinear,
	}
}

// Contribution is the signed magnitude one event applies at one forecast
// period. Recomputed per request, never persisted.
type Contribution struct {
	EventID string    `json:"event_id"`
	Period  time.Time `json:"period"`
	Value   float64   `json:"value"`
}

// Contributions evaluates an event against a forecast period grid for one
// indicator. Events with no link to the indicator yield nil. The result has
// one entry per grid period, zero outside the active window.
func Contributions(ev Event, links []Link, indicatorCode string, grid []time.Time, opt *Options) []Contribution {
	if opt == nil {
		opt = NewDefaultOptions()
	}

	var active []Link
	for _, l := range links {
		if l.EventID == ev.ID && l.IndicatorCode == indicatorCode {
			active = append(active, l)
		}
	}
	if len(active) == 0 {
		return nil
	}

	contribs := make([]Contribution, 0, len(grid))
	for _, p := range grid {
		months := monthsBetween(ev.Date, p)
		var val float64
		for _, l := range active {
			val += linkValue(&l, months, opt)
		}
		contribs = append(contribs, Contribution{
			EventID: ev.ID,
			Period:  p,
			Value:   val,
		})
	}
	return contribs
}

// linkValue applies the ramp-hold-decay policy at a month offset from the
// event date.
func linkValue(l *Link, months int, opt *Options) float64 {
	if months < l.LagLowMonths {
		return 0.0
	}
	if months > l.LagHighMonths+opt.DecayHorizonMonths {
		return 0.0
	}
	mid := l.midpoint()
	if months > l.LagHighMonths || opt.Ramp == RampStep {
		return mid
	}
	window := l.LagHighMonths - l.LagLowMonths
	if window == 0 {
		return mid
	}
	return mid * float64(months-l.LagLowMonths) / float64(window)
}

// monthsBetween counts calendar months from a to b, negative when b precedes a.
func monthsBetween(a, b time.Time) int {
	a = a.UTC()
	b = b.UTC()
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

// Aggregate is the per-period sum of contributions across all events relevant
// to one indicator. Count tracks how many events contribute at each period so
// overlapping effects can widen confidence bounds downstream.
type Aggregate struct {
	Periods []time.Time `json:"periods"`
	Total   []float64   `json:"total"`
	Count   []int       `json:"count"`
}

// Sum combines contribution sequences additively per period. Events are
// assumed independent, so there are no interaction terms.
func Sum(grid []time.Time, contribs ...[]Contribution) (*Aggregate, error) {
	agg := &Aggregate{
		Periods: make([]time.Time, len(grid)),
		Total:   make([]float64, len(grid)),
		Count:   make([]int, len(grid)),
	}
	copy(agg.Periods, grid)

	idx := make(map[time.Time]int, len(grid))
	for i, p := range grid {
		idx[p] = i
	}

	for _, seq := range contribs {
		for _, c := range seq {
			i, ok := idx[c.Period]
			if !ok {
				return nil, fmt.Errorf("event %s period %s, %w", c.EventID, c.Period.Format("2006-01"), ErrGridMismatch)
			}
			if c.Value == 0 {
				continue
			}
			agg.Total[i] += c.Value
			agg.Count[i]++
		}
	}
	return agg, nil
}

// Overlap reports whether more than one event contributes at period index i.
func (a *Aggregate) Overlap(i int) bool {
	return a.Count[i] >= 2
}
