// Package fincast forecasts time-indexed national inclusion indicators by
// combining baseline trend extrapolation with the effects of dated policy
// and market events, producing scenario-bounded projections with milestone
// estimates.
package fincast

import (
	"fmt"
	"sort"

	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/scenario"
	"github.com/selamanalytics/fincast/timeseries"
	"github.com/selamanalytics/fincast/trend"
)

// Input is the validated snapshot a run computes over. The forecaster never
// mutates it, so one Input may back concurrent runs.
type Input struct {
	Observations []timeseries.Observation
	Events       []impact.Event
	Links        []impact.Link
}

// Forecaster runs the full pipeline per indicator: regularize, fit trend,
// accumulate event impact, compose scenario curves, scan milestones. It is
// stateless across runs.
type Forecaster struct {
	opt *Options
}

// New creates a Forecaster with the provided options, or defaults when nil.
func New(opt *Options) (*Forecaster, error) {
	if opt == nil {
		opt = NewDefaultOptions()
	}
	if err := opt.Valid(); err != nil {
		return nil, err
	}
	return &Forecaster{opt: opt}, nil
}

// Run computes every indicator present in the input. Indicator failures are
// recorded on the individual result so a multi-indicator request partially
// succeeds; only configuration problems abort the whole run.
func (f *Forecaster) Run(in Input) (*Results, error) {
	for i := range in.Events {
		if err := in.Events[i].Valid(); err != nil {
			return nil, fmt.Errorf("%s, %w", err, ErrInvalidConfiguration)
		}
	}
	for i := range in.Links {
		if err := in.Links[i].Valid(); err != nil {
			return nil, fmt.Errorf("%s, %w", err, ErrInvalidConfiguration)
		}
	}

	byIndicator := make(map[string][]timeseries.Observation)
	for _, o := range in.Observations {
		byIndicator[o.IndicatorCode] = append(byIndicator[o.IndicatorCode], o)
	}
	codes := make([]string, 0, len(byIndicator))
	for code := range byIndicator {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	res := &Results{Indicators: make([]IndicatorResult, 0, len(codes))}
	for _, code := range codes {
		ir := f.runIndicator(code, byIndicator[code], in)
		res.Indicators = append(res.Indicators, ir)
	}
	return res, nil
}

func (f *Forecaster) runIndicator(code string, obs []timeseries.Observation, in Input) IndicatorResult {
	ir := IndicatorResult{IndicatorCode: code}

	series, err := timeseries.Build(obs, f.opt.Step)
	if err != nil {
		ir.Err = err.Error()
		return ir
	}

	// the trend does not depend on scenario, so fit once and reuse across
	// every scenario composition
	tr, err := trend.New(f.opt.TrendOptions)
	if err != nil {
		ir.Err = err.Error()
		return ir
	}
	if err := tr.Fit(series); err != nil {
		ir.Err = fmt.Sprintf("unable to fit trend, %s", err)
		return ir
	}
	forecast, err := tr.Project(f.opt.Horizon)
	if err != nil {
		ir.Err = fmt.Sprintf("unable to project trend, %s", err)
		return ir
	}

	grid := forecast.Periods()
	contribs := make([][]impact.Contribution, 0, len(in.Events))
	for _, ev := range in.Events {
		if seq := impact.Contributions(ev, in.Links, code, grid, f.opt.ImpactOptions); seq != nil {
			contribs = append(contribs, seq)
		}
	}
	agg, err := impact.Sum(grid, contribs...)
	if err != nil {
		ir.Err = fmt.Sprintf("unable to aggregate event impact, %s", err)
		return ir
	}

	var domain *scenario.Domain
	if d, ok := f.opt.DomainBounds[code]; ok {
		domain = &d
	}

	curves := make([]scenario.Curve, 0, len(f.opt.Scenarios))
	milestones := make([]MilestoneResult, 0, len(f.opt.Scenarios)*len(f.opt.Thresholds))
	for _, sc := range f.opt.Scenarios {
		curve, err := scenario.Compose(forecast, agg, sc, f.opt.ScenarioOptions, domain)
		if err != nil {
			ir.Err = fmt.Sprintf("unable to compose scenario %s, %s", sc.Name, err)
			return ir
		}
		curves = append(curves, *curve)
		for _, m := range curve.Milestones(f.opt.Thresholds) {
			milestones = append(milestones, MilestoneResult{
				Scenario:  sc.Name,
				Milestone: m,
			})
		}
	}

	ir.History = series
	ir.Trend = forecast
	ir.Scores = tr.Scores()
	ir.Impact = agg
	ir.Curves = curves
	ir.Milestones = milestones
	return ir
}
