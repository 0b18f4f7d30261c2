package fincast

import (
	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/scenario"
	"github.com/selamanalytics/fincast/timeseries"
	"github.com/selamanalytics/fincast/trend"
)

// MilestoneResult ties a threshold crossing to the scenario curve it was
// scanned on.
type MilestoneResult struct {
	Scenario  string             `json:"scenario"`
	Milestone scenario.Milestone `json:"milestone"`
}

// IndicatorResult carries everything computed for one indicator. Err is set
// when the indicator failed; the rest of the fields are then empty and other
// indicators are unaffected.
type IndicatorResult struct {
	IndicatorCode string `json:"indicator_code"`

	History    *timeseries.Series `json:"history,omitempty"`
	Trend      *trend.Forecast    `json:"trend,omitempty"`
	Scores     trend.Scores       `json:"scores"`
	Impact     *impact.Aggregate  `json:"impact,omitempty"`
	Curves     []scenario.Curve   `json:"curves,omitempty"`
	Milestones []MilestoneResult  `json:"milestones,omitempty"`

	Err string `json:"error,omitempty"`
}

// Curve returns the composed curve for a scenario name.
func (r *IndicatorResult) Curve(scenarioName string) (*scenario.Curve, bool) {
	for i := range r.Curves {
		if r.Curves[i].Scenario == scenarioName {
			return &r.Curves[i], true
		}
	}
	return nil, false
}

// Results is the full output of one forecast run, ordered by indicator code.
type Results struct {
	Indicators []IndicatorResult `json:"indicators"`
}

// Indicator returns the result for an indicator code.
func (r *Results) Indicator(code string) (*IndicatorResult, bool) {
	for i := range r.Indicators {
		if r.Indicators[i].IndicatorCode == code {
			return &r.Indicators[i], true
		}
	}
	return nil, false
}

// Failed returns the indicator results that errored.
func (r *Results) Failed() []IndicatorResult {
	var failed []IndicatorResult
	for _, ir := range r.Indicators {
		if ir.Err != "" {
			failed = append(failed, ir)
		}
	}
	return failed
}
