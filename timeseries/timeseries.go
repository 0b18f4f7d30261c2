// Package timeseries turns sparse, irregularly sampled indicator
// observations into a regularized, gap-aware series for trend fitting.
package timeseries

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrNoObservations    = errors.New("no observations")
	ErrInsufficientData  = errors.New("insufficient observations to regularize")
	ErrDuplicatePeriod   = errors.New("conflicting observations for the same period")
	ErrMixedIndicators   = errors.New("observations span multiple indicators")
	ErrUnknownConfidence = errors.New("unknown confidence level")
)

// Confidence grades how trustworthy an observation's source is.
type Confidence int

const (
	ConfidenceLow Confidence = iota
	ConfidenceMedium
	ConfidenceHigh
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	}
	return "unknown"
}

func ParseConfidence(s string) (Confidence, error) {
	switch s {
	case "low":
		return ConfidenceLow, nil
	case "medium":
		return ConfidenceMedium, nil
	case "high":
		return ConfidenceHigh, nil
	}
	return 0, fmt.Errorf("%q, %w", s, ErrUnknownConfidence)
}

// Observation is a single dated measurement of one indicator. CollectionDate
// breaks ties when two observations land on the same regularized period.
type Observation struct {
	IndicatorCode  string
	Date           time.Time
	Value          float64
	Confidence     Confidence
	CollectionDate time.Time
}

// Point is one period of a regularized series. Interpolated marks values
// synthesized to fill a gap between observed periods.
type Point struct {
	Period       time.Time `json:"period"`
	Value        float64   `json:"value"`
	Interpolated bool      `json:"interpolated"`
}

// Series is a contiguous, strictly increasing sequence of periods at a fixed
// step covering first to last observed period. Consumers treat it read-only.
type Series struct {
	IndicatorCode string  `json:"indicator_code"`
	Step          Step    `json:"step"`
	Points        []Point `json:"points"`
}

// Build regularizes the observations of a single indicator. Observations that
// map to the same period with equal values collapse silently; with differing
// values the one with the latest collection date wins. Differing values with
// no collection date ordering are ambiguous ground truth and fail. Interior
// gaps are filled by linear interpolation over period index. Build never
// extrapolates past the last observed period.
func Build(obs []Observation, step Step) (*Series, error) {
	if len(obs) == 0 {
		return nil, ErrNoObservations
	}

	code := obs[0].IndicatorCode
	for _, o := range obs {
		if o.IndicatorCode != code {
			return nil, fmt.Errorf("%q and %q, %w", code, o.IndicatorCode, ErrMixedIndicators)
		}
	}

	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	byPeriod := make(map[time.Time]Observation, len(sorted))
	periods := make([]time.Time, 0, len(sorted))
	for _, o := range sorted {
		p := step.Truncate(o.Date)
		prev, seen := byPeriod[p]
		if !seen {
			byPeriod[p] = o
			periods = append(periods, p)
			continue
		}
		if prev.Value == o.Value {
			continue
		}
		switch {
		case o.CollectionDate.After(prev.CollectionDate):
			byPeriod[p] = o
		case prev.CollectionDate.After(o.CollectionDate):
		default:
			return nil, fmt.Errorf("indicator %s period %s, %w", code, p.Format("2006-01"), ErrDuplicatePeriod)
		}
	}

	if len(periods) < 2 {
		return nil, fmt.Errorf("indicator %s has %d usable periods, %w", code, len(periods), ErrInsufficientData)
	}

	first := periods[0]
	last := periods[len(periods)-1]
	n := step.Between(first, last) + 1

	points := make([]Point, 0, n)
	prevIdx := 0
	prevVal := byPeriod[first].Value
	for i := 0; i < n; i++ {
		p := step.Add(first, i)
		if o, ok := byPeriod[p]; ok {
			points = append(points, Point{Period: p, Value: o.Value})
			prevIdx = i
			prevVal = o.Value
			continue
		}

		// find the next observed period bounding this gap
		nextIdx := i + 1
		for ; ; nextIdx++ {
			if _, ok := byPeriod[step.Add(first, nextIdx)]; ok {
				break
			}
		}
		nextVal := byPeriod[step.Add(first, nextIdx)].Value
		frac := float64(i-prevIdx) / float64(nextIdx-prevIdx)
		points = append(points, Point{
			Period:       p,
			Value:        prevVal + frac*(nextVal-prevVal),
			Interpolated: true,
		})
	}

	return &Series{
		IndicatorCode: code,
		Step:          step,
		Points:        points,
	}, nil
}

// Observed returns only the non-interpolated points.
func (s *Series) Observed() []Point {
	pts := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		if !p.Interpolated {
			pts = append(pts, p)
		}
	}
	return pts
}

// LastPeriod returns the final (always observed) period of the series.
func (s *Series) LastPeriod() time.Time {
	return s.Points[len(s.Points)-1].Period
}

// Periods returns the period starts in order.
func (s *Series) Periods() []time.Time {
	t := make([]time.Time, len(s.Points))
	for i, p := range s.Points {
		t[i] = p.Period
	}
	return t
}

// Values returns the series values in period order.
func (s *Series) Values() []float64 {
	y := make([]float64, len(s.Points))
	for i, p := range s.Points {
		y[i] = p.Value
	}
	return y
}

// Grid returns the horizon future period starts strictly after the last
// observed period.
func (s *Series) Grid(horizon int) []time.Time {
	last := s.LastPeriod()
	grid := make([]time.Time, 0, horizon)
	for i := 1; i <= horizon; i++ {
		grid = append(grid, s.Step.Add(last, i))
	}
	return grid
}

// Copy returns a deep copy of the series.
func (s *Series) Copy() *Series {
	pts := make([]Point, len(s.Points))
	copy(pts, s.Points)
	return &Series{
		IndicatorCode: s.IndicatorCode,
		Step:          s.Step,
		Points:        pts,
	}
}
