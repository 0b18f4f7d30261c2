package timeseries

import (
	"errors"
	"fmt"
	"time"
)

var ErrUnknownStep = errors.New("unknown series step")

// Step is the fixed spacing of a regularized series.
type Step int

const (
	StepYearly Step = iota
	StepQuarterly
	StepMonthly
)

func (s Step) String() string {
	switch s {
	case StepYearly:
		return "yearly"
	case StepQuarterly:
		return "quarterly"
	case StepMonthly:
		return "monthly"
	}
	return "unknown"
}

func ParseStep(s string) (Step, error) {
	switch s {
	case "yearly":
		return StepYearly, nil
	case "quarterly":
		return StepQuarterly, nil
	case "monthly":
		return StepMonthly, nil
	}
	return 0, fmt.Errorf("%q, %w", s, ErrUnknownStep)
}

// Truncate maps an arbitrary date to the start of its period in UTC.
func (s Step) Truncate(t time.Time) time.Time {
	t = t.UTC()
	switch s {
	case StepYearly:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	case StepQuarterly:
		q := (int(t.Month()) - 1) / 3
		return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC)
	case StepMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// Add advances a period start by n steps. Negative n moves backwards.
func (s Step) Add(t time.Time, n int) time.Time {
	switch s {
	case StepYearly:
		return t.AddDate(n, 0, 0)
	case StepQuarterly:
		return t.AddDate(0, 3*n, 0)
	case StepMonthly:
		return t.AddDate(0, n, 0)
	}
	return t
}

// Between counts the number of steps from period start a to period start b.
func (s Step) Between(a, b time.Time) int {
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	switch s {
	case StepYearly:
		return months / 12
	case StepQuarterly:
		return months / 3
	case StepMonthly:
		return months
	}
	return 0
}
