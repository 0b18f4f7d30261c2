package scenario

import "time"

// Milestone records the first period a projected series reaches a threshold.
// Reached is false when the threshold is never met within the horizon.
type Milestone struct {
	Threshold float64   `json:"threshold"`
	Period    time.Time `json:"period,omitzero"`
	Reached   bool      `json:"reached"`
}

// FirstCrossing scans a period-aligned value series for the first period
// where the value meets or exceeds the threshold. The same function serves
// point estimates and bound series, so optimistic and pessimistic milestone
// dates come from invoking it with a curve's Uppers or Lowers.
func FirstCrossing(periods []time.Time, values []float64, threshold float64) Milestone {
	for i, v := range values {
		if v >= threshold {
			return Milestone{
				Threshold: threshold,
				Period:    periods[i],
				Reached:   true,
			}
		}
	}
	return Milestone{Threshold: threshold}
}

// Milestones evaluates the curve's point estimates against each threshold.
func (c *Curve) Milestones(thresholds []float64) []Milestone {
	periods := c.Periods()
	values := c.Estimates()
	ms := make([]Milestone, 0, len(thresholds))
	for _, th := range thresholds {
		ms = append(ms, FirstCrossing(periods, values, th))
	}
	return ms
}
