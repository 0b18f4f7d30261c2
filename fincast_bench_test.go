package fincast

import (
	"strconv"
	"testing"
	"time"

	"github.com/pkg/profile"
	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/timeseries"
)

var benchRes *Results

// benchInput spreads quarterly observations and a rolling set of events over
// many indicators to exercise the full pipeline.
func benchInput(indicators int) Input {
	var in Input
	for i := 0; i < indicators; i++ {
		code := "IND_" + strconv.Itoa(i)
		for q := 0; q < 40; q++ {
			in.Observations = append(in.Observations, timeseries.Observation{
				IndicatorCode: code,
				Date:          time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 3*q, 0),
				Value:         10.0 + 0.5*float64(q) + 0.1*float64(i),
			})
		}
		eventID := "event_" + strconv.Itoa(i)
		in.Events = append(in.Events, impact.Event{
			ID:       eventID,
			Name:     "Event " + strconv.Itoa(i),
			Date:     time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC),
			Category: "policy",
		})
		in.Links = append(in.Links, impact.Link{
			EventID:       eventID,
			IndicatorCode: code,
			Direction:     impact.DirectionPositive,
			MagnitudeLow:  1.0,
			MagnitudeHigh: 3.0,
			LagLowMonths:  6,
			LagHighMonths: 18,
		})
	}
	return in
}

func BenchmarkRun(b *testing.B) {
	opt := NewDefaultOptions()
	opt.Step = timeseries.StepQuarterly
	opt.Horizon = 12
	opt.Thresholds = []float64{40.0}

	f, err := New(opt)
	if err != nil {
		panic(err)
	}
	in := benchInput(50)

	b.ResetTimer()
	defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	for i := 0; i < b.N; i++ {
		benchRes, err = f.Run(in)
		if err != nil {
			panic(err)
		}
	}
}
