package scenario

import (
	"testing"
	"time"

	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/trend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func baselineForecast() *trend.Forecast {
	return &trend.Forecast{
		IndicatorCode: "ACC_OWNERSHIP",
		Model:         "linear",
		Points: []trend.Point{
			{Period: date(2025, time.January, 1), Estimate: 50.0, Lower: 48.0, Upper: 52.0},
			{Period: date(2026, time.January, 1), Estimate: 52.0, Lower: 49.0, Upper: 55.0},
			{Period: date(2027, time.January, 1), Estimate: 54.0, Lower: 50.0, Upper: 58.0},
		},
	}
}

func positiveImpact() *impact.Aggregate {
	return &impact.Aggregate{
		Periods: []time.Time{
			date(2025, time.January, 1),
			date(2026, time.January, 1),
			date(2027, time.January, 1),
		},
		Total: []float64{2.0, 4.0, 4.0},
		Count: []int{1, 2, 1},
	}
}

func TestComposeBase(t *testing.T) {
	curve, err := Compose(baselineForecast(), positiveImpact(), Base(), nil, nil)
	require.NoError(t, err)
	require.Len(t, curve.Points, 3)
	assert.Equal(t, "base", curve.Scenario)
	assert.Equal(t, "ACC_OWNERSHIP", curve.IndicatorCode)

	// base shifts point and bounds by the raw impact
	assert.InDelta(t, 52.0, curve.Points[0].Value, 1e-9)
	assert.InDelta(t, 50.0, curve.Points[0].Lower, 1e-9)
	assert.InDelta(t, 54.0, curve.Points[0].Upper, 1e-9)
}

func TestComposeOverlapWidening(t *testing.T) {
	testData := map[string]struct {
		opt           *Options
		expectedLower float64
		expectedUpper float64
	}{
		"multiplicative": {
			opt:           &Options{Overlap: OverlapMultiplicative, Factor: 1.5},
			expectedLower: 56.0 - 3.0*1.5,
			expectedUpper: 56.0 + 3.0*1.5,
		},
		"additive": {
			opt:           &Options{Overlap: OverlapAdditive, Margin: 2.0},
			expectedLower: 53.0 - 2.0,
			expectedUpper: 59.0 + 2.0,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			curve, err := Compose(baselineForecast(), positiveImpact(), Base(), td.opt, nil)
			require.NoError(t, err)

			// only 2026 has two overlapping events
			assert.InDelta(t, 52.0, curve.Points[0].Value, 1e-9)
			assert.InDelta(t, 50.0, curve.Points[0].Lower, 1e-9)

			assert.InDelta(t, 56.0, curve.Points[1].Value, 1e-9)
			assert.InDelta(t, td.expectedLower, curve.Points[1].Lower, 1e-9)
			assert.InDelta(t, td.expectedUpper, curve.Points[1].Upper, 1e-9)

			assert.InDelta(t, 58.0, curve.Points[2].Value, 1e-9)
			assert.InDelta(t, 54.0, curve.Points[2].Lower, 1e-9)
		})
	}
}

func TestComposeScenarioOrdering(t *testing.T) {
	// with positive impact the point estimates must order pessimistic <=
	// base <= optimistic at every period
	fc := baselineForecast()
	agg := positiveImpact()

	pess, err := Compose(fc, agg, Pessimistic(), nil, nil)
	require.NoError(t, err)
	base, err := Compose(fc, agg, Base(), nil, nil)
	require.NoError(t, err)
	optm, err := Compose(fc, agg, Optimistic(), nil, nil)
	require.NoError(t, err)

	for i := range base.Points {
		assert.LessOrEqual(t, pess.Points[i].Value, base.Points[i].Value, "period %d", i)
		assert.LessOrEqual(t, base.Points[i].Value, optm.Points[i].Value, "period %d", i)
	}
}

func TestComposeBoundInvariant(t *testing.T) {
	// an aggressive additive margin cannot produce lower > value or
	// upper < value after the restoring clamp
	opt := &Options{Overlap: OverlapAdditive, Margin: -50.0}
	curve, err := Compose(baselineForecast(), positiveImpact(), Base(), opt, nil)
	require.NoError(t, err)

	for i, p := range curve.Points {
		assert.LessOrEqual(t, p.Lower, p.Value, "period %d", i)
		assert.GreaterOrEqual(t, p.Upper, p.Value, "period %d", i)
	}
}

func TestComposeDomainClamp(t *testing.T) {
	fc := &trend.Forecast{
		IndicatorCode: "ACC_OWNERSHIP",
		Model:         "linear",
		Points: []trend.Point{
			{Period: date(2025, time.January, 1), Estimate: 97.0, Lower: 90.0, Upper: 104.0},
			{Period: date(2026, time.January, 1), Estimate: 102.0, Lower: 94.0, Upper: 110.0},
		},
	}
	domain := &Domain{Min: 0.0, Max: 100.0}

	curve, err := Compose(fc, nil, Base(), nil, domain)
	require.NoError(t, err)

	for i, p := range curve.Points {
		assert.LessOrEqual(t, p.Value, 100.0, "period %d", i)
		assert.LessOrEqual(t, p.Upper, 100.0, "period %d", i)
		assert.GreaterOrEqual(t, p.Lower, 0.0, "period %d", i)
		assert.LessOrEqual(t, p.Lower, p.Value, "period %d", i)
	}
	assert.InDelta(t, 100.0, curve.Points[1].Value, 1e-9)
}

func TestComposeErrors(t *testing.T) {
	fc := baselineForecast()

	_, err := Compose(fc, positiveImpact(), Scenario{Name: "busted", PositiveMultiplier: -1.0, NegativeMultiplier: 1.0}, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidMultiplier)

	_, err = Compose(fc, positiveImpact(), Scenario{PositiveMultiplier: 1.0, NegativeMultiplier: 1.0}, nil, nil)
	assert.ErrorIs(t, err, ErrNoScenarioName)

	short := &impact.Aggregate{
		Periods: fc.Periods()[:1],
		Total:   []float64{1.0},
		Count:   []int{1},
	}
	_, err = Compose(fc, short, Base(), nil, nil)
	assert.ErrorIs(t, err, ErrImpactLenMismatch)

	_, err = Compose(fc, positiveImpact(), Base(), nil, &Domain{Min: 100.0, Max: 0.0})
	assert.ErrorIs(t, err, ErrDomainOrder)
}

func TestComposeNegativeImpactDampening(t *testing.T) {
	agg := &impact.Aggregate{
		Periods: baselineForecast().Periods(),
		Total:   []float64{-2.0, -2.0, -2.0},
		Count:   []int{1, 1, 1},
	}

	// optimistic dampens negative impact, pessimistic amplifies it
	optm, err := Compose(baselineForecast(), agg, Optimistic(), nil, nil)
	require.NoError(t, err)
	pess, err := Compose(baselineForecast(), agg, Pessimistic(), nil, nil)
	require.NoError(t, err)

	assert.InDelta(t, 50.0-2.0*0.85, optm.Points[0].Value, 1e-9)
	assert.InDelta(t, 50.0-2.0*1.15, pess.Points[0].Value, 1e-9)
}

func TestParseOverlapPolicy(t *testing.T) {
	_, err := ParseOverlapPolicy("quadratic")
	assert.ErrorIs(t, err, ErrUnknownOverlapPolicy)

	p, err := ParseOverlapPolicy("additive")
	require.NoError(t, err)
	assert.Equal(t, OverlapAdditive, p)
}
