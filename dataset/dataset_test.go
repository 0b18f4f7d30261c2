package dataset

import (
	"testing"
	"time"

	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/timeseries"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func telebirrEvent() Event {
	return Event{
		ID:       "telebirr_launch",
		Category: "product_launch",
		Date:     date(2021, time.May, 11),
		Name:     "Telebirr Launch",
	}
}

func TestAddObservation(t *testing.T) {
	testData := map[string]struct {
		obs     Observation
		wantErr bool
	}{
		"valid": {
			obs: Observation{
				Pillar:          "access",
				IndicatorCode:   "ACC_MM_ACCOUNT",
				Value:           4.7,
				ObservationDate: date(2021, time.June, 1),
			},
		},
		"missing indicator code": {
			obs: Observation{
				ObservationDate: date(2021, time.June, 1),
				Value:           4.7,
			},
			wantErr: true,
		},
		"missing observation date": {
			obs: Observation{
				IndicatorCode: "ACC_MM_ACCOUNT",
				Value:         4.7,
			},
			wantErr: true,
		},
		"bad pillar": {
			obs: Observation{
				Pillar:          "quality",
				IndicatorCode:   "ACC_MM_ACCOUNT",
				ObservationDate: date(2021, time.June, 1),
			},
			wantErr: true,
		},
		"bad confidence": {
			obs: Observation{
				IndicatorCode:   "ACC_MM_ACCOUNT",
				ObservationDate: date(2021, time.June, 1),
				Confidence:      "certain",
			},
			wantErr: true,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			d := New()
			err := d.AddObservation(td.obs)
			if td.wantErr {
				assert.Error(t, err)
				assert.Empty(t, d.Observations)
				return
			}
			require.NoError(t, err)
			require.Len(t, d.Observations, 1)

			// defaults filled on entry
			got := d.Observations[0]
			assert.Equal(t, "medium", got.Confidence)
			assert.Equal(t, "Data Team", got.CollectedBy)
			assert.False(t, got.CollectionDate.IsZero())
		})
	}
}

func TestAddImpactLink(t *testing.T) {
	link := ImpactLink{
		ParentID:         "telebirr_launch",
		Pillar:           "access",
		RelatedIndicator: "ACC_MM_ACCOUNT",
		MagnitudeLow:     3.0,
		MagnitudeHigh:    6.5,
		LagLowMonths:     0,
		LagHighMonths:    36,
	}

	d := New()
	require.NoError(t, d.AddEvent(telebirrEvent()))
	require.NoError(t, d.AddImpactLink(link))

	got := d.ImpactLinks[0]
	assert.Equal(t, "positive", got.Direction)
	assert.Equal(t, "medium", got.Confidence)
}

func TestAddImpactLinkNoParent(t *testing.T) {
	d := New()
	err := d.AddImpactLink(ImpactLink{
		ParentID:         "never_cataloged",
		RelatedIndicator: "ACC_MM_ACCOUNT",
	})
	assert.ErrorIs(t, err, ErrNoParentEvent)
}

func TestAddImpactLinkOrdering(t *testing.T) {
	d := New()
	require.NoError(t, d.AddEvent(telebirrEvent()))

	err := d.AddImpactLink(ImpactLink{
		ParentID:         "telebirr_launch",
		RelatedIndicator: "ACC_MM_ACCOUNT",
		MagnitudeLow:     5.0,
		MagnitudeHigh:    2.0,
	})
	assert.Error(t, err)

	err = d.AddImpactLink(ImpactLink{
		ParentID:         "telebirr_launch",
		RelatedIndicator: "ACC_MM_ACCOUNT",
		LagLowMonths:     24,
		LagHighMonths:    12,
	})
	assert.Error(t, err)
}

func TestInput(t *testing.T) {
	d := New()
	require.NoError(t, d.AddEvent(telebirrEvent()))
	require.NoError(t, d.AddObservation(Observation{
		Pillar:          "access",
		IndicatorCode:   "ACC_MM_ACCOUNT",
		Value:           4.7,
		ObservationDate: date(2021, time.June, 1),
		Confidence:      "high",
		CollectionDate:  date(2025, time.March, 1),
	}))
	require.NoError(t, d.AddImpactLink(ImpactLink{
		ParentID:         "telebirr_launch",
		RelatedIndicator: "ACC_MM_ACCOUNT",
		Direction:        "negative",
		MagnitudeLow:     1.0,
		MagnitudeHigh:    2.0,
		LagLowMonths:     6,
		LagHighMonths:    18,
	}))

	in, err := d.Input()
	require.NoError(t, err)

	require.Len(t, in.Observations, 1)
	assert.Equal(t, timeseries.ConfidenceHigh, in.Observations[0].Confidence)
	assert.Equal(t, date(2021, time.June, 1), in.Observations[0].Date)

	require.Len(t, in.Events, 1)
	assert.Equal(t, "telebirr_launch", in.Events[0].ID)
	assert.NoError(t, in.Events[0].Valid())

	require.Len(t, in.Links, 1)
	assert.Equal(t, impact.DirectionNegative, in.Links[0].Direction)
	assert.Equal(t, "ACC_MM_ACCOUNT", in.Links[0].IndicatorCode)
	assert.NoError(t, in.Links[0].Valid())
}
