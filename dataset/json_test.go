package dataset

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	d := New()
	require.NoError(t, d.AddEvent(telebirrEvent()))
	require.NoError(t, d.AddObservation(Observation{
		Pillar:          "access",
		Indicator:       "Mobile money account",
		IndicatorCode:   "ACC_MM_ACCOUNT",
		Value:           4.7,
		ObservationDate: date(2021, time.June, 1),
		SourceName:      "Findex",
		Confidence:      "high",
		CollectionDate:  date(2025, time.March, 1),
	}))
	require.NoError(t, d.AddImpactLink(ImpactLink{
		ParentID:         "telebirr_launch",
		Pillar:           "access",
		RelatedIndicator: "ACC_MM_ACCOUNT",
		MagnitudeLow:     3.0,
		MagnitudeHigh:    6.5,
		LagLowMonths:     0,
		LagHighMonths:    36,
		CollectionDate:   date(2025, time.March, 1),
	}))

	var buf bytes.Buffer
	require.NoError(t, d.WriteJSON(&buf))

	got, err := ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestReadJSONRevalidates(t *testing.T) {
	// a hand-edited archive with a bad confidence value is rejected on read
	raw := `{
  "observations": [
    {
      "indicator_code": "ACC_MM_ACCOUNT",
      "value_numeric": 4.7,
      "observation_date": "2021-06-01T00:00:00Z",
      "confidence": "certain"
    }
  ]
}`
	_, err := ReadJSON(strings.NewReader(raw))
	assert.Error(t, err)
}

func TestReadJSONLinkWithoutEvent(t *testing.T) {
	raw := `{
  "impact_links": [
    {
      "parent_id": "ghost_event",
      "related_indicator": "ACC_MM_ACCOUNT"
    }
  ]
}`
	_, err := ReadJSON(strings.NewReader(raw))
	assert.ErrorIs(t, err, ErrNoParentEvent)
}
