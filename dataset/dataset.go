// Package dataset implements the unified record collection backing a
// forecast run: indicator observations, cataloged events, and the impact
// links connecting them. Records are validated on entry so the forecasting
// core can consume them as already-validated typed inputs.
package dataset

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/selamanalytics/fincast"
	"github.com/selamanalytics/fincast/impact"
	"github.com/selamanalytics/fincast/timeseries"
)

var (
	ErrUnknownRecordType = errors.New("unknown record type")
	ErrNoParentEvent     = errors.New("impact link references an unknown event")
)

var validate = validator.New()

// Observation is one dated measurement of an indicator with its source and
// collection provenance.
type Observation struct {
	Pillar          string    `json:"pillar" validate:"omitempty,oneof=access usage"`
	Indicator       string    `json:"indicator"`
	IndicatorCode   string    `json:"indicator_code" validate:"required"`
	Value           float64   `json:"value_numeric"`
	ObservationDate time.Time `json:"observation_date" validate:"required"`
	SourceName      string    `json:"source_name"`
	SourceURL       string    `json:"source_url"`
	Confidence      string    `json:"confidence" default:"medium" validate:"oneof=high medium low"`
	OriginalText    string    `json:"original_text,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CollectedBy     string    `json:"collected_by" default:"Data Team"`
	CollectionDate  time.Time `json:"collection_date,omitzero"`
}

// Event is a dated policy or market occurrence.
type Event struct {
	ID             string    `json:"id" validate:"required"`
	Category       string    `json:"category" validate:"required"`
	Date           time.Time `json:"event_date" validate:"required"`
	Name           string    `json:"event_name" validate:"required"`
	Description    string    `json:"description,omitempty"`
	SourceName     string    `json:"source_name"`
	SourceURL      string    `json:"source_url"`
	Confidence     string    `json:"confidence" default:"medium" validate:"oneof=high medium low"`
	OriginalText   string    `json:"original_text,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CollectedBy    string    `json:"collected_by" default:"Data Team"`
	CollectionDate time.Time `json:"collection_date,omitzero"`
}

// ImpactLink models the estimated shift of one indicator caused by one
// event. Magnitudes are in indicator units (percentage points); lags bound
// the window in months before the impact is fully felt.
type ImpactLink struct {
	ParentID         string    `json:"parent_id" validate:"required"`
	Pillar           string    `json:"pillar" validate:"omitempty,oneof=access usage"`
	RelatedIndicator string    `json:"related_indicator" validate:"required"`
	Direction        string    `json:"impact_direction" default:"positive" validate:"oneof=positive negative"`
	MagnitudeLow     float64   `json:"magnitude_low"`
	MagnitudeHigh    float64   `json:"magnitude_high" validate:"gtefield=MagnitudeLow"`
	LagLowMonths     int       `json:"lag_months_low" validate:"gte=0"`
	LagHighMonths    int       `json:"lag_months_high" validate:"gtefield=LagLowMonths"`
	EvidenceBasis    string    `json:"evidence_basis,omitempty"`
	SourceName       string    `json:"source_name"`
	SourceURL        string    `json:"source_url"`
	Confidence       string    `json:"confidence" default:"medium" validate:"oneof=high medium low"`
	OriginalText     string    `json:"original_text,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CollectedBy      string    `json:"collected_by" default:"Data Team"`
	CollectionDate   time.Time `json:"collection_date,omitzero"`
}

// Dataset is the validated record collection for one historical snapshot.
type Dataset struct {
	Observations []Observation `json:"observations"`
	Events       []Event       `json:"events"`
	ImpactLinks  []ImpactLink  `json:"impact_links"`
}

func New() *Dataset {
	return &Dataset{}
}

// AddObservation fills defaults, validates, and appends an observation
// record.
func (d *Dataset) AddObservation(o Observation) error {
	if err := prepare(&o); err != nil {
		return fmt.Errorf("observation %s, %w", o.IndicatorCode, err)
	}
	if o.CollectionDate.IsZero() {
		o.CollectionDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	d.Observations = append(d.Observations, o)
	return nil
}

// AddEvent fills defaults, validates, and appends an event record.
func (d *Dataset) AddEvent(e Event) error {
	if err := prepare(&e); err != nil {
		return fmt.Errorf("event %s, %w", e.ID, err)
	}
	if e.CollectionDate.IsZero() {
		e.CollectionDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	d.Events = append(d.Events, e)
	return nil
}

// AddImpactLink fills defaults, validates, and appends an impact link. The
// parent event must already be present in the dataset.
func (d *Dataset) AddImpactLink(l ImpactLink) error {
	if err := prepare(&l); err != nil {
		return fmt.Errorf("impact link %s->%s, %w", l.ParentID, l.RelatedIndicator, err)
	}
	if _, ok := d.Event(l.ParentID); !ok {
		return fmt.Errorf("impact link %s->%s, %w", l.ParentID, l.RelatedIndicator, ErrNoParentEvent)
	}
	if l.CollectionDate.IsZero() {
		l.CollectionDate = time.Now().UTC().Truncate(24 * time.Hour)
	}
	d.ImpactLinks = append(d.ImpactLinks, l)
	return nil
}

// Event looks up a cataloged event by id.
func (d *Dataset) Event(id string) (*Event, bool) {
	for i := range d.Events {
		if d.Events[i].ID == id {
			return &d.Events[i], true
		}
	}
	return nil, false
}

// Input converts the dataset into the forecaster's typed in-memory input.
func (d *Dataset) Input() (fincast.Input, error) {
	var in fincast.Input

	for _, o := range d.Observations {
		conf, err := timeseries.ParseConfidence(o.Confidence)
		if err != nil {
			return fincast.Input{}, fmt.Errorf("observation %s, %w", o.IndicatorCode, err)
		}
		in.Observations = append(in.Observations, timeseries.Observation{
			IndicatorCode:  o.IndicatorCode,
			Date:           o.ObservationDate,
			Value:          o.Value,
			Confidence:     conf,
			CollectionDate: o.CollectionDate,
		})
	}

	for _, e := range d.Events {
		in.Events = append(in.Events, impact.NewEvent(e.ID, e.Name, e.Date, e.Category))
	}

	for _, l := range d.ImpactLinks {
		dir, err := impact.ParseDirection(l.Direction)
		if err != nil {
			return fincast.Input{}, fmt.Errorf("impact link %s->%s, %w", l.ParentID, l.RelatedIndicator, err)
		}
		conf, err := timeseries.ParseConfidence(l.Confidence)
		if err != nil {
			return fincast.Input{}, fmt.Errorf("impact link %s->%s, %w", l.ParentID, l.RelatedIndicator, err)
		}
		in.Links = append(in.Links, impact.Link{
			EventID:       l.ParentID,
			IndicatorCode: l.RelatedIndicator,
			Direction:     dir,
			MagnitudeLow:  l.MagnitudeLow,
			MagnitudeHigh: l.MagnitudeHigh,
			LagLowMonths:  l.LagLowMonths,
			LagHighMonths: l.LagHighMonths,
			Confidence:    conf,
		})
	}

	return in, nil
}

func prepare(rec any) error {
	if err := defaults.Set(rec); err != nil {
		return err
	}
	return validate.Struct(rec)
}
