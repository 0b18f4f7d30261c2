package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

var ErrMissingColumn = errors.New("missing required column")

// The one-table layout mixes observation, event, and impact_link rows keyed
// by record_type, matching the unified collection schema the data team
// maintains.
const (
	colRecordType = "record_type"
)

// dateLayouts accepted for date cells, most specific first. Survey-year
// observations are often published with month or year precision only.
var dateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// ReadCSV decodes a unified one-table CSV into a validated dataset. Rows are
// dispatched on record_type; unknown types fail with the row number so the
// data team can fix the source.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header, %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col[colRecordType]; !ok {
		return nil, fmt.Errorf("%s, %w", colRecordType, ErrMissingColumn)
	}

	cell := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	d := New()
	for rowNum := 2; ; rowNum++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d, %w", rowNum, err)
		}

		switch rt := cell(row, colRecordType); rt {
		case "observation":
			o, err := observationFromRow(row, cell)
			if err == nil {
				err = d.AddObservation(o)
			}
			if err != nil {
				return nil, fmt.Errorf("row %d, %w", rowNum, err)
			}
		case "event":
			e, err := eventFromRow(row, cell)
			if err == nil {
				err = d.AddEvent(e)
			}
			if err != nil {
				return nil, fmt.Errorf("row %d, %w", rowNum, err)
			}
		case "impact_link":
			l, err := linkFromRow(row, cell)
			if err == nil {
				err = d.AddImpactLink(l)
			}
			if err != nil {
				return nil, fmt.Errorf("row %d, %w", rowNum, err)
			}
		default:
			return nil, fmt.Errorf("row %d type %q, %w", rowNum, rt, ErrUnknownRecordType)
		}
	}
	return d, nil
}

type cellFunc func(row []string, name string) string

func observationFromRow(row []string, cell cellFunc) (Observation, error) {
	obsDate, err := parseDate(cell(row, "observation_date"))
	if err != nil {
		return Observation{}, fmt.Errorf("observation_date, %w", err)
	}
	collDate, err := parseOptionalDate(cell(row, "collection_date"))
	if err != nil {
		return Observation{}, fmt.Errorf("collection_date, %w", err)
	}
	value, err := parseFloat(cell(row, "value_numeric"))
	if err != nil {
		return Observation{}, fmt.Errorf("value_numeric, %w", err)
	}
	return Observation{
		Pillar:          cell(row, "pillar"),
		Indicator:       cell(row, "indicator"),
		IndicatorCode:   cell(row, "indicator_code"),
		Value:           value,
		ObservationDate: obsDate,
		SourceName:      cell(row, "source_name"),
		SourceURL:       cell(row, "source_url"),
		Confidence:      cell(row, "confidence"),
		OriginalText:    cell(row, "original_text"),
		Notes:           cell(row, "notes"),
		CollectedBy:     cell(row, "collected_by"),
		CollectionDate:  collDate,
	}, nil
}

func eventFromRow(row []string, cell cellFunc) (Event, error) {
	date, err := parseDate(cell(row, "event_date"))
	if err != nil {
		return Event{}, fmt.Errorf("event_date, %w", err)
	}
	collDate, err := parseOptionalDate(cell(row, "collection_date"))
	if err != nil {
		return Event{}, fmt.Errorf("collection_date, %w", err)
	}
	return Event{
		ID:             cell(row, "id"),
		Category:       cell(row, "category"),
		Date:           date,
		Name:           cell(row, "event_name"),
		Description:    cell(row, "description"),
		SourceName:     cell(row, "source_name"),
		SourceURL:      cell(row, "source_url"),
		Confidence:     cell(row, "confidence"),
		OriginalText:   cell(row, "original_text"),
		Notes:          cell(row, "notes"),
		CollectedBy:    cell(row, "collected_by"),
		CollectionDate: collDate,
	}, nil
}

func linkFromRow(row []string, cell cellFunc) (ImpactLink, error) {
	magLow, err := parseFloat(cell(row, "magnitude_low"))
	if err != nil {
		return ImpactLink{}, fmt.Errorf("magnitude_low, %w", err)
	}
	magHigh, err := parseFloat(cell(row, "magnitude_high"))
	if err != nil {
		return ImpactLink{}, fmt.Errorf("magnitude_high, %w", err)
	}
	lagLow, err := parseInt(cell(row, "lag_months_low"))
	if err != nil {
		return ImpactLink{}, fmt.Errorf("lag_months_low, %w", err)
	}
	lagHigh, err := parseInt(cell(row, "lag_months_high"))
	if err != nil {
		return ImpactLink{}, fmt.Errorf("lag_months_high, %w", err)
	}
	collDate, err := parseOptionalDate(cell(row, "collection_date"))
	if err != nil {
		return ImpactLink{}, fmt.Errorf("collection_date, %w", err)
	}
	return ImpactLink{
		ParentID:         cell(row, "parent_id"),
		Pillar:           cell(row, "pillar"),
		RelatedIndicator: cell(row, "related_indicator"),
		Direction:        cell(row, "impact_direction"),
		MagnitudeLow:     magLow,
		MagnitudeHigh:    magHigh,
		LagLowMonths:     lagLow,
		LagHighMonths:    lagHigh,
		EvidenceBasis:    cell(row, "evidence_basis"),
		SourceName:       cell(row, "source_name"),
		SourceURL:        cell(row, "source_url"),
		Confidence:       cell(row, "confidence"),
		OriginalText:     cell(row, "original_text"),
		Notes:            cell(row, "notes"),
		CollectedBy:      cell(row, "collected_by"),
		CollectionDate:   collDate,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseDate(s)
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
