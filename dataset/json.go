package dataset

import (
	"io"

	"github.com/goccy/go-json"
)

// WriteJSON serializes the dataset for archival or exchange with the
// enrichment tooling.
func (d *Dataset) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

// ReadJSON decodes a dataset previously written with WriteJSON and
// revalidates every record on the way in.
func ReadJSON(r io.Reader) (*Dataset, error) {
	var raw Dataset
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, err
	}

	d := New()
	for _, e := range raw.Events {
		if err := d.AddEvent(e); err != nil {
			return nil, err
		}
	}
	for _, o := range raw.Observations {
		if err := d.AddObservation(o); err != nil {
			return nil, err
		}
	}
	for _, l := range raw.ImpactLinks {
		if err := d.AddImpactLink(l); err != nil {
			return nil, err
		}
	}
	return d, nil
}
