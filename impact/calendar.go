package impact

import (
	"strconv"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
)

// PolicyCycle expands a recurring calendar definition into one dated event
// per year within [start, end]. Useful for cataloging annual policy-cycle
// occurrences such as budget adoptions or strategy reviews that repeat on a
// fixed calendar rule.
func PolicyCycle(hol *cal.Holiday, start, end time.Time, category string) []Event {
	slug := strings.ReplaceAll(strings.ToLower(hol.Name), " ", "_")

	events := []Event{}
	for year := start.Year(); year <= end.Year(); year++ {
		_, observed := hol.Calc(year)
		if observed.Before(start) || observed.After(end) {
			continue
		}
		events = append(events, Event{
			ID:       slug + "_" + strconv.Itoa(year),
			Name:     hol.Name + " " + strconv.Itoa(year),
			Date:     observed,
			Category: category,
		})
	}
	return events
}
