// Package collection extracts the next bin collection from the council's results page.
package collection

import (
	"fmt"
	"time"
)

// Colour identifies the bin type due next.
type Colour int

// Known bin colours. BlackGrey is the fallback for unrecognised headings.
const (
	BlackGrey Colour = iota
	Green
	Brown
)

func (c Colour) String() string {
	switch c {
	case Green:
		return "Green"
	case Brown:
		return "Brown"
	default:
		return "Black/Grey"
	}
}

// Record is the next collection: a civil date and the bin colour.
// Date is always midnight UTC; only its year, month and day are meaningful.
type Record struct {
	Date   time.Time
	Colour Colour
}

// NewRecord builds a Record for the given calendar day.
func NewRecord(year int, month time.Month, day int, colour Colour) Record {
	return Record{Date: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Colour: colour}
}

func (r Record) String() string {
	return fmt.Sprintf("%s on %s", r.Colour, r.Date.Format("2006-01-02"))
}
