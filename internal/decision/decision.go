// Package decision converts the next collection into an indicator command.
package decision

import (
	"time"

	"github.com/ibs-source/bindicator/internal/collection"
	"github.com/ibs-source/bindicator/internal/indicator"
)

// The indicator the bin reminder owns and the look of the reminder.
const (
	ReminderIndicator = indicator.Indicator2
	ReminderBlinkMs   = 550
)

// ReminderColour is dark green.
var ReminderColour = indicator.RGB{0, 100, 0}

// Activate is the command that lights the reminder.
func Activate() indicator.Command {
	return indicator.Command{Indicator: ReminderIndicator, Colour: ReminderColour, BlinkMs: ReminderBlinkMs}
}

// Clear is the command that turns the reminder off.
func Clear() indicator.Command {
	return indicator.Command{Indicator: ReminderIndicator, Colour: indicator.Off}
}

// Decide returns the command to send for record as seen on now's calendar day,
// or nil when nothing should be published. Time of day is ignored on both sides;
// now is read in its own location.
//
//	days until collection >= 1  -> Activate
//	days until collection == -1 -> Clear (collected yesterday)
//	anything else               -> nil
func Decide(record collection.Record, now time.Time) *indicator.Command {
	var cmd indicator.Command
	switch delta := DaysUntil(record.Date, now); {
	case delta >= 1:
		cmd = Activate()
	case delta == -1:
		cmd = Clear()
	default:
		return nil
	}
	return &cmd
}

// DaysUntil is the calendar-day difference due minus now.
func DaysUntil(due, now time.Time) int {
	cy, cm, cd := due.Date()
	ny, nm, nd := now.Date()
	c := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(c.Sub(n).Hours() / 24)
}
