package scheduler

import (
	"github.com/paiban/paiban/pkg/errors"
	"github.com/paiban/paiban/pkg/scheduler/model"
)

// validateVisit rejects structurally malformed input before the solver ever
// runs. A negative or zero duration, or a committed window with start after
// end, can never be satisfied and is a caller bug, not an unassigned-visit
// outcome.
func validateVisit(v model.Visit) error {
	if v.ID == "" {
		return errors.MalformedVisit("", "missing id")
	}
	if v.DurationSeconds <= 0 {
		return errors.MalformedVisit(v.ID, "duration_seconds must be positive")
	}
	if v.CommittedWindow != nil && v.CommittedWindow.Start > v.CommittedWindow.End {
		return errors.MalformedVisit(v.ID, "committed window start is after end")
	}
	if v.Pin.HasVisitor() && v.Pin.VisitorID == "" {
		return errors.MalformedVisit(v.ID, "pin specifies visitor kind with empty visitor id")
	}
	return nil
}

// validateVisitor rejects structurally malformed visitor input.
func validateVisitor(v model.Visitor) error {
	if v.ID == "" {
		return errors.MalformedVisitor("", "missing id")
	}
	return nil
}
