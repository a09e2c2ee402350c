package csync

import "time"

// Window is the due-date acceptance window for a sync run. A nil bound is
// open-ended on that side.
type Window struct {
	Start          *time.Time
	End            *time.Time
	IncludeUndated bool
}

// Includes reports whether a record with the given due date falls inside
// the window. Undated records are governed solely by IncludeUndated.
// Bounds are inclusive on both ends; dates are compared as instants.
func (w Window) Includes(due *time.Time) bool {
	if due == nil {
		return w.IncludeUndated
	}
	switch {
	case w.Start != nil && w.End != nil:
		return !due.Before(*w.Start) && !due.After(*w.End)
	case w.End != nil:
		return !due.After(*w.End)
	case w.Start != nil:
		return !due.Before(*w.Start)
	}
	return true
}
