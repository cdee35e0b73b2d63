package periods

import "time"

// Period represents a named accounting period window.
type Period struct {
	ID         int64
	BusinessID int64
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	IsClosed   bool
	ClosedAt   *time.Time
	ClosedBy   *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Contains reports whether the date falls inside the period window, inclusive.
func (p Period) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// Overlaps reports whether the [start, end] range intersects the period.
func (p Period) Overlaps(start, end time.Time) bool {
	return !start.After(p.EndDate) && !end.Before(p.StartDate)
}
