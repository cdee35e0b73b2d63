package costcenters

import "time"

// CostCenter is an optional tagging dimension for journal lines.
type CostCenter struct {
	ID          int64
	BusinessID  int64
	Code        string
	Name        string
	Description string
	ParentID    *int64
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
