package domain

import "time"

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is a known subscription lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

type Subscription struct {
	ID        string
	UserID    string
	Plan      string
	Price     int64 // smallest currency unit
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Subscription) IsPending() bool {
	return s.Status == StatusPending
}
