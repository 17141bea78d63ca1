package domain

import "time"

const (
	TypeBug     = "bug"
	TypeFeature = "feature"
	TypeContent = "content"
	TypeOther   = "other"
)

const (
	StatusPending  = "pending"
	StatusReviewed = "reviewed"
	StatusResolved = "resolved"
)

func ValidType(t string) bool {
	switch t {
	case TypeBug, TypeFeature, TypeContent, TypeOther:
		return true
	}
	return false
}

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusReviewed, StatusResolved:
		return true
	}
	return false
}

type Feedback struct {
	ID              string
	UserID          string // empty for anonymous submissions
	Name            string
	Email           string
	Type            string
	Subject         string
	Message         string
	Status          string
	IsRead          bool
	ResponseMessage string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ListFilter narrows the admin feedback listing.
type ListFilter struct {
	Type   string
	Status string
	Unread bool
	Page   int
	Limit  int
}
