package domain

import "time"

const (
	TypeMaintenance = "maintenance"
	TypeCustom      = "custom"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// EmailNotificationLog records one announcement campaign: what was sent, to
// which group, and whether every batch went out.
type EmailNotificationLog struct {
	ID             string
	Type           string
	Subject        string
	Message        string
	RecipientGroup string
	RecipientCount int
	Status         string
	ErrorDetail    string
	SentBy         string
	CreatedAt      time.Time
}
