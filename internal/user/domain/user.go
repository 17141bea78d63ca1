package domain

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string
	FullName     string
	Email        string
	PasswordHash string
	Role         string
	AccountType  string // empty for free accounts
	IsActive     bool
	IsVerified   bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u User) IsPremium() bool {
	return u.AccountType != ""
}

// ListFilter narrows the paginated admin user listing.
type ListFilter struct {
	IsActive *bool
	Role     string
	Search   string // matches full name or email, case-insensitive
	Page     int
	Limit    int
}

// Recipient groups for batched email announcements.
const (
	GroupAll     = "all"
	GroupPremium = "premium"
	GroupFree    = "free"
)

type Recipient struct {
	Email    string
	FullName string
}
