package websocket

import "encoding/json"

// Inbound control frame. "authenticate" is the only recognized type; anything
// else is ignored so future client versions can speak to older servers.
type inboundMessage struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

const (
	messageTypeAuthenticate = "authenticate"
)

const (
	EventTypeConnectionStatus     = "connection_status"
	EventTypeError                = "error"
	EventTypeAccountStatusChanged = "account_status_changed"
	EventTypePremiumSubscription  = "premium_subscription"

	PremiumActionNew          = "new"
	PremiumActionStatusChange = "status_change"
)

type ConnectionStatusEvent struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

func (ConnectionStatusEvent) EventType() string { return EventTypeConnectionStatus }

type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (ErrorEvent) EventType() string { return EventTypeError }

type AccountStatusChangedEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	IsActive bool   `json:"isActive"`
	Message  string `json:"message"`
}

func (AccountStatusChangedEvent) EventType() string { return EventTypeAccountStatusChanged }

func NewAccountStatusChangedEvent(userID string, isActive bool, message string) AccountStatusChangedEvent {
	return AccountStatusChangedEvent{
		Type:     EventTypeAccountStatusChanged,
		UserID:   userID,
		IsActive: isActive,
		Message:  message,
	}
}

type PremiumSubscriptionEvent struct {
	Type           string `json:"type"`
	Action         string `json:"action"`
	Data           any    `json:"data,omitempty"`
	SubscriptionID string `json:"subscriptionId,omitempty"`
	NewStatus      string `json:"newStatus,omitempty"`
}

func (PremiumSubscriptionEvent) EventType() string { return EventTypePremiumSubscription }

func newConnectionStatusEvent(userID string, isAdmin bool) ConnectionStatusEvent {
	return ConnectionStatusEvent{
		Type:    EventTypeConnectionStatus,
		Status:  "connected",
		UserID:  userID,
		IsAdmin: isAdmin,
	}
}

func newAuthErrorEvent(details string) ErrorEvent {
	return ErrorEvent{
		Type:    EventTypeError,
		Message: "Authentication failed",
		Details: details,
	}
}

func eventTypeOf(event any) string {
	if te, ok := event.(interface{ EventType() string }); ok {
		return te.EventType()
	}
	return "custom"
}

func marshalEvent(event any) ([]byte, error) {
	return json.Marshal(event)
}
