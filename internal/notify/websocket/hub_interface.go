package websocket

// Notifier is what controllers see: fire-and-forget pushes that never fail
// the request that triggered them.
type Notifier interface {
	Broadcast(event any)
	SendToUser(userID string, event any)
	NotifyAdmins(event any)
	NotifyNewPremium(subscription any)
	NotifyPremiumStatusChange(subscriptionID, newStatus, userID string)
}

var _ Notifier = (*Hub)(nil)
