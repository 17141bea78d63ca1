package websocket

import (
	"encoding/json"
	"sync"

	"github.com/movstream/backend/internal/common/jwtverify"
	"github.com/movstream/backend/internal/common/logger"
	prommetrics "github.com/movstream/backend/internal/common/prometheus"
)

// Hub owns the live connection set and the two routing indices: user ID to
// its single current connection, and the set of admin connections. Controllers
// push state-change events through it after committing their writes; every
// send is best-effort and never surfaces an error to the caller.
//
// Invariants:
//   - at most one indexed connection per user ID (newest authentication wins;
//     the superseded socket stays open but no longer receives targeted sends)
//   - every admin connection is also a value in the user index
//   - closing a connection removes it from both indices, unless the user
//     entry already points at a newer connection
type Hub struct {
	mu     sync.RWMutex
	conns  map[*Client]struct{}
	users  map[string]*Client
	admins map[*Client]struct{}

	secret []byte
	log    *logger.Logger
}

func NewHub(jwtSecret string, log *logger.Logger) *Hub {
	return &Hub{
		conns:  make(map[*Client]struct{}),
		users:  make(map[string]*Client),
		admins: make(map[*Client]struct{}),
		secret: []byte(jwtSecret),
		log:    log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.conns[c] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()

	prommetrics.NotifyConnectionsTotal.Inc()
	prommetrics.NotifyConnectionsActive.Inc()
	h.log.WithFields(nil, logger.Fields{
		"total":  total,
		"action": "ws_connect",
	}).Info("websocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.conns[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, c)
	// Do not evict a newer connection that re-authenticated as the same user.
	if c.authenticated && h.users[c.userID] == c {
		delete(h.users, c.userID)
	}
	delete(h.admins, c)
	userID := c.userID
	wasAdmin := c.isAdmin
	close(c.send)
	h.mu.Unlock()

	prommetrics.NotifyConnectionsActive.Dec()
	prommetrics.NotifyDisconnectionsTotal.WithLabelValues("close").Inc()
	h.log.WithFields(nil, logger.Fields{
		"user_id": userID,
		"admin":   wasAdmin,
		"action":  "ws_disconnect",
	}).Info("websocket client disconnected")
}

// handleMessage runs on the owning connection's read goroutine. Malformed
// frames and unrecognized types are logged and dropped without touching
// connection state.
func (h *Hub) handleMessage(c *Client, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.Warnf("websocket invalid message: %v", err)
		return
	}

	switch msg.Type {
	case messageTypeAuthenticate:
		h.authenticate(c, msg.Token)
	default:
		h.log.WithFields(nil, logger.Fields{
			"type":   msg.Type,
			"action": "ws_unhandled_message",
		}).Debug("websocket message type not handled")
	}
}

func (h *Hub) authenticate(c *Client, token string) {
	claims, err := jwtverify.ParseToken(token, h.secret)
	if err != nil {
		prommetrics.NotifyAuthenticationsTotal.WithLabelValues("failure").Inc()
		h.log.Warnf("websocket authentication failed: %v", err)
		h.send(c, newAuthErrorEvent(err.Error()))
		return
	}

	h.mu.Lock()
	if _, ok := h.conns[c]; !ok {
		// Raced with close; nothing to index.
		h.mu.Unlock()
		return
	}
	if c.authenticated && h.users[c.userID] == c {
		delete(h.users, c.userID)
	}
	c.userID = claims.UserID
	c.isAdmin = claims.IsAdmin
	c.authenticated = true
	h.users[claims.UserID] = c
	if claims.IsAdmin {
		h.admins[c] = struct{}{}
	} else {
		delete(h.admins, c)
	}
	h.mu.Unlock()

	prommetrics.NotifyAuthenticationsTotal.WithLabelValues("success").Inc()
	h.log.WithFields(nil, logger.Fields{
		"user_id": claims.UserID,
		"admin":   claims.IsAdmin,
		"action":  "ws_authenticated",
	}).Info("websocket client authenticated")

	h.send(c, newConnectionStatusEvent(claims.UserID, claims.IsAdmin))
}

// Broadcast sends event to every open connection, authenticated or not.
func (h *Hub) Broadcast(event any) {
	payload, eventType, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns {
		h.deliver(c, payload, eventType)
	}
}

// SendToUser delivers event to the user's current connection. A user who is
// offline or never authenticated is a silent no-op; nothing is queued.
func (h *Hub) SendToUser(userID string, event any) {
	payload, eventType, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.users[userID]
	if !ok {
		h.log.WithFields(nil, logger.Fields{
			"user_id": userID,
			"type":    eventType,
			"action":  "ws_send_offline",
		}).Debug("websocket target user offline")
		return
	}
	h.deliver(c, payload, eventType)
}

// NotifyAdmins sends event to every connection in the admin set.
func (h *Hub) NotifyAdmins(event any) {
	payload, eventType, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.admins {
		h.deliver(c, payload, eventType)
	}
}

// NotifyNewPremium tells every connected admin about a freshly submitted
// premium subscription.
func (h *Hub) NotifyNewPremium(subscription any) {
	h.NotifyAdmins(PremiumSubscriptionEvent{
		Type:   EventTypePremiumSubscription,
		Action: PremiumActionNew,
		Data:   subscription,
	})
}

// NotifyPremiumStatusChange fans a subscription status change out to all
// admins and, when online, to the owning user.
func (h *Hub) NotifyPremiumStatusChange(subscriptionID, newStatus, userID string) {
	event := PremiumSubscriptionEvent{
		Type:           EventTypePremiumSubscription,
		Action:         PremiumActionStatusChange,
		SubscriptionID: subscriptionID,
		NewStatus:      newStatus,
	}
	h.NotifyAdmins(event)
	if userID != "" {
		h.SendToUser(userID, event)
	}
}

func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.users[userID]
	return ok
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) AdminCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.admins)
}

// Shutdown closes every open connection; the read pumps then unregister
// themselves. Clients are expected to reconnect and re-authenticate, the
// hub keeps no state across restarts.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.conn.Close()
	}

	h.log.WithFields(nil, logger.Fields{
		"clients": len(clients),
		"action":  "ws_hub_shutdown",
	}).Info("websocket hub shutdown completed")
}

func (h *Hub) encode(event any) ([]byte, string, bool) {
	eventType := eventTypeOf(event)
	payload, err := marshalEvent(event)
	if err != nil {
		h.log.Errorf("websocket marshal error type=%s: %v", eventType, err)
		return nil, "", false
	}
	return payload, eventType, true
}

// deliver enqueues payload without blocking; a slow or unready connection
// drops the event. Callers hold at least a read lock, which excludes
// unregister closing the send channel underneath us.
func (h *Hub) deliver(c *Client, payload []byte, eventType string) {
	select {
	case c.send <- payload:
		prommetrics.NotifyEventsSentTotal.WithLabelValues(eventType).Inc()
	default:
		prommetrics.NotifyEventsDroppedTotal.WithLabelValues("buffer_full").Inc()
		h.log.WithFields(nil, logger.Fields{
			"user_id": c.userID,
			"type":    eventType,
			"action":  "ws_send_dropped",
		}).Warn("websocket send buffer full, dropping event")
	}
}

// send is deliver with its own lock, for replies issued from the state machine.
func (h *Hub) send(c *Client, event any) {
	payload, eventType, ok := h.encode(event)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, open := h.conns[c]; !open {
		return
	}
	h.deliver(c, payload, eventType)
}

func (h *Hub) clientUserID(c *Client) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.userID
}
