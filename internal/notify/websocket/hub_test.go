package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	gorillaWS "github.com/gorilla/websocket"

	"github.com/movstream/backend/internal/common/config"
	"github.com/movstream/backend/internal/common/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	log := logger.NewNop()
	hub := NewHub(testSecret, log)
	cfg := config.Config{
		WebSocketWriteWait:   time.Second,
		WebSocketPongWait:    5 * time.Second,
		WebSocketPingPeriod:  4 * time.Second,
		WebSocketMaxMsgSize:  4096,
		WebSocketSendBufSize: 16,
	}
	server := httptest.NewServer(NewHandler(hub, cfg, log))
	t.Cleanup(func() {
		hub.Shutdown()
		server.Close()
	})
	return hub, server
}

func dial(t *testing.T, server *httptest.Server) *gorillaWS.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func mintToken(t *testing.T, userID string, admin bool) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": userID,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}
	if admin {
		claims["role"] = "admin"
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func sendAuth(t *testing.T, conn *gorillaWS.Conn, token string) {
	t.Helper()
	frame, _ := json.Marshal(inboundMessage{Type: messageTypeAuthenticate, Token: token})
	if err := conn.WriteMessage(gorillaWS.TextMessage, frame); err != nil {
		t.Fatalf("write authenticate frame: %v", err)
	}
}

func readEvent(t *testing.T, conn *gorillaWS.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read event: %v", err)
	}
	var event map[string]any
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("decode event %q: %v", raw, err)
	}
	return event
}

// marker returns a broadcast payload used to prove a connection received
// nothing from a preceding operation: per-connection delivery is ordered, so
// if the marker is the very next frame, nothing was sent in between. Reading
// with an expired deadline instead would poison the connection, gorilla read
// errors are permanent.
func marker(name string) map[string]string {
	return map[string]string{"type": "test", "payload": name}
}

func expectMarker(t *testing.T, conn *gorillaWS.Conn, name string) {
	t.Helper()
	event := readEvent(t, conn)
	if event["payload"] != name {
		t.Fatalf("expected marker %q as next frame, got %v", name, event)
	}
}

func waitFor(t *testing.T, check func() bool, message string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(message)
}

func authenticate(t *testing.T, conn *gorillaWS.Conn, token string) map[string]any {
	t.Helper()
	sendAuth(t, conn, token)
	event := readEvent(t, conn)
	if event["type"] != EventTypeConnectionStatus {
		t.Fatalf("expected connection_status, got %v", event)
	}
	return event
}

func TestAuthenticateSuccess(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server)

	event := authenticate(t, conn, mintToken(t, "user-1", false))
	if event["userId"] != "user-1" {
		t.Errorf("expected userId user-1, got %v", event["userId"])
	}
	if event["isAdmin"] != false {
		t.Errorf("expected isAdmin false, got %v", event["isAdmin"])
	}

	if !hub.IsUserOnline("user-1") {
		t.Error("user should be indexed after authentication")
	}
	if hub.AdminCount() != 0 {
		t.Error("non-admin must not join the admin set")
	}
}

func TestAuthenticateAdmin(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server)

	event := authenticate(t, conn, mintToken(t, "admin-1", true))
	if event["isAdmin"] != true {
		t.Errorf("expected isAdmin true, got %v", event["isAdmin"])
	}
	if hub.AdminCount() != 1 {
		t.Errorf("expected one admin subscriber, got %d", hub.AdminCount())
	}
}

func TestAuthenticateFailureKeepsConnection(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server)

	sendAuth(t, conn, "not-a-jwt")
	event := readEvent(t, conn)
	if event["type"] != EventTypeError {
		t.Fatalf("expected error event, got %v", event)
	}
	if hub.IsUserOnline("user-1") || hub.AdminCount() != 0 {
		t.Error("failed authentication must not touch the indices")
	}

	// The same socket can retry and succeed.
	authenticate(t, conn, mintToken(t, "user-1", false))
	if !hub.IsUserOnline("user-1") {
		t.Error("retry after failure should authenticate")
	}
}

func TestSingleConnectionPerUser(t *testing.T) {
	hub, server := newTestServer(t)

	first := dial(t, server)
	authenticate(t, first, mintToken(t, "user-1", false))

	second := dial(t, server)
	authenticate(t, second, mintToken(t, "user-1", false))

	if hub.ConnectionCount() != 2 {
		t.Fatalf("both sockets stay open, got %d connections", hub.ConnectionCount())
	}

	hub.SendToUser("user-1", map[string]string{"type": "test", "payload": "hello"})
	hub.Broadcast(marker("everyone"))

	event := readEvent(t, second)
	if event["payload"] != "hello" {
		t.Errorf("newest connection should receive targeted sends, got %v", event)
	}
	expectMarker(t, second, "everyone")

	// The superseded socket skipped the targeted send but still gets
	// broadcasts: the marker is its very next frame.
	expectMarker(t, first, "everyone")
}

func TestDisconnectCleansIndices(t *testing.T) {
	hub, server := newTestServer(t)

	conn := dial(t, server)
	authenticate(t, conn, mintToken(t, "admin-1", true))

	conn.Close()
	waitFor(t, func() bool { return hub.ConnectionCount() == 0 }, "connection was not unregistered")
	if hub.IsUserOnline("admin-1") {
		t.Error("closed connection must leave the user index")
	}
	if hub.AdminCount() != 0 {
		t.Error("closed connection must leave the admin set")
	}
}

func TestDisconnectOldConnectionKeepsNewIndex(t *testing.T) {
	hub, server := newTestServer(t)

	first := dial(t, server)
	authenticate(t, first, mintToken(t, "user-1", false))

	second := dial(t, server)
	authenticate(t, second, mintToken(t, "user-1", false))

	first.Close()
	waitFor(t, func() bool { return hub.ConnectionCount() == 1 }, "old connection was not unregistered")

	if !hub.IsUserOnline("user-1") {
		t.Fatal("closing the superseded socket must not evict the newer one")
	}
	hub.SendToUser("user-1", map[string]string{"type": "test", "payload": "still-here"})
	if event := readEvent(t, second); event["payload"] != "still-here" {
		t.Errorf("newest connection should still be reachable, got %v", event)
	}
}

func TestSendToOfflineUserIsNoOp(t *testing.T) {
	hub, server := newTestServer(t)

	conn := dial(t, server)
	authenticate(t, conn, mintToken(t, "user-1", false))

	hub.SendToUser("ghost", map[string]string{"type": "test"})
	hub.Broadcast(marker("after-ghost"))

	// Nothing leaked to the connected user; the marker is the next frame.
	expectMarker(t, conn, "after-ghost")
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	hub, server := newTestServer(t)

	authed1 := dial(t, server)
	authenticate(t, authed1, mintToken(t, "user-1", false))
	authed2 := dial(t, server)
	authenticate(t, authed2, mintToken(t, "user-2", false))
	anonymous := dial(t, server)

	waitFor(t, func() bool { return hub.ConnectionCount() == 3 }, "connections not registered")

	hub.Broadcast(NewAccountStatusChangedEvent("user-9", false, "Your account has been locked."))

	for _, conn := range []*gorillaWS.Conn{authed1, authed2, anonymous} {
		event := readEvent(t, conn)
		if event["type"] != EventTypeAccountStatusChanged {
			t.Errorf("expected account_status_changed, got %v", event)
		}
		if event["userId"] != "user-9" || event["isActive"] != false {
			t.Errorf("unexpected payload: %v", event)
		}
	}
}

func TestMalformedFrameIgnored(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server)

	if err := conn.WriteMessage(gorillaWS.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write malformed frame: %v", err)
	}

	// The connection survives and can authenticate normally.
	authenticate(t, conn, mintToken(t, "user-1", false))
	if !hub.IsUserOnline("user-1") {
		t.Error("connection should survive a malformed frame")
	}
}

func TestUnknownMessageTypeIgnored(t *testing.T) {
	hub, server := newTestServer(t)
	conn := dial(t, server)
	authenticate(t, conn, mintToken(t, "user-1", false))

	if err := conn.WriteMessage(gorillaWS.TextMessage, []byte(`{"type":"subscribe","channel":"x"}`)); err != nil {
		t.Fatalf("write unknown frame: %v", err)
	}

	hub.Broadcast(map[string]string{"type": "test", "payload": "after-unknown"})
	if event := readEvent(t, conn); event["payload"] != "after-unknown" {
		t.Errorf("connection should stay usable after an unknown type, got %v", event)
	}
}

func TestPremiumSubscriptionFlow(t *testing.T) {
	hub, server := newTestServer(t)

	admin := dial(t, server)
	authenticate(t, admin, mintToken(t, "admin-1", true))

	subscriber := dial(t, server)
	authenticate(t, subscriber, mintToken(t, "user-7", false))

	anonymous := dial(t, server)
	waitFor(t, func() bool { return hub.ConnectionCount() == 3 }, "connections not registered")

	hub.NotifyNewPremium(map[string]any{"id": "sub-1", "userId": "user-7", "plan": "monthly"})
	hub.Broadcast(marker("after-new"))

	event := readEvent(t, admin)
	if event["type"] != EventTypePremiumSubscription || event["action"] != PremiumActionNew {
		t.Fatalf("expected new premium event for admin, got %v", event)
	}
	expectMarker(t, admin, "after-new")
	// The new-premium event went to admins only.
	expectMarker(t, subscriber, "after-new")
	expectMarker(t, anonymous, "after-new")

	hub.NotifyPremiumStatusChange("sub-1", "approved", "user-7")
	hub.Broadcast(marker("after-change"))

	adminEvent := readEvent(t, admin)
	if adminEvent["action"] != PremiumActionStatusChange || adminEvent["newStatus"] != "approved" {
		t.Errorf("unexpected admin status change event: %v", adminEvent)
	}
	userEvent := readEvent(t, subscriber)
	if userEvent["subscriptionId"] != "sub-1" || userEvent["newStatus"] != "approved" {
		t.Errorf("unexpected subscriber status change event: %v", userEvent)
	}
	// The never-authenticated connection saw neither premium event.
	expectMarker(t, anonymous, "after-change")
}
