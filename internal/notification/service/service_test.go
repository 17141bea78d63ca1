package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/movstream/backend/internal/common/clock"
	commonerrors "github.com/movstream/backend/internal/common/errors"
	"github.com/movstream/backend/internal/common/logger"
	"github.com/movstream/backend/internal/notification/domain"
	userdomain "github.com/movstream/backend/internal/user/domain"
)

type mockLogRepo struct {
	created []domain.EmailNotificationLog
	listed  []domain.EmailNotificationLog
}

func (m *mockLogRepo) Create(ctx context.Context, log domain.EmailNotificationLog) error {
	m.created = append(m.created, log)
	return nil
}

func (m *mockLogRepo) List(ctx context.Context, limit int) ([]domain.EmailNotificationLog, error) {
	return m.listed, nil
}

type mockRecipients struct {
	recipients []userdomain.Recipient
	err        error
}

func (m *mockRecipients) FindRecipientsByGroup(ctx context.Context, group string) ([]userdomain.Recipient, error) {
	return m.recipients, m.err
}

type mockSender struct {
	batches [][]string
	failOn  int // 1-based batch index to fail, 0 for never
}

func (m *mockSender) Send(from string, bcc []string, subject, body string) error {
	m.batches = append(m.batches, bcc)
	if m.failOn != 0 && len(m.batches) == m.failOn {
		return errors.New("smtp unavailable")
	}
	return nil
}

type mockIDs struct{ id string }

func (m mockIDs) NewID() string { return m.id }

func recipientList(n int) []userdomain.Recipient {
	out := make([]userdomain.Recipient, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, userdomain.Recipient{Email: string(rune('a'+i%26)) + "@example.com"})
	}
	return out
}

func newTestService(t *testing.T, repo *mockLogRepo, recipients *mockRecipients, sender *mockSender, batchSize int) (*NotificationService, *[]time.Duration) {
	t.Helper()
	svc := NewNotificationService(Deps{
		Repo:       repo,
		Recipients: recipients,
		Sender:     sender,
		IDs:        mockIDs{id: "log-1"},
		Clock:      clock.NewMockClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
		Log:        logger.NewNop(),
		From:       "noreply@movstream.local",
		BatchSize:  batchSize,
		BatchPause: time.Second,
	})

	var pauses []time.Duration
	svc.sleep = func(d time.Duration) { pauses = append(pauses, d) }
	return svc, &pauses
}

func TestSendCustomBatches(t *testing.T) {
	repo := &mockLogRepo{}
	sender := &mockSender{}
	recipients := &mockRecipients{recipients: recipientList(120)}
	svc, pauses := newTestService(t, repo, recipients, sender, 50)

	entry, err := svc.SendCustom(context.Background(), "admin-1", "New releases", "Fresh titles this week.", userdomain.GroupAll)
	if err != nil {
		t.Fatalf("SendCustom returned error: %v", err)
	}

	if len(sender.batches) != 3 {
		t.Fatalf("expected 3 batches for 120 recipients at size 50, got %d", len(sender.batches))
	}
	if len(sender.batches[0]) != 50 || len(sender.batches[1]) != 50 || len(sender.batches[2]) != 20 {
		t.Errorf("unexpected batch sizes: %d, %d, %d",
			len(sender.batches[0]), len(sender.batches[1]), len(sender.batches[2]))
	}
	if len(*pauses) != 2 {
		t.Errorf("expected a pause between batches only, got %d pauses", len(*pauses))
	}

	if entry.Status != domain.StatusSuccess {
		t.Errorf("expected success status, got %q", entry.Status)
	}
	if entry.RecipientCount != 120 {
		t.Errorf("expected 120 recipients recorded, got %d", entry.RecipientCount)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one log entry, got %d", len(repo.created))
	}
}

func TestSendCustomPartialFailure(t *testing.T) {
	repo := &mockLogRepo{}
	sender := &mockSender{failOn: 2}
	recipients := &mockRecipients{recipients: recipientList(120)}
	svc, _ := newTestService(t, repo, recipients, sender, 50)

	entry, err := svc.SendCustom(context.Background(), "admin-1", "Subject", "Body", userdomain.GroupPremium)
	if err != nil {
		t.Fatalf("a failed batch should not fail the call: %v", err)
	}
	if entry.Status != domain.StatusFailed {
		t.Errorf("expected failed status after a batch error, got %q", entry.Status)
	}
	if entry.ErrorDetail == "" {
		t.Error("expected error detail to be recorded")
	}
	if len(sender.batches) != 3 {
		t.Errorf("remaining batches should still be attempted, got %d", len(sender.batches))
	}
}

func TestSendCustomNoRecipients(t *testing.T) {
	repo := &mockLogRepo{}
	sender := &mockSender{}
	svc, _ := newTestService(t, repo, &mockRecipients{}, sender, 50)

	_, err := svc.SendCustom(context.Background(), "admin-1", "Subject", "Body", userdomain.GroupFree)
	if !errors.Is(err, commonerrors.ErrNoRecipients) {
		t.Fatalf("expected ErrNoRecipients, got %v", err)
	}
	if len(sender.batches) != 0 {
		t.Error("nothing should be sent without recipients")
	}
	if len(repo.created) != 0 {
		t.Error("nothing should be logged without recipients")
	}
}

func TestSendMaintenanceTargetsEveryone(t *testing.T) {
	repo := &mockLogRepo{}
	sender := &mockSender{}
	recipients := &mockRecipients{recipients: recipientList(3)}
	svc, _ := newTestService(t, repo, recipients, sender, 50)

	entry, err := svc.SendMaintenance(context.Background(), "admin-1", "Down Sunday 02:00-04:00 UTC.")
	if err != nil {
		t.Fatalf("SendMaintenance returned error: %v", err)
	}
	if entry.Type != domain.TypeMaintenance {
		t.Errorf("expected maintenance type, got %q", entry.Type)
	}
	if entry.RecipientGroup != userdomain.GroupAll {
		t.Errorf("maintenance must go to all users, got group %q", entry.RecipientGroup)
	}
	if len(sender.batches) != 1 {
		t.Fatalf("expected a single batch, got %d", len(sender.batches))
	}
}
