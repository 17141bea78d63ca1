package service

import (
	"context"
	"errors"
	"testing"

	commonerrors "github.com/movstream/backend/internal/common/errors"
	"github.com/movstream/backend/internal/common/logger"
	fbdomain "github.com/movstream/backend/internal/feedback/domain"
	fbrepo "github.com/movstream/backend/internal/feedback/repository"
)

type mockRepo struct {
	createFunc      func(ctx context.Context, fb fbdomain.Feedback) error
	findByIDFunc    func(ctx context.Context, id string) (fbdomain.Feedback, error)
	listFunc        func(ctx context.Context, filter fbdomain.ListFilter) ([]fbdomain.Feedback, int, error)
	markReadFunc    func(ctx context.Context, id string) (fbdomain.Feedback, error)
	respondFunc     func(ctx context.Context, id, status, responseMessage string) (fbdomain.Feedback, error)
	countUnreadFunc func(ctx context.Context) (int, error)
}

func (m *mockRepo) Create(ctx context.Context, fb fbdomain.Feedback) error {
	return m.createFunc(ctx, fb)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (fbdomain.Feedback, error) {
	return m.findByIDFunc(ctx, id)
}

func (m *mockRepo) List(ctx context.Context, filter fbdomain.ListFilter) ([]fbdomain.Feedback, int, error) {
	return m.listFunc(ctx, filter)
}

func (m *mockRepo) MarkRead(ctx context.Context, id string) (fbdomain.Feedback, error) {
	return m.markReadFunc(ctx, id)
}

func (m *mockRepo) Respond(ctx context.Context, id, status, responseMessage string) (fbdomain.Feedback, error) {
	return m.respondFunc(ctx, id, status, responseMessage)
}

func (m *mockRepo) CountUnread(ctx context.Context) (int, error) {
	return m.countUnreadFunc(ctx)
}

type mockNotifier struct {
	adminEvents []any
}

func (m *mockNotifier) Broadcast(any)          {}
func (m *mockNotifier) SendToUser(string, any) {}
func (m *mockNotifier) NotifyAdmins(event any) {
	m.adminEvents = append(m.adminEvents, event)
}
func (m *mockNotifier) NotifyNewPremium(any)                             {}
func (m *mockNotifier) NotifyPremiumStatusChange(string, string, string) {}

type mockIDs struct{ id string }

func (m mockIDs) NewID() string { return m.id }

func newTestService(t *testing.T, repo fbrepo.Repository, notifier *mockNotifier) *FeedbackService {
	t.Helper()
	return NewFeedbackService(Deps{
		Repo:     repo,
		Notifier: notifier,
		IDs:      mockIDs{id: "fb-1"},
		Log:      logger.NewNop(),
	})
}

func TestSubmitNotifiesAdmins(t *testing.T) {
	var stored fbdomain.Feedback
	repo := &mockRepo{
		createFunc: func(ctx context.Context, fb fbdomain.Feedback) error {
			stored = fb
			return nil
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(t, repo, notifier)

	fb, err := svc.Submit(context.Background(), SubmitInput{
		Name:    "Visitor",
		Email:   "visitor@example.com",
		Type:    fbdomain.TypeBug,
		Subject: "Player freezes",
		Message: "The player freezes at the 10 minute mark.",
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if fb.Status != fbdomain.StatusPending {
		t.Errorf("new feedback should be pending, got %q", fb.Status)
	}
	if fb.IsRead {
		t.Error("new feedback should be unread")
	}
	if stored.ID != "fb-1" {
		t.Errorf("expected generated id fb-1, got %q", stored.ID)
	}
	if stored.UserID != "" {
		t.Errorf("anonymous submission must not carry a user id, got %q", stored.UserID)
	}

	if len(notifier.adminEvents) != 1 {
		t.Fatalf("expected one admin event, got %d", len(notifier.adminEvents))
	}
	event, ok := notifier.adminEvents[0].(newFeedbackEvent)
	if !ok {
		t.Fatalf("unexpected event type %T", notifier.adminEvents[0])
	}
	if event.FeedbackID != "fb-1" || event.Category != fbdomain.TypeBug {
		t.Errorf("unexpected event payload: %+v", event)
	}
}

func TestSubmitRecordsAuthenticatedUser(t *testing.T) {
	var stored fbdomain.Feedback
	repo := &mockRepo{
		createFunc: func(ctx context.Context, fb fbdomain.Feedback) error {
			stored = fb
			return nil
		},
	}
	svc := newTestService(t, repo, &mockNotifier{})

	fb, err := svc.Submit(context.Background(), SubmitInput{
		UserID:  "user-5",
		Name:    "Member",
		Email:   "member@example.com",
		Type:    fbdomain.TypeFeature,
		Subject: "Watchlist sorting",
		Message: "Let me sort the watchlist by release year.",
	})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if stored.UserID != "user-5" {
		t.Errorf("expected submitter user id to be stored, got %q", stored.UserID)
	}
	if fb.UserID != "user-5" {
		t.Errorf("expected submitter user id on the result, got %q", fb.UserID)
	}
}

func TestSubmitRepoErrorSkipsNotification(t *testing.T) {
	repo := &mockRepo{
		createFunc: func(ctx context.Context, fb fbdomain.Feedback) error {
			return errors.New("db down")
		},
	}
	notifier := &mockNotifier{}
	svc := newTestService(t, repo, notifier)

	if _, err := svc.Submit(context.Background(), SubmitInput{Name: "V", Email: "v@example.com", Type: "bug", Subject: "s", Message: "m"}); err == nil {
		t.Fatal("expected error from failed submit")
	}
	if len(notifier.adminEvents) != 0 {
		t.Error("failed submit must not notify admins")
	}
}

func TestRespondInvalidStatus(t *testing.T) {
	svc := newTestService(t, &mockRepo{}, &mockNotifier{})

	_, err := svc.Respond(context.Background(), "fb-1", "archived", "thanks")
	if err == nil {
		t.Fatal("expected error for invalid status")
	}
	de, ok := commonerrors.AsDomainError(err)
	if !ok || de.Code() != "INVALID_FEEDBACK_STATUS" {
		t.Fatalf("expected INVALID_FEEDBACK_STATUS domain error, got %v", err)
	}
}

func TestRespondNotFound(t *testing.T) {
	repo := &mockRepo{
		respondFunc: func(ctx context.Context, id, status, responseMessage string) (fbdomain.Feedback, error) {
			return fbdomain.Feedback{}, fbrepo.ErrFeedbackNotFound
		},
	}
	svc := newTestService(t, repo, &mockNotifier{})

	_, err := svc.Respond(context.Background(), "missing", fbdomain.StatusResolved, "done")
	if !errors.Is(err, commonerrors.ErrFeedbackNotFound) {
		t.Fatalf("expected ErrFeedbackNotFound, got %v", err)
	}
}

func TestMarkRead(t *testing.T) {
	repo := &mockRepo{
		markReadFunc: func(ctx context.Context, id string) (fbdomain.Feedback, error) {
			return fbdomain.Feedback{ID: id, IsRead: true}, nil
		},
	}
	svc := newTestService(t, repo, &mockNotifier{})

	fb, err := svc.MarkRead(context.Background(), "fb-1")
	if err != nil {
		t.Fatalf("MarkRead returned error: %v", err)
	}
	if !fb.IsRead {
		t.Error("feedback should be marked read")
	}
}
