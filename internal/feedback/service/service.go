package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movstream/backend/internal/common/crypto"
	commonerrors "github.com/movstream/backend/internal/common/errors"
	"github.com/movstream/backend/internal/common/logger"
	fbdomain "github.com/movstream/backend/internal/feedback/domain"
	fbrepo "github.com/movstream/backend/internal/feedback/repository"
	notifyws "github.com/movstream/backend/internal/notify/websocket"
)

// newFeedbackEvent is pushed to connected admins when a visitor submits
// feedback, so the dashboard badge updates without polling.
type newFeedbackEvent struct {
	Type       string `json:"type"`
	FeedbackID string `json:"feedbackId"`
	Category   string `json:"category"`
	Subject    string `json:"subject"`
}

func (newFeedbackEvent) EventType() string { return "new_feedback" }

type FeedbackService struct {
	repo     fbrepo.Repository
	notifier notifyws.Notifier
	ids      crypto.IDGenerator
	log      *logger.Logger
}

type Deps struct {
	Repo     fbrepo.Repository
	Notifier notifyws.Notifier
	IDs      crypto.IDGenerator
	Log      *logger.Logger
}

func NewFeedbackService(deps Deps) *FeedbackService {
	return &FeedbackService{
		repo:     deps.Repo,
		notifier: deps.Notifier,
		ids:      deps.IDs,
		log:      deps.Log,
	}
}

type SubmitInput struct {
	UserID  string // from the caller's token when present, empty otherwise
	Name    string
	Email   string
	Type    string
	Subject string
	Message string
}

// Submit stores visitor feedback and pushes a badge update to admins.
func (s *FeedbackService) Submit(ctx context.Context, input SubmitInput) (fbdomain.Feedback, error) {
	now := time.Now().UTC()
	fb := fbdomain.Feedback{
		ID:        s.ids.NewID(),
		UserID:    input.UserID,
		Name:      input.Name,
		Email:     input.Email,
		Type:      input.Type,
		Subject:   input.Subject,
		Message:   input.Message,
		Status:    fbdomain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, fb); err != nil {
		return fbdomain.Feedback{}, fmt.Errorf("submit feedback: %w", err)
	}

	s.notifier.NotifyAdmins(newFeedbackEvent{
		Type:       "new_feedback",
		FeedbackID: fb.ID,
		Category:   fb.Type,
		Subject:    fb.Subject,
	})

	s.log.WithFields(ctx, logger.Fields{
		"feedback_id": fb.ID,
		"category":    fb.Type,
		"action":      "feedback_submitted",
	}).Info("feedback submitted")
	return fb, nil
}

func (s *FeedbackService) List(ctx context.Context, filter fbdomain.ListFilter) ([]fbdomain.Feedback, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list feedback: %w", err)
	}
	return items, total, nil
}

func (s *FeedbackService) Get(ctx context.Context, id string) (fbdomain.Feedback, error) {
	fb, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, fbrepo.ErrFeedbackNotFound) {
			return fbdomain.Feedback{}, commonerrors.ErrFeedbackNotFound
		}
		return fbdomain.Feedback{}, fmt.Errorf("get feedback: %w", err)
	}
	return fb, nil
}

func (s *FeedbackService) MarkRead(ctx context.Context, id string) (fbdomain.Feedback, error) {
	fb, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		if errors.Is(err, fbrepo.ErrFeedbackNotFound) {
			return fbdomain.Feedback{}, commonerrors.ErrFeedbackNotFound
		}
		return fbdomain.Feedback{}, fmt.Errorf("mark feedback read: %w", err)
	}
	return fb, nil
}

func (s *FeedbackService) Respond(ctx context.Context, id, status, responseMessage string) (fbdomain.Feedback, error) {
	if !fbdomain.ValidStatus(status) {
		return fbdomain.Feedback{}, commonerrors.NewDomainError(
			"INVALID_FEEDBACK_STATUS",
			commonerrors.CategoryValidation,
			400,
			"invalid feedback status",
		)
	}

	fb, err := s.repo.Respond(ctx, id, status, responseMessage)
	if err != nil {
		if errors.Is(err, fbrepo.ErrFeedbackNotFound) {
			return fbdomain.Feedback{}, commonerrors.ErrFeedbackNotFound
		}
		return fbdomain.Feedback{}, fmt.Errorf("respond to feedback: %w", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"feedback_id": fb.ID,
		"status":      fb.Status,
		"action":      "feedback_responded",
	}).Info("feedback responded")
	return fb, nil
}

func (s *FeedbackService) UnreadCount(ctx context.Context) (int, error) {
	count, err := s.repo.CountUnread(ctx)
	if err != nil {
		return 0, fmt.Errorf("unread feedback count: %w", err)
	}
	return count, nil
}
