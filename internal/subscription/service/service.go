package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/movstream/backend/internal/common/crypto"
	commonerrors "github.com/movstream/backend/internal/common/errors"
	"github.com/movstream/backend/internal/common/logger"
	notifyws "github.com/movstream/backend/internal/notify/websocket"
	subdomain "github.com/movstream/backend/internal/subscription/domain"
	subrepo "github.com/movstream/backend/internal/subscription/repository"
)

// AccountUpdater is the slice of the user store this service needs when a
// subscription decision changes the account tier.
type AccountUpdater interface {
	SetAccountType(ctx context.Context, userID, accountType string) error
}

type SubscriptionService struct {
	repo     subrepo.Repository
	users    AccountUpdater
	notifier notifyws.Notifier
	ids      crypto.IDGenerator
	log      *logger.Logger
}

type Deps struct {
	Repo     subrepo.Repository
	Users    AccountUpdater
	Notifier notifyws.Notifier
	IDs      crypto.IDGenerator
	Log      *logger.Logger
}

func NewSubscriptionService(deps Deps) *SubscriptionService {
	return &SubscriptionService{
		repo:     deps.Repo,
		users:    deps.Users,
		notifier: deps.Notifier,
		ids:      deps.IDs,
		log:      deps.Log,
	}
}

type CreateInput struct {
	UserID string
	Plan   string
	Price  int64
}

// Create registers a pending premium request and pushes it to connected
// admins. The push is best effort and never fails the request.
func (s *SubscriptionService) Create(ctx context.Context, input CreateInput) (subdomain.Subscription, error) {
	now := time.Now().UTC()
	sub := subdomain.Subscription{
		ID:        s.ids.NewID(),
		UserID:    input.UserID,
		Plan:      input.Plan,
		Price:     input.Price,
		Status:    subdomain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return subdomain.Subscription{}, fmt.Errorf("create subscription: %w", err)
	}

	s.notifier.NotifyNewPremium(sub)

	s.log.WithFields(ctx, logger.Fields{
		"subscription_id": sub.ID,
		"user_id":         sub.UserID,
		"plan":            sub.Plan,
		"action":          "subscription_created",
	}).Info("premium subscription requested")
	return sub, nil
}

func (s *SubscriptionService) Get(ctx context.Context, id string) (subdomain.Subscription, error) {
	sub, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, subrepo.ErrSubscriptionNotFound) {
			return subdomain.Subscription{}, commonerrors.ErrSubscriptionNotFound
		}
		return subdomain.Subscription{}, fmt.Errorf("get subscription: %w", err)
	}
	return sub, nil
}

func (s *SubscriptionService) List(ctx context.Context, status string) ([]subdomain.Subscription, error) {
	if status != "" && !subdomain.ValidStatus(status) {
		return nil, commonerrors.ErrInvalidSubscriptionStatus
	}
	subs, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

// UpdateStatus moves a subscription through its lifecycle and tells the
// subscriber over their live connection, if they have one.
func (s *SubscriptionService) UpdateStatus(ctx context.Context, id, status string) (subdomain.Subscription, error) {
	if !subdomain.ValidStatus(status) {
		return subdomain.Subscription{}, commonerrors.ErrInvalidSubscriptionStatus
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, subrepo.ErrSubscriptionNotFound) {
			return subdomain.Subscription{}, commonerrors.ErrSubscriptionNotFound
		}
		return subdomain.Subscription{}, fmt.Errorf("find subscription: %w", err)
	}

	sub, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return subdomain.Subscription{}, fmt.Errorf("update subscription status: %w", err)
	}

	switch status {
	case subdomain.StatusApproved:
		if err := s.users.SetAccountType(ctx, sub.UserID, "premium"); err != nil {
			s.log.Errorf("failed to upgrade account %s: %v", sub.UserID, err)
		}
	case subdomain.StatusRejected, subdomain.StatusCancelled:
		if err := s.users.SetAccountType(ctx, sub.UserID, ""); err != nil {
			s.log.Errorf("failed to downgrade account %s: %v", sub.UserID, err)
		}
	}

	s.notifier.NotifyPremiumStatusChange(sub.ID, sub.Status, sub.UserID)

	s.log.WithFields(ctx, logger.Fields{
		"subscription_id": sub.ID,
		"user_id":         sub.UserID,
		"status":          sub.Status,
		"action":          "subscription_status_changed",
	}).Info("subscription status updated")
	return sub, nil
}
