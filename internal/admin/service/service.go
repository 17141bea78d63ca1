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
	userdomain "github.com/movstream/backend/internal/user/domain"
	userrepo "github.com/movstream/backend/internal/user/repository"
)

const (
	accountUnlockedMessage = "Your account has been unlocked and is now active."
	accountLockedMessage   = "Your account has been locked. Please contact an administrator for support."
)

type UserAdminService struct {
	repo     userrepo.Repository
	notifier notifyws.Notifier
	hasher   crypto.PasswordHasher
	ids      crypto.IDGenerator
	log      *logger.Logger
}

type Deps struct {
	Repo     userrepo.Repository
	Notifier notifyws.Notifier
	Hasher   crypto.PasswordHasher
	IDs      crypto.IDGenerator
	Log      *logger.Logger
}

func NewUserAdminService(deps Deps) *UserAdminService {
	return &UserAdminService{
		repo:     deps.Repo,
		notifier: deps.Notifier,
		hasher:   deps.Hasher,
		ids:      deps.IDs,
		log:      deps.Log,
	}
}

func (s *UserAdminService) ListUsers(ctx context.Context, filter userdomain.ListFilter) ([]userdomain.User, int, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *UserAdminService) GetUser(ctx context.Context, id string) (userdomain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.User{}, commonerrors.ErrUserNotFound
		}
		return userdomain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

type CreateUserInput struct {
	FullName    string
	Email       string
	Password    string
	Role        string
	AccountType string
}

func (s *UserAdminService) CreateUser(ctx context.Context, input CreateUserInput) (userdomain.User, error) {
	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return userdomain.User{}, fmt.Errorf("hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = userdomain.RoleUser
	}

	now := time.Now().UTC()
	user := userdomain.User{
		ID:           s.ids.NewID(),
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         role,
		AccountType:  input.AccountType,
		IsActive:     true,
		IsVerified:   true, // admin-created accounts skip verification
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return userdomain.User{}, commonerrors.ErrEmailAlreadyInUse
		}
		return userdomain.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": user.ID,
		"role":    user.Role,
		"action":  "admin_user_created",
	}).Info("admin created user")
	return user, nil
}

// SetActiveStatus locks or unlocks an account. The DB write commits first;
// the real-time push is a side effect that must never fail the request.
func (s *UserAdminService) SetActiveStatus(ctx context.Context, actorID, userID string, isActive bool) (userdomain.User, error) {
	if actorID == userID {
		return userdomain.User{}, commonerrors.ErrCannotModifySelf
	}

	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return userdomain.User{}, commonerrors.ErrUserNotFound
		}
		return userdomain.User{}, fmt.Errorf("find user: %w", err)
	}

	user, err := s.repo.SetActiveStatus(ctx, userID, isActive)
	if err != nil {
		return userdomain.User{}, fmt.Errorf("set active status: %w", err)
	}

	message := accountLockedMessage
	if isActive {
		message = accountUnlockedMessage
	}
	s.notifier.Broadcast(notifyws.NewAccountStatusChangedEvent(userID, isActive, message))

	s.log.WithFields(ctx, logger.Fields{
		"user_id":   userID,
		"is_active": isActive,
		"action":    "admin_user_status_changed",
	}).Info("admin changed user active status")
	return user, nil
}
