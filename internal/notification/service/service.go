package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/movstream/backend/internal/common/clock"
	"github.com/movstream/backend/internal/common/crypto"
	commonerrors "github.com/movstream/backend/internal/common/errors"
	"github.com/movstream/backend/internal/common/logger"
	prommetrics "github.com/movstream/backend/internal/common/prometheus"
	"github.com/movstream/backend/internal/notification/domain"
	"github.com/movstream/backend/internal/notification/email"
	notifrepo "github.com/movstream/backend/internal/notification/repository"
	userdomain "github.com/movstream/backend/internal/user/domain"
)

const defaultHistoryLimit = 50

// RecipientSource yields the email recipients for a named group.
type RecipientSource interface {
	FindRecipientsByGroup(ctx context.Context, group string) ([]userdomain.Recipient, error)
}

type NotificationService struct {
	repo       notifrepo.Repository
	recipients RecipientSource
	sender     email.Sender
	ids        crypto.IDGenerator
	clk        clock.Clock
	log        *logger.Logger

	from       string
	batchSize  int
	batchPause time.Duration
	sleep      func(time.Duration)
}

type Deps struct {
	Repo       notifrepo.Repository
	Recipients RecipientSource
	Sender     email.Sender
	IDs        crypto.IDGenerator
	Clock      clock.Clock
	Log        *logger.Logger

	From       string
	BatchSize  int
	BatchPause time.Duration
}

func NewNotificationService(deps Deps) *NotificationService {
	return &NotificationService{
		repo:       deps.Repo,
		recipients: deps.Recipients,
		sender:     deps.Sender,
		ids:        deps.IDs,
		clk:        deps.Clock,
		log:        deps.Log,
		from:       deps.From,
		batchSize:  deps.BatchSize,
		batchPause: deps.BatchPause,
		sleep:      time.Sleep,
	}
}

// SendMaintenance emails every active user about planned downtime.
func (s *NotificationService) SendMaintenance(ctx context.Context, sentBy, message string) (domain.EmailNotificationLog, error) {
	subject := "Scheduled maintenance"
	return s.send(ctx, domain.TypeMaintenance, sentBy, subject, message, userdomain.GroupAll)
}

// SendCustom emails an arbitrary announcement to the chosen recipient group.
func (s *NotificationService) SendCustom(ctx context.Context, sentBy, subject, message, group string) (domain.EmailNotificationLog, error) {
	return s.send(ctx, domain.TypeCustom, sentBy, subject, message, group)
}

func (s *NotificationService) History(ctx context.Context, limit int) ([]domain.EmailNotificationLog, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	logs, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("notification history: %w", err)
	}
	return logs, nil
}

func (s *NotificationService) send(ctx context.Context, notifType, sentBy, subject, message, group string) (domain.EmailNotificationLog, error) {
	recipients, err := s.recipients.FindRecipientsByGroup(ctx, group)
	if err != nil {
		return domain.EmailNotificationLog{}, fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		return domain.EmailNotificationLog{}, commonerrors.ErrNoRecipients
	}

	started := s.clk.Now()
	var sendErrors []string
	for i, batch := range batchRecipients(recipients, s.batchSize) {
		if i > 0 {
			s.sleep(s.batchPause)
		}
		if err := s.sender.Send(s.from, batch, subject, message); err != nil {
			s.log.Errorf("email batch %d failed: %v", i+1, err)
			sendErrors = append(sendErrors, err.Error())
		}
	}
	prommetrics.EmailBatchDurationSeconds.Observe(s.clk.Since(started).Seconds())

	status := domain.StatusSuccess
	if len(sendErrors) > 0 {
		status = domain.StatusFailed
	}
	prommetrics.EmailNotificationsSentTotal.WithLabelValues(notifType, status).Inc()

	entry := domain.EmailNotificationLog{
		ID:             s.ids.NewID(),
		Type:           notifType,
		Subject:        subject,
		Message:        message,
		RecipientGroup: group,
		RecipientCount: len(recipients),
		Status:         status,
		ErrorDetail:    strings.Join(sendErrors, "; "),
		SentBy:         sentBy,
		CreatedAt:      s.clk.Now().UTC(),
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		// Emails already went out; surface the log failure but keep the result.
		s.log.Errorf("failed to record notification log: %v", err)
	}

	s.log.WithFields(ctx, logger.Fields{
		"notification_id": entry.ID,
		"type":            notifType,
		"group":           group,
		"recipients":      len(recipients),
		"status":          status,
		"action":          "email_notification_sent",
	}).Info("email notification processed")
	return entry, nil
}

// batchRecipients splits the recipient list into address slices of at most
// size entries, preserving order.
func batchRecipients(recipients []userdomain.Recipient, size int) [][]string {
	if size <= 0 {
		size = len(recipients)
	}
	var batches [][]string
	for start := 0; start < len(recipients); start += size {
		end := start + size
		if end > len(recipients) {
			end = len(recipients)
		}
		batch := make([]string, 0, end-start)
		for _, r := range recipients[start:end] {
			batch = append(batch, r.Email)
		}
		batches = append(batches, batch)
	}
	return batches
}
