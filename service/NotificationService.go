package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"batterymart/model"
	"batterymart/repository"
	"batterymart/util"
)

const defaultNotificationLimit = 50

type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	mailer   Mailer // nil when SMTP is not configured
	logger   *zap.Logger
	now      func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, mailer Mailer, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:     repo,
		userRepo: userRepo,
		mailer:   mailer,
		logger:   logger,
		now:      time.Now,
	}
}

// Notify stores an in-app notification and, when a mailer is configured, emails it.
// Email delivery runs in the background and its failure never fails the call.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, typ model.NotificationType, title, message, link string) (*model.Notification, error) {
	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	if s.mailer != nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			s.logger.Warn("notification email skipped: user lookup failed",
				zap.String("user_id", userID.String()), zap.Error(err))
			return n, nil
		}
		go s.deliver(user.Email, title, message, link)
	}

	return n, nil
}

func (s *NotificationService) deliver(to, title, message, link string) {
	if err := s.mailer.Send(to, title, renderNotificationEmail(title, message, link)); err != nil {
		s.logger.Error("failed to send notification email", zap.String("to", to), zap.Error(err))
		return
	}
	s.logger.Debug("notification email sent", zap.String("to", to))
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = defaultNotificationLimit
	}
	return s.repo.ListForUser(ctx, userID, unreadOnly, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, s.now()); err != nil {
		if util.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return err
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now())
}

// PurgeRead deletes read notifications older than the retention window.
func (s *NotificationService) PurgeRead(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteReadBefore(ctx, s.now().Add(-retention))
}
