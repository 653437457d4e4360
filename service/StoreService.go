package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"batterymart/dto"
	"batterymart/model"
	"batterymart/repository"
	"batterymart/util"
)

type StoreService struct {
	stores   repository.StoreRepository
	users    repository.UserRepository
	notifier *NotificationService
	logger   *zap.Logger
	now      func() time.Time
}

func NewStoreService(stores repository.StoreRepository, users repository.UserRepository, notifier *NotificationService, logger *zap.Logger) *StoreService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreService{
		stores:   stores,
		users:    users,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *StoreService) Get(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	store, err := s.stores.GetByID(ctx, id)
	if err != nil {
		if util.IsNotFoundError(err) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	return store, nil
}

func (s *StoreService) ListPending(ctx context.Context) ([]model.Store, error) {
	return s.stores.ListByStatus(ctx, model.StorePending)
}

func (s *StoreService) requireAdmin(ctx context.Context, adminID uuid.UUID) error {
	admin, err := s.users.GetByID(ctx, adminID)
	if err != nil {
		if util.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return err
	}
	if admin.Role != model.RoleAdmin {
		return ErrNotAdmin
	}
	return nil
}

// Approve lists the store on the marketplace and tells its owner.
func (s *StoreService) Approve(ctx context.Context, storeID, adminID uuid.UUID) (*model.Store, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	store, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.Status == model.StoreApproved {
		return nil, ErrStoreAlreadyApproved
	}

	now := s.now()
	store.Status = model.StoreApproved
	store.ApprovedAt = &now
	store.ReviewedBy = &adminID
	store.RejectionReason = ""
	if err := s.stores.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("approve store: %w", err)
	}
	s.logger.Info("store approved",
		zap.String("store_id", store.ID.String()),
		zap.String("admin_id", adminID.String()))

	s.notify(ctx, store.OwnerID, model.NotificationStore,
		"Store approved",
		fmt.Sprintf("Your store %q has been approved. You can now list products.", store.Name),
		storeLink(store.ID))
	return store, nil
}

func (s *StoreService) Reject(ctx context.Context, storeID, adminID uuid.UUID, reason string) (*model.Store, error) {
	if err := s.requireAdmin(ctx, adminID); err != nil {
		return nil, err
	}
	store, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.Status == model.StoreRejected {
		return nil, ErrStoreAlreadyRejected
	}

	store.Status = model.StoreRejected
	store.RejectionReason = reason
	store.ApprovedAt = nil
	store.ReviewedBy = &adminID
	if err := s.stores.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("reject store: %w", err)
	}
	s.logger.Info("store rejected",
		zap.String("store_id", store.ID.String()),
		zap.String("admin_id", adminID.String()))

	s.notify(ctx, store.OwnerID, model.NotificationStore,
		"Store application rejected",
		fmt.Sprintf("Your store %q was not approved: %s", store.Name, reason),
		storeLink(store.ID))
	return store, nil
}

// UpdateBankDetails replaces the payout account. Only the owner may change it.
func (s *StoreService) UpdateBankDetails(ctx context.Context, storeID uuid.UUID, req *dto.BankDetailsRequest) (*model.Store, error) {
	store, err := s.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if store.OwnerID != req.OwnerID {
		return nil, ErrNotStoreOwner
	}

	store.BankName = req.BankName
	store.AccountNumber = req.AccountNumber
	store.AccountName = req.AccountName
	if err := s.stores.Update(ctx, store); err != nil {
		return nil, fmt.Errorf("update bank details: %w", err)
	}

	s.notify(ctx, store.OwnerID, model.NotificationAccount,
		"Bank details updated",
		fmt.Sprintf("The payout account for %q is now %s ending in %s. If you did not make this change, contact support.",
			store.Name, store.BankName, lastFour(store.AccountNumber)),
		storeLink(store.ID))
	return store, nil
}

// notify never fails the caller; the state change already happened.
func (s *StoreService) notify(ctx context.Context, userID uuid.UUID, typ model.NotificationType, title, message, link string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, userID, typ, title, message, link); err != nil {
		s.logger.Warn("failed to create notification", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func storeLink(id uuid.UUID) string {
	return "/seller/stores/" + id.String()
}

func lastFour(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
