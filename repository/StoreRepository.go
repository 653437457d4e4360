package repository

import (
	"context"

	"batterymart/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	ListByStatus(ctx context.Context, status model.StoreStatus) ([]model.Store, error)
	Update(ctx context.Context, store *model.Store) error
}

type pgStoreRepo struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &pgStoreRepo{db: db}
}

func (r *pgStoreRepo) Create(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Create(store).Error
}

func (r *pgStoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var s model.Store
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByStatus returns the oldest stores first so the review queue is FIFO.
func (r *pgStoreRepo) ListByStatus(ctx context.Context, status model.StoreStatus) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&stores).Error
	return stores, err
}

func (r *pgStoreRepo) Update(ctx context.Context, store *model.Store) error {
	return r.db.WithContext(ctx).Save(store).Error
}
