package repository

import (
	"context"
	"time"

	"batterymart/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VerificationRepository stores the audit trail of provider lookups.
type VerificationRepository interface {
	Create(ctx context.Context, rec *model.VerificationRecord) error
	// ListForSubject returns newest first.
	ListForSubject(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) ([]model.VerificationRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type pgVerificationRepo struct {
	db *gorm.DB
}

func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &pgVerificationRepo{db: db}
}

func (r *pgVerificationRepo) Create(ctx context.Context, rec *model.VerificationRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *pgVerificationRepo) ListForSubject(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) ([]model.VerificationRecord, error) {
	var out []model.VerificationRecord
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *pgVerificationRepo) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.VerificationRecord{})
	return res.RowsAffected, res.Error
}
