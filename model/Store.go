package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a seller's shop; it lists products only once approved.
type Store struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name        string      `gorm:"size:120;not null" json:"name"`
	Description string      `gorm:"type:text" json:"description,omitempty"`
	Status      StoreStatus `gorm:"size:20;not null;default:pending;index" json:"status"`

	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ReviewedBy      *uuid.UUID `gorm:"type:uuid" json:"reviewed_by,omitempty"`

	CACNumber     string             `gorm:"size:20;index" json:"cac_number,omitempty"`
	CACStatus     VerificationStatus `gorm:"size:20;not null;default:unverified" json:"cac_status"`
	CACVerifiedAt *time.Time         `json:"cac_verified_at,omitempty"`

	BankName      string `gorm:"size:100" json:"bank_name,omitempty"`
	AccountNumber string `gorm:"size:10" json:"account_number,omitempty"`
	AccountName   string `gorm:"size:120" json:"account_name,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (s *Store) BeforeCreate(_ *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CACStatus == "" {
		s.CACStatus = VerificationUnverified
	}
	if !s.CACStatus.IsValid() {
		return fmt.Errorf("invalid CAC status %q", s.CACStatus)
	}
	return
}
