package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"size:100;not null" json:"name"`
	Email string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Phone string    `gorm:"size:20" json:"phone,omitempty"`
	Role  Role      `gorm:"size:20;not null;default:buyer;index" json:"role"`

	NINStatus     VerificationStatus `gorm:"size:20;not null;default:unverified" json:"nin_status"`
	NINReference  string             `gorm:"size:20" json:"nin_reference,omitempty"` // masked
	NINVerifiedAt *time.Time         `json:"nin_verified_at,omitempty"`
	IsApproved    bool               `gorm:"default:false" json:"is_approved"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Stores []Store `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (u *User) BeforeCreate(_ *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.NINStatus == "" {
		u.NINStatus = VerificationUnverified
	}
	if !u.NINStatus.IsValid() {
		return fmt.Errorf("invalid NIN status %q", u.NINStatus)
	}
	return
}
