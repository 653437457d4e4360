package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// VerificationRecord is the audit trail of one provider lookup.
// Reference holds a masked identifier, never the full NIN or RC number.
type VerificationRecord struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	SubjectType    SubjectType         `gorm:"size:10;not null;index:idx_verification_subject" json:"subject_type"`
	SubjectID      uuid.UUID           `gorm:"type:uuid;not null;index:idx_verification_subject" json:"subject_id"`
	Kind           VerificationKind    `gorm:"size:10;not null" json:"kind"`
	Reference      string              `gorm:"size:20" json:"reference"`
	Outcome        VerificationOutcome `gorm:"size:20;not null;index" json:"outcome"`
	ProviderStatus string              `gorm:"size:50" json:"provider_status,omitempty"`
	Payload        datatypes.JSON      `gorm:"type:jsonb" json:"payload,omitempty"`
	CreatedAt      time.Time           `gorm:"autoCreateTime;index" json:"created_at"`
}

func (r *VerificationRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
