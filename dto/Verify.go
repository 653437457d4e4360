package dto

import "github.com/google/uuid"

// VerifyNINRequest is the JSON payload sent to /verification/nin.
// Names default to the user's registered name when omitted.
type VerifyNINRequest struct {
	UserID    uuid.UUID `json:"user_id"    validate:"required"`
	NIN       string    `json:"nin"        validate:"required,numeric,len=11"`
	FirstName string    `json:"first_name" validate:"omitempty,max=50"`
	LastName  string    `json:"last_name"  validate:"omitempty,max=50"`
}

// VerifyCACRequest is the JSON payload sent to /verification/cac.
type VerifyCACRequest struct {
	StoreID            uuid.UUID `json:"store_id"            validate:"required"`
	RegistrationNumber string    `json:"registration_number" validate:"required,min=5,max=20"`
	CompanyName        string    `json:"company_name"        validate:"required,min=2,max=120"`
}

// VerificationResponse forwards the provider's status and summary untouched.
type VerificationResponse struct {
	RecordID string                 `json:"record_id"`
	Outcome  string                 `json:"outcome"`
	Subject  string                 `json:"subject_status"`
	Approved bool                   `json:"approved"`
	Status   map[string]interface{} `json:"status,omitempty"`
	Summary  map[string]interface{} `json:"summary,omitempty"`
	Message  string                 `json:"message,omitempty"`
}
