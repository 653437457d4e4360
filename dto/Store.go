package dto

import "github.com/google/uuid"

type ApproveStoreRequest struct {
	AdminID uuid.UUID `json:"admin_id" validate:"required"`
}

type RejectStoreRequest struct {
	AdminID uuid.UUID `json:"admin_id" validate:"required"`
	Reason  string    `json:"reason"   validate:"required,min=3,max=500"`
}

// BankDetailsRequest updates the payout account of a store. Account numbers are 10-digit NUBAN.
type BankDetailsRequest struct {
	OwnerID       uuid.UUID `json:"owner_id"       validate:"required"`
	BankName      string    `json:"bank_name"      validate:"required,min=2,max=100"`
	AccountNumber string    `json:"account_number" validate:"required,numeric,len=10"`
	AccountName   string    `json:"account_name"   validate:"required,min=2,max=120"`
}
