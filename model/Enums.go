package model

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// VerificationStatus tracks a user's NIN or a store's CAC check.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationVerified   VerificationStatus = "verified"
	VerificationFailed     VerificationStatus = "failed"
)

func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationUnverified, VerificationVerified, VerificationFailed:
		return true
	}
	return false
}

type StoreStatus string

const (
	StorePending  StoreStatus = "pending"
	StoreApproved StoreStatus = "approved"
	StoreRejected StoreStatus = "rejected"
)

func (s StoreStatus) IsValid() bool {
	switch s {
	case StorePending, StoreApproved, StoreRejected:
		return true
	}
	return false
}

type SubjectType string

const (
	SubjectUser  SubjectType = "user"
	SubjectStore SubjectType = "store"
)

func (s SubjectType) IsValid() bool {
	return s == SubjectUser || s == SubjectStore
}

type VerificationKind string

const (
	KindNIN VerificationKind = "nin"
	KindCAC VerificationKind = "cac"
)

// VerificationOutcome is how this service reads a provider answer.
type VerificationOutcome string

const (
	OutcomeMatched    VerificationOutcome = "matched"
	OutcomeNotMatched VerificationOutcome = "not_matched"
	OutcomeError      VerificationOutcome = "error"
)

type NotificationType string

const (
	NotificationVerification NotificationType = "verification"
	NotificationStore        NotificationType = "store"
	NotificationAccount      NotificationType = "account"
)
