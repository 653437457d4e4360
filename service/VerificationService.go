package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"batterymart/dto"
	"batterymart/model"
	"batterymart/provider"
	"batterymart/repository"
	"batterymart/util"
)

// IdentityVerifier is the provider client as seen by this service.
type IdentityVerifier interface {
	VerifyIdentityNumber(ctx context.Context, idNumber string, applicant provider.ApplicantInfo) (provider.Result, error)
	VerifyCompanyRegistration(ctx context.Context, registrationNumber, companyName string) (provider.Result, error)
}

// VerificationOutcome is what a caller gets back from a lookup.
// Result is the provider response, unmodified.
type VerificationOutcome struct {
	Record        *model.VerificationRecord
	Outcome       model.VerificationOutcome
	SubjectStatus model.VerificationStatus
	Approved      bool
	Result        provider.Result
}

type VerificationService struct {
	verifier    IdentityVerifier
	users       repository.UserRepository
	stores      repository.StoreRepository
	records     repository.VerificationRepository
	notifier    *NotificationService
	autoApprove bool
	logger      *zap.Logger
	now         func() time.Time
}

func NewVerificationService(
	verifier IdentityVerifier,
	users repository.UserRepository,
	stores repository.StoreRepository,
	records repository.VerificationRepository,
	notifier *NotificationService,
	autoApprove bool,
	logger *zap.Logger,
) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationService{
		verifier:    verifier,
		users:       users,
		stores:      stores,
		records:     records,
		notifier:    notifier,
		autoApprove: autoApprove,
		logger:      logger,
		now:         time.Now,
	}
}

// VerifyUserNIN checks a user's NIN and records the outcome on the user.
// A registry non-match is a normal outcome, not an error. Provider authentication
// failures are returned as *provider.AuthenticationError.
func (s *VerificationService) VerifyUserNIN(ctx context.Context, req *dto.VerifyNINRequest) (*VerificationOutcome, error) {
	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		if util.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if user.NINStatus == model.VerificationVerified {
		return nil, ErrAlreadyVerified
	}

	first, last := req.FirstName, req.LastName
	if first == "" && last == "" {
		first, last = util.SplitName(user.Name)
	}

	result, err := s.verifier.VerifyIdentityNumber(ctx, req.NIN, provider.ApplicantInfo{FirstName: first, LastName: last})
	if err != nil {
		s.logger.Error("NIN verification could not authenticate with provider",
			zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, err
	}

	outcome := ClassifyResult(result, "nin_check")
	rec, err := s.record(ctx, model.SubjectUser, user.ID, model.KindNIN, req.NIN, outcome, result)
	if err != nil {
		return nil, err
	}

	if outcome != model.OutcomeError {
		now := s.now()
		user.NINReference = rec.Reference
		if outcome == model.OutcomeMatched {
			user.NINStatus = model.VerificationVerified
			user.NINVerifiedAt = &now
			if s.autoApprove {
				user.IsApproved = true
			}
		} else {
			user.NINStatus = model.VerificationFailed
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("save NIN status: %w", err)
		}
	}

	s.logger.Info("NIN verification finished",
		zap.String("user_id", user.ID.String()),
		zap.String("outcome", string(outcome)),
		zap.String("provider_status", result.VerificationStatus()))

	switch outcome {
	case model.OutcomeMatched:
		msg := "Your identity has been verified."
		if !user.IsApproved {
			msg += " Your account is pending admin approval."
		}
		s.notify(ctx, user.ID, "Identity verified", msg)
	case model.OutcomeNotMatched:
		s.notify(ctx, user.ID, "Identity verification unsuccessful",
			"We could not match your NIN with the details provided. Please check them and try again.")
	}

	return &VerificationOutcome{
		Record:        rec,
		Outcome:       outcome,
		SubjectStatus: user.NINStatus,
		Approved:      user.IsApproved,
		Result:        result,
	}, nil
}

// VerifyStoreCAC checks a store's CAC registration and records the outcome on the store.
func (s *VerificationService) VerifyStoreCAC(ctx context.Context, req *dto.VerifyCACRequest) (*VerificationOutcome, error) {
	store, err := s.stores.GetByID(ctx, req.StoreID)
	if err != nil {
		if util.IsNotFoundError(err) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if store.CACStatus == model.VerificationVerified {
		return nil, ErrAlreadyVerified
	}

	rcNumber := strings.ToUpper(strings.TrimSpace(req.RegistrationNumber))
	result, err := s.verifier.VerifyCompanyRegistration(ctx, rcNumber, req.CompanyName)
	if err != nil {
		s.logger.Error("CAC verification could not authenticate with provider",
			zap.String("store_id", store.ID.String()), zap.Error(err))
		return nil, err
	}

	outcome := ClassifyResult(result, "cac_check")
	rec, err := s.record(ctx, model.SubjectStore, store.ID, model.KindCAC, rcNumber, outcome, result)
	if err != nil {
		return nil, err
	}

	if outcome != model.OutcomeError {
		now := s.now()
		store.CACNumber = rcNumber
		if outcome == model.OutcomeMatched {
			store.CACStatus = model.VerificationVerified
			store.CACVerifiedAt = &now
			if s.autoApprove && store.Status == model.StorePending {
				store.Status = model.StoreApproved
				store.ApprovedAt = &now
			}
		} else {
			store.CACStatus = model.VerificationFailed
		}
		if err := s.stores.Update(ctx, store); err != nil {
			return nil, fmt.Errorf("save CAC status: %w", err)
		}
	}

	s.logger.Info("CAC verification finished",
		zap.String("store_id", store.ID.String()),
		zap.String("outcome", string(outcome)),
		zap.String("provider_status", result.VerificationStatus()))

	switch outcome {
	case model.OutcomeMatched:
		msg := fmt.Sprintf("The CAC registration for %q has been verified.", store.Name)
		if store.Status == model.StoreApproved {
			msg += " Your store is live."
		}
		s.notify(ctx, store.OwnerID, "Business registration verified", msg)
	case model.OutcomeNotMatched:
		s.notify(ctx, store.OwnerID, "Business registration not verified",
			fmt.Sprintf("We could not verify %s for %q. Check the registration number and company name.", rcNumber, req.CompanyName))
	}

	return &VerificationOutcome{
		Record:        rec,
		Outcome:       outcome,
		SubjectStatus: store.CACStatus,
		Approved:      store.Status == model.StoreApproved,
		Result:        result,
	}, nil
}

// Records lists past lookups for a user or store, newest first.
func (s *VerificationService) Records(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) ([]model.VerificationRecord, error) {
	if !subjectType.IsValid() {
		return nil, ErrInvalidSubject
	}
	return s.records.ListForSubject(ctx, subjectType, subjectID)
}

// PurgeRecords drops audit records older than the retention window.
func (s *VerificationService) PurgeRecords(ctx context.Context, retention time.Duration) (int64, error) {
	return s.records.DeleteBefore(ctx, s.now().Add(-retention))
}

func (s *VerificationService) record(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID, kind model.VerificationKind, ref string, outcome model.VerificationOutcome, result provider.Result) (*model.VerificationRecord, error) {
	payload, err := json.Marshal(auditPayload(result))
	if err != nil {
		return nil, fmt.Errorf("encode provider payload: %w", err)
	}

	rec := &model.VerificationRecord{
		SubjectType:    subjectType,
		SubjectID:      subjectID,
		Kind:           kind,
		Reference:      util.MaskIdentifier(ref),
		Outcome:        outcome,
		ProviderStatus: result.VerificationStatus(),
		Payload:        datatypes.JSON(payload),
	}
	if err := s.records.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("save verification record: %w", err)
	}
	return rec, nil
}

func (s *VerificationService) notify(ctx context.Context, userID uuid.UUID, title, message string) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Notify(ctx, userID, model.NotificationVerification, title, message, ""); err != nil {
		s.logger.Warn("failed to create notification", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// ClassifyResult reads the provider's verdict. A failure result is OutcomeError;
// otherwise the named summary check decides, falling back to status.status.
// A body carrying neither is OutcomeError so the subject is left untouched.
func ClassifyResult(result provider.Result, check string) model.VerificationOutcome {
	if !result.Success() {
		return model.OutcomeError
	}

	switch strings.ToUpper(result.CheckStatus(check)) {
	case "EXACT_MATCH":
		return model.OutcomeMatched
	case "":
		// no per-check summary, fall through to the overall status
	default:
		return model.OutcomeNotMatched
	}

	switch status := result.VerificationStatus(); {
	case status == "":
		// neither summary nor status: an error body, not a verdict
		return model.OutcomeError
	case strings.EqualFold(status, "verified"):
		return model.OutcomeMatched
	default:
		return model.OutcomeNotMatched
	}
}

// auditKeys are the parts of a provider response kept on the audit record.
// The rest echoes the registry entry (full NIN, birthdate, address) and is dropped.
var auditKeys = []string{"id", "status", "summary", "success", "error", "message"}

func auditPayload(result provider.Result) map[string]interface{} {
	out := make(map[string]interface{}, len(auditKeys))
	for _, k := range auditKeys {
		if v, ok := result[k]; ok {
			out[k] = v
		}
	}
	return out
}
