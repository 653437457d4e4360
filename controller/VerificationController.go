package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"batterymart/dto"
	"batterymart/model"
	"batterymart/service"
	"batterymart/util"
)

// VerificationAPI is implemented by *service.VerificationService.
type VerificationAPI interface {
	VerifyUserNIN(ctx context.Context, req *dto.VerifyNINRequest) (*service.VerificationOutcome, error)
	VerifyStoreCAC(ctx context.Context, req *dto.VerifyCACRequest) (*service.VerificationOutcome, error)
	Records(ctx context.Context, subjectType model.SubjectType, subjectID uuid.UUID) ([]model.VerificationRecord, error)
}

type VerificationController struct {
	svc    VerificationAPI
	logger *zap.Logger
}

func NewVerificationController(svc VerificationAPI, logger *zap.Logger) *VerificationController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VerificationController{svc: svc, logger: logger}
}

// VerifyNIN godoc
// @Summary      Verify a user's NIN
// @Description  Looks up the NIN with the identity provider and records the outcome on the user. A non-match is a 200 with outcome "not_matched".
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        payload body dto.VerifyNINRequest true "NIN payload"
// @Success      200  {object}  dto.VerificationResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  dto.VerificationResponse
// @Failure      503  {object}  map[string]string
// @Router       /verification/nin [post]
func (vc *VerificationController) VerifyNIN(c *fiber.Ctx) error {
	var req dto.VerifyNINRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := util.ValidateStruct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	out, err := vc.svc.VerifyUserNIN(c.UserContext(), &req)
	if err != nil {
		return respondError(c, vc.logger, err)
	}
	return vc.respondOutcome(c, out)
}

// VerifyCAC godoc
// @Summary      Verify a store's CAC registration
// @Description  Looks up the registration number with the identity provider and records the outcome on the store.
// @Tags         verification
// @Accept       json
// @Produce      json
// @Param        payload body dto.VerifyCACRequest true "CAC payload"
// @Success      200  {object}  dto.VerificationResponse
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  dto.VerificationResponse
// @Failure      503  {object}  map[string]string
// @Router       /verification/cac [post]
func (vc *VerificationController) VerifyCAC(c *fiber.Ctx) error {
	var req dto.VerifyCACRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := util.ValidateStruct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	out, err := vc.svc.VerifyStoreCAC(c.UserContext(), &req)
	if err != nil {
		return respondError(c, vc.logger, err)
	}
	return vc.respondOutcome(c, out)
}

// Records godoc
// @Summary      List verification records
// @Description  Audit trail of provider lookups for a user or store, newest first. Identifiers are masked.
// @Tags         verification
// @Produce      json
// @Param        subjectType path string true "user or store"
// @Param        subjectId   path string true "Subject UUID"
// @Success      200  {array}   model.VerificationRecord
// @Failure      400  {object}  map[string]string
// @Router       /verification/records/{subjectType}/{subjectId} [get]
func (vc *VerificationController) Records(c *fiber.Ctx) error {
	subjectID, err := uuid.Parse(c.Params("subjectId"))
	if err != nil {
		return badRequest(c, "invalid subject id")
	}

	records, err := vc.svc.Records(c.UserContext(), model.SubjectType(c.Params("subjectType")), subjectID)
	if err != nil {
		return respondError(c, vc.logger, err)
	}
	return c.JSON(records)
}

func (vc *VerificationController) respondOutcome(c *fiber.Ctx, out *service.VerificationOutcome) error {
	res := dto.VerificationResponse{
		RecordID: out.Record.ID.String(),
		Outcome:  string(out.Outcome),
		Subject:  string(out.SubjectStatus),
		Approved: out.Approved,
		Status:   out.Result.Status(),
		Summary:  out.Result.Summary(),
	}

	if out.Outcome == model.OutcomeError {
		vc.logger.Warn("provider lookup failed",
			zap.String("record_id", res.RecordID),
			zap.String("error", out.Result.ErrorMessage()))
		res.Message = msgVerificationFailed
		return c.Status(fiber.StatusBadGateway).JSON(res)
	}
	return c.JSON(res)
}
