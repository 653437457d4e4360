package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"batterymart/dto"
	"batterymart/model"
	"batterymart/util"
)

// StoreAPI is implemented by *service.StoreService.
type StoreAPI interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Store, error)
	ListPending(ctx context.Context) ([]model.Store, error)
	Approve(ctx context.Context, storeID, adminID uuid.UUID) (*model.Store, error)
	Reject(ctx context.Context, storeID, adminID uuid.UUID, reason string) (*model.Store, error)
	UpdateBankDetails(ctx context.Context, storeID uuid.UUID, req *dto.BankDetailsRequest) (*model.Store, error)
}

type StoreController struct {
	svc    StoreAPI
	logger *zap.Logger
}

func NewStoreController(svc StoreAPI, logger *zap.Logger) *StoreController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreController{svc: svc, logger: logger}
}

// GetStore godoc
// @Summary      Get a store
// @Tags         stores
// @Produce      json
// @Param        id   path      string  true  "Store UUID"
// @Success      200  {object}  model.Store
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /stores/{id} [get]
func (sc *StoreController) GetStore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid store id")
	}
	store, err := sc.svc.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, sc.logger, err)
	}
	return c.JSON(store)
}

// ListPending godoc
// @Summary      List stores awaiting review
// @Tags         admin
// @Produce      json
// @Success      200  {array}   model.Store
// @Router       /admin/stores/pending [get]
func (sc *StoreController) ListPending(c *fiber.Ctx) error {
	stores, err := sc.svc.ListPending(c.UserContext())
	if err != nil {
		return respondError(c, sc.logger, err)
	}
	return c.JSON(stores)
}

// Approve godoc
// @Summary      Approve a store
// @Description  Marks the store approved and notifies its owner.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path  string                   true  "Store UUID"
// @Param        payload  body  dto.ApproveStoreRequest  true  "Reviewer"
// @Success      200  {object}  model.Store
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/stores/{id}/approve [post]
func (sc *StoreController) Approve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid store id")
	}
	var req dto.ApproveStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := util.ValidateStruct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	store, err := sc.svc.Approve(c.UserContext(), id, req.AdminID)
	if err != nil {
		return respondError(c, sc.logger, err)
	}
	return c.JSON(store)
}

// Reject godoc
// @Summary      Reject a store
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Store UUID"
// @Param        payload  body  dto.RejectStoreRequest  true  "Reviewer and reason"
// @Success      200  {object}  model.Store
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/stores/{id}/reject [post]
func (sc *StoreController) Reject(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid store id")
	}
	var req dto.RejectStoreRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := util.ValidateStruct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	store, err := sc.svc.Reject(c.UserContext(), id, req.AdminID, req.Reason)
	if err != nil {
		return respondError(c, sc.logger, err)
	}
	return c.JSON(store)
}

// UpdateBankDetails godoc
// @Summary      Update a store's payout account
// @Tags         stores
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Store UUID"
// @Param        payload  body  dto.BankDetailsRequest  true  "Bank details"
// @Success      200  {object}  model.Store
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /stores/{id}/bank-details [put]
func (sc *StoreController) UpdateBankDetails(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid store id")
	}
	var req dto.BankDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request payload")
	}
	if err := util.ValidateStruct(&req); err != nil {
		return badRequest(c, err.Error())
	}

	store, err := sc.svc.UpdateBankDetails(c.UserContext(), id, &req)
	if err != nil {
		return respondError(c, sc.logger, err)
	}
	return c.JSON(store)
}
