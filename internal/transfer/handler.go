package transfer

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/instrument"
	"github.com/kwanza-pay/kwanza/internal/ledger"
	"github.com/kwanza-pay/kwanza/internal/middleware"
)

var validate = validator.New()

// ErrNotOwner indicates the caller does not own the source instrument.
var ErrNotOwner = errors.New("not owner of source instrument")

// Handler exposes the transfer lifecycle minus verification, which lives in
// the step-up handler.
type Handler struct {
	engine      *Engine
	instruments *instrument.Service
}

// NewHandler constructs a transfer handler.
func NewHandler(engine *Engine, instruments *instrument.Service) *Handler {
	return &Handler{engine: engine, instruments: instruments}
}

type stageRequest struct {
	SourceInstrumentID string `json:"source_instrument_id" validate:"required"`
	DestinationNumber  string `json:"destination_number" validate:"required"`
	Amount             string `json:"amount" validate:"required"`
	CounterpartyName   string `json:"counterparty_name"`
}

// Stage validates and stages a transfer for the authenticated owner.
func (h *Handler) Stage(c *fiber.Ctx) error {
	var req stageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return fiber.NewError(http.StatusUnprocessableEntity, "amount must be a decimal number")
	}

	uid, _ := c.Locals(middleware.LocalsAccountID).(string)
	source, err := h.instruments.Get(c.UserContext(), req.SourceInstrumentID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	if source.OwnerID != uid {
		return fiber.NewError(http.StatusForbidden, ErrNotOwner.Error())
	}

	pt, err := h.engine.Stage(c.UserContext(), source.ID, req.DestinationNumber, amount, req.CounterpartyName)
	if err != nil {
		return transferError(err)
	}
	return c.Status(http.StatusCreated).JSON(pendingResponse(pt))
}

// Get returns the pending transfer's current state.
func (h *Handler) Get(c *fiber.Ctx) error {
	pt, err := h.ownedPending(c)
	if err != nil {
		return err
	}
	return c.JSON(pendingResponse(pt))
}

// Commit posts a verified transfer's two ledger legs atomically.
func (h *Handler) Commit(c *fiber.Ctx) error {
	pt, err := h.ownedPending(c)
	if err != nil {
		return err
	}
	res, err := h.engine.Commit(c.UserContext(), pt.ID)
	if err != nil {
		return transferError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"source_entry":       entryResponse(res.SourceEntry),
		"dest_entry":         entryResponse(res.DestEntry),
		"new_source_balance": res.NewSourceBalance.String(),
	})
}

// Cancel moves a non-terminal transfer to CANCELLED.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	pt, err := h.ownedPending(c)
	if err != nil {
		return err
	}
	if err := h.engine.Cancel(pt.ID); err != nil {
		return transferError(err)
	}
	return c.JSON(fiber.Map{"status": string(StateCancelled)})
}

func (h *Handler) ownedPending(c *fiber.Ctx) (PendingTransfer, error) {
	uid, _ := c.Locals(middleware.LocalsAccountID).(string)
	pt, err := h.engine.Get(c.Params("transferId"))
	if err != nil {
		return PendingTransfer{}, fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	if pt.OwnerID != uid {
		return PendingTransfer{}, fiber.NewError(http.StatusForbidden, ErrNotOwner.Error())
	}
	return pt, nil
}

func transferError(err error) error {
	var insufficient *fault.InsufficientFundsError
	if errors.As(err, &insufficient) {
		return fiber.NewError(http.StatusUnprocessableEntity, insufficient.Error())
	}
	return fiber.NewError(fault.HTTPStatus(err), err.Error())
}

func pendingResponse(pt PendingTransfer) fiber.Map {
	return fiber.Map{
		"transfer_id":          pt.ID,
		"source_instrument_id": pt.SourceID,
		"destination_number":   pt.DestNumber,
		"amount":               pt.Amount.String(),
		"counterparty_name":    pt.CounterpartyName,
		"state":                string(pt.State),
		"method":               string(pt.Method),
		"created_at":           pt.CreatedAt,
	}
}

func entryResponse(e ledger.Entry) fiber.Map {
	return fiber.Map{
		"entry_id":       e.ID,
		"instrument_id":  e.InstrumentID,
		"amount":         e.Amount.String(),
		"type":           e.Type,
		"description":    e.Description,
		"correlation_id": e.CorrelationID,
		"posted_at":      e.PostedAt,
	}
}
