package instrument

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/ledger"
	"github.com/kwanza-pay/kwanza/internal/middleware"
	"github.com/kwanza-pay/kwanza/internal/statement"
)

var validate = validator.New()

// Handler exposes instrument endpoints. All routes require a session; every
// lookup is scoped to instruments the caller owns.
type Handler struct {
	svc        *Service
	statements *statement.Service
}

// NewHandler constructs an instrument handler.
func NewHandler(svc *Service, statements *statement.Service) *Handler {
	return &Handler{svc: svc, statements: statements}
}

type createRequest struct {
	Name   string `json:"name" validate:"required"`
	Issuer string `json:"issuer"`
}

// Create provisions an instrument for the authenticated account.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	ownerID, _ := c.Locals(middleware.LocalsAccountID).(string)
	inst, err := h.svc.Create(c.UserContext(), CreateInput{OwnerID: ownerID, Name: req.Name, Issuer: req.Issuer})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(instrumentResponse(inst))
}

// List returns the caller's instruments.
func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, _ := c.Locals(middleware.LocalsAccountID).(string)
	instruments, err := h.svc.ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]fiber.Map, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, instrumentResponse(inst))
	}
	return c.JSON(fiber.Map{"instruments": out})
}

// Balance returns the ledger balance for an owned instrument.
func (h *Handler) Balance(c *fiber.Ctx) error {
	inst, err := h.owned(c)
	if err != nil {
		return err
	}
	balance, err := h.svc.Balance(c.UserContext(), inst.ID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"instrument_id": balance.InstrumentID,
		"amount":        balance.Amount,
		"as_of":         balance.AsOf,
	})
}

type fundRequest struct {
	Amount      string `json:"amount" validate:"required"`
	Description string `json:"description"`
}

// Fund posts an initial-funding inflow against an owned instrument.
func (h *Handler) Fund(c *fiber.Ctx) error {
	var req fundRequest
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

	inst, err := h.owned(c)
	if err != nil {
		return err
	}
	entry, err := h.svc.Fund(c.UserContext(), inst.ID, amount, req.Description)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(entryResponse(entry))
}

// History returns the filtered entry log, newest first.
func (h *Handler) History(c *fiber.Ctx) error {
	inst, err := h.owned(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	entries, err := h.svc.History(c.UserContext(), inst.ID, filter)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]fiber.Map, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse(e))
	}
	return c.JSON(fiber.Map{"entries": out})
}

// Statement returns a period summary built from the ledger history.
func (h *Handler) Statement(c *fiber.Ctx) error {
	inst, err := h.owned(c)
	if err != nil {
		return err
	}
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	stmt, err := h.statements.Build(c.UserContext(), inst.ID, filter)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	entries := make([]fiber.Map, 0, len(stmt.Entries))
	for _, e := range stmt.Entries {
		entries = append(entries, entryResponse(e))
	}
	return c.JSON(fiber.Map{
		"instrument_id":   stmt.InstrumentID,
		"opening_balance": stmt.OpeningBalance.String(),
		"closing_balance": stmt.ClosingBalance.String(),
		"total_in":        stmt.TotalIn.String(),
		"total_out":       stmt.TotalOut.String(),
		"entries":         entries,
		"generated_at":    stmt.GeneratedAt,
	})
}

// owned loads the path instrument and enforces caller ownership.
func (h *Handler) owned(c *fiber.Ctx) (Instrument, error) {
	ownerID, _ := c.Locals(middleware.LocalsAccountID).(string)
	inst, err := h.svc.Get(c.UserContext(), c.Params("instrumentId"))
	if err != nil {
		return Instrument{}, fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	if inst.OwnerID != ownerID {
		return Instrument{}, fiber.NewError(http.StatusForbidden, "not owner of instrument")
	}
	return inst, nil
}

func parseFilter(c *fiber.Ctx) (ledger.Filter, error) {
	var f ledger.Filter
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ledger.Filter{}, fiber.NewError(http.StatusBadRequest, "from must be RFC3339")
		}
		f.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return ledger.Filter{}, fiber.NewError(http.StatusBadRequest, "to must be RFC3339")
		}
		f.To = t
	}
	switch v := c.Query("type"); v {
	case "":
	case string(ledger.EntryInflow), string(ledger.EntryOutflow), string(ledger.EntryTransfer):
		f.Type = ledger.EntryType(v)
	default:
		return ledger.Filter{}, fiber.NewError(http.StatusBadRequest, "unknown entry type")
	}
	return f, nil
}

func instrumentResponse(inst Instrument) fiber.Map {
	return fiber.Map{
		"instrument_id": inst.ID,
		"name":          inst.Name,
		"issuer":        inst.Issuer,
		"number":        inst.Number,
		"created_at":    inst.CreatedAt,
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
