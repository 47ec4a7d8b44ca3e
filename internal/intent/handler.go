package intent

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/instrument"
	"github.com/kwanza-pay/kwanza/internal/ledger"
	"github.com/kwanza-pay/kwanza/internal/middleware"
	"github.com/kwanza-pay/kwanza/internal/transfer"
)

// Handler dispatches structured intents from the chat layer onto the core
// services. Free-text interpretation happens upstream; anything the chat
// layer could not parse arrives as KindUnknown and is rejected here.
type Handler struct {
	instruments *instrument.Service
	engine      *transfer.Engine
}

// NewHandler constructs an intent dispatcher.
func NewHandler(instruments *instrument.Service, engine *transfer.Engine) *Handler {
	return &Handler{instruments: instruments, engine: engine}
}

// Dispatch routes one intent to the matching core operation.
func (h *Handler) Dispatch(c *fiber.Ctx) error {
	var in Intent
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	uid, _ := c.Locals(middleware.LocalsAccountID).(string)

	switch in.Kind {
	case KindBalance:
		return h.balances(c, uid)
	case KindViewCards:
		return h.cards(c, uid)
	case KindHistory:
		return h.history(c, uid)
	case KindTransfer:
		return h.transfer(c, uid, in.Transfer)
	default:
		return fiber.NewError(http.StatusUnprocessableEntity, "could not understand the request")
	}
}

func (h *Handler) balances(c *fiber.Ctx, uid string) error {
	instruments, err := h.instruments.ListByOwner(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]fiber.Map, 0, len(instruments))
	for _, inst := range instruments {
		balance, err := h.instruments.Balance(c.UserContext(), inst.ID)
		if err != nil {
			return fiber.NewError(fault.HTTPStatus(err), err.Error())
		}
		out = append(out, fiber.Map{
			"instrument_id": inst.ID,
			"name":          inst.Name,
			"amount":        balance.Amount,
		})
	}
	return c.JSON(fiber.Map{"balances": out})
}

func (h *Handler) cards(c *fiber.Ctx, uid string) error {
	instruments, err := h.instruments.ListByOwner(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]fiber.Map, 0, len(instruments))
	for _, inst := range instruments {
		out = append(out, fiber.Map{
			"instrument_id": inst.ID,
			"name":          inst.Name,
			"issuer":        inst.Issuer,
			"number":        inst.Number,
		})
	}
	return c.JSON(fiber.Map{"instruments": out})
}

func (h *Handler) history(c *fiber.Ctx, uid string) error {
	instruments, err := h.instruments.ListByOwner(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	out := make([]fiber.Map, 0)
	for _, inst := range instruments {
		entries, err := h.instruments.History(c.UserContext(), inst.ID, ledger.Filter{})
		if err != nil {
			return fiber.NewError(fault.HTTPStatus(err), err.Error())
		}
		for _, e := range entries {
			out = append(out, fiber.Map{
				"instrument_id": e.InstrumentID,
				"amount":        e.Amount.String(),
				"type":          e.Type,
				"description":   e.Description,
				"posted_at":     e.PostedAt,
			})
		}
	}
	return c.JSON(fiber.Map{"entries": out})
}

func (h *Handler) transfer(c *fiber.Ctx, uid string, t *Transfer) error {
	if t == nil {
		return fiber.NewError(http.StatusUnprocessableEntity, "transfer intent is missing its payload")
	}
	instruments, err := h.instruments.ListByOwner(c.UserContext(), uid)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	if len(instruments) == 0 {
		return fiber.NewError(http.StatusUnprocessableEntity, "no instrument to transfer from")
	}

	// The chat layer does not know instrument ids; default to the caller's
	// first instrument as the source.
	source := instruments[0]
	pt, err := h.engine.Stage(c.UserContext(), source.ID, t.DestinationNumber, t.Amount, t.CounterpartyName)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"transfer_id":          pt.ID,
		"source_instrument_id": pt.SourceID,
		"destination_number":   pt.DestNumber,
		"amount":               pt.Amount.String(),
		"state":                string(pt.State),
	})
}
