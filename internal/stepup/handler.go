package stepup

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/middleware"
	"github.com/kwanza-pay/kwanza/internal/transfer"
)

var validate = validator.New()

// Handler exposes the verification endpoints of the transfer lifecycle.
type Handler struct {
	auth   *Authenticator
	engine *transfer.Engine
}

// NewHandler constructs a step-up handler.
func NewHandler(auth *Authenticator, engine *transfer.Engine) *Handler {
	return &Handler{auth: auth, engine: engine}
}

type requestVerificationRequest struct {
	Method string `json:"method" validate:"required,oneof=PASSWORD BIOMETRIC"`
}

// RequestVerification selects the verification method for a staged transfer.
func (h *Handler) RequestVerification(c *fiber.Ctx) error {
	var req requestVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	pt, err := h.ownedPending(c)
	if err != nil {
		return err
	}
	updated, err := h.auth.RequestVerification(pt.ID, transfer.Method(req.Method))
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"transfer_id": updated.ID,
		"state":       string(updated.State),
		"method":      string(updated.Method),
	})
}

type verifyPasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// VerifyPassword checks the password re-entry against the owner's secret.
func (h *Handler) VerifyPassword(c *fiber.Ctx) error {
	var req verifyPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	pt, err := h.ownedPending(c)
	if err != nil {
		return err
	}
	ok, err := h.auth.VerifyPassword(c.UserContext(), pt.ID, req.Password)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(fiber.Map{"verified": ok, "state": string(transfer.StateVerified)})
}

type verifyBiometricRequest struct {
	Embedding []float64 `json:"embedding" validate:"required,min=1"`
}

// VerifyBiometric matches the presented embedding against enrolled templates.
func (h *Handler) VerifyBiometric(c *fiber.Ctx) error {
	var req verifyBiometricRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	pt, err := h.ownedPending(c)
	if err != nil {
		return err
	}
	ok, err := h.auth.VerifyBiometric(c.UserContext(), pt.ID, req.Embedding)
	if err != nil {
		var mismatch *fault.BiometricMismatchError
		switch {
		case errors.Is(err, ErrBiometricLocked):
			return fiber.NewError(http.StatusTooManyRequests, err.Error())
		case errors.As(err, &mismatch):
			c.Status(http.StatusUnauthorized)
			return c.JSON(fiber.Map{
				"verified":   false,
				"similarity": mismatch.Similarity,
				"distance":   mismatch.Distance,
				"message":    "face does not match enrolled templates",
			})
		default:
			return fiber.NewError(fault.HTTPStatus(err), err.Error())
		}
	}
	return c.JSON(fiber.Map{"verified": ok, "state": string(transfer.StateVerified)})
}

func (h *Handler) ownedPending(c *fiber.Ctx) (transfer.PendingTransfer, error) {
	uid, _ := c.Locals(middleware.LocalsAccountID).(string)
	pt, err := h.engine.Get(c.Params("transferId"))
	if err != nil {
		return transfer.PendingTransfer{}, fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	if pt.OwnerID != uid {
		return transfer.PendingTransfer{}, fiber.NewError(http.StatusForbidden, transfer.ErrNotOwner.Error())
	}
	return pt, nil
}
