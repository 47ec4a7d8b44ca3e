package account

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/fault"
	"github.com/kwanza-pay/kwanza/internal/middleware"
	"github.com/kwanza-pay/kwanza/internal/session"
)

var validate = validator.New()

// Handler exposes account endpoints for registration, login and enrollment.
type Handler struct {
	svc      *Service
	sessions session.Store
}

// NewHandler constructs an account handler.
func NewHandler(svc *Service, sessions session.Store) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// Register creates a new account.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acc, err := h.svc.Register(c.UserContext(), Credentials{Name: req.Name, Password: req.Password})
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"account_id": acc.ID,
		"name":       acc.Name,
		"created_at": acc.CreatedAt,
	})
}

type loginRequest struct {
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login validates credentials and issues an opaque session token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	acc, err := h.svc.Authenticate(c.UserContext(), Credentials{Name: req.Name, Password: req.Password})
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid credentials")
	}
	sess, err := h.sessions.Issue(c.UserContext(), acc.ID, session.MethodPassword)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"account_id": acc.ID,
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
	})
}

// Logout revokes the caller's session.
func (h *Handler) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals(middleware.LocalsSessionToken).(string)
	if token == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	if err := h.sessions.Revoke(c.UserContext(), token); err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"status": "logged_out"})
}

type enrollRequest struct {
	Embedding []float64 `json:"embedding" validate:"required,min=1"`
}

// EnrollTemplate stores a face embedding for the authenticated account.
func (h *Handler) EnrollTemplate(c *fiber.Ctx) error {
	var req enrollRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	accountID, _ := c.Locals(middleware.LocalsAccountID).(string)
	if err := h.svc.EnrollTemplate(c.UserContext(), accountID, req.Embedding); err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.SendStatus(http.StatusCreated)
}

// Me returns the authenticated account's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	accountID, _ := c.Locals(middleware.LocalsAccountID).(string)
	acc, err := h.svc.Get(c.UserContext(), accountID)
	if err != nil {
		return fiber.NewError(fault.HTTPStatus(err), err.Error())
	}
	return c.JSON(fiber.Map{
		"account_id":         acc.ID,
		"name":               acc.Name,
		"enrolled_templates": len(acc.Templates),
		"created_at":         acc.CreatedAt,
	})
}
