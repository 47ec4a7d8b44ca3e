package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/account"
)

// RegisterAccountRoutes wires public registration and login endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/accounts")
	group.Post("/register", h.Register)
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
}

// RegisterProtectedAccountRoutes wires session-scoped account endpoints.
func RegisterProtectedAccountRoutes(r fiber.Router, h *account.Handler) {
	r.Get("/me", h.Me)
	r.Post("/accounts/logout", h.Logout)
	r.Post("/accounts/templates", h.EnrollTemplate)
}
