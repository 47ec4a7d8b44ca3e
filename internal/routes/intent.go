package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/intent"
)

// RegisterIntentRoutes wires the structured-intent dispatch endpoint used by
// the chat layer.
func RegisterIntentRoutes(r fiber.Router, h *intent.Handler) {
	r.Post("/intents", h.Dispatch)
}
