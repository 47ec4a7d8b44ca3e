package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/instrument"
)

// RegisterInstrumentRoutes wires instrument-related endpoints.
func RegisterInstrumentRoutes(r fiber.Router, h *instrument.Handler) {
	r.Post("/instruments", h.Create)
	r.Get("/instruments", h.List)
	r.Get("/instruments/:instrumentId/balance", h.Balance)
	r.Post("/instruments/:instrumentId/fund", h.Fund)
	r.Get("/instruments/:instrumentId/history", h.History)
	r.Get("/instruments/:instrumentId/statement", h.Statement)
}
