package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kwanza-pay/kwanza/internal/stepup"
	"github.com/kwanza-pay/kwanza/internal/transfer"
)

// RegisterTransferRoutes wires the transfer lifecycle: staging, step-up
// verification, commit and cancellation.
func RegisterTransferRoutes(r fiber.Router, h *transfer.Handler, s *stepup.Handler) {
	r.Post("/transfers", h.Stage)
	r.Get("/transfers/:transferId", h.Get)
	r.Post("/transfers/:transferId/verification", s.RequestVerification)
	r.Post("/transfers/:transferId/verify/password", s.VerifyPassword)
	r.Post("/transfers/:transferId/verify/biometric", s.VerifyBiometric)
	r.Post("/transfers/:transferId/commit", h.Commit)
	r.Post("/transfers/:transferId/cancel", h.Cancel)
}
