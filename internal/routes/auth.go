package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/keyhaven/keyhaven/internal/identity"
)

// RegisterAuthRoutes wires registration and the multi-factor login endpoints.
func RegisterAuthRoutes(r fiber.Router, h *identity.Handler, session fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", h.Login)
	group.Post("/login/verify-otp", h.VerifyOTP)
	group.Post("/login/resend-otp", h.ResendOTP)
	group.Get("/verify", session, h.Me)
}
