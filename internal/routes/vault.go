package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/keyhaven/keyhaven/internal/vault"
)

// RegisterVaultRoutes wires the entry CRUD and generator endpoints, all
// behind the session middleware.
func RegisterVaultRoutes(r fiber.Router, h *vault.Handler, session fiber.Handler) {
	group := r.Group("/vault", session)
	group.Get("/entries", h.List)
	group.Post("/entries", h.Create)
	group.Get("/entries/:id", h.Get)
	group.Put("/entries/:id", h.Update)
	group.Delete("/entries/:id", h.Delete)
	group.Post("/generate", h.Generate)
}
