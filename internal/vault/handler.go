package vault

import (
	"errors"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/keyhaven/keyhaven/internal/secret"
)

// Handler exposes the vault entry endpoints. Every route sits behind the
// session middleware, which stores the authenticated user id in locals.
type Handler struct {
	svc *Service
}

// NewHandler builds the vault handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type entryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	URL       string    `json:"url"`
	Notes     string    `json:"notes"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func entryFromView(v View) entryResponse {
	return entryResponse{
		ID:        v.ID,
		Title:     v.Title,
		Username:  v.Username,
		Password:  v.Secret,
		URL:       v.URL,
		Notes:     v.Notes,
		Category:  v.Category,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}

type createEntryRequest struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	Password string `json:"password"`
	URL      string `json:"url"`
	Notes    string `json:"notes"`
	Category string `json:"category"`
}

// Create stores a new encrypted entry.
func (h *Handler) Create(c *fiber.Ctx) error {
	ownerID, err := ownerFromLocals(c)
	if err != nil {
		return err
	}
	var req createEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Create(c.UserContext(), ownerID, CreateInput{
		Title:    req.Title,
		Username: req.Username,
		Secret:   req.Password,
		URL:      req.URL,
		Notes:    req.Notes,
		Category: req.Category,
	})
	if err != nil {
		return vaultError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Entry created successfully",
		"entry":   entryFromView(v),
	})
}

// List returns all of the caller's entries with decrypted secrets.
func (h *Handler) List(c *fiber.Ctx) error {
	ownerID, err := ownerFromLocals(c)
	if err != nil {
		return err
	}
	views, err := h.svc.List(c.UserContext(), ownerID)
	if err != nil {
		return vaultError(err)
	}
	entries := make([]entryResponse, 0, len(views))
	for _, v := range views {
		entries = append(entries, entryFromView(v))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"entries": entries})
}

// Get returns a single decrypted entry.
func (h *Handler) Get(c *fiber.Ctx) error {
	ownerID, err := ownerFromLocals(c)
	if err != nil {
		return err
	}
	v, err := h.svc.Get(c.UserContext(), ownerID, c.Params("id"))
	if err != nil {
		return vaultError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"entry": entryFromView(v)})
}

type updateEntryRequest struct {
	Title    *string `json:"title"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	URL      *string `json:"url"`
	Notes    *string `json:"notes"`
	Category *string `json:"category"`
}

// Update applies partial changes to an entry.
func (h *Handler) Update(c *fiber.Ctx) error {
	ownerID, err := ownerFromLocals(c)
	if err != nil {
		return err
	}
	var req updateEntryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	v, err := h.svc.Update(c.UserContext(), ownerID, c.Params("id"), UpdateInput{
		Title:    req.Title,
		Username: req.Username,
		Secret:   req.Password,
		URL:      req.URL,
		Notes:    req.Notes,
		Category: req.Category,
	})
	if err != nil {
		return vaultError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Entry updated successfully",
		"entry":   entryFromView(v),
	})
}

// Delete removes an entry.
func (h *Handler) Delete(c *fiber.Ctx) error {
	ownerID, err := ownerFromLocals(c)
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.UserContext(), ownerID, c.Params("id")); err != nil {
		return vaultError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Entry deleted successfully"})
}

type generateRequest struct {
	Length           int   `json:"length"`
	IncludeUppercase *bool `json:"include_uppercase"`
	IncludeLowercase *bool `json:"include_lowercase"`
	IncludeNumbers   *bool `json:"include_numbers"`
	IncludeSymbols   *bool `json:"include_symbols"`
}

// Generate produces a random password. Unspecified character classes
// default to enabled.
func (h *Handler) Generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	password, err := GenerateSecret(GenerateOptions{
		Length:  req.Length,
		Upper:   boolOrTrue(req.IncludeUppercase),
		Lower:   boolOrTrue(req.IncludeLowercase),
		Digits:  boolOrTrue(req.IncludeNumbers),
		Symbols: boolOrTrue(req.IncludeSymbols),
	})
	if err != nil {
		return vaultError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"password": password})
}

func ownerFromLocals(c *fiber.Ctx) (string, error) {
	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return "", fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	return ownerID, nil
}

func boolOrTrue(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func vaultError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Entry not found")
	case errors.Is(err, secret.ErrDecrypt):
		return fiber.NewError(http.StatusInternalServerError, "Failed to decrypt entry")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
