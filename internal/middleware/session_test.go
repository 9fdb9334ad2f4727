package middleware

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/keyhaven/keyhaven/internal/auth"
)

func setupSessionApp(t *testing.T, tokens *auth.TokenSigner) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Get("/protected", SessionAuth(tokens), func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		return c.SendString(userID)
	})
	return app
}

func TestSessionAuthMissingToken(t *testing.T) {
	tokens := auth.NewTokenSigner("test-secret", time.Hour)
	app := setupSessionApp(t, tokens)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/protected", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}

func TestSessionAuthInvalidToken(t *testing.T) {
	tokens := auth.NewTokenSigner("test-secret", time.Hour)
	app := setupSessionApp(t, tokens)

	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer not.a.jwt")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
}

func TestSessionAuthExpiredToken(t *testing.T) {
	expired := auth.NewTokenSigner("test-secret", -time.Second)
	token, err := expired.Sign("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	app := setupSessionApp(t, auth.NewTokenSigner("test-secret", time.Hour))
	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected %d got %d", fiber.StatusUnauthorized, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "expired") {
		t.Fatalf("expected expiry message, got %q", string(body))
	}
}

func TestSessionAuthValidToken(t *testing.T) {
	tokens := auth.NewTokenSigner("test-secret", time.Hour)
	token, err := tokens.Sign("user-123", "a@x.com")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	app := setupSessionApp(t, tokens)
	req := httptest.NewRequest(fiber.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected %d got %d", fiber.StatusOK, resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "user-123" {
		t.Fatalf("expected user id in locals, got %q", string(body))
	}
}
