package routes

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/logging"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := config.Config{
		AppName:          "KeyHaven",
		AppEnv:           "development",
		JWTSecret:        "test-jwt-secret",
		EncryptionSecret: "test-encryption-secret",
		BcryptCost:       bcrypt.MinCost,
		TokenTTL:         time.Hour,
		OTPTTL:           time.Minute,
	}
	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	payload := map[string]any{}
	_ = json.Unmarshal(raw, &payload)
	return resp.StatusCode, payload
}

func TestRegisterAndVaultFlow(t *testing.T) {
	app := setupApp(t)

	status, payload := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "",
		`{"email":"a@x.com","password":"secret1","pin":"1234"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("register: expected %d got %d (%v)", fiber.StatusCreated, status, payload)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("register: expected a session token, got %v", payload)
	}

	// Vault routes reject anonymous callers.
	status, _ = doJSON(t, app, fiber.MethodGet, "/api/vault/entries", "", "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("anonymous list: expected %d got %d", fiber.StatusUnauthorized, status)
	}

	status, payload = doJSON(t, app, fiber.MethodPost, "/api/vault/entries", token,
		`{"title":"Bank","password":"p@ss"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("create entry: expected %d got %d (%v)", fiber.StatusCreated, status, payload)
	}

	status, payload = doJSON(t, app, fiber.MethodGet, "/api/vault/entries", token, "")
	if status != fiber.StatusOK {
		t.Fatalf("list entries: expected %d got %d", fiber.StatusOK, status)
	}
	entries, _ := payload["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %v", payload)
	}
	entry, _ := entries[0].(map[string]any)
	if entry["password"] != "p@ss" {
		t.Fatalf("expected decrypted password, got %v", entry)
	}
	if _, leaked := entry["secret"]; leaked {
		t.Fatalf("response exposes the stored envelope: %v", entry)
	}
}

func TestLoginRequiresOTP(t *testing.T) {
	app := setupApp(t)

	status, _ := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "",
		`{"email":"a@x.com","password":"secret1","pin":"1234"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("register: expected %d got %d", fiber.StatusCreated, status)
	}

	status, payload := doJSON(t, app, fiber.MethodPost, "/api/auth/login", "",
		`{"email":"a@x.com","password":"secret1","pin":"1234"}`)
	if status != fiber.StatusOK {
		t.Fatalf("login: expected %d got %d (%v)", fiber.StatusOK, status, payload)
	}
	if payload["requires_otp"] != true {
		t.Fatalf("expected requires_otp=true, got %v", payload)
	}

	// Wrong factors are a single generic failure.
	status, _ = doJSON(t, app, fiber.MethodPost, "/api/auth/login", "",
		`{"email":"a@x.com","password":"secret1","pin":"0000"}`)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("wrong pin: expected %d got %d", fiber.StatusUnauthorized, status)
	}
}

func TestGenerateEndpointValidation(t *testing.T) {
	app := setupApp(t)

	status, payload := doJSON(t, app, fiber.MethodPost, "/api/auth/register", "",
		`{"email":"a@x.com","password":"secret1","pin":"1234"}`)
	if status != fiber.StatusCreated {
		t.Fatalf("register: expected %d got %d", fiber.StatusCreated, status)
	}
	token, _ := payload["token"].(string)

	status, payload = doJSON(t, app, fiber.MethodPost, "/api/vault/generate", token,
		`{"length":16,"include_uppercase":false,"include_lowercase":false,"include_numbers":false,"include_symbols":false}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected %d for empty charset, got %d (%v)", fiber.StatusBadRequest, status, payload)
	}

	status, payload = doJSON(t, app, fiber.MethodPost, "/api/vault/generate", token, `{"length":20}`)
	if status != fiber.StatusOK {
		t.Fatalf("generate: expected %d got %d", fiber.StatusOK, status)
	}
	if pw, _ := payload["password"].(string); len(pw) != 20 {
		t.Fatalf("expected 20-char password, got %v", payload)
	}
}
