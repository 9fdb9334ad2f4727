package routes

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/keyhaven/keyhaven/internal/auth"
	"github.com/keyhaven/keyhaven/internal/config"
	"github.com/keyhaven/keyhaven/internal/credential"
	"github.com/keyhaven/keyhaven/internal/identity"
	"github.com/keyhaven/keyhaven/internal/middleware"
	"github.com/keyhaven/keyhaven/internal/notification"
	"github.com/keyhaven/keyhaven/internal/otp"
	"github.com/keyhaven/keyhaven/internal/secret"
	"github.com/keyhaven/keyhaven/internal/vault"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce real backends outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	// Health
	RegisterHealthRoutes(app, d)

	// Core components
	codec, err := secret.NewCodec(d.Cfg.EncryptionSecret)
	if err != nil {
		return err
	}
	hasher := credential.NewHasher(d.Cfg.BcryptCost)
	tokens := auth.NewTokenSigner(d.Cfg.JWTSecret, d.Cfg.TokenTTL)

	var codes otp.Ledger
	if d.Cache != nil {
		codes = otp.NewRedis(d.Cache, d.Cfg.OTPTTL)
	} else {
		codes = otp.NewMemory(d.Cfg.OTPTTL)
	}

	var userRepo identity.Repository
	if d.DB != nil {
		userRepo = identity.NewPostgresRepository(d.DB)
	} else {
		userRepo = identity.NewMemoryRepository()
	}

	var entryRepo vault.Repository
	if d.DB != nil {
		entryRepo = vault.NewPostgresRepository(d.DB)
	} else {
		entryRepo = vault.NewMemoryRepository()
	}

	var notifier notification.Notifier
	if d.Cfg.SMTPHost != "" {
		notifier = notification.NewSMTPNotifier(d.Cfg.SMTPHost, d.Cfg.SMTPPort, d.Cfg.SMTPUsername, d.Cfg.SMTPPassword, d.Cfg.SMTPFrom)
	} else {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	identitySvc := identity.NewService(userRepo, hasher, codes, notifier, tokens)
	vaultSvc := vault.NewService(entryRepo, codec)

	// API routes
	api := app.Group("/api")
	session := middleware.SessionAuth(tokens)

	RegisterAuthRoutes(api, identity.NewHandler(identitySvc), session)
	RegisterVaultRoutes(api, vault.NewHandler(vaultSvc), session)

	return nil
}
