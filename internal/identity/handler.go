package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/keyhaven/keyhaven/internal/otp"
)

// Handler exposes the registration and multi-factor login endpoints.
type Handler struct {
	svc *Service
}

// NewHandler builds the identity handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	PIN      string `json:"pin"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    userResponse `json:"user"`
}

// Register creates an account and returns a session token immediately.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.svc.Register(c.UserContext(), Credentials{Email: req.Email, Password: req.Password, PIN: req.PIN})
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(sessionResponse{
		Message: "User registered successfully",
		Token:   session.Token,
		User:    userResponse{ID: session.User.ID, Email: session.User.Email},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	PIN      string `json:"pin"`
}

// Login runs the first authentication step: credential check plus code delivery.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.LoginStart(c.UserContext(), Credentials{Email: req.Email, Password: req.Password, PIN: req.PIN}); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":      "Verification code sent to your email",
		"requires_otp": true,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// VerifyOTP completes the login with the one-time code and returns the session.
func (h *Handler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	session, err := h.svc.LoginVerify(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(sessionResponse{
		Message: "Login successful",
		Token:   session.Token,
		User:    userResponse{ID: session.User.ID, Email: session.User.Email},
	})
}

// ResendOTP re-validates credentials and sends a fresh code.
func (h *Handler) ResendOTP(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.LoginResend(c.UserContext(), Credentials{Email: req.Email, Password: req.Password, PIN: req.PIN}); err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "New verification code sent to your email",
	})
}

// Me returns the profile behind the presented session token.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	if userID == "" {
		return fiber.NewError(http.StatusUnauthorized, "missing session")
	}
	user, err := h.svc.Profile(c.UserContext(), userID)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"last_login": user.LastLogin,
		},
	})
}

// httpError maps service errors onto HTTP statuses. OTP-phase failures keep
// their distinct messages; credential failures stay generic.
func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDuplicateIdentity):
		return fiber.NewError(http.StatusBadRequest, "User already exists with this email")
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, otp.ErrNotFound),
		errors.Is(err, otp.ErrExpired),
		errors.Is(err, otp.ErrAttemptsExhausted),
		errors.Is(err, otp.ErrCodeMismatch):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotificationFailed):
		return fiber.NewError(http.StatusInternalServerError, "Failed to send verification code. Please try again.")
	case errors.Is(err, ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, "User not found")
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
