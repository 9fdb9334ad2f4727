package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyhaven/keyhaven/internal/auth"
	"github.com/keyhaven/keyhaven/internal/credential"
	"github.com/keyhaven/keyhaven/internal/notification"
	"github.com/keyhaven/keyhaven/internal/otp"
)

var (
	// ErrValidation indicates malformed registration or login input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is the single generic failure for the first
	// login step. A missing user, a wrong password and a wrong PIN all
	// map here so a caller cannot learn which factor failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotificationFailed indicates the one-time code could not be
	// delivered. The code stays issued; the caller may retry or resend.
	ErrNotificationFailed = errors.New("failed to send verification code")
)

var (
	emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	pinPattern   = regexp.MustCompile(`^\d{4}$`)
)

const minPasswordLength = 6

// Service orchestrates the multi-factor login flow: credential check, code
// issuance and delivery, code verification, session token issuance.
type Service struct {
	repo     Repository
	hasher   *credential.Hasher
	codes    otp.Ledger
	notifier notification.Notifier
	tokens   *auth.TokenSigner
}

// NewService wires the authentication service.
func NewService(repo Repository, hasher *credential.Hasher, codes otp.Ledger, notifier notification.Notifier, tokens *auth.TokenSigner) *Service {
	return &Service{repo: repo, hasher: hasher, codes: codes, notifier: notifier, tokens: tokens}
}

// Register creates a user with hashed password and PIN and issues a session
// token immediately; no code verification is required at registration.
func (s *Service) Register(ctx context.Context, creds Credentials) (Session, error) {
	email := NormalizeEmail(creds.Email)
	if err := validateRegistration(email, creds.Password, creds.PIN); err != nil {
		return Session{}, err
	}

	passwordHash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	pinHash, err := s.hasher.Hash(creds.PIN)
	if err != nil {
		return Session{}, fmt.Errorf("hash pin: %w", err)
	}

	now := time.Now().UTC()
	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		PINHash:      pinHash,
		CreatedAt:    now,
		LastLogin:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return Session{}, err
	}

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

// LoginStart verifies both knowledge factors, issues a one-time code and
// hands it to the notifier. A delivery failure leaves the code issued so a
// retry can resend without restarting the flow.
func (s *Service) LoginStart(ctx context.Context, creds Credentials) error {
	user, err := s.authenticate(ctx, creds)
	if err != nil {
		return err
	}

	code, err := s.codes.Issue(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("issue code: %w", err)
	}

	if err := s.notifier.Send(ctx, user.Email, code); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}
	return nil
}

// LoginVerify checks the presented one-time code and, on success, stamps the
// login time and mints the session token. Ledger errors pass through typed
// so the caller can distinguish expiry, mismatch and exhaustion.
func (s *Service) LoginVerify(ctx context.Context, email, code string) (Session, error) {
	email = NormalizeEmail(email)

	if err := s.codes.Verify(ctx, email, code); err != nil {
		return Session{}, err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return Session{}, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = now

	token, err := s.tokens.Sign(user.ID, user.Email)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}

// LoginResend re-validates the credentials and issues a fresh code,
// replacing the outstanding one.
func (s *Service) LoginResend(ctx context.Context, creds Credentials) error {
	return s.LoginStart(ctx, creds)
}

// Profile returns the user behind an authenticated session.
func (s *Service) Profile(ctx context.Context, userID string) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

func (s *Service) authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(creds.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if !s.hasher.Compare(creds.Password, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	if !s.hasher.Compare(creds.PIN, user.PINHash) {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// NormalizeEmail produces the comparison form of an identity key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(email, password, pin string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLength)
	}
	if !pinPattern.MatchString(pin) {
		return fmt.Errorf("%w: PIN must be exactly 4 digits", ErrValidation)
	}
	return nil
}
