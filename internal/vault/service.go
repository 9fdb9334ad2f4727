package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyhaven/keyhaven/internal/secret"
)

// ErrValidation indicates malformed entry input, such as a missing title or
// an empty secret.
var ErrValidation = errors.New("validation failed")

// Service exposes owner-scoped CRUD over encrypted entries. Secrets pass
// through the codec on every write and read; plaintext is never persisted.
type Service struct {
	repo  Repository
	codec *secret.Codec
}

// NewService builds the vault service.
func NewService(repo Repository, codec *secret.Codec) *Service {
	return &Service{repo: repo, codec: codec}
}

// CreateInput captures the fields of a new entry.
type CreateInput struct {
	Title    string
	Username string
	Secret   string
	URL      string
	Notes    string
	Category string
}

// Create validates, encrypts and stores a new entry. The returned view
// carries the plaintext secret back to the caller once.
func (s *Service) Create(ctx context.Context, ownerID string, input CreateInput) (View, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return View{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if input.Secret == "" {
		return View{}, fmt.Errorf("%w: secret is required", ErrValidation)
	}

	envelope, err := s.codec.Encrypt(input.Secret)
	if err != nil {
		return View{}, fmt.Errorf("encrypt secret: %w", err)
	}

	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	}

	now := time.Now().UTC()
	entry := Entry{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Title:          title,
		Username:       strings.TrimSpace(input.Username),
		SecretEnvelope: envelope,
		URL:            strings.TrimSpace(input.URL),
		Notes:          strings.TrimSpace(input.Notes),
		Category:       category,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return View{}, err
	}
	return view(entry, input.Secret), nil
}

// List returns all of the owner's entries, most recent first, each secret
// decrypted on the fly. A failed decryption surfaces as the codec's error.
func (s *Service) List(ctx context.Context, ownerID string) ([]View, error) {
	entries, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(entries))
	for _, entry := range entries {
		plaintext, err := s.codec.Decrypt(entry.SecretEnvelope)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", entry.ID, err)
		}
		views = append(views, view(entry, plaintext))
	}
	return views, nil
}

// Get returns a single decrypted entry. A missing entry and one owned by
// another identity both fail with ErrNotFound.
func (s *Service) Get(ctx context.Context, ownerID, id string) (View, error) {
	entry, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return View{}, err
	}
	plaintext, err := s.codec.Decrypt(entry.SecretEnvelope)
	if err != nil {
		return View{}, err
	}
	return view(entry, plaintext), nil
}

// UpdateInput carries partial changes; nil fields are left untouched.
type UpdateInput struct {
	Title    *string
	Username *string
	Secret   *string
	URL      *string
	Notes    *string
	Category *string
}

// Update mutates only the supplied fields. A new secret is re-encrypted,
// replacing the stored envelope; UpdatedAt is refreshed on every call.
func (s *Service) Update(ctx context.Context, ownerID, id string, input UpdateInput) (View, error) {
	entry, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return View{}, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return View{}, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		entry.Title = title
	}
	if input.Username != nil {
		entry.Username = strings.TrimSpace(*input.Username)
	}
	if input.URL != nil {
		entry.URL = strings.TrimSpace(*input.URL)
	}
	if input.Notes != nil {
		entry.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			category = DefaultCategory
		}
		entry.Category = category
	}

	plaintext := ""
	if input.Secret != nil {
		if *input.Secret == "" {
			return View{}, fmt.Errorf("%w: secret cannot be empty", ErrValidation)
		}
		envelope, err := s.codec.Encrypt(*input.Secret)
		if err != nil {
			return View{}, fmt.Errorf("encrypt secret: %w", err)
		}
		entry.SecretEnvelope = envelope
		plaintext = *input.Secret
	} else {
		plaintext, err = s.codec.Decrypt(entry.SecretEnvelope)
		if err != nil {
			return View{}, err
		}
	}

	entry.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, entry); err != nil {
		return View{}, err
	}
	return view(entry, plaintext), nil
}

// Delete removes an entry under the same ownership rules as Get.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	return s.repo.Delete(ctx, ownerID, id)
}

func view(entry Entry, plaintext string) View {
	return View{
		ID:        entry.ID,
		Title:     entry.Title,
		Username:  entry.Username,
		Secret:    plaintext,
		URL:       entry.URL,
		Notes:     entry.Notes,
		Category:  entry.Category,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}
