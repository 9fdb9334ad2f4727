package vault

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound covers both a missing entry and an entry owned by another
// identity. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("entry not found")

// Repository persists vault entries. Every read and write is scoped by the
// owning identity; implementations must never return another owner's rows.
type Repository interface {
	Create(ctx context.Context, entry Entry) error
	ListByOwner(ctx context.Context, ownerID string) ([]Entry, error)
	Get(ctx context.Context, ownerID, id string) (Entry, error)
	Update(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, ownerID, id string) error
}

// PostgresRepository stores entries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an entry record.
func (r *PostgresRepository) Create(ctx context.Context, entry Entry) error {
	entryID, ownerID, err := parseIDs(entry.ID, entry.OwnerID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO vault_entries (id, owner_id, title, username, secret, url, notes, category, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entryID, ownerID, entry.Title, entry.Username, entry.SecretEnvelope, entry.URL, entry.Notes, entry.Category,
		entry.CreatedAt.UTC(), entry.UpdatedAt.UTC())
	return err
}

// ListByOwner fetches all of an identity's entries, most recent first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Entry, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, owner_id, title, username, secret, url, notes, category, created_at, updated_at
        FROM vault_entries WHERE owner_id = $1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Get fetches a single entry, filtered by owner.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, id string) (Entry, error) {
	entryID, owner, err := parseIDs(id, ownerID)
	if err != nil {
		return Entry{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, title, username, secret, url, notes, category, created_at, updated_at
        FROM vault_entries WHERE id = $1 AND owner_id = $2`, entryID, owner)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return entry, nil
}

// Update rewrites an entry row, still filtered by owner.
func (r *PostgresRepository) Update(ctx context.Context, entry Entry) error {
	entryID, ownerID, err := parseIDs(entry.ID, entry.OwnerID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `UPDATE vault_entries
        SET title = $1, username = $2, secret = $3, url = $4, notes = $5, category = $6, updated_at = $7
        WHERE id = $8 AND owner_id = $9`,
		entry.Title, entry.Username, entry.SecretEnvelope, entry.URL, entry.Notes, entry.Category,
		entry.UpdatedAt.UTC(), entryID, ownerID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an entry, filtered by owner.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id string) error {
	entryID, owner, err := parseIDs(id, ownerID)
	if err != nil {
		return err
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM vault_entries WHERE id = $1 AND owner_id = $2`, entryID, owner)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func parseIDs(id, ownerID string) (uuid.UUID, uuid.UUID, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrNotFound
	}
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrNotFound
	}
	return entryID, owner, nil
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		id        uuid.UUID
		ownerID   uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		entry     Entry
	)
	if err := row.Scan(&id, &ownerID, &entry.Title, &entry.Username, &entry.SecretEnvelope,
		&entry.URL, &entry.Notes, &entry.Category, &createdAt, &updatedAt); err != nil {
		return Entry{}, err
	}
	entry.ID = id.String()
	entry.OwnerID = ownerID.String()
	entry.CreatedAt = createdAt.UTC()
	entry.UpdatedAt = updatedAt.UTC()
	return entry, nil
}
