package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store persists users in the SQLite state database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// SyncUser inserts the user or refreshes its profile fields. Repeated calls
// with the same ExternalID converge on a single row.
func (s *Store) SyncUser(ctx context.Context, req SyncRequest) error {
	if req.ExternalID == "" {
		return fmt.Errorf("external_id is empty")
	}
	if req.Email == "" {
		return fmt.Errorf("email is empty")
	}

	now := s.now().UTC().Format(time.RFC3339Nano)

	var imageURL any
	if req.ImageURL != "" {
		imageURL = req.ImageURL
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO users(id, external_id, email, name, image_url, created_at, updated_at)
VALUES(?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(external_id) DO UPDATE SET
  email = excluded.email,
  name = excluded.name,
  image_url = excluded.image_url,
  updated_at = excluded.updated_at;
`, uuid.NewString(), req.ExternalID, req.Email, req.Name, imageURL, now, now)
	if err != nil {
		return fmt.Errorf("sync user %q: %w", req.ExternalID, err)
	}
	return nil
}

// Get returns the user with the given external id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, externalID string) (*User, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT id, external_id, email, name, image_url, created_at, updated_at
FROM users
WHERE external_id = ?;
`, externalID)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", externalID, err)
	}
	return u, nil
}

// List returns all users, oldest first.
func (s *Store) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, external_id, email, name, image_url, created_at, updated_at
FROM users
ORDER BY created_at ASC, rowid ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u          User
		imageURL   sql.NullString
		createdAtS string
		updatedAtS string
	)
	if err := row.Scan(&u.ID, &u.ExternalID, &u.Email, &u.Name, &imageURL, &createdAtS, &updatedAtS); err != nil {
		return nil, err
	}
	if imageURL.Valid {
		u.ImageURL = imageURL.String
	}
	if t, err := time.Parse(time.RFC3339Nano, createdAtS); err == nil {
		u.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAtS); err == nil {
		u.UpdatedAt = t
	}
	return &u, nil
}
