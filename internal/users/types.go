package users

import (
	"context"
	"errors"
	"time"
)

//go:generate mockgen -destination=mocks/mock_syncer.go -package=mocks github.com/mattjoyce/clerk-sync/internal/users Syncer

// ErrNotFound is returned when no user matches the external id.
var ErrNotFound = errors.New("user not found")

// SyncRequest carries the identity-provider fields persisted for one user.
type SyncRequest struct {
	ExternalID string
	Email      string
	Name       string
	ImageURL   string
}

// Syncer creates or updates a user record keyed by ExternalID.
type Syncer interface {
	SyncUser(ctx context.Context, req SyncRequest) error
}

// User is a persisted user record.
type User struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
