package clerk

import (
	"errors"
	"strings"

	"github.com/mattjoyce/clerk-sync/internal/users"
)

var (
	ErrMissingID    = errors.New("missing user id")
	ErrMissingEmail = errors.New("missing email address")
)

// EmailAddress is one entry of a user's ordered email address list.
type EmailAddress struct {
	ID           string `json:"id,omitempty"`
	EmailAddress string `json:"email_address"`
}

// UserData is the subset of the Clerk user object this service reads.
type UserData struct {
	ID                    string         `json:"id"`
	EmailAddresses        []EmailAddress `json:"email_addresses"`
	PrimaryEmailAddressID string         `json:"primary_email_address_id,omitempty"`
	FirstName             *string        `json:"first_name"`
	LastName              *string        `json:"last_name"`
	ImageURL              string         `json:"image_url,omitempty"`
}

// Email returns the first address in the list, or "" when the list is empty.
func (u UserData) Email() string {
	if len(u.EmailAddresses) == 0 {
		return ""
	}
	return u.EmailAddresses[0].EmailAddress
}

// Name joins first and last name with a single space and trims the result.
// Absent parts count as empty strings.
func (u UserData) Name() string {
	return strings.TrimSpace(deref(u.FirstName) + " " + deref(u.LastName))
}

// SyncRequest builds the user store request, failing when the id or email is missing.
func (u UserData) SyncRequest() (users.SyncRequest, error) {
	if u.ID == "" {
		return users.SyncRequest{}, ErrMissingID
	}
	email := u.Email()
	if email == "" {
		return users.SyncRequest{}, ErrMissingEmail
	}
	return users.SyncRequest{
		ExternalID: u.ID,
		Email:      email,
		Name:       u.Name(),
		ImageURL:   u.ImageURL,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
