// Package clerk models the Clerk webhook events this service understands.
//
// Inbound payloads decode into the Event tagged union. UserCreated is the only
// handled variant; every other type decodes to Unhandled so callers can
// acknowledge it without special casing.
package clerk

import (
	"encoding/json"
	"errors"
	"fmt"
)

const TypeUserCreated = "user.created"

// Envelope is the top-level structure of every Clerk webhook payload.
type Envelope struct {
	Type      string          `json:"type"`
	Object    string          `json:"object,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// Event is one verified inbound event.
type Event interface {
	EventType() string
}

// UserCreated is emitted when a user signs up.
type UserCreated struct {
	User UserData
}

func (UserCreated) EventType() string { return TypeUserCreated }

// Unhandled is any event type this service acknowledges without acting on.
type Unhandled struct {
	Type string
}

func (e Unhandled) EventType() string { return e.Type }

var ErrInvalidEnvelope = errors.New("invalid event envelope")

// CheckSyntax reports whether body is well-formed JSON. It is the only look
// taken at a payload before its signature is verified.
func CheckSyntax(body []byte) error {
	if !json.Valid(body) {
		return fmt.Errorf("%w: malformed JSON", ErrInvalidEnvelope)
	}
	return nil
}

// ParseEnvelope reads the outer event structure. Keys match exactly. Valid
// JSON that is not an object, or whose type is not a string, yields an empty
// Type and routes to Unhandled.
func ParseEnvelope(body []byte) (*Envelope, error) {
	if err := CheckSyntax(body); err != nil {
		return nil, err
	}

	var env Envelope
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return &env, nil
	}

	// Mismatched value types leave the zero value.
	_ = json.Unmarshal(fields["type"], &env.Type)
	_ = json.Unmarshal(fields["object"], &env.Object)
	_ = json.Unmarshal(fields["timestamp"], &env.Timestamp)
	env.Data = fields["data"]
	return &env, nil
}

// Decode resolves the envelope into its typed variant.
func (e *Envelope) Decode() (Event, error) {
	switch e.Type {
	case TypeUserCreated:
		var data UserData
		if len(e.Data) > 0 {
			if err := json.Unmarshal(e.Data, &data); err != nil {
				return nil, fmt.Errorf("decode %s data: %w", e.Type, err)
			}
		}
		return UserCreated{User: data}, nil
	default:
		return Unhandled{Type: e.Type}, nil
	}
}
