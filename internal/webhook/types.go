package webhook

import (
	"time"
)

// Config holds webhook server configuration.
type Config struct {
	Listen string

	// Path is the URL path deliveries are POSTed to (default "/clerk-webhook").
	Path string

	// Secret is the Svix signing secret. Empty means every delivery is
	// answered with 500 until the service is reconfigured.
	Secret string

	// MaxBodySize is the maximum allowed request body size in bytes (default: 1MB)
	MaxBodySize int64

	// Tolerance bounds the svix-timestamp skew (default: 5m).
	Tolerance time.Duration
}

// Response bodies.
const (
	msgConfigurationError = "Configuration error"
	msgMissingHeaders     = "Missing required headers"
	msgInvalidJSON        = "Invalid JSON payload"
	msgInvalidSignature   = "Invalid webhook signature"
	msgInvalidEventData   = "Invalid event data"
	msgSyncFailed         = "Error syncing user data"
	msgProcessed          = "Webhook processed successfully"
	msgPayloadTooLarge    = "Payload too large"
	msgReadFailed         = "Failed to read request body"
)

// Default values
const (
	DefaultMaxBodySize = 1048576 // 1 MB
	DefaultPath        = "/clerk-webhook"
)
