package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Header names used by Svix. Lookups go through http.Header so they are case-insensitive.
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// DefaultTolerance bounds the clock skew accepted between sender and receiver.
const DefaultTolerance = 5 * time.Minute

const (
	secretPrefix     = "whsec_"
	signatureVersion = "v1"
)

var (
	ErrMissingHeaders      = errors.New("missing svix headers")
	ErrInvalidSecret       = errors.New("invalid signing secret")
	ErrInvalidTimestamp    = errors.New("invalid svix-timestamp")
	ErrTimestampTooOld     = errors.New("message timestamp too old")
	ErrTimestampTooNew     = errors.New("message timestamp too new")
	ErrNoMatchingSignature = errors.New("no matching signature found")
)

// Headers carries the three verification values of one delivery.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFrom extracts the Svix headers from an HTTP header set.
func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        strings.TrimSpace(h.Get(HeaderID)),
		Timestamp: strings.TrimSpace(h.Get(HeaderTimestamp)),
		Signature: strings.TrimSpace(h.Get(HeaderSignature)),
	}
}

// Complete reports whether all three headers are present and non-empty.
func (h Headers) Complete() bool {
	return h.ID != "" && h.Timestamp != "" && h.Signature != ""
}

// Verifier checks that body was signed with secret for the given headers.
type Verifier interface {
	Verify(secret string, body []byte, headers Headers) error
}

// SvixVerifier is the native HMAC-SHA256 implementation of the Svix scheme.
type SvixVerifier struct {
	// Tolerance is the accepted distance between the delivery timestamp and now.
	// Zero means DefaultTolerance.
	Tolerance time.Duration

	// Now returns the current time; nil means time.Now.
	Now func() time.Time
}

// NewSvixVerifier returns a verifier with the given timestamp tolerance.
func NewSvixVerifier(tolerance time.Duration) *SvixVerifier {
	return &SvixVerifier{Tolerance: tolerance}
}

// Verify validates the delivery. Returned errors wrap one of the package
// sentinels so callers can log the reason with errors.Is.
func (v *SvixVerifier) Verify(secret string, body []byte, headers Headers) error {
	if !headers.Complete() {
		return ErrMissingHeaders
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return err
	}

	ts, err := strconv.ParseInt(headers.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, headers.Timestamp)
	}
	if err := v.checkTimestamp(time.Unix(ts, 0)); err != nil {
		return err
	}

	expected := computeSignature(key, headers.ID, headers.Timestamp, body)

	for _, entry := range strings.Fields(headers.Signature) {
		version, sig, ok := strings.Cut(entry, ",")
		if !ok || version != signatureVersion {
			continue
		}
		actual, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		// hmac.Equal is constant-time.
		if hmac.Equal(expected, actual) {
			return nil
		}
	}
	return ErrNoMatchingSignature
}

func (v *SvixVerifier) checkTimestamp(sent time.Time) error {
	tolerance := v.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	now := time.Now()
	if v.Now != nil {
		now = v.Now()
	}

	if now.Sub(sent) > tolerance {
		return ErrTimestampTooOld
	}
	if sent.Sub(now) > tolerance {
		return ErrTimestampTooNew
	}
	return nil
}

// Sign returns a svix-signature header value ("v1,<base64>") for body.
func Sign(secret, id string, timestamp time.Time, body []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}
	ts := strconv.FormatInt(timestamp.Unix(), 10)
	sig := computeSignature(key, id, ts, body)
	return signatureVersion + "," + base64.StdEncoding.EncodeToString(sig), nil
}

// ValidateSecret reports whether secret is a usable signing secret.
func ValidateSecret(secret string) error {
	_, err := decodeSecret(secret)
	return err
}

// decodeSecret turns a "whsec_<base64>" secret into the HMAC key.
func decodeSecret(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrInvalidSecret
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(secret, secretPrefix))
	if err != nil || len(key) == 0 {
		return nil, ErrInvalidSecret
	}
	return key, nil
}

func computeSignature(key []byte, id, timestamp string, body []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return mac.Sum(nil)
}
