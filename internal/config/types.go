package config

import "time"

// DefaultSecretEnv is consulted when webhook.secret is empty.
const DefaultSecretEnv = "CLERK_WEBHOOK_SECRET"

// Config represents the complete clerk-sync configuration.
type Config struct {
	Service ServiceConfig `yaml:"service"`
	State   StateConfig   `yaml:"state"`
	Webhook WebhookConfig `yaml:"webhook"`

	// SourcePath is the absolute path the config was loaded from.
	SourcePath string `yaml:"-"`
}

// ServiceConfig defines core service settings.
type ServiceConfig struct {
	Name     string `yaml:"name"`
	LogLevel string `yaml:"log_level"`
}

// StateConfig defines user store settings.
type StateConfig struct {
	Path string `yaml:"path"`
}

// WebhookConfig defines the Clerk webhook listener.
type WebhookConfig struct {
	Listen string `yaml:"listen"`

	// Path is the URL path deliveries are POSTed to.
	Path string `yaml:"path"`

	// Secret is the Svix signing secret ("whsec_..."). Usually "${CLERK_WEBHOOK_SECRET}".
	Secret string `yaml:"secret,omitempty"`

	// SecretEnv names the environment variable read when Secret is empty.
	SecretEnv string `yaml:"secret_env,omitempty"`

	// MaxBodySize accepts plain bytes or KB/MB/GB suffixes (default 1MB).
	MaxBodySize string `yaml:"max_body_size,omitempty"`

	// Tolerance bounds the accepted svix-timestamp skew.
	Tolerance time.Duration `yaml:"tolerance,omitempty"`
}

// ChecksumManifest is the on-disk format of .checksums.
type ChecksumManifest struct {
	Version     int               `yaml:"version"`
	GeneratedAt string            `yaml:"generated_at"`
	Hashes      map[string]string `yaml:"hashes"`
}

// Defaults returns a Config with every default applied and no secret.
func Defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:     "clerk-sync",
			LogLevel: "info",
		},
		State: StateConfig{
			Path: "./data/users.db",
		},
		Webhook: WebhookConfig{
			Listen:      "127.0.0.1:8081",
			Path:        "/clerk-webhook",
			SecretEnv:   DefaultSecretEnv,
			MaxBodySize: "1MB",
			Tolerance:   5 * time.Minute,
		},
	}
}
