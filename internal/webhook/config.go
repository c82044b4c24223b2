package webhook

import (
	"fmt"

	"github.com/mattjoyce/clerk-sync/internal/config"
)

// FromGlobalConfig converts the service configuration to webhook.Config.
// The secret may be empty; the handler fails closed in that case.
func FromGlobalConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, fmt.Errorf("config is nil")
	}

	maxBodySize, err := cfg.Webhook.MaxBodyBytes()
	if err != nil {
		return Config{}, fmt.Errorf("webhook: invalid max_body_size %q: %w", cfg.Webhook.MaxBodySize, err)
	}

	return Config{
		Listen:      cfg.Webhook.Listen,
		Path:        cfg.Webhook.Path,
		Secret:      cfg.Webhook.Secret,
		MaxBodySize: maxBodySize,
		Tolerance:   cfg.Webhook.Tolerance,
	}, nil
}
