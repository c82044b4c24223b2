package config

import (
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"strings"

	"github.com/mattjoyce/clerk-sync/internal/signature"
)

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate rejects configurations the service cannot start with.
// A missing signing secret is not one of them: the webhook fails closed instead.
func Validate(cfg *Config) error {
	var errs []error

	if !validLogLevels[strings.ToLower(cfg.Service.LogLevel)] {
		errs = append(errs, fmt.Errorf("service.log_level must be one of: debug, info, warn, error (got %q)", cfg.Service.LogLevel))
	}
	if cfg.State.Path == "" {
		errs = append(errs, fmt.Errorf("state.path is required"))
	}
	if _, _, err := net.SplitHostPort(cfg.Webhook.Listen); err != nil {
		errs = append(errs, fmt.Errorf("webhook.listen %q: %w", cfg.Webhook.Listen, err))
	}
	if !strings.HasPrefix(cfg.Webhook.Path, "/") {
		errs = append(errs, fmt.Errorf("webhook.path must start with / (got %q)", cfg.Webhook.Path))
	}
	if _, err := cfg.Webhook.MaxBodyBytes(); err != nil {
		errs = append(errs, fmt.Errorf("webhook.max_body_size %q: %w", cfg.Webhook.MaxBodySize, err))
	}
	if cfg.Webhook.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("webhook.tolerance must not be negative"))
	}

	return errors.Join(errs...)
}

// CheckResult collects the findings of `config check`.
type CheckResult struct {
	Passed   bool
	Errors   []string
	Warnings []string
}

// Check runs Validate plus the operational checks that do not block startup.
func Check(cfg *Config) *CheckResult {
	result := &CheckResult{Passed: true}

	if err := Validate(cfg); err != nil {
		result.Passed = false
		for _, line := range strings.Split(err.Error(), "\n") {
			result.Errors = append(result.Errors, line)
		}
	}

	switch {
	case cfg.Webhook.Secret == "":
		result.Passed = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("webhook signing secret is not configured; set webhook.secret or $%s", cfg.Webhook.SecretEnv))
	case signature.ValidateSecret(cfg.Webhook.Secret) != nil:
		result.Passed = false
		result.Errors = append(result.Errors, "webhook signing secret is not a valid whsec_ base64 value")
	case !strings.HasPrefix(cfg.Webhook.Secret, "whsec_"):
		result.Warnings = append(result.Warnings, "webhook signing secret has no whsec_ prefix")
	}

	if host, _, err := net.SplitHostPort(cfg.Webhook.Listen); err == nil && (host == "" || host == "0.0.0.0" || host == "::") {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("webhook.listen %q accepts connections on all interfaces", cfg.Webhook.Listen))
	}

	if cfg.SourcePath != "" {
		if _, err := LoadChecksums(filepath.Dir(cfg.SourcePath)); err != nil {
			result.Warnings = append(result.Warnings, "no .checksums manifest; run 'clerk-sync config lock' to enable integrity verification")
		}
	}

	return result
}
