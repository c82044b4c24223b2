package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("config-test-key"))

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv(DefaultSecretEnv, "")
	path := writeConfig(t, t.TempDir(), "service:\n  name: test-sync\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test-sync", cfg.Service.Name)
	assert.Equal(t, "info", cfg.Service.LogLevel)
	assert.Equal(t, "./data/users.db", cfg.State.Path)
	assert.Equal(t, "127.0.0.1:8081", cfg.Webhook.Listen)
	assert.Equal(t, "/clerk-webhook", cfg.Webhook.Path)
	assert.Equal(t, 5*time.Minute, cfg.Webhook.Tolerance)
	assert.Equal(t, path, cfg.SourcePath)

	size, err := cfg.Webhook.MaxBodyBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(1048576), size)
}

func TestLoad_DirectoryArgument(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "service:\n  log_level: debug\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Service.LogLevel)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_InterpolatesSecret(t *testing.T) {
	t.Setenv("TEST_CLERK_SECRET", testSecret)
	path := writeConfig(t, t.TempDir(), `
webhook:
  secret: ${TEST_CLERK_SECRET}
  tolerance: 2m
  max_body_size: 64KB
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Webhook.Secret)
	assert.Equal(t, 2*time.Minute, cfg.Webhook.Tolerance)

	size, err := cfg.Webhook.MaxBodyBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024), size)
}

func TestLoad_UnresolvedSecretFallsBackToSecretEnv(t *testing.T) {
	t.Setenv(DefaultSecretEnv, testSecret)
	path := writeConfig(t, t.TempDir(), "webhook:\n  secret: ${UNSET_SECRET_FOR_TEST}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Webhook.Secret)
}

func TestLoad_UnresolvedSecretWithoutFallbackIsEmpty(t *testing.T) {
	t.Setenv(DefaultSecretEnv, "")
	path := writeConfig(t, t.TempDir(), "webhook:\n  secret: ${UNSET_SECRET_FOR_TEST}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Webhook.Secret)
}

func TestLoad_CustomSecretEnv(t *testing.T) {
	t.Setenv("MY_SVIX_SECRET", testSecret)
	path := writeConfig(t, t.TempDir(), "webhook:\n  secret_env: MY_SVIX_SECRET\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Webhook.Secret)
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	t.Setenv(DefaultSecretEnv, "")
	os.Unsetenv(DefaultSecretEnv)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(DefaultSecretEnv+"="+testSecret+"\n"), 0o600))
	path := writeConfig(t, dir, "service:\n  name: dotenv\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.Webhook.Secret)
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad log level", "service:\n  log_level: loud\n", "service.log_level"},
		{"bad listen", "webhook:\n  listen: nowhere\n", "webhook.listen"},
		{"relative path", "webhook:\n  path: clerk-webhook\n", "webhook.path"},
		{"bad body size", "webhook:\n  max_body_size: lots\n", "webhook.max_body_size"},
		{"negative tolerance", "webhook:\n  tolerance: -1m\n", "webhook.tolerance"},
		{"bad yaml", "service: [\n", "failed to parse YAML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseMaxBodySize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"", defaultMaxBodySize, false},
		{"2048", 2048, false},
		{"1kb", 1024, false},
		{"2MB", 2 * 1024 * 1024, false},
		{"1GB", 1024 * 1024 * 1024, false},
		{"0", 0, true},
		{"-5MB", 0, true},
		{"MB", 0, true},
		{"9999999999999GB", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMaxBodySize(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestCheck(t *testing.T) {
	t.Setenv(DefaultSecretEnv, "")

	cfg, err := Parse([]byte("service:\n  name: x\n"))
	require.NoError(t, err)
	res := Check(cfg)
	assert.False(t, res.Passed)
	assert.True(t, containsLine(res.Errors, "signing secret is not configured"))

	cfg.Webhook.Secret = "whsec_!!!"
	res = Check(cfg)
	assert.False(t, res.Passed)
	assert.True(t, containsLine(res.Errors, "not a valid whsec_"))

	cfg.Webhook.Secret = testSecret
	cfg.Webhook.Listen = "0.0.0.0:8081"
	res = Check(cfg)
	assert.True(t, res.Passed)
	assert.Empty(t, res.Errors)
	assert.True(t, containsLine(res.Warnings, "all interfaces"))
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}
