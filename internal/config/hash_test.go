package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeBlake3Hash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o644))

	h1, err := ComputeBlake3Hash(path)
	require.NoError(t, err)
	assert.Len(t, h1, 64)

	require.NoError(t, VerifyFileHash(path, h1))

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o644))
	assert.Error(t, VerifyFileHash(path, h1))
}

func TestLock_ThenLoadVerifies(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "service:\n  name: locked\n")

	manifestPath, err := Lock(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".checksums"), manifestPath)

	manifest, err := LoadChecksums(dir)
	require.NoError(t, err)
	assert.Contains(t, manifest.Hashes, "config.yaml")
	assert.NotContains(t, manifest.Hashes, ".env")

	_, err = Load(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("service:\n  name: tampered\n"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tampering")
}

func TestLock_IncludesDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "service:\n  name: locked\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("UNUSED_LOCK_TEST=1\n"), 0o600))

	_, err := Lock(path)
	require.NoError(t, err)

	manifest, err := LoadChecksums(dir)
	require.NoError(t, err)
	assert.Contains(t, manifest.Hashes, ".env")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("UNUSED_LOCK_TEST=2\n"), 0o600))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_ManifestWithoutConfigEntry(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "service:\n  name: x\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".checksums"), []byte("version: 1\nhashes: {}\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has no hash in checksums")
}

func TestLoadChecksums_Missing(t *testing.T) {
	_, err := LoadChecksums(t.TempDir())
	assert.Error(t, err)
}

func TestLoad_TamperedDotEnvNotApplied(t *testing.T) {
	const key = "CLERK_SYNC_TAMPER_CHECK"
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))

	dir := t.TempDir()
	path := writeConfig(t, dir, "service:\n  name: locked\n")
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("UNUSED_LOCK_TEST=1\n"), 0o600))
	_, err := Lock(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(envPath, []byte(key+"=injected\n"), 0o600))
	_, err = Load(path)
	require.Error(t, err)

	_, set := os.LookupEnv(key)
	assert.False(t, set, ".env was applied before the checksum check rejected it")
}
