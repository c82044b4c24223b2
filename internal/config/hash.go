package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const checksumFile = ".checksums"

// ComputeBlake3Hash computes the BLAKE3 hash of a file.
func ComputeBlake3Hash(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

// VerifyFileHash verifies a file against an expected BLAKE3 hash.
func VerifyFileHash(filePath, expectedHash string) error {
	actualHash, err := ComputeBlake3Hash(filePath)
	if err != nil {
		return fmt.Errorf("failed to compute hash: %w", err)
	}

	if actualHash != expectedHash {
		return fmt.Errorf("hash mismatch for %s: expected %s, got %s",
			filepath.Base(filePath), expectedHash, actualHash)
	}
	return nil
}

// Lock writes a .checksums manifest covering the config file (and .env when present).
// Returns the manifest path.
func Lock(configPath string) (string, error) {
	absPath, err := resolveConfigFile(configPath)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(absPath)

	manifest := ChecksumManifest{
		Version:     1,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Hashes:      make(map[string]string),
	}

	for _, path := range []string{absPath, filepath.Join(dir, ".env")} {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		hash, err := ComputeBlake3Hash(path)
		if err != nil {
			return "", fmt.Errorf("failed to hash %s: %w", filepath.Base(path), err)
		}
		manifest.Hashes[filepath.Base(path)] = hash
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("failed to marshal checksums: %w", err)
	}

	checksumPath := filepath.Join(dir, checksumFile)
	if err := os.WriteFile(checksumPath, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write checksums: %w", err)
	}
	return checksumPath, nil
}

// LoadChecksums reads the .checksums file from a config directory.
func LoadChecksums(configDir string) (*ChecksumManifest, error) {
	data, err := os.ReadFile(filepath.Join(configDir, checksumFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("checksums file not found (run 'clerk-sync config lock')")
		}
		return nil, fmt.Errorf("failed to read checksums: %w", err)
	}

	var manifest ChecksumManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse checksums: %w", err)
	}
	if manifest.Version != 1 {
		return nil, fmt.Errorf("unsupported checksums version: %d", manifest.Version)
	}
	return &manifest, nil
}

// verifyConfigHash checks every file listed in a sibling .checksums manifest.
// Without a manifest verification is skipped; with one, the config file must be listed.
func verifyConfigHash(absPath string) error {
	dir := filepath.Dir(absPath)
	if _, err := os.Stat(filepath.Join(dir, checksumFile)); os.IsNotExist(err) {
		return nil
	}
	manifest, err := LoadChecksums(dir)
	if err != nil {
		return err
	}

	base := filepath.Base(absPath)
	if _, ok := manifest.Hashes[base]; !ok {
		return fmt.Errorf("config file %s has no hash in checksums at %s\n"+
			"Run: clerk-sync config lock --config %s", base, dir, absPath)
	}

	for name, expected := range manifest.Hashes {
		if err := VerifyFileHash(filepath.Join(dir, name), expected); err != nil {
			return fmt.Errorf("config verification failed: %w\n"+
				"This indicates tampering or unauthorized modification.\n"+
				"If you edited this file intentionally, run: clerk-sync config lock --config %s", err, absPath)
		}
	}
	return nil
}
