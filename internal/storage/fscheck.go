package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrNetworkFilesystem is returned when users.db would live on a remote mount.
// SQLite locking is unreliable there and concurrent webhook deliveries can
// corrupt the store.
var ErrNetworkFilesystem = errors.New("sqlite database on network filesystem")

var networkFilesystems = []string{"afpfs", "cifs", "nfs", "smb2", "smbfs", "webdav"}

type fsDetector func(path string) (string, error)

func checkLocalFilesystem(dbPath string) error {
	return checkLocalFilesystemWith(dbPath, detectFilesystemType)
}

func checkLocalFilesystemWith(dbPath string, detect fsDetector) error {
	if dbPath == "" {
		return fmt.Errorf("state.path is empty")
	}

	existing, err := closestExistingDir(dbPath)
	if err != nil {
		return fmt.Errorf("resolve state.path %q: %w", dbPath, err)
	}

	fsType, err := detect(existing)
	if err != nil {
		return fmt.Errorf("detect filesystem for %q: %w", existing, err)
	}

	if slices.Contains(networkFilesystems, strings.ToLower(strings.TrimSpace(fsType))) {
		return fmt.Errorf("%w: %q is on %s; set state.path to a local file such as ./data/users.db",
			ErrNetworkFilesystem, dbPath, fsType)
	}
	return nil
}

// closestExistingDir walks up from path until it finds something that exists,
// so the check works before the data directory is created.
func closestExistingDir(path string) (string, error) {
	current, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	for {
		_, statErr := os.Stat(current)
		switch {
		case statErr == nil:
			return current, nil
		case !errors.Is(statErr, os.ErrNotExist):
			return "", statErr
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("no existing ancestor of %q", path)
		}
		current = parent
	}
}
