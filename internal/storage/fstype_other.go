//go:build !darwin && !linux

package storage

// No statfs here; the path is assumed to be local.
func detectFilesystemType(string) (string, error) {
	return "unknown", nil
}
