package internal

import (
	"fmt"
	"os"
	"path/filepath"
)

func WriteAll(file *os.File, buf []byte) (int, error) {
	total := 0
	remaining := len(buf)
	for remaining > 0 {
		n, err := file.Write(buf[total:])
		if err != nil {
			return total, fmt.Errorf("failed to write file: %w", err)
		}

		total += n
		remaining -= n
	}

	return total, nil
}

// WriteFileAtomic writes buf to a temp file beside path and renames it into
// place, so readers never observe a partial report.
func WriteFileAtomic(path string, buf []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := WriteAll(tmp, buf); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to rename %s to %s: %w", tmpName, path, err)
	}
	return nil
}
