// Package atomicfile writes files through a temporary sibling that is renamed into place only
// after the content has been fully written and synced.
package atomicfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Write creates path by calling fill with a writer for a temporary file in the same
// directory. The temporary file is renamed onto path only when fill and the sync succeed;
// otherwise it is removed and path is left untouched.
func Write(path string, perm os.FileMode, fill func(w io.Writer) error) (err error) {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return err
	}

	file, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*.partial")
	if err != nil {
		return err
	}
	tempPath := file.Name()
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(tempPath)
		}
	}()

	if err = fill(file); err != nil {
		return err
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tempPath, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tempPath, err)
	}
	if err = os.Chmod(tempPath, perm); err != nil {
		return err
	}
	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename %s: %w", tempPath, err)
	}
	return nil
}

// Rename moves a finished file over its final name.
func Rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", from, to, err)
	}
	return nil
}
