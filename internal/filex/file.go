// Package filex holds the file-system helpers shared by the vault, the JSON
// ledger, exports and local backups.
package filex

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// EnsureDir creates dir (and parents) if it does not exist yet.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteAtomic replaces filename with data.
//
// The content is written to a temporary file in the same directory and renamed
// over the target, so readers observe either the old or the new content and a
// crash mid-write leaves the previous file intact. Missing parent directories
// are created.
func WriteAtomic(filename string, data []byte) error {
	if err := EnsureDir(filepath.Dir(filename)); err != nil {
		return err
	}
	if err := atomic.WriteFile(filename, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// Exists reports whether path exists. Errors other than "not exist" are
// returned so callers do not mistake an unreadable file for an absent one.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
