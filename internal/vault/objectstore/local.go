// Package objectstore provides a disk-backed vault payload store for
// deployments without Supabase storage. Payloads land under a base
// directory and "signed" URLs are plain file URLs, which is enough for
// local development and tests.
package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local stores vault payloads on the local filesystem.
type Local struct {
	dir string
}

// NewLocal creates the base directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create vault storage dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// Upload writes the payload. The content type is discarded; local files
// carry no metadata.
func (l *Local) Upload(_ context.Context, storagePath string, content []byte, _ string) error {
	full, err := l.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o700); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := os.WriteFile(full, content, 0o600); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

// SignedURL returns a file URL. Local files do not expire, so the validity
// is ignored.
func (l *Local) SignedURL(_ context.Context, storagePath string, _ time.Duration) (string, error) {
	full, err := l.resolve(storagePath)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(full); err != nil {
		return "", fmt.Errorf("stat object: %w", err)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	return "file://" + filepath.ToSlash(abs), nil
}

// Remove deletes the payload. Missing objects are not an error.
func (l *Local) Remove(_ context.Context, storagePath string) error {
	full, err := l.resolve(storagePath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// resolve joins the storage path under the base dir and rejects anything
// that would escape it.
func (l *Local) resolve(storagePath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(storagePath))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage path %q", storagePath)
	}
	return filepath.Join(l.dir, cleaned), nil
}
