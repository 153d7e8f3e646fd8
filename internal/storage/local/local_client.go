// Package local implements ObjectStorage on the local filesystem, the
// default backend for single-node deployments.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"facturo/internal/domain"
	"facturo/internal/port"
)

type localClient struct {
	root string
}

// NewClient creates a filesystem-backed ObjectStorage rooted at dir.
func NewClient(dir string) (port.ObjectStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("local storage dir must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage dir: %w", err)
	}
	return &localClient{root: dir}, nil
}

// path maps a storage key onto the root dir, rejecting traversal outside
// it.
func (c *localClient) path(key string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(key))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(c.root, cleaned), nil
}

func (c *localClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	dst, err := c.path(input.Key)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return nil, fmt.Errorf("creating object dir: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return nil, fmt.Errorf("creating object file: %w", err)
	}
	if _, err := io.Copy(f, input.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return nil, fmt.Errorf("writing object file: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("closing object file: %w", err)
	}
	return &port.UploadOutput{Location: dst}, nil
}

func (c *localClient) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	src, err := c.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("opening object file: %w", err)
	}
	return f, nil
}

func (c *localClient) Delete(ctx context.Context, key string) error {
	dst, err := c.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("removing object file: %w", err)
	}
	return nil
}
