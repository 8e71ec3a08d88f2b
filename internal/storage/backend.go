package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Object describes a stored object without its content.
type Object struct {
	Key     string    `json:"key"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}

// Backend abstracts one physical storage tier. The cache tier is a local
// filesystem pool; the NAS tier is an S3-compatible bucket on the appliance.
type Backend interface {
	// Upload stores content at the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64) error

	// Download returns a reader for the object content and its size.
	// Caller must close the reader.
	Download(ctx context.Context, key string) (io.ReadCloser, int64, error)

	// Delete removes the object at the given key.
	Delete(ctx context.Context, key string) error

	// Exists checks whether an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// Stat returns object metadata without downloading it.
	Stat(ctx context.Context, key string) (*Object, error)

	// Name returns the tier identifier ("cache", "nas").
	Name() string
}

// ---------------------------------------------------------------------------
// LocalBackend — filesystem-backed cache tier
// ---------------------------------------------------------------------------

type LocalBackend struct {
	baseDir string
	name    string
}

func NewLocalBackend(baseDir, name string) *LocalBackend {
	return &LocalBackend{baseDir: baseDir, name: name}
}

func (b *LocalBackend) Name() string { return b.name }

// resolve validates and resolves a key to an absolute filesystem path,
// preventing traversal outside baseDir.
func (b *LocalBackend) resolve(key string) (string, error) {
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key: contains '..'")
	}
	full := filepath.Join(b.baseDir, filepath.FromSlash(key))
	if !strings.HasPrefix(full, b.baseDir) {
		return "", fmt.Errorf("key escapes base directory")
	}
	return full, nil
}

func (b *LocalBackend) Upload(_ context.Context, key string, reader io.Reader, _ int64) error {
	full, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(full)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, reader)
	return err
}

func (b *LocalBackend) Download(_ context.Context, key string) (io.ReadCloser, int64, error) {
	full, err := b.resolve(key)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(full)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func (b *LocalBackend) Delete(_ context.Context, key string) error {
	full, err := b.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (b *LocalBackend) Exists(_ context.Context, key string) (bool, error) {
	full, err := b.resolve(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (b *LocalBackend) Stat(_ context.Context, key string) (*Object, error) {
	full, err := b.resolve(key)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(full)
	if err != nil {
		return nil, err
	}
	return &Object{
		Key:     key,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// ---------------------------------------------------------------------------
// Cross-tier helpers
// ---------------------------------------------------------------------------

// Copy streams an object from one backend to another under the same key
// layout. Used by the sync worker to replicate cache objects to the NAS.
func Copy(ctx context.Context, src Backend, srcKey string, dst Backend, dstKey string) error {
	reader, size, err := src.Download(ctx, srcKey)
	if err != nil {
		return fmt.Errorf("download from %s: %w", src.Name(), err)
	}
	defer reader.Close()

	if err := dst.Upload(ctx, dstKey, reader, size); err != nil {
		return fmt.Errorf("upload to %s: %w", dst.Name(), err)
	}
	return nil
}
