package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// Provider represents different blob storage backends
type Provider string

const (
	ProviderLocal Provider = "local"
	ProviderS3    Provider = "s3"
)

// Config selects and configures the storage backend.
type Config struct {
	Backend Provider
	BaseURL string

	// local
	Dir string

	// s3
	Bucket         string
	Region         string
	Endpoint       string
	AccessKey      string
	Secret         string
	ForcePathStyle bool
}

// BlobStore stores recording artifacts under opaque keys.
type BlobStore interface {
	Upload(ctx context.Context, content []byte, key string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)

	// URL returns the unauthenticated location of a stored object. Signed,
	// expiring access is layered on top by the token service.
	URL(key string) string
}

// New validates the config and returns a filesystem-backed store.
func New(cfg *Config) (BlobStore, error) {
	switch cfg.Backend {
	case ProviderLocal:
		if cfg.Dir == "" {
			return nil, fmt.Errorf("storage: local backend requires a directory")
		}
	case ProviderS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("storage: s3 backend requires a bucket")
		}
	default:
		return nil, fmt.Errorf("storage: unsupported backend %q", cfg.Backend)
	}
	return &fsStore{cfg: cfg}, nil
}

// fsStore opens a fresh filesystem handle per operation, the same way
// PocketBase serves record files.
type fsStore struct {
	cfg *Config
}

func (s *fsStore) open(ctx context.Context) (*filesystem.System, error) {
	var fsys *filesystem.System
	var err error

	if s.cfg.Backend == ProviderS3 {
		fsys, err = filesystem.NewS3(
			s.cfg.Bucket,
			s.cfg.Region,
			s.cfg.Endpoint,
			s.cfg.AccessKey,
			s.cfg.Secret,
			s.cfg.ForcePathStyle,
		)
	} else {
		fsys, err = filesystem.NewLocal(s.cfg.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: open %s backend: %w", s.cfg.Backend, err)
	}

	fsys.SetContext(ctx)
	return fsys, nil
}

func (s *fsStore) Upload(ctx context.Context, content []byte, key string) error {
	fsys, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer fsys.Close()

	if err := fsys.Upload(content, key); err != nil {
		return fmt.Errorf("storage: upload %s: %w", key, err)
	}
	return nil
}

func (s *fsStore) Delete(ctx context.Context, key string) error {
	fsys, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer fsys.Close()

	if err := fsys.Delete(key); err != nil {
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}
	return nil
}

func (s *fsStore) Exists(ctx context.Context, key string) (bool, error) {
	fsys, err := s.open(ctx)
	if err != nil {
		return false, err
	}
	defer fsys.Close()

	return fsys.Exists(key)
}

func (s *fsStore) List(ctx context.Context, prefix string) ([]string, error) {
	fsys, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer fsys.Close()

	objects, err := fsys.List(prefix)
	if err != nil {
		return nil, fmt.Errorf("storage: list %s: %w", prefix, err)
	}

	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (s *fsStore) URL(key string) string {
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + strings.TrimLeft(key, "/")
}
