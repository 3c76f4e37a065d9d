// Package storage defines the object-store operations the snapshot handlers
// need and the backends that provide them.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fakhrymubarak/weather-snapshots/internal/config"
	"github.com/fakhrymubarak/weather-snapshots/internal/redis"
)

const (
	BackendS3    = "s3"
	BackendRedis = "redis"
)

var (
	ErrObjectNotFound     = errors.New("object not found")
	ErrUnsupportedBackend = errors.New("unsupported storage backend")
)

// ObjectStore is the subset of an object storage service the handlers use.
type ObjectStore interface {
	// Put writes body under key, replacing any existing object.
	Put(ctx context.Context, bucket, key string, body []byte, contentType string) error
	// List returns every key in bucket that starts with prefix. An empty
	// result is not an error.
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	// Get returns the raw bytes stored under key.
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

var (
	defaultStore    ObjectStore
	defaultStoreErr error
	defaultOnce     sync.Once
)

// Default builds the configured store once per process and hands the same
// instance to every invocation.
func Default(ctx context.Context) (ObjectStore, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultStoreErr = New(ctx, config.GetStorageBackend())
	})
	return defaultStore, defaultStoreErr
}

// New builds a store for the named backend without caching it.
func New(ctx context.Context, backend string) (ObjectStore, error) {
	switch backend {
	case BackendS3, "":
		client, err := NewS3Client(ctx)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client), nil
	case BackendRedis:
		return NewRedisStore(redis.GetClient()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, backend)
	}
}

// ResetDefaultForTest drops the cached store. Use only in tests.
func ResetDefaultForTest() {
	defaultOnce = sync.Once{}
	defaultStore = nil
	defaultStoreErr = nil
}
