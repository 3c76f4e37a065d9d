package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	redisv9 "github.com/redis/go-redis/v9"
)

const (
	fieldBody        = "body"
	fieldContentType = "content_type"
	scanCount        = 100
)

// RedisClient is the part of go-redis the store calls.
type RedisClient interface {
	HSet(ctx context.Context, key string, values ...interface{}) *redisv9.IntCmd
	HGet(ctx context.Context, key, field string) *redisv9.StringCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redisv9.ScanCmd
}

// RedisStore keeps each object as a hash at "<bucket>:<key>". It stands in
// for S3 during local runs.
type RedisStore struct {
	client RedisClient
}

func NewRedisStore(client RedisClient) *RedisStore {
	return &RedisStore{client: client}
}

func objectKey(bucket, key string) string {
	return bucket + ":" + key
}

func (s *RedisStore) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	err := s.client.HSet(ctx, objectKey(bucket, key), fieldBody, body, fieldContentType, contentType).Err()
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// List returns keys in lexicographic order, the same order S3 lists them.
func (s *RedisStore) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	namespace := objectKey(bucket, "")
	match := escapeGlob(objectKey(bucket, prefix)) + "*"

	seen := make(map[string]struct{})
	var cursor uint64
	for {
		found, next, err := s.client.Scan(ctx, cursor, match, scanCount).Result()
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, k := range found {
			// SCAN may return a key more than once.
			seen[strings.TrimPrefix(k, namespace)] = struct{}{}
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *RedisStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	body, err := s.client.HGet(ctx, objectKey(bucket, key), fieldBody).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return nil, fmt.Errorf("get %s: %w", key, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return body, nil
}

// escapeGlob quotes the characters SCAN MATCH treats as wildcards so a city
// name is matched literally.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
