package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/viralforge/mesh/services/integrations/M82-document-editor-service/internal/ports"
)

// Connect initializes a Redis client from URL or host:port input.
// Supporting both formats keeps local/dev and container config paths simple.
func Connect(_ context.Context, redisURL string) (*redis.Client, error) {
	if strings.HasPrefix(redisURL, "redis://") {
		opt, parseErr := redis.ParseURL(redisURL)
		if parseErr != nil {
			return nil, fmt.Errorf("parse redis url: %w", parseErr)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: redisURL}), nil
}

const (
	keyPrefixDocKey  = "editor:dockey:"
	keyPrefixSession = "editor:session:"
)

// RedisDocumentKeyStore is the shared document-key cache. Entries are written
// without expiration; their removal is an explicit side effect of the save
// handler, which is what the uniqueness guarantee rests on across instances.
type RedisDocumentKeyStore struct {
	client *redis.Client
}

func NewRedisDocumentKeyStore(client *redis.Client) *RedisDocumentKeyStore {
	return &RedisDocumentKeyStore{client: client}
}

func (s *RedisDocumentKeyStore) GetKey(ctx context.Context, attachmentID string) (string, error) {
	key, err := s.client.Get(ctx, keyPrefixDocKey+attachmentID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return key, nil
}

func (s *RedisDocumentKeyStore) PutKey(ctx context.Context, attachmentID, key string) error {
	return s.client.Set(ctx, keyPrefixDocKey+attachmentID, key, 0).Err()
}

func (s *RedisDocumentKeyStore) DeleteKey(ctx context.Context, attachmentID string) error {
	return s.client.Del(ctx, keyPrefixDocKey+attachmentID).Err()
}

func (s *RedisDocumentKeyStore) PutSession(ctx context.Context, key string, rec ports.SessionRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefixSession+key, raw, 0).Err()
}

func (s *RedisDocumentKeyStore) GetSession(ctx context.Context, key string) (*ports.SessionRecord, error) {
	raw, err := s.client.Get(ctx, keyPrefixSession+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var out ports.SessionRecord
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RedisDocumentKeyStore) DeleteSession(ctx context.Context, key string) error {
	return s.client.Del(ctx, keyPrefixSession+key).Err()
}
