package themestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	attendance "github.com/goliatone/go-attendance/components/attendance"
)

// DefaultRedisPrefix namespaces preference keys.
const DefaultRedisPrefix = "attendance:prefs:"

// RedisStore persists the theme preference with GET/SET.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

var _ attendance.ThemeStore = (*RedisStore)(nil)

// NewRedisStore stores the preference under prefix+"theme".
func NewRedisStore(client redis.Cmdable, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("themestore: redis client is required")
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, key: prefix + attendance.ThemeKey}, nil
}

// Key returns the redis key holding the preference.
func (s *RedisStore) Key() string { return s.key }

// LoadTheme implements attendance.ThemeStore. A missing key is an unset preference.
func (s *RedisStore) LoadTheme(ctx context.Context) (attendance.Theme, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("themestore: redis get %s: %w", s.key, err)
	}
	return attendance.Theme(value), nil
}

// SaveTheme implements attendance.ThemeStore. The key never expires.
func (s *RedisStore) SaveTheme(ctx context.Context, theme attendance.Theme) error {
	if err := s.client.Set(ctx, s.key, string(theme), 0).Err(); err != nil {
		return fmt.Errorf("themestore: redis set %s: %w", s.key, err)
	}
	return nil
}
