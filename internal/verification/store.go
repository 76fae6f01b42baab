// Package verification implements the time-boxed numeric code
// exchange that flips an account's verified flag. Codes are held in an
// externally owned, expiring key-value store rather than process
// memory, so the API stays stateless and can run multi-instance.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeTTL is how long a verification code stays valid.
const CodeTTL = 5 * time.Minute

// ErrCodeExpired is returned when no code is stored for the email,
// either because none was sent or because it expired.
var ErrCodeExpired = errors.New("verification code expired or not found")

// ErrCodeMismatch is returned when the supplied code does not match
// the stored one.
var ErrCodeMismatch = errors.New("verification code does not match")

// ErrStoreUnavailable is returned when no code store is configured.
var ErrStoreUnavailable = errors.New("verification store unavailable")

// CodeStore is the expiring key-value capability the verification
// flow needs. Keys are normalized email addresses.
type CodeStore interface {
	Put(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
}

// RedisCodeStore implements CodeStore on a Redis client using native
// key expiry.
type RedisCodeStore struct {
	Client *redis.Client
	Prefix string
}

// NewRedisCodeStore wraps a Redis client. A nil client is allowed and
// yields a store whose operations fail with ErrStoreUnavailable.
func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{Client: client, Prefix: "verify"}
}

func (s *RedisCodeStore) key(k string) string { return s.Prefix + ":" + k }

func (s *RedisCodeStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.Client == nil {
		return ErrStoreUnavailable
	}
	return s.Client.Set(ctx, s.key(key), value, ttl).Err()
}

func (s *RedisCodeStore) Get(ctx context.Context, key string) (string, error) {
	if s.Client == nil {
		return "", ErrStoreUnavailable
	}
	v, err := s.Client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeExpired
	}
	return v, err
}

func (s *RedisCodeStore) Delete(ctx context.Context, key string) error {
	if s.Client == nil {
		return ErrStoreUnavailable
	}
	return s.Client.Del(ctx, s.key(key)).Err()
}

// NewCode returns a random six-digit numeric code, zero padded.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue stores a fresh code for the email and returns it.
func Issue(ctx context.Context, store CodeStore, email string) (string, error) {
	code, err := NewCode()
	if err != nil {
		return "", err
	}
	if err := store.Put(ctx, email, code, CodeTTL); err != nil {
		return "", err
	}
	return code, nil
}

// Confirm checks the supplied code against the stored one and burns
// it on success so a code cannot be replayed.
func Confirm(ctx context.Context, store CodeStore, email, code string) error {
	stored, err := store.Get(ctx, email)
	if err != nil {
		return err
	}
	if stored != code {
		return ErrCodeMismatch
	}
	return store.Delete(ctx, email)
}
