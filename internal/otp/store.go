// internal/otp/store.go

package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNoCode is returned when no live code exists for a phone and purpose
var ErrNoCode = errors.New("no active code")

// Store keeps issued codes until they expire or are consumed
type Store interface {
	Save(ctx context.Context, phone string, purpose Purpose, rec Record) error
	Load(ctx context.Context, phone string, purpose Purpose) (*Record, error)
	IncrementAttempts(ctx context.Context, phone string, purpose Purpose) (int, error)
	Delete(ctx context.Context, phone string, purpose Purpose) error
	// CountSend records a send and returns the number of sends within window
	CountSend(ctx context.Context, phone string, window time.Duration) (int, error)
}

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates an OTP store backed by Redis hashes
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func codeKey(phone string, purpose Purpose) string {
	return fmt.Sprintf("otp:%s:%s", purpose, phone)
}

func rateKey(phone string) string {
	return "otp:rate:" + phone
}

func (s *redisStore) Save(ctx context.Context, phone string, purpose Purpose, rec Record) error {
	key := codeKey(phone, purpose)
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return errors.New("record already expired")
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"code_hash":  rec.CodeHash,
		"attempts":   rec.Attempts,
		"expires_at": rec.ExpiresAt.Unix(),
	})
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save otp: %w", err)
	}
	return nil
}

func (s *redisStore) Load(ctx context.Context, phone string, purpose Purpose) (*Record, error) {
	fields, err := s.client.HGetAll(ctx, codeKey(phone, purpose)).Result()
	if err != nil {
		return nil, fmt.Errorf("load otp: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNoCode
	}

	attempts, _ := strconv.Atoi(fields["attempts"])
	expires, _ := strconv.ParseInt(fields["expires_at"], 10, 64)
	return &Record{
		CodeHash:  fields["code_hash"],
		Attempts:  attempts,
		ExpiresAt: time.Unix(expires, 0),
	}, nil
}

func (s *redisStore) IncrementAttempts(ctx context.Context, phone string, purpose Purpose) (int, error) {
	n, err := s.client.HIncrBy(ctx, codeKey(phone, purpose), "attempts", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("increment attempts: %w", err)
	}
	return int(n), nil
}

func (s *redisStore) Delete(ctx context.Context, phone string, purpose Purpose) error {
	return s.client.Del(ctx, codeKey(phone, purpose)).Err()
}

func (s *redisStore) CountSend(ctx context.Context, phone string, window time.Duration) (int, error) {
	key := rateKey(phone)
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("count send: %w", err)
	}
	if n == 1 {
		s.client.Expire(ctx, key, window)
	}
	return int(n), nil
}
