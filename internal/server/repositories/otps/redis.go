package otps

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const otpPrefix = "otp:"

// consumeScript deletes the hash only when its code field matches, and
// returns the hash contents; a mismatch leaves the pending code alone.
var consumeScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], 'code') == ARGV[1] then
	local v = redis.call('HGETALL', KEYS[1])
	redis.call('DEL', KEYS[1])
	return v
end
return false
`)

// RedisStore keeps one hash per email. With a positive retention the key
// outlives ExpiresAt by that much, and a correct code submitted after the key
// is gone reads as invalid rather than expired. A zero retention sets no TTL:
// the code stays until it is consumed or replaced, as a PostgreSQL row does.
type RedisStore struct {
	client    redis.UniversalClient
	retention time.Duration
	now       func() time.Time
}

func NewRedisStore(client redis.UniversalClient, retention time.Duration) *RedisStore {
	return &RedisStore{client: client, retention: retention, now: time.Now}
}

func (s *RedisStore) Replace(ctx context.Context, code *models.OneTimeCode) error {
	key := otpPrefix + code.Email
	code.ID = uuid.NewString()
	code.CreatedAt = s.now()

	var ttl time.Duration
	if s.retention > 0 {
		ttl = max(code.ExpiresAt.Sub(code.CreatedAt), 0) + s.retention
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, map[string]any{
			"id":         code.ID,
			"code":       code.Code,
			"expires_at": strconv.FormatInt(code.ExpiresAt.UnixNano(), 10),
			"created_at": strconv.FormatInt(code.CreatedAt.UnixNano(), 10),
		})
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, email, code string) (*models.OneTimeCode, error) {
	res, err := consumeScript.Run(ctx, s.client, []string{otpPrefix + email}, code).Slice()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	fields := make(map[string]string, len(res)/2)
	for i := 0; i+1 < len(res); i += 2 {
		k, _ := res[i].(string)
		v, _ := res[i+1].(string)
		fields[k] = v
	}

	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("corrupt code record for %s: %w", email, err)
	}
	created, _ := strconv.ParseInt(fields["created_at"], 10, 64)

	return &models.OneTimeCode{
		ID:        fields["id"],
		Email:     email,
		Code:      fields["code"],
		ExpiresAt: time.Unix(0, expires),
		CreatedAt: time.Unix(0, created),
	}, nil
}
