package refreshtokens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

// Key layout under prefix:
//
//	<prefix>:rt:<id>      hash {user_id, token, expires_at, created_at}
//	<prefix>:rtv:<token>  id of the record holding token
//	<prefix>:rtu:<user>   set of record ids owned by user
//
// Record and value keys expire together with the token. The per-user set is
// swept by DeleteExpired.

const createScript = `
if redis.call("EXISTS", KEYS[1]) == 1 or redis.call("EXISTS", KEYS[2]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1], "user_id", ARGV[2], "token", ARGV[3], "expires_at", ARGV[4], "created_at", ARGV[5])
redis.call("PEXPIREAT", KEYS[1], ARGV[4])
redis.call("SET", KEYS[2], ARGV[1])
redis.call("PEXPIREAT", KEYS[2], ARGV[4])
redis.call("SADD", KEYS[3], ARGV[1])
return 1
`

var createLua = redis.NewScript(createScript)

const deleteScript = `
local data = redis.call("HMGET", KEYS[1], "user_id", "token")
if not data[1] then
  return 0
end
redis.call("DEL", KEYS[1])
redis.call("DEL", ARGV[1] .. data[2])
redis.call("SREM", ARGV[2] .. data[1], ARGV[3])
return 1
`

var deleteLua = redis.NewScript(deleteScript)

const deleteAllScript = `
local n = 0
for _, id in ipairs(redis.call("SMEMBERS", KEYS[1])) do
  local tok = redis.call("HGET", ARGV[1] .. id, "token")
  if tok then
    redis.call("DEL", ARGV[1] .. id)
    redis.call("DEL", ARGV[2] .. tok)
    n = n + 1
  end
end
redis.call("DEL", KEYS[1])
return n
`

var deleteAllLua = redis.NewScript(deleteAllScript)

const sweepScript = `
local n = 0
for _, id in ipairs(redis.call("SMEMBERS", KEYS[1])) do
  if redis.call("EXISTS", ARGV[1] .. id) == 0 then
    redis.call("SREM", KEYS[1], id)
    n = n + 1
  end
end
return n
`

var sweepLua = redis.NewScript(sweepScript)

// RedisRepository implements Repository on Redis. Every mutation runs as a
// single Lua script, so each is atomic with respect to other clients.
type RedisRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisRepository(rdb redis.UniversalClient, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "gophauth"
	}
	return &RedisRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisRepository) recordPrefix() string { return r.prefix + ":rt:" }
func (r *RedisRepository) valuePrefix() string  { return r.prefix + ":rtv:" }
func (r *RedisRepository) userPrefix() string   { return r.prefix + ":rtu:" }

func (r *RedisRepository) Create(ctx context.Context, t *models.RefreshToken) error {
	keys := []string{
		r.recordPrefix() + t.ID,
		r.valuePrefix() + t.Token,
		r.userPrefix() + t.UserID,
	}
	created, err := createLua.Run(ctx, r.rdb, keys,
		t.ID, t.UserID, t.Token, t.ExpiresAt.UnixMilli(), t.CreatedAt.UnixMilli()).Int64()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	if created == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *RedisRepository) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	id, err := r.rdb.Get(ctx, r.valuePrefix()+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	fields, err := r.rdb.HGetAll(ctx, r.recordPrefix()+id).Result()
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}
	// value key outlived its record
	if len(fields) == 0 || fields["token"] != token {
		return nil, common.ErrorNotFound
	}

	expires, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis error: bad expires_at: %w", err)
	}
	created, err := strconv.ParseInt(fields["created_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redis error: bad created_at: %w", err)
	}

	return &models.RefreshToken{
		ID:        id,
		UserID:    fields["user_id"],
		Token:     token,
		ExpiresAt: time.UnixMilli(expires).UTC(),
		CreatedAt: time.UnixMilli(created).UTC(),
	}, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) (bool, error) {
	n, err := deleteLua.Run(ctx, r.rdb, []string{r.recordPrefix() + id},
		r.valuePrefix(), r.userPrefix(), id).Int64()
	if err != nil {
		return false, fmt.Errorf("redis error: %w", err)
	}
	return n == 1, nil
}

func (r *RedisRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	n, err := deleteAllLua.Run(ctx, r.rdb, []string{r.userPrefix() + userID},
		r.recordPrefix(), r.valuePrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	return n, nil
}

// DeleteExpired drops ids of records Redis has already expired from the
// per-user sets. The now argument is unused since expiry is enforced by TTL.
func (r *RedisRepository) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	var total int64
	iter := r.rdb.Scan(ctx, 0, r.userPrefix()+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := sweepLua.Run(ctx, r.rdb, []string{iter.Val()}, r.recordPrefix()).Int64()
		if err != nil {
			return total, fmt.Errorf("redis error: %w", err)
		}
		total += n
	}
	if err := iter.Err(); err != nil {
		return total, fmt.Errorf("redis error: %w", err)
	}
	return total, nil
}
