// Package repomanager builds the repository set the server runs on and owns
// the underlying connections.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

type RepositoryManager interface {
	RunMigrations(ctx context.Context) error
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
	Close() error
}

// Options selects the backends. An empty DatabaseDSN keeps everything in
// memory; a non-empty RedisURL moves refresh tokens to Redis.
type Options struct {
	DatabaseDSN string
	RedisURL    string
	RedisPrefix string
}

// New opens the configured connections and returns the matching manager.
func New(ctx context.Context, opts Options) (RepositoryManager, error) {
	var m RepositoryManager

	if opts.DatabaseDSN == "" {
		m = NewMemoryRepositoryManager()
	} else {
		db, err := sql.Open("pgx", opts.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("error connecting to database: %w", err)
		}
		m = NewPostgresRepositoryManager(db)
	}

	if opts.RedisURL == "" {
		return m, nil
	}

	ro, err := redis.ParseURL(opts.RedisURL)
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("error parsing redis url: %w", err)
	}
	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		_ = m.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	return withRedisTokens(m, rdb, opts.RedisPrefix), nil
}

// redisTokensManager keeps users in the wrapped manager and refresh tokens in Redis.
type redisTokensManager struct {
	RepositoryManager
	rdb    redis.UniversalClient
	tokens *refreshtokens.RedisRepository
}

func withRedisTokens(m RepositoryManager, rdb redis.UniversalClient, prefix string) *redisTokensManager {
	return &redisTokensManager{
		RepositoryManager: m,
		rdb:               rdb,
		tokens:            refreshtokens.NewRedisRepository(rdb, prefix),
	}
}

func (m *redisTokensManager) RefreshTokens() refreshtokens.Repository {
	return m.tokens
}

func (m *redisTokensManager) Close() error {
	rerr := m.rdb.Close()
	if err := m.RepositoryManager.Close(); err != nil {
		return err
	}
	return rerr
}
