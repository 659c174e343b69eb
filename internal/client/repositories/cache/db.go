package cache

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/coffyapp/coffy-client/internal/client/migrations"
)

// NewRepository selects the cache backend from the DSN scheme: redis:// and
// rediss:// DSNs get the Redis backend, anything else is treated as a SQLite
// path and migrated on open.
func NewRepository(ctx context.Context, dsn string) (Repository, error) {
	if strings.HasPrefix(dsn, "redis://") || strings.HasPrefix(dsn, "rediss://") {
		opts, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis dsn: %w", err)
		}
		return NewRedisRepository(redis.NewClient(opts)), nil
	}

	db, err := InitDatabase(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return NewSQLiteRepository(db), nil
}

// InitDatabase opens the local cache database and brings its schema up to
// date with the embedded migrations.
func InitDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache db: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("failed to run cache migrations: %w", err)
	}

	return db, nil
}
