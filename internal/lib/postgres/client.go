package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config — параметры подключения к PostgreSQL.
type Config struct {
	DatabaseURL     string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

// NewClient создаёт пул соединений и проверяет доступность базы.
func NewClient(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	const op = "postgres.NewClient"

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%s: %w", op, errors.New("database url is required"))
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse database url: %w", op, err)
	}

	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create connection pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: unable to ping database: %w", op, err)
	}

	return pool, nil
}
