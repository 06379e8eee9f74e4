package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the roster's PostgreSQL pool.
type DB struct {
	*pgxpool.Pool
}

// PoolSize bounds the pool. Zero values keep pgx defaults.
type PoolSize struct {
	MaxConns int32
	MinConns int32
}

const connectTimeout = 10 * time.Second

func NewPostgreSQLDB(ctx context.Context, dsn string, size PoolSize) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if size.MaxConns > 0 {
		config.MaxConns = size.MaxConns
	}
	if size.MinConns > 0 && size.MinConns <= config.MaxConns {
		config.MinConns = size.MinConns
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// BeginSerializableTx opens the transaction every roster write runs in.
func (db *DB) BeginSerializableTx(ctx context.Context) (pgx.Tx, error) {
	return db.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
}

// Querier is satisfied by both the pool and a pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
