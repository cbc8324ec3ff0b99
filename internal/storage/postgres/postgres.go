package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jeovahfialho/t212-exporter/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
    id          BIGSERIAL PRIMARY KEY,
    name        TEXT NOT NULL,
    symbol      TEXT NOT NULL,
    trade_date  TIMESTAMPTZ NOT NULL,
    price       NUMERIC(20, 8) NOT NULL,
    quantity    NUMERIC(20, 8) NOT NULL CHECK (quantity >= 0),
    currency    TEXT NOT NULL,
    order_type  TEXT NOT NULL CHECK (order_type IN ('buy', 'sell')),
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_transactions_symbol_date ON transactions (symbol, trade_date);
CREATE INDEX IF NOT EXISTS idx_transactions_trade_date ON transactions (trade_date);
`

type DB struct {
	pool *pgxpool.Pool
}

func NewDB(cfg *config.Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("erro ao parsear config: %w", err)
	}

	poolConfig.MaxConns = cfg.DatabaseMaxConns
	poolConfig.MinConns = cfg.DatabaseMinConns
	poolConfig.MaxConnLifetime = cfg.DatabaseMaxConnLife
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("erro ao criar pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("erro ao conectar: %w", err)
	}

	return &DB{pool: pool}, nil
}

// EnsureSchema cria a tabela de transações se ainda não existir.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("erro ao criar schema: %w", err)
	}
	return nil
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) Close() {
	db.pool.Close()
}

func (db *DB) HealthCheck(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

func (db *DB) Stats() *pgxpool.Stat {
	return db.pool.Stat()
}
