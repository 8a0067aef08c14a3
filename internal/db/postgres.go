// Package db opens the Postgres pool and owns the schema.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"mealsteals/dealworker/logger"
)

// ConnectPostgres opens a pool, checks it and makes sure the schema exists
func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.ForComponent("db").Info().Msg("Connected to Postgres")
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS restaurants (
		id UUID PRIMARY KEY,
		external_id TEXT UNIQUE NOT NULL,
		url TEXT,
		name TEXT NOT NULL,
		venue_type TEXT[] NOT NULL DEFAULT '{}',
		open_hours TEXT[] NOT NULL DEFAULT '{}',
		street_address TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		suburb TEXT,
		state TEXT,
		postcode TEXT,
		country TEXT,
		timezone TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS deals (
		id UUID PRIMARY KEY,
		restaurant_id UUID NOT NULL REFERENCES restaurants(id),
		dish TEXT NOT NULL,
		price NUMERIC(10,2),
		day_of_week TEXT[] NOT NULL,
		notes TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ,
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS deals_active_restaurant_idx
		ON deals (restaurant_id) WHERE NOT is_deleted`,
}

// InitSchema creates missing tables and indexes
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
