// Package db содержит инициализацию подключения к базе данных.
package db

import (
	"context"
	"fmt"

	"github.com/RoGogDBD/inventory/internal/config"
	"github.com/RoGogDBD/inventory/internal/retry"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// NewPool создает пул подключений к PostgreSQL с повторами и миграциями.
func NewPool(ctx context.Context, dsn, migrationsPath string, log *zap.Logger) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	policy := config.DBConnectPolicy(log)

	if err := retry.Do(ctx, policy, func(ctx context.Context) error {
		p, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	log.Info("connected to PostgreSQL")

	if err := retry.Do(ctx, policy, func(context.Context) error {
		return RunMigrations(migrationsPath, dsn, log)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to run migrations after retries: %w", err)
	}

	return pool, nil
}
