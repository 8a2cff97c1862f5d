package config

import (
	"errors"
	"time"

	"github.com/RoGogDBD/inventory/internal/retry"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// DBConnectPolicy возвращает политику повторов для подключения к PostgreSQL:
// повторяются только ошибки класса 08 (connection exception).
func DBConnectPolicy(log *zap.Logger) retry.Policy {
	return retry.Policy{
		MaxRetries:  3,
		Backoff:     retry.NewBackoff(time.Second, 5*time.Second, false),
		ShouldRetry: isRetriableError,
		OnRetry: func(err error, attempt int, wait time.Duration) {
			log.Warn("retriable database error",
				zap.Error(err),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)
		},
	}
}

func isRetriableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return len(pgErr.Code) >= 2 && pgErr.Code[:2] == "08"
	}
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}
