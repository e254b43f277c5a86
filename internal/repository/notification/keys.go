package notificationRepo

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/ports/cache"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/persistence"
)

type keyColumns struct {
	TableName string
	Key       string
	ExpiresAt string
	CreatedAt string
}

// KeyStore хранилище ключей дедупликации уведомлений в Postgres
// Используется, когда Redis не сконфигурирован: уникальный индекс по ключу
// даёт ту же семантику "ровно один захват", переживающую перезапуски
type KeyStore struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns keyColumns
}

func NewKeyStore(db persistence.Persistence, log *slog.Logger) cache.DedupStore {
	return &KeyStore{
		db:  db,
		Log: log,
		columns: keyColumns{
			TableName: "notification_keys",
			Key:       "key",
			ExpiresAt: "expires_at",
			CreatedAt: "created_at",
		},
	}
}

// SetIfAbsent пытается захватить ключ. Возвращает true, если ключ захвачен
// этим вызовом, и false, если он уже занят. Протухшие ключи освобождаются
// перед вставкой, чтобы уникальный индекс не держал их вечно.
func (s *KeyStore) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	now := time.Now()

	cleanupQuery := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s IS NOT NULL AND %s < $2`,
		s.columns.TableName,
		s.columns.Key,
		s.columns.ExpiresAt,
		s.columns.ExpiresAt,
	)
	if err := s.db.Exec(ctx, cleanupQuery, key, now); err != nil {
		s.Log.Error("failed to cleanup expired notification key",
			"error", err,
			"key", key,
		)
		return false, fmt.Errorf("failed to cleanup expired notification key: %w", err)
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := now.Add(ttl)
		expiresAt = &t
	}

	insertQuery := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, $3) ON CONFLICT (%s) DO NOTHING`,
		s.columns.TableName,
		s.columns.Key,
		s.columns.ExpiresAt,
		s.columns.CreatedAt,
		s.columns.Key,
	)

	rows, err := s.db.ExecWithResult(ctx, insertQuery, key, expiresAt, now)
	if err != nil {
		s.Log.Error("failed to acquire notification key",
			"error", err,
			"key", key,
		)
		return false, fmt.Errorf("failed to acquire notification key: %w", err)
	}

	return rows > 0, nil
}

// Release освобождает ключ после неудачной отправки
func (s *KeyStore) Release(ctx context.Context, key string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		s.columns.TableName,
		s.columns.Key,
	)

	if err := s.db.Exec(ctx, query, key); err != nil {
		s.Log.Error("failed to release notification key",
			"error", err,
			"key", key,
		)
		return fmt.Errorf("failed to release notification key: %w", err)
	}

	return nil
}
