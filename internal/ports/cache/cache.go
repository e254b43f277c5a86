package cache

import (
	"context"
	"time"
)

// Cache интерфейс для работы с кэшем
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// DedupStore атомарный check-and-set для дедупликации уведомлений
// Redis-реализация переживает рестарты сервиса, in-memory — нет
type DedupStore interface {
	// SetIfAbsent ставит ключ, если его не было. true — ключ поставлен нами
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release снимает ключ после неудачной отправки, чтобы не блокировать повтор
	Release(ctx context.Context, key string) error
}
