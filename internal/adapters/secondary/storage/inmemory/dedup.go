package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/ports/cache"
)

// DedupStore потокобезопасный in-process набор ключей дедупликации
// Используется когда ни Redis, ни Postgres-хранилище ключей не сконфигурированы;
// рестарт сервиса сбрасывает ключи
type DedupStore struct {
	mu   sync.Mutex
	keys map[string]time.Time // ключ → срок жизни (нулевое время = бессрочно)
}

func NewDedupStore() *DedupStore {
	return &DedupStore{
		keys: make(map[string]time.Time),
	}
}

var _ cache.DedupStore = (*DedupStore)(nil)

// SetIfAbsent ставит ключ, если его нет или он истёк. true — ключ поставлен нами
func (s *DedupStore) SetIfAbsent(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, ok := s.keys[key]; ok {
		if expiry.IsZero() || expiry.After(now) {
			return false, nil
		}
	}

	var expiry time.Time
	if ttl > 0 {
		expiry = now.Add(ttl)
	}
	s.keys[key] = expiry
	return true, nil
}

// Release снимает ключ
func (s *DedupStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}
