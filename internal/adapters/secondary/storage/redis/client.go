package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/ports/cache"
	"github.com/redis/go-redis/v9"
)

// Client обёртка над redis.Client
// Реализует cache.Cache и cache.DedupStore (SETNX переживает рестарты сервиса)
type Client struct {
	client *redis.Client
}

// NewClient создаёт новый Redis-клиент
func NewClient(client *redis.Client) *Client {
	return &Client{
		client: client,
	}
}

var _ cache.Cache = (*Client)(nil)
var _ cache.DedupStore = (*Client)(nil)

// Get получает значение по ключу
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("key not found: %s", key)
	}
	if err != nil {
		return "", fmt.Errorf("redis get failed: %w", err)
	}
	return val, nil
}

// Set устанавливает значение с TTL
func (c *Client) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete удаляет значение по ключу
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Exists проверяет существование ключа
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists failed: %w", err)
	}
	return count > 0, nil
}

// SetIfAbsent атомарный SETNX: true — ключ поставлен этим вызовом
func (c *Client) SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx failed: %w", err)
	}
	return ok, nil
}

// Release снимает ключ дедупликации после неудачной отправки
func (c *Client) Release(ctx context.Context, key string) error {
	return c.Delete(ctx, key)
}

// Close закрывает подключение к кэшу
func (c *Client) Close() error {
	return c.client.Close()
}
