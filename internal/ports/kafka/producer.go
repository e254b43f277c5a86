package kafka

import "context"

// IEventProducer отправка событий платежей во внешний стрим
type IEventProducer interface {
	Send(ctx context.Context, key string, value []byte) error
	Close() error
}
