package service

import "context"

// IAlerterService отправка технических алертов в отдельный чат
type IAlerterService interface {
	SendAlert(ctx context.Context, message string) error
}
