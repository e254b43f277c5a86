package service

import "github.com/admin/tg-bots/cashier-bot/internal/domain"

// INotifierService диспетчер уведомлений операторам
// Notify не блокирует вызывающего: задание уходит в очередь воркеров
type INotifierService interface {
	Notify(n domain.Notification)
}
