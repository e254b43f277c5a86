package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
)

// HandleUpdate основной метод для обработки всех типов обновлений
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	if update.CallbackQuery != nil {
		return s.HandleCallback(ctx, update.CallbackQuery)
	}

	if update.Message != nil {
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	}

	return nil
}

// HandleMessage обрабатывает входящее сообщение
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}

	if message.Text == nil || !IsCommand(*message.Text) {
		return nil
	}

	chatID := message.From.ID
	if message.Chat != nil {
		chatID = message.Chat.ID
	}

	// Авторизация до разбора аргументов и до любых переходов
	if !s.isAuthorized(message.From) {
		s.Log.Warn("unauthorized command",
			"telegram_user_id", message.From.ID,
			"update_id", updateID,
		)
		s.reply(ctx, chatID, "⛔ Недостаточно прав")
		return nil
	}

	command := ParseCommand(*message.Text)
	args := ParseArgs(*message.Text)

	return s.handleCommand(ctx, chatID, message.From, command, args)
}

// ParseCommand извлекает имя команды из текста сообщения
func ParseCommand(text string) string {
	text = strings.TrimPrefix(text, "/")

	if idx := strings.Index(text, "@"); idx != -1 {
		text = text[:idx]
	}

	if idx := strings.Index(text, " "); idx != -1 {
		text = text[:idx]
	}

	return text
}

// ParseArgs возвращает аргументы команды после её имени
func ParseArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

func IsCommand(text string) bool {
	return len(text) > 0 && text[0] == '/'
}
