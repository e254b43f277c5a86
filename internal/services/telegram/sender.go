package telegram

import (
	"context"
)

// reply отправляет текстовый ответ оператору, ошибки только логируются
func (s *Service) reply(ctx context.Context, chatID int64, text string) {
	if err := s.Client.SendMessage(ctx, chatID, text); err != nil {
		s.Log.Error("failed to send reply",
			"error", err,
			"chat_id", chatID,
		)
	}
}

// answerCallback отвечает на callback query, ошибки только логируются
func (s *Service) answerCallback(ctx context.Context, callbackID string, text string, showAlert bool) {
	if err := s.Client.AnswerCallbackQuery(ctx, callbackID, text, showAlert); err != nil {
		s.Log.Error("failed to answer callback query",
			"error", err,
			"callback_id", callbackID,
		)
	}
}
