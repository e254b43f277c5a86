package notifier

import (
	"fmt"

	"github.com/google/uuid"
)

// Формат callback-данных кнопок оператора: dep:<payment_id>:<действие>

// BuildAdminActionKeyboard inline-клавиатура с действиями оператора по платежу
func BuildAdminActionKeyboard(paymentID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"inline_keyboard": [][]map[string]interface{}{
			{
				{
					"text":          "✅ Подтвердить",
					"callback_data": fmt.Sprintf("dep:%s:approve", paymentID),
				},
				{
					"text":          "❌ Отклонить",
					"callback_data": fmt.Sprintf("dep:%s:reject", paymentID),
				},
			},
			{
				{
					"text":          "🔐 Запросить 3DS",
					"callback_data": fmt.Sprintf("dep:%s:request_3ds", paymentID),
				},
				{
					"text":          "💳 Другая карта",
					"callback_data": fmt.Sprintf("dep:%s:ask_new_card", paymentID),
				},
			},
		},
	}
}
