package telegram

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	TgService service.ITelegramService
	Secret    string // общий секрет для ?token=, пустой — проверка выключена
	Log       *slog.Logger
}

func New(tgService service.ITelegramService, secret string, log *slog.Logger) *Controller {
	return &Controller{
		TgService: tgService,
		Secret:    secret,
		Log:       log,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook/", c.handleWebhook)
}

func (c *Controller) handleWebhook(ctx *gin.Context) {
	if c.Secret != "" {
		token := ctx.Query("token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(c.Secret)) != 1 {
			c.Log.Warn("webhook token mismatch")
			ctx.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	}

	var update domain.Update

	if err := ctx.ShouldBindJSON(&update); err != nil {
		c.Log.Error("failed to bind webhook request",
			"error", err,
		)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.Log.Debug("received webhook update",
		"update_id", update.UpdateID,
	)

	if err := c.TgService.HandleUpdate(ctx.Request.Context(), &update); err != nil {
		// Telegram повторяет доставку при не-200 ответе; обработка идемпотентна,
		// но бесконечные повторы из-за одного битого обновления нам не нужны
		c.Log.Error("failed to handle update",
			"error", err,
			"update_id", update.UpdateID,
		)
	}

	// Telegram ожидает 200 OK в ответ
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}
