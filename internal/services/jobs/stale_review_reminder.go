package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/admin/tg-bots/cashier-bot/internal/ports/repository"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/telegram"
)

const (
	staleReviewReminderName     = "stale-review-reminder"
	staleReviewReminderInterval = time.Hour
	staleReviewThreshold        = 30 * time.Minute
	staleReviewBatch            = 20
)

// StaleReviewReminder джоба напоминаний о зависших заявках
// Раз в час собирает заявки без движения дольше получаса и пингует операторов
type StaleReviewReminder struct {
	paymentRepo repository.IPaymentRepo
	client      telegram.IClient
	adminChatID int64
	log         *slog.Logger
}

func NewStaleReviewReminder(
	paymentRepo repository.IPaymentRepo,
	client telegram.IClient,
	adminChatID int64,
	log *slog.Logger,
) *StaleReviewReminder {
	return &StaleReviewReminder{
		paymentRepo: paymentRepo,
		client:      client,
		adminChatID: adminChatID,
		log:         log,
	}
}

func (j *StaleReviewReminder) Name() string {
	return staleReviewReminderName
}

// NextRun каждый час
func (j *StaleReviewReminder) NextRun(now time.Time) time.Time {
	return now.Add(staleReviewReminderInterval)
}

// Run отправляет сводку по зависшим заявкам
func (j *StaleReviewReminder) Run(ctx context.Context) error {
	olderThan := time.Now().Add(-staleReviewThreshold)

	stale, err := j.paymentRepo.ListAwaitingReview(ctx, olderThan, staleReviewBatch)
	if err != nil {
		return fmt.Errorf("failed to list stale payments: %w", err)
	}

	if len(stale) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "⏰ Заявки без движения дольше %d минут:\n", int(staleReviewThreshold.Minutes()))
	for _, p := range stale {
		fmt.Fprintf(&b, "\n%s\n%.2f %s • %s • висит с %s\n",
			p.ID, p.Amount, p.Currency, p.Status, p.UpdatedAt.Format("02.01 15:04"))
	}

	if err := j.client.SendMessage(ctx, j.adminChatID, b.String()); err != nil {
		return fmt.Errorf("failed to send stale review reminder: %w", err)
	}

	j.log.Info("stale review reminder sent", "count", len(stale))
	return nil
}
