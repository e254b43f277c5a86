package notifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/cashier-bot/internal/domain"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/cache"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	tgPorts "github.com/admin/tg-bots/cashier-bot/internal/ports/telegram"
)

const (
	defaultWorkers     = 4
	defaultQueueSize   = 256
	defaultSendTimeout = 10 * time.Second
)

// Config настройки диспетчера уведомлений
type Config struct {
	Workers     int           `envconfig:"WORKERS" default:"4"`
	QueueSize   int           `envconfig:"QUEUE_SIZE" default:"256"`
	SendTimeout time.Duration `envconfig:"SEND_TIMEOUT" default:"10s"`
	DedupTTL    time.Duration `envconfig:"DEDUP_TTL" default:"24h"`
}

// Dispatcher отправляет уведомления операторам через пул воркеров
// На пару (платёж, вид события) уходит не больше одного уведомления:
// ключ дедупликации захватывается атомарно до отправки и снимается при её провале
type Dispatcher struct {
	cfg     Config
	dedup   cache.DedupStore
	client  tgPorts.IClient
	alerter service.IAlerterService // может быть nil
	queue   chan domain.Notification
	log     *slog.Logger
}

// New создаёт диспетчер уведомлений
func New(cfg Config, dedup cache.DedupStore, client tgPorts.IClient, alerterSvc service.IAlerterService, log *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = defaultSendTimeout
	}

	return &Dispatcher{
		cfg:     cfg,
		dedup:   dedup,
		client:  client,
		alerter: alerterSvc,
		queue:   make(chan domain.Notification, cfg.QueueSize),
		log:     log,
	}
}

var _ service.INotifierService = (*Dispatcher)(nil)

// Start запускает воркеры и блокируется до отмены контекста
func (d *Dispatcher) Start(ctx context.Context) error {
	d.log.Info("notification dispatcher started",
		"workers", d.cfg.Workers,
		"queue_size", d.cfg.QueueSize,
	)

	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker(ctx)
		}()
	}

	wg.Wait()
	d.log.Info("notification dispatcher stopped")
	return nil
}

// Notify ставит уведомление в очередь, не блокируя вызывающего
// При переполненной очереди уведомление отбрасывается с предупреждением
func (d *Dispatcher) Notify(n domain.Notification) {
	select {
	case d.queue <- n:
	default:
		d.log.Warn("notification queue is full, dropping",
			"payment_id", n.PaymentID,
			"kind", n.Kind,
			"chat_id", n.ChatID,
		)
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			d.dispatch(ctx, n)
		}
	}
}

// dispatch захватывает ключ дедупликации и отправляет уведомление
func (d *Dispatcher) dispatch(ctx context.Context, n domain.Notification) {
	key := n.Kind.DedupKey(n.PaymentID)

	acquired, err := d.dedup.SetIfAbsent(ctx, key, d.cfg.DedupTTL)
	if err != nil {
		// Хранилище недоступно: лучше рискнуть дублем, чем потерять уведомление
		d.log.Error("dedup store unavailable, sending anyway",
			"error", err,
			"key", key,
		)
		acquired = false
	} else if !acquired {
		d.log.Debug("duplicate notification suppressed",
			"payment_id", n.PaymentID,
			"kind", n.Kind,
		)
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	var sendErr error
	if n.Keyboard != nil {
		sendErr = d.client.SendMessageWithKeyboard(sendCtx, n.ChatID, n.Text, n.Keyboard)
	} else {
		sendErr = d.client.SendMessage(sendCtx, n.ChatID, n.Text)
	}

	if sendErr != nil {
		// Снимаем ключ, чтобы повторная попытка не была задавлена дедупликацией
		if acquired {
			if relErr := d.dedup.Release(ctx, key); relErr != nil {
				d.log.Error("failed to release dedup key",
					"error", relErr,
					"key", key,
				)
			}
		}

		dispatchErr := &domain.DispatchError{
			Kind:      n.Kind,
			PaymentID: n.PaymentID,
			Err:       sendErr,
		}
		d.log.Error("failed to dispatch notification",
			"error", dispatchErr,
			"payment_id", n.PaymentID,
			"kind", n.Kind,
			"chat_id", n.ChatID,
		)

		if d.alerter != nil {
			_ = d.alerter.SendAlert(ctx, fmt.Sprintf(
				"⚠️ Не доставлено уведомление %s по платежу %s: %v",
				n.Kind, n.PaymentID, sendErr,
			))
		}
		return
	}

	d.log.Debug("notification dispatched",
		"payment_id", n.PaymentID,
		"kind", n.Kind,
		"chat_id", n.ChatID,
	)
}
