package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	server "github.com/admin/tg-bots/cashier-bot/internal/adapters/primary/http"
	healthcheckController "github.com/admin/tg-bots/cashier-bot/internal/adapters/primary/http/controllers/healthcheck"
	paymentsController "github.com/admin/tg-bots/cashier-bot/internal/adapters/primary/http/controllers/payments"
	telegramController "github.com/admin/tg-bots/cashier-bot/internal/adapters/primary/http/controllers/telegram"
	alerterAdapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/storage/s3"
	tgAdapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/cache"
	kafkaPorts "github.com/admin/tg-bots/cashier-bot/internal/ports/kafka"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/service"
	"github.com/admin/tg-bots/cashier-bot/internal/ports/storage"
	notificationRepo "github.com/admin/tg-bots/cashier-bot/internal/repository/notification"
	paymentRepo "github.com/admin/tg-bots/cashier-bot/internal/repository/payment"
	stepRepo "github.com/admin/tg-bots/cashier-bot/internal/repository/step"
	alerterService "github.com/admin/tg-bots/cashier-bot/internal/services/alerter"
	jobsService "github.com/admin/tg-bots/cashier-bot/internal/services/jobs"
	notifierService "github.com/admin/tg-bots/cashier-bot/internal/services/notifier"
	telegramService "github.com/admin/tg-bots/cashier-bot/internal/services/telegram"
	reviewUsecase "github.com/admin/tg-bots/cashier-bot/internal/usecases/review"
	"github.com/jmoiron/sqlx"
)

// Dependencies все инициализированные зависимости приложения
type Dependencies struct {
	DB             *sqlx.DB
	HTTPServer     *http.Server
	TelegramClient *tgAdapter.Client
	TelegramPoller *tgAdapter.Poller // nil в режиме webhook
	EventProducer  *kafkaAdapter.Producer
	Cache          cache.Cache
	Notifier       *notifierService.Dispatcher
	JobScheduler   *jobsService.Scheduler
}

func (a *App) initDependencies(ctx context.Context) (*Dependencies, error) {
	db, err := a.initPostgres()
	if err != nil {
		return nil, err
	}

	persistence := pg.NewDB(db)

	steps := stepRepo.New(persistence, a.Log)
	payments := paymentRepo.New(persistence, steps, a.Log)

	var alerterSvc service.IAlerterService
	if a.Cfg.Alerter != nil && a.Cfg.Alerter.BotToken != "" {
		alerterSvc = alerterService.New(alerterAdapter.NewClient(a.Cfg.Alerter, a.Log))
		a.Log.Info("alerter enabled", "chat_id", a.Cfg.Alerter.ChatID)
	}

	dedup, appCache := a.initDedupStore(ctx, persistence)

	tgClient := tgAdapter.NewClient(a.Cfg.Telegram.BotToken, a.Log)
	if err := tgClient.GetMe(ctx); err != nil {
		return nil, fmt.Errorf("failed to verify bot token: %w", err)
	}
	a.registerBotCommands(ctx, tgClient)

	dispatcher := notifierService.New(a.Cfg.Notifier, dedup, tgClient, alerterSvc, a.Log)

	var events kafkaPorts.IEventProducer
	var producer *kafkaAdapter.Producer
	if a.Cfg.Kafka != nil && a.Cfg.Kafka.Topic != "" {
		producer, err = kafkaAdapter.NewProducer(a.Cfg.Kafka, a.Log)
		if err != nil {
			return nil, fmt.Errorf("failed to init kafka producer: %w", err)
		}
		events = producer
		a.Log.Info("kafka producer enabled", "topic", a.Cfg.Kafka.Topic)
	}

	var proofs storage.IProofStorage
	if a.Cfg.S3 != nil && a.Cfg.S3.Host != "" {
		minioClient, err := a.Cfg.S3.NewClient()
		if err != nil {
			return nil, fmt.Errorf("failed to init s3 client: %w", err)
		}
		proofs = s3Adapter.NewClient(minioClient, a.Cfg.S3.Bucket, a.Log)
		a.Log.Info("proof storage enabled", "bucket", a.Cfg.S3.Bucket)
	}

	adminUserIDs, err := a.Cfg.Review.ParseAdminUserIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin user ids: %w", err)
	}

	reviewSvc := reviewUsecase.New(
		payments,
		steps,
		dispatcher,
		events,
		proofs,
		a.Cfg.Review.AdminChatID,
		a.Cfg.Review.ManagersChatID,
		a.Log,
	)

	tgSvc := telegramService.New(tgClient, reviewSvc, adminUserIDs, a.Log)

	httpServer := server.NewHTTPServer(
		a.Cfg.Server,
		a.Log,
		healthcheckController.New(db, a.Log),
		telegramController.New(tgSvc, a.Cfg.Telegram.WebhookSecret, a.Log),
		paymentsController.New(reviewSvc, a.Log),
	)

	var poller *tgAdapter.Poller
	if a.Cfg.Telegram.IsWebhookEnabled() {
		if err := tgClient.SetWebhook(ctx, a.webhookURL()); err != nil {
			return nil, fmt.Errorf("failed to set webhook: %w", err)
		}
		a.Log.Info("telegram webhook mode enabled", "url", a.Cfg.Telegram.WebhookURL)
	} else {
		poller = tgAdapter.NewPoller(tgClient, a.Cfg.Telegram, tgSvc.HandleUpdate, a.Log)
		a.Log.Info("telegram polling mode enabled")
	}

	scheduler := jobsService.NewScheduler(a.Log, alerterSvc)
	scheduler.Register(jobsService.NewPaymentExpirer(payments, reviewSvc, a.Log))
	scheduler.Register(jobsService.NewStaleReviewReminder(payments, tgClient, a.Cfg.Review.AdminChatID, a.Log))

	return &Dependencies{
		DB:             db,
		HTTPServer:     httpServer,
		TelegramClient: tgClient,
		TelegramPoller: poller,
		EventProducer:  producer,
		Cache:          appCache,
		Notifier:       dispatcher,
		JobScheduler:   scheduler,
	}, nil
}

// initDedupStore выбирает хранилище ключей дедупликации: Redis, если он
// настроен и доступен, иначе таблица в Postgres
func (a *App) initDedupStore(ctx context.Context, persistence *pg.DB) (cache.DedupStore, cache.Cache) {
	if a.Cfg.Redis != nil && a.Cfg.Redis.Host != "" {
		conn, err := a.Cfg.Redis.NewConnection()
		if err != nil {
			a.Log.Warn("redis unavailable, falling back to postgres dedup store", "error", err)
		} else {
			a.Log.Info("redis connected successfully")
			client := redisAdapter.NewClient(conn)
			return client, client
		}
	}

	return notificationRepo.NewKeyStore(persistence, a.Log), nil
}

// webhookURL собирает адрес webhook с общим секретом в query-параметре
func (a *App) webhookURL() string {
	url := strings.TrimRight(a.Cfg.Telegram.WebhookURL, "/") + "/webhook/"
	if a.Cfg.Telegram.WebhookSecret != "" {
		url += "?token=" + a.Cfg.Telegram.WebhookSecret
	}

	return url
}

// registerBotCommands выставляет меню команд бота, ошибка не критична
func (a *App) registerBotCommands(ctx context.Context, client *tgAdapter.Client) {
	commands := []tgAdapter.BotCommand{
		{Command: "start", Description: "Начало работы"},
		{Command: "help", Description: "Список команд"},
		{Command: "payments", Description: "Последние платежи"},
		{Command: "payment", Description: "Карточка платежа"},
	}

	if err := client.SetMyCommands(ctx, commands); err != nil {
		a.Log.Warn("failed to register bot commands", "error", err)
	}
}
