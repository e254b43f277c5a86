package app

import (
	"fmt"
	"strconv"
	"strings"

	server "github.com/admin/tg-bots/cashier-bot/internal/adapters/primary/http"
	alerterAdapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/alerter"
	kafkaAdapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/storage/pg"
	redisAdapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/storage/redis"
	s3Adapter "github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/storage/s3"
	"github.com/admin/tg-bots/cashier-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/cashier-bot/internal/pkg/logger"
	notifierService "github.com/admin/tg-bots/cashier-bot/internal/services/notifier"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Postgres *pg.Config              `envconfig:"POSTGRES"`
	Log      *logger.Config          `envconfig:"LOG"`
	Server   *server.Config          `envconfig:"APISERVER"`
	Telegram *telegram.Config        `envconfig:"TELEGRAM"`
	Review   *ReviewConfig           `envconfig:"REVIEW"`
	Notifier notifierService.Config  `envconfig:"NOTIFIER"`
	Redis    *redisAdapter.Config    `envconfig:"REDIS"`
	Kafka    *kafkaAdapter.Config    `envconfig:"KAFKA"`
	S3       *s3Adapter.Config       `envconfig:"S3"`
	Alerter  *alerterAdapter.Config  `envconfig:"ALERTER"`
}

// ReviewConfig настройки ручной проверки платежей
type ReviewConfig struct {
	AdminChatID    int64  `envconfig:"ADMIN_CHAT_ID" required:"true"`   // чат операторов
	ManagersChatID int64  `envconfig:"MANAGERS_CHAT_ID"`                // чат менеджеров, 0 — выключен
	AdminUserIDs   string `envconfig:"ADMIN_USER_IDS" required:"true"`  // "123,456" — telegram id операторов
}

// ParseAdminUserIDs разбирает список операторов из строки конфигурации
func (c *ReviewConfig) ParseAdminUserIDs() ([]int64, error) {
	parts := strings.Split(c.AdminUserIDs, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin user id %q: %w", part, err)
		}
		ids = append(ids, id)
	}

	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one admin user id is required")
	}

	return ids, nil
}

func NewEnvConfig(envPrefix string) (*Config, error) {
	cfg := &Config{}

	_ = godotenv.Load("deployments/local/.env")

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
