package telegram

type Config struct {
	BotToken       string `envconfig:"BOT_TOKEN"`
	UseWebhook     string `envconfig:"USE_WEBHOOK"` // Railway требует строки
	WebhookURL     string `envconfig:"WEBHOOK_URL"`
	WebhookSecret  string `envconfig:"WEBHOOK_SECRET"` // общий секрет для ?token= в запросах webhook
	PollingTimeout int    `envconfig:"POLLING_TIMEOUT"`
}

// IsWebhookEnabled парсит строку UseWebhook в boolean
func (c *Config) IsWebhookEnabled() bool {
	return c.UseWebhook == "true" || c.UseWebhook == "1" || c.UseWebhook == "True"
}
