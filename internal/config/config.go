package config

import (
	"fmt"
	"strings"

	"github.com/Netflix/go-env"
)

// Config carries process configuration. Telegram, Redis, and RabbitMQ are
// optional: missing Telegram credentials select simulated delivery, a
// missing Redis URL disables rate limiting, and a missing RabbitMQ URL
// disables lifecycle event publishing.
type Config struct {
	DatabaseDSN        string `env:"DATABASE_DSN,required=true"`
	RedisURL           string `env:"REDIS_URL"`
	RabbitMQURL        string `env:"RABBITMQ_URL"`
	TelegramBotToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID     string `env:"TELEGRAM_CHAT_ID"`
	TelegramRatePerSec int    `env:"TELEGRAM_RATE_PER_SEC,default=25"`
	APIPort            int    `env:"API_PORT,default=5005"`
	LogLevel           string `env:"LOG_LEVEL,default=info"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// TelegramConfigured reports whether real delivery credentials are present.
func (c *Config) TelegramConfigured() bool {
	return strings.TrimSpace(c.TelegramBotToken) != "" && strings.TrimSpace(c.TelegramChatID) != ""
}
