package config

import (
	"os"
	"testing"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "host=localhost user=test password=test dbname=test port=5432 sslmode=disable")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 5005 {
		t.Errorf("APIPort = %d, want 5005", cfg.APIPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %s, want info", cfg.LogLevel)
	}
	if cfg.TelegramRatePerSec != 25 {
		t.Errorf("TelegramRatePerSec = %d, want 25", cfg.TelegramRatePerSec)
	}
	if cfg.TelegramConfigured() {
		t.Error("TelegramConfigured() = true without credentials")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", cfg.APIPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if !cfg.TelegramConfigured() {
		t.Error("TelegramConfigured() = false with credentials set")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("DATABASE_DSN", "placeholder")
	os.Unsetenv("DATABASE_DSN")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing DATABASE_DSN")
	}
}

func TestTelegramConfiguredNeedsBoth(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "123456:bot-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TelegramConfigured() {
		t.Error("TelegramConfigured() = true without chat id")
	}
}
