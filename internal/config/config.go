package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config - глобальная конфигурация сервиса
type Config struct {
	BotToken  string // токен Telegram-бота (обязателен)
	WebAppURL string // адрес встроенного WebApp

	DatabaseURL string // Postgres DSN

	PortalsBaseURL string
	PortalsAPIID   string // креды для сессии Portals
	PortalsAPIHash string

	PollInterval time.Duration // период опроса маркетплейса
	Port         string        // порт HTTP-сервера
	Debug        bool
}

const defaultPortalsBaseURL = "https://portals-market.com/api"

// LoadConfig читает настройки из ENV. .env подхватывается
// через godotenv/autoload в main.
func LoadConfig() (*Config, error) {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	pollSeconds := 20
	if v := os.Getenv("POLL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid POLL_SECONDS: %q", v)
		}
		pollSeconds = n
	}

	return &Config{
		BotToken:       token,
		WebAppURL:      getEnv("WEBAPP_URL", "https://example.com/webapp"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PortalsBaseURL: getEnv("PORTALS_BASE_URL", defaultPortalsBaseURL),
		PortalsAPIID:   os.Getenv("PORTALS_API_ID"),
		PortalsAPIHash: os.Getenv("PORTALS_API_HASH"),
		PollInterval:   time.Duration(pollSeconds) * time.Second,
		Port:           getEnv("PORT", "10000"),
		Debug:          os.Getenv("DEBUG") == "1",
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
