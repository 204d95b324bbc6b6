package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/joho/godotenv/autoload"

	"portals-watcher/internal/bot"
	"portals-watcher/internal/config"
	"portals-watcher/internal/infrastructure/database"
	"portals-watcher/internal/infrastructure/portals"
	"portals-watcher/internal/monitor"
	"portals-watcher/internal/notify"
	"portals-watcher/internal/usecase"
	"portals-watcher/internal/web"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).
			Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	watchRepo := database.NewWatchRepository(db, logger)
	userRepo := database.NewUserRepository(db)

	feed := portals.NewClient(cfg.PortalsBaseURL, cfg.PortalsAPIID, cfg.PortalsAPIHash, logger)

	tgBot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logger.Error("failed to init telegram bot", slog.String("error", err.Error()))
		os.Exit(1)
	}
	tgBot.Debug = cfg.Debug
	logger.Info("Telegram bot authorized", slog.String("username", tgBot.Self.UserName))

	notifier := notify.NewTelegramNotifier(tgBot)
	floors := usecase.NewFloorResolver(feed, logger)
	alerter := usecase.NewAlertService(watchRepo, floors, notifier, logger)
	manager := monitor.NewManager(feed, alerter, cfg.PollInterval, logger)

	botHandler := bot.NewHandler(tgBot, userRepo, watchRepo, cfg.WebAppURL, logger)
	srv := web.NewServer(watchRepo, cfg.Debug, logger)

	logger.Info("Starting Portals watcher...",
		slog.String("port", cfg.Port),
		slog.Duration("poll_interval", cfg.PollInterval))

	go manager.Run(ctx)
	go botHandler.Start(ctx)
	go func() {
		if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
			logger.Error("http server failed", slog.String("error", err.Error()))
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Watcher stopped gracefully")
}
