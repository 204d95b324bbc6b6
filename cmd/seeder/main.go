package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/shopspring/decimal"

	"portals-watcher/internal/config"
	"portals-watcher/internal/domain"
	"portals-watcher/internal/infrastructure/database"
)

// Сидер для локальной разработки: демо-пользователь и пара подписок,
// чтобы монитор было чем кормить без живого бота.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	if !cfg.Debug {
		log.Fatal("Seeder allowed only with DEBUG=1")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db, err := database.NewConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx := context.Background()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Migrate failed: %v", err)
	}

	userRepo := database.NewUserRepository(db)
	watchRepo := database.NewWatchRepository(db, logger)

	// Тот же fallback user_id, что и в WebApp
	const demoUserID = 123456

	if err := userRepo.Upsert(ctx, demoUserID, demoUserID); err != nil {
		log.Fatalf("Seed user failed: %v", err)
	}

	watches := []domain.Watch{
		{UserID: demoUserID, Collection: "Easter Egg", Model: "Monochrome", ThresholdPct: decimal.NewFromInt(5)},
		{UserID: demoUserID, Collection: "Plush Pepe", Model: "Golden", ThresholdPct: decimal.NewFromInt(10)},
	}
	for i := range watches {
		if err := watchRepo.Create(ctx, &watches[i]); err != nil {
			log.Fatalf("Seed watch failed: %v", err)
		}
		logger.Info("seeded watch",
			slog.Int64("id", watches[i].ID),
			slog.String("collection", watches[i].Collection),
			slog.String("model", watches[i].Model))
	}

	logger.Info("✅ Seed complete")
}
