package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"portals-watcher/internal/domain"
	"portals-watcher/internal/observability"
)

// AlertService - логика одного события: найти подписчиков, выяснить флор,
// разослать алерты, опустить кэш флора. Вызывается монитором на каждое
// непросмотренное событие.
type AlertService struct {
	store    domain.WatchRepository
	floors   *FloorResolver
	notifier domain.Notifier
	logger   *slog.Logger
}

func NewAlertService(
	store domain.WatchRepository,
	floors *FloorResolver,
	notifier domain.Notifier,
	logger *slog.Logger,
) *AlertService {
	return &AlertService{
		store:    store,
		floors:   floors,
		notifier: notifier,
		logger:   logger,
	}
}

// ProcessEvent обрабатывает одно событие маркетплейса. Ошибка означает
// "событие пропущено"; монитор ее логирует и идет дальше.
func (s *AlertService) ProcessEvent(ctx context.Context, ev domain.MarketEvent) error {
	watchers, err := s.store.FindWatchers(ctx, ev.Collection, ev.Model)
	if err != nil {
		return fmt.Errorf("find watchers: %w", err)
	}
	// Никто не подписан - наверх за флором не ходим вообще.
	if len(watchers) == 0 {
		return nil
	}

	floor, err := s.floors.Resolve(ctx, ev.Collection, ev.Model)
	if err != nil {
		return fmt.Errorf("resolve floor for %s/%s: %w", ev.Collection, ev.Model, err)
	}

	for _, w := range watchers {
		if !w.Triggered(ev.Price, floor) {
			continue
		}

		text := formatAlert(ev, floor)
		if err := s.notifier.Notify(w.ChatID, text); err != nil {
			// Падение доставки одному получателю не трогает остальных.
			s.logger.Warn("notification failed",
				slog.Int64("chat_id", w.ChatID),
				slog.String("event_id", ev.ID),
				slog.String("error", err.Error()))
			observability.DefaultMetrics.NotificationErrors.Inc()
			continue
		}
		observability.DefaultMetrics.NotificationsSent.Inc()
	}

	// Ratchet: цена строго ниже флора опускает кэш для следующих событий.
	if ev.Price.LessThan(floor) {
		s.floors.RatchetDown(ev.Collection, ev.Model, ev.Price)
	}
	return nil
}

func formatAlert(ev domain.MarketEvent, floor decimal.Decimal) string {
	text := fmt.Sprintf(
		"🔥 *%s — %s*\nЛистинг за *%s TON* при флоре %s TON",
		ev.Collection, ev.Model, ev.Price.String(), floor.String(),
	)
	if floor.IsPositive() && ev.Price.LessThan(floor) {
		discount := floor.Sub(ev.Price).Div(floor).Mul(hundredPct).Round(1)
		text += fmt.Sprintf(" (−%s%%)", discount.String())
	}
	return text + "\n" + ev.URL()
}

var hundredPct = decimal.NewFromInt(100)
