package monitor

import (
	"context"
	"log/slog"
	"time"

	"portals-watcher/internal/domain"
	"portals-watcher/internal/observability"
	"portals-watcher/internal/usecase"
)

const defaultBatchLimit = 100

// Manager - цикл мониторинга листингов: опросить фид, отфильтровать
// уже виденное, отдать каждое новое событие AlertService, поспать,
// повторить. Любой сбой остается внутри цикла, Run живет до отмены ctx.
type Manager struct {
	feed       domain.MarketFeed
	alerter    *usecase.AlertService
	seen       *SeenSet
	interval   time.Duration
	batchLimit int
	logger     *slog.Logger
}

func NewManager(
	feed domain.MarketFeed,
	alerter *usecase.AlertService,
	interval time.Duration,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		feed:       feed,
		alerter:    alerter,
		seen:       NewSeenSet(),
		interval:   interval,
		batchLimit: defaultBatchLimit,
		logger:     logger,
	}
}

// Run крутит цикл до отмены контекста. Один цикл за раз:
// следующий начинается только после сна предыдущего.
func (m *Manager) Run(ctx context.Context) {
	m.logger.Info("🔄 Monitor loop started",
		slog.Duration("interval", m.interval),
		slog.Int("batch_limit", m.batchLimit))

	for {
		m.RunCycle(ctx)

		select {
		case <-time.After(m.interval):
		case <-ctx.Done():
			m.logger.Info("Monitor loop stopped")
			return
		}
	}
}

// RunCycle выполняет один проход. Граница сдерживания ошибок: недоступный
// фид или паника превращают цикл в no-op, но не роняют процесс.
func (m *Manager) RunCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("cycle panic recovered", slog.Any("panic", r))
			observability.DefaultMetrics.CycleErrors.Inc()
		}
	}()

	observability.DefaultMetrics.CyclesTotal.Inc()

	// Дедлайн на весь цикл, чтобы зависший апстрим не съел расписание.
	cctx, cancel := context.WithTimeout(ctx, m.interval)
	defer cancel()

	events, err := m.feed.RecentActivity(cctx, m.batchLimit)
	if err != nil {
		m.logger.Warn("feed unavailable, skipping cycle", slog.String("error", err.Error()))
		observability.DefaultMetrics.CycleErrors.Inc()
		return
	}
	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		if m.seen.Seen(ev.ID) {
			continue
		}
		// Помечаем ДО обработки: даже если дальше все упадет,
		// событие не будет доставлено дважды.
		m.seen.Mark(ev.ID)
		observability.DefaultMetrics.EventsProcessed.Inc()

		if err := m.alerter.ProcessEvent(cctx, ev); err != nil {
			m.logger.Warn("event skipped",
				slog.String("event_id", ev.ID),
				slog.String("error", err.Error()))
		}
	}
}
