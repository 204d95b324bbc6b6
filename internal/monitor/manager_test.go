package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portals-watcher/internal/domain"
	"portals-watcher/internal/usecase"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubFeed struct {
	activity    []domain.MarketEvent
	activityErr error

	modelFloors   map[string]decimal.Decimal
	modelErr      error
	collectionErr error
}

func (f *stubFeed) RecentActivity(ctx context.Context, limit int) ([]domain.MarketEvent, error) {
	if f.activityErr != nil {
		return nil, f.activityErr
	}
	return f.activity, nil
}

func (f *stubFeed) ModelFloors(ctx context.Context, collection string) (map[string]decimal.Decimal, error) {
	if f.modelErr != nil {
		return nil, f.modelErr
	}
	return f.modelFloors, nil
}

func (f *stubFeed) CollectionFloor(ctx context.Context, collection string) (decimal.Decimal, error) {
	if f.collectionErr != nil {
		return decimal.Zero, f.collectionErr
	}
	return decimal.Zero, errors.New("no collection floor")
}

type stubStore struct {
	watchers []domain.Watcher
}

func (s *stubStore) Create(ctx context.Context, w *domain.Watch) error { return nil }
func (s *stubStore) ListByUser(ctx context.Context, userID int64) ([]domain.Watch, error) {
	return nil, nil
}
func (s *stubStore) Delete(ctx context.Context, id, userID int64) error { return nil }
func (s *stubStore) FindWatchers(ctx context.Context, collection, model string) ([]domain.Watcher, error) {
	return s.watchers, nil
}

type recordingNotifier struct {
	sent []int64
}

func (n *recordingNotifier) Notify(chatID int64, text string) error {
	n.sent = append(n.sent, chatID)
	return nil
}

func newTestManager(feed domain.MarketFeed, store domain.WatchRepository, n domain.Notifier) *Manager {
	floors := usecase.NewFloorResolver(feed, testLogger())
	alerter := usecase.NewAlertService(store, floors, n, testLogger())
	return NewManager(feed, alerter, time.Second, testLogger())
}

func event(id string) domain.MarketEvent {
	return domain.MarketEvent{
		ID:         id,
		Collection: "Easter Egg",
		Model:      "Monochrome",
		Price:      d("90"),
		Ref:        "EasterEgg-1",
	}
}

// Идемпотентность: одно и то же событие в нескольких циклах
// дает ровно одну доставку.
func TestRunCycleDedupAcrossCycles(t *testing.T) {
	feed := &stubFeed{
		activity:    []domain.MarketEvent{event("x1")},
		modelFloors: map[string]decimal.Decimal{"Monochrome": d("100")},
	}
	store := &stubStore{watchers: []domain.Watcher{{UserID: 1, ChatID: 10, ThresholdPct: d("0")}}}
	notifier := &recordingNotifier{}
	m := newTestManager(feed, store, notifier)
	ctx := context.Background()

	m.RunCycle(ctx)
	m.RunCycle(ctx)
	m.RunCycle(ctx)

	assert.Equal(t, []int64{10}, notifier.sent)
	assert.Equal(t, 1, m.seen.Len())
}

// Отметка ДО обработки: событие, упавшее на резолве флора, не
// переигрывается, даже когда флор снова доступен.
func TestRunCycleMarksBeforeProcessing(t *testing.T) {
	feed := &stubFeed{
		activity:      []domain.MarketEvent{event("x1")},
		modelErr:      errors.New("down"),
		collectionErr: errors.New("down"),
	}
	store := &stubStore{watchers: []domain.Watcher{{UserID: 1, ChatID: 10, ThresholdPct: d("0")}}}
	notifier := &recordingNotifier{}
	m := newTestManager(feed, store, notifier)
	ctx := context.Background()

	m.RunCycle(ctx)
	require.Empty(t, notifier.sent)
	assert.True(t, m.seen.Seen("x1"))

	feed.modelErr = nil
	feed.modelFloors = map[string]decimal.Decimal{"Monochrome": d("100")}

	m.RunCycle(ctx)
	assert.Empty(t, notifier.sent, "at-most-once: the event must not be reprocessed")
}

// Недоступный фид - цикл no-op, следующий цикл работает как обычно.
func TestRunCycleSurvivesFeedFailure(t *testing.T) {
	feed := &stubFeed{activityErr: errors.New("503")}
	store := &stubStore{watchers: []domain.Watcher{{UserID: 1, ChatID: 10, ThresholdPct: d("0")}}}
	notifier := &recordingNotifier{}
	m := newTestManager(feed, store, notifier)
	ctx := context.Background()

	m.RunCycle(ctx)
	assert.Empty(t, notifier.sent)
	assert.Equal(t, 0, m.seen.Len())

	feed.activityErr = nil
	feed.activity = []domain.MarketEvent{event("x1")}
	feed.modelFloors = map[string]decimal.Decimal{"Monochrome": d("100")}

	m.RunCycle(ctx)
	assert.Equal(t, []int64{10}, notifier.sent)
}

func TestRunCycleEmptyBatch(t *testing.T) {
	feed := &stubFeed{}
	notifier := &recordingNotifier{}
	m := newTestManager(feed, &stubStore{}, notifier)

	m.RunCycle(context.Background())
	assert.Empty(t, notifier.sent)
	assert.Equal(t, 0, m.seen.Len())
}

// Run останавливается по отмене контекста.
func TestRunStopsOnCancel(t *testing.T) {
	feed := &stubFeed{}
	m := newTestManager(feed, &stubStore{}, &recordingNotifier{})
	m.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
