package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"

	"portals-watcher/internal/domain"
	"portals-watcher/internal/observability"
)

// ErrFloorUnavailable - флор выяснить не удалось. Отличается от
// нулевого флора: вызывающий пропускает событие, а не сравнивает с нулем.
var ErrFloorUnavailable = errors.New("floor unavailable")

type floorKey struct {
	collection string
	model      string
}

// FloorResolver отвечает на вопрос "какой сейчас флор у (коллекция, модель)".
// Кэш живет все время процесса и двигается только вниз (ratchet):
// событие с ценой ниже закэшированного флора опускает его.
type FloorResolver struct {
	feed   domain.MarketFeed
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[floorKey]decimal.Decimal
}

func NewFloorResolver(feed domain.MarketFeed, logger *slog.Logger) *FloorResolver {
	return &FloorResolver{
		feed:   feed,
		logger: logger,
		cache:  make(map[floorKey]decimal.Decimal),
	}
}

// Resolve возвращает текущий флор. Попадание в кэш не ходит наверх.
// Промах: сначала флоры по моделям, затем fallback на флор коллекции.
func (r *FloorResolver) Resolve(ctx context.Context, collection, model string) (decimal.Decimal, error) {
	key := floorKey{collection, model}

	r.mu.RLock()
	if floor, ok := r.cache[key]; ok {
		r.mu.RUnlock()
		return floor, nil
	}
	r.mu.RUnlock()

	floors, err := r.feed.ModelFloors(ctx, collection)
	if err == nil {
		if floor, ok := floors[model]; ok {
			r.put(key, floor)
			return floor, nil
		}
	} else {
		r.logger.Debug("model floors query failed, falling back",
			slog.String("collection", collection),
			slog.String("error", err.Error()))
	}

	floor, err := r.feed.CollectionFloor(ctx, collection)
	if err != nil {
		// Ошибку не кэшируем: следующее событие попробует снова.
		return decimal.Zero, ErrFloorUnavailable
	}

	r.put(key, floor)
	return floor, nil
}

// RatchetDown опускает закэшированный флор до price, только если она
// строго ниже. Холодную запись не создает - она появится при Resolve.
func (r *FloorResolver) RatchetDown(collection, model string, price decimal.Decimal) {
	key := floorKey{collection, model}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.cache[key]
	if !ok || !price.LessThan(current) {
		return
	}
	r.cache[key] = price
}

func (r *FloorResolver) put(key floorKey, floor decimal.Decimal) {
	r.mu.Lock()
	r.cache[key] = floor
	observability.DefaultMetrics.FloorCacheEntries.Set(float64(len(r.cache)))
	r.mu.Unlock()
}
