package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// ErrWatchNotFound - удаление несуществующей подписки.
// На API-уровне превращается в 404, не в 500.
var ErrWatchNotFound = errors.New("watch not found")

// WatchRepository - подписки в БД
type WatchRepository interface {
	// Создать подписку. Повтор (user_id, collection, model) перезаписывает порог.
	Create(ctx context.Context, w *Watch) error

	// Подписки конкретного пользователя
	ListByUser(ctx context.Context, userID int64) ([]Watch, error)

	// Удалить подписку пользователя. ErrWatchNotFound если нет такой.
	Delete(ctx context.Context, id, userID int64) error

	// Кого уведомлять по паре (коллекция, модель). Только с привязанным чатом.
	FindWatchers(ctx context.Context, collection, model string) ([]Watcher, error)
}

// UserRepository - привязки user -> chat
type UserRepository interface {
	Upsert(ctx context.Context, userID, chatID int64) error
}

// MarketFeed - адаптер к маркетплейсу Portals
type MarketFeed interface {
	// Страница последней активности, не больше limit событий
	RecentActivity(ctx context.Context, limit int) ([]MarketEvent, error)

	// Флоры по моделям внутри коллекции
	ModelFloors(ctx context.Context, collection string) (map[string]decimal.Decimal, error)

	// Общий флор коллекции (fallback, когда модели нет в ModelFloors)
	CollectionFloor(ctx context.Context, collection string) (decimal.Decimal, error)
}

// Notifier - доставка алертов в Telegram, best-effort
type Notifier interface {
	Notify(chatID int64, text string) error
}
