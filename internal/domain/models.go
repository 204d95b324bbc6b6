package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// --- Entities (Сущности БД) ---

// User - привязка пользователя к чату для доставки уведомлений.
// Создается при первом /start, chat_id обновляется при каждом следующем.
type User struct {
	UserID    int64 // Telegram user ID
	ChatID    int64
	CreatedAt time.Time
}

// Watch - подписка пользователя на пару (коллекция, модель)
// с порогом скидки в процентах от флора.
type Watch struct {
	ID           int64
	UserID       int64
	Collection   string
	Model        string
	ThresholdPct decimal.Decimal // >= 0
	CreatedAt    time.Time
}

// --- Value Objects ---

// Watcher - строка выборки "кого уведомлять": подписка вместе с
// привязкой чата. Watch без привязки сюда не попадает вовсе.
type Watcher struct {
	UserID       int64
	ChatID       int64
	ThresholdPct decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Triggered проверяет условие алерта: цена строго ниже флора,
// ЛИБО цена не выше флора со скидкой ThresholdPct.
func (w Watcher) Triggered(price, floor decimal.Decimal) bool {
	if price.LessThan(floor) {
		return true
	}
	cutoff := floor.Mul(hundred.Sub(w.ThresholdPct)).Div(hundred)
	return price.LessThanOrEqual(cutoff)
}
