package domain

import "github.com/shopspring/decimal"

// MarketEvent - событие активности маркетплейса (новый листинг).
// Иммутабельно, читается один раз за цикл монитора.
type MarketEvent struct {
	ID         string // глобально уникальный идентификатор события
	Collection string
	Model      string
	Price      decimal.Decimal // TON
	Ref        string          // идентификатор подарка для сборки ссылки
}

// URL собирает ссылку на листинг в Portals.
func (e MarketEvent) URL() string {
	if e.Ref == "" {
		return "https://t.me/portals"
	}
	return "https://t.me/portals/market?startapp=gift_" + e.Ref
}
