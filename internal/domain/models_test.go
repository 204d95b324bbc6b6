package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestWatcherTriggered(t *testing.T) {
	tests := []struct {
		name      string
		threshold string
		price     string
		floor     string
		want      bool
	}{
		{"below floor, zero threshold", "0", "90", "100", true},
		{"at floor, zero threshold", "0", "100", "100", true},
		{"above floor, zero threshold", "0", "101", "100", false},
		{"exactly at threshold cutoff", "10", "90", "100", true},
		{"just above threshold cutoff but below floor", "10", "95", "100", true},
		{"above floor, above cutoff", "10", "105", "100", false},
		{"fractional threshold", "2.5", "97.5", "100", true},
		{"above cutoff but still below floor", "2.5", "97.51", "100", true},
		{"zero floor never triggers above", "5", "1", "0", false},
		{"zero price below positive floor", "0", "0", "10", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Watcher{UserID: 1, ChatID: 1, ThresholdPct: d(tt.threshold)}
			got := w.Triggered(d(tt.price), d(tt.floor))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMarketEventURL(t *testing.T) {
	ev := MarketEvent{ID: "a1", Ref: "EasterEgg-1234"}
	assert.Equal(t, "https://t.me/portals/market?startapp=gift_EasterEgg-1234", ev.URL())

	empty := MarketEvent{ID: "a2"}
	assert.Equal(t, "https://t.me/portals", empty.URL())
}
