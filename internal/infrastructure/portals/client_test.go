package portals

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBackend - минимальный Portals API для httptest: сессии и
// ответы задаются полями.
type testBackend struct {
	mux *http.ServeMux

	validToken   atomic.Value // string
	authCalls    atomic.Int64
	actionsBody  string
	floorsBody   string
	collBody     string
	actionsCalls atomic.Int64
}

func newTestBackend() *testBackend {
	b := &testBackend{mux: http.NewServeMux()}
	b.validToken.Store("t1")

	// Go 1.21 ServeMux не понимает паттерны с методом ("POST /path"),
	// поэтому метод проверяется внутри обработчика.
	handle := func(method, path string, h http.HandlerFunc) {
		b.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != method {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			// resty разбирает ответ только при JSON content-type.
			w.Header().Set("Content-Type", "application/json")
			h(w, r)
		})
	}

	handle(http.MethodPost, "/auth/session", func(w http.ResponseWriter, r *http.Request) {
		b.authCalls.Add(1)
		var req authRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.APIID == "" || req.APIHash == "" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_ = json.NewEncoder(w).Encode(authResponse{Token: b.validToken.Load().(string)})
	})

	authorized := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+b.validToken.Load().(string) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	handle(http.MethodGet, "/market/actions", authorized(func(w http.ResponseWriter, r *http.Request) {
		b.actionsCalls.Add(1)
		_, _ = w.Write([]byte(b.actionsBody))
	}))
	handle(http.MethodGet, "/collections/Easter Egg/floors", authorized(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(b.floorsBody))
	}))
	handle(http.MethodGet, "/collections/Easter Egg", authorized(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(b.collBody))
	}))

	return b
}

func newTestClient(t *testing.T) (*Client, *testBackend) {
	t.Helper()
	backend := newTestBackend()
	srv := httptest.NewServer(backend.mux)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "api-id", "api-hash", slog.New(slog.NewTextHandler(io.Discard, nil)))
	return c, backend
}

func TestRecentActivityParsesAndFilters(t *testing.T) {
	c, backend := newTestClient(t)
	backend.actionsBody = `{"actions":[
		{"id":"x1","type":"listing","collection":"Easter Egg","model":"Monochrome","price":"90.5","nft_id":"EasterEgg-1"},
		{"id":"x2","type":"offer","collection":"Easter Egg","model":"Monochrome","price":"80","nft_id":"EasterEgg-2"},
		{"id":"x3","type":"listing","collection":"Easter Egg","model":"Pastel","price":"oops","nft_id":"EasterEgg-3"}
	]}`

	events, err := c.RecentActivity(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, events, 1, "offers and unparsable prices are dropped")

	assert.Equal(t, "x1", events[0].ID)
	assert.Equal(t, "Easter Egg", events[0].Collection)
	assert.Equal(t, "Monochrome", events[0].Model)
	assert.True(t, events[0].Price.Equal(decimal.RequireFromString("90.5")))
	assert.Equal(t, "https://t.me/portals/market?startapp=gift_EasterEgg-1", events[0].URL())
}

func TestSessionTokenCachedAcrossCalls(t *testing.T) {
	c, backend := newTestClient(t)
	backend.actionsBody = `{"actions":[]}`

	ctx := context.Background()
	_, err := c.RecentActivity(ctx, 10)
	require.NoError(t, err)
	_, err = c.RecentActivity(ctx, 10)
	require.NoError(t, err)

	assert.Equal(t, int64(1), backend.authCalls.Load(), "token must be cached process-wide")
	assert.Equal(t, int64(2), backend.actionsCalls.Load())
}

func TestExpiredTokenRefreshedOnce(t *testing.T) {
	c, backend := newTestClient(t)
	backend.actionsBody = `{"actions":[]}`
	ctx := context.Background()

	_, err := c.RecentActivity(ctx, 10)
	require.NoError(t, err)

	// Сервер инвалидировал сессию: старый токен дает 401
	backend.validToken.Store("t2")

	_, err = c.RecentActivity(ctx, 10)
	require.NoError(t, err, "client must re-auth and retry after 401")
	assert.Equal(t, int64(2), backend.authCalls.Load())
}

func TestModelFloors(t *testing.T) {
	c, backend := newTestClient(t)
	backend.floorsBody = `{"floors":{"Monochrome":"100","Pastel":"55.5","Broken":"n/a"}}`

	floors, err := c.ModelFloors(context.Background(), "Easter Egg")
	require.NoError(t, err)
	require.Len(t, floors, 2)
	assert.True(t, floors["Monochrome"].Equal(decimal.RequireFromString("100")))
	assert.True(t, floors["Pastel"].Equal(decimal.RequireFromString("55.5")))
}

func TestCollectionFloor(t *testing.T) {
	c, backend := newTestClient(t)
	backend.collBody = `{"floor_price":"42"}`

	floor, err := c.CollectionFloor(context.Background(), "Easter Egg")
	require.NoError(t, err)
	assert.True(t, floor.Equal(decimal.RequireFromString("42")))
}

func TestCollectionFloorMissing(t *testing.T) {
	c, backend := newTestClient(t)
	backend.collBody = `{}`

	_, err := c.CollectionFloor(context.Background(), "Easter Egg")
	assert.Error(t, err)
}
