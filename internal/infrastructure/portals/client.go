package portals

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"portals-watcher/internal/domain"
)

const requestTimeout = 15 * time.Second

// Client - адаптер к Portals market API, реализует domain.MarketFeed.
type Client struct {
	http    *resty.Client
	apiID   string
	apiHash string
	logger  *slog.Logger

	mu    sync.Mutex
	token string
}

func NewClient(baseURL, apiID, apiHash string, logger *slog.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:    httpClient,
		apiID:   apiID,
		apiHash: apiHash,
		logger:  logger,
	}
}

// RecentActivity возвращает страницу последних листингов, не больше limit.
func (c *Client) RecentActivity(ctx context.Context, limit int) ([]domain.MarketEvent, error) {
	var page activityResponse
	err := c.authorized(ctx, func(token string) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParam("limit", strconv.Itoa(limit)).
			SetQueryParam("action_types", "listing").
			SetResult(&page).
			Get("/market/actions")
	})
	if err != nil {
		return nil, fmt.Errorf("recent activity: %w", err)
	}

	events := make([]domain.MarketEvent, 0, len(page.Actions))
	for _, a := range page.Actions {
		if a.Type != "" && a.Type != "listing" {
			continue
		}
		price, err := decimal.NewFromString(a.Price)
		if err != nil {
			c.logger.Warn("skipping event with bad price",
				slog.String("event_id", a.ID),
				slog.String("price", a.Price))
			continue
		}
		events = append(events, domain.MarketEvent{
			ID:         a.ID,
			Collection: a.Collection,
			Model:      a.Model,
			Price:      price,
			Ref:        a.NftID,
		})
	}
	return events, nil
}

// ModelFloors возвращает флоры по моделям внутри коллекции.
func (c *Client) ModelFloors(ctx context.Context, collection string) (map[string]decimal.Decimal, error) {
	var raw modelFloorsResponse
	err := c.authorized(ctx, func(token string) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetResult(&raw).
			Get("/collections/" + url.PathEscape(collection) + "/floors")
	})
	if err != nil {
		return nil, fmt.Errorf("model floors for %q: %w", collection, err)
	}

	floors := make(map[string]decimal.Decimal, len(raw.Floors))
	for model, s := range raw.Floors {
		price, err := decimal.NewFromString(s)
		if err != nil {
			continue
		}
		floors[model] = price
	}
	return floors, nil
}

// CollectionFloor возвращает общий флор коллекции.
func (c *Client) CollectionFloor(ctx context.Context, collection string) (decimal.Decimal, error) {
	var raw collectionResponse
	err := c.authorized(ctx, func(token string) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetResult(&raw).
			Get("/collections/" + url.PathEscape(collection))
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("collection floor for %q: %w", collection, err)
	}

	price, err := decimal.NewFromString(raw.FloorPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("collection %q has no floor price", collection)
	}
	return price, nil
}

// authorized выполняет запрос с токеном сессии. На 401 токен
// сбрасывается, переавторизация и повтор - ровно один раз.
func (c *Client) authorized(ctx context.Context, do func(token string) (*resty.Response, error)) error {
	token, err := c.sessionToken(ctx)
	if err != nil {
		return err
	}

	resp, err := do(token)
	if err != nil {
		return err
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		c.logger.Debug("session token expired, refreshing")
		c.dropToken()

		token, err = c.sessionToken(ctx)
		if err != nil {
			return err
		}
		resp, err = do(token)
		if err != nil {
			return err
		}
	}

	if resp.IsError() {
		return fmt.Errorf("portals api: status %d", resp.StatusCode())
	}
	return nil
}
