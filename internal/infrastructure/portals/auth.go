package portals

import (
	"context"
	"fmt"
)

// sessionToken возвращает закэшированный токен сессии, при
// необходимости запрашивая новый. Токен общий на весь процесс.
func (c *Client) sessionToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}

	var auth authResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(authRequest{APIID: c.apiID, APIHash: c.apiHash}).
		SetResult(&auth).
		Post("/auth/session")
	if err != nil {
		return "", fmt.Errorf("auth request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("auth rejected: status %d", resp.StatusCode())
	}
	if auth.Token == "" {
		return "", fmt.Errorf("auth response without token")
	}

	c.token = auth.Token
	return c.token, nil
}

// dropToken сбрасывает кэш после 401, следующий вызов переавторизуется.
func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}
