package investec

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

func (h *tokenHolder) get() *Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.token
}

func (h *tokenHolder) set(token *Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = token
}

// GetToken returns a valid bearer token, acquiring a new one when none is held
// or the held one has expired. Only successful acquisitions are cached.
//
// The holder is not locked across the exchange, so callers racing past an
// expired token may each acquire one; the last to finish is kept.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if token := c.tokenHolder.get(); token.Valid(c.now()) {
		return token.AccessToken, nil
	}

	token, err := c.AcquireToken(ctx)
	if err != nil {
		return "", err
	}
	c.tokenHolder.set(token)

	c.logger.DebugContext(ctx, "acquired access token",
		"component", "investec_client",
		"expires_at", token.ExpiresAt,
		"scope", token.Scope,
	)
	return token.AccessToken, nil
}

// AcquireToken exchanges the client credentials for a new access token.
// It does not touch the cached token.
func (c *Client) AcquireToken(ctx context.Context) (*Token, error) {
	const op = "AcquireToken"

	endpoint, err := c.endpoint(tokenPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build endpoint: %w", op, err)
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	issuedAt := c.now()
	resp, err := c.send(ctx, op, http.MethodPost, endpoint, strings.NewReader(form.Encode()), func(req *http.Request) {
		req.SetBasicAuth(c.clientID, c.clientSecret)
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	})
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var auth AuthResponse
	if err := json.Unmarshal(resp.Body, &auth); err != nil {
		return nil, &ParseError{Op: op, Err: err}
	}

	return &Token{
		AccessToken: auth.AccessToken,
		TokenType:   auth.TokenType,
		Scope:       auth.Scope,
		ExpiresAt:   issuedAt.Add(time.Duration(auth.ExpiresIn) * time.Second),
	}, nil
}
