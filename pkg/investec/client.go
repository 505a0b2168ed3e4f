// Package investec is a client for the Investec Programmable Banking API.
//
// A Client authenticates with the OAuth2 client-credentials grant, caches the
// bearer token until it expires, and exposes one method per API endpoint.
//
//	api := investec.NewClient(clientID, clientSecret, apiKey)
//	accounts, err := api.GetAccounts(ctx)
package investec

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultHost    = "https://openapi.investec.com"
	DefaultTimeout = 30 * time.Second

	tokenPath         = "/identity/v2/oauth2/token"
	accountsPath      = "/za/pb/v1/accounts"
	beneficiariesPath = "/za/pb/v1/accounts/beneficiaries"
)

// Client handles communication with the Investec Programmable Banking API
type Client struct {
	clientID     string
	clientSecret string
	apiKey       string
	host         string

	httpClient *http.Client
	timeout    time.Duration
	now        func() time.Time
	logger     *slog.Logger

	tokenHolder *tokenHolder
}

type tokenHolder struct {
	mu    sync.Mutex
	token *Token
}

// Ensure Client implements API
var _ API = (*Client)(nil)

// Option configures a Client
type Option func(*Client)

// WithHost overrides the API origin, e.g. for the sandbox or a fake server
func WithHost(host string) Option {
	return func(c *Client) {
		c.host = host
	}
}

// WithHTTPClient replaces the default otelhttp-instrumented client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithClock sets the clock used for token expiry
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger sets the logger for request diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Investec API client
func NewClient(clientID, clientSecret, apiKey string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiKey:       apiKey,
		host:         DefaultHost,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		timeout:     DefaultTimeout,
		now:         time.Now,
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokenHolder: &tokenHolder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Host returns the API origin the client talks to
func (c *Client) Host() string {
	return c.host
}

// endpoint resolves an escaped path (and optional query) against the host
func (c *Client) endpoint(path string, query url.Values) (string, error) {
	base, err := url.Parse(c.host)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return base.ResolveReference(ref).String(), nil
}

// validAccountID rejects IDs that are empty or would be collapsed as dot
// segments when the path is resolved against the host.
func validAccountID(accountID string) bool {
	return accountID != "" && accountID != "." && accountID != ".."
}

func accountPath(accountID, suffix string) string {
	return accountsPath + "/" + url.PathEscape(accountID) + suffix
}
