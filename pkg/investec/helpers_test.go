package investec_test

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"investecpb/internal/fakeapi"
	"investecpb/pkg/investec"
)

var testCreds = fakeapi.Credentials{
	ClientID:     "test-client-id",
	ClientSecret: "test-client-secret",
	APIKey:       "test-api-key",
}

const (
	tokenPath    = "/identity/v2/oauth2/token"
	accountsPath = "/za/pb/v1/accounts"
)

// fakeClock is a settable clock for token expiry tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestClient(t *testing.T, opts ...investec.Option) (*investec.Client, *fakeapi.Server) {
	t.Helper()
	return newTestClientWithCreds(t, testCreds, opts...)
}

func newTestClientWithCreds(t *testing.T, creds fakeapi.Credentials, opts ...investec.Option) (*investec.Client, *fakeapi.Server) {
	t.Helper()

	fake := fakeapi.New(testCreds)
	srv := httptest.NewServer(fake.Handler())
	t.Cleanup(srv.Close)

	opts = append([]investec.Option{
		investec.WithHost(srv.URL),
		investec.WithHTTPClient(srv.Client()),
	}, opts...)

	return investec.NewClient(creds.ClientID, creds.ClientSecret, creds.APIKey, opts...), fake
}
