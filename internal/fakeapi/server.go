// Package fakeapi serves an in-memory imitation of the Investec Programmable
// Banking API. It backs the client tests and the `pbcli fake-server` command.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"investecpb/pkg/investec"
)

const DefaultExpiresIn = 1799

// Credentials are the client credentials the fake accepts
type Credentials struct {
	ClientID     string
	ClientSecret string
	APIKey       string
}

// Request is a request as received by the fake
type Request struct {
	Method   string
	Path     string // unescaped
	RawPath  string // as sent on the wire
	RawQuery string
	Header   http.Header
	Body     []byte
}

type fault struct {
	status int
	body   string
}

// Server is the fake API state. The zero value is not usable; call New.
type Server struct {
	creds     Credentials
	expiresIn int

	mu            sync.Mutex
	tokens        map[string]bool
	accounts      []investec.Account
	balances      map[string]investec.AccountBalance
	transactions  map[string][]investec.AccountTransaction
	beneficiaries []investec.Beneficiary
	requests      []Request
	faults        map[string]fault
	delay         time.Duration
}

// New creates a fake seeded with the default fixtures
func New(creds Credentials) *Server {
	s := &Server{
		creds:     creds,
		expiresIn: DefaultExpiresIn,
		tokens:    make(map[string]bool),
		faults:    make(map[string]fault),
	}
	s.seed()
	return s
}

// Handler returns the router serving the API routes
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.injectFaults)

	r.Post("/identity/v2/oauth2/token", s.handleToken)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)

		r.Get("/za/pb/v1/accounts", s.handleAccounts)
		r.Get("/za/pb/v1/accounts/beneficiaries", s.handleBeneficiaries)
		r.Get("/za/pb/v1/accounts/{accountID}/balance", s.handleBalance)
		r.Get("/za/pb/v1/accounts/{accountID}/transactions", s.handleTransactions)
		r.Post("/za/pb/v1/accounts/{accountID}/transfermultiple", s.handleTransferMultiple)
		r.Post("/za/pb/v1/accounts/{accountID}/paymultiple", s.handlePayMultiple)
	})

	return r
}

// SetExpiresIn changes the lifetime, in seconds, of tokens issued from now on
func (s *Server) SetExpiresIn(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiresIn = seconds
}

// Respond makes every request to path answer with status and body until Clear
// is called. Path is the unescaped request path.
func (s *Server) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[path] = fault{status: status, body: body}
}

// Delay holds every response back by d, or until the client gives up
func (s *Server) Delay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Clear removes injected faults and delays
func (s *Server) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]fault)
	s.delay = 0
}

// Requests returns a copy of every request received so far
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the received requests for path
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, req := range s.Requests() {
		if req.Path == path {
			out = append(out, req)
		}
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawPath:  r.URL.EscapedPath(),
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, overridden := s.faults[r.URL.Path]
		delay := s.delay
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if overridden {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")

		s.mu.Lock()
		known := ok && s.tokens[token]
		s.mu.Unlock()

		if !known {
			writeError(w, http.StatusUnauthorized, "invalid or missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
