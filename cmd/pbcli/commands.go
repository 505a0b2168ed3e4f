package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"investecpb/internal/fakeapi"
	"investecpb/internal/middleware"
	"investecpb/internal/snapshot"
	"investecpb/internal/telemetry"
	"investecpb/pkg/investec"
)

func runToken(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("token")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	token, err := e.client.AcquireToken(ctx)
	if err != nil {
		return err
	}
	return e.printJSON(struct {
		TokenType string    `json:"tokenType"`
		Scope     string    `json:"scope"`
		ExpiresAt time.Time `json:"expiresAt"`
	}{token.TokenType, token.Scope, token.ExpiresAt})
}

func runAccounts(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("accounts")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := e.client.GetAccounts(ctx)
	if err != nil {
		return err
	}
	return e.printJSON(resp.Data.Accounts)
}

func runBalance(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("balance")
	accountID := fs.String("account", "", "Account ID")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if err := e.required(fs, "account"); err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := e.client.GetAccountBalances(ctx, *accountID)
	if err != nil {
		return err
	}
	return e.printJSON(resp.Data)
}

func runTransactions(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("transactions")
	accountID := fs.String("account", "", "Account ID")
	from := fs.String("from", "", "Earliest transaction date (YYYY-MM-DD)")
	to := fs.String("to", "", "Latest transaction date (YYYY-MM-DD)")
	txType := fs.String("type", "", "Transaction type, e.g. CardPurchases")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if err := e.required(fs, "account"); err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := e.client.GetAccountTransactions(ctx, *accountID, investec.TransactionFilter{
		FromDate:        *from,
		ToDate:          *to,
		TransactionType: *txType,
	})
	if err != nil {
		return err
	}
	return e.printJSON(resp.Data.Transactions)
}

func runBeneficiaries(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("beneficiaries")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := e.client.GetBeneficiaries(ctx)
	if err != nil {
		return err
	}
	return e.printJSON(resp.Data)
}

func runTransfer(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("transfer")
	accountID := fs.String("account", "", "Source account ID")
	toAccount := fs.String("to-account", "", "Destination account ID")
	amount := fs.String("amount", "", "Amount in rand, e.g. 10.50")
	myRef := fs.String("my-ref", "", "Reference on your statement")
	theirRef := fs.String("their-ref", "", "Reference on the destination statement")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if err := e.required(fs, "account", "to-account", "amount", "my-ref", "their-ref"); err != nil {
		return err
	}
	formatted, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := e.client.Transfer(ctx, *accountID, investec.TransferInstruction{
		BeneficiaryAccountID: *toAccount,
		Amount:               formatted,
		MyReference:          *myRef,
		TheirReference:       *theirRef,
	})
	if err != nil {
		return err
	}
	return e.printJSON(resp.Data.TransferResponses)
}

func runPay(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("pay")
	accountID := fs.String("account", "", "Source account ID")
	beneficiary := fs.String("beneficiary", "", "Beneficiary ID")
	amount := fs.String("amount", "", "Amount in rand, e.g. 10.50")
	myRef := fs.String("my-ref", "", "Reference on your statement")
	theirRef := fs.String("their-ref", "", "Reference on the beneficiary statement")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if err := e.required(fs, "account", "beneficiary", "amount", "my-ref", "their-ref"); err != nil {
		return err
	}
	formatted, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resp, err := e.client.Pay(ctx, *accountID, investec.PaymentInstruction{
		BeneficiaryID:  *beneficiary,
		Amount:         formatted,
		MyReference:    *myRef,
		TheirReference: *theirRef,
	})
	if err != nil {
		return err
	}
	return e.printJSON(resp.Data.TransferResponses)
}

func runSnapshot(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("snapshot")
	workers := fs.Int("workers", 0, "Concurrent balance lookups (default SNAPSHOT_WORKERS)")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if *workers < 0 {
		return fmt.Errorf("%w: --workers must not be negative", errUsage)
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	n := e.cfg.Snapshot.Workers
	if *workers > 0 {
		n = *workers
	}
	result, err := snapshot.NewService(e.client, n, e.logger).Collect(ctx)
	if err != nil {
		return err
	}
	return e.printJSON(result)
}

func runFakeServer(ctx context.Context, e *env, args []string) error {
	fs := e.flagSet("fake-server")
	addr := fs.String("addr", ":8089", "Listen address")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	cleanup, err := e.setup(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	fake := fakeapi.New(fakeapi.Credentials{
		ClientID:     e.cfg.Investec.ClientID,
		ClientSecret: e.cfg.Investec.ClientSecret,
		APIKey:       e.cfg.Investec.APIKey,
	})

	r := chi.NewRouter()
	r.Use(middleware.Telemetry("fakeapi"))
	r.Use(middleware.Logging(e.logger.With("component", "fakeapi")))
	r.Handle("/metrics", telemetry.MetricsHandler())
	r.Mount("/", fake.Handler())

	srv := &http.Server{
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", *addr, err)
	}
	e.logger.Info("fake API listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("fake API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	e.logger.Info("shutting down fake API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("fake API shutdown: %w", err)
	}
	return nil
}

// plainAmount admits digits with an optional fraction; no sign, exponent or NaN.
var plainAmount = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// parseAmount turns a decimal rand amount into the two-decimal string the API
// expects. Amounts finer than a cent are rejected rather than rounded.
func parseAmount(amount string) (string, error) {
	s := strings.TrimSpace(amount)
	if !plainAmount.MatchString(s) {
		return "", fmt.Errorf("%w: invalid --amount %q", errUsage, amount)
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid --amount %q", errUsage, amount)
	}
	if !value.IsPositive() {
		return "", fmt.Errorf("%w: --amount must be positive, got %q", errUsage, amount)
	}
	if value.Exponent() < -2 {
		return "", fmt.Errorf("%w: --amount has more than two decimal places, got %q", errUsage, amount)
	}
	return value.StringFixed(2), nil
}
