// Package snapshot collects every account on a profile together with its balance
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"investecpb/pkg/investec"
)

// AccountSnapshot pairs an account with its balance. Balance is nil when the
// lookup failed, in which case Error holds the reason.
type AccountSnapshot struct {
	Account investec.Account         `json:"account"`
	Balance *investec.AccountBalance `json:"balance,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// Result contains the results of a snapshot
type Result struct {
	TakenAt       time.Time          `json:"takenAt"`
	AccountsFound int                `json:"accountsFound"`
	Accounts      []AccountSnapshot  `json:"accounts"`
	Totals        map[string]float64 `json:"totals"` // available balance per currency
	Errors        []string           `json:"errors"`
}

// Service fans balance lookups out over a bounded number of workers
type Service struct {
	client  investec.API
	workers int
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(client investec.API, workers int, logger *slog.Logger) *Service {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		client:  client,
		workers: workers,
		logger:  logger.With("component", "snapshot"),
		now:     time.Now,
	}
}

// Collect lists accounts and fetches every balance. A failed balance lookup is
// recorded against its account and the rest continue, except for
// authentication failures and cancellation, which abort the whole snapshot.
func (s *Service) Collect(ctx context.Context) (*Result, error) {
	accountsResp, err := s.client.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	accounts := accountsResp.Data.Accounts

	result := &Result{
		TakenAt:       s.now(),
		AccountsFound: len(accounts),
		Accounts:      make([]AccountSnapshot, len(accounts)),
		Totals:        map[string]float64{},
		Errors:        []string{},
	}

	s.logger.InfoContext(ctx, "collecting balances", "accounts", len(accounts), "workers", s.workers)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)
	for i, account := range accounts {
		result.Accounts[i].Account = account
		eg.Go(func() error {
			balanceResp, err := s.client.GetAccountBalances(egCtx, account.AccountID)
			if err != nil {
				if fatal(err) {
					return err
				}
				s.logger.WarnContext(egCtx, "balance lookup failed", "account_id", account.AccountID, "error", err)
				result.Accounts[i].Error = err.Error()
				return nil
			}
			balance := balanceResp.Data
			result.Accounts[i].Balance = &balance
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("snapshot aborted: %w", err)
	}

	for _, snap := range result.Accounts {
		if snap.Error != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to fetch balance for account %s: %s", snap.Account.AccountID, snap.Error))
			continue
		}
		result.Totals[snap.Balance.Currency] += snap.Balance.AvailableBalance
	}

	s.logger.InfoContext(ctx, "snapshot complete", "accounts", result.AccountsFound, "errors", len(result.Errors))
	return result, nil
}

func fatal(err error) bool {
	var authErr *investec.AuthenticationError
	return errors.As(err, &authErr) || errors.Is(err, context.Canceled)
}
