package investec

import (
	"context"
	"net/http"
	"net/url"
)

// GetAccounts fetches all accounts on the profile
func (c *Client) GetAccounts(ctx context.Context) (*AccountsResponse, error) {
	var resp AccountsResponse
	if err := c.do(ctx, "GetAccounts", http.MethodGet, accountsPath, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccountBalances fetches the balance of one account
func (c *Client) GetAccountBalances(ctx context.Context, accountID string) (*AccountBalanceResponse, error) {
	const op = "GetAccountBalances"
	if !validAccountID(accountID) {
		return nil, validationError(op)
	}

	var resp AccountBalanceResponse
	if err := c.do(ctx, op, http.MethodGet, accountPath(accountID, "/balance"), nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccountTransactions fetches the transactions of one account. Filter values
// are passed through as given; the API expects dates as YYYY-MM-DD.
func (c *Client) GetAccountTransactions(ctx context.Context, accountID string, filter TransactionFilter) (*TransactionsResponse, error) {
	const op = "GetAccountTransactions"
	if !validAccountID(accountID) {
		return nil, validationError(op)
	}

	var query url.Values
	if !filter.empty() {
		query = url.Values{}
		if filter.FromDate != "" {
			query.Set("fromDate", filter.FromDate)
		}
		if filter.ToDate != "" {
			query.Set("toDate", filter.ToDate)
		}
		if filter.TransactionType != "" {
			query.Set("transactionType", filter.TransactionType)
		}
	}

	var resp TransactionsResponse
	if err := c.do(ctx, op, http.MethodGet, accountPath(accountID, "/transactions"), query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetBeneficiaries fetches the beneficiaries registered on the profile
func (c *Client) GetBeneficiaries(ctx context.Context) (*BeneficiariesResponse, error) {
	var resp BeneficiariesResponse
	if err := c.do(ctx, "GetBeneficiaries", http.MethodGet, beneficiariesPath, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
