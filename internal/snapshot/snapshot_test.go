package snapshot

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investecpb/pkg/investec"
)

// MockAPI implements investec.API
type MockAPI struct {
	GetAccountsFunc        func(ctx context.Context) (*investec.AccountsResponse, error)
	GetAccountBalancesFunc func(ctx context.Context, accountID string) (*investec.AccountBalanceResponse, error)
}

func (m *MockAPI) GetToken(ctx context.Context) (string, error) {
	return "token", nil
}

func (m *MockAPI) AcquireToken(ctx context.Context) (*investec.Token, error) {
	return &investec.Token{AccessToken: "token"}, nil
}

func (m *MockAPI) GetAccounts(ctx context.Context) (*investec.AccountsResponse, error) {
	if m.GetAccountsFunc != nil {
		return m.GetAccountsFunc(ctx)
	}
	return &investec.AccountsResponse{}, nil
}

func (m *MockAPI) GetAccountBalances(ctx context.Context, accountID string) (*investec.AccountBalanceResponse, error) {
	if m.GetAccountBalancesFunc != nil {
		return m.GetAccountBalancesFunc(ctx, accountID)
	}
	return &investec.AccountBalanceResponse{}, nil
}

func (m *MockAPI) GetAccountTransactions(ctx context.Context, accountID string, filter investec.TransactionFilter) (*investec.TransactionsResponse, error) {
	return nil, nil
}

func (m *MockAPI) GetBeneficiaries(ctx context.Context) (*investec.BeneficiariesResponse, error) {
	return nil, nil
}

func (m *MockAPI) TransferMultiple(ctx context.Context, accountID string, transfers []investec.TransferInstruction) (*investec.TransferResponse, error) {
	return nil, nil
}

func (m *MockAPI) Transfer(ctx context.Context, accountID string, transfer investec.TransferInstruction) (*investec.TransferResponse, error) {
	return nil, nil
}

func (m *MockAPI) PayMultiple(ctx context.Context, accountID string, payments []investec.PaymentInstruction) (*investec.TransferResponse, error) {
	return nil, nil
}

func (m *MockAPI) Pay(ctx context.Context, accountID string, payment investec.PaymentInstruction) (*investec.TransferResponse, error) {
	return nil, nil
}

func accountsOf(ids ...string) *investec.AccountsResponse {
	resp := &investec.AccountsResponse{}
	for _, id := range ids {
		resp.Data.Accounts = append(resp.Data.Accounts, investec.Account{AccountID: id, AccountName: "Account " + id})
	}
	return resp
}

func balanceOf(id string, available float64, currency string) *investec.AccountBalanceResponse {
	resp := &investec.AccountBalanceResponse{}
	resp.Data = investec.AccountBalance{AccountID: id, AvailableBalance: available, Currency: currency}
	return resp
}

func TestCollect_AllBalances(t *testing.T) {
	api := &MockAPI{
		GetAccountsFunc: func(ctx context.Context) (*investec.AccountsResponse, error) {
			return accountsOf("1", "2", "3"), nil
		},
		GetAccountBalancesFunc: func(ctx context.Context, accountID string) (*investec.AccountBalanceResponse, error) {
			switch accountID {
			case "3":
				return balanceOf(accountID, 50, "USD"), nil
			default:
				return balanceOf(accountID, 100, "ZAR"), nil
			}
		},
	}

	result, err := NewService(api, 2, nil).Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.AccountsFound)
	require.Len(t, result.Accounts, 3)
	for i, id := range []string{"1", "2", "3"} {
		assert.Equal(t, id, result.Accounts[i].Account.AccountID, "order follows the account list")
		require.NotNil(t, result.Accounts[i].Balance)
		assert.Equal(t, id, result.Accounts[i].Balance.AccountID)
		assert.Empty(t, result.Accounts[i].Error)
	}
	assert.Equal(t, map[string]float64{"ZAR": 200, "USD": 50}, result.Totals)
	assert.Empty(t, result.Errors)
}

func TestCollect_PerAccountFailure(t *testing.T) {
	api := &MockAPI{
		GetAccountsFunc: func(ctx context.Context) (*investec.AccountsResponse, error) {
			return accountsOf("ok", "missing", "broken"), nil
		},
		GetAccountBalancesFunc: func(ctx context.Context, accountID string) (*investec.AccountBalanceResponse, error) {
			switch accountID {
			case "missing":
				return nil, investec.ErrNotFound
			case "broken":
				return nil, &investec.HTTPError{StatusCode: http.StatusInternalServerError, Status: "Internal Server Error"}
			default:
				return balanceOf(accountID, 10, "ZAR"), nil
			}
		},
	}

	result, err := NewService(api, 4, nil).Collect(context.Background())
	require.NoError(t, err)

	require.NotNil(t, result.Accounts[0].Balance)
	assert.Nil(t, result.Accounts[1].Balance)
	assert.Equal(t, "resource not found", result.Accounts[1].Error)
	assert.Nil(t, result.Accounts[2].Balance)
	assert.Contains(t, result.Accounts[2].Error, "status 500")

	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "missing")
	assert.Contains(t, result.Errors[1], "broken")
	assert.Equal(t, map[string]float64{"ZAR": 10}, result.Totals)
}

func TestCollect_AuthenticationFailureAborts(t *testing.T) {
	api := &MockAPI{
		GetAccountsFunc: func(ctx context.Context) (*investec.AccountsResponse, error) {
			return accountsOf("1", "2"), nil
		},
		GetAccountBalancesFunc: func(ctx context.Context, accountID string) (*investec.AccountBalanceResponse, error) {
			return nil, &investec.AuthenticationError{StatusCode: http.StatusUnauthorized, Status: "Unauthorized"}
		},
	}

	result, err := NewService(api, 1, nil).Collect(context.Background())

	assert.Nil(t, result)
	var authErr *investec.AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestCollect_ListFailure(t *testing.T) {
	api := &MockAPI{
		GetAccountsFunc: func(ctx context.Context) (*investec.AccountsResponse, error) {
			return nil, fmt.Errorf("network down")
		},
	}

	_, err := NewService(api, 1, nil).Collect(context.Background())

	assert.ErrorContains(t, err, "failed to list accounts")
	assert.ErrorContains(t, err, "network down")
}

func TestCollect_NoAccounts(t *testing.T) {
	result, err := NewService(&MockAPI{}, 1, nil).Collect(context.Background())
	require.NoError(t, err)

	assert.Zero(t, result.AccountsFound)
	assert.Empty(t, result.Accounts)
	assert.Empty(t, result.Errors)
}

func TestCollect_RespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	api := &MockAPI{
		GetAccountsFunc: func(ctx context.Context) (*investec.AccountsResponse, error) {
			return accountsOf("1", "2", "3", "4", "5", "6", "7", "8"), nil
		},
		GetAccountBalancesFunc: func(ctx context.Context, accountID string) (*investec.AccountBalanceResponse, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			return balanceOf(accountID, 1, "ZAR"), nil
		},
	}

	result, err := NewService(api, 3, nil).Collect(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Accounts, 8)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}
