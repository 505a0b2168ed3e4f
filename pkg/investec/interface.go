package investec

import (
	"context"
)

// API defines the operations offered by the Investec Programmable Banking client
type API interface {
	GetToken(ctx context.Context) (string, error)
	AcquireToken(ctx context.Context) (*Token, error)
	GetAccounts(ctx context.Context) (*AccountsResponse, error)
	GetAccountBalances(ctx context.Context, accountID string) (*AccountBalanceResponse, error)
	GetAccountTransactions(ctx context.Context, accountID string, filter TransactionFilter) (*TransactionsResponse, error)
	GetBeneficiaries(ctx context.Context) (*BeneficiariesResponse, error)
	TransferMultiple(ctx context.Context, accountID string, transfers []TransferInstruction) (*TransferResponse, error)
	Transfer(ctx context.Context, accountID string, transfer TransferInstruction) (*TransferResponse, error)
	PayMultiple(ctx context.Context, accountID string, payments []PaymentInstruction) (*TransferResponse, error)
	Pay(ctx context.Context, accountID string, payment PaymentInstruction) (*TransferResponse, error)
}
