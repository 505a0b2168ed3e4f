package investec

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AuthResponse represents the identity endpoint's token response
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // seconds
	Scope       string `json:"scope"`
}

// Token is a bearer token with an absolute expiry
type Token struct {
	AccessToken string
	TokenType   string
	Scope       string
	ExpiresAt   time.Time
}

// Valid reports whether the token can still be used at now
func (t *Token) Valid(now time.Time) bool {
	return t != nil && t.AccessToken != "" && now.Before(t.ExpiresAt)
}

// AccountsResponse represents the API response for the account list
type AccountsResponse struct {
	Data struct {
		Accounts []Account `json:"accounts"`
	} `json:"data"`
}

// Account represents a single Investec account
type Account struct {
	AccountID     string `json:"accountId"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	ReferenceName string `json:"referenceName"`
	ProductName   string `json:"productName"`
	KYCCompliant  bool   `json:"kycCompliant"`
	ProfileID     string `json:"profileId"`
	ProfileName   string `json:"profileName"`
}

// AccountBalanceResponse represents the API response for one account's balance
type AccountBalanceResponse struct {
	Data AccountBalance `json:"data"`
}

// AccountBalance holds the balance figures of an account
type AccountBalance struct {
	AccountID        string  `json:"accountId"`
	CurrentBalance   float64 `json:"currentBalance"`
	AvailableBalance float64 `json:"availableBalance"`
	BudgetBalance    float64 `json:"budgetBalance"`
	StraightBalance  float64 `json:"straightBalance"`
	CashBalance      float64 `json:"cashBalance"`
	Currency         string  `json:"currency"`
}

// TransactionsResponse represents the API response for an account's transactions
type TransactionsResponse struct {
	Data struct {
		Transactions []AccountTransaction `json:"transactions"`
	} `json:"data"`
}

// AccountTransaction represents a single transaction on an account
type AccountTransaction struct {
	AccountID       string  `json:"accountId"`
	Type            string  `json:"type"` // "DEBIT" or "CREDIT"
	TransactionType string  `json:"transactionType"`
	Status          string  `json:"status"` // "POSTED" or "PENDING"
	Description     string  `json:"description"`
	CardNumber      *string `json:"cardNumber"`
	PostedOrder     int     `json:"postedOrder"`
	PostingDate     string  `json:"postingDate"`
	ValueDate       string  `json:"valueDate"`
	ActionDate      string  `json:"actionDate"`
	TransactionDate string  `json:"transactionDate"`
	Amount          float64 `json:"amount"`
	RunningBalance  float64 `json:"runningBalance"`
	UUID            string  `json:"uuid"`
}

// GetTransactionDate parses the transaction date ("2006-01-02"). It returns nil, nil when the date is empty.
func (t *AccountTransaction) GetTransactionDate() (*time.Time, error) {
	if t.TransactionDate == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.DateOnly, t.TransactionDate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transactionDate '%s': %w", t.TransactionDate, err)
	}
	return &parsed, nil
}

// TransactionFilter narrows GetAccountTransactions. Empty fields are not sent.
type TransactionFilter struct {
	FromDate        string // YYYY-MM-DD
	ToDate          string // YYYY-MM-DD
	TransactionType string
}

func (f TransactionFilter) empty() bool {
	return f.FromDate == "" && f.ToDate == "" && f.TransactionType == ""
}

// BeneficiariesResponse represents the API response for the beneficiary list
type BeneficiariesResponse struct {
	Data  []Beneficiary `json:"data"`
	Links struct {
		Self string `json:"self"`
	} `json:"links"`
	Meta struct {
		TotalPages int `json:"totalPages"`
	} `json:"meta"`
}

// Beneficiary represents a registered payment recipient
type Beneficiary struct {
	BeneficiaryID          string `json:"beneficiaryId"`
	AccountNumber          string `json:"accountNumber"`
	Code                   string `json:"code"` // bank branch code
	Bank                   string `json:"bank"`
	BeneficiaryName        string `json:"beneficiaryName"`
	LastPaymentAmount      string `json:"lastPaymentAmount"` // API returns amount as string
	LastPaymentDate        string `json:"lastPaymentDate"`
	CellNo                 string `json:"cellNo"`
	EmailAddress           string `json:"emailAddress"`
	Name                   string `json:"name"`
	ReferenceAccountNumber string `json:"referenceAccountNumber"`
	ReferenceName          string `json:"referenceName"`
	CategoryID             string `json:"categoryId"`
	ProfileID              string `json:"profileId"`
	FasterPaymentAllowed   bool   `json:"fasterPaymentAllowed"`
}

// GetLastPaymentAmount returns the last payment amount, or zero when none is recorded
func (b *Beneficiary) GetLastPaymentAmount() (decimal.Decimal, error) {
	if b.LastPaymentAmount == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(b.LastPaymentAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse lastPaymentAmount '%s': %w", b.LastPaymentAmount, err)
	}
	return amount, nil
}

// TransferInstruction moves money to another account on the same profile
type TransferInstruction struct {
	BeneficiaryAccountID string `json:"beneficiaryAccountId"`
	Amount               string `json:"amount"`
	MyReference          string `json:"myReference"`
	TheirReference       string `json:"theirReference"`
}

// PaymentInstruction pays a registered beneficiary
type PaymentInstruction struct {
	BeneficiaryID  string `json:"beneficiaryId"`
	Amount         string `json:"amount"`
	MyReference    string `json:"myReference"`
	TheirReference string `json:"theirReference"`
}

type transferRequest struct {
	TransferList []TransferInstruction `json:"transferList"`
}

type paymentRequest struct {
	PaymentList []PaymentInstruction `json:"paymentList"`
}

// TransferResponse represents the API response for transfers and payments
type TransferResponse struct {
	Data struct {
		TransferResponses []TransferResult `json:"TransferResponses"`
	} `json:"data"`
}

// TransferResult is the outcome of one transfer or payment instruction
type TransferResult struct {
	PaymentReferenceNumber string `json:"PaymentReferenceNumber"`
	PaymentDate            string `json:"PaymentDate"`
	Status                 string `json:"Status"`
	BeneficiaryName        string `json:"BeneficiaryName"`
	BeneficiaryAccountID   string `json:"BeneficiaryAccountId"`
	AuthorisationRequired  bool   `json:"AuthorisationRequired"`
}

// FormatAmount renders an amount in cents as the decimal string the API expects
func FormatAmount(cents int64) string {
	sign := ""
	abs := uint64(cents)
	if cents < 0 {
		sign = "-"
		abs = uint64(-(cents + 1)) + 1 // safe for math.MinInt64
	}
	return fmt.Sprintf("%s%d.%02d", sign, abs/100, abs%100)
}
