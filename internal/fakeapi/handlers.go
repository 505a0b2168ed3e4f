package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"investecpb/pkg/investec"
)

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	clientID, clientSecret, ok := r.BasicAuth()
	if !ok || clientID != s.creds.ClientID || clientSecret != s.creds.ClientSecret {
		writeError(w, http.StatusUnauthorized, "invalid client credentials")
		return
	}
	if r.Header.Get("x-api-key") != s.creds.APIKey {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}
	if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
		writeError(w, http.StatusBadRequest, "unsupported grant_type")
		return
	}

	token := uuid.NewString()

	s.mu.Lock()
	s.tokens[token] = true
	expiresIn := s.expiresIn
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, investec.AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
		Scope:       "accounts",
	})
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	var resp investec.AccountsResponse

	s.mu.Lock()
	resp.Data.Accounts = append([]investec.Account{}, s.accounts...)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountParam(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	balance, found := s.balances[accountID]
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, investec.AccountBalanceResponse{Data: balance})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountParam(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	from, to, txType := query.Get("fromDate"), query.Get("toDate"), query.Get("transactionType")

	s.mu.Lock()
	all, found := s.transactions[accountID]
	s.mu.Unlock()

	if !found {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}

	var resp investec.TransactionsResponse
	resp.Data.Transactions = []investec.AccountTransaction{}
	for _, tx := range all {
		// dates are YYYY-MM-DD, so string order is date order
		if from != "" && tx.TransactionDate < from {
			continue
		}
		if to != "" && tx.TransactionDate > to {
			continue
		}
		if txType != "" && tx.TransactionType != txType {
			continue
		}
		resp.Data.Transactions = append(resp.Data.Transactions, tx)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBeneficiaries(w http.ResponseWriter, r *http.Request) {
	var resp investec.BeneficiariesResponse

	s.mu.Lock()
	resp.Data = append([]investec.Beneficiary{}, s.beneficiaries...)
	s.mu.Unlock()

	resp.Links.Self = r.URL.String()
	resp.Meta.TotalPages = 1
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransferMultiple(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountParam(w, r)
	if !ok || !s.hasAccount(w, accountID) {
		return
	}

	var req struct {
		TransferList []investec.TransferInstruction `json:"transferList"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.TransferList) == 0 {
		writeError(w, http.StatusBadRequest, "transferList is required")
		return
	}

	var resp investec.TransferResponse
	for _, transfer := range req.TransferList {
		name := ""
		if account, found := s.findAccount(transfer.BeneficiaryAccountID); found {
			name = account.AccountName
		}
		resp.Data.TransferResponses = append(resp.Data.TransferResponses, transferResult(transfer.BeneficiaryAccountID, name))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePayMultiple(w http.ResponseWriter, r *http.Request) {
	accountID, ok := accountParam(w, r)
	if !ok || !s.hasAccount(w, accountID) {
		return
	}

	var req struct {
		PaymentList []investec.PaymentInstruction `json:"paymentList"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.PaymentList) == 0 {
		writeError(w, http.StatusBadRequest, "paymentList is required")
		return
	}

	var resp investec.TransferResponse
	for _, payment := range req.PaymentList {
		beneficiary, found := s.findBeneficiary(payment.BeneficiaryID)
		if !found {
			writeError(w, http.StatusBadRequest, "unknown beneficiary "+payment.BeneficiaryID)
			return
		}
		resp.Data.TransferResponses = append(resp.Data.TransferResponses, transferResult(beneficiary.AccountNumber, beneficiary.BeneficiaryName))
	}
	writeJSON(w, http.StatusOK, resp)
}

func transferResult(beneficiaryAccountID, beneficiaryName string) investec.TransferResult {
	return investec.TransferResult{
		PaymentReferenceNumber: uuid.NewString(),
		PaymentDate:            time.Now().Format("01/02/2006"),
		Status:                 "- No authorisation necessary <br> - Payment/Transfer effective date " + time.Now().Format("2006/01/02"),
		BeneficiaryName:        beneficiaryName,
		BeneficiaryAccountID:   beneficiaryAccountID,
		AuthorisationRequired:  false,
	}
}

// accountParam returns the unescaped account ID. chi matches on the raw path
// when the client escaped reserved characters, so the param may still be escaped.
func accountParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	accountID, err := url.PathUnescape(chi.URLParam(r, "accountID"))
	if err != nil || accountID == "" {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return "", false
	}
	return accountID, true
}

func (s *Server) hasAccount(w http.ResponseWriter, accountID string) bool {
	if _, found := s.findAccount(accountID); !found {
		writeError(w, http.StatusNotFound, "account not found")
		return false
	}
	return true
}

func (s *Server) findAccount(accountID string) (investec.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.AccountID == accountID {
			return account, true
		}
	}
	return investec.Account{}, false
}

func (s *Server) findBeneficiary(beneficiaryID string) (investec.Beneficiary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, beneficiary := range s.beneficiaries {
		if beneficiary.BeneficiaryID == beneficiaryID {
			return beneficiary, true
		}
	}
	return investec.Beneficiary{}, false
}
