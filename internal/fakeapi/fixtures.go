package fakeapi

import (
	"investecpb/pkg/investec"
)

// Fixture IDs, exported so tests can address seeded records
const (
	ChequeAccountID  = "3353431574710166878182963"
	SavingsAccountID = "3353431574710166878182964"
	BeneficiaryID    = "MTAxOTEwMDYyNzEzNzg3NjEwMTg"
	ProfileID        = "10163913764231"
)

func (s *Server) seed() {
	s.accounts = []investec.Account{
		{
			AccountID:     ChequeAccountID,
			AccountNumber: "10010206147",
			AccountName:   "Mr John Doe",
			ReferenceName: "My Private Bank Account",
			ProductName:   "Private Bank Account",
			KYCCompliant:  true,
			ProfileID:     ProfileID,
			ProfileName:   "John Doe",
		},
		{
			AccountID:     SavingsAccountID,
			AccountNumber: "10010206155",
			AccountName:   "Mr John Doe",
			ReferenceName: "Savings",
			ProductName:   "PrimeSaver",
			KYCCompliant:  true,
			ProfileID:     ProfileID,
			ProfileName:   "John Doe",
		},
	}

	s.balances = map[string]investec.AccountBalance{
		ChequeAccountID: {
			AccountID:        ChequeAccountID,
			CurrentBalance:   28857.76,
			AvailableBalance: 98857.76,
			BudgetBalance:    0,
			StraightBalance:  0,
			CashBalance:      28857.76,
			Currency:         "ZAR",
		},
		SavingsAccountID: {
			AccountID:        SavingsAccountID,
			CurrentBalance:   105000,
			AvailableBalance: 105000,
			Currency:         "ZAR",
		},
	}

	card := "402167xxxxxx9999"
	s.transactions = map[string][]investec.AccountTransaction{
		ChequeAccountID: {
			{
				AccountID:       ChequeAccountID,
				Type:            "DEBIT",
				TransactionType: "CardPurchases",
				Status:          "POSTED",
				Description:     "WOOLWORTHS CAPE TOWN",
				CardNumber:      &card,
				PostedOrder:     1,
				PostingDate:     "2024-01-02",
				ValueDate:       "2024-01-02",
				ActionDate:      "2024-01-02",
				TransactionDate: "2024-01-01",
				Amount:          412.5,
				RunningBalance:  28445.26,
				UUID:            "3353431574710166878182963-1",
			},
			{
				AccountID:       ChequeAccountID,
				Type:            "CREDIT",
				TransactionType: "Deposits",
				Status:          "POSTED",
				Description:     "SALARY",
				PostedOrder:     2,
				PostingDate:     "2024-01-25",
				ValueDate:       "2024-01-25",
				ActionDate:      "2024-01-25",
				TransactionDate: "2024-01-25",
				Amount:          45000,
				RunningBalance:  73445.26,
				UUID:            "3353431574710166878182963-2",
			},
			{
				AccountID:       ChequeAccountID,
				Type:            "DEBIT",
				TransactionType: "DebitOrders",
				Status:          "PENDING",
				Description:     "MEDICAL AID",
				PostedOrder:     0,
				PostingDate:     "",
				ValueDate:       "2024-02-01",
				ActionDate:      "2024-02-01",
				TransactionDate: "2024-02-01",
				Amount:          3650,
				RunningBalance:  0,
				UUID:            "3353431574710166878182963-3",
			},
		},
		SavingsAccountID: {},
	}

	s.beneficiaries = []investec.Beneficiary{
		{
			BeneficiaryID:          BeneficiaryID,
			AccountNumber:          "10012420003",
			Code:                   "580105",
			Bank:                   "INVESTEC BANK LIMITED",
			BeneficiaryName:        "Jane Doe",
			LastPaymentAmount:      "250.00",
			LastPaymentDate:        "2023-11-21",
			CellNo:                 "",
			EmailAddress:           "",
			Name:                   "Jane Doe",
			ReferenceAccountNumber: "rent",
			ReferenceName:          "Jane Doe",
			CategoryID:             "10163913764232",
			ProfileID:              ProfileID,
			FasterPaymentAllowed:   true,
		},
	}
}
