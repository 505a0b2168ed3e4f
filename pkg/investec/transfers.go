package investec

import (
	"context"
	"net/http"
)

// TransferMultiple moves money from accountID to other accounts on the profile
func (c *Client) TransferMultiple(ctx context.Context, accountID string, transfers []TransferInstruction) (*TransferResponse, error) {
	const op = "TransferMultiple"
	if !validAccountID(accountID) || len(transfers) == 0 {
		return nil, validationError(op)
	}

	var resp TransferResponse
	payload := transferRequest{TransferList: transfers}
	if err := c.do(ctx, op, http.MethodPost, accountPath(accountID, "/transfermultiple"), nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transfer sends a single transfer as a one-element transfer list
func (c *Client) Transfer(ctx context.Context, accountID string, transfer TransferInstruction) (*TransferResponse, error) {
	return c.TransferMultiple(ctx, accountID, []TransferInstruction{transfer})
}

// PayMultiple pays registered beneficiaries from accountID
func (c *Client) PayMultiple(ctx context.Context, accountID string, payments []PaymentInstruction) (*TransferResponse, error) {
	const op = "PayMultiple"
	if !validAccountID(accountID) || len(payments) == 0 {
		return nil, validationError(op)
	}

	var resp TransferResponse
	payload := paymentRequest{PaymentList: payments}
	if err := c.do(ctx, op, http.MethodPost, accountPath(accountID, "/paymultiple"), nil, payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Pay sends a single payment as a one-element payment list
func (c *Client) Pay(ctx context.Context, accountID string, payment PaymentInstruction) (*TransferResponse, error) {
	return c.PayMultiple(ctx, accountID, []PaymentInstruction{payment})
}
