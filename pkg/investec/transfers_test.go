package investec_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"investecpb/internal/fakeapi"
	"investecpb/pkg/investec"
)

var transferPath = accountsPath + "/" + fakeapi.ChequeAccountID + "/transfermultiple"
var paymentPath = accountsPath + "/" + fakeapi.ChequeAccountID + "/paymultiple"

func decodeBody(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestTransfer_SingleInstructionSentAsList(t *testing.T) {
	client, fake := newTestClient(t)
	transfer := investec.TransferInstruction{
		BeneficiaryAccountID: fakeapi.SavingsAccountID,
		Amount:               investec.FormatAmount(1050),
		MyReference:          "to savings",
		TheirReference:       "from cheque",
	}

	resp, err := client.Transfer(context.Background(), fakeapi.ChequeAccountID, transfer)
	require.NoError(t, err)

	require.Len(t, resp.Data.TransferResponses, 1)
	result := resp.Data.TransferResponses[0]
	assert.NotEmpty(t, result.PaymentReferenceNumber)
	assert.Equal(t, fakeapi.SavingsAccountID, result.BeneficiaryAccountID)
	assert.Equal(t, "Mr John Doe", result.BeneficiaryName)

	reqs := fake.RequestsTo(transferPath)
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))

	want := map[string]any{
		"transferList": []any{
			map[string]any{
				"beneficiaryAccountId": fakeapi.SavingsAccountID,
				"amount":               "10.50",
				"myReference":          "to savings",
				"theirReference":       "from cheque",
			},
		},
	}
	if diff := cmp.Diff(want, decodeBody(t, reqs[0].Body)); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestTransferMultiple_ListSentAsIs(t *testing.T) {
	client, fake := newTestClient(t)
	transfers := []investec.TransferInstruction{
		{BeneficiaryAccountID: fakeapi.SavingsAccountID, Amount: "1.00", MyReference: "one", TheirReference: "one"},
		{BeneficiaryAccountID: fakeapi.SavingsAccountID, Amount: "2.00", MyReference: "two", TheirReference: "two"},
	}

	resp, err := client.TransferMultiple(context.Background(), fakeapi.ChequeAccountID, transfers)
	require.NoError(t, err)
	assert.Len(t, resp.Data.TransferResponses, 2)

	reqs := fake.RequestsTo(transferPath)
	require.Len(t, reqs, 1)

	var got struct {
		TransferList []investec.TransferInstruction `json:"transferList"`
	}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &got))
	if diff := cmp.Diff(transfers, got.TransferList); diff != "" {
		t.Errorf("transferList mismatch (-want +got):\n%s", diff)
	}
}

func TestTransferMultiple_UnknownAccount(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Transfer(context.Background(), "missing", investec.TransferInstruction{Amount: "1.00"})

	assert.ErrorIs(t, err, investec.ErrNotFound)
}

func TestPay_SingleInstructionSentAsList(t *testing.T) {
	client, fake := newTestClient(t)
	payment := investec.PaymentInstruction{
		BeneficiaryID:  fakeapi.BeneficiaryID,
		Amount:         "250.00",
		MyReference:    "rent",
		TheirReference: "rent march",
	}

	resp, err := client.Pay(context.Background(), fakeapi.ChequeAccountID, payment)
	require.NoError(t, err)

	require.Len(t, resp.Data.TransferResponses, 1)
	assert.Equal(t, "Jane Doe", resp.Data.TransferResponses[0].BeneficiaryName)
	assert.False(t, resp.Data.TransferResponses[0].AuthorisationRequired)

	reqs := fake.RequestsTo(paymentPath)
	require.Len(t, reqs, 1)
	want := map[string]any{
		"paymentList": []any{
			map[string]any{
				"beneficiaryId":  fakeapi.BeneficiaryID,
				"amount":         "250.00",
				"myReference":    "rent",
				"theirReference": "rent march",
			},
		},
	}
	if diff := cmp.Diff(want, decodeBody(t, reqs[0].Body)); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}
}

func TestPayMultiple_RejectedByAPI(t *testing.T) {
	client, _ := newTestClient(t)
	payments := []investec.PaymentInstruction{
		{BeneficiaryID: fakeapi.BeneficiaryID, Amount: "1.00"},
		{BeneficiaryID: "unknown", Amount: "1.00"},
	}

	_, err := client.PayMultiple(context.Background(), fakeapi.ChequeAccountID, payments)

	var httpErr *investec.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Bad Request", httpErr.Status)
}

func TestTransferResponse_DecodesCapitalisedFields(t *testing.T) {
	client, fake := newTestClient(t)
	fake.Respond(transferPath, http.StatusOK, `{"data":{"TransferResponses":[{
		"PaymentReferenceNumber":"ref-1",
		"PaymentDate":"03/01/2024",
		"Status":"Pending",
		"BeneficiaryName":"Savings",
		"BeneficiaryAccountId":"42",
		"AuthorisationRequired":true}]}}`)

	resp, err := client.Transfer(context.Background(), fakeapi.ChequeAccountID, investec.TransferInstruction{Amount: "1.00"})
	require.NoError(t, err)

	want := []investec.TransferResult{{
		PaymentReferenceNumber: "ref-1",
		PaymentDate:            "03/01/2024",
		Status:                 "Pending",
		BeneficiaryName:        "Savings",
		BeneficiaryAccountID:   "42",
		AuthorisationRequired:  true,
	}}
	assert.Equal(t, want, resp.Data.TransferResponses)
}
