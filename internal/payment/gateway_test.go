package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGateway(GatewayConfig{BaseURL: srv.URL, SecretKey: "sk_test"})
}

func TestGateway_InitializeCheckout(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ref-1", body["reference"])
		assert.EqualValues(t, 105000, body["amount"])

		_, _ = w.Write([]byte(`{"status":true,"data":{"authorization_url":"https://pay.test/ref-1"}}`))
	})

	url, err := gw.InitializeCheckout(context.Background(), CheckoutRequest{
		Reference: "ref-1",
		Email:     "buyer@example.com",
		Amount:    105000,
		Currency:  "NGN",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.test/ref-1", url)
}

func TestGateway_InitializeCheckout_Rejected(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":false,"message":"invalid amount"}`))
	})

	_, err := gw.InitializeCheckout(context.Background(), CheckoutRequest{Reference: "ref-2", Amount: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestGateway_VerifyTransaction(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"success","amount":105000}}`))
	})

	paid, amount, err := gw.VerifyTransaction(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.True(t, paid)
	assert.EqualValues(t, 105000, amount)
}

func TestGateway_VerifyTransaction_Abandoned(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"abandoned","amount":0}}`))
	})

	paid, _, err := gw.VerifyTransaction(context.Background(), "ref-9")
	require.NoError(t, err)
	assert.False(t, paid)
}

func TestGateway_VerifyTransaction_UnknownReference(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	})

	_, _, err := gw.VerifyTransaction(context.Background(), "ref-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGateway_Transfer(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transfer", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true}`))
	})

	err := gw.Transfer(context.Background(), TransferRequest{
		Reference:     "wd-1",
		Amount:        95000,
		BankCode:      "058",
		AccountNumber: "0123456789",
	})
	assert.NoError(t, err)
}

func TestGateway_ServerError(t *testing.T) {
	gw := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := gw.Transfer(context.Background(), TransferRequest{Reference: "wd-2"})
	assert.Error(t, err)
}
