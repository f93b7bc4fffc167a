package payproc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateCheckoutSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		require.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var params CheckoutParams
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.Equal(t, "79.99", params.Amount)
		require.Equal(t, "USD", params.Currency)
		require.Equal(t, "purch_1", params.Metadata["purchaseId"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CheckoutSession{ID: "cs_1", URL: "https://pay.example.com/cs_1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test", "whsec")

	session, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{
		Amount:      "79.99",
		Currency:    "USD",
		ProductName: "Intro to Go",
		SuccessURL:  "https://app.example.com/success",
		CancelURL:   "https://app.example.com/cancel",
		Metadata:    map[string]string{"purchaseId": "purch_1"},
	})
	require.NoError(t, err)
	require.Equal(t, "cs_1", session.ID)
	require.Equal(t, "https://pay.example.com/cs_1", session.URL)
}

func TestCreateCheckoutSessionGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test", "whsec")

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{Amount: "10.00"})
	require.ErrorIs(t, err, ErrGateway)
}

func TestCreateCheckoutSessionMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(CheckoutSession{ID: "cs_1"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk_test", "whsec")

	_, err := client.CreateCheckoutSession(context.Background(), CheckoutParams{Amount: "10.00"})
	require.ErrorIs(t, err, ErrGateway)
}
