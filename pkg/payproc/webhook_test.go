package payproc

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func signedHeader(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, ComputeSignature(payload, secret, ts))
}

func TestVerifyAndParseEventAccepts(t *testing.T) {
	payload := []byte(`{
		"id": "evt_1",
		"type": "payment.succeeded",
		"data": {
			"object": {
				"id": "cs_1",
				"amount": "79.99",
				"currency": "USD",
				"metadata": {"purchaseId": "3f1f9a6e-8a30-4c8e-9a51-0f6f4f0c2a11"}
			}
		}
	}`)

	now := time.Now()
	event, err := verifyAndParseEvent(payload, signedHeader(payload, testSecret, now), testSecret, DefaultTolerance, now)
	require.NoError(t, err)
	require.Equal(t, "evt_1", event.ID)
	require.Equal(t, EventPaymentSucceeded, event.Type)
	require.Equal(t, "79.99", event.Data.Object.Amount)
	require.Equal(t, "3f1f9a6e-8a30-4c8e-9a51-0f6f4f0c2a11", event.Data.Object.Metadata["purchaseId"])
}

func TestVerifyAndParseEventRejectsWrongSecret(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment.succeeded"}`)
	now := time.Now()

	_, err := verifyAndParseEvent(payload, signedHeader(payload, "other-secret", now), testSecret, DefaultTolerance, now)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEventRejectsTamperedPayload(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment.succeeded"}`)
	now := time.Now()
	header := signedHeader(payload, testSecret, now)

	tampered := []byte(`{"id":"evt_1","type":"payment.failed"}`)
	_, err := verifyAndParseEvent(tampered, header, testSecret, DefaultTolerance, now)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEventRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment.succeeded"}`)
	now := time.Now()
	signedAt := now.Add(-6 * time.Minute)

	_, err := verifyAndParseEvent(payload, signedHeader(payload, testSecret, signedAt), testSecret, DefaultTolerance, now)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEventRejectsFutureTimestamp(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"payment.succeeded"}`)
	now := time.Now()
	signedAt := now.Add(6 * time.Minute)

	_, err := verifyAndParseEvent(payload, signedHeader(payload, testSecret, signedAt), testSecret, DefaultTolerance, now)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyAndParseEventRejectsMalformedHeader(t *testing.T) {
	payload := []byte(`{"id":"evt_1"}`)
	now := time.Now()

	for _, header := range []string{"", "garbage", "t=abc,v1=deadbeef", "v1=deadbeef", "t=12345"} {
		_, err := verifyAndParseEvent(payload, header, testSecret, DefaultTolerance, now)
		require.ErrorIs(t, err, ErrInvalidSignature, "header %q", header)
	}
}
