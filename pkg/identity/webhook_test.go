package identity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "idsec_test"

func testClient() *Client {
	return NewClient("https://identity.example.com", "key", testWebhookSecret, time.Minute, nil)
}

func TestVerifyWebhookAccepts(t *testing.T) {
	payload := []byte(`{
		"type": "user.created",
		"data": {
			"id": "user_123",
			"first_name": "Ada",
			"last_name": "Lovelace",
			"image_url": "https://img.example.com/ada.png",
			"email_addresses": [{"email_address": "ada@example.com"}]
		}
	}`)

	msgID := "msg_1"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature := computeWebhookSignature(payload, msgID, timestamp, testWebhookSecret)

	event, err := testClient().VerifyWebhook(payload, msgID, timestamp, "v1,"+signature)
	require.NoError(t, err)
	require.Equal(t, EventUserCreated, event.Type)
	require.Equal(t, "user_123", event.Data.ID)
	require.Equal(t, "Ada Lovelace", event.Data.FullName())
	require.Equal(t, "ada@example.com", event.Data.Email())
}

func TestVerifyWebhookAcceptsAnyMatchingEntry(t *testing.T) {
	payload := []byte(`{"type":"user.updated","data":{"id":"user_123"}}`)

	msgID := "msg_2"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	signature := computeWebhookSignature(payload, msgID, timestamp, testWebhookSecret)
	header := "v1,bm90LXRoZS1zaWduYXR1cmU= v1," + signature

	event, err := testClient().VerifyWebhook(payload, msgID, timestamp, header)
	require.NoError(t, err)
	require.Equal(t, EventUserUpdated, event.Type)
}

func TestVerifyWebhookRejectsBadSignature(t *testing.T) {
	payload := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)

	msgID := "msg_3"
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	_, err := testClient().VerifyWebhook(payload, msgID, timestamp, "v1,bm90LXRoZS1zaWduYXR1cmU=")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsMissingHeaders(t *testing.T) {
	payload := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)
	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	_, err := testClient().VerifyWebhook(payload, "", timestamp, "v1,whatever")
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = testClient().VerifyWebhook(payload, "msg", "", "v1,whatever")
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = testClient().VerifyWebhook(payload, "msg", timestamp, "")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerifyWebhookRejectsStaleTimestamp(t *testing.T) {
	payload := []byte(`{"type":"user.created","data":{"id":"user_123"}}`)

	msgID := "msg_4"
	timestamp := fmt.Sprintf("%d", time.Now().Add(-10*time.Minute).Unix())
	signature := computeWebhookSignature(payload, msgID, timestamp, testWebhookSecret)

	_, err := testClient().VerifyWebhook(payload, msgID, timestamp, "v1,"+signature)
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestUserEventDataHelpers(t *testing.T) {
	empty := UserEventData{}
	require.Equal(t, "", empty.Email())
	require.Equal(t, "", empty.FullName())

	firstOnly := UserEventData{FirstName: "Grace"}
	require.Equal(t, "Grace", firstOnly.FullName())
}
