package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// User lifecycle event types delivered by the identity provider.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Webhook headers used by the identity provider's delivery service.
const (
	WebhookIDHeader        = "Webhook-Id"
	WebhookTimestampHeader = "Webhook-Timestamp"
	WebhookSignatureHeader = "Webhook-Signature"
)

const webhookTolerance = 5 * time.Minute

// ErrInvalidSignature marks identity webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid identity webhook signature")

// UserEvent is a verified user lifecycle event.
type UserEvent struct {
	Type string        `json:"type"`
	Data UserEventData `json:"data"`
}

// UserEventData carries the user object on a lifecycle event.
type UserEventData struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
	Emails    []struct {
		Address string `json:"email_address"`
	} `json:"email_addresses"`
}

// Email returns the primary email address, empty when none is present.
func (d UserEventData) Email() string {
	if len(d.Emails) == 0 {
		return ""
	}
	return d.Emails[0].Address
}

// FullName joins the first and last name.
func (d UserEventData) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// VerifyWebhook checks the delivery signature and decodes the user event.
// The signature is base64 HMAC-SHA256 over "<id>.<timestamp>.<payload>";
// the signature header may list several space-separated "v1,<sig>" entries
// (key rotation), any one match accepts.
func (c *Client) VerifyWebhook(payload []byte, msgID, timestamp, sigHeader string) (UserEvent, error) {
	var event UserEvent

	if msgID == "" || timestamp == "" || sigHeader == "" {
		return event, fmt.Errorf("%w: missing webhook headers", ErrInvalidSignature)
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return event, fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}

	eventTime := time.Unix(ts, 0)
	now := time.Now()
	if now.Sub(eventTime) > webhookTolerance || eventTime.Sub(now) > webhookTolerance {
		return event, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := computeWebhookSignature(payload, msgID, timestamp, c.webhookSecret)

	verified := false
	for _, candidate := range strings.Fields(sigHeader) {
		parts := strings.SplitN(candidate, ",", 2)
		if len(parts) != 2 || parts[0] != "v1" {
			continue
		}
		if hmac.Equal([]byte(parts[1]), []byte(expected)) {
			verified = true
			break
		}
	}

	if !verified {
		return event, ErrInvalidSignature
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("decode user event: %w", err)
	}

	return event, nil
}

func computeWebhookSignature(payload []byte, msgID, timestamp, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
