package payproc

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Event types the reconciler acts on. Every other type is acknowledged
// without side effects.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// SignatureHeader is the header carrying the event signature.
const SignatureHeader = "Payment-Signature"

// DefaultTolerance bounds how old a signed event timestamp may be.
const DefaultTolerance = 5 * time.Minute

// ErrInvalidSignature marks webhook payloads that fail authenticity
// verification. Handlers reject these with a bare 400 so the processor
// retries delivery.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Event is a verified payment processor event.
type Event struct {
	ID   string    `json:"id"`
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the event object payload.
type EventData struct {
	Object EventObject `json:"object"`
}

// EventObject is the session/payment object attached to an event.
type EventObject struct {
	ID       string            `json:"id"`
	Amount   string            `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// VerifyAndParseEvent checks the signature header against the raw payload and
// decodes the event. The header format is "t=<unix>,v1=<hex hmac>" where the
// hmac is SHA-256 over "<unix>.<payload>" keyed with the webhook secret.
// Verification fails closed: any malformed header, stale timestamp, or
// mismatched digest yields ErrInvalidSignature.
func (c *Client) VerifyAndParseEvent(payload []byte, sigHeader string) (Event, error) {
	return verifyAndParseEvent(payload, sigHeader, c.webhookSecret, DefaultTolerance, time.Now())
}

func verifyAndParseEvent(payload []byte, sigHeader string, secret string, tolerance time.Duration, now time.Time) (Event, error) {
	var event Event

	timestamp, signature, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return event, err
	}

	eventTime := time.Unix(timestamp, 0)
	if now.Sub(eventTime) > tolerance || eventTime.Sub(now) > tolerance {
		return event, fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	expected := ComputeSignature(payload, secret, timestamp)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return event, ErrInvalidSignature
	}

	if err := json.Unmarshal(payload, &event); err != nil {
		return event, fmt.Errorf("decode event: %w", err)
	}

	return event, nil
}

// ComputeSignature returns the hex HMAC-SHA256 of "<timestamp>.<payload>".
func ComputeSignature(payload []byte, secret string, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(timestamp, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (int64, string, error) {
	if strings.TrimSpace(header) == "" {
		return 0, "", fmt.Errorf("%w: missing signature header", ErrInvalidSignature)
	}

	var timestamp int64
	var signature string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			parsed, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return 0, "", fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
			}
			timestamp = parsed
		case "v1":
			signature = kv[1]
		}
	}

	if timestamp == 0 || signature == "" {
		return 0, "", fmt.Errorf("%w: malformed signature header", ErrInvalidSignature)
	}

	return timestamp, signature, nil
}
