package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Webhook event types handled by the gateway callback.
const (
	EventPaymentCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventPaymentCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	EventPaymentCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"
)

// WebhookEvent is the subset of a PayPal notification the handler reads.
type WebhookEvent struct {
	EventType string          `json:"event_type"`
	Resource  WebhookResource `json:"resource"`
}

// WebhookResource carries the capture details of a payment event.
type WebhookResource struct {
	ID     string `json:"id"`
	Amount struct {
		Value        string `json:"value"`
		CurrencyCode string `json:"currency_code"`
	} `json:"amount"`
	CustomID                  string `json:"custom_id"`
	SellerReceivableBreakdown []struct {
		PayPalAccountID string `json:"paypal_account_id"`
	} `json:"seller_receivable_breakdown"`
}

// DecodeWebhookEvent parses a raw notification body.
func DecodeWebhookEvent(body []byte) (*WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ReceiverAccount returns the merchant account the capture was paid to.
func (r WebhookResource) ReceiverAccount() string {
	if len(r.SellerReceivableBreakdown) == 0 {
		return ""
	}
	return r.SellerReceivableBreakdown[0].PayPalAccountID
}

// ParseCustomID splits the checkout custom field back into user and plan.
// The field has the shape user_<id>_plan_<plan>_onetime_<ms>.
func ParseCustomID(customID string) (userID int64, planID string, err error) {
	parts := strings.Split(customID, "_")
	if len(parts) < 4 || parts[0] != "user" || parts[2] != "plan" {
		return 0, "", fmt.Errorf("billing: malformed custom id %q", customID)
	}
	userID, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("billing: malformed custom id %q", customID)
	}
	return userID, parts[3], nil
}

// WebhookVerifier checks a notification's signature against the gateway's
// verify-webhook-signature API.
type WebhookVerifier struct {
	verifyURL   string
	webhookID   string
	accessToken string
	client      *http.Client
}

// NewWebhookVerifier constructs a WebhookVerifier.
func NewWebhookVerifier(verifyURL, webhookID, accessToken string) *WebhookVerifier {
	return &WebhookVerifier{
		verifyURL:   verifyURL,
		webhookID:   webhookID,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type verificationRequest struct {
	AuthAlgo         string          `json:"auth_algo"`
	CertID           string          `json:"cert_id"`
	TransmissionID   string          `json:"transmission_id"`
	TransmissionSig  string          `json:"transmission_sig"`
	TransmissionTime string          `json:"transmission_time"`
	WebhookID        string          `json:"webhook_id"`
	WebhookEvent     json.RawMessage `json:"webhook_event"`
}

type verificationResponse struct {
	VerificationStatus string `json:"verification_status"`
}

// Verify reports whether the raw notification body matches its transport
// headers according to the gateway.
func (v *WebhookVerifier) Verify(ctx context.Context, header http.Header, body []byte) (bool, error) {
	signature := header.Get("Paypal-Transmission-Sig")
	if v.webhookID == "" || signature == "" {
		return false, errors.New("billing: missing webhook verification data")
	}

	authAlgo := header.Get("Paypal-Auth-Algo")
	if authAlgo == "" {
		authAlgo = "SHA256withRSA"
	}
	payload, err := json.Marshal(verificationRequest{
		AuthAlgo:         authAlgo,
		CertID:           header.Get("Paypal-Cert-Id"),
		TransmissionID:   header.Get("Paypal-Transmission-Id"),
		TransmissionSig:  signature,
		TransmissionTime: header.Get("Paypal-Transmission-Time"),
		WebhookID:        v.webhookID,
		WebhookEvent:     json.RawMessage(body),
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.accessToken)

	resp, err := v.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	var result verificationResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, err
	}
	return result.VerificationStatus == "SUCCESS", nil
}
