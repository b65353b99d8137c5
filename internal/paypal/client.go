// Package paypal implements the small slice of the PayPal REST API the
// billing flow needs: webhook signature verification. Checkout itself runs
// in the PayPal-hosted UI; the backend only consumes webhooks.
package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config carries the REST credentials. WebhookID empty disables signature
// verification, which is only acceptable in local development.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	WebhookID    string
}

// Client calls the PayPal REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a PayPal client. BaseURL defaults to the sandbox.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-m.sandbox.paypal.com"
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// VerificationEnabled reports whether a webhook ID is configured.
func (c *Client) VerificationEnabled() bool {
	return c.cfg.WebhookID != ""
}

// WebhookHeaders are the transmission headers PayPal signs.
type WebhookHeaders struct {
	TransmissionID   string
	TransmissionTime string
	TransmissionSig  string
	CertURL          string
	AuthAlgo         string
}

// HeadersFromRequest extracts the PayPal transmission headers.
func HeadersFromRequest(r *http.Request) WebhookHeaders {
	return WebhookHeaders{
		TransmissionID:   r.Header.Get("Paypal-Transmission-Id"),
		TransmissionTime: r.Header.Get("Paypal-Transmission-Time"),
		TransmissionSig:  r.Header.Get("Paypal-Transmission-Sig"),
		CertURL:          r.Header.Get("Paypal-Cert-Url"),
		AuthAlgo:         r.Header.Get("Paypal-Auth-Algo"),
	}
}

// VerifyWebhookSignature checks the event against the verify-webhook-signature
// API. The raw body must be passed unmodified; re-marshaling the event can
// change key order and break the signature.
func (c *Client) VerifyWebhookSignature(ctx context.Context, headers WebhookHeaders, rawEvent []byte) (bool, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return false, fmt.Errorf("paypal access token: %w", err)
	}

	payload := map[string]any{
		"transmission_id":   headers.TransmissionID,
		"transmission_time": headers.TransmissionTime,
		"transmission_sig":  headers.TransmissionSig,
		"cert_url":          headers.CertURL,
		"auth_algo":         headers.AuthAlgo,
		"webhook_id":        c.cfg.WebhookID,
		"webhook_event":     json.RawMessage(rawEvent),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("marshal verification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/notifications/verify-webhook-signature", bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify webhook signature: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("verify webhook signature: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode verification response: %w", err)
	}
	return result.VerificationStatus == "SUCCESS", nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.AccessToken, nil
}
