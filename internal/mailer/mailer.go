// Package mailer sends transactional email through the Resend HTTP API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"moreminutes/pkg/email"
)

const defaultBaseURL = "https://api.resend.com"

// fromAddress is the verified sender for all product email.
const fromAddress = "More Minutes <noreply@mail.moreminutes.life>"

// Config carries the Resend credentials.
type Config struct {
	APIKey  string
	BaseURL string
	From    string
}

// Client sends email through Resend. A nil *Client is a valid no-op sender
// for environments without an API key.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a mailer. Returns nil when no API key is configured.
func New(cfg Config) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.From == "" {
		cfg.From = fromAddress
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendMagicLink emails a sign-in link. Returns the provider message ID.
func (c *Client) SendMagicLink(ctx context.Context, to, magicLink string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("mailer not configured")
	}
	html, err := renderTemplate(magicLinkTemplate, map[string]string{
		"Link":  magicLink,
		"Email": to,
	})
	if err != nil {
		return "", err
	}
	return c.send(ctx, sendRequest{
		From:    c.cfg.From,
		To:      []string{to},
		Subject: "Sign in to More Minutes",
		HTML:    html,
	})
}

// SendVaultDelivery emails a released vault item's download link.
func (c *Client) SendVaultDelivery(ctx context.Context, to, fileName, downloadURL string) error {
	if c == nil {
		return fmt.Errorf("mailer not configured")
	}
	firstName, _ := email.DeriveNameFromEmail(to)
	html, err := renderTemplate(vaultDeliveryTemplate, map[string]string{
		"Link":     downloadURL,
		"FileName": fileName,
		"Email":    to,
		"Name":     firstName,
	})
	if err != nil {
		return err
	}
	_, err = c.send(ctx, sendRequest{
		From:    c.cfg.From,
		To:      []string{to},
		Subject: "A message from your Legacy Vault",
		HTML:    html,
	})
	return err
}

func (c *Client) send(ctx context.Context, req sendRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("send email: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode send response: %w", err)
	}
	return result.ID, nil
}

func renderTemplate(tmpl *template.Template, data map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return buf.String(), nil
}
