package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// vaultBucket is the storage bucket holding encrypted vault payloads.
const vaultBucket = "vault"

// Upload stores an object in the vault bucket at the given path.
func (c *Client) Upload(ctx context.Context, storagePath string, content []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/storage/v1/object/%s/%s", c.cfg.URL, vaultBucket, storagePath),
		bytes.NewReader(content))
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "3600")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storage upload: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// SignedURL issues a time-limited download link for an object.
func (c *Client) SignedURL(ctx context.Context, storagePath string, validity time.Duration) (string, error) {
	payload, err := json.Marshal(map[string]int{"expiresIn": int(validity.Seconds())})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", c.cfg.URL, vaultBucket, storagePath),
		bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sign storage url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("sign storage url: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode signed url: %w", err)
	}
	return c.cfg.URL + "/storage/v1" + result.SignedURL, nil
}

// Remove deletes an object from the vault bucket.
func (c *Client) Remove(ctx context.Context, storagePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/storage/v1/object/%s/%s", c.cfg.URL, vaultBucket, storagePath), nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("storage remove: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storage remove: unexpected status %d", resp.StatusCode)
	}
	return nil
}
