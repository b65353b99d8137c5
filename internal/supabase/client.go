// Package supabase implements the two slices of the Supabase API the
// backend uses: the admin user listing that feeds the local user mirror,
// and the storage bucket that holds vault payloads.
package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Config carries the project URL and the service-role key. The service key
// bypasses row-level security and must never reach a client.
type Config struct {
	URL        string
	ServiceKey string
}

// Client calls the Supabase admin and storage APIs.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// New builds a Supabase client. Returns nil when unconfigured so callers
// can treat the integration as absent in dev.
func New(cfg Config) *Client {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// AdminUser is one row from the auth admin listing.
type AdminUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	CreatedAt    time.Time      `json:"created_at"`
	UserMetadata map[string]any `json:"user_metadata"`
}

// ListUsers fetches one page of auth users. Pages start at 1.
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]AdminUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.URL+"/auth/v1/admin/users", nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	req.URL.RawQuery = q.Encode()
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list auth users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list auth users: unexpected status %d", resp.StatusCode)
	}

	var result struct {
		Users []AdminUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode auth users: %w", err)
	}
	return result.Users, nil
}

// MetadataString pulls an optional string field out of user_metadata.
func (u AdminUser) MetadataString(key string) *string {
	if u.UserMetadata == nil {
		return nil
	}
	if v, ok := u.UserMetadata[key].(string); ok && v != "" {
		return &v
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("apikey", c.cfg.ServiceKey)
	req.Header.Set("Authorization", "Bearer "+c.cfg.ServiceKey)
}
