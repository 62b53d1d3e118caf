package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/corpdesk/corpdesk/internal/models"
)

// Client calls the dashboard API. When the server is unreachable, list
// reads fall back to the local cache and report Offline so callers can
// label the data stale.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
	cache   *Cache
}

// Result wraps a cached-or-live read.
type Result[T any] struct {
	Data T
	// Offline is true when Data came from the local cache because the
	// server could not be reached.
	Offline bool
}

// New constructs a Client for the given server, caching into cachePath.
func New(baseURL, cachePath string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
		cache:   NewCache(cachePath),
	}
}

// Login authenticates and stores the session token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login: server returned %d", resp.StatusCode)
	}
	var out struct {
		User  *models.User `json:"user"`
		Token string       `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("login: decode response: %w", err)
	}
	c.Token = out.Token
	return out.User, nil
}

// Registrations lists the caller's registrations, falling back to the
// cache when the server is unreachable.
func (c *Client) Registrations(ctx context.Context) (Result[[]models.Registration], error) {
	var regs []models.Registration
	err := c.getJSON(ctx, "/api/registrations", &regs)
	if err != nil {
		if loadErr := c.cache.Load(); loadErr == nil && !c.cache.SavedAt.IsZero() {
			return Result[[]models.Registration]{Data: c.cache.Registrations, Offline: true}, nil
		}
		return Result[[]models.Registration]{}, err
	}
	c.cache.SetRegistrations(regs)
	_ = c.cache.Save()
	return Result[[]models.Registration]{Data: regs}, nil
}

// Packages lists the active package offerings with cache fallback.
func (c *Client) Packages(ctx context.Context) (Result[[]models.Package], error) {
	var pkgs []models.Package
	err := c.getJSON(ctx, "/api/packages", &pkgs)
	if err != nil {
		if loadErr := c.cache.Load(); loadErr == nil && !c.cache.SavedAt.IsZero() {
			return Result[[]models.Package]{Data: c.cache.Packages, Offline: true}, nil
		}
		return Result[[]models.Package]{}, err
	}
	c.cache.SetPackages(pkgs)
	_ = c.cache.Save()
	return Result[[]models.Package]{Data: pkgs}, nil
}

// BankDetails lists the bank payment instructions with cache fallback.
func (c *Client) BankDetails(ctx context.Context) (Result[[]models.BankDetail], error) {
	var details []models.BankDetail
	err := c.getJSON(ctx, "/api/bank-details", &details)
	if err != nil {
		if loadErr := c.cache.Load(); loadErr == nil && !c.cache.SavedAt.IsZero() {
			return Result[[]models.BankDetail]{Data: c.cache.BankDetails, Offline: true}, nil
		}
		return Result[[]models.BankDetail]{}, err
	}
	c.cache.SetBankDetails(details)
	_ = c.cache.Save()
	return Result[[]models.BankDetail]{Data: details}, nil
}

// Registration fetches one case by id. No cache fallback: stale single
// records are more misleading than an error.
func (c *Client) Registration(ctx context.Context, id string) (*models.Registration, error) {
	var reg models.Registration
	if err := c.getJSON(ctx, "/api/registrations/"+id, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: server returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
