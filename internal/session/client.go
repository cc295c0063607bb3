package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/OpenLLT/ig-client/internal/config"
)

// ErrNotAuthenticated is returned when an operation needs a session that has
// not been established yet.
var ErrNotAuthenticated = errors.New("not authenticated, call Login first")

// APIError is a non-2xx response from the gateway.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway returned %d: %s", e.Status, e.Body)
}

// StreamInfo holds the parameters needed to open a streaming session.
// Password is the combined token pair the push server authenticates with.
type StreamInfo struct {
	Endpoint  string
	AccountID string
	Password  string
}

// Client is a REST client for the IG gateway. Login establishes the session
// tokens; the other calls require them.
type Client struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	logger     *slog.Logger

	mu            sync.Mutex
	cst           string
	securityToken string
	accountID     string
	endpoint      string
}

// NewClient creates a gateway client from the IG configuration.
func NewClient(cfg config.IGConfig, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiURL:     cfg.APIURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
		accountID:  cfg.AccountID,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	CurrentAccountID      string `json:"currentAccountId"`
	LightstreamerEndpoint string `json:"lightstreamerEndpoint"`
}

// Login authenticates against the gateway and captures the session tokens
// and streaming endpoint from the response.
func (c *Client) Login(ctx context.Context, identifier, password string) error {
	body, err := json.Marshal(loginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/session", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build login request: %w", err)
	}
	c.setCommonHeaders(req, "2")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var parsed loginResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}

	cst := resp.Header.Get("CST")
	xst := resp.Header.Get("X-SECURITY-TOKEN")
	if cst == "" || xst == "" {
		return errors.New("login response missing session tokens")
	}

	c.mu.Lock()
	c.cst = cst
	c.securityToken = xst
	c.endpoint = parsed.LightstreamerEndpoint
	if c.accountID == "" {
		c.accountID = parsed.CurrentAccountID
	}
	c.mu.Unlock()

	c.logger.Info("Session established",
		"account_id", c.accountID,
		"streaming_endpoint", parsed.LightstreamerEndpoint)
	return nil
}

// StreamInfo returns the streaming connection parameters derived from the
// current session.
func (c *Client) StreamInfo() (StreamInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cst == "" || c.securityToken == "" {
		return StreamInfo{}, ErrNotAuthenticated
	}
	return StreamInfo{
		Endpoint:  c.endpoint,
		AccountID: c.accountID,
		Password:  fmt.Sprintf("CST-%s|XST-%s", c.cst, c.securityToken),
	}, nil
}

// Accounts lists the accounts reachable with the current session.
func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	var parsed struct {
		Accounts []Account `json:"accounts"`
	}
	if err := c.get(ctx, "/accounts", "1", &parsed); err != nil {
		return nil, err
	}
	return parsed.Accounts, nil
}

// SearchMarkets looks up markets matching the given term.
func (c *Client) SearchMarkets(ctx context.Context, term string) ([]Market, error) {
	var parsed struct {
		Markets []Market `json:"markets"`
	}
	path := "/markets?searchTerm=" + url.QueryEscape(term)
	if err := c.get(ctx, path, "1", &parsed); err != nil {
		return nil, err
	}
	return parsed.Markets, nil
}

func (c *Client) get(ctx context.Context, path, version string, out any) error {
	c.mu.Lock()
	cst, xst := c.cst, c.securityToken
	c.mu.Unlock()
	if cst == "" || xst == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	c.setCommonHeaders(req, version)
	req.Header.Set("CST", cst)
	req.Header.Set("X-SECURITY-TOKEN", xst)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) setCommonHeaders(req *http.Request, version string) {
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json; charset=UTF-8")
	req.Header.Set("X-IG-API-KEY", c.apiKey)
	req.Header.Set("Version", version)
}
