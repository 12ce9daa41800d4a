// Package api is the HTTP client for the ProfileDesk profile endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/atinyakov/ProfileDesk/internal/models"
)

// ErrProfileFetch is the single error kind produced by FetchProfile.
var ErrProfileFetch = errors.New("profile fetch failed")

const requestIDHeader = "X-Request-Id"

// Client calls the profile API at BaseURL.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a Client using httpClient for transport.
// A nil httpClient falls back to http.DefaultClient.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{http: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// FetchProfile loads the full profile record of creds.UserID.
// Every failure wraps ErrProfileFetch.
func (c *Client) FetchProfile(ctx context.Context, creds models.Credentials) (models.ProfileRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, profilePath(creds.UserID), creds.Token, nil)
	if err != nil {
		return models.ProfileRecord{}, fmt.Errorf("%w: %w", ErrProfileFetch, err)
	}

	var env models.ProfileEnvelope
	if err := c.do(req, &env); err != nil {
		return models.ProfileRecord{}, fmt.Errorf("%w: %w", ErrProfileFetch, err)
	}
	return env.ProfileParts, nil
}

// SaveSection replaces one section of the user's profile on the server.
func (c *Client) SaveSection(ctx context.Context, creds models.Credentials, section models.Section, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s: %w", section, err)
	}
	path := profilePath(creds.UserID) + "/" + section.String()
	req, err := c.newRequest(ctx, http.MethodPost, path, creds.Token, bytes.NewReader(b))
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("save %s failed: %w", section, err)
	}
	return nil
}

// Completion asks the server for its view of the user's completion state.
func (c *Client) Completion(ctx context.Context, creds models.Credentials) (models.CompletionReport, error) {
	req, err := c.newRequest(ctx, http.MethodGet, profilePath(creds.UserID)+"/completion", creds.Token, nil)
	if err != nil {
		return models.CompletionReport{}, err
	}
	var report models.CompletionReport
	if err := c.do(req, &report); err != nil {
		return models.CompletionReport{}, fmt.Errorf("completion failed: %w", err)
	}
	return report, nil
}

// Register creates a new account with the given role and returns its token.
func (c *Client) Register(ctx context.Context, role models.Role) (models.Registration, error) {
	b, _ := json.Marshal(map[string]string{"role": string(role)})
	req, err := c.newRequest(ctx, http.MethodPost, "/user/register", "", bytes.NewReader(b))
	if err != nil {
		return models.Registration{}, err
	}
	var reg models.Registration
	if err := c.do(req, &reg); err != nil {
		return models.Registration{}, fmt.Errorf("register failed: %w", err)
	}
	return reg, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server error: %d %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func profilePath(userID string) string {
	return "/user/profile/" + url.PathEscape(userID)
}
