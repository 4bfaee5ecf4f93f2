// Package sfmc talks to the Salesforce Marketing Cloud REST API: token
// exchange, Content Builder category management and asset creation.
package sfmc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "template-migrator/internal/common/http"
	"template-migrator/internal/common/logger"
)

const (
	defaultAuthURLTemplate = "https://%s.auth.marketingcloudapis.com"
	defaultRestURLTemplate = "https://%s.rest.marketingcloudapis.com"
)

// Client provides methods to interact with one SFMC account. A client is
// scoped to a single run; the token it caches is never persisted.
type Client struct {
	creds       Credentials
	authBaseURL string
	restBaseURL string
	httpClient  *commonhttp.Client
	logger      logger.Logger
	accessToken string
	tokenExpiry time.Time
}

func NewClient(creds Credentials, log logger.Logger) *Client {
	return &Client{
		creds:       creds,
		authBaseURL: fmt.Sprintf(defaultAuthURLTemplate, creds.Subdomain),
		restBaseURL: fmt.Sprintf(defaultRestURLTemplate, creds.Subdomain),
		httpClient:  commonhttp.NewClient(30 * time.Second),
		logger:      log,
	}
}

// NewClientWithBaseURLs overrides both API hosts, used by tests.
func NewClientWithBaseURLs(creds Credentials, authBaseURL, restBaseURL string, log logger.Logger) *Client {
	c := NewClient(creds, log)
	c.authBaseURL = authBaseURL
	c.restBaseURL = restBaseURL
	return c
}

// Authenticate exchanges the provisioning credentials for an access token
// via the client-credentials flow. The token is cached until expiry; the
// rest instance URL from the response replaces the derived one when set.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.tokenExpiry.After(time.Now()) && c.accessToken != "" {
		return nil
	}

	payload := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.creds.ClientID,
		"client_secret": c.creds.ClientSecret,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal token request: %w", err)
	}

	tokenURL := c.authBaseURL + "/v2/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	if tokenResp.RestInstanceURL != "" {
		c.restBaseURL = tokenResp.RestInstanceURL
	}

	c.logger.Debug("SFMC token acquired", map[string]interface{}{
		"expiresIn": tokenResp.ExpiresIn,
	})

	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	if err := c.Authenticate(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.restBaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s %s failed with status %d: %s", method, path, resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
