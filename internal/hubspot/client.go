// Package hubspot fetches email templates from the HubSpot API, trying the
// endpoint generations newest-first until one answers.
package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	commonhttp "template-migrator/internal/common/http"
	"template-migrator/internal/common/logger"
	"template-migrator/internal/common/metrics"
)

const defaultBaseURL = "https://api.hubapi.com"

// endpointDescriptor pairs an endpoint path with the extractor that
// normalizes its response envelope into a flat item list.
type endpointDescriptor struct {
	path    string
	extract func(body []byte) ([]map[string]interface{}, error)
}

// fetchEndpoints is ordered most-modern first. Each generation wraps its
// items differently: "results", "objects", or the bare body.
var fetchEndpoints = []endpointDescriptor{
	{path: "/marketing/v3/emails?limit=100", extract: envelopeExtractor("results")},
	{path: "/content/api/v2/templates?limit=100", extract: envelopeExtractor("objects")},
	{path: "/marketing-emails/v1/emails?limit=100", extract: envelopeExtractor("objects")},
	{path: "/templates/v1/templates", extract: bareArrayExtractor},
}

func envelopeExtractor(field string) func([]byte) ([]map[string]interface{}, error) {
	return func(body []byte) ([]map[string]interface{}, error) {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode response envelope: %w", err)
		}

		raw, ok := envelope[field]
		if !ok {
			return nil, fmt.Errorf("response has no %q field", field)
		}

		var items []map[string]interface{}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %q items: %w", field, err)
		}
		return items, nil
	}
}

func bareArrayExtractor(body []byte) ([]map[string]interface{}, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode bare array body: %w", err)
	}
	return items, nil
}

type Client struct {
	accessToken string
	baseURL     string
	httpClient  *commonhttp.Client
	logger      logger.Logger
}

func NewClient(accessToken string, log logger.Logger) *Client {
	return &Client{
		accessToken: accessToken,
		baseURL:     defaultBaseURL,
		httpClient:  commonhttp.NewClient(30 * time.Second),
		logger:      log,
	}
}

// NewClientWithBaseURL overrides the API host, used by tests.
func NewClientWithBaseURL(accessToken, baseURL string, log logger.Logger) *Client {
	c := NewClient(accessToken, log)
	c.baseURL = baseURL
	return c
}

// FetchTemplates tries each endpoint in order and returns the first
// successful generation's templates. A succeeding endpoint with zero items
// is success. Only when every endpoint fails does the call fail, and the
// error carries the last endpoint's failure detail.
func (c *Client) FetchTemplates(ctx context.Context) ([]Template, error) {
	var lastErr error
	var lastPath string

	for _, endpoint := range fetchEndpoints {
		items, err := c.fetchFrom(ctx, endpoint)
		if err != nil {
			metrics.HubSpotEndpointAttempts.WithLabelValues(endpoint.path, "failure").Inc()
			c.logger.Warn("HubSpot endpoint failed, trying next", map[string]interface{}{
				"endpoint": endpoint.path,
				"error":    err.Error(),
			})
			lastErr = err
			lastPath = endpoint.path
			continue
		}

		metrics.HubSpotEndpointAttempts.WithLabelValues(endpoint.path, "success").Inc()
		c.logger.Info("Fetched HubSpot templates", map[string]interface{}{
			"endpoint": endpoint.path,
			"count":    len(items),
		})

		templates := make([]Template, 0, len(items))
		for _, item := range items {
			templates = append(templates, templateFromRaw(item))
		}
		return templates, nil
	}

	return nil, fmt.Errorf("all template endpoints failed, last was %s: %w", lastPath, lastErr)
}

func (c *Client) fetchFrom(ctx context.Context, endpoint endpointDescriptor) ([]map[string]interface{}, error) {
	url := c.baseURL + endpoint.path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	return endpoint.extract(body)
}
