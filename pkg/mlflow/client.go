// Package mlflow provides a typed client for the MLflow tracking server
// REST API. It covers experiments, runs, metrics, params, tags, artifacts,
// and the user/permission endpoints of servers running with auth enabled.
//
// All operations are stateless: each call performs a single HTTP request
// and reshapes its JSON response into the types in this package. The
// lifecycle of every record is owned by the remote server.
package mlflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// apiPrefix is the REST API 2.0 base path on the tracking server.
const apiPrefix = "/api/2.0/mlflow"

// Client talks to a tracking server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	config     *Config
	httpClient *http.Client
	logger     hclog.Logger
}

// NewClient creates a tracking client from the given config.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = ConfigFromEnv()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	if cfg.TLSVerify == nil {
		cfg.TLSVerify = DefaultConfig().TLSVerify
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracking config: %w", err)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.TrackingURL, "/"),
		config:     cfg,
		httpClient: cfg.NewHTTPClient(),
		logger:     cfg.Logger.Named("mlflow-client"),
	}, nil
}

// do executes a single API request. endpoint is relative to the REST API
// prefix (e.g. "experiments/create"). A non-nil body is sent as JSON; a
// non-nil result receives the decoded response.
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, result interface{}) error {
	reqURL := c.baseURL + apiPrefix + "/" + endpoint
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	c.setAuth(req)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("sending request", "method", method, "endpoint", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// rawGet issues a GET outside the REST API prefix and returns the response
// body stream. The caller must close it. Used for artifact content.
func (c *Client) rawGet(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, newAPIError(resp.StatusCode, body)
	}

	return resp.Body, nil
}

// setAuth passes configured credentials through on the request. A bearer
// token wins over basic auth when both are set.
func (c *Client) setAuth(req *http.Request) {
	switch {
	case c.config.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.config.Token)
	case c.config.Username != "":
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}
}
