package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vector76/catchup/internal/model"
)

const defaultURL = "http://localhost:8080"

// Client is an HTTP client for the catch-up API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClientFromEnv creates a Client from CATCHUP_URL. The value is read
// from the environment first, then from a .env file in the current
// directory, and defaults to http://localhost:8080.
func NewClientFromEnv() *Client {
	baseURL := getenv("CATCHUP_URL")
	if baseURL == "" {
		baseURL = defaultURL
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: http.DefaultClient,
	}
}

// Do sends an HTTP request and returns the response body.
//
// A non-2xx response whose body is empty or a JSON error object is returned
// as a *model.APIError carrying the server's message (possibly empty). Any
// other non-2xx body, and every transport failure, is returned as a plain
// error.
func (c *Client) Do(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.BaseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(bytes.TrimSpace(respBody)) == 0 {
			return nil, &model.APIError{Status: resp.StatusCode}
		}
		var errResp model.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err != nil {
			return nil, fmt.Errorf("HTTP %d: unreadable error response: %w", resp.StatusCode, err)
		}
		return nil, &model.APIError{Status: resp.StatusCode, Message: errResp.Error}
	}

	return json.RawMessage(respBody), nil
}

// CatchUp posts a catch-up request. It satisfies ui.Fetcher.
func (c *Client) CatchUp(ctx context.Context, req model.CatchUpRequest) (model.CatchUpResponse, error) {
	var resp model.CatchUpResponse
	data, err := c.Do(ctx, http.MethodPost, "/api/catchup", req)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return resp, fmt.Errorf("parsing response: %w", err)
	}
	return resp, nil
}

// Options fetches the accepted industries and time periods.
func (c *Client) Options(ctx context.Context) (*model.Catalog, error) {
	data, err := c.Do(ctx, http.MethodGet, "/api/options", nil)
	if err != nil {
		return nil, err
	}
	var cat model.Catalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	return &cat, nil
}

// prettyJSON formats a json.RawMessage with 2-space indentation.
func prettyJSON(data json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}
