package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/harrisonrobin/invoicer/pkg/auth"
	"google.golang.org/api/googleapi"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"
)

// Client is a Notion REST API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
}

// APIError is the error object Notion returns for non-2xx responses.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	err *googleapi.Error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: %s (%d %s)", e.Message, e.Status, e.Code)
}

func (e *APIError) Unwrap() error {
	return e.err
}

// NewClient creates a Notion client authenticated with the stored integration token.
func NewClient(ctx context.Context, baseURL, version string) (*Client, error) {
	httpClient, err := auth.GetClient(ctx)
	if err != nil {
		return nil, err
	}
	return NewAPIClient(httpClient, baseURL, version), nil
}

// NewAPIClient wraps an already authenticated HTTP client.
func NewAPIClient(httpClient *http.Client, baseURL, version string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if version == "" {
		version = DefaultVersion
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    version,
	}
}

// NormalizeID accepts a Notion id with or without dashes and returns the dashed form.
func NormalizeID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("invalid notion id %q: %w", id, err)
	}
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Notion-Version", c.version)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion request %s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return newAPIError(err)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode notion response: %w", err)
	}
	return nil
}

func newAPIError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	apiErr := &APIError{Status: gerr.Code, err: gerr}
	if jsonErr := json.Unmarshal([]byte(gerr.Body), apiErr); jsonErr != nil || apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(gerr.Body)
	}
	if apiErr.Status == 0 {
		apiErr.Status = gerr.Code
	}
	return apiErr
}
