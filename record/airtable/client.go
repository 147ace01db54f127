// Package airtable fetches fragment records from the Airtable REST API.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/fragments/record"
)

// DefaultBaseURL is the public Airtable API endpoint.
const DefaultBaseURL = "https://api.airtable.com"

// DefaultPageSize is the largest page Airtable returns.
const DefaultPageSize = 100

// Client lists table records page by page, following the offset token.
type Client struct {
	BaseURL  string
	APIKey   string
	BaseID   string
	TableID  string
	Fields   record.Fields
	HTTP     *http.Client
	PageSize int
}

var _ record.Source = (*Client)(nil)

// APIError is returned for non-2xx responses.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	switch {
	case e.Type != "" && e.Message != "":
		return fmt.Sprintf("airtable: %d %s: %s", e.Status, e.Type, e.Message)
	case e.Type != "":
		return fmt.Sprintf("airtable: %d %s", e.Status, e.Type)
	default:
		return fmt.Sprintf("airtable: %d %s", e.Status, http.StatusText(e.Status))
	}
}

type listResponse struct {
	Records []record.RawRecord `json:"records"`
	Offset  string             `json:"offset"`
}

// Records fetches, validates and sorts every record in the table.
func (c *Client) Records(ctx context.Context) ([]record.Record, error) {
	raws, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return record.Convert(raws, c.Fields)
}

// Count returns the number of records in the table.
func (c *Client) Count(ctx context.Context) (int, error) {
	raws, err := c.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(raws), nil
}

// List returns the raw records of all pages.
func (c *Client) List(ctx context.Context) ([]record.RawRecord, error) {
	var all []record.RawRecord
	offset := ""
	for {
		page, err := c.fetchPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

func (c *Client) fetchPage(ctx context.Context, offset string) (*listResponse, error) {
	endpoint, err := c.endpoint(offset)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("airtable: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("airtable: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("airtable: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp.StatusCode, body)
	}
	var page listResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("airtable: decode response: %w", err)
	}
	return &page, nil
}

func (c *Client) endpoint(offset string) (string, error) {
	if c.BaseID == "" || c.TableID == "" {
		return "", fmt.Errorf("airtable: base ID and table ID are required")
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", fmt.Errorf("airtable: invalid base URL %q: %w", base, err)
	}
	u = u.JoinPath("v0", c.BaseID, c.TableID)
	q := u.Query()
	size := c.PageSize
	if size <= 0 || size > DefaultPageSize {
		size = DefaultPageSize
	}
	q.Set("pageSize", strconv.Itoa(size))
	if offset != "" {
		q.Set("offset", offset)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// decodeError understands both {"error":{"type":..,"message":..}} and {"error":"TYPE"}.
func decodeError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return apiErr
	}
	var detailed struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload.Error, &detailed); err == nil {
		apiErr.Type = detailed.Type
		apiErr.Message = detailed.Message
		return apiErr
	}
	var code string
	if err := json.Unmarshal(payload.Error, &code); err == nil {
		apiErr.Type = code
	}
	return apiErr
}
