package dataservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// StatusError reports an unexpected HTTP status from the data service.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("data service %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// httpClient implements Service against a REST resource server
// (GET/POST /{collection}, GET/PUT/PATCH/DELETE /{collection}/{id}).
type httpClient struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPClient creates a data service client for the given base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, logger zerolog.Logger) Service {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "dataservice-http").Logger(),
	}
}

// List returns every document of a collection matching the filter.
func (c *httpClient) List(ctx context.Context, collection string, filter Filter) ([]json.RawMessage, error) {
	path := "/" + url.PathEscape(collection)
	if len(filter) > 0 {
		q := url.Values{}
		for k, v := range filter {
			q.Set(k, v)
		}
		path += "?" + q.Encode()
	}

	var docs []json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Get returns a single document by ID.
func (c *httpClient) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var doc json.RawMessage
	if err := c.do(ctx, http.MethodGet, docPath(collection, id), nil, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Create stores a new document.
func (c *httpClient) Create(ctx context.Context, collection string, doc any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/"+url.PathEscape(collection), doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Replace overwrites a document entirely.
func (c *httpClient) Replace(ctx context.Context, collection, id string, doc any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPut, docPath(collection, id), doc, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Patch merges fields into a document.
func (c *httpClient) Patch(ctx context.Context, collection, id string, fields map[string]any) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodPatch, docPath(collection, id), fields, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a document.
func (c *httpClient) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, docPath(collection, id), nil, nil)
}

func docPath(collection, id string) string {
	return "/" + url.PathEscape(collection) + "/" + url.PathEscape(id)
}

// do performs a request and decodes a JSON response into out when out is non-nil.
func (c *httpClient) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("data service request failed")
		return fmt.Errorf("data service %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("data service request")

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("failed to decode data service response: %w", err)
	}
	return nil
}
