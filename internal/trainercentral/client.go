// Package trainercentral is the outbound gateway to the TrainerCentral v4
// API. Each call builds {domain}/api/v4/{orgId}/{path}.json, attaches the
// caller's bearer token, optionally wraps the payload in the resource-named
// envelope the API expects, and hands the JSON body back verbatim.
package trainercentral

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

	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

// Access carries the per-request tenant and credential. There is no
// process-global org state; every call names its tenant explicitly.
type Access struct {
	OrgID  string
	Domain string
	Token  string
}

type Client struct {
	http *http.Client
	log  *zap.Logger
}

func NewClient(timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// do issues one upstream call. A non-empty envelope wraps payload as
// {"<envelope>": payload}. Non-2xx responses become *UpstreamError with the
// original status and body; 2xx bodies that fail to parse become
// *MalformedResponseError. No retries at any layer.
func (c *Client) do(ctx context.Context, acc Access, method, path string, query url.Values, envelope string, payload any) (map[string]any, error) {
	reqURL := fmt.Sprintf("%s/api/v4/%s/%s.json", strings.TrimSuffix(acc.Domain, "/"), acc.OrgID, path)
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		wrapped := payload
		if envelope != "" {
			wrapped = map[string]any{envelope: payload}
		}
		raw, err := json.Marshal(wrapped)
		if err != nil {
			return nil, fmt.Errorf("trainercentral: encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("trainercentral: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Bearer "+acc.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trainercentral: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("trainercentral: read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Warn("upstream error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: string(raw)}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}
	// UseNumber keeps the 17-digit upstream ids intact through the
	// decode/re-encode round trip; float64 would truncate them.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, &MalformedResponseError{Status: resp.StatusCode, Body: string(raw)}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, acc Access, path string, query url.Values) (map[string]any, error) {
	return c.do(ctx, acc, http.MethodGet, path, query, "", nil)
}

func (c *Client) post(ctx context.Context, acc Access, path, envelope string, payload any) (map[string]any, error) {
	return c.do(ctx, acc, http.MethodPost, path, nil, envelope, payload)
}

func (c *Client) put(ctx context.Context, acc Access, path, envelope string, payload any) (map[string]any, error) {
	return c.do(ctx, acc, http.MethodPut, path, nil, envelope, payload)
}

func (c *Client) delete(ctx context.Context, acc Access, path string) (map[string]any, error) {
	return c.do(ctx, acc, http.MethodDelete, path, nil, "", nil)
}
