package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dsasoftware/Pentaho-reports-for-OpenERP/pkg/report"
)

// ParameterInfoPath is the reporting server endpoint for parameter metadata.
const ParameterInfoPath = "/report/getParameterInfo"

// Client talks to the reporting server over HTTP/JSON.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *slog.Logger
}

// Option configures the client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.HTTPClient.Timeout = d }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.HTTPClient = h }
}

// WithLogger sets the client logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default().With("component", "metadata"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ParameterInfo posts the report definition and returns its parameters. Any
// transport failure, non-2xx status or undecodable body is a remote service
// error.
func (c *Client) ParameterInfo(ctx context.Context, req Request) ([]report.RawParamRecord, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, report.RemoteError("encode request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+ParameterInfoPath, bytes.NewReader(body))
	if err != nil {
		return nil, report.RemoteError("build request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, report.RemoteError("call "+ParameterInfoPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, report.RemoteError(fmt.Sprintf("%s returned %d: %s", ParameterInfoPath, resp.StatusCode, strings.TrimSpace(string(snippet))), nil)
	}

	var records []report.RawParamRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, report.RemoteError("decode parameter info", err)
	}
	c.logger.DebugContext(ctx, "parameter info fetched",
		"parameters", len(records),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return records, nil
}
