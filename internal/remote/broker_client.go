package remote

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
)

const brokerPath = "/fetch"

// Ensure BrokerClient implements Boundary at compile time.
var _ Boundary = (*BrokerClient)(nil)

// BrokerClient forwards fetch requests to a broker process over HTTP.
type BrokerClient struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

// NewBrokerClient builds a client for the broker listening at addr
// (host:port or a full URL).
func NewBrokerClient(addr string, timeout time.Duration) (*BrokerClient, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &BrokerClient{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// FetchJSON implements Boundary. Any failure to reach the broker or decode its
// reply becomes a non-ok response with status 0.
func (c *BrokerClient) FetchJSON(ctx context.Context, fr FetchRequest) *FetchResponse {
	body, err := json.Marshal(fr)
	if err != nil {
		return failure(0, fmt.Sprintf("encode request: %v", err))
	}
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: brokerPath})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(body))
	if err != nil {
		return failure(0, fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return failure(0, fmt.Sprintf("execute request: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return failure(0, fmt.Sprintf("broker returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}
	var out FetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return failure(0, fmt.Sprintf("decode response: %v", err))
	}
	return &out
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return nil, fmt.Errorf("broker address is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse broker address %q: %w", addr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
