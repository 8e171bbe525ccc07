package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const (
	defaultUserAgent = "quicklinks/0.1"
	errorBodyLimit   = 500
	notJSONLimit     = 200
)

// Ensure Transport implements Boundary at compile time.
var _ Boundary = (*Transport)(nil)

// TransportOptions configures the in-process boundary.
type TransportOptions struct {
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// Cookie is sent verbatim as the Cookie header when set.
	Cookie    string
	UserAgent string
}

// Transport is the in-process Boundary. It carries ambient session cookies in
// a jar and never caches responses.
type Transport struct {
	http      *http.Client
	cookie    string
	userAgent string
}

// NewTransport builds a Transport.
func NewTransport(opts TransportOptions) (*Transport, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = defaultUserAgent
	}
	return &Transport{
		http: &http.Client{
			Timeout: opts.Timeout,
			Jar:     jar,
		},
		cookie:    strings.TrimSpace(opts.Cookie),
		userAgent: ua,
	}, nil
}

// FetchJSON implements Boundary. It never validates the payload; it only
// checks that the body parses as JSON.
func (t *Transport) FetchJSON(ctx context.Context, fr FetchRequest) *FetchResponse {
	if fr.Type != RequestType || fr.URL == "" {
		return failure(0, fmt.Sprintf("unsupported request %q", fr.Type))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fr.URL, nil)
	if err != nil {
		return failure(0, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("User-Agent", t.userAgent)
	if t.cookie != "" {
		req.Header.Set("Cookie", t.cookie)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return failure(0, err.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(0, err.Error())
	}
	text := string(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failure(resp.StatusCode, truncate(text, errorBodyLimit))
	}
	if !json.Valid(body) {
		return failure(0, NotJSONPrefix+truncate(text, notJSONLimit))
	}
	return &FetchResponse{OK: true, Data: json.RawMessage(body), Status: resp.StatusCode}
}
