package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/five82/quicklinks/internal/apperr"
	"github.com/five82/quicklinks/internal/links"
)

// FetchError reports a non-ok reply from the boundary.
type FetchError struct {
	Label      string
	Status     int
	NoResponse bool
	Text       string
}

func (e *FetchError) Error() string {
	status := strconv.Itoa(e.Status)
	if e.NoResponse {
		status = "noresp"
	}
	return fmt.Sprintf("%s fetch failed (%s): %s", e.Label, status, e.Text)
}

// Kind classifies the failure.
func (e *FetchError) Kind() apperr.Kind {
	switch {
	case e.Status >= 400:
		return apperr.KindHTTPError
	case strings.HasPrefix(e.Text, NotJSONPrefix):
		return apperr.KindParseError
	default:
		return apperr.KindTransportFailure
	}
}

// Fetcher builds collection URLs and fetches them through a Boundary.
type Fetcher struct {
	base     string
	key      string
	boundary Boundary
	now      func() time.Time
}

// NewFetcher returns a Fetcher for the endpoint base. key is appended as the
// key query parameter when non-empty.
func NewFetcher(base, key string, boundary Boundary) *Fetcher {
	return &Fetcher{
		base:     strings.TrimSpace(base),
		key:      key,
		boundary: boundary,
		now:      time.Now,
	}
}

// WithClock overrides the clock used for the cache-busting parameter.
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Configured reports whether an endpoint is set.
func (f *Fetcher) Configured() bool {
	return f != nil && f.base != ""
}

// URL returns the request URL for kind at the current time.
func (f *Fetcher) URL(kind links.Kind) (string, error) {
	if f.base == "" {
		return "", apperr.New(apperr.KindConfig, fmt.Sprintf("%s url is not set", kind), nil)
	}
	u, err := url.Parse(f.base)
	if err != nil {
		return "", apperr.New(apperr.KindConfig, "parse endpoint", err)
	}
	q := u.Query()
	q.Set("type", kind.String())
	if f.key != "" {
		q.Set("key", f.key)
	}
	q.Set("_ts", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetch requests the raw payload for kind. The payload is not validated. A
// non-ok reply is returned as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, kind links.Kind) (json.RawMessage, error) {
	reqURL, err := f.URL(kind)
	if err != nil {
		return nil, err
	}
	resp := f.boundary.FetchJSON(ctx, FetchRequest{Type: RequestType, URL: reqURL})
	if resp == nil {
		return nil, &FetchError{Label: kind.String(), NoResponse: true}
	}
	if !resp.OK {
		return nil, &FetchError{Label: kind.String(), Status: resp.Status, Text: resp.Text}
	}
	return resp.Data, nil
}
