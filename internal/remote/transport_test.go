package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTransport_FetchJSON(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 700)
	tests := []struct {
		name       string
		status     int
		body       string
		wantOK     bool
		wantStatus int
		wantText   string
	}{
		{name: "ok", status: 200, body: `[{"id":"a"}]`, wantOK: true, wantStatus: 200},
		{name: "server error truncated", status: 500, body: long, wantStatus: 500, wantText: long[:500]},
		{name: "not found", status: 404, body: "missing", wantStatus: 404, wantText: "missing"},
		{name: "not json", status: 200, body: "<html>" + long, wantStatus: 0, wantText: "not json: " + ("<html>" + long)[:200]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			tr, err := NewTransport(TransportOptions{})
			if err != nil {
				t.Fatalf("NewTransport returned error: %v", err)
			}
			resp := tr.FetchJSON(context.Background(), FetchRequest{Type: RequestType, URL: server.URL})
			if resp == nil {
				t.Fatalf("FetchJSON returned nil")
			}
			if resp.OK != tt.wantOK || resp.Status != tt.wantStatus {
				t.Fatalf("resp = ok:%v status:%d, want ok:%v status:%d", resp.OK, resp.Status, tt.wantOK, tt.wantStatus)
			}
			if resp.Text != tt.wantText {
				t.Fatalf("text = %q (len %d), want len %d", resp.Text, len(resp.Text), len(tt.wantText))
			}
			if tt.wantOK && string(resp.Data) != tt.body {
				t.Fatalf("data = %s, want %s", resp.Data, tt.body)
			}
		})
	}
}

func TestTransport_SendsNoStoreHeadersAndCookie(t *testing.T) {
	t.Parallel()

	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`[]`))
	}))
	t.Cleanup(server.Close)

	tr, err := NewTransport(TransportOptions{Cookie: "SID=abc", UserAgent: "test/1"})
	if err != nil {
		t.Fatalf("NewTransport returned error: %v", err)
	}
	resp := tr.FetchJSON(context.Background(), FetchRequest{Type: RequestType, URL: server.URL})
	if !resp.OK {
		t.Fatalf("FetchJSON failed: %+v", resp)
	}
	if got.Get("Cache-Control") != "no-store" || got.Get("Pragma") != "no-cache" {
		t.Fatalf("cache headers = %q/%q", got.Get("Cache-Control"), got.Get("Pragma"))
	}
	if got.Get("Cookie") != "SID=abc" {
		t.Fatalf("cookie = %q", got.Get("Cookie"))
	}
	if got.Get("User-Agent") != "test/1" {
		t.Fatalf("user agent = %q", got.Get("User-Agent"))
	}
}

func TestTransport_NetworkErrorHasStatusZero(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	tr, _ := NewTransport(TransportOptions{Timeout: time.Second})
	resp := tr.FetchJSON(context.Background(), FetchRequest{Type: RequestType, URL: addr})
	if resp.OK || resp.Status != 0 || resp.Text == "" {
		t.Fatalf("resp = %+v, want ok:false status:0 with text", resp)
	}
}

func TestTransport_RejectsUnknownType(t *testing.T) {
	t.Parallel()

	tr, _ := NewTransport(TransportOptions{})
	resp := tr.FetchJSON(context.Background(), FetchRequest{Type: "PING", URL: "http://example.invalid"})
	if resp.OK {
		t.Fatalf("unexpected ok for unknown type")
	}
}
