package remote

import (
	"context"
	"encoding/json"
)

// RequestType is the only request type a Boundary understands.
const RequestType = "FETCH_JSON"

// NotJSONPrefix starts the Text of a response whose 2xx body did not parse.
const NotJSONPrefix = "not json: "

// FetchRequest asks the privileged side to GET a URL.
type FetchRequest struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// FetchResponse is the privileged side's reply. When OK is true Data holds the
// parsed body; otherwise Status and Text describe the failure. Status is 0
// when no HTTP status applies (transport failure or a body that is not JSON).
type FetchResponse struct {
	OK     bool            `json:"ok"`
	Data   json.RawMessage `json:"data,omitempty"`
	Status int             `json:"status"`
	Text   string          `json:"text,omitempty"`
}

// Boundary performs authenticated fetches on behalf of the caller. A nil
// response means the other side never answered.
type Boundary interface {
	FetchJSON(ctx context.Context, req FetchRequest) *FetchResponse
}

// failure builds a non-ok response.
func failure(status int, text string) *FetchResponse {
	return &FetchResponse{OK: false, Status: status, Text: text}
}

// truncate returns at most n characters of s.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
