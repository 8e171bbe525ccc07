package links

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestValidate_Standard(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"empty array", `[]`, ""},
		{"valid folder", `[{"id":"ops","name":"Ops","items":[{"title":"Grafana","url":"https://grafana"}]}]`, ""},
		{"empty items", `[{"id":"ops","name":"Ops","items":[]}]`, ""},
		{"not an array", `{"id":"ops"}`, "standard json must be an array"},
		{"element not object", `["ops"]`, "folder must be an object"},
		{"null element", `[null]`, "folder must be an object"},
		{"missing name", `[{"id":"1","items":[]}]`, "folder is missing id or name"},
		{"empty id", `[{"id":"","name":"Ops","items":[]}]`, "folder is missing id or name"},
		{"numeric id", `[{"id":7,"name":"Ops","items":[]}]`, ""},
		{"zero id", `[{"id":0,"name":"Ops","items":[]}]`, "folder is missing id or name"},
		{"boolean id", `[{"id":true,"name":"Ops","items":[]}]`, "folder is missing id or name"},
		{"numeric url", `[{"id":"ops","name":"Ops","items":[{"title":"x","url":5}]}]`, `a link in "Ops" is missing title or url`},
		{"trailing data", `[] []`, "standard json is not valid json"},
		{"missing items", `[{"id":"ops","name":"Ops"}]`, `folder "Ops" is missing items array`},
		{"items not array", `[{"id":"ops","name":"Ops","items":{}}]`, `folder "Ops" is missing items array`},
		{"link missing url", `[{"id":"ops","name":"Ops","items":[{"title":"x"}]}]`, `a link in "Ops" is missing title or url`},
		{"link not object", `[{"id":"ops","name":"Ops","items":["x"]}]`, `a link in "Ops" is missing title or url`},
		{"malformed json", `[{`, "standard json is not valid json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Standard, json.RawMessage(tt.payload))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate returned %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate returned nil, want %q", tt.wantErr)
			}
			if err.Error() != tt.wantErr {
				t.Fatalf("Validate error = %q, want %q", err.Error(), tt.wantErr)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Kind != Standard {
				t.Fatalf("Validate error = %#v, want *ValidationError for standard", err)
			}
		})
	}
}

func TestValidate_Customers(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr string
	}{
		{"valid", `[{"id":"acme","name":"Acme","tags":["retail"],"links":[{"title":"CRM","url":"https://crm"}]}]`, ""},
		{"null tags", `[{"id":"acme","name":"Acme","tags":null,"links":[]}]`, ""},
		{"not an array", `"acme"`, "customers json must be an array"},
		{"missing id", `[{"name":"Acme","links":[]}]`, "customer is missing id or name"},
		{"missing links", `[{"id":"acme","name":"Acme","items":[]}]`, `customer "Acme" is missing links array`},
		{"link missing url", `[{"id":"acme","name":"Acme","links":[{"title":"x"}]}]`, `a link in "Acme" is missing title or url`},
		{"bad tags", `[{"id":"acme","name":"Acme","tags":[1],"links":[]}]`, `customer "Acme" has tags that are not a list of strings`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(Customers, json.RawMessage(tt.payload))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate returned %v, want nil", err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("Validate error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_UnknownKind(t *testing.T) {
	err := Validate(Kind("bogus"), json.RawMessage(`[]`))
	if !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("Validate error = %v, want ErrInvalidKind", err)
	}
}

func TestDecode_NumericTextBecomesString(t *testing.T) {
	raw := json.RawMessage(`[{"id":1042,"name":2024,"links":[{"title":7,"url":"https://seven"}]}]`)
	ds, err := Decode(Customers, raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := []Customer{{ID: "1042", Name: "2024", Links: []Link{{Title: "7", URL: "https://seven"}}}}
	if !reflect.DeepEqual(ds.Customers, want) {
		t.Fatalf("customers = %+v, want %+v", ds.Customers, want)
	}
}

func TestDecode_NormalizesEmptySlices(t *testing.T) {
	ds, err := Decode(Customers, json.RawMessage(`[{"id":"a","name":"A","tags":[],"links":[]}]`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if ds.Kind != Customers || ds.Len() != 1 {
		t.Fatalf("Decode = %#v, want one customer", ds)
	}
	c := ds.Customers[0]
	if c.Tags != nil {
		t.Fatalf("Tags = %#v, want nil for empty tags", c.Tags)
	}
	if c.Links == nil {
		t.Fatalf("Links = nil, want empty non-nil slice")
	}
}

func TestDataset_IndentRoundTrip(t *testing.T) {
	original, err := Decode(Standard, json.RawMessage(`[
		{"id":"ops","name":"Ops","items":[{"title":"Grafana","url":"https://grafana"}]},
		{"id":"empty","name":"Empty","items":[]}
	]`))
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}

	text, err := original.Indent()
	if err != nil {
		t.Fatalf("Indent returned error: %v", err)
	}
	if !strings.Contains(text, "\n  {") {
		t.Fatalf("Indent output not two-space indented:\n%s", text)
	}

	again, err := Decode(Standard, json.RawMessage(text))
	if err != nil {
		t.Fatalf("Decode(Indent()) returned error: %v", err)
	}
	if !reflect.DeepEqual(original, again) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", again, original)
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"standard": Standard, " STD ": Standard, "customers": Customers, "cus": Customers} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("other"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("ParseKind(other) error = %v, want ErrInvalidKind", err)
	}
}

func TestLinkID(t *testing.T) {
	got := LinkID(Customers, "acme", Link{Title: "CRM", URL: "https://crm"})
	if got != "cus||acme||CRM||https://crm" {
		t.Fatalf("LinkID = %q", got)
	}
}
