// Package links defines the two quicklinks collections and their boundary rules.
//
// Remote payloads, imported JSON, and bundled fallback data all enter the
// program as raw bytes. Validate checks their shape and Decode turns them into
// a Dataset; nothing past that point re-checks structure.
//
// Standard payloads are arrays of folders:
//
//	[{"id": "ops", "name": "Operations", "items": [{"title": "Grafana", "url": "https://..."}]}]
//
// Customer payloads are arrays of customers with optional tags:
//
//	[{"id": "acme", "name": "Acme", "tags": ["retail"], "links": [{"title": "CRM", "url": "https://..."}]}]
//
// The package also carries the search filters used by the views.
package links
