// Package remote fetches link collections from the spreadsheet endpoint.
//
// # Overview
//
// Fetches never happen directly from the UI. They go through a Boundary, the
// privileged side that holds the network session:
//
//   - Transport: in-process HTTP client with a cookie jar
//   - BrokerClient: forwards requests to a `quicklinks broker` process
//
// Both speak the same message contract:
//
//	request:  {"type":"FETCH_JSON","url":"..."}
//	response: {"ok":true,"data":...}
//	          {"ok":false,"status":500,"text":"..."}
//
// # Fetcher
//
// Fetcher builds the collection URL and calls the boundary:
//
//	<endpoint>?type=standard&key=<secret>&_ts=<unix ms>
//
// The _ts parameter defeats intermediate caches. Fetcher returns the raw
// payload; validation belongs to the caller.
//
// # Error Handling
//
// Every non-ok reply becomes a *FetchError whose message reads
//
//	standard fetch failed (500): upstream error
//	customers fetch failed (noresp):
//
// Transport maps failures as follows:
//
//   - Non-2xx status: status plus the first 500 characters of the body
//   - 2xx body that is not JSON: status 0, "not json: " plus 200 characters
//   - Network error: status 0 and the error message
//
// Callers treat every failure the same way.
package remote
