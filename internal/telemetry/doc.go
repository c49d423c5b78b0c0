// Package telemetry is the HTTP client for the remote Telemetry API.
//
// The API serves per-building chart data at
//
//	GET {server_url}/api/chart-data/building/{id}/ticks/{samples}
//
// as a document keyed by series name: "createddate" holds the sample
// timestamps, "temperature" the outside temperature, and every other object
// key carrying a "usage" array is a metered category (electrical,
// naturalgas, water).
//
// All failures are returned as *FetchError.
package telemetry
