// Package chartdata fetches, processes and memoises per-building telemetry.
//
// A raw chart-data document from the Telemetry API is turned into a
// BuildingTimeSeries: demand is derived from each metered category's
// cumulative usage, and the first raw sample is dropped from every series so
// timestamps, temperature, usage and demand share one index.
//
// The Cache keeps one series per building for the life of the process.
// Concurrent requests for the same building share a single API call, and
// PollTemperature lets a reader wait (bounded by a PollPolicy) for a series
// that another caller is still fetching.
package chartdata
