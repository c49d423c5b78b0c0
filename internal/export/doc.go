// Package export copies processed building series to a time-series store.
package export
