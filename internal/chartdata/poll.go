package chartdata

import (
	"context"
	"time"
)

// PollPolicy bounds how long PollTemperature waits for a series to appear.
type PollPolicy struct {
	// Attempts is the number of waits before giving up.
	Attempts int

	// Interval is the length of each wait.
	Interval time.Duration
}

// DefaultPollPolicy waits up to three times ten seconds.
var DefaultPollPolicy = PollPolicy{Attempts: 3, Interval: 10 * time.Second}

// PollTemperature returns a building's temperature series, waiting for some
// other caller's Fetch to store it if it is not cached yet.
//
// It never issues a request itself. The cache is re-checked after each wait;
// a wait ends early when the series is stored.
//
// Returns:
//   - []float64: Temperature series (shared, read-only)
//   - error: *RetrievalTimeoutError after Poll.Attempts waits, or ctx.Err()
func (c *Cache) PollTemperature(ctx context.Context, buildingID int) ([]float64, error) {
	s, err := c.Await(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	return s.Temperature, nil
}

// Await is PollTemperature returning the whole series.
func (c *Cache) Await(ctx context.Context, buildingID int) (*BuildingTimeSeries, error) {
	if s, ok := c.Lookup(buildingID); ok {
		return s, nil
	}
	ready, release := c.watch(buildingID)
	defer release()
	return pollUntil(ctx, c.poll, buildingID, c.Lookup, ready)
}

// pollUntil checks lookup immediately and after each of policy.Attempts
// waits. A wait ends early once ready is closed.
func pollUntil(
	ctx context.Context,
	policy PollPolicy,
	buildingID int,
	lookup func(int) (*BuildingTimeSeries, bool),
	ready <-chan struct{},
) (*BuildingTimeSeries, error) {
	for attempt := 0; ; attempt++ {
		if s, ok := lookup(buildingID); ok {
			return s, nil
		}
		if attempt >= policy.Attempts {
			return nil, &RetrievalTimeoutError{
				BuildingID: buildingID,
				Attempts:   policy.Attempts,
				Interval:   policy.Interval,
			}
		}

		timer := time.NewTimer(policy.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-ready:
			timer.Stop()
		case <-timer.C:
		}
	}
}
