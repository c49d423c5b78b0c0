package chartdata

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotCached is returned by Lookup when a building has no series yet.
var ErrNotCached = errors.New("chartdata: series not cached")

// RetrievalTimeoutError reports that PollTemperature used all of its waits
// without the building's series appearing in the cache.
type RetrievalTimeoutError struct {
	BuildingID int
	Attempts   int
	Interval   time.Duration
}

func (e *RetrievalTimeoutError) Error() string {
	return fmt.Sprintf("chartdata: building %d: temperature not available after %d attempts every %s",
		e.BuildingID, e.Attempts, e.Interval)
}

// Is lets errors.Is(err, ErrNotCached) match a poll timeout.
func (e *RetrievalTimeoutError) Is(target error) bool {
	return target == ErrNotCached
}
