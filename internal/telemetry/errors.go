package telemetry

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates the API answered 2xx with a body that is not
// a usable chart-data document.
var ErrMalformedResponse = errors.New("telemetry: malformed response")

// FetchError reports a failed chart-data request.
//
// Status is the HTTP status code for non-2xx responses and zero for
// transport-level failures (DNS, refused connection, timeout) and
// malformed bodies.
type FetchError struct {
	BuildingID int
	Status     int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("telemetry: building %d: server returned code %d: %s", e.BuildingID, e.Status, e.Message)
	}
	return fmt.Sprintf("telemetry: building %d: %s", e.BuildingID, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
