package chartconfig

import (
	"errors"
	"fmt"
)

// Join sources named in DatasetJoinError.
const (
	SourceSeries   = "series"
	SourceDatasets = "datasets"
)

// ErrNoDatasets is returned by a DatasetProvider with no definitions for a building.
var ErrNoDatasets = errors.New("chartconfig: no dataset definitions")

// DatasetJoinError reports that one of the concurrent reads joined by
// Assembler.Get failed.
type DatasetJoinError struct {
	BuildingID int
	Source     string
	Err        error
}

func (e *DatasetJoinError) Error() string {
	return fmt.Sprintf("chartconfig: building %d: loading %s: %v", e.BuildingID, e.Source, e.Err)
}

func (e *DatasetJoinError) Unwrap() error {
	return e.Err
}
