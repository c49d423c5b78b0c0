package datasets

import "errors"

var (
	// ErrDatasetNotFound is returned when a building has no definition for a sensor code.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrInvalidDataset is returned when a definition fails validation.
	ErrInvalidDataset = errors.New("invalid dataset")
)
