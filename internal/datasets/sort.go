package datasets

import (
	"cmp"
	"slices"

	"github.com/engineering-on-display/eod-uaa/internal/chartconfig"
)

// sortByOrder orders definitions by sort order, then sensor code.
func sortByOrder(defs []chartconfig.DatasetDefinition) {
	slices.SortStableFunc(defs, func(a, b chartconfig.DatasetDefinition) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.SensorCode, b.SensorCode)
	})
}
