package chartdata

// msPerHour converts a millisecond time delta to hours.
const msPerHour = 3_600_000

// DeriveDemand converts cumulative usage readings into demand, the usage rate
// per hour between consecutive samples.
//
// Sample i (i >= 1) yields (usage[i]-usage[i-1]) / hours(timestamps[i]-timestamps[i-1]).
// The first sample has no predecessor and is dropped, so demand and
// trimmedUsage each hold len(usage)-1 values and stay index-aligned with
// timestamps[1:]. A zero time delta yields 0 for that sample.
//
// Series shorter than two samples give an empty demand series. Inputs are
// not modified.
//
// Example: usage [10 16 20] at [0 3_600_000 10_800_000] ms gives demand
// [6 2] and trimmedUsage [16 20].
func DeriveDemand(usage []float64, timestamps []int64) (demand, trimmedUsage []float64) {
	if len(usage) < 2 {
		return []float64{}, []float64{}
	}

	n := len(usage)
	if len(timestamps) < n {
		n = len(timestamps)
	}
	if n < 2 {
		return []float64{}, append([]float64(nil), usage[1:]...)
	}

	demand = make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		dt := timestamps[i] - timestamps[i-1]
		if dt == 0 {
			demand = append(demand, 0)
			continue
		}
		hours := float64(dt) / msPerHour
		demand = append(demand, (usage[i]-usage[i-1])/hours)
	}

	trimmedUsage = append([]float64(nil), usage[1:]...)
	return demand, trimmedUsage
}
