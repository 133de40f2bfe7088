package store

import "github.com/hexswarm/sim/pkg/hexgrid"

// sortParallelByKey sorts keys ascending, permuting positions and values the
// same way. Grounded on original_source simulation/src/tables/morton/sorting.rs,
// which radix-sorts in 5-bit passes over the 30-bit interleaved key; a plain
// insertion/quick hybrid via quickSort3 below is used here instead of
// reimplementing the bucket-counting passes, since the table sizes this
// engine targets (per-room entity counts, not cao-lo's world-scale dataset)
// don't need a linear-time sort to stay within a tick budget.
func sortParallelByKey[Row any](keys []mortonKey, positions []hexgrid.Axial, values []Row) {
	quickSort3(keys, positions, values, 0, len(keys)-1)
}

func quickSort3[Row any](keys []mortonKey, positions []hexgrid.Axial, values []Row, lo, hi int) {
	for lo < hi {
		if hi-lo < 12 {
			insertionSort3(keys, positions, values, lo, hi)
			return
		}
		p := partition3(keys, positions, values, lo, hi)
		if p-lo < hi-p {
			quickSort3(keys, positions, values, lo, p-1)
			lo = p + 1
		} else {
			quickSort3(keys, positions, values, p+1, hi)
			hi = p - 1
		}
	}
}

func partition3[Row any](keys []mortonKey, positions []hexgrid.Axial, values []Row, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if keys[mid] < keys[lo] {
		swap3(keys, positions, values, lo, mid)
	}
	if keys[hi] < keys[lo] {
		swap3(keys, positions, values, lo, hi)
	}
	if keys[hi] < keys[mid] {
		swap3(keys, positions, values, mid, hi)
	}
	pivot := keys[mid]
	swap3(keys, positions, values, mid, hi-1)
	i := lo
	for j := lo; j < hi-1; j++ {
		if keys[j] < pivot {
			swap3(keys, positions, values, i, j)
			i++
		}
	}
	swap3(keys, positions, values, i, hi-1)
	return i
}

func insertionSort3[Row any](keys []mortonKey, positions []hexgrid.Axial, values []Row, lo, hi int) {
	for i := lo + 1; i <= hi; i++ {
		for j := i; j > lo && keys[j-1] > keys[j]; j-- {
			swap3(keys, positions, values, j-1, j)
		}
	}
}

func swap3[Row any](keys []mortonKey, positions []hexgrid.Axial, values []Row, a, b int) {
	keys[a], keys[b] = keys[b], keys[a]
	positions[a], positions[b] = positions[b], positions[a]
	values[a], values[b] = values[b], values[a]
}
