package rating

import (
	"sort"
)

// DefaultDecay halves a year's weight for every step back in time.
const DefaultDecay = 0.5

// Aggregator turns a module's published review history into one scalar. The
// most recent year with reviews carries weight 1, each year further back
// carries the previous weight times Decay, and every review in a year shares
// that year's weight. Years without published reviews occupy no slot.
type Aggregator struct {
	Decay float64 `toml:"rating_decay"`
}

// ModuleScore computes the weighted mean over ratings grouped by academic
// year. The bool is false when no ratings exist at all, a module without
// published reviews has no score rather than a zero one.
func (a *Aggregator) ModuleScore(ratingsByYear map[int][]int) (float64, bool) {
	years := make([]int, 0, len(ratingsByYear))
	for year, ratings := range ratingsByYear {
		if len(ratings) == 0 {
			continue
		}
		years = append(years, year)
	}
	if len(years) == 0 {
		return 0, false
	}

	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	decay := a.Decay
	if decay <= 0 || decay > 1 {
		decay = DefaultDecay
	}

	weight := 1.0
	var weightedSum, totalWeight float64
	for _, year := range years {
		for _, r := range ratingsByYear[year] {
			weightedSum += float64(r) * weight
			totalWeight += weight
		}
		weight *= decay
	}

	return weightedSum / totalWeight, true
}
