package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregator_ModuleScore(t *testing.T) {
	testCases := []struct {
		name          string
		decay         float64
		ratingsByYear map[int][]int
		expectedScore float64
		expectedOK    bool
	}{
		{
			name:          "no reviews at all yields no score",
			decay:         0.5,
			ratingsByYear: map[int][]int{},
			expectedScore: 0,
			expectedOK:    false,
		},
		{
			name:          "years present but all empty yields no score",
			decay:         0.5,
			ratingsByYear: map[int][]int{2024: {}, 2023: {}},
			expectedScore: 0,
			expectedOK:    false,
		},
		{
			name:          "single review is its own score",
			decay:         0.5,
			ratingsByYear: map[int][]int{2024: {4}},
			expectedScore: 4,
			expectedOK:    true,
		},
		{
			name:          "recent year dominates older year",
			decay:         0.5,
			ratingsByYear: map[int][]int{2024: {5}, 2023: {3}},
			expectedScore: (5*1.0 + 3*0.5) / (1.0 + 0.5),
			expectedOK:    true,
		},
		{
			name:          "multiple reviews in one year share its weight",
			decay:         0.5,
			ratingsByYear: map[int][]int{2024: {5, 4}, 2023: {3}},
			expectedScore: (5*1.0 + 4*1.0 + 3*0.5) / (1.0 + 1.0 + 0.5),
			expectedOK:    true,
		},
		{
			name:          "gap years do not consume a weight slot",
			decay:         0.5,
			ratingsByYear: map[int][]int{2024: {5}, 2023: {}, 2021: {3}},
			expectedScore: (5*1.0 + 3*0.5) / (1.0 + 0.5),
			expectedOK:    true,
		},
		{
			name:          "uniform ratings stay put regardless of history depth",
			decay:         0.5,
			ratingsByYear: map[int][]int{2024: {3, 3}, 2023: {3}, 2022: {3, 3, 3}},
			expectedScore: 3,
			expectedOK:    true,
		},
		{
			name:          "three years of decay",
			decay:         0.5,
			ratingsByYear: map[int][]int{2024: {5}, 2023: {4}, 2022: {1}},
			expectedScore: (5*1.0 + 4*0.5 + 1*0.25) / (1.0 + 0.5 + 0.25),
			expectedOK:    true,
		},
		{
			name:          "steeper decay discounts history harder",
			decay:         0.1,
			ratingsByYear: map[int][]int{2024: {5}, 2023: {1}},
			expectedScore: (5*1.0 + 1*0.1) / (1.0 + 0.1),
			expectedOK:    true,
		},
		{
			name:          "zero decay falls back to the default",
			decay:         0,
			ratingsByYear: map[int][]int{2024: {5}, 2023: {3}},
			expectedScore: (5*1.0 + 3*0.5) / (1.0 + 0.5),
			expectedOK:    true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			agg := &Aggregator{Decay: tc.decay}

			score, ok := agg.ModuleScore(tc.ratingsByYear)
			assert.Equal(t, tc.expectedOK, ok)
			if tc.expectedOK {
				assert.InDelta(t, tc.expectedScore, score, 1e-9)
			} else {
				assert.Zero(t, score)
			}
		})
	}
}

func TestAggregator_ModuleScore_AnchorValue(t *testing.T) {
	agg := &Aggregator{Decay: 0.5}

	score, ok := agg.ModuleScore(map[int][]int{2024: {5}, 2023: {3}})
	assert.True(t, ok)
	assert.InDelta(t, 4.333333333, score, 1e-6)
}

func TestAggregator_ModuleScore_StaysWithinRatingBounds(t *testing.T) {
	agg := &Aggregator{Decay: 0.5}

	score, ok := agg.ModuleScore(map[int][]int{
		2024: {1, 5, 3},
		2023: {2, 4},
		2022: {5, 5, 5},
		2020: {1},
	})
	assert.True(t, ok)
	assert.GreaterOrEqual(t, score, 1.0)
	assert.LessOrEqual(t, score, 5.0)
}
