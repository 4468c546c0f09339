package ratings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyFirstSubmission(t *testing.T) {
	tests := []struct {
		name    string
		stats   CategoryStats
		value   int
		wantAvg float64
		wantCnt int
	}{
		{
			name:    "first ever rating",
			stats:   CategoryStats{Average: 0, Count: 0},
			value:   4,
			wantAvg: 4.0,
			wantCnt: 1,
		},
		{
			name:    "second rater shifts the average",
			stats:   CategoryStats{Average: 4.0, Count: 1},
			value:   2,
			wantAvg: 3.0,
			wantCnt: 2,
		},
		{
			name:    "large pool moves slowly",
			stats:   CategoryStats{Average: 4.0, Count: 99},
			value:   5,
			wantAvg: 4.01,
			wantCnt: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.stats, tt.value, nil)
			assert.InDelta(t, tt.wantAvg, got.Average, 0.0001)
			assert.Equal(t, tt.wantCnt, got.Count)
		})
	}
}

func TestApplyRevision(t *testing.T) {
	old := func(v int) *int { return &v }

	tests := []struct {
		name     string
		stats    CategoryStats
		value    int
		oldValue *int
		wantAvg  float64
		wantCnt  int
	}{
		{
			name:     "sole rater replaces own value",
			stats:    CategoryStats{Average: 4.0, Count: 1},
			value:    2,
			oldValue: old(4),
			wantAvg:  2.0,
			wantCnt:  1,
		},
		{
			name:     "revision keeps the count unchanged",
			stats:    CategoryStats{Average: 3.0, Count: 4},
			value:    5,
			oldValue: old(1),
			wantAvg:  4.0,
			wantCnt:  4,
		},
		{
			name:     "identical revision is a no-op",
			stats:    CategoryStats{Average: 3.5, Count: 2},
			value:    4,
			oldValue: old(4),
			wantAvg:  3.5,
			wantCnt:  2,
		},
		{
			name:     "zero count falls back to the new value",
			stats:    CategoryStats{Average: 0, Count: 0},
			value:    3,
			oldValue: old(5),
			wantAvg:  3.0,
			wantCnt:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.stats, tt.value, tt.oldValue)
			assert.InDelta(t, tt.wantAvg, got.Average, 0.0001)
			assert.Equal(t, tt.wantCnt, got.Count)
		})
	}
}

func TestValidValue(t *testing.T) {
	assert.True(t, ValidValue(1))
	assert.True(t, ValidValue(5))
	assert.False(t, ValidValue(0))
	assert.False(t, ValidValue(6))
	assert.False(t, ValidValue(-1))
}
