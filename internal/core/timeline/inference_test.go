package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

func normalizedMarkers(t *testing.T, raw ...model.RawManualMarker) []model.Marker {
	t.Helper()
	markers, diags := NormalizeMarkers(raw)
	require.Empty(t, diags)
	return markers
}

func TestInferDurationsPastDay(t *testing.T) {
	markers := normalizedMarkers(t,
		rawMarker("m1", "Meeting", at(9, 40)),
		rawMarker("m0", "Email", at(9, 0)),
	)
	intervals := InferDurations(markers, "2024-03-11", time.UTC)

	require.Len(t, intervals, 2)
	assert.Equal(t, "Email", intervals[0].Classification)
	assert.Equal(t, at(9, 0), intervals[0].Start)
	assert.Equal(t, at(9, 40), intervals[0].End)
	assert.False(t, intervals[0].Live)

	assert.Equal(t, "Meeting", intervals[1].Classification)
	assert.Equal(t, at(9, 40), intervals[1].Start)
	assert.Equal(t, at(24, 0), intervals[1].End)
	assert.False(t, intervals[1].Live)
}

func TestInferDurationsLastMarkerOnToday(t *testing.T) {
	markers := normalizedMarkers(t, rawMarker("m0", "Focus", at(14, 0)))
	intervals := InferDurations(markers, testDay, time.UTC)

	require.Len(t, intervals, 1)
	assert.True(t, intervals[0].Live)
	assert.Equal(t, intervals[0].Start, intervals[0].End)

	tests := []struct {
		name string
		now  int64
		want time.Duration
	}{
		{"quarter past", at(14, 15), 15 * time.Minute},
		{"twenty past", at(14, 20), 20 * time.Minute},
		{"clock skew", at(13, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patched := ApplyNow(intervals, tt.now)
			assert.Equal(t, tt.want.Milliseconds(), patched[0].DurationMs())
			assert.Equal(t, intervals[0].OriginRef, patched[0].OriginRef)
		})
	}
	assert.Equal(t, intervals[0].Start, intervals[0].End, "ApplyNow must not modify its input")
}

func TestInferDurationsFutureDayEndsAtMidnight(t *testing.T) {
	markers := normalizedMarkers(t, rawMarker("m0", "Plan", at(10, 0)))
	intervals := InferDurations(markers, "2024-03-09", time.UTC)

	require.Len(t, intervals, 1)
	assert.False(t, intervals[0].Live)
	assert.Equal(t, at(24, 0), intervals[0].End)
}

func TestInferDurationsTiesKeepAuthoredOrder(t *testing.T) {
	markers := normalizedMarkers(t,
		rawMarker("first", "A", at(9, 0)),
		rawMarker("second", "B", at(9, 0)),
		rawMarker("third", "C", at(9, 30)),
	)

	for i := 0; i < 5; i++ {
		intervals := InferDurations(markers, "2024-03-11", time.UTC)
		require.Len(t, intervals, 3)
		assert.Equal(t, "A", intervals[0].Classification)
		assert.Zero(t, intervals[0].DurationMs())
		assert.Equal(t, "B", intervals[1].Classification)
		assert.Equal(t, (30 * time.Minute).Milliseconds(), intervals[1].DurationMs())
	}
}

func TestInferDurationsNextMarkerOnLaterDay(t *testing.T) {
	markers := normalizedMarkers(t,
		rawMarker("m0", "Late", at(23, 0)),
		rawMarker("m1", "Early", at(25, 0)),
	)
	intervals := InferDurations(markers, "2024-03-12", time.UTC)

	require.Len(t, intervals, 2)
	assert.Equal(t, at(25, 0), intervals[0].End)
	assert.Equal(t, at(48, 0), intervals[1].End)
}

func TestInferDurationsCoversWithoutOverlap(t *testing.T) {
	markers := normalizedMarkers(t,
		rawMarker("a", "A", at(8, 0)),
		rawMarker("c", "C", at(12, 0)),
		rawMarker("b", "B", at(10, 15)),
		rawMarker("d", "D", at(12, 0)),
	)
	intervals := InferDurations(markers, "2024-03-11", time.UTC)

	for i := 1; i < len(intervals); i++ {
		assert.Equal(t, intervals[i-1].End, intervals[i].Start)
		assert.GreaterOrEqual(t, intervals[i].End, intervals[i].Start)
	}
	assert.Equal(t, at(24, 0)-at(8, 0), totalMs(intervals))
}
