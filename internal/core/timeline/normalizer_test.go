package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

func TestNormalizePassive(t *testing.T) {
	ev := rawEvent("e1", "b1", model.BucketTypeWindow, "Editor", at(9, 0), 1.5)
	iv, err := NormalizePassive(ev, 3)
	require.NoError(t, err)

	assert.Equal(t, at(9, 0), iv.Start)
	assert.Equal(t, at(9, 0)+1500, iv.End)
	assert.Equal(t, "Editor", iv.Classification)
	assert.Equal(t, model.SourcePassive, iv.SourceKind)
	assert.Equal(t, model.BucketTypeWindow, iv.SourceClass)
	assert.Equal(t, model.OriginRef{Kind: model.SourcePassive, ID: "e1", Index: 3}, iv.OriginRef)
}

func TestNormalizePassiveRoundsDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		wantMs  int64
	}{
		{0, 0},
		{0.0004, 0},
		{0.0006, 1},
		{2.5, 2500},
		{59.9996, 60000},
	}
	for _, tt := range tests {
		iv, err := NormalizePassive(rawEvent("e", "b", "t", "x", at(1, 0), tt.seconds), 0)
		require.NoError(t, err)
		assert.Equal(t, tt.wantMs, iv.DurationMs(), "seconds=%v", tt.seconds)
	}
}

func TestNormalizeRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		ts      float64
		seconds float64
		want    error
	}{
		{"nan timestamp", math.NaN(), 1, ErrNonFiniteTimestamp},
		{"inf timestamp", math.Inf(1), 1, ErrNonFiniteTimestamp},
		{"negative timestamp", -1, 1, ErrNegativeTimestamp},
		{"nan duration", float64(at(9, 0)), math.NaN(), ErrNonFiniteDuration},
		{"inf duration", float64(at(9, 0)), math.Inf(1), ErrNonFiniteDuration},
		{"negative duration", float64(at(9, 0)), -0.5, ErrNegativeDuration},
		{"timestamp beyond int64", 1e19, 1, ErrTimestampOutOfRange},
		{"timestamp after year 9999", 3e14, 1, ErrTimestampOutOfRange},
		{"duration past year 9999", float64(at(9, 0)), 1e13, ErrDurationOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := rawEvent("e", "b", "t", "x", 0, tt.seconds)
			ev.Timestamp = model.EpochMillis(tt.ts)
			_, err := NormalizePassive(ev, 0)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NormalizeMarker(model.RawManualMarker{Activity: "x", Timestamp: model.EpochMillis(math.NaN())}, 0)
	assert.ErrorIs(t, err, ErrNonFiniteTimestamp)

	_, err = NormalizeMarker(model.RawManualMarker{Activity: "x", Timestamp: 1e19}, 0)
	assert.ErrorIs(t, err, ErrTimestampOutOfRange)
}

func TestPassiveClassification(t *testing.T) {
	tests := []struct {
		name  string
		ev    model.RawPassiveEvent
		class string
	}{
		{"display name wins", model.RawPassiveEvent{DisplayName: "Docs", SourceClassification: "t", Payload: map[string]any{"app": "Chrome"}}, "Docs"},
		{"app", model.RawPassiveEvent{SourceClassification: "t", Payload: map[string]any{"app": "Chrome", "title": "Inbox"}}, "Chrome"},
		{"status", model.RawPassiveEvent{SourceClassification: "t", Payload: map[string]any{"status": "afk"}}, "afk"},
		{"title", model.RawPassiveEvent{SourceClassification: "t", Payload: map[string]any{"title": "Inbox"}}, "Inbox"},
		{"non-string app ignored", model.RawPassiveEvent{SourceClassification: "t", Payload: map[string]any{"app": 42}}, "t"},
		{"bucket type fallback", model.RawPassiveEvent{SourceClassification: "t"}, "t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.class, passiveClassification(tt.ev))
		})
	}
}

func TestNormalizeMarkersReportsMalformed(t *testing.T) {
	raw := []model.RawManualMarker{
		rawMarker("m0", "Email", at(9, 0)),
		{ID: "m1", Activity: "Broken", Timestamp: -5},
		rawMarker("m2", "Meeting", at(9, 40)),
	}
	markers, diags := NormalizeMarkers(raw)

	require.Len(t, markers, 2)
	assert.Equal(t, 0, markers[0].OriginRef.Index)
	assert.Equal(t, 2, markers[1].OriginRef.Index)

	require.Len(t, diags, 1)
	assert.Equal(t, model.DiagMalformedMarker, diags[0].Kind)
	assert.Equal(t, "m1", diags[0].Ref.ID)
	assert.Equal(t, 1, diags[0].Ref.Index)
	assert.Contains(t, diags[0].Message, "negative timestamp")
}

func TestNormalizeEventsHonorsVisibility(t *testing.T) {
	raw := []model.RawPassiveEvent{
		rawEvent("e0", "visible", model.BucketTypeWindow, "A", at(9, 0), 60),
		rawEvent("e1", "hidden", model.BucketTypeWindow, "B", at(9, 0), 60),
		rawEvent("e2", "unknown", model.BucketTypeWindow, "C", at(9, 0), 60),
		rawEvent("e3", "visible", model.BucketTypeWindow, "D", at(9, 0), -1),
	}
	buckets := []model.Bucket{
		{ID: "visible", Type: model.BucketTypeWindow, IsVisible: true},
		{ID: "hidden", Type: model.BucketTypeWindow, IsVisible: false},
	}

	intervals, diags := NormalizeEvents(raw, buckets)
	require.Len(t, intervals, 2)
	assert.Equal(t, "A", intervals[0].Classification)
	assert.Equal(t, "C", intervals[1].Classification)
	assert.Equal(t, 2, intervals[1].OriginRef.Index)

	require.Len(t, diags, 1)
	assert.Equal(t, model.DiagMalformedEvent, diags[0].Kind)
	assert.Equal(t, 3, diags[0].Ref.Index)
}
