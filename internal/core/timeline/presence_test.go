package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

func TestPresenceProbe(t *testing.T) {
	status := []model.Interval{
		{Start: at(9, 0), End: at(10, 0), Classification: model.StatusActive},
		{Start: at(10, 0), End: at(11, 0), Classification: model.StatusInactive},
	}
	presence := NewPresence(status, IsActiveStatus)
	require.True(t, presence.Known())

	tests := []struct {
		name         string
		start, end   int64
		activeMs     int64
		inactiveMs   int64
		inactiveOnly bool
	}{
		{"active", at(9, 0), at(9, 30), (30 * time.Minute).Milliseconds(), 0, false},
		{"inactive", at(10, 0), at(10, 30), 0, (30 * time.Minute).Milliseconds(), true},
		{"mixed keeps activity", at(9, 59), at(10, 30), time.Minute.Milliseconds(), (30 * time.Minute).Milliseconds(), false},
		{"no coverage", at(12, 0), at(12, 30), 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := presence.Probe(tt.start, tt.end)
			assert.Equal(t, tt.activeMs, res.ActiveMs)
			assert.Equal(t, tt.inactiveMs, res.InactiveMs)
			assert.Equal(t, tt.inactiveOnly, res.InactiveOnly)
		})
	}
}

func TestPresenceUnknown(t *testing.T) {
	var nilPresence *Presence
	assert.False(t, nilPresence.Known())
	assert.False(t, nilPresence.Probe(at(9, 0), at(10, 0)).InactiveOnly)

	empty := NewPresence(nil, IsActiveStatus)
	assert.False(t, empty.Probe(at(9, 0), at(10, 0)).InactiveOnly)
	assert.Nil(t, empty.Slices(testWindow(), 30*time.Minute))
}

func TestPresenceSlices(t *testing.T) {
	presence := &Presence{}
	presence.AddActive(at(9, 0), at(9, 30))

	slices := presence.Slices(testWindow(), 30*time.Minute)
	require.Len(t, slices, 48)
	assert.False(t, slices[18].InactiveOnly)
	assert.Equal(t, (30 * time.Minute).Milliseconds(), slices[18].ActiveMs)
	assert.True(t, slices[19].InactiveOnly)
}

func TestIsActiveStatus(t *testing.T) {
	for status, want := range map[string]bool{
		"not-afk": true,
		"Active":  true,
		"online":  true,
		"afk":     false,
		"idle":    false,
		"":        false,
	} {
		assert.Equal(t, want, IsActiveStatus(model.Interval{Classification: status}), status)
	}
}
