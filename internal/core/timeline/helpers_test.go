package timeline

import (
	"time"

	"github.com/penwyp/go-day-timeline/internal/core/model"
)

const testDay = "2024-03-10"

var testBase = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

// at returns epoch ms for hh:mm on the test day (UTC).
func at(h, m int) int64 {
	return testBase.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute).UnixMilli()
}

func atSec(h, m, s int) int64 {
	return at(h, m) + int64(s)*1000
}

func testWindow() model.DayWindow {
	w, err := WindowForKey(testDay, time.UTC)
	if err != nil {
		panic(err)
	}
	return w
}

func testOptions() Options {
	return DefaultOptions(testDay, time.UTC)
}

func rawMarker(id, activity string, ts int64) model.RawManualMarker {
	return model.RawManualMarker{ID: id, Activity: activity, Timestamp: model.EpochMillis(ts)}
}

func rawEvent(id, bucket, bucketType, name string, ts int64, seconds float64) model.RawPassiveEvent {
	return model.RawPassiveEvent{
		ID:                   id,
		SourceID:             bucket,
		SourceClassification: bucketType,
		Timestamp:            model.EpochMillis(ts),
		DurationSeconds:      seconds,
		DisplayName:          name,
	}
}

func statusEvent(id string, ts int64, seconds float64, status string) model.RawPassiveEvent {
	return model.RawPassiveEvent{
		ID:                   id,
		SourceID:             "aw-watcher-afk",
		SourceClassification: model.BucketTypePresence,
		Timestamp:            model.EpochMillis(ts),
		DurationSeconds:      seconds,
		Payload:              map[string]any{"status": status},
	}
}

func passive(class string, start, end int64, index int) model.Interval {
	return model.Interval{
		Start:          start,
		End:            end,
		Classification: class,
		SourceKind:     model.SourcePassive,
		SourceClass:    model.BucketTypeWindow,
		OriginRef:      model.OriginRef{Kind: model.SourcePassive, Index: index},
	}
}

func totalMs(intervals []model.Interval) int64 {
	var total int64
	for _, iv := range intervals {
		total += iv.DurationMs()
	}
	return total
}
