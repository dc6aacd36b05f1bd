package timeline

import (
	"github.com/penwyp/go-day-timeline/internal/core/model"
)

// BuildSchedule reconstructs every day from..to (inclusive) with the same
// options and now. Intervals crossing midnight show up on the later day as
// virtual continuations.
func BuildSchedule(inputs Inputs, opts Options, from, to string, now int64) (*model.Schedule, error) {
	keys, err := DayKeysBetween(from, to, opts.Location)
	if err != nil {
		return nil, err
	}

	today := DayKeyOf(now, opts.Location)
	schedule := &model.Schedule{Days: make([]model.DayTimeline, 0, len(keys))}
	for _, key := range keys {
		dayOpts := opts
		dayOpts.DayKey = key
		p, err := Prepare(inputs, dayOpts, today)
		if err != nil {
			return nil, err
		}
		schedule.Days = append(schedule.Days, *p.At(now))
	}
	return schedule, nil
}
