package formatter

import (
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/go-day-timeline/internal/core/model"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

func (f *JSONFormatter) FormatDay(w io.Writer, day *model.DayTimeline) error {
	return f.write(w, day)
}

func (f *JSONFormatter) FormatSchedule(w io.Writer, schedule *model.Schedule) error {
	return f.write(w, schedule)
}

func (f *JSONFormatter) write(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
