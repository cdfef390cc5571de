package temporal

import (
	"fmt"
	"time"

	"github.com/wippyai/dynbridge/errors"
)

// DateDaysSlice applies DateDays to each element.
func DateDaysSlice(ts []time.Time) []float64 {
	return mapTimes(ts, DateDays)
}

// FromDateDaysSlice applies FromDateDays to each element and fails on the
// first element it rejects.
func FromDateDaysSlice(days []float64) ([]time.Time, error) {
	return mapFloats(days, FromDateDays)
}

// PosixSecondsSlice applies PosixSeconds to each element.
func PosixSecondsSlice(ts []time.Time) []float64 {
	return mapTimes(ts, PosixSeconds)
}

// FromPosixSecondsSlice applies FromPosixSeconds to each element.
func FromPosixSecondsSlice(secs []float64) ([]time.Time, error) {
	return mapFloats(secs, FromPosixSeconds)
}

// PosixLocalSecondsSlice applies PosixLocalSeconds to each element.
func PosixLocalSecondsSlice(ts []time.Time, loc *time.Location) []float64 {
	return mapTimes(ts, func(t time.Time) float64 { return PosixLocalSeconds(t, loc) })
}

// FromPosixLocalSecondsSlice applies FromPosixLocalSeconds to each element.
func FromPosixLocalSecondsSlice(secs []float64, loc *time.Location) ([]time.Time, error) {
	return mapFloats(secs, func(s float64) (time.Time, error) { return FromPosixLocalSeconds(s, loc) })
}

// ForceUTCSlice returns a new slice with every element relabelled as UTC.
func ForceUTCSlice(ts []time.Time) []time.Time {
	return mapTimeToTime(ts, ForceUTC)
}

// DateTimeSliceToUTC returns a new slice with every element converted to UTC.
func DateTimeSliceToUTC(ts []time.Time) []time.Time {
	return mapTimeToTime(ts, ToUTC)
}

func mapTimes(ts []time.Time, fn func(time.Time) float64) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = fn(t)
	}
	return out
}

func mapFloats(vs []float64, fn func(float64) (time.Time, error)) ([]time.Time, error) {
	out := make([]time.Time, len(vs))
	for i, v := range vs {
		t, err := fn(v)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseMarshal, errors.KindInvalidInput, err, fmt.Sprintf("element %d", i))
		}
		out[i] = t
	}
	return out, nil
}

func mapTimeToTime(ts []time.Time, fn func(time.Time) time.Time) []time.Time {
	out := make([]time.Time, len(ts))
	for i, t := range ts {
		out[i] = fn(t)
	}
	return out
}
