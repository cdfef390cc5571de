// Package temporal converts between time.Time and the host's numeric date
// encodings.
//
// The host encodes dates as fractional days and date-times as fractional
// seconds since 1970-01-01T00:00:00. The UTC variants measure from the UTC
// origin; the local-naive variants measure the wall clock of a location as
// if it were UTC, so they differ from the UTC variant by the zone offset in
// effect at that instant.
//
// Arithmetic goes through Unix seconds and nanoseconds rather than
// time.Duration, which saturates about 292 years from the origin.
//
// Decoding accepts instants from 0001-01-01 up to the end of 9999 UTC. NaN,
// which is how the host encodes a missing date, infinities and anything
// outside that range are rejected with errors.KindInvalidInput.
package temporal

import (
	"fmt"
	"math"
	"time"

	"github.com/wippyai/dynbridge/errors"
)

const (
	secondsPerDay = 86400
	nanosPerSec   = 1e9
)

// Origin is the instant all encodings are relative to.
var Origin = time.Unix(0, 0).UTC()

// Bounds of the decodable range, in seconds from the origin. MaxSeconds is
// exclusive.
var (
	MinSeconds = float64(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	MaxSeconds = float64(time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
)

// DateDays returns the fractional number of days between the origin and t.
func DateDays(t time.Time) float64 {
	return PosixSeconds(t) / secondsPerDay
}

// FromDateDays returns the UTC instant days after the origin.
func FromDateDays(days float64) (time.Time, error) {
	if err := check("days", days, days*secondsPerDay); err != nil {
		return time.Time{}, err
	}
	return fromSeconds(days * secondsPerDay), nil
}

// PosixSeconds returns the fractional number of seconds between the origin
// and t.
func PosixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/nanosPerSec
}

// FromPosixSeconds returns the UTC instant secs after the origin. Fractions
// are rounded to the nearest nanosecond.
func FromPosixSeconds(secs float64) (time.Time, error) {
	if err := check("seconds", secs, secs); err != nil {
		return time.Time{}, err
	}
	return fromSeconds(secs), nil
}

func fromSeconds(secs float64) time.Time {
	whole := math.Floor(secs)
	nanos := math.Round((secs - whole) * nanosPerSec)
	if nanos >= nanosPerSec {
		whole++
		nanos -= nanosPerSec
	}
	return time.Unix(int64(whole), int64(nanos)).UTC()
}

// PosixLocalSeconds returns the seconds between the origin and the wall
// clock of t in loc. A nil loc means time.Local.
func PosixLocalSeconds(t time.Time, loc *time.Location) float64 {
	_, offset := t.In(location(loc)).Zone()
	return PosixSeconds(t) + float64(offset)
}

// FromPosixLocalSeconds reads secs as a wall clock in loc and returns that
// instant. Wall clocks skipped or repeated by a zone transition resolve the
// way time.Date does.
func FromPosixLocalSeconds(secs float64, loc *time.Location) (time.Time, error) {
	wall, err := FromPosixSeconds(secs)
	if err != nil {
		return time.Time{}, err
	}
	return ForceLocation(wall, location(loc)), nil
}

// ForceUTC relabels t as UTC, keeping its wall clock. A time read as
// 10:00 in any zone becomes 10:00 UTC.
func ForceUTC(t time.Time) time.Time {
	return ForceLocation(t, time.UTC)
}

// ForceLocation relabels t with loc, keeping its wall clock.
func ForceLocation(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// ToUTC converts t to the same instant in UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// check rejects a value whose offset from the origin, secs, is not a
// finite number inside [MinSeconds, MaxSeconds).
func check(unit string, v, secs float64) error {
	var detail string
	switch {
	case math.IsNaN(v):
		detail = unit + " is NaN (missing date)"
	case math.IsInf(v, 0):
		detail = unit + " is infinite"
	case secs < MinSeconds || secs >= MaxSeconds:
		detail = fmt.Sprintf("%s out of range: %g", unit, v)
	default:
		return nil
	}
	return errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
		Value(v).
		Detail("%s", detail).
		Build()
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
