package runtime

import (
	"fmt"
	"time"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/temporal"
)

// FacadeType is the core type carrying the temporal helpers as statics.
const FacadeType = "Bridge.Facade"

func (r *Runtime) registerFacade() error {
	core := r.catalog.Core()
	if core.Type(FacadeType) != nil {
		return nil
	}
	t, err := core.Define(FacadeType, nil)
	if err != nil {
		return err
	}

	statics := []struct {
		name string
		fn   any
		arg  string
	}{
		{"DateDays", temporal.DateDays, "date"},
		{"DateDays", temporal.DateDaysSlice, "dates"},
		{"FromDateDays", temporal.FromDateDays, "days"},
		{"FromDateDays", temporal.FromDateDaysSlice, "days"},
		{"PosixSeconds", temporal.PosixSeconds, "date"},
		{"PosixSeconds", temporal.PosixSecondsSlice, "dates"},
		{"FromPosixSeconds", temporal.FromPosixSeconds, "seconds"},
		{"FromPosixSeconds", temporal.FromPosixSecondsSlice, "seconds"},
		{"PosixLocalSeconds", r.PosixLocalSeconds, "date"},
		{"PosixLocalSeconds", r.PosixLocalSecondsSlice, "dates"},
		{"FromPosixLocalSeconds", r.FromPosixLocalSeconds, "seconds"},
		{"FromPosixLocalSeconds", r.FromPosixLocalSecondsSlice, "seconds"},
		{"DateTimeSliceToUTC", temporal.DateTimeSliceToUTC, "dates"},
		{"ToString", r.ToString, "obj"},
		{"GetObjectTypeName", r.GetObjectTypeName, "obj"},
		{"GetMembers", r.GetMembers, "obj"},
	}
	for _, s := range statics {
		if err := t.Static(s.name, s.fn, catalog.Names(s.arg)); err != nil {
			return err
		}
	}
	return t.StaticProperty("HasConverter", r.HasConverter, nil)
}

// DateDays returns days since 1970-01-01 for t's calendar date.
func (r *Runtime) DateDays(t time.Time) float64 {
	return temporal.DateDays(t)
}

// FromDateDays is the inverse of DateDays. NaN, infinite and out of range
// values fail with errors.KindInvalidInput.
func (r *Runtime) FromDateDays(days float64) (time.Time, error) {
	return temporal.FromDateDays(days)
}

// PosixSeconds returns seconds since the Unix epoch.
func (r *Runtime) PosixSeconds(t time.Time) float64 {
	return temporal.PosixSeconds(t)
}

// FromPosixSeconds is the inverse of PosixSeconds, in UTC.
func (r *Runtime) FromPosixSeconds(secs float64) (time.Time, error) {
	return temporal.FromPosixSeconds(secs)
}

// PosixLocalSeconds returns seconds since the epoch counted on the wall
// clock of the runtime's location.
func (r *Runtime) PosixLocalSeconds(t time.Time) float64 {
	return temporal.PosixLocalSeconds(t, r.location)
}

// FromPosixLocalSeconds is the inverse of PosixLocalSeconds.
func (r *Runtime) FromPosixLocalSeconds(secs float64) (time.Time, error) {
	return temporal.FromPosixLocalSeconds(secs, r.location)
}

func (r *Runtime) PosixLocalSecondsSlice(ts []time.Time) []float64 {
	return temporal.PosixLocalSecondsSlice(ts, r.location)
}

func (r *Runtime) FromPosixLocalSecondsSlice(secs []float64) ([]time.Time, error) {
	return temporal.FromPosixLocalSecondsSlice(secs, r.location)
}

// DateTimeSliceToUTC converts every element to UTC.
func (r *Runtime) DateTimeSliceToUTC(ts []time.Time) []time.Time {
	return temporal.DateTimeSliceToUTC(ts)
}

// Location returns the zone used by the local-naive conversions.
func (r *Runtime) Location() *time.Location {
	return r.location
}

// GetObjectType returns the descriptor of obj's type, discovered by
// reflection when no module registers it. nil for a nil obj.
func (r *Runtime) GetObjectType(obj any) *catalog.Type {
	return r.catalog.Describe(obj)
}

// GetObjectTypeName returns the full name of obj's type, or "" for nil.
func (r *Runtime) GetObjectTypeName(obj any) string {
	if t := r.catalog.Describe(obj); t != nil {
		return t.FullName
	}
	return ""
}

// GetMembers lists the member names of obj's type.
func (r *Runtime) GetMembers(obj any) []string {
	if t := r.catalog.Describe(obj); t != nil {
		return t.MemberNames()
	}
	return nil
}

// ToString formats obj with its String method when it has one.
func (r *Runtime) ToString(obj any) string {
	switch v := obj.(type) {
	case nil:
		return ""
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprintf("%v", obj)
}

// WrapHostValue converts a host value through the converter. It returns nil
// when no converter is installed.
func (r *Runtime) WrapHostValue(v any) (any, error) {
	r.diag.Clear()
	out, err := r.marshal.Wrap(v)
	return out, r.fail("WrapHostValue", err)
}
