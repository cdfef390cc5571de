// Package marshal converts values crossing the host boundary.
//
// Outbound values are UTC-normalised when temporal and then offered to the
// Converter, which may replace them with a host-native representation.
// Inbound normalisation only relabels temporal arguments as UTC; it is
// applied to static call arguments, where hosts hand over zone-less
// timestamps.
package marshal

import (
	"time"

	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/temporal"
)

// Converter translates between host and Go representations. Either method
// may return its input unchanged to decline.
type Converter interface {
	// ConvertFromHost turns a composite host value into a Go value.
	ConvertFromHost(v any) (any, error)
	// ConvertToHost turns a Go value into a host-native value.
	ConvertToHost(v any) (any, error)
}

// Funcs adapts a pair of functions to Converter. A nil function passes
// values through.
type Funcs struct {
	FromHost func(any) (any, error)
	ToHost   func(any) (any, error)
}

func (f Funcs) ConvertFromHost(v any) (any, error) {
	if f.FromHost == nil {
		return v, nil
	}
	return f.FromHost(v)
}

func (f Funcs) ConvertToHost(v any) (any, error) {
	if f.ToHost == nil {
		return v, nil
	}
	return f.ToHost(v)
}

// Marshaller applies boundary conversions with an optional Converter.
type Marshaller struct {
	conv Converter
}

// New creates a marshaller. conv may be nil.
func New(conv Converter) *Marshaller {
	return &Marshaller{conv: conv}
}

// HasConverter reports whether a converter is configured.
func (m *Marshaller) HasConverter() bool {
	return m.conv != nil
}

// Out prepares a result for the host. Temporal values are converted to UTC
// even without a converter; other values pass through untouched.
func (m *Marshaller) Out(v any) (any, error) {
	v = conditionTemporal(v)
	if m.conv == nil {
		return v, nil
	}
	out, err := m.conv.ConvertToHost(v)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMarshal, errors.KindInvalidData, err, "converting result to host representation")
	}
	return out, nil
}

// In returns a copy of args with time.Time and []time.Time values relabelled
// as UTC, wall clock unchanged.
func (m *Marshaller) In(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case time.Time:
			out[i] = temporal.ForceUTC(v)
		case []time.Time:
			out[i] = temporal.ForceUTCSlice(v)
		default:
			out[i] = a
		}
	}
	return out
}

// Wrap converts a composite host value through the converter. Without a
// converter it returns nil.
func (m *Marshaller) Wrap(v any) (any, error) {
	if m.conv == nil {
		return nil, nil
	}
	out, err := m.conv.ConvertFromHost(v)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMarshal, errors.KindInvalidData, err, "converting host value")
	}
	return out, nil
}

func conditionTemporal(v any) any {
	switch t := v.(type) {
	case time.Time:
		return temporal.ToUTC(t)
	case []time.Time:
		return temporal.DateTimeSliceToUTC(t)
	}
	return v
}
