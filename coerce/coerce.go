// Package coerce converts dynamically typed host values to the Go types a
// member's parameters declare.
//
// Hosts rarely produce the exact Go type a signature asks for: a numeric
// host value may arrive as float64 for an int parameter, or as int for an
// int32 one. Conversion is value-based: a float64 converts to an integer
// type only when it is integral and in range.
package coerce

import (
	"math"
	"reflect"

	"github.com/wippyai/dynbridge/errors"
)

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// Value converts v to a value assignable to t.
// A nil v yields the zero value of t.
func Value(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch {
	case isInt(t.Kind()):
		n, ok := ToInt64(v)
		if !ok {
			break
		}
		out := reflect.New(t).Elem()
		if out.OverflowInt(n) {
			break
		}
		out.SetInt(n)
		return out, nil

	case isUint(t.Kind()):
		n, ok := ToUint64(v)
		if !ok {
			break
		}
		out := reflect.New(t).Elem()
		if out.OverflowUint(n) {
			break
		}
		out.SetUint(n)
		return out, nil

	case isFloat(t.Kind()):
		f, ok := ToFloat64(v)
		if !ok {
			break
		}
		out := reflect.New(t).Elem()
		if t.Kind() == reflect.Float32 && out.OverflowFloat(f) {
			break
		}
		out.SetFloat(f)
		return out, nil

	case t.Kind() == reflect.Slice && rv.Kind() == reflect.Slice:
		return Slice(rv, t)
	}

	if rv.Kind() == t.Kind() && rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}

	return reflect.Value{}, errors.TypeMismatch(errors.PhaseAdapt, v, t.String())
}

// Slice converts every element of rv into a new slice of type t.
func Slice(rv reflect.Value, t reflect.Type) (reflect.Value, error) {
	out := reflect.MakeSlice(t, rv.Len(), rv.Len())
	elem := t.Elem()
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i)
		var iv any
		if item.IsValid() && item.CanInterface() {
			iv = item.Interface()
		}
		cv, err := Value(iv, elem)
		if err != nil {
			return reflect.Value{}, err
		}
		out.Index(i).Set(cv)
	}
	return out, nil
}

// Widens reports whether a value of type from converts to type to
// without loss, following the usual numeric widening rules.
func Widens(from, to reflect.Type) bool {
	if from == nil || to == nil {
		return false
	}
	fk, tk := from.Kind(), to.Kind()
	switch {
	case isInt(fk) && isInt(tk):
		return bits(from) <= bits(to)
	case isUint(fk) && isUint(tk):
		return bits(from) <= bits(to)
	case isUint(fk) && isInt(tk):
		return bits(from) < bits(to)
	case (isInt(fk) || isUint(fk)) && isFloat(tk):
		return true
	case isFloat(fk) && isFloat(tk):
		return bits(from) <= bits(to)
	}
	return false
}

// IsAny reports whether t is the empty interface.
func IsAny(t reflect.Type) bool {
	return t == anyType || (t.Kind() == reflect.Interface && t.NumMethod() == 0)
}

// Nilable reports whether a host null can stand in for a value of type t.
// Strings count: a null string arrives as "".
func Nilable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map,
		reflect.Func, reflect.Chan, reflect.String, reflect.UnsafePointer:
		return true
	}
	return false
}

// ToInt64 handles host numbers (float64 in particular) and other numeric types.
func ToInt64(value any) (int64, bool) {
	rv := reflect.ValueOf(value)
	switch {
	case isInt(rv.Kind()):
		return rv.Int(), true
	case isUint(rv.Kind()):
		u := rv.Uint()
		if u <= math.MaxInt64 {
			return int64(u), true
		}
	case isFloat(rv.Kind()):
		f := rv.Float()
		if f >= math.MinInt64 && f < math.MaxInt64 && f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

func ToUint64(value any) (uint64, bool) {
	rv := reflect.ValueOf(value)
	switch {
	case isUint(rv.Kind()):
		return rv.Uint(), true
	case isInt(rv.Kind()):
		if n := rv.Int(); n >= 0 {
			return uint64(n), true
		}
	case isFloat(rv.Kind()):
		f := rv.Float()
		if f >= 0 && f < math.MaxUint64 && f == math.Trunc(f) {
			return uint64(f), true
		}
	}
	return 0, false
}

func ToFloat64(value any) (float64, bool) {
	rv := reflect.ValueOf(value)
	switch {
	case isFloat(rv.Kind()):
		return rv.Float(), true
	case isInt(rv.Kind()):
		return float64(rv.Int()), true
	case isUint(rv.Kind()):
		return float64(rv.Uint()), true
	}
	return 0, false
}

func isInt(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUint(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func bits(t reflect.Type) int {
	switch t.Kind() {
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return 64
	}
	return t.Bits()
}
