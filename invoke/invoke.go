// Package invoke calls a selected member with an adapted argument vector.
//
// Arguments must already have the member's shape (see params.Adapt).
// Missing slots take the parameter's default; every argument is then
// coerced to its parameter type. Failures raised by the member itself, a
// panic or a non-nil trailing error result, are returned as
// errors.KindInvocation wrapping the underlying cause.
package invoke

import (
	"fmt"
	"reflect"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/coerce"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/params"
)

// Call invokes m. target is the receiver for instance members and must be
// non-nil; it is ignored for static members.
//
// Results are shaped for the host: no results yield nil, one yields the
// value, several yield []any. A trailing error result is not part of the
// shape.
func Call(target any, m *catalog.Member, args []any) (result any, err error) {
	owner := m.OwnerName()

	if !m.Static && target == nil {
		return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			Member(owner, m.Name).
			Detail("instance member called on a nil target").
			Build()
	}

	in, err := Arguments(m, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.Recovered(owner, m.Name, r)
		}
	}()

	out, err := m.Call(target, in)
	if err != nil {
		return nil, err
	}

	if m.ReturnsError() {
		last := out[len(out)-1]
		out = out[:len(out)-1]
		if !last.IsNil() {
			return nil, errors.Invocation(owner, m.Name, last.Interface().(error), "")
		}
	}
	return Shape(out), nil
}

// Arguments converts an adapted vector into call values, substituting
// defaults for Missing slots.
func Arguments(m *catalog.Member, args []any) ([]reflect.Value, error) {
	owner := m.OwnerName()
	list := m.Params

	if len(args) != len(list) {
		return nil, errors.Arity(owner, m.Name, len(list), len(args))
	}

	in := make([]reflect.Value, len(list))
	for i, p := range list {
		arg := args[i]
		if params.IsMissing(arg) {
			if p.Kind != params.Optional {
				return nil, errors.Arity(owner, m.Name, list.Required(), supplied(args))
			}
			arg = p.Default
		}

		v, err := coerce.Value(arg, p.Type)
		if err != nil {
			return nil, errors.New(errors.PhaseInvoke, errors.KindTypeMismatch).
				Member(owner, m.Name).
				GoType(fmt.Sprintf("%T", arg)).
				Detail("argument %d: cannot convert to %s", i, p.Type).
				Cause(err).
				Build()
		}
		in[i] = v
	}
	return in, nil
}

// Shape converts call results into a host value.
func Shape(out []reflect.Value) any {
	switch len(out) {
	case 0:
		return nil
	case 1:
		return value(out[0])
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = value(v)
	}
	return vals
}

func value(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}

func supplied(args []any) int {
	n := 0
	for _, a := range args {
		if !params.IsMissing(a) {
			n++
		}
	}
	return n
}
