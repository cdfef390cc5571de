package params

import (
	"fmt"
	"reflect"

	"github.com/wippyai/dynbridge/coerce"
	"github.com/wippyai/dynbridge/errors"
)

type missing struct{}

func (missing) String() string { return "<missing>" }

// Missing fills a parameter slot the caller omitted. The invoker replaces it
// with the parameter's default, or fails when the parameter has none.
var Missing any = missing{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missing)
	return ok
}

// Adapt reshapes args to exactly len(list) elements.
//
// Fewer arguments than parameters: the tail is padded with Missing, except a
// trailing variadic parameter, which receives an empty slice. Otherwise, when
// the last parameter is variadic, the surplus arguments are packed into one
// slice of its element type (see PackParameters). Lists without a variadic
// tail are returned unchanged, so an over-long vector surfaces as an arity
// error at invocation time.
func Adapt(args []any, list List) ([]any, error) {
	np, na := len(list), len(args)

	if np > na {
		out := make([]any, np)
		copy(out, args)
		for i := na; i < np; i++ {
			out[i] = Missing
		}
		if list.Variadic() {
			out[np-1] = reflect.MakeSlice(list[np-1].Type, 0, 0).Interface()
		}
		return out, nil
	}

	if list.Variadic() {
		return PackParameters(args, np, list[np-1].Type)
	}

	return args, nil
}

// PackParameters collects args[np-1:] into one slice of sliceType placed in
// the last of np slots. When exactly np arguments are given and the last one
// already is a sliceType value it is passed through unwrapped.
//
// Equal counts with a final value of any other type are wrapped into a
// one-element slice. For ...any and ...[]T parameters this is ambiguous and
// the wrapping wins. A final nil is wrapped too and becomes the element's
// zero value: f(a int, rest ...int) called with (1, nil) receives
// rest == []int{0}, and with ...any it receives []any{nil}.
func PackParameters(args []any, np int, sliceType reflect.Type) ([]any, error) {
	if np < 1 {
		return nil, errors.InvalidInput(errors.PhaseAdapt, "parameter count must be strictly positive")
	}
	if sliceType == nil || sliceType.Kind() != reflect.Slice {
		return nil, errors.New(errors.PhaseAdapt, errors.KindInvalidInput).
			Detail("arguments can only be packed into a slice parameter, not %v", sliceType).
			Build()
	}

	na := len(args)
	if na < np-1 {
		return nil, errors.New(errors.PhaseAdapt, errors.KindArity).
			Detail("expected at least %d arguments, got %d", np-1, na).
			Build()
	}

	out := make([]any, np)
	copy(out, args[:np-1])

	if na == np && args[na-1] != nil && reflect.TypeOf(args[na-1]) == sliceType {
		out[np-1] = args[na-1]
		return out, nil
	}

	tail := args[np-1:]
	elem := sliceType.Elem()
	packed := reflect.MakeSlice(sliceType, len(tail), len(tail))
	for i, v := range tail {
		cv, err := coerce.Value(v, elem)
		if err != nil {
			return nil, errors.New(errors.PhaseAdapt, errors.KindTypeMismatch).
				GoType(fmt.Sprintf("%T", v)).
				Detail("variadic element %d: cannot convert to %s", i, elem).
				Cause(err).
				Build()
		}
		packed.Index(i).Set(cv)
	}
	out[np-1] = packed.Interface()
	return out, nil
}
