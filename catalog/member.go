package catalog

import (
	"fmt"
	"reflect"

	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/params"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Member is one invocable signature: a method overload, a static function
// or a constructor.
type Member struct {
	fn      reflect.Value
	iface   reflect.Type
	Owner   *Type
	Name    string
	Scope   string
	Params  params.List
	Results []reflect.Type
	Static  bool
	recv    bool
	errOut  bool
}

// Signature renders the member as name(params).
func (m *Member) Signature() string {
	return m.Name + m.Params.String()
}

// ReturnsError reports whether the underlying function's last result is an error.
func (m *Member) ReturnsError() bool {
	return m.errOut
}

// OwnerName returns the full name of the declaring type, or the scope for
// members built outside a type.
func (m *Member) OwnerName() string {
	if m.Owner != nil {
		return m.Owner.FullName
	}
	return m.Scope
}

// Call invokes the member with in, one value per parameter; a variadic
// parameter's slot carries the whole slice. Instance members require target.
func (m *Member) Call(target any, in []reflect.Value) ([]reflect.Value, error) {
	fn := m.fn
	if !m.Static {
		if target == nil {
			return nil, errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
				Member(m.OwnerName(), m.Name).
				Detail("instance member called without a target").
				Build()
		}
		switch {
		case m.iface != nil:
			rv := reflect.ValueOf(target)
			if !rv.Type().Implements(m.iface) {
				return nil, errors.New(errors.PhaseInvoke, errors.KindTypeMismatch).
					Member(m.Scope, m.Name).
					GoType(rv.Type().String()).
					Detail("target does not implement %s", m.iface).
					Build()
			}
			fn = rv.MethodByName(m.Name)
		case m.recv:
			rv, err := receiver(target, fn.Type().In(0))
			if err != nil {
				return nil, err
			}
			in = append([]reflect.Value{rv}, in...)
		}
	}

	if fn.Type().IsVariadic() {
		return fn.CallSlice(in), nil
	}
	return fn.Call(in), nil
}

func receiver(target any, want reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(target)
	switch {
	case rv.Type().AssignableTo(want):
		return rv, nil
	case rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Type().AssignableTo(want):
		return rv.Elem(), nil
	}
	return reflect.Value{}, errors.New(errors.PhaseInvoke, errors.KindTypeMismatch).
		GoType(rv.Type().String()).
		Detail("receiver must be %s", want).
		Build()
}

// MemberOption adjusts a member at registration time.
type MemberOption func(*Member) error

// Defaults marks the trailing parameters optional with the given defaults.
func Defaults(values ...any) MemberOption {
	return func(m *Member) error {
		list, err := m.Params.WithDefaults(values...)
		if err != nil {
			return errors.Registration(m.OwnerName(), m.Name, err.Error())
		}
		m.Params = list
		return nil
	}
}

// Names attaches parameter names, used for display.
func Names(names ...string) MemberOption {
	return func(m *Member) error {
		m.Params = m.Params.WithNames(names...)
		return nil
	}
}

// Packed marks a trailing slice parameter as variadic, for functions that
// take an explicit []T rather than ...T.
func Packed() MemberOption {
	return func(m *Member) error {
		n := len(m.Params)
		if n == 0 || m.Params[n-1].Type.Kind() != reflect.Slice {
			return errors.Registration(m.OwnerName(), m.Name, "last parameter is not a slice")
		}
		list := make(params.List, n)
		copy(list, m.Params)
		list[n-1].Kind = params.Variadic
		m.Params = list
		return nil
	}
}

// Func wraps a plain Go function as a static member outside any type.
func Func(scope, name string, fn any, opts ...MemberOption) (*Member, error) {
	return newMember(nil, scope, name, fn, true, false, opts)
}

func newMember(owner *Type, scope, name string, fn any, static, recv bool, opts []MemberOption) (*Member, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func {
		return nil, errors.New(errors.PhaseRegister, errors.KindTypeMismatch).
			Member(scope, name).
			GoType(fmt.Sprintf("%T", fn)).
			Detail("handler must be a function").
			Build()
	}
	return memberFromValue(owner, scope, name, rv, static, recv, opts)
}

func memberFromValue(owner *Type, scope, name string, rv reflect.Value, static, recv bool, opts []MemberOption) (*Member, error) {
	ft := rv.Type()
	skip := 0
	if recv {
		if ft.NumIn() == 0 {
			return nil, errors.Registration(scope, name, "method needs a receiver parameter")
		}
		skip = 1
	}

	m := &Member{
		fn:     rv,
		Owner:  owner,
		Name:   name,
		Scope:  scope,
		Params: params.FromFunc(ft, skip),
		Static: static,
		recv:   recv,
	}
	m.Results, m.errOut = results(ft)

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func results(ft reflect.Type) ([]reflect.Type, bool) {
	n := ft.NumOut()
	errOut := n > 0 && ft.Out(n-1) == errorType
	if errOut {
		n--
	}
	out := make([]reflect.Type, n)
	for i := 0; i < n; i++ {
		out[i] = ft.Out(i)
	}
	return out, errOut
}
