package catalog

import (
	"reflect"

	"github.com/wippyai/dynbridge/coerce"
	"github.com/wippyai/dynbridge/errors"
)

// Field is a public data member. Instance fields address a struct field by
// index; static fields hold a pointer to a package-level variable.
type Field struct {
	ptr    reflect.Value
	Owner  *Type
	Type   reflect.Type
	Name   string
	index  []int
	Static bool
}

// Get reads the field. target is ignored for static fields.
func (f *Field) Get(target any) (any, error) {
	v, err := f.value(target)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Set writes the field, converting value to the field's type.
func (f *Field) Set(target any, value any) error {
	v, err := f.value(target)
	if err != nil {
		return err
	}
	if !v.CanSet() {
		return errors.New(errors.PhaseAccess, errors.KindUnsupported).
			Member(f.Owner.FullName, f.Name).
			Detail("field is not settable on a value copy; pass a pointer").
			Build()
	}
	cv, err := coerce.Value(value, f.Type)
	if err != nil {
		return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			Member(f.Owner.FullName, f.Name).
			Cause(err).
			Build()
	}
	v.Set(cv)
	return nil
}

func (f *Field) value(target any) (reflect.Value, error) {
	if f.Static {
		return f.ptr.Elem(), nil
	}
	if target == nil {
		return reflect.Value{}, errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Member(f.Owner.FullName, f.Name).
			Detail("instance field accessed without a target").
			Build()
	}
	rv := reflect.ValueOf(target)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Value{}, errors.New(errors.PhaseAccess, errors.KindInvalidInput).
				Member(f.Owner.FullName, f.Name).
				Detail("nil target").
				Build()
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			Member(f.Owner.FullName, f.Name).
			GoType(rv.Type().String()).
			Build()
	}
	return rv.FieldByIndex(f.index), nil
}

// Property is a data member backed by accessor functions. Either accessor
// may be missing, making the property read-only or write-only.
type Property struct {
	get    reflect.Value
	set    reflect.Value
	Owner  *Type
	Type   reflect.Type
	Name   string
	Static bool
}

// CanRead reports whether the property has a getter.
func (p *Property) CanRead() bool { return p.get.IsValid() }

// CanWrite reports whether the property has a setter.
func (p *Property) CanWrite() bool { return p.set.IsValid() }

// Get calls the getter. target is ignored for static properties.
func (p *Property) Get(target any) (any, error) {
	if !p.CanRead() {
		return nil, errors.New(errors.PhaseAccess, errors.KindUnsupported).
			Member(p.Owner.FullName, p.Name).
			Detail("property has no getter").
			Build()
	}
	in, err := p.receiverArgs(target)
	if err != nil {
		return nil, err
	}
	out, err := p.call(p.get, in)
	if err != nil {
		return nil, err
	}
	if len(out) == 2 && !out[1].IsNil() {
		return nil, errors.Invocation(p.Owner.FullName, p.Name, out[1].Interface().(error), "")
	}
	return out[0].Interface(), nil
}

// Set calls the setter with value converted to the property type.
func (p *Property) Set(target any, value any) error {
	if !p.CanWrite() {
		return errors.New(errors.PhaseAccess, errors.KindUnsupported).
			Member(p.Owner.FullName, p.Name).
			Detail("property has no setter").
			Build()
	}
	in, err := p.receiverArgs(target)
	if err != nil {
		return err
	}
	cv, err := coerce.Value(value, p.Type)
	if err != nil {
		return errors.New(errors.PhaseAccess, errors.KindTypeMismatch).
			Member(p.Owner.FullName, p.Name).
			Cause(err).
			Build()
	}
	out, err := p.call(p.set, append(in, cv))
	if err != nil {
		return err
	}
	if len(out) == 1 && !out[0].IsNil() {
		return errors.Invocation(p.Owner.FullName, p.Name, out[0].Interface().(error), "")
	}
	return nil
}

// call runs an accessor, turning a panic into an invocation error.
func (p *Property) call(fn reflect.Value, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Recovered(p.Owner.FullName, p.Name, r)
		}
	}()
	return fn.Call(in), nil
}

func (p *Property) receiverArgs(target any) ([]reflect.Value, error) {
	if p.Static {
		return nil, nil
	}
	if target == nil {
		return nil, errors.New(errors.PhaseAccess, errors.KindInvalidInput).
			Member(p.Owner.FullName, p.Name).
			Detail("instance property accessed without a target").
			Build()
	}
	accessor := p.get
	if !accessor.IsValid() {
		accessor = p.set
	}
	rv, err := receiver(target, accessor.Type().In(0))
	if err != nil {
		return nil, err
	}
	return []reflect.Value{rv}, nil
}
