package runtime

import (
	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/errors"
)

// GetFieldOrProperty reads a public instance field of obj, or failing that
// a readable property.
func (r *Runtime) GetFieldOrProperty(obj any, name string) (any, error) {
	r.diag.Clear()
	res, err := r.get(obj, name)
	return res, r.fail("GetFieldOrProperty", err)
}

// GetStaticFieldOrProperty reads a static field, or failing that a static
// property, of the type named typeName.
func (r *Runtime) GetStaticFieldOrProperty(typeName, name string) (any, error) {
	r.diag.Clear()
	res, err := r.getStatic(typeName, name)
	return res, r.fail("GetStaticFieldOrProperty", err)
}

// SetFieldOrProperty writes a public instance field of obj, or failing that
// a writable property. obj must be a pointer for struct fields to be
// settable.
func (r *Runtime) SetFieldOrProperty(obj any, name string, value any) error {
	r.diag.Clear()
	return r.fail("SetFieldOrProperty", r.set(obj, name, value))
}

// SetStaticFieldOrProperty writes a static field or static property of the
// type named typeName.
func (r *Runtime) SetStaticFieldOrProperty(typeName, name string, value any) error {
	r.diag.Clear()
	return r.fail("SetStaticFieldOrProperty", r.setStatic(typeName, name, value))
}

func (r *Runtime) get(obj any, name string) (any, error) {
	if obj == nil {
		return nil, errors.InvalidInput(errors.PhaseAccess, "object is nil")
	}
	v, err := read(r.catalog.Describe(obj), obj, name, false)
	if err != nil {
		return nil, err
	}
	return r.marshal.Out(v)
}

func (r *Runtime) getStatic(typeName, name string) (any, error) {
	typ, err := r.resolve(typeName)
	if err != nil {
		return nil, err
	}
	v, err := read(typ, nil, name, true)
	if err != nil {
		return nil, err
	}
	return r.marshal.Out(v)
}

func (r *Runtime) set(obj any, name string, value any) error {
	if obj == nil {
		return errors.InvalidInput(errors.PhaseAccess, "object is nil")
	}
	return write(r.catalog.Describe(obj), obj, name, value, false)
}

func (r *Runtime) setStatic(typeName, name string, value any) error {
	typ, err := r.resolve(typeName)
	if err != nil {
		return err
	}
	return write(typ, nil, name, value, true)
}

func read(typ *catalog.Type, target any, name string, static bool) (any, error) {
	if f := typ.FieldNamed(name, static); f != nil {
		return f.Get(target)
	}
	if p := typ.PropertyNamed(name, static); p != nil {
		return p.Get(target)
	}
	return nil, notFound(typ, name, static)
}

func write(typ *catalog.Type, target any, name string, value any, static bool) error {
	if f := typ.FieldNamed(name, static); f != nil {
		return f.Set(target, value)
	}
	if p := typ.PropertyNamed(name, static); p != nil {
		return p.Set(target, value)
	}
	return notFound(typ, name, static)
}

func notFound(typ *catalog.Type, name string, static bool) error {
	scope := "instance"
	if static {
		scope = "static"
	}
	return errors.New(errors.PhaseAccess, errors.KindInvalidInput).
		Member(typ.FullName, name).
		Detail("public %s field or property name '%s' not found", scope, name).
		Build()
}
