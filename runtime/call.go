package runtime

import (
	"github.com/wippyai/dynbridge/binder"
	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/invoke"
	"github.com/wippyai/dynbridge/params"
	"github.com/wippyai/dynbridge/resolver"
)

// CallInstanceMethod calls method on obj, choosing the overload that best
// fits args. Members declared by registered interfaces are candidates too.
func (r *Runtime) CallInstanceMethod(obj any, method string, args ...any) (any, error) {
	r.diag.Clear()
	res, err := r.callInstance(obj, method, args)
	return res, r.fail("CallInstanceMethod", err)
}

func (r *Runtime) callInstance(obj any, method string, args []any) (any, error) {
	if obj == nil {
		return nil, errors.New(errors.PhaseSelect, errors.KindInvalidInput).
			Member("", method).
			Detail("instance method called on a nil object").
			Build()
	}

	typ := r.catalog.Describe(obj)
	candidates := typ.Candidates(method, false)
	if len(candidates) == 0 {
		return nil, errors.MissingMember(errors.PhaseSelect, typ.FullName, method,
			"could not find method "+method+" on object")
	}
	return r.invoke(obj, typ.FullName, method, candidates, args)
}

// CallStaticMethod calls a static member of the type named typeName.
// Date-time arguments are relabelled as UTC before binding.
func (r *Runtime) CallStaticMethod(typeName, method string, args ...any) (any, error) {
	r.diag.Clear()
	res, err := r.callStatic(typeName, method, args)
	return res, r.fail("CallStaticMethod", err)
}

func (r *Runtime) callStatic(typeName, method string, args []any) (any, error) {
	typ, err := r.resolve(typeName)
	if err != nil {
		return nil, err
	}

	candidates := typ.Statics(method)
	if len(candidates) == 0 {
		return nil, errors.MissingMember(errors.PhaseSelect, typ.FullName, method,
			"could not find static method "+method+" on type "+typ.FullName)
	}
	return r.invoke(nil, typ.FullName, method, candidates, r.marshal.In(args))
}

// invoke selects among candidates, adapts args to the winner and marshals
// its result.
func (r *Runtime) invoke(target any, owner, name string, candidates []*catalog.Member, args []any) (any, error) {
	raw, err := r.call(target, owner, name, candidates, args)
	if err != nil {
		return nil, err
	}
	return r.marshal.Out(raw)
}

func (r *Runtime) call(target any, owner, name string, candidates []*catalog.Member, args []any) (any, error) {
	m, err := binder.Select(owner, name, candidates, binder.ArgTypes(args))
	if err != nil {
		return nil, err
	}
	adapted, err := params.Adapt(args, m.Params)
	if err != nil {
		return nil, err
	}
	return invoke.Call(target, m, adapted)
}

// CreateInstance constructs an instance of typeName. Without arguments a
// parameterless constructor is used, or the zero value when the type
// registers none. The new instance is returned without marshalling.
func (r *Runtime) CreateInstance(typeName string, args ...any) (any, error) {
	r.diag.Clear()
	res, err := r.create(typeName, args)
	return res, r.fail("CreateInstance", err)
}

func (r *Runtime) create(typeName string, args []any) (any, error) {
	typ, err := r.resolve(typeName)
	if err != nil {
		return nil, err
	}

	ctors := typ.Constructors()
	if len(args) == 0 {
		for _, c := range ctors {
			if c.Params.Required() == 0 {
				return r.call(nil, typ.FullName, ".ctor", []*catalog.Member{c}, nil)
			}
		}
		if len(ctors) == 0 {
			return typ.Zero()
		}
	}
	if len(ctors) == 0 {
		return nil, errors.MissingMember(errors.PhaseSelect, typ.FullName, ".ctor",
			"no constructor accepts arguments")
	}
	return r.call(nil, typ.FullName, ".ctor", ctors, args)
}

// GetType resolves typeName. A type no loaded module declares yields nil
// and a nil error; the miss is logged and recorded. An empty name fails
// with errors.KindInvalidInput.
func (r *Runtime) GetType(typeName string) (*catalog.Type, error) {
	r.diag.Clear()
	typ, err := r.resolver.Resolve(typeName)
	if resolver.IsNotFound(err) {
		_ = r.fail("GetType", err)
		return nil, nil
	}
	if err != nil {
		return nil, r.fail("GetType", err)
	}
	return typ, nil
}
