package catalog

import (
	"context"
	stderrors "errors"
	"reflect"

	"github.com/wippyai/dynbridge/errors"
)

// Module is a named, versioned collection of types, the unit the resolver
// searches and the loader produces.
type Module struct {
	byName  map[string]*Type
	Name    string
	Version string
	types   []*Type
	closers []func(context.Context) error
}

// NewModule creates an empty module.
func NewModule(name, version string) *Module {
	if version == "" {
		version = "0.0.0"
	}
	return &Module{
		Name:    name,
		Version: version,
		byName:  make(map[string]*Type),
	}
}

// FullName returns "Name, Version=x.y.z".
func (m *Module) FullName() string {
	return m.Name + ", Version=" + m.Version
}

func (m *Module) String() string {
	return m.FullName()
}

// Define registers a type. sample fixes the Go representation of instances,
// e.g. (*Calculator)(nil); pass nil for types that only carry statics.
// Exported methods and fields of the sample's type are discovered.
func (m *Module) Define(fullName string, sample any) (*Type, error) {
	if fullName == "" {
		return nil, errors.Registration(m.Name, fullName, "type name is empty")
	}
	if _, exists := m.byName[fullName]; exists {
		return nil, errors.Registration(m.Name, fullName, "type already defined")
	}

	t := newType(m, fullName, reflect.TypeOf(sample))
	discover(t)
	m.types = append(m.types, t)
	m.byName[fullName] = t
	return t, nil
}

// MustDefine is Define that panics on error, for static registration tables.
func (m *Module) MustDefine(fullName string, sample any) *Type {
	t, err := m.Define(fullName, sample)
	if err != nil {
		panic(err)
	}
	return t
}

// Type returns the type with the given full name, or nil.
func (m *Module) Type(fullName string) *Type {
	return m.byName[fullName]
}

// Types returns all types in definition order.
func (m *Module) Types() []*Type {
	return m.types
}

// OnClose registers fn to run when the module is closed.
func (m *Module) OnClose(fn func(context.Context) error) {
	m.closers = append(m.closers, fn)
}

// Close runs close hooks in reverse registration order.
func (m *Module) Close(ctx context.Context) error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return stderrors.Join(errs...)
}
