package catalog

import (
	"context"
	stderrors "errors"
	"reflect"

	"github.com/wippyai/dynbridge/errors"
)

// CoreModule names the module unqualified type names resolve against.
const CoreModule = "core"

// Catalog holds the loaded modules in load order. The core module is always
// first. A Catalog is not safe for concurrent mutation.
type Catalog struct {
	core    *Module
	modules []*Module
}

// New creates a catalog holding an empty core module.
func New() *Catalog {
	core := NewModule(CoreModule, "1.0.0")
	return &Catalog{
		core:    core,
		modules: []*Module{core},
	}
}

// Core returns the core module.
func (c *Catalog) Core() *Module {
	return c.core
}

// Load appends a module. Loading the same module twice is a no-op; a
// different module with the same name and version is rejected.
func (c *Catalog) Load(m *Module) error {
	if m == nil {
		return errors.InvalidInput(errors.PhaseLoad, "nil module")
	}
	for _, existing := range c.modules {
		if existing == m {
			return nil
		}
		if existing.Name == m.Name && existing.Version == m.Version {
			return errors.New(errors.PhaseLoad, errors.KindRegistration).
				Detail("module %s is already loaded", m.FullName()).
				Build()
		}
	}
	c.modules = append(c.modules, m)
	return nil
}

// Modules returns loaded modules in load order, core first.
func (c *Catalog) Modules() []*Module {
	return c.modules
}

// Module returns the first loaded module with the given name, or nil.
func (c *Catalog) Module(name string) *Module {
	for _, m := range c.modules {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// TypeOf returns the first registered descriptor for a Go type, searching
// modules in load order, or nil.
func (c *Catalog) TypeOf(goType reflect.Type) *Type {
	if goType == nil {
		return nil
	}
	for _, m := range c.modules {
		for _, t := range m.types {
			if t.GoType == goType {
				return t
			}
		}
	}
	return nil
}

// Describe returns the descriptor for v's runtime type: the registered one
// when there is one, otherwise a descriptor discovered by reflection.
func (c *Catalog) Describe(v any) *Type {
	if v == nil {
		return nil
	}
	gt := reflect.TypeOf(v)
	if t := c.TypeOf(gt); t != nil {
		return t
	}
	return Reflect(gt)
}

// Close closes every module in reverse load order.
func (c *Catalog) Close(ctx context.Context) error {
	var errs []error
	for i := len(c.modules) - 1; i >= 0; i-- {
		if err := c.modules[i].Close(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
