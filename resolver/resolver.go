// Package resolver maps type names to catalog descriptors.
//
// Names take three forms:
//
//	Samples.Calculator                            searched in every module
//	Samples.Calculator,Samples                    searched in module Samples
//	Samples.Calculator, Samples, Version=1.0.0    exact module and version
//
// Resolution re-scans the catalog on every call and never caches, so it
// always reflects the currently loaded modules. A Resolver must not be used
// concurrently with Catalog.Load.
package resolver

import (
	stderrors "errors"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/errors"
)

var (
	// ErrTypeNotFound is returned when no loaded module exports the name.
	ErrTypeNotFound = stderrors.New("type not found")
	// ErrModuleNotFound is returned when a qualified name names a module
	// that is not loaded.
	ErrModuleNotFound = stderrors.New("module not found")
)

// IsNotFound reports whether err is one of the not-found sentinels.
// Not-found is an expected outcome, not a failure of the resolver.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrTypeNotFound) || stderrors.Is(err, ErrModuleNotFound)
}

// Resolver resolves type names against a catalog.
type Resolver struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger overrides the package logger for one resolver.
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a resolver over c.
func New(c *catalog.Catalog, opts ...Option) *Resolver {
	r := &Resolver{catalog: c}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) log() *zap.Logger {
	if r.logger != nil {
		return r.logger
	}
	return Logger()
}

// Resolve returns the descriptor for name. An empty name is invalid input.
// An unknown name is logged as a diagnostic and returns an *errors.Error of
// kind KindNotFound or KindModuleNotFound whose cause is ErrTypeNotFound or
// ErrModuleNotFound.
func (r *Resolver) Resolve(name string) (*catalog.Type, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.InvalidInput(errors.PhaseResolve, "missing type name")
	}

	if t := r.direct(name); t != nil {
		return t, nil
	}

	parts := strings.Split(name, ",")
	if len(parts) > 1 {
		modName := strings.TrimSpace(parts[len(parts)-1])
		mod := r.catalog.Module(modName)
		if mod == nil {
			r.log().Warn("module not found",
				zap.String("module", modName),
				zap.String("type", name))
			e := errors.ModuleNotFound(modName)
			e.Cause = ErrModuleNotFound
			return nil, e
		}
		if t := mod.Type(strings.TrimSpace(parts[0])); t != nil {
			return t, nil
		}
	} else {
		for _, mod := range r.catalog.Modules() {
			if t := mod.Type(name); t != nil {
				return t, nil
			}
		}
	}

	r.log().Warn("type not found", zap.String("type", name))
	e := errors.NotFound(errors.PhaseResolve, "type", name)
	e.Cause = ErrTypeNotFound
	return nil, e
}

// direct resolves self-describing names: unqualified names in the core
// module, and names qualified with a module version.
func (r *Resolver) direct(name string) *catalog.Type {
	q, ok := Parse(name)
	if !ok {
		return nil
	}
	if q.Module == "" {
		return r.catalog.Core().Type(q.Type)
	}
	if q.Version == "" {
		return nil
	}
	for _, mod := range r.catalog.Modules() {
		if mod.Name == q.Module && mod.Version == q.Version {
			return mod.Type(q.Type)
		}
	}
	return nil
}

// Qualified is a parsed type name.
type Qualified struct {
	Type    string
	Module  string
	Version string
	Extra   map[string]string
}

// Parse splits "Type[, Module[, Key=Value]...]". It fails on empty
// components and on attributes without a module.
func Parse(name string) (Qualified, bool) {
	parts := strings.Split(name, ",")
	q := Qualified{Type: strings.TrimSpace(parts[0])}
	if q.Type == "" {
		return q, false
	}
	if len(parts) == 1 {
		return q, true
	}

	q.Module = strings.TrimSpace(parts[1])
	if q.Module == "" || strings.Contains(q.Module, "=") {
		return q, false
	}
	for _, attr := range parts[2:] {
		key, value, ok := strings.Cut(strings.TrimSpace(attr), "=")
		if !ok {
			return q, false
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "Version" {
			q.Version = value
			continue
		}
		if q.Extra == nil {
			q.Extra = make(map[string]string)
		}
		q.Extra[key] = value
	}
	return q, true
}
