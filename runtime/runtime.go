package runtime

import (
	"context"
	stderrors "errors"
	"slices"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/diag"
	"github.com/wippyai/dynbridge/engine"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/loader"
	"github.com/wippyai/dynbridge/marshal"
	"github.com/wippyai/dynbridge/resolver"
)

// Runtime is the boundary facade a host calls through.
type Runtime struct {
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	marshal  *marshal.Marshaller
	engine   *engine.Engine
	loader   *loader.Loader
	location *time.Location
	logger   *zap.Logger
	engCfg   *engine.Config
	diag     diag.Channel
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithConverter installs a host converter.
func WithConverter(c marshal.Converter) Option {
	return func(r *Runtime) {
		r.marshal = marshal.New(c)
	}
}

// WithLogger sets the logger for the facade and its resolver and loader.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) {
		r.logger = l
	}
}

// WithLocation sets the zone used by the local-naive date-time conversions.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(r *Runtime) {
		r.location = loc
	}
}

// WithCatalog uses an existing catalog instead of a fresh one.
func WithCatalog(c *catalog.Catalog) Option {
	return func(r *Runtime) {
		r.catalog = c
	}
}

// WithEngineConfig configures the WebAssembly engine used for module files.
func WithEngineConfig(cfg *engine.Config) Option {
	return func(r *Runtime) {
		r.engCfg = cfg
	}
}

// New creates a runtime with an empty catalog holding the Bridge.Facade
// core type.
func New(ctx context.Context, opts ...Option) (*Runtime, error) {
	r := &Runtime{
		marshal:  marshal.New(nil),
		location: time.Local,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.catalog == nil {
		r.catalog = catalog.New()
	}

	r.resolver = resolver.New(r.catalog, resolver.WithLogger(r.logger))
	r.engine = engine.New(ctx, r.engCfg)
	r.loader = loader.New(r.engine, r.logger)

	if err := r.registerFacade(); err != nil {
		_ = r.engine.Close(ctx)
		return nil, err
	}
	return r, nil
}

// Close closes every loaded module and the engine.
func (r *Runtime) Close(ctx context.Context) error {
	return stderrors.Join(r.catalog.Close(ctx), r.engine.Close(ctx))
}

// Catalog returns the catalog names are resolved against.
func (r *Runtime) Catalog() *catalog.Catalog {
	return r.catalog
}

// Loader returns the module loader. Modules passed to Loader().Provide
// become loadable by name.
func (r *Runtime) Loader() *loader.Loader {
	return r.loader
}

// Load adds an already built module to the catalog.
func (r *Runtime) Load(m *catalog.Module) error {
	r.diag.Clear()
	return r.fail("Load", r.catalog.Load(m))
}

// LoadModule loads a module by file path, fully qualified name or short name
// and adds it to the catalog.
func (r *Runtime) LoadModule(ctx context.Context, pathOrName string) (*catalog.Module, error) {
	r.diag.Clear()
	mod, err := r.loader.Load(ctx, pathOrName)
	if err == nil {
		err = r.adopt(ctx, mod)
	}
	if err != nil {
		return nil, r.fail("LoadModule", err)
	}
	r.logger.Info("module loaded", zap.String("module", mod.FullName()))
	return mod, nil
}

// LoadFile loads a module file with explicit options and adds it to the
// catalog.
func (r *Runtime) LoadFile(ctx context.Context, f loader.File) (*catalog.Module, error) {
	r.diag.Clear()
	mod, err := r.loader.LoadFile(ctx, f)
	if err == nil {
		err = r.adopt(ctx, mod)
	}
	if err != nil {
		return nil, r.fail("LoadFile", err)
	}
	return mod, nil
}

// adopt adds a module the loader produced to the catalog. A module compiled
// for this call is closed when the catalog rejects it; provided modules stay
// with their owner.
func (r *Runtime) adopt(ctx context.Context, mod *catalog.Module) error {
	err := r.catalog.Load(mod)
	if err != nil && !slices.Contains(r.loader.Available(), mod) {
		_ = mod.Close(ctx)
	}
	return err
}

// SetConverter replaces the host converter; nil removes it.
func (r *Runtime) SetConverter(c marshal.Converter) {
	r.marshal = marshal.New(c)
}

// HasConverter reports whether a host converter is installed.
func (r *Runtime) HasConverter() bool {
	return r.marshal.HasConverter()
}

// LastCallFailure returns the description of the last failed call, or "".
func (r *Runtime) LastCallFailure() string {
	return r.diag.LastCallFailure()
}

// LastFailure returns the same description as LastCallFailure.
func (r *Runtime) LastFailure() string {
	return r.diag.LastFailure()
}

// fail records err in the diagnostics channel and returns it unchanged.
func (r *Runtime) fail(op string, err error) error {
	if err == nil {
		return nil
	}
	r.diag.Record(err)
	r.logger.Debug("call failed", zap.String("op", op), zap.Error(err))
	return err
}

// resolve turns a not-found outcome into invalid input naming the type.
func (r *Runtime) resolve(typeName string) (*catalog.Type, error) {
	t, err := r.resolver.Resolve(typeName)
	if resolver.IsNotFound(err) {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Value(typeName).
			Detail("type not found: %s", typeName).
			Cause(err).
			Build()
	}
	return t, err
}
