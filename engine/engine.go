package engine

import (
	"context"
	"fmt"
	"reflect"
	"sort"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/errors"
)

// ExportsType is the suffix of the type holding a module's exported
// functions: module "math" exposes them on "math.Exports".
const ExportsType = "Exports"

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Engine compiles and instantiates core WebAssembly modules.
type Engine struct {
	runtime wazero.Runtime
}

// Config holds configuration for engine creation
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages (64KB each).
	// 0 means default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// New creates an engine backed by a wazero runtime.
func New(ctx context.Context, cfg *Config) *Engine {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg)}
}

// Close releases the runtime and every module it instantiated.
func (e *Engine) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Source describes a module to load.
type Source struct {
	// Name is the catalog module name.
	Name string
	// Version defaults to 0.0.0.
	Version string
	// Wasm is the core module binary.
	Wasm []byte
	// WIT optionally declares precise signatures for the exports.
	WIT string
}

// Load compiles and instantiates src and returns a catalog module with one
// type, "<Name>.Exports", whose statics are the exported functions.
//
// Exported functions use int32, int64, float32 and float64 for the core value
// types, unless a WIT declaration of the same name refines them. Every
// function also returns an error carrying traps. Functions with reference
// type parameters or results are skipped.
func (e *Engine) Load(ctx context.Context, src Source) (*catalog.Module, error) {
	if src.Name == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "module name is required")
	}

	var sigs map[string]*funcSignature
	if src.WIT != "" {
		var err error
		if sigs, err = parseWitFunctions(src.WIT); err != nil {
			return nil, err
		}
	}

	compiled, err := e.runtime.CompileModule(ctx, src.Wasm)
	if err != nil {
		return nil, errors.Load("compile "+src.Name, err)
	}
	defer compiled.Close(ctx)

	inst, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(src.Name))
	if err != nil {
		return nil, errors.Load("instantiate "+src.Name, err)
	}

	mod := catalog.NewModule(src.Name, src.Version)
	mod.OnClose(inst.Close)
	typ, err := mod.Define(src.Name+"."+ExportsType, nil)
	if err != nil {
		_ = inst.Close(ctx)
		return nil, err
	}

	defs := compiled.ExportedFunctions()
	names := make([]string, 0, len(defs))
	for name := range defs {
		names = append(names, name)
	}
	sort.Strings(names)

	callCtx := context.WithoutCancel(ctx)
	for _, name := range names {
		def := defs[name]
		fn := inst.ExportedFunction(name)
		if fn == nil {
			continue
		}

		ft, ok := funcType(def, sigs[name])
		if !ok {
			Logger().Debug("skipping export with unsupported signature",
				zap.String("module", src.Name),
				zap.String("export", name))
			continue
		}

		impl := reflect.MakeFunc(ft, exportCall(callCtx, name, fn, ft))
		var opts []catalog.MemberOption
		if sig := sigs[name]; sig != nil && len(sig.params) == ft.NumIn() {
			if pn := sig.paramNames(); pn != nil {
				opts = append(opts, catalog.Names(pn...))
			}
		}
		if err := typ.Static(name, impl.Interface(), opts...); err != nil {
			_ = inst.Close(ctx)
			return nil, err
		}
	}

	Logger().Info("loaded wasm module",
		zap.String("module", mod.FullName()),
		zap.Int("exports", len(typ.Members())))
	return mod, nil
}

// funcType builds the Go signature of an export. A WIT signature is used
// only when it agrees with the core signature slot for slot.
func funcType(def api.FunctionDefinition, sig *funcSignature) (reflect.Type, bool) {
	coreIn, coreOut := def.ParamTypes(), def.ResultTypes()

	in := make([]reflect.Type, len(coreIn))
	for i, vt := range coreIn {
		t, ok := coreGoType(vt)
		if !ok {
			return nil, false
		}
		in[i] = t
	}
	out := make([]reflect.Type, len(coreOut), len(coreOut)+1)
	for i, vt := range coreOut {
		t, ok := coreGoType(vt)
		if !ok {
			return nil, false
		}
		out[i] = t
	}

	if sig != nil && len(sig.params) == len(coreIn) && len(sig.results) == len(coreOut) {
		refinedIn := make([]reflect.Type, len(in))
		refinedOut := make([]reflect.Type, len(out))
		refined := true
		for i, p := range sig.params {
			t, ok := witGoType(p.typ, coreIn[i])
			if !ok {
				refined = false
				break
			}
			refinedIn[i] = t
		}
		for i, r := range sig.results {
			if !refined {
				break
			}
			t, ok := witGoType(r, coreOut[i])
			if !ok {
				refined = false
				break
			}
			refinedOut[i] = t
		}
		if refined {
			in, out = refinedIn, refinedOut
		}
	}

	return reflect.FuncOf(in, append(out, errorType), false), true
}

func exportCall(ctx context.Context, name string, fn api.Function, ft reflect.Type) func([]reflect.Value) []reflect.Value {
	nOut := ft.NumOut() - 1

	fail := func(err error) []reflect.Value {
		results := make([]reflect.Value, nOut+1)
		for i := 0; i < nOut; i++ {
			results[i] = reflect.Zero(ft.Out(i))
		}
		results[nOut] = reflect.ValueOf(&err).Elem()
		return results
	}

	return func(args []reflect.Value) []reflect.Value {
		stack := make([]uint64, len(args))
		for i, a := range args {
			raw, err := encodeValue(a)
			if err != nil {
				return fail(err)
			}
			stack[i] = raw
		}

		raw, err := fn.Call(ctx, stack...)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", name, err))
		}

		results := make([]reflect.Value, nOut+1)
		for i := 0; i < nOut; i++ {
			results[i] = decodeValue(raw[i], ft.Out(i))
		}
		results[nOut] = reflect.Zero(errorType)
		return results
	}
}
