// Package dynbridge is a reflection-driven bridge that lets a host call into
// Go code by name.
//
// A host names a type and a member as strings and passes loosely typed
// arguments. The bridge finds the type, picks the best overload, fills in
// defaults and variadic parameters, invokes the member, and converts the
// result for the host. Failed calls are recorded so the host can fetch a
// readable description afterwards.
//
// # Architecture Overview
//
//	dynbridge/
//	├── errors/        Structured errors with phase and kind
//	├── coerce/        Conversion and widening rules between argument and parameter types
//	├── params/        Parameter descriptions, Missing sentinel, argument adaptation
//	├── catalog/       Registered types, members, fields and modules
//	├── resolver/      Type name resolution across loaded modules
//	├── binder/        Overload selection and scoring
//	├── invoke/        Reflective calls with panic capture
//	├── temporal/      UTC, POSIX seconds and R date day conversions
//	├── marshal/       Value marshalling and the pluggable converter
//	├── diag/          Last failure channel and formatting
//	├── engine/        WebAssembly modules as catalog types (wazero)
//	├── loader/        Module discovery by path or name
//	├── samples/       Built-in sample module
//	├── resource/      Object handle table
//	├── config/        YAML configuration and logger construction
//	├── runtime/       Host-facing facade
//	└── cmd/dynbridge  Command line and interactive console
//
// # Quick Start
//
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    return err
//	}
//	defer rt.Close(ctx)
//
//	if _, err := rt.LoadModule(ctx, "testdata/arith.wasm"); err != nil {
//	    return err
//	}
//	sum, err := rt.CallStaticMethod("arith.Exports", "add", 2, 3)
//
// See the runtime package for the full call surface.
package dynbridge
