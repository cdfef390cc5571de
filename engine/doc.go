// Package engine loads core WebAssembly modules into the catalog.
//
// The engine wraps a wazero runtime. Each loaded module is compiled and
// instantiated once; its exported functions become static members of a
// single catalog type named "<module>.Exports", so they resolve, bind and
// invoke exactly like registered Go functions.
//
// # Signatures
//
// Core value types map to Go types directly:
//
//	i32 -> int32    i64 -> int64
//	f32 -> float32  f64 -> float64
//
// An optional WIT document refines these. A WIT function with the same name
// as an export supplies parameter names and narrower types (bool, u8..u64,
// s8..s64, char) when its flattened shape matches the core signature. Exports
// whose signature cannot be expressed are skipped and logged at debug level.
//
// Every export also returns an error. Traps surface there and are reported
// by the invoker as invocation failures without a stack trace.
//
// # Lifetime
//
// Instances are closed together with their catalog module, and every
// instance is closed by Engine.Close.
package engine
