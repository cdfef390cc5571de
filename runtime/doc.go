// Package runtime is the host-facing facade of the bridge.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	mod, err := samples.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Load(mod); err != nil {
//	    log.Fatal(err)
//	}
//
//	sum, err := rt.CallStaticMethod("Samples.Calculator", "Add", 2, 3)
//	if err != nil {
//	    fmt.Println(rt.LastFailure())
//	}
//
// # Names
//
// Type names are resolved by the resolver package:
//
//	"Name"                      core module first, then every loaded module
//	"Name, Module"              only the named module
//	"Name, Module, Version=x"   exact module version
//
// # Calls
//
// Every entry point clears the diagnostics channel, runs, and on failure
// records a description of the innermost cause before returning the error
// unchanged. LastCallFailure and LastFailure expose that description.
//
// Static calls relabel date-time arguments as UTC. Results of calls and
// field reads pass through the marshaller: date-times are converted to UTC
// and, when a converter is installed, every value goes through
// ConvertToHost. CreateInstance returns the instance as constructed.
//
// # Modules
//
// LoadModule accepts a path to a .wasm file, a fully qualified
// "Name, Version=x.y.z" or a bare module name. Names are looked up among the
// modules given to Loader().Provide.
//
//	rt.Loader().Provide(mod)
//	_, err := rt.LoadModule(ctx, "Samples")
//
// Exported functions of a .wasm file become statics of "<name>.Exports".
//
// # Temporal Helpers
//
// The core type Bridge.Facade exposes the epoch conversions as statics so
// hosts without direct access to the Go API can reach them:
//
//	days, _ := rt.CallStaticMethod("Bridge.Facade", "DateDays", someTime)
//
// A Runtime is not safe for concurrent use.
package runtime
