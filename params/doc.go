// Package params describes formal parameter lists and reshapes runtime
// argument vectors to match them.
//
// A List is a tagged description of a signature: each Param is Fixed,
// Optional (with a default) or Variadic (a trailing slice). Adapt consumes
// only this description, so it works the same for members discovered by
// reflection, registered by hand, or exported from a WASM module.
//
//	g(a, b int, rest ...int)
//
//	Adapt([1 2], g)         -> [1 2 []int{}]
//	Adapt([1 2 3 4], g)     -> [1 2 []int{3 4}]
//	Adapt([1 2 []int{9}], g) -> [1 2 []int{9}]
//
// Omitted optional parameters are filled with Missing; the invoker swaps
// Missing for the declared default.
package params
