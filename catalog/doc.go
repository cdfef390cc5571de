// Package catalog is the type registry the bridge resolves names against.
//
// A Catalog holds Modules in load order; each Module holds named Types. A
// Type carries the members callers can reach by name: instance methods,
// statics, constructors, fields, properties, and the methods of interfaces
// it declares.
//
// Go has no overloading, so overloads are registered explicitly:
//
//	mod := catalog.NewModule("Samples", "1.0.0")
//	calc := mod.MustDefine("Samples.Calculator", (*Calculator)(nil))
//	calc.Static("Add", func(a, b int) int { return a + b })
//	calc.Static("Add", func(a, b float64) float64 { return a + b })
//
// Exported methods and fields of the sample's Go type are discovered by
// reflection when the type is defined.
package catalog
