// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (where in the call chain the error occurred) and
// Kind (error category). The Error type carries the member name and its owner, the
// Go type involved, a cause chain and, for invocation failures, a stack trace.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseSelect, errors.KindMissingMember).
//		Member("Samples.Calculator", "Add").
//		Detail("no overload accepts (string, bool)").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.MissingMember(errors.PhaseSelect, "Samples.Calculator", "Add", "")
//	err := errors.Arity("Samples.Calculator", "Add", 2, 1)
//
// All errors implement the standard error interface and support errors.Is/As.
// Innermost walks the cause chain to the error a host should be shown.
package errors
