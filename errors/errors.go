package errors

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Phase indicates where in the call chain the error occurred
type Phase string

const (
	PhaseResolve  Phase = "resolve"  // type name resolution
	PhaseSelect   Phase = "select"   // overload selection
	PhaseAdapt    Phase = "adapt"    // argument reshaping
	PhaseInvoke   Phase = "invoke"   // member invocation
	PhaseMarshal  Phase = "marshal"  // host <-> runtime value conversion
	PhaseAccess   Phase = "access"   // field and property access
	PhaseLoad     Phase = "load"     // module loading
	PhaseRegister Phase = "register" // type and member registration
	PhaseConfig   Phase = "config"   // configuration
)

// Kind says what went wrong, independent of the phase
type Kind string

const (
	KindInvalidInput   Kind = "invalid_input"
	KindMissingMember  Kind = "missing_member"
	KindInvocation     Kind = "invocation"
	KindModuleNotFound Kind = "module_not_found"
	KindNotFound       Kind = "not_found"
	KindArity          Kind = "arity"
	KindTypeMismatch   Kind = "type_mismatch"
	KindRegistration   Kind = "registration"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Member string
	Owner  string
	GoType string
	Detail string
	Stack  string
}

// Error formats as "[phase] kind Owner.Member: detail (caused by: ...)"
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Member != "" {
		b.WriteString(" ")
		if e.Owner != "" {
			b.WriteString(e.Owner)
			b.WriteByte('.')
		}
		b.WriteString(e.Member)
	} else if e.Owner != "" {
		b.WriteString(" ")
		b.WriteString(e.Owner)
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap exposes Cause to errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error with the same phase and kind
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder assembles an *Error field by field
type Builder struct {
	err Error
}

// New starts a Builder for the given phase and kind
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Member sets the member name and its owning type or object
func (b *Builder) Member(owner, name string) *Builder {
	b.err.Owner = owner
	b.err.Member = name
	return b
}

// GoType records the Go type involved, usually of an argument
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value records the argument or name that was rejected
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause records the error being wrapped
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Stack attaches a captured stack trace
func (b *Builder) Stack(stack string) *Builder {
	b.err.Stack = stack
	return b
}

// Detail sets the message, formatting it when args are given
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build finishes the error
func (b *Builder) Build() *Error {
	return &b.err
}

// InvalidInput reports input the caller got wrong
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// MissingMember creates an error for a member that no overload matched
func MissingMember(phase Phase, owner, member, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingMember,
		Owner:  owner,
		Member: member,
		Detail: detail,
	}
}

// Invocation wraps a failure raised by the invoked member itself
func Invocation(owner, member string, cause error, stack string) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindInvocation,
		Owner:  owner,
		Member: member,
		Cause:  cause,
		Stack:  stack,
	}
}

// PanicError carries a value recovered from a panicking member.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Recovered turns a value recovered from a panicking member or accessor
// into an invocation error carrying the current stack. Call it from the
// deferred function that recovered r.
func Recovered(owner, member string, r any) *Error {
	cause, ok := r.(error)
	if !ok {
		cause = &PanicError{Value: r}
	}
	return Invocation(owner, member, cause, string(debug.Stack()))
}

// ModuleNotFound creates a module lookup error
func ModuleNotFound(name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindModuleNotFound,
		Detail: fmt.Sprintf("module %q not found", name),
		Value:  name,
	}
}

// NotFound reports a missing type, module member or handle by name
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
		Value:  name,
	}
}

// Arity creates an argument count error
func Arity(owner, member string, want, got int) *Error {
	return &Error{
		Phase:  PhaseInvoke,
		Kind:   KindArity,
		Owner:  owner,
		Member: member,
		Detail: fmt.Sprintf("expected %d arguments, got %d", want, got),
	}
}

// TypeMismatch creates a conversion error
func TypeMismatch(phase Phase, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		GoType: fmt.Sprintf("%T", value),
		Detail: fmt.Sprintf("cannot convert to %s", target),
		Value:  value,
	}
}

// Registration reports a conflicting or malformed catalog entry
func Registration(owner, name string, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Owner:  owner,
		Member: name,
		Detail: detail,
	}
}

// Unsupported reports a signature or value the bridge cannot express
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Wrap attaches phase, kind and a message to err
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Load reports a module that could not be read, compiled or instantiated
func Load(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInvalidData,
		Detail: detail,
		Cause:  cause,
	}
}

// Innermost follows the Unwrap chain down to the deepest cause.
// Joined errors are followed through their first element.
func Innermost(err error) error {
	if err == nil {
		return nil
	}
	for {
		var next error
		switch u := err.(type) {
		case interface{ Unwrap() error }:
			next = u.Unwrap()
		case interface{ Unwrap() []error }:
			if errs := u.Unwrap(); len(errs) > 0 {
				next = errs[0]
			}
		}
		if next == nil {
			return err
		}
		err = next
	}
}

// HasKind reports whether any *Error in err's chain has the given kind
func HasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// As is errors.As from the standard library, re-exported so callers
// importing this package do not need both.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is is errors.Is from the standard library
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
