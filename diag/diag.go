// Package diag formats failures for host display and keeps the most recent
// one for hosts that can only fetch it after a failed call.
//
// A Channel is a single slot. It is only meaningful when the host drives one
// call at a time; it is not synchronised.
package diag

import (
	"fmt"
	"iter"
	"strings"

	"github.com/wippyai/dynbridge/errors"
)

// FormatError renders err for the host:
//
//	Type:    <Go type of the innermost cause>
//	Message: <its message>
//	Method:  <owner.member that failed>
//	Stack trace:
//	<stack>
//
// Windows line endings are normalised to "\n".
func FormatError(err error) string {
	if err == nil {
		return ""
	}
	inner := errors.Innermost(err)
	out := fmt.Sprintf("Type:    %T\nMessage: %s\nMethod:  %s\nStack trace:\n%s\n\n",
		inner, inner.Error(), Method(err), Stack(err))
	return strings.ReplaceAll(out, "\r\n", "\n")
}

// Method returns "Owner.Member" from the outermost structured error that
// names a member, or "".
func Method(err error) string {
	for e := range chain(err) {
		if e.Member == "" {
			continue
		}
		if e.Owner == "" {
			return e.Member
		}
		return e.Owner + "." + e.Member
	}
	return ""
}

// Stack returns the first stack trace recorded in err's chain, or "".
func Stack(err error) string {
	for e := range chain(err) {
		if e.Stack != "" {
			return strings.TrimRight(e.Stack, "\n")
		}
	}
	return ""
}

func chain(err error) iter.Seq[*errors.Error] {
	return func(yield func(*errors.Error) bool) {
		for err != nil {
			var e *errors.Error
			if !errors.As(err, &e) {
				return
			}
			if !yield(e) {
				return
			}
			err = e.Cause
		}
	}
}

// Channel holds the most recent failure description under the two names
// hosts query.
type Channel struct {
	lastCall string
	last     string
}

// Clear empties both slots.
func (c *Channel) Clear() {
	c.lastCall = ""
	c.last = ""
}

// Record formats err into both slots and returns the description. A nil
// err leaves the channel unchanged.
func (c *Channel) Record(err error) string {
	if err == nil {
		return ""
	}
	desc := FormatError(err)
	c.lastCall = desc
	c.last = desc
	return desc
}

// LastCallFailure returns the description of the last failed call, or "".
func (c *Channel) LastCallFailure() string {
	return c.lastCall
}

// LastFailure returns the same description as LastCallFailure.
func (c *Channel) LastFailure() string {
	return c.last
}
