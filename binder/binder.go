// Package binder picks the overload that best matches a vector of runtime
// argument values.
//
// Each argument is scored against its parameter:
//
//	0  identical type
//	1  assignable (interface satisfaction, identical underlying type)
//	2  lossless numeric widening, or nil into a nilable parameter
//	3  any value into an empty interface
//
// The candidate with the lowest total wins; ties keep declaration order. A
// nil argument is treated as untyped and only matches nilable parameters,
// so f(string) beats f(int) for a nil. When no candidate is applicable the
// first candidate of that name is returned regardless of signature; the
// invoker then reports any mismatch.
package binder

import (
	"reflect"

	"go.uber.org/zap"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/coerce"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/params"
)

const (
	scoreExact = iota
	scoreAssignable
	scoreWidening
	scoreAny
)

// ArgTypes returns the dynamic type of each argument; nil arguments yield a
// nil type.
func ArgTypes(args []any) []reflect.Type {
	out := make([]reflect.Type, len(args))
	for i, a := range args {
		if a != nil {
			out[i] = reflect.TypeOf(a)
		}
	}
	return out
}

// Select returns the best candidate for args. owner and name are used for
// the error when there are no candidates at all.
func Select(owner, name string, candidates []*catalog.Member, args []reflect.Type) (*catalog.Member, error) {
	if len(candidates) == 0 {
		return nil, errors.MissingMember(errors.PhaseSelect, owner, name, "no public member with this name")
	}

	var best *catalog.Member
	bestScore := -1
	for _, m := range candidates {
		score, ok := Applicable(m.Params, args)
		if !ok {
			continue
		}
		if best == nil || score < bestScore {
			best, bestScore = m, score
		}
	}

	if best == nil {
		Logger().Debug("no overload matches argument types, using first by name",
			zap.String("owner", owner),
			zap.String("member", name),
			zap.Int("candidates", len(candidates)))
		return candidates[0], nil
	}
	return best, nil
}

// Applicable scores args against a parameter list, returning false when the
// list cannot accept them.
func Applicable(list params.List, args []reflect.Type) (int, bool) {
	np, na := len(list), len(args)

	if !list.Variadic() {
		if na > np || na < list.Required() {
			return 0, false
		}
		return scoreAll(list[:na], args)
	}

	fixed := np - 1
	if na < fixed {
		if na < list.Required() {
			return 0, false
		}
		return scoreAll(list[:na], args)
	}

	head, ok := scoreAll(list[:fixed], args[:fixed])
	if !ok {
		return 0, false
	}
	tail := args[fixed:]
	rest := list[fixed]

	best, found := 0, false
	if len(tail) == 1 && tail[0] != nil {
		if s, ok := Score(tail[0], rest.Type); ok {
			best, found = s, true
		}
	}

	expanded := 0
	for _, at := range tail {
		s, ok := Score(at, rest.Elem())
		if !ok {
			expanded = -1
			break
		}
		expanded += s
	}
	if expanded >= 0 && (!found || expanded < best) {
		best, found = expanded, true
	}

	if !found {
		return 0, false
	}
	return head + best, true
}

func scoreAll(list params.List, args []reflect.Type) (int, bool) {
	total := 0
	for i, p := range list {
		s, ok := Score(args[i], p.Type)
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

// Score rates passing a value of type arg to a parameter of type param.
// A nil arg is an untyped null.
func Score(arg, param reflect.Type) (int, bool) {
	switch {
	case arg == nil:
		if coerce.Nilable(param) {
			return scoreWidening, true
		}
		return 0, false
	case arg == param:
		return scoreExact, true
	case coerce.IsAny(param):
		return scoreAny, true
	case arg.AssignableTo(param):
		return scoreAssignable, true
	case coerce.Widens(arg, param):
		return scoreWidening, true
	}
	return 0, false
}
