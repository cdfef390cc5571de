package params

import (
	"fmt"
	"reflect"
	"strings"
)

// Kind tags a formal parameter.
type Kind uint8

const (
	// Fixed parameters must be supplied by the caller.
	Fixed Kind = iota
	// Optional parameters fall back to Param.Default when omitted.
	Optional
	// Variadic marks a trailing slice that collects any remaining arguments.
	Variadic
)

func (k Kind) String() string {
	switch k {
	case Fixed:
		return "fixed"
	case Optional:
		return "optional"
	case Variadic:
		return "variadic"
	default:
		return "unknown"
	}
}

// Param describes one formal parameter.
// For Variadic parameters Type is the slice type, not the element type.
type Param struct {
	Default any
	Type    reflect.Type
	Name    string
	Kind    Kind
}

// Elem returns the element type of a variadic parameter.
func (p Param) Elem() reflect.Type {
	if p.Kind != Variadic || p.Type == nil {
		return nil
	}
	return p.Type.Elem()
}

// List is an ordered formal parameter list.
type List []Param

// Variadic reports whether the last parameter collects trailing arguments.
func (l List) Variadic() bool {
	return len(l) > 0 && l[len(l)-1].Kind == Variadic
}

// Required returns the number of leading parameters a caller must supply.
func (l List) Required() int {
	n := 0
	for _, p := range l {
		if p.Kind != Fixed {
			break
		}
		n++
	}
	return n
}

// Types returns the declared parameter types in order.
func (l List) Types() []reflect.Type {
	out := make([]reflect.Type, len(l))
	for i, p := range l {
		out[i] = p.Type
	}
	return out
}

func (l List) String() string {
	parts := make([]string, len(l))
	for i, p := range l {
		var b strings.Builder
		if p.Name != "" {
			b.WriteString(p.Name)
			b.WriteByte(' ')
		}
		switch p.Kind {
		case Variadic:
			b.WriteString("...")
			b.WriteString(p.Elem().String())
		case Optional:
			b.WriteString(p.Type.String())
			b.WriteString(fmt.Sprintf(" = %v", p.Default))
		default:
			b.WriteString(p.Type.String())
		}
		parts[i] = b.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// FromFunc derives a parameter list from a function type, skipping the
// first skip inputs (a method expression's receiver, a context).
// A Go variadic function yields a trailing Variadic parameter.
func FromFunc(ft reflect.Type, skip int) List {
	n := ft.NumIn()
	if skip > n {
		skip = n
	}
	list := make(List, 0, n-skip)
	for i := skip; i < n; i++ {
		p := Param{Type: ft.In(i), Kind: Fixed}
		if ft.IsVariadic() && i == n-1 {
			p.Kind = Variadic
		}
		list = append(list, p)
	}
	return list
}

// WithDefaults marks the last len(defaults) non-variadic parameters as
// optional with the given default values.
func (l List) WithDefaults(defaults ...any) (List, error) {
	out := make(List, len(l))
	copy(out, l)

	end := len(out)
	if out.Variadic() {
		end--
	}
	if len(defaults) > end {
		return nil, fmt.Errorf("%d defaults for %d parameters", len(defaults), end)
	}
	start := end - len(defaults)
	for i, d := range defaults {
		out[start+i].Kind = Optional
		out[start+i].Default = d
	}
	return out, nil
}

// WithNames attaches parameter names in order; extra names are ignored.
func (l List) WithNames(names ...string) List {
	out := make(List, len(l))
	copy(out, l)
	for i := 0; i < len(names) && i < len(out); i++ {
		out[i].Name = names[i]
	}
	return out
}
