package catalog

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/params"
)

// Interface is a named interface a type declares it implements. Its methods
// are overload candidates for instance calls, after the class's own.
type Interface struct {
	GoType reflect.Type
	Name   string
}

// Type describes a registered type: its members, fields and properties.
type Type struct {
	GoType     reflect.Type
	Module     *Module
	FullName   string
	ctors      []*Member
	methods    []*Member
	statics    []*Member
	fields     []*Field
	props      []*Property
	interfaces []Interface
}

func newType(mod *Module, fullName string, goType reflect.Type) *Type {
	return &Type{
		Module:   mod,
		FullName: fullName,
		GoType:   goType,
	}
}

func (t *Type) String() string {
	return t.FullName
}

// QualifiedName returns "FullName, Module, Version=x" for module-owned types.
func (t *Type) QualifiedName() string {
	if t.Module == nil {
		return t.FullName
	}
	return t.FullName + ", " + t.Module.FullName()
}

// Method registers an instance method overload. fn takes the receiver as
// its first parameter, like a method expression: func(*T, args...) results.
func (t *Type) Method(name string, fn any, opts ...MemberOption) error {
	m, err := newMember(t, t.FullName, name, fn, false, true, opts)
	if err != nil {
		return err
	}
	if t.GoType != nil {
		recv := m.fn.Type().In(0)
		if !t.GoType.AssignableTo(recv) && !(t.GoType.Kind() == reflect.Pointer && t.GoType.Elem().AssignableTo(recv)) {
			return errors.Registration(t.FullName, name, fmt.Sprintf("receiver %s does not accept %s", recv, t.GoType))
		}
	}
	t.methods = append(t.methods, m)
	return nil
}

// Static registers a static member overload.
func (t *Type) Static(name string, fn any, opts ...MemberOption) error {
	m, err := newMember(t, t.FullName, name, fn, true, false, opts)
	if err != nil {
		return err
	}
	t.statics = append(t.statics, m)
	return nil
}

// Constructor registers a constructor overload. fn returns the new instance,
// optionally followed by an error.
func (t *Type) Constructor(fn any, opts ...MemberOption) error {
	m, err := newMember(t, t.FullName, ".ctor", fn, true, false, opts)
	if err != nil {
		return err
	}
	if len(m.Results) != 1 {
		return errors.Registration(t.FullName, ".ctor", "constructor must return exactly one value")
	}
	t.ctors = append(t.ctors, m)
	return nil
}

// Implements declares that instances satisfy an interface. iface is a nil
// pointer to the interface, e.g. (*fmt.Stringer)(nil).
func (t *Type) Implements(name string, iface any) error {
	it := reflect.TypeOf(iface)
	if it != nil && it.Kind() == reflect.Pointer {
		it = it.Elem()
	}
	if it == nil || it.Kind() != reflect.Interface {
		return errors.Registration(t.FullName, name, "not an interface")
	}
	if t.GoType != nil && !t.GoType.Implements(it) {
		return errors.Registration(t.FullName, name, fmt.Sprintf("%s does not implement %s", t.GoType, it))
	}
	t.interfaces = append(t.interfaces, Interface{Name: name, GoType: it})
	return nil
}

// StaticField registers a package-level variable as a static field.
// ptr must be a non-nil pointer to the variable.
func (t *Type) StaticField(name string, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Registration(t.FullName, name, "static field needs a non-nil pointer")
	}
	t.fields = append(t.fields, &Field{
		Owner:  t,
		Name:   name,
		Type:   rv.Type().Elem(),
		ptr:    rv,
		Static: true,
	})
	return nil
}

// Property registers an instance property. get is func(*T) V or
// func(*T) (V, error); set is func(*T, V) or func(*T, V) error. Either may be nil.
func (t *Type) Property(name string, get, set any) error {
	return t.addProperty(name, get, set, false)
}

// StaticProperty registers a static property: get is func() V, set is func(V).
func (t *Type) StaticProperty(name string, get, set any) error {
	return t.addProperty(name, get, set, true)
}

func (t *Type) addProperty(name string, get, set any, static bool) error {
	p := &Property{Owner: t, Name: name, Static: static}
	skip := 1
	if static {
		skip = 0
	}

	if get != nil {
		gv := reflect.ValueOf(get)
		gt := gv.Type()
		if gv.Kind() != reflect.Func || gt.NumIn() != skip || gt.NumOut() < 1 || gt.NumOut() > 2 {
			return errors.Registration(t.FullName, name, "malformed getter")
		}
		p.get = gv
		p.Type = gt.Out(0)
	}
	if set != nil {
		sv := reflect.ValueOf(set)
		st := sv.Type()
		if sv.Kind() != reflect.Func || st.NumIn() != skip+1 {
			return errors.Registration(t.FullName, name, "malformed setter")
		}
		if p.Type != nil && st.In(skip) != p.Type {
			return errors.Registration(t.FullName, name, "getter and setter types differ")
		}
		p.set = sv
		p.Type = st.In(skip)
	}
	if p.Type == nil {
		return errors.Registration(t.FullName, name, "property needs a getter or a setter")
	}
	t.props = append(t.props, p)
	return nil
}

// Defaults makes the trailing parameters of every overload of name optional.
// Overloads with too few parameters are left alone.
func (t *Type) Defaults(name string, values ...any) error {
	applied := false
	for _, group := range [][]*Member{t.methods, t.statics} {
		for _, m := range group {
			if m.Name != name {
				continue
			}
			list, err := m.Params.WithDefaults(values...)
			if err != nil {
				continue
			}
			m.Params = list
			applied = true
		}
	}
	if !applied {
		return errors.Registration(t.FullName, name, "no overload accepts these defaults")
	}
	return nil
}

// Constructors returns constructor overloads in declaration order.
func (t *Type) Constructors() []*Member {
	return t.ctors
}

// Methods returns the class's public instance overloads of name.
func (t *Type) Methods(name string) []*Member {
	return filter(t.methods, name)
}

// Statics returns the static overloads of name.
func (t *Type) Statics(name string) []*Member {
	return filter(t.statics, name)
}

// Interfaces returns the declared interfaces in declaration order.
func (t *Type) Interfaces() []Interface {
	return t.interfaces
}

// InterfaceMethods builds the candidates of name declared by each
// implemented interface. Members are built per call and not retained.
func (t *Type) InterfaceMethods(name string) []*Member {
	var out []*Member
	for _, it := range t.interfaces {
		im, ok := it.GoType.MethodByName(name)
		if !ok {
			continue
		}
		m := &Member{
			fn:     reflect.Zero(im.Type),
			iface:  it.GoType,
			Owner:  t,
			Name:   name,
			Scope:  it.Name,
			Params: params.FromFunc(im.Type, 0),
		}
		m.Results, m.errOut = results(im.Type)
		out = append(out, m)
	}
	return out
}

// Candidates returns every overload of name an instance or static call may
// bind to, class members first, then interface members.
func (t *Type) Candidates(name string, static bool) []*Member {
	if static {
		return t.Statics(name)
	}
	return append(t.Methods(name), t.InterfaceMethods(name)...)
}

// FieldNamed returns the public field called name, or nil.
func (t *Type) FieldNamed(name string, static bool) *Field {
	for _, f := range t.fields {
		if f.Name == name && f.Static == static {
			return f
		}
	}
	return nil
}

// PropertyNamed returns the property called name, or nil.
func (t *Type) PropertyNamed(name string, static bool) *Property {
	for _, p := range t.props {
		if p.Name == name && p.Static == static {
			return p
		}
	}
	return nil
}

// MemberNames returns the sorted, distinct names of every member, field and
// property, including those declared by implemented interfaces.
func (t *Type) MemberNames() []string {
	seen := make(map[string]bool)
	add := func(name string) { seen[name] = true }

	for _, group := range [][]*Member{t.methods, t.statics} {
		for _, m := range group {
			add(m.Name)
		}
	}
	if len(t.ctors) > 0 {
		add(".ctor")
	}
	for _, f := range t.fields {
		add(f.Name)
	}
	for _, p := range t.props {
		add(p.Name)
	}
	for _, it := range t.interfaces {
		for i := 0; i < it.GoType.NumMethod(); i++ {
			add(it.GoType.Method(i).Name)
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Members returns every method and static overload in declaration order.
func (t *Type) Members() []*Member {
	out := make([]*Member, 0, len(t.methods)+len(t.statics))
	out = append(out, t.methods...)
	return append(out, t.statics...)
}

// Fields returns every public field.
func (t *Type) Fields() []*Field {
	return t.fields
}

// Properties returns every property.
func (t *Type) Properties() []*Property {
	return t.props
}

// Zero creates an instance without a registered constructor: a pointer to a
// new zero value for pointer types, the zero value otherwise.
func (t *Type) Zero() (any, error) {
	if t.GoType == nil {
		return nil, errors.New(errors.PhaseInvoke, errors.KindUnsupported).
			Member(t.FullName, ".ctor").
			Detail("type has no Go representation and no constructor").
			Build()
	}
	if t.GoType.Kind() == reflect.Pointer {
		return reflect.New(t.GoType.Elem()).Interface(), nil
	}
	return reflect.Zero(t.GoType).Interface(), nil
}

func filter(members []*Member, name string) []*Member {
	var out []*Member
	for _, m := range members {
		if m.Name == name {
			out = append(out, m)
		}
	}
	return out
}
