package catalog

import (
	"reflect"
)

// Reflect builds a type descriptor for goType by discovery: every exported
// method becomes an instance member and every exported struct field an
// instance field. The descriptor belongs to no module.
func Reflect(goType reflect.Type) *Type {
	t := newType(nil, goType.String(), goType)
	discover(t)
	return t
}

func discover(t *Type) {
	gt := t.GoType
	if gt == nil {
		return
	}

	if gt.Kind() != reflect.Interface {
		for i := 0; i < gt.NumMethod(); i++ {
			method := gt.Method(i)
			if !method.IsExported() {
				continue
			}
			m, err := memberFromValue(t, t.FullName, method.Name, method.Func, false, true, nil)
			if err != nil {
				continue
			}
			t.methods = append(t.methods, m)
		}
	}

	st := gt
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() != reflect.Struct {
		return
	}
	for _, sf := range reflect.VisibleFields(st) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		t.fields = append(t.fields, &Field{
			Owner: t,
			Name:  sf.Name,
			Type:  sf.Type,
			index: sf.Index,
		})
	}
}
