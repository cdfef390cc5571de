package main

import (
	"reflect"
	"testing"
	"time"

	"github.com/wippyai/dynbridge/params"
	"github.com/wippyai/dynbridge/resource"
)

func TestParseArg(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"42", 42},
		{" -7 ", -7},
		{"2.5", 2.5},
		{"true", true},
		{"nil", nil},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{`"42"`, "42"},
		{"hello", "hello"},
		{"", ""},
	}
	for _, tt := range tests {
		got := parseArg(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseArg(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	if got := parseArgs("  "); got != nil {
		t.Errorf("blank = %v", got)
	}
	got := parseArgs("1, x,2.5")
	want := []any{1, "x", 2.5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseArgs = %#v", got)
	}
}

func TestResolveArgs(t *testing.T) {
	table := resource.NewTable()
	obj := &struct{ N int }{N: 1}
	h, err := table.Insert("T", obj)
	if err != nil {
		t.Fatal(err)
	}

	got, err := resolveArgs("@"+h.Short()+", 3", table)
	if err != nil {
		t.Fatalf("resolveArgs: %v", err)
	}
	if got[0] != obj || got[1] != 3 {
		t.Errorf("resolveArgs = %#v", got)
	}

	if _, err := resolveArgs("@deadbeef", table); err == nil {
		t.Error("unknown handle accepted")
	}
}

func TestArguments(t *testing.T) {
	m := newConsoleModel(options{})
	list := params.List{
		{Name: "a", Type: reflect.TypeOf(0), Kind: params.Fixed},
		{Name: "b", Type: reflect.TypeOf(""), Kind: params.Optional, Default: "x"},
		{Name: "rest", Type: reflect.TypeOf([]int(nil)), Kind: params.Variadic},
	}

	got, err := m.arguments(list, []string{"1", "", ""})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{1}) {
		t.Errorf("trailing blanks = %#v", got)
	}

	got, err = m.arguments(list, []string{"1", "y", "2, 3"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []any{1, "y", 2, 3}) {
		t.Errorf("variadic = %#v", got)
	}
}

func TestKeep(t *testing.T) {
	for _, v := range []any{&struct{}{}, struct{}{}, map[string]int{}} {
		if !keep(v) {
			t.Errorf("keep(%T) = false", v)
		}
	}
	for _, v := range []any{nil, 1, "s", []int{1}} {
		if keep(v) {
			t.Errorf("keep(%T) = true", v)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	tests := []struct {
		p    params.Param
		want string
	}{
		{params.Param{Type: reflect.TypeOf(0), Kind: params.Fixed}, "int"},
		{params.Param{Type: reflect.TypeOf(""), Kind: params.Optional, Default: "x"}, "optional string = x"},
		{params.Param{Type: reflect.TypeOf([]int(nil)), Kind: params.Variadic}, "variadic int, ..."},
	}
	for _, tt := range tests {
		if got := placeholder(tt.p); got != tt.want {
			t.Errorf("placeholder(%v) = %q, want %q", tt.p.Kind, got, tt.want)
		}
	}
}
