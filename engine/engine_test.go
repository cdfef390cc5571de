package engine

import (
	"context"
	"os"
	"reflect"
	"strings"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/invoke"
)

func readTestdata(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return data
}

func TestLoad_CoreTypes(t *testing.T) {
	ctx := context.Background()
	e := New(ctx, nil)
	defer e.Close(ctx)

	mod, err := e.Load(ctx, Source{Name: "arith", Wasm: readTestdata(t, "arith.wasm")})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if mod.FullName() != "arith, Version=0.0.0" {
		t.Errorf("FullName = %q", mod.FullName())
	}

	typ := mod.Type("arith.Exports")
	if typ == nil {
		t.Fatal("exports type missing")
	}
	add := typ.Statics("add")
	if len(add) != 1 {
		t.Fatalf("add overloads = %d", len(add))
	}
	if add[0].Params.String() != "(int32, int32)" {
		t.Errorf("add params = %s", add[0].Params)
	}
	if !add[0].ReturnsError() {
		t.Error("exports should report traps through an error result")
	}

	got, err := invoke.Call(nil, add[0], []any{2, 3})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got != int32(5) {
		t.Errorf("add(2, 3) = %#v, want int32(5)", got)
	}
}

func TestLoad_WITRefinesTypes(t *testing.T) {
	ctx := context.Background()
	e := New(ctx, nil)
	defer e.Close(ctx)

	mod, err := e.Load(ctx, Source{
		Name:    "arith",
		Version: "1.0.0",
		Wasm:    readTestdata(t, "arith.wasm"),
		WIT:     string(readTestdata(t, "arith.wit")),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	typ := mod.Type("arith.Exports")
	add := typ.Statics("add")[0]
	if add.Params.String() != "(a uint32, b uint32)" {
		t.Errorf("add params = %s", add.Params)
	}
	got, err := invoke.Call(nil, add, []any{uint32(4000000000), uint32(1)})
	if err != nil {
		t.Fatal(err)
	}
	if got != uint32(4000000001) {
		t.Errorf("add = %#v", got)
	}

	div := typ.Statics("div")[0]
	got, err = invoke.Call(nil, div, []any{-9, 3})
	if err != nil || got != int32(-3) {
		t.Errorf("div(-9, 3) = %#v, %v", got, err)
	}
}

func TestLoad_TrapBecomesInvocationError(t *testing.T) {
	ctx := context.Background()
	e := New(ctx, nil)
	defer e.Close(ctx)

	mod, err := e.Load(ctx, Source{Name: "arith", Wasm: readTestdata(t, "arith.wasm")})
	if err != nil {
		t.Fatal(err)
	}

	div := mod.Type("arith.Exports").Statics("div")[0]
	_, err = invoke.Call(nil, div, []any{1, 0})
	if !errors.HasKind(err, errors.KindInvocation) {
		t.Fatalf("err = %v, want invocation", err)
	}
	if !strings.Contains(errors.Innermost(err).Error(), "divide by zero") {
		t.Errorf("innermost = %v", errors.Innermost(err))
	}
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	e := New(ctx, &Config{MemoryLimitPages: 16})
	defer e.Close(ctx)

	if _, err := e.Load(ctx, Source{Wasm: readTestdata(t, "arith.wasm")}); !errors.HasKind(err, errors.KindInvalidInput) {
		t.Errorf("missing name err = %v", err)
	}
	if _, err := e.Load(ctx, Source{Name: "bad", Wasm: []byte("not wasm")}); !errors.HasKind(err, errors.KindInvalidData) {
		t.Errorf("bad binary err = %v", err)
	}
	if _, err := e.Load(ctx, Source{Name: "nowit", Wasm: readTestdata(t, "arith.wasm"), WIT: "world w {}"}); err == nil {
		t.Error("WIT without functions should fail")
	}
}

func TestModuleClose(t *testing.T) {
	ctx := context.Background()
	e := New(ctx, nil)
	defer e.Close(ctx)

	mod, err := e.Load(ctx, Source{Name: "arith", Wasm: readTestdata(t, "arith.wasm")})
	if err != nil {
		t.Fatal(err)
	}
	if err := mod.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	add := mod.Type("arith.Exports").Statics("add")[0]
	if _, err := invoke.Call(nil, add, []any{1, 2}); err == nil {
		t.Error("calling into a closed module should fail")
	}
}

func TestParseWitFunctions(t *testing.T) {
	funcs, err := parseWitFunctions(`
		export scale: func(v: f64, by: s32) -> f64;
		export pair: func() -> (u8, bool);
		export touch: func(items: list<u32>, flag: bool);
	`)
	if err != nil {
		t.Fatalf("parseWitFunctions: %v", err)
	}

	scale := funcs["scale"]
	if scale == nil || len(scale.params) != 2 || scale.params[1].name != "by" {
		t.Fatalf("scale = %+v", scale)
	}
	if !reflect.DeepEqual(scale.paramNames(), []string{"v", "by"}) {
		t.Errorf("paramNames = %v", scale.paramNames())
	}
	if _, ok := scale.results[0].(wit.F64); !ok {
		t.Errorf("scale result = %T", scale.results[0])
	}

	if pair := funcs["pair"]; len(pair.results) != 2 || len(pair.params) != 0 {
		t.Errorf("pair = %+v", pair)
	}
	if touch := funcs["touch"]; len(touch.params) != 2 || len(touch.results) != 0 {
		t.Errorf("touch = %+v", touch)
	}
}

func TestSplitParams(t *testing.T) {
	got := splitParams("a: u32, b: list<tuple<u8, u8>>, c: bool")
	want := []string{"a: u32", "b: list<tuple<u8, u8>>", "c: bool"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitParams = %q", got)
	}
}

func TestValueRoundTrip(t *testing.T) {
	values := []any{true, int8(-3), int16(-300), int32(-70000), uint8(200), uint16(60000), uint32(4000000000),
		int64(-1 << 40), uint64(1 << 63), float32(1.5), float64(-2.25)}
	for _, v := range values {
		rv := reflect.ValueOf(v)
		raw, err := encodeValue(rv)
		if err != nil {
			t.Fatalf("encode %T: %v", v, err)
		}
		if back := decodeValue(raw, rv.Type()).Interface(); back != v {
			t.Errorf("%T round trip = %v, want %v", v, back, v)
		}
	}

	if _, err := encodeValue(reflect.ValueOf("s")); err == nil {
		t.Error("strings cannot be encoded")
	}
}
