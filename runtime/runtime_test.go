package runtime

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/loader"
	"github.com/wippyai/dynbridge/marshal"
	"github.com/wippyai/dynbridge/samples"
)

var plus2 = time.FixedZone("UTC+2", 2*60*60)

func newRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()
	ctx := context.Background()
	rt, err := New(ctx, append([]Option{WithLocation(plus2)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close(ctx) })

	mod, err := samples.New()
	require.NoError(t, err)
	require.NoError(t, rt.Load(mod))
	return rt
}

type echo struct{}

func echoModule(t *testing.T) *catalog.Module {
	t.Helper()
	mod := catalog.NewModule("Test", "1.0.0")
	typ := mod.MustDefine("Test.Echo", (*echo)(nil))
	require.NoError(t, typ.Method("F", func(*echo, int) string { return "int" }))
	require.NoError(t, typ.Method("F", func(*echo, string) string { return "string" }))
	require.NoError(t, typ.Static("G", func(a, b int, rest ...int) []int { return rest }, catalog.Names("a", "b", "rest")))
	return mod
}

func TestCallStaticMethod_Overloads(t *testing.T) {
	rt := newRuntime(t)

	tests := []struct {
		method string
		args   []any
		want   any
	}{
		{"Add", []any{2, 3}, 5},
		{"Add", []any{1.5, 2.0}, 3.5},
		{"Add", []any{"a", "b"}, "ab"},
		{"Describe", []any{7}, "int 7"},
		{"Describe", []any{"x"}, `string "x"`},
		{"Sum", []any{1, 2, 3.5}, 6.5},
		{"Sum", nil, 0.0},
		{"Scale", []any{3.0}, 6.0},
		{"Scale", []any{3.0, 3.0, 1.0}, 10.0},
	}
	for _, tt := range tests {
		got, err := rt.CallStaticMethod("Samples.Calculator", tt.method, tt.args...)
		require.NoError(t, err, "%s%v", tt.method, tt.args)
		assert.Equal(t, tt.want, got, "%s%v", tt.method, tt.args)
	}
}

func TestCallInstanceMethod_IntOrString(t *testing.T) {
	rt := newRuntime(t)
	require.NoError(t, rt.Load(echoModule(t)))
	obj := &echo{}

	got, err := rt.CallInstanceMethod(obj, "F", 1)
	require.NoError(t, err)
	assert.Equal(t, "int", got)

	got, err = rt.CallInstanceMethod(obj, "F", "s")
	require.NoError(t, err)
	assert.Equal(t, "string", got)

	// nil binds to the reference-like parameter
	got, err = rt.CallInstanceMethod(obj, "F", nil)
	require.NoError(t, err)
	assert.Equal(t, "string", got)
}

func TestCallStaticMethod_PacksVariadic(t *testing.T) {
	rt := newRuntime(t)
	require.NoError(t, rt.Load(echoModule(t)))

	got, err := rt.CallStaticMethod("Test.Echo", "G", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{}, got)

	got, err = rt.CallStaticMethod("Test.Echo", "G", 1, 2, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, got)

	existing := []int{7, 8}
	got, err = rt.CallStaticMethod("Test.Echo", "G", 1, 2, existing)
	require.NoError(t, err)
	require.Equal(t, existing, got)
	assert.Same(t, &existing[0], &got.([]int)[0])
}

func TestCallInstanceMethod_MissingMember(t *testing.T) {
	rt := newRuntime(t)
	p, err := rt.CreateInstance("Samples.Person", "Ada", "Lovelace")
	require.NoError(t, err)

	_, err = rt.CallInstanceMethod(p, "Fly", 1)
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindMissingMember))
	assert.Contains(t, rt.LastFailure(), "Fly")
	assert.Equal(t, rt.LastFailure(), rt.LastCallFailure())

	_, err = rt.CallInstanceMethod(nil, "Name")
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
}

func TestTypeNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	rt := newRuntime(t, WithLogger(zap.New(core)))

	typ, err := rt.GetType("No.Such.Type")
	assert.NoError(t, err)
	assert.Nil(t, typ)
	assert.Equal(t, 1, logs.FilterMessage("type not found").Len())
	assert.NotEmpty(t, rt.LastFailure())

	_, err = rt.CallStaticMethod("No.Such.Type", "Anything")
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
	assert.Contains(t, err.Error(), "No.Such.Type")

	_, err = rt.CreateInstance("No.Such.Type")
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))

	_, err = rt.CallStaticMethod("Samples.Calculator, Nowhere", "Add", 1, 2)
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
	assert.Equal(t, 1, logs.FilterMessage("module not found").Len())

	typ, err = rt.GetType("")
	assert.Nil(t, typ)
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
	assert.Contains(t, rt.LastFailure(), "missing type name")

	typ, err = rt.GetType("Samples.Calculator, Samples, Version=1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "Samples.Calculator", typ.FullName)
	assert.Empty(t, rt.LastFailure())
}

func TestDiagnostics(t *testing.T) {
	rt := newRuntime(t)

	_, err := rt.CallStaticMethod("Samples.Calculator", "Divide", 1, 0)
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindInvocation))
	failure := rt.LastCallFailure()
	assert.Contains(t, failure, "Message: division of 1 by zero")
	assert.Contains(t, failure, "Method:  Samples.Calculator.Divide")

	got, err := rt.CallStaticMethod("Samples.Calculator", "Divide", 9, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Empty(t, rt.LastCallFailure())
	assert.Empty(t, rt.LastFailure())

	_, err = rt.CallStaticMethod("Samples.Calendar", "Explode", "boom")
	require.Error(t, err)
	failure = rt.LastFailure()
	assert.Contains(t, failure, "Type:    *errors.PanicError")
	assert.Contains(t, failure, "panic: boom")
	stack := failure[strings.Index(failure, "Stack trace:\n"):]
	assert.Contains(t, stack, "goroutine")
}

func TestMarshalling_NoConverter(t *testing.T) {
	rt := newRuntime(t)
	assert.False(t, rt.HasConverter())

	at := time.Date(2024, 3, 1, 10, 0, 0, 0, plus2)
	got, err := rt.CallStaticMethod("Samples.Calendar", "AddDays", at, 1)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), got)
	assert.Equal(t, time.UTC, got.(time.Time).Location())

	zone, err := rt.CallStaticMethod("Samples.Calendar", "Zone", at)
	require.NoError(t, err)
	assert.Equal(t, "UTC", zone)

	p, err := rt.CreateInstance("Samples.Person", "Ada", "Lovelace", at)
	require.NoError(t, err)
	born, err := rt.GetFieldOrProperty(p, "Born")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, born.(time.Time).Location())
	assert.True(t, at.Equal(born.(time.Time)))

	span, err := rt.CallStaticMethod("Samples.Calendar", "Span", []time.Time{at, at.Add(time.Hour)})
	require.NoError(t, err)
	for _, d := range span.([]time.Time) {
		assert.Equal(t, time.UTC, d.Location())
	}

	name, err := rt.CallInstanceMethod(p, "Name")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", name)

	wrapped, err := rt.WrapHostValue(map[string]any{"a": 1})
	require.NoError(t, err)
	assert.Nil(t, wrapped)
}

func TestMarshalling_Converter(t *testing.T) {
	rt := newRuntime(t, WithConverter(marshal.Funcs{
		ToHost: func(v any) (any, error) {
			if n, ok := v.(int); ok {
				return float64(n), nil
			}
			return v, nil
		},
		FromHost: func(v any) (any, error) {
			return []any{v}, nil
		},
	}))
	assert.True(t, rt.HasConverter())

	got, err := rt.CallStaticMethod("Samples.Calculator", "Add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)

	wrapped, err := rt.WrapHostValue("frame")
	require.NoError(t, err)
	assert.Equal(t, []any{"frame"}, wrapped)

	rt.SetConverter(nil)
	assert.False(t, rt.HasConverter())
	got, err = rt.CallStaticMethod("Samples.Calculator", "Add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, got)
}

func TestCreateInstance(t *testing.T) {
	rt := newRuntime(t)

	c, err := rt.CreateInstance("Samples.Calculator")
	require.NoError(t, err)
	assert.Equal(t, &samples.Calculator{}, c)

	c, err = rt.CreateInstance("Samples.Calculator", 4.5)
	require.NoError(t, err)
	recalled, err := rt.CallInstanceMethod(c, "Recall")
	require.NoError(t, err)
	assert.Equal(t, 4.5, recalled)

	p, err := rt.CreateInstance("Samples.Person", "Ada", "Lovelace")
	require.NoError(t, err)
	require.IsType(t, &samples.Person{}, p)

	greeting, err := rt.CallInstanceMethod(p, "Greet")
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada Lovelace!", greeting)

	greeting, err = rt.CallInstanceMethod(p, "Greet", "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hi, Ada Lovelace!", greeting)

	_, err = rt.CreateInstance("Samples.Person")
	assert.True(t, errors.HasKind(err, errors.KindArity))

	_, err = rt.CreateInstance("Samples.Calendar")
	assert.True(t, errors.HasKind(err, errors.KindUnsupported))
}

func TestFieldsAndProperties(t *testing.T) {
	rt := newRuntime(t)
	p, err := rt.CreateInstance("Samples.Person", "Ada", "Lovelace")
	require.NoError(t, err)

	first, err := rt.GetFieldOrProperty(p, "FirstName")
	require.NoError(t, err)
	assert.Equal(t, "Ada", first)

	require.NoError(t, rt.SetFieldOrProperty(p, "FirstName", "Augusta"))
	initials, err := rt.GetFieldOrProperty(p, "Initials")
	require.NoError(t, err)
	assert.Equal(t, "AL", initials)

	require.NoError(t, rt.SetFieldOrProperty(p, "Nickname", "Ada"))
	nick, err := rt.GetFieldOrProperty(p, "Nickname")
	require.NoError(t, err)
	assert.Equal(t, "Ada", nick)

	err = rt.SetFieldOrProperty(p, "Nickname", "two words")
	assert.True(t, errors.HasKind(err, errors.KindInvocation))
	assert.Contains(t, rt.LastFailure(), "contains whitespace")

	err = rt.SetFieldOrProperty(p, "Initials", "XX")
	assert.True(t, errors.HasKind(err, errors.KindUnsupported))

	_, err = rt.GetFieldOrProperty(p, "Missing")
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
	assert.Contains(t, err.Error(), "'Missing' not found")

	err = rt.SetFieldOrProperty(nil, "FirstName", "x")
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
}

type box struct{}

func TestPropertyAccessorPanics(t *testing.T) {
	rt := newRuntime(t)
	mod := catalog.NewModule("Boxes", "1.0.0")
	typ := mod.MustDefine("Boxes.Box", (*box)(nil))
	require.NoError(t, typ.Property("Boom",
		func(*box) int { panic("getter blew up") },
		func(*box, int) { panic("setter blew up") }))
	require.NoError(t, typ.StaticProperty("Static", func() int { panic("static getter blew up") }, nil))
	require.NoError(t, rt.Load(mod))

	_, err := rt.GetFieldOrProperty(&box{}, "Boom")
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindInvocation))
	var pe *errors.PanicError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "getter blew up", pe.Value)
	failure := rt.LastFailure()
	assert.Contains(t, failure, "Method:  Boxes.Box.Boom")
	assert.Contains(t, failure, "goroutine")

	err = rt.SetFieldOrProperty(&box{}, "Boom", 1)
	assert.True(t, errors.HasKind(err, errors.KindInvocation))
	assert.Contains(t, rt.LastFailure(), "setter blew up")

	_, err = rt.GetStaticFieldOrProperty("Boxes.Box", "Static")
	assert.True(t, errors.HasKind(err, errors.KindInvocation))
	assert.Contains(t, rt.LastCallFailure(), "static getter blew up")
}

func TestStaticFieldsAndProperties(t *testing.T) {
	rt := newRuntime(t)
	saved := samples.Precision
	t.Cleanup(func() { samples.Precision = saved })

	v, err := rt.GetStaticFieldOrProperty("Samples.Calculator", "Precision")
	require.NoError(t, err)
	assert.Equal(t, saved, v)

	require.NoError(t, rt.SetStaticFieldOrProperty("Samples.Calculator", "Precision", 4))
	c, err := rt.CreateInstance("Samples.Calculator")
	require.NoError(t, err)
	rounded, err := rt.CallInstanceMethod(c, "Round", 3.14159)
	require.NoError(t, err)
	assert.Equal(t, "3.1416", rounded)

	version, err := rt.GetStaticFieldOrProperty("Samples.Calculator", "Version")
	require.NoError(t, err)
	assert.Equal(t, samples.ModuleVersion, version)

	_, err = rt.GetStaticFieldOrProperty("Samples.Calculator", "Memory")
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))

	err = rt.SetStaticFieldOrProperty("No.Such.Type", "X", 1)
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
}

func TestFacadeType(t *testing.T) {
	rt := newRuntime(t)
	date := time.Date(2001, 2, 3, 0, 0, 0, 0, time.UTC)

	days, err := rt.CallStaticMethod(FacadeType, "DateDays", date)
	require.NoError(t, err)
	assert.Equal(t, 11356.0, days)

	slice, err := rt.CallStaticMethod(FacadeType, "DateDays", []time.Time{date, date.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Equal(t, []float64{11356, 11357}, slice)

	back, err := rt.CallStaticMethod(FacadeType, "FromDateDays", 11356)
	require.NoError(t, err)
	assert.Equal(t, date, back)

	instant := time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	utc, err := rt.CallStaticMethod(FacadeType, "PosixSeconds", instant)
	require.NoError(t, err)
	local, err := rt.CallStaticMethod(FacadeType, "PosixLocalSeconds", instant)
	require.NoError(t, err)
	assert.Equal(t, 7200.0, local.(float64)-utc.(float64))

	fromUTC, err := rt.FromPosixSeconds(rt.PosixSeconds(instant))
	require.NoError(t, err)
	assert.Equal(t, instant, fromUTC)
	fromLocal, err := rt.FromPosixLocalSeconds(rt.PosixLocalSeconds(instant))
	require.NoError(t, err)
	assert.True(t, instant.Equal(fromLocal))
	assert.Equal(t, plus2, rt.Location())

	_, err = rt.CallStaticMethod(FacadeType, "FromDateDays", math.NaN())
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))
	assert.Contains(t, rt.LastFailure(), "NaN")

	_, err = rt.CallStaticMethod(FacadeType, "FromPosixSeconds", []float64{0, math.Inf(1)})
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))

	_, err = rt.FromPosixLocalSecondsSlice([]float64{1e300})
	assert.True(t, errors.HasKind(err, errors.KindInvalidInput))

	name, err := rt.CallStaticMethod(FacadeType, "GetObjectTypeName", &samples.Person{})
	require.NoError(t, err)
	assert.Equal(t, "Samples.Person", name)

	has, err := rt.GetStaticFieldOrProperty(FacadeType, "HasConverter")
	require.NoError(t, err)
	assert.Equal(t, false, has)
}

func TestIntrospection(t *testing.T) {
	rt := newRuntime(t)
	p, err := rt.CreateInstance("Samples.Person", "Ada", "Lovelace")
	require.NoError(t, err)

	assert.Equal(t, "Samples.Person", rt.GetObjectType(p).FullName)
	assert.Equal(t, "Samples.Person", rt.GetObjectTypeName(p))
	assert.Equal(t, "*strings.Builder", rt.GetObjectTypeName(&strings.Builder{}))
	assert.Equal(t, "", rt.GetObjectTypeName(nil))

	members := rt.GetMembers(p)
	for _, want := range []string{".ctor", "AgeAt", "FirstName", "Greet", "Initials", "Name", "Nickname"} {
		assert.Contains(t, members, want)
	}

	assert.Equal(t, "", rt.ToString(nil))
	assert.Equal(t, "42", rt.ToString(42))
	assert.Equal(t, "1s", rt.ToString(time.Second))
}

func TestLoadModule(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()

	mod, err := rt.LoadModule(ctx, filepath.Join("testdata", "arith.wasm"))
	require.NoError(t, err)
	assert.Equal(t, "arith", mod.Name)

	sum, err := rt.CallStaticMethod("arith.Exports", "add", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(5), sum)

	_, err = rt.CallStaticMethod("arith.Exports, arith", "div", 1, 0)
	require.Error(t, err)
	assert.Contains(t, rt.LastFailure(), "Method:  arith.Exports.div")

	extra := catalog.NewModule("Extra", "0.1.0")
	extra.MustDefine("Extra.Thing", nil)
	rt.Loader().Provide(extra)
	got, err := rt.LoadModule(ctx, "Extra")
	require.NoError(t, err)
	assert.Same(t, extra, got)
	thing, err := rt.GetType("Extra.Thing")
	require.NoError(t, err)
	assert.NotNil(t, thing)

	_, err = rt.LoadModule(ctx, "Extra, Version=9.9.9")
	assert.True(t, errors.HasKind(err, errors.KindModuleNotFound))
	assert.NotEmpty(t, rt.LastFailure())
}

func TestLoadModule_RejectedModuleIsClosed(t *testing.T) {
	rt := newRuntime(t)
	ctx := context.Background()
	path := filepath.Join("testdata", "arith.wasm")

	require.NoError(t, rt.Load(catalog.NewModule("arith", "")))
	_, err := rt.LoadModule(ctx, path)
	require.Error(t, err)
	assert.True(t, errors.HasKind(err, errors.KindRegistration))

	// The rejected instance released its name, so the same file loads
	// again under another version.
	mod, err := rt.LoadFile(ctx, loader.File{Path: path, Version: "2.0.0"})
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", mod.Version)

	closed := 0
	provided := catalog.NewModule("Shared", "1.0.0")
	provided.OnClose(func(context.Context) error { closed++; return nil })
	rt.Loader().Provide(provided)
	require.NoError(t, rt.Load(catalog.NewModule("Shared", "1.0.0")))

	_, err = rt.LoadModule(ctx, "Shared")
	assert.True(t, errors.HasKind(err, errors.KindRegistration))
	assert.Zero(t, closed)
}
