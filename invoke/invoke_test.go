package invoke

import (
	"fmt"
	"strings"
	"testing"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/params"
)

type account struct {
	balance int
}

func (a *account) Deposit(n int) int { a.balance += n; return a.balance }

var errOverdrawn = fmt.Errorf("overdrawn")

func (a *account) Withdraw(n int) (int, error) {
	if n > a.balance {
		return a.balance, errOverdrawn
	}
	a.balance -= n
	return a.balance, nil
}

func setup(t *testing.T) *catalog.Type {
	t.Helper()
	mod := catalog.NewModule("Bank", "1.0.0")
	typ := mod.MustDefine("Bank.Account", (*account)(nil))

	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(typ.Static("Greet", func(name, greeting string, times int) string {
		return strings.Repeat(greeting+" "+name+";", times)
	}, catalog.Defaults("Hello", 1)))
	must(typ.Static("Split", func(n int) (int, int) { return n / 2, n % 2 }))
	must(typ.Static("Nothing", func() {}))
	must(typ.Static("Boom", func() int { panic("kaboom") }))
	must(typ.Static("BoomErr", func() int { panic(errOverdrawn) }))
	must(typ.Static("Sum", func(xs ...int) int {
		total := 0
		for _, x := range xs {
			total += x
		}
		return total
	}))
	must(typ.Static("Maybe", func() *account { return nil }))
	return typ
}

func TestCall_Instance(t *testing.T) {
	typ := setup(t)
	a := &account{}

	got, err := Call(a, typ.Methods("Deposit")[0], []any{5.0})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != 5 {
		t.Errorf("Deposit = %v, want 5", got)
	}

	_, err = Call(nil, typ.Methods("Deposit")[0], []any{1})
	if !errors.HasKind(err, errors.KindInvalidInput) {
		t.Errorf("nil target err = %v", err)
	}
}

func TestCall_ErrorResult(t *testing.T) {
	typ := setup(t)
	a := &account{balance: 3}

	got, err := Call(a, typ.Methods("Withdraw")[0], []any{2})
	if err != nil || got != 1 {
		t.Fatalf("Withdraw = %v, %v", got, err)
	}

	_, err = Call(a, typ.Methods("Withdraw")[0], []any{10})
	if !errors.HasKind(err, errors.KindInvocation) {
		t.Fatalf("err = %v, want invocation", err)
	}
	if errors.Innermost(err) != errOverdrawn {
		t.Errorf("innermost = %v, want errOverdrawn", errors.Innermost(err))
	}
	var e *errors.Error
	if !errors.As(err, &e) || e.Member != "Withdraw" || e.Owner != "Bank.Account" {
		t.Errorf("error should name the member: %+v", e)
	}
}

func TestCall_Defaults(t *testing.T) {
	typ := setup(t)
	greet := typ.Statics("Greet")[0]

	tests := []struct {
		args []any
		want string
	}{
		{[]any{"Ada", params.Missing, params.Missing}, "Hello Ada;"},
		{[]any{"Ada", "Hi", params.Missing}, "Hi Ada;"},
		{[]any{"Ada", "Yo", 2}, "Yo Ada;Yo Ada;"},
	}
	for _, tt := range tests {
		got, err := Call(nil, greet, tt.args)
		if err != nil {
			t.Fatalf("Call(%v): %v", tt.args, err)
		}
		if got != tt.want {
			t.Errorf("Call(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestCall_MissingRequired(t *testing.T) {
	typ := setup(t)
	greet := typ.Statics("Greet")[0]

	_, err := Call(nil, greet, []any{params.Missing, params.Missing, params.Missing})
	if !errors.HasKind(err, errors.KindArity) {
		t.Fatalf("err = %v, want arity", err)
	}

	_, err = Call(nil, greet, []any{"a"})
	if !errors.HasKind(err, errors.KindArity) {
		t.Errorf("short vector err = %v, want arity", err)
	}
}

func TestCall_Panics(t *testing.T) {
	typ := setup(t)

	_, err := Call(nil, typ.Statics("Boom")[0], nil)
	if !errors.HasKind(err, errors.KindInvocation) {
		t.Fatalf("err = %v, want invocation", err)
	}
	var pe *errors.PanicError
	if !errors.As(err, &pe) || pe.Value != "kaboom" {
		t.Errorf("cause = %v, want PanicError(kaboom)", errors.Innermost(err))
	}
	var e *errors.Error
	if errors.As(err, &e) && !strings.Contains(e.Stack, "goroutine") {
		t.Error("panics should carry a stack trace")
	}

	_, err = Call(nil, typ.Statics("BoomErr")[0], nil)
	if errors.Innermost(err) != errOverdrawn {
		t.Errorf("panic(error) innermost = %v", errors.Innermost(err))
	}
}

func TestCall_Shapes(t *testing.T) {
	typ := setup(t)

	got, err := Call(nil, typ.Statics("Split")[0], []any{7})
	if err != nil {
		t.Fatal(err)
	}
	pair, ok := got.([]any)
	if !ok || pair[0] != 3 || pair[1] != 1 {
		t.Errorf("Split = %#v", got)
	}

	got, err = Call(nil, typ.Statics("Nothing")[0], nil)
	if err != nil || got != nil {
		t.Errorf("Nothing = %v, %v", got, err)
	}

	got, err = Call(nil, typ.Statics("Maybe")[0], nil)
	if err != nil || got != nil {
		t.Errorf("nil pointer result = %#v, want untyped nil", got)
	}
}

func TestCall_Variadic(t *testing.T) {
	typ := setup(t)
	sum := typ.Statics("Sum")[0]

	adapted, err := params.Adapt([]any{1, 2, 3}, sum.Params)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Call(nil, sum, adapted)
	if err != nil || got != 6 {
		t.Errorf("Sum = %v, %v", got, err)
	}
}

func TestArguments_TypeMismatch(t *testing.T) {
	typ := setup(t)

	_, err := Arguments(typ.Methods("Deposit")[0], []any{"ten"})
	if !errors.HasKind(err, errors.KindTypeMismatch) {
		t.Errorf("err = %v, want type mismatch", err)
	}
}
