// Package samples registers a small module of demonstration types.
//
//	Samples.Calculator   overloaded statics, variadic Sum, memory
//	Samples.Person       constructor, defaults, INamed, properties
//	Samples.Calendar     date statics
package samples

import (
	"fmt"
	"strings"
	"time"

	"github.com/wippyai/dynbridge/catalog"
)

const (
	ModuleName    = "Samples"
	ModuleVersion = "1.0.0"
)

// Named is exposed as Samples.INamed.
type Named interface {
	Name() string
}

// Calculator keeps a memory register.
type Calculator struct {
	Memory float64
}

// Precision is exposed as the static field Samples.Calculator.Precision.
var Precision = 2

func (c *Calculator) Store(v float64) { c.Memory = v }

func (c *Calculator) Recall() float64 { return c.Memory }

func (c *Calculator) Round(v float64) string {
	return fmt.Sprintf("%.*f", Precision, v)
}

// Person is a named person with a birth date.
type Person struct {
	FirstName string
	LastName  string
	Born      time.Time
	nickname  string
}

func (p *Person) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p *Person) Greet(greeting string, punctuation string) string {
	return greeting + ", " + p.Name() + punctuation
}

// AgeAt returns full years between Born and at.
func (p *Person) AgeAt(at time.Time) int {
	years := at.Year() - p.Born.Year()
	if at.YearDay() < p.Born.YearDay() {
		years--
	}
	return years
}

// New builds the Samples module.
func New() (*catalog.Module, error) {
	mod := catalog.NewModule(ModuleName, ModuleVersion)
	for _, register := range []func(*catalog.Module) error{registerCalculator, registerPerson, registerCalendar} {
		if err := register(mod); err != nil {
			return nil, err
		}
	}
	return mod, nil
}

func registerCalculator(mod *catalog.Module) error {
	t, err := mod.Define("Samples.Calculator", (*Calculator)(nil))
	if err != nil {
		return err
	}
	return firstErr(
		t.Constructor(func() *Calculator { return &Calculator{} }),
		t.Constructor(func(memory float64) *Calculator { return &Calculator{Memory: memory} }, catalog.Names("memory")),

		t.Static("Add", func(a, b int) int { return a + b }, catalog.Names("a", "b")),
		t.Static("Add", func(a, b float64) float64 { return a + b }, catalog.Names("a", "b")),
		t.Static("Add", func(a, b string) string { return a + b }, catalog.Names("a", "b")),
		t.Static("Sum", func(values ...float64) float64 {
			total := 0.0
			for _, v := range values {
				total += v
			}
			return total
		}, catalog.Names("values")),
		t.Static("Divide", func(a, b int) (int, error) {
			if b == 0 {
				return 0, fmt.Errorf("division of %d by zero", a)
			}
			return a / b, nil
		}, catalog.Names("a", "b")),
		t.Static("Describe", func(n int) string { return fmt.Sprintf("int %d", n) }, catalog.Names("n")),
		t.Static("Describe", func(s string) string { return fmt.Sprintf("string %q", s) }, catalog.Names("s")),
		t.Static("Scale", func(v float64, factor float64, offset float64) float64 {
			return v*factor + offset
		}, catalog.Names("v", "factor", "offset"), catalog.Defaults(2.0, 0.0)),

		t.StaticField("Precision", &Precision),
		t.StaticProperty("Version", func() string { return ModuleVersion }, nil),
	)
}

func registerPerson(mod *catalog.Module) error {
	t, err := mod.Define("Samples.Person", (*Person)(nil))
	if err != nil {
		return err
	}
	return firstErr(
		t.Constructor(func(first, last string) *Person {
			return &Person{FirstName: first, LastName: last}
		}, catalog.Names("first", "last")),
		t.Constructor(func(first, last string, born time.Time) *Person {
			return &Person{FirstName: first, LastName: last, Born: born}
		}, catalog.Names("first", "last", "born")),

		t.Defaults("Greet", "Hello", "!"),
		t.Implements("Samples.INamed", (*Named)(nil)),
		t.Property("Nickname",
			func(p *Person) string { return p.nickname },
			func(p *Person, v string) error {
				if strings.ContainsAny(v, " \t") {
					return fmt.Errorf("nickname %q contains whitespace", v)
				}
				p.nickname = v
				return nil
			}),
		t.Property("Initials", func(p *Person) string {
			var b strings.Builder
			for _, part := range []string{p.FirstName, p.LastName} {
				if part != "" {
					b.WriteByte(part[0])
				}
			}
			return b.String()
		}, nil),
	)
}

func registerCalendar(mod *catalog.Module) error {
	t, err := mod.Define("Samples.Calendar", nil)
	if err != nil {
		return err
	}
	return firstErr(
		t.Static("AddDays", func(at time.Time, days int) time.Time {
			return at.AddDate(0, 0, days)
		}, catalog.Names("at", "days")),
		t.Static("Hour", func(at time.Time) int { return at.Hour() }, catalog.Names("at")),
		t.Static("Zone", func(at time.Time) string {
			name, _ := at.Zone()
			return name
		}, catalog.Names("at")),
		t.Static("Latest", func(dates ...time.Time) time.Time {
			var latest time.Time
			for _, d := range dates {
				if d.After(latest) {
					latest = d
				}
			}
			return latest
		}, catalog.Names("dates")),
		t.Static("Span", func(dates []time.Time) []time.Time {
			if len(dates) == 0 {
				return nil
			}
			return []time.Time{dates[0], dates[len(dates)-1]}
		}, catalog.Names("dates")),
		t.Static("Epoch", func() time.Time { return time.Unix(0, 0) }),
		t.Static("Explode", func(msg string) { panic(msg) }, catalog.Names("msg")),
	)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
