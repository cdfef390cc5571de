package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"reflect"
	"strings"

	"golang.org/x/term"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/errors"
	"github.com/wippyai/dynbridge/runtime"
)

type options struct {
	config      string
	load        string
	typeName    string
	call        string
	args        string
	ctorArgs    string
	list        bool
	create      bool
	interactive bool
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "Path to dynbridge.yaml (searched upwards from the working directory when omitted)")
	flag.StringVar(&opts.load, "load", "", "Modules to load: .wasm paths or module names (comma-separated)")
	flag.StringVar(&opts.typeName, "type", "", "Type name, optionally qualified (\"Name, Module[, Version=x]\")")
	flag.StringVar(&opts.call, "call", "", "Member to call on -type")
	flag.StringVar(&opts.args, "args", "", "Call arguments (comma-separated; int, float, bool, RFC3339, nil or string)")
	flag.StringVar(&opts.ctorArgs, "ctor", "", "Constructor arguments for -new (comma-separated)")
	flag.BoolVar(&opts.list, "list", false, "List loaded modules and types, or the members of -type, and exit")
	flag.BoolVar(&opts.create, "new", false, "Create an instance of -type; with -call, call an instance method on it")
	flag.BoolVar(&opts.interactive, "i", false, "Interactive mode with TUI")
	flag.Parse()

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !opts.list && opts.call == "" && !opts.create {
		fmt.Fprintln(os.Stderr, "Usage: dynbridge [-config file] [-load mods] -list [-type T]")
		fmt.Fprintln(os.Stderr, "       dynbridge -type T -call Member [-args a,b]")
		fmt.Fprintln(os.Stderr, "       dynbridge -type T -new [-ctor a,b] [-call Method -args a,b]")
		fmt.Fprintln(os.Stderr, "       dynbridge -i  (interactive mode)")
		os.Exit(1)
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	ctx := context.Background()

	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	if opts.list {
		if opts.typeName != "" {
			return listMembers(rt, opts.typeName)
		}
		listTypes(rt)
		return nil
	}

	if opts.typeName == "" {
		return fmt.Errorf("-type is required")
	}

	result, err := invoke(rt, opts)
	if err != nil {
		if failure := rt.LastFailure(); failure != "" {
			fmt.Fprint(os.Stderr, failure)
		}
		if errors.HasKind(err, errors.KindMissingMember) {
			fmt.Fprintf(os.Stderr, "Hint: dynbridge -list -type %q shows the members of the type\n", opts.typeName)
		}
		return err
	}
	fmt.Printf("Result: %s\n", formatValue(rt, result))
	return nil
}

func invoke(rt *runtime.Runtime, opts options) (any, error) {
	args := parseArgs(opts.args)
	if !opts.create {
		return rt.CallStaticMethod(opts.typeName, opts.call, args...)
	}

	obj, err := rt.CreateInstance(opts.typeName, parseArgs(opts.ctorArgs)...)
	if err != nil {
		return nil, err
	}
	if opts.call == "" {
		return obj, nil
	}
	return rt.CallInstanceMethod(obj, opts.call, args...)
}

func listTypes(rt *runtime.Runtime) {
	for _, mod := range rt.Catalog().Modules() {
		fmt.Printf("%s\n", mod.FullName())
		for _, t := range mod.Types() {
			fmt.Printf("  %s\n", t.FullName)
		}
	}
}

func listMembers(rt *runtime.Runtime, typeName string) error {
	t, err := rt.GetType(typeName)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("type not found: %s", typeName)
	}

	fmt.Printf("%s\n", t.QualifiedName())
	for _, m := range t.Constructors() {
		fmt.Printf("  new%s\n", m.Params)
	}
	for _, m := range t.Members() {
		kind := ""
		if m.Static {
			kind = "static "
		}
		fmt.Printf("  %s%s%s\n", kind, m.Signature(), formatResults(m.Results))
	}
	for _, f := range t.Fields() {
		kind := ""
		if f.Static {
			kind = "static "
		}
		fmt.Printf("  %sfield %s %s\n", kind, f.Name, f.Type)
	}
	for _, p := range t.Properties() {
		access := "get"
		if p.CanWrite() {
			access += "/set"
		}
		fmt.Printf("  property %s %s {%s}\n", p.Name, p.Type, access)
	}
	for _, it := range t.Interfaces() {
		fmt.Printf("  implements %s\n", it.Name)
	}
	return nil
}

func formatResults(results []reflect.Type) string {
	switch len(results) {
	case 0:
		return ""
	case 1:
		return " " + results[0].String()
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = r.String()
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func formatValue(rt *runtime.Runtime, v any) string {
	if v == nil {
		return "<nil>"
	}
	if t := rt.GetObjectType(v); t != nil && t.Module != nil && t.Module.Name != catalog.CoreModule {
		return fmt.Sprintf("%s %s", t.FullName, rt.ToString(v))
	}
	return rt.ToString(v)
}
