package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/wippyai/dynbridge/resource"
)

// parseArgs splits a comma-separated argument list. Empty input yields no
// arguments; an empty element is the empty string.
func parseArgs(s string) []any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	args := make([]any, len(parts))
	for i, p := range parts {
		args[i] = parseArg(p)
	}
	return args
}

// parseArg reads one argument: nil, an integer, a float, a bool, an RFC3339
// date-time or date, a quoted string, and otherwise the raw text.
func parseArg(s string) any {
	s = strings.TrimSpace(s)
	if s == "nil" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateTime, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if unq, err := strconv.Unquote(s); err == nil {
		return unq
	}
	return s
}

// resolveArgs parses args like parseArgs and replaces "@handle" references
// with values held in table.
func resolveArgs(s string, table *resource.Table) ([]any, error) {
	args := parseArgs(s)
	for i, a := range args {
		ref, ok := a.(string)
		if !ok || !strings.HasPrefix(ref, "@") {
			continue
		}
		v, err := lookupHandle(table, ref[1:])
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

type handleError string

func (e handleError) Error() string { return "no object with handle " + string(e) }

func lookupHandle(table *resource.Table, prefix string) (any, error) {
	h, ok := table.Lookup(prefix)
	if !ok {
		return nil, handleError(prefix)
	}
	v, _ := table.Get(h)
	return v, nil
}
