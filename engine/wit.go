package engine

import (
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/dynbridge/errors"
)

type witParam struct {
	typ  wit.Type
	name string
}

type funcSignature struct {
	params  []witParam
	results []wit.Type
}

var funcPattern = regexp.MustCompile(`(?:export\s+)?([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?`)

// parseWitFunctions extracts function signatures from WIT text, keyed by
// function name. Only the declarations are read; worlds and interfaces are
// not resolved.
func parseWitFunctions(witText string) (map[string]*funcSignature, error) {
	funcs := make(map[string]*funcSignature)

	matches := funcPattern.FindAllStringSubmatch(witText, -1)
	for _, match := range matches {
		name := match[1]
		paramsStr := strings.TrimSpace(match[2])
		resultStr := ""
		if len(match) > 3 {
			resultStr = strings.TrimSpace(match[3])
		}

		sig := &funcSignature{}

		if paramsStr != "" {
			for _, p := range splitParams(paramsStr) {
				param := witParam{}
				typStr := p
				if idx := strings.LastIndex(p, ":"); idx != -1 {
					param.name = strings.TrimSpace(p[:idx])
					typStr = strings.TrimSpace(p[idx+1:])
				}
				t, err := parseWitType(typStr)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "parse param type "+typStr)
				}
				param.typ = t
				sig.params = append(sig.params, param)
			}
		}

		if resultStr != "" && resultStr != "()" {
			if strings.HasPrefix(resultStr, "(") && strings.HasSuffix(resultStr, ")") {
				inner := strings.TrimPrefix(strings.TrimSuffix(resultStr, ")"), "(")
				for _, part := range splitParams(inner) {
					t, err := parseWitType(part)
					if err != nil {
						return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "parse result type "+part)
					}
					sig.results = append(sig.results, t)
				}
			} else {
				t, err := parseWitType(resultStr)
				if err != nil {
					return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, "parse result type "+resultStr)
				}
				sig.results = []wit.Type{t}
			}
		}

		funcs[name] = sig
	}

	if len(funcs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no functions found in WIT text")
	}

	return funcs, nil
}

// splitParams splits a parameter list on top-level commas.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	flush := func() {
		if str := strings.TrimSpace(current.String()); str != "" {
			result = append(result, str)
		}
		current.Reset()
	}

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
		case ')', '>':
			depth--
		case ',':
			if depth == 0 {
				flush()
				continue
			}
		}
		current.WriteRune(ch)
	}
	flush()

	return result
}

func parseWitType(s string) (wit.Type, error) {
	return wit.ParseType(strings.TrimSpace(s))
}

// paramNames returns the declared parameter names, or nil when any is unnamed.
func (s *funcSignature) paramNames() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		if p.name == "" {
			return nil
		}
		names[i] = p.name
	}
	return names
}
