package main

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/dynbridge/catalog"
	"github.com/wippyai/dynbridge/params"
	"github.com/wippyai/dynbridge/resource"
	"github.com/wippyai/dynbridge/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// listHeight is the number of members shown at once.
const listHeight = 18

type entryKind int

const (
	kindCtor entryKind = iota
	kindStatic
	kindMethod
)

type entry struct {
	typ    *catalog.Type
	member *catalog.Member
	kind   entryKind
}

func (e entry) label() string {
	var prefix string
	switch e.kind {
	case kindCtor:
		return typeStyle.Render("new ") + funcStyle.Render(e.typ.FullName) + paramsLabel(e.member.Params)
	case kindStatic:
		prefix = typeStyle.Render("static ")
	default:
		prefix = "       "
	}
	return prefix + e.typ.FullName + "." + funcStyle.Render(e.member.Name) + paramsLabel(e.member.Params) +
		typeStyle.Render(formatResults(e.member.Results))
}

func paramsLabel(list params.List) string {
	return typeStyle.Render(list.String())
}

type modelState int

const (
	stateBrowse modelState = iota
	stateArgs
	stateResult
)

type consoleModel struct {
	err      error
	rt       *runtime.Runtime
	objects  *resource.Table
	opts     options
	result   string
	failure  string
	entries  []entry
	inputs   []textinput.Model
	selected int
	offset   int
	focus    int
	state    modelState
}

func newConsoleModel(opts options) *consoleModel {
	return &consoleModel{
		opts:    opts,
		objects: resource.NewTable(),
		state:   stateBrowse,
	}
}

type readyMsg struct {
	err     error
	rt      *runtime.Runtime
	entries []entry
}

type resultMsg struct {
	err     error
	result  string
	failure string
}

func (m *consoleModel) Init() tea.Cmd {
	return m.loadRuntime
}

func (m *consoleModel) loadRuntime() tea.Msg {
	rt, err := setup(context.Background(), m.opts)
	if err != nil {
		return readyMsg{err: err}
	}
	entries, err := collectEntries(rt, m.opts.typeName)
	if err != nil {
		_ = rt.Close(context.Background())
		return readyMsg{err: err}
	}
	return readyMsg{rt: rt, entries: entries}
}

// collectEntries lists every callable member, restricted to one type when
// typeName is set.
func collectEntries(rt *runtime.Runtime, typeName string) ([]entry, error) {
	var types []*catalog.Type
	if typeName != "" {
		t, err := rt.GetType(typeName)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("type not found: %s", typeName)
		}
		types = append(types, t)
	} else {
		for _, mod := range rt.Catalog().Modules() {
			types = append(types, mod.Types()...)
		}
	}

	var entries []entry
	for _, t := range types {
		for _, c := range t.Constructors() {
			entries = append(entries, entry{typ: t, member: c, kind: kindCtor})
		}
		for _, mem := range t.Members() {
			kind := kindMethod
			if mem.Static {
				kind = kindStatic
			}
			entries = append(entries, entry{typ: t, member: mem, kind: kind})
		}
	}
	return entries, nil
}

func (m *consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "q":
			if m.state != stateArgs {
				return m, m.quit()
			}

		case "up":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
				if m.selected < m.offset {
					m.offset = m.selected
				}
			}

		case "down":
			if m.state == stateBrowse && m.selected < len(m.entries)-1 {
				m.selected++
				if m.selected >= m.offset+listHeight {
					m.offset = m.selected - listHeight + 1
				}
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				if len(m.entries) == 0 {
					return m, nil
				}
				m.buildInputs()
				if len(m.inputs) == 0 {
					return m, m.callMember
				}
				m.state = stateArgs
				return m, nil

			case stateArgs:
				return m, m.callMember

			case stateResult:
				m.resetResult()
			}

		case "tab":
			if m.state == stateArgs && len(m.inputs) > 1 {
				m.inputs[m.focus].Blur()
				m.focus = (m.focus + 1) % len(m.inputs)
				m.inputs[m.focus].Focus()
			}

		case "esc":
			switch m.state {
			case stateArgs:
				m.state = stateBrowse
				m.inputs = nil
			case stateResult:
				m.resetResult()
			}
		}

	case readyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.entries = msg.entries

	case resultMsg:
		m.result = msg.result
		m.failure = msg.failure
		m.err = msg.err
		m.state = stateResult
	}

	if m.state == stateArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *consoleModel) quit() tea.Cmd {
	_ = m.objects.Close()
	if m.rt != nil {
		_ = m.rt.Close(context.Background())
	}
	return tea.Quit
}

func (m *consoleModel) resetResult() {
	m.state = stateBrowse
	m.result = ""
	m.failure = ""
	m.err = nil
}

func (m *consoleModel) buildInputs() {
	e := m.entries[m.selected]
	var inputs []textinput.Model
	if e.kind == kindMethod {
		inputs = append(inputs, newInput("target", "@handle"))
	}
	for i, p := range e.member.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		inputs = append(inputs, newInput(name, placeholder(p)))
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	m.inputs = inputs
	m.focus = 0
}

// placeholder describes what a field expects, e.g. "int",
// "optional string = x" or "variadic int, ...".
func placeholder(p params.Param) string {
	switch p.Kind {
	case params.Variadic:
		return fmt.Sprintf("%s %s, ...", p.Kind, p.Elem())
	case params.Optional:
		return fmt.Sprintf("%s %s = %v", p.Kind, p.Type, p.Default)
	}
	return p.Type.String()
}

func newInput(name, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = name + ": "
	ti.Width = 40
	return ti
}

func (m *consoleModel) callMember() tea.Msg {
	e := m.entries[m.selected]
	values := make([]string, len(m.inputs))
	for i, in := range m.inputs {
		values[i] = in.Value()
	}

	var target any
	if e.kind == kindMethod {
		ref := strings.TrimPrefix(strings.TrimSpace(values[0]), "@")
		v, err := lookupHandle(m.objects, ref)
		if err != nil {
			return resultMsg{err: err}
		}
		target = v
		values = values[1:]
	}

	args, err := m.arguments(e.member.Params, values)
	if err != nil {
		return resultMsg{err: err}
	}

	var result any
	switch e.kind {
	case kindCtor:
		result, err = m.rt.CreateInstance(e.typ.QualifiedName(), args...)
	case kindStatic:
		result, err = m.rt.CallStaticMethod(e.typ.QualifiedName(), e.member.Name, args...)
	default:
		result, err = m.rt.CallInstanceMethod(target, e.member.Name, args...)
	}
	if err != nil {
		return resultMsg{err: err, failure: m.rt.LastFailure()}
	}

	text := formatValue(m.rt, result)
	if keep(result) {
		h, err := m.objects.Insert(m.rt.GetObjectTypeName(result), result)
		if err != nil {
			return resultMsg{err: err}
		}
		text += "\nstored as @" + h.Short()
	}
	return resultMsg{result: text}
}

// arguments converts input fields to call arguments. Blank trailing
// optional fields are left out so their defaults apply; a variadic field
// is split on commas.
func (m *consoleModel) arguments(list params.List, values []string) ([]any, error) {
	last := len(values)
	for last > 0 && strings.TrimSpace(values[last-1]) == "" && list[last-1].Kind != params.Fixed {
		last--
	}

	var args []any
	for i, v := range values[:last] {
		if list[i].Kind == params.Variadic {
			rest, err := resolveArgs(v, m.objects)
			if err != nil {
				return nil, err
			}
			args = append(args, rest...)
			continue
		}
		parsed, err := resolveArgs(v, m.objects)
		if err != nil {
			return nil, err
		}
		var arg any = ""
		if len(parsed) > 0 {
			arg = parsed[0]
		}
		args = append(args, arg)
	}
	return args, nil
}

// keep reports whether a result is an object worth holding for later calls.
func keep(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Pointer, reflect.Struct, reflect.Map:
		return true
	}
	return false
}

func (m *consoleModel) View() string {
	if m.err != nil && m.state != stateResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.rt == nil {
		return "Loading modules..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("dynbridge"))
	b.WriteString(fmt.Sprintf(" %d modules, %d objects\n\n", len(m.rt.Catalog().Modules()), m.objects.Len()))

	switch m.state {
	case stateBrowse:
		b.WriteString("Select a member to call:\n\n")
		end := min(m.offset+listHeight, len(m.entries))
		for i := m.offset; i < end; i++ {
			line := m.entries[i].label()
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> ") + line)
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if m.objects.Len() > 0 {
			b.WriteString("\nObjects:\n")
			m.objects.Each(func(h resource.Handle, e resource.Entry) bool {
				b.WriteString(fmt.Sprintf("  @%s %s\n", h.Short(), typeStyle.Render(e.TypeName)))
				return true
			})
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • q quit"))

	case stateArgs:
		e := m.entries[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(e.typ.FullName+"."+e.member.Name)))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back • @handle refers to an object"))

	case stateResult:
		e := m.entries[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(e.typ.FullName+"."+e.member.Name)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			if m.failure != "" {
				b.WriteString("\n\n")
				b.WriteString(helpStyle.Render(strings.TrimRight(m.failure, "\n")))
			}
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(opts options) error {
	p := tea.NewProgram(newConsoleModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
