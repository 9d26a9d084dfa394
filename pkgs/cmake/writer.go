package cmake

import (
	"os"
	"path/filepath"
	"strings"
)

// FileName is the name of the script written by WriteToDir.
const FileName = "CMakeLists.txt"

const indent = "    "

// Layout controls when statements are folded onto a single line.
type Layout struct {
	// MaxInlineArgs is the maximum argument count of a single-line statement.
	MaxInlineArgs int
	// SetMaxArgLen bounds the length of each element of an inline set().
	SetMaxArgLen int
	// CallMaxArgLen bounds the length of each argument of an inline call.
	CallMaxArgLen int
}

// DefaultLayout is the layout used when none is given.
var DefaultLayout = Layout{
	MaxInlineArgs: 3,
	SetMaxArgLen:  20,
	CallMaxArgLen: 20,
}

// Option configures a Writer.
type Option func(*Writer)

// WithLayout overrides the line layout thresholds.
func WithLayout(l Layout) Option {
	return func(w *Writer) { w.layout = l }
}

// Writer accumulates CMake statements. Lines are only ever appended.
type Writer struct {
	lines   []string
	compact bool
	layout  Layout
}

// New returns a Writer whose first statement is
// cmake_minimum_required(VERSION minVersion).
func New(minVersion string, opts ...Option) *Writer {
	w := &Writer{layout: DefaultLayout}
	for _, opt := range opts {
		opt(w)
	}
	w.Call("cmake_minimum_required", KV("VERSION", String(minVersion)))
	return w
}

func (w *Writer) inline(args []string, maxLen int) bool {
	if len(args) > w.layout.MaxInlineArgs {
		return false
	}
	for _, a := range args {
		if len(a) > maxLen {
			return false
		}
	}
	return true
}

// end terminates a statement.
func (w *Writer) end() {
	if !w.compact {
		w.lines = append(w.lines, "")
	}
}

func (w *Writer) emit(name string, args []string, maxLen int) {
	if w.inline(args, maxLen) {
		w.lines = append(w.lines, name+"("+strings.Join(args, " ")+")")
		return
	}
	w.lines = append(w.lines, name+"(")
	for _, a := range args {
		w.lines = append(w.lines, indent+a)
	}
	w.lines = append(w.lines, ")")
}

// Set emits an assignment of value to v. A nil value or an empty List
// unsets the variable. It returns v so the caller can reference it later.
func (w *Writer) Set(v Var, value Value) Var {
	defer w.end()

	l, isList := value.(List)
	switch {
	case value == nil, isList && len(l) == 0:
		w.lines = append(w.lines, "unset("+v.Name+")")
	case isList:
		values := make([]string, len(l))
		for i, e := range l {
			values[i] = Resolve(e)
		}
		if w.inline(values, w.layout.SetMaxArgLen) {
			w.lines = append(w.lines, "set("+v.Name+" "+strings.Join(values, " ")+")")
			return v
		}
		w.lines = append(w.lines, "set("+v.Name)
		for _, s := range values {
			w.lines = append(w.lines, indent+s)
		}
		w.lines = append(w.lines, ")")
	default:
		w.lines = append(w.lines, "set("+v.Name+" "+Resolve(value)+")")
	}
	return v
}

// Call emits the command name(args...). Keyword arguments are placed after
// the positional ones, keeping their relative order.
func (w *Writer) Call(name string, args ...Value) {
	var positional, keywords []string
	for _, a := range args {
		if kw, ok := a.(Keyword); ok {
			keywords = append(keywords, kw.resolve())
			continue
		}
		positional = append(positional, Resolve(a))
	}
	w.emit(name, append(positional, keywords...), w.layout.CallMaxArgLen)
	w.end()
}

// ProjectOptions holds the optional arguments of project().
type ProjectOptions struct {
	Version     string
	Description string
	Languages   []string
}

// ProjectHandle refers to a declared project.
type ProjectHandle struct {
	Name string
}

// Project emits project(name ...). Options are only written when set.
func (w *Writer) Project(name string, opts ProjectOptions) ProjectHandle {
	args := []Value{String(name)}
	if opts.Version != "" {
		args = append(args, KV("VERSION", String(opts.Version)))
	}
	if opts.Description != "" {
		args = append(args, KV("DESCRIPTION", Quoted(opts.Description)))
	}
	if len(opts.Languages) > 0 {
		args = append(args, KV("LANGUAGES", Strings(opts.Languages...)))
	}
	w.Call("project", args...)
	return ProjectHandle{Name: name}
}

// Include emits include(path).
func (w *Writer) Include(path string) {
	w.Call("include", Path(path))
}

// Group runs fn with blank separators between statements suppressed. The
// previous mode is restored when fn returns or panics.
func (w *Writer) Group(fn func() error) error {
	prev := w.compact
	w.compact = true
	defer func() { w.compact = prev }()
	return fn()
}

// Bytes renders the script. The result always ends with exactly one blank
// line.
func (w *Writer) Bytes() []byte {
	lines := w.lines
	if len(lines) == 0 || lines[len(lines)-1] != "" {
		lines = append(lines[:len(lines):len(lines)], "")
	}
	return []byte(strings.Join(lines, "\n"))
}

func (w *Writer) String() string {
	return string(w.Bytes())
}

// WriteToDir writes the script to dir/CMakeLists.txt, creating dir if
// needed, and returns the written path.
func (w *Writer) WriteToDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if n := len(w.lines); n == 0 || w.lines[n-1] != "" {
		w.lines = append(w.lines, "")
	}
	out := filepath.Join(dir, FileName)
	if err := os.WriteFile(out, []byte(strings.Join(w.lines, "\n")), 0o644); err != nil {
		return "", err
	}
	return out, nil
}
