// Package cmake models the CMake language and renders CMakeLists.txt scripts.
package cmake

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is a CMake argument. The set of implementations is closed; a nil
// Value means "none".
type Value interface {
	resolve() string
}

// Int is an integer literal.
type Int int

// Float is a floating point literal.
type Float float64

// String is an unquoted argument, emitted as-is.
type String string

// Bool renders as ON or OFF.
type Bool bool

// Path is a filesystem path, emitted as-is.
type Path string

// Quoted is a string emitted as a quoted argument. Backslashes, quotes and
// dollar signs are escaped so CMake reads the text literally.
type Quoted string

// List is an ordered sequence of values, rendered space separated.
type List []Value

// Var is a reference to a CMake variable.
type Var struct {
	Name string
}

// Keyword is a "KEY value" argument pair of a command call.
type Keyword struct {
	Key   string
	Value Value
}

// KV returns a Keyword argument.
func KV(key string, value Value) Keyword {
	return Keyword{Key: key, Value: value}
}

// Ref returns the dereference syntax ${name}. The name is never resolved
// further.
func (v Var) Ref() string {
	return "${" + v.Name + "}"
}

// Strings converts ss into a List of String values.
func Strings(ss ...string) List {
	l := make(List, len(ss))
	for i, s := range ss {
		l[i] = String(s)
	}
	return l
}

// Paths converts ps into a List of Path values.
func Paths(ps ...string) List {
	l := make(List, len(ps))
	for i, p := range ps {
		l[i] = Path(p)
	}
	return l
}

func (v Int) resolve() string    { return strconv.Itoa(int(v)) }
func (v Float) resolve() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v String) resolve() string { return string(v) }
func (v Path) resolve() string   { return string(v) }
func (v Var) resolve() string    { return v.Ref() }

func (v Bool) resolve() string {
	if v {
		return "ON"
	}
	return "OFF"
}

func (v Quoted) resolve() string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`)
	return `"` + r.Replace(string(v)) + `"`
}

func (v List) resolve() string {
	parts := make([]string, len(v))
	for i, e := range v {
		parts[i] = Resolve(e)
	}
	return strings.Join(parts, " ")
}

func (v Keyword) resolve() string {
	return v.Key + " " + Resolve(v.Value)
}

// Resolve renders v as CMake argument text.
func Resolve(v Value) string {
	if v == nil {
		return ""
	}
	switch v := v.(type) {
	case Int, Float, String, Bool, Path, Quoted, List, Var, Keyword:
		return v.resolve()
	case *Var:
		return v.resolve()
	}
	panic(fmt.Sprintf("cmake: unsupported value %T", v))
}
