package cpp

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goplus/lobs/pkgs/errs"
)

// WarningPrefix starts every compilation flag key. It is replaced by "-W"
// when the flag is turned into a compiler option.
const WarningPrefix = "w_"

// predefined flags, in declaration order.
var predefined = []string{
	"w_all",
	"w_extra",
	"w_pedantic",
	"w_error",
	"w_uninitialized",
	"w_no_missing_field_initializers",
	"w_no_unused_parameter",
	"w_no_unused_variable",
	"w_no_unused_function",
	"w_no_unused_but_set_variable",
	"w_no_sign_compare",
	"w_no_unknown_pragmas",
	"w_no_attributes",
	"w_no_deprecated_declarations",
	"w_unused_result",
	"w_switch",
}

// CompilationFlags is an ordered set of warning toggles. Each key is either
// unset, enabled or disabled. Keys beyond the predefined ones may be added
// at any time as long as they start with WarningPrefix; they keep the order
// in which they were introduced.
type CompilationFlags struct {
	keys   []string
	values map[string]bool
}

// NewCompilationFlags returns flags with every predefined key unset.
func NewCompilationFlags() *CompilationFlags {
	return &CompilationFlags{
		keys:   slices.Clone(predefined),
		values: make(map[string]bool),
	}
}

// ValidateKey reports whether key is a well-formed flag key.
func ValidateKey(key string) error {
	if !strings.HasPrefix(key, WarningPrefix) || len(key) == len(WarningPrefix) {
		return errors.WithHintf(
			errors.Wrapf(errs.ErrInvalidFlag, "%q", key),
			"flag keys must start with %q", WarningPrefix)
	}
	return nil
}

func (f *CompilationFlags) put(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if f.values == nil {
		f.keys = slices.Clone(predefined)
		f.values = make(map[string]bool)
	}
	if !slices.Contains(f.keys, key) {
		f.keys = append(f.keys, key)
	}
	return nil
}

// Set enables or disables key, introducing it if needed.
func (f *CompilationFlags) Set(key string, enabled bool) error {
	if err := f.put(key); err != nil {
		return err
	}
	f.values[key] = enabled
	return nil
}

// Unset clears key. The key keeps its position.
func (f *CompilationFlags) Unset(key string) error {
	if err := f.put(key); err != nil {
		return err
	}
	delete(f.values, key)
	return nil
}

// Get returns the value of key and whether it is set.
func (f *CompilationFlags) Get(key string) (enabled, ok bool) {
	if f == nil {
		return false, false
	}
	enabled, ok = f.values[key]
	return
}

// Keys returns all known keys in declaration order.
func (f *CompilationFlags) Keys() []string {
	if f == nil || f.values == nil {
		return slices.Clone(predefined)
	}
	return slices.Clone(f.keys)
}

// Enabled returns the enabled keys in declaration order.
func (f *CompilationFlags) Enabled() []string {
	if f == nil {
		return nil
	}
	var on []string
	for _, k := range f.keys {
		if f.values[k] {
			on = append(on, k)
		}
	}
	return on
}

// Options returns the compiler options of the enabled keys.
func (f *CompilationFlags) Options() []string {
	on := f.Enabled()
	opts := make([]string, len(on))
	for i, k := range on {
		opts[i] = WarningOption(k)
	}
	return opts
}

// Clone returns an independent copy of f.
func (f *CompilationFlags) Clone() *CompilationFlags {
	c := NewCompilationFlags()
	if f == nil || f.values == nil {
		return c
	}
	c.keys = slices.Clone(f.keys)
	for k, v := range f.values {
		c.values[k] = v
	}
	return c
}

// WarningOption turns a flag key into a compiler option:
// w_no_unused_variable becomes -Wno-unused-variable.
func WarningOption(key string) string {
	return "-W" + strings.ReplaceAll(strings.TrimPrefix(key, WarningPrefix), "_", "-")
}
