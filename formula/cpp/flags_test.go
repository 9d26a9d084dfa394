package cpp

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/goplus/lobs/pkgs/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWarningOption(t *testing.T) {
	tests := map[string]string{
		"w_all":                           "-Wall",
		"w_no_unused_variable":            "-Wno-unused-variable",
		"w_no_missing_field_initializers": "-Wno-missing-field-initializers",
		"w_comment":                       "-Wcomment",
	}
	for key, want := range tests {
		assert.Equal(t, want, WarningOption(key), key)
	}
}

func TestCompilationFlags_Defaults(t *testing.T) {
	f := NewCompilationFlags()
	assert.Len(t, f.Keys(), 16)
	assert.Equal(t, "w_all", f.Keys()[0])
	assert.Equal(t, "w_switch", f.Keys()[15])
	assert.Empty(t, f.Enabled())
	assert.Empty(t, f.Options())

	_, ok := f.Get("w_all")
	assert.False(t, ok)
}

func TestCompilationFlags_DeclaredOrder(t *testing.T) {
	f := NewCompilationFlags()
	require.NoError(t, f.Set("w_comment", true))
	require.NoError(t, f.Set("w_extra", true))
	require.NoError(t, f.Set("w_all", true))
	require.NoError(t, f.Set("w_pedantic", false))
	require.NoError(t, f.Set("w_shadow", true))

	assert.Equal(t, []string{"w_all", "w_extra", "w_comment", "w_shadow"}, f.Enabled())
	assert.Equal(t, []string{"-Wall", "-Wextra", "-Wcomment", "-Wshadow"}, f.Options())

	enabled, ok := f.Get("w_pedantic")
	assert.True(t, ok)
	assert.False(t, enabled)

	keys := f.Keys()
	assert.Equal(t, []string{"w_comment", "w_shadow"}, keys[16:])
}

func TestCompilationFlags_Unset(t *testing.T) {
	f := NewCompilationFlags()
	require.NoError(t, f.Set("w_comment", true))
	require.NoError(t, f.Unset("w_comment"))
	_, ok := f.Get("w_comment")
	assert.False(t, ok)
	assert.Contains(t, f.Keys(), "w_comment")
	assert.Empty(t, f.Enabled())
}

func TestCompilationFlags_InvalidKey(t *testing.T) {
	f := NewCompilationFlags()
	for _, key := range []string{"all", "Wall", "w_", "", "-Wall"} {
		err := f.Set(key, true)
		require.Error(t, err, key)
		assert.True(t, errors.Is(err, errs.ErrInvalidFlag), key)
		assert.True(t, errors.Is(err, errs.Data), key)
	}
	assert.Len(t, f.Keys(), 16)
	assert.Error(t, f.Unset("bogus"))
}

func TestCompilationFlags_ZeroValue(t *testing.T) {
	var f CompilationFlags
	assert.Empty(t, f.Enabled())
	require.NoError(t, f.Set("w_all", true))
	assert.Equal(t, []string{"w_all"}, f.Enabled())
	assert.Len(t, f.Keys(), 16)

	var nilFlags *CompilationFlags
	assert.Empty(t, nilFlags.Enabled())
	assert.Len(t, nilFlags.Keys(), 16)
}

func TestCompilationFlags_Clone(t *testing.T) {
	f := NewCompilationFlags()
	require.NoError(t, f.Set("w_error", true))
	c := f.Clone()
	require.NoError(t, c.Set("w_all", true))

	assert.Equal(t, []string{"w_error"}, f.Enabled())
	assert.Equal(t, []string{"w_all", "w_error"}, c.Enabled())
}
