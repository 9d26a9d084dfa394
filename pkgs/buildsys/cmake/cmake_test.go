package cmake

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/goplus/lobs/formula"
	"github.com/goplus/lobs/formula/cpp"
	"github.com/goplus/lobs/pkgs/errs"
	"github.com/goplus/lobs/pkgs/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("int main() {}\n"), 0o644))
	return path
}

func newPackage(t *testing.T, dir string, proj formula.Project, configs ...formula.ExporterConfig) *formula.Package {
	t.Helper()
	meta := &formula.ProjectMeta{
		Name:    "hello",
		Version: version.MustParse("1.2.3"),
		Configs: configs,
	}
	pkg, err := formula.NewPackage(filepath.Join(dir, "lobs.hcl"), meta, proj)
	require.NoError(t, err)
	return pkg
}

func export(t *testing.T, pkg *formula.Package) string {
	t.Helper()
	e, err := New(pkg)
	require.NoError(t, err)
	require.NoError(t, e.Export(context.Background()))
	data, err := os.ReadFile(filepath.Join(pkg.Folder(), "CMakeLists.txt"))
	require.NoError(t, err)
	return string(data)
}

func TestExport_SingleFileApplication(t *testing.T) {
	dir := t.TempDir()
	app := cpp.NewApplication(formula.File(touch(t, filepath.Join(dir, "src", "main.cpp"))))

	got := export(t, newPackage(t, dir, app))
	assert.Equal(t, `cmake_minimum_required(VERSION 3.22)

project(hello VERSION 1.2.3 LANGUAGES CXX)

set(CMAKE_CXX_STANDARD 23)
set(CMAKE_CXX_STANDARD_REQUIRED ON)
add_executable(hello src/main.cpp)
`, got)
	assert.NotContains(t, got, "target_compile_options")
}

func TestExport_Flags(t *testing.T) {
	dir := t.TempDir()
	app := cpp.NewApplication(formula.File(touch(t, filepath.Join(dir, "main.cpp"))))
	require.NoError(t, app.Flags.Set("w_comment", true))
	require.NoError(t, app.Flags.Set("w_extra", true))
	require.NoError(t, app.Flags.Set("w_all", true))
	require.NoError(t, app.Flags.Set("w_error", false))
	require.NoError(t, app.Flags.Set("w_no_unused_variable", true))

	got := export(t, newPackage(t, dir, app))
	assert.Contains(t, got, `add_executable(hello main.cpp)

target_compile_options(
    hello
    PRIVATE
    -Wall
    -Wextra
    -Wno-unused-variable
    -Wcomment
)
`)
}

func TestExport_Options(t *testing.T) {
	dir := t.TempDir()
	app := cpp.NewApplication(
		formula.File(touch(t, filepath.Join(dir, "main.cpp"))),
		formula.Glob(filepath.Join(dir, "src", "*.cpp")),
	)
	touch(t, filepath.Join(dir, "src", "a.cpp"))
	touch(t, filepath.Join(dir, "src", "b.cpp"))
	app.CxxStandard = 17
	app.ExecutableName = "hello-bin"

	pkg := newPackage(t, dir, app, &Config{MinimumVersion: "3.25"})
	pkg.Meta.Description = "Says hello"

	assert.Equal(t, `cmake_minimum_required(VERSION 3.25)

project(
    hello
    VERSION 1.2.3
    DESCRIPTION "Says hello"
    LANGUAGES CXX
)

set(CMAKE_CXX_STANDARD 17)
set(CMAKE_CXX_STANDARD_REQUIRED ON)
add_executable(
    hello-bin
    main.cpp
    src/a.cpp
    src/b.cpp
)
`, export(t, pkg))
}

func TestExport_Idempotent(t *testing.T) {
	dir := t.TempDir()
	app := cpp.NewApplication(formula.File(touch(t, filepath.Join(dir, "main.cpp"))))
	require.NoError(t, app.Flags.Set("w_all", true))
	pkg := newPackage(t, dir, app)

	first := export(t, pkg)
	second := export(t, pkg)
	assert.Equal(t, first, second)
}

func TestExport_Library(t *testing.T) {
	dir := t.TempDir()
	e, err := New(newPackage(t, dir, cpp.NewLibrary()))
	require.NoError(t, err)

	err = e.Export(context.Background())
	assert.True(t, errors.Is(err, errs.ErrNotImplemented))
	assert.True(t, errors.Is(err, errs.Configuration))
	assert.NoFileExists(t, filepath.Join(dir, "CMakeLists.txt"))
}

type firmware struct{}

func (firmware) ProjectKind() string { return "firmware" }

func TestExport_Unsupported(t *testing.T) {
	e, err := New(newPackage(t, t.TempDir(), firmware{}))
	require.NoError(t, err)
	err = e.Export(context.Background())
	assert.True(t, errors.Is(err, errs.ErrUnsupportedProject))
}

func TestExport_MissingSource(t *testing.T) {
	dir := t.TempDir()
	app := cpp.NewApplication(formula.File(filepath.Join(dir, "nope.cpp")))
	e, err := New(newPackage(t, dir, app))
	require.NoError(t, err)

	err = e.Export(context.Background())
	assert.True(t, errors.Is(err, errs.ErrNotAFile))
	assert.NoFileExists(t, filepath.Join(dir, "CMakeLists.txt"))
}

func TestExport_Canceled(t *testing.T) {
	dir := t.TempDir()
	app := cpp.NewApplication(formula.File(touch(t, filepath.Join(dir, "main.cpp"))))
	e, err := New(newPackage(t, dir, app))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, e.Export(ctx), context.Canceled)
}

type customConfig struct{ Config }

func TestNew_Config(t *testing.T) {
	dir := t.TempDir()
	app := cpp.NewApplication()

	e, err := New(newPackage(t, dir, app))
	require.NoError(t, err)
	assert.Equal(t, DefaultMinimumVersion, e.Config.MinimumVersion)

	e, err = New(newPackage(t, dir, app, &customConfig{Config{MinimumVersion: "3.10"}}))
	require.NoError(t, err)
	assert.Equal(t, DefaultMinimumVersion, e.Config.MinimumVersion)

	e, err = New(newPackage(t, dir, app, &Config{}))
	require.NoError(t, err)
	assert.Equal(t, DefaultMinimumVersion, e.Config.MinimumVersion)

	_, err = New(newPackage(t, dir, app, &Config{MinimumVersion: "three"}))
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))
}

func TestEntry(t *testing.T) {
	entry := Entry()
	assert.Equal(t, Tag, entry.Tag)
	assert.Equal(t, DefaultConfig(), entry.NewConfig())
}
