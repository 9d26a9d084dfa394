package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/goplus/lobs/internal/exporters"
	"github.com/goplus/lobs/pkgs/errs"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		configFile = ""
		exportWatch = false
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader on different
// goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// project lays out an application "hello" in root/app depending on a library
// "drivers" in root/drivers, with the application sources under main/.
func project(t *testing.T) (root string) {
	root = t.TempDir()
	writeFile(t, filepath.Join(root, "app", "main", "app.cpp"), "int main() {}\n")
	writeFile(t, filepath.Join(root, "app", "main", "util", "led.cpp"), "")
	writeFile(t, filepath.Join(root, "app", "lobs.hcl"), `
package "hello" {
  version = "1.0.0"
  depends = ["../drivers"]
}

application {
  sources = ["main/app.cpp", glob("main/util/*.cpp")]
  flags {
    w_all = true
  }
}

exporter "cmake" {
  minimum_cmake_version = "3.25"
}
`)
	writeFile(t, filepath.Join(root, "drivers", "gpio.cpp"), "")
	writeFile(t, filepath.Join(root, "drivers", "lobs.hcl"), `
package "drivers" {
  version = "0.3.0"
}

library {
  sources = ["gpio.cpp"]
}
`)
	return root
}

func TestTags(t *testing.T) {
	out, err := run(t, "tags")
	require.NoError(t, err)
	assert.Equal(t, "cmake\nesp-idf\n", out)
}

func TestExport_CMake(t *testing.T) {
	root := project(t)
	out, err := run(t, "export", "cmake", filepath.Join(root, "app"))
	require.NoError(t, err)
	assert.Equal(t, "Exported hello 1.0.0 with cmake\n", out)

	data, err := os.ReadFile(filepath.Join(root, "app", "CMakeLists.txt"))
	require.NoError(t, err)
	script := string(data)
	assert.Contains(t, script, "cmake_minimum_required(VERSION 3.25)\n")
	assert.Contains(t, script, "target_compile_options(hello PRIVATE -Wall)\n")
}

func TestExport_ESPIDF(t *testing.T) {
	root := project(t)
	_, err := run(t, "export", "esp-idf", filepath.Join(root, "app", "lobs.hcl"))
	require.NoError(t, err)

	for _, dir := range []string{"app", filepath.Join("app", "main"), "drivers"} {
		assert.FileExists(t, filepath.Join(root, dir, "CMakeLists.txt"))
	}
	data, err := os.ReadFile(filepath.Join(root, "app", "main", "CMakeLists.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "set(src_dirs . util)\n")
	assert.Contains(t, string(data), "set(deps drivers)\n")
}

func TestExport_DefaultTag(t *testing.T) {
	root := project(t)
	config := filepath.Join(t.TempDir(), "lobs.yaml")
	writeFile(t, config, "export:\n  default_tag: cmake\n")

	out, err := run(t, "--config", config, "export", filepath.Join(root, "app"))
	require.NoError(t, err)
	assert.Contains(t, out, "with cmake")
}

func TestExport_Errors(t *testing.T) {
	root := project(t)

	_, err := run(t, "export", "make", filepath.Join(root, "app"))
	assert.True(t, errors.Is(err, errs.ErrUnknownExporter))

	_, err = run(t, "export", "cmake", filepath.Join(root, "nowhere"))
	assert.True(t, errors.Is(err, errs.ErrMissingPath))

	// The cmake exporter does not handle libraries yet.
	_, err = run(t, "export", "cmake", filepath.Join(root, "drivers"))
	assert.True(t, errors.Is(err, errs.ErrNotImplemented))
}

func TestExportArgs(t *testing.T) {
	reg := exporters.Default()
	tests := []struct {
		name       string
		defaultTag string
		args       []string
		wantTag    string
		wantPath   string
	}{
		{"tag and path", "", []string{"cmake", "app"}, "cmake", "app"},
		{"tag only", "", []string{"esp-idf"}, "esp-idf", "."},
		{"unknown tag", "", []string{"app"}, "app", "."},
		{"path with default", "cmake", []string{"app"}, "cmake", "app"},
		{"tag with default", "cmake", []string{"esp-idf"}, "esp-idf", "."},
		{"default only", "esp-idf", nil, "esp-idf", "."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, path, err := exportArgs(reg, tt.defaultTag, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTag, tag)
			assert.Equal(t, tt.wantPath, path)
		})
	}

	_, _, err := exportArgs(reg, "", nil)
	assert.True(t, errors.Is(err, errs.ErrUnknownExporter))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestDescribe(t *testing.T) {
	root := project(t)
	out, err := run(t, "describe", filepath.Join(root, "app"))
	require.NoError(t, err)

	var views []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)

	app := views[0]
	assert.Equal(t, "hello", app["name"])
	assert.Equal(t, "1.0.0", app["version"])
	assert.Equal(t, "application", app["kind"])
	assert.Equal(t, []any{"main/app.cpp", "glob(main/util/*.cpp)"}, app["sources"])
	assert.Equal(t, []any{"w_all"}, app["flags"])
	assert.Equal(t, []any{"drivers"}, app["depends"])
	assert.Equal(t, map[string]any{
		"cmake": map[string]any{"minimum_cmake_version": "3.25"},
	}, app["exporters"])

	lib := views[1]
	assert.Equal(t, "drivers", lib["name"])
	assert.Equal(t, "library", lib["kind"])
	assert.Equal(t, 23, lib["cxx_standard"])
	assert.NotContains(t, lib, "depends")
}

func TestWatch(t *testing.T) {
	root := project(t)
	file := filepath.Join(root, "app", "lobs.hcl")
	content, err := os.ReadFile(file)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, out, exporters.Default(), "cmake", filepath.Join(root, "app"))
	}()

	contains := func(s string) func() bool {
		return func() bool { return strings.Contains(out.String(), s) }
	}
	require.Eventually(t, contains("Exported hello 1.0.0 with cmake"), 5*time.Second, 20*time.Millisecond)

	writeFile(t, file, strings.Replace(string(content), `version = "1.0.0"`, `version = "2.0.0"`, 1))
	require.Eventually(t, contains("Exported hello 2.0.0 with cmake"), 5*time.Second, 20*time.Millisecond)

	writeFile(t, file, `package "hello" {`)
	require.Eventually(t, contains("Export failed:"), 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}

func TestPrintError(t *testing.T) {
	var out bytes.Buffer
	err := errors.WithHint(errors.Wrap(errs.ErrMissingPath, "app.cpp"), "check the sources list")
	printError(&out, err)
	assert.Equal(t, "Error (filesystem precondition failed): app.cpp: referenced path does not exist\nHint: check the sources list\n", out.String())

	out.Reset()
	printError(&out, errors.New("boom"))
	assert.Equal(t, "Error: boom\n", out.String())
}
