// Package espidf exports C++ packages following the ESP-IDF build system
// conventions: a project directory with a "main" component, and one
// component directory per dependency.
//
// See https://docs.espressif.com/projects/esp-idf/en/stable/esp32/api-guides/build-system.html
package espidf

import (
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/goplus/lobs/formula"
	"github.com/goplus/lobs/formula/cpp"
	"github.com/goplus/lobs/internal/logger"
	"github.com/goplus/lobs/pkgs/buildsys"
	script "github.com/goplus/lobs/pkgs/cmake"
	"github.com/goplus/lobs/pkgs/errs"
)

// Tag selects this exporter.
const Tag = "esp-idf"

const (
	minimumVersion = "3.22"
	mainComponent  = "main"
	projectScript  = "$ENV{IDF_PATH}/tools/cmake/project.cmake"
	listDir        = "${CMAKE_CURRENT_LIST_DIR}"
)

// Config configures the ESP-IDF exporter.
type Config struct {
	// RequiredComponents are added to the REQUIRES of the main component.
	RequiredComponents []string `hcl:"required_components,optional" yaml:"required_components,omitempty"`
	// SDKConfigDefault is an sdkconfig.defaults file. Relative paths are
	// resolved against the project folder.
	SDKConfigDefault string `hcl:"sdk_config_default,optional" yaml:"sdk_config_default,omitempty"`
}

// DefaultConfig returns the configuration used when a package has none.
func DefaultConfig() *Config {
	return &Config{}
}

func (*Config) ExporterTag() string { return Tag }

// Exporter writes the ESP-IDF component tree of a package.
type Exporter struct {
	buildsys.Base[*Config]
}

var _ buildsys.Exporter = (*Exporter)(nil)

// New returns the ESP-IDF exporter of pkg.
func New(pkg *formula.Package) (*Exporter, error) {
	return &Exporter{Base: buildsys.NewBase(pkg, DefaultConfig)}, nil
}

// Entry returns the registry entry of this exporter.
func Entry() buildsys.Entry {
	return buildsys.Entry{
		Tag:       Tag,
		NewConfig: func() formula.ExporterConfig { return DefaultConfig() },
		New: func(pkg *formula.Package) (buildsys.Exporter, error) {
			return New(pkg)
		},
	}
}

// Export writes the package's files. For an application, every package it
// depends on, directly or not, is exported in place as well, once.
func (e *Exporter) Export(ctx context.Context) error {
	if _, ok := e.Package.Project.(*cpp.ManagedApplication); !ok {
		return e.exportOne(ctx)
	}
	if err := e.exportOne(ctx); err != nil {
		return err
	}
	for _, dep := range e.Package.Reachable() {
		de, err := New(dep)
		if err != nil {
			return err
		}
		if err := de.exportOne(ctx); err != nil {
			return errors.Wrapf(err, "esp-idf: dependency of %s", e.Package.Meta.Name)
		}
	}
	return nil
}

func (e *Exporter) exportOne(ctx context.Context) error {
	meta := e.Package.Meta
	var err error
	switch prj := e.Package.Project.(type) {
	case *cpp.ManagedApplication:
		err = e.application(ctx, prj)
	case *cpp.Library:
		err = e.library(ctx, prj)
	default:
		return errors.Wrapf(errs.ErrUnsupportedProject, "esp-idf: %s %s", meta.Name, prj.ProjectKind())
	}
	if err != nil {
		return err
	}
	logger.Logger.Infow("exported package", "exporter", Tag, "package", meta.Name, "kind", e.Package.Project.ProjectKind())
	return nil
}

func (e *Exporter) library(ctx context.Context, lib *cpp.Library) error {
	w, err := Component(lib, e.ProjectFolder(), dependencyNames(e.Package))
	if err != nil {
		return errors.Wrapf(err, "esp-idf: %s", e.Package.Meta.Name)
	}
	return e.write(ctx, w, e.ProjectFolder())
}

func (e *Exporter) write(ctx context.Context, w *script.Writer, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := w.WriteToDir(dir)
	if err != nil {
		return errors.Wrapf(err, "esp-idf: write %s", e.Package.Meta.Name)
	}
	logger.Logger.Debugw("wrote script", "exporter", Tag, "package", e.Package.Meta.Name, "path", path)
	return nil
}

func (e *Exporter) application(ctx context.Context, app *cpp.ManagedApplication) error {
	meta := e.Package.Meta
	folder := e.ProjectFolder()

	// ESP-IDF keeps no sources next to the root CMakeLists.txt: they all
	// belong to components, the application's own being "main".
	mainDir := filepath.Join(folder, mainComponent)
	if fi, err := os.Stat(mainDir); err != nil || !fi.IsDir() {
		return errors.WithHintf(
			errors.Wrapf(errs.ErrMissingDirectory, "esp-idf: %s", mainDir),
			"create the %q component directory next to the package description", mainComponent)
	}
	if err := e.checkFolders(mainDir); err != nil {
		return err
	}
	sources, err := formula.ExpandSources(app.Sources)
	if err != nil {
		return errors.Wrapf(err, "esp-idf: %s", meta.Name)
	}
	for _, src := range sources {
		if !buildsys.Within(mainDir, src) {
			return errors.WithHintf(
				errors.Wrapf(errs.ErrMisplacedSource, "esp-idf: %s", src),
				"all sources of an application must be located in %s", mainDir)
		}
	}

	lib := &cpp.Library{
		Sources:     formula.Files(sources...),
		IncludeDirs: app.IncludeDirs,
		CxxStandard: app.Standard(),
		Flags:       app.Flags.Clone(),
	}
	requires := append(dependencyNames(e.Package), e.Config.RequiredComponents...)
	mainScript, err := Component(lib, mainDir, requires)
	if err != nil {
		return errors.Wrapf(err, "esp-idf: %s", meta.Name)
	}

	w := script.New(minimumVersion)
	w.Set(script.Var{Name: "CMAKE_CXX_STANDARD"}, script.Int(app.Standard()))

	if dirs := e.Package.DependencyFolders(); len(dirs) > 0 {
		var missing []string
		refs := make([]script.Value, 0, len(dirs))
		for _, dir := range dirs {
			if _, err := os.Stat(dir); err != nil {
				missing = append(missing, dir)
				continue
			}
			refs = append(refs, script.String(listDirRef(folder, dir)))
		}
		if len(missing) > 0 {
			return errors.Wrapf(errs.ErrMissingPath, "esp-idf: dependency folders %v", missing)
		}
		w.List("EXTRA_COMPONENT_DIRS").Append(refs...)
	}

	if sdkconfig := e.Config.SDKConfigDefault; sdkconfig != "" {
		if !filepath.IsAbs(sdkconfig) {
			sdkconfig = filepath.Join(folder, sdkconfig)
		}
		if _, err := os.Stat(sdkconfig); err != nil {
			return errors.Wrapf(errs.ErrMissingPath, "esp-idf: sdkconfig defaults %s", sdkconfig)
		}
		w.List("SDKCONFIG_DEFAULTS").Append(script.String(listDirRef(folder, sdkconfig)))
	}

	w.Variable("COMPONENTS").Set(script.Strings(mainComponent))

	_ = w.Group(func() error {
		w.Include(projectScript)
		w.Call("project", script.String(meta.Name))
		return nil
	})

	if err := e.write(ctx, mainScript, mainDir); err != nil {
		return err
	}
	return e.write(ctx, w, folder)
}

// checkFolders makes sure no package reached by the application writes
// into the application folder, its main component or another dependency's
// folder.
func (e *Exporter) checkFolders(mainDir string) error {
	owners := map[string]*formula.Package{
		e.ProjectFolder(): e.Package,
		mainDir:           e.Package,
	}
	for _, dep := range e.Package.Reachable() {
		dir := dep.Folder()
		if owner, ok := owners[dir]; ok {
			return errors.WithHintf(
				errors.Wrapf(errs.ErrFolderConflict, "esp-idf: %s and %s both export into %s",
					owner.Meta.Name, dep.Meta.Name, dir),
				"every ESP-IDF component needs a directory of its own")
		}
		owners[dir] = dep
	}
	return nil
}

// Component renders the component script of lib located in dir, requiring
// the components named in requires.
func Component(lib *cpp.Library, dir string, requires []string) (*script.Writer, error) {
	files, err := formula.ExpandSources(lib.Sources)
	if err != nil {
		return nil, err
	}

	// ESP-IDF takes source directories rather than files.
	seen := make(map[string]bool)
	var srcDirs []string
	for _, f := range files {
		d := buildsys.RelPath(dir, filepath.Dir(f))
		if !seen[d] {
			seen[d] = true
			srcDirs = append(srcDirs, d)
		}
	}
	slices.Sort(srcDirs)

	incDirs := make([]string, len(lib.IncludeDirs))
	for i, inc := range lib.IncludeDirs {
		incDirs[i] = buildsys.RelPath(dir, inc)
	}

	w := script.New(minimumVersion)
	srcVar := w.Set(script.Var{Name: "src_dirs"}, script.Paths(srcDirs...))
	incVar := w.Set(script.Var{Name: "inc_dirs"}, script.Paths(incDirs...))
	depVar := w.Set(script.Var{Name: "deps"}, script.Strings(requires...))

	w.Call("idf_component_register",
		script.KV("SRC_DIRS", srcVar),
		script.KV("INCLUDE_DIRS", incVar),
		script.KV("REQUIRES", depVar),
	)

	_ = w.Group(func() error {
		w.Set(script.Var{Name: "CMAKE_CXX_STANDARD"}, script.Int(lib.Standard()))
		w.Set(script.Var{Name: "CMAKE_CXX_STANDARD_REQUIRED"}, script.Bool(true))
		return nil
	})

	if opts := lib.Flags.Options(); len(opts) > 0 {
		args := []script.Value{script.Var{Name: "COMPONENT_LIB"}, script.String("PRIVATE")}
		args = append(args, script.Strings(opts...)...)
		w.Call("target_compile_options", args...)
	}
	return w, nil
}

func dependencyNames(pkg *formula.Package) []string {
	names := make([]string, len(pkg.Dependencies))
	for i, d := range pkg.Dependencies {
		names[i] = d.Meta.Name
	}
	return names
}

// listDirRef refers to path from a script located in dir.
func listDirRef(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return listDir + "/" + filepath.ToSlash(rel)
}
