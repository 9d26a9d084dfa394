// Package cmake exports C++ packages as a plain CMake project.
package cmake

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	"github.com/goplus/lobs/formula"
	"github.com/goplus/lobs/formula/cpp"
	"github.com/goplus/lobs/internal/logger"
	"github.com/goplus/lobs/pkgs/buildsys"
	script "github.com/goplus/lobs/pkgs/cmake"
	"github.com/goplus/lobs/pkgs/errs"
)

// Tag selects this exporter.
const Tag = "cmake"

// DefaultMinimumVersion is the default cmake_minimum_required version.
const DefaultMinimumVersion = "3.22"

// Config configures the CMake exporter.
type Config struct {
	MinimumVersion string `hcl:"minimum_cmake_version,optional" yaml:"minimum_cmake_version"`
}

// DefaultConfig returns the configuration used when a package has none.
func DefaultConfig() *Config {
	return &Config{MinimumVersion: DefaultMinimumVersion}
}

func (*Config) ExporterTag() string { return Tag }

// Validate checks that MinimumVersion is a CMake version such as "3.22" or
// "3.25.1".
func (c *Config) Validate() error {
	if _, err := semver.NewVersion(c.MinimumVersion); err != nil {
		return errors.Wrapf(errs.ErrInvalidConfig, "minimum_cmake_version %q: %v", c.MinimumVersion, err)
	}
	return nil
}

// Exporter writes a single CMakeLists.txt next to the package description.
type Exporter struct {
	buildsys.Base[*Config]
}

var _ buildsys.Exporter = (*Exporter)(nil)

// New returns the CMake exporter of pkg.
func New(pkg *formula.Package) (*Exporter, error) {
	e := &Exporter{Base: buildsys.NewBase(pkg, DefaultConfig)}
	if e.Config.MinimumVersion == "" {
		e.Config = DefaultConfig()
	}
	if err := e.Config.Validate(); err != nil {
		return nil, err
	}
	return e, nil
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

// Export writes <project folder>/CMakeLists.txt.
func (e *Exporter) Export(ctx context.Context) error {
	var w *script.Writer
	var err error
	switch prj := e.Package.Project.(type) {
	case *cpp.ManagedApplication:
		w, err = e.application(prj)
	case *cpp.Library:
		return errors.Wrapf(errs.ErrNotImplemented, "cmake: library %s", e.Package.Meta.Name)
	default:
		return errors.Wrapf(errs.ErrUnsupportedProject, "cmake: %s %s", e.Package.Meta.Name, prj.ProjectKind())
	}
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := w.WriteToDir(e.ProjectFolder())
	if err != nil {
		return errors.Wrapf(err, "cmake: write %s", e.Package.Meta.Name)
	}
	logger.Logger.Debugw("wrote script", "exporter", Tag, "package", e.Package.Meta.Name, "path", path)
	logger.Logger.Infow("exported package", "exporter", Tag, "package", e.Package.Meta.Name)
	return nil
}

func (e *Exporter) application(app *cpp.ManagedApplication) (*script.Writer, error) {
	meta := e.Package.Meta
	sources, err := formula.ExpandSources(app.Sources)
	if err != nil {
		return nil, errors.Wrapf(err, "cmake: %s", meta.Name)
	}

	w := script.New(e.Config.MinimumVersion)
	prj := w.Project(meta.Name, script.ProjectOptions{
		Version:     meta.Version.String(),
		Description: meta.Description,
		Languages:   []string{"CXX"},
	})

	_ = w.Group(func() error {
		w.Set(script.Var{Name: "CMAKE_CXX_STANDARD"}, script.Int(app.Standard()))
		w.Set(script.Var{Name: "CMAKE_CXX_STANDARD_REQUIRED"}, script.Bool(true))
		return nil
	})

	target := prj.Name
	if app.ExecutableName != "" {
		target = app.ExecutableName
	}
	args := []script.Value{script.String(target)}
	for _, src := range sources {
		args = append(args, script.Path(buildsys.RelPath(e.ProjectFolder(), src)))
	}
	w.Call("add_executable", args...)

	if opts := app.Flags.Options(); len(opts) > 0 {
		args := []script.Value{script.String(target), script.String("PRIVATE")}
		args = append(args, script.Strings(opts...)...)
		w.Call("target_compile_options", args...)
	}
	return w, nil
}
