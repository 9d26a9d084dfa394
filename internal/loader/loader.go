// Package loader reads project descriptions into packages.
//
// A description is an HCL file, conventionally named lobs.hcl:
//
//	package "blinky" {
//	  version = "1.2.3"
//	  depends = ["../drivers"]
//	}
//
//	application {
//	  sources = ["main/main.cpp", glob("main/**/*.cpp")]
//	  flags {
//	    w_all = true
//	  }
//	}
//
//	exporter "esp-idf" {
//	  required_components = ["esp_wifi"]
//	}
//
// Relative paths are resolved against the directory of the description.
package loader

import (
	"cmp"
	"context"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/goplus/lobs/formula"
	"github.com/goplus/lobs/formula/cpp"
	"github.com/goplus/lobs/internal/logger"
	"github.com/goplus/lobs/pkgs/buildsys"
	"github.com/goplus/lobs/pkgs/errs"
	"github.com/goplus/lobs/pkgs/version"
)

// FileName is the description looked up when a directory is loaded.
const FileName = "lobs.hcl"

// Loader loads descriptions and the descriptions they depend on.
type Loader struct {
	registry *buildsys.Registry
}

// New returns a loader decoding exporter blocks with the configurations
// registered in registry.
func New(registry *buildsys.Registry) *Loader {
	return &Loader{registry: registry}
}

// Load reads the description at path, a file or a directory containing
// lobs.hcl, along with its dependencies. Within one call every description
// is read once: shared and cyclic dependencies resolve to the same package.
func (l *Loader) Load(ctx context.Context, path string) (*formula.Package, error) {
	s := &session{
		registry: l.registry,
		parser:   hclparse.NewParser(),
		evalCtx:  evalContext(),
		packages: make(map[string]*formula.Package),
	}
	return s.load(ctx, path)
}

// Files returns the description files pkg was loaded from: its own followed
// by those of every package it reaches.
func Files(pkg *formula.Package) []string {
	files := []string{pkg.Path()}
	for _, d := range pkg.Reachable() {
		files = append(files, d.Path())
	}
	return files
}

// session is the state of a single Load call.
type session struct {
	registry *buildsys.Registry
	parser   *hclparse.Parser
	evalCtx  *hcl.EvalContext
	packages map[string]*formula.Package
}

func (s *session) load(ctx context.Context, path string) (*formula.Package, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := locate(path)
	if err != nil {
		return nil, err
	}
	if pkg, ok := s.packages[file]; ok {
		return pkg, nil
	}

	f, diags := s.parser.ParseHCLFile(file)
	if diags.HasErrors() {
		return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s", diags.Error())
	}
	var desc descriptionFile
	if diags := gohcl.DecodeBody(f.Body, s.evalCtx, &desc); diags.HasErrors() {
		return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s", diags.Error())
	}

	dir := filepath.Dir(file)
	meta, err := s.meta(file, &desc)
	if err != nil {
		return nil, err
	}
	proj, err := s.project(file, dir, &desc)
	if err != nil {
		return nil, err
	}
	pkg, err := formula.NewPackage(file, meta, proj)
	if err != nil {
		return nil, err
	}
	// Registered before the dependencies so a cycle ends here.
	s.packages[file] = pkg
	logger.Logger.Debugw("loaded description", "path", file, "package", meta.Name, "kind", proj.ProjectKind())

	for _, dep := range desc.Packages[0].Depends {
		d, err := s.load(ctx, absPath(dir, dep))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: dependency %q", meta.Name, dep)
		}
		pkg.Require(d)
	}
	return pkg, nil
}

// locate returns the absolute path of the description file at path.
func locate(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(errs.ErrMissingPath, "%s", abs)
	}
	if !fi.IsDir() {
		return abs, nil
	}
	file := filepath.Join(abs, FileName)
	if _, err := os.Stat(file); err != nil {
		return "", errors.WithHintf(
			errors.Wrapf(errs.ErrMissingPath, "%s", file),
			"a package directory must contain a %s description", FileName)
	}
	return file, nil
}

func absPath(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func absPaths(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = absPath(dir, p)
	}
	return out
}

func (s *session) meta(file string, desc *descriptionFile) (*formula.ProjectMeta, error) {
	switch n := len(desc.Packages); {
	case n == 0:
		return nil, errors.WithHintf(
			errors.Wrapf(errs.ErrNoPackage, "%s", file),
			`declare the package with a package "name" { version = "0.1.0" } block`)
	case n > 1:
		return nil, errors.Wrapf(errs.ErrMultiplePackages, "%s: %d package blocks", file, n)
	}
	blk := desc.Packages[0]
	ver, err := version.Parse(blk.Version)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: package %s", file, blk.Name)
	}
	configs, err := s.configs(file, desc.Exporters)
	if err != nil {
		return nil, err
	}
	return &formula.ProjectMeta{
		Name:        blk.Name,
		Version:     ver,
		Description: blk.Description,
		Configs:     configs,
	}, nil
}

// configs decodes exporter blocks into the configurations of their tags.
func (s *session) configs(file string, blocks []*exporterBlock) ([]formula.ExporterConfig, error) {
	var configs []formula.ExporterConfig
	seen := make(map[string]bool)
	for _, blk := range blocks {
		if seen[blk.Tag] {
			return nil, errors.Wrapf(errs.ErrDuplicateExporter, "%s: exporter %q configured twice", file, blk.Tag)
		}
		seen[blk.Tag] = true

		cfg, err := s.registry.NewConfig(blk.Tag)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", file)
		}
		if diags := gohcl.DecodeBody(blk.Body, s.evalCtx, cfg); diags.HasErrors() {
			return nil, errors.Wrapf(errs.ErrInvalidConfig, "%s", diags.Error())
		}
		if v, ok := cfg.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				return nil, errors.Wrapf(err, "%s: exporter %q", file, blk.Tag)
			}
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

func (s *session) project(file, dir string, desc *descriptionFile) (formula.Project, error) {
	if n := len(desc.Applications) + len(desc.Libraries); n != 1 {
		return nil, errors.WithHintf(
			errors.Wrapf(errs.ErrInvalidPackage, "%s: %d project blocks", file, n),
			"describe the project with exactly one application or library block")
	}

	isApp := len(desc.Applications) == 1
	blk := desc.Applications
	if !isApp {
		blk = desc.Libraries
	}
	prj := blk[0]
	if prj.CxxStandard < 0 {
		return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s: cxx_standard %d", file, prj.CxxStandard)
	}
	sources, err := s.sources(dir, prj.Sources)
	if err != nil {
		return nil, err
	}
	flags, err := s.flags(prj.Flags)
	if err != nil {
		return nil, err
	}

	if isApp {
		app := cpp.NewApplication(sources...)
		app.IncludeDirs = absPaths(dir, prj.IncludeDirs)
		app.Flags = flags
		app.ExecutableName = prj.ExecutableName
		if prj.CxxStandard != 0 {
			app.CxxStandard = prj.CxxStandard
		}
		return app, nil
	}
	if prj.ExecutableName != "" {
		return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s: executable_name is only valid in an application", file)
	}
	lib := cpp.NewLibrary(sources...)
	lib.IncludeDirs = absPaths(dir, prj.IncludeDirs)
	lib.Flags = flags
	if prj.CxxStandard != 0 {
		lib.CxxStandard = prj.CxxStandard
	}
	return lib, nil
}

// sources evaluates a sources attribute: a string, a glob() call, or a list
// of both.
func (s *session) sources(dir string, expr hcl.Expression) ([]formula.Source, error) {
	if expr == nil {
		return nil, nil
	}
	val, diags := expr.Value(s.evalCtx)
	if diags.HasErrors() {
		return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s", diags.Error())
	}
	if val.IsNull() {
		return nil, nil
	}

	elems := []cty.Value{val}
	if ty := val.Type(); ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		elems = val.AsValueSlice()
	}
	srcs := make([]formula.Source, 0, len(elems))
	for _, v := range elems {
		switch {
		case v.IsNull() || !v.IsKnown():
			return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s: null source", expr.Range())
		case v.Type().Equals(cty.String):
			srcs = append(srcs, formula.File(absPath(dir, v.AsString())))
		case v.Type().Equals(globType):
			srcs = append(srcs, formula.Glob(absPath(dir, v.GetAttr("glob").AsString())))
		default:
			return nil, errors.Wrapf(errs.ErrInvalidPackage,
				"%s: sources must be strings or glob() calls, got %s", expr.Range(), v.Type().FriendlyName())
		}
	}
	return srcs, nil
}

// flags reads a flags block. Keys keep the order in which they appear in
// the file; a null value leaves the key unset.
func (s *session) flags(blk *flagsBlock) (*cpp.CompilationFlags, error) {
	flags := cpp.NewCompilationFlags()
	if blk == nil {
		return flags, nil
	}
	attrs, diags := blk.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Wrapf(errs.ErrInvalidFlag, "%s", diags.Error())
	}
	ordered := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ordered = append(ordered, attr)
	}
	slices.SortFunc(ordered, func(a, b *hcl.Attribute) int {
		return cmp.Compare(a.Range.Start.Byte, b.Range.Start.Byte)
	})

	for _, attr := range ordered {
		val, diags := attr.Expr.Value(s.evalCtx)
		if diags.HasErrors() {
			return nil, errors.Wrapf(errs.ErrInvalidFlag, "%s", diags.Error())
		}
		if val.IsNull() {
			if err := flags.Unset(attr.Name); err != nil {
				return nil, errors.Wrapf(err, "%s", attr.NameRange)
			}
			continue
		}
		var enabled bool
		if err := gocty.FromCtyValue(val, &enabled); err != nil {
			return nil, errors.Wrapf(errs.ErrInvalidFlag, "%s: %s must be a bool", attr.NameRange, attr.Name)
		}
		if err := flags.Set(attr.Name, enabled); err != nil {
			return nil, errors.Wrapf(err, "%s", attr.NameRange)
		}
	}
	return flags, nil
}
