package internal

import (
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goplus/lobs/formula"
	"github.com/goplus/lobs/formula/cpp"
	"github.com/goplus/lobs/internal/exporters"
	"github.com/goplus/lobs/internal/loader"
	"github.com/goplus/lobs/pkgs/buildsys"
)

var describeCmd = &cobra.Command{
	Use:   "describe [path]",
	Short: "Print a package and its dependencies",
	Long: `Describe loads the package described at path ("." by default) and prints
it, followed by every package it depends on, as YAML.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	}
	pkg, err := loader.New(exporters.Default()).Load(cmd.Context(), path)
	if err != nil {
		return err
	}
	return describe(cmd.OutOrStdout(), pkg)
}

type packageView struct {
	Name           string                            `yaml:"name"`
	Version        string                            `yaml:"version"`
	Description    string                            `yaml:"description,omitempty"`
	Path           string                            `yaml:"path"`
	Kind           string                            `yaml:"kind"`
	Sources        []string                          `yaml:"sources,omitempty"`
	IncludeDirs    []string                          `yaml:"include_dirs,omitempty"`
	CxxStandard    int                               `yaml:"cxx_standard,omitempty"`
	ExecutableName string                            `yaml:"executable_name,omitempty"`
	Flags          []string                          `yaml:"flags,omitempty"`
	Depends        []string                          `yaml:"depends,omitempty"`
	Exporters      map[string]formula.ExporterConfig `yaml:"exporters,omitempty"`
}

// describe writes pkg and every package it reaches as a YAML list.
func describe(out io.Writer, pkg *formula.Package) error {
	views := []packageView{view(pkg)}
	for _, d := range pkg.Reachable() {
		views = append(views, view(d))
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return err
	}
	return enc.Close()
}

func view(pkg *formula.Package) packageView {
	folder := pkg.Folder()
	v := packageView{
		Name:        pkg.Meta.Name,
		Version:     pkg.Meta.Version.String(),
		Description: pkg.Meta.Description,
		Path:        pkg.Path(),
		Kind:        pkg.Project.ProjectKind(),
	}
	for _, d := range pkg.Dependencies {
		v.Depends = append(v.Depends, d.Meta.Name)
	}
	if len(pkg.Meta.Configs) > 0 {
		v.Exporters = make(map[string]formula.ExporterConfig, len(pkg.Meta.Configs))
		for _, c := range pkg.Meta.Configs {
			v.Exporters[c.ExporterTag()] = c
		}
	}

	var (
		sources  []formula.Source
		includes []string
		flags    *cpp.CompilationFlags
	)
	switch prj := pkg.Project.(type) {
	case *cpp.ManagedApplication:
		sources, includes, flags = prj.Sources, prj.IncludeDirs, prj.Flags
		v.CxxStandard = prj.Standard()
		v.ExecutableName = prj.ExecutableName
	case *cpp.Library:
		sources, includes, flags = prj.Sources, prj.IncludeDirs, prj.Flags
		v.CxxStandard = prj.Standard()
	}
	for _, src := range sources {
		switch src := src.(type) {
		case formula.File:
			v.Sources = append(v.Sources, buildsys.RelPath(folder, string(src)))
		case formula.Glob:
			v.Sources = append(v.Sources, "glob("+buildsys.RelPath(folder, string(src))+")")
		default:
			v.Sources = append(v.Sources, "<dynamic>")
		}
	}
	for _, inc := range includes {
		v.IncludeDirs = append(v.IncludeDirs, buildsys.RelPath(folder, inc))
	}
	v.Flags = flags.Enabled()
	return v
}
