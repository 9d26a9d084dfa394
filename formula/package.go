package formula

import (
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/goplus/lobs/pkgs/errs"
)

// Package pairs a project with its metadata and the packages it depends on.
// Dependencies are shared: a package may be required by several others and
// exporters never modify them.
type Package struct {
	Meta         *ProjectMeta
	Project      Project
	Dependencies []*Package

	path string
}

// NewPackage returns a package described by the file at path.
func NewPackage(path string, meta *ProjectMeta, proj Project, deps ...*Package) (*Package, error) {
	if meta == nil || meta.Name == "" {
		return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s: package name is empty", path)
	}
	if proj == nil {
		return nil, errors.Wrapf(errs.ErrInvalidPackage, "%s: package %s has no project", path, meta.Name)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	p := &Package{Meta: meta, Project: proj, path: abs}
	p.Require(deps...)
	return p, nil
}

// Require declares that p depends on deps.
func (p *Package) Require(deps ...*Package) {
	for _, d := range deps {
		p.Dependencies = append(p.Dependencies, d)
		if !slices.Contains(p.Meta.Dependencies, d.Meta) {
			p.Meta.Dependencies = append(p.Meta.Dependencies, d.Meta)
		}
	}
}

// Path returns the absolute path of the file that described p.
func (p *Package) Path() string {
	return p.path
}

// Folder returns the directory containing the file that described p.
func (p *Package) Folder() string {
	return filepath.Dir(p.path)
}

// DependencyFolders returns the folders of every package reachable from p,
// sorted and deduplicated, excluding p's own folder.
func (p *Package) DependencyFolders() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, d := range p.Reachable() {
		dir := d.Folder()
		if seen[dir] {
			continue
		}
		seen[dir] = true
		dirs = append(dirs, dir)
	}
	dirs = slices.DeleteFunc(dirs, func(dir string) bool { return dir == p.Folder() })
	slices.Sort(dirs)
	return dirs
}

// Reachable returns every package reachable from p through dependencies,
// depth first in declaration order, each once and excluding p itself.
func (p *Package) Reachable() []*Package {
	seen := map[*Package]bool{p: true}
	var out []*Package
	var visit func(*Package)
	visit = func(cur *Package) {
		for _, d := range cur.Dependencies {
			if seen[d] {
				continue
			}
			seen[d] = true
			out = append(out, d)
			visit(d)
		}
	}
	visit(p)
	return out
}
