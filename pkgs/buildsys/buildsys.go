// Package buildsys defines the exporter protocol: turning a formula.Package
// into the files of one build system.
package buildsys

import (
	"context"
	"path/filepath"

	"github.com/goplus/lobs/formula"
)

// Exporter writes the build files of a package.
type Exporter interface {
	// Export writes every file of the package. Files written before a
	// failure are left in place.
	Export(ctx context.Context) error
}

// Base carries what every exporter needs: the package and the exporter's
// resolved configuration.
type Base[T formula.ExporterConfig] struct {
	Package *formula.Package
	Config  T
}

// NewBase resolves the configuration of type T for pkg.
func NewBase[T formula.ExporterConfig](pkg *formula.Package, defaults func() T) Base[T] {
	return Base[T]{
		Package: pkg,
		Config:  ResolveConfig(pkg.Meta, defaults),
	}
}

// ProjectFolder returns the directory of the package description.
func (b Base[T]) ProjectFolder() string {
	return filepath.Dir(b.Package.Path())
}

// ResolveConfig returns the first configuration in meta whose concrete type
// is exactly T, or defaults() when there is none. A type that merely embeds
// T does not match.
func ResolveConfig[T formula.ExporterConfig](meta *formula.ProjectMeta, defaults func() T) T {
	for _, c := range meta.Configs {
		if cfg, ok := c.(T); ok {
			return cfg
		}
	}
	return defaults()
}
