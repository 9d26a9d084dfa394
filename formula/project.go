// Package formula describes packages: their metadata, their project and
// the packages they depend on. Exporters read this model and never modify it.
package formula

import (
	"github.com/goplus/lobs/pkgs/version"
)

// -----------------------------------------------------------------------------

// Project is the build description of a package: an application, a library,
// or any other variant a language domain defines. Exporters type-switch on
// the concrete variants they support.
type Project interface {
	// ProjectKind returns a short name of the variant, e.g. "application".
	ProjectKind() string
}

// ExporterConfig is an exporter-specific configuration object carried by
// ProjectMeta. Exporters look their configuration up by exact concrete type,
// so a type embedding another exporter's configuration never matches it.
type ExporterConfig interface {
	// ExporterTag returns the tag of the exporter this configuration is for.
	ExporterTag() string
}

// -----------------------------------------------------------------------------

// ProjectMeta holds the metadata of a package.
type ProjectMeta struct {
	Name         string
	Version      version.Version
	Description  string
	Dependencies []*ProjectMeta
	Configs      []ExporterConfig
}
