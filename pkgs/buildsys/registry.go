package buildsys

import (
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/goplus/lobs/formula"
	"github.com/goplus/lobs/pkgs/errs"
)

// Entry describes a registered exporter.
type Entry struct {
	// Tag selects the exporter, e.g. "cmake".
	Tag string
	// NewConfig returns the exporter's configuration with default values.
	NewConfig func() formula.ExporterConfig
	// New builds the exporter for a package.
	New func(pkg *formula.Package) (Exporter, error)
}

// Registry maps tags to exporters. It is filled once at program start and
// only read afterwards.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns a registry holding entries.
func NewRegistry(entries ...Entry) (*Registry, error) {
	r := &Registry{entries: make(map[string]Entry)}
	for _, e := range entries {
		if err := r.Register(e); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds e. Tags must be unique and non-empty.
func (r *Registry) Register(e Entry) error {
	if e.Tag == "" || e.New == nil || e.NewConfig == nil {
		return errors.Wrapf(errs.ErrInvalidConfig, "incomplete exporter entry %q", e.Tag)
	}
	if _, ok := r.entries[e.Tag]; ok {
		return errors.Wrapf(errs.ErrDuplicateExporter, "%q", e.Tag)
	}
	r.entries[e.Tag] = e
	return nil
}

// Lookup returns the entry registered for tag.
func (r *Registry) Lookup(tag string) (Entry, error) {
	e, ok := r.entries[tag]
	if !ok {
		return Entry{}, errors.WithHintf(
			errors.Wrapf(errs.ErrUnknownExporter, "%q", tag),
			"known exporters: %v", r.Tags())
	}
	return e, nil
}

// Tags returns the registered tags, sorted.
func (r *Registry) Tags() []string {
	tags := make([]string, 0, len(r.entries))
	for tag := range r.entries {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	_, ok := r.entries[tag]
	return ok
}

// NewConfig returns the default configuration of the exporter tag.
func (r *Registry) NewConfig(tag string) (formula.ExporterConfig, error) {
	e, err := r.Lookup(tag)
	if err != nil {
		return nil, err
	}
	return e.NewConfig(), nil
}

// New returns the exporter tag for pkg. Unknown tags are rejected before
// anything is constructed.
func (r *Registry) New(tag string, pkg *formula.Package) (Exporter, error) {
	e, err := r.Lookup(tag)
	if err != nil {
		return nil, err
	}
	return e.New(pkg)
}
