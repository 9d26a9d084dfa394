// Package exporters holds the table of exporters built into lobs.
package exporters

import (
	"sync"

	"github.com/goplus/lobs/pkgs/buildsys"
	"github.com/goplus/lobs/pkgs/buildsys/cmake"
	"github.com/goplus/lobs/pkgs/buildsys/espidf"
)

// Entries returns the built-in exporter entries.
func Entries() []buildsys.Entry {
	return []buildsys.Entry{
		cmake.Entry(),
		espidf.Entry(),
	}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *buildsys.Registry
)

// Default returns the registry of built-in exporters. It is built on first
// use and shared afterwards.
func Default() *buildsys.Registry {
	defaultOnce.Do(func() {
		r, err := buildsys.NewRegistry(Entries()...)
		if err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
