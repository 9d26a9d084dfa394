package formula

import (
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cockroachdb/errors"
	"github.com/goplus/lobs/pkgs/errs"
)

// Source produces one or more source file paths. Expansion is deferred until
// an exporter needs the files.
type Source interface {
	Expand() ([]string, error)
}

// File is a single source file.
type File string

func (f File) Expand() ([]string, error) {
	return []string{string(f)}, nil
}

// Glob matches files with a doublestar pattern, e.g. "src/**/*.cpp".
type Glob string

func (g Glob) Expand() ([]string, error) {
	matches, err := doublestar.FilepathGlob(string(g), doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "glob %s", string(g))
	}
	slices.Sort(matches)
	return matches, nil
}

// SourceFunc adapts a function into a Source.
type SourceFunc func() ([]string, error)

func (f SourceFunc) Expand() ([]string, error) {
	return f()
}

// Files converts paths into File sources.
func Files(paths ...string) []Source {
	srcs := make([]Source, len(paths))
	for i, p := range paths {
		srcs[i] = File(p)
	}
	return srcs
}

// ExpandSources flattens srcs in order. Every resulting path must be a
// regular file.
func ExpandSources(srcs []Source) ([]string, error) {
	var files []string
	for _, src := range srcs {
		paths, err := src.Expand()
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			fi, err := os.Stat(p)
			if err != nil || !fi.Mode().IsRegular() {
				return nil, errors.Wrapf(errs.ErrNotAFile, "%s", p)
			}
		}
		files = append(files, paths...)
	}
	return files, nil
}
