// Package errs defines the error taxonomy shared by the description loader
// and the exporters.
//
// Every sentinel is marked with exactly one category, so callers can test
// either the specific condition or its category:
//
//	errors.Is(err, errs.ErrMissingDirectory) // specific
//	errors.Is(err, errs.Precondition)        // category
package errs

import "github.com/cockroachdb/errors"

// Categories.
var (
	// Configuration errors come from the chosen exporter or project variant.
	Configuration = errors.New("configuration error")
	// Precondition errors report a filesystem layout the exporter cannot use.
	Precondition = errors.New("filesystem precondition failed")
	// Data errors report malformed project descriptions.
	Data = errors.New("invalid project data")
)

var (
	ErrUnknownExporter    = errors.Mark(errors.New("unknown exporter"), Configuration)
	ErrDuplicateExporter  = errors.Mark(errors.New("exporter already registered"), Configuration)
	ErrUnsupportedProject = errors.Mark(errors.New("unsupported project variant"), Configuration)
	ErrNotImplemented     = errors.Mark(errors.New("export not implemented"), Configuration)
	ErrInvalidConfig      = errors.Mark(errors.New("invalid exporter configuration"), Configuration)

	ErrMissingDirectory = errors.Mark(errors.New("required directory does not exist"), Precondition)
	ErrMisplacedSource  = errors.Mark(errors.New("source file outside required directory"), Precondition)
	ErrMissingPath      = errors.Mark(errors.New("referenced path does not exist"), Precondition)
	ErrNotAFile         = errors.Mark(errors.New("source path is not a file"), Precondition)
	ErrFolderConflict   = errors.Mark(errors.New("packages share an output folder"), Precondition)

	ErrNoPackage        = errors.Mark(errors.New("no package found"), Data)
	ErrMultiplePackages = errors.Mark(errors.New("more than one package found"), Data)
	ErrInvalidFlag      = errors.Mark(errors.New("invalid compilation flag"), Data)
	ErrInvalidVersion   = errors.Mark(errors.New("invalid version string"), Data)
	ErrInvalidPackage   = errors.Mark(errors.New("invalid package"), Data)
)

// Category returns the category sentinel err belongs to, or nil.
func Category(err error) error {
	for _, c := range []error{Configuration, Precondition, Data} {
		if errors.Is(err, c) {
			return c
		}
	}
	return nil
}
