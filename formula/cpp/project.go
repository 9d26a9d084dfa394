// Package cpp defines the C++ project variants.
package cpp

import (
	"github.com/goplus/lobs/formula"
)

// DefaultCxxStandard is the C++ standard used when none is set.
const DefaultCxxStandard = 23

// ManagedApplication is an executable run by a hosting system (Linux,
// Windows, macOS or an RTOS).
type ManagedApplication struct {
	Sources     []formula.Source
	IncludeDirs []string
	CxxStandard int
	Flags       *CompilationFlags

	// ExecutableName names the produced binary. Empty means the package name.
	ExecutableName string
}

// NewApplication returns an application with default settings.
func NewApplication(srcs ...formula.Source) *ManagedApplication {
	return &ManagedApplication{
		Sources:     srcs,
		CxxStandard: DefaultCxxStandard,
		Flags:       NewCompilationFlags(),
	}
}

func (*ManagedApplication) ProjectKind() string { return "application" }

// Standard returns the C++ standard, falling back to DefaultCxxStandard.
func (a *ManagedApplication) Standard() int {
	return standard(a.CxxStandard)
}

// Library is a C++ library.
type Library struct {
	Sources     []formula.Source
	IncludeDirs []string
	CxxStandard int
	Flags       *CompilationFlags
}

// NewLibrary returns a library with default settings.
func NewLibrary(srcs ...formula.Source) *Library {
	return &Library{
		Sources:     srcs,
		CxxStandard: DefaultCxxStandard,
		Flags:       NewCompilationFlags(),
	}
}

func (*Library) ProjectKind() string { return "library" }

// Standard returns the C++ standard, falling back to DefaultCxxStandard.
func (l *Library) Standard() int {
	return standard(l.CxxStandard)
}

func standard(n int) int {
	if n == 0 {
		return DefaultCxxStandard
	}
	return n
}

var (
	_ formula.Project = (*ManagedApplication)(nil)
	_ formula.Project = (*Library)(nil)
)
