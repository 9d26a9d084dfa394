// Package version implements the semantic version value carried by package
// metadata.
package version

import (
	"cmp"
	"regexp"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/goplus/lobs/pkgs/errs"
)

var versionRE = regexp.MustCompile(
	`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-(.+))?$`,
)

// Version is a major.minor.patch triple with an optional free-form suffix
// (pre-release and/or build information).
type Version struct {
	Major int
	Minor int
	Patch int
	Extra string
}

// Parse parses s in the form "1.2.3" or "1.2.3-alpha.1+build.5".
// Components must not have leading zeros.
func Parse(s string) (Version, error) {
	m := versionRE.FindStringSubmatch(s)
	if m == nil {
		return Version{}, errors.Wrapf(errs.ErrInvalidVersion, "%q", s)
	}
	var v Version
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return Version{}, errors.Wrapf(errs.ErrInvalidVersion, "%q: %v", s, err)
	}
	if v.Minor, err = strconv.Atoi(m[2]); err != nil {
		return Version{}, errors.Wrapf(errs.ErrInvalidVersion, "%q: %v", s, err)
	}
	if v.Patch, err = strconv.Atoi(m[3]); err != nil {
		return Version{}, errors.Wrapf(errs.ErrInvalidVersion, "%q: %v", s, err)
	}
	v.Extra = m[4]
	return v, nil
}

// MustParse is like Parse but panics if s is invalid.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	s := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	if v.Extra != "" {
		s += "-" + v.Extra
	}
	return s
}

// Compare returns -1, 0 or +1. Extras compare lexically; a version without
// extra sorts before the same version with one.
func (v Version) Compare(o Version) int {
	if c := cmp.Compare(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmp.Compare(v.Patch, o.Patch); c != 0 {
		return c
	}
	return cmp.Compare(v.Extra, o.Extra)
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}
