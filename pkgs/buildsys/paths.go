package buildsys

import (
	"path/filepath"
	"strings"
)

// Within reports whether path lies inside dir (or is dir itself).
func Within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// RelPath returns path relative to dir, slash separated, when it lies inside
// dir. Other paths are returned unchanged.
func RelPath(dir, path string) string {
	if !Within(dir, path) {
		return filepath.ToSlash(path)
	}
	rel, _ := filepath.Rel(dir, path)
	return filepath.ToSlash(rel)
}
