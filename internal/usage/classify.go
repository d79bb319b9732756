package usage

import (
	"path/filepath"
	"slices"
)

// DefaultPseudoFilesystems lists the top-level directories that are never traversed.
//
//nolint:gochecknoglobals // Config constant
var DefaultPseudoFilesystems = []string{"proc", "sys", "dev", "run"}

// Classifier decides whether a path is the root of an excluded pseudo-filesystem.
// A path is excluded only when its name is reserved and its parent is the root,
// so a regular directory named "proc" deeper in the tree is still traversed.
type Classifier struct {
	root  string
	names map[string]struct{}
}

// NewClassifier returns a classifier reserving names directly below root.
func NewClassifier(root string, names ...string) Classifier {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}

		set[name] = struct{}{}
	}

	return Classifier{
		root:  filepath.Clean(root),
		names: set,
	}
}

// DefaultClassifier excludes DefaultPseudoFilesystems below the filesystem root.
func DefaultClassifier() Classifier {
	return NewClassifier(string(filepath.Separator), DefaultPseudoFilesystems...)
}

// Excluded reports whether path must not be traversed.
func (c Classifier) Excluded(path string) bool {
	if len(c.names) == 0 {
		return false
	}

	path = filepath.Clean(path)
	if filepath.Dir(path) != c.root {
		return false
	}

	_, reserved := c.names[filepath.Base(path)]

	return reserved
}

// Names returns the reserved names, sorted.
func (c Classifier) Names() []string {
	names := make([]string, 0, len(c.names))
	for name := range c.names {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
