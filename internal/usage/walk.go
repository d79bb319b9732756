package usage

import (
	"errors"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"regexp"
)

var (
	// ErrPseudoFilesystem marks an entry skipped because it is an excluded pseudo-filesystem root.
	ErrPseudoFilesystem = errors.New("pseudo-filesystem")
	// ErrPattern marks an entry skipped because it matched an exclusion pattern.
	ErrPattern = errors.New("matched exclusion pattern")
	// ErrVisited marks a directory reached a second time, e.g. through a bind mount loop.
	ErrVisited = errors.New("directory already visited")
)

type eventKind int

const (
	fileVisited eventKind = iota
	dirEntered
	dirLeft
	entrySkipped
)

// event is one step of a traversal.
type event struct {
	kind eventKind
	path string
	size uint64
	err  error
}

// frame is a directory whose entries are still being consumed.
type frame struct {
	path    string
	abs     string
	entries []fs.DirEntry
	next    int
}

// visited remembers directories by device and inode.
type visited map[fileID]struct{}

// add records info and reports false if it was already present.
func (v visited) add(info fs.FileInfo) bool {
	id, ok := identify(info)
	if !ok {
		return true
	}

	if _, seen := v[id]; seen {
		return false
	}

	v[id] = struct{}{}

	return true
}

// shouldExcludeByPattern checks if path matches any exclusion regex.
func shouldExcludeByPattern(path string, patterns []*regexp.Regexp) *regexp.Regexp {
	if len(patterns) == 0 {
		return nil
	}

	fPath := filepath.ToSlash(path)

	for _, re := range patterns {
		if re.MatchString(fPath) {
			return re
		}
	}

	return nil
}

// walk yields the entries below root depth-first, using an explicit stack
// instead of recursion. entries are the already listed children of root and
// abs is its absolute form, used for classification.
//
// Every directory is reported as dirEntered, then its contents, then dirLeft.
// Entries that cannot be read are reported as entrySkipped with the reason.
func (a *Aggregator) walk(root, abs string, entries []fs.DirEntry, seen visited) iter.Seq[event] {
	return func(yield func(event) bool) {
		stack := []*frame{{path: root, abs: abs, entries: entries}}

		for len(stack) > 0 {
			top := stack[len(stack)-1]

			if top.next == len(top.entries) {
				stack = stack[:len(stack)-1]

				// The root itself is not reported.
				if len(stack) > 0 && !yield(event{kind: dirLeft, path: top.path}) {
					return
				}

				continue
			}

			d := top.entries[top.next] //nolint:varnamelen // d is standard for DirEntry
			top.next++

			path := filepath.Join(top.path, d.Name())
			absPath := filepath.Join(top.abs, d.Name())

			if reason := a.pruned(absPath); reason != nil {
				if !yield(event{kind: entrySkipped, path: path, err: reason}) {
					return
				}

				continue
			}

			info, err := d.Info()
			if err != nil {
				if !yield(event{kind: entrySkipped, path: path, err: err}) {
					return
				}

				continue
			}

			if !info.IsDir() {
				//nolint:gosec // Sizes are never negative
				if !yield(event{kind: fileVisited, path: path, size: uint64(info.Size())}) {
					return
				}

				continue
			}

			if !seen.add(info) {
				if !yield(event{kind: entrySkipped, path: path, err: ErrVisited}) {
					return
				}

				continue
			}

			// A partially readable directory keeps whatever could be listed.
			children, err := os.ReadDir(path)
			if err != nil && !yield(event{kind: entrySkipped, path: path, err: err}) {
				return
			}

			if !yield(event{kind: dirEntered, path: path}) {
				return
			}

			stack = append(stack, &frame{path: path, abs: absPath, entries: children})
		}
	}
}
