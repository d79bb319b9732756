package usage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog"
)

// Config configures an Aggregator.
type Config struct {
	// Classifier decides which pseudo-filesystem roots are skipped.
	// The zero value uses DefaultClassifier.
	Classifier Classifier
	// Excludes contains additional patterns; matching entries are skipped in every mode.
	Excludes []*regexp.Regexp
	// Logger receives skip diagnostics at debug level. The zero value discards them.
	Logger zerolog.Logger
}

// Aggregator computes directory sizes. Traversal is sequential and best-effort:
// entries that cannot be read contribute nothing and never abort a scan.
type Aggregator struct {
	classifier Classifier
	excludes   []*regexp.Regexp
	log        zerolog.Logger

	// files and bytes count everything added so far, for progress reporting.
	files atomic.Int64
	bytes atomic.Int64
}

// New creates an Aggregator from cfg.
func New(cfg Config) *Aggregator {
	classifier := cfg.Classifier
	if classifier.names == nil {
		classifier = DefaultClassifier()
	}

	return &Aggregator{
		classifier: classifier,
		excludes:   cfg.Excludes,
		log:        cfg.Logger,
	}
}

// sizeCollector sums file sizes from fastwalk callbacks.
type sizeCollector struct {
	mu    sync.Mutex
	total uint64
	seen  visited
}

// add records a file size.
func (c *sizeCollector) add(size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.total += uint64(size) //nolint:gosec // Sizes are never negative
}

// enter reports whether the directory described by info is seen for the first time.
func (c *sizeCollector) enter(info fs.FileInfo) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.seen.add(info)
}

// ShallowSize returns the sum of all regular files below dir.
// Excluded subtrees are pruned, and an excluded dir yields 0 without being read.
func (a *Aggregator) ShallowSize(dir string) uint64 {
	abs := absolute(dir)

	if reason := a.pruned(abs); reason != nil {
		a.skipped(dir, reason)

		return 0
	}

	collector := &sizeCollector{seen: make(visited)}

	// A single worker keeps the walk sequential; only the sum matters here.
	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: 1,
	}

	//nolint:varnamelen // d is standard for DirEntry
	walkErr := fastwalk.Walk(conf, abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			a.skipped(path, err)

			return nil // Silently skip errors
		}

		if d == nil {
			return nil
		}

		if path != abs {
			if reason := a.pruned(path); reason != nil {
				a.skipped(path, reason)

				if d.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}
		}

		if d.IsDir() {
			info, err := d.Info()
			if err == nil && !collector.enter(info) {
				a.skipped(path, ErrVisited)

				return filepath.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			a.skipped(path, err)

			return nil //nolint:nilerr // Intentionally skip errors during walk
		}

		collector.add(info.Size())
		a.track(info.Size())

		return nil
	})
	if walkErr != nil {
		a.log.Debug().Err(walkErr).Str("path", dir).Msg("walk ended early")
	}

	collector.mu.Lock()
	defer collector.mu.Unlock()

	return collector.total
}

// DetailedScan records every file and directory below dir with its own size.
// A directory entry follows the entries of its contents and carries their sum.
// The returned total is the sum of the direct children of dir.
//
// An excluded dir yields an empty result. The only error is failing to list dir itself.
func (a *Aggregator) DetailedScan(dir string) (uint64, []Entry, error) {
	abs := absolute(dir)

	if reason := a.pruned(abs); reason != nil {
		a.skipped(dir, reason)

		return 0, nil, nil
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		if len(children) == 0 {
			return 0, nil, fmt.Errorf("reading directory %q: %w", dir, err)
		}

		a.skipped(dir, err)
	}

	seen := make(visited)
	if info, err := os.Stat(dir); err == nil {
		seen.add(info)
	}

	// sums holds the running total of every directory on the current descent path.
	sums := []uint64{0}

	var entries []Entry

	for ev := range a.walk(dir, abs, children, seen) {
		switch ev.kind {
		case fileVisited:
			sums[len(sums)-1] += ev.size
			entries = append(entries, Entry{Path: ev.path, Size: ev.size})

			a.track(int64(ev.size)) //nolint:gosec // Sizes originate from int64
		case dirEntered:
			sums = append(sums, 0)
		case dirLeft:
			size := sums[len(sums)-1]
			sums = sums[:len(sums)-1]
			sums[len(sums)-1] += size
			entries = append(entries, Entry{Path: ev.path, Size: size, IsDir: true})
		case entrySkipped:
			a.skipped(ev.path, ev.err)
		}
	}

	return sums[0], entries, nil
}

// Children lists the direct children of dir with their sizes: files with their
// own length, directories with their ShallowSize. Pseudo-filesystem children are
// listed with size 0, pattern-excluded children are left out, and an excluded dir
// has no children.
func (a *Aggregator) Children(dir string) ([]Entry, error) {
	abs := absolute(dir)

	if reason := a.pruned(abs); reason != nil {
		a.skipped(dir, reason)

		return nil, nil
	}

	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", dir, err)
	}

	entries := make([]Entry, 0, len(children))

	for _, child := range children {
		path := filepath.Join(dir, child.Name())

		if reason := a.pruned(filepath.Join(abs, child.Name())); reason != nil {
			a.skipped(path, reason)

			if errors.Is(reason, ErrPseudoFilesystem) {
				entries = append(entries, Entry{Path: child.Name(), IsDir: child.IsDir()})
			}

			continue
		}

		info, err := child.Info()
		if err != nil {
			a.skipped(path, err)

			continue
		}

		if info.IsDir() {
			entries = append(entries, Entry{Path: child.Name(), Size: a.ShallowSize(path), IsDir: true})

			continue
		}

		//nolint:gosec // Sizes are never negative
		entries = append(entries, Entry{Path: child.Name(), Size: uint64(info.Size())})
	}

	return entries, nil
}

// pruned returns the reason an absolute path must not be visited, or nil.
func (a *Aggregator) pruned(abs string) error {
	if a.classifier.Excluded(abs) {
		return ErrPseudoFilesystem
	}

	if re := shouldExcludeByPattern(abs, a.excludes); re != nil {
		return fmt.Errorf("%w %q", ErrPattern, re.String())
	}

	return nil
}

func (a *Aggregator) skipped(path string, reason error) {
	a.log.Debug().Str("path", path).Err(reason).Msg("skipping entry")
}

func (a *Aggregator) track(size int64) {
	a.files.Add(1)
	a.bytes.Add(size)
}

// absolute returns the absolute form of path, falling back to the cleaned path.
func absolute(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}

	return abs
}
