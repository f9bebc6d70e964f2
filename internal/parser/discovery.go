package parser

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
)

// WalkSessionFiles yields every session file under root's
// year/month/day partitions in the given order. Directories are
// read lazily, so a consumer that stops early never lists the
// remaining partitions. Each range over the sequence walks the
// tree again.
//
// Missing directories at any level contribute nothing. A
// directory that exists but cannot be listed yields its error
// once and ends the sequence.
func WalkSessionFiles(root string, order Order) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if root == "" {
			return
		}
		w := partitionWalker{order: order, yield: yield}
		w.walk(root, 0)
	}
}

// CollectSessionFiles materializes WalkSessionFiles.
func CollectSessionFiles(root string, order Order) ([]string, error) {
	var files []string
	for path, err := range WalkSessionFiles(root, order) {
		if err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// Partition depth below the root: year, month, day.
const partitionLevels = 3

type partitionWalker struct {
	order Order
	yield func(string, error) bool
}

// walk lists dir at the given depth and returns false once the
// consumer has stopped or an error was yielded.
func (w *partitionWalker) walk(dir string, depth int) bool {
	leaf := depth == partitionLevels
	entries, err := readSortedEntries(dir, leaf, w.order)
	if err != nil {
		w.yield("", err)
		return false
	}
	for _, path := range entries {
		if leaf {
			if !w.yield(path, nil) {
				return false
			}
			continue
		}
		if !w.walk(path, depth+1) {
			return false
		}
	}
	return true
}

// readSortedEntries lists the subdirectories (or, for the leaf
// level, the regular files) of dir sorted by name, with ties
// broken by full path. Descending order reverses both
// comparisons. A missing dir yields no entries.
func readSortedEntries(
	dir string, files bool, order Order,
) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf(
			"reading codex session directory %s: %w", dir, err,
		)
	}

	type named struct{ name, path string }
	var picked []named
	for _, e := range entries {
		if files && !e.Type().IsRegular() {
			continue
		}
		if !files && !e.IsDir() {
			continue
		}
		picked = append(picked, named{
			name: e.Name(),
			path: filepath.Join(dir, e.Name()),
		})
	}

	slices.SortFunc(picked, func(a, b named) int {
		c := cmp.Or(
			cmp.Compare(a.name, b.name),
			cmp.Compare(a.path, b.path),
		)
		if order == Descending {
			return -c
		}
		return c
	})

	paths := make([]string, len(picked))
	for i, p := range picked {
		paths[i] = p.path
	}
	return paths, nil
}
