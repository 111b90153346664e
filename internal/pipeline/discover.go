// Package pipeline defines the domain model of a prefix-ordered pipeline:
// which files in a directory run, in what order, and what happened to each.
package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// OrderedFile is a single discovered pipeline step. Order is the parsed
// integer prefix; Name is the full original filename, prefix included.
type OrderedFile struct {
	Order int
	Name  string
}

// ValidationError indicates that two or more files in the directory parse
// to the same integer prefix. Discovery fails as a whole rather than
// silently picking one of them.
type ValidationError struct {
	Order int
	Files []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("duplicate prefix %d: %s", e.Order, strings.Join(e.Files, ", "))
}

// ParseOrder extracts the integer prefix from a filename. The name is split
// on the first hyphen; the left part must parse as a decimal integer
// (leading sign allowed). Returns false for ineligible names.
func ParseOrder(name string) (int, bool) {
	left, _, found := strings.Cut(name, "-")
	if !found {
		return 0, false
	}
	order, err := strconv.Atoi(left)
	if err != nil {
		return 0, false
	}
	return order, true
}

// Discover lists the directory's immediate entries and returns the eligible
// files sorted ascending by integer prefix. The result is deterministic for
// a fixed directory content. Duplicate prefixes are a *ValidationError.
func Discover(dir string) ([]OrderedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list directory: %w", err)
	}

	seen := make(map[int]string)
	var files []OrderedFile
	for _, e := range entries {
		name := e.Name()
		order, ok := ParseOrder(name)
		if !ok {
			continue
		}
		if prev, dup := seen[order]; dup {
			return nil, &ValidationError{Order: order, Files: []string{prev, name}}
		}
		seen[order] = name
		files = append(files, OrderedFile{Order: order, Name: name})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Order < files[j].Order })
	return files, nil
}
