// Package dirdiff compares two directory trees.
package dirdiff

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Diff lists the differences between trees A and B. Paths are relative,
// slash-separated and sorted. A directory present on one side only is
// listed once, without its contents.
type Diff struct {
	A       string   `json:"a"`
	B       string   `json:"b"`
	OnlyInA []string `json:"only_in_a"`
	OnlyInB []string `json:"only_in_b"`
	// Differ holds files present on both sides whose bytes differ, and
	// paths that are a file on one side and a directory on the other.
	Differ []string `json:"differ"`
	// Same counts files present and identical on both sides.
	Same int `json:"same"`
}

// Equal reports whether the trees hold the same entries and content.
func (d *Diff) Equal() bool {
	return len(d.OnlyInA) == 0 && len(d.OnlyInB) == 0 && len(d.Differ) == 0
}

// Compare walks a and b and returns their differences.
func Compare(a, b string) (*Diff, error) {
	left, err := scan(a)
	if err != nil {
		return nil, err
	}
	right, err := scan(b)
	if err != nil {
		return nil, err
	}

	d := &Diff{A: a, B: b}
	d.OnlyInA = onlyIn(left, right)
	d.OnlyInB = onlyIn(right, left)

	for _, rel := range sortedKeys(left) {
		leftDir := left[rel]
		rightDir, ok := right[rel]
		if !ok {
			continue
		}
		switch {
		case leftDir != rightDir:
			d.Differ = append(d.Differ, rel)
		case leftDir:
		default:
			same, err := sameContent(filepath.Join(a, filepath.FromSlash(rel)), filepath.Join(b, filepath.FromSlash(rel)))
			if err != nil {
				return nil, err
			}
			if same {
				d.Same++
			} else {
				d.Differ = append(d.Differ, rel)
			}
		}
	}
	return d, nil
}

// scan maps every relative path under root to whether it is a directory.
func scan(root string) (map[string]bool, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}
	entries := make(map[string]bool)
	err = filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries[filepath.ToSlash(rel)] = e.IsDir()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return entries, nil
}

// onlyIn returns paths of x missing from y whose parent is not itself
// missing from y.
func onlyIn(x, y map[string]bool) []string {
	var out []string
	for _, rel := range sortedKeys(x) {
		if _, ok := y[rel]; ok {
			continue
		}
		parent := rel
		reported := false
		for {
			i := strings.LastIndex(parent, "/")
			if i < 0 {
				break
			}
			parent = parent[:i]
			if _, ok := y[parent]; !ok {
				reported = true
				break
			}
		}
		if !reported {
			out = append(out, rel)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameContent(a, b string) (bool, error) {
	ia, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	if ia.Size() != ib.Size() {
		return false, nil
	}

	fa, err := os.Open(a)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := os.Open(b)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, 32*1024)
	bufB := make([]byte, 32*1024)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if doneA || doneB {
			return doneA && doneB, nil
		}
		if errA != nil {
			return false, errA
		}
		if errB != nil {
			return false, errB
		}
	}
}

// WriteText prints one line per difference, prefixed as diff does.
func (d *Diff) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, p := range d.OnlyInA {
		fmt.Fprintf(&b, "Only in %s: %s\n", d.A, p)
	}
	for _, p := range d.OnlyInB {
		fmt.Fprintf(&b, "Only in %s: %s\n", d.B, p)
	}
	for _, p := range d.Differ {
		fmt.Fprintf(&b, "Differ: %s\n", p)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
