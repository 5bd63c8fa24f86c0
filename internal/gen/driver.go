package gen

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Phase is one named generator. It owns a single bracketed region, tagged
// with Name, in each target it writes to.
type Phase struct {
	Name string
	// Target is the file to write. When empty the driver scans its Roots
	// for files that already hold the phase's begin marker.
	Target string
	Write  func(w *CodeWriter) error
}

// Outcome reports what a phase did to one target.
type Outcome struct {
	Phase  string `json:"phase"`
	Target string `json:"target"`
	// Changed is true when the target's bytes differ from the new text.
	Changed bool `json:"changed"`
	// Different is set in check-only mode for changed targets.
	Different bool `json:"different,omitempty"`
	// DiffPath is where check-only mode saved the new text.
	DiffPath string `json:"diff_path,omitempty"`
}

// Driver runs phases against target files.
type Driver struct {
	Markers Markers

	// Roots and Exclude drive the scan for phases without a Target.
	// Exclude entries match a directory's full path or its base name.
	Roots      []string
	Exclude    []string
	Extensions []string

	// CheckOnly never modifies targets. New text for a target that would
	// change is saved next to it with a ".diff" suffix.
	CheckOnly bool

	// OmitHeader leaves out the generated-code banner inside regions.
	OmitHeader bool

	Logger *slog.Logger
}

// NewDriver returns a driver using markers.
func NewDriver(markers Markers) *Driver {
	return &Driver{Markers: markers}
}

func (d *Driver) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.Logger
}

type rendered struct {
	phase string
	body  []string
}

// Run renders every phase, then updates the targets.
//
// All writers run before any file is touched; the first writer error is
// returned as is and nothing is written. Phases sharing a target are
// applied to it in order and the target is written once. Unchanged targets
// are not rewritten.
func (d *Driver) Run(phases ...Phase) ([]Outcome, error) {
	bodies := make([]rendered, len(phases))
	for i, p := range phases {
		w := NewCodeWriter()
		if !d.OmitHeader {
			d.beginGenerated(w, p.Name)
		}
		if err := p.Write(w); err != nil {
			return nil, err
		}
		if !d.OmitHeader {
			d.endGenerated(w)
		}
		bodies[i] = rendered{phase: p.Name, body: w.Lines()}
	}

	type pending struct {
		original []byte
		exists   bool
		text     string
		phases   []string
	}
	files := make(map[string]*pending)
	var order []string

	load := func(path string) (*pending, error) {
		if f, ok := files[path]; ok {
			return f, nil
		}
		data, err := os.ReadFile(path)
		exists := true
		if errors.Is(err, fs.ErrNotExist) {
			exists = false
		} else if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		f := &pending{original: data, exists: exists, text: string(data)}
		files[path] = f
		order = append(order, path)
		return f, nil
	}

	for i, p := range phases {
		targets := []string{p.Target}
		if p.Target == "" {
			found, err := d.Candidates(p.Name)
			if err != nil {
				return nil, err
			}
			if len(found) == 0 {
				return nil, errors.Errorf("didn't find a match for %s", p.Name)
			}
			targets = found
		}
		for _, target := range targets {
			f, err := load(target)
			if err != nil {
				return nil, err
			}
			f.text = d.Splice(f.text, p.Name, bodies[i].body)
			f.phases = append(f.phases, p.Name)
		}
	}

	var outcomes []Outcome
	for _, path := range order {
		f := files[path]
		changed := !f.exists || f.text != string(f.original)
		for _, name := range f.phases {
			outcomes = append(outcomes, Outcome{Phase: name, Target: path, Changed: changed})
		}
		if !changed {
			d.logger().Info("generate", "target", path, "status", "ok")
			continue
		}
		if d.CheckOnly {
			diff := path + ".diff"
			if err := WriteFileAtomic(diff, []byte(f.text)); err != nil {
				return outcomes, err
			}
			for i := len(outcomes) - len(f.phases); i < len(outcomes); i++ {
				outcomes[i].Different = true
				outcomes[i].DiffPath = diff
			}
			d.logger().Info("generate", "target", path, "status", "different", "saved", diff)
			continue
		}
		if err := WriteFileAtomic(path, []byte(f.text)); err != nil {
			return outcomes, err
		}
		d.logger().Info("generate", "target", path, "status", "updated")
	}
	return outcomes, nil
}

func (d *Driver) beginGenerated(w *CodeWriter, name string) {
	c := d.Markers.Comment()
	w.WriteLine("")
	w.WriteLine(c + " *** BEGIN GENERATED CODE ***")
	w.WriteLine(c + " generated by phase: " + name)
	w.WriteLine("")
}

func (d *Driver) endGenerated(w *CodeWriter) {
	w.WriteLine("")
	w.WriteLine(d.Markers.Comment() + " *** END GENERATED CODE ***")
	w.WriteLine("")
}

// Splice returns text with the region for name replaced by body. A text
// without the region gets it appended; an empty text becomes just the
// region. The result always ends with a newline when it was appended to.
func (d *Driver) Splice(text, name string, body []string) string {
	if r, ok := d.Markers.Find(text, name); ok {
		return text[:r.Start] + d.Markers.Render(name, r.Indent, body) + text[r.End:]
	}
	region := d.Markers.Render(name, "", body) + "\n"
	if text == "" {
		return region
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + region
}

// Candidates returns the files under Roots holding the begin marker for
// name, sorted.
func (d *Driver) Candidates(name string) ([]string, error) {
	var found []string
	for _, root := range d.Roots {
		err := filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if e.IsDir() {
				if path != root && d.excluded(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.wantExt(path) {
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			text := string(data)
			if !d.Markers.MayContain(text) {
				return nil
			}
			if _, ok := d.Markers.Find(text, name); ok {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", root)
		}
	}
	sort.Strings(found)
	return found, nil
}

func (d *Driver) excluded(dir string) bool {
	for _, ex := range d.Exclude {
		if dir == ex || filepath.Base(dir) == ex {
			return true
		}
	}
	return false
}

func (d *Driver) wantExt(path string) bool {
	if len(d.Extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range d.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// Equivalent compares two texts ignoring indentation and blank lines.
func Equivalent(a, b string) bool {
	return strings.Join(normalizedLines(a), "\n") == strings.Join(normalizedLines(b), "\n")
}

func normalizedLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
