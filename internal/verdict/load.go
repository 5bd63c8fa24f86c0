package verdict

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// Format identifies a verdict file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatCUE  Format = "cue"
)

// file is the on-disk shape shared by the YAML and CUE encodings.
// CUE decodes through the json tags.
type file struct {
	Module string      `yaml:"module" json:"module"`
	Tests  []fileEntry `yaml:"tests" json:"tests"`
}

type fileEntry struct {
	Class       string `yaml:"class" json:"class"`
	Method      string `yaml:"method" json:"method"`
	Disposition string `yaml:"disposition,omitempty" json:"disposition,omitempty"`
	Reason      string `yaml:"reason,omitempty" json:"reason,omitempty"`
	Note        string `yaml:"note,omitempty" json:"note,omitempty"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", NewConfigError(ErrUnsupportedFormat, "", fmt.Sprintf("unsupported verdict file %q", path), nil)
}

// LoadFile reads a verdict list from path. The format is chosen by extension.
// Returns an error if the file is missing, malformed, contains unknown
// fields, or fails List.Validate.
func LoadFile(path string) (List, error) {
	format, err := FormatOf(path)
	if err != nil {
		return List{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return List{}, fmt.Errorf("failed to read verdict file: %w", err)
	}

	list, err := Parse(data, format, filepath.Base(path))
	if err != nil {
		return List{}, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// Parse decodes a verdict list. name is used in CUE diagnostics.
func Parse(data []byte, format Format, name string) (List, error) {
	var f file
	switch format {
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&f); err != nil {
			return List{}, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatCUE:
		ctx := cuecontext.New()
		v := ctx.CompileBytes(data, cue.Filename(name))
		if err := v.Err(); err != nil {
			return List{}, fmt.Errorf("failed to compile CUE: %w", err)
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return List{}, fmt.Errorf("verdict CUE is not concrete: %w", err)
		}
		if err := v.Decode(&f); err != nil {
			return List{}, fmt.Errorf("failed to decode CUE: %w", err)
		}
	default:
		return List{}, NewConfigError(ErrUnsupportedFormat, "", fmt.Sprintf("unsupported format %q", format), nil)
	}

	return f.toList()
}

func (f *file) toList() (List, error) {
	if strings.TrimSpace(f.Module) == "" {
		return List{}, fmt.Errorf("invalid verdict list: module is required")
	}

	list := List{Module: f.Module, Entries: make([]Verdict, 0, len(f.Tests))}
	var bad []string
	for i, e := range f.Tests {
		d, err := ParseDisposition(e.Disposition)
		if err != nil {
			bad = append(bad, fmt.Sprintf("tests[%d] %s.%s: %v", i, e.Class, e.Method, err))
			continue
		}
		list.Entries = append(list.Entries, Verdict{
			Class:       e.Class,
			Method:      e.Method,
			Disposition: d,
			Reason:      e.Reason,
			Note:        e.Note,
		})
	}
	if len(bad) > 0 {
		return List{}, NewConfigError(ErrBadDisposition, f.Module, "unknown dispositions", bad)
	}

	if errs := list.Validate(); len(errs) > 0 {
		return List{}, errors.Join(errs...)
	}
	return list, nil
}

// Marshal renders l as YAML in the file format accepted by Parse.
func Marshal(l List) ([]byte, error) {
	f := file{Module: l.Module, Tests: make([]fileEntry, len(l.Entries))}
	for i, v := range l.Entries {
		e := fileEntry{Class: v.Class, Method: v.Method, Reason: v.Reason, Note: v.Note}
		if v.Disposition != Include {
			e.Disposition = v.Disposition.String()
		}
		f.Tests[i] = e
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("failed to encode verdict list: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
