package gen

import (
	"fmt"
	"strings"
)

// Markers decide how a phase's region is bracketed inside a target file.
type Markers struct {
	begin   string // format with the phase name
	end     string // format with the phase name, or a fixed closer
	comment string // line comment prefix for the generated header
	nested  bool   // begin/end may nest, as with #region / #endregion
	common  string // substring every begin marker contains
}

// LineMarkers brackets regions with "<prefix> BEGIN <name>" and
// "<prefix> END <name>", e.g. "// BEGIN aliases".
func LineMarkers(prefix string) Markers {
	return Markers{
		begin:   prefix + " BEGIN %s",
		end:     prefix + " END %s",
		comment: prefix,
		common:  prefix + " BEGIN ",
	}
}

// RegionMarkers brackets regions with "#region Generated <name>" and
// "#endregion". Regions inside the generated text may nest.
func RegionMarkers() Markers {
	return Markers{
		begin:   "#region Generated %s",
		end:     "#endregion",
		comment: "//",
		nested:  true,
		common:  "#region Generated ",
	}
}

// Begin returns the opening marker for name.
func (m Markers) Begin(name string) string {
	return fmt.Sprintf(m.begin, name)
}

// End returns the closing marker for name.
func (m Markers) End(name string) string {
	if strings.Contains(m.end, "%s") {
		return fmt.Sprintf(m.end, name)
	}
	return m.end
}

// Comment returns the line comment prefix used in headers.
func (m Markers) Comment() string {
	return m.comment
}

// MayContain is a cheap test for any region at all in text.
func (m Markers) MayContain(text string) bool {
	return strings.Contains(text, m.common)
}

// Region locates a phase's bracketed block in a text.
type Region struct {
	// Indent is the text between the start of the begin marker's line and
	// the marker itself.
	Indent string
	// Start is the offset of the begin marker's line.
	Start int
	// End is the offset just past the end marker.
	End int
}

// Find locates the region for name. Begin and end markers must be the last
// thing on their lines, so "BEGIN alias" does not match "BEGIN aliases" and
// a region missing its end never closes on "END aliases_ext".
func (m Markers) Find(text, name string) (Region, bool) {
	begin := m.Begin(name)
	idx := indexWholeLine(text, begin)
	if idx < 0 {
		return Region{}, false
	}
	lineStart := strings.LastIndex(text[:idx], "\n") + 1
	after := idx + len(begin)

	var endIdx int
	var endLen int
	if m.nested {
		endIdx, endLen = m.findNestedEnd(text, after)
	} else {
		end := m.End(name)
		endIdx = indexWholeLine(text[after:], end)
		if endIdx >= 0 {
			endIdx += after
		}
		endLen = len(end)
	}
	if endIdx < 0 {
		return Region{}, false
	}
	return Region{Indent: text[lineStart:idx], Start: lineStart, End: endIdx + endLen}, true
}

func indexWholeLine(text, marker string) int {
	from := 0
	for {
		i := strings.Index(text[from:], marker)
		if i < 0 {
			return -1
		}
		i += from
		next := i + len(marker)
		if next == len(text) || text[next] == '\n' || text[next] == '\r' {
			return i
		}
		from = next
	}
}

// findNestedEnd returns the offset of the closer matching an opener that
// ends at from, skipping nested open/close pairs.
func (m Markers) findNestedEnd(text string, from int) (int, int) {
	const open = "#region"
	closer := m.end
	depth := 0
	for pos := from; ; {
		o := strings.Index(text[pos:], open)
		c := strings.Index(text[pos:], closer)
		switch {
		case c < 0:
			return -1, 0
		case o >= 0 && o < c:
			depth++
			pos += o + len(open)
		case depth == 0:
			return pos + c, len(closer)
		default:
			depth--
			pos += c + len(closer)
		}
	}
}

// Render lays out the bracketed block, markers included, prefixing lines
// with indent. Empty lines and preprocessor lines other than regions are
// left unindented.
func (m Markers) Render(name, indent string, body []string) string {
	lines := make([]string, 0, len(body)+2)
	lines = append(lines, m.Begin(name))
	lines = append(lines, body...)
	lines = append(lines, m.End(name))

	var b strings.Builder
	b.WriteString(indent)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("\n")
			if i == len(lines)-1 || shouldIndent(line) {
				b.WriteString(indent)
			}
		}
		b.WriteString(line)
	}
	return b.String()
}

func shouldIndent(line string) bool {
	switch {
	case line == "":
		return false
	case strings.HasPrefix(line, "#region"), strings.HasPrefix(line, "#endregion"):
		return true
	case strings.HasPrefix(line, "#"):
		return false
	}
	return true
}
