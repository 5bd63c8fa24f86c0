package gen

import (
	"fmt"
	"strings"
)

// IndentUnit is one level of indentation.
const IndentUnit = "    "

// CodeWriter collects generated lines. Indentation is a single counter
// moved by the block helpers; text passed in is never re-indented from
// context.
type CodeWriter struct {
	lines  []string
	indent int
}

// NewCodeWriter returns an empty writer at indent 0.
func NewCodeWriter() *CodeWriter {
	return &CodeWriter{}
}

// Indent increases the indent by one level.
func (w *CodeWriter) Indent() { w.indent++ }

// Dedent decreases the indent by one level.
func (w *CodeWriter) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Level returns the current indent level.
func (w *CodeWriter) Level() int { return w.indent }

// WriteLine appends text at the current indent. Blank text produces an
// empty line with no trailing whitespace.
func (w *CodeWriter) WriteLine(text string) {
	if strings.TrimSpace(text) == "" {
		w.lines = append(w.lines, "")
		return
	}
	w.lines = append(w.lines, strings.Repeat(IndentUnit, w.indent)+text)
}

// Write formats template with args when any are given and appends each
// resulting line at the current indent.
func (w *CodeWriter) Write(template string, args ...any) {
	if len(args) > 0 {
		template = fmt.Sprintf(template, args...)
	}
	for _, line := range strings.Split(template, "\n") {
		w.WriteLine(line)
	}
}

// EnterBlock writes "text {" and indents. With empty text it only indents.
func (w *CodeWriter) EnterBlock(text string, args ...any) {
	if text != "" {
		w.Write(text+" {", args...)
	}
	w.Indent()
}

// ExitBlock dedents and writes "}" followed by text, if any.
func (w *CodeWriter) ExitBlock(text string, args ...any) {
	w.Dedent()
	if text == "" {
		w.WriteLine("}")
		return
	}
	w.Write("} "+text, args...)
}

// ElseBlock closes the current block and opens "} else text {".
func (w *CodeWriter) ElseBlock(text string, args ...any) {
	w.Dedent()
	if text == "" {
		w.WriteLine("} else {")
	} else {
		w.Write("} else "+text+" {", args...)
	}
	w.Indent()
}

// CaseBlock opens a switch block whose labels sit one level in and whose
// statements sit two levels in.
func (w *CodeWriter) CaseBlock(text string, args ...any) {
	w.EnterBlock(text, args...)
	w.Indent()
}

// CaseLabel writes a case label and indents its statements.
func (w *CodeWriter) CaseLabel(text string, args ...any) {
	w.Write(text, args...)
	w.Indent()
}

// ExitCaseBlock closes a block opened with CaseBlock.
func (w *CodeWriter) ExitCaseBlock() {
	w.ExitBlock("")
	w.Dedent()
}

// CatchBlock closes the current block and opens "} catch text {".
func (w *CodeWriter) CatchBlock(text string, args ...any) {
	w.Dedent()
	if text == "" {
		w.WriteLine("} catch {")
	} else {
		w.Write("} catch "+text+" {", args...)
	}
	w.Indent()
}

// FinallyBlock closes the current block and opens "} finally {".
func (w *CodeWriter) FinallyBlock() {
	w.Dedent()
	w.WriteLine("} finally {")
	w.Indent()
}

// Lines returns a copy of the lines written so far.
func (w *CodeWriter) Lines() []string {
	return append([]string(nil), w.lines...)
}

// Len returns the number of lines written.
func (w *CodeWriter) Len() int { return len(w.lines) }

// Text returns the lines joined with newlines.
func (w *CodeWriter) Text() string {
	return strings.Join(w.lines, "\n")
}

// Conditions returns a writer for an if / else-if chain.
func (w *CodeWriter) Conditions() *ConditionWriter {
	return &ConditionWriter{w: w, first: true}
}

// ConditionWriter emits the first condition as a block and every later one
// as an else branch.
type ConditionWriter struct {
	w     *CodeWriter
	first bool
}

// Condition opens the next branch, e.g. Condition("if (x == %d)", 1).
func (c *ConditionWriter) Condition(text string, args ...any) {
	if c.first {
		c.first = false
		c.w.EnterBlock(text, args...)
		return
	}
	c.w.ElseBlock(text, args...)
}

// Close ends the chain; it writes nothing when no branch was opened.
func (c *ConditionWriter) Close() {
	if !c.first {
		c.w.ExitBlock("")
	}
}
