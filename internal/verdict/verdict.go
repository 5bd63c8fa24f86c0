// Package verdict describes which upstream tests the alternative
// implementation is expected to pass.
//
// A verdict list is the conformance statement for one upstream test module:
// every entry names a test method on a test class and gives it a
// disposition. Tests that are not listed are not run under the alternative
// implementation, so new upstream tests must be triaged before they count.
//
// # File Format
//
// Verdict lists are usually kept next to the adapter as YAML:
//
//	module: upstream_io
//	tests:
//	  - class: CIOTest
//	    method: test_flush
//	  - class: CIOTest
//	    method: test_destructor
//	    disposition: expect_fail
//	    note: "Lists differ: [2, 3, 1, 2] != [1, 2, 3]"
//	  - class: CMiscIOTest
//	    method: test_nonblock_pipe_write_bigbuf
//	    disposition: skip
//	    reason: "no fcntl"
//
// The same structure is accepted as CUE. A missing disposition means include.
package verdict

import (
	"fmt"
	"strings"
)

// Disposition says what the composer does with a listed test.
type Disposition int

const (
	// Include runs the test normally.
	Include Disposition = iota
	// ExpectFail runs the test and inverts its outcome.
	ExpectFail
	// Skip leaves the test out of the composed suite.
	Skip
)

var dispositionNames = map[Disposition]string{
	Include:    "include",
	ExpectFail: "expect_fail",
	Skip:       "skip",
}

// String returns the file-format spelling of d.
func (d Disposition) String() string {
	if s, ok := dispositionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("disposition(%d)", int(d))
}

// ParseDisposition accepts the file-format spellings, ignoring case.
// The empty string is Include.
func ParseDisposition(s string) (Disposition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "include":
		return Include, nil
	case "expect_fail", "expectfail", "expected_failure", "xfail":
		return ExpectFail, nil
	case "skip":
		return Skip, nil
	}
	return Include, fmt.Errorf("unknown disposition %q", s)
}

// Verdict is one entry of a verdict list.
type Verdict struct {
	Class       string
	Method      string
	Disposition Disposition

	// Reason is reported for skipped tests.
	Reason string

	// Note carries free-form context such as an issue URL or the observed
	// failure. It has no effect on composition.
	Note string
}

// ID returns the "Class.Method" form used in diagnostics and reports.
func (v Verdict) ID() string {
	return v.Class + "." + v.Method
}

// IncludeTest returns an entry that runs class.method.
func IncludeTest(class, method string) Verdict {
	return Verdict{Class: class, Method: method, Disposition: Include}
}

// ExpectFailTest returns an entry whose failure is expected.
func ExpectFailTest(class, method, note string) Verdict {
	return Verdict{Class: class, Method: method, Disposition: ExpectFail, Note: note}
}

// SkipTest returns an entry that is left out with reason.
func SkipTest(class, method, reason string) Verdict {
	return Verdict{Class: class, Method: method, Disposition: Skip, Reason: reason}
}

// List is the ordered verdict list for one upstream module.
type List struct {
	Module  string
	Entries []Verdict
}

// Len returns the number of entries.
func (l List) Len() int {
	return len(l.Entries)
}

// Validate checks the list in isolation: every entry names a class and a
// method, and no test is listed twice. All problems are returned.
func (l List) Validate() []error {
	var errs []error

	var blank []string
	for i, v := range l.Entries {
		if strings.TrimSpace(v.Class) == "" || strings.TrimSpace(v.Method) == "" {
			blank = append(blank, fmt.Sprintf("tests[%d]", i))
		}
	}
	if len(blank) > 0 {
		errs = append(errs, NewConfigError(ErrBlankEntry, l.Module, "class and method are required", blank))
	}

	if dups := l.Duplicates(); len(dups) > 0 {
		errs = append(errs, NewConfigError(ErrDuplicateEntry, l.Module, "tests listed more than once", dups))
	}

	return errs
}

// Duplicates returns the IDs listed more than once, in first-seen order.
func (l List) Duplicates() []string {
	seen := make(map[string]int, len(l.Entries))
	var dups []string
	for _, v := range l.Entries {
		id := v.ID()
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	return dups
}

// Count returns how many entries carry disposition d.
func (l List) Count(d Disposition) int {
	n := 0
	for _, v := range l.Entries {
		if v.Disposition == d {
			n++
		}
	}
	return n
}
