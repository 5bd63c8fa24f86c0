package suite

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
)

// Status is the outcome category of one test.
type Status string

const (
	StatusPass              Status = "pass"
	StatusFail              Status = "fail"
	StatusError             Status = "error"
	StatusSkip              Status = "skip"
	StatusExpectedFailure   Status = "expected_failure"
	StatusUnexpectedSuccess Status = "unexpected_success"
)

// Outcome is the recorded result of one test.
type Outcome struct {
	ID     string   `json:"id"`
	Status Status   `json:"status"`
	Detail string   `json:"detail,omitempty"`
	Logs   []string `json:"logs,omitempty"`

	// Excluded marks skips that come from a suite's exclusion list rather
	// than from running the test.
	Excluded bool `json:"excluded,omitempty"`

	Err error `json:"-"`
}

// Result collects outcomes in the order tests report them.
type Result struct {
	Outcomes []Outcome `json:"outcomes"`
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{Outcomes: []Outcome{}}
}

// Add records an outcome.
func (r *Result) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Counts tallies outcomes per status.
type Counts struct {
	Run                 int `json:"run"`
	Passed              int `json:"passed"`
	Failures            int `json:"failures"`
	Errors              int `json:"errors"`
	Skipped             int `json:"skipped"`
	ExpectedFailures    int `json:"expected_failures"`
	UnexpectedSuccesses int `json:"unexpected_successes"`
}

// Counts returns the tallies. Run counts tests that were executed, so
// exclusions are skipped but not run.
func (r *Result) Counts() Counts {
	var c Counts
	for _, o := range r.Outcomes {
		if !o.Excluded {
			c.Run++
		}
		switch o.Status {
		case StatusPass:
			c.Passed++
		case StatusFail:
			c.Failures++
		case StatusError:
			c.Errors++
		case StatusSkip:
			c.Skipped++
		case StatusExpectedFailure:
			c.ExpectedFailures++
		case StatusUnexpectedSuccess:
			c.UnexpectedSuccesses++
		}
	}
	return c
}

// WasSuccessful is true when nothing failed, errored or unexpectedly passed.
// Expected failures and skips do not affect success.
func (r *Result) WasSuccessful() bool {
	c := r.Counts()
	return c.Failures == 0 && c.Errors == 0 && c.UnexpectedSuccesses == 0
}

// ByStatus returns the outcomes with status s.
func (r *Result) ByStatus(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}

// Find returns the outcome recorded for id.
func (r *Result) Find(id string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.ID == id {
			return o, true
		}
	}
	return Outcome{}, false
}

var statusWords = map[Status]string{
	StatusPass:              "ok",
	StatusFail:              "FAIL",
	StatusError:             "ERROR",
	StatusSkip:              "skipped",
	StatusExpectedFailure:   "expected failure",
	StatusUnexpectedSuccess: "unexpected success",
}

const (
	separatorEqual = "======================================================================"
	separatorMinus = "----------------------------------------------------------------------"
)

// WriteText writes a per-test listing, failure details and a summary line.
func (r *Result) WriteText(w io.Writer) error {
	var b strings.Builder

	for _, o := range r.Outcomes {
		word := statusWords[o.Status]
		if o.Status == StatusSkip && o.Detail != "" {
			word = fmt.Sprintf("skipped %q", o.Detail)
		}
		fmt.Fprintf(&b, "%s ... %s\n", o.ID, word)
	}

	for _, o := range r.Outcomes {
		if o.Status != StatusFail && o.Status != StatusError {
			continue
		}
		fmt.Fprintf(&b, "\n%s\n%s: %s\n%s\n", separatorEqual, statusWords[o.Status], o.ID, separatorMinus)
		if o.Detail != "" {
			fmt.Fprintln(&b, o.Detail)
		}
	}

	c := r.Counts()
	fmt.Fprintf(&b, "%s\nRan %d test", separatorMinus, c.Run)
	if c.Run != 1 {
		b.WriteString("s")
	}
	b.WriteString("\n\n")

	var parts []string
	if r.WasSuccessful() {
		b.WriteString("OK")
	} else {
		b.WriteString("FAILED")
		if c.Failures > 0 {
			parts = append(parts, fmt.Sprintf("failures=%d", c.Failures))
		}
		if c.Errors > 0 {
			parts = append(parts, fmt.Sprintf("errors=%d", c.Errors))
		}
	}
	if c.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("skipped=%d", c.Skipped))
	}
	if c.ExpectedFailures > 0 {
		parts = append(parts, fmt.Sprintf("expected failures=%d", c.ExpectedFailures))
	}
	if c.UnexpectedSuccesses > 0 {
		parts = append(parts, fmt.Sprintf("unexpected successes=%d", c.UnexpectedSuccesses))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// Report is the serialisable summary of a run.
type Report struct {
	Module         string    `json:"module"`
	Implementation string    `json:"implementation"`
	Success        bool      `json:"success"`
	Counts         Counts    `json:"counts"`
	Outcomes       []Outcome `json:"outcomes"`
}

// Report builds the serialisable summary.
func (r *Result) Report(module, implementation string) Report {
	return Report{
		Module:         module,
		Implementation: implementation,
		Success:        r.WasSuccessful(),
		Counts:         r.Counts(),
		Outcomes:       r.Outcomes,
	}
}

// CanonicalJSON renders the report as RFC 8785 canonical JSON so reports
// from different runs diff cleanly.
func (rep Report) CanonicalJSON() ([]byte, error) {
	raw, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize report: %w", err)
	}
	return out, nil
}
