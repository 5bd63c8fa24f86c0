package suite

import (
	"errors"
	"fmt"
)

// Test is anything that can be run into a Result.
type Test interface {
	// ID names the test, "Class.Method" for a single case.
	ID() string
	// Run executes the test and records its outcomes in r.
	Run(r *Result)
}

// Case is one method of one class.
type Case struct {
	class  *Class
	method string
	body   Method
}

// NewCase builds a Case for class.method. The method must exist.
func NewCase(class *Class, method string) (*Case, error) {
	body, ok := class.Method(method)
	if !ok {
		return nil, fmt.Errorf("%s.%s: no such test method", class.Name, method)
	}
	return &Case{class: class, method: method, body: body}, nil
}

// ID implements Test.
func (c *Case) ID() string {
	return c.class.Name + "." + c.method
}

// ClassName returns the name of the owning class.
func (c *Case) ClassName() string {
	return c.class.Name
}

// MethodName returns the method name.
func (c *Case) MethodName() string {
	return c.method
}

// Run implements Test.
func (c *Case) Run(r *Result) {
	r.Add(c.Execute())
}

// Execute runs the case and returns its outcome.
//
// The lifecycle is construct, SetUp, body, TearDown. TearDown runs exactly
// once whatever happened before it: a failed SetUp, a failure, a skip or a
// panic. Cleanups registered on T run after TearDown, each of them even when
// an earlier one panics. A TearDown or cleanup that returns an error, panics
// or reports a failure through T makes a passing test an error; it never
// hides the body's own failure, it is joined after it.
func (c *Case) Execute() Outcome {
	var fixture Fixture
	if c.class.Fixture != nil {
		fixture = c.class.Fixture()
	}
	t := newT(c.ID(), fixture)
	t.source = c.class.Source

	status, primary := c.runBody(t, fixture)
	detail := t.failureDetail()

	var teardownErr error
	if fixture != nil {
		failed, seen := t.failed, len(t.messages)
		sig, err := protect(t, func() error { return fixture.TearDown(t) })
		if sig != signalError {
			err = t.failuresSince(failed, seen)
		}
		if err == nil && sig == signalFailNow {
			err = errors.New("FailNow called")
		}
		if err != nil {
			teardownErr = fmt.Errorf("tearDown: %w", err)
		}
	}
	if err := t.runCleanups(); err != nil {
		teardownErr = errors.Join(teardownErr, fmt.Errorf("cleanup: %w", err))
	}

	out := Outcome{ID: c.ID(), Status: status, Logs: t.logs}
	switch status {
	case StatusSkip:
		out.Detail = t.skip
	case StatusFail:
		out.Detail = detail
		out.Err = primary
	case StatusError:
		out.Err = primary
	}

	if teardownErr != nil {
		if status == StatusPass || status == StatusSkip {
			out.Status = StatusError
			out.Detail = ""
		}
		out.Err = errors.Join(out.Err, teardownErr)
	}
	if out.Err != nil && out.Detail == "" {
		out.Detail = out.Err.Error()
	}
	return out
}

func (c *Case) runBody(t *T, fixture Fixture) (Status, error) {
	if fixture != nil {
		sig, err := protect(t, func() error { return fixture.SetUp(t) })
		switch sig {
		case signalSkip:
			return StatusSkip, nil
		case signalFailNow, signalError:
			if err == nil {
				err = errors.New(t.failureDetail())
			}
			return StatusError, fmt.Errorf("setUp: %w", err)
		}
	}

	sig, err := protect(t, func() error { c.body(t); return nil })
	switch {
	case sig == signalError:
		return StatusError, err
	case t.failed:
		return StatusFail, errors.New(t.failureDetail())
	case sig == signalSkip:
		return StatusSkip, nil
	}
	return StatusPass, nil
}

type signal int

const (
	signalNone signal = iota
	signalFailNow
	signalSkip
	signalError
)

// protect runs fn, converting FailNow, Skip, panics and returned errors
// into a signal.
func protect(t *T, fn func() error) (sig signal, err error) {
	defer func() {
		rec := recover()
		switch v := rec.(type) {
		case nil:
		case failNowSignal:
			sig, err = signalFailNow, errors.New(t.failureDetail())
		case skipSignal:
			sig = signalSkip
		case error:
			sig, err = signalError, fmt.Errorf("panic: %w", v)
		default:
			sig, err = signalError, fmt.Errorf("panic: %v", v)
		}
	}()
	if err := fn(); err != nil {
		return signalError, err
	}
	return signalNone, nil
}

// expectedFailure inverts the outcome of the wrapped test.
type expectedFailure struct {
	inner Test
}

// ExpectFailure wraps test so that a failure or error is recorded as an
// expected failure and a pass as an unexpected success. Skips are kept.
// Wrapping an already wrapped test returns it unchanged.
func ExpectFailure(test Test) Test {
	if _, ok := test.(*expectedFailure); ok {
		return test
	}
	return &expectedFailure{inner: test}
}

// IsExpectedFailure reports whether test was wrapped by ExpectFailure.
func IsExpectedFailure(test Test) bool {
	_, ok := test.(*expectedFailure)
	return ok
}

// Unwrap returns the test inside an ExpectFailure wrapper, or test itself.
func Unwrap(test Test) Test {
	if ef, ok := test.(*expectedFailure); ok {
		return ef.inner
	}
	return test
}

func (e *expectedFailure) ID() string {
	return e.inner.ID()
}

func (e *expectedFailure) Run(r *Result) {
	inner := NewResult()
	e.inner.Run(inner)
	for _, out := range inner.Outcomes {
		switch out.Status {
		case StatusFail, StatusError:
			out.Status = StatusExpectedFailure
		case StatusPass:
			out.Status = StatusUnexpectedSuccess
		}
		r.Add(out)
	}
}

// Excluded records a test left out of a suite on purpose.
type Excluded struct {
	ID     string `json:"id"`
	Reason string `json:"reason,omitempty"`
}

// Suite is an ordered collection of tests, possibly nested.
type Suite struct {
	Name     string
	Excluded []Excluded

	tests []Test
}

// NewSuite creates an empty suite.
func NewSuite(name string) *Suite {
	return &Suite{Name: name}
}

// ID implements Test.
func (s *Suite) ID() string {
	return s.Name
}

// Add appends tests.
func (s *Suite) Add(tests ...Test) *Suite {
	s.tests = append(s.tests, tests...)
	return s
}

// Exclude records a test that was deliberately not added.
func (s *Suite) Exclude(id, reason string) *Suite {
	s.Excluded = append(s.Excluded, Excluded{ID: id, Reason: reason})
	return s
}

// Tests returns the leaf tests depth-first, in insertion order.
func (s *Suite) Tests() []Test {
	var out []Test
	for _, t := range s.tests {
		if sub, ok := t.(*Suite); ok {
			out = append(out, sub.Tests()...)
			continue
		}
		out = append(out, t)
	}
	return out
}

// AllExcluded returns exclusions of s and nested suites, depth-first.
func (s *Suite) AllExcluded() []Excluded {
	out := append([]Excluded(nil), s.Excluded...)
	for _, t := range s.tests {
		if sub, ok := t.(*Suite); ok {
			out = append(out, sub.AllExcluded()...)
		}
	}
	return out
}

// Len returns the number of leaf tests.
func (s *Suite) Len() int {
	return len(s.Tests())
}

// IDs returns the leaf test IDs in run order.
func (s *Suite) IDs() []string {
	tests := s.Tests()
	ids := make([]string, len(tests))
	for i, t := range tests {
		ids[i] = t.ID()
	}
	return ids
}

// CheckUnique returns an error naming every test that appears more than once.
func (s *Suite) CheckUnique() error {
	seen := make(map[string]int)
	var dups []string
	for _, id := range s.IDs() {
		seen[id]++
		if seen[id] == 2 {
			dups = append(dups, id)
		}
	}
	if len(dups) > 0 {
		return fmt.Errorf("suite %q: duplicate tests: %v", s.Name, dups)
	}
	return nil
}

// Run implements Test. Exclusions are recorded as skips.
func (s *Suite) Run(r *Result) {
	for _, t := range s.tests {
		t.Run(r)
	}
	for _, ex := range s.Excluded {
		r.Add(Outcome{ID: ex.ID, Status: StatusSkip, Detail: ex.Reason, Excluded: true})
	}
}

type skippedTest struct {
	inner  Test
	reason string
}

// SkipTest returns a test that reports test as skipped with reason without
// running it.
func SkipTest(test Test, reason string) Test {
	return &skippedTest{inner: test, reason: reason}
}

func (s *skippedTest) ID() string {
	return s.inner.ID()
}

func (s *skippedTest) Run(r *Result) {
	r.Add(Outcome{ID: s.inner.ID(), Status: StatusSkip, Detail: s.reason})
}
