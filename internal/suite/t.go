package suite

import (
	"errors"
	"fmt"
	"strings"
)

// T is passed to every test method. It satisfies require.TestingT and
// assert.TestingT, so upstream test bodies assert with testify.
//
// T is owned by a single test and is not safe for concurrent use; tests run
// sequentially.
type T struct {
	name     string
	source   string
	fixture  Fixture
	failed   bool
	messages []string
	skip     string
	cleanups []func()
	logs     []string
}

type failNowSignal struct{}

type skipSignal struct{}

func newT(name string, fixture Fixture) *T {
	return &T{name: name, fixture: fixture}
}

// Name returns the test ID, "Class.Method".
func (t *T) Name() string {
	return t.name
}

// Source returns the file that registered the test's class, or "" when the
// class was built by hand.
func (t *T) Source() string {
	return t.source
}

// Fixture returns the fixture constructed for this test, or nil when the
// class has none.
func (t *T) Fixture() Fixture {
	return t.fixture
}

// Helper is a no-op; testify calls it when present.
func (t *T) Helper() {}

// Fail marks the test as failed and continues.
func (t *T) Fail() {
	t.failed = true
}

// Failed reports whether the test has failed.
func (t *T) Failed() bool {
	return t.failed
}

// Errorf records a failure message and continues.
func (t *T) Errorf(format string, args ...any) {
	t.messages = append(t.messages, strings.TrimSpace(fmt.Sprintf(format, args...)))
	t.failed = true
}

// Error records a failure message and continues.
func (t *T) Error(args ...any) {
	t.messages = append(t.messages, strings.TrimSpace(fmt.Sprint(args...)))
	t.failed = true
}

// FailNow marks the test as failed and stops the test body.
func (t *T) FailNow() {
	t.failed = true
	panic(failNowSignal{})
}

// Fatalf is Errorf followed by FailNow.
func (t *T) Fatalf(format string, args ...any) {
	t.Errorf(format, args...)
	t.FailNow()
}

// Fatal is Error followed by FailNow.
func (t *T) Fatal(args ...any) {
	t.Error(args...)
	t.FailNow()
}

// Skip records reason and stops the test body.
func (t *T) Skip(args ...any) {
	t.skip = fmt.Sprint(args...)
	if t.skip == "" {
		t.skip = "skipped"
	}
	panic(skipSignal{})
}

// Skipf is Skip with formatting.
func (t *T) Skipf(format string, args ...any) {
	t.Skip(fmt.Sprintf(format, args...))
}

// Logf records a diagnostic line that is reported with the outcome.
func (t *T) Logf(format string, args ...any) {
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
}

// Cleanup registers fn to run after TearDown, in last-registered-first order.
func (t *T) Cleanup(fn func()) {
	t.cleanups = append(t.cleanups, fn)
}

// runCleanups runs every cleanup, last first. A panicking cleanup does not
// stop the ones registered before it.
func (t *T) runCleanups() error {
	failed, seen := t.failed, len(t.messages)
	var errs []error
	for i := len(t.cleanups) - 1; i >= 0; i-- {
		fn := t.cleanups[i]
		if sig, err := protect(t, func() error { fn(); return nil }); sig == signalError {
			errs = append(errs, err)
		}
	}
	t.cleanups = nil
	return errors.Join(append(errs, t.failuresSince(failed, seen))...)
}

// failuresSince returns the failures reported after a mark of the failed
// flag and message count, or nil when there were none.
func (t *T) failuresSince(failed bool, seen int) error {
	if len(t.messages) > seen {
		return errors.New(strings.Join(t.messages[seen:], "\n"))
	}
	if t.failed && !failed {
		return errors.New("marked failed")
	}
	return nil
}

func (t *T) failureDetail() string {
	return strings.Join(t.messages, "\n")
}
