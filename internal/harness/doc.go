// Package harness is the base for hand-written tests that run next to the
// adapters.
//
// A Case is a suite.Fixture. Every test gets its own temporary directory,
// named after the process id and the test, which is removed on teardown
// whatever the test did. Case also offers scoped changes to the module
// search path, file cleanup and fixture lookup.
//
// Skip decorators wrap a suite.Method so that it reports a skip when a
// predicate does not hold:
//
//	class.Add("test_symlink", harness.SkipUnless(harness.IsPosix, "needs symlinks")(func(t *suite.T) {
//		c := harness.From(t)
//		...
//	}))
package harness
