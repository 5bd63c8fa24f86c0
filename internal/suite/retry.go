package suite

import "errors"

// Retry returns a method that runs m up to attempts times and passes as
// soon as one attempt does. Every attempt but the last runs on its own T;
// its failure is logged and its cleanups run before the next attempt. The
// last attempt runs on t, so its failure is the test's. A skip ends the
// retries. All attempts share the test's fixture.
func Retry(attempts int, m Method) Method {
	if attempts < 1 {
		attempts = 1
	}
	return func(t *T) {
		for i := 1; i < attempts; i++ {
			try := newT(t.name, t.fixture)
			try.source = t.source
			sig, err := protect(try, func() error { m(try); return nil })
			t.logs = append(t.logs, try.logs...)

			switch {
			case sig == signalSkip:
				t.cleanups = append(t.cleanups, try.cleanups...)
				t.Skip(try.skip)
			case sig == signalError || try.failed:
				if err == nil {
					err = errors.New(try.failureDetail())
				}
				if cerr := try.runCleanups(); cerr != nil {
					t.Logf("attempt %d of %d: cleanup: %v", i, attempts, cerr)
				}
				t.Logf("attempt %d of %d failed: %v", i, attempts, err)
				continue
			}
			t.cleanups = append(t.cleanups, try.cleanups...)
			return
		}
		m(t)
	}
}
