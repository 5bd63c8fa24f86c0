package harness

import (
	"runtime"
	"strconv"
	"strings"

	"github.com/roach88/conform/internal/envutil"
	"github.com/roach88/conform/internal/impl"
	"github.com/roach88/conform/internal/suite"
)

// IterationsEnvVar sets how many times a test module is executed.
const IterationsEnvVar = "CONFORM_TEST_ITERATIONS"

// Predicate reports a fact about the running process.
type Predicate func() bool

// IsAlt reports whether the alternative implementation is running.
func IsAlt() bool { return impl.IsAlt() }

// IsReference reports whether the reference implementation is running.
func IsReference() bool { return !impl.IsAlt() }

func IsWindows() bool { return runtime.GOOS == "windows" }

func IsLinux() bool { return runtime.GOOS == "linux" }

func IsMacOS() bool { return runtime.GOOS == "darwin" }

// IsPosix is true on every platform but Windows and Plan 9.
func IsPosix() bool { return !IsWindows() && runtime.GOOS != "plan9" }

// IsRace reports whether the binary was built with the race detector.
func IsRace() bool { return raceEnabled }

func Is64Bit() bool { return strconv.IntSize == 64 }

// IsCI reports whether CI is set to something other than false or 0.
func IsCI() bool {
	v, ok := envutil.Lookup("CI")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "no":
		return false
	}
	return true
}

// Iterations returns the requested number of executions, at least 1.
func Iterations() int {
	n, err := strconv.Atoi(strings.TrimSpace(envutil.Get(IterationsEnvVar, "1")))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// IsMultipleExecute is true when the module is executed more than once.
func IsMultipleExecute() bool { return Iterations() > 1 }

// Not negates p.
func Not(p Predicate) Predicate {
	return func() bool { return !p() }
}

// Decorator transforms a test method.
type Decorator func(suite.Method) suite.Method

// SkipUnless turns a method into a skip with reason when p is false. The
// predicate is evaluated when the test runs.
func SkipUnless(p Predicate, reason string) Decorator {
	return func(m suite.Method) suite.Method {
		return func(t *suite.T) {
			if !p() {
				t.Skip(reason)
			}
			m(t)
		}
	}
}

// SkipIf turns a method into a skip with reason when p is true.
func SkipIf(p Predicate, reason string) Decorator {
	return SkipUnless(Not(p), reason)
}

// Disabled always skips.
func Disabled(reason string) Decorator {
	return SkipIf(func() bool { return true }, "disabled: "+reason)
}

// On reports whether any of names describes the running process. A name is
// a GOOS value or one of the tags alt, reference, posix, race, ci, 64bit and
// multiple_execute. Each argument may hold several names separated by
// spaces.
func On(names ...string) Predicate {
	fields := platformNames(names)
	return func() bool {
		for _, name := range fields {
			if isPlatform(name) {
				return true
			}
		}
		return false
	}
}

func platformNames(names []string) []string {
	var fields []string
	for _, n := range names {
		fields = append(fields, strings.Fields(n)...)
	}
	return fields
}

func isPlatform(name string) bool {
	switch strings.ToLower(name) {
	case "alt", "alternative":
		return IsAlt()
	case "reference":
		return IsReference()
	case "posix":
		return IsPosix()
	case "race":
		return IsRace()
	case "ci":
		return IsCI()
	case "64bit":
		return Is64Bit()
	case "multiple_execute":
		return IsMultipleExecute()
	}
	return strings.EqualFold(name, runtime.GOOS)
}

// RunOnly skips the method unless the process is on one of platforms.
func RunOnly(platforms ...string) Decorator {
	return SkipUnless(On(platforms...), "runs only on "+strings.Join(platformNames(platforms), ", "))
}

// SkipOn skips the method when the process is on one of platforms.
func SkipOn(platforms ...string) Decorator {
	return SkipIf(On(platforms...), "skipped on "+strings.Join(platformNames(platforms), ", "))
}

// MaxFailureRetry is the number of attempts RetryOnFailure makes by default.
const MaxFailureRetry = 3

// RetryOnFailure reruns a failing method, up to attempts times in all. An
// attempts value below 1 means MaxFailureRetry.
func RetryOnFailure(attempts int) Decorator {
	if attempts < 1 {
		attempts = MaxFailureRetry
	}
	return func(m suite.Method) suite.Method {
		return suite.Retry(attempts, m)
	}
}
