package harness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/conform/internal/impl"
	"github.com/roach88/conform/internal/suite"
)

func run(t *testing.T, class *suite.Class, method string) suite.Outcome {
	t.Helper()
	c, err := suite.NewCase(class, method)
	require.NoError(t, err)
	return c.Execute()
}

func TestCase_TemporaryDirLifecycle(t *testing.T) {
	var dir string
	var inside string
	class := &suite.Class{Name: "FileTests", Fixture: Fixture}
	class.Add("test_write", func(t *suite.T) {
		c := From(t)
		dir = c.TemporaryDir
		p, err := c.TempFile("sub/data.txt", "hello")
		require.NoError(t, err)
		inside = p
		require.FileExists(t, inside)
	})

	out := run(t, class, "test_write")
	require.Equal(t, suite.StatusPass, out.Status, out.Detail)
	assert.Equal(t, TempDirName(os.Getpid(), "FileTests.test_write"), dir)
	assert.True(t, strings.HasPrefix(filepath.Base(dir), "conform-"))
	assert.NoDirExists(t, dir)
	assert.NoFileExists(t, inside)
}

func TestCase_TemporaryDirRemovedOnPanic(t *testing.T) {
	var dir string
	class := &suite.Class{Name: "T", Fixture: Fixture}
	class.Add("boom", func(t *suite.T) {
		c := From(t)
		dir = c.TemporaryDir
		_, err := c.TempFile("left.txt", "x")
		require.NoError(t, err)
		panic("raised")
	})

	out := run(t, class, "boom")
	assert.Equal(t, suite.StatusError, out.Status)
	assert.NotEmpty(t, dir)
	assert.NoDirExists(t, dir)
}

func TestCase_TearDownOnce(t *testing.T) {
	c := NewCase()
	calls := 0
	c.AddCleanup(func() error { calls++; return nil })
	require.NoError(t, c.TearDown(nil))
	require.NoError(t, c.TearDown(nil))
	assert.Equal(t, 1, calls)
}

func TestCase_TearDownJoinsErrors(t *testing.T) {
	c := NewCase()
	first := errors.New("first")
	second := errors.New("second")
	var order []string
	c.AddCleanup(func() error { order = append(order, "a"); return first })
	c.AddCleanup(func() error { order = append(order, "b"); return second })

	err := c.TearDown(nil)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Equal(t, []string{"b", "a"}, order)
}

func TestCase_DeleteFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.txt")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0644))

	c := NewCase()
	require.NoError(t, c.DeleteFiles(present, filepath.Join(dir, "absent.txt")))
	assert.NoFileExists(t, present)
}

func TestCase_DeleteOnTearDown(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.bin")
	require.NoError(t, os.WriteFile(p, nil, 0644))

	c := NewCase()
	c.DeleteOnTearDown(p)
	assert.FileExists(t, p)
	require.NoError(t, c.TearDown(nil))
	assert.NoFileExists(t, p)
}

func TestSearchPath_ScopedRestoreOnPanic(t *testing.T) {
	path := NewSearchPath("P0", "P1")

	assert.PanicsWithValue(t, "raised", func() {
		path.With("X", func() {
			assert.Equal(t, []string{"P0", "P1", "X"}, path.Entries())
			path.Append("Y")
			assert.Equal(t, []string{"P0", "P1", "X", "Y"}, path.Entries())
			panic("raised")
		})
	})
	assert.Equal(t, []string{"P0", "P1"}, path.Entries())
}

func TestSearchPath_PushRestoresExactOrder(t *testing.T) {
	path := NewSearchPath("P0", "P1")
	release := path.Push("X")
	path.Remove("P0")
	path.Prepend("Z")
	assert.Equal(t, []string{"Z", "P1", "X"}, path.Entries())

	release()
	release()
	assert.Equal(t, []string{"P0", "P1"}, path.Entries())
}

func TestCase_PushPathReleasedOnTearDown(t *testing.T) {
	path := NewSearchPath("P0")
	class := &suite.Class{Name: "T", Fixture: func() suite.Fixture {
		return &Case{Path: path}
	}}
	class.Add("a", func(t *suite.T) {
		From(t).PushPath("X")
		t.Fatal("fails while X is pushed")
	})

	out := run(t, class, "a")
	assert.Equal(t, suite.StatusFail, out.Status)
	assert.Equal(t, []string{"P0"}, path.Entries())
}

func TestCase_FindFixture(t *testing.T) {
	onPath := t.TempDir()
	testDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(onPath, "a.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "a.txt"), nil, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(testDir, "b.txt"), nil, 0644))

	c := &Case{TestDir: testDir, Path: NewSearchPath(onPath)}

	got, err := c.FindFixture("a.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(onPath, "a.txt"), got)

	got, err = c.FindFixture("b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(testDir, "b.txt"), got)

	_, err = c.FindFixture("c.txt")
	assert.ErrorIs(t, err, ErrFixtureNotFound)
}

func TestFrom_WrongFixture(t *testing.T) {
	class := (&suite.Class{Name: "T"}).Add("a", func(t *suite.T) { From(t) })
	out := run(t, class, "a")
	assert.Equal(t, suite.StatusFail, out.Status)
	assert.Contains(t, out.Detail, "not *harness.Case")
}

func TestRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0644))
	file := filepath.Join(nested, "x_test.go")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	got, err := Root(file)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	td, err := TestDataDir(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "testdata"), td)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "T.test_a_b_", sanitize("T.test_a/b "))
}

func TestSkipDecorators(t *testing.T) {
	restore := impl.Override(impl.Alternative)
	defer restore()

	ran := map[string]bool{}
	class := &suite.Class{Name: "T"}
	class.Add("alt_only", SkipUnless(IsAlt, "alt only")(func(t *suite.T) { ran["alt_only"] = true }))
	class.Add("not_on_alt", SkipIf(IsAlt, "broken on alt")(func(t *suite.T) { ran["not_on_alt"] = true }))
	class.Add("reference_only", SkipUnless(IsReference, "reference only")(func(t *suite.T) { ran["reference_only"] = true }))
	class.Add("disabled", Disabled("flaky")(func(t *suite.T) { ran["disabled"] = true }))

	assert.Equal(t, suite.StatusPass, run(t, class, "alt_only").Status)

	out := run(t, class, "not_on_alt")
	assert.Equal(t, suite.StatusSkip, out.Status)
	assert.Equal(t, "broken on alt", out.Detail)

	assert.Equal(t, suite.StatusSkip, run(t, class, "reference_only").Status)

	out = run(t, class, "disabled")
	assert.Equal(t, "disabled: flaky", out.Detail)

	assert.Equal(t, map[string]bool{"alt_only": true}, ran)
}

func TestPlatformPredicates(t *testing.T) {
	assert.Equal(t, runtime.GOOS == "linux", IsLinux())
	assert.Equal(t, runtime.GOOS == "windows", IsWindows())
	assert.Equal(t, runtime.GOOS == "darwin", IsMacOS())
	assert.Equal(t, !IsWindows() && runtime.GOOS != "plan9", IsPosix())
	assert.NotEqual(t, IsAlt(), IsReference())
}

func TestIsCI(t *testing.T) {
	t.Setenv("CI", "true")
	assert.True(t, IsCI())
	t.Setenv("CI", "false")
	assert.False(t, IsCI())
}

func TestIterations(t *testing.T) {
	t.Setenv(IterationsEnvVar, "3")
	assert.Equal(t, 3, Iterations())
	assert.True(t, IsMultipleExecute())

	t.Setenv(IterationsEnvVar, "0")
	assert.Equal(t, 1, Iterations())
	t.Setenv(IterationsEnvVar, "lots")
	assert.Equal(t, 1, Iterations())
	assert.False(t, IsMultipleExecute())
}

func TestCase_PanickingCleanupStillRemovesTemporaryDir(t *testing.T) {
	var dir string
	ran := false
	class := &suite.Class{Name: "T", Fixture: Fixture}
	class.Add("leak", func(t *suite.T) {
		c := From(t)
		dir = c.TemporaryDir
		_, err := c.TempFile("kept.txt", "x")
		require.NoError(t, err)
		c.AddCleanup(func() error { ran = true; return nil })
		c.AddCleanup(func() error { panic("cleanup raised") })
	})

	out := run(t, class, "leak")
	assert.Equal(t, suite.StatusError, out.Status)
	assert.Contains(t, out.Detail, "cleanup panic: cleanup raised")
	assert.True(t, ran)
	assert.NotEmpty(t, dir)
	assert.NoDirExists(t, dir)
}

func TestCase_TestDirFromRegisteringFile(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	want, err := TestDataDir(file)
	require.NoError(t, err)

	var got string
	mod := suite.NewModule("test_dirs")
	mod.Class("T", Fixture).Add("a", func(t *suite.T) { got = From(t).TestDir })

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	class, _ := mod.Lookup("T")
	out := run(t, class, "a")
	require.Equal(t, suite.StatusPass, out.Status, out.Detail)
	assert.Equal(t, want, got)
}

func TestRunOnlyAndSkipOn(t *testing.T) {
	restore := impl.Override(impl.Alternative)
	defer restore()

	assert.True(t, On(runtime.GOOS)())
	assert.True(t, On("plan9 "+runtime.GOOS)())
	assert.True(t, On("alt")())
	assert.False(t, On("reference", "plan9")())

	ran := map[string]bool{}
	class := &suite.Class{Name: "T"}
	class.Add("here", RunOnly(runtime.GOOS, "plan9")(func(t *suite.T) { ran["here"] = true }))
	class.Add("elsewhere", RunOnly("plan9 reference")(func(t *suite.T) { ran["elsewhere"] = true }))
	class.Add("skip_here", SkipOn("alt")(func(t *suite.T) { ran["skip_here"] = true }))

	assert.Equal(t, suite.StatusPass, run(t, class, "here").Status)

	out := run(t, class, "elsewhere")
	assert.Equal(t, suite.StatusSkip, out.Status)
	assert.Equal(t, "runs only on plan9, reference", out.Detail)

	out = run(t, class, "skip_here")
	assert.Equal(t, suite.StatusSkip, out.Status)
	assert.Equal(t, "skipped on alt", out.Detail)

	assert.Equal(t, map[string]bool{"here": true}, ran)
}

func TestRetryOnFailure(t *testing.T) {
	attempts := 0
	class := &suite.Class{Name: "T"}
	class.Add("flaky", RetryOnFailure(0)(func(t *suite.T) {
		attempts++
		require.Equal(t, 3, attempts, "not yet")
	}))
	class.Add("broken", RetryOnFailure(2)(func(t *suite.T) {
		attempts++
		t.Fatal("always")
	}))

	out := run(t, class, "flaky")
	assert.Equal(t, suite.StatusPass, out.Status, out.Detail)
	assert.Equal(t, MaxFailureRetry, attempts)
	require.Len(t, out.Logs, 2)
	assert.Contains(t, out.Logs[0], "attempt 1 of 3 failed")

	attempts = 0
	out = run(t, class, "broken")
	assert.Equal(t, suite.StatusFail, out.Status)
	assert.Equal(t, "always", out.Detail)
	assert.Equal(t, 2, attempts)
}

func TestCaptureStdout(t *testing.T) {
	saved := os.Stdout
	lines, err := CaptureStdout(func() {
		fmt.Println("hello  ")
		fmt.Fprintln(os.Stdout, "world")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, lines)
	assert.Same(t, saved, os.Stdout)

	savedErr := os.Stderr
	assert.Panics(t, func() {
		CaptureStderr(func() { panic("raised") }) //nolint:errcheck
	})
	assert.Same(t, savedErr, os.Stderr)
}

func TestCase_TrapStderrReleasedOnTearDown(t *testing.T) {
	saved := os.Stderr
	var trapped *Trapper
	class := &suite.Class{Name: "T", Fixture: Fixture}
	class.Add("a", func(t *suite.T) {
		tr, err := From(t).TrapStderr()
		require.NoError(t, err)
		trapped = tr
		fmt.Fprintln(os.Stderr, "warning")
		panic("raised")
	})

	out := run(t, class, "a")
	assert.Equal(t, suite.StatusError, out.Status)
	assert.Same(t, saved, os.Stderr)
	require.NotNil(t, trapped)
	assert.Equal(t, []string{"warning"}, trapped.Messages)
}
