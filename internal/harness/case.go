package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/conform/internal/envutil"
	"github.com/roach88/conform/internal/suite"
)

// ErrFixtureNotFound is returned by FindFixture.
var ErrFixtureNotFound = errors.New("fixture not found")

// Case is the per-test context. Build a fresh one for every test with
// Fixture; tests reach it through From.
type Case struct {
	// TestDir holds input fixtures. The harness never writes to it. When
	// empty, SetUp resolves it with TestDataDir from the file that registered
	// the test's class, falling back to the working directory.
	TestDir string

	// TemporaryDir is created by SetUp and removed by TearDown. It is owned
	// by this test alone.
	TemporaryDir string

	// Path is the search path scoped helpers act on. Nil means ModulePath.
	Path *SearchPath

	Logger *slog.Logger

	cleanups []func() error
	torn     bool
}

// NewCase creates an empty case.
func NewCase() *Case {
	return &Case{}
}

// Fixture builds a new Case; use it as suite.Class.Fixture.
func Fixture() suite.Fixture {
	return NewCase()
}

// From returns the Case of the running test. It fails the test when the
// class was not built with a Case fixture.
func From(t *suite.T) *Case {
	c, ok := t.Fixture().(*Case)
	if !ok {
		t.Fatalf("%s: fixture is %T, not *harness.Case", t.Name(), t.Fixture())
	}
	return c
}

func (c *Case) logger() *slog.Logger {
	if c.Logger == nil {
		c.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}

func (c *Case) path() *SearchPath {
	if c.Path == nil {
		return ModulePath
	}
	return c.Path
}

// SetUp implements suite.Fixture.
func (c *Case) SetUp(t *suite.T) error {
	if c.TestDir == "" {
		from := t.Source()
		if from == "" {
			from, _ = os.Getwd()
		}
		if dir, err := TestDataDir(from); err == nil {
			c.TestDir = dir
		}
	}

	dir := TempDirName(os.Getpid(), t.Name())
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear temporary dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create temporary dir: %w", err)
	}
	c.TemporaryDir = dir
	c.logger().Debug("allocated temporary dir", "test", t.Name(), "dir", dir)
	return nil
}

// TearDown implements suite.Fixture. Cleanups run last-registered-first,
// then the temporary directory is removed. A panicking cleanup is reported
// as an error and does not stop the rest. It does its work only once.
func (c *Case) TearDown(t *suite.T) error {
	if c.torn {
		return nil
	}
	c.torn = true

	var errs []error
	for i := len(c.cleanups) - 1; i >= 0; i-- {
		if err := runCleanup(c.cleanups[i]); err != nil {
			errs = append(errs, err)
		}
	}
	c.cleanups = nil

	if c.TemporaryDir != "" {
		if err := os.RemoveAll(c.TemporaryDir); err != nil {
			errs = append(errs, fmt.Errorf("remove temporary dir: %w", err))
		}
		c.logger().Debug("released temporary dir", "test", t.Name(), "dir", c.TemporaryDir)
	}
	return errors.Join(errs...)
}

// runCleanup calls fn, turning a panic into an error.
func runCleanup(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cleanup panic: %v", r)
		}
	}()
	return fn()
}

// TempDirName returns the temporary directory used for test in process pid.
func TempDirName(pid int, test string) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("conform-%d-%s", pid, sanitize(test)))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
}

// AddCleanup registers fn to run on teardown.
func (c *Case) AddCleanup(fn func() error) {
	c.cleanups = append(c.cleanups, fn)
}

// DeleteFiles removes the named files. Missing files are not an error.
func (c *Case) DeleteFiles(paths ...string) error {
	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DeleteOnTearDown registers paths for removal on teardown.
func (c *Case) DeleteOnTearDown(paths ...string) {
	paths = append([]string(nil), paths...)
	c.AddCleanup(func() error { return c.DeleteFiles(paths...) })
}

// TempFile writes content to name inside TemporaryDir and returns its path.
func (c *Case) TempFile(name, content string) (string, error) {
	if c.TemporaryDir == "" {
		return "", errors.New("temporary dir not allocated")
	}
	p := filepath.Join(c.TemporaryDir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		return "", err
	}
	return p, nil
}

// PushPath appends dir to the search path. The returned func restores the
// path as it was; it is also registered as a cleanup, so a test that never
// calls it still gets the path back on teardown.
func (c *Case) PushPath(dir string) (release func()) {
	release = c.path().Push(dir)
	c.AddCleanup(func() error { release(); return nil })
	return release
}

// WithPath runs fn with dir on the search path and restores the path when
// fn returns or panics.
func (c *Case) WithPath(dir string, fn func()) {
	c.path().With(dir, fn)
}

// FindFixture resolves name on the search path, then in TestDir.
func (c *Case) FindFixture(name string) (string, error) {
	if p, ok := c.path().Find(name); ok {
		return p, nil
	}
	if c.TestDir != "" {
		p := filepath.Join(c.TestDir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrFixtureNotFound)
}

// Environ looks name up in the environment ignoring case.
func (c *Case) Environ(name string) (string, bool) {
	return envutil.Lookup(name)
}
