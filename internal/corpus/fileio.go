package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/conform/internal/harness"
	"github.com/roach88/conform/internal/suite"
)

// FileIO builds the test_fileio upstream module. Its tests run on a
// harness.Case and exercise scratch files and the fixture search path.
func FileIO() *suite.Module {
	mod := suite.NewModule("test_fileio")

	mod.Class("FileTests", harness.Fixture).
		Add("test_write_read", func(t *suite.T) {
			c := harness.From(t)
			p, err := c.TempFile("greeting.txt", "hello\n")
			require.NoError(t, err)
			data, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Equal(t, "hello\n", string(data))
		}).
		Add("test_append", func(t *suite.T) {
			c := harness.From(t)
			p, err := c.TempFile("log.txt", "a")
			require.NoError(t, err)
			f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0)
			require.NoError(t, err)
			_, err = f.WriteString("b")
			require.NoError(t, err)
			require.NoError(t, f.Close())
			data, err := os.ReadFile(p)
			require.NoError(t, err)
			assert.Equal(t, "ab", string(data))
		}).
		Add("test_delete_files", func(t *suite.T) {
			c := harness.From(t)
			p, err := c.TempFile("doomed.txt", "x")
			require.NoError(t, err)
			require.NoError(t, c.DeleteFiles(p, filepath.Join(c.TemporaryDir, "never-existed")))
			_, err = os.Stat(p)
			assert.True(t, os.IsNotExist(err))
		}).
		Add("test_private_temp_dir", func(t *suite.T) {
			c := harness.From(t)
			assert.Contains(t, filepath.Base(c.TemporaryDir), fmt.Sprintf("conform-%d-", os.Getpid()))
			entries, err := os.ReadDir(c.TemporaryDir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		}).
		Add("test_search_path", func(t *suite.T) {
			c := harness.From(t)
			_, err := c.TempFile("fixtures/data.bin", "\x00\x01")
			require.NoError(t, err)
			dir := filepath.Join(c.TemporaryDir, "fixtures")

			c.WithPath(dir, func() {
				p, err := c.FindFixture("data.bin")
				require.NoError(t, err)
				assert.Equal(t, filepath.Join(dir, "data.bin"), p)
			})
			_, err = c.FindFixture("data.bin")
			assert.ErrorIs(t, err, harness.ErrFixtureNotFound)
		}).
		Add("test_environ", func(t *suite.T) {
			c := harness.From(t)
			v, ok := c.Environ(strings.ToLower("PATH"))
			require.True(t, ok, "PATH not found ignoring case")
			assert.NotEmpty(t, v)
		}).
		Add("test_symlink", harness.SkipIf(harness.IsWindows, "symlinks need elevated privileges on windows")(
			func(t *suite.T) {
				c := harness.From(t)
				target, err := c.TempFile("target.txt", "t")
				require.NoError(t, err)
				link := filepath.Join(c.TemporaryDir, "link.txt")
				require.NoError(t, os.Symlink(target, link))
				resolved, err := filepath.EvalSymlinks(link)
				require.NoError(t, err)
				want, err := filepath.EvalSymlinks(target)
				require.NoError(t, err)
				assert.Equal(t, want, resolved)
			})).
		Add("test_large_file", harness.Disabled("needs 4GiB of scratch space")(
			func(t *suite.T) {
				c := harness.From(t)
				f, err := os.Create(filepath.Join(c.TemporaryDir, "large.bin"))
				require.NoError(t, err)
				defer f.Close()
				require.NoError(t, f.Truncate(4<<30))
			})).
		Add("test_exclusive_create", func(t *suite.T) {
			c := harness.From(t)
			p, err := c.TempFile("once.txt", "")
			require.NoError(t, err)
			_, err = os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
			assert.ErrorIs(t, err, os.ErrExist)
		})

	return mod
}
