package dirdiff

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkfile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
}

func TestCompare_Equal(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	for _, root := range []string{a, b} {
		mkfile(t, root, "x.txt", "same")
		mkfile(t, root, "sub/y.txt", "also same")
	}

	d, err := Compare(a, b)
	require.NoError(t, err)
	assert.True(t, d.Equal())
	assert.Equal(t, 2, d.Same)
}

func TestCompare_Differences(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	mkfile(t, a, "common.txt", "left")
	mkfile(t, b, "common.txt", "right")
	mkfile(t, a, "size.txt", "short")
	mkfile(t, b, "size.txt", "much longer")
	mkfile(t, a, "only_a.txt", "")
	mkfile(t, a, "gone/deep/file.txt", "")
	mkfile(t, b, "only_b/inner.txt", "")
	mkfile(t, a, "kind", "file here")
	mkfile(t, b, "kind/child.txt", "dir there")

	d, err := Compare(a, b)
	require.NoError(t, err)
	assert.False(t, d.Equal())
	assert.Equal(t, []string{"gone", "only_a.txt"}, d.OnlyInA)
	assert.Equal(t, []string{"kind/child.txt", "only_b"}, d.OnlyInB)
	assert.Equal(t, []string{"common.txt", "kind", "size.txt"}, d.Differ)

	var buf bytes.Buffer
	require.NoError(t, d.WriteText(&buf))
	assert.Contains(t, buf.String(), "Only in "+a+": gone\n")
	assert.Contains(t, buf.String(), "Differ: size.txt\n")
}

func TestCompare_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	mkfile(t, dir, "f", "")
	_, err := Compare(filepath.Join(dir, "f"), dir)
	assert.Error(t, err)

	_, err = Compare(filepath.Join(dir, "missing"), dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
