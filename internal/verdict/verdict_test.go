package verdict

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDisposition(t *testing.T) {
	tests := []struct {
		in   string
		want Disposition
	}{
		{"", Include},
		{"include", Include},
		{"INCLUDE", Include},
		{"expect_fail", ExpectFail},
		{"xfail", ExpectFail},
		{"Skip", Skip},
	}
	for _, tt := range tests {
		got, err := ParseDisposition(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDisposition("maybe")
	assert.Error(t, err)
}

func TestDisposition_String(t *testing.T) {
	assert.Equal(t, "include", Include.String())
	assert.Equal(t, "expect_fail", ExpectFail.String())
	assert.Equal(t, "skip", Skip.String())
	assert.Equal(t, "disposition(9)", Disposition(9).String())
}

func TestList_Validate_Duplicates(t *testing.T) {
	list := List{
		Module: "upstream_a",
		Entries: []Verdict{
			IncludeTest("T", "a"),
			SkipTest("T", "a", "again"),
			IncludeTest("T", "b"),
			ExpectFailTest("T", "b", ""),
			IncludeTest("T", "a"),
		},
	}

	errs := list.Validate()
	require.Len(t, errs, 1)
	assert.True(t, IsConfigError(errs[0], ErrDuplicateEntry))
	assert.Equal(t, []string{"T.a", "T.b"}, list.Duplicates())
	assert.Contains(t, errs[0].Error(), "T.a, T.b")
}

func TestList_Validate_Blank(t *testing.T) {
	list := List{Module: "m", Entries: []Verdict{{Class: "T"}, IncludeTest("T", "x")}}

	errs := list.Validate()
	require.Len(t, errs, 1)
	assert.True(t, IsConfigError(errs[0], ErrBlankEntry))
	assert.Contains(t, errs[0].Error(), "tests[0]")
}

func TestList_Count(t *testing.T) {
	list := List{Entries: []Verdict{
		IncludeTest("T", "a"),
		ExpectFailTest("T", "b", "note"),
		SkipTest("T", "c", "why"),
		SkipTest("T", "d", "why"),
	}}
	assert.Equal(t, 1, list.Count(Include))
	assert.Equal(t, 1, list.Count(ExpectFail))
	assert.Equal(t, 2, list.Count(Skip))
	assert.Equal(t, 4, list.Len())
}

func TestConfigError_Message(t *testing.T) {
	err := NewConfigError(ErrUnresolvedEntry, "upstream_a", "unresolved verdict entries", []string{"T.nonexistent"})
	assert.Equal(t, "[E201] upstream_a: unresolved verdict entries: T.nonexistent", err.Error())
	assert.True(t, IsConfigError(err))
	assert.False(t, IsConfigError(err, ErrDuplicateEntry))
	assert.False(t, IsConfigError(os.ErrNotExist))
}

func TestLoadFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upstream_a.yaml")
	content := `module: upstream_a
tests:
  - class: T
    method: a
  - class: T
    method: b
    disposition: expect_fail
    note: https://example.invalid/issues/1
  - class: T
    method: c
    disposition: skip
    reason: hangs
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	list, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "upstream_a", list.Module)
	require.Len(t, list.Entries, 3)
	assert.Equal(t, IncludeTest("T", "a"), list.Entries[0])
	assert.Equal(t, ExpectFail, list.Entries[1].Disposition)
	assert.Equal(t, "https://example.invalid/issues/1", list.Entries[1].Note)
	assert.Equal(t, Skip, list.Entries[2].Disposition)
	assert.Equal(t, "hangs", list.Entries[2].Reason)
}

func TestLoadFile_YAMLUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")
	content := `module: m
tests:
  - class: T
    methd: a
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadFile_YAMLDuplicate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dup.yaml")
	content := `module: m
tests:
  - {class: T, method: a}
  - {class: T, method: a, disposition: skip}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrDuplicateEntry))
}

func TestLoadFile_BadDisposition(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	content := `module: m
tests:
  - {class: T, method: a, disposition: sometimes}
  - {class: T, method: b, disposition: never}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrBadDisposition))
	assert.Contains(t, err.Error(), "T.a")
	assert.Contains(t, err.Error(), "T.b")
}

func TestLoadFile_CUE(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upstream_a.cue")
	content := `module: "upstream_a"
tests: [
	{class: "T", method: "a"},
	{class: "T", method: "c", disposition: "skip", reason: "flaky"},
]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	list, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "upstream_a", list.Module)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, Skip, list.Entries[1].Disposition)
	assert.Equal(t, "flaky", list.Entries[1].Reason)
}

func TestLoadFile_CUEInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.cue")
	require.NoError(t, os.WriteFile(path, []byte(`module: "m"
tests: [{class: "T", method: string}]
`), 0644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile("verdicts.json")
	require.Error(t, err)
	assert.True(t, IsConfigError(err, ErrUnsupportedFormat))
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshal_RoundTrip(t *testing.T) {
	list := List{
		Module: "upstream_a",
		Entries: []Verdict{
			IncludeTest("T", "a"),
			ExpectFailTest("T", "b", "pickling"),
			SkipTest("T", "c", "hangs"),
		},
	}

	data, err := Marshal(list)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "disposition: include")

	got, err := Parse(data, FormatYAML, "roundtrip.yaml")
	require.NoError(t, err)
	assert.Equal(t, list, got)
}
