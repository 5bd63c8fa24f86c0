package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/roach88/conform/internal/corpus"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Execute(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun_AdapterUnderAlt(t *testing.T) {
	code, stdout, _ := execute(t, "run", "test_codecs_stdlib", "--impl", "alternative")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "LookupTests.test_lookup_utf7 ... expected failure\n")
	assert.Contains(t, stdout, "Ran 14 tests\n")
	assert.Contains(t, stdout, "OK (expected failures=2)\n")
}

func TestRun_ReferenceRunsUpstreamUnchanged(t *testing.T) {
	code, stdout, stderr := execute(t, "run", "test_codecs_stdlib", "--impl", "reference")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "FAIL: LookupTests.test_lookup_utf7")
	assert.Contains(t, stdout, "FAILED (failures=2)\n")
	assert.Empty(t, stderr)
}

func TestRun_Pattern(t *testing.T) {
	code, stdout, _ := execute(t, "run", "test_codecs_stdlib", "--impl", "alt", "-p", "test_lookup_*")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "Ran 7 tests\n")
	assert.Contains(t, stdout, "OK (expected failures=1)\n")
}

func TestRun_JSONReport(t *testing.T) {
	code, stdout, _ := execute(t, "--format", "json", "run", "test_codecs_stdlib", "--impl", "alternative")
	require.Equal(t, ExitSuccess, code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Module         string         `json:"module"`
			Implementation string         `json:"implementation"`
			Success        bool           `json:"success"`
			Counts         map[string]int `json:"counts"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "test_codecs_stdlib", resp.Data.Module)
	assert.Equal(t, "alternative", resp.Data.Implementation)
	assert.True(t, resp.Data.Success)
	assert.Equal(t, 2, resp.Data.Counts["expected_failures"])
}

func TestRun_VerdictsFile(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "codecs.yaml"), `module: test_codecs
tests:
  - class: RoundTripTests
    method: test_latin1
`)
	code, stdout, _ := execute(t, "run", "test_codecs", "--impl", "alternative", "--verdicts", path)
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "RoundTripTests.test_latin1 ... ok\n")
	assert.Contains(t, stdout, "Ran 1 test\n")
}

func TestRun_VerdictTypoIsCommandError(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "codecs.yaml"), `module: test_codecs
tests:
  - class: RoundTripTests
    method: test_latin1
  - class: RoundTripTests
    method: test_nonexistent
`)
	code, stdout, _ := execute(t, "--format", "json", "run", "test_codecs",
		"--impl", "alternative", "--verdicts", path)
	assert.Equal(t, ExitCommandError, code)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E201", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "RoundTripTests.test_nonexistent")
}

func TestRun_UnknownModule(t *testing.T) {
	code, _, stderr := execute(t, "run", "test_nowhere", "--impl", "alternative")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to load test_nowhere")
}

func TestRun_RecordsHistory(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")

	code, _, _ := execute(t, "run", "test_fileio_stdlib", "--impl", "alternative", "--db", db)
	require.Equal(t, ExitSuccess, code)
	code, _, _ = execute(t, "run", "test_fileio_stdlib", "--impl", "reference", "--db", db)
	require.Equal(t, ExitSuccess, code)

	code, stdout, _ := execute(t, "--format", "json", "history", "test_fileio_stdlib", "--db", db)
	require.Equal(t, ExitSuccess, code)
	var resp struct {
		Data HistoryResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	require.Len(t, resp.Data.Runs, 2)
	assert.Equal(t, int64(1), resp.Data.Runs[0].Seq)
	assert.Equal(t, "alternative", resp.Data.Runs[0].Implementation)
	assert.Equal(t, "reference", resp.Data.Runs[1].Implementation)

	code, stdout, _ = execute(t, "history", "test_fileio_stdlib", "--db", db, "--test", "FileTests.test_large_file")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "alternative  skip\n")
	assert.Contains(t, stdout, "reference    skip\n")

	code, stdout, _ = execute(t, "history", "test_codecs_stdlib", "--db", db)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "no runs recorded for test_codecs_stdlib\n", stdout)
}

func TestHistory_RequiresDB(t *testing.T) {
	code, _, stderr := execute(t, "history", "test_fileio_stdlib")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "db")
}

func TestList_ComposedOrder(t *testing.T) {
	code, stdout, _ := execute(t, "list", "test_fileio_stdlib", "--impl", "alternative")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, `FileTests.test_write_read
FileTests.test_append
FileTests.test_delete_files
FileTests.test_private_temp_dir
FileTests.test_search_path
FileTests.test_environ
FileTests.test_symlink
FileTests.test_exclusive_create
FileTests.test_large_file (skipped: needs 4GiB of scratch space)
`, stdout)
}

func TestList_ReferenceIsSorted(t *testing.T) {
	code, stdout, _ := execute(t, "--format", "json", "list", "test_fileio_stdlib", "--impl", "reference", "-p", "test_[ad]*")
	require.Equal(t, ExitSuccess, code)
	var resp struct {
		Data ListResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, []string{"FileTests.test_append", "FileTests.test_delete_files"}, resp.Data.Tests)
	assert.Empty(t, resp.Data.Excluded)
}

func TestTriage(t *testing.T) {
	code, stdout, _ := execute(t, "triage", "test_codecs_stdlib")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "test_codecs_stdlib: every test in test_codecs has a verdict\n", stdout)

	path := writeFile(t, filepath.Join(t.TempDir(), "partial.yaml"), `module: test_codecs
tests:
  - class: RoundTripTests
    method: test_latin1
`)
	code, stdout, _ = execute(t, "triage", "test_codecs", "--verdicts", path)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "LookupTests.test_unknown\n")
	assert.NotContains(t, stdout, "RoundTripTests.test_latin1\n")
	assert.Contains(t, stdout, "13 test(s) in test_codecs without a verdict\n")
}

func TestTriage_NotAnAdapter(t *testing.T) {
	code, _, stderr := execute(t, "triage", "test_codecs")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "not an adapter")
}

func TestGenerate_WriteThenCheck(t *testing.T) {
	out := t.TempDir()

	code, stdout, _ := execute(t, "generate", "--out", out)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "errno: "+filepath.Join(out, "Errno.Generated.cs")+" updated\n")
	for _, name := range []string{"Errno.Generated.cs", "Encodings.Generated.cs", "Radix.Generated.cs"} {
		assert.FileExists(t, filepath.Join(out, name))
	}

	code, stdout, _ = execute(t, "generate", "--out", out, "--check")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "radix: "+filepath.Join(out, "Radix.Generated.cs")+" unchanged\n")

	radix := writeFile(t, filepath.Join(out, "Radix.Generated.cs"), "// BEGIN radix\n// END radix\n")
	code, _, stderr := execute(t, "generate", "radix", "--out", out, "--check")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "1 generated file(s) out of date")
	assert.FileExists(t, radix+".diff")

	data, err := os.ReadFile(radix)
	require.NoError(t, err)
	assert.Equal(t, "// BEGIN radix\n// END radix\n", string(data))
}

func TestGenerate_ScanRoots(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, filepath.Join(root, "src", "Codecs.cs"),
		"class Codecs {\n    // BEGIN aliases\n    // END aliases\n}\n")

	code, _, _ := execute(t, "generate", "aliases", "--root", root)
	require.Equal(t, ExitSuccess, code)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "    // *** BEGIN GENERATED CODE ***\n")
	assert.Contains(t, string(data), "    // END aliases")
	assert.True(t, strings.HasPrefix(string(data), "class Codecs {\n    // BEGIN aliases\n"))
	assert.True(t, strings.HasSuffix(string(data), "}\n"))
}

func TestGenerate_UnknownPhase(t *testing.T) {
	code, _, stderr := execute(t, "generate", "unicode", "--out", t.TempDir())
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, `unknown phase "unicode"`)
}

func TestDircmp(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "x.txt"), "same")
	writeFile(t, filepath.Join(b, "x.txt"), "same")

	code, _, _ := execute(t, "dircmp", a, b)
	assert.Equal(t, ExitSuccess, code)

	writeFile(t, filepath.Join(b, "y.txt"), "extra")
	code, stdout, _ := execute(t, "dircmp", a, b)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "y.txt")

	code, _, stderr := execute(t, "dircmp", a)
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, dircmpUsage)

	code, _, _ = execute(t, "dircmp", a, filepath.Join(b, "y.txt"))
	assert.Equal(t, ExitUsage, code)
}

func TestTimeit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts")
	}
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.sh")
	require.NoError(t, os.WriteFile(ok, []byte("#!/bin/sh\nexit 0\n"), 0755))
	bad := filepath.Join(dir, "bad.sh")
	require.NoError(t, os.WriteFile(bad, []byte("#!/bin/sh\nexit 3\n"), 0755))

	code, stdout, _ := execute(t, "timeit", ok, "2")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "loop 2: ")
	assert.Contains(t, stdout, "(2 loops, mean ")

	code, _, stderr := execute(t, "timeit", bad)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "loop 1 of")

	for _, args := range [][]string{
		{"timeit"},
		{"timeit", ok, "zero"},
		{"timeit", ok, "0"},
		{"timeit", filepath.Join(dir, "missing.sh")},
		{"timeit", ok, "1", "extra"},
	} {
		code, _, stderr := execute(t, args...)
		assert.Equal(t, ExitUsage, code, "%v", args)
		assert.Contains(t, stderr, timeitUsage)
	}
}

func TestEnv(t *testing.T) {
	t.Setenv("CONFORM_CLI_LOOKUP", "found")

	code, stdout, _ := execute(t, "env", "conform_cli_lookup")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "found\n", stdout)

	code, _, stderr := execute(t, "env", "CONFORM_CLI_ABSENT")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "CONFORM_CLI_ABSENT is not set")
}
