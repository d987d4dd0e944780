package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "update golden files")

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// runFlint executes the command with the given stdin and args, returning the
// exit status and captured stderr.
func runFlint(t *testing.T, stdin string, args ...string) (int, string) {
	t.Helper()
	var stderr bytes.Buffer
	status := run(args, strings.NewReader(stdin), &stderr)
	return status, stderr.String()
}

// writeFile creates a file with the given content under dir.
func writeFile(t *testing.T, dir, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func starImportLine(path, module string) string {
	return fmt.Sprintf("%s:1: 'from %s import *' used; unable to detect undefined names\n", path, module)
}

// ---------------------------------------------------------------------------
// File arguments
// ---------------------------------------------------------------------------

func TestRun_CleanFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "clean.py", "x = 1\n")

	status, stderr := runFlint(t, "", path)

	assert.Equal(t, 0, status)
	assert.Empty(t, stderr, "clean units produce no output")
}

func TestRun_StarImportWarning(t *testing.T) {
	path := writeFile(t, t.TempDir(), "star.py", "from os import *\n")

	status, stderr := runFlint(t, "", path)

	assert.Equal(t, 1, status)
	assert.Equal(t, starImportLine(path, "os"), stderr)
}

// TestRun_SyntaxError checks the three-line failure rendering: location
// header, offending line, caret.
func TestRun_SyntaxError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.py", "def f(:\n")

	status, stderr := runFlint(t, "", path)

	assert.Equal(t, 1, status)

	lines := strings.Split(strings.TrimSuffix(stderr, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 2, "expected header and source line, got %q", stderr)
	assert.True(t, strings.HasPrefix(lines[0], path+":1: "),
		"header should locate the failure on line 1, got %q", lines[0])
	assert.Equal(t, "def f(:", lines[1], "the offending line is echoed without its newline")
	if len(lines) > 2 {
		assert.Regexp(t, `^ *\^$`, lines[2], "the caret line is spaces plus a caret")
	}
}

func TestRun_BinaryFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "blob.py", "x = \xff\xfe\n")

	status, stderr := runFlint(t, "", path)

	assert.Equal(t, 1, status)
	assert.Equal(t, path+": problem decoding source\n", stderr)
}

func TestRun_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.py")

	status, stderr := runFlint(t, "", path)

	assert.Equal(t, 1, status)
	assert.True(t, strings.HasPrefix(stderr, path+": "), "got %q", stderr)
	assert.Contains(t, stderr, "no such file")
}

// ---------------------------------------------------------------------------
// Directory arguments
// ---------------------------------------------------------------------------

// TestRun_Directory walks a mixed tree and expects findings from the .py
// files only, in lexical order.
func TestRun_Directory(t *testing.T) {
	root := t.TempDir()
	aPath := writeFile(t, root, "a.py", "from os import *\n")
	writeFile(t, root, "b.py", "x = 1\n")
	writeFile(t, root, "notes.txt", "from os import *\n")
	sub := filepath.Join(root, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	cPath := writeFile(t, sub, "c.py", "from sys import *\n")

	status, stderr := runFlint(t, "", root)

	assert.Equal(t, 1, status)
	assert.Equal(t, starImportLine(aPath, "os")+starImportLine(cPath, "sys"), stderr)
}

func TestRun_DirectoryAllClean(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.py", "import os\n")
	writeFile(t, root, "b.py", "print('ok')\n")

	status, stderr := runFlint(t, "", root)

	assert.Equal(t, 0, status)
	assert.Empty(t, stderr)
}

// ---------------------------------------------------------------------------
// Stdin mode
// ---------------------------------------------------------------------------

func TestRun_Stdin(t *testing.T) {
	status, stderr := runFlint(t, "from sys import *")

	assert.Equal(t, 1, status)
	assert.Equal(t, starImportLine("<stdin>", "sys"), stderr)
}

func TestRun_StdinClean(t *testing.T) {
	status, stderr := runFlint(t, "x = 1\n")

	assert.Equal(t, 0, status)
	assert.Empty(t, stderr)
}

func TestRun_StdinEmpty(t *testing.T) {
	status, stderr := runFlint(t, "")

	assert.Equal(t, 0, status, "empty input is a valid, warning-free unit")
	assert.Empty(t, stderr)
}

func TestRun_StdinSyntaxError(t *testing.T) {
	status, stderr := runFlint(t, "def f(:")

	assert.Equal(t, 1, status)
	assert.True(t, strings.HasPrefix(stderr, "<stdin>:1: "), "got %q", stderr)
	assert.Contains(t, stderr, "\ndef f(:\n", "the offending line is echoed")
}

// ---------------------------------------------------------------------------
// Golden fixture project
// ---------------------------------------------------------------------------

// TestRun_FixtureProject walks the checked-in fixture tree and compares the
// diagnostic stream against the golden transcript.
func TestRun_FixtureProject(t *testing.T) {
	goldenPath := filepath.Join("..", "..", "testdata", "golden", "py_project.stderr")

	status, stderr := runFlint(t, "", filepath.Join("..", "..", "testdata", "fixtures", "py_project"))
	assert.Equal(t, 1, status)

	if *update {
		require.NoError(t, os.WriteFile(goldenPath, []byte(stderr), 0o644))
		t.Logf("updated %s", goldenPath)
	}

	golden, err := os.ReadFile(goldenPath)
	require.NoError(t, err, "missing golden file; run with -update to generate")
	assert.Equal(t, string(golden), stderr,
		"fixture diagnostics changed; run with -update to regenerate")
}

// ---------------------------------------------------------------------------
// Command surface
// ---------------------------------------------------------------------------

func TestRun_UnknownFlag(t *testing.T) {
	status, stderr := runFlint(t, "", "--bogus")

	assert.Equal(t, 1, status)
	assert.Contains(t, stderr, "unknown flag")
}

func TestRun_MultipleArguments(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.py", "x = 1\n")
	bad := writeFile(t, dir, "bad.py", "from os import *\n")

	status, stderr := runFlint(t, "", good, bad)

	assert.Equal(t, 1, status)
	assert.Equal(t, starImportLine(bad, "os"), stderr)
}
