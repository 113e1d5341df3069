package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFixture compiles a Go program from tests/fixtures/engines into a temp binary.
func buildFixture(t *testing.T, dirName string) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)

	root := wd
	for {
		if _, err := os.Stat(filepath.Join(root, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			t.Fatal("could not find project root (go.mod)")
		}
		root = parent
	}

	exeName := dirName
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	destPath := filepath.Join(t.TempDir(), exeName)

	cmd := exec.Command("go", "build", "-o", destPath, filepath.Join(root, "tests", "fixtures", "engines", dirName))
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "Failed to build fixture %s: %s", dirName, string(out))

	return destPath
}

// withEngine points the configuration at the fake engine and returns a tree file.
func withEngine(t *testing.T) string {
	t.Helper()
	exe := buildFixture(t, "fakepio")
	t.Setenv("PIOUS_EXECUTABLE", exe)
	t.Setenv("PIOUS_INSTALL_DIR", filepath.Dir(exe))

	tree := filepath.Join(t.TempDir(), "QsJh2h.cfr")
	require.NoError(t, os.WriteFile(tree, []byte("tree"), 0o644))
	return tree
}

func TestLines_WithEngine(t *testing.T) {
	tree := withEngine(t)
	logFile := filepath.Join(t.TempDir(), "pio.log")

	out, err := run(t, "lines", tree, "--mermaid=false", "--log-file", logFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Board: Qs Jh 2h")
	assert.Contains(t, out, "Found 20 lines")
	assert.Contains(t, out, "Expanded all lines to")

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[>] load_all_nodes")
	assert.Contains(t, string(data), "[<] r:0:c:b30")
}

func TestLines_Mermaid(t *testing.T) {
	tree := withEngine(t)
	out, err := run(t, "lines", tree, "--mermaid", "--highlight", "c:b30", "--log-file", "")
	require.NoError(t, err)
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class r_0_c_b30 current;")
}

func TestTreeInfo_JSON(t *testing.T) {
	tree := withEngine(t)
	out, err := run(t, "tree-info", tree, "--json", "--log-file", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"effective_stack": 970`)
}
