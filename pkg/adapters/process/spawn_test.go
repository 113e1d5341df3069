package process_test

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/pious/pkg/adapters/process"
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

	sourcePath := filepath.Join(root, "tests", "fixtures", "engines", dirName)

	exeName := dirName
	if runtime.GOOS == "windows" {
		exeName += ".exe"
	}
	destPath := filepath.Join(t.TempDir(), exeName)

	cmd := exec.Command("go", "build", "-o", destPath, sourcePath)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "Failed to build fixture %s: %s", dirName, string(out))

	return destPath
}

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "PioSOLVER3-pro.exe")
	require.NoError(t, os.WriteFile(exe, []byte("x"), 0o755))

	assert.Error(t, process.Config{}.Validate())
	assert.NoError(t, process.Config{Executable: exe}.Validate())
	assert.NoError(t, process.Config{Executable: "PioSOLVER3-pro.exe", Dir: dir}.Validate())
	assert.Error(t, process.Config{Executable: "missing.exe", Dir: dir}.Validate())
	assert.Error(t, process.Config{Executable: dir}.Validate())

	cfg := process.Config{Executable: "PioSOLVER3-pro.exe", Dir: dir}
	assert.Equal(t, exe, cfg.Path())
	assert.Equal(t, dir, cfg.WorkDir())
	assert.Equal(t, dir, process.Config{Executable: exe}.WorkDir())
}

func TestSpawn_MissingExecutable(t *testing.T) {
	_, err := process.Spawn(context.Background(), process.Config{Executable: filepath.Join(t.TempDir(), "nope")})
	assert.Error(t, err)
}

func TestSpawn_GoodCitizen(t *testing.T) {
	exe := buildFixture(t, "fakepio")

	h, err := process.Spawn(context.Background(), process.Config{Executable: exe})
	require.NoError(t, err)
	assert.Greater(t, h.Pid(), 0)

	_, err = fmt.Fprintln(h.Stdin(), "echo hi")
	require.NoError(t, err)
	r := bufio.NewReader(h.Stdout())
	first, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "hi\n", first)

	_, err = fmt.Fprintln(h.Stdin(), "exit")
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, h.Stop(context.Background()))
	assert.Less(t, time.Since(start), process.DefaultGracePeriod)
	assert.True(t, h.Exited())
	assert.NoError(t, h.Err())

	// Repeated stops are no-ops.
	assert.NoError(t, h.Stop(context.Background()))
	assert.NoError(t, h.Kill())
}

func TestSpawn_Crash(t *testing.T) {
	exe := buildFixture(t, "fakepio")

	h, err := process.Spawn(context.Background(), process.Config{Executable: exe, Args: []string{"-crash"}})
	require.NoError(t, err)

	err = h.Wait(context.Background(), 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit status 3")
	assert.True(t, h.Exited())
}

func TestSpawn_StubbornIsKilled(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping slow test in short mode")
	}
	exe := buildFixture(t, "stubborn")

	h, err := process.Spawn(context.Background(), process.Config{Executable: exe},
		process.WithGracePeriod(300*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, h.Stop(context.Background()))
	duration := time.Since(start)

	assert.GreaterOrEqual(t, duration, 300*time.Millisecond)
	assert.Less(t, duration, 5*time.Second)
	assert.True(t, h.Exited())
}
