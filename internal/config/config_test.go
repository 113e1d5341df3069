package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME and the working directory at empty temp dirs.
func isolate(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestPio_Names(t *testing.T) {
	p := Pio{InstallDirectory: "/opt/pio", VersionNo: "3", VersionType: "pro"}
	assert.Equal(t, "PioSOLVER3-pro", p.SolverName())
	assert.Equal(t, "PioViewer3", p.ViewerName())
	assert.Equal(t, filepath.Join("/opt/pio", "PioSOLVER3-pro.exe"), p.SolverPath())

	p.VersionSuffix = "avx"
	assert.Equal(t, "PioSOLVER3-pro-avx", p.SolverName())

	p.Executable = "custom.exe"
	assert.Equal(t, filepath.Join("/opt/pio", "custom.exe"), p.SolverPath())
	p.Executable = "/usr/local/bin/pio"
	assert.Equal(t, "/usr/local/bin/pio", p.SolverPath())
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "PioSOLVER3-edge", cfg.Pio.SolverName())
	assert.Empty(t, cfg.Source)
	assert.Equal(t, 1, cfg.Server.PoolSize)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "pious.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pio:
  install_directory: /opt/pio
  version_type: pro
engine:
  command_timeout: 45s
  startup:
    - set_threads 8
    - set_accuracy 10
tokens:
  end_string: DONE
grammar:
  - name: allin
    pattern: a(?P<amount>[0-9]+)
    class: aggressive
server:
  pool_size: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "3", cfg.Pio.VersionNo)
	assert.Equal(t, "PioSOLVER3-pro", cfg.Pio.SolverName())

	sc := cfg.Session()
	assert.Equal(t, filepath.Join("/opt/pio", "PioSOLVER3-pro.exe"), sc.Process.Executable)
	assert.Equal(t, "/opt/pio", sc.Process.Dir)
	assert.Equal(t, 45*time.Second, sc.CommandTimeout)
	assert.Equal(t, "DONE", sc.Tokens.EndString)
	assert.Equal(t, "ERROR", sc.Tokens.ErrorPrefix)
	require.Len(t, sc.Startup, 2)
	assert.Equal(t, "set_threads 8", sc.Startup[0].String())

	g, err := cfg.LineGrammar()
	require.NoError(t, err)
	l, err := g.Parse("r:0:c:a120")
	require.NoError(t, err)
	assert.True(t, l.IsFacingBet())
}

func TestLoad_Errors(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pio: [unterminated"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	t.Setenv("PIOUS_POOL_SIZE", "many")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PIOUS_VERSION_TYPE=basic\nPIOUS_TREE=/trees/a.cfr\n"), 0o644))
	t.Setenv("PIOUS_INSTALL_DIR", "/srv/pio")
	t.Setenv("PIOUS_START_TIMEOUT", "5s")
	t.Setenv("PIOUS_TREE", "/trees/b.cfr")
	t.Cleanup(func() { os.Unsetenv("PIOUS_VERSION_TYPE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/srv/pio", cfg.Pio.InstallDirectory)
	assert.Equal(t, "basic", cfg.Pio.VersionType)
	assert.Equal(t, "/trees/b.cfr", cfg.Server.Tree, "process environment wins over .env")
	assert.Equal(t, 5*time.Second, cfg.Session().StartTimeout)
}

func TestLineGrammar_InvalidRule(t *testing.T) {
	cfg := Default()
	cfg.Grammar = []GrammarRule{{Name: "broken", Pattern: "a(", Class: "aggressive"}}
	_, err := cfg.LineGrammar()
	assert.Error(t, err)
}
