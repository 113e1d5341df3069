package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/pious/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "pious version "))
}

func TestConf(t *testing.T) {
	t.Setenv("PIOUS_INSTALL_DIR", "/nonexistent/pio")
	out, err := run(t, "conf")
	require.NoError(t, err)
	assert.Contains(t, out, "PioSOLVER3-edge.exe   EXISTS? false")
	assert.Contains(t, out, "(defaults)")
}

func TestParse(t *testing.T) {
	out, err := run(t, "parse", "c:b30:b90", "--street", "turn")
	require.NoError(t, err)
	assert.Contains(t, out, "r:0:c:b30:b90\n")
	assert.Contains(t, out, "street:      turn")
	assert.Contains(t, out, "to act:      IP")
	assert.Contains(t, out, "bets:        2")
}

func TestParse_JSON(t *testing.T) {
	out, err := run(t, "parse", "--json", "--street", "flop", "r:0:c:c", "b60:f")
	require.NoError(t, err)
	var views []dto.Line
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "r:0:b60:f", views[1].Line)
	assert.True(t, views[1].Terminal)
}

func TestParse_Invalid(t *testing.T) {
	_, err := run(t, "parse", "r:0:zz", "--street", "flop", "--json=false")
	assert.Error(t, err)
}

func TestLines_MissingFile(t *testing.T) {
	_, err := run(t, "lines", "nope.cfr")
	assert.ErrorContains(t, err, "no such file")
}
