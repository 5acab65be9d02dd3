package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command. Flags keep their values across calls, so
// every test passes the flags it depends on.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "actor machine compiler")
}

func TestInitThenValidate(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Created actor 'passthrough'.")

	out, err = execute(t, "validate", "--dir", dir, "--source", "loam", "--strategy", "quickjump")
	require.NoError(t, err)
	assert.Contains(t, out, "Library is valid!")
}

func TestGraphCommand_DOT(t *testing.T) {
	dir := t.TempDir()
	doc := "name: toggle\nstates: [idle, busy]\ntransitions:\n  - {name: go, from: idle, to: busy}\n  - {name: back, from: busy, to: idle}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toggle.yaml"), []byte(doc), 0644))

	out, err := execute(t, "graph", "toggle", "--dir", dir, "--source", "file", "--format", "dot", "--current", "")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "busy")
}

func TestUnknownStrategyFails(t *testing.T) {
	_, err := execute(t, "build", "--dir", t.TempDir(), "--source", "file", "--strategy", "vliw")
	assert.ErrorContains(t, err, "vliw")
}
