package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateValid(t *testing.T) {
	arrangement, library := fixturePaths(t)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "✓ Arrangement \"night_drive\" is valid")
}

func TestValidateValidJSON(t *testing.T) {
	arrangement, library := fixturePaths(t)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateWithoutLibrary(t *testing.T) {
	// Structural validation needs no library at all.
	arrangement, _ := fixturePaths(t)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "is valid")
}

func TestValidateUnknownLibraryPattern(t *testing.T) {
	dir := t.TempDir()
	arrangement := writeFixture(t, dir, "a.yaml", `
schema: arrangement/v1
name: wishful
context:
  key: C_major
  tempo: 120
sections:
  - {name: a, bars: 4}
layers:
  kick:
    role: drums
    patterns: {x: does_not_exist}
    arrangement: {a: x}
`)
	library := writeFixture(t, dir, "patterns.yaml", `
schema: pattern/v1
name: thump
role: drums
pitched: false
template:
  events:
    - {beat: 0, note: 36, duration: quarter}
`)

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), CodeUnknownLibraryPattern)
}

func TestValidateInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	arrangement := writeFixture(t, dir, "bad.yaml", "schema: arrangement/v9\nname: x\n")

	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), ErrCodeSchema)
}
