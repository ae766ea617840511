package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfaughnan/barline/internal/ir"
	"github.com/tfaughnan/barline/internal/store"
)

func TestCompileText(t *testing.T) {
	arrangement, library := fixturePaths(t)

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled \"night_drive\"")
	assert.Contains(t, output, "fingerprint:")
	assert.Contains(t, output, "32 bar(s)")
}

func TestCompileJSON(t *testing.T) {
	arrangement, library := fixturePaths(t)

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report CompileReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "night_drive", report.Name)
	assert.Len(t, report.Fingerprint, 64)
	assert.Equal(t, 32, report.TotalBars)
	assert.Equal(t, []string{"intro", "main", "breakdown"}, report.Sections)
}

func TestCompileWritesOutputFile(t *testing.T) {
	arrangement, library := fixturePaths(t)
	out := filepath.Join(t.TempDir(), "score.json")

	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library, "-o", out})

	require.NoError(t, cmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	score, err := ir.UnmarshalScore(data)
	require.NoError(t, err)
	assert.Equal(t, "night_drive", score.Name)
	assert.NotEmpty(t, score.Notes)
}

func TestCompileSavesToStore(t *testing.T) {
	arrangement, library := fixturePaths(t)
	dbPath := filepath.Join(t.TempDir(), "scores.db")

	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library, "--db", dbPath})

	require.NoError(t, cmd.Execute())

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	records, err := st.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "night_drive", records[0].Name)
}

func TestCompileDeterministicFingerprint(t *testing.T) {
	arrangement, library := fixturePaths(t)

	run := func() string {
		buf := &bytes.Buffer{}
		cmd := NewCompileCommand(&RootOptions{Format: "json"})
		cmd.SetOut(buf)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{arrangement, "-p", library})
		require.NoError(t, cmd.Execute())

		var resp CLIResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var report CompileReport
		require.NoError(t, json.Unmarshal(data, &report))
		return report.Fingerprint
	}

	assert.Equal(t, run(), run())
}

func TestCompileMissingArrangement(t *testing.T) {
	_, library := fixturePaths(t)

	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"nope.yaml", "-p", library})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileMissingLibrary(t *testing.T) {
	arrangement, _ := fixturePaths(t)

	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileInvalidArrangementFails(t *testing.T) {
	dir := t.TempDir()
	library := writeFixture(t, dir, "patterns.yaml", `
schema: pattern/v1
name: thump
role: drums
pitched: false
template:
  events:
    - {beat: 0, note: 36, duration: quarter}
`)
	// An assignment naming an undeclared pattern alias is a validation
	// error, so the compile aborts before any notes are generated.
	arrangement := writeFixture(t, dir, "broken.yaml", `
schema: arrangement/v1
name: dangling
context:
  key: C_major
  tempo: 120
sections:
  - {name: a, bars: 4}
layers:
  kick:
    role: drums
    patterns: {x: thump}
    arrangement: {a: missing_alias}
`)

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "INVALID_PATTERN_REF")
}
