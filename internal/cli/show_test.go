package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedStore compiles the shared fixture into a fresh store and returns
// the store path.
func seedStore(t *testing.T) string {
	t.Helper()
	arrangement, library := fixturePaths(t)
	dbPath := filepath.Join(t.TempDir(), "scores.db")

	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{arrangement, "-p", library, "--db", dbPath})
	require.NoError(t, cmd.Execute())
	return dbPath
}

func TestShowList(t *testing.T) {
	dbPath := seedStore(t)

	buf := &bytes.Buffer{}
	cmd := NewShowCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "night_drive")
	assert.Contains(t, buf.String(), "124 bpm")
}

func TestShowListEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scores.db")

	buf := &bytes.Buffer{}
	cmd := NewShowCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "No stored scores")
}

func TestShowByName(t *testing.T) {
	dbPath := seedStore(t)

	buf := &bytes.Buffer{}
	cmd := NewShowCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"night_drive", "--db", dbPath})

	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "night_drive")
	assert.Contains(t, out, "fingerprint:")
	assert.Contains(t, out, "tempo:       124 bpm")
	assert.Contains(t, out, "bars:        32")
}

func TestShowByFingerprintJSON(t *testing.T) {
	dbPath := seedStore(t)

	listBuf := &bytes.Buffer{}
	list := NewShowCommand(&RootOptions{Format: "json"})
	list.SetOut(listBuf)
	list.SetErr(&bytes.Buffer{})
	list.SetArgs([]string{"--db", dbPath})
	require.NoError(t, list.Execute())

	var listResp CLIResponse
	require.NoError(t, json.Unmarshal(listBuf.Bytes(), &listResp))
	recs, err := json.Marshal(listResp.Data)
	require.NoError(t, err)
	var records []struct {
		Fingerprint string `json:"fingerprint"`
	}
	require.NoError(t, json.Unmarshal(recs, &records))
	require.Len(t, records, 1)

	buf := &bytes.Buffer{}
	cmd := NewShowCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{records[0].Fingerprint, "--db", dbPath, "--full"})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var summary ScoreSummary
	require.NoError(t, json.Unmarshal(raw, &summary))
	assert.Equal(t, records[0].Fingerprint, summary.Record.Fingerprint)
	require.NotNil(t, summary.Score)
	assert.NotEmpty(t, summary.Score.Notes)
}

func TestShowListFiltered(t *testing.T) {
	dbPath := seedStore(t)

	match := &bytes.Buffer{}
	cmd := NewShowCommand(&RootOptions{Format: "text"})
	cmd.SetOut(match)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--key", "D_minor", "--min-tempo", "100"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, match.String(), "night_drive")

	miss := &bytes.Buffer{}
	cmd = NewShowCommand(&RootOptions{Format: "text"})
	cmd.SetOut(miss)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--max-tempo", "100"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, miss.String(), "No stored scores")
}

func TestShowUnknownRef(t *testing.T) {
	dbPath := seedStore(t)

	cmd := NewShowCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"ghost", "--db", dbPath})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
