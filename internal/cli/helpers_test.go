package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tfaughnan/barline/internal/testutil"
)

// writeFixture writes content to a file under dir and returns its path.
func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// fixturePaths writes the shared arrangement and library fixtures to a
// temp dir and returns their paths.
func fixturePaths(t *testing.T) (arrangement, library string) {
	t.Helper()
	dir := t.TempDir()
	arrangement = writeFixture(t, dir, "night_drive.yaml", testutil.ArrangementYAML)
	library = writeFixture(t, dir, "patterns.yaml", testutil.LibraryYAML)
	return arrangement, library
}
