package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// UPDATE_GOLDEN=1 rewrites golden files with the actual output.
const updateGoldenEnv = "UPDATE_GOLDEN"

// ProjectPath resolves relPath against the module root.
func ProjectPath(t *testing.T, relPath string) string {
	t.Helper()
	root, err := FindProjectRoot()
	require.NoError(t, err)
	return filepath.Join(root, filepath.FromSlash(relPath))
}

// LoadFixture returns the content of a file below the module root.
func LoadFixture(t *testing.T, relPath string) string {
	t.Helper()
	content, err := os.ReadFile(ProjectPath(t, relPath))
	require.NoError(t, err)
	return string(content)
}

// CompareWithGolden compares a document with the golden file at relPath, which is
// relative to the module root.
func CompareWithGolden(t *testing.T, actual []byte, relPath string) {
	t.Helper()
	path := ProjectPath(t, relPath)
	if os.Getenv(updateGoldenEnv) == "1" {
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, actual, 0o600))
	}
	expected := LoadFixture(t, relPath)
	require.Equal(t, expected, string(actual), "golden file %s is out of date (set %s=1 to refresh)", relPath, updateGoldenEnv)
}
