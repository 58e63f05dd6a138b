package helpers

import (
	"bytes"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCliError(t *testing.T) {
	t.Run("Should create error with code and message", func(t *testing.T) {
		err := NewCliError("TEST_ERROR", "Test message")
		assert.Equal(t, "TEST_ERROR", err.Code)
		assert.Equal(t, "Test message", err.Message)
		assert.Empty(t, err.Details)
		assert.Equal(t, "TEST_ERROR: Test message", err.Error())
	})

	t.Run("Should include details in the message", func(t *testing.T) {
		err := NewCliError("TEST_ERROR", "Test message", "Details")
		assert.Equal(t, "TEST_ERROR: Test message (Details)", err.Error())
	})

	t.Run("Should unwrap to its cause", func(t *testing.T) {
		cause := errors.New("root")
		err := NewCliError("TEST_ERROR", "Test message").WithCause(cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestNotFoundError(t *testing.T) {
	t.Run("Should match ErrNotFound", func(t *testing.T) {
		err := NewNotFoundError("task", "fetch")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, `task "fetch" not found`, err.Error())
	})
}

func TestReadInput(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/flow.yaml", []byte("id: x\n"), 0o644))
	require.NoError(t, fsys.MkdirAll("/dir", 0o755))

	t.Run("Should read files from the filesystem", func(t *testing.T) {
		text, err := ReadInput(t.Context(), fsys, nil, "/flow.yaml")
		require.NoError(t, err)
		assert.Equal(t, "id: x\n", text)
	})

	t.Run("Should read standard input for a dash", func(t *testing.T) {
		text, err := ReadInput(t.Context(), fsys, strings.NewReader("id: y\n"), StdinPath)
		require.NoError(t, err)
		assert.Equal(t, "id: y\n", text)
	})

	t.Run("Should refuse a missing standard input", func(t *testing.T) {
		_, err := ReadInput(t.Context(), fsys, nil, StdinPath)
		assert.ErrorIs(t, err, ErrNoInput)
	})

	t.Run("Should report missing files", func(t *testing.T) {
		_, err := ReadInput(t.Context(), fsys, nil, "/missing.yaml")
		var cliErr *CliError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, "FILE_NOT_FOUND", cliErr.Code)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("Should reject directories", func(t *testing.T) {
		_, err := ReadInput(t.Context(), fsys, nil, "/dir")
		var cliErr *CliError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, "INVALID_PATH", cliErr.Code)
	})
}

func TestWriteFile(t *testing.T) {
	t.Run("Should replace the file and keep its permissions", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "/flow.yaml", []byte("old\n"), 0o600))
		require.NoError(t, WriteFile(fsys, "/flow.yaml", []byte("new\n"), ""))
		data, err := afero.ReadFile(fsys, "/flow.yaml")
		require.NoError(t, err)
		assert.Equal(t, "new\n", string(data))
		info, err := fsys.Stat("/flow.yaml")
		require.NoError(t, err)
		assert.Equal(t, fs.FileMode(0o600), info.Mode().Perm())
		entries, err := afero.ReadDir(fsys, "/")
		require.NoError(t, err)
		assert.Len(t, entries, 1, "temporary file must not be left behind")
	})

	t.Run("Should keep a backup of the previous content", func(t *testing.T) {
		fsys := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fsys, "/flow.yaml", []byte("old\n"), 0o644))
		require.NoError(t, WriteFile(fsys, "/flow.yaml", []byte("new\n"), ".bak"))
		backup, err := afero.ReadFile(fsys, "/flow.yaml.bak")
		require.NoError(t, err)
		assert.Equal(t, "old\n", string(backup))
	})

	t.Run("Should refuse to write to standard input", func(t *testing.T) {
		err := WriteFile(afero.NewMemMapFs(), StdinPath, []byte("x"), "")
		var cliErr *CliError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, "INVALID_PATH", cliErr.Code)
	})
}

func TestWriteJSON(t *testing.T) {
	t.Run("Should pretty print JSON without colors for buffers", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteJSON(&buf, map[string]any{"id": "x", "n": 1}))
		assert.Equal(t, "{\n  \"id\": \"x\",\n  \"n\": 1\n}\n", buf.String())
	})
}

func TestWriteText(t *testing.T) {
	t.Run("Should end output with a line break", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteText(&buf, "a"))
		require.NoError(t, WriteText(&buf, "b\n"))
		require.NoError(t, WriteText(&buf, ""))
		assert.Equal(t, "a\nb\n", buf.String())
	})
}

func TestParseOffset(t *testing.T) {
	document := "id: x\ntasks:\n  - id: a\n"

	t.Run("Should accept byte offsets", func(t *testing.T) {
		offset, err := ParseOffset(document, "6")
		require.NoError(t, err)
		assert.Equal(t, 6, offset)
	})

	t.Run("Should convert line and column", func(t *testing.T) {
		offset, err := ParseOffset(document, "3:5")
		require.NoError(t, err)
		assert.Equal(t, "id: a\n", document[offset:])
	})

	t.Run("Should reject positions outside the document", func(t *testing.T) {
		for _, position := range []string{"-1", "99", "9:1", "1:40", "x", "0:1", "1:"} {
			_, err := ParseOffset(document, position)
			assert.Error(t, err, position)
		}
	})
}
