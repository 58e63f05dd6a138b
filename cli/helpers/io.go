package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/compozy/flowdoc/pkg/logger"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
)

// ContextWithFs stores the filesystem in the context
func ContextWithFs(ctx context.Context, fsys afero.Fs) context.Context {
	return context.WithValue(ctx, FsKey, fsys)
}

// FsFromContext returns the filesystem stored in ctx, or the OS filesystem
func FsFromContext(ctx context.Context) afero.Fs {
	if fsys, ok := ctx.Value(FsKey).(afero.Fs); ok && fsys != nil {
		return fsys
	}
	return afero.NewOsFs()
}

// IsTerminal reports whether r is an interactive terminal
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ReadInput reads a document from a file, or from in when source is "-"
func ReadInput(ctx context.Context, fsys afero.Fs, in io.Reader, source string) (string, error) {
	log := logger.FromContext(ctx)
	if source == StdinPath {
		if in == nil || IsTerminal(in) {
			return "", NewCliError("NO_INPUT", "Refusing to read a document from a terminal",
				"pipe the document in or pass a file path").WithCause(ErrNoInput)
		}
		log.Debug("reading from stdin")
		data, err := io.ReadAll(in)
		if err != nil {
			return "", NewCliError("STDIN_READ_ERROR", "Failed to read stdin", err.Error()).WithCause(err)
		}
		return string(data), nil
	}
	log.Debug("reading from file", "file", source)
	data, err := ReadFile(fsys, source)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ReadFile reads a file with enhanced error handling
func ReadFile(fsys afero.Fs, path string) ([]byte, error) {
	if path == "" {
		return nil, NewCliError("INVALID_PATH", "File path cannot be empty")
	}
	info, err := fsys.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewCliError("FILE_NOT_FOUND", fmt.Sprintf("File not found: %s", path)).WithCause(err)
	}
	if err == nil && info.IsDir() {
		return nil, NewCliError("INVALID_PATH", fmt.Sprintf("Path is a directory: %s", path))
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, NewCliError("FILE_READ_ERROR", fmt.Sprintf("Failed to read file: %s", path), err.Error()).
			WithCause(err)
	}
	return data, nil
}

// WriteFile replaces the file at path through a temporary file in the same
// directory, keeping the original permissions. A non-empty backupSuffix keeps the
// previous content at path+backupSuffix.
func WriteFile(fsys afero.Fs, path string, data []byte, backupSuffix string) error {
	if path == "" || path == StdinPath {
		return NewCliError("INVALID_PATH", "Cannot write back to standard input")
	}
	perm := fs.FileMode(0o644)
	if info, err := fsys.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if backupSuffix != "" {
		if err := copyFile(fsys, path, path+backupSuffix, perm); err != nil {
			return err
		}
	}
	tmp, err := afero.TempFile(fsys, filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return NewCliError("FILE_WRITE_ERROR", fmt.Sprintf("Failed to create temporary file for: %s", path),
			err.Error()).WithCause(err)
	}
	tmpName := tmp.Name()
	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr == nil {
		writeErr = fsys.Chmod(tmpName, perm)
	}
	if writeErr == nil {
		writeErr = fsys.Rename(tmpName, path)
	}
	if writeErr != nil {
		_ = fsys.Remove(tmpName) // best effort cleanup
		return NewCliError("FILE_WRITE_ERROR", fmt.Sprintf("Failed to write file: %s", path), writeErr.Error()).
			WithCause(writeErr)
	}
	return nil
}

func copyFile(fsys afero.Fs, from, to string, perm fs.FileMode) error {
	data, err := afero.ReadFile(fsys, from)
	if err != nil {
		return NewCliError("BACKUP_ERROR", fmt.Sprintf("Failed to read file for backup: %s", from), err.Error()).
			WithCause(err)
	}
	if err := afero.WriteFile(fsys, to, data, perm); err != nil {
		return NewCliError("BACKUP_ERROR", fmt.Sprintf("Failed to write backup: %s", to), err.Error()).
			WithCause(err)
	}
	return nil
}

// ParseOffset accepts a byte offset or a 1-based "line:column" position.
func ParseOffset(document, position string) (int, error) {
	invalid := func() error {
		return NewCliError("INVALID_POSITION",
			fmt.Sprintf("Invalid position %q", position), "use a byte offset or line:column")
	}
	lineText, colText, hasColumn := strings.Cut(position, ":")
	if !hasColumn {
		offset, err := strconv.Atoi(position)
		if err != nil || offset < 0 || offset > len(document) {
			return 0, invalid()
		}
		return offset, nil
	}
	line, err := strconv.Atoi(lineText)
	if err != nil || line < 1 {
		return 0, invalid()
	}
	col, err := strconv.Atoi(colText)
	if err != nil || col < 1 {
		return 0, invalid()
	}
	offset := 0
	for l := 1; l < line; l++ {
		next := strings.IndexByte(document[offset:], '\n')
		if next < 0 {
			return 0, invalid()
		}
		offset += next + 1
	}
	lineEnd := len(document)
	if next := strings.IndexByte(document[offset:], '\n'); next >= 0 {
		lineEnd = offset + next
	}
	if offset+col-1 > lineEnd {
		return 0, invalid()
	}
	return offset + col - 1, nil
}
