package helpers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/tidwall/pretty"
)

// isColorWriter reports whether w is a terminal that accepts ANSI colors
func isColorWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd())
}

// WriteJSON writes data as indented JSON, colorized on terminals
func WriteJSON(w io.Writer, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return WriteRawJSON(w, raw)
}

// WriteRawJSON pretty prints an already encoded JSON value
func WriteRawJSON(w io.Writer, raw []byte) error {
	out := pretty.Pretty(raw)
	if isColorWriter(w) {
		out = pretty.Color(out, nil)
	}
	_, err := w.Write(out)
	return err
}

// WriteText writes text, adding a final line break when it is missing
func WriteText(w io.Writer, text string) error {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}
