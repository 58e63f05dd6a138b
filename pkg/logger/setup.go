package logger

import (
	"io"
	"os"
)

// SetupLogger builds the command-line logger. Messages go to out, or to stderr when
// out is nil, so they never mix with command results on stdout.
func SetupLogger(logLevel LogLevel, logJSON, logSource bool, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}
	if !logLevel.IsValid() {
		logLevel = InfoLevel
	}
	return NewLogger(&Config{
		Level:      logLevel,
		Output:     out,
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
}
