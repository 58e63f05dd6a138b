package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/compozy/flowdoc/cli/helpers"
	"github.com/compozy/flowdoc/pkg/config"
	"github.com/compozy/flowdoc/pkg/flowdoc"
	"github.com/compozy/flowdoc/pkg/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// CommandExecutor handles common setup and execution patterns for CLI commands.
// It gives every handler the filesystem, configuration and streams of the
// running command, and owns reading and emitting documents.
type CommandExecutor struct {
	fs  afero.Fs
	cfg *config.Config
	in  io.Reader
	out io.Writer
}

// HandlerFunc defines the signature for command handlers.
type HandlerFunc func(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, args []string) error

// NewCommandExecutor creates a new command executor from the command context.
func NewCommandExecutor(cmd *cobra.Command) *CommandExecutor {
	ctx := cmd.Context()
	return &CommandExecutor{
		fs:  helpers.FsFromContext(ctx),
		cfg: config.FromContext(ctx),
		in:  cmd.InOrStdin(),
		out: cmd.OutOrStdout(),
	}
}

// Execute runs handler with a cancelable context.
func (e *CommandExecutor) Execute(ctx context.Context, cmd *cobra.Command, handler HandlerFunc, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return handler(ctx, cmd, e, args)
}

// Config returns the active configuration.
func (e *CommandExecutor) Config() *config.Config {
	return e.cfg
}

// ContainerField returns the configured task container field.
func (e *CommandExecutor) ContainerField() string {
	return e.cfg.Editor.ContainerField
}

// Out returns the command output stream.
func (e *CommandExecutor) Out() io.Writer {
	return e.out
}

// ReadDocument reads the document named by path, "-" being standard input.
func (e *CommandExecutor) ReadDocument(ctx context.Context, path string) (string, error) {
	return helpers.ReadInput(ctx, e.fs, e.in, path)
}

// EmitDocument writes an edited document back to path when writing is enabled,
// and prints it otherwise.
func (e *CommandExecutor) EmitDocument(ctx context.Context, path, document string) error {
	log := logger.FromContext(ctx)
	if !e.cfg.Editor.Write || path == helpers.StdinPath {
		if e.cfg.Editor.Write {
			log.Warn("cannot write back to standard input, printing the result")
		}
		_, err := io.WriteString(e.out, document)
		return err
	}
	if err := helpers.WriteFile(e.fs, path, []byte(document), e.cfg.Editor.Backup); err != nil {
		return err
	}
	log.Info("document written", "file", path)
	return nil
}

// ExecuteCommand is a convenience function that combines executor creation and execution.
func ExecuteCommand(cmd *cobra.Command, handler HandlerFunc, args []string) error {
	executor := NewCommandExecutor(cmd)
	return HandleCommonErrors(executor.Execute(cmd.Context(), cmd, handler, args))
}

// HandleCommonErrors gives document errors a stable CLI error code.
func HandleCommonErrors(err error) error {
	if err == nil {
		return nil
	}
	var cliErr *helpers.CliError
	if errors.As(err, &cliErr) {
		return err
	}
	if categorized := categorizeError(err); categorized != nil {
		return categorized
	}
	return err
}

// categorizeError converts errors to structured CLI errors
func categorizeError(err error) *helpers.CliError {
	var code, message string
	switch {
	case errors.Is(err, context.Canceled):
		code, message = "OPERATION_CANCELED", "Operation was canceled"
	case errors.Is(err, flowdoc.ErrSyntax):
		code, message = "SYNTAX_ERROR", "Document is not valid YAML"
	case errors.Is(err, flowdoc.ErrNotMapping):
		code, message = "NOT_MAPPING", "Expected a mapping"
	case errors.Is(err, flowdoc.ErrFlowStyle):
		code, message = "FLOW_STYLE", "Flow-style collections cannot be edited"
	case errors.Is(err, flowdoc.ErrLayout):
		code, message = "UNSUPPORTED_LAYOUT", "Layout cannot be edited in place"
	case errors.Is(err, flowdoc.ErrTaskExists):
		code, message = "TASK_EXISTS", "Task id already exists"
	case errors.Is(err, flowdoc.ErrMissingID):
		code, message = "MISSING_ID", "Task has no id"
	case errors.Is(err, flowdoc.ErrNestedTasks):
		code, message = "NESTED_TASKS", "Tasks are nested in each other"
	case errors.Is(err, flowdoc.ErrNotScalar):
		code, message = "NOT_SCALAR", "Value must be a scalar"
	case errors.Is(err, helpers.ErrNotFound):
		code, message = "NOT_FOUND", "Not found"
	default:
		return nil
	}
	return helpers.NewCliError(code, message, err.Error()).WithCause(err)
}

// RequireFound converts a negative lookup into a not found error.
func RequireFound(found bool, kind, name string) error {
	if found {
		return nil
	}
	return helpers.NewNotFoundError(kind, name)
}

// ReadWith reads the task text given by the --with flag. Standard input can feed
// either the document or the task text, not both.
func ReadWith(ctx context.Context, cmd *cobra.Command, executor *CommandExecutor, documentPath string) (string, error) {
	source, err := cmd.Flags().GetString(helpers.FlagWith)
	if err != nil {
		return "", fmt.Errorf("failed to get %s flag: %w", helpers.FlagWith, err)
	}
	if source == "" {
		return "", helpers.NewCliError("MISSING_FLAG", fmt.Sprintf("required flag '%s' not specified", helpers.FlagWith))
	}
	if source == helpers.StdinPath && documentPath == helpers.StdinPath {
		return "", helpers.NewCliError("INVALID_INPUT", "Standard input cannot provide both the document and the task")
	}
	return executor.ReadDocument(ctx, source)
}
