package task

import (
	"context"
	"fmt"
	"strings"

	"github.com/compozy/flowdoc/cli/cmd"
	"github.com/compozy/flowdoc/cli/helpers"
	"github.com/compozy/flowdoc/pkg/flowdoc"
	"github.com/compozy/flowdoc/pkg/logger"
	"github.com/spf13/cobra"
)

// NewTaskCommand creates the task command group
func NewTaskCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "task",
		Short: "Locate and edit tasks",
		Long: `Locate and edit tasks at any depth of a flow document.

Tasks are mappings with an id found in the container field (tasks by default) of
the document root or of another task. Edits keep every byte outside the edited
task unchanged.`,
	}
	command.AddCommand(
		NewGetCommand(),
		NewListCommand(),
		NewAtCommand(),
		NewReplaceCommand(),
		NewInsertCommand(),
		NewDeleteCommand(),
		NewSwapCommand(),
	)
	return command
}

// NewGetCommand creates the task get subcommand
func NewGetCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "get <file> <id>",
		Short: "Print the source text of a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleGet, args)
		},
	}
	command.Flags().Bool(helpers.FlagJSON, false, "Print the match with its spans and value as JSON")
	return command
}

func handleGet(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("locating task", "id", args[1], "container", executor.ContainerField())
	match, err := flowdoc.FindTask(document, args[1], executor.ContainerField())
	if err != nil {
		return err
	}
	if err := cmd.RequireFound(match != nil, "task", args[1]); err != nil {
		return err
	}
	return printMatch(c, executor, match)
}

// NewAtCommand creates the task at subcommand
func NewAtCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "at <file> <offset|line:column>",
		Short: "Print the innermost task covering a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleAt, args)
		},
	}
	command.Flags().Bool(helpers.FlagJSON, false, "Print the match with its spans and value as JSON")
	return command
}

func handleAt(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	offset, err := helpers.ParseOffset(document, args[1])
	if err != nil {
		return err
	}
	match, err := flowdoc.TaskAtPosition(document, offset, executor.ContainerField())
	if err != nil {
		return err
	}
	if err := cmd.RequireFound(match != nil, "task at", args[1]); err != nil {
		return err
	}
	return printMatch(c, executor, match)
}

func printMatch(c *cobra.Command, executor *cmd.CommandExecutor, match *flowdoc.TaskMatch) error {
	asJSON, err := c.Flags().GetBool(helpers.FlagJSON)
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", helpers.FlagJSON, err)
	}
	if asJSON {
		return helpers.WriteJSON(executor.Out(), match)
	}
	return helpers.WriteText(executor.Out(), match.Source)
}

// NewListCommand creates the task list subcommand
func NewListCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "list <file>",
		Short: "List task ids in document order",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleList, args)
		},
	}
	command.Flags().Bool(helpers.FlagJSON, false, "Print the ids as a JSON array")
	return command
}

func handleList(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	ids, err := flowdoc.TaskIDs(document, executor.ContainerField())
	if err != nil {
		return err
	}
	asJSON, err := c.Flags().GetBool(helpers.FlagJSON)
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", helpers.FlagJSON, err)
	}
	if asJSON {
		if ids == nil {
			ids = []string{}
		}
		return helpers.WriteJSON(executor.Out(), ids)
	}
	return helpers.WriteText(executor.Out(), strings.Join(ids, "\n"))
}
