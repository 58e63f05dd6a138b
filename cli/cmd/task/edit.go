package task

import (
	"context"
	"fmt"

	"github.com/compozy/flowdoc/cli/cmd"
	"github.com/compozy/flowdoc/cli/helpers"
	"github.com/compozy/flowdoc/pkg/flowdoc"
	"github.com/compozy/flowdoc/pkg/logger"
	"github.com/spf13/cobra"
)

// NewReplaceCommand creates the task replace subcommand
func NewReplaceCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "replace <file> <id> --with <file|->",
		Short: "Replace a task with new YAML text",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleReplace, args)
		},
	}
	command.Flags().String(helpers.FlagWith, "", "File holding the replacement task mapping (- for stdin)")
	return command
}

func handleReplace(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	text, err := cmd.ReadWith(ctx, c, executor, args[0])
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("replacing task", "id", args[1])
	out, found, err := flowdoc.ReplaceTask(document, args[1], text, executor.ContainerField())
	if err != nil {
		return err
	}
	if err := cmd.RequireFound(found, "task", args[1]); err != nil {
		return err
	}
	return executor.EmitDocument(ctx, args[0], out)
}

// NewInsertCommand creates the task insert subcommand
func NewInsertCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "insert <file> <anchor-id> --with <file|->",
		Short: "Insert a task next to another task",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleInsert, args)
		},
	}
	command.Flags().String(helpers.FlagWith, "", "File holding the new task mapping (- for stdin)")
	command.Flags().Bool(helpers.FlagBefore, false, "Insert before the anchor instead of after it")
	return command
}

func handleInsert(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	text, err := cmd.ReadWith(ctx, c, executor, args[0])
	if err != nil {
		return err
	}
	before, err := c.Flags().GetBool(helpers.FlagBefore)
	if err != nil {
		return fmt.Errorf("failed to get %s flag: %w", helpers.FlagBefore, err)
	}
	pos := flowdoc.After
	if before {
		pos = flowdoc.Before
	}
	logger.FromContext(ctx).Debug("inserting task", "anchor", args[1], "position", pos)
	out, found, err := flowdoc.InsertTask(document, args[1], text, pos, executor.ContainerField())
	if err != nil {
		return err
	}
	if err := cmd.RequireFound(found, "task", args[1]); err != nil {
		return err
	}
	return executor.EmitDocument(ctx, args[0], out)
}

// NewDeleteCommand creates the task delete subcommand
func NewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file> <id>",
		Short: "Delete a task with its comments and nested tasks",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleDelete, args)
		},
	}
}

func handleDelete(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("deleting task", "id", args[1])
	out, found, err := flowdoc.DeleteTask(document, args[1], executor.ContainerField())
	if err != nil {
		return err
	}
	if err := cmd.RequireFound(found, "task", args[1]); err != nil {
		return err
	}
	return executor.EmitDocument(ctx, args[0], out)
}

// NewSwapCommand creates the task swap subcommand
func NewSwapCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "swap <file> <id-a> <id-b>",
		Short: "Exchange the positions of two tasks",
		Args:  cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleSwap, args)
		},
	}
}

func handleSwap(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("swapping tasks", "a", args[1], "b", args[2])
	out, found, err := flowdoc.SwapTasks(document, args[1], args[2], executor.ContainerField())
	if err != nil {
		return err
	}
	if err := cmd.RequireFound(found, "task", args[1]+" or "+args[2]); err != nil {
		return err
	}
	return executor.EmitDocument(ctx, args[0], out)
}
