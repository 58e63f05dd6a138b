package document

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/compozy/flowdoc/cli/cmd"
	"github.com/compozy/flowdoc/cli/helpers"
	"github.com/compozy/flowdoc/pkg/flowdoc"
	"github.com/compozy/flowdoc/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Commands returns the document level commands.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		NewFmtCommand(),
		NewSetCommand(),
		NewUnsetCommand(),
		NewRenameCommand(),
		NewMapsCommand(),
		NewFieldCommand(),
		NewQueryCommand(),
	}
}

// NewFmtCommand creates the fmt command
func NewFmtCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fmt <file>",
		Short: "Rewrite a document in canonical form",
		Long: `Rewrite a document in canonical form: two-space indentation, well-known flow keys
first (id, type, namespace, description, labels, inputs, variables, tasks, errors,
finally, triggers, outputs) and the rest sorted. Comments are not kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleFmt, args)
		},
	}
}

func handleFmt(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	value, err := flowdoc.Parse(document)
	if err != nil {
		return err
	}
	out, err := flowdoc.Stringify(value)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("formatted document", "bytes_in", len(document), "bytes_out", len(out))
	return executor.EmitDocument(ctx, args[0], out)
}

// NewSetCommand creates the set command
func NewSetCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "set <file> <key> <value>",
		Short: "Set a top-level scalar field",
		Long: `Set a top-level scalar field, keeping the rest of the document unchanged.
The value is read as a YAML scalar (2 is a number, true a boolean) unless --string
is given. A missing field is added at the top of the document.`,
		Args: cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleSet, args)
		},
	}
	command.Flags().Bool("string", false, "Store the value as a string")
	return command
}

func handleSet(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	asString, err := c.Flags().GetBool("string")
	if err != nil {
		return fmt.Errorf("failed to get string flag: %w", err)
	}
	value, err := ParseValue(args[2], asString)
	if err != nil {
		return err
	}
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("setting field", "key", args[1])
	out, err := flowdoc.SetField(document, args[1], value)
	if err != nil {
		return err
	}
	return executor.EmitDocument(ctx, args[0], out)
}

// ParseValue reads a command line value as a YAML scalar.
func ParseValue(text string, asString bool) (any, error) {
	if asString {
		return text, nil
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(text), &node); err != nil {
		return nil, helpers.NewCliError("INVALID_VALUE", fmt.Sprintf("Invalid value %q", text), err.Error()).
			WithCause(err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	scalar := node.Content[0]
	if scalar.Kind != yaml.ScalarNode {
		return nil, helpers.NewCliError("INVALID_VALUE", fmt.Sprintf("Value %q is not a scalar", text),
			"use --string to store it as text").WithCause(flowdoc.ErrNotScalar)
	}
	var value any
	if err := scalar.Decode(&value); err != nil {
		return nil, helpers.NewCliError("INVALID_VALUE", fmt.Sprintf("Invalid value %q", text), err.Error()).
			WithCause(err)
	}
	return value, nil
}

// NewUnsetCommand creates the unset command
func NewUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <file> <key>",
		Short: "Remove a top-level field with its comments",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleUnset, args)
		},
	}
}

func handleUnset(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	out, found, err := flowdoc.RemoveField(document, args[1])
	if err != nil {
		return err
	}
	if err := cmd.RequireFound(found, "field", args[1]); err != nil {
		return err
	}
	return executor.EmitDocument(ctx, args[0], out)
}

// NewRenameCommand creates the rename command
func NewRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <file> <id> <namespace>",
		Short: "Set the id and namespace of a flow",
		Args:  cobra.ExactArgs(3),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleRename, args)
		},
	}
}

func handleRename(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	out, err := flowdoc.ReplaceIDAndNamespace(document, args[1], args[2])
	if err != nil {
		return err
	}
	return executor.EmitDocument(ctx, args[0], out)
}

// NewQueryCommand creates the query command
func NewQueryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "query <file> <path>",
		Short: "Evaluate a GJSON path against the document value",
		Long: `Evaluate a GJSON path (https://github.com/tidwall/gjson) against the document
value and print the result as JSON. Example: flowdoc query flow.yaml 'tasks.#.id'`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleQuery, args)
		},
	}
}

func handleQuery(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	value, err := flowdoc.Parse(document)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return helpers.NewCliError("ENCODE_ERROR", "Document value cannot be encoded as JSON", err.Error()).
			WithCause(err)
	}
	result := gjson.GetBytes(raw, args[1])
	if !result.Exists() {
		return helpers.NewNotFoundError("path", args[1])
	}
	return helpers.WriteRawJSON(executor.Out(), []byte(result.Raw))
}
