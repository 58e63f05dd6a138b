package document

import (
	"context"
	"fmt"

	"github.com/compozy/flowdoc/cli/cmd"
	"github.com/compozy/flowdoc/cli/helpers"
	"github.com/compozy/flowdoc/pkg/flowdoc"
	"github.com/spf13/cobra"
)

// NewMapsCommand creates the maps command
func NewMapsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "maps <file>",
		Short: "Select top-level mappings by field conditions",
		Long: `Select the top-level entries whose value is a mapping meeting every condition.
--populated fields must hold a non-empty value; --present fields must exist, and
are dropped from the printed value (and listed as pruned) when empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleMaps, args)
		},
	}
	command.Flags().StringSlice("populated", nil, "Fields that must hold a non-empty value")
	command.Flags().StringSlice("present", nil, "Fields that must exist")
	command.Flags().String("at", "", "Only the mapping covering this offset or line:column")
	return command
}

// conditionsFromFlags builds the selection conditions; a field given to both
// flags must be populated.
func conditionsFromFlags(c *cobra.Command) (flowdoc.FieldConditions, error) {
	populated, err := c.Flags().GetStringSlice("populated")
	if err != nil {
		return nil, fmt.Errorf("failed to get populated flag: %w", err)
	}
	present, err := c.Flags().GetStringSlice("present")
	if err != nil {
		return nil, fmt.Errorf("failed to get present flag: %w", err)
	}
	conditions := make(flowdoc.FieldConditions, len(populated)+len(present))
	for _, field := range present {
		conditions[field] = flowdoc.Present
	}
	for _, field := range populated {
		conditions[field] = flowdoc.Populated
	}
	return conditions, nil
}

func handleMaps(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	conditions, err := conditionsFromFlags(c)
	if err != nil {
		return err
	}
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	at, err := c.Flags().GetString("at")
	if err != nil {
		return fmt.Errorf("failed to get at flag: %w", err)
	}
	if at != "" {
		offset, err := helpers.ParseOffset(document, at)
		if err != nil {
			return err
		}
		match, err := flowdoc.MapAtPosition(document, offset, conditions)
		if err != nil {
			return err
		}
		if err := cmd.RequireFound(match != nil, "mapping at", at); err != nil {
			return err
		}
		return helpers.WriteJSON(executor.Out(), match)
	}
	matches, err := flowdoc.ExtractMaps(document, conditions)
	if err != nil {
		return err
	}
	if matches == nil {
		matches = []flowdoc.MapMatch{}
	}
	return helpers.WriteJSON(executor.Out(), matches)
}

// NewFieldCommand creates the field command
func NewFieldCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "field <file> <name>",
		Short: "Print a field of every top-level mapping that has it",
		Args:  cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleField, args)
		},
	}
}

func handleField(ctx context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, args []string) error {
	document, err := executor.ReadDocument(ctx, args[0])
	if err != nil {
		return err
	}
	values, err := flowdoc.ExtractFieldFromMaps(document, args[1])
	if err != nil {
		return err
	}
	if values == nil {
		values = []flowdoc.FieldValue{}
	}
	return helpers.WriteJSON(executor.Out(), values)
}
