package config

import (
	"context"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/compozy/flowdoc/cli/cmd"
	"github.com/compozy/flowdoc/cli/helpers"
	"github.com/compozy/flowdoc/pkg/config"
	"github.com/compozy/flowdoc/pkg/logger"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long:  `Show the effective flowdoc configuration and where each value came from.`,
	}
	command.AddCommand(
		NewConfigShowCommand(),
		NewConfigEnvCommand(),
	)
	return command
}

// NewConfigShowCommand creates the config show subcommand
func NewConfigShowCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration values",
		Long: `Display the current configuration values in different formats.
Supports JSON, YAML, and table output formats.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleConfigShow, args)
		},
	}
	command.Flags().StringP("format", "f", "table", "Output format (json, yaml, table)")
	command.Flags().Bool("sources", false, "Show which source provided each value")
	return command
}

func handleConfigShow(ctx context.Context, c *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	log := logger.FromContext(ctx)
	log.Debug("executing config show command")
	format, err := c.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	showSources, err := c.Flags().GetBool("sources")
	if err != nil {
		return fmt.Errorf("failed to get sources flag: %w", err)
	}
	flat, err := flattenConfig(executor.Config())
	if err != nil {
		return err
	}
	var sources map[string]config.SourceType
	if showSources {
		sources = collectSources(ctx, flat)
	}
	return formatConfigOutput(executor.Out(), flat, sources, format)
}

// flattenConfig returns the configuration keyed by dotted koanf paths.
func flattenConfig(cfg *config.Config) (map[string]any, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(cfg, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to flatten configuration: %w", err)
	}
	return k.All(), nil
}

func collectSources(ctx context.Context, flat map[string]any) map[string]config.SourceType {
	service, ok := ctx.Value(helpers.ConfigServiceKey).(config.Service)
	sources := make(map[string]config.SourceType, len(flat))
	for key := range flat {
		if ok {
			sources[key] = service.GetSource(key)
		} else {
			sources[key] = config.SourceDefault
		}
	}
	return sources
}

// formatConfigOutput formats and outputs configuration based on requested format
func formatConfigOutput(
	w io.Writer,
	flat map[string]any,
	sources map[string]config.SourceType,
	format string,
) error {
	switch format {
	case "json":
		return helpers.WriteJSON(w, configOutput(flat, sources))
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(configOutput(flat, sources)); err != nil {
			return err
		}
		return encoder.Close()
	case "table":
		return outputTable(w, flat, sources)
	default:
		return helpers.NewCliError("INVALID_FORMAT", fmt.Sprintf("unsupported format: %s", format))
	}
}

func configOutput(flat map[string]any, sources map[string]config.SourceType) map[string]any {
	output := map[string]any{"config": flat}
	if len(sources) > 0 {
		output["sources"] = sources
	}
	return output
}

// outputTable outputs configuration as a table
func outputTable(w io.Writer, flat map[string]any, sources map[string]config.SourceType) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if sources != nil {
		fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
	} else {
		fmt.Fprintln(tw, "KEY\tVALUE")
	}
	for _, key := range keys {
		if sources != nil {
			fmt.Fprintf(tw, "%s\t%v\t%s\n", key, flat[key], sources[key])
		} else {
			fmt.Fprintf(tw, "%s\t%v\n", key, flat[key])
		}
	}
	return tw.Flush()
}

// NewConfigEnvCommand creates the config env subcommand
func NewConfigEnvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List the environment variables flowdoc reads",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return cmd.ExecuteCommand(c, handleConfigEnv, args)
		},
	}
}

func handleConfigEnv(_ context.Context, _ *cobra.Command, executor *cmd.CommandExecutor, _ []string) error {
	tw := tabwriter.NewWriter(executor.Out(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIABLE\tKEY\tSET")
	for _, b := range config.EnvBindings() {
		set := ""
		if _, ok := b.Value(); ok {
			set = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", b.Name, b.Key, set)
	}
	return tw.Flush()
}
