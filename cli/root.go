package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	configcmd "github.com/compozy/flowdoc/cli/cmd/config"
	"github.com/compozy/flowdoc/cli/cmd/document"
	"github.com/compozy/flowdoc/cli/cmd/task"
	"github.com/compozy/flowdoc/cli/helpers"
	"github.com/compozy/flowdoc/pkg/config"
	"github.com/compozy/flowdoc/pkg/flowdoc"
	"github.com/compozy/flowdoc/pkg/logger"
	"github.com/compozy/flowdoc/pkg/version"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = ".flowdoc.yaml"

// RootCmd creates the flowdoc command working on the OS filesystem.
func RootCmd() *cobra.Command {
	return NewRootCmd(afero.NewOsFs())
}

// NewRootCmd creates the flowdoc command working on fsys.
func NewRootCmd(fsys afero.Fs) *cobra.Command {
	root := &cobra.Command{
		Use:   "flowdoc",
		Short: "Source-preserving editor for YAML flow documents",
		Long: `flowdoc locates and edits tasks and fields of YAML flow documents while keeping
comments, ordering and formatting of everything it does not touch.

Results are printed to stdout unless --write is given. A file argument of - reads
standard input.`,
		Version:      version.Get().String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupCommand(cmd, fsys)
		},
	}
	flags := root.PersistentFlags()
	flags.String("config", "", fmt.Sprintf("Config file (default %s when present)", DefaultConfigFile))
	flags.String("container", flowdoc.DefaultContainerField, "Field holding child tasks")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error, disabled)")
	flags.Bool("log-json", false, "Write logs as JSON")
	flags.Bool("log-source", false, "Include the source location in logs")
	flags.BoolP("write", "w", false, "Write the result back to the input file")
	flags.String("backup", "", "Keep the original file with this suffix when writing")

	root.AddCommand(document.Commands()...)
	root.AddCommand(
		task.NewTaskCommand(),
		configcmd.NewConfigCommand(),
		newVersionCommand(),
	)
	return root
}

// setupCommand loads the configuration and attaches it, the logger and the
// filesystem to the command context.
func setupCommand(cmd *cobra.Command, fsys afero.Fs) error {
	ctx := cmd.Context()
	path, err := configPath(cmd.Flags(), fsys)
	if err != nil {
		return err
	}
	sources := []config.Source{}
	if path != "" {
		sources = append(sources, config.NewYAMLProvider(fsys, path))
	}
	sources = append(sources, config.NewCLIProvider(changedFlags(cmd.Flags())))
	service := config.NewService()
	cfg, err := service.Load(ctx, sources...)
	if err != nil {
		return helpers.NewCliError("CONFIG_ERROR", "Failed to load configuration", err.Error()).WithCause(err)
	}
	log := logger.SetupLogger(logger.LogLevel(cfg.Log.Level), cfg.Log.JSON, cfg.Log.Source, cmd.ErrOrStderr())
	log.Debug("configuration loaded", "file", path, "container", cfg.Editor.ContainerField, "write", cfg.Editor.Write)
	ctx = logger.ContextWithLogger(ctx, log)
	ctx = config.ContextWithConfig(ctx, cfg)
	ctx = context.WithValue(ctx, helpers.ConfigServiceKey, service)
	ctx = helpers.ContextWithFs(ctx, fsys)
	cmd.SetContext(ctx)
	return nil
}

// configPath returns the config file to read. An explicit --config must exist; the
// default file is optional.
func configPath(flags *pflag.FlagSet, fsys afero.Fs) (string, error) {
	path, err := flags.GetString("config")
	if err != nil {
		return "", fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		if ok, _ := afero.Exists(fsys, DefaultConfigFile); ok {
			return DefaultConfigFile, nil
		}
		return "", nil
	}
	if ok, _ := afero.Exists(fsys, path); !ok {
		return "", helpers.NewCliError("CONFIG_NOT_FOUND", fmt.Sprintf("Config file not found: %s", path))
	}
	return path, nil
}

// changedFlags returns the configuration flags set on the command line, so flag
// defaults never override the config file or the environment.
func changedFlags(flags *pflag.FlagSet) map[string]any {
	values := make(map[string]any)
	for _, name := range config.CLIFlags() {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if flag.Value.Type() == "bool" {
			if v, err := flags.GetBool(name); err == nil {
				values[name] = v
			}
			continue
		}
		values[name] = flag.Value.String()
	}
	return values
}

func newVersionCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := cmd.Flags().GetBool(helpers.FlagJSON)
			if err != nil {
				return fmt.Errorf("failed to get %s flag: %w", helpers.FlagJSON, err)
			}
			if asJSON {
				return helpers.WriteJSON(cmd.OutOrStdout(), version.Get())
			}
			return helpers.WriteText(cmd.OutOrStdout(), version.Get().String())
		},
	}
	command.Flags().Bool(helpers.FlagJSON, false, "Print build information as JSON")
	return command
}
