package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gnana997/propspec/pkg/props"
	"github.com/gnana997/propspec/pkg/util"
)

// Version information, set via ldflags at build time.
var (
	Version   = "0.1.0-dev"
	GitCommit = "none"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "propspec",
		Short: "Extract the public props of Svelte components",
		Long: `propspec reads the <script lang="ts"> block of Svelte components and reports
each exported prop with its type, allowed union values and default value.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is .propspec/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newExtractCmd(opts),
		newScanCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of propspec",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "propspec %s (%s)\n", Version, GitCommit)
		},
	}
}

// environment is what every command needs after flags and config are read.
type environment struct {
	config  *ProjectConfig
	logger  *slog.Logger
	exclude []props.Category
}

// setup loads the project config and builds the logger. Logs go to stderr
// so stdout stays machine-readable.
func (o *globalOptions) setup(stderr io.Writer) (*environment, error) {
	cfg, err := loadProjectConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := util.NewLogger(util.LoggerConfig{
		Level:  util.LogLevel(o.logLevel),
		Format: util.LogFormat(o.logFormat),
		Output: stderr,
	})

	exclude, err := props.ParseCategories(cfg.ExcludeCategories)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude_categories in config: %w", err)
	}

	return &environment{config: cfg, logger: logger, exclude: exclude}, nil
}

// newExtractor builds an Extractor from the project config.
func (e *environment) newExtractor() (*props.Extractor, error) {
	return props.NewExtractor(props.ExtractorConfig{
		CacheSize:    e.config.CacheSize,
		AllowUntyped: e.config.AllowUntyped,
		PoolSize:     e.config.Workers,
	}, e.logger)
}

// options merges --exclude values over the configured categories.
func (e *environment) options(flagValues []string) (props.Options, error) {
	if len(flagValues) == 0 {
		return props.Options{Exclude: e.exclude}, nil
	}
	cats, err := props.ParseCategories(flagValues)
	if err != nil {
		return props.Options{}, err
	}
	return props.Options{Exclude: cats}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
