package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/propspec/pkg/mcp"
	"github.com/gnana997/propspec/pkg/mcplog"
)

func newServeCmd(global *globalOptions) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing the
extract_props and scan_props tools. Relative paths in tool calls resolve
against the current directory.

Example:
  propspec serve --log-file .propspec/tools.jsonl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := global.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			if logFile == "" {
				logFile = env.config.LogFile
			}
			toolLog, err := mcplog.NewLogger(logFile)
			if err != nil {
				return err
			}
			defer toolLog.Close()

			ext, err := env.newExtractor()
			if err != nil {
				return err
			}
			defer ext.Close()

			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get current directory: %w", err)
			}

			srv := mcpserver.NewServer(ext, mcpserver.Config{
				Root:    root,
				Scan:    env.config.scanConfig(),
				Exclude: env.exclude,
			}, toolLog)

			env.logger.Info("MCP server starting", "root", root, "tool_log", logFile)
			err = srv.ServeStdio()

			st := ext.Stats()
			env.logger.Info("MCP server stopped",
				"extractions", st.Extractions,
				"cache_hits", st.CacheHits,
				"failures", st.Failures,
				"parsers", st.ParsersCreated)
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "append one JSONL line per tool call to this file")
	return cmd
}
