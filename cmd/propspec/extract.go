package main

import (
	"github.com/spf13/cobra"
)

func newExtractCmd(global *globalOptions) *cobra.Command {
	var (
		exclude []string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the props of one component",
		Long: `Print the exported props of a single .svelte component.

Example:
  propspec extract src/lib/Button.svelte
  propspec extract src/lib/Button.svelte --exclude FUNCTIONS --format table`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			env, err := global.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			opts, err := env.options(exclude)
			if err != nil {
				return err
			}

			ext, err := env.newExtractor()
			if err != nil {
				return err
			}
			defer ext.Close()

			list, err := ext.ExtractFile(commandContext(cmd), args[0], opts)
			if err != nil {
				return err
			}

			if format == formatTable {
				writePropsTable(cmd.OutOrStdout(), args[0], list)
				return nil
			}
			if list == nil {
				return writeJSON(cmd.OutOrStdout(), []any{})
			}
			return writeJSON(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "categories to leave out: VARIABLES, UNIONS, FUNCTIONS")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or table")
	return cmd
}
