package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/gnana997/propspec/pkg/scanner"
)

type scanOutput struct {
	Root  string               `json:"root"`
	Files []scanner.FileResult `json:"files"`
	Stats scanner.ScanStats    `json:"stats"`
}

func newScanCmd(global *globalOptions) *cobra.Command {
	var (
		exclude []string
		format  string
		quiet   bool
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Print the props of every component under a directory",
		Long: `Discover .svelte files under dir (default: current directory) and print the
props of each. Files without a script block or with syntax errors are
reported with their error and do not stop the scan.

Example:
  propspec scan src --format table`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			root := "."
			if len(args) == 1 {
				root = args[0]
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

			var progress scanner.Progress
			if !quiet {
				progress = &barProgress{w: cmd.ErrOrStderr()}
			}

			result, err := scanner.Scan(commandContext(cmd), ext, root, env.config.scanConfig(), opts, progress, env.logger)
			if err != nil {
				return err
			}

			if format == formatTable {
				writeScanTable(cmd, root, result)
				return nil
			}
			out := scanOutput{Root: root, Files: result.Files, Stats: result.Stats}
			if out.Files == nil {
				out.Files = []scanner.FileResult{}
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "categories to leave out: VARIABLES, UNIONS, FUNCTIONS")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or table")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func writeScanTable(cmd *cobra.Command, root string, result *scanner.ScanResult) {
	w := cmd.OutOrStdout()
	absRoot, _ := filepath.Abs(root)
	for i, f := range result.Files {
		if i > 0 {
			fmt.Fprintln(w)
		}
		name := f.Path
		if rel, err := filepath.Rel(absRoot, f.Path); err == nil {
			name = rel
		}
		if f.Err != nil {
			fmt.Fprintf(w, "%s  error: %v\n", name, f.Err)
			continue
		}
		writePropsTable(w, name, f.Props)
	}

	s := result.Stats
	fmt.Fprintf(w, "\n%d files, %d props, %d failed (%dms)\n",
		s.FilesDiscovered, s.PropsExtracted, s.FilesFailed, s.TotalTimeMs)
}

// barProgress draws a progress bar once the number of files is known.
type barProgress struct {
	w   io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

func (p *barProgress) OnDiscovered(files int) {
	if files == 0 {
		return
	}
	p.bar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("Extracting props"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

func (p *barProgress) OnFileDone(scanner.FileResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}
