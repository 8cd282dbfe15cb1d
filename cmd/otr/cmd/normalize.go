package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/board"
)

var (
	outputDir string
	jobs      int
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <board_file>...",
	Short: "Normalize the traces of PCB files",
	Long: `Splits traces at crossings and junctions, combines traces that meet end to
end, and removes traces closing a cycle. Files are processed in parallel.

With --output-dir the normalized boards are written there under their
original names.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "write normalized boards to this directory")
	normalizeCmd.Flags().IntVarP(&jobs, "jobs", "j", 4, "boards processed in parallel")
}

type normalizeResult struct {
	file    string
	before  int
	after   int
	changed int
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	results := make([]normalizeResult, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(jobs, 1))
	for i, file := range args {
		g.Go(func() error {
			_, b, err := loadBoard(file)
			if err != nil {
				return err
			}
			res := normalizeResult{file: file, before: len(b.Traces())}
			res.changed = b.NormalizeAll(board.ContextStop(ctx))
			res.after = len(b.Traces())
			if outputDir != "" {
				if err := writeBoardFile(b, filepath.Join(outputDir, filepath.Base(file))); err != nil {
					return err
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-40s %8s %8s %8s\n", "Board", "Before", "After", "Changed")
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────")
	for _, r := range results {
		fmt.Fprintf(out, "%-40s %8d %8d %8d\n", filepath.Base(r.file), r.before, r.after, r.changed)
	}
	return nil
}

func writeBoardFile(b *board.Board, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := b.WriteAll(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
