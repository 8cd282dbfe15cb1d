package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/board"
)

var checkNormalize bool

var errViolations = errors.New("clearance violations found")

var checkCmd = &cobra.Command{
	Use:   "check <board_file>...",
	Short: "Report clearance violations",
	Long: `Loads each board and lists every pair of items closer than the design
rules allow. Exits with an error when any violation is found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkNormalize, "normalize", false, "normalize traces before checking")
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := withTimeout(cmd.Context())
	defer cancel()

	reports := make([][]board.ClearanceViolation, len(args))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range args {
		g.Go(func() error {
			_, b, err := loadBoard(file)
			if err != nil {
				return err
			}
			if checkNormalize {
				b.NormalizeAll(board.ContextStop(ctx))
			}
			reports[i] = b.AllClearanceViolations()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	total := 0
	for i, vs := range reports {
		fmt.Fprintf(out, "%s: %d violation(s)\n", filepath.Base(args[i]), len(vs))
		for _, v := range vs {
			fmt.Fprintf(out, "  %s\n", v)
		}
		total += len(vs)
	}
	if total > 0 {
		return fmt.Errorf("%w: %d", errViolations, total)
	}
	return nil
}
