package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	rulesFile string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "otr",
	Short: "OpenTraceRoute - PCB trace normalization and clearance checks",
	Long: `OpenTraceRoute (otr) loads KiCad PCB files into a routing board model and
works on the copper:
  - normalize traces (split at junctions, combine, remove cycles)
  - report clearance violations
  - show net connectivity

Examples:
  otr normalize board.kicad_pcb --output-dir out   # Normalize and write result
  otr check --normalize a.kicad_pcb b.kicad_pcb    # Check clearances
  otr nets board.kicad_pcb GND                     # Show one net
  otr export board.kicad_pcb -o copy.kicad_pcb     # Round trip the copper`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "design rules YAML file (default: derived from the board)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "stop long running passes after this duration (0 = no limit)")
}
