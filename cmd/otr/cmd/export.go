package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/board"
)

var (
	exportOutput    string
	exportNormalize bool
)

var exportCmd = &cobra.Command{
	Use:   "export <board_file>",
	Short: "Write the board model back as a KiCad PCB",
	Long: `Converts a PCB file to the board model and writes the copper, outline and
footprint pads back out in KiCad format. Writes to stdout unless --output
is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file")
	exportCmd.Flags().BoolVar(&exportNormalize, "normalize", false, "normalize traces before writing")
}

func runExport(cmd *cobra.Command, args []string) error {
	_, b, err := loadBoard(args[0])
	if err != nil {
		return err
	}
	if exportNormalize {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()
		b.NormalizeAll(board.ContextStop(ctx))
	}
	if exportOutput != "" {
		return writeBoardFile(b, exportOutput)
	}
	return b.WriteAll(cmd.OutOrStdout())
}
