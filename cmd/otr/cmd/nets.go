package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/board"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
)

var netsCmd = &cobra.Command{
	Use:   "nets <board_file> [net_name]",
	Short: "Show PCB net information",
	Long: `Display information about nets in a PCB file.

Without net_name: Lists all nets with pad/track/via counts and the number of
unconnected copper islands
With net_name: Shows detailed information for that specific net`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)
}

func runNets(cmd *cobra.Command, args []string) error {
	src, b, err := loadBoard(args[0])
	if err != nil {
		return err
	}
	b.NormalizeAll(nil)

	out := cmd.OutOrStdout()
	if len(args) >= 2 {
		return showNetDetails(out, src, b, args[1])
	}
	listAllNets(out, src, b)
	return nil
}

func listAllNets(out io.Writer, src *pcb.Board, b *board.Board) {
	nets := make([]pcb.Net, 0, len(src.Nets))
	for _, n := range src.Nets {
		if n.Number > 0 {
			nets = append(nets, n)
		}
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i].Name < nets[j].Name })

	fmt.Fprintf(out, "Board: %d nets\n\n", len(nets))
	fmt.Fprintf(out, "%-30s %6s %6s %6s %7s\n", "Net Name", "Pads", "Tracks", "Vias", "Islands")
	fmt.Fprintln(out, "─────────────────────────────────────────────────────────────────")
	for _, n := range nets {
		info := src.GetNetInfo(n.Name)
		if info == nil {
			continue
		}
		fmt.Fprintf(out, "%-30s %6d %6d %6d %7d\n",
			n.Name,
			len(info.Pads),
			len(info.Tracks),
			len(info.Vias),
			len(b.NetIslands(n.Number)))
	}
}

func showNetDetails(out io.Writer, src *pcb.Board, b *board.Board, netName string) error {
	info := src.GetNetInfo(netName)
	if info == nil {
		return fmt.Errorf("net '%s' not found", netName)
	}

	fmt.Fprintf(out, "Net: %s (number %d)\n\n", info.Net.Name, info.Net.Number)

	fmt.Fprintf(out, "Pads (%d):\n", len(info.Pads))
	for _, pad := range info.Pads {
		fmt.Fprintf(out, "  Pad %-4s: %s %.2f×%.2f mm at (%.2f, %.2f)\n",
			pad.Number, pad.Shape,
			pad.Size.Width, pad.Size.Height,
			pad.Position.X, pad.Position.Y)
	}

	fmt.Fprintf(out, "\nTracks (%d):\n", len(info.Tracks))
	for i, track := range info.Tracks {
		fmt.Fprintf(out, "  Track %d: %.2f mm wide on %s from (%.2f, %.2f) to (%.2f, %.2f)\n",
			i+1, track.Width, track.Layer,
			track.Start.X, track.Start.Y,
			track.End.X, track.End.Y)
	}

	fmt.Fprintf(out, "\nVias (%d):\n", len(info.Vias))
	for i, via := range info.Vias {
		fmt.Fprintf(out, "  Via %d: %.2f mm diameter, %.2f mm drill at (%.2f, %.2f)\n",
			i+1, via.Size, via.Drill,
			via.Position.X, via.Position.Y)
	}

	islands := b.NetIslands(info.Net.Number)
	fmt.Fprintf(out, "\nIslands (%d):\n", len(islands))
	for i, island := range islands {
		fmt.Fprintf(out, "  Island %d: %d items\n", i+1, len(island))
	}
	if b.Incomplete(info.Net.Number) {
		fmt.Fprintln(out, "\nNet is incomplete")
	}
	return nil
}
