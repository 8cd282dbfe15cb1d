package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/board"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/pcb"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

// loadBoard parses a KiCad file and converts it to a board model. Rules are
// read per call since conversion adds the file's nets to them.
func loadBoard(filename string) (*pcb.Board, *board.Board, error) {
	src, err := pcb.ParseFile(filename)
	if err != nil {
		return nil, nil, err
	}
	var r *rules.Rules
	if rulesFile != "" {
		if r, err = rules.LoadFile(rulesFile); err != nil {
			return nil, nil, err
		}
	}
	logger := slog.Default().With("file", filepath.Base(filename))
	b, err := src.Convert(r, board.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filename, err)
	}
	logger.Debug("board loaded", "items", b.Len(), "traces", len(b.Traces()))
	return src, b, nil
}

// withTimeout applies the --timeout flag to ctx.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
