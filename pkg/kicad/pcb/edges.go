package pcb

import (
	"log/slog"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
)

// EdgeLayer is the layer holding the board outline.
const EdgeLayer = "Edge.Cuts"

// parseEdges collects the straight outline pieces on Edge.Cuts from
// gr_line, gr_rect and gr_poly. Arcs and circles are approximated by their
// chord or skipped.
func parseEdges(root sexp.Sexp) []Edge {
	var edges []Edge
	onEdge := func(node sexp.Sexp) bool {
		layerNode, found := sexp.FindNode(node, "layer")
		if !found {
			return false
		}
		layer, err := sexp.GetString(layerNode, 1)
		return err == nil && layer == EdgeLayer
	}
	startEnd := func(node sexp.Sexp) (Position, Position, bool) {
		startNode, ok1 := sexp.FindNode(node, "start")
		endNode, ok2 := sexp.FindNode(node, "end")
		if !ok1 || !ok2 {
			return Position{}, Position{}, false
		}
		start, err1 := parsePosition(startNode)
		end, err2 := parsePosition(endNode)
		return start, end, err1 == nil && err2 == nil
	}

	for _, key := range []string{"gr_line", "gr_arc"} {
		for _, node := range sexp.FindAllNodes(root, key) {
			if !onEdge(node) {
				continue
			}
			start, end, ok := startEnd(node)
			if !ok {
				slog.Warn("skipping outline piece", slog.String("kind", key))
				continue
			}
			edges = append(edges, Edge{Start: start, End: end})
		}
	}
	for _, node := range sexp.FindAllNodes(root, "gr_rect") {
		if !onEdge(node) {
			continue
		}
		lo, hi, ok := startEnd(node)
		if !ok {
			continue
		}
		edges = append(edges, closedEdges([]Position{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}})...)
	}
	for _, node := range sexp.FindAllNodes(root, "gr_poly") {
		if !onEdge(node) {
			continue
		}
		if ptsNode, found := sexp.FindNode(node, "pts"); found {
			edges = append(edges, closedEdges(parsePoints(ptsNode))...)
		}
	}
	return edges
}

func closedEdges(pts []Position) []Edge {
	if len(pts) < 3 {
		return nil
	}
	edges := make([]Edge, len(pts))
	for i, p := range pts {
		edges[i] = Edge{Start: p, End: pts[(i+1)%len(pts)]}
	}
	return edges
}
