package pcb

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
)

// parseSegment extracts a track segment (copper trace)
// Expected format: (segment (start x y) (end x y) (width w) (layer "layer") (net n) ...)
func parseSegment(node sexp.Sexp, idx netIndex) (*Track, error) {
	track := &Track{
		Width: 0.15, // Default width
	}

	startNode, found := sexp.FindNode(node, "start")
	if !found {
		return nil, fmt.Errorf("missing required 'start' position")
	}
	start, err := parsePosition(startNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse start position: %w", err)
	}
	track.Start = start

	endNode, found := sexp.FindNode(node, "end")
	if !found {
		return nil, fmt.Errorf("missing required 'end' position")
	}
	end, err := parsePosition(endNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse end position: %w", err)
	}
	track.End = end

	if widthNode, found := sexp.FindNode(node, "width"); found {
		width, err := sexp.GetFloat(widthNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse width: %w", err)
		}
		track.Width = width
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	layer, err := sexp.GetString(layerNode, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}
	track.Layer = layer

	track.Net = parseNetRef(node, idx)
	track.Locked = isLocked(node)
	return track, nil
}

// parseVia extracts a via definition
// Expected format: (via (at x y) (size diameter) (drill diameter) (layers "L1" "L2") (net n) ...)
func parseVia(node sexp.Sexp, idx netIndex) (*Via, error) {
	via := &Via{}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	pos, err := parsePosition(atNode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse position: %w", err)
	}
	via.Position = pos

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	if via.Size, err = sexp.GetFloat(sizeNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse size: %w", err)
	}

	if drillNode, found := sexp.FindNode(node, "drill"); found {
		if via.Drill, err = sexp.GetFloat(drillNode, 1); err != nil {
			return nil, fmt.Errorf("failed to parse drill: %w", err)
		}
	}

	// Through vias may omit the layer pair.
	via.Layers = LayerSet{"F.Cu", "B.Cu"}
	if layersNode, found := sexp.FindNode(node, "layers"); found {
		if names := sexp.GetStrings(layersNode); len(names) > 0 {
			via.Layers = LayerSet(names)
		}
	}

	via.Net = parseNetRef(node, idx)
	via.Locked = isLocked(node)
	return via, nil
}

// parseTracks extracts all track segments from the root node. Arcs are
// read as their chord.
func parseTracks(root sexp.Sexp, idx netIndex) ([]Track, error) {
	var tracks []Track
	for _, key := range []string{"segment", "arc"} {
		for _, segmentNode := range sexp.FindAllNodes(root, key) {
			track, err := parseSegment(segmentNode, idx)
			if err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", key, err)
			}
			tracks = append(tracks, *track)
		}
	}
	return tracks, nil
}

// parseVias extracts all via definitions from the root node
func parseVias(root sexp.Sexp, idx netIndex) ([]Via, error) {
	var vias []Via
	for _, viaNode := range sexp.FindAllNodes(root, "via") {
		via, err := parseVia(viaNode, idx)
		if err != nil {
			return nil, fmt.Errorf("failed to parse via: %w", err)
		}
		vias = append(vias, *via)
	}
	return vias, nil
}
