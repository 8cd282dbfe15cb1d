package pcb

import (
	"fmt"
	"log/slog"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
)

// parseZone extracts a zone definition. A zone on several layers yields
// one Zone per layer.
func parseZone(node sexp.Sexp, idx netIndex) ([]Zone, error) {
	base := Zone{Net: parseNetRef(node, idx), Locked: isLocked(node)}
	if nameNode, found := sexp.FindNode(node, "name"); found {
		base.Name, _ = sexp.GetString(nameNode, 1)
	}

	polyNode, found := sexp.FindNode(node, "polygon")
	if !found {
		return nil, fmt.Errorf("missing outline polygon")
	}
	ptsNode, found := sexp.FindNode(polyNode, "pts")
	if !found {
		return nil, fmt.Errorf("missing outline points")
	}
	base.Outline = parsePoints(ptsNode)
	if len(base.Outline) < 3 {
		return nil, fmt.Errorf("outline has %d points", len(base.Outline))
	}

	if keepNode, found := sexp.FindNode(node, "keepout"); found {
		notAllowed := func(key string) bool {
			n, found := sexp.FindNode(keepNode, key)
			if !found {
				return false
			}
			v, _ := sexp.GetString(n, 1)
			return v == "not_allowed"
		}
		base.Keepout = &Keepout{
			Tracks: notAllowed("tracks"),
			Vias:   notAllowed("vias"),
			Pads:   notAllowed("pads"),
		}
	}

	var layers []string
	if layerNode, found := sexp.FindNode(node, "layer"); found {
		if layer, err := sexp.GetString(layerNode, 1); err == nil {
			layers = append(layers, layer)
		}
	}
	if layersNode, found := sexp.FindNode(node, "layers"); found {
		layers = sexp.GetStrings(layersNode)
	}
	if len(layers) == 0 {
		return nil, fmt.Errorf("missing layer")
	}

	zones := make([]Zone, 0, len(layers))
	for _, layer := range layers {
		zone := base
		zone.Layer = layer
		zones = append(zones, zone)
	}
	return zones, nil
}

// parseZones extracts all zone definitions. Zones that fail to parse are
// skipped.
func parseZones(root sexp.Sexp, idx netIndex) []Zone {
	zoneNodes := sexp.FindAllNodes(root, "zone")
	zones := make([]Zone, 0, len(zoneNodes))
	for i, zoneNode := range zoneNodes {
		parsed, err := parseZone(zoneNode, idx)
		if err != nil {
			slog.Warn("skipping zone", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		zones = append(zones, parsed...)
	}
	slog.Debug("parsed zones", slog.Int("zones", len(zones)), slog.Int("nodes", len(zoneNodes)))
	return zones
}

// parsePoints extracts xy coordinate pairs from a pts node
func parsePoints(ptsNode sexp.Sexp) []Position {
	var points []Position
	for _, item := range sexp.GetListItems(ptsNode) {
		if name, err := sexp.GetNodeName(item); err != nil || name != "xy" {
			continue
		}
		if p, err := parsePosition(item); err == nil {
			points = append(points, p)
		}
	}
	return points
}
