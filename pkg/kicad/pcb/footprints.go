package pcb

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
)

// parsePad extracts a pad definition from a footprint
// Expected format: (pad "number" type shape (at x y [angle]) (size w h) (layers ...) (net n) ...)
func parsePad(node sexp.Sexp, idx netIndex) (*Pad, error) {
	pad := &Pad{}

	number, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pad number: %w", err)
	}
	pad.Number = number

	// thru_hole, smd, connect, np_thru_hole
	if pad.Type, err = sexp.GetString(node, 2); err != nil {
		return nil, fmt.Errorf("failed to parse pad type: %w", err)
	}
	// circle, rect, oval, roundrect, trapezoid, custom
	if pad.Shape, err = sexp.GetString(node, 3); err != nil {
		return nil, fmt.Errorf("failed to parse pad shape: %w", err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if pad.Position, err = sexp.GetPosition(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse pad position: %w", err)
	}

	sizeNode, found := sexp.FindNode(node, "size")
	if !found {
		return nil, fmt.Errorf("missing required 'size' field")
	}
	if pad.Size, err = sexp.GetSize(sizeNode); err != nil {
		return nil, fmt.Errorf("failed to parse pad size: %w", err)
	}

	// Drill can be (drill d) or (drill oval w h)
	if drillNode, found := sexp.FindNode(node, "drill"); found {
		for i := 1; i <= 2; i++ {
			if drill, err := sexp.GetFloat(drillNode, i); err == nil {
				pad.Drill = drill
				break
			}
		}
	}

	layersNode, found := sexp.FindNode(node, "layers")
	if !found {
		return nil, fmt.Errorf("missing required 'layers' field")
	}
	pad.Layers = LayerSet(sexp.GetStrings(layersNode))

	pad.Net = parseNetRef(node, idx)
	return pad, nil
}

// parseFootprint extracts a footprint (component) definition
// Expected format: (footprint "library:name" (layer "layer") (at x y [angle]) ...)
func parseFootprint(node sexp.Sexp, idx netIndex) (*Footprint, error) {
	footprint := &Footprint{}

	// Split library:name format
	// Example: "Resistor_SMD:R_0603_1608Metric"
	fpName, err := sexp.GetString(node, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to parse footprint name: %w", err)
	}
	if lib, name, ok := strings.Cut(fpName, ":"); ok && lib != "" {
		footprint.Library = lib
		footprint.Name = name
	} else {
		footprint.Name = fpName
	}

	layerNode, found := sexp.FindNode(node, "layer")
	if !found {
		return nil, fmt.Errorf("missing required 'layer' field")
	}
	if footprint.Layer, err = sexp.GetString(layerNode, 1); err != nil {
		return nil, fmt.Errorf("failed to parse layer: %w", err)
	}

	atNode, found := sexp.FindNode(node, "at")
	if !found {
		return nil, fmt.Errorf("missing required 'at' position")
	}
	if footprint.Position, err = sexp.GetPosition(atNode); err != nil {
		return nil, fmt.Errorf("failed to parse footprint position: %w", err)
	}
	footprint.Locked = isLocked(node)

	// KiCad 8 uses (property "Reference" "R1"), KiCad 6 (fp_text reference "R1")
	for _, propNode := range sexp.FindAllNodes(node, "property") {
		key, err1 := sexp.GetString(propNode, 1)
		value, err2 := sexp.GetString(propNode, 2)
		if err1 != nil || err2 != nil {
			continue
		}
		switch key {
		case "Reference":
			footprint.Reference = value
		case "Value":
			footprint.Value = value
		}
	}
	for _, textNode := range sexp.FindAllNodes(node, "fp_text") {
		kind, err1 := sexp.GetString(textNode, 1)
		value, err2 := sexp.GetString(textNode, 2)
		if err1 != nil || err2 != nil {
			continue
		}
		switch {
		case kind == "reference" && footprint.Reference == "":
			footprint.Reference = value
		case kind == "value" && footprint.Value == "":
			footprint.Value = value
		}
	}

	for _, padNode := range sexp.FindAllNodes(node, "pad") {
		pad, err := parsePad(padNode, idx)
		if err != nil {
			slog.Warn("skipping pad", slog.String("footprint", footprint.Reference), slog.Any("error", err))
			continue
		}
		footprint.Pads = append(footprint.Pads, *pad)
	}
	return footprint, nil
}

// parseFootprints extracts all footprint definitions from the root node.
// Footprints that fail to parse are skipped.
func parseFootprints(root sexp.Sexp, idx netIndex) []Footprint {
	var footprints []Footprint
	for i, fpNode := range sexp.FindAllNodes(root, "footprint") {
		footprint, err := parseFootprint(fpNode, idx)
		if err != nil {
			slog.Warn("skipping footprint", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		footprints = append(footprints, *footprint)
	}
	return footprints
}
