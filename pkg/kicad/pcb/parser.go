package pcb

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	sexps, err := sexp.Parse(r)
	if err != nil {
		return nil, err
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("empty file or no valid s-expressions found")
	}

	// The root should be a (kicad_pcb ...) expression
	root := sexps[0]
	rootName, err := sexp.GetNodeName(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get root node name: %w", err)
	}
	if rootName != "kicad_pcb" {
		return nil, fmt.Errorf("not a KiCad PCB file: expected 'kicad_pcb', got '%s'", rootName)
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	board := &Board{
		Version:   version,
		Generator: generator,
	}

	board.General = parseGeneral(root)

	if layersNode, found := sexp.FindNode(root, "layers"); found {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	nets, err := parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	board.Nets = nets
	idx := indexNets(board.Nets)

	board.Edges = parseEdges(root)

	if board.Tracks, err = parseTracks(root, idx); err != nil {
		return nil, fmt.Errorf("failed to parse tracks: %w", err)
	}
	if board.Vias, err = parseVias(root, idx); err != nil {
		return nil, fmt.Errorf("failed to parse vias: %w", err)
	}
	board.Footprints = parseFootprints(root, idx)
	board.Zones = parseZones(root, idx)

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root sexp.Sexp) (version int, generator string, err error) {
	versionNode, found := sexp.FindNode(root, "version")
	if !found {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}
	ver, err := sexp.GetInt(versionNode, 1)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse version: %w", err)
	}
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("unsupported KiCad version: %d (minimum required: %d / KiCad 6.0)", ver, MinSupportedVersion)
	}

	gen := "unknown"
	if hostNode, found := sexp.FindNode(root, "host"); found {
		// Older format: (host pcbnew "(6.0.0)")
		if toolName, err := sexp.GetString(hostNode, 1); err == nil {
			gen = toolName
		}
	} else if genNode, found := sexp.FindNode(root, "generator"); found {
		if generatorName, err := sexp.GetString(genNode, 1); err == nil {
			gen = generatorName
		}
	}
	return ver, gen, nil
}

// parseGeneral extracts general board properties
// Expected format: (general (thickness 1.6)) (title_block (title "Board") ...)
func parseGeneral(root sexp.Sexp) General {
	var general General
	if generalNode, found := sexp.FindNode(root, "general"); found {
		if thicknessNode, found := sexp.FindNode(generalNode, "thickness"); found {
			if thickness, err := sexp.GetFloat(thicknessNode, 1); err == nil {
				general.Thickness = thickness
			}
		}
	}
	node, found := sexp.FindNode(root, "title_block")
	if !found {
		return general
	}
	fields := map[string]*string{
		"title":   &general.Title,
		"date":    &general.Date,
		"rev":     &general.Revision,
		"company": &general.Company,
	}
	for key, dst := range fields {
		if n, found := sexp.FindNode(node, key); found {
			if v, err := sexp.GetString(n, 1); err == nil {
				*dst = v
			}
		}
	}
	return general
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node sexp.Sexp) ([]Layer, error) {
	layerNodes := sexp.GetListItems(node)
	if len(layerNodes) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}

	var layers []Layer
	for _, layerNode := range layerNodes {
		if layerNode.IsLeaf() {
			continue
		}
		number, err := sexp.GetInt(layerNode, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer number: %w", err)
		}
		name, err := sexp.GetString(layerNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layer name: %w", err)
		}
		layerType, err := sexp.GetString(layerNode, 2)
		if err != nil {
			// Layer type is optional in some cases
			layerType = "user"
		}
		layers = append(layers, Layer{Number: number, Name: name, Type: layerType})
	}
	return layers, nil
}

// parseNets extracts net definitions from the root node
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root sexp.Sexp) ([]Net, error) {
	netNodes := sexp.FindAllNodes(root, "net")
	nets := make([]Net, 0, len(netNodes))
	for _, netNode := range netNodes {
		number, err := sexp.GetInt(netNode, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to parse net number: %w", err)
		}
		// Name is optional (net 0 often has empty name)
		name, _ := sexp.GetString(netNode, 2)
		nets = append(nets, Net{Number: number, Name: name})
	}
	return nets, nil
}

// parseNetRef resolves a (net n ...) child of node.
func parseNetRef(node sexp.Sexp, idx netIndex) *Net {
	netNode, found := sexp.FindNode(node, "net")
	if !found {
		return nil
	}
	netNum, err := sexp.GetInt(netNode, 1)
	if err != nil {
		return nil
	}
	net, ok := idx[netNum]
	if !ok {
		slog.Debug("reference to undeclared net", slog.Int("net", netNum))
		return nil
	}
	return net
}

// isLocked reports a bare "locked" symbol or a (locked yes) child.
func isLocked(node sexp.Sexp) bool {
	if sexp.HasSymbol(node, "locked") {
		return true
	}
	if n, found := sexp.FindNode(node, "locked"); found && !n.IsLeaf() {
		v, _ := sexp.GetString(n, 1)
		return v == "yes"
	}
	return false
}

func parsePosition(node sexp.Sexp) (Position, error) {
	return sexp.GetPositionXY(node)
}
