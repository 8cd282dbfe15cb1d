package pcb

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/board"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

// DefaultClearance is the clearance of rules derived from a board file.
const DefaultClearance = 200_000

// ErrNoCopper is returned for boards without copper layers.
var ErrNoCopper = errors.New("board has no copper layers")

// nm converts millimetres to board units.
func nm(mm float64) int64 {
	return int64(math.Round(mm * MMToNanometers))
}

// boardPoint converts a KiCad position to board coordinates. KiCad's y
// axis points down.
func boardPoint(p Position) geometry.IntPoint {
	return geometry.IntPoint{X: nm(p.X), Y: -nm(p.Y)}
}

// DeriveRules builds rules for the copper layers of b with one clearance
// class and the nets of b.
func (b *Board) DeriveRules() (*rules.Rules, error) {
	copper := b.CopperLayers()
	if len(copper) == 0 {
		return nil, ErrNoCopper
	}
	layers := make([]rules.Layer, len(copper))
	for i, l := range copper {
		layers[i] = rules.Layer{Name: l.Name, Signal: l.Type != "power"}
	}
	ls := rules.NewLayerStructure(layers)
	m := rules.NewClearanceMatrix([]string{"default"}, ls.Count())
	m.Set(0, 0, DefaultClearance)
	return rules.New(ls, m), nil
}

// Convert builds a board model from b. With nil rules, DeriveRules is used;
// otherwise the rules must name every copper layer of b. Nets unknown to the
// rules are added in the default class. Traces are inserted as they are;
// callers normalize afterwards.
func (b *Board) Convert(r *rules.Rules, opts ...board.Option) (*board.Board, error) {
	if r == nil {
		var err error
		if r, err = b.DeriveRules(); err != nil {
			return nil, fmt.Errorf("failed to derive rules: %w", err)
		}
	}
	for _, l := range b.CopperLayers() {
		if _, ok := r.Layers.Index(l.Name); !ok {
			return nil, fmt.Errorf("failed to convert board: layer %s missing from rules", l.Name)
		}
	}
	for _, n := range b.Nets {
		if n.Number <= 0 {
			continue
		}
		if _, ok := r.Net(n.Number); !ok {
			r.AddNet(rules.Net{Number: n.Number, Name: n.Name})
		}
	}

	c := &converter{src: b, rules: r, lib: library.New()}
	c.dst = board.New(r, c.lib, opts...)
	c.dst.StartNotify()
	defer c.dst.EndNotify()

	steps := []struct {
		name string
		run  func() error
	}{
		{"outline", c.outline},
		{"footprints", c.footprints},
		{"vias", c.vias},
		{"tracks", c.tracks},
		{"zones", c.zones},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", s.name, err)
		}
	}
	if c.skipped > 0 {
		c.dst.Logger().Warn("skipped board elements", "count", c.skipped)
	}
	return c.dst, nil
}

type converter struct {
	src     *Board
	rules   *rules.Rules
	lib     *library.Library
	dst     *board.Board
	skipped int
}

func (c *converter) skip(what string, err error) {
	c.skipped++
	c.dst.Logger().Debug("skipping "+what, "error", err)
}

func (c *converter) layer(name string) (int, bool) {
	return c.rules.Layers.Index(name)
}

// layerSet resolves pad and via layer names, including the "*.Cu" and
// "F&B.Cu" wildcards, to sorted board layer indices.
func (c *converter) layerSet(names LayerSet) []int {
	n := c.rules.Layers.Count()
	var out []int
	for _, name := range names {
		switch name {
		case "*.Cu":
			for i := range n {
				out = append(out, i)
			}
		case "F&B.Cu":
			out = append(out, 0, n-1)
		default:
			if i, ok := c.layer(name); ok {
				out = append(out, i)
			}
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (c *converter) attrs(net *Net, locked bool) board.Attributes {
	a := board.Attributes{}
	if net != nil {
		a.Nets = board.NewNetSet(net.Number)
		a.ClearanceClass = c.rules.NetClassOf(net.Number).ClearanceClass
	}
	if locked {
		a.Fixed = board.UserFixed
	}
	return a
}

func (c *converter) outline() error {
	curves := chainEdges(c.src.Edges)
	if len(curves) == 0 {
		bbox := c.src.GetBoundingBox()
		if bbox.IsEmpty() || bbox.Width() <= 0 || bbox.Height() <= 0 {
			return nil
		}
		c.dst.Logger().Info("no closed Edge.Cuts outline, using the bounding box")
		lo := boardPoint(Position{X: bbox.Min.X, Y: bbox.Max.Y})
		hi := boardPoint(Position{X: bbox.Max.X, Y: bbox.Min.Y})
		poly := geometry.NewRectPolygon(lo, hi)
		curves = [][]geometry.IntPoint{poly.Border}
	}
	_, err := c.dst.SetOutline(curves, board.DefaultOutlineMargin, board.Attributes{Fixed: board.SystemFixed})
	return err
}

// chainEdges joins outline pieces into closed curves. Open chains are
// dropped.
func chainEdges(edges []Edge) [][]geometry.IntPoint {
	used := make([]bool, len(edges))
	var curves [][]geometry.IntPoint
	for i, e := range edges {
		if used[i] {
			continue
		}
		used[i] = true
		first := boardPoint(e.Start)
		curve := []geometry.IntPoint{first}
		last := boardPoint(e.End)
		for last != first {
			next := -1
			for j, o := range edges {
				if used[j] {
					continue
				}
				switch last {
				case boardPoint(o.Start):
					next = j
				case boardPoint(o.End):
					edges[j].Start, edges[j].End = o.End, o.Start
					next = j
				}
				if next >= 0 {
					break
				}
			}
			if next < 0 {
				break
			}
			used[next] = true
			curve = append(curve, last)
			last = boardPoint(edges[next].End)
		}
		if last == first && len(curve) >= 3 {
			curves = append(curves, curve)
		}
	}
	return curves
}

func (c *converter) footprints() error {
	n := c.rules.Layers.Count()
	for i := range c.src.Footprints {
		fp := &c.src.Footprints[i]
		back := fp.OnBack()
		pkg := &library.Package{No: c.lib.NextPackageNo(), Name: strings.TrimPrefix(fp.Library+":"+fp.Name, ":")}
		var pads []*Pad
		for j := range fp.Pads {
			pad := &fp.Pads[j]
			layers := c.layerSet(pad.Layers)
			if pad.Type == "np_thru_hole" || len(layers) == 0 || pad.Size.Width <= 0 {
				continue
			}
			if back {
				// Padstacks are defined for the front side.
				for k, l := range layers {
					layers[k] = n - 1 - l
				}
				slices.Sort(layers)
			}
			ps := c.padstack(pad, layers)
			offset := geometry.IntPoint{X: nm(pad.Position.X), Y: -nm(pad.Position.Y)}
			rotation := float64(pad.Position.Angle - fp.Position.Angle)
			if back {
				offset.X = -offset.X
				rotation = -rotation
			}
			pkg.Pins = append(pkg.Pins, library.PackagePin{
				Name:     pad.Number,
				Padstack: ps.No,
				Offset:   offset,
				Rotation: rotation,
			})
			pads = append(pads, pad)
		}
		c.lib.AddPackage(pkg)

		compNo := i + 1
		name := fp.Reference
		if name == "" {
			name = fmt.Sprintf("FP%d", compNo)
		}
		c.dst.AddComponent(board.Component{
			No:       compNo,
			Name:     name,
			Package:  pkg.No,
			Location: boardPoint(fp.Position.Position),
			Rotation: float64(fp.Position.Angle),
			OnFront:  !back,
		})
		for pinNo, pad := range pads {
			if _, err := c.dst.InsertPin(compNo, pinNo, c.attrs(pad.Net, fp.Locked)); err != nil {
				return fmt.Errorf("failed to insert pin %s-%s: %w", name, pad.Number, err)
			}
		}
	}
	return nil
}

// padstack returns the padstack for pad on layers, creating it on first
// use. Padstacks are shared by name.
func (c *converter) padstack(pad *Pad, layers []int) *library.Padstack {
	w, h := nm(pad.Size.Width), nm(pad.Size.Height)
	drill := nm(pad.Drill)
	name := fmt.Sprintf("%s_%dx%d_D%d_L%s", pad.Shape, w, h, drill, joinInts(layers))
	if ps, ok := c.lib.PadstackByName(name); ok {
		return ps
	}
	shape := library.Rect(w, h)
	if pad.Shape == "circle" {
		shape = library.Circle(w / 2)
	}
	shapes := make([]library.PadShape, c.rules.Layers.Count())
	for _, l := range layers {
		shapes[l] = shape
	}
	ps := library.NewPadstack(c.lib.NextPadstackNo(), name, shapes, false)
	ps.Drill = drill
	c.lib.AddPadstack(ps)
	return ps
}

func (c *converter) viaPadstack(v *Via) (*library.Padstack, bool) {
	layers := c.layerSet(v.Layers)
	if len(layers) == 0 {
		return nil, false
	}
	from, to := layers[0], layers[len(layers)-1]
	d, drill := nm(v.Size), nm(v.Drill)
	name := fmt.Sprintf("Via_%d_D%d_L%d-%d", d, drill, from, to)
	if ps, ok := c.lib.PadstackByName(name); ok {
		return ps, true
	}
	shapes := make([]library.PadShape, c.rules.Layers.Count())
	for l := from; l <= to; l++ {
		shapes[l] = library.Circle(d / 2)
	}
	ps := library.NewPadstack(c.lib.NextPadstackNo(), name, shapes, false)
	ps.Drill = drill
	c.lib.AddPadstack(ps)
	return ps, true
}

func (c *converter) vias() error {
	for _, v := range c.src.Vias {
		ps, ok := c.viaPadstack(&v)
		if !ok || v.Size <= 0 {
			c.skip("via", fmt.Errorf("no copper at %v", v.Position))
			continue
		}
		if _, err := c.dst.InsertVia(boardPoint(v.Position), ps, false, c.attrs(v.Net, v.Locked)); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) tracks() error {
	for _, t := range c.src.Tracks {
		layer, ok := c.layer(t.Layer)
		if !ok {
			c.skip("track", fmt.Errorf("unknown layer %s", t.Layer))
			continue
		}
		p, err := geometry.PolylineFromCorners([]geometry.IntPoint{boardPoint(t.Start), boardPoint(t.End)})
		if err != nil {
			c.skip("track", err)
			continue
		}
		_, err = c.dst.InsertTraceWithoutCleaning(p, nm(t.Width)/2, layer, c.attrs(t.Net, t.Locked))
		if errors.Is(err, board.ErrDegenerateTrace) {
			c.skip("track", err)
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) zones() error {
	for i, z := range c.src.Zones {
		layer, ok := c.layer(z.Layer)
		if !ok {
			c.skip("zone", fmt.Errorf("unknown layer %s", z.Layer))
			continue
		}
		border := make([]geometry.IntPoint, len(z.Outline))
		for k, p := range z.Outline {
			border[k] = boardPoint(p)
		}
		shape := board.AreaShape{Relative: geometry.PolygonShape{Border: border}}
		name := z.Name
		if name == "" {
			name = fmt.Sprintf("zone%d", i+1)
		}
		attrs := c.attrs(z.Net, z.Locked)
		var err error
		switch {
		case z.Keepout == nil:
			_, err = c.dst.InsertConductionArea(name, shape, layer, z.Net == nil, attrs)
		case z.Keepout.Tracks:
			_, err = c.dst.InsertArea(name, shape, layer, layer, attrs)
		case z.Keepout.Vias:
			_, err = c.dst.InsertViaKeepout(name, shape, layer, layer, attrs)
		case z.Keepout.Pads:
			_, err = c.dst.InsertComponentKeepout(name, shape, layer, layer, attrs)
		default:
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ",")
}
