package board

import (
	"fmt"
	"io"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
)

// FileVersion is the KiCad format version written by WriteAll.
const FileVersion = 20221018

// WriteItem writes it as a KiCad s-expression. Pins are written as
// stand-alone pads in board coordinates. It reports false if it is not on
// the board or writing failed; the board is never changed.
func (b *Board) WriteItem(w io.Writer, it Item) bool {
	if !it.IsOnBoard() {
		return false
	}
	sw := sexp.NewWriter(w)
	b.writeItem(sw, it)
	if err := sw.Flush(); err != nil {
		b.logger.Debug("failed to write item", "id", it.ID(), "error", err)
		return false
	}
	return true
}

// WriteAll writes the whole board as a kicad_pcb file: layers, nets,
// components with their pins and every other item.
func (b *Board) WriteAll(w io.Writer) error {
	sw := sexp.NewWriter(w)
	sw.Open("kicad_pcb")
	sw.Open("version").Int(FileVersion).Close()
	sw.Open("generator").Atom("otr").Close()

	sw.Open("layers")
	for i, l := range b.rules.Layers.Layers() {
		kind := "signal"
		if !l.Signal {
			kind = "power"
		}
		sw.Open(fmt.Sprint(i)).String(l.Name).Atom(kind).Close()
	}
	sw.Close()

	sw.Open("net").Int(0).String("").Close()
	for _, n := range b.rules.Nets() {
		sw.Open("net").Int(n.Number).String(n.Name).Close()
	}

	pins := make(map[int][]*Pin)
	for _, it := range b.Items() {
		if p, ok := it.(*Pin); ok {
			pins[p.componentNo] = append(pins[p.componentNo], p)
		}
	}
	for _, c := range b.Components() {
		b.writeFootprint(sw, c, pins[c.No])
	}
	for _, it := range b.Items() {
		if sw.Err() != nil {
			break
		}
		if _, ok := it.(*Pin); ok {
			continue
		}
		b.writeItem(sw, it)
	}
	sw.Close()
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to write board: %w", err)
	}
	return nil
}

func (b *Board) writeItem(sw *sexp.Writer, it Item) {
	switch x := it.(type) {
	case *Trace:
		for k := 1; k <= x.polyline.SegmentCount(); k++ {
			from, to := x.polyline.SegmentCorners(k)
			sw.Open("segment")
			writeXY(sw, "start", from.Round())
			writeXY(sw, "end", to.Round())
			sw.Open("width").MM(2 * x.halfWidth).Close()
			sw.Open("layer").String(b.rules.Layers.Name(x.layer)).Close()
			writeNet(sw, x.nets)
			sw.Close()
		}
	case *Via:
		sw.Open("via")
		writeXY(sw, "at", x.center)
		if s, ok := x.padstack.Shape(x.padstack.FromLayer()); ok {
			sw.Open("size").MM(2 * int64(s.Extent())).Close()
		}
		writeDrill(sw, x.padstack)
		b.writeLayers(sw, b.FirstLayer(x), b.LastLayer(x))
		writeNet(sw, x.nets)
		sw.Close()
	case *TraceJoin:
		sw.Open("trace_join")
		writeXY(sw, "at", x.center)
		sw.Open("size").MM(2 * x.halfSize).Close()
		b.writeLayers(sw, x.span.first, x.span.last)
		writeNet(sw, x.nets)
		sw.Close()
	case *Pin:
		b.writePad(sw, x, true)
	case *ConductionArea:
		b.writeZone(sw, &x.areaBase, nil)
	case *ViaKeepout:
		b.writeZone(sw, &x.areaBase, []string{"tracks", "allowed", "vias", "not_allowed", "pads", "allowed"})
	case *ComponentKeepout:
		b.writeZone(sw, &x.areaBase, []string{"tracks", "allowed", "vias", "allowed", "pads", "not_allowed"})
	case *Area:
		b.writeZone(sw, &x.areaBase, []string{"tracks", "not_allowed", "vias", "not_allowed", "pads", "allowed"})
	case *Outline:
		for _, c := range x.curves {
			for i, p := range c {
				sw.Open("gr_line")
				writeXY(sw, "start", p)
				writeXY(sw, "end", c[(i+1)%len(c)])
				sw.Open("layer").String("Edge.Cuts").Close()
				sw.Close()
			}
		}
	}
}

func (b *Board) writeFootprint(sw *sexp.Writer, c Component, pins []*Pin) {
	name := c.Name
	if pkg, ok := b.library.Package(c.Package); ok {
		name = pkg.Name
	}
	layer := "F.Cu"
	if !c.OnFront {
		layer = "B.Cu"
	}
	sw.Open("footprint").String(name)
	sw.Open("layer").String(layer).Close()
	sw.Open("at").MM(c.Location.X).MM(-c.Location.Y).Float(c.Rotation).Close()
	sw.Open("property").String("Reference").String(c.Name).Close()
	for _, p := range pins {
		b.writePad(sw, p, false)
	}
	sw.Close()
}

// writePad writes p relative to its footprint, or in board coordinates if
// absolute is set.
func (b *Board) writePad(sw *sexp.Writer, p *Pin, absolute bool) {
	pl := b.pinPlacement(p)
	c, ok := b.components[p.componentNo]
	if !pl.ok || !ok {
		return
	}
	pkg, _ := b.library.Package(c.Package)
	pp, _ := pkg.Pin(p.pinNo)
	shape, _ := pl.padstack.Shape(pl.padstack.FromLayer())

	kind := "smd"
	if pl.padstack.FromLayer() != pl.padstack.ToLayer() {
		kind = "thru_hole"
	}
	sw.Open("pad").String(pp.Name).Atom(kind).Atom(padShapeName(shape))
	if absolute {
		sw.Open("at").MM(pl.pad.X).MM(-pl.pad.Y).Float(pl.rotation).Close()
	} else {
		x, y := pp.Offset.X, -pp.Offset.Y
		if pl.mirrored {
			x = -x
		}
		sw.Open("at").MM(x).MM(y).Float(pl.rotation).Close()
	}
	w, h := padSize(shape)
	sw.Open("size").MM(w).MM(h).Close()
	writeDrill(sw, pl.padstack)
	r := b.layerRange(p)
	b.writeLayers(sw, r.first, r.last)
	writeNet(sw, p.nets)
	sw.Close()
}

func (b *Board) writeZone(sw *sexp.Writer, a *areaBase, keepout []string) {
	for l := a.span.first; l <= a.span.last; l++ {
		sw.Open("zone")
		writeNet(sw, a.nets)
		sw.Open("layer").String(b.rules.Layers.Name(l)).Close()
		sw.Open("name").String(a.name).Close()
		if keepout != nil {
			sw.Open("keepout")
			for i := 0; i+1 < len(keepout); i += 2 {
				sw.Open(keepout[i]).Atom(keepout[i+1]).Close()
			}
			sw.Close()
		}
		sw.Open("polygon").Open("pts")
		for _, p := range a.AbsoluteShape().Ring() {
			writeXY(sw, "xy", p)
		}
		sw.Close().Close()
		sw.Close()
	}
}

func (b *Board) writeLayers(sw *sexp.Writer, first, last int) {
	if first < 0 {
		return
	}
	sw.Open("layers")
	if first == 0 && last == b.rules.Layers.Count()-1 && first != last {
		sw.String("*.Cu")
	} else {
		for l := first; l <= last; l++ {
			sw.String(b.rules.Layers.Name(l))
		}
	}
	sw.Close()
}

func writeDrill(sw *sexp.Writer, ps *library.Padstack) {
	if ps != nil && ps.Drill > 0 {
		sw.Open("drill").MM(ps.Drill).Close()
	}
}

func writeNet(sw *sexp.Writer, nets NetSet) {
	if net := nets.First(); net > 0 {
		sw.Open("net").Int(net).Close()
	}
}

// writeXY writes (key x y) in millimetres with KiCad's downward y axis.
func writeXY(sw *sexp.Writer, key string, p geometry.IntPoint) {
	sw.Open(key).MM(p.X).MM(-p.Y).Close()
}

func padShapeName(s library.PadShape) string {
	switch s.Kind {
	case library.ShapeCircle:
		return "circle"
	case library.ShapePolygon:
		return "custom"
	}
	return "rect"
}

func padSize(s library.PadShape) (int64, int64) {
	switch s.Kind {
	case library.ShapeCircle:
		return 2 * s.Radius, 2 * s.Radius
	case library.ShapeRect:
		return s.Hi.X - s.Lo.X, s.Hi.Y - s.Lo.Y
	}
	d := 2 * int64(s.Extent())
	return d, d
}
