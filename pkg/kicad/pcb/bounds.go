package pcb

import "math"

// GetBoundingBox returns the extent of the copper, the pads and the outline
// of the board. It is empty for a board without any of them.
func (b *Board) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	for _, t := range b.Tracks {
		bbox.Expand(t.Start)
		bbox.Expand(t.End)
	}
	for _, v := range b.Vias {
		expandAround(&bbox, v.Position, v.Size/2, v.Size/2)
	}
	for i := range b.Footprints {
		if fb := b.Footprints[i].GetBoundingBox(); !fb.IsEmpty() {
			bbox.Expand(fb.Min)
			bbox.Expand(fb.Max)
		}
	}
	for _, e := range b.Edges {
		bbox.Expand(e.Start)
		bbox.Expand(e.End)
	}
	return bbox
}

// GetBoundingBox returns the extent of the footprint's pads, each taken as
// an unrotated rectangle. A footprint without pads covers its origin.
func (fp *Footprint) GetBoundingBox() BoundingBox {
	bbox := NewBoundingBox()
	if len(fp.Pads) == 0 {
		bbox.Expand(Position{X: fp.Position.X, Y: fp.Position.Y})
		return bbox
	}
	for _, pad := range fp.Pads {
		expandAround(&bbox, fp.TransformPosition(pad.Position), pad.Size.Width/2, pad.Size.Height/2)
	}
	return bbox
}

func expandAround(bbox *BoundingBox, c Position, dx, dy float64) {
	bbox.Expand(Position{X: c.X - dx, Y: c.Y - dy})
	bbox.Expand(Position{X: c.X + dx, Y: c.Y + dy})
}

// TransformPosition maps a pad offset to board coordinates. KiCad angles
// turn clockwise on screen, hence the negated rotation.
func (fp *Footprint) TransformPosition(rel PositionAngle) Position {
	x, y := rel.X, rel.Y
	if fp.Position.Angle != 0 {
		sin, cos := math.Sincos(-float64(fp.Position.Angle) * math.Pi / 180)
		x, y = x*cos-y*sin, x*sin+y*cos
	}
	return Position{X: x + fp.Position.X, Y: y + fp.Position.Y}
}
