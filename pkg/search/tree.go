// Package search is the spatial index of the board: every item is stored as
// a list of convex tile shapes, each on one layer, bucketed into a uniform
// grid. Shapes covering too many cells live in an oversize list that every
// query scans.
package search

import (
	"cmp"
	"math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

// DefaultCellSize is the grid pitch in board units (1 mm).
const DefaultCellSize = 1_000_000

// maxCellsPerShape bounds the grid cells a single shape is bucketed into.
const maxCellsPerShape = 4096

// Object is anything stored in the index.
type Object interface {
	ID() int
}

// Tile is one shape of an object on one layer.
type Tile struct {
	Layer int
	Shape geometry.TileShape
}

// Entry is a stored tile: the owner, the position of the tile in the owner's
// tile list, its layer and shape.
type Entry struct {
	Object     Object
	ShapeIndex int
	Layer      int
	Shape      geometry.TileShape
}

type cellKey struct {
	layer int
	x, y  int64
}

type entry struct {
	Entry
	cells    []cellKey
	oversize bool
}

// Tree is the grid index.
type Tree struct {
	cellSize float64
	cells    map[cellKey][]*entry
	oversize []*entry
	objects  map[int][]*entry
}

// NewTree creates an index with the given grid pitch; non-positive values use
// DefaultCellSize.
func NewTree(cellSize float64) *Tree {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Tree{
		cellSize: cellSize,
		cells:    make(map[cellKey][]*entry),
		objects:  make(map[int][]*entry),
	}
}

// Len returns the number of stored entries.
func (t *Tree) Len() int {
	n := 0
	for _, es := range t.objects {
		n += len(es)
	}
	return n
}

// Contains reports whether obj has entries.
func (t *Tree) Contains(obj Object) bool {
	_, ok := t.objects[obj.ID()]
	return ok
}

// Insert stores the tiles of obj, replacing earlier entries.
func (t *Tree) Insert(obj Object, tiles []Tile) {
	t.Remove(obj)
	es := make([]*entry, 0, len(tiles))
	for i, tile := range tiles {
		es = append(es, t.add(obj, i, tile))
	}
	t.objects[obj.ID()] = es
}

// Remove evicts every entry of obj.
func (t *Tree) Remove(obj Object) {
	es, ok := t.objects[obj.ID()]
	if !ok {
		return
	}
	for _, e := range es {
		t.unlink(e)
	}
	delete(t.objects, obj.ID())
}

// Entries returns the entries of obj in shape index order.
func (t *Tree) Entries(obj Object) []Entry {
	es := t.objects[obj.ID()]
	out := make([]Entry, len(es))
	for i, e := range es {
		out[i] = e.Entry
	}
	return out
}

// Overlapping returns the entries on layer whose shape intersects shape,
// ordered by object id and shape index. A negative layer matches all layers.
func (t *Tree) Overlapping(shape geometry.TileShape, layer int) []Entry {
	if shape.IsEmpty() {
		return nil
	}
	seen := make(map[*entry]struct{})
	var found []*entry
	consider := func(e *entry) {
		if layer >= 0 && e.Layer != layer {
			return
		}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		if e.Shape.Intersects(shape) {
			found = append(found, e)
		}
	}

	lo, hi, ok := t.cellRange(shape.Bounds())
	if !ok || tooManyCells(lo, hi) {
		for _, es := range t.objects {
			for _, e := range es {
				consider(e)
			}
		}
	} else {
		for _, l := range t.queryLayers(layer) {
			for x := lo[0]; x <= hi[0]; x++ {
				for y := lo[1]; y <= hi[1]; y++ {
					for _, e := range t.cells[cellKey{layer: l, x: x, y: y}] {
						consider(e)
					}
				}
			}
		}
		for _, e := range t.oversize {
			consider(e)
		}
	}

	slices.SortFunc(found, func(a, b *entry) int {
		if c := cmp.Compare(a.Object.ID(), b.Object.ID()); c != 0 {
			return c
		}
		return cmp.Compare(a.ShapeIndex, b.ShapeIndex)
	})
	out := make([]Entry, len(found))
	for i, e := range found {
		out[i] = e.Entry
	}
	return out
}

// ChangeEntries replaces the tiles of obj. The first keepFront and the last
// keepBack existing entries are reused unchanged; only the tiles between them
// are re-indexed.
func (t *Tree) ChangeEntries(obj Object, tiles []Tile, keepFront, keepBack int) {
	old := t.objects[obj.ID()]
	if keepFront < 0 || keepBack < 0 || keepFront+keepBack > min(len(old), len(tiles)) {
		t.Insert(obj, tiles)
		return
	}
	es := make([]*entry, 0, len(tiles))
	es = append(es, old[:keepFront]...)
	for _, e := range old[keepFront : len(old)-keepBack] {
		t.unlink(e)
	}
	for i := keepFront; i < len(tiles)-keepBack; i++ {
		es = append(es, t.add(obj, i, tiles[i]))
	}
	es = append(es, old[len(old)-keepBack:]...)
	t.renumber(obj, es)
}

// MergeEntriesInFront moves the first keepFrom entries of from in front of
// the last keepTo entries of to; the tiles between them are inserted new.
// tiles is the complete tile list of the merged object, which is to. All
// other entries of from are removed.
func (t *Tree) MergeEntriesInFront(from, to Object, tiles []Tile, keepFrom, keepTo int) {
	fromEntries := t.objects[from.ID()]
	toEntries := t.objects[to.ID()]
	if keepFrom < 0 || keepTo < 0 || keepFrom > len(fromEntries) || keepTo > len(toEntries) || keepFrom+keepTo > len(tiles) {
		t.Remove(from)
		t.Insert(to, tiles)
		return
	}
	es := make([]*entry, 0, len(tiles))
	es = append(es, fromEntries[:keepFrom]...)
	for _, e := range fromEntries[keepFrom:] {
		t.unlink(e)
	}
	for _, e := range toEntries[:len(toEntries)-keepTo] {
		t.unlink(e)
	}
	for i := keepFrom; i < len(tiles)-keepTo; i++ {
		es = append(es, t.add(to, i, tiles[i]))
	}
	es = append(es, toEntries[len(toEntries)-keepTo:]...)
	delete(t.objects, from.ID())
	t.renumber(to, es)
}

// MergeEntriesAtEnd keeps the first keepTo entries of to and appends the
// last keepFrom entries of from; the tiles between them are inserted new. All
// other entries of from are removed.
func (t *Tree) MergeEntriesAtEnd(from, to Object, tiles []Tile, keepTo, keepFrom int) {
	fromEntries := t.objects[from.ID()]
	toEntries := t.objects[to.ID()]
	if keepFrom < 0 || keepTo < 0 || keepFrom > len(fromEntries) || keepTo > len(toEntries) || keepFrom+keepTo > len(tiles) {
		t.Remove(from)
		t.Insert(to, tiles)
		return
	}
	es := make([]*entry, 0, len(tiles))
	es = append(es, toEntries[:keepTo]...)
	for _, e := range toEntries[keepTo:] {
		t.unlink(e)
	}
	for _, e := range fromEntries[:len(fromEntries)-keepFrom] {
		t.unlink(e)
	}
	for i := keepTo; i < len(tiles)-keepFrom; i++ {
		es = append(es, t.add(to, i, tiles[i]))
	}
	es = append(es, fromEntries[len(fromEntries)-keepFrom:]...)
	delete(t.objects, from.ID())
	t.renumber(to, es)
}

func (t *Tree) renumber(obj Object, es []*entry) {
	for i, e := range es {
		e.Object = obj
		e.ShapeIndex = i
	}
	t.objects[obj.ID()] = es
}

func (t *Tree) add(obj Object, index int, tile Tile) *entry {
	e := &entry{Entry: Entry{Object: obj, ShapeIndex: index, Layer: tile.Layer, Shape: tile.Shape}}
	lo, hi, ok := t.cellRange(tile.Shape.Bounds())
	if !ok || tooManyCells(lo, hi) {
		e.oversize = true
		t.oversize = append(t.oversize, e)
		return e
	}
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			k := cellKey{layer: tile.Layer, x: x, y: y}
			t.cells[k] = append(t.cells[k], e)
			e.cells = append(e.cells, k)
		}
	}
	return e
}

func (t *Tree) unlink(e *entry) {
	if e.oversize {
		t.oversize = slices.DeleteFunc(t.oversize, func(o *entry) bool { return o == e })
		return
	}
	for _, k := range e.cells {
		rest := slices.DeleteFunc(t.cells[k], func(o *entry) bool { return o == e })
		if len(rest) == 0 {
			delete(t.cells, k)
		} else {
			t.cells[k] = rest
		}
	}
	e.cells = nil
}

func (t *Tree) cellRange(r r2.Rect) ([2]int64, [2]int64, bool) {
	if r.IsEmpty() {
		return [2]int64{}, [2]int64{}, false
	}
	const limit = 1 << 40
	lx, ly := math.Floor(r.X.Lo/t.cellSize), math.Floor(r.Y.Lo/t.cellSize)
	hx, hy := math.Floor(r.X.Hi/t.cellSize), math.Floor(r.Y.Hi/t.cellSize)
	if math.Abs(lx) > limit || math.Abs(ly) > limit || math.Abs(hx) > limit || math.Abs(hy) > limit {
		return [2]int64{}, [2]int64{}, false
	}
	return [2]int64{int64(lx), int64(ly)}, [2]int64{int64(hx), int64(hy)}, true
}

func tooManyCells(lo, hi [2]int64) bool {
	w, h := hi[0]-lo[0]+1, hi[1]-lo[1]+1
	return w > maxCellsPerShape || h > maxCellsPerShape || w*h > maxCellsPerShape
}

func (t *Tree) queryLayers(layer int) []int {
	if layer >= 0 {
		return []int{layer}
	}
	set := make(map[int]struct{})
	for k := range t.cells {
		set[k.layer] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for l := range set {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}
