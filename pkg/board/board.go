package board

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/search"
)

var (
	// ErrDegenerateTrace is returned for traces whose endpoints coincide.
	ErrDegenerateTrace = errors.New("trace endpoints coincide")
	// ErrDuplicateID is returned when an explicit id is already used.
	ErrDuplicateID = errors.New("item id already on the board")
	// ErrInvalidLayer is returned for layers outside the layer structure.
	ErrInvalidLayer = errors.New("layer out of range")
	// ErrDeleteFixed is returned when deleting a delete protected item.
	ErrDeleteFixed = errors.New("item is delete fixed")
	// ErrNotOnBoard is returned for operations on removed items.
	ErrNotOnBoard = errors.New("item is not on the board")
	// ErrNotMovable is returned when an item can only move with its
	// component.
	ErrNotMovable = errors.New("item moves with its component")
)

// Limits bound the worklists of the normalizer.
type Limits struct {
	MaxSplitPasses    int
	MaxCombineSteps   int
	MaxNormalizeSteps int
}

// DefaultLimits returns the limits used when none are configured.
func DefaultLimits() Limits {
	return Limits{
		MaxSplitPasses:    1024,
		MaxCombineSteps:   256,
		MaxNormalizeSteps: 1024,
	}
}

// Component places a package on the board. Its pins are separate items.
type Component struct {
	No      int
	Name    string
	Package int
	// Location of the package origin.
	Location geometry.IntPoint
	// Rotation in degrees, counterclockwise.
	Rotation float64
	// OnFront is false for components on the back side, which are mirrored.
	OnFront bool
}

// Board owns the items, the spatial index and the rules.
type Board struct {
	rules   *rules.Rules
	library *library.Library
	limits  Limits
	logger  *slog.Logger
	tree    *search.Tree
	undo    UndoLog
	ids     IDSource

	items      map[int]Item
	components map[int]*Component
	outline    *Outline

	observers   []Observer
	notifyDepth int
	pending     []Event
	// changes counts notifications and tells passes whether they did
	// anything.
	changes int
}

// Option configures a Board.
type Option func(*Board)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Board) { b.logger = l }
}

// WithLimits sets the worklist limits.
func WithLimits(l Limits) Option {
	return func(b *Board) { b.limits = l }
}

// WithUndoLog records changes in log.
func WithUndoLog(log UndoLog) Option {
	return func(b *Board) { b.undo = log }
}

// WithCellSize sets the grid pitch of the spatial index.
func WithCellSize(size float64) Option {
	return func(b *Board) { b.tree = search.NewTree(size) }
}

// New creates an empty board. Nil rules or library are replaced by defaults.
func New(r *rules.Rules, lib *library.Library, opts ...Option) *Board {
	if r == nil {
		r = rules.Default()
	}
	if lib == nil {
		lib = library.New()
	}
	b := &Board{
		rules:      r,
		library:    lib,
		limits:     DefaultLimits(),
		logger:     slog.Default(),
		tree:       search.NewTree(search.DefaultCellSize),
		undo:       noUndo{},
		items:      make(map[int]Item),
		components: make(map[int]*Component),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Rules returns the design rules.
func (b *Board) Rules() *rules.Rules { return b.rules }

// Library returns the padstack and package library.
func (b *Board) Library() *library.Library { return b.library }

// Logger returns the board logger.
func (b *Board) Logger() *slog.Logger { return b.logger }

// Limits returns the normalizer limits.
func (b *Board) Limits() Limits { return b.limits }

// Item returns the item with the given id.
func (b *Board) Item(id int) (Item, bool) {
	it, ok := b.items[id]
	return it, ok
}

// Len returns the number of items.
func (b *Board) Len() int { return len(b.items) }

// Items returns all items sorted by id.
func (b *Board) Items() []Item {
	out := make([]Item, 0, len(b.items))
	for _, it := range b.items {
		out = append(out, it)
	}
	sortItems(out)
	return out
}

// Traces returns all traces sorted by id.
func (b *Board) Traces() []*Trace {
	var out []*Trace
	for _, it := range b.Items() {
		if t, ok := it.(*Trace); ok {
			out = append(out, t)
		}
	}
	return out
}

// AddComponent registers a component; its pins are inserted with InsertPin.
func (b *Board) AddComponent(c Component) {
	b.components[c.No] = &c
}

// Component returns the component with number no.
func (b *Board) Component(no int) (Component, bool) {
	c, ok := b.components[no]
	if !ok {
		return Component{}, false
	}
	return *c, true
}

// Components returns all components sorted by number.
func (b *Board) Components() []Component {
	out := make([]Component, 0, len(b.components))
	for _, c := range b.components {
		out = append(out, *c)
	}
	slices.SortFunc(out, func(x, y Component) int { return cmp.Compare(x.No, y.No) })
	return out
}

// Tiles returns the tile shapes of it, one per layer and convex piece.
func (b *Board) Tiles(it Item) []search.Tile {
	return it.base().tiles.get(func() []search.Tile { return it.computeTiles(b) })
}

func (b *Board) layerRange(it Item) layerRange {
	return it.base().layers.get(func() layerRange { return it.computeLayers(b) })
}

// FirstLayer returns the first layer of it, -1 if unknown.
func (b *Board) FirstLayer(it Item) int {
	r := b.layerRange(it)
	if !r.valid() {
		return -1
	}
	return r.first
}

// LastLayer returns the last layer of it, -1 if unknown.
func (b *Board) LastLayer(it Item) int {
	r := b.layerRange(it)
	if !r.valid() {
		return -1
	}
	return r.last
}

// IsOnLayer reports whether it has copper or a keepout on layer.
func (b *Board) IsOnLayer(it Item, layer int) bool {
	return b.layerRange(it).contains(layer)
}

// SharesLayer reports whether the layer ranges of x and y overlap.
func (b *Board) SharesLayer(x, y Item) bool {
	return b.layerRange(x).overlaps(b.layerRange(y))
}

// Bounds returns the bounding box of the tile shapes of it.
func (b *Board) Bounds(it Item) r2.Rect {
	return it.base().bounds.get(func() r2.Rect {
		r := r2.EmptyRect()
		for _, t := range b.Tiles(it) {
			r = r.Union(t.Shape.Bounds())
		}
		return r
	})
}

// IsObstacle reports whether other is an obstacle to it, by the rule of it.
func (b *Board) IsObstacle(it, other Item) bool {
	return it.isObstacle(b, other)
}

func (b *Board) insert(it Item) error {
	base := it.base()
	if base.id > 0 {
		if _, ok := b.items[base.id]; ok {
			return fmt.Errorf("failed to insert item %d: %w", base.id, ErrDuplicateID)
		}
		b.ids.Observe(base.id)
	} else {
		base.id = b.ids.Next()
	}
	base.onBoard = true
	it.invalidate()
	b.items[base.id] = it
	if o, ok := it.(*Outline); ok {
		b.outline = o
	}
	b.tree.Insert(it, b.Tiles(it))
	b.undo.Inserted(it)
	b.notify(ItemInserted, it)
	return nil
}

func (b *Board) remove(it Item) {
	if !it.IsOnBoard() {
		return
	}
	b.undo.Saved(it)
	b.tree.Remove(it)
	delete(b.items, it.ID())
	if o, ok := it.(*Outline); ok && b.outline == o {
		b.outline = nil
	}
	it.base().onBoard = false
	it.invalidate()
	b.notify(ItemRemoved, it)
}

// change applies mutate to it and re-indexes its shapes.
func (b *Board) change(it Item, mutate func()) {
	b.undo.Saved(it)
	mutate()
	it.invalidate()
	if it.IsOnBoard() {
		b.tree.Insert(it, b.Tiles(it))
	}
	b.notify(ItemChanged, it)
}

// RemoveItem removes it from the board. It reports false if it was not on
// the board.
func (b *Board) RemoveItem(it Item) bool {
	if !it.IsOnBoard() {
		return false
	}
	b.remove(it)
	return true
}

// DeleteItem removes it unless it is delete fixed.
func (b *Board) DeleteItem(it Item) error {
	if it.IsDeleteFixed() {
		return fmt.Errorf("failed to delete item %d: %w", it.ID(), ErrDeleteFixed)
	}
	if !b.RemoveItem(it) {
		return fmt.Errorf("failed to delete item %d: %w", it.ID(), ErrNotOnBoard)
	}
	return nil
}

// ChangeClearanceClass sets the clearance class of it.
func (b *Board) ChangeClearanceClass(it Item, class int) {
	if it.ClearanceClass() == class {
		return
	}
	b.change(it, func() { it.base().clearanceClass = class })
}

// ChangeFixedState sets the fixed state of it.
func (b *Board) ChangeFixedState(it Item, state FixedState) {
	if it.FixedState() == state {
		return
	}
	b.change(it, func() { it.base().fixed = state })
}

func (b *Board) checkLayer(layer int) error {
	if !b.rules.Layers.Valid(layer) {
		return fmt.Errorf("failed to use layer %d: %w", layer, ErrInvalidLayer)
	}
	return nil
}

func sortItems[T Item](items []T) {
	slices.SortFunc(items, func(x, y T) int { return cmp.Compare(x.ID(), y.ID()) })
}
