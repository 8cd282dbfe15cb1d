package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

const mm = 1_000_000

const (
	viaPadstack = 1
	smdPadstack = 2
	thtPadstack = 3
)

func pt(x, y int64) geometry.IntPoint { return geometry.IntPoint{X: x * mm, Y: y * mm} }

func newTestBoard(t *testing.T, opts ...Option) *Board {
	t.Helper()
	r := rules.Default()
	r.AddNet(rules.Net{Number: 1, Name: "A"})
	r.AddNet(rules.Net{Number: 2, Name: "B"})
	lib := library.New()
	via := library.NewPadstack(viaPadstack, "via", []library.PadShape{library.Circle(300_000), library.Circle(300_000)}, false)
	via.Drill = 300_000
	tht := library.NewPadstack(thtPadstack, "tht", []library.PadShape{library.Circle(500_000), library.Circle(500_000)}, false)
	tht.Drill = 600_000
	lib.AddPadstack(via)
	lib.AddPadstack(library.NewPadstack(smdPadstack, "smd", []library.PadShape{library.Rect(mm, mm), {}}, false))
	lib.AddPadstack(tht)
	return New(r, lib, opts...)
}

func onNet(net int) Attributes { return Attributes{Nets: NewNetSet(net)} }

func addTrace(t *testing.T, b *Board, net, layer int, corners ...geometry.IntPoint) *Trace {
	t.Helper()
	p, err := geometry.PolylineFromCorners(corners)
	require.NoError(t, err)
	tr, err := b.InsertTraceWithoutCleaning(p, 100_000, layer, onNet(net))
	require.NoError(t, err)
	return tr
}

func addVia(t *testing.T, b *Board, net int, at geometry.IntPoint) *Via {
	t.Helper()
	ps, ok := b.Library().Padstack(viaPadstack)
	require.True(t, ok)
	v, err := b.InsertVia(at, ps, false, onNet(net))
	require.NoError(t, err)
	return v
}

// addPin places a one-pin component with its pad centred at at.
func addPin(t *testing.T, b *Board, padstack, net int, at geometry.IntPoint) *Pin {
	t.Helper()
	lib := b.Library()
	pkg := &library.Package{No: lib.NextPackageNo(), Name: "P", Pins: []library.PackagePin{{Name: "1", Padstack: padstack}}}
	lib.AddPackage(pkg)
	no := len(b.Components()) + 1
	b.AddComponent(Component{No: no, Name: "U", Package: pkg.No, Location: at, OnFront: true})
	p, err := b.InsertPin(no, 0, onNet(net))
	require.NoError(t, err)
	return p
}

func rectArea(lo, hi geometry.IntPoint) AreaShape {
	return AreaShape{Relative: geometry.NewRectPolygon(lo, hi)}
}

func ids[T Item](items []T) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID()
	}
	return out
}

func corners(t *Trace) []geometry.IntPoint {
	var out []geometry.IntPoint
	for _, c := range t.Polyline().Corners() {
		out = append(out, c.Round())
	}
	return out
}

func TestNetSet(t *testing.T) {
	s := NewNetSet(3, 1, 1, 0, -2)
	assert.Equal(t, []int{1, 3}, s.Slice())
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.First())
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(2))
	assert.Equal(t, "{1 3}", s.String())

	tests := []struct {
		name         string
		other        NetSet
		intersects   bool
		union, inter []int
	}{
		{"disjoint", NewNetSet(2), false, []int{1, 2, 3}, nil},
		{"overlap", NewNetSet(3, 4), true, []int{1, 3, 4}, []int{3}},
		{"empty", NetSet{}, false, []int{1, 3}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.intersects, s.Intersects(tt.other))
			assert.Equal(t, tt.union, s.Union(tt.other).Slice())
			assert.ElementsMatch(t, tt.inter, s.Intersection(tt.other).Slice())
		})
	}
	assert.True(t, NewNetSet(1, 3).Equal(s))
	assert.True(t, NetSet{}.IsEmpty())
}

func TestSharesNet(t *testing.T) {
	b := newTestBoard(t)
	a1 := addTrace(t, b, 1, 0, pt(0, 0), pt(5, 0))
	a2 := addTrace(t, b, 1, 0, pt(0, 5), pt(5, 5))
	b1 := addTrace(t, b, 2, 0, pt(0, 10), pt(5, 10))
	free, err := b.InsertTraceCorners([]geometry.IntPoint{pt(0, 20), pt(5, 20)}, 100_000, 0, Attributes{})
	require.NoError(t, err)

	assert.True(t, SharesNet(a1, a2))
	assert.False(t, SharesNet(a1, b1))
	assert.False(t, SharesNet(free, free), "items without nets share nothing")
}

func TestInsertTrace(t *testing.T) {
	b := newTestBoard(t)

	t.Run("tiles per segment", func(t *testing.T) {
		tr := addTrace(t, b, 1, 1, pt(0, 0), pt(10, 0), pt(10, 10))
		assert.Equal(t, 2, tr.Polyline().SegmentCount())
		tiles := b.Tiles(tr)
		require.Len(t, tiles, 2)
		for _, tile := range tiles {
			assert.Equal(t, 1, tile.Layer)
		}
		assert.Equal(t, 1, b.FirstLayer(tr))
		assert.Equal(t, 1, b.LastLayer(tr))
		assert.InDelta(t, 20*mm, tr.Length(), 1)
	})

	t.Run("rejects", func(t *testing.T) {
		_, err := b.InsertTraceCorners([]geometry.IntPoint{pt(0, 0), pt(10, 0)}, 100_000, 5, Attributes{})
		assert.ErrorIs(t, err, ErrInvalidLayer)

		p, err := geometry.PolylineFromCorners([]geometry.IntPoint{pt(0, 0), pt(10, 0), pt(10, 10), pt(0, 0)})
		require.NoError(t, err)
		_, err = b.InsertTraceWithoutCleaning(p, 100_000, 0, Attributes{})
		assert.ErrorIs(t, err, ErrDegenerateTrace)

		first := addTrace(t, b, 1, 0, pt(30, 0), pt(40, 0))
		p, err = geometry.PolylineFromCorners([]geometry.IntPoint{pt(30, 5), pt(40, 5)})
		require.NoError(t, err)
		_, err = b.InsertTraceWithoutCleaning(p, 100_000, 0, Attributes{ID: first.ID()})
		assert.ErrorIs(t, err, ErrDuplicateID)
	})

	t.Run("explicit ids advance the source", func(t *testing.T) {
		p, err := geometry.PolylineFromCorners([]geometry.IntPoint{pt(50, 0), pt(60, 0)})
		require.NoError(t, err)
		explicit, err := b.InsertTraceWithoutCleaning(p, 100_000, 0, Attributes{ID: 100})
		require.NoError(t, err)
		assert.Equal(t, 100, explicit.ID())
		next := addTrace(t, b, 1, 0, pt(50, 5), pt(60, 5))
		assert.Greater(t, next.ID(), 100)
	})
}

func TestDeleteItem(t *testing.T) {
	b := newTestBoard(t)
	tr := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	fixed, err := b.InsertTraceCorners([]geometry.IntPoint{pt(0, 5), pt(10, 5)}, 100_000, 0,
		Attributes{Nets: NewNetSet(1), Fixed: DeleteFixed})
	require.NoError(t, err)

	assert.ErrorIs(t, b.DeleteItem(fixed), ErrDeleteFixed)
	require.NoError(t, b.DeleteItem(tr))
	assert.False(t, tr.IsOnBoard())
	assert.ErrorIs(t, b.DeleteItem(tr), ErrNotOnBoard)
	assert.False(t, b.RemoveItem(tr))
	assert.Nil(t, b.NormalContacts(tr))

	_, ok := b.Item(tr.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, b.Len())
}

func TestSetPolyline(t *testing.T) {
	b := newTestBoard(t)
	tr := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0), pt(10, 10))
	other := addTrace(t, b, 1, 0, pt(20, 10), pt(30, 10))

	p, err := geometry.PolylineFromCorners([]geometry.IntPoint{pt(0, 0), pt(10, 0), pt(20, 10)})
	require.NoError(t, err)
	require.NoError(t, b.SetPolyline(tr, p))

	assert.Equal(t, []geometry.IntPoint{pt(0, 0), pt(10, 0), pt(20, 10)}, corners(tr))
	assert.Len(t, b.Tiles(tr), 2)
	assert.Equal(t, []int{other.ID()}, ids(b.EndContacts(tr)))
	assert.Empty(t, b.itemsAt(pt(10, 10).Float(), 0), "old segment left the index")

	degenerate, err := geometry.PolylineFromCorners([]geometry.IntPoint{pt(0, 0), pt(5, 0), pt(5, 5), pt(0, 0)})
	require.NoError(t, err)
	assert.True(t, errors.Is(b.SetPolyline(tr, degenerate), ErrDegenerateTrace))
}

func TestFixedState(t *testing.T) {
	tests := []struct {
		state      FixedState
		userFixed  bool
		deleteable bool
	}{
		{Unfixed, false, true},
		{ShoveFixed, false, true},
		{UserFixed, true, true},
		{SystemFixed, true, true},
		{DeleteFixed, true, false},
	}
	b := newTestBoard(t)
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			tr, err := b.InsertTraceCorners([]geometry.IntPoint{pt(0, int64(tt.state)), pt(5, int64(tt.state))}, 100_000, 0,
				Attributes{Fixed: tt.state})
			require.NoError(t, err)
			assert.Equal(t, tt.userFixed, tr.FixedState().IsUserFixed())
			assert.Equal(t, !tt.deleteable, tr.IsDeleteFixed())

			parsed, ok := ParseFixedState(tt.state.String())
			require.True(t, ok)
			assert.Equal(t, tt.state, parsed)
		})
	}
}
