package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/library"
	"github.com/OpenTraceLab/OpenTraceRoute/pkg/rules"
)

func TestClearanceViolationsBetweenTraces(t *testing.T) {
	tests := []struct {
		name   string
		net    int
		offset int64
		want   int
	}{
		{"too close", 2, 300_000, 1},
		{"far enough", 2, mm, 0},
		{"same net", 1, 300_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t)
			a := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
			c := addTrace(t, b, tt.net, 0, geometry.IntPoint{Y: tt.offset}, geometry.IntPoint{X: 10 * mm, Y: tt.offset})

			fromA := b.ClearanceViolations(a)
			fromC := b.ClearanceViolations(c)
			require.Len(t, fromA, tt.want)
			require.Len(t, fromC, tt.want)
			assert.Len(t, b.AllClearanceViolations(), tt.want)
			if tt.want == 0 {
				return
			}
			assert.Equal(t, a.ID(), fromA[0].First.ID())
			assert.Equal(t, c.ID(), fromA[0].Second.ID())
			assert.Equal(t, c.ID(), fromC[0].First.ID())
			assert.InDelta(t, fromA[0].Overlap.Area(), fromC[0].Overlap.Area(), 1)
			assert.Positive(t, fromA[0].Overlap.Area())
		})
	}
}

func TestClearanceAcrossClasses(t *testing.T) {
	r := rules.Default()
	r.AddNet(rules.Net{Number: 1, Name: "A"})
	r.AddNet(rules.Net{Number: 2, Name: "B"})
	m := rules.NewClearanceMatrix([]string{"default", "hv"}, r.Layers.Count())
	m.Set(0, 0, 200_000)
	m.Set(1, 1, 200_000)
	m.Set(0, 1, 2*mm)
	r.Matrix = m
	b := New(r, library.New())

	a := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	c := addTrace(t, b, 2, 0, pt(0, 1), pt(10, 1))

	tests := []struct {
		name  string
		class int
		want  int
	}{
		{"same class", 0, 0},
		{"high voltage class", 1, 1},
		{"back to default", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b.ChangeClearanceClass(c, tt.class)
			require.Equal(t, tt.class, c.ClearanceClass())

			fromA := b.ClearanceViolations(a)
			fromC := b.ClearanceViolations(c)
			require.Len(t, fromA, tt.want)
			require.Len(t, fromC, tt.want)
			assert.Len(t, b.AllClearanceViolations(), tt.want)
			if tt.want == 0 {
				return
			}
			assert.Equal(t, c.ID(), fromA[0].Second.ID())
			assert.Equal(t, a.ID(), fromC[0].Second.ID())
			assert.InDelta(t, fromA[0].Overlap.Area(), fromC[0].Overlap.Area(), 1)
		})
	}
}

func TestClearanceOtherLayer(t *testing.T) {
	b := newTestBoard(t)
	a := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	addTrace(t, b, 2, 1, pt(0, 0), pt(10, 0))
	assert.Empty(t, b.ClearanceViolations(a))
}

func TestViaInsidePad(t *testing.T) {
	tests := []struct {
		name          string
		smdAllowed    bool
		attachAllowed bool
		obstacle      bool
	}{
		{"allowed", true, true, false},
		{"via refuses", true, false, true},
		{"rules refuse", false, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t)
			b.Rules().ViaAtSMDAllowed = tt.smdAllowed
			pin := addPin(t, b, smdPadstack, 1, pt(0, 0))
			ps, _ := b.Library().Padstack(viaPadstack)
			v, err := b.InsertVia(pt(0, 0), ps, tt.attachAllowed, onNet(1))
			require.NoError(t, err)

			assert.Equal(t, tt.obstacle, b.IsObstacle(v, pin))
			assert.Equal(t, tt.obstacle, b.IsObstacle(pin, v))
			assert.Equal(t, tt.smdAllowed, pin.DrillAllowed(b))
			if tt.obstacle {
				assert.Len(t, b.ClearanceViolations(v), 1)
			} else {
				assert.Empty(t, b.ClearanceViolations(v))
			}
		})
	}
}

func TestAreaObstacles(t *testing.T) {
	square := rectArea(pt(10, -5), pt(20, 5))
	tests := []struct {
		name   string
		insert func(t *testing.T, b *Board) Item
		trace  bool
		via    bool
	}{
		{
			name: "keepout",
			insert: func(t *testing.T, b *Board) Item {
				a, err := b.InsertArea("keepout", square, 0, 1, Attributes{})
				require.NoError(t, err)
				return a
			},
			trace: true,
			via:   true,
		},
		{
			name: "via keepout",
			insert: func(t *testing.T, b *Board) Item {
				a, err := b.InsertViaKeepout("no vias", square, 0, 1, Attributes{})
				require.NoError(t, err)
				return a
			},
			via: true,
		},
		{
			name: "foreign plane",
			insert: func(t *testing.T, b *Board) Item {
				a, err := b.InsertConductionArea("gnd", square, 0, true, onNet(2))
				require.NoError(t, err)
				return a
			},
			trace: true,
			via:   true,
		},
		{
			name: "plane without obstacle",
			insert: func(t *testing.T, b *Board) Item {
				a, err := b.InsertConductionArea("gnd", square, 0, false, onNet(2))
				require.NoError(t, err)
				return a
			},
		},
		{
			name: "own plane",
			insert: func(t *testing.T, b *Board) Item {
				a, err := b.InsertConductionArea("vcc", square, 0, true, onNet(1))
				require.NoError(t, err)
				return a
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBoard(t)
			area := tt.insert(t, b)
			tr := addTrace(t, b, 1, 0, pt(0, 0), pt(30, 0))
			v := addVia(t, b, 1, pt(15, 0))

			assert.Equal(t, tt.trace, b.IsObstacle(area, tr) && b.IsObstacle(tr, area), "trace")
			assert.Equal(t, tt.via, b.IsObstacle(area, v) && b.IsObstacle(v, area), "via")
			assert.Equal(t, tt.trace, len(b.ClearanceViolations(tr)) > 0)
		})
	}
}

func TestComponentKeepout(t *testing.T) {
	b := newTestBoard(t)
	own := addPin(t, b, smdPadstack, 1, pt(0, 0))
	k, err := b.InsertComponentKeepout("courtyard", rectArea(pt(-2, -2), pt(2, 2)), 0, 0, Attributes{ComponentNo: own.ComponentNo()})
	require.NoError(t, err)
	foreign := addPin(t, b, smdPadstack, 2, pt(1, 0))

	assert.False(t, b.IsObstacle(k, own))
	assert.True(t, b.IsObstacle(k, foreign))
}

func TestOutlineViolations(t *testing.T) {
	b := newTestBoard(t)
	o, err := b.SetOutline([][]geometry.IntPoint{{pt(0, 0), pt(50, 0), pt(50, 50), pt(0, 50)}}, 0, Attributes{Fixed: SystemFixed})
	require.NoError(t, err)
	got, ok := b.Outline()
	require.True(t, ok)
	assert.Equal(t, o.ID(), got.ID())
	assert.True(t, o.Contains(pt(25, 25).Float()))
	assert.False(t, o.Contains(pt(60, 25).Float()))

	inside := addTrace(t, b, 1, 0, pt(10, 10), pt(20, 10))
	crossing := addTrace(t, b, 1, 0, pt(40, 20), pt(60, 20))
	assert.Empty(t, b.ClearanceViolations(inside))
	require.NotEmpty(t, b.ClearanceViolations(crossing))
	for _, v := range b.ClearanceViolations(crossing) {
		assert.Equal(t, o.ID(), v.Second.ID())
	}

	replaced, err := b.SetOutline([][]geometry.IntPoint{{pt(0, 0), pt(100, 0), pt(100, 100), pt(0, 100)}}, 0, Attributes{})
	require.NoError(t, err)
	assert.False(t, o.IsOnBoard())
	assert.True(t, replaced.IsOnBoard())
	assert.Empty(t, b.ClearanceViolations(crossing))
}

func TestTiePinExemption(t *testing.T) {
	b := newTestBoard(t)
	lib := b.Library()
	lib.AddPackage(&library.Package{No: 1, Name: "NetTie", Pins: []library.PackagePin{{Name: "1", Padstack: thtPadstack}}})
	b.AddComponent(Component{No: 1, Name: "NT1", Package: 1, Location: pt(0, 0), OnFront: true})
	_, err := b.InsertPin(1, 0, Attributes{Nets: NewNetSet(1, 2)})
	require.NoError(t, err)

	a := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	c := addTrace(t, b, 2, 0, pt(0, 0), pt(0, 10))
	assert.True(t, b.IsObstacle(a, c))
	assert.Empty(t, b.ClearanceViolations(a))
	assert.Empty(t, b.ClearanceViolations(c))
}
