package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

func TestSnapshotLogUndo(t *testing.T) {
	log := NewSnapshotLog()
	b := newTestBoard(t, WithUndoLog(log))
	h := addTrace(t, b, 1, 0, pt(0, 0), pt(20, 0))
	v := addTrace(t, b, 1, 0, pt(10, -10), pt(10, 10))
	hID, vID := h.ID(), v.ID()

	log.Generate()
	require.True(t, b.Normalize(h))
	require.Len(t, b.Traces(), 4)

	require.True(t, log.Undo(b))
	traces := b.Traces()
	require.Len(t, traces, 2)
	assert.Equal(t, []int{hID, vID}, ids(traces))
	assert.Equal(t, []geometry.IntPoint{pt(0, 0), pt(20, 0)}, corners(traces[0]))
	assert.Equal(t, []geometry.IntPoint{pt(10, -10), pt(10, 10)}, corners(traces[1]))
	assert.Len(t, b.Tiles(traces[0]), 1)

	t.Run("restored items are indexed", func(t *testing.T) {
		assert.Empty(t, b.NormalContacts(traces[0]))
		assert.Len(t, b.ClearanceViolations(traces[0]), 0)
		assert.True(t, b.Normalize(traces[0]))
		assert.Len(t, b.Traces(), 4)
	})

	t.Run("new ids stay unique", func(t *testing.T) {
		fresh := addTrace(t, b, 2, 1, pt(0, 0), pt(5, 0))
		for _, tr := range b.Traces() {
			if tr != fresh {
				assert.Less(t, tr.ID(), fresh.ID())
			}
		}
	})
}

func TestSnapshotLogGenerations(t *testing.T) {
	log := NewSnapshotLog()
	b := newTestBoard(t, WithUndoLog(log))
	tr := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	log.Generate()
	b.ChangeFixedState(tr, UserFixed)
	log.Generate()
	require.NoError(t, b.MoveBy(tr, geometry.Vector{Y: mm}))
	assert.Equal(t, 3, log.Len())

	require.True(t, log.Undo(b))
	restored, ok := b.Item(tr.ID())
	require.True(t, ok)
	assert.Equal(t, []geometry.IntPoint{pt(0, 0), pt(10, 0)}, corners(restored.(*Trace)))
	assert.Equal(t, UserFixed, restored.FixedState())

	require.True(t, log.Undo(b))
	restored, _ = b.Item(tr.ID())
	assert.Equal(t, Unfixed, restored.FixedState())

	require.True(t, log.Undo(b))
	assert.Equal(t, 0, b.Len())
	assert.False(t, log.Undo(b))
}

type recorder struct {
	events []Event
}

func (r *recorder) Notify(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) kinds() []EventKind {
	out := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Kind
	}
	return out
}

func TestObserverBatching(t *testing.T) {
	b := newTestBoard(t)
	rec := &recorder{}
	b.AddObserver(rec)

	tr := addTrace(t, b, 1, 0, pt(0, 0), pt(10, 0))
	assert.Equal(t, []EventKind{ItemInserted}, rec.kinds())

	b.StartNotify()
	b.StartNotify()
	b.ChangeClearanceClass(tr, 0)
	b.ChangeFixedState(tr, UserFixed)
	b.RemoveItem(tr)
	b.EndNotify()
	assert.Len(t, rec.events, 1, "queued until the outer batch ends")
	b.EndNotify()
	assert.Equal(t, []EventKind{ItemInserted, ItemChanged, ItemRemoved}, rec.kinds())
	assert.Equal(t, tr.ID(), rec.events[2].Item.ID())

	b.EndNotify()
	assert.Len(t, rec.events, 3)
}

func TestObserverNormalize(t *testing.T) {
	b := newTestBoard(t)
	h := addTrace(t, b, 1, 0, pt(0, 0), pt(20, 0))
	addTrace(t, b, 1, 0, pt(10, -10), pt(10, 10))

	var seen []string
	b.AddObserver(ObserverFunc(func(ev Event) { seen = append(seen, ev.Kind.String()) }))
	b.Normalize(h)
	assert.Contains(t, seen, "removed")
	assert.Contains(t, seen, "inserted")
	assert.Equal(t, "unknown", EventKind(9).String())
}
