package board

// UndoLog records item state before the board changes it.
type UndoLog interface {
	// Saved is called before it is changed or removed.
	Saved(it Item)
	// Inserted is called after it was inserted.
	Inserted(it Item)
}

type noUndo struct{}

func (noUndo) Saved(Item)    {}
func (noUndo) Inserted(Item) {}

type snapshot struct {
	id     int
	before Item // nil when the item did not exist
}

// SnapshotLog is an in-memory UndoLog. Changes are grouped into generations;
// Undo reverts the most recent one.
type SnapshotLog struct {
	generations [][]snapshot
	seen        map[int]struct{}
}

// NewSnapshotLog returns an empty log with one open generation.
func NewSnapshotLog() *SnapshotLog {
	l := &SnapshotLog{}
	l.Generate()
	return l
}

// Generate starts a new generation.
func (l *SnapshotLog) Generate() {
	l.generations = append(l.generations, nil)
	l.seen = make(map[int]struct{})
}

// Len returns the number of generations holding changes.
func (l *SnapshotLog) Len() int {
	n := 0
	for _, g := range l.generations {
		if len(g) > 0 {
			n++
		}
	}
	return n
}

func (l *SnapshotLog) Saved(it Item) {
	l.record(it.ID(), it.clone())
}

func (l *SnapshotLog) Inserted(it Item) {
	l.record(it.ID(), nil)
}

// record keeps only the first state of an item per generation.
func (l *SnapshotLog) record(id int, before Item) {
	if _, ok := l.seen[id]; ok {
		return
	}
	l.seen[id] = struct{}{}
	last := len(l.generations) - 1
	l.generations[last] = append(l.generations[last], snapshot{id: id, before: before})
}

// Undo restores the state before the most recent generation with changes.
// It reports false if there is nothing to undo.
func (l *SnapshotLog) Undo(b *Board) bool {
	for len(l.generations) > 0 {
		last := len(l.generations) - 1
		gen := l.generations[last]
		l.generations = l.generations[:last]
		if len(gen) == 0 {
			continue
		}
		saved := b.undo
		b.undo = noUndo{}
		b.StartNotify()
		for i := len(gen) - 1; i >= 0; i-- {
			s := gen[i]
			if cur, ok := b.items[s.id]; ok {
				b.remove(cur)
			}
			if s.before != nil {
				if err := b.insert(s.before.clone()); err != nil {
					b.logger.Warn("failed to restore item", "id", s.id, "error", err)
				}
			}
		}
		b.EndNotify()
		b.undo = saved
		l.Generate()
		return true
	}
	l.Generate()
	return false
}
