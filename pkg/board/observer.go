package board

// EventKind tells what happened to an item.
type EventKind int

const (
	ItemInserted EventKind = iota
	ItemChanged
	ItemRemoved
)

func (k EventKind) String() string {
	switch k {
	case ItemInserted:
		return "inserted"
	case ItemChanged:
		return "changed"
	case ItemRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is a notification about one item.
type Event struct {
	Kind EventKind
	Item Item
}

// Observer receives item notifications.
type Observer interface {
	Notify(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

func (f ObserverFunc) Notify(ev Event) { f(ev) }

// AddObserver registers o.
func (b *Board) AddObserver(o Observer) {
	b.observers = append(b.observers, o)
}

// StartNotify opens a batch: notifications are queued until the outermost
// EndNotify.
func (b *Board) StartNotify() {
	b.notifyDepth++
}

// EndNotify closes a batch and delivers the queued notifications once no
// batch is open.
func (b *Board) EndNotify() {
	if b.notifyDepth == 0 {
		return
	}
	b.notifyDepth--
	if b.notifyDepth > 0 {
		return
	}
	pending := b.pending
	b.pending = nil
	for _, ev := range pending {
		b.deliver(ev)
	}
}

func (b *Board) notify(kind EventKind, it Item) {
	b.changes++
	ev := Event{Kind: kind, Item: it}
	if b.notifyDepth > 0 {
		b.pending = append(b.pending, ev)
		return
	}
	b.deliver(ev)
}

func (b *Board) deliver(ev Event) {
	for _, o := range b.observers {
		o.Notify(ev)
	}
}
