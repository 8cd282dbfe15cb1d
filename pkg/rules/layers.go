package rules

// Layer is one copper layer of the board stack.
type Layer struct {
	Name   string
	Signal bool
}

// LayerStructure is the ordered copper layer stack, front to back.
type LayerStructure struct {
	layers []Layer
	index  map[string]int
}

// NewLayerStructure creates a layer stack.
func NewLayerStructure(layers []Layer) LayerStructure {
	ls := LayerStructure{layers: append([]Layer(nil), layers...), index: make(map[string]int, len(layers))}
	for i, l := range layers {
		ls.index[l.Name] = i
	}
	return ls
}

// Count returns the number of layers.
func (ls LayerStructure) Count() int { return len(ls.layers) }

// Index returns the layer number of name.
func (ls LayerStructure) Index(name string) (int, bool) {
	i, ok := ls.index[name]
	return i, ok
}

// Name returns the name of layer i, or "" if out of range.
func (ls LayerStructure) Name(i int) string {
	if i < 0 || i >= len(ls.layers) {
		return ""
	}
	return ls.layers[i].Name
}

// Valid reports whether i is a layer number.
func (ls LayerStructure) Valid(i int) bool {
	return i >= 0 && i < len(ls.layers)
}

// Layers returns a copy of the layer list.
func (ls LayerStructure) Layers() []Layer {
	return append([]Layer(nil), ls.layers...)
}
