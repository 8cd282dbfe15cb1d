package rules

import "log/slog"

// ClearanceMatrix holds the required spacing between two clearance classes
// on each layer. Values are symmetric.
type ClearanceMatrix struct {
	names  []string
	values [][][]int64 // [layer][a][b]
}

// NewClearanceMatrix creates a matrix with all clearances zero.
func NewClearanceMatrix(classNames []string, layerCount int) *ClearanceMatrix {
	m := &ClearanceMatrix{names: append([]string(nil), classNames...)}
	n := len(classNames)
	m.values = make([][][]int64, layerCount)
	for l := range m.values {
		m.values[l] = make([][]int64, n)
		for a := range m.values[l] {
			m.values[l][a] = make([]int64, n)
		}
	}
	return m
}

// ClassCount returns the number of clearance classes.
func (m *ClearanceMatrix) ClassCount() int { return len(m.names) }

// ClassName returns the name of class i.
func (m *ClearanceMatrix) ClassName(i int) string {
	if i < 0 || i >= len(m.names) {
		return ""
	}
	return m.names[i]
}

// ClassIndex returns the class number of name.
func (m *ClearanceMatrix) ClassIndex(name string) (int, bool) {
	for i, n := range m.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// Set sets the clearance between a and b on every layer.
func (m *ClearanceMatrix) Set(a, b int, value int64) {
	for l := range m.values {
		m.SetOnLayer(a, b, l, value)
	}
}

// SetOnLayer sets the clearance between a and b on one layer.
func (m *ClearanceMatrix) SetOnLayer(a, b, layer int, value int64) {
	if !m.valid(a, b, layer) {
		return
	}
	m.values[layer][a][b] = value
	m.values[layer][b][a] = value
}

// Value returns the clearance between classes a and b on layer. Out of range
// arguments yield zero.
func (m *ClearanceMatrix) Value(a, b, layer int) int64 {
	if !m.valid(a, b, layer) {
		slog.Debug("clearance lookup out of range",
			slog.Int("class_a", a), slog.Int("class_b", b), slog.Int("layer", layer))
		return 0
	}
	return m.values[layer][a][b]
}

// MaxValue returns the largest clearance of class a to any class on layer.
func (m *ClearanceMatrix) MaxValue(a, layer int) int64 {
	if !m.valid(a, a, layer) {
		return 0
	}
	var best int64
	for _, v := range m.values[layer][a] {
		best = max(best, v)
	}
	return best
}

func (m *ClearanceMatrix) valid(a, b, layer int) bool {
	return layer >= 0 && layer < len(m.values) &&
		a >= 0 && a < len(m.names) && b >= 0 && b < len(m.names)
}
