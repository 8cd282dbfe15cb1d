package board

// memo caches a value derived from an item's geometry until invalidated.
type memo[T any] struct {
	value T
	valid bool
}

func (m *memo[T]) get(compute func() T) T {
	if !m.valid {
		m.value = compute()
		m.valid = true
	}
	return m.value
}

func (m *memo[T]) invalidate() {
	var zero T
	m.value = zero
	m.valid = false
}
