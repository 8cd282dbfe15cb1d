package board

import "sync/atomic"

// IDSource hands out increasing item ids.
type IDSource struct {
	last atomic.Int64
}

// Next returns a fresh id.
func (s *IDSource) Next() int {
	return int(s.last.Add(1))
}

// Observe makes sure later ids are larger than id.
func (s *IDSource) Observe(id int) {
	for {
		cur := s.last.Load()
		if int64(id) <= cur || s.last.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}
