package board

import (
	"slices"
	"strconv"
	"strings"
)

// NetSet is a sorted set of net numbers. Net numbers are positive; the zero
// value is the empty set.
type NetSet struct {
	nets []int
}

// NewNetSet returns the set of the given positive net numbers.
func NewNetSet(nets ...int) NetSet {
	out := make([]int, 0, len(nets))
	for _, n := range nets {
		if n > 0 {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return NetSet{nets: slices.Compact(out)}
}

// Len returns the number of nets.
func (s NetSet) Len() int { return len(s.nets) }

// IsEmpty reports whether the set has no nets.
func (s NetSet) IsEmpty() bool { return len(s.nets) == 0 }

// Slice returns the nets in ascending order.
func (s NetSet) Slice() []int { return slices.Clone(s.nets) }

// First returns the smallest net, 0 for the empty set.
func (s NetSet) First() int {
	if len(s.nets) == 0 {
		return 0
	}
	return s.nets[0]
}

// Contains reports whether net is in the set.
func (s NetSet) Contains(net int) bool {
	_, ok := slices.BinarySearch(s.nets, net)
	return ok
}

// Intersects reports whether the sets share a net.
func (s NetSet) Intersects(o NetSet) bool {
	i, j := 0, 0
	for i < len(s.nets) && j < len(o.nets) {
		switch {
		case s.nets[i] == o.nets[j]:
			return true
		case s.nets[i] < o.nets[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// Union returns the nets in either set.
func (s NetSet) Union(o NetSet) NetSet {
	return NewNetSet(append(slices.Clone(s.nets), o.nets...)...)
}

// Intersection returns the nets in both sets.
func (s NetSet) Intersection(o NetSet) NetSet {
	var out []int
	for _, n := range s.nets {
		if o.Contains(n) {
			out = append(out, n)
		}
	}
	return NetSet{nets: out}
}

// Equal reports whether both sets hold the same nets.
func (s NetSet) Equal(o NetSet) bool {
	return slices.Equal(s.nets, o.nets)
}

func (s NetSet) String() string {
	parts := make([]string, len(s.nets))
	for i, n := range s.nets {
		parts[i] = strconv.Itoa(n)
	}
	return "{" + strings.Join(parts, " ") + "}"
}
