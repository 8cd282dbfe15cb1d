package board

// FixedState tells how strongly an item is protected against changes by
// interactive and automatic routing. States are ordered.
type FixedState int

const (
	Unfixed FixedState = iota
	ShoveFixed
	UserFixed
	SystemFixed
	DeleteFixed
)

var fixedStateNames = [...]string{"unfixed", "shove_fixed", "user_fixed", "system_fixed", "delete_fixed"}

func (s FixedState) String() string {
	if s < 0 || int(s) >= len(fixedStateNames) {
		return "unknown"
	}
	return fixedStateNames[s]
}

// ParseFixedState returns the state with the given name.
func ParseFixedState(name string) (FixedState, bool) {
	for i, n := range fixedStateNames {
		if n == name {
			return FixedState(i), true
		}
	}
	return Unfixed, false
}

// IsUserFixed reports whether s is at least UserFixed.
func (s FixedState) IsUserFixed() bool { return s >= UserFixed }
