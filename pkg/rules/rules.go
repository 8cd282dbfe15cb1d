// Package rules holds the board design rules the item model consumes: the
// layer stack, the clearance matrix, nets and net classes.
package rules

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// DefaultClass is the name of the net class used for nets without a class.
const DefaultClass = "Default"

// NetClass groups nets that share routing rules.
type NetClass struct {
	Name           string
	ClearanceClass int
	TraceHalfWidth int64
	ShoveFixed     bool
	PullTight      bool
	// IgnoreCyclesWithAreas excludes conduction areas from cycle detection
	// for traces of this class.
	IgnoreCyclesWithAreas bool
}

// Net is one electrical net.
type Net struct {
	Number int
	Name   string
	Class  string
}

// Rules is the complete rule set of a board.
type Rules struct {
	Layers LayerStructure
	Matrix *ClearanceMatrix

	// ViaAtSMDAllowed permits vias inside single layer pads.
	ViaAtSMDAllowed bool
	// FanoutTraceLength is the longest trace still counted as a fanout stub.
	FanoutTraceLength int64
	// TraceJoinHalfSize is the half side of the square trace join shape.
	TraceJoinHalfSize int64

	nets    map[int]*Net
	classes map[string]NetClass
}

// New creates rules for the given layers and clearance matrix with a single
// default net class.
func New(layers LayerStructure, clearance *ClearanceMatrix) *Rules {
	r := &Rules{
		Layers:            layers,
		Matrix:            clearance,
		FanoutTraceLength: 1_000_000,
		TraceJoinHalfSize: 1_000,
		nets:              make(map[int]*Net),
		classes:           make(map[string]NetClass),
	}
	r.classes[DefaultClass] = NetClass{Name: DefaultClass, TraceHalfWidth: 125_000, PullTight: true}
	return r
}

// Default returns two layer rules (F.Cu, B.Cu) with one clearance class and
// a 0.2 mm clearance.
func Default() *Rules {
	layers := NewLayerStructure([]Layer{{Name: "F.Cu", Signal: true}, {Name: "B.Cu", Signal: true}})
	m := NewClearanceMatrix([]string{"default"}, layers.Count())
	m.Set(0, 0, 200_000)
	return New(layers, m)
}

// Clearance returns the required clearance between two clearance classes on
// a layer.
func (r *Rules) Clearance(a, b, layer int) int64 {
	return r.Matrix.Value(a, b, layer)
}

// MaxClearance returns the largest clearance class a needs on layer.
func (r *Rules) MaxClearance(a, layer int) int64 {
	return r.Matrix.MaxValue(a, layer)
}

// AddNet registers or replaces a net.
func (r *Rules) AddNet(n Net) {
	if n.Class == "" {
		n.Class = DefaultClass
	}
	r.nets[n.Number] = &n
}

// Net returns the net with the given number.
func (r *Rules) Net(number int) (Net, bool) {
	n, ok := r.nets[number]
	if !ok {
		return Net{}, false
	}
	return *n, true
}

// NetByName returns the net with the given name.
func (r *Rules) NetByName(name string) (Net, bool) {
	for _, n := range r.nets {
		if n.Name == name {
			return *n, true
		}
	}
	return Net{}, false
}

// Nets returns all nets sorted by number.
func (r *Rules) Nets() []Net {
	out := make([]Net, 0, len(r.nets))
	for _, k := range slices.Sorted(maps.Keys(r.nets)) {
		out = append(out, *r.nets[k])
	}
	return out
}

// AddNetClass registers or replaces a net class.
func (r *Rules) AddNetClass(c NetClass) {
	r.classes[c.Name] = c
}

// NetClass returns the class with the given name.
func (r *Rules) NetClass(name string) (NetClass, bool) {
	c, ok := r.classes[name]
	return c, ok
}

// NetClasses returns all classes sorted by name.
func (r *Rules) NetClasses() []NetClass {
	out := slices.Collect(maps.Values(r.classes))
	slices.SortFunc(out, func(a, b NetClass) int { return cmp.Compare(a.Name, b.Name) })
	return out
}

// NetClassOf returns the class of a net. Unknown nets and nets without a
// registered class get the default class.
func (r *Rules) NetClassOf(net int) NetClass {
	if n, ok := r.nets[net]; ok {
		if c, ok := r.classes[n.Class]; ok {
			return c
		}
	}
	return r.classes[DefaultClass]
}

// IgnoreCyclesWithAreas reports whether cycle detection skips conduction
// areas for the given nets. The first net decides.
func (r *Rules) IgnoreCyclesWithAreas(nets []int) bool {
	if len(nets) == 0 {
		return false
	}
	return r.NetClassOf(nets[0]).IgnoreCyclesWithAreas
}

// IsShoveFixed reports whether traces of the net may not be shoved.
func (r *Rules) IsShoveFixed(net int) bool {
	return r.NetClassOf(net).ShoveFixed
}

// CanPullTight reports whether traces of the net may be optimized.
func (r *Rules) CanPullTight(net int) bool {
	return r.NetClassOf(net).PullTight
}

// Validate checks the rule set for consistency.
func (r *Rules) Validate() error {
	var errs []error
	if r.Layers.Count() == 0 {
		errs = append(errs, errors.New("at least one layer is required"))
	}
	if r.Matrix == nil || r.Matrix.ClassCount() == 0 {
		errs = append(errs, errors.New("at least one clearance class is required"))
	}
	if r.FanoutTraceLength < 0 {
		errs = append(errs, fmt.Errorf("fanout_trace_length must be >= 0, got %d", r.FanoutTraceLength))
	}
	if r.TraceJoinHalfSize <= 0 {
		errs = append(errs, fmt.Errorf("trace_join_half_size must be > 0, got %d", r.TraceJoinHalfSize))
	}
	if _, ok := r.classes[DefaultClass]; !ok {
		errs = append(errs, fmt.Errorf("net class %q is required", DefaultClass))
	}
	for _, c := range r.NetClasses() {
		if r.Matrix != nil && (c.ClearanceClass < 0 || c.ClearanceClass >= r.Matrix.ClassCount()) {
			errs = append(errs, fmt.Errorf("net class %q: clearance class %d out of range", c.Name, c.ClearanceClass))
		}
		if c.TraceHalfWidth < 0 {
			errs = append(errs, fmt.Errorf("net class %q: trace_half_width must be >= 0", c.Name))
		}
	}
	for _, n := range r.Nets() {
		if n.Number <= 0 {
			errs = append(errs, fmt.Errorf("net %q: number must be > 0, got %d", n.Name, n.Number))
		}
		if _, ok := r.classes[n.Class]; !ok {
			errs = append(errs, fmt.Errorf("net %q: unknown net class %q", n.Name, n.Class))
		}
	}
	return errors.Join(errs...)
}
