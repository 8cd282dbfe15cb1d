package rules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a rule set. Lengths are integer board units
// (nanometres).
type File struct {
	Layers            []string         `yaml:"layers"`
	ViaAtSMDAllowed   bool             `yaml:"via_at_smd_allowed"`
	FanoutTraceLength *int64           `yaml:"fanout_trace_length"`
	TraceJoinHalfSize *int64           `yaml:"trace_join_half_size"`
	ClearanceClasses  []string         `yaml:"clearance_classes"`
	Clearances        []ClearanceEntry `yaml:"clearances"`
	NetClasses        []NetClassEntry  `yaml:"net_classes"`
	Nets              []NetEntry       `yaml:"nets"`
}

// ClearanceEntry sets the clearance between two classes, optionally only on
// the named layers.
type ClearanceEntry struct {
	Classes [2]string `yaml:"classes"`
	Value   int64     `yaml:"value"`
	Layers  []string  `yaml:"layers,omitempty"`
}

// NetClassEntry is the YAML form of a NetClass.
type NetClassEntry struct {
	Name                  string `yaml:"name"`
	ClearanceClass        string `yaml:"clearance_class"`
	TraceHalfWidth        int64  `yaml:"trace_half_width"`
	ShoveFixed            bool   `yaml:"shove_fixed"`
	PullTight             *bool  `yaml:"pull_tight"`
	IgnoreCyclesWithAreas bool   `yaml:"ignore_cycles_with_areas"`
}

// NetEntry is the YAML form of a Net.
type NetEntry struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
	Class  string `yaml:"class"`
}

// LoadFile reads and validates a YAML rules file.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a YAML rule set. Omitted sections fall back to
// Default.
func Parse(data []byte) (*Rules, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	r, err := f.Build()
	if err != nil {
		return nil, err
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules: %w", err)
	}
	return r, nil
}

// Build converts the file form into Rules.
func (f File) Build() (*Rules, error) {
	def := Default()

	layers := def.Layers
	if len(f.Layers) > 0 {
		ls := make([]Layer, len(f.Layers))
		for i, name := range f.Layers {
			ls[i] = Layer{Name: name, Signal: true}
		}
		layers = NewLayerStructure(ls)
	}

	classNames := f.ClearanceClasses
	if len(classNames) == 0 {
		classNames = []string{def.Matrix.ClassName(0)}
	}
	m := NewClearanceMatrix(classNames, layers.Count())
	if len(f.Clearances) == 0 {
		m.Set(0, 0, def.Clearance(0, 0, 0))
	}
	var errs []error
	for _, c := range f.Clearances {
		a, okA := m.ClassIndex(c.Classes[0])
		b, okB := m.ClassIndex(c.Classes[1])
		if !okA || !okB {
			errs = append(errs, fmt.Errorf("clearance %v: unknown clearance class", c.Classes))
			continue
		}
		if c.Value < 0 {
			errs = append(errs, fmt.Errorf("clearance %v: value must be >= 0", c.Classes))
			continue
		}
		if len(c.Layers) == 0 {
			m.Set(a, b, c.Value)
			continue
		}
		for _, name := range c.Layers {
			l, ok := layers.Index(name)
			if !ok {
				errs = append(errs, fmt.Errorf("clearance %v: unknown layer %q", c.Classes, name))
				continue
			}
			m.SetOnLayer(a, b, l, c.Value)
		}
	}

	r := New(layers, m)
	r.ViaAtSMDAllowed = f.ViaAtSMDAllowed
	if f.FanoutTraceLength != nil {
		r.FanoutTraceLength = *f.FanoutTraceLength
	}
	if f.TraceJoinHalfSize != nil {
		r.TraceJoinHalfSize = *f.TraceJoinHalfSize
	}
	for _, c := range f.NetClasses {
		nc := NetClass{
			Name:                  c.Name,
			TraceHalfWidth:        c.TraceHalfWidth,
			ShoveFixed:            c.ShoveFixed,
			PullTight:             true,
			IgnoreCyclesWithAreas: c.IgnoreCyclesWithAreas,
		}
		if c.PullTight != nil {
			nc.PullTight = *c.PullTight
		}
		if c.ClearanceClass != "" {
			idx, ok := m.ClassIndex(c.ClearanceClass)
			if !ok {
				errs = append(errs, fmt.Errorf("net class %q: unknown clearance class %q", c.Name, c.ClearanceClass))
				continue
			}
			nc.ClearanceClass = idx
		}
		r.AddNetClass(nc)
	}
	for _, n := range f.Nets {
		r.AddNet(Net{Number: n.Number, Name: n.Name, Class: n.Class})
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to build rules: %w", err)
	}
	return r, nil
}
