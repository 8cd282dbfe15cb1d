package library

import (
	"cmp"
	"math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/geometry"
)

// PackagePin places one padstack inside a package.
type PackagePin struct {
	Name     string
	Padstack int
	// Offset is relative to the package origin.
	Offset geometry.IntPoint
	// Rotation of the pad in degrees, relative to the package.
	Rotation float64
}

// Package is a footprint: a named set of pins.
type Package struct {
	No   int
	Name string
	Pins []PackagePin
}

// Pin returns pin i.
func (p *Package) Pin(i int) (PackagePin, bool) {
	if p == nil || i < 0 || i >= len(p.Pins) {
		return PackagePin{}, false
	}
	return p.Pins[i], true
}

// Library is the collection of padstacks and packages of a board.
type Library struct {
	padstacks map[int]*Padstack
	packages  map[int]*Package
}

// New creates an empty library.
func New() *Library {
	return &Library{padstacks: make(map[int]*Padstack), packages: make(map[int]*Package)}
}

// AddPadstack registers a padstack under its number.
func (l *Library) AddPadstack(p *Padstack) {
	l.padstacks[p.No] = p
}

// Padstack returns the padstack with number no.
func (l *Library) Padstack(no int) (*Padstack, bool) {
	p, ok := l.padstacks[no]
	return p, ok
}

// PadstackByName returns the padstack with the given name.
func (l *Library) PadstackByName(name string) (*Padstack, bool) {
	for _, p := range l.Padstacks() {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Padstacks returns all padstacks sorted by number.
func (l *Library) Padstacks() []*Padstack {
	out := make([]*Padstack, 0, len(l.padstacks))
	for _, p := range l.padstacks {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b *Padstack) int { return cmp.Compare(a.No, b.No) })
	return out
}

// NextPadstackNo returns an unused padstack number.
func (l *Library) NextPadstackNo() int {
	n := 1
	for no := range l.padstacks {
		n = max(n, no+1)
	}
	return n
}

// AddPackage registers a package under its number.
func (l *Library) AddPackage(p *Package) {
	l.packages[p.No] = p
}

// Package returns the package with number no.
func (l *Library) Package(no int) (*Package, bool) {
	p, ok := l.packages[no]
	return p, ok
}

// NextPackageNo returns an unused package number.
func (l *Library) NextPackageNo() int {
	n := 1
	for no := range l.packages {
		n = max(n, no+1)
	}
	return n
}

func rotate(p r2.Point, degrees float64) r2.Point {
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return r2.Point{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos}
}
