package board

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// NetIslands returns the groups of connected copper items of net: traces,
// drill items and planes. Each group is sorted by id, groups by their first
// id. A fully routed net has a single island.
func (b *Board) NetIslands(net int) [][]Item {
	g := simple.NewUndirectedGraph()
	members := make(map[int64]Item)
	for _, it := range b.Items() {
		if !it.Nets().Contains(net) || !isCopper(it) {
			continue
		}
		members[int64(it.ID())] = it
		g.AddNode(simple.Node(it.ID()))
	}
	for id, it := range members {
		for _, c := range b.NormalContacts(it) {
			cid := int64(c.ID())
			if _, ok := members[cid]; !ok || cid == id {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(id), simple.Node(cid)))
		}
	}

	var islands [][]Item
	for _, component := range topo.ConnectedComponents(g) {
		island := make([]Item, 0, len(component))
		for _, n := range component {
			island = append(island, members[n.ID()])
		}
		sortItems(island)
		islands = append(islands, island)
	}
	slices.SortFunc(islands, func(x, y []Item) int { return cmp.Compare(x[0].ID(), y[0].ID()) })
	return islands
}

// Incomplete reports whether net consists of more than one island.
func (b *Board) Incomplete(net int) bool {
	return len(b.NetIslands(net)) > 1
}

func isCopper(it Item) bool {
	switch it.(type) {
	case *Trace, *Pin, *Via, *TraceJoin, *ConductionArea:
		return true
	}
	return false
}
