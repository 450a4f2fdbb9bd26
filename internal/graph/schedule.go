package graph

import (
	"sort"

	"github.com/morozRed/adaptivedoc/internal/parser"
)

// Order is the processing sequence produced by Schedule.
type Order struct {
	Names  []string `json:"names"`
	Cycle  bool     `json:"cycle"`
	Cyclic []string `json:"cyclic,omitempty"` // nodes left unsorted when Cycle is set
}

// Position returns the index of name in the order, or -1.
func (o Order) Position(name string) int {
	for i, candidate := range o.Names {
		if candidate == name {
			return i
		}
	}
	return -1
}

// Schedule sorts the connected part of g topologically and appends every
// remaining discovered symbol in discovery order. Ties between ready nodes are
// broken by discovery order, so the result is deterministic.
//
// When the graph has a cycle no error is returned: the connected nodes are
// emitted in discovery order instead and Cycle is set. Every qualified name in
// symbols appears exactly once in the result; graph nodes without a discovered
// symbol are left out.
func Schedule(g *Graph, symbols []parser.Symbol) Order {
	rank := make(map[string]int, len(symbols))
	for _, sym := range symbols {
		if _, ok := rank[sym.QualifiedName]; !ok {
			rank[sym.QualifiedName] = len(rank)
		}
	}
	discovered := len(rank)
	for _, id := range g.order {
		if _, ok := rank[id]; !ok {
			rank[id] = len(rank)
		}
	}
	byRank := func(ids []string) {
		sort.SliceStable(ids, func(i, j int) bool { return rank[ids[i]] < rank[ids[j]] })
	}

	connected := make([]string, 0, len(g.order))
	inDegree := make(map[string]int, len(g.order))
	for _, id := range g.order {
		if !g.Connected(id) {
			continue
		}
		connected = append(connected, id)
		inDegree[id] = len(g.Nodes[id].Dependencies)
	}
	byRank(connected)

	ready := make([]string, 0)
	for _, id := range connected {
		if inDegree[id] == 0 {
			ready = append(ready, id)
		}
	}

	sorted := make([]string, 0, len(connected))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		sorted = append(sorted, id)

		for _, dependent := range g.Nodes[id].Dependents {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready = insertByRank(ready, dependent, rank)
			}
		}
	}

	order := Order{}
	if len(sorted) != len(connected) {
		order.Cycle = true
		for _, id := range connected {
			if inDegree[id] > 0 {
				order.Cyclic = append(order.Cyclic, id)
			}
		}
		sorted = connected
	}

	seen := make(map[string]bool, len(rank))
	order.Names = make([]string, 0, len(rank))
	for _, id := range sorted {
		if seen[id] || rank[id] >= discovered {
			continue
		}
		seen[id] = true
		order.Names = append(order.Names, id)
	}
	for _, sym := range symbols {
		if seen[sym.QualifiedName] {
			continue
		}
		seen[sym.QualifiedName] = true
		order.Names = append(order.Names, sym.QualifiedName)
	}

	return order
}

func insertByRank(ready []string, id string, rank map[string]int) []string {
	pos := sort.Search(len(ready), func(i int) bool { return rank[ready[i]] > rank[id] })
	ready = append(ready, "")
	copy(ready[pos+1:], ready[pos:])
	ready[pos] = id
	return ready
}
