package graph

import (
	"github.com/morozRed/adaptivedoc/internal/fileutil"
	"github.com/morozRed/adaptivedoc/internal/parser"
)

// Node represents a symbol in the dependency graph
type Node struct {
	ID           string         // qualified name
	Symbol       *parser.Symbol // nil when no discovered symbol carries this name
	Dependencies []string       // nodes this node calls (edge Dependency -> ID)
	Dependents   []string       // nodes calling this node (edge ID -> Dependent)
}

// Edge is a directed dependency -> dependent pair.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph represents the codebase dependency graph. It is built once and is
// read-only afterward, so it can be shared across goroutines.
type Graph struct {
	Nodes map[string]*Node // ID -> Node
	order []string
	edges []Edge
}

// Stats summarizes how call sites were resolved during Build.
type Stats struct {
	Calls      int `json:"calls" yaml:"calls"`
	Edges      int `json:"edges" yaml:"edges"`
	Denied     int `json:"denied" yaml:"denied"`
	Unresolved int `json:"unresolved" yaml:"unresolved"`
	SelfCalls  int `json:"self_calls" yaml:"self_calls"`
	Shadowed   int `json:"shadowed" yaml:"shadowed"`
}

// Options configures graph construction.
type Options struct {
	Deny *DenyList // nil uses DefaultDenyList
}

// NewGraph creates a new empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes: make(map[string]*Node),
	}
}

// AddNode inserts id if missing. The first non-nil symbol is kept.
func (g *Graph) AddNode(id string, sym *parser.Symbol) *Node {
	if node, ok := g.Nodes[id]; ok {
		if node.Symbol == nil {
			node.Symbol = sym
		}
		return node
	}
	node := &Node{ID: id, Symbol: sym}
	g.Nodes[id] = node
	g.order = append(g.order, id)
	return node
}

// AddEdge records dependency -> dependent. Both endpoints must already be
// nodes; self edges and duplicates are ignored. It reports whether a new edge
// was added.
func (g *Graph) AddEdge(dependency, dependent string) bool {
	if dependency == dependent { // Don't self-reference
		return false
	}
	from, ok := g.Nodes[dependency]
	if !ok {
		return false
	}
	to, ok := g.Nodes[dependent]
	if !ok {
		return false
	}
	for _, existing := range from.Dependents {
		if existing == dependent {
			return false
		}
	}
	from.Dependents = append(from.Dependents, dependent)
	to.Dependencies = append(to.Dependencies, dependency)
	g.edges = append(g.edges, Edge{From: dependency, To: dependent})
	return true
}

// HasNode reports whether id is a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Nodes[id]
	return ok
}

// HasEdge reports whether dependency -> dependent was recorded.
func (g *Graph) HasEdge(dependency, dependent string) bool {
	node, ok := g.Nodes[dependency]
	if !ok {
		return false
	}
	for _, id := range node.Dependents {
		if id == dependent {
			return true
		}
	}
	return false
}

// Order returns node IDs in insertion order.
func (g *Graph) Order() []string {
	return append([]string(nil), g.order...)
}

// Edges returns every edge in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Predecessors returns the direct dependencies of id, sorted.
func (g *Graph) Predecessors(id string) []string {
	node, ok := g.Nodes[id]
	if !ok {
		return nil
	}
	return fileutil.SortedUnique(node.Dependencies)
}

// Successors returns the direct dependents of id, sorted.
func (g *Graph) Successors(id string) []string {
	node, ok := g.Nodes[id]
	if !ok {
		return nil
	}
	return fileutil.SortedUnique(node.Dependents)
}

// Connected reports whether id has at least one incident edge.
func (g *Graph) Connected(id string) bool {
	node, ok := g.Nodes[id]
	return ok && (len(node.Dependencies) > 0 || len(node.Dependents) > 0)
}

// Build constructs the dependency graph from discovered symbols.
//
// Every value of index becomes a node. For each function-like symbol every
// call site whose callee candidate survives the deny-list and resolves through
// index adds an edge resolved -> symbol. Resolution is by bare name only, so
// unrelated symbols sharing a name can produce false edges.
func Build(symbols []parser.Symbol, index *parser.ShortNameIndex, opts Options) (*Graph, Stats) {
	deny := opts.Deny
	if deny == nil {
		deny = DefaultDenyList()
	}

	g := NewGraph()
	stats := Stats{}

	bySymbol := make(map[string]*parser.Symbol, len(symbols))
	for i := range symbols {
		bySymbol[symbols[i].QualifiedName] = &symbols[i]
	}

	// First pass: create all nodes
	for _, qualified := range index.Qualified() {
		g.AddNode(qualified, bySymbol[qualified])
	}

	// Second pass: build edges based on calls
	for _, sym := range symbols {
		if !sym.Kind.FunctionLike() {
			continue
		}
		for _, call := range sym.Calls {
			stats.Calls++
			if deny.Contains(call.Name) {
				stats.Denied++
				continue
			}
			dependency, ok := index.Lookup(call.Name)
			if !ok {
				stats.Unresolved++
				continue
			}
			if dependency == sym.QualifiedName {
				stats.SelfCalls++
				continue
			}
			if !g.HasNode(sym.QualifiedName) {
				// symbol lost its short name to a later declaration
				stats.Shadowed++
				continue
			}
			if g.AddEdge(dependency, sym.QualifiedName) {
				stats.Edges++
			}
		}
	}

	return g, stats
}
