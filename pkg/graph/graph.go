// Package graph builds a directed relationship graph over one schema
// snapshot's tables and analyzes it: explicit and heuristically inferred
// foreign keys, missing-table suggestions, reachability and ordering
// algorithms, and schema health scores. A Graph is owned by the analysis
// that built it and discarded afterwards.
package graph

import (
	"encoding/json"
	"sort"
	"strings"
)

// Kind classifies a relationship edge.
type Kind int32

const (
	KindOneToOne Kind = iota + 1
	KindOneToMany
	KindManyToMany
	KindSelfReference
)

func (k Kind) String() string {
	switch k {
	case KindOneToOne:
		return "1:1"
	case KindOneToMany:
		return "1:N"
	case KindManyToMany:
		return "M:N"
	case KindSelfReference:
		return "self"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for Kind
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MarshalYAML implements yaml.Marshaler for Kind
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// Relationship is one directed edge: the referencing column on FromTable
// points at the referenced column on ToTable. Explicit edges come from
// declared foreign keys; inferred ones from name/type heuristics.
type Relationship struct {
	FromTable  string  `json:"fromTable" yaml:"fromTable"`
	FromColumn string  `json:"fromColumn" yaml:"fromColumn"`
	ToTable    string  `json:"toTable" yaml:"toTable"`
	ToColumn   string  `json:"toColumn" yaml:"toColumn"`
	Kind       Kind    `json:"kind" yaml:"kind"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Explicit   bool    `json:"explicit" yaml:"explicit"`
}

// Graph is a directed graph over table names. Nodes are indexed by small
// integer handles; adjacency is kept both forward and backward so successor
// and predecessor queries are O(1). Name lookup is case-insensitive.
type Graph struct {
	nodes []string
	index map[string]int
	out   [][]int
	in    [][]int
	edges []Relationship
}

// New builds a graph over the given node names, in order. Duplicate names
// (case-insensitive) collapse onto one handle.
func New(names []string) *Graph {
	g := &Graph{index: make(map[string]int, len(names))}
	for _, n := range names {
		g.Add(n)
	}
	return g
}

// Add registers a node and returns its handle. Re-adding an existing name
// returns the original handle.
func (g *Graph) Add(name string) int {
	key := strings.ToLower(name)
	if h, ok := g.index[key]; ok {
		return h
	}
	h := len(g.nodes)
	g.index[key] = h
	g.nodes = append(g.nodes, name)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return h
}

// Handle returns the handle for name, case-insensitive.
func (g *Graph) Handle(name string) (int, bool) {
	h, ok := g.index[strings.ToLower(name)]
	return h, ok
}

// Name returns the node name for a handle.
func (g *Graph) Name(h int) string { return g.nodes[h] }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the node names in handle order.
func (g *Graph) Nodes() []string {
	return append([]string(nil), g.nodes...)
}

// Edges returns the relationships in insertion order.
func (g *Graph) Edges() []Relationship {
	return append([]Relationship(nil), g.edges...)
}

// AddEdge records the relationship and wires the adjacency. It reports false
// when either endpoint is not a node of this graph.
func (g *Graph) AddEdge(r Relationship) bool {
	from, ok := g.Handle(r.FromTable)
	if !ok {
		return false
	}
	to, ok := g.Handle(r.ToTable)
	if !ok {
		return false
	}
	g.edges = append(g.edges, r)
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
	return true
}

// HasEdge reports whether any edge runs from one table to the other,
// case-insensitive, direction-sensitive.
func (g *Graph) HasEdge(fromTable, toTable string) bool {
	from, ok := g.Handle(fromTable)
	if !ok {
		return false
	}
	to, ok := g.Handle(toTable)
	if !ok {
		return false
	}
	for _, h := range g.out[from] {
		if h == to {
			return true
		}
	}
	return false
}

// Successors returns the handles this node points at, one entry per edge.
func (g *Graph) Successors(h int) []int {
	return append([]int(nil), g.out[h]...)
}

// Predecessors returns the handles pointing at this node, one entry per edge.
func (g *Graph) Predecessors(h int) []int {
	return append([]int(nil), g.in[h]...)
}

// ShortestPath returns the node names along a shortest directed path from
// one table to the other, endpoints included. It returns nil when either
// endpoint is unknown or no path exists.
func (g *Graph) ShortestPath(fromTable, toTable string) []string {
	from, ok := g.Handle(fromTable)
	if !ok {
		return nil
	}
	to, ok := g.Handle(toTable)
	if !ok {
		return nil
	}
	if from == to {
		return []string{g.nodes[from]}
	}

	prev := make([]int, len(g.nodes))
	for i := range prev {
		prev[i] = -1
	}
	prev[from] = from
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.out[cur] {
			if prev[next] >= 0 {
				continue
			}
			prev[next] = cur
			if next == to {
				var path []string
				for n := to; n != from; n = prev[n] {
					path = append(path, g.nodes[n])
				}
				path = append(path, g.nodes[from])
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// Reachable returns the names of every node reachable from the start table
// by directed edges, in breadth-first order, the start excluded unless it
// lies on a cycle back to itself.
func (g *Graph) Reachable(fromTable string) []string {
	from, ok := g.Handle(fromTable)
	if !ok {
		return nil
	}
	seen := make([]bool, len(g.nodes))
	var order []string
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.out[cur] {
			if seen[next] {
				continue
			}
			seen[next] = true
			order = append(order, g.nodes[next])
			queue = append(queue, next)
		}
	}
	return order
}

// TopoSort runs Kahn's algorithm: the returned order holds every node that
// could be placed after all of its predecessors; unsorted holds the rest,
// which is non-empty exactly when the graph has a cycle. A cycle is a
// degraded result here, never an error.
func (g *Graph) TopoSort() (order []string, unsorted []string) {
	return g.kahn(g.out, g.in)
}

// ReverseTopoSort orders every node after all of its successors instead.
// For a schema graph whose edges point from referencing table to referenced
// table, this is the order the tables can be created in.
func (g *Graph) ReverseTopoSort() (order []string, unsorted []string) {
	return g.kahn(g.in, g.out)
}

// kahn removes zero-indegree nodes until none remain, where adj lists each
// node's outgoing neighbors and rev its incoming ones.
func (g *Graph) kahn(adj, rev [][]int) (order []string, unsorted []string) {
	n := len(g.nodes)
	indegree := make([]int, n)
	for h := 0; h < n; h++ {
		indegree[h] = len(rev[h])
	}

	var queue []int
	for h := 0; h < n; h++ {
		if indegree[h] == 0 {
			queue = append(queue, h)
		}
	}

	placed := make([]bool, n)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		placed[cur] = true
		order = append(order, g.nodes[cur])
		for _, next := range adj[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	for h := 0; h < n; h++ {
		if !placed[h] {
			unsorted = append(unsorted, g.nodes[h])
		}
	}
	return order, unsorted
}

// SCC returns the strongly connected components by Tarjan's algorithm, each
// component's names sorted, components in completion order. Singleton
// components are included; callers looking for foreign-key cycles filter to
// components of size two or more (or a self edge).
func (g *Graph) SCC() [][]string {
	n := len(g.nodes)
	t := &tarjanState{
		g:       g,
		indices: make([]int, n),
		lowlink: make([]int, n),
		onStack: make([]bool, n),
	}
	for h := 0; h < n; h++ {
		t.indices[h] = -1
	}
	for h := 0; h < n; h++ {
		if t.indices[h] < 0 {
			t.strongConnect(h)
		}
	}
	return t.sccs
}

type tarjanState struct {
	g       *Graph
	index   int
	stack   []int
	indices []int
	lowlink []int
	onStack []bool
	sccs    [][]string
}

func (t *tarjanState) strongConnect(v int) {
	t.indices[v] = t.index
	t.lowlink[v] = t.index
	t.index++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.g.out[v] {
		if t.indices[w] < 0 {
			t.strongConnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.indices[w])
		}
	}

	if t.lowlink[v] == t.indices[v] {
		var scc []string
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			scc = append(scc, t.g.nodes[w])
			if w == v {
				break
			}
		}
		sort.Strings(scc)
		t.sccs = append(t.sccs, scc)
	}
}
