// Package graph builds a directed graph over a model's tables, with one
// edge per relationship from the many side to the one side. It backs the
// topology views in the CLI: fact tables show up as roots, shared
// dimensions as leaves, and filter-propagation cycles are reported with
// their path.
package graph

import (
	"fmt"
	"sort"

	"github.com/weftlabs/weft/internal/model"
)

// Graph is a directed graph of table names.
type Graph struct {
	nodes    map[string]bool
	children map[string][]string // table -> tables it points at
	parents  map[string][]string // table -> tables pointing at it
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[string]bool),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// FromModel builds the relationship graph for a model. Relationships whose
// endpoints are missing from the model are skipped; validation reports
// those separately.
func FromModel(m *model.Model) *Graph {
	g := New()
	for _, t := range m.Tables() {
		g.AddTable(t.Name)
	}
	for _, rel := range m.Relationships() {
		// Ignore dangling and degenerate relationships here.
		_ = g.Link(rel.FromTable, rel.ToTable)
	}
	return g
}

// AddTable adds a table node. Adding an existing table is a no-op.
func (g *Graph) AddTable(name string) {
	if !g.nodes[name] {
		g.nodes[name] = true
		g.children[name] = []string{}
		g.parents[name] = []string{}
	}
}

// Link adds an edge from one table to another. Both tables must already be
// nodes, and self-edges are rejected.
func (g *Graph) Link(from, to string) error {
	if !g.nodes[from] {
		return fmt.Errorf("table %q is not in the graph", from)
	}
	if !g.nodes[to] {
		return fmt.Errorf("table %q is not in the graph", to)
	}
	if from == to {
		return fmt.Errorf("self-referencing link: %s", from)
	}
	if !contains(g.children[from], to) {
		g.children[from] = append(g.children[from], to)
	}
	if !contains(g.parents[to], from) {
		g.parents[to] = append(g.parents[to], from)
	}
	return nil
}

// Tables returns all table names in sorted order.
func (g *Graph) Tables() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TableCount returns the number of tables.
func (g *Graph) TableCount() int { return len(g.nodes) }

// LinkCount returns the number of edges.
func (g *Graph) LinkCount() int {
	count := 0
	for _, c := range g.children {
		count += len(c)
	}
	return count
}

// PointsAt returns the tables name has outgoing edges to, sorted.
func (g *Graph) PointsAt(name string) []string {
	out := append([]string(nil), g.children[name]...)
	sort.Strings(out)
	return out
}

// PointedAtBy returns the tables with edges into name, sorted.
func (g *Graph) PointedAtBy(name string) []string {
	out := append([]string(nil), g.parents[name]...)
	sort.Strings(out)
	return out
}

// Facts returns tables with outgoing links and no incoming ones: the many
// side of every relationship they participate in.
func (g *Graph) Facts() []string {
	var facts []string
	for name := range g.nodes {
		if len(g.children[name]) > 0 && len(g.parents[name]) == 0 {
			facts = append(facts, name)
		}
	}
	sort.Strings(facts)
	return facts
}

// Dimensions returns tables with incoming links and no outgoing ones.
func (g *Graph) Dimensions() []string {
	var dims []string
	for name := range g.nodes {
		if len(g.parents[name]) > 0 && len(g.children[name]) == 0 {
			dims = append(dims, name)
		}
	}
	sort.Strings(dims)
	return dims
}

// Isolated returns tables with no relationships at all.
func (g *Graph) Isolated() []string {
	var isolated []string
	for name := range g.nodes {
		if len(g.parents[name]) == 0 && len(g.children[name]) == 0 {
			isolated = append(isolated, name)
		}
	}
	sort.Strings(isolated)
	return isolated
}

// HasCycle reports whether relationships form a cycle, along with the
// table path of the first cycle found.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cycle []string

	var dfs func(name string) bool
	dfs = func(name string) bool {
		visited[name] = true
		onStack[name] = true

		for _, next := range sorted(g.children[name]) {
			if !visited[next] {
				cameFrom[next] = name
				if dfs(next) {
					return true
				}
			} else if onStack[next] {
				cycle = []string{next}
				for curr := name; curr != next; curr = cameFrom[curr] {
					cycle = append([]string{curr}, cycle...)
				}
				cycle = append([]string{next}, cycle...)
				return true
			}
		}

		onStack[name] = false
		return false
	}

	for _, name := range g.Tables() {
		if !visited[name] {
			if dfs(name) {
				return true, cycle
			}
		}
	}
	return false, nil
}

func sorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Strings(out)
	return out
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
