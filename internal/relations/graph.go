// Package relations turns package-id keyed dependency data into name keyed
// required-by graphs and places packages into breadth-first levels.
package relations

import (
	"slices"

	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/store"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

// NameSet is a set of package or component names.
type NameSet map[string]struct{}

// NewNameSet returns a set holding names.
func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	s.Add(names...)
	return s
}

func (s NameSet) Add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Union adds every member of other.
func (s NameSet) Union(other NameSet) {
	for n := range other {
		s[n] = struct{}{}
	}
}

// Minus returns the members of s not in other.
func (s NameSet) Minus(other NameSet) NameSet {
	out := NameSet{}
	for n := range s {
		if !other.Has(n) {
			out[n] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in lexical order.
func (s NameSet) Sorted() []string {
	return slice.SortedKeys(s)
}

// Vertex is one package of a graph.
type Vertex struct {
	Name       string
	SourceName string
	RequiredBy NameSet
}

// Graph is a required-by graph keyed by package name. Unlike a DAG it
// tolerates cycles, which are common between packages of one component.
type Graph struct {
	vertices map[string]*Vertex
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{vertices: map[string]*Vertex{}}
}

// FromPackageRelations converts id keyed relations into a name keyed graph.
// Ids that map to the same name are merged.
func FromPackageRelations(rels store.Relations) *Graph {
	g := NewGraph()
	for id, rel := range rels {
		v := g.vertex(ident.PackageName(id))
		if rel == nil {
			continue
		}
		if v.SourceName == "" {
			v.SourceName = rel.SourceName
		}
		for _, by := range rel.RequiredBy {
			v.RequiredBy.Add(ident.PackageName(by))
		}
	}
	return g
}

// AddEdge records that name is required by requiredBy.
func (g *Graph) AddEdge(name, requiredBy string) {
	g.vertex(name).RequiredBy.Add(requiredBy)
}

// SetSourceName sets the component of name unless it already has one.
func (g *Graph) SetSourceName(name, source string) {
	v := g.vertex(name)
	if v.SourceName == "" {
		v.SourceName = source
	}
}

// RequiredBy returns the names requiring name. The result is never nil.
func (g *Graph) RequiredBy(name string) NameSet {
	if v, ok := g.vertices[name]; ok {
		return v.RequiredBy
	}
	return NameSet{}
}

// SourceName returns the component name recorded for name.
func (g *Graph) SourceName(name string) (string, bool) {
	v, ok := g.vertices[name]
	if !ok || v.SourceName == "" {
		return "", false
	}
	return v.SourceName, true
}

// Has reports whether name is a vertex of the graph.
func (g *Graph) Has(name string) bool {
	_, ok := g.vertices[name]
	return ok
}

// Names returns the vertices in sorted order.
func (g *Graph) Names() []string {
	return slice.SortedKeys(g.vertices)
}

func (g *Graph) Len() int {
	return len(g.vertices)
}

func (g *Graph) vertex(name string) *Vertex {
	v, ok := g.vertices[name]
	if !ok {
		v = &Vertex{Name: name, RequiredBy: NameSet{}}
		g.vertices[name] = v
	}
	return v
}

// Levels places candidates into breadth-first levels. Level 0 is seed. A
// candidate enters level n when something at level n-1 requires it and it was
// not placed at a lower level. Candidates still unplaced after maxLevel are
// not returned. Every level is sorted.
func Levels(seed []string, candidates NameSet, requiredBy func(string) NameSet, maxLevel int) [][]string {
	levels := make([][]string, 0, maxLevel+1)
	first := slice.Unique(seed)
	levels = append(levels, first)

	remaining := candidates.Minus(NewNameSet(first...))
	previous := NewNameSet(first...)

	for level := 1; level <= maxLevel; level++ {
		var placed []string
		for _, name := range remaining.Sorted() {
			for by := range requiredBy(name) {
				if previous.Has(by) {
					placed = append(placed, name)
					break
				}
			}
		}
		for _, name := range placed {
			delete(remaining, name)
		}
		slices.Sort(placed)
		levels = append(levels, placed)
		previous = NewNameSet(placed...)
	}
	return levels
}
