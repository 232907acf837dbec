package relations

import (
	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

// BuildrootPackage is one binary package needed to build a view.
type BuildrootPackage struct {
	Name       string
	SourceName string
	// RequiredBy holds the buildroot package names requiring this one.
	RequiredBy NameSet
	// RequiredBySRPMs holds the components whose build requires this one.
	RequiredBySRPMs NameSet
}

// Buildroot is the build-dependency closure of a view across its arches.
type Buildroot struct {
	graph    *Graph
	packages map[string]*BuildrootPackage
}

// NewBuildroot joins relation documents with the build requirements of a
// view. buildDeps maps a package name to the components that build-require
// it. Only packages present in both are kept.
func NewBuildroot(docs []*config.BuildrootRelations, buildDeps map[string]NameSet) *Buildroot {
	g := NewGraph()
	for _, doc := range docs {
		for id, rel := range doc.Packages {
			name := ident.PackageName(id)
			g.vertex(name)
			if rel == nil {
				continue
			}
			g.SetSourceName(name, rel.SourceName)
			for _, by := range rel.RequiredBy {
				g.AddEdge(name, ident.PackageName(by))
			}
		}
	}

	b := &Buildroot{graph: g, packages: map[string]*BuildrootPackage{}}
	for _, name := range g.Names() {
		srpms, ok := buildDeps[name]
		if !ok {
			continue
		}
		source, _ := g.SourceName(name)
		b.packages[name] = &BuildrootPackage{
			Name:            name,
			SourceName:      source,
			RequiredBy:      g.RequiredBy(name),
			RequiredBySRPMs: srpms,
		}
	}
	return b
}

// Package returns the buildroot package called name.
func (b *Buildroot) Package(name string) (*BuildrootPackage, bool) {
	p, ok := b.packages[name]
	return p, ok
}

// RequiredBy returns the buildroot packages requiring name.
func (b *Buildroot) RequiredBy(name string) NameSet {
	if p, ok := b.packages[name]; ok {
		return p.RequiredBy
	}
	return NameSet{}
}

// Names returns the buildroot package names.
func (b *Buildroot) Names() NameSet {
	out := make(NameSet, len(b.packages))
	for n := range b.packages {
		out[n] = struct{}{}
	}
	return out
}

// SourceNames returns the components of buildroot packages.
func (b *Buildroot) SourceNames() NameSet {
	out := NameSet{}
	for _, p := range b.packages {
		if p.SourceName != "" {
			out.Add(p.SourceName)
		}
	}
	return out
}

// RequiredFor returns the members of only that building srpm requires
// directly, sorted.
func (b *Buildroot) RequiredFor(srpm string, only NameSet) []string {
	var out []string
	for _, name := range slice.SortedKeys(only) {
		if p, ok := b.packages[name]; ok && p.RequiredBySRPMs.Has(srpm) {
			out = append(out, name)
		}
	}
	return out
}

func (b *Buildroot) Len() int {
	return len(b.packages)
}
