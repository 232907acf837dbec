package relations

import (
	"reflect"
	"testing"

	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/store"
)

func TestFromPackageRelations(t *testing.T) {
	rels := store.Relations{
		"bash-5.2-1.x86_64":   {RequiredBy: []string{"httpd-2.4-1.x86_64", "bash-5.2-1.i686"}},
		"bash-5.2-1.i686":     {RequiredBy: []string{"zsh-5.9-1.i686"}, SourceName: "bash"},
		"glibc-2.38-3.x86_64": {RequiredBy: []string{"bash-5.2-1.x86_64"}},
		"orphan-1.0-1.noarch": nil,
	}

	g := FromPackageRelations(rels)

	if got, want := g.Names(), []string{"bash", "glibc", "orphan"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	if got, want := g.RequiredBy("bash").Sorted(), []string{"bash", "httpd", "zsh"}; !reflect.DeepEqual(got, want) {
		t.Errorf("RequiredBy(bash) = %v, want %v", got, want)
	}
	if src, ok := g.SourceName("bash"); !ok || src != "bash" {
		t.Errorf("SourceName(bash) = %q, %v", src, ok)
	}
	if _, ok := g.SourceName("glibc"); ok {
		t.Error("glibc should have no source name")
	}
	if len(g.RequiredBy("missing")) != 0 {
		t.Error("unknown vertex should have no requirers")
	}
}

func TestLevels(t *testing.T) {
	g := NewGraph()
	// httpd -> apr -> libuuid ; httpd -> pcre ; zlib unreachable ; cycle a <-> b
	g.AddEdge("apr", "httpd")
	g.AddEdge("pcre", "httpd")
	g.AddEdge("libuuid", "apr")
	g.AddEdge("libuuid", "httpd")
	g.AddEdge("a", "b")
	g.AddEdge("b", "a")
	g.AddEdge("a", "libuuid")

	candidates := NewNameSet("httpd", "apr", "pcre", "libuuid", "zlib", "a", "b")

	tests := []struct {
		name     string
		maxLevel int
		want     [][]string
	}{
		{
			name:     "full depth",
			maxLevel: 4,
			want: [][]string{
				{"httpd"},
				{"apr", "libuuid", "pcre"},
				{"a"},
				{"b"},
				nil,
			},
		},
		{
			name:     "bounded",
			maxLevel: 1,
			want: [][]string{
				{"httpd"},
				{"apr", "libuuid", "pcre"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Levels([]string{"httpd", "httpd"}, candidates, g.RequiredBy, tt.maxLevel)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Levels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLevelsPlacesOnce(t *testing.T) {
	g := NewGraph()
	g.AddEdge("dep", "top")
	g.AddEdge("dep", "mid")
	g.AddEdge("mid", "top")

	levels := Levels([]string{"top"}, NewNameSet("top", "mid", "dep"), g.RequiredBy, 3)
	seen := map[string]int{}
	for _, level := range levels {
		for _, n := range level {
			seen[n]++
		}
	}
	for name, n := range seen {
		if n != 1 {
			t.Errorf("%s placed %d times", name, n)
		}
	}
	if !reflect.DeepEqual(levels[1], []string{"dep", "mid"}) {
		t.Errorf("level 1 = %v", levels[1])
	}
}

func TestBuildroot(t *testing.T) {
	docs := []*config.BuildrootRelations{
		{
			ID: "rel-x86_64", ViewID: "view", Arch: "x86_64",
			Packages: map[string]*config.BuildrootRelation{
				"gcc-13-1.x86_64":      {SourceName: "gcc", RequiredBy: []string{"redhat-rpm-config-1-1.noarch"}},
				"cpp-13-1.x86_64":      {SourceName: "gcc", RequiredBy: []string{"gcc-13-1.x86_64"}},
				"unrelated-1-1.x86_64": {SourceName: "unrelated"},
			},
		},
		{
			ID: "rel-aarch64", ViewID: "view", Arch: "aarch64",
			Packages: map[string]*config.BuildrootRelation{
				"cpp-13-1.aarch64": {SourceName: "gcc", RequiredBy: []string{"clang-17-1.aarch64"}},
			},
		},
	}
	buildDeps := map[string]NameSet{
		"gcc": NewNameSet("httpd"),
		"cpp": NewNameSet("bash"),
	}

	b := NewBuildroot(docs, buildDeps)

	if b.Len() != 2 {
		t.Fatalf("expected 2 buildroot packages, got %v", b.Names().Sorted())
	}
	cpp, ok := b.Package("cpp")
	if !ok {
		t.Fatal("cpp missing")
	}
	if got, want := cpp.RequiredBy.Sorted(), []string{"clang", "gcc"}; !reflect.DeepEqual(got, want) {
		t.Errorf("cpp required by %v, want %v", got, want)
	}
	if cpp.SourceName != "gcc" {
		t.Errorf("cpp source = %q", cpp.SourceName)
	}
	if got := b.SourceNames().Sorted(); !reflect.DeepEqual(got, []string{"gcc"}) {
		t.Errorf("SourceNames() = %v", got)
	}
	if got := b.RequiredFor("httpd", b.Names()); !reflect.DeepEqual(got, []string{"gcc"}) {
		t.Errorf("RequiredFor(httpd) = %v", got)
	}
	if _, ok := b.Package("unrelated"); ok {
		t.Error("package without build requirement kept")
	}
}

func TestNameSet(t *testing.T) {
	s := NewNameSet("a", "b", "c")
	d := s.Minus(NewNameSet("b"))
	if !reflect.DeepEqual(d.Sorted(), []string{"a", "c"}) {
		t.Fatalf("Minus = %v", d.Sorted())
	}
	d.Union(NewNameSet("z"))
	if !d.Has("z") || d.Has("b") {
		t.Fatalf("Union = %v", d.Sorted())
	}
}
