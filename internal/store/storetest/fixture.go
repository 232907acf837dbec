// Package storetest builds consistent configuration and result store
// fixtures for package tests.
package storetest

import (
	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/store"
)

// EVR is the version-release every fixture package gets.
const EVR = "1.0-1"

// ID returns the fixture package id of name on arch.
func ID(name, arch string) string {
	return name + "-" + EVR + "." + arch
}

// Fixture is a result store together with the configs it refers to.
type Fixture struct {
	Data    *store.Data
	Configs *config.Configs
	Arches  []string

	// Sources overrides the source package of a binary package name.
	// Packages default to being their own source.
	Sources map[string]string
	// Sizes overrides the install size of a binary package name.
	Sizes map[string]int64
}

// New returns an empty fixture with the given allowed arches.
func New(arches ...string) *Fixture {
	return &Fixture{
		Data:    store.NewData(),
		Configs: config.NewConfigs(),
		Arches:  arches,
		Sources: map[string]string{},
		Sizes:   map[string]int64{},
	}
}

// Repo registers a repository config.
func (f *Fixture) Repo(id string) *config.Repo {
	r := &config.Repo{ID: id, Name: id, Maintainer: "repo-owner"}
	r.Source.Architectures = append([]string(nil), f.Arches...)
	r.Source.Repos = map[string]*config.RepoSpec{}
	f.Configs.Repos[id] = r
	return r
}

// EnvConf registers an environment config.
func (f *Fixture) EnvConf(id, maintainer string, labels []string, packages ...string) *config.Env {
	e := &config.Env{
		ID:           id,
		Name:         id,
		Maintainer:   maintainer,
		Labels:       labels,
		Packages:     packages,
		ArchPackages: f.archLists(),
	}
	f.Configs.Envs[id] = e
	return e
}

// WorkloadConf registers a workload config.
func (f *Fixture) WorkloadConf(id, maintainer string, labels []string, packages ...string) *config.Workload {
	w := &config.Workload{
		ID:           id,
		Name:         id,
		Maintainer:   maintainer,
		Labels:       labels,
		Packages:     packages,
		ArchPackages: f.archLists(),
		Placeholders: map[string]*config.Placeholder{},
	}
	f.Configs.Workloads[id] = w
	return w
}

// View registers a compose view config.
func (f *Fixture) View(id, repo string, labels ...string) *config.View {
	v := &config.View{
		ID:                   id,
		Type:                 "compose",
		Name:                 id,
		Maintainer:           "view-owner",
		Labels:               labels,
		Repository:           repo,
		UnwantedArchPackages: f.archLists(),
	}
	f.Configs.Views[id] = v
	return v
}

// Unwanted registers an exclusion list config.
func (f *Fixture) Unwanted(id, maintainer string, labels []string, packages ...string) *config.Unwanted {
	u := &config.Unwanted{
		ID:                         id,
		Name:                       id,
		Maintainer:                 maintainer,
		Labels:                     labels,
		UnwantedPackages:           packages,
		UnwantedArchPackages:       f.archLists(),
		UnwantedArchSourcePackages: f.archLists(),
	}
	f.Configs.Unwanteds[id] = u
	return u
}

// Buildroot registers a buildroot config bound to view.
func (f *Fixture) Buildroot(id, view string) *config.Buildroot {
	b := &config.Buildroot{
		ID:             id,
		ViewID:         view,
		Maintainer:     "buildroot-owner",
		BaseBuildroot:  f.archLists(),
		SourcePackages: map[string]map[string]*config.BuildrootSourcePackage{},
	}
	for _, arch := range f.Arches {
		b.SourcePackages[arch] = map[string]*config.BuildrootSourcePackage{}
	}
	f.Configs.Buildroots[id] = b
	return b
}

// BuildRequires records that building source srpm on arch needs names.
func (f *Fixture) BuildRequires(b *config.Buildroot, arch, srpm string, names ...string) {
	sp := b.SourcePackages[arch][srpm]
	if sp == nil {
		sp = &config.BuildrootSourcePackage{}
		b.SourcePackages[arch][srpm] = sp
	}
	sp.Requires = append(sp.Requires, names...)
}

// BuildrootRelations registers relation data for a view's buildroot on arch.
// requiredBy maps a package name to the names requiring it.
func (f *Fixture) BuildrootRelations(id, view, arch string, requiredBy map[string][]string) *config.BuildrootRelations {
	r := &config.BuildrootRelations{ID: id, ViewID: view, Arch: arch, Packages: map[string]*config.BuildrootRelation{}}
	for name, by := range requiredBy {
		ids := make([]string, 0, len(by))
		for _, b := range by {
			ids = append(ids, ID(b, arch))
		}
		r.Packages[ID(name, arch)] = &config.BuildrootRelation{SourceName: f.source(name), RequiredBy: ids}
	}
	f.Configs.BuildrootRelations[id] = r
	return r
}

// Package registers a package record in repo and arch and returns its id.
func (f *Fixture) Package(repo, arch, name string) string {
	id := ID(name, arch)
	if _, ok := f.Data.Package(repo, arch, id); ok {
		return id
	}
	src := f.source(name)
	f.Data.AddPackage(repo, arch, &store.Package{
		ID:          id,
		Name:        name,
		EVR:         EVR,
		Arch:        arch,
		InstallSize: f.size(name),
		Summary:     name + " summary",
		Description: name + " description",
		SourceName:  src,
		SourceRPM:   src + "-" + EVR + ".src.rpm",
	})
	return id
}

// Env registers a succeeded environment instance containing names.
func (f *Fixture) Env(envConf, repo, arch string, names ...string) *store.Env {
	e := &store.Env{
		EnvConfID: envConf,
		RepoID:    repo,
		Arch:      arch,
		PkgIDs:    f.packages(repo, arch, names),
		Relations: store.Relations{},
		Succeeded: true,
	}
	f.Data.Envs[ident.EnvID(envConf, repo, arch)] = e
	return e
}

// Workload registers a succeeded workload instance on top of the matching
// environment instance, adding names.
func (f *Fixture) Workload(workloadConf, envConf, repo, arch string, names ...string) *store.Workload {
	w := &store.Workload{
		WorkloadConfID:    workloadConf,
		EnvConfID:         envConf,
		RepoID:            repo,
		Arch:              arch,
		PkgAddedIDs:       f.packages(repo, arch, names),
		PkgPlaceholderIDs: []string{},
		EnabledModules:    []string{},
		Relations:         store.Relations{},
		Succeeded:         true,
		EnvSucceeded:      true,
	}
	if env, ok := f.Data.Envs[ident.EnvID(envConf, repo, arch)]; ok {
		w.PkgEnvIDs = append([]string(nil), env.PkgIDs...)
		for id, rel := range env.Relations {
			w.Relations[id] = rel
		}
	}
	f.Data.Workloads[ident.WorkloadID(workloadConf, envConf, repo, arch)] = w
	return w
}

// Placeholder declares a placeholder on a workload config and adds it to the
// workload instance.
func (f *Fixture) Placeholder(conf *config.Workload, w *store.Workload, p *config.Placeholder) string {
	if p.Description == "" {
		p.Description = p.Name + " description"
	}
	conf.Placeholders[p.Name] = p
	id := ident.PlaceholderID(p.Name)
	w.PkgPlaceholderIDs = append(w.PkgPlaceholderIDs, id)
	return id
}

// RequiredBy records in rels that name is required by the packages in by.
func RequiredBy(rels store.Relations, arch, name string, by ...string) {
	id := ID(name, arch)
	rel := rels[id]
	if rel == nil {
		rel = &store.Relation{RequiredBy: []string{}}
		rels[id] = rel
	}
	for _, b := range by {
		rel.RequiredBy = append(rel.RequiredBy, ID(b, arch))
	}
}

// FailEnv marks an environment instance failed and re-normalizes the store.
func (f *Fixture) FailEnv(e *store.Env, message string) {
	e.Succeeded = false
	e.Errors.Message = message
	f.Data.Normalize()
}

func (f *Fixture) packages(repo, arch string, names []string) []string {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		ids = append(ids, f.Package(repo, arch, n))
	}
	return ids
}

func (f *Fixture) source(name string) string {
	if s, ok := f.Sources[name]; ok {
		return s
	}
	return name
}

func (f *Fixture) size(name string) int64 {
	if s, ok := f.Sizes[name]; ok {
		return s
	}
	return 100
}

func (f *Fixture) archLists() map[string][]string {
	out := make(map[string][]string, len(f.Arches))
	for _, arch := range f.Arches {
		out[arch] = []string{}
	}
	return out
}
