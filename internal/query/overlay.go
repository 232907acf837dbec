package query

import (
	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

// BuildrootPackage is one binary package needed to build the sources of a
// view on one arch.
type BuildrootPackage struct {
	Name string `json:"name"`
	// RequiredBy lists the source packages whose build requires it.
	RequiredBy    []string `json:"required_by"`
	BaseBuildroot bool     `json:"base_buildroot"`
	// SourceName is empty when no relation data names its component.
	SourceName string `json:"srpm_name,omitempty"`
}

// UnwantedList selects which part of the unwanted overlay is returned.
type UnwantedList string

const (
	UnwantedAll       UnwantedList = ""
	UnwantedProposals UnwantedList = "unwanted_proposals"
	UnwantedConfirmed UnwantedList = "unwanted_confirmed"
)

// UnwantedPackage is a package marked for removal from a view.
type UnwantedPackage struct {
	Name string `json:"name"`
	// InView is set when the view itself excludes the package.
	InView bool `json:"unwanted_in_view"`
	// ListIDs holds the exclusion lists proposing the removal.
	ListIDs []string `json:"unwanted_list_ids"`
}

// PlaceholderSRPM is a source package declared by workload placeholders.
type PlaceholderSRPM struct {
	Name          string   `json:"name"`
	BuildRequires []string `json:"build_requires"`
}

// ViewBuildrootPackages returns the packages of the buildroot bound to the
// view on arch, sorted by name. A view without a buildroot has none.
func (e *Engine) ViewBuildrootPackages(viewID, arch string) ([]BuildrootPackage, error) {
	if err := e.checkArch(arch, true); err != nil {
		return nil, err
	}
	return cached(e.cache, cacheKey("ViewBuildrootPackages", viewID, arch), func() []BuildrootPackage {
		br, ok := e.configs.BuildrootForView(viewID)
		if !ok {
			return []BuildrootPackage{}
		}

		type entry struct {
			base       bool
			requiredBy tagSet
			source     string
		}
		pkgs := map[string]*entry{}
		get := func(name string) *entry {
			p, ok := pkgs[name]
			if !ok {
				p = &entry{requiredBy: tagSet{}}
				pkgs[name] = p
			}
			return p
		}

		for _, name := range br.BaseBuildroot[arch] {
			get(name).base = true
		}
		sources := br.SourcePackages[arch]
		for _, srpm := range slice.SortedKeys(sources) {
			if sources[srpm] == nil {
				continue
			}
			for _, name := range sources[srpm].Requires {
				get(name).requiredBy.add(srpm)
			}
		}

		for _, doc := range e.configs.BuildrootRelationsFor(viewID, arch) {
			for _, id := range slice.SortedKeys(doc.Packages) {
				p, ok := pkgs[ident.PackageName(id)]
				if !ok || p.source != "" || doc.Packages[id] == nil {
					continue
				}
				p.source = doc.Packages[id].SourceName
			}
		}

		out := make([]BuildrootPackage, 0, len(pkgs))
		for _, name := range slice.SortedKeys(pkgs) {
			p := pkgs[name]
			out = append(out, BuildrootPackage{
				Name:          name,
				RequiredBy:    slice.SortedKeys(p.requiredBy),
				BaseBuildroot: p.base,
				SourceName:    p.source,
			})
		}
		return out
	}), nil
}

// ViewBuildrootSourceNames returns the known components of the view's
// buildroot on arch.
func (e *Engine) ViewBuildrootSourceNames(viewID, arch string) ([]string, error) {
	pkgs, err := e.ViewBuildrootPackages(viewID, arch)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, p := range pkgs {
		if p.SourceName != "" {
			out = append(out, p.SourceName)
		}
	}
	return slice.Unique(out), nil
}

// binaryNames returns the names of every package of repo built from srpm,
// on any arch.
func (e *Engine) binaryNames(srpm, repo string) []string {
	return cached(e.cache, cacheKey("binaryNames", srpm, repo), func() []string {
		var out []string
		for _, pkgs := range e.data.Pkgs[repo] {
			for _, p := range pkgs {
				if p.SourceName == srpm {
					out = append(out, p.Name)
				}
			}
		}
		return slice.Unique(out)
	})
}

// ViewUnwantedPackages returns the packages excluded from a view, sorted by
// name. Confirmed entries come from the view itself and are left out when
// filtering by maintainer. Proposals come from exclusion lists sharing a
// label with the view, owned by maintainer when given. An empty arch covers
// every allowed arch.
func (e *Engine) ViewUnwantedPackages(viewID, arch string, list UnwantedList, maintainer string) ([]UnwantedPackage, error) {
	switch list {
	case UnwantedAll, UnwantedProposals, UnwantedConfirmed:
	default:
		return nil, errs.Argument(string(list), "unknown unwanted list")
	}
	if err := e.checkArch(arch, false); err != nil {
		return nil, err
	}

	return cached(e.cache, cacheKey("ViewUnwantedPackages", viewID, arch, string(list), maintainer), func() []UnwantedPackage {
		v := e.view(viewID)
		arches := e.candidates(arch, e.arches)

		pkgs := map[string]*UnwantedPackage{}
		confirm := func(name string) {
			if _, ok := pkgs[name]; !ok {
				pkgs[name] = &UnwantedPackage{Name: name, InView: true, ListIDs: []string{}}
			}
		}
		propose := func(name, listID string) {
			p, ok := pkgs[name]
			if !ok {
				p = &UnwantedPackage{Name: name, ListIDs: []string{}}
				pkgs[name] = p
			}
			if !slice.Contains(p.ListIDs, listID) {
				p.ListIDs = append(p.ListIDs, listID)
			}
		}

		if list != UnwantedProposals && maintainer == "" {
			for _, name := range v.UnwantedPackages {
				confirm(name)
			}
			for _, a := range arches {
				for _, name := range v.UnwantedArchPackages[a] {
					confirm(name)
				}
			}
			for _, srpm := range v.UnwantedSourcePackages {
				for _, name := range e.binaryNames(srpm, v.Repository) {
					confirm(name)
				}
			}
		}

		if list != UnwantedConfirmed {
			for _, u := range e.unwantedListsFor(v, maintainer) {
				for _, name := range u.UnwantedPackages {
					propose(name, u.ID)
				}
				sources := append([]string(nil), u.UnwantedSourcePackages...)
				for _, a := range arches {
					for _, name := range u.UnwantedArchPackages[a] {
						propose(name, u.ID)
					}
					sources = append(sources, u.UnwantedArchSourcePackages[a]...)
				}
				for _, srpm := range slice.Unique(sources) {
					for _, name := range e.binaryNames(srpm, v.Repository) {
						propose(name, u.ID)
					}
				}
			}
		}

		out := make([]UnwantedPackage, 0, len(pkgs))
		for _, name := range slice.SortedKeys(pkgs) {
			out = append(out, *pkgs[name])
		}
		return out
	}), nil
}

// unwantedListsFor returns the exclusion lists sharing a label with v,
// sorted by id.
func (e *Engine) unwantedListsFor(v *config.View, maintainer string) []*config.Unwanted {
	var out []*config.Unwanted
	for _, id := range slice.SortedKeys(e.configs.Unwanteds) {
		u := e.configs.Unwanteds[id]
		if maintainer != "" && u.Maintainer != maintainer {
			continue
		}
		for _, l := range u.Labels {
			if slice.Contains(v.Labels, l) {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// ViewPlaceholderSRPMs returns the source packages declared by placeholders
// of the view's workloads on arch, with their merged build requirements.
func (e *Engine) ViewPlaceholderSRPMs(viewID, arch string) ([]PlaceholderSRPM, error) {
	if err := e.checkArch(arch, true); err != nil {
		return nil, err
	}
	workloads, err := e.WorkloadsInView(viewID, arch, "")
	if err != nil {
		return nil, err
	}
	return cached(e.cache, cacheKey("ViewPlaceholderSRPMs", viewID, arch), func() []PlaceholderSRPM {
		srpms := map[string][]string{}
		for _, wid := range workloads {
			conf := e.workloadConf(e.workload(wid).WorkloadConfID)
			for _, name := range slice.SortedKeys(conf.Placeholders) {
				ph := conf.Placeholders[name]
				if !ph.AppliesTo(arch) || ph.SRPM == "" {
					continue
				}
				srpms[ph.SRPM] = append(srpms[ph.SRPM], ph.BuildRequires...)
			}
		}

		out := make([]PlaceholderSRPM, 0, len(srpms))
		for _, name := range slice.SortedKeys(srpms) {
			out = append(out, PlaceholderSRPM{Name: name, BuildRequires: slice.Unique(srpms[name])})
		}
		return out
	}), nil
}
