package query

import (
	"sort"

	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

// ModuleResult is a module stream enabled by workloads of a view.
type ModuleResult struct {
	ID         string   `json:"id"`
	In         []string `json:"q_in"`
	RequiredIn []string `json:"q_required_in"`
	DepIn      []string `json:"q_dep_in"`
}

// MaintainerStatus tells whether every instance a maintainer owns succeeded.
type MaintainerStatus struct {
	Name         string `json:"name"`
	AllSucceeded bool   `json:"all_succeeded"`
}

func (e *Engine) checkArch(arch string, required bool) error {
	if arch == "" {
		if required {
			return errs.Argument("arch", "an arch must be given")
		}
		return nil
	}
	if !e.isAllowedArch(arch) {
		return errs.Argument(arch, "unsupported arch")
	}
	return nil
}

// ArchesInView returns the view's architectures sorted, or every allowed arch
// when the view does not restrict them.
func (e *Engine) ArchesInView(viewID string) []string {
	return cached(e.cache, cacheKey("ArchesInView", viewID), func() []string {
		v := e.view(viewID)
		if len(v.Architectures) == 0 {
			return e.arches
		}
		return slice.Unique(v.Architectures)
	})
}

// WorkloadsInView returns the workload instances on the view's repository
// sharing a label with the view. An empty arch means every arch, an empty
// maintainer means every maintainer.
func (e *Engine) WorkloadsInView(viewID, arch, maintainer string) ([]string, error) {
	if err := e.checkArch(arch, false); err != nil {
		return nil, err
	}
	return cached(e.cache, cacheKey("WorkloadsInView", viewID, arch, maintainer), func() []string {
		v := e.view(viewID)
		if arch != "" && !slice.Contains(e.ArchesInView(viewID), arch) {
			return []string{}
		}
		labels := tagSet{}
		for _, l := range v.Labels {
			labels.add(l)
		}

		out := []string{}
		for _, wid := range e.WorkloadIDs(Filter{Repo: v.Repository, Arch: arch}) {
			conf := e.workloadConf(e.workload(wid).WorkloadConfID)
			if maintainer != "" && conf.Maintainer != maintainer {
				continue
			}
			for _, l := range conf.Labels {
				if _, ok := labels[l]; ok {
					out = append(out, wid)
					break
				}
			}
		}
		return out
	}), nil
}

// ViewPackages merges the packages of the view's workloads on arch. Only
// packages added by workloads carry maintainers; the maintainer filter is
// applied after merging so provenance covers the whole view.
func (e *Engine) ViewPackages(viewID, arch, maintainer string) ([]PackageResult, error) {
	if err := e.checkArch(arch, true); err != nil {
		return nil, err
	}
	return memo(e.cache, cacheKey("ViewPackages", viewID, arch, maintainer), func() ([]PackageResult, error) {
		workloads, err := e.WorkloadsInView(viewID, arch, "")
		if err != nil {
			return nil, err
		}
		repo := e.view(viewID).Repository

		m := newMerger()
		for _, wid := range workloads {
			wl := e.workload(wid)
			conf := e.workloadConf(wl.WorkloadConfID)
			required := tagSet{}
			for _, n := range conf.RequiredNames(arch) {
				required.add(n)
			}

			for _, id := range wl.PkgEnvIDs {
				p := m.stored(repo, arch, e.pkg(repo, arch, id))
				p.in.add(wid)
				p.envIn.add(wid)
				if _, ok := required[p.result.Name]; ok {
					p.requiredIn.add(wid)
				}
			}
			for _, id := range wl.PkgAddedIDs {
				p := m.stored(repo, arch, e.pkg(repo, arch, id))
				p.in.add(wid)
				if _, ok := required[p.result.Name]; ok {
					p.requiredIn.add(wid)
				} else {
					p.depIn.add(wid)
				}
				p.maintainers.add(conf.Maintainer)
			}
			for _, id := range wl.PkgPlaceholderIDs {
				p := m.placeholder(repo, arch, id, e.placeholder(conf, id))
				p.in.add(wid)
				p.requiredIn.add(wid)
				p.maintainers.add(conf.Maintainer)
			}
		}

		var keep func(*pkgEntry) bool
		if maintainer != "" {
			keep = func(p *pkgEntry) bool {
				_, ok := p.maintainers[maintainer]
				return ok
			}
		}
		return m.results(keep), nil
	})
}

// ViewPackageNames projects ViewPackages onto one field.
func (e *Engine) ViewPackageNames(viewID, arch string, field PackageField, maintainer string) ([]string, error) {
	if err := checkField(field, FieldIDs, FieldNEVRs, FieldBinaryNames, FieldSourceNVR, FieldSourceNames); err != nil {
		return nil, err
	}
	pkgs, err := e.ViewPackages(viewID, arch, maintainer)
	if err != nil {
		return nil, err
	}
	return cached(e.cache, cacheKey("ViewPackageNames", viewID, arch, string(field), maintainer), func() []string {
		return project(pkgs, field)
	}), nil
}

// ViewSucceeded reports whether every workload of the view on arch, owned
// by maintainer when given, succeeded.
func (e *Engine) ViewSucceeded(viewID, arch, maintainer string) (bool, error) {
	workloads, err := e.WorkloadsInView(viewID, arch, maintainer)
	if err != nil {
		return false, err
	}
	for _, wid := range workloads {
		if !e.workload(wid).Succeeded {
			return false, nil
		}
	}
	return true, nil
}

// ViewModules merges the modules enabled by the view's workloads.
func (e *Engine) ViewModules(viewID, arch, maintainer string) ([]ModuleResult, error) {
	workloads, err := e.WorkloadsInView(viewID, arch, maintainer)
	if err != nil {
		return nil, err
	}
	return cached(e.cache, cacheKey("ViewModules", viewID, arch, maintainer), func() []ModuleResult {
		type entry struct{ in, required, dep tagSet }
		modules := map[string]*entry{}
		for _, wid := range workloads {
			wl := e.workload(wid)
			conf := e.workloadConf(wl.WorkloadConfID)
			for _, id := range wl.EnabledModules {
				m, ok := modules[id]
				if !ok {
					m = &entry{in: tagSet{}, required: tagSet{}, dep: tagSet{}}
					modules[id] = m
				}
				m.in.add(wid)
				if slice.Contains(conf.ModulesEnable, id) {
					m.required.add(wid)
				} else {
					m.dep.add(wid)
				}
			}
		}

		out := make([]ModuleResult, 0, len(modules))
		for _, id := range slice.SortedKeys(modules) {
			m := modules[id]
			out = append(out, ModuleResult{
				ID:         id,
				In:         slice.SortedKeys(m.in),
				RequiredIn: slice.SortedKeys(m.required),
				DepIn:      slice.SortedKeys(m.dep),
			})
		}
		return out
	}), nil
}

// ViewMaintainers returns the maintainers of the view's workloads on arch.
func (e *Engine) ViewMaintainers(viewID, arch string) ([]string, error) {
	workloads, err := e.WorkloadsInView(viewID, arch, "")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(workloads))
	for _, wid := range workloads {
		out = append(out, e.workloadConf(e.workload(wid).WorkloadConfID).Maintainer)
	}
	return slice.Unique(out), nil
}

// Maintainers lists every maintainer owning a workload or environment
// instance, sorted by name.
func (e *Engine) Maintainers() []MaintainerStatus {
	return cached(e.cache, cacheKey("Maintainers"), func() []MaintainerStatus {
		status := map[string]bool{}
		mark := func(name string, ok bool) {
			prev, seen := status[name]
			status[name] = ok && (!seen || prev)
		}
		for _, wid := range e.WorkloadIDs(Filter{}) {
			wl := e.workload(wid)
			mark(e.workloadConf(wl.WorkloadConfID).Maintainer, wl.Succeeded)
		}
		for _, eid := range e.EnvIDs(Filter{}) {
			env := e.env(eid)
			mark(e.envConf(env.EnvConfID).Maintainer, env.Succeeded)
		}

		out := make([]MaintainerStatus, 0, len(status))
		for _, name := range slice.SortedKeys(status) {
			out = append(out, MaintainerStatus{Name: name, AllSucceeded: status[name]})
		}
		return out
	})
}

// ViewPackageNameDetails returns every package called name in the view,
// across the view's arches, newest version first.
func (e *Engine) ViewPackageNameDetails(name, viewID string) ([]PackageResult, error) {
	var out []PackageResult
	for _, arch := range e.ArchesInView(viewID) {
		pkgs, err := e.ViewPackages(viewID, arch, "")
		if err != nil {
			return nil, err
		}
		for _, p := range pkgs {
			if p.Name == name {
				out = append(out, p)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if c := ident.CompareEVR(out[i].EVR, out[j].EVR); c != 0 {
			return c > 0
		}
		return out[i].QArch < out[j].QArch
	})
	return out, nil
}
