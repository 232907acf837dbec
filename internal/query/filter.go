package query

import (
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

// Dimension names one part of an instance id.
type Dimension string

const (
	WorkloadConfs Dimension = "workload_conf_ids"
	EnvConfs      Dimension = "env_conf_ids"
	Repos         Dimension = "repo_ids"
	Arches        Dimension = "arches"
)

// Filter selects instances. An empty field matches every configured value of
// that dimension; an empty Arch matches every allowed arch.
type Filter struct {
	WorkloadConf string
	EnvConf      string
	Repo         string
	Arch         string
}

func (f Filter) key() []string {
	return []string{f.WorkloadConf, f.EnvConf, f.Repo, f.Arch}
}

// FilterFor turns an env id or a workload id into a Filter. For env ids the
// workload dimension stays open.
func FilterFor(id string) (Filter, error) {
	k, err := ident.Parse(id)
	if err != nil {
		return Filter{}, err
	}
	return Filter{WorkloadConf: k.WorkloadConf, EnvConf: k.EnvConf, Repo: k.Repo, Arch: k.Arch}, nil
}

func (d Dimension) of(k ident.Key) string {
	switch d {
	case WorkloadConfs:
		return k.WorkloadConf
	case EnvConfs:
		return k.EnvConf
	case Repos:
		return k.Repo
	default:
		return k.Arch
	}
}

type instanceKind int

const (
	envInstances instanceKind = iota
	workloadInstances
)

func (e *Engine) candidates(value string, all []string) []string {
	if value != "" {
		return []string{value}
	}
	return all
}

// match visits the instance keys selected by f in workload conf, env conf,
// repo, arch order. It stops when visit returns false.
func (e *Engine) match(kind instanceKind, f Filter, visit func(ident.Key) bool) {
	workloadConfs := []string{""}
	if kind == workloadInstances {
		workloadConfs = e.candidates(f.WorkloadConf, slice.SortedKeys(e.configs.Workloads))
	}
	envConfs := e.candidates(f.EnvConf, slice.SortedKeys(e.configs.Envs))
	repos := e.candidates(f.Repo, slice.SortedKeys(e.configs.Repos))
	arches := e.candidates(f.Arch, e.arches)

	for _, wc := range workloadConfs {
		for _, ec := range envConfs {
			for _, repo := range repos {
				for _, arch := range arches {
					k := ident.Key{WorkloadConf: wc, EnvConf: ec, Repo: repo, Arch: arch}
					var found bool
					if kind == workloadInstances {
						_, found = e.data.Workloads[k.String()]
					} else {
						_, found = e.data.Envs[k.String()]
					}
					if found && !visit(k) {
						return
					}
				}
			}
		}
	}
}

func (e *Engine) exists(kind instanceKind, f Filter) bool {
	found := false
	e.match(kind, f, func(ident.Key) bool {
		found = true
		return false
	})
	return found
}

func (e *Engine) ids(kind instanceKind, f Filter) []string {
	var out []string
	e.match(kind, f, func(k ident.Key) bool {
		out = append(out, k.String())
		return true
	})
	return slice.Unique(out)
}

func (e *Engine) dimension(kind instanceKind, f Filter, d Dimension) ([]string, error) {
	valid := d == EnvConfs || d == Repos || d == Arches || (d == WorkloadConfs && kind == workloadInstances)
	if !valid {
		return nil, errs.Argument(string(d), "unknown projection")
	}
	var out []string
	e.match(kind, f, func(k ident.Key) bool {
		out = append(out, d.of(k))
		return true
	})
	return slice.Unique(out), nil
}

// HasWorkloads reports whether any workload instance matches f.
func (e *Engine) HasWorkloads(f Filter) bool {
	return cached(e.cache, cacheKey("HasWorkloads", f.key()...), func() bool {
		return e.exists(workloadInstances, f)
	})
}

// WorkloadIDs returns the sorted ids of the workload instances matching f.
func (e *Engine) WorkloadIDs(f Filter) []string {
	return cached(e.cache, cacheKey("WorkloadIDs", f.key()...), func() []string {
		return e.ids(workloadInstances, f)
	})
}

// WorkloadDimension returns the sorted distinct values of d across the
// workload instances matching f.
func (e *Engine) WorkloadDimension(f Filter, d Dimension) ([]string, error) {
	return memo(e.cache, cacheKey("WorkloadDimension", append(f.key(), string(d))...), func() ([]string, error) {
		return e.dimension(workloadInstances, f, d)
	})
}

// HasWorkloadsFor is HasWorkloads for an env or workload id.
func (e *Engine) HasWorkloadsFor(id string) (bool, error) {
	f, err := FilterFor(id)
	if err != nil {
		return false, err
	}
	return e.HasWorkloads(f), nil
}

// WorkloadIDsFor is WorkloadIDs for an env or workload id.
func (e *Engine) WorkloadIDsFor(id string) ([]string, error) {
	f, err := FilterFor(id)
	if err != nil {
		return nil, err
	}
	return e.WorkloadIDs(f), nil
}

// WorkloadDimensionFor is WorkloadDimension for an env or workload id.
func (e *Engine) WorkloadDimensionFor(id string, d Dimension) ([]string, error) {
	f, err := FilterFor(id)
	if err != nil {
		return nil, err
	}
	return e.WorkloadDimension(f, d)
}

// HasEnvs reports whether any environment instance matches f. The workload
// dimension of f is ignored.
func (e *Engine) HasEnvs(f Filter) bool {
	f.WorkloadConf = ""
	return cached(e.cache, cacheKey("HasEnvs", f.key()...), func() bool {
		return e.exists(envInstances, f)
	})
}

// EnvIDs returns the sorted ids of the environment instances matching f.
func (e *Engine) EnvIDs(f Filter) []string {
	f.WorkloadConf = ""
	return cached(e.cache, cacheKey("EnvIDs", f.key()...), func() []string {
		return e.ids(envInstances, f)
	})
}

// EnvDimension returns the sorted distinct values of d across the
// environment instances matching f. Environments have no workload dimension.
func (e *Engine) EnvDimension(f Filter, d Dimension) ([]string, error) {
	f.WorkloadConf = ""
	return memo(e.cache, cacheKey("EnvDimension", append(f.key(), string(d))...), func() ([]string, error) {
		return e.dimension(envInstances, f, d)
	})
}

// HasEnvsFor is HasEnvs for an env or workload id.
func (e *Engine) HasEnvsFor(id string) (bool, error) {
	f, err := FilterFor(id)
	if err != nil {
		return false, err
	}
	return e.HasEnvs(f), nil
}

// EnvIDsFor is EnvIDs for an env or workload id.
func (e *Engine) EnvIDsFor(id string) ([]string, error) {
	f, err := FilterFor(id)
	if err != nil {
		return nil, err
	}
	return e.EnvIDs(f), nil
}

// EnvDimensionFor is EnvDimension for an env or workload id.
func (e *Engine) EnvDimensionFor(id string, d Dimension) ([]string, error) {
	f, err := FilterFor(id)
	if err != nil {
		return nil, err
	}
	return e.EnvDimension(f, d)
}
