package query

import (
	"sort"

	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/store"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

// PackageField selects what package listings return.
type PackageField string

const (
	FieldIDs         PackageField = "ids"
	FieldNEVRs       PackageField = "nevrs"
	FieldBinaryNames PackageField = "binary_names"
	FieldSourceNVR   PackageField = "source_nvr"
	FieldSourceNames PackageField = "source_names"
)

// PackageResult is a package merged across the instances of a query, tagged
// with the instance ids it was found in and why.
type PackageResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EVR         string `json:"evr"`
	Arch        string `json:"arch"`
	InstallSize int64  `json:"installsize"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	SourceName  string `json:"source_name"`
	SourceNVR   string `json:"source_nvr"`
	Repo        string `json:"repo_id"`
	QArch       string `json:"q_arch"`

	In          []string `json:"q_in"`
	RequiredIn  []string `json:"q_required_in"`
	EnvIn       []string `json:"q_env_in,omitempty"`
	DepIn       []string `json:"q_dep_in,omitempty"`
	Maintainers []string `json:"q_maintainers,omitempty"`
}

// field returns the value of the package selected by f.
func (p *PackageResult) field(f PackageField) string {
	switch f {
	case FieldIDs:
		return p.ID
	case FieldNEVRs:
		return p.Name + "-" + p.EVR
	case FieldBinaryNames:
		return p.Name
	case FieldSourceNVR:
		return p.SourceNVR
	default:
		return p.SourceName
	}
}

type tagSet map[string]struct{}

func (s tagSet) add(v string) { s[v] = struct{}{} }

// pkgEntry accumulates provenance while merging instances.
type pkgEntry struct {
	result      PackageResult
	in          tagSet
	requiredIn  tagSet
	envIn       tagSet
	depIn       tagSet
	maintainers tagSet
}

func newEntry(r PackageResult) *pkgEntry {
	return &pkgEntry{result: r, in: tagSet{}, requiredIn: tagSet{}, envIn: tagSet{}, depIn: tagSet{}, maintainers: tagSet{}}
}

func (p *pkgEntry) finish() PackageResult {
	r := p.result
	r.In = slice.SortedKeys(p.in)
	r.RequiredIn = slice.SortedKeys(p.requiredIn)
	r.EnvIn = slice.SortedKeys(p.envIn)
	r.DepIn = slice.SortedKeys(p.depIn)
	r.Maintainers = slice.SortedKeys(p.maintainers)
	return r
}

type entryKey struct{ repo, arch, id string }

// merger collects package entries keyed by repo, arch and id.
type merger struct {
	entries map[entryKey]*pkgEntry
}

func newMerger() *merger {
	return &merger{entries: map[entryKey]*pkgEntry{}}
}

func (m *merger) stored(repo, arch string, p *store.Package) *pkgEntry {
	k := entryKey{repo, arch, p.ID}
	if e, ok := m.entries[k]; ok {
		return e
	}
	e := newEntry(PackageResult{
		ID:          p.ID,
		Name:        p.Name,
		EVR:         p.EVR,
		Arch:        p.Arch,
		InstallSize: p.InstallSize,
		Description: p.Description,
		Summary:     p.Summary,
		SourceName:  p.SourceName,
		SourceNVR:   ident.SourceNVR(p.SourceRPM),
		Repo:        repo,
		QArch:       arch,
	})
	m.entries[k] = e
	return e
}

func (m *merger) placeholder(repo, arch, id string, ph *config.Placeholder) *pkgEntry {
	k := entryKey{repo, arch, id}
	if e, ok := m.entries[k]; ok {
		return e
	}
	_, evr, phArch := ident.SplitPackageID(id)
	e := newEntry(PackageResult{
		ID:          id,
		Name:        ph.Name,
		EVR:         evr,
		Arch:        phArch,
		Description: ph.Description,
		Summary:     ph.Description,
		SourceName:  ph.SRPM,
		SourceNVR:   ph.SRPM + "-" + evr,
		Repo:        repo,
		QArch:       arch,
	})
	m.entries[k] = e
	return e
}

// results returns the merged packages sorted by id, then repo, then arch.
// When keep is not nil only entries it accepts are returned.
func (m *merger) results(keep func(*pkgEntry) bool) []PackageResult {
	out := make([]PackageResult, 0, len(m.entries))
	for _, e := range m.entries {
		if keep != nil && !keep(e) {
			continue
		}
		out = append(out, e.finish())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ID != b.ID {
			return a.ID < b.ID
		}
		if a.Repo != b.Repo {
			return a.Repo < b.Repo
		}
		return a.QArch < b.QArch
	})
	return out
}

func project(pkgs []PackageResult, field PackageField) []string {
	out := make([]string, 0, len(pkgs))
	for i := range pkgs {
		out = append(out, pkgs[i].field(field))
	}
	return slice.Unique(out)
}

func checkField(field PackageField, allowed ...PackageField) error {
	if !slice.Contains(allowed, field) {
		return errs.Argument(string(field), "unknown package field")
	}
	return nil
}

// WorkloadPackages merges the packages of every workload instance matching
// f: environment packages, added packages and placeholders.
func (e *Engine) WorkloadPackages(f Filter) []PackageResult {
	return cached(e.cache, cacheKey("WorkloadPackages", f.key()...), func() []PackageResult {
		m := newMerger()
		for _, wid := range e.WorkloadIDs(f) {
			wl := e.workload(wid)
			conf := e.workloadConf(wl.WorkloadConfID)
			required := tagSet{}
			for _, n := range conf.RequiredNames(wl.Arch) {
				required.add(n)
			}

			for _, id := range wl.PkgEnvIDs {
				p := m.stored(wl.RepoID, wl.Arch, e.pkg(wl.RepoID, wl.Arch, id))
				p.in.add(wid)
				p.envIn.add(wid)
				if _, ok := required[p.result.Name]; ok {
					p.requiredIn.add(wid)
				}
			}
			for _, id := range wl.PkgAddedIDs {
				p := m.stored(wl.RepoID, wl.Arch, e.pkg(wl.RepoID, wl.Arch, id))
				p.in.add(wid)
				if _, ok := required[p.result.Name]; ok {
					p.requiredIn.add(wid)
				}
			}
			for _, id := range wl.PkgPlaceholderIDs {
				p := m.placeholder(wl.RepoID, wl.Arch, id, e.placeholder(conf, id))
				p.in.add(wid)
				p.requiredIn.add(wid)
			}
		}
		return m.results(nil)
	})
}

// WorkloadPackagesFor is WorkloadPackages for an env or workload id.
func (e *Engine) WorkloadPackagesFor(id string) ([]PackageResult, error) {
	f, err := FilterFor(id)
	if err != nil {
		return nil, err
	}
	return e.WorkloadPackages(f), nil
}

// WorkloadPackageNames projects WorkloadPackages onto one field, sorted and
// deduplicated.
func (e *Engine) WorkloadPackageNames(f Filter, field PackageField) ([]string, error) {
	if err := checkField(field, FieldIDs, FieldBinaryNames, FieldSourceNVR, FieldSourceNames); err != nil {
		return nil, err
	}
	return cached(e.cache, cacheKey("WorkloadPackageNames", append(f.key(), string(field))...), func() []string {
		return project(e.WorkloadPackages(f), field)
	}), nil
}

// EnvPackages merges the packages of every environment instance matching f.
func (e *Engine) EnvPackages(f Filter) []PackageResult {
	f.WorkloadConf = ""
	return cached(e.cache, cacheKey("EnvPackages", f.key()...), func() []PackageResult {
		m := newMerger()
		for _, eid := range e.EnvIDs(f) {
			env := e.env(eid)
			conf := e.envConf(env.EnvConfID)
			required := tagSet{}
			for _, n := range conf.RequiredNames(env.Arch) {
				required.add(n)
			}
			for _, id := range env.PkgIDs {
				p := m.stored(env.RepoID, env.Arch, e.pkg(env.RepoID, env.Arch, id))
				p.in.add(eid)
				if _, ok := required[p.result.Name]; ok {
					p.requiredIn.add(eid)
				}
			}
		}
		return m.results(nil)
	})
}

// EnvPackagesFor is EnvPackages for an env or workload id.
func (e *Engine) EnvPackagesFor(id string) ([]PackageResult, error) {
	f, err := FilterFor(id)
	if err != nil {
		return nil, err
	}
	return e.EnvPackages(f), nil
}

func totalSize(pkgs []PackageResult) int64 {
	var size int64
	for i := range pkgs {
		size += pkgs[i].InstallSize
	}
	return size
}

// WorkloadSize is the summed install size of WorkloadPackages.
func (e *Engine) WorkloadSize(f Filter) int64 {
	return cached(e.cache, cacheKey("WorkloadSize", f.key()...), func() int64 {
		return totalSize(e.WorkloadPackages(f))
	})
}

// WorkloadSizeFor is WorkloadSize for an env or workload id.
func (e *Engine) WorkloadSizeFor(id string) (int64, error) {
	f, err := FilterFor(id)
	if err != nil {
		return 0, err
	}
	return e.WorkloadSize(f), nil
}

// EnvSize is the summed install size of EnvPackages.
func (e *Engine) EnvSize(f Filter) int64 {
	f.WorkloadConf = ""
	return cached(e.cache, cacheKey("EnvSize", f.key()...), func() int64 {
		return totalSize(e.EnvPackages(f))
	})
}

// EnvSizeFor is EnvSize for an env or workload id.
func (e *Engine) EnvSizeFor(id string) (int64, error) {
	f, err := FilterFor(id)
	if err != nil {
		return 0, err
	}
	return e.EnvSize(f), nil
}

// WorkloadSucceeded reports whether every workload instance matching f
// succeeded. It is true when nothing matches.
func (e *Engine) WorkloadSucceeded(f Filter) bool {
	return cached(e.cache, cacheKey("WorkloadSucceeded", f.key()...), func() bool {
		for _, id := range e.WorkloadIDs(f) {
			if !e.workload(id).Succeeded {
				return false
			}
		}
		return true
	})
}

// EnvSucceeded reports whether every environment instance matching f
// succeeded.
func (e *Engine) EnvSucceeded(f Filter) bool {
	f.WorkloadConf = ""
	return cached(e.cache, cacheKey("EnvSucceeded", f.key()...), func() bool {
		for _, id := range e.EnvIDs(f) {
			if !e.env(id).Succeeded {
				return false
			}
		}
		return true
	})
}

func (e *Engine) placeholder(conf *config.Workload, id string) *config.Placeholder {
	ph, ok := conf.Placeholders[ident.PackageName(id)]
	if !ok {
		panic("query: workload config " + conf.ID + " has no placeholder for " + id)
	}
	return ph
}
