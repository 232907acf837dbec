package ownership

import (
	"sort"

	"github.com/open-edge-platform/content-resolver/internal/query"
	"github.com/open-edge-platform/content-resolver/internal/relations"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
)

// contribution accumulates the evidence of one maintainer at one level.
type contribution struct {
	workloads    map[string]relations.NameSet
	buildSources map[string]relations.NameSet
	packages     relations.NameSet
}

func (c *contribution) addWorkload(conf, pkg string) {
	if c.workloads == nil {
		c.workloads = map[string]relations.NameSet{}
	}
	if c.workloads[conf] == nil {
		c.workloads[conf] = relations.NameSet{}
	}
	c.workloads[conf].Add(pkg)
	c.packages.Add(pkg)
}

func (c *contribution) addBuildSource(srpm, pkg string) {
	if c.buildSources == nil {
		c.buildSources = map[string]relations.NameSet{}
	}
	if c.buildSources[srpm] == nil {
		c.buildSources[srpm] = relations.NameSet{}
	}
	c.buildSources[srpm].Add(pkg)
	c.packages.Add(pkg)
}

func (c *contribution) count() int {
	return len(c.packages)
}

func (c *contribution) finish() *Contribution {
	out := &Contribution{Packages: c.packages.Sorted(), Count: c.count()}
	if c.workloads != nil {
		out.Workloads = make(map[string][]string, len(c.workloads))
		for conf, pkgs := range c.workloads {
			out.Workloads[conf] = pkgs.Sorted()
		}
	}
	if c.buildSources != nil {
		out.BuildSources = make(map[string][]string, len(c.buildSources))
		for srpm, pkgs := range c.buildSources {
			out.BuildSources[srpm] = pkgs.Sorted()
		}
	}
	return out
}

// component holds the evidence table of one source component: one
// maintainer map per level, in scan order.
type component struct {
	levels [numLevels]map[string]*contribution
	rec    Recommendation
}

func (c *component) contribution(layer, level int, maintainer string) *contribution {
	i := bucket(layer, level)
	if c.levels[i] == nil {
		c.levels[i] = map[string]*contribution{}
	}
	m, ok := c.levels[i][maintainer]
	if !ok {
		m = &contribution{packages: relations.NameSet{}}
		c.levels[i][maintainer] = m
	}
	return m
}

// viewRun is the state of processing one view. It is never shared.
type viewRun struct {
	q       *query.Engine
	viewID  string
	skipped relations.NameSet

	workloads     []string
	runtimePkgs   relations.NameSet
	runtimeSRPMs  relations.NameSet
	buildroot     *relations.Buildroot
	buildrootOnly relations.NameSet

	components map[string]*component
}

func newViewRun(q *query.Engine, viewID string, skipped relations.NameSet) (*viewRun, error) {
	r := &viewRun{
		q:            q,
		viewID:       viewID,
		skipped:      skipped,
		runtimePkgs:  relations.NameSet{},
		runtimeSRPMs: relations.NameSet{},
		components:   map[string]*component{},
	}

	workloads, err := q.WorkloadsInView(viewID, "", "")
	if err != nil {
		return nil, err
	}
	r.workloads = workloads

	buildDeps := map[string]relations.NameSet{}
	for _, arch := range q.ArchesInView(viewID) {
		names, err := q.ViewPackageNames(viewID, arch, query.FieldBinaryNames, "")
		if err != nil {
			return nil, err
		}
		r.runtimePkgs.Add(names...)

		srpms, err := q.ViewPackageNames(viewID, arch, query.FieldSourceNames, "")
		if err != nil {
			return nil, err
		}
		r.runtimeSRPMs.Add(srpms...)

		pkgs, err := q.ViewBuildrootPackages(viewID, arch)
		if err != nil {
			return nil, err
		}
		for _, p := range pkgs {
			if buildDeps[p.Name] == nil {
				buildDeps[p.Name] = relations.NameSet{}
			}
			buildDeps[p.Name].Add(p.RequiredBy...)
		}
	}
	delete(r.runtimeSRPMs, "")

	r.buildroot = relations.NewBuildroot(q.Configs().BuildrootRelationsFor(viewID, ""), buildDeps)
	r.buildrootOnly = r.buildroot.Names().Minus(r.runtimePkgs)

	for name := range r.runtimeSRPMs {
		r.component(name)
	}
	for name := range r.buildroot.SourceNames() {
		r.component(name)
	}
	return r, nil
}

func (r *viewRun) component(name string) *component {
	c, ok := r.components[name]
	if !ok {
		c = &component{}
		r.components[name] = c
	}
	return c
}

// processLayerZero places the packages of every workload of the view into
// levels, starting from the packages the workload requires, and credits
// their components to the workload's maintainer.
func (r *viewRun) processLayerZero() error {
	data, configs := r.q.Data(), r.q.Configs()

	for _, wid := range r.workloads {
		wl := data.Workloads[wid]
		conf := configs.Workloads[wl.WorkloadConfID]

		pkgs, err := r.q.WorkloadPackagesFor(wid)
		if err != nil {
			return err
		}
		names := relations.NameSet{}
		sources := map[string]string{}
		var seed []string
		for _, p := range pkgs {
			names.Add(p.Name)
			if _, ok := sources[p.Name]; !ok {
				sources[p.Name] = p.SourceName
			}
			if slice.Contains(p.RequiredIn, wid) {
				seed = append(seed, p.Name)
			}
		}

		graph := relations.FromPackageRelations(wl.Relations)
		for level, placed := range relations.Levels(seed, names, graph.RequiredBy, MaxLevel) {
			for _, name := range placed {
				if sources[name] == "" {
					continue
				}
				r.component(sources[name]).contribution(0, level, conf.Maintainer).addWorkload(conf.ID, name)
			}
		}
	}
	return nil
}

// processLayer walks the buildroot once for every component of srpms,
// starting from the buildroot-only packages its build requires. Packages
// found are credited to the owners of the component being built. It returns
// the components of every package found.
func (r *viewRun) processLayer(layer int, srpms relations.NameSet) (relations.NameSet, error) {
	if err := checkLayer(layer); err != nil {
		return nil, err
	}

	next := relations.NameSet{}
	for _, srpm := range srpms.Sorted() {
		seed := r.buildroot.RequiredFor(srpm, r.buildrootOnly)
		if len(seed) == 0 {
			continue
		}
		var owners []string
		if c, ok := r.components[srpm]; ok {
			owners = c.rec.TopMultiple
		}

		for level, placed := range relations.Levels(seed, r.buildrootOnly, r.buildroot.RequiredBy, MaxLevel) {
			for _, name := range placed {
				p, _ := r.buildroot.Package(name)
				if p.SourceName == "" {
					continue
				}
				next.Add(p.SourceName)
				c := r.component(p.SourceName)
				for _, m := range owners {
					c.contribution(layer, level, m).addBuildSource(srpm, name)
				}
			}
		}
	}
	return next, nil
}

// resolveComponents recommends an owner for every component without one.
// The first level, in scan order, holding evidence from a maintainer that is
// not skipped decides; the maintainer with the most packages there wins.
func (r *viewRun) resolveComponents() {
	log := logger.Logger()

	for _, name := range slice.SortedKeys(r.components) {
		c := r.components[name]
		if c.rec.Top != "" {
			continue
		}

		scores := map[string]int{}
		for _, level := range c.levels {
			for m, contrib := range level {
				if r.skipped.Has(m) {
					continue
				}
				scores[m] = contrib.count()
			}
			if len(scores) > 0 {
				break
			}
		}

		c.rec = pickTop(scores)
		if c.rec.Unclear() {
			log.Debugf("component %s: unclear between %v", name, c.rec.TopMultiple)
		} else if c.rec.Top != "" {
			log.Debugf("component %s: owned by %s", name, c.rec.Top)
		}
	}
}

func pickTop(scores map[string]int) Recommendation {
	rec := Recommendation{TopMultiple: []string{}, All: scores}
	best := -1
	for _, score := range scores {
		if score > best {
			best = score
		}
	}
	for m, score := range scores {
		if score == best {
			rec.TopMultiple = append(rec.TopMultiple, m)
		}
	}
	sort.Strings(rec.TopMultiple)
	if len(rec.TopMultiple) == 1 {
		rec.Top = rec.TopMultiple[0]
	}
	return rec
}

func (r *viewRun) result() *Result {
	res := &Result{
		ViewID:     r.viewID,
		Components: make(map[string]*Recommendation, len(r.components)),
		Ownership:  make(map[string]map[string]map[string]*Contribution, len(r.components)),
	}
	for name, c := range r.components {
		rec := c.rec
		if rec.TopMultiple == nil {
			rec.TopMultiple = []string{}
		}
		if rec.All == nil {
			rec.All = map[string]int{}
		}
		res.Components[name] = &rec

		levels := map[string]map[string]*Contribution{}
		for i, level := range c.levels {
			if len(level) == 0 {
				continue
			}
			layer, lvl := unbucket(i)
			out := make(map[string]*Contribution, len(level))
			for m, contrib := range level {
				out[m] = contrib.finish()
			}
			levels[LevelName(layer, lvl)] = out
		}
		res.Ownership[name] = levels
	}
	return res
}
