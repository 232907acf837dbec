package config

// Repo describes a package repository set that environments resolve against.
type Repo struct {
	ID          string     `yaml:"-"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Maintainer  string     `yaml:"maintainer"`
	Source      RepoSource `yaml:"source"`
}

// RepoSource lists where the packages of a Repo come from.
type RepoSource struct {
	Releasever    string               `yaml:"releasever"`
	Architectures []string             `yaml:"architectures"`
	Repos         map[string]*RepoSpec `yaml:"repos"`
	ComposeInfo   string               `yaml:"composeinfo"`
}

// RepoSpec is one upstream repository inside a Repo.
type RepoSpec struct {
	ID          string   `yaml:"-"`
	Name        string   `yaml:"name"`
	BaseURL     string   `yaml:"baseurl"`
	Priority    int      `yaml:"priority"`
	LimitArches []string `yaml:"limit_arches"`
}

// Env is a base package set that workloads are installed on top of.
type Env struct {
	ID           string              `yaml:"-"`
	Name         string              `yaml:"name"`
	Description  string              `yaml:"description"`
	Maintainer   string              `yaml:"maintainer"`
	Repositories []string            `yaml:"repositories"`
	Packages     []string            `yaml:"packages"`
	Labels       []string            `yaml:"labels"`
	ArchPackages map[string][]string `yaml:"arch_packages"`
	Options      []string            `yaml:"options"`
}

// Workload is a set of packages, groups and modules installed into an Env.
type Workload struct {
	ID             string                  `yaml:"-"`
	Name           string                  `yaml:"name"`
	Description    string                  `yaml:"description"`
	Maintainer     string                  `yaml:"maintainer"`
	Labels         []string                `yaml:"labels"`
	Packages       []string                `yaml:"packages"`
	ArchPackages   map[string][]string     `yaml:"arch_packages"`
	Options        []string                `yaml:"options"`
	ModulesEnable  []string                `yaml:"modules_enable"`
	ModulesDisable []string                `yaml:"modules_disable"`
	Groups         []string                `yaml:"groups"`
	Placeholders   map[string]*Placeholder `yaml:"package_placeholders"`
}

// RequiredNames returns the package names a workload requests on arch.
func (w *Workload) RequiredNames(arch string) []string {
	return append(append([]string(nil), w.Packages...), w.ArchPackages[arch]...)
}

// RequiredNames returns the package names an environment requests on arch.
func (e *Env) RequiredNames(arch string) []string {
	return append(append([]string(nil), e.Packages...), e.ArchPackages[arch]...)
}

// Placeholder is a package a workload declares before it exists in any repo.
type Placeholder struct {
	Name          string   `yaml:"-"`
	Description   string   `yaml:"description"`
	Requires      []string `yaml:"requires"`
	BuildRequires []string `yaml:"buildrequires"`
	LimitArches   []string `yaml:"limit_arches"`
	SRPM          string   `yaml:"srpm"`
}

// AppliesTo reports whether the placeholder exists on arch.
func (p *Placeholder) AppliesTo(arch string) bool {
	if len(p.LimitArches) == 0 {
		return true
	}
	for _, a := range p.LimitArches {
		if a == arch {
			return true
		}
	}
	return false
}

// Label connects workloads, environments, views and exclusion lists.
type Label struct {
	ID          string `yaml:"-"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Maintainer  string `yaml:"maintainer"`
}

// View selects the workloads sharing one of its labels on one repository.
type View struct {
	ID                     string              `yaml:"-"`
	Type                   string              `yaml:"-"`
	Name                   string              `yaml:"name"`
	Description            string              `yaml:"description"`
	Maintainer             string              `yaml:"maintainer"`
	Labels                 []string            `yaml:"labels"`
	Repository             string              `yaml:"repository"`
	Architectures          []string            `yaml:"architectures"`
	UnwantedPackages       []string            `yaml:"unwanted_packages"`
	UnwantedArchPackages   map[string][]string `yaml:"unwanted_arch_packages"`
	UnwantedSourcePackages []string            `yaml:"unwanted_source_packages"`
}

// Unwanted is an exclusion list proposing packages to drop from views.
type Unwanted struct {
	ID                         string              `yaml:"-"`
	Name                       string              `yaml:"name"`
	Description                string              `yaml:"description"`
	Maintainer                 string              `yaml:"maintainer"`
	Labels                     []string            `yaml:"labels"`
	UnwantedPackages           []string            `yaml:"unwanted_packages"`
	UnwantedArchPackages       map[string][]string `yaml:"unwanted_arch_packages"`
	UnwantedSourcePackages     []string            `yaml:"unwanted_source_packages"`
	UnwantedArchSourcePackages map[string][]string `yaml:"unwanted_arch_source_packages"`
}

// Buildroot lists the packages needed to build the sources of a view.
type Buildroot struct {
	ID             string                                       `yaml:"-"`
	Maintainer     string                                       `yaml:"maintainer"`
	ViewID         string                                       `yaml:"view_id"`
	BaseBuildroot  map[string][]string                          `yaml:"base_buildroot"`
	SourcePackages map[string]map[string]*BuildrootSourcePackage `yaml:"source_packages"`
}

// BuildrootSourcePackage holds the build requirements of one source package.
type BuildrootSourcePackage struct {
	Requires []string `yaml:"requires"`
}

// BuildrootRelations is precomputed relation data for a view's buildroot on
// one arch. Packages is keyed by package id.
type BuildrootRelations struct {
	ID       string                        `json:"-"`
	ViewID   string                        `json:"view_id"`
	Arch     string                        `json:"arch"`
	Packages map[string]*BuildrootRelation `json:"pkgs"`
}

// BuildrootRelation is the relation record of one buildroot package.
type BuildrootRelation struct {
	SourceName string   `json:"source_name"`
	RequiredBy []string `json:"required_by"`
}

// Configs is the full set of loaded configuration documents keyed by id.
type Configs struct {
	Repos              map[string]*Repo
	Envs               map[string]*Env
	Workloads          map[string]*Workload
	Labels             map[string]*Label
	Views              map[string]*View
	Unwanteds          map[string]*Unwanted
	Buildroots         map[string]*Buildroot
	BuildrootRelations map[string]*BuildrootRelations
}

// NewConfigs returns an empty, ready to fill Configs.
func NewConfigs() *Configs {
	return &Configs{
		Repos:              map[string]*Repo{},
		Envs:               map[string]*Env{},
		Workloads:          map[string]*Workload{},
		Labels:             map[string]*Label{},
		Views:              map[string]*View{},
		Unwanteds:          map[string]*Unwanted{},
		Buildroots:         map[string]*Buildroot{},
		BuildrootRelations: map[string]*BuildrootRelations{},
	}
}

// BuildrootForView returns the buildroot bound to a view, if any. When
// several documents name the same view the one with the greatest id wins.
func (c *Configs) BuildrootForView(viewID string) (*Buildroot, bool) {
	var found *Buildroot
	for _, b := range c.Buildroots {
		if b.ViewID != viewID {
			continue
		}
		if found == nil || b.ID > found.ID {
			found = b
		}
	}
	return found, found != nil
}

// BuildrootRelationsFor returns the relation documents for a view and arch,
// sorted by document id. An empty arch selects every arch.
func (c *Configs) BuildrootRelationsFor(viewID, arch string) []*BuildrootRelations {
	var out []*BuildrootRelations
	for _, r := range c.BuildrootRelations {
		if r.ViewID == viewID && (arch == "" || r.Arch == arch) {
			out = append(out, r)
		}
	}
	sortByID(out, func(r *BuildrootRelations) string { return r.ID })
	return out
}
