package config

import (
	"fmt"

	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
)

const defaultPlaceholderDescription = "Description not provided."

func init() {
	RegisterLoader(loaderFunc[Repo]{
		document: "feedback-pipeline-repository",
		versions: []int{2},
		finish:   finishRepo,
		store:    func(c *Configs, id string, v *Repo) { c.Repos[id] = v },
	})
	RegisterLoader(loaderFunc[Env]{
		document: "feedback-pipeline-environment",
		finish: func(id string, v *Env, arches []string) error {
			v.ID = id
			v.ArchPackages = archLists(id, "arch_packages", v.ArchPackages, arches)
			return nil
		},
		store: func(c *Configs, id string, v *Env) { c.Envs[id] = v },
	})
	RegisterLoader(loaderFunc[Workload]{
		document: "feedback-pipeline-workload",
		finish:   finishWorkload,
		store:    func(c *Configs, id string, v *Workload) { c.Workloads[id] = v },
	})
	RegisterLoader(loaderFunc[Label]{
		document: "feedback-pipeline-label",
		finish: func(id string, v *Label, _ []string) error {
			v.ID = id
			return nil
		},
		store: func(c *Configs, id string, v *Label) { c.Labels[id] = v },
	})
	RegisterLoader(loaderFunc[View]{
		document: "feedback-pipeline-compose-view",
		finish: func(id string, v *View, arches []string) error {
			v.ID = id
			v.Type = "compose"
			if v.Repository == "" {
				return fmt.Errorf("view %s does not name a repository", id)
			}
			v.UnwantedArchPackages = archLists(id, "unwanted_arch_packages", v.UnwantedArchPackages, arches)
			return nil
		},
		store: func(c *Configs, id string, v *View) { c.Views[id] = v },
	})
	RegisterLoader(loaderFunc[Unwanted]{
		document: "feedback-pipeline-unwanted",
		finish: func(id string, v *Unwanted, arches []string) error {
			v.ID = id
			v.UnwantedArchPackages = archLists(id, "unwanted_arch_packages", v.UnwantedArchPackages, arches)
			v.UnwantedArchSourcePackages = archLists(id, "unwanted_arch_source_packages", v.UnwantedArchSourcePackages, arches)
			return nil
		},
		store: func(c *Configs, id string, v *Unwanted) { c.Unwanteds[id] = v },
	})
	RegisterLoader(loaderFunc[Buildroot]{
		document: "feedback-pipeline-buildroot",
		finish:   finishBuildroot,
		store:    func(c *Configs, id string, v *Buildroot) { c.Buildroots[id] = v },
	})
}

func finishRepo(id string, v *Repo, arches []string) error {
	log := logger.Logger()
	v.ID = id

	kept := make([]string, 0, len(v.Source.Architectures))
	for _, arch := range v.Source.Architectures {
		if !isAllowed(arches, arch) {
			log.Warnf("%s lists an invalid architecture: %s, ignoring", id, arch)
			continue
		}
		kept = append(kept, arch)
	}
	v.Source.Architectures = kept

	for specID, spec := range v.Source.Repos {
		if spec == nil {
			return fmt.Errorf("repo %s in %s is empty", specID, id)
		}
		if spec.BaseURL == "" {
			return fmt.Errorf("repo %s in %s doesn't list baseurl", specID, id)
		}
		spec.ID = specID
		if spec.Name == "" {
			spec.Name = specID
		}
		if spec.Priority == 0 {
			spec.Priority = 100
		}
	}
	return nil
}

func finishWorkload(id string, v *Workload, arches []string) error {
	log := logger.Logger()
	v.ID = id
	if v.Packages == nil {
		log.Debugf("%s has no packages listed", id)
	}
	v.ArchPackages = archLists(id, "arch_packages", v.ArchPackages, arches)

	if v.Placeholders == nil {
		v.Placeholders = map[string]*Placeholder{}
	}
	for name, p := range v.Placeholders {
		if p == nil {
			p = &Placeholder{}
			v.Placeholders[name] = p
		}
		p.Name = name
		if p.Description == "" {
			p.Description = defaultPlaceholderDescription
		}
	}
	return nil
}

func finishBuildroot(id string, v *Buildroot, arches []string) error {
	log := logger.Logger()
	v.ID = id
	v.BaseBuildroot = archLists(id, "base_buildroot", v.BaseBuildroot, arches)

	sources := make(map[string]map[string]*BuildrootSourcePackage, len(arches))
	for _, arch := range arches {
		sources[arch] = map[string]*BuildrootSourcePackage{}
	}
	for arch, srpms := range v.SourcePackages {
		if !isAllowed(arches, arch) {
			log.Warnf("%s lists an invalid architecture in source_packages: %s, ignoring", id, arch)
			continue
		}
		for name, srpm := range srpms {
			if srpm == nil {
				srpm = &BuildrootSourcePackage{}
			}
			sources[arch][name] = srpm
		}
	}
	v.SourcePackages = sources
	return nil
}

// archLists keeps the allowed arches of an arch-keyed list map and makes
// sure every allowed arch has an entry.
func archLists(id, field string, in map[string][]string, arches []string) map[string][]string {
	log := logger.Logger()
	out := make(map[string][]string, len(arches))
	for _, arch := range arches {
		out[arch] = []string{}
	}
	for arch, names := range in {
		if !isAllowed(arches, arch) {
			log.Warnf("%s lists an invalid architecture in %s: %s, ignoring", id, field, arch)
			continue
		}
		out[arch] = append(out[arch], names...)
	}
	return out
}

func isAllowed(arches []string, arch string) bool {
	for _, a := range arches {
		if a == arch {
			return true
		}
	}
	return false
}
