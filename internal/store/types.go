// Package store holds the analysis results produced by the resolver: package
// records per repo and arch, environment instances and workload instances.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Package is one binary package record of a repo and arch.
type Package struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EVR         string `json:"evr"`
	Arch        string `json:"arch"`
	InstallSize int64  `json:"installsize"`
	Description string `json:"description"`
	Summary     string `json:"summary"`
	SourceName  string `json:"source_name"`
	SourceRPM   string `json:"sourcerpm"`
}

// Relation lists the packages depending on one package, by package id.
type Relation struct {
	RequiredBy    []string `json:"required_by"`
	RecommendedBy []string `json:"recommended_by,omitempty"`
	SuggestedBy   []string `json:"suggested_by,omitempty"`
	SourceName    string   `json:"source_name,omitempty"`
	RepoName      string   `json:"reponame,omitempty"`
}

// Relations maps a package id to its reverse dependencies.
type Relations map[string]*Relation

// UnmarshalJSON accepts an empty list, which failed instances carry in
// place of a relation map.
func (r *Relations) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return err
		}
		if len(list) != 0 {
			return fmt.Errorf("pkg_relations: expected an object, got a list of %d items", len(list))
		}
		*r = Relations{}
		return nil
	}
	m := map[string]*Relation{}
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return err
	}
	*r = m
	return nil
}

// InstanceErrors describes why an instance failed to resolve.
type InstanceErrors struct {
	NonExistingPkgs            []string `json:"non_existing_pkgs,omitempty"`
	NonExistingPlaceholderDeps []string `json:"non_existing_placeholder_deps,omitempty"`
	Message                    string   `json:"message,omitempty"`
}

// Env is the resolved base package set of one environment on one repo/arch.
type Env struct {
	EnvConfID string         `json:"env_conf_id"`
	RepoID    string         `json:"repo_id"`
	Arch      string         `json:"arch"`
	PkgIDs    []string       `json:"pkg_ids"`
	Relations Relations      `json:"pkg_relations"`
	Errors    InstanceErrors `json:"errors"`
	Succeeded bool           `json:"succeeded"`
}

// Workload holds the packages a workload adds on top of its environment.
type Workload struct {
	WorkloadConfID    string         `json:"workload_conf_id"`
	EnvConfID         string         `json:"env_conf_id"`
	RepoID            string         `json:"repo_id"`
	Arch              string         `json:"arch"`
	PkgEnvIDs         []string       `json:"pkg_env_ids"`
	PkgAddedIDs       []string       `json:"pkg_added_ids"`
	PkgPlaceholderIDs []string       `json:"pkg_placeholder_ids"`
	EnabledModules    []string       `json:"enabled_modules"`
	Relations         Relations      `json:"pkg_relations"`
	Errors            InstanceErrors `json:"errors"`
	Succeeded         bool           `json:"succeeded"`
	EnvSucceeded      bool           `json:"env_succeeded"`
}

// Data is the full result store.
type Data struct {
	Pkgs      map[string]map[string]map[string]*Package `json:"pkgs"`
	Envs      map[string]*Env                           `json:"envs"`
	Workloads map[string]*Workload                      `json:"workloads"`
}

// NewData returns an empty store.
func NewData() *Data {
	return &Data{
		Pkgs:      map[string]map[string]map[string]*Package{},
		Envs:      map[string]*Env{},
		Workloads: map[string]*Workload{},
	}
}

// Package returns the package record with id in repo and arch.
func (d *Data) Package(repo, arch, id string) (*Package, bool) {
	p, ok := d.Pkgs[repo][arch][id]
	return p, ok
}

// AddPackage stores a package record, creating the repo and arch maps.
func (d *Data) AddPackage(repo, arch string, p *Package) {
	if d.Pkgs[repo] == nil {
		d.Pkgs[repo] = map[string]map[string]*Package{}
	}
	if d.Pkgs[repo][arch] == nil {
		d.Pkgs[repo][arch] = map[string]*Package{}
	}
	d.Pkgs[repo][arch][p.ID] = p
}
