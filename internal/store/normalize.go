package store

import (
	"errors"
	"fmt"

	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
)

// FailedEnvMessage is the error message of workloads whose environment failed.
const FailedEnvMessage = "Failed to analyze this workload because of an error while analyzing the environment. " +
	"Please see the associated environment results for a detailed error message."

// NewFailedWorkload returns the record of a workload that could not be
// analyzed because its environment failed.
func NewFailedWorkload(key ident.Key) *Workload {
	return &Workload{
		WorkloadConfID:    key.WorkloadConf,
		EnvConfID:         key.EnvConf,
		RepoID:            key.Repo,
		Arch:              key.Arch,
		PkgEnvIDs:         []string{},
		PkgAddedIDs:       []string{},
		PkgPlaceholderIDs: []string{},
		EnabledModules:    []string{},
		Relations:         Relations{},
		Errors:            InstanceErrors{Message: FailedEnvMessage},
		Succeeded:         false,
		EnvSucceeded:      false,
	}
}

// Normalize fills instance fields missing from their ids and enforces the
// failure invariants: a workload on a failed environment is replaced by its
// failed form, and failed instances never expose package data.
func (d *Data) Normalize() {
	log := logger.Logger()

	for id, env := range d.Envs {
		if env == nil {
			env = &Env{}
			d.Envs[id] = env
		}
		if key, err := ident.Parse(id); err == nil && !key.IsWorkload() {
			fillString(&env.EnvConfID, key.EnvConf)
			fillString(&env.RepoID, key.Repo)
			fillString(&env.Arch, key.Arch)
		}
		if env.Relations == nil {
			env.Relations = Relations{}
		}
		if !env.Succeeded {
			env.PkgIDs = []string{}
			env.Relations = Relations{}
		}
	}

	for id, wl := range d.Workloads {
		if wl == nil {
			wl = &Workload{}
			d.Workloads[id] = wl
		}
		key, err := ident.Parse(id)
		if err == nil && key.IsWorkload() {
			fillString(&wl.WorkloadConfID, key.WorkloadConf)
			fillString(&wl.EnvConfID, key.EnvConf)
			fillString(&wl.RepoID, key.Repo)
			fillString(&wl.Arch, key.Arch)
		}
		if wl.Relations == nil {
			wl.Relations = Relations{}
		}

		envID := ident.EnvID(wl.EnvConfID, wl.RepoID, wl.Arch)
		if env, ok := d.Envs[envID]; ok && !env.Succeeded {
			if wl.Succeeded || wl.EnvSucceeded || len(wl.PkgEnvIDs)+len(wl.PkgAddedIDs)+len(wl.PkgPlaceholderIDs) > 0 {
				log.Debugf("workload %s runs on failed environment %s, marking it failed", id, envID)
			}
			d.Workloads[id] = NewFailedWorkload(ident.Key{
				WorkloadConf: wl.WorkloadConfID,
				EnvConf:      wl.EnvConfID,
				Repo:         wl.RepoID,
				Arch:         wl.Arch,
			})
			continue
		}
		if !wl.Succeeded {
			wl.PkgEnvIDs = []string{}
			wl.PkgAddedIDs = []string{}
			wl.PkgPlaceholderIDs = []string{}
			wl.EnabledModules = []string{}
			wl.Relations = Relations{}
		}
	}
}

// Validate checks that every instance refers to loaded configuration and to
// package records that exist. It reports all problems at once.
func (d *Data) Validate(cfgs *config.Configs) error {
	var problems []error
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	for _, id := range slice.SortedKeys(d.Envs) {
		env := d.Envs[id]
		if id != ident.EnvID(env.EnvConfID, env.RepoID, env.Arch) {
			addf("environment %s: id does not match its fields", id)
		}
		if _, ok := cfgs.Envs[env.EnvConfID]; !ok {
			addf("environment %s: unknown environment config %q", id, env.EnvConfID)
		}
		if _, ok := cfgs.Repos[env.RepoID]; !ok {
			addf("environment %s: unknown repository %q", id, env.RepoID)
		}
		for _, pkgID := range env.PkgIDs {
			if _, ok := d.Package(env.RepoID, env.Arch, pkgID); !ok {
				addf("environment %s: unknown package %s", id, pkgID)
			}
		}
	}

	for _, id := range slice.SortedKeys(d.Workloads) {
		wl := d.Workloads[id]
		if id != ident.WorkloadID(wl.WorkloadConfID, wl.EnvConfID, wl.RepoID, wl.Arch) {
			addf("workload %s: id does not match its fields", id)
		}
		conf, ok := cfgs.Workloads[wl.WorkloadConfID]
		if !ok {
			addf("workload %s: unknown workload config %q", id, wl.WorkloadConfID)
		}
		if _, ok := cfgs.Envs[wl.EnvConfID]; !ok {
			addf("workload %s: unknown environment config %q", id, wl.EnvConfID)
		}
		if _, ok := cfgs.Repos[wl.RepoID]; !ok {
			addf("workload %s: unknown repository %q", id, wl.RepoID)
		}
		for _, ids := range [][]string{wl.PkgEnvIDs, wl.PkgAddedIDs} {
			for _, pkgID := range ids {
				if _, ok := d.Package(wl.RepoID, wl.Arch, pkgID); !ok {
					addf("workload %s: unknown package %s", id, pkgID)
				}
			}
		}
		if conf != nil {
			for _, pkgID := range wl.PkgPlaceholderIDs {
				if _, ok := conf.Placeholders[ident.PackageName(pkgID)]; !ok {
					addf("workload %s: unknown placeholder %s", id, pkgID)
				}
			}
		}
	}

	if len(problems) > 0 {
		return errs.Data("result store", errors.Join(problems...))
	}
	return nil
}

func fillString(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
