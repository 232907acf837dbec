// Package ident builds and parses the composite identifiers used to address
// analysis results: environments, workloads and package NEVRAs.
package ident

import (
	"strings"

	"github.com/open-edge-platform/content-resolver/internal/errs"
	rpmutils "github.com/sassoftware/go-rpmutils"
)

const (
	// Separator joins the parts of environment and workload ids.
	Separator = ":"

	placeholderEVR  = "000-placeholder"
	placeholderArch = "placeholder"
)

// Key addresses one analysis result. WorkloadConf is empty for environments.
type Key struct {
	WorkloadConf string
	EnvConf      string
	Repo         string
	Arch         string
}

// EnvID returns "env_conf:repo:arch".
func EnvID(envConf, repo, arch string) string {
	return envConf + Separator + repo + Separator + arch
}

// WorkloadID returns "workload_conf:env_conf:repo:arch".
func WorkloadID(workloadConf, envConf, repo, arch string) string {
	return workloadConf + Separator + EnvID(envConf, repo, arch)
}

// IsWorkload reports whether the key addresses a workload result.
func (k Key) IsWorkload() bool {
	return k.WorkloadConf != ""
}

// EnvID returns the id of the environment the key runs on.
func (k Key) EnvID() string {
	return EnvID(k.EnvConf, k.Repo, k.Arch)
}

func (k Key) String() string {
	if k.IsWorkload() {
		return WorkloadID(k.WorkloadConf, k.EnvConf, k.Repo, k.Arch)
	}
	return k.EnvID()
}

// Parse splits an env id (three parts) or a workload id (four parts).
// Any other part count is an InvalidArgument error.
func Parse(id string) (Key, error) {
	parts := strings.Split(id, Separator)
	switch len(parts) {
	case 3:
		return Key{EnvConf: parts[0], Repo: parts[1], Arch: parts[2]}, nil
	case 4:
		return Key{WorkloadConf: parts[0], EnvConf: parts[1], Repo: parts[2], Arch: parts[3]}, nil
	default:
		return Key{}, errs.Argument(id, "expected 3 or 4 ':'-separated parts, got %d", len(parts))
	}
}

// URLSlug is the id with separators replaced, used for per-result file names.
func URLSlug(id string) string {
	return strings.ReplaceAll(id, Separator, "--")
}

// PlaceholderID returns the package id of a placeholder package.
func PlaceholderID(name string) string {
	return name + "-" + placeholderEVR + "." + placeholderArch
}

// IsPlaceholderID reports whether id was produced by PlaceholderID.
func IsPlaceholderID(id string) bool {
	return strings.HasSuffix(id, "-"+placeholderEVR+"."+placeholderArch)
}

// PackageName returns the package name of a NEVRA id: everything before the
// second-to-last "-".
func PackageName(id string) string {
	name, _, _ := SplitPackageID(id)
	return name
}

// SplitPackageID splits "name-[epoch:]version-release.arch" into name, evr
// and arch. Ids without enough separators return the whole id as the name.
func SplitPackageID(id string) (name, evr, arch string) {
	rel := strings.LastIndex(id, "-")
	if rel < 0 {
		return id, "", ""
	}
	ver := strings.LastIndex(id[:rel], "-")
	if ver < 0 {
		return id, "", ""
	}
	name = id[:ver]
	rest := id[ver+1:]
	if dot := strings.LastIndex(rest, "."); dot > strings.Index(rest, "-") {
		return name, rest[:dot], rest[dot+1:]
	}
	return name, rest, ""
}

// SourceName returns the package name from a source rpm file name such as
// "bash-5.2.15-3.fc38.src.rpm".
func SourceName(sourceRPM string) string {
	return PackageName(strings.TrimSuffix(sourceRPM, ".rpm"))
}

// SourceNVR strips the ".src.rpm" suffix from a source rpm file name.
func SourceNVR(sourceRPM string) string {
	return strings.TrimSuffix(sourceRPM, ".src.rpm")
}

// CompareEVR compares two epoch:version-release strings the way rpm does.
func CompareEVR(a, b string) int {
	ea, va := splitEpoch(a)
	eb, vb := splitEpoch(b)
	if c := rpmutils.Vercmp(ea, eb); c != 0 {
		return c
	}
	return rpmutils.Vercmp(va, vb)
}

func splitEpoch(evr string) (string, string) {
	if i := strings.Index(evr, ":"); i >= 0 {
		return evr[:i], evr[i+1:]
	}
	return "0", evr
}
