package query

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/ident"
	"github.com/open-edge-platform/content-resolver/internal/store"
	"github.com/open-edge-platform/content-resolver/internal/store/storetest"
)

const (
	repo = "repo-r"
	view = "view-eln"
)

var testArches = []string{"x86_64", "aarch64", "ppc64le"}

// newFixture builds two labelled workloads and one unrelated workload on
// x86_64 and aarch64. Nothing exists on ppc64le.
func newFixture(t *testing.T) *storetest.Fixture {
	t.Helper()
	f := storetest.New(testArches...)
	f.Repo(repo)
	f.EnvConf("env-base", "erin", []string{"eln"}, "bash")
	f.WorkloadConf("wl-httpd", "alice", []string{"eln"}, "httpd")
	f.WorkloadConf("wl-shell", "bob", []string{"eln"}, "zsh")
	f.WorkloadConf("wl-other", "carol", []string{"other"}, "vim")
	v := f.View(view, repo, "eln")
	v.Architectures = []string{"x86_64", "aarch64"}

	for _, arch := range []string{"x86_64", "aarch64"} {
		f.Env("env-base", repo, arch, "bash", "glibc")
		f.Workload("wl-httpd", "env-base", repo, arch, "httpd", "apr")
		f.Workload("wl-shell", "env-base", repo, arch, "zsh")
		f.Workload("wl-other", "env-base", repo, arch, "vim")
	}
	return f
}

func newEngine(f *storetest.Fixture) *Engine {
	return New(f.Data, f.Configs, testArches)
}

func wid(conf, arch string) string {
	return ident.WorkloadID(conf, "env-base", repo, arch)
}

func TestWorkloadFiltering(t *testing.T) {
	e := newEngine(newFixture(t))

	all := e.WorkloadIDs(Filter{})
	if len(all) != 6 {
		t.Fatalf("expected 6 workloads, got %v", all)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1] >= all[i] {
			t.Fatalf("ids not sorted and unique: %v", all)
		}
	}
	if !reflect.DeepEqual(all, e.WorkloadIDs(Filter{})) {
		t.Fatal("repeated call returned different ids")
	}

	tests := []struct {
		name   string
		filter Filter
		has    bool
		count  int
	}{
		{name: "one conf", filter: Filter{WorkloadConf: "wl-httpd"}, has: true, count: 2},
		{name: "one arch", filter: Filter{Arch: "aarch64"}, has: true, count: 3},
		{name: "empty arch", filter: Filter{Arch: "ppc64le"}, has: false, count: 0},
		{name: "unknown repo", filter: Filter{Repo: "nope"}, has: false, count: 0},
		{name: "exact", filter: Filter{WorkloadConf: "wl-shell", EnvConf: "env-base", Repo: repo, Arch: "x86_64"}, has: true, count: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.HasWorkloads(tt.filter); got != tt.has {
				t.Errorf("HasWorkloads = %v, want %v", got, tt.has)
			}
			if got := e.WorkloadIDs(tt.filter); len(got) != tt.count {
				t.Errorf("WorkloadIDs = %v, want %d ids", got, tt.count)
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	e := newEngine(newFixture(t))

	arches, err := e.WorkloadDimension(Filter{WorkloadConf: "wl-httpd"}, Arches)
	if err != nil {
		t.Fatalf("WorkloadDimension: %v", err)
	}
	if !reflect.DeepEqual(arches, []string{"aarch64", "x86_64"}) {
		t.Errorf("arches = %v", arches)
	}

	confs, err := e.WorkloadDimension(Filter{Arch: "x86_64"}, WorkloadConfs)
	if err != nil {
		t.Fatalf("WorkloadDimension: %v", err)
	}
	if !reflect.DeepEqual(confs, []string{"wl-httpd", "wl-other", "wl-shell"}) {
		t.Errorf("workload confs = %v", confs)
	}

	repos, err := e.EnvDimension(Filter{}, Repos)
	if err != nil || !reflect.DeepEqual(repos, []string{repo}) {
		t.Errorf("EnvDimension(repos) = %v, %v", repos, err)
	}

	if _, err := e.WorkloadDimension(Filter{}, Dimension("bogus")); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument for unknown dimension, got %v", err)
	}
	if _, err := e.EnvDimension(Filter{}, WorkloadConfs); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument for env workload dimension, got %v", err)
	}
}

func TestIDVariants(t *testing.T) {
	e := newEngine(newFixture(t))

	ids, err := e.WorkloadIDsFor(ident.EnvID("env-base", repo, "x86_64"))
	if err != nil {
		t.Fatalf("WorkloadIDsFor: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("expected every workload on the env, got %v", ids)
	}

	envs, err := e.EnvIDsFor(wid("wl-httpd", "x86_64"))
	if err != nil {
		t.Fatalf("EnvIDsFor: %v", err)
	}
	if !reflect.DeepEqual(envs, []string{ident.EnvID("env-base", repo, "x86_64")}) {
		t.Errorf("EnvIDsFor = %v", envs)
	}

	has, err := e.HasEnvsFor(ident.EnvID("env-base", repo, "ppc64le"))
	if err != nil || has {
		t.Errorf("HasEnvsFor(ppc64le) = %v, %v", has, err)
	}

	for _, bad := range []string{"a:b", "a:b:c:d:e", ""} {
		if _, err := e.WorkloadIDsFor(bad); !errors.Is(err, errs.ErrInvalidArgument) {
			t.Errorf("WorkloadIDsFor(%q): expected InvalidArgument, got %v", bad, err)
		}
		if _, err := e.EnvSizeFor(bad); !errors.Is(err, errs.ErrInvalidArgument) {
			t.Errorf("EnvSizeFor(%q): expected InvalidArgument, got %v", bad, err)
		}
	}
}

func TestWorkloadPackages(t *testing.T) {
	f := newFixture(t)
	conf := f.Configs.Workloads["wl-httpd"]
	wl := f.Data.Workloads[wid("wl-httpd", "x86_64")]
	phID := f.Placeholder(conf, wl, &config.Placeholder{Name: "mod-extra", SRPM: "mod-extra-src"})
	e := newEngine(f)

	pkgs := e.WorkloadPackages(Filter{WorkloadConf: "wl-httpd", Arch: "x86_64"})
	ids := make([]string, 0, len(pkgs))
	byName := map[string]PackageResult{}
	for _, p := range pkgs {
		ids = append(ids, p.ID)
		byName[p.Name] = p
	}
	want := []string{
		storetest.ID("apr", "x86_64"),
		storetest.ID("bash", "x86_64"),
		storetest.ID("glibc", "x86_64"),
		storetest.ID("httpd", "x86_64"),
		phID,
	}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}

	id := wid("wl-httpd", "x86_64")
	if got := byName["httpd"].RequiredIn; !reflect.DeepEqual(got, []string{id}) {
		t.Errorf("httpd required in %v", got)
	}
	if got := byName["bash"]; len(got.RequiredIn) != 0 || !reflect.DeepEqual(got.EnvIn, []string{id}) {
		t.Errorf("bash provenance %+v", got)
	}
	if got := byName["apr"]; len(got.EnvIn) != 0 || len(got.RequiredIn) != 0 {
		t.Errorf("apr provenance %+v", got)
	}

	ph := byName["mod-extra"]
	if ph.EVR != "000-placeholder" || ph.Arch != "placeholder" || ph.InstallSize != 0 ||
		ph.SourceName != "mod-extra-src" || !reflect.DeepEqual(ph.RequiredIn, []string{id}) {
		t.Errorf("placeholder record %+v", ph)
	}

	for _, p := range pkgs {
		in := map[string]bool{}
		for _, w := range p.In {
			in[w] = true
		}
		for _, w := range append(append([]string{}, p.RequiredIn...), p.EnvIn...) {
			if !in[w] {
				t.Errorf("%s tagged with %s outside q_in", p.ID, w)
			}
		}
	}

	if size := e.WorkloadSize(Filter{WorkloadConf: "wl-httpd", Arch: "x86_64"}); size != 400 {
		t.Errorf("WorkloadSize = %d, want 400", size)
	}

	names, err := e.WorkloadPackageNames(Filter{WorkloadConf: "wl-httpd"}, FieldSourceNames)
	if err != nil {
		t.Fatalf("WorkloadPackageNames: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"apr", "bash", "glibc", "httpd", "mod-extra-src"}) {
		t.Errorf("source names = %v", names)
	}
	if _, err := e.WorkloadPackageNames(Filter{}, FieldNEVRs); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument for nevrs, got %v", err)
	}
}

func TestEnvPackages(t *testing.T) {
	e := newEngine(newFixture(t))

	pkgs, err := e.EnvPackagesFor(wid("wl-shell", "aarch64"))
	if err != nil {
		t.Fatalf("EnvPackagesFor: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("expected bash and glibc, got %+v", pkgs)
	}
	envID := ident.EnvID("env-base", repo, "aarch64")
	if pkgs[0].Name != "bash" || !reflect.DeepEqual(pkgs[0].RequiredIn, []string{envID}) {
		t.Errorf("bash should be required by the env: %+v", pkgs[0])
	}
	if len(pkgs[1].RequiredIn) != 0 {
		t.Errorf("glibc should not be required: %+v", pkgs[1])
	}

	if size := e.EnvSize(Filter{}); size != 400 {
		t.Errorf("EnvSize across arches = %d, want 400", size)
	}
}

func TestFailedEnvironment(t *testing.T) {
	f := newFixture(t)
	f.FailEnv(f.Data.Envs[ident.EnvID("env-base", repo, "aarch64")], "solver failed")
	e := newEngine(f)

	wl := f.Data.Workloads[wid("wl-httpd", "aarch64")]
	if wl.Succeeded || wl.EnvSucceeded || len(wl.PkgEnvIDs)+len(wl.PkgAddedIDs) != 0 {
		t.Fatalf("workload on failed env not failed: %+v", wl)
	}
	if wl.Errors.Message != store.FailedEnvMessage {
		t.Errorf("message = %q", wl.Errors.Message)
	}

	if e.WorkloadSucceeded(Filter{WorkloadConf: "wl-httpd"}) {
		t.Error("WorkloadSucceeded should be false")
	}
	if !e.WorkloadSucceeded(Filter{WorkloadConf: "wl-httpd", Arch: "x86_64"}) {
		t.Error("x86_64 workload should still succeed")
	}
	if e.EnvSucceeded(Filter{}) {
		t.Error("EnvSucceeded should be false")
	}

	if pkgs := e.WorkloadPackages(Filter{WorkloadConf: "wl-httpd", Arch: "aarch64"}); len(pkgs) != 0 {
		t.Errorf("failed workload exposes packages: %+v", pkgs)
	}
	if pkgs := e.WorkloadPackages(Filter{WorkloadConf: "wl-httpd"}); len(pkgs) != 4 {
		t.Errorf("succeeded workload packages hidden: %d packages", len(pkgs))
	}

	status := e.Maintainers()
	got := map[string]bool{}
	for _, s := range status {
		got[s.Name] = s.AllSucceeded
	}
	want := map[string]bool{"alice": false, "bob": false, "carol": false, "erin": false}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Maintainers = %+v", status)
	}
}

func TestWorkloadsInView(t *testing.T) {
	e := newEngine(newFixture(t))

	all, err := e.WorkloadsInView(view, "", "")
	if err != nil {
		t.Fatalf("WorkloadsInView: %v", err)
	}
	want := []string{wid("wl-httpd", "aarch64"), wid("wl-httpd", "x86_64"), wid("wl-shell", "aarch64"), wid("wl-shell", "x86_64")}
	if !reflect.DeepEqual(all, want) {
		t.Errorf("WorkloadsInView = %v, want %v", all, want)
	}

	bob, err := e.WorkloadsInView(view, "x86_64", "bob")
	if err != nil || !reflect.DeepEqual(bob, []string{wid("wl-shell", "x86_64")}) {
		t.Errorf("WorkloadsInView(bob) = %v, %v", bob, err)
	}

	outside, err := e.WorkloadsInView(view, "ppc64le", "")
	if err != nil || len(outside) != 0 {
		t.Errorf("arch outside view should be empty, got %v, %v", outside, err)
	}

	if _, err := e.WorkloadsInView(view, "s390x", ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument for unsupported arch, got %v", err)
	}

	if got := e.ArchesInView(view); !reflect.DeepEqual(got, []string{"aarch64", "x86_64"}) {
		t.Errorf("ArchesInView = %v", got)
	}

	maintainers, err := e.ViewMaintainers(view, "x86_64")
	if err != nil || !reflect.DeepEqual(maintainers, []string{"alice", "bob"}) {
		t.Errorf("ViewMaintainers = %v, %v", maintainers, err)
	}

	ok, err := e.ViewSucceeded(view, "", "")
	if err != nil || !ok {
		t.Errorf("ViewSucceeded = %v, %v", ok, err)
	}
}

func TestViewPackages(t *testing.T) {
	f := newFixture(t)
	e := newEngine(f)

	pkgs, err := e.ViewPackages(view, "x86_64", "")
	if err != nil {
		t.Fatalf("ViewPackages: %v", err)
	}
	byName := map[string]PackageResult{}
	for _, p := range pkgs {
		byName[p.Name] = p
	}

	union := map[string]bool{}
	for _, w := range []string{wid("wl-httpd", "x86_64"), wid("wl-shell", "x86_64")} {
		wl := f.Data.Workloads[w]
		for _, id := range append(append([]string{}, wl.PkgEnvIDs...), wl.PkgAddedIDs...) {
			union[id] = true
		}
	}
	if len(pkgs) != len(union) {
		t.Errorf("view has %d packages, union of instances has %d", len(pkgs), len(union))
	}

	bash := byName["bash"]
	if len(bash.EnvIn) != 2 || len(bash.Maintainers) != 0 || len(bash.DepIn) != 0 {
		t.Errorf("bash provenance %+v", bash)
	}
	apr := byName["apr"]
	if !reflect.DeepEqual(apr.DepIn, []string{wid("wl-httpd", "x86_64")}) || !reflect.DeepEqual(apr.Maintainers, []string{"alice"}) {
		t.Errorf("apr provenance %+v", apr)
	}
	if got := byName["zsh"].Maintainers; !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("zsh maintainers %v", got)
	}
	if _, ok := byName["vim"]; ok {
		t.Error("package of unlabelled workload in view")
	}

	alice, err := e.ViewPackageNames(view, "x86_64", FieldBinaryNames, "alice")
	if err != nil || !reflect.DeepEqual(alice, []string{"apr", "httpd"}) {
		t.Errorf("alice's packages = %v, %v", alice, err)
	}

	nevrs, err := e.ViewPackageNames(view, "x86_64", FieldNEVRs, "bob")
	if err != nil || !reflect.DeepEqual(nevrs, []string{"zsh-" + storetest.EVR}) {
		t.Errorf("bob's nevrs = %v, %v", nevrs, err)
	}
	if _, err := e.ViewPackageNames(view, "x86_64", PackageField("sizes"), ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument for unknown field, got %v", err)
	}
	if _, err := e.ViewPackages(view, "", ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument without arch, got %v", err)
	}
}

func TestViewPackageNameDetails(t *testing.T) {
	f := newFixture(t)
	f.Data.AddPackage(repo, "aarch64", &store.Package{
		ID: "httpd-2.0-1.aarch64", Name: "httpd", EVR: "2.0-1", Arch: "aarch64",
		SourceName: "httpd", SourceRPM: "httpd-2.0-1.src.rpm",
	})
	wl := f.Data.Workloads[wid("wl-shell", "aarch64")]
	wl.PkgAddedIDs = append(wl.PkgAddedIDs, "httpd-2.0-1.aarch64")
	e := newEngine(f)

	details, err := e.ViewPackageNameDetails("httpd", view)
	if err != nil {
		t.Fatalf("ViewPackageNameDetails: %v", err)
	}
	var ids []string
	for _, p := range details {
		ids = append(ids, p.ID)
	}
	want := []string{"httpd-2.0-1.aarch64", storetest.ID("httpd", "aarch64"), storetest.ID("httpd", "x86_64")}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("details = %v, want %v", ids, want)
	}
	if details[0].SourceNVR != "httpd-2.0-1" {
		t.Errorf("source nvr = %q", details[0].SourceNVR)
	}
}

func TestViewBuildroot(t *testing.T) {
	f := newFixture(t)
	f.Sources["gcc"] = "gcc-src"
	br := f.Buildroot("br-eln", view)
	br.BaseBuildroot["x86_64"] = []string{"rpm-build"}
	f.BuildRequires(br, "x86_64", "httpd", "gcc", "rpm-build")
	f.BuildrootRelations("rel-eln-x86_64", view, "x86_64", map[string][]string{
		"gcc":       {"rpm-build"},
		"rpm-build": nil,
	})
	f.View("view-other", repo, "other")
	e := newEngine(f)

	pkgs, err := e.ViewBuildrootPackages(view, "x86_64")
	if err != nil {
		t.Fatalf("ViewBuildrootPackages: %v", err)
	}
	want := []BuildrootPackage{
		{Name: "gcc", RequiredBy: []string{"httpd"}, SourceName: "gcc-src"},
		{Name: "rpm-build", RequiredBy: []string{"httpd"}, BaseBuildroot: true, SourceName: "rpm-build"},
	}
	if !reflect.DeepEqual(pkgs, want) {
		t.Errorf("buildroot = %+v, want %+v", pkgs, want)
	}

	srpms, err := e.ViewBuildrootSourceNames(view, "x86_64")
	if err != nil || !reflect.DeepEqual(srpms, []string{"gcc-src", "rpm-build"}) {
		t.Errorf("buildroot sources = %v, %v", srpms, err)
	}

	none, err := e.ViewBuildrootPackages("view-other", "x86_64")
	if err != nil || len(none) != 0 {
		t.Errorf("view without buildroot = %v, %v", none, err)
	}
	if _, err := e.ViewBuildrootPackages(view, ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument without arch, got %v", err)
	}
}

func TestViewUnwanted(t *testing.T) {
	f := newFixture(t)
	v := f.Configs.Views[view]
	v.UnwantedPackages = []string{"telnet"}
	v.UnwantedSourcePackages = []string{"glibc"}
	u := f.Unwanted("unw-eln", "dave", []string{"eln"}, "telnet", "nano")
	u.UnwantedArchPackages["aarch64"] = []string{"syslinux"}
	u.UnwantedArchSourcePackages["x86_64"] = []string{"zsh"}
	f.Unwanted("unw-other", "erin", []string{"other"}, "emacs")
	e := newEngine(f)

	summarize := func(pkgs []UnwantedPackage) map[string]UnwantedPackage {
		out := map[string]UnwantedPackage{}
		for _, p := range pkgs {
			out[p.Name] = p
		}
		return out
	}

	all, err := e.ViewUnwantedPackages(view, "x86_64", UnwantedAll, "")
	if err != nil {
		t.Fatalf("ViewUnwantedPackages: %v", err)
	}
	want := map[string]UnwantedPackage{
		"glibc":  {Name: "glibc", InView: true, ListIDs: []string{}},
		"nano":   {Name: "nano", ListIDs: []string{"unw-eln"}},
		"telnet": {Name: "telnet", InView: true, ListIDs: []string{"unw-eln"}},
		"zsh":    {Name: "zsh", ListIDs: []string{"unw-eln"}},
	}
	if got := summarize(all); !reflect.DeepEqual(got, want) {
		t.Errorf("unwanted = %+v, want %+v", got, want)
	}

	dave, err := e.ViewUnwantedPackages(view, "x86_64", UnwantedAll, "dave")
	if err != nil {
		t.Fatal(err)
	}
	if got := summarize(dave); len(got) != 3 || got["telnet"].InView {
		t.Errorf("maintainer filter should drop confirmed entries: %+v", got)
	}

	confirmed, err := e.ViewUnwantedPackages(view, "x86_64", UnwantedConfirmed, "")
	if err != nil || len(confirmed) != 2 {
		t.Errorf("confirmed = %+v, %v", confirmed, err)
	}

	everywhere, err := e.ViewUnwantedPackages(view, "", UnwantedProposals, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := summarize(everywhere); got["syslinux"].InView || !reflect.DeepEqual(got["syslinux"].ListIDs, []string{"unw-eln"}) {
		t.Errorf("arch proposals should behave like base proposals: %+v", got["syslinux"])
	}

	if _, err := e.ViewUnwantedPackages(view, "x86_64", UnwantedList("maybe"), ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument for unknown list, got %v", err)
	}
}

func TestViewPlaceholdersAndModules(t *testing.T) {
	f := newFixture(t)
	conf := f.Configs.Workloads["wl-httpd"]
	conf.ModulesEnable = []string{"nodejs:18"}
	wl := f.Data.Workloads[wid("wl-httpd", "x86_64")]
	wl.EnabledModules = []string{"nodejs:18", "perl:5"}
	f.Placeholder(conf, wl, &config.Placeholder{
		Name: "mod-extra", SRPM: "mod-extra-src", BuildRequires: []string{"make", "gcc"}, LimitArches: []string{"x86_64"},
	})
	conf.Placeholders["no-source"] = &config.Placeholder{Name: "no-source", BuildRequires: []string{"cmake"}}
	e := newEngine(f)

	srpms, err := e.ViewPlaceholderSRPMs(view, "x86_64")
	if err != nil {
		t.Fatalf("ViewPlaceholderSRPMs: %v", err)
	}
	if !reflect.DeepEqual(srpms, []PlaceholderSRPM{{Name: "mod-extra-src", BuildRequires: []string{"gcc", "make"}}}) {
		t.Errorf("placeholder srpms = %+v", srpms)
	}
	if other, err := e.ViewPlaceholderSRPMs(view, "aarch64"); err != nil || len(other) != 0 {
		t.Errorf("limit_arches ignored: %+v, %v", other, err)
	}
	if _, err := e.ViewPlaceholderSRPMs(view, ""); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected InvalidArgument without arch, got %v", err)
	}

	modules, err := e.ViewModules(view, "x86_64", "")
	if err != nil {
		t.Fatalf("ViewModules: %v", err)
	}
	id := wid("wl-httpd", "x86_64")
	want := []ModuleResult{
		{ID: "nodejs:18", In: []string{id}, RequiredIn: []string{id}, DepIn: []string{}},
		{ID: "perl:5", In: []string{id}, RequiredIn: []string{}, DepIn: []string{id}},
	}
	if !reflect.DeepEqual(modules, want) {
		t.Errorf("modules = %+v, want %+v", modules, want)
	}
}

func TestCache(t *testing.T) {
	e := newEngine(newFixture(t))

	first := e.WorkloadIDs(Filter{})
	second := e.WorkloadIDs(Filter{})
	if !reflect.DeepEqual(first, second) {
		t.Fatal("cached result differs")
	}
	if s := e.Cache().Stats(); s.Misses != 1 || s.Hits != 1 {
		t.Fatalf("stats = %+v, want 1 miss and 1 hit", s)
	}

	before := e.Cache().Stats().Size
	for i := 0; i < 2; i++ {
		if _, err := e.WorkloadDimension(Filter{}, Dimension("bogus")); err == nil {
			t.Fatal("expected error")
		}
	}
	if after := e.Cache().Stats().Size; after != before {
		t.Errorf("errors were cached: size %d -> %d", before, after)
	}

	fork := e.Fork()
	if s := fork.Cache().Stats(); s.Size != 0 || s.Hits != 0 {
		t.Errorf("fork shares cache: %+v", s)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fork.WorkloadPackages(Filter{Arch: "x86_64"})
		}()
	}
	wg.Wait()
	if s := fork.Cache().Stats(); s.Misses != 2 {
		t.Errorf("concurrent lookups computed %d values, want 2", s.Misses)
	}
}

func TestMemoWithoutCache(t *testing.T) {
	calls := 0
	for i := 0; i < 2; i++ {
		v, err := memo[int](nil, "k", func() (int, error) {
			calls++
			return 7, nil
		})
		if err != nil || v != 7 {
			t.Fatalf("memo = %d, %v", v, err)
		}
	}
	if calls != 2 {
		t.Errorf("nil cache should always compute, got %d calls", calls)
	}
}
