package ident

import (
	"errors"
	"strings"
	"testing"

	"github.com/open-edge-platform/content-resolver/internal/errs"
)

func TestComposeIDs(t *testing.T) {
	if got := EnvID("base-env", "fedora-rawhide", "x86_64"); got != "base-env:fedora-rawhide:x86_64" {
		t.Fatalf("unexpected env id %q", got)
	}
	if got := WorkloadID("httpd", "base-env", "fedora-rawhide", "aarch64"); got != "httpd:base-env:fedora-rawhide:aarch64" {
		t.Fatalf("unexpected workload id %q", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		want    Key
		wantErr bool
	}{
		{
			name: "env",
			id:   "base-env:repo:x86_64",
			want: Key{EnvConf: "base-env", Repo: "repo", Arch: "x86_64"},
		},
		{
			name: "workload",
			id:   "httpd:base-env:repo:x86_64",
			want: Key{WorkloadConf: "httpd", EnvConf: "base-env", Repo: "repo", Arch: "x86_64"},
		},
		{name: "too few parts", id: "a:b", wantErr: true},
		{name: "too many parts", id: "a:b:c:d:e", wantErr: true},
		{name: "no separator", id: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.id)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.id)
				}
				if !errors.Is(err, errs.ErrInvalidArgument) {
					t.Fatalf("expected InvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if got.String() != tt.id {
				t.Fatalf("round trip mismatch: %q vs %q", got.String(), tt.id)
			}
		})
	}
}

func TestSplitPackageID(t *testing.T) {
	tests := []struct {
		id, name, evr, arch string
	}{
		{"bash-5.2.15-3.fc38.x86_64", "bash", "5.2.15-3.fc38", "x86_64"},
		{"python3-libs-3.11.4-1.fc38.aarch64", "python3-libs", "3.11.4-1.fc38", "aarch64"},
		{"shadow-utils-2:4.13-6.fc38.x86_64", "shadow-utils", "2:4.13-6.fc38", "x86_64"},
		{"foo-bar-000-placeholder.placeholder", "foo-bar", "000-placeholder", "placeholder"},
		{"nodash", "nodash", "", ""},
		{"one-dash", "one-dash", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			name, evr, arch := SplitPackageID(tt.id)
			if name != tt.name || evr != tt.evr || arch != tt.arch {
				t.Fatalf("SplitPackageID(%q) = %q %q %q, want %q %q %q",
					tt.id, name, evr, arch, tt.name, tt.evr, tt.arch)
			}
		})
	}
}

func TestPlaceholderID(t *testing.T) {
	id := PlaceholderID("my-pkg")
	if id != "my-pkg-000-placeholder.placeholder" {
		t.Fatalf("unexpected placeholder id %q", id)
	}
	if !IsPlaceholderID(id) {
		t.Fatal("expected placeholder id to be recognised")
	}
	if IsPlaceholderID("bash-5.2-1.x86_64") {
		t.Fatal("regular id reported as placeholder")
	}
	if PackageName(id) != "my-pkg" {
		t.Fatalf("unexpected name %q", PackageName(id))
	}
}

func TestSourceName(t *testing.T) {
	if got := SourceName("bash-5.2.15-3.fc38.src.rpm"); got != "bash" {
		t.Fatalf("unexpected source name %q", got)
	}
	if got := SourceNVR("bash-5.2.15-3.fc38.src.rpm"); got != "bash-5.2.15-3.fc38" {
		t.Fatalf("unexpected source nvr %q", got)
	}
}

func TestCompareEVR(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0-1", "1.0-1", 0},
		{"1.0-2", "1.0-1", 1},
		{"1.10-1", "1.9-1", 1},
		{"1:1.0-1", "2.0-1", 1},
		{"2.0-1", "1:1.0-1", -1},
	}
	for _, tt := range tests {
		if got := CompareEVR(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareEVR(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestURLSlug(t *testing.T) {
	if got := URLSlug("a:b:c"); got != "a--b--c" {
		t.Fatalf("unexpected slug %q", got)
	}
}

// FuzzParse checks that Parse never panics and only accepts 3 or 4 parts.
func FuzzParse(f *testing.F) {
	f.Add("env:repo:x86_64")
	f.Add("wl:env:repo:x86_64")
	f.Add("")
	f.Add(":::")
	f.Add("a:b")

	f.Fuzz(func(t *testing.T, id string) {
		key, err := Parse(id)
		parts := strings.Count(id, Separator) + 1
		if parts == 3 || parts == 4 {
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", id, err)
			}
			if (parts == 3 || key.IsWorkload()) && key.String() != id {
				t.Fatalf("round trip mismatch %q vs %q", key.String(), id)
			}
			return
		}
		if err == nil {
			t.Fatalf("expected error for %q", id)
		}
	})
}
