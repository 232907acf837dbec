package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func TestLoadGlobalConfigDefaults(t *testing.T) {
	cfg, err := LoadGlobalConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.AllowedArches) != len(DefaultAllowedArches) {
		t.Fatalf("expected default arches, got %v", cfg.AllowedArches)
	}
	if cfg.Workers < 1 {
		t.Fatalf("expected positive workers, got %d", cfg.Workers)
	}
}

func TestLoadGlobalConfigFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *GlobalConfig)
	}{
		{
			name:    "overrides",
			content: "allowed_arches: [x86_64]\nskipped_maintainers: [bot]\nworkers: 3\nlogging:\n  level: debug\n",
			check: func(t *testing.T, cfg *GlobalConfig) {
				if len(cfg.AllowedArches) != 1 || cfg.AllowedArches[0] != "x86_64" {
					t.Fatalf("unexpected arches %v", cfg.AllowedArches)
				}
				if len(cfg.SkippedMaintainers) != 1 || cfg.SkippedMaintainers[0] != "bot" {
					t.Fatalf("unexpected skipped maintainers %v", cfg.SkippedMaintainers)
				}
				h := NewConfigHelpers(cfg)
				if h.Workers() != 3 || !h.IsDebugMode() {
					t.Fatalf("unexpected helpers view: workers=%d level=%s", h.Workers(), h.LogLevel())
				}
			},
		},
		{name: "zero workers", content: "workers: 0\n", wantErr: true},
		{name: "empty arches", content: "allowed_arches: []\n", wantErr: true},
		{name: "bad yaml", content: "workers: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "settings.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			cfg, err := LoadGlobalConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestBindFlags(t *testing.T) {
	cfg := DefaultGlobalConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	if err := fs.Parse([]string{"--arch", "s390x,x86_64", "--workers", "2", "--skip-maintainer", "bot"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.AllowedArches) != 2 || cfg.AllowedArches[0] != "s390x" {
		t.Fatalf("unexpected arches %v", cfg.AllowedArches)
	}
	if cfg.Workers != 2 {
		t.Fatalf("unexpected workers %d", cfg.Workers)
	}
	if len(cfg.SkippedMaintainers) != 1 {
		t.Fatalf("unexpected skipped maintainers %v", cfg.SkippedMaintainers)
	}
}

func TestCreateOutputDir(t *testing.T) {
	cfg := DefaultGlobalConfig()
	cfg.OutputDir = filepath.Join(t.TempDir(), "nested", "out")
	dir, err := NewConfigHelpers(cfg).CreateOutputDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("expected directory at %s", dir)
	}
}

func TestOverrideFrom(t *testing.T) {
	flags := DefaultGlobalConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BindFlags(fs)
	if err := fs.Parse([]string{"--arch", "s390x", "--workers", "8"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	fromFile := DefaultGlobalConfig()
	fromFile.OutputDir = "reports"
	fromFile.Workers = 2
	if err := fromFile.OverrideFrom(fs); err != nil {
		t.Fatalf("OverrideFrom: %v", err)
	}
	if fromFile.Workers != 8 || len(fromFile.AllowedArches) != 1 || fromFile.AllowedArches[0] != "s390x" {
		t.Fatalf("flags not applied: %+v", fromFile)
	}
	if fromFile.OutputDir != "reports" {
		t.Fatalf("unset flag overrode file value: %q", fromFile.OutputDir)
	}
}
