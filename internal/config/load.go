package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/open-edge-platform/content-resolver/internal/config/validate"
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

const buildrootRelationsDocument = "buildroot-binary-relations"

// ErrUnknownDocument is returned for documents no loader is registered for.
var ErrUnknownDocument = errors.New("unknown document type")

type documentEnvelope struct {
	Document string    `yaml:"document"`
	Version  int       `yaml:"version"`
	Data     yaml.Node `yaml:"data"`
}

type dataEnvelope struct {
	DocumentType string          `json:"document_type"`
	Version      interface{}     `json:"version"`
	Data         json.RawMessage `json:"data"`
}

// LoadDirectory loads every .yaml configuration document and every .json
// data document in dir. Documents that fail to load are logged and skipped.
func LoadDirectory(dir string, arches []string) (*Configs, error) {
	log := logger.Logger()

	if len(arches) == 0 {
		return nil, errs.Config("allowed_arches", fmt.Errorf("no allowed architectures configured"))
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading config directory %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	cfgs := NewConfigs()
	for _, name := range names {
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".json") {
			continue
		}
		if err := LoadDocument(filepath.Join(dir, name), arches, cfgs); err != nil {
			if errors.Is(err, ErrUnknownDocument) {
				log.Debugf("skipping %s: %v", name, err)
				continue
			}
			log.Errorf("config load error: %v, ignoring", err)
		}
	}

	log.Infof("loaded %d repositories, %d environments, %d workloads, %d labels, %d views, %d exclusion lists, %d buildroots, %d buildroot relation files",
		len(cfgs.Repos), len(cfgs.Envs), len(cfgs.Workloads), len(cfgs.Labels),
		len(cfgs.Views), len(cfgs.Unwanteds), len(cfgs.Buildroots), len(cfgs.BuildrootRelations))
	return cfgs, nil
}

// LoadDocument loads one configuration (.yaml) or data (.json) document
// into cfgs. The document id is the file name without its extension.
func LoadDocument(path string, arches []string, cfgs *Configs) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	base := filepath.Base(path)
	switch {
	case strings.HasSuffix(base, ".yaml"):
		return loadYAMLDocument(strings.TrimSuffix(base, ".yaml"), raw, arches, cfgs)
	case strings.HasSuffix(base, ".json"):
		return loadJSONDocument(strings.TrimSuffix(base, ".json"), raw, arches, cfgs)
	default:
		return errs.Config(path, fmt.Errorf("unsupported file extension"))
	}
}

func loadYAMLDocument(id string, raw []byte, arches []string, cfgs *Configs) error {
	var env documentEnvelope
	if err := yaml.Unmarshal(raw, &env); err != nil {
		return errs.Config(id, fmt.Errorf("parsing YAML: %w", err))
	}
	if env.Document == "" {
		return errs.Config(id, fmt.Errorf("document does not state its purpose"))
	}

	loader, ok := GetLoader(env.Document)
	if !ok {
		return fmt.Errorf("%s: %w %q", id, ErrUnknownDocument, env.Document)
	}
	if validate.HasSchema(env.Document) {
		if err := validate.ValidateDocument(env.Document, raw); err != nil {
			return errs.Config(id, err)
		}
	}
	if err := loader.Load(id, env.Version, &env.Data, arches, cfgs); err != nil {
		return errs.Config(id, err)
	}
	return nil
}

func loadJSONDocument(id string, raw []byte, arches []string, cfgs *Configs) error {
	var env dataEnvelope
	if err := sigsyaml.Unmarshal(raw, &env); err != nil {
		return errs.Config(id, fmt.Errorf("parsing JSON data: %w", err))
	}
	if env.DocumentType == "" || env.Version == nil {
		return errs.Config(id, fmt.Errorf("data file does not state its purpose"))
	}
	if env.DocumentType != buildrootRelationsDocument {
		return fmt.Errorf("%s: %w %q", id, ErrUnknownDocument, env.DocumentType)
	}
	if err := validate.ValidateDocument(env.DocumentType, raw); err != nil {
		return errs.Config(id, err)
	}

	rel := &BuildrootRelations{}
	if err := sigsyaml.Unmarshal(env.Data, rel); err != nil {
		return errs.Config(id, fmt.Errorf("decoding %s: %w", env.DocumentType, err))
	}
	if !isAllowed(arches, rel.Arch) {
		return errs.Config(id, fmt.Errorf("lists an invalid architecture: %s", rel.Arch))
	}
	rel.ID = id
	if rel.Packages == nil {
		rel.Packages = map[string]*BuildrootRelation{}
	}
	for pkgID, r := range rel.Packages {
		if r == nil {
			rel.Packages[pkgID] = &BuildrootRelation{}
		}
	}
	cfgs.BuildrootRelations[id] = rel
	return nil
}
