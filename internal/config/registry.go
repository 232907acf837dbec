package config

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader decodes the data section of one configuration document type into
// Configs.
type Loader interface {
	// Document is the value of the document field this loader accepts.
	Document() string

	// Load decodes data for the document with the given id and stores the
	// result in cfgs. arches are the allowed architectures.
	Load(id string, version int, data *yaml.Node, arches []string, cfgs *Configs) error
}

var (
	loadersMu sync.RWMutex
	loaders   = make(map[string]Loader)
)

// RegisterLoader makes a Loader available under its Document().
func RegisterLoader(l Loader) {
	loadersMu.Lock()
	defer loadersMu.Unlock()
	loaders[l.Document()] = l
}

// GetLoader returns the Loader for a document type.
func GetLoader(document string) (Loader, bool) {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	l, ok := loaders[document]
	return l, ok
}

// Documents lists the registered document types.
func Documents() []string {
	loadersMu.RLock()
	defer loadersMu.RUnlock()
	out := make([]string, 0, len(loaders))
	for d := range loaders {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// loaderFunc adapts a typed decode step to the Loader interface.
type loaderFunc[T any] struct {
	document string
	versions []int
	finish   func(id string, v *T, arches []string) error
	store    func(cfgs *Configs, id string, v *T)
}

func (l loaderFunc[T]) Document() string { return l.document }

func (l loaderFunc[T]) Load(id string, version int, data *yaml.Node, arches []string, cfgs *Configs) error {
	if len(l.versions) > 0 && !containsInt(l.versions, version) {
		return fmt.Errorf("%s version %d is not supported", l.document, version)
	}
	v := new(T)
	if data != nil && data.Kind != 0 {
		if err := data.Decode(v); err != nil {
			return fmt.Errorf("decoding %s: %w", l.document, err)
		}
	}
	if l.finish != nil {
		if err := l.finish(id, v, arches); err != nil {
			return err
		}
	}
	l.store(cfgs, id, v)
	return nil
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func sortByID[T any](s []T, id func(T) string) {
	sort.Slice(s, func(i, j int) bool { return id(s[i]) < id(s[j]) })
}
