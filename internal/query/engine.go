// Package query answers questions about analysis results: which environment
// and workload instances exist, what packages they hold, and how they group
// into views. The result store is treated as immutable, so every answer is
// memoized.
package query

import (
	"fmt"

	"github.com/open-edge-platform/content-resolver/internal/config"
	"github.com/open-edge-platform/content-resolver/internal/store"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
)

// Engine queries one result store together with the configuration it was
// produced from.
type Engine struct {
	data    *store.Data
	configs *config.Configs
	arches  []string
	cache   *Cache
}

// New returns an engine over data and configs. allowedArches is the arch
// candidate set of queries that leave the arch open.
func New(data *store.Data, configs *config.Configs, allowedArches []string) *Engine {
	return &Engine{
		data:    data,
		configs: configs,
		arches:  append([]string(nil), allowedArches...),
		cache:   NewCache(),
	}
}

// Fork returns an engine over the same data with its own cache, for use by
// an independent unit of work.
func (e *Engine) Fork() *Engine {
	return &Engine{data: e.data, configs: e.configs, arches: e.arches, cache: NewCache()}
}

// Cache returns the engine's memo cache.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Data returns the result store.
func (e *Engine) Data() *store.Data {
	return e.data
}

// Configs returns the configuration the engine was built with.
func (e *Engine) Configs() *config.Configs {
	return e.configs
}

// AllowedArches returns the configured arch list.
func (e *Engine) AllowedArches() []string {
	return e.arches
}

func (e *Engine) isAllowedArch(arch string) bool {
	return slice.Contains(e.arches, arch)
}

// Missing configuration referenced by stored results is a programming error;
// store.Data.Validate reports it before queries run.

func (e *Engine) workloadConf(id string) *config.Workload {
	c, ok := e.configs.Workloads[id]
	if !ok {
		panic(fmt.Sprintf("query: unknown workload config %q", id))
	}
	return c
}

func (e *Engine) envConf(id string) *config.Env {
	c, ok := e.configs.Envs[id]
	if !ok {
		panic(fmt.Sprintf("query: unknown environment config %q", id))
	}
	return c
}

func (e *Engine) view(id string) *config.View {
	c, ok := e.configs.Views[id]
	if !ok {
		panic(fmt.Sprintf("query: unknown view %q", id))
	}
	return c
}

func (e *Engine) workload(id string) *store.Workload {
	w, ok := e.data.Workloads[id]
	if !ok {
		panic(fmt.Sprintf("query: unknown workload %q", id))
	}
	return w
}

func (e *Engine) env(id string) *store.Env {
	env, ok := e.data.Envs[id]
	if !ok {
		panic(fmt.Sprintf("query: unknown environment %q", id))
	}
	return env
}

func (e *Engine) pkg(repo, arch, id string) *store.Package {
	p, ok := e.data.Package(repo, arch, id)
	if !ok {
		panic(fmt.Sprintf("query: unknown package %s in %s/%s", id, repo, arch))
	}
	return p
}
