// Package ownership recommends a maintainer for every source component of a
// view. Evidence is collected in layers: layer 0 walks the runtime
// dependencies of each workload from its required packages, and every later
// layer walks the buildroot from the build requirements of the components
// found in the layer before. Within a layer packages are placed into
// breadth-first levels, and the first level holding evidence for a
// component decides its owner.
package ownership

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/open-edge-platform/content-resolver/internal/errs"
	"github.com/open-edge-platform/content-resolver/internal/query"
	"github.com/open-edge-platform/content-resolver/internal/relations"
	"github.com/open-edge-platform/content-resolver/internal/utils/general/slice"
	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
)

// Recommendation is the owner attributed to one component. Top is empty when
// several maintainers tie, in which case TopMultiple holds all of them.
type Recommendation struct {
	Top         string         `json:"top"`
	TopMultiple []string       `json:"top_multiple"`
	All         map[string]int `json:"all"`
}

// Unclear reports a tie between maintainers.
func (r *Recommendation) Unclear() bool {
	return r.Top == "" && len(r.TopMultiple) > 1
}

// Unresolved reports that no evidence was found.
func (r *Recommendation) Unresolved() bool {
	return r.Top == "" && len(r.TopMultiple) == 0
}

// Contribution is the evidence one maintainer has for a component at one
// level.
type Contribution struct {
	// Workloads maps a workload config to the packages of the component it
	// pulled in. Set in layer 0 only.
	Workloads map[string][]string `json:"workloads,omitempty"`
	// BuildSources maps a component being built to the packages of the
	// component its build pulled in. Set in build layers only.
	BuildSources map[string][]string `json:"build_source_names,omitempty"`
	Packages     []string            `json:"pkg_names"`
	Count        int                 `json:"pkg_count"`
}

// Result is the ownership attribution of one view.
type Result struct {
	RunID      uuid.UUID                  `json:"run_id"`
	ViewID     string                     `json:"view_id"`
	Components map[string]*Recommendation `json:"srpm_maintainers"`
	// Ownership maps component, level name and maintainer to the evidence
	// found. Empty levels are left out.
	Ownership map[string]map[string]map[string]*Contribution `json:"ownership_recommendations"`
}

// Unclear returns the components whose owner is a tie, sorted.
func (r *Result) Unclear() []string {
	var out []string
	for _, name := range slice.SortedKeys(r.Components) {
		if r.Components[name].Unclear() {
			out = append(out, name)
		}
	}
	return out
}

// Unresolved returns the components nobody could be attributed to, sorted.
func (r *Result) Unresolved() []string {
	var out []string
	for _, name := range slice.SortedKeys(r.Components) {
		if r.Components[name].Unresolved() {
			out = append(out, name)
		}
	}
	return out
}

// Engine computes ownership recommendations over a query engine.
type Engine struct {
	q        *query.Engine
	skipped  relations.NameSet
	runID    uuid.UUID
	progress io.Writer
}

// NewEngine returns an engine reading from q. Maintainers in skipped are
// never recommended.
func NewEngine(q *query.Engine, skipped []string) *Engine {
	return &Engine{
		q:        q,
		skipped:  relations.NewNameSet(skipped...),
		runID:    uuid.New(),
		progress: os.Stderr,
	}
}

// RunID identifies the results produced by this engine.
func (e *Engine) RunID() uuid.UUID {
	return e.runID
}

// SetProgressOutput redirects the progress bar of ProcessViews.
func (e *Engine) SetProgressOutput(w io.Writer) {
	e.progress = w
}

// ProcessView computes the ownership recommendations of one view.
func (e *Engine) ProcessView(viewID string) (*Result, error) {
	return e.processView(e.q, viewID)
}

func (e *Engine) processView(q *query.Engine, viewID string) (*Result, error) {
	log := logger.Logger()

	if _, ok := q.Configs().Views[viewID]; !ok {
		return nil, errs.Argument(viewID, "unknown view")
	}
	r, err := newViewRun(q, viewID, e.skipped)
	if err != nil {
		return nil, err
	}

	log.Infof("processing ownership recommendations for view %s", viewID)
	log.Infof("  layer 0: %d workloads", len(r.workloads))
	if err := r.processLayerZero(); err != nil {
		return nil, err
	}
	r.resolveComponents()

	previous := r.runtimeSRPMs
	for layer := 1; layer <= MaxLayer; layer++ {
		log.Infof("  layer %d: %d components", layer, len(previous))
		next, err := r.processLayer(layer, previous)
		if err != nil {
			return nil, err
		}
		r.resolveComponents()
		previous = next
	}

	res := r.result()
	res.RunID = e.runID
	log.Infof("view %s: %d components, %d unclear, %d unresolved",
		viewID, len(res.Components), len(res.Unclear()), len(res.Unresolved()))
	return res, nil
}
