package ownership

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/open-edge-platform/content-resolver/internal/utils/logger"
)

// ProcessViews computes the recommendations of several views using a pool
// of workers. Every view runs on its own fork of the query engine. A single
// progress bar tracks views completed vs total. Results are returned in the
// order of viewIDs; the first error cancels the remaining views.
func (e *Engine) ProcessViews(ctx context.Context, viewIDs []string, workers int) ([]*Result, error) {
	log := logger.Logger()
	if workers < 1 {
		workers = 1
	}

	bar := progressbar.NewOptions(len(viewIDs),
		progressbar.OptionSetWriter(e.progress),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription("ownership"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)

	results := make([]*Result, len(viewIDs))
	var barMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, viewID := range viewIDs {
		i, viewID := i, viewID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := e.processView(e.q.Fork(), viewID)
			if err != nil {
				return fmt.Errorf("processing view %s: %w", viewID, err)
			}
			results[i] = res
			reportComponents(res)

			barMu.Lock()
			bar.Describe(fmt.Sprintf("ownership %s", viewID))
			bar.Add(1)
			barMu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	bar.Finish()
	if err != nil {
		log.Errorf("ownership run %s failed: %v", e.runID, err)
		return nil, err
	}
	return results, nil
}

// ReportTitle returns the title of the flat list report collecting a kind
// of component ("unclear" or "unresolved") for a view.
func ReportTitle(kind, viewID string) string {
	return fmt.Sprintf("ownership-%s-%s", kind, viewID)
}

func reportComponents(res *Result) {
	for _, name := range res.Unclear() {
		logger.AddReportItem(ReportTitle("unclear", res.ViewID), name)
	}
	for _, name := range res.Unresolved() {
		logger.AddReportItem(ReportTitle("unresolved", res.ViewID), name)
	}
}
