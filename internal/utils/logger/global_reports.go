package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// StringListReport collects items to be written as a flat list file.
type StringListReport struct {
	Title string
	Items []string
}

var (
	reportMu   sync.Mutex
	reports    = map[string]*StringListReport{}
	ReportPath = "output"
)

// AddReportItem appends an item to the report with the given title.
func AddReportItem(title, item string) {
	reportMu.Lock()
	defer reportMu.Unlock()
	r, ok := reports[title]
	if !ok {
		r = &StringListReport{Title: title}
		reports[title] = r
	}
	r.Items = append(r.Items, item)
}

// ReportItems returns a copy of the items collected under title.
func ReportItems(title string) []string {
	reportMu.Lock()
	defer reportMu.Unlock()
	r, ok := reports[title]
	if !ok {
		return nil
	}
	return append([]string(nil), r.Items...)
}

// WriteReports writes every collected report to ReportPath as
// report-<title>.txt, one item per line, and clears them.
func WriteReports() error {
	reportMu.Lock()
	defer reportMu.Unlock()

	if len(reports) == 0 {
		return nil
	}
	if err := os.MkdirAll(ReportPath, 0755); err != nil {
		return fmt.Errorf("creating base path: %w", err)
	}

	for title, r := range reports {
		if err := writeReport(r); err != nil {
			return fmt.Errorf("writing report %s: %w", title, err)
		}
	}
	reports = map[string]*StringListReport{}
	return nil
}

func writeReport(r *StringListReport) error {
	reportFullPath := filepath.Join(ReportPath, fmt.Sprintf("report-%s.txt", safeTitle(r.Title)))

	f, err := os.OpenFile(reportFullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	for _, item := range r.Items {
		if _, err := fmt.Fprintln(f, item); err != nil {
			return fmt.Errorf("writing to file: %w", err)
		}
	}
	return nil
}

// safeTitle replaces anything but ASCII letters and digits with underscores.
func safeTitle(title string) string {
	if title == "" {
		return "untitled"
	}
	out := make([]rune, 0, len(title))
	for _, r := range title {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
		} else {
			out = append(out, '_')
		}
	}
	return string(out)
}
