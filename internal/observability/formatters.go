// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/job-matcher/internal/matching"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// describeFilter renders a salary filter in rupees.
func describeFilter(f matching.SalaryFilter) string {
	switch f.Kind {
	case matching.SalaryMax:
		return "at most " + matching.FormatRupees(f.Value)
	case matching.SalaryMin:
		return "at least " + matching.FormatRupees(f.Value)
	case matching.SalaryRange:
		return matching.FormatRupees(f.Min) + " to " + matching.FormatRupees(f.Max)
	default:
		return "none"
	}
}

// PrintMatchResults outputs the query signals and the top kept postings.
func (p *Printer) PrintMatchResults(r *matching.Ranking) {
	if r == nil {
		return
	}

	var sb strings.Builder
	category := r.UserCategory
	if category == "" {
		category = "(none)"
	}
	fmt.Fprintf(&sb, "Category:  %s\n", category)
	fmt.Fprintf(&sb, "Salary:    %s\n", describeFilter(r.SalaryFilter))
	fmt.Fprintf(&sb, "Matched:   %d of %d postings\n", len(r.Results), len(r.Breakdowns))

	rejected := 0
	for _, b := range r.Breakdowns {
		if b.SalaryFiltered || b.CategoryMismatched {
			rejected++
		}
	}
	if rejected > 0 {
		fmt.Fprintf(&sb, "Rejected:  %d\n", rejected)
	}

	count := min(len(r.Results), maxItemsToShow)
	if count > 0 {
		sb.WriteString("\n")
	}
	for i := 0; i < count; i++ {
		res := r.Results[i]
		fmt.Fprintf(&sb, "#%d  %3d%%  %s\n", i+1, res.MatchPercentage, res.Job.Title)
		fmt.Fprintf(&sb, "          %s\n", res.MatchReason)
	}
	if len(r.Results) > maxItemsToShow {
		fmt.Fprintf(&sb, "... and %d more\n", len(r.Results)-maxItemsToShow)
	}

	p.printBox("MATCH RESULTS", strings.TrimSuffix(sb.String(), "\n"))
}
