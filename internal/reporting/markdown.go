package reporting

import (
	"fmt"
	"strings"
	"time"

	"timeframe-chart/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Series Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Granularity: %s\n\n", r.Granularity.Label()))

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Input Samples | %d |\n", r.DataSummary.InputSamples))
	sb.WriteString(fmt.Sprintf("| Points | %d |\n", r.DataSummary.Buckets))
	sb.WriteString(fmt.Sprintf("| Total | %s |\n", domain.FormatValue(r.DataSummary.Total)))
	if r.DataSummary.InputSamples > 0 {
		sb.WriteString(fmt.Sprintf("| First Timestamp | %s |\n", escapeCell(r.DataSummary.FirstTimestamp)))
		sb.WriteString(fmt.Sprintf("| Last Timestamp | %s |\n", escapeCell(r.DataSummary.LastTimestamp)))
	}
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.Checks) > 0 {
		sb.WriteString("| Check | Actual | Status |\n")
		sb.WriteString("|-------|--------|--------|\n")
		for _, check := range r.DataQuality.Checks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", check.Name, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Unparseable timestamps are grouped under \"Invalid Date\".\n\n")
		}
	} else {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	// Points
	sb.WriteString("## Points\n\n")
	if len(r.Points) > 0 {
		sb.WriteString("| Timestamp | Value |\n")
		sb.WriteString("|-----------|-------|\n")
		for _, p := range r.Points {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n", escapeCell(p.Timestamp), domain.FormatValue(p.Value)))
		}
	} else {
		sb.WriteString("No points available.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
