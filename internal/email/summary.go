// Package email renders batch summary notifications. Delivery lives in the
// ses and noop subpackages.
package email

import (
	"fmt"
	"html"
	"strings"
	"time"

	"bolx/internal/domain"
)

// Subject returns the notification subject for a batch.
func Subject(s domain.BatchSummary) string {
	if s.Failed > 0 || s.NoMatch > 0 {
		return fmt.Sprintf("bolx batch: %d/%d extracted, %d need attention", s.Matched, s.Total, s.Failed+s.NoMatch)
	}
	return fmt.Sprintf("bolx batch: %d/%d extracted", s.Matched, s.Total)
}

// TextBody renders the plain-text notification.
func TextBody(s domain.BatchSummary, results []domain.DocumentResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d documents in %s.\n\n", s.Total, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "Matched:  %d\nNo match: %d\nFailed:   %d\nDegraded: %d\n", s.Matched, s.NoMatch, s.Failed, s.Degraded)

	if attention := needsAttention(results); len(attention) > 0 {
		b.WriteString("\nNeeds attention:\n")
		for _, r := range attention {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", r.SourceName, r.Outcome, r.Error)
		}
	}
	return b.String()
}

// HTMLBody renders the HTML notification.
func HTMLBody(s domain.BatchSummary, results []domain.DocumentResult) string {
	var rows strings.Builder
	for _, r := range needsAttention(results) {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			html.EscapeString(r.SourceName), r.Outcome, html.EscapeString(r.Error))
	}

	attention := ""
	if rows.Len() > 0 {
		attention = `<h3 style="color: #333;">Needs attention</h3>
  <table style="border-collapse: collapse; width: 100%;">
  <tr><th align="left">Document</th><th align="left">Outcome</th><th align="left">Error</th></tr>
` + rows.String() + "  </table>"
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Batch extraction finished</h2>
  <p>Processed %d documents in %s.</p>
  <ul>
    <li>Matched: %d</li>
    <li>No match: %d</li>
    <li>Failed: %d</li>
    <li>Degraded tables: %d</li>
  </ul>
  %s
</body>
</html>`, s.Total, s.Duration.Round(time.Millisecond), s.Matched, s.NoMatch, s.Failed, s.Degraded, attention)
}

func needsAttention(results []domain.DocumentResult) []domain.DocumentResult {
	var out []domain.DocumentResult
	for _, r := range results {
		if r.Outcome != domain.OutcomeMatched {
			out = append(out, r)
		}
	}
	return out
}
