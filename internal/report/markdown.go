// Package report renders a daily summary to markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/clombard/mailtriage/internal/storage"
	"github.com/clombard/mailtriage/internal/triage"
)

// Render produces the markdown report for one daily summary. Sections are
// always present; empty ones carry an italic placeholder so the report
// reads the same on quiet days.
func Render(s *triage.DailySummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Daily Email Triage — %s\n\n", s.SummaryDate)

	b.WriteString("## Critical Emails\n\n")
	if len(s.CriticalEmails) == 0 {
		b.WriteString("*No critical emails today.*\n\n")
	}
	for _, e := range s.CriticalEmails {
		fmt.Fprintf(&b, "### %s\n\n", e.Summary)
		fmt.Fprintf(&b, "- **Email:** %s (thread %s)\n", e.EmailID, e.ThreadID)
		fmt.Fprintf(&b, "- **Why critical:** %s\n", e.ReasonCritical)
		fmt.Fprintf(&b, "- **Recommended action:** %s\n", e.RecommendedAction)
		if len(e.LinkedTaskIDs) > 0 {
			fmt.Fprintf(&b, "- **Linked tasks:** %s\n", strings.Join(e.LinkedTaskIDs, ", "))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Suggested Responses\n\n")
	if len(s.SuggestedResponses) == 0 {
		b.WriteString("*No responses suggested.*\n\n")
	}
	for _, r := range s.SuggestedResponses {
		fmt.Fprintf(&b, "### Reply to %s\n\n", r.EmailID)
		for _, point := range r.DraftOutline {
			fmt.Fprintf(&b, "- %s\n", point)
		}
		if len(r.DraftOutline) > 0 {
			b.WriteString("\n")
		}
		if r.FullDraft != "" {
			fmt.Fprintf(&b, "> %s\n\n", strings.ReplaceAll(r.FullDraft, "\n", "\n> "))
		}
	}

	b.WriteString("## Other Notes\n\n")
	if s.OtherNotes == "" {
		b.WriteString("*Nothing else to report.*\n")
	} else {
		b.WriteString(s.OtherNotes)
		b.WriteString("\n")
	}

	return b.String()
}

// RenderAll concatenates per-day reports, oldest first, for rescans.
func RenderAll(summaries []triage.DailySummary) string {
	parts := make([]string, 0, len(summaries))
	for i := range summaries {
		parts = append(parts, Render(&summaries[i]))
	}
	return strings.Join(parts, "\n---\n\n")
}

// WriteFile writes the rendered report to path atomically.
func WriteFile(path, content string) error {
	return storage.WriteFileAtomic(path, []byte(content))
}
