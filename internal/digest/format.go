package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/eldrid/munin/internal/rollup"
)

// FormatMarkdown renders the summary as a markdown document. Section order
// is fixed: stats, contacts, tags, companies, meetings, deals, pending
// actions, footer timestamp.
func FormatMarkdown(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Summary %s - %s\n\n",
		s.WindowStart.Format("2006-01-02"), s.WindowEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, "## Stats\n\n- Memories: %d\n- Words: %d\n\n", s.TotalMemories, s.TotalWords)

	if len(s.TopContacts) > 0 {
		b.WriteString("## Top Contacts\n\n")
		for _, c := range s.TopContacts {
			fmt.Fprintf(&b, "- @%s (%d)\n", c.Name, c.Count)
		}
		b.WriteString("\n")
	}

	if len(s.TopTags) > 0 {
		b.WriteString("## Top Tags\n\n")
		for _, t := range s.TopTags {
			fmt.Fprintf(&b, "- #%s (%d)\n", t.Name, t.Count)
		}
		b.WriteString("\n")
	}

	if len(s.TopCompanies) > 0 {
		b.WriteString("## Companies\n\n")
		for _, c := range s.TopCompanies {
			fmt.Fprintf(&b, "- %s (%d)\n", c.Name, c.Count)
		}
		b.WriteString("\n")
	}

	if len(s.Meetings) > 0 {
		b.WriteString("## Meetings\n\n")
		for _, m := range s.Meetings {
			if len(m.Attendees) > 0 {
				fmt.Fprintf(&b, "- %s: %s\n", m.Source, strings.Join(m.Attendees, ", "))
			} else {
				fmt.Fprintf(&b, "- %s: %s\n", m.Source, m.Summary)
			}
		}
		b.WriteString("\n")
	}

	if len(s.Deals) > 0 {
		b.WriteString("## Deals\n\n")
		for _, d := range s.Deals {
			company := d.Company
			if company == "" {
				company = "Unknown"
			}
			fmt.Fprintf(&b, "- %s -- %s (%s)\n", company, d.Status, d.Source)
		}
		b.WriteString("\n")
	}

	if len(s.PendingActions) > 0 {
		b.WriteString("## Pending Actions\n\n")
		for _, a := range s.PendingActions {
			line := fmt.Sprintf("- [ ] %s", a.Text)
			if a.DueDate != "" {
				line += fmt.Sprintf(" (due %s)", a.DueDate)
			}
			fmt.Fprintf(&b, "%s -- %s\n", line, a.Source)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "---\nGenerated %s\n", s.GeneratedAt.Format(time.RFC3339))
	return b.String()
}

// FormatText renders a condensed plain-text digest for chat or notification
// delivery. Same section order as the markdown form.
func FormatText(s *Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Summary %s - %s\n", s.WindowStart.Format("2006-01-02"), s.WindowEnd.Format("2006-01-02"))
	fmt.Fprintf(&b, "%d memories, %d words\n", s.TotalMemories, s.TotalWords)

	if len(s.TopContacts) > 0 {
		b.WriteString("Contacts: " + joinCounts(s.TopContacts) + "\n")
	}
	if len(s.TopTags) > 0 {
		b.WriteString("Tags: " + joinCounts(s.TopTags) + "\n")
	}
	if len(s.TopCompanies) > 0 {
		b.WriteString("Companies: " + joinCounts(s.TopCompanies) + "\n")
	}
	if len(s.Meetings) > 0 {
		fmt.Fprintf(&b, "Meetings: %d\n", len(s.Meetings))
	}
	if len(s.Deals) > 0 {
		fmt.Fprintf(&b, "Deals: %d\n", len(s.Deals))
	}
	if len(s.PendingActions) > 0 {
		fmt.Fprintf(&b, "Pending actions: %d\n", len(s.PendingActions))
	}

	fmt.Fprintf(&b, "Generated %s\n", s.GeneratedAt.Format(time.RFC3339))
	return b.String()
}

func joinCounts(counts []rollup.NameCount) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = fmt.Sprintf("%s (%d)", c.Name, c.Count)
	}
	return strings.Join(parts, ", ")
}
