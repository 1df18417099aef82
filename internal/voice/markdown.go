package voice

import (
	"fmt"
	"strings"
	"time"
)

// ToMarkdown renders a structured memory as markdown using the same
// annotation conventions the note parser consumes: contacts as @Name, tags
// as #tag, action items as "- [ ]" checkboxes. The raw transcript is kept in
// a collapsed section at the end.
func ToMarkdown(m StructuredMemory, date time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", m.Title)
	fmt.Fprintf(&b, "**Type:** %s · **Date:** %s\n\n", m.Type, date.Format("2006-01-02"))

	if m.Summary != "" {
		b.WriteString(m.Summary + "\n\n")
	}

	if len(m.Contacts) > 0 {
		b.WriteString("## People\n\n")
		for _, c := range m.Contacts {
			fmt.Fprintf(&b, "- @%s\n", c)
		}
		b.WriteString("\n")
	}

	if len(m.KeyPoints) > 0 {
		b.WriteString("## Key Points\n\n")
		for _, p := range m.KeyPoints {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	}

	if len(m.ActionItems) > 0 {
		b.WriteString("## Action Items\n\n")
		for _, a := range m.ActionItems {
			line := "- [ ] " + a.Text
			var notes []string
			if a.Assignee != "" {
				notes = append(notes, a.Assignee)
			}
			if a.DueDate != "" {
				notes = append(notes, "by "+a.DueDate)
			}
			if len(notes) > 0 {
				line += " (" + strings.Join(notes, ", ") + ")"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(m.Tags) > 0 {
		b.WriteString("## Tags\n\n")
		for i, tag := range m.Tags {
			if i > 0 {
				b.WriteString(" ")
			}
			b.WriteString("#" + tag)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("<details>\n<summary>Raw transcript</summary>\n\n")
	b.WriteString(m.RawTranscript)
	b.WriteString("\n\n</details>\n")

	return b.String()
}
