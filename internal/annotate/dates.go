package annotate

import (
	"regexp"
	"time"
)

// DateRef is a date-like token found in text. Only strict ISO YYYY-MM-DD
// tokens are resolved to a concrete time; relative phrases ("tomorrow",
// "next week") are detected but left unresolved. No calendar arithmetic
// is performed on them.
type DateRef struct {
	Value    string    `json:"value"`
	Date     time.Time `json:"date,omitempty"`
	Resolved bool      `json:"resolved"`
	Start    int       `json:"start"`
	End      int       `json:"end"`
}

var (
	isoDateRe      = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	relativeDateRe = regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday|this week|next week|next month|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// ExtractDates finds ISO date tokens (resolved via time.Parse) followed by
// relative-date phrases (unresolved). Tokens that look like ISO dates but do
// not parse (e.g. month 13) are skipped.
func ExtractDates(text string) []DateRef {
	var out []DateRef

	for _, m := range isoDateRe.FindAllStringIndex(text, -1) {
		raw := text[m[0]:m[1]]
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			continue
		}
		out = append(out, DateRef{Value: raw, Date: t, Resolved: true, Start: m[0], End: m[1]})
	}

	for _, m := range relativeDateRe.FindAllStringIndex(text, -1) {
		out = append(out, DateRef{Value: text[m[0]:m[1]], Start: m[0], End: m[1]})
	}

	return out
}
