// Package digest aggregates a time-windowed note collection into a
// structured summary: top contacts/tags/companies, detected meetings and
// deals, and pending action items. The window is caller-supplied so the same
// generator serves both weekly and monthly digests, and "now" is injected
// for deterministic output.
package digest

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/eldrid/munin/internal/annotate"
	"github.com/eldrid/munin/internal/apperr"
	"github.com/eldrid/munin/internal/models"
	"github.com/eldrid/munin/internal/rollup"
)

// Output caps.
const (
	maxTopContacts    = 5
	maxTopTags        = 10
	maxTopCompanies   = 5
	maxPendingActions = 10
	maxKeyTopics      = 5
)

// Meeting is a note flagged as meeting-like, with its attendee mentions or a
// first-line fallback summary when no contacts were mentioned.
type Meeting struct {
	Source    string   `json:"source"`
	Attendees []string `json:"attendees,omitempty"`
	Summary   string   `json:"summary,omitempty"`
}

// Deal is a note flagged as deal-like. Company attribution is best-effort:
// the first company name known at the time the note is scanned.
type Deal struct {
	Source  string `json:"source"`
	Company string `json:"company,omitempty"`
	Status  string `json:"status"`
}

// PendingAction is a checkbox action item tagged with its source note.
type PendingAction struct {
	Text     string            `json:"text"`
	DueDate  string            `json:"due_date,omitempty"`
	Priority annotate.Priority `json:"priority"`
	Source   string            `json:"source"`
}

// Summary is the aggregate over one time window.
type Summary struct {
	WindowStart    time.Time          `json:"window_start"`
	WindowEnd      time.Time          `json:"window_end"`
	TotalMemories  int                `json:"total_memories"`
	TotalWords     int                `json:"total_words"`
	TopContacts    []rollup.NameCount `json:"top_contacts"`
	TopTags        []rollup.NameCount `json:"top_tags"`
	TopCompanies   []rollup.NameCount `json:"top_companies"`
	KeyTopics      []string           `json:"key_topics"`
	Meetings       []Meeting          `json:"meetings"`
	Deals          []Deal             `json:"deals"`
	PendingActions []PendingAction    `json:"pending_actions"`
	GeneratedAt    time.Time          `json:"generated_at"`
}

var (
	companyCtxRe    = regexp.MustCompile(`\b(?:from|at|with|company)\s+([A-Z][A-Za-z0-9&]*(?:\s[A-Z][A-Za-z0-9&]*){0,2})`)
	companySuffixRe = regexp.MustCompile(`\b([A-Z][A-Za-z0-9&]*(?:\s[A-Z][A-Za-z0-9&]*){0,2})\s(?:Inc|LLC|Ltd|Corp|Pty|GmbH)\b`)
)

// companyStoplist excludes generic capitalized words the company regexes
// would otherwise pick up.
var companyStoplist = map[string]struct{}{
	"The": {}, "This": {}, "That": {}, "I": {}, "We": {}, "They": {},
	"Today": {}, "Tomorrow": {}, "Yesterday": {},
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {},
	"Friday": {}, "Saturday": {}, "Sunday": {},
	"Meeting": {}, "Call": {}, "Follow": {}, "Next": {}, "Last": {},
}

// Generate builds a summary over notes whose last-modified timestamp falls
// within [start, end]. It returns apperr.ErrInvalidRange when end precedes
// start.
func Generate(notes []models.Note, start, end, now time.Time) (*Summary, error) {
	if end.Before(start) {
		return nil, apperr.ErrInvalidRange
	}

	s := &Summary{WindowStart: start, WindowEnd: end, GeneratedAt: now}

	contactCounts := make(map[string]int)
	tagCounts := make(map[string]int)
	companyCounts := make(map[string]int)
	firstCompany := ""

	for _, n := range notes {
		if n.UpdatedAt.Before(start) || n.UpdatedAt.After(end) {
			continue
		}
		s.TotalMemories++
		s.TotalWords += len(strings.Fields(n.Content))

		res := annotate.Parse(n.Content)
		for _, c := range res.Contacts {
			contactCounts[c]++
		}
		for _, tag := range res.Tags {
			tagCounts[tag]++
		}
		for _, co := range ExtractCompanies(n.Content) {
			companyCounts[co]++
			if firstCompany == "" {
				firstCompany = co
			}
		}

		for _, item := range annotate.CheckboxItems(n.Content) {
			if len(s.PendingActions) >= maxPendingActions {
				break
			}
			s.PendingActions = append(s.PendingActions, PendingAction{
				Text:     item.Text,
				DueDate:  item.DueDate,
				Priority: item.Priority,
				Source:   n.Name,
			})
		}

		lower := strings.ToLower(n.Content)
		if strings.Contains(lower, "meeting") || strings.Contains(lower, "call with") {
			m := Meeting{Source: n.Name, Attendees: res.Contacts}
			if len(m.Attendees) == 0 {
				m.Summary = firstLineSummary(n.Content)
			}
			s.Meetings = append(s.Meetings, m)
		}

		if containsAny(lower, "deal", "contract", "proposal", "tender") {
			s.Deals = append(s.Deals, Deal{
				Source:  n.Name,
				Company: firstCompany,
				Status:  dealStatus(lower),
			})
		}
	}

	s.TopContacts = topN(contactCounts, maxTopContacts)
	s.TopTags = topN(tagCounts, maxTopTags)
	s.TopCompanies = topN(companyCounts, maxTopCompanies)
	for i, tc := range s.TopTags {
		if i >= maxKeyTopics {
			break
		}
		s.KeyTopics = append(s.KeyTopics, tc.Name)
	}

	return s, nil
}

// ExtractCompanies applies the two company-name heuristics: a context word
// ("from/at/with/company") followed by a capitalized phrase, and a
// capitalized phrase followed by a legal suffix. Both are fragile by nature;
// the stoplist only trims the most generic false positives.
func ExtractCompanies(text string) []string {
	var out []string
	for _, re := range []*regexp.Regexp{companyCtxRe, companySuffixRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if name == "" || stoplisted(name) {
				continue
			}
			out = append(out, name)
		}
	}
	return out
}

func stoplisted(name string) bool {
	if _, ok := companyStoplist[name]; ok {
		return true
	}
	first, _, _ := strings.Cut(name, " ")
	_, ok := companyStoplist[first]
	return ok
}

// dealStatus walks the keyword ladder in priority order.
func dealStatus(lower string) string {
	switch {
	case containsAny(lower, "won", "signed", "closed"):
		return "Won"
	case containsAny(lower, "lost", "declined"):
		return "Lost"
	case strings.Contains(lower, "submitted"):
		return "Submitted"
	default:
		return "In Progress"
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// firstLineSummary strips markup characters from the first line and
// truncates it to 100 characters.
func firstLineSummary(content string) string {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimSpace(strings.Trim(line, "#*-[] "))
	line = strings.ReplaceAll(line, "[[", "")
	line = strings.ReplaceAll(line, "]]", "")
	if r := []rune(line); len(r) > 100 {
		line = string(r[:100])
	}
	return line
}

func topN(counts map[string]int, n int) []rollup.NameCount {
	out := make([]rollup.NameCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, rollup.NameCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
