// Package voice turns a raw spoken-word transcript into a structured memory
// record: a classified type, a title, contacts, action items, key points,
// and suggested tags. The heuristics are keyword ladders and regex families
// over plain text; nothing here calls a speech or AI service.
package voice

import (
	"regexp"
	"strings"

	"github.com/eldrid/munin/internal/annotate"
)

// MemoryType classifies a transcript.
type MemoryType string

const (
	TypeMeeting  MemoryType = "meeting"
	TypeCall     MemoryType = "call"
	TypeNote     MemoryType = "note"
	TypeIdea     MemoryType = "idea"
	TypeReminder MemoryType = "reminder"
)

// ActionItem is a task extracted from a transcript. DueDate is best-effort:
// it takes the first relative-date keyword found anywhere in the transcript,
// not one scoped to the item's own clause.
type ActionItem struct {
	Text     string `json:"text"`
	Assignee string `json:"assignee,omitempty"`
	DueDate  string `json:"due_date,omitempty"`
}

// StructuredMemory is the normalized record produced from a transcript. The
// raw transcript is retained verbatim.
type StructuredMemory struct {
	Title         string       `json:"title"`
	Type          MemoryType   `json:"type"`
	Summary       string       `json:"summary"`
	Attendees     []string     `json:"attendees,omitempty"`
	KeyPoints     []string     `json:"key_points,omitempty"`
	ActionItems   []ActionItem `json:"action_items,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	Contacts      []string     `json:"contacts,omitempty"`
	RawTranscript string       `json:"raw_transcript"`
}

const (
	maxKeyPoints   = 5
	maxSummaryLen  = 200
	minSentenceLen = 10
)

var (
	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

	contactAfterRe  = regexp.MustCompile(`(?:[Ww]ith|[Mm]et|[Ss]poke to|[Cc]alled|[Tt]alked to)\s+([A-Z][a-z]+(?:\s[A-Z][a-z]+)?)`)
	contactBeforeRe = regexp.MustCompile(`([A-Z][a-z]+(?:\s[A-Z][a-z]+)?)\s+(?:said|mentioned|told|asked)`)

	modalActionRe    = regexp.MustCompile(`(?i)\b(?:need to|have to|should|must|will)\s+([^.!?\n]+)`)
	followUpActionRe = regexp.MustCompile(`(?i)\bfollow[- ]up(?:\s+(?:with|on)\s+([^.!?\n]+))?`)
	commActionRe     = regexp.MustCompile(`(?i)\b(?:send|email|call|message|write)\s+([^.!?\n]+)`)
	reminderActionRe = regexp.MustCompile(`(?i)\b(?:remember to|don't forget to|make sure to)\s+([^.!?\n]+)`)

	assigneeRe = regexp.MustCompile(`^([A-Z][a-z]+)\s+to\s+(.+)$`)
	topicRe    = regexp.MustCompile(`(?i)\b(?:about|regarding|discussing|on)\s+([^.!?\n]+)`)
	reminderRe = regexp.MustCompile(`(?i)\b(?:remember to|remind me to|don't forget to)\s+([^.!?\n]+)`)
	ideaRe     = regexp.MustCompile(`(?i)\b(?:what if|maybe we could|idea:?)\s+([^.!?\n]+)`)
)

// contactStoplist filters common false positives of the name patterns.
var contactStoplist = map[string]struct{}{
	"Today": {}, "Tomorrow": {}, "Yesterday": {},
	"The": {}, "This": {}, "That": {},
	"Monday": {}, "Tuesday": {}, "Wednesday": {}, "Thursday": {},
	"Friday": {}, "Saturday": {}, "Sunday": {},
}

// relativeDueKeywords is the fixed set scanned (transcript-wide) for an
// action-item due date, in priority order.
var relativeDueKeywords = []string{
	"today", "tomorrow", "tonight", "next week", "next month",
	"end of week", "monday", "tuesday", "wednesday", "thursday",
	"friday", "saturday", "sunday",
}

// Structure classifies and decomposes a transcript. It is pure: identical
// input yields identical output.
func Structure(transcript string) StructuredMemory {
	m := StructuredMemory{
		Type:          DetectType(transcript),
		Contacts:      ExtractContacts(transcript),
		ActionItems:   ExtractActionItems(transcript),
		KeyPoints:     ExtractKeyPoints(transcript),
		Tags:          annotate.SuggestTags(transcript),
		Summary:       summarize(transcript),
		RawTranscript: transcript,
	}
	if m.Type == TypeMeeting {
		m.Attendees = m.Contacts
	}
	m.Title = title(m.Type, transcript, m.Contacts)
	return m
}

// DetectType walks the keyword ladder. Call keywords are checked before the
// generic meeting check, so "a call with Jane" classifies as a call while
// "Meeting with Jane" classifies as a meeting.
func DetectType(transcript string) MemoryType {
	t := strings.ToLower(transcript)
	switch {
	case containsAny(t, "call", "phone", "spoke to"):
		return TypeCall
	case containsAny(t, "meeting", "discussed with"):
		return TypeMeeting
	case containsAny(t, "remember", "remind me", "don't forget"):
		return TypeReminder
	case containsAny(t, "idea", "what if", "maybe we could"):
		return TypeIdea
	default:
		return TypeNote
	}
}

// ExtractContacts applies the two name patterns ("with <Name>" and
// "<Name> said") with a stoplist filter, deduplicated in match order.
func ExtractContacts(transcript string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, re := range []*regexp.Regexp{contactAfterRe, contactBeforeRe} {
		for _, m := range re.FindAllStringSubmatch(transcript, -1) {
			name := m[1]
			if _, bad := contactStoplist[name]; bad {
				continue
			}
			first, _, _ := strings.Cut(name, " ")
			if _, bad := contactStoplist[first]; bad {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// ExtractActionItems applies the four obligation/communication families. The
// due date, when present, is the first relative-date keyword found anywhere
// in the transcript and is applied to every item.
func ExtractActionItems(transcript string) []ActionItem {
	due := globalDueDate(transcript)

	seen := make(map[string]struct{})
	var out []ActionItem
	for _, re := range []*regexp.Regexp{modalActionRe, followUpActionRe, commActionRe, reminderActionRe} {
		for _, m := range re.FindAllStringSubmatch(transcript, -1) {
			text := strings.TrimSpace(m[1])
			if text == "" {
				continue
			}
			item := ActionItem{Text: text, DueDate: due}
			if am := assigneeRe.FindStringSubmatch(text); am != nil {
				item.Assignee = am[1]
				item.Text = strings.TrimSpace(am[2])
			}
			key := strings.ToLower(item.Text)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// ExtractKeyPoints keeps sentences containing an importance keyword, falling
// back to the first three sentences of useful length, capped to 5.
func ExtractKeyPoints(transcript string) []string {
	sentences := splitSentences(transcript)

	var out []string
	for _, s := range sentences {
		if containsAny(strings.ToLower(s), "important", "key", "critical", "must", "decided", "agreed", "deadline", "budget", "priority") {
			out = append(out, s)
		}
	}

	if len(out) == 0 {
		for _, s := range sentences {
			if len(s) < minSentenceLen {
				continue
			}
			out = append(out, s)
			if len(out) == 3 {
				break
			}
		}
	}

	if len(out) > maxKeyPoints {
		out = out[:maxKeyPoints]
	}
	return out
}

// title builds a type-specific title.
func title(t MemoryType, transcript string, contacts []string) string {
	first := ""
	if len(contacts) > 0 {
		first = contacts[0]
	}

	switch t {
	case TypeMeeting:
		out := "Meeting notes"
		if first != "" {
			out = "Meeting with " + first
		}
		if m := topicRe.FindStringSubmatch(transcript); m != nil {
			out += " about " + truncate(strings.TrimSpace(m[1]), 50)
		}
		return out
	case TypeCall:
		if first != "" {
			return "Call with " + first
		}
		return "Call notes"
	case TypeReminder:
		if m := reminderRe.FindStringSubmatch(transcript); m != nil {
			return "Reminder: " + truncate(strings.TrimSpace(m[1]), 60)
		}
		return "Reminder"
	case TypeIdea:
		if m := ideaRe.FindStringSubmatch(transcript); m != nil {
			return "Idea: " + truncate(strings.TrimSpace(m[1]), 60)
		}
		return "Idea"
	default:
		sentences := splitSentences(transcript)
		if len(sentences) > 0 && len(sentences[0]) <= 60 {
			return sentences[0]
		}
		return "Voice note"
	}
}

// summarize joins the first two qualifying sentences, truncated to 200
// characters with an ellipsis.
func summarize(transcript string) string {
	var parts []string
	for _, s := range splitSentences(transcript) {
		if len(s) <= 5 {
			continue
		}
		parts = append(parts, s)
		if len(parts) == 2 {
			break
		}
	}
	out := strings.Join(parts, ". ")
	if r := []rune(out); len(r) > maxSummaryLen {
		out = string(r[:maxSummaryLen-3]) + "..."
	}
	return out
}

func globalDueDate(transcript string) string {
	lower := strings.ToLower(transcript)
	for _, kw := range relativeDueKeywords {
		if strings.Contains(lower, kw) {
			return kw
		}
	}
	return ""
}

func splitSentences(s string) []string {
	var out []string
	for _, part := range sentenceSplitRe.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// truncate cuts s to n runes so multi-byte characters are never split.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
