package annotate

import (
	"regexp"
	"strings"
)

// Priority of an extracted action item.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// ActionItem is a task-like line extracted from note text. Completion state
// is not tracked; extracted items are always pending.
type ActionItem struct {
	Text     string   `json:"text"`
	DueDate  string   `json:"due_date,omitempty"`
	Priority Priority `json:"priority"`
}

var (
	checkboxRe = regexp.MustCompile(`(?m)^[ \t]*[-*]?[ \t]*\[ \][ \t]*(.+)$`)
	followUpRe = regexp.MustCompile(`(?i)follow[- ]up(?:\s+with\s+([A-Z][a-zA-Z]*(?:\s[A-Z][a-zA-Z]*)?))?(?:\s+by\s+([^.!?\n]+))?`)

	urgentWordRe    = regexp.MustCompile(`(?i)\burgent\b`)
	importantWordRe = regexp.MustCompile(`(?i)\bimportant\b`)
	dueClauseRe     = regexp.MustCompile(`(?i)\s+by\s+(.+)$`)
	multiSpaceRe    = regexp.MustCompile(`\s{2,}`)
)

// ExtractActionItems finds checkbox-style items ("- [ ] text") and free-text
// "follow up" phrases. Checkbox matches are reported first, then follow-up
// matches; the two families are scanned in sequence, not interleaved by
// position.
func ExtractActionItems(text string) []ActionItem {
	items := CheckboxItems(text)

	for _, m := range followUpRe.FindAllStringSubmatch(text, -1) {
		item := ActionItem{Text: "Follow up", Priority: PriorityMedium}
		if m[1] != "" {
			item.Text = "Follow up with " + strings.TrimSpace(m[1])
		}
		if m[2] != "" {
			item.DueDate = strings.TrimSpace(m[2])
		}
		items = append(items, item)
	}

	return items
}

// CheckboxItems extracts only the checkbox-style family ("- [ ] text").
func CheckboxItems(text string) []ActionItem {
	var items []ActionItem
	for _, m := range checkboxRe.FindAllStringSubmatch(text, -1) {
		items = append(items, checkboxItem(m[1]))
	}
	return items
}

// checkboxItem derives priority from urgency markers, strips the markers
// from the text, and splits off a trailing "by <phrase>" due clause.
func checkboxItem(raw string) ActionItem {
	item := ActionItem{Priority: PriorityMedium}

	if strings.Contains(raw, "!!!") || urgentWordRe.MatchString(raw) {
		item.Priority = PriorityHigh
	}

	cleaned := strings.ReplaceAll(raw, "!", "")
	cleaned = urgentWordRe.ReplaceAllString(cleaned, "")
	cleaned = importantWordRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(multiSpaceRe.ReplaceAllString(cleaned, " "))

	if m := dueClauseRe.FindStringSubmatchIndex(cleaned); m != nil {
		item.DueDate = strings.TrimSpace(cleaned[m[2]:m[3]])
		cleaned = strings.TrimSpace(cleaned[:m[0]])
	}

	item.Text = cleaned
	return item
}
