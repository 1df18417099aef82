package annotate

import "strings"

// suggestRule maps a vocabulary keyword to the tag it suggests. The table is
// a closed vocabulary: new rules are added here, never learned.
type suggestRule struct {
	keyword string
	tag     string
}

var suggestRules = []suggestRule{
	{"sensor", "iot"},
	{"device", "iot"},
	{"lorawan", "iot"},
	{"gateway", "iot"},
	{"firmware", "iot"},
	{"telemetry", "iot"},
	{"meeting", "meeting"},
	{"standup", "meeting"},
	{"invoice", "finance"},
	{"payment", "finance"},
	{"budget", "finance"},
	{"contract", "sales"},
	{"proposal", "sales"},
	{"tender", "sales"},
	{"deal", "sales"},
	{"demo", "demo"},
	{"interview", "hiring"},
	{"hiring", "hiring"},
	{"deploy", "ops"},
	{"outage", "ops"},
}

// SuggestTags scans text case-insensitively against the keyword table and
// returns the matching tags, deduplicated, in table order.
func SuggestTags(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	var out []string
	for _, r := range suggestRules {
		if !strings.Contains(lower, r.keyword) {
			continue
		}
		if _, ok := seen[r.tag]; ok {
			continue
		}
		seen[r.tag] = struct{}{}
		out = append(out, r.tag)
	}
	return out
}
