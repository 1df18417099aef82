// Package annotate extracts semantic structure from free-form note text:
// @contact mentions, #tags, [[wiki links]], action items, and date tokens.
//
// The note text convention is fixed: "@Name" marks a contact, "#tag" a tag,
// "[[Title]]" a wiki link, and "- [ ] text" an action item. Every function
// here is a pure find-all scan over the input string; malformed input never
// produces an error, only empty results.
package annotate

import (
	"regexp"
	"strings"
)

// MentionType discriminates the kinds of inline mention.
type MentionType string

const (
	MentionContact MentionType = "contact"
	MentionTag     MentionType = "tag"
	MentionLink    MentionType = "link"

	// Project and deal mentions exist for UI grouping only; extraction
	// never produces them.
	MentionProject MentionType = "project"
	MentionDeal    MentionType = "deal"
)

// Mention is one recognized token with its byte offsets in the source text.
// text[Start:End] reproduces the full matched token including delimiters.
type Mention struct {
	Type  MentionType `json:"type"`
	Value string      `json:"value"`
	Start int         `json:"start"`
	End   int         `json:"end"`
}

// Result holds everything Parse extracts from a single text blob.
type Result struct {
	Mentions []Mention `json:"mentions"`
	Tags     []string  `json:"tags"`
	Contacts []string  `json:"contacts"`
	Links    []string  `json:"links"`
}

var (
	// A contact mention is one capitalized word, optionally followed by a
	// second word fragment starting with a capital ("First Last",
	// "First McDonald", or a bare initial "First S").
	contactRe = regexp.MustCompile(`@([A-Z][a-z]+(?:\s[A-Z][a-zA-Z]*)?)`)
	tagRe     = regexp.MustCompile(`#([A-Za-z0-9_-]+)`)
	linkRe    = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
)

// Parse extracts contact mentions, tags, and wiki links from text. The flat
// Tags/Contacts/Links lists are deduplicated; Mentions carries one entry per
// occurrence with positions, grouped by family (contacts, then tags, then
// links) in source order within each family.
func Parse(text string) Result {
	res := Result{}

	seenContacts := make(map[string]struct{})
	for _, m := range contactRe.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		res.Mentions = append(res.Mentions, Mention{
			Type: MentionContact, Value: name, Start: m[0], End: m[1],
		})
		if _, ok := seenContacts[name]; !ok {
			seenContacts[name] = struct{}{}
			res.Contacts = append(res.Contacts, name)
		}
	}

	seenTags := make(map[string]struct{})
	for _, m := range tagRe.FindAllStringSubmatchIndex(text, -1) {
		tag := strings.ToLower(text[m[2]:m[3]])
		res.Mentions = append(res.Mentions, Mention{
			Type: MentionTag, Value: tag, Start: m[0], End: m[1],
		})
		if _, ok := seenTags[tag]; !ok {
			seenTags[tag] = struct{}{}
			res.Tags = append(res.Tags, tag)
		}
	}

	seenLinks := make(map[string]struct{})
	for _, m := range linkRe.FindAllStringSubmatchIndex(text, -1) {
		title := text[m[2]:m[3]]
		res.Mentions = append(res.Mentions, Mention{
			Type: MentionLink, Value: title, Start: m[0], End: m[1],
		})
		if _, ok := seenLinks[title]; !ok {
			seenLinks[title] = struct{}{}
			res.Links = append(res.Links, title)
		}
	}

	return res
}
