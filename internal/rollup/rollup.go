// Package rollup aggregates tag and contact mentions across a note
// collection. It is a batch computation, recomputed in full on every call;
// callers that want persistence cache the results themselves.
package rollup

import (
	"sort"
	"strings"

	"github.com/eldrid/munin/internal/annotate"
	"github.com/eldrid/munin/internal/graph"
	"github.com/eldrid/munin/internal/models"
)

// NameCount pairs an entity name with the number of notes mentioning it.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MentionContext is one place a contact is mentioned, with a snippet around
// the occurrence.
type MentionContext struct {
	Source     string `json:"source"`
	SourceName string `json:"source_name"`
	Context    string `json:"context"`
}

// TagCounts counts each distinct tag across notes (at most once per note),
// sorted descending by count, ties by name.
func TagCounts(notes []models.Note) []NameCount {
	counts := make(map[string]int)
	for _, n := range notes {
		for _, tag := range annotate.Parse(n.Content).Tags {
			counts[tag]++
		}
	}
	return sorted(counts)
}

// ContactCounts counts each distinct contact-mention name across notes,
// case-preserving, sorted descending by count.
func ContactCounts(notes []models.Note) []NameCount {
	counts := make(map[string]int)
	for _, n := range notes {
		for _, c := range annotate.Parse(n.Content).Contacts {
			counts[c]++
		}
	}
	return sorted(counts)
}

// FilterByTag returns exactly the notes containing tag (case-insensitive).
func FilterByTag(notes []models.Note, tag string) []models.Note {
	want := strings.ToLower(tag)
	var out []models.Note
	for _, n := range notes {
		for _, t := range annotate.Parse(n.Content).Tags {
			if t == want {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// ContactContexts enumerates every mention of the given contact name with a
// context snippet, using the same windowing strategy as backlinks.
func ContactContexts(name string, notes []models.Note) []MentionContext {
	var out []MentionContext
	for _, n := range notes {
		for _, m := range annotate.Parse(n.Content).Mentions {
			if m.Type != annotate.MentionContact || !strings.EqualFold(m.Value, name) {
				continue
			}
			out = append(out, MentionContext{
				Source:     n.Path,
				SourceName: n.Name,
				Context:    graph.Snippet(n.Content, m.Start, m.End),
			})
		}
	}
	return out
}

func sorted(counts map[string]int) []NameCount {
	out := make([]NameCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, NameCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
