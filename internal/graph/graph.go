// Package graph derives the wiki-link structure of a note collection:
// forward links, backlinks with context snippets, the full link multigraph,
// and aggregate link statistics. All functions recompute from note bodies on
// every call; nothing is cached here.
package graph

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/eldrid/munin/internal/annotate"
	"github.com/eldrid/munin/internal/models"
)

// contextWindow is the number of bytes captured on each side of a match
// when building backlink and mention context snippets.
const contextWindow = 100

// ForwardLink is a wiki-link found in some content, resolved against the
// note collection. Path is set only when Exists is true.
type ForwardLink struct {
	Title  string `json:"title"`
	Exists bool   `json:"exists"`
	Path   string `json:"path,omitempty"`
}

// Backlink records that a source note references a target title, with a
// context snippet around the first occurrence.
type Backlink struct {
	Source     string `json:"source"`
	SourceName string `json:"source_name"`
	Context    string `json:"context"`
}

// Node is a vertex in the link graph: a real note (ID = path) or a virtual
// placeholder (ID = "virtual:<title>") for links to nonexistent notes.
type Node struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Virtual bool   `json:"virtual,omitempty"`
}

// Edge is a directed link from a source note path to a target node ID.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Graph is the full link multigraph over a note collection. Cycles and
// parallel edges are valid.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// TitleCount pairs a link title with its raw mention count.
type TitleCount struct {
	Title string `json:"title"`
	Count int    `json:"count"`
}

// Stats aggregates link usage across a note collection.
type Stats struct {
	TotalLinks    int          `json:"total_links"`
	UniqueTargets int          `json:"unique_targets"`
	OrphanLinks   int          `json:"orphan_links"`
	MostLinked    []TitleCount `json:"most_linked"`
}

// Resolve finds the note a link title refers to. Matching is
// case-insensitive by name equality or substring containment in either
// direction. The tie-break is deterministic: an exact match wins, otherwise
// the shortest matching name, ties broken by collection order.
func Resolve(title string, notes []models.Note) (models.Note, bool) {
	lower := strings.ToLower(title)
	var best models.Note
	bestLen := -1
	for _, n := range notes {
		name := strings.ToLower(n.Name)
		if name == lower {
			return n, true
		}
		if strings.Contains(name, lower) || strings.Contains(lower, name) {
			if bestLen == -1 || len(n.Name) < bestLen {
				best = n
				bestLen = len(n.Name)
			}
		}
	}
	if bestLen == -1 {
		return models.Note{}, false
	}
	return best, true
}

// ForwardLinks resolves every wiki-link in content against notes.
func ForwardLinks(content string, notes []models.Note) []ForwardLink {
	var out []ForwardLink
	for _, title := range annotate.Parse(content).Links {
		fl := ForwardLink{Title: title}
		if n, ok := Resolve(title, notes); ok {
			fl.Exists = true
			fl.Path = n.Path
		}
		out = append(out, fl)
	}
	return out
}

// Backlinks finds every note whose body contains a literal [[targetTitle]]
// token (case-insensitive), capturing a context snippet around the first
// occurrence.
func Backlinks(targetTitle string, notes []models.Note) []Backlink {
	re := regexp.MustCompile(`(?i)\[\[` + regexp.QuoteMeta(targetTitle) + `\]\]`)
	var out []Backlink
	for _, n := range notes {
		loc := re.FindStringIndex(n.Content)
		if loc == nil {
			continue
		}
		out = append(out, Backlink{
			Source:     n.Path,
			SourceName: n.Name,
			Context:    snippet(n.Content, loc[0], loc[1]),
		})
	}
	return out
}

// Build constructs the link multigraph: one real node per note, one edge per
// wiki-link occurrence, and deduplicated virtual nodes for unresolved
// titles.
func Build(notes []models.Note) Graph {
	g := Graph{}
	virtual := make(map[string]struct{})

	for _, n := range notes {
		g.Nodes = append(g.Nodes, Node{ID: n.Path, Label: n.Name})
	}
	for _, n := range notes {
		for _, title := range annotate.Parse(n.Content).Links {
			target, ok := Resolve(title, notes)
			if ok {
				g.Edges = append(g.Edges, Edge{Source: n.Path, Target: target.Path})
				continue
			}
			id := "virtual:" + title
			if _, seen := virtual[id]; !seen {
				virtual[id] = struct{}{}
				g.Nodes = append(g.Nodes, Node{ID: id, Label: title, Virtual: true})
			}
			g.Edges = append(g.Edges, Edge{Source: n.Path, Target: id})
		}
	}
	return g
}

// ComputeStats aggregates link usage across notes. OrphanLinks counts
// distinct titles that resolve to no real note; MostLinked is the top 10
// titles by raw mention count.
func ComputeStats(notes []models.Note) Stats {
	counts := make(map[string]int)
	for _, n := range notes {
		for _, m := range annotate.Parse(n.Content).Mentions {
			if m.Type == annotate.MentionLink {
				counts[m.Value]++
			}
		}
	}

	st := Stats{UniqueTargets: len(counts)}
	for title, c := range counts {
		st.TotalLinks += c
		if _, ok := Resolve(title, notes); !ok {
			st.OrphanLinks++
		}
		st.MostLinked = append(st.MostLinked, TitleCount{Title: title, Count: c})
	}
	sort.Slice(st.MostLinked, func(i, j int) bool {
		if st.MostLinked[i].Count != st.MostLinked[j].Count {
			return st.MostLinked[i].Count > st.MostLinked[j].Count
		}
		return st.MostLinked[i].Title < st.MostLinked[j].Title
	})
	if len(st.MostLinked) > 10 {
		st.MostLinked = st.MostLinked[:10]
	}
	return st
}

// snippet returns the text around [start,end) clipped to the context window
// and snapped to rune boundaries.
func snippet(s string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(s) {
		hi = len(s)
	}
	for lo > 0 && !utf8.RuneStart(s[lo]) {
		lo--
	}
	for hi < len(s) && !utf8.RuneStart(s[hi]) {
		hi++
	}
	return strings.TrimSpace(s[lo:hi])
}

// Snippet exposes context windowing for other aggregators (contact mention
// contexts use the same strategy as backlinks).
func Snippet(s string, start, end int) string {
	return snippet(s, start, end)
}
