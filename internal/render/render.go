// Package render converts annotated note text into display markup.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eldrid/munin/internal/models"
)

var (
	contactRe = regexp.MustCompile(`@([A-Z][a-z]+(?:\s[A-Z][a-zA-Z]*)?)`)
	tagRe     = regexp.MustCompile(`#([A-Za-z0-9_-]+)`)
	linkRe    = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
)

// HTML renders text as HTML: mentions become links or highlight spans, tags
// become badges, wiki links become clickable spans, newlines become <br>.
//
// The source is HTML-escaped first (&, <, > only). Contact substitution runs
// before tag and link substitution so a contact name can never be re-matched
// by the later passes.
func HTML(text string, contacts []models.Contact) string {
	out := escape(text)

	out = contactRe.ReplaceAllStringFunc(out, func(token string) string {
		name := token[1:] // drop "@"
		if c, ok := resolve(name, contacts); ok {
			return fmt.Sprintf(`<a class="mention" href="/contacts/%s">@%s</a>`, c.ID, name)
		}
		return fmt.Sprintf(`<span class="mention mention-unresolved">@%s</span>`, name)
	})

	out = tagRe.ReplaceAllStringFunc(out, func(token string) string {
		tag := strings.ToLower(token[1:])
		return fmt.Sprintf(`<span class="tag" data-tag="%s">%s</span>`, tag, token)
	})

	out = linkRe.ReplaceAllStringFunc(out, func(token string) string {
		title := token[2 : len(token)-2]
		return fmt.Sprintf(`<span class="wikilink" data-title="%s">%s</span>`, title, title)
	})

	return strings.ReplaceAll(out, "\n", "<br>")
}

// resolve finds a contact whose full name matches case-insensitively.
func resolve(name string, contacts []models.Contact) (models.Contact, bool) {
	for _, c := range contacts {
		if strings.EqualFold(c.FullName(), name) {
			return c, true
		}
	}
	return models.Contact{}, false
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
