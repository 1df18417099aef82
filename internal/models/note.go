// Package models defines the domain types for Munin.
package models

import (
	"strings"
	"time"
)

// Note categories.
const (
	CategoryDaily    = "daily"
	CategoryLongTerm = "long-term"
)

// LongTermPath is the vault path of the singleton long-term note.
const LongTermPath = "long-term.md"

// Note represents one unit of free-form text in the vault: either the
// long-term singleton or a daily note (one per calendar date).
type Note struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteMetadata is a lightweight representation returned by list operations.
type NoteMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contact is an entry in the contact directory.
type Contact struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns "First Last" with empty parts omitted.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// DailyPath returns the vault path of the daily note for the given date.
func DailyPath(t time.Time) string {
	return "daily/" + t.Format("2006-01-02") + ".md"
}

// CategoryForPath derives the note category from its vault path.
func CategoryForPath(path string) string {
	if path == LongTermPath {
		return CategoryLongTerm
	}
	return CategoryDaily
}

// NameForPath derives a display name from a vault path: the base file name
// without the .md extension.
func NameForPath(path string) string {
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, ".md")
}
