package api

import (
	"github.com/eldrid/munin/internal/graph"
	"github.com/eldrid/munin/internal/models"
	"github.com/eldrid/munin/internal/noteservice"
	"github.com/eldrid/munin/internal/rollup"
	"github.com/eldrid/munin/internal/voice"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Path    string `json:"path" example:"daily/2026-08-28.md" validate:"required"`
	Content string `json:"content" example:"Met @Jane Doe about #iot" validate:"required"`
}

// UpdateNoteRequest is the request body for updating a note.
type UpdateNoteRequest struct {
	Content string `json:"content" example:"Updated body" validate:"required"`
}

// RenderRequest asks for HTML rendering of either a stored note or raw text.
type RenderRequest struct {
	Path string `json:"path,omitempty" example:"daily/2026-08-28.md"`
	Text string `json:"text,omitempty" example:"Ping @Jane Doe re #sales"`
}

// RenderResponse carries the rendered HTML.
type RenderResponse struct {
	HTML string `json:"html" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// NoteListItem is a lightweight item in a list response (aliased from the domain layer).
type NoteListItem = noteservice.NoteListItem

// NoteListResponse wraps paginated note listings.
type NoteListResponse struct {
	Notes []NoteListItem `json:"notes" validate:"required"`
	Total int            `json:"total" example:"42" validate:"required"`
}

// BacklinksResponse wraps backlinks with their context snippets.
type BacklinksResponse struct {
	Title     string           `json:"title" validate:"required"`
	Backlinks []graph.Backlink `json:"backlinks" validate:"required"`
}

// TagListResponse wraps the tag rollup.
type TagListResponse struct {
	Tags []rollup.NameCount `json:"tags" validate:"required"`
}

// TagNoteItem is one note in a tag listing.
type TagNoteItem struct {
	Path     string `json:"path" example:"daily/2026-08-28.md"`
	Name     string `json:"name" example:"2026-08-28"`
	Category string `json:"category" example:"daily"`
}

// TagNotesResponse wraps the notes carrying one tag.
type TagNotesResponse struct {
	Tag   string        `json:"tag" validate:"required"`
	Notes []TagNoteItem `json:"notes" validate:"required"`
}

// ContactRequest is the request body for saving a contact.
type ContactRequest struct {
	FirstName string `json:"first_name" example:"Jane" validate:"required"`
	LastName  string `json:"last_name" example:"Doe"`
}

// ContactListResponse wraps the contact directory.
type ContactListResponse struct {
	Contacts []models.Contact `json:"contacts" validate:"required"`
}

// MentionsResponse wraps every mention context for a contact.
type MentionsResponse struct {
	Name     string                  `json:"name" validate:"required"`
	Mentions []rollup.MentionContext `json:"mentions" validate:"required"`
}

// VoiceRequest carries a raw transcript; Save appends the structured
// markdown to today's daily note.
type VoiceRequest struct {
	Transcript string `json:"transcript" validate:"required"`
	Save       bool   `json:"save,omitempty"`
}

// VoiceResponse wraps a structured memory.
type VoiceResponse struct {
	Memory    voice.StructuredMemory `json:"memory" validate:"required"`
	SavedPath string                 `json:"saved_path,omitempty" example:"daily/2026-08-28.md"`
}

// SuggestTagsRequest carries text to analyze for tag suggestions.
type SuggestTagsRequest struct {
	Text string `json:"text" example:"Reviewed the lorawan gateway firmware" validate:"required"`
}

// SuggestTagsResponse wraps suggested tags.
type SuggestTagsResponse struct {
	Tags []string `json:"tags" validate:"required"`
}

// AttachmentUploadResponse is returned after a successful attachment upload.
type AttachmentUploadResponse struct {
	Filename string `json:"filename" example:"photo.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/attachments/photo.png" validate:"required"`
}
