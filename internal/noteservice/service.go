// Package noteservice coordinates the vault, the derived-metadata cache,
// and the annotation engine behind one service type consumed by the HTTP
// API and the MCP server.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/eldrid/munin/internal/annotate"
	"github.com/eldrid/munin/internal/apperr"
	"github.com/eldrid/munin/internal/checksum"
	"github.com/eldrid/munin/internal/digest"
	"github.com/eldrid/munin/internal/graph"
	"github.com/eldrid/munin/internal/index"
	"github.com/eldrid/munin/internal/models"
	"github.com/eldrid/munin/internal/render"
	"github.com/eldrid/munin/internal/rollup"
	"github.com/eldrid/munin/internal/storage"
	"github.com/eldrid/munin/internal/voice"
)

// NoteDetail is the full representation of a note, enriched with everything
// the annotation engine extracts from its body.
type NoteDetail struct {
	Path        string                `json:"path"`
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Content     string                `json:"content"`
	Checksum    string                `json:"checksum"`
	Tags        []string              `json:"tags"`
	Contacts    []string              `json:"contacts"`
	Links       []string              `json:"links"`
	ActionItems []annotate.ActionItem `json:"action_items"`
	Backlinks   []string              `json:"backlinks"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage, cache, and annotation operations.
type Service struct {
	store storage.Provider
	db    *index.DB
}

// NewService creates a new note service.
func NewService(store storage.Provider, db *index.DB) *Service {
	return &Service{store: store, db: db}
}

// GetNote reads a note from storage, parses it, and enriches with backlinks.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildNoteDetail(path, data)
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// UpdateNote writes updated content with optimistic concurrency.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// DeleteNote removes a note from storage and cache. The long-term singleton
// cannot be deleted.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if path == models.LongTermPath {
		return apperr.ErrProtected
	}
	if err := s.store.Delete(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	return s.db.DeleteNote(path)
}

// ListNotes returns paginated notes with optional tag filter.
func (s *Service) ListNotes(_ context.Context, limit, offset int, tag, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListNotes(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Name:      r.Name,
			Category:  r.Category,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// LoadAll reads every note in the vault with its content. The annotation
// components operate on in-memory collections, so cross-note queries start
// here.
func (s *Service) LoadAll(_ context.Context) ([]models.Note, error) {
	metas, err := s.store.List("")
	if err != nil {
		return nil, err
	}
	notes := make([]models.Note, 0, len(metas))
	for _, m := range metas {
		data, err := s.store.Read(m.Path)
		if err != nil {
			continue
		}
		notes = append(notes, models.Note{
			Path:      m.Path,
			Name:      models.NameForPath(m.Path),
			Content:   string(data),
			Category:  models.CategoryForPath(m.Path),
			UpdatedAt: m.UpdatedAt,
		})
	}
	return notes, nil
}

// RenderNote renders a note's body as HTML, resolving contact mentions
// against the directory.
func (s *Service) RenderNote(ctx context.Context, path string) (string, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", apperr.ErrNotFound
		}
		return "", err
	}
	contacts, err := s.db.ListContacts()
	if err != nil {
		return "", err
	}
	return render.HTML(string(data), contacts), nil
}

// RenderText renders arbitrary text (not necessarily a stored note).
func (s *Service) RenderText(_ context.Context, text string) (string, error) {
	contacts, err := s.db.ListContacts()
	if err != nil {
		return "", err
	}
	return render.HTML(text, contacts), nil
}

// Graph builds the full link multigraph over the vault.
func (s *Service) Graph(ctx context.Context) (graph.Graph, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return graph.Graph{}, err
	}
	return graph.Build(notes), nil
}

// LinkStats aggregates link usage over the vault.
func (s *Service) LinkStats(ctx context.Context) (graph.Stats, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return graph.Stats{}, err
	}
	return graph.ComputeStats(notes), nil
}

// Backlinks finds notes referencing the given title, with context snippets.
func (s *Service) Backlinks(ctx context.Context, title string) ([]graph.Backlink, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return graph.Backlinks(title, notes), nil
}

// TagRollup counts tag usage across the vault.
func (s *Service) TagRollup(ctx context.Context) ([]rollup.NameCount, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return rollup.TagCounts(notes), nil
}

// NotesByTag returns the notes containing the given tag.
func (s *Service) NotesByTag(ctx context.Context, tag string) ([]models.Note, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return rollup.FilterByTag(notes, tag), nil
}

// ContactMentions enumerates every context where the named contact appears.
func (s *Service) ContactMentions(ctx context.Context, name string) ([]rollup.MentionContext, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return rollup.ContactContexts(name, notes), nil
}

// Summary generates a digest over an arbitrary window.
func (s *Service) Summary(ctx context.Context, start, end, now time.Time) (*digest.Summary, error) {
	notes, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return digest.Generate(notes, start, end, now)
}

// WeeklySummary generates the last-7-days digest ending at now.
func (s *Service) WeeklySummary(ctx context.Context, now time.Time) (*digest.Summary, error) {
	return s.Summary(ctx, now.AddDate(0, 0, -7), now, now)
}

// MonthlySummary generates the last-month digest ending at now.
func (s *Service) MonthlySummary(ctx context.Context, now time.Time) (*digest.Summary, error) {
	return s.Summary(ctx, now.AddDate(0, -1, 0), now, now)
}

// StructureTranscript structures a voice transcript. When save is true, the
// rendered markdown is appended to the daily note for now's date and the
// note is re-indexed; the saved path is returned.
func (s *Service) StructureTranscript(_ context.Context, transcript string, save bool, now time.Time) (voice.StructuredMemory, string, error) {
	m := voice.Structure(transcript)
	if !save {
		return m, "", nil
	}

	path := models.DailyPath(now)
	md := voice.ToMarkdown(m, now)

	existing, err := s.store.Read(path)
	switch {
	case err == nil:
		md = strings.TrimRight(string(existing), "\n") + "\n\n---\n\n" + md
	case errors.Is(err, os.ErrNotExist):
		// First entry of the day.
	default:
		return m, "", err
	}

	if err := s.store.Write(path, []byte(md)); err != nil {
		return m, "", err
	}
	if err := s.IndexFile(path, []byte(md)); err != nil {
		return m, "", err
	}
	return m, path, nil
}

// AppendAttachmentRef appends an attachment reference line to a note.
func (s *Service) AppendAttachmentRef(_ context.Context, path, filename string) error {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	body := strings.TrimRight(string(data), "\n") + "\n" + attachmentRef(filename) + "\n"
	if err := s.store.Write(path, []byte(body)); err != nil {
		return err
	}
	return s.IndexFile(path, []byte(body))
}

// RemoveAttachmentRef removes every reference line for the given attachment.
func (s *Service) RemoveAttachmentRef(_ context.Context, path, filename string) error {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	ref := attachmentRef(filename)
	var kept []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == ref {
			continue
		}
		kept = append(kept, line)
	}
	body := strings.Join(kept, "\n")
	if err := s.store.Write(path, []byte(body)); err != nil {
		return err
	}
	return s.IndexFile(path, []byte(body))
}

// Contacts exposes the contact directory.
func (s *Service) Contacts(_ context.Context) ([]models.Contact, error) {
	return s.db.ListContacts()
}

// SaveContact inserts or updates a directory entry.
func (s *Service) SaveContact(_ context.Context, c models.Contact) error {
	if c.ID == "" || c.FirstName == "" {
		return fmt.Errorf("contact id and first name are required")
	}
	return s.db.UpsertContact(c)
}

// DeleteContact removes a directory entry.
func (s *Service) DeleteContact(_ context.Context, id string) error {
	return s.db.DeleteContact(id)
}

// IndexFile parses data and upserts derived metadata into the cache.
// Exported so that sync and watcher paths can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	return index.IndexFile(s.db, path, data, time.Now())
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading
// the file.
func (s *Service) buildNoteDetail(path string, data []byte) (*NoteDetail, error) {
	content := string(data)
	res := annotate.Parse(content)
	name := models.NameForPath(path)

	bl, err := s.db.Backlinks(name)
	if err != nil {
		return nil, err
	}

	return &NoteDetail{
		Path:        path,
		Name:        name,
		Category:    models.CategoryForPath(path),
		Content:     content,
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Contacts:    nonNilSlice(res.Contacts),
		Links:       nonNilSlice(res.Links),
		ActionItems: nonNilSlice(annotate.ExtractActionItems(content)),
		Backlinks:   nonNilSlice(bl),
		UpdatedAt:   time.Now(),
	}, nil
}

func attachmentRef(filename string) string {
	return "![" + filename + "](/attachments/" + filename + ")"
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
