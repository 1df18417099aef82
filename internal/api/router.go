package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eldrid/munin/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
// vaultRoot is used to resolve the attachments directory.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler, vaultRoot string) chi.Router {
	h := NewHandler(svc)
	ah := NewAttachmentHandler(vaultRoot, svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Rendering.
	r.Post("/render", h.Render)

	// Graph and backlinks.
	r.Get("/graph", h.Graph)
	r.Get("/graph/stats", h.GraphStats)
	r.Get("/backlinks/{title}", h.Backlinks)

	// Tags.
	r.Get("/tags", h.Tags)
	r.Get("/tags/{tag}/notes", h.NotesByTag)
	r.Post("/suggest-tags", h.SuggestTags)

	// Contacts.
	r.Get("/contacts", h.ListContacts)
	r.Put("/contacts/{id}", h.SaveContact)
	r.Delete("/contacts/{id}", h.DeleteContact)
	r.Get("/mentions/{name}", h.ContactMentions)

	// Summaries.
	r.Get("/summary/{period}", h.Summary)

	// Voice capture.
	r.Post("/voice/structure", h.StructureVoice)

	// Attachments (auth-protected mutations).
	r.Post("/attachments", ah.Upload)
	r.Delete("/attachments/{filename}", ah.Delete)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
