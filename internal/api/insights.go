package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/eldrid/munin/internal/annotate"
	"github.com/eldrid/munin/internal/apperr"
	"github.com/eldrid/munin/internal/digest"
)

// Graph handles GET /api/graph.
//
//	@Summary		Get the wiki-link graph over the vault
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	graph.Graph
//	@Security		BearerAuth
//	@Router			/graph [get]
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.Graph(r.Context())
	if err != nil {
		slog.Error("graph failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GraphStats handles GET /api/graph/stats.
//
//	@Summary		Get link usage statistics
//	@Tags			graph
//	@Produce		json
//	@Success		200	{object}	graph.Stats
//	@Security		BearerAuth
//	@Router			/graph/stats [get]
func (h *Handler) GraphStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.LinkStats(r.Context())
	if err != nil {
		slog.Error("graph stats failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// Backlinks handles GET /api/backlinks/{title}.
//
//	@Summary		Get notes linking to a title, with context snippets
//	@Tags			graph
//	@Produce		json
//	@Param			title	path		string	true	"Link target title"
//	@Success		200		{object}	BacklinksResponse
//	@Security		BearerAuth
//	@Router			/backlinks/{title} [get]
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	if title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}
	bl, err := h.svc.Backlinks(r.Context(), title)
	if err != nil {
		slog.Error("backlinks failed", slog.String("title", title), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Title: title, Backlinks: bl})
}

// Tags handles GET /api/tags.
//
//	@Summary		List tags with note counts
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.TagRollup(r.Context())
	if err != nil {
		slog.Error("tag rollup failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TagListResponse{Tags: counts})
}

// NotesByTag handles GET /api/tags/{tag}/notes.
//
//	@Summary		List notes carrying a tag
//	@Tags			tags
//	@Produce		json
//	@Param			tag	path		string	true	"Tag without the # prefix"
//	@Success		200	{object}	TagNotesResponse
//	@Security		BearerAuth
//	@Router			/tags/{tag}/notes [get]
func (h *Handler) NotesByTag(w http.ResponseWriter, r *http.Request) {
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("tag is required"))
		return
	}
	notes, err := h.svc.NotesByTag(r.Context(), tag)
	if err != nil {
		slog.Error("notes by tag failed", slog.String("tag", tag), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	items := make([]TagNoteItem, len(notes))
	for i, n := range notes {
		items[i] = TagNoteItem{Path: n.Path, Name: n.Name, Category: n.Category}
	}
	writeJSON(w, http.StatusOK, TagNotesResponse{Tag: tag, Notes: items})
}

// Summary handles GET /api/summary/weekly and GET /api/summary/monthly.
// The format query parameter selects json (default), markdown, or text.
//
//	@Summary		Generate a digest of the recent window
//	@Tags			summary
//	@Produce		json
//	@Param			period	path		string	true	"weekly or monthly"
//	@Param			format	query		string	false	"json, markdown or text"
//	@Success		200		{object}	digest.Summary
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/summary/{period} [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	var (
		sum *digest.Summary
		err error
	)
	switch chi.URLParam(r, "period") {
	case "weekly":
		sum, err = h.svc.WeeklySummary(r.Context(), now)
	case "monthly":
		sum, err = h.svc.MonthlySummary(r.Context(), now)
	default:
		writeJSON(w, http.StatusBadRequest, errorBody("period must be weekly or monthly"))
		return
	}
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidRange) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid summary window"))
			return
		}
		slog.Error("summary failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	switch r.URL.Query().Get("format") {
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(digest.FormatMarkdown(sum)))
	case "text":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(digest.FormatText(sum)))
	default:
		writeJSON(w, http.StatusOK, sum)
	}
}

// StructureVoice handles POST /api/voice/structure.
//
//	@Summary		Structure a raw voice transcript into a memory
//	@Tags			voice
//	@Accept			json
//	@Produce		json
//	@Param			body	body		VoiceRequest	true	"Raw transcript"
//	@Success		200		{object}	VoiceResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/voice/structure [post]
func (h *Handler) StructureVoice(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req VoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Transcript == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("transcript is required"))
		return
	}
	memory, savedPath, err := h.svc.StructureTranscript(r.Context(), req.Transcript, req.Save, time.Now())
	if err != nil {
		slog.Error("voice structure failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, VoiceResponse{Memory: memory, SavedPath: savedPath})
}

// SuggestTags handles POST /api/suggest-tags.
//
//	@Summary		Suggest tags for a piece of text
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SuggestTagsRequest	true	"Text to analyze"
//	@Success		200		{object}	SuggestTagsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/suggest-tags [post]
func (h *Handler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req SuggestTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}
	tags := annotate.SuggestTags(req.Text)
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, SuggestTagsResponse{Tags: tags})
}
