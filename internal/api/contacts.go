package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/eldrid/munin/internal/apperr"
	"github.com/eldrid/munin/internal/models"
)

// ListContacts handles GET /api/contacts.
//
//	@Summary		List the contact directory
//	@Tags			contacts
//	@Produce		json
//	@Success		200	{object}	ContactListResponse
//	@Security		BearerAuth
//	@Router			/contacts [get]
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.svc.Contacts(r.Context())
	if err != nil {
		slog.Error("list contacts failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ContactListResponse{Contacts: contacts})
}

// SaveContact handles PUT /api/contacts/{id}.
//
//	@Summary		Create or update a contact
//	@Tags			contacts
//	@Accept			json
//	@Param			id		path	string			true	"Contact ID"
//	@Param			body	body	ContactRequest	true	"Contact fields"
//	@Success		204		"Saved"
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [put]
func (h *Handler) SaveContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	c := models.Contact{ID: id, FirstName: req.FirstName, LastName: req.LastName}
	if err := h.svc.SaveContact(r.Context(), c); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteContact handles DELETE /api/contacts/{id}.
//
//	@Summary		Delete a contact
//	@Tags			contacts
//	@Param			id	path	string	true	"Contact ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/contacts/{id} [delete]
func (h *Handler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteContact(r.Context(), id); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("delete contact failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ContactMentions handles GET /api/mentions/{name}.
//
//	@Summary		List every context where a contact is mentioned
//	@Tags			contacts
//	@Produce		json
//	@Param			name	path		string	true	"Contact name as written after @"
//	@Success		200		{object}	MentionsResponse
//	@Security		BearerAuth
//	@Router			/mentions/{name} [get]
func (h *Handler) ContactMentions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	mentions, err := h.svc.ContactMentions(r.Context(), name)
	if err != nil {
		slog.Error("contact mentions failed", slog.String("name", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, MentionsResponse{Name: name, Mentions: mentions})
}
