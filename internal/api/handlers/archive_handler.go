package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightpilot/insightpilot-api/internal/services"
)

type ArchiveHandler struct {
	lifecycle *services.LifecycleService
}

func NewArchiveHandler(lifecycle *services.LifecycleService) *ArchiveHandler {
	return &ArchiveHandler{lifecycle: lifecycle}
}

// Move puts an idea into the archive.
func (h *ArchiveHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entry, err := h.lifecycle.ArchiveIdea(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *ArchiveHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.lifecycle.ListArchive(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *ArchiveHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	idea, err := h.lifecycle.RestoreFromArchive(r.Context(), chi.URLParam(r, "archiveID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

func (h *ArchiveHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.lifecycle.DeleteFromArchive(r.Context(), chi.URLParam(r, "archiveID"), userID); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted permanently"})
}
