package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightpilot/insightpilot-api/internal/services"
)

type TrashHandler struct {
	lifecycle *services.LifecycleService
}

func NewTrashHandler(lifecycle *services.LifecycleService) *TrashHandler {
	return &TrashHandler{lifecycle: lifecycle}
}

// Move soft-deletes an idea into the trash.
func (h *TrashHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entry, err := h.lifecycle.MoveToTrash(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *TrashHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	entries, err := h.lifecycle.ListTrash(r.Context(), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

// Restore re-creates the idea from its trash entry.
func (h *TrashHandler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	idea, err := h.lifecycle.RestoreFromTrash(r.Context(), chi.URLParam(r, "trashID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// Delete removes a trash entry permanently.
func (h *TrashHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.lifecycle.DeleteFromTrash(r.Context(), chi.URLParam(r, "trashID"), userID); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted permanently"})
}
