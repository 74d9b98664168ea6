package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightpilot/insightpilot-api/internal/models"
	"github.com/insightpilot/insightpilot-api/internal/services"
)

type PersonaHandler struct {
	personas *services.PersonaService
}

func NewPersonaHandler(personas *services.PersonaService) *PersonaHandler {
	return &PersonaHandler{personas: personas}
}

func (h *PersonaHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var p models.CustomerPersona
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}
	if p.PersonaName == "" {
		http.Error(w, "persona_name is required", 400)
		return
	}
	p.UserID = userID

	created, err := h.personas.Create(r.Context(), &p)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// List returns the user's personas, optionally filtered by idea_id.
func (h *PersonaHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var ideaID *string
	if v := r.URL.Query().Get("idea_id"); v != "" {
		ideaID = &v
	}

	personas, err := h.personas.List(r.Context(), userID, ideaID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, personas)
}

func (h *PersonaHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	p, err := h.personas.Get(r.Context(), chi.URLParam(r, "personaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func (h *PersonaHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var p models.CustomerPersona
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "invalid body", 400)
		return
	}
	p.ID = chi.URLParam(r, "personaID")
	p.UserID = userID

	updated, err := h.personas.Update(r.Context(), &p)
	if err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *PersonaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if err := h.personas.Delete(r.Context(), chi.URLParam(r, "personaID"), userID); err != nil {
		serviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "persona deleted"})
}
