package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/insightpilot/insightpilot-api/internal/models"
	"github.com/insightpilot/insightpilot-api/internal/services"
)

type ReportHandler struct {
	reports *services.ReportService
	pdf     *services.PDFService
}

func NewReportHandler(reports *services.ReportService, pdf *services.PDFService) *ReportHandler {
	return &ReportHandler{reports: reports, pdf: pdf}
}

// Generate kicks off report generation for an idea, or reports the state of
// an existing run. The heavy lifting happens in the background; this always
// returns quickly.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.reports.RequestGeneration(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}

	code := http.StatusAccepted
	if status.Status == models.ReportStatusCompleted {
		code = http.StatusOK
	}
	writeJSON(w, code, status)
}

// Status reports the generation state of one report without touching it.
// Clients poll this with the report_id returned by Generate.
func (h *ReportHandler) Status(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := h.reports.GetByID(r.Context(), chi.URLParam(r, "reportID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if report == nil {
		http.Error(w, "report not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"report_id":     report.ID,
		"status":        report.Status,
		"error_message": report.ErrorMessage,
		"created_at":    report.CreatedAt,
		"updated_at":    report.UpdatedAt,
	})
}

// Get returns the completed report document. A report still in flight answers
// 202 with its current status.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := h.reports.GetByIdea(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if report == nil {
		http.Error(w, "no report for this idea", http.StatusNotFound)
		return
	}

	if report.Status != models.ReportStatusCompleted {
		writeJSON(w, http.StatusAccepted, map[string]any{
			"report_id":     report.ID,
			"status":        report.Status,
			"error_message": report.ErrorMessage,
		})
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Download streams the completed report as a PDF.
func (h *ReportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	report, err := h.reports.GetByIdea(r.Context(), chi.URLParam(r, "ideaID"), userID)
	if err != nil {
		serviceError(w, err)
		return
	}
	if report == nil {
		http.Error(w, "no report for this idea", http.StatusNotFound)
		return
	}
	if report.Status != models.ReportStatusCompleted {
		http.Error(w, "report is not ready", http.StatusConflict)
		return
	}

	var content models.ReportContent
	if err := json.Unmarshal(report.Content, &content); err != nil {
		http.Error(w, "corrupt report content", 500)
		return
	}

	doc, err := h.pdf.Render(&content)
	if err != nil {
		http.Error(w, "pdf rendering failed", 500)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "insightpilot-report.pdf"))
	w.Write(doc)
}
