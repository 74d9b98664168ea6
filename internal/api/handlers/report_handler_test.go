package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/models"
	"github.com/insightpilot/insightpilot-api/internal/services"
)

// reportStore fakes just the report reads the handler path needs.
type reportStore struct {
	core.DbClient

	reports map[string]*models.Report
}

func (s *reportStore) GetReportByID(_ context.Context, id, userID string) (*models.Report, error) {
	r, ok := s.reports[id]
	if !ok || r.UserID != userID {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func newStatusRouter(store *reportStore) http.Handler {
	reports := services.NewReportService(store, nil, services.NewLogNotifier(zap.NewNop()), zap.NewNop(), 5*time.Minute)
	h := NewReportHandler(reports, services.NewPDFService())

	r := chi.NewRouter()
	r.Get("/report/status/{reportID}", h.Status)
	return r
}

func authedRequest(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(context.WithValue(req.Context(), "user_id", userID))
}

func TestStatusLooksUpByReportID(t *testing.T) {
	created := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	store := &reportStore{reports: map[string]*models.Report{
		"rep-1": {
			ID: "rep-1", IdeaID: "idea-1", UserID: "user-1",
			Status:    models.ReportStatusProcessing,
			CreatedAt: created, UpdatedAt: created.Add(time.Minute),
		},
	}}
	router := newStatusRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/report/status/rep-1", "user-1"))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rep-1", body["report_id"])
	assert.Equal(t, models.ReportStatusProcessing, body["status"])
	assert.Equal(t, created.Format(time.RFC3339), body["created_at"])
	assert.NotEmpty(t, body["updated_at"])
}

func TestStatusIdeaIDIsNotAReportID(t *testing.T) {
	store := &reportStore{reports: map[string]*models.Report{
		"rep-1": {ID: "rep-1", IdeaID: "idea-1", UserID: "user-1", Status: models.ReportStatusQueued},
	}}
	router := newStatusRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/report/status/idea-1", "user-1"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusHidesOtherUsersReports(t *testing.T) {
	store := &reportStore{reports: map[string]*models.Report{
		"rep-1": {ID: "rep-1", IdeaID: "idea-1", UserID: "user-1", Status: models.ReportStatusCompleted},
	}}
	router := newStatusRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/report/status/rep-1", "user-2"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
