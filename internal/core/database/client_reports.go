package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// Implementing the db interface for reports

// CreateReport inserts a queued report row. The unique index on idea_id makes
// this the arbiter between concurrent generation requests: exactly one caller
// observes inserted == true.
func (c *DatabaseClient) CreateReport(ctx context.Context, r *models.Report) (bool, error) {
	if r == nil {
		return false, errors.New("nil report")
	}
	const q = `
		INSERT INTO reports (id, idea_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (idea_id) DO NOTHING
	`
	res, err := c.db.ExecContext(ctx, q, r.ID, r.IdeaID, r.UserID, r.Status)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

const reportColumns = `id, idea_id, user_id, status, content, COALESCE(error_message, ''), created_at, updated_at`

func scanReport(row *sql.Row) (*models.Report, error) {
	var (
		r       models.Report
		content []byte
	)
	err := row.Scan(&r.ID, &r.IdeaID, &r.UserID, &r.Status, &content,
		&r.ErrorMessage, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	r.Content = json.RawMessage(content)
	return &r, nil
}

func (c *DatabaseClient) GetReportByIdea(ctx context.Context, ideaID, userID string) (*models.Report, error) {
	q := `SELECT ` + reportColumns + ` FROM reports WHERE idea_id = $1 AND user_id = $2`
	return scanReport(c.db.QueryRowContext(ctx, q, ideaID, userID))
}

func (c *DatabaseClient) GetReportByID(ctx context.Context, id, userID string) (*models.Report, error) {
	q := `SELECT ` + reportColumns + ` FROM reports WHERE id = $1 AND user_id = $2`
	return scanReport(c.db.QueryRowContext(ctx, q, id, userID))
}

func (c *DatabaseClient) updateReportStatus(ctx context.Context, query, id string, args ...any) error {
	res, err := c.db.ExecContext(ctx, query, append([]any{id}, args...)...)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) RequeueReport(ctx context.Context, id string) error {
	const q = `
		UPDATE reports
		SET status = 'queued', content = NULL, error_message = NULL, updated_at = now()
		WHERE id = $1
	`
	return c.updateReportStatus(ctx, q, id)
}

func (c *DatabaseClient) MarkReportProcessing(ctx context.Context, id string) error {
	const q = `UPDATE reports SET status = 'processing', updated_at = now() WHERE id = $1`
	return c.updateReportStatus(ctx, q, id)
}

func (c *DatabaseClient) MarkReportFailed(ctx context.Context, id, errorMessage string) error {
	const q = `
		UPDATE reports
		SET status = 'failed', error_message = $2, updated_at = now()
		WHERE id = $1
	`
	return c.updateReportStatus(ctx, q, id, errorMessage)
}

func (c *DatabaseClient) CompleteReport(ctx context.Context, id string, content json.RawMessage) error {
	const q = `
		UPDATE reports
		SET status = 'completed', content = $2, error_message = NULL, updated_at = now()
		WHERE id = $1
	`
	return c.updateReportStatus(ctx, q, id, []byte(content))
}
