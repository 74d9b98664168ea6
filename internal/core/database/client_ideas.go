package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// Implementing the db interface for the questionnaire

func (c *DatabaseClient) ListQuestionsByPrefix(ctx context.Context, prefix string) ([]models.Question, error) {
	const q = `
		SELECT id, q_uuid, text, COALESCE(body, ''), COALESCE(remarks, ''),
		       input_type, range, status, created_at, updated_at
		FROM questionnaire
		WHERE status = 1 AND q_uuid LIKE $1 || '%'
		ORDER BY q_uuid
	`
	rows, err := c.db.QueryContext(ctx, q, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var (
			qn  models.Question
			rng []byte
		)
		if err := rows.Scan(&qn.ID, &qn.QUUID, &qn.Text, &qn.Body, &qn.Remarks,
			&qn.InputType, &rng, &qn.Status, &qn.CreatedAt, &qn.UpdatedAt); err != nil {
			return nil, err
		}
		qn.Range = json.RawMessage(rng)
		out = append(out, qn)
	}
	return out, rows.Err()
}

// Implementing the db interface for ideas

func (c *DatabaseClient) CreateIdea(ctx context.Context, idea *models.Idea) error {
	return c.insertIdea(ctx, idea)
}

// InsertIdeaWithID re-creates an idea under its original id, as happens when
// restoring from trash or archive. A duplicate id maps to ErrConflict.
func (c *DatabaseClient) InsertIdeaWithID(ctx context.Context, idea *models.Idea) error {
	err := c.insertIdea(ctx, idea)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperrors.ErrConflict
	}
	return err
}

func (c *DatabaseClient) insertIdea(ctx context.Context, idea *models.Idea) error {
	if idea == nil {
		return errors.New("nil idea")
	}
	steps, err := json.Marshal(stepsOrEmpty(idea.CompletedSteps))
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO ideaboard (id, user_id, idea_name, idea_description, pin,
			current_step, is_complete, completed_steps, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`
	_, err = c.db.ExecContext(ctx, q,
		idea.ID, idea.UserID, idea.IdeaName, idea.IdeaDescription, idea.Pin,
		idea.CurrentStep, idea.IsComplete, steps)
	return err
}

const ideaColumns = `
	id, user_id, idea_name, COALESCE(idea_description, ''), pin,
	current_step, is_complete, completed_steps, created_at, updated_at
`

func scanIdea(scan func(dest ...any) error) (*models.Idea, error) {
	var (
		idea  models.Idea
		steps []byte
	)
	err := scan(&idea.ID, &idea.UserID, &idea.IdeaName, &idea.IdeaDescription,
		&idea.Pin, &idea.CurrentStep, &idea.IsComplete, &steps,
		&idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &idea.CompletedSteps); err != nil {
			return nil, fmt.Errorf("decode completed_steps: %w", err)
		}
	}
	return &idea, nil
}

func (c *DatabaseClient) GetIdeaByID(ctx context.Context, id, userID string) (*models.Idea, error) {
	q := `SELECT ` + ideaColumns + ` FROM ideaboard WHERE id = $1 AND user_id = $2`
	row := c.db.QueryRowContext(ctx, q, id, userID)
	idea, err := scanIdea(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return idea, err
}

func (c *DatabaseClient) ListIdeasByUser(ctx context.Context, userID string) ([]models.Idea, error) {
	q := `SELECT ` + ideaColumns + ` FROM ideaboard WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Idea
	for rows.Next() {
		idea, err := scanIdea(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *idea)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateIdeaProgress(ctx context.Context, idea *models.Idea) error {
	steps, err := json.Marshal(stepsOrEmpty(idea.CompletedSteps))
	if err != nil {
		return err
	}
	const q = `
		UPDATE ideaboard
		SET current_step = $3, is_complete = $4, completed_steps = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q,
		idea.ID, idea.UserID, idea.CurrentStep, idea.IsComplete, steps)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) DeleteIdea(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM ideaboard WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func stepsOrEmpty(steps []int) []int {
	if steps == nil {
		return []int{}
	}
	return steps
}

// Implementing the db interface for answers

func (c *DatabaseClient) UpsertAnswer(ctx context.Context, a *models.Answer) error {
	if a == nil {
		return errors.New("nil answer")
	}
	const q = `
		INSERT INTO answers (id, question_id, idea_id, user_id, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (question_id, idea_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`
	_, err := c.db.ExecContext(ctx, q, a.ID, a.QuestionID, a.IdeaID, a.UserID, []byte(a.Value))
	return err
}

const answerColumns = `id, question_id, idea_id, user_id, value, created_at, updated_at`

func (c *DatabaseClient) listAnswers(ctx context.Context, query string, args ...any) ([]models.Answer, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Answer
	for rows.Next() {
		var (
			a   models.Answer
			val []byte
		)
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.IdeaID, &a.UserID, &val,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		a.Value = json.RawMessage(val)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) ListAnswersByIdea(ctx context.Context, ideaID, userID string) ([]models.Answer, error) {
	q := `SELECT ` + answerColumns + ` FROM answers WHERE idea_id = $1 AND user_id = $2 ORDER BY created_at`
	return c.listAnswers(ctx, q, ideaID, userID)
}

func (c *DatabaseClient) ListAnswersByQuestion(ctx context.Context, questionID, userID string) ([]models.Answer, error) {
	q := `SELECT ` + answerColumns + ` FROM answers WHERE question_id = $1 AND user_id = $2 ORDER BY created_at`
	return c.listAnswers(ctx, q, questionID, userID)
}
