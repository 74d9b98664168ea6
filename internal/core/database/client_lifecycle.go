package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// Implementing the db interface for trash

func (c *DatabaseClient) CreateTrash(ctx context.Context, t *models.Trash) error {
	if t == nil {
		return errors.New("nil trash entry")
	}
	const q = `
		INSERT INTO trash (id, idea_id, idea_name, idea_description, user_id, deleted_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	_, err := c.db.ExecContext(ctx, q, t.ID, t.IdeaID, t.IdeaName, t.IdeaDescription, t.UserID)
	return err
}

func (c *DatabaseClient) GetTrashByID(ctx context.Context, id, userID string) (*models.Trash, error) {
	const q = `
		SELECT id, idea_id, idea_name, COALESCE(idea_description, ''), user_id, deleted_at
		FROM trash WHERE id = $1 AND user_id = $2
	`
	var t models.Trash
	err := c.db.QueryRowContext(ctx, q, id, userID).
		Scan(&t.ID, &t.IdeaID, &t.IdeaName, &t.IdeaDescription, &t.UserID, &t.DeletedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *DatabaseClient) ListTrashByUser(ctx context.Context, userID string) ([]models.Trash, error) {
	const q = `
		SELECT id, idea_id, idea_name, COALESCE(idea_description, ''), user_id, deleted_at
		FROM trash WHERE user_id = $1 ORDER BY deleted_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Trash
	for rows.Next() {
		var t models.Trash
		if err := rows.Scan(&t.ID, &t.IdeaID, &t.IdeaName, &t.IdeaDescription,
			&t.UserID, &t.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteTrash(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM trash WHERE id = $1 AND user_id = $2`
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

func (c *DatabaseClient) PurgeTrashOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM trash WHERE deleted_at < $1`
	res, err := c.db.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Implementing the db interface for the archive

func (c *DatabaseClient) CreateArchive(ctx context.Context, a *models.Archive) error {
	if a == nil {
		return errors.New("nil archive entry")
	}
	const q = `
		INSERT INTO archive (id, idea_id, idea_name, idea_description, user_id, archived_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	_, err := c.db.ExecContext(ctx, q, a.ID, a.IdeaID, a.IdeaName, a.IdeaDescription, a.UserID)
	return err
}

func (c *DatabaseClient) GetArchiveByID(ctx context.Context, id, userID string) (*models.Archive, error) {
	const q = `
		SELECT id, idea_id, idea_name, COALESCE(idea_description, ''), user_id, archived_at
		FROM archive WHERE id = $1 AND user_id = $2
	`
	var a models.Archive
	err := c.db.QueryRowContext(ctx, q, id, userID).
		Scan(&a.ID, &a.IdeaID, &a.IdeaName, &a.IdeaDescription, &a.UserID, &a.ArchivedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *DatabaseClient) ListArchiveByUser(ctx context.Context, userID string) ([]models.Archive, error) {
	const q = `
		SELECT id, idea_id, idea_name, COALESCE(idea_description, ''), user_id, archived_at
		FROM archive WHERE user_id = $1 ORDER BY archived_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Archive
	for rows.Next() {
		var a models.Archive
		if err := rows.Scan(&a.ID, &a.IdeaID, &a.IdeaName, &a.IdeaDescription,
			&a.UserID, &a.ArchivedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteArchive(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM archive WHERE id = $1 AND user_id = $2`
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
