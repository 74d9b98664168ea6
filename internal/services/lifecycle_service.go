package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// LifecycleService moves ideas between the board, trash and archive. Trash
// entries expire after the retention window; archived entries never expire.
type LifecycleService struct {
	db        core.DbClient
	logger    *zap.Logger
	retention time.Duration

	// purge runs trash cleanup after a move; replaced in tests.
	purge func()
}

func NewLifecycleService(db core.DbClient, logger *zap.Logger, retentionDays int) *LifecycleService {
	s := &LifecycleService{
		db:        db,
		logger:    logger.Named("lifecycle"),
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
	s.purge = func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if _, err := s.PurgeExpired(ctx); err != nil {
				s.logger.Error("trash purge failed", zap.Error(err))
			}
		}()
	}
	return s
}

// MoveToTrash soft-deletes an idea. The idea row and its answers go away; the
// trash entry keeps enough to restore name and description.
func (s *LifecycleService) MoveToTrash(ctx context.Context, ideaID, userID string) (*models.Trash, error) {
	idea, err := s.db.GetIdeaByID(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperrors.ErrNotFound
	}

	entry := &models.Trash{
		ID:              uuid.NewString(),
		IdeaID:          idea.ID,
		IdeaName:        idea.IdeaName,
		IdeaDescription: idea.IdeaDescription,
		UserID:          userID,
	}
	if err := s.db.CreateTrash(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.db.DeleteIdea(ctx, ideaID, userID); err != nil {
		return nil, err
	}

	s.purge()
	return entry, nil
}

// RestoreFromTrash re-creates the idea under its original id. Questionnaire
// progress is not retained. ErrConflict means the id is taken again.
func (s *LifecycleService) RestoreFromTrash(ctx context.Context, trashID, userID string) (*models.Idea, error) {
	entry, err := s.db.GetTrashByID(ctx, trashID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperrors.ErrNotFound
	}

	idea := &models.Idea{
		ID:              entry.IdeaID,
		UserID:          userID,
		IdeaName:        entry.IdeaName,
		IdeaDescription: entry.IdeaDescription,
		CurrentStep:     1,
		CompletedSteps:  []int{},
	}
	if err := s.db.InsertIdeaWithID(ctx, idea); err != nil {
		return nil, err
	}
	if err := s.db.DeleteTrash(ctx, trashID, userID); err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *LifecycleService) DeleteFromTrash(ctx context.Context, trashID, userID string) error {
	return s.db.DeleteTrash(ctx, trashID, userID)
}

func (s *LifecycleService) ListTrash(ctx context.Context, userID string) ([]models.Trash, error) {
	return s.db.ListTrashByUser(ctx, userID)
}

// PurgeExpired removes trash entries older than the retention window.
func (s *LifecycleService) PurgeExpired(ctx context.Context) (int64, error) {
	cutoff := time.Now().Add(-s.retention)
	purged, err := s.db.PurgeTrashOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Info("purged expired trash", zap.Int64("count", purged))
	}
	return purged, nil
}

// ArchiveIdea moves an idea to the archive.
func (s *LifecycleService) ArchiveIdea(ctx context.Context, ideaID, userID string) (*models.Archive, error) {
	idea, err := s.db.GetIdeaByID(ctx, ideaID, userID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperrors.ErrNotFound
	}

	entry := &models.Archive{
		ID:              uuid.NewString(),
		IdeaID:          idea.ID,
		IdeaName:        idea.IdeaName,
		IdeaDescription: idea.IdeaDescription,
		UserID:          userID,
	}
	if err := s.db.CreateArchive(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.db.DeleteIdea(ctx, ideaID, userID); err != nil {
		return nil, err
	}
	return entry, nil
}

// RestoreFromArchive re-creates the idea under its original id.
func (s *LifecycleService) RestoreFromArchive(ctx context.Context, archiveID, userID string) (*models.Idea, error) {
	entry, err := s.db.GetArchiveByID(ctx, archiveID, userID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperrors.ErrNotFound
	}

	idea := &models.Idea{
		ID:              entry.IdeaID,
		UserID:          userID,
		IdeaName:        entry.IdeaName,
		IdeaDescription: entry.IdeaDescription,
		CurrentStep:     1,
		CompletedSteps:  []int{},
	}
	if err := s.db.InsertIdeaWithID(ctx, idea); err != nil {
		return nil, err
	}
	if err := s.db.DeleteArchive(ctx, archiveID, userID); err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *LifecycleService) DeleteFromArchive(ctx context.Context, archiveID, userID string) error {
	return s.db.DeleteArchive(ctx, archiveID, userID)
}

func (s *LifecycleService) ListArchive(ctx context.Context, userID string) ([]models.Archive, error) {
	return s.db.ListArchiveByUser(ctx, userID)
}
