package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

type IdeaService struct {
	db core.DbClient
}

func NewIdeaService(db core.DbClient) *IdeaService {
	return &IdeaService{db: db}
}

func (s *IdeaService) Create(ctx context.Context, userID, name, description string, pin *int) (*models.Idea, error) {
	if name == "" {
		return nil, errors.New("idea name is required")
	}
	idea := &models.Idea{
		ID:              uuid.NewString(),
		UserID:          userID,
		IdeaName:        name,
		IdeaDescription: description,
		Pin:             pin,
		CurrentStep:     1,
		CompletedSteps:  []int{},
	}
	if err := s.db.CreateIdea(ctx, idea); err != nil {
		return nil, err
	}
	return idea, nil
}

func (s *IdeaService) Get(ctx context.Context, id, userID string) (*models.Idea, error) {
	idea, err := s.db.GetIdeaByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, apperrors.ErrNotFound
	}
	return idea, nil
}

func (s *IdeaService) List(ctx context.Context, userID string) ([]models.Idea, error) {
	return s.db.ListIdeasByUser(ctx, userID)
}
