package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/insightpilot/insightpilot-api/internal/core"
	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

type PersonaService struct {
	db core.DbClient
}

func NewPersonaService(db core.DbClient) *PersonaService {
	return &PersonaService{db: db}
}

func (s *PersonaService) Create(ctx context.Context, p *models.CustomerPersona) (*models.CustomerPersona, error) {
	if p == nil || p.PersonaName == "" {
		return nil, errors.New("persona name is required")
	}
	if p.IdeaID != nil {
		idea, err := s.db.GetIdeaByID(ctx, *p.IdeaID, p.UserID)
		if err != nil {
			return nil, err
		}
		if idea == nil {
			return nil, apperrors.ErrNotFound
		}
	}
	p.ID = uuid.NewString()
	if err := s.db.CreatePersona(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PersonaService) Get(ctx context.Context, id, userID string) (*models.CustomerPersona, error) {
	p, err := s.db.GetPersonaByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (s *PersonaService) List(ctx context.Context, userID string, ideaID *string) ([]models.CustomerPersona, error) {
	return s.db.ListPersonasByUser(ctx, userID, ideaID)
}

func (s *PersonaService) Update(ctx context.Context, p *models.CustomerPersona) (*models.CustomerPersona, error) {
	if p == nil || p.ID == "" {
		return nil, errors.New("persona id is required")
	}
	if p.PersonaName == "" {
		return nil, errors.New("persona name is required")
	}
	if err := s.db.UpdatePersona(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PersonaService) Delete(ctx context.Context, id, userID string) error {
	return s.db.DeletePersona(ctx, id, userID)
}
