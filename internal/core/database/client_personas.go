package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/insightpilot/insightpilot-api/internal/core/apperrors"
	"github.com/insightpilot/insightpilot-api/internal/models"
)

// Implementing the db interface for customer personas

const personaColumns = `
	id, user_id, idea_id, persona_name, COALESCE(tag, ''),
	COALESCE(age_range, ''), COALESCE(gender_identity, ''), COALESCE(education_level, ''),
	COALESCE(location_region, ''), COALESCE(role_occupation, ''), COALESCE(company_size, ''),
	industry_types, COALESCE(annual_income, ''), work_styles, tech_proficiency,
	goals, challenges, tools_used, decision_factors, info_sources, emotions,
	preferred_features, preferred_communication_channels,
	COALESCE(user_journey_stage, ''), pain_points, motivations,
	created_at, updated_at
`

// jsonList stores string slices as jsonb. Nil slices become empty arrays so
// reads never see NULL.
func jsonList(v []string) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return json.Marshal(v)
}

func personaListArgs(p *models.CustomerPersona) ([][]byte, error) {
	lists := [][]string{
		p.IndustryTypes, p.WorkStyles, p.Goals, p.Challenges, p.ToolsUsed,
		p.DecisionFactors, p.InfoSources, p.Emotions, p.PreferredFeatures,
		p.PreferredCommunicationChannels, p.PainPoints, p.Motivations,
	}
	out := make([][]byte, len(lists))
	for i, l := range lists {
		b, err := jsonList(l)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

func scanPersona(scan func(dest ...any) error) (*models.CustomerPersona, error) {
	var (
		p     models.CustomerPersona
		lists [12][]byte
	)
	err := scan(
		&p.ID, &p.UserID, &p.IdeaID, &p.PersonaName, &p.Tag,
		&p.AgeRange, &p.GenderIdentity, &p.EducationLevel,
		&p.LocationRegion, &p.RoleOccupation, &p.CompanySize,
		&lists[0], &p.AnnualIncome, &lists[1], &p.TechProficiency,
		&lists[2], &lists[3], &lists[4], &lists[5], &lists[6], &lists[7],
		&lists[8], &lists[9],
		&p.UserJourneyStage, &lists[10], &lists[11],
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	targets := []*[]string{
		&p.IndustryTypes, &p.WorkStyles, &p.Goals, &p.Challenges, &p.ToolsUsed,
		&p.DecisionFactors, &p.InfoSources, &p.Emotions, &p.PreferredFeatures,
		&p.PreferredCommunicationChannels, &p.PainPoints, &p.Motivations,
	}
	for i, t := range targets {
		if len(lists[i]) == 0 {
			continue
		}
		if err := json.Unmarshal(lists[i], t); err != nil {
			return nil, fmt.Errorf("decode persona list column: %w", err)
		}
	}
	return &p, nil
}

func (c *DatabaseClient) CreatePersona(ctx context.Context, p *models.CustomerPersona) error {
	if p == nil {
		return errors.New("nil persona")
	}
	lists, err := personaListArgs(p)
	if err != nil {
		return err
	}
	const q = `
		INSERT INTO customer_personas (
			id, user_id, idea_id, persona_name, tag,
			age_range, gender_identity, education_level,
			location_region, role_occupation, company_size,
			industry_types, annual_income, work_styles, tech_proficiency,
			goals, challenges, tools_used, decision_factors, info_sources, emotions,
			preferred_features, preferred_communication_channels,
			user_journey_stage, pain_points, motivations,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, now(), now()
		)
	`
	_, err = c.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.IdeaID, p.PersonaName, p.Tag,
		p.AgeRange, p.GenderIdentity, p.EducationLevel,
		p.LocationRegion, p.RoleOccupation, p.CompanySize,
		lists[0], p.AnnualIncome, lists[1], p.TechProficiency,
		lists[2], lists[3], lists[4], lists[5], lists[6], lists[7],
		lists[8], lists[9],
		p.UserJourneyStage, lists[10], lists[11],
	)
	return err
}

func (c *DatabaseClient) GetPersonaByID(ctx context.Context, id, userID string) (*models.CustomerPersona, error) {
	q := `SELECT ` + personaColumns + ` FROM customer_personas WHERE id = $1 AND user_id = $2`
	row := c.db.QueryRowContext(ctx, q, id, userID)
	p, err := scanPersona(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

func (c *DatabaseClient) ListPersonasByUser(ctx context.Context, userID string, ideaID *string) ([]models.CustomerPersona, error) {
	q := `SELECT ` + personaColumns + ` FROM customer_personas WHERE user_id = $1`
	args := []any{userID}
	if ideaID != nil {
		q += ` AND idea_id = $2`
		args = append(args, *ideaID)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := c.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CustomerPersona
	for rows.Next() {
		p, err := scanPersona(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdatePersona(ctx context.Context, p *models.CustomerPersona) error {
	if p == nil {
		return errors.New("nil persona")
	}
	lists, err := personaListArgs(p)
	if err != nil {
		return err
	}
	const q = `
		UPDATE customer_personas SET
			idea_id = $3, persona_name = $4, tag = $5,
			age_range = $6, gender_identity = $7, education_level = $8,
			location_region = $9, role_occupation = $10, company_size = $11,
			industry_types = $12, annual_income = $13, work_styles = $14, tech_proficiency = $15,
			goals = $16, challenges = $17, tools_used = $18, decision_factors = $19,
			info_sources = $20, emotions = $21,
			preferred_features = $22, preferred_communication_channels = $23,
			user_journey_stage = $24, pain_points = $25, motivations = $26,
			updated_at = now()
		WHERE id = $1 AND user_id = $2
	`
	res, err := c.db.ExecContext(ctx, q,
		p.ID, p.UserID, p.IdeaID, p.PersonaName, p.Tag,
		p.AgeRange, p.GenderIdentity, p.EducationLevel,
		p.LocationRegion, p.RoleOccupation, p.CompanySize,
		lists[0], p.AnnualIncome, lists[1], p.TechProficiency,
		lists[2], lists[3], lists[4], lists[5], lists[6], lists[7],
		lists[8], lists[9],
		p.UserJourneyStage, lists[10], lists[11],
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (c *DatabaseClient) DeletePersona(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM customer_personas WHERE id = $1 AND user_id = $2`
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
