package catalog

import (
	"context"
	"fmt"

	"github.com/retrodex-labs/retrodex/pkg/core"
	"github.com/retrodex-labs/retrodex/pkg/slug"
)

const teamColumns = `t.id, t.slug, t.name, t.description, t.links, t.metadata`

func scanTeam(scanner interface{ Scan(...any) error }) (core.Team, error) {
	var (
		t          core.Team
		link, meta []byte
	)
	err := scanner.Scan(&t.ID, &t.Slug, &t.Name, &t.Description, &link, &meta)
	if err != nil {
		return core.Team{}, err
	}
	t.Links, t.Metadata = core.JSON(link), core.JSON(meta)
	return t, nil
}

// ListTeams returns a page of teams ordered by id.
func (s *SQLStore) ListTeams(ctx context.Context, page core.Page) ([]core.Team, error) {
	page = page.Normalize()

	rows, err := s.query(ctx, `
		SELECT `+teamColumns+`
		FROM teams t
		ORDER BY t.id
		LIMIT ? OFFSET ?`, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	var teams []core.Team
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// GetTeam looks a team up by id or slug.
func (s *SQLStore) GetTeam(ctx context.Context, id core.IDOrSlug) (*core.Team, error) {
	clause, arg := idOrSlugClause("t", id)
	t, err := scanTeam(s.queryRow(ctx, `
		SELECT `+teamColumns+`
		FROM teams t
		WHERE `+clause, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

// CreateTeam inserts a team and returns it with its assigned id.
func (s *SQLStore) CreateTeam(ctx context.Context, t *core.Team) (*core.Team, error) {
	if err := slug.Validate(t.Slug); err != nil {
		return nil, err
	}

	created := *t
	created.Links = core.JSON(jsonOrEmpty(t.Links))
	created.Metadata = core.JSON(jsonOrEmpty(t.Metadata))

	err := s.queryRow(ctx, `
		INSERT INTO teams (slug, name, description, links, metadata)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		created.Slug, created.Name, created.Description,
		[]byte(created.Links), []byte(created.Metadata),
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert team: %w", err)
	}
	return &created, nil
}
