package catalog

import (
	"context"
	"fmt"

	"github.com/retrodex-labs/retrodex/pkg/core"
	"github.com/retrodex-labs/retrodex/pkg/slug"
)

const platformColumns = `p.id, p.slug, p.name, p.description, p.links, p.metadata, p.owner_team_id`

func scanPlatform(scanner interface{ Scan(...any) error }) (core.Platform, error) {
	var (
		p          core.Platform
		link, meta []byte
	)
	err := scanner.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &link, &meta, &p.OwnerTeamID)
	if err != nil {
		return core.Platform{}, err
	}
	p.Links, p.Metadata = core.JSON(link), core.JSON(meta)
	return p, nil
}

// ListPlatforms returns a page of platforms ordered by id.
func (s *SQLStore) ListPlatforms(ctx context.Context, page core.Page) ([]core.Platform, error) {
	page = page.Normalize()

	rows, err := s.query(ctx, `
		SELECT `+platformColumns+`
		FROM platforms p
		ORDER BY p.id
		LIMIT ? OFFSET ?`, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", err)
	}
	defer rows.Close()

	var platforms []core.Platform
	for rows.Next() {
		p, err := scanPlatform(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan platform: %w", err)
		}
		platforms = append(platforms, p)
	}
	return platforms, rows.Err()
}

// GetPlatform looks a platform up by id or slug.
func (s *SQLStore) GetPlatform(ctx context.Context, id core.IDOrSlug) (*core.Platform, error) {
	clause, arg := idOrSlugClause("p", id)
	p, err := scanPlatform(s.queryRow(ctx, `
		SELECT `+platformColumns+`
		FROM platforms p
		WHERE `+clause, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// CreatePlatform inserts a platform and returns it with its assigned id.
func (s *SQLStore) CreatePlatform(ctx context.Context, p *core.Platform) (*core.Platform, error) {
	if err := slug.Validate(p.Slug); err != nil {
		return nil, err
	}

	created := *p
	created.Links = core.JSON(jsonOrEmpty(p.Links))
	created.Metadata = core.JSON(jsonOrEmpty(p.Metadata))

	err := s.queryRow(ctx, `
		INSERT INTO platforms (slug, name, description, links, metadata, owner_team_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id`,
		created.Slug, created.Name, created.Description,
		[]byte(created.Links), []byte(created.Metadata), created.OwnerTeamID,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert platform: %w", err)
	}
	return &created, nil
}
