package catalog

import (
	"context"
	"fmt"

	"github.com/retrodex-labs/retrodex/pkg/core"
	"github.com/retrodex-labs/retrodex/pkg/slug"
)

const systemColumns = `s.id, s.slug, s.name, s.description, s.manufacturer, s.links, s.metadata, s.owner_team_id`

func scanSystem(scanner interface{ Scan(...any) error }) (core.System, error) {
	var (
		sys        core.System
		link, meta []byte
	)
	err := scanner.Scan(&sys.ID, &sys.Slug, &sys.Name, &sys.Description, &sys.Manufacturer,
		&link, &meta, &sys.OwnerTeamID)
	if err != nil {
		return core.System{}, err
	}
	sys.Links, sys.Metadata = core.JSON(link), core.JSON(meta)
	return sys, nil
}

// ListSystems returns a page of systems ordered by id.
func (s *SQLStore) ListSystems(ctx context.Context, page core.Page) ([]core.System, error) {
	page = page.Normalize()

	rows, err := s.query(ctx, `
		SELECT `+systemColumns+`
		FROM systems s
		ORDER BY s.id
		LIMIT ? OFFSET ?`, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list systems: %w", err)
	}
	defer rows.Close()

	var systems []core.System
	for rows.Next() {
		sys, err := scanSystem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan system: %w", err)
		}
		systems = append(systems, sys)
	}
	return systems, rows.Err()
}

// GetSystem looks a system up by id or slug.
func (s *SQLStore) GetSystem(ctx context.Context, id core.IDOrSlug) (*core.System, error) {
	clause, arg := idOrSlugClause("s", id)
	sys, err := scanSystem(s.queryRow(ctx, `
		SELECT `+systemColumns+`
		FROM systems s
		WHERE `+clause, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return &sys, nil
}

// CreateSystem inserts a system and returns it with its assigned id.
func (s *SQLStore) CreateSystem(ctx context.Context, sys *core.System) (*core.System, error) {
	if err := slug.Validate(sys.Slug); err != nil {
		return nil, err
	}

	created := *sys
	created.Links = core.JSON(jsonOrEmpty(sys.Links))
	created.Metadata = core.JSON(jsonOrEmpty(sys.Metadata))

	err := s.queryRow(ctx, `
		INSERT INTO systems (slug, name, description, manufacturer, links, metadata, owner_team_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		created.Slug, created.Name, created.Description, created.Manufacturer,
		[]byte(created.Links), []byte(created.Metadata), created.OwnerTeamID,
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert system: %w", err)
	}
	return &created, nil
}
