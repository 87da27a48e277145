package catalog

import (
	"context"
	"fmt"

	"github.com/retrodex-labs/retrodex/pkg/core"
)

const releaseColumns = `r.id, r.core_id, r.platform_id, r.version, r.notes, r.date_released, r.prerelease, r.yanked, r.links, r.metadata`

func scanRelease(scanner interface{ Scan(...any) error }) (core.CoreRelease, error) {
	var (
		r          core.CoreRelease
		link, meta []byte
	)
	err := scanner.Scan(&r.ID, &r.CoreID, &r.PlatformID, &r.Version, &r.Notes,
		&r.DateReleased, &r.Prerelease, &r.Yanked, &link, &meta)
	if err != nil {
		return core.CoreRelease{}, err
	}
	r.Links, r.Metadata = core.JSON(link), core.JSON(meta)
	return r, nil
}

// CreateRelease inserts a release and returns it with its assigned id.
func (s *SQLStore) CreateRelease(ctx context.Context, r *core.CoreRelease) (*core.CoreRelease, error) {
	if r.Version == "" {
		return nil, fmt.Errorf("release version is required")
	}

	created := *r
	created.Links = core.JSON(jsonOrEmpty(r.Links))
	created.Metadata = core.JSON(jsonOrEmpty(r.Metadata))

	err := s.queryRow(ctx, `
		INSERT INTO core_releases (core_id, platform_id, version, notes, date_released, prerelease, yanked, links, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		created.CoreID, created.PlatformID, created.Version, created.Notes,
		created.DateReleased, created.Prerelease, created.Yanked,
		[]byte(created.Links), []byte(created.Metadata),
	).Scan(&created.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert release: %w", err)
	}
	return &created, nil
}

// ListReleases returns a page of a core's releases, newest first.
func (s *SQLStore) ListReleases(ctx context.Context, coreID int32, page core.Page) ([]core.CoreRelease, error) {
	page = page.Normalize()

	rows, err := s.query(ctx, `
		SELECT `+releaseColumns+`
		FROM core_releases r
		WHERE r.core_id = ?
		ORDER BY r.date_released DESC, r.id DESC
		LIMIT ? OFFSET ?`, coreID, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list releases: %w", err)
	}
	defer rows.Close()

	var releases []core.CoreRelease
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan release: %w", err)
		}
		releases = append(releases, r)
	}
	return releases, rows.Err()
}
