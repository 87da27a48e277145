package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"

	"github.com/retrodex-labs/retrodex/pkg/core"
	"github.com/retrodex-labs/retrodex/pkg/slug"
)

const coreColumns = `c.id, c.slug, c.name, c.description, c.metadata, c.links, c.owner_team_id`

func scanCore(scanner interface{ Scan(...any) error }) (core.Core, error) {
	var (
		c              core.Core
		metadata, link []byte
	)
	err := scanner.Scan(&c.ID, &c.Slug, &c.Name, &c.Description, &metadata, &link, &c.OwnerTeamID)
	if err != nil {
		return core.Core{}, err
	}
	c.Metadata = core.JSON(metadata)
	c.Links = core.JSON(link)
	return c, nil
}

// ListCores returns a page of cores ordered by id.
func (s *SQLStore) ListCores(ctx context.Context, page core.Page) ([]core.Core, error) {
	page = page.Normalize()

	rows, err := s.query(ctx, `
		SELECT `+coreColumns+`
		FROM cores c
		ORDER BY c.id
		LIMIT ? OFFSET ?`, page.Limit, page.Offset())
	if err != nil {
		return nil, fmt.Errorf("failed to list cores: %w", err)
	}
	defer rows.Close()

	var cores []core.Core
	for rows.Next() {
		c, err := scanCore(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan core: %w", err)
		}
		cores = append(cores, c)
	}
	return cores, rows.Err()
}

// ListCoresWithTeams returns a page of cores with their owning teams,
// index-aligned.
func (s *SQLStore) ListCoresWithTeams(ctx context.Context, page core.Page) ([]core.Core, []core.Team, error) {
	page = page.Normalize()

	rows, err := s.query(ctx, `
		SELECT `+coreColumns+`, `+teamColumns+`
		FROM cores c
		JOIN teams t ON t.id = c.owner_team_id
		ORDER BY c.id
		LIMIT ? OFFSET ?`, page.Limit, page.Offset())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list cores with teams: %w", err)
	}
	defer rows.Close()

	var (
		cores []core.Core
		teams []core.Team
	)
	for rows.Next() {
		var (
			c            core.Core
			t            core.Team
			cMeta, cLink []byte
			tMeta, tLink []byte
		)
		err := rows.Scan(
			&c.ID, &c.Slug, &c.Name, &c.Description, &cMeta, &cLink, &c.OwnerTeamID,
			&t.ID, &t.Slug, &t.Name, &t.Description, &tLink, &tMeta,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan core with team: %w", err)
		}
		c.Metadata, c.Links = core.JSON(cMeta), core.JSON(cLink)
		t.Links, t.Metadata = core.JSON(tLink), core.JSON(tMeta)
		cores = append(cores, c)
		teams = append(teams, t)
	}
	return cores, teams, rows.Err()
}

// ListCoreDetails returns a page of cores joined with owner, associated
// systems, and the most recent release with its platform, narrowed by the
// filter.
func (s *SQLStore) ListCoreDetails(ctx context.Context, page core.Page, filter core.CoreFilter) ([]core.CoreDetails, error) {
	page = page.Normalize()

	query := `
		SELECT ` + coreColumns + `, ` + teamColumns + `,
		       r.id, r.core_id, r.platform_id, r.version, r.notes, r.date_released,
		       r.prerelease, r.yanked, r.links, r.metadata,
		       p.id, p.slug, p.name, p.description, p.links, p.metadata, p.owner_team_id
		FROM cores c
		JOIN teams t ON t.id = c.owner_team_id
		LEFT JOIN core_releases r ON r.id = (
			SELECT id FROM core_releases
			WHERE core_releases.core_id = c.id
			ORDER BY date_released DESC, id DESC
			LIMIT 1
		)
		LEFT JOIN platforms p ON p.id = r.platform_id`

	var (
		clauses []string
		args    []any
	)
	if filter.SystemID != 0 {
		clauses = append(clauses, `EXISTS (
			SELECT 1 FROM core_systems cs
			WHERE cs.core_id = c.id AND cs.system_id = ?)`)
		args = append(args, filter.SystemID)
	}
	if filter.PlatformID != 0 {
		clauses = append(clauses, `p.id = ?`)
		args = append(args, filter.PlatformID)
	}
	if filter.TeamID != 0 {
		clauses = append(clauses, `t.id = ?`)
		args = append(args, filter.TeamID)
	}
	if !filter.ReleasedSince.IsZero() {
		clauses = append(clauses, `r.date_released >= ?`)
		args = append(args, filter.ReleasedSince)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += "\n\t\tWHERE " + clause
		} else {
			query += "\n\t\t  AND " + clause
		}
	}
	query += "\n\t\tORDER BY c.id\n\t\tLIMIT ? OFFSET ?"
	args = append(args, page.Limit, page.Offset())

	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list core details: %w", err)
	}
	defer rows.Close()

	var details []core.CoreDetails
	for rows.Next() {
		var (
			d            core.CoreDetails
			cMeta, cLink []byte
			tMeta, tLink []byte

			relID, relCoreID, relPlatformID sql.NullInt32
			relVersion, relNotes            sql.NullString
			relDate                         sql.NullTime
			relPre, relYanked               sql.NullBool
			relLinks, relMeta               []byte

			pID, pOwner   sql.NullInt32
			pSlug, pName  sql.NullString
			pDesc         sql.NullString
			pLinks, pMeta []byte
		)
		err := rows.Scan(
			&d.Core.ID, &d.Core.Slug, &d.Core.Name, &d.Core.Description, &cMeta, &cLink, &d.Core.OwnerTeamID,
			&d.Owner.ID, &d.Owner.Slug, &d.Owner.Name, &d.Owner.Description, &tLink, &tMeta,
			&relID, &relCoreID, &relPlatformID, &relVersion, &relNotes, &relDate,
			&relPre, &relYanked, &relLinks, &relMeta,
			&pID, &pSlug, &pName, &pDesc, &pLinks, &pMeta, &pOwner,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan core details: %w", err)
		}
		d.Core.Metadata, d.Core.Links = core.JSON(cMeta), core.JSON(cLink)
		d.Owner.Links, d.Owner.Metadata = core.JSON(tLink), core.JSON(tMeta)

		if relID.Valid {
			d.LatestRelease = &core.CoreRelease{
				ID:           relID.Int32,
				CoreID:       relCoreID.Int32,
				PlatformID:   relPlatformID.Int32,
				Version:      relVersion.String,
				Notes:        relNotes.String,
				DateReleased: relDate.Time,
				Prerelease:   relPre.Bool,
				Yanked:       relYanked.Bool,
				Links:        core.JSON(relLinks),
				Metadata:     core.JSON(relMeta),
			}
		}
		if pID.Valid {
			d.LatestPlatform = &core.Platform{
				ID:          pID.Int32,
				Slug:        pSlug.String,
				Name:        pName.String,
				Description: pDesc.String,
				Links:       core.JSON(pLinks),
				Metadata:    core.JSON(pMeta),
				OwnerTeamID: pOwner.Int32,
			}
		}
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachSystems(ctx, details); err != nil {
		return nil, err
	}
	return details, nil
}

// attachSystems loads the associated systems for each listed core in one
// query and distributes them.
func (s *SQLStore) attachSystems(ctx context.Context, details []core.CoreDetails) error {
	if len(details) == 0 {
		return nil
	}

	ids := make([]any, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.Core.ID)
	}

	rows, err := s.query(ctx, `
		SELECT cs.core_id, `+systemColumns+`
		FROM core_systems cs
		JOIN systems s ON s.id = cs.system_id
		WHERE cs.core_id IN (`+inPlaceholders(len(ids))+`)
		ORDER BY cs.core_id, s.id`, ids...)
	if err != nil {
		return fmt.Errorf("failed to load core systems: %w", err)
	}
	defer rows.Close()

	byCore := make(map[int32][]core.System, len(details))
	for rows.Next() {
		var (
			coreID     int32
			sys        core.System
			meta, link []byte
		)
		err := rows.Scan(&coreID,
			&sys.ID, &sys.Slug, &sys.Name, &sys.Description, &sys.Manufacturer,
			&link, &meta, &sys.OwnerTeamID)
		if err != nil {
			return fmt.Errorf("failed to scan core system: %w", err)
		}
		sys.Links, sys.Metadata = core.JSON(link), core.JSON(meta)
		byCore[coreID] = append(byCore[coreID], sys)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range details {
		details[i].Systems = byCore[details[i].Core.ID]
	}
	return nil
}

// CreateCore inserts a core and its system associations in one transaction.
func (s *SQLStore) CreateCore(ctx context.Context, in core.NewCore) (*core.Core, error) {
	if err := slug.Validate(in.Slug); err != nil {
		return nil, err
	}

	created := core.Core{
		Slug:        in.Slug,
		Name:        in.Name,
		Description: in.Description,
		Metadata:    core.JSON(jsonOrEmpty(in.Metadata)),
		Links:       core.JSON(jsonOrEmpty(in.Links)),
		OwnerTeamID: in.OwnerTeamID,
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, s.rebind(`
			INSERT INTO cores (slug, name, description, metadata, links, owner_team_id)
			VALUES (?, ?, ?, ?, ?, ?)
			RETURNING id`),
			created.Slug, created.Name, created.Description,
			[]byte(created.Metadata), []byte(created.Links), created.OwnerTeamID,
		).Scan(&created.ID)
		if err != nil {
			return fmt.Errorf("failed to insert core: %w", err)
		}
		return s.insertCoreSystems(ctx, tx, created.ID, in.SystemIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("core created",
		slog.String("slug", created.Slug),
		slog.Int("systems", len(in.SystemIDs)))
	return &created, nil
}

func (s *SQLStore) insertCoreSystems(ctx context.Context, tx *sql.Tx, coreID int32, systemIDs []int32) error {
	for _, systemID := range systemIDs {
		_, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO core_systems (core_id, system_id) VALUES (?, ?)`),
			coreID, systemID)
		if err != nil {
			return fmt.Errorf("failed to associate core %d with system %d: %w", coreID, systemID, err)
		}
	}
	return nil
}

// GetCore looks a core up by id or slug.
func (s *SQLStore) GetCore(ctx context.Context, id core.IDOrSlug) (*core.Core, error) {
	clause, arg := idOrSlugClause("c", id)
	c, err := scanCore(s.queryRow(ctx, `
		SELECT `+coreColumns+`
		FROM cores c
		WHERE `+clause, arg))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// GetCoreDetails returns a core with its owning team and associated systems.
func (s *SQLStore) GetCoreDetails(ctx context.Context, id core.IDOrSlug) (*core.CoreDetails, error) {
	clause, arg := idOrSlugClause("c", id)

	var (
		d            core.CoreDetails
		cMeta, cLink []byte
		tMeta, tLink []byte
	)
	err := s.queryRow(ctx, `
		SELECT `+coreColumns+`, `+teamColumns+`
		FROM cores c
		JOIN teams t ON t.id = c.owner_team_id
		WHERE `+clause, arg).Scan(
		&d.Core.ID, &d.Core.Slug, &d.Core.Name, &d.Core.Description, &cMeta, &cLink, &d.Core.OwnerTeamID,
		&d.Owner.ID, &d.Owner.Slug, &d.Owner.Name, &d.Owner.Description, &tLink, &tMeta,
	)
	if err != nil {
		return nil, notFound(err)
	}
	d.Core.Metadata, d.Core.Links = core.JSON(cMeta), core.JSON(cLink)
	d.Owner.Links, d.Owner.Metadata = core.JSON(tLink), core.JSON(tMeta)

	systems, err := s.GetCoreSystems(ctx, d.Core.ID)
	if err != nil {
		return nil, err
	}
	d.Systems = systems
	return &d, nil
}

// GetCoreSystems returns the systems associated with a core, ordered by id.
func (s *SQLStore) GetCoreSystems(ctx context.Context, coreID int32) ([]core.System, error) {
	rows, err := s.query(ctx, `
		SELECT `+systemColumns+`
		FROM core_systems cs
		JOIN systems s ON s.id = cs.system_id
		WHERE cs.core_id = ?
		ORDER BY s.id`, coreID)
	if err != nil {
		return nil, fmt.Errorf("failed to load systems for core %d: %w", coreID, err)
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

// SetCoreSystems replaces a core's system associations.
func (s *SQLStore) SetCoreSystems(ctx context.Context, coreID int32, systemIDs []int32) error {
	// Dedupe to respect the join table's composite key.
	seen := make(map[int32]bool, len(systemIDs))
	unique := make([]int32, 0, len(systemIDs))
	for _, id := range systemIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i] < unique[j] })

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM core_systems WHERE core_id = ?`), coreID); err != nil {
			return fmt.Errorf("failed to clear core systems: %w", err)
		}
		return s.insertCoreSystems(ctx, tx, coreID, unique)
	})
}
