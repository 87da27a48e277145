package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/retrodex-labs/retrodex/pkg/core"
)

// SeedFile is the YAML layout for catalog seed data. Cores reference teams
// and systems by slug so fixtures stay readable.
type SeedFile struct {
	Teams []struct {
		Slug        string `yaml:"slug"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
	} `yaml:"teams"`
	Platforms []struct {
		Slug        string `yaml:"slug"`
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		OwnerTeam   string `yaml:"owner_team"`
	} `yaml:"platforms"`
	Systems []struct {
		Slug         string `yaml:"slug"`
		Name         string `yaml:"name"`
		Description  string `yaml:"description"`
		Manufacturer string `yaml:"manufacturer"`
		OwnerTeam    string `yaml:"owner_team"`
	} `yaml:"systems"`
	Cores []struct {
		Slug        string   `yaml:"slug"`
		Name        string   `yaml:"name"`
		Description string   `yaml:"description"`
		OwnerTeam   string   `yaml:"owner_team"`
		Systems     []string `yaml:"systems"`
	} `yaml:"cores"`
}

// SeedResult summarizes what a seed load inserted and skipped.
type SeedResult struct {
	Created int
	Skipped int
}

// LoadSeeds reads a YAML seed file and inserts its rows. Rows whose slug
// already exists are skipped, so reseeding is harmless.
func (s *SQLStore) LoadSeeds(ctx context.Context, path string) (*SeedResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	result := &SeedResult{}

	for _, t := range seed.Teams {
		existing, err := s.GetTeam(ctx, core.IDOrSlug(t.Slug))
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		if _, err := s.CreateTeam(ctx, &core.Team{
			Slug: t.Slug, Name: t.Name, Description: t.Description,
		}); err != nil {
			return nil, fmt.Errorf("failed to seed team %q: %w", t.Slug, err)
		}
		result.Created++
	}

	for _, p := range seed.Platforms {
		existing, err := s.GetPlatform(ctx, core.IDOrSlug(p.Slug))
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		owner, err := s.GetTeam(ctx, core.IDOrSlug(p.OwnerTeam))
		if err != nil {
			return nil, fmt.Errorf("platform %q owner team %q: %w", p.Slug, p.OwnerTeam, err)
		}
		if _, err := s.CreatePlatform(ctx, &core.Platform{
			Slug: p.Slug, Name: p.Name, Description: p.Description,
			OwnerTeamID: owner.ID,
		}); err != nil {
			return nil, fmt.Errorf("failed to seed platform %q: %w", p.Slug, err)
		}
		result.Created++
	}

	for _, sys := range seed.Systems {
		existing, err := s.GetSystem(ctx, core.IDOrSlug(sys.Slug))
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		owner, err := s.GetTeam(ctx, core.IDOrSlug(sys.OwnerTeam))
		if err != nil {
			return nil, fmt.Errorf("system %q owner team %q: %w", sys.Slug, sys.OwnerTeam, err)
		}
		if _, err := s.CreateSystem(ctx, &core.System{
			Slug: sys.Slug, Name: sys.Name, Description: sys.Description,
			Manufacturer: sys.Manufacturer, OwnerTeamID: owner.ID,
		}); err != nil {
			return nil, fmt.Errorf("failed to seed system %q: %w", sys.Slug, err)
		}
		result.Created++
	}

	for _, c := range seed.Cores {
		existing, err := s.GetCore(ctx, core.IDOrSlug(c.Slug))
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
		if existing != nil {
			result.Skipped++
			continue
		}
		owner, err := s.GetTeam(ctx, core.IDOrSlug(c.OwnerTeam))
		if err != nil {
			return nil, fmt.Errorf("core %q owner team %q: %w", c.Slug, c.OwnerTeam, err)
		}
		systemIDs := make([]int32, 0, len(c.Systems))
		for _, slug := range c.Systems {
			sys, err := s.GetSystem(ctx, core.IDOrSlug(slug))
			if err != nil {
				return nil, fmt.Errorf("core %q system %q: %w", c.Slug, slug, err)
			}
			systemIDs = append(systemIDs, sys.ID)
		}
		if _, err := s.CreateCore(ctx, core.NewCore{
			Slug: c.Slug, Name: c.Name, Description: c.Description,
			OwnerTeamID: owner.ID, SystemIDs: systemIDs,
		}); err != nil {
			return nil, fmt.Errorf("failed to seed core %q: %w", c.Slug, err)
		}
		result.Created++
	}

	s.logger.Info("seed load complete",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped))
	return result, nil
}
