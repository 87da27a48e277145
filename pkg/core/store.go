package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Page holds offset pagination parameters. Page is zero-based, matching the
// public API.
type Page struct {
	Page  int64
	Limit int64
}

// DefaultPageLimit caps unbounded list requests.
const DefaultPageLimit = 50

// Normalize clamps the page parameters to sane values.
func (p Page) Normalize() Page {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int64 { return p.Page * p.Limit }

// CoreFilter narrows the detailed core listing. Zero fields are ignored.
type CoreFilter struct {
	PlatformID    int32
	SystemID      int32
	TeamID        int32
	ReleasedSince time.Time
}

// NewCore is the input for creating a core together with its system
// associations.
type NewCore struct {
	Slug        string
	Name        string
	Description string
	Metadata    JSON
	Links       JSON
	OwnerTeamID int32
	SystemIDs   []int32
}

// Store is the catalog persistence contract.
type Store interface {
	Close() error

	// Core operations
	ListCores(ctx context.Context, page Page) ([]Core, error)
	ListCoresWithTeams(ctx context.Context, page Page) ([]Core, []Team, error)
	ListCoreDetails(ctx context.Context, page Page, filter CoreFilter) ([]CoreDetails, error)
	CreateCore(ctx context.Context, in NewCore) (*Core, error)
	GetCore(ctx context.Context, id IDOrSlug) (*Core, error)
	GetCoreDetails(ctx context.Context, id IDOrSlug) (*CoreDetails, error)
	GetCoreSystems(ctx context.Context, coreID int32) ([]System, error)
	SetCoreSystems(ctx context.Context, coreID int32, systemIDs []int32) error

	// System operations
	ListSystems(ctx context.Context, page Page) ([]System, error)
	GetSystem(ctx context.Context, id IDOrSlug) (*System, error)
	CreateSystem(ctx context.Context, s *System) (*System, error)

	// Team operations
	ListTeams(ctx context.Context, page Page) ([]Team, error)
	GetTeam(ctx context.Context, id IDOrSlug) (*Team, error)
	CreateTeam(ctx context.Context, t *Team) (*Team, error)

	// Platform operations
	ListPlatforms(ctx context.Context, page Page) ([]Platform, error)
	GetPlatform(ctx context.Context, id IDOrSlug) (*Platform, error)
	CreatePlatform(ctx context.Context, p *Platform) (*Platform, error)

	// Release operations
	CreateRelease(ctx context.Context, r *CoreRelease) (*CoreRelease, error)
	ListReleases(ctx context.Context, coreID int32, page Page) ([]CoreRelease, error)
}
