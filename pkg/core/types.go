// Package core defines the shared domain types for the Retrodex catalog.
//
// The types here are decoupled from storage and transport concerns so the
// CLI, HTTP server, and store implementations can share them without
// importing each other.
package core

import (
	"encoding/json"
	"strconv"
	"time"
)

// JSON is a raw JSON document column (metadata, links). It round-trips
// through the database as TEXT without interpretation.
type JSON = json.RawMessage

// EmptyJSON is the value stored for absent metadata/links documents.
var EmptyJSON = JSON("{}")

// Team owns cores, systems, and platforms.
type Team struct {
	ID          int32  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Links       JSON   `json:"links"`
	Metadata    JSON   `json:"metadata"`
}

// Platform is a hardware target a core release runs on (e.g. an FPGA board).
type Platform struct {
	ID          int32  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Links       JSON   `json:"links"`
	Metadata    JSON   `json:"metadata"`
	OwnerTeamID int32  `json:"owner_team_id"`
}

// System is the hardware a core implements (e.g. a console or computer).
type System struct {
	ID           int32  `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Manufacturer string `json:"manufacturer"`
	Links        JSON   `json:"links"`
	Metadata     JSON   `json:"metadata"`
	OwnerTeamID  int32  `json:"owner_team_id"`
}

// Core is an emulation core. Its system associations live in the
// core_systems join table; a core can implement any number of systems.
type Core struct {
	ID          int32  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Metadata    JSON   `json:"metadata"`
	Links       JSON   `json:"links"`
	OwnerTeamID int32  `json:"owner_team_id"`
}

// CoreSystem is one core-to-system association.
type CoreSystem struct {
	CoreID   int32 `json:"core_id"`
	SystemID int32 `json:"system_id"`
}

// CoreRelease is a versioned build of a core for a specific platform.
type CoreRelease struct {
	ID           int32     `json:"id"`
	CoreID       int32     `json:"core_id"`
	PlatformID   int32     `json:"platform_id"`
	Version      string    `json:"version"`
	Notes        string    `json:"notes"`
	DateReleased time.Time `json:"date_released"`
	Prerelease   bool      `json:"prerelease"`
	Yanked       bool      `json:"yanked"`
	Links        JSON      `json:"links"`
	Metadata     JSON      `json:"metadata"`
}

// CoreDetails is a core joined with its owning team, associated systems, and
// its most recent release (with that release's platform), as returned by the
// detailed listing.
type CoreDetails struct {
	Core           Core         `json:"core"`
	Owner          Team         `json:"owner"`
	Systems        []System     `json:"systems"`
	LatestRelease  *CoreRelease `json:"latest_release,omitempty"`
	LatestPlatform *Platform    `json:"latest_platform,omitempty"`
}

// IDOrSlug identifies a row by numeric id or by slug.
type IDOrSlug string

// AsID returns the numeric id and true if the value parses as an integer.
func (v IDOrSlug) AsID() (int32, bool) {
	n, err := strconv.ParseInt(string(v), 10, 32)
	if err != nil {
		return 0, false
	}
	return int32(n), true
}

// AsSlug returns the slug form. Numeric values are not slugs.
func (v IDOrSlug) AsSlug() (string, bool) {
	if _, ok := v.AsID(); ok {
		return "", false
	}
	return string(v), true
}

func (v IDOrSlug) String() string { return string(v) }
