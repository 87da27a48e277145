package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/retrodex-labs/retrodex/pkg/core"
)

const seedYAML = `teams:
  - slug: mister-devel
    name: MiSTer Devel
    description: MiSTer core maintainers
platforms:
  - slug: mister
    name: MiSTer FPGA
    owner_team: mister-devel
systems:
  - slug: nes
    name: Nintendo Entertainment System
    manufacturer: Nintendo
    owner_team: mister-devel
  - slug: snes
    name: Super Nintendo
    manufacturer: Nintendo
    owner_team: mister-devel
cores:
  - slug: nes-core
    name: NES Core
    owner_team: mister-devel
    systems: [nes]
  - slug: multi-core
    name: Multi Core
    owner_team: mister-devel
    systems: [nes, snes]
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	return path
}

func TestLoadSeeds(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	result, err := store.LoadSeeds(ctx, writeSeedFile(t, seedYAML))
	if err != nil {
		t.Fatalf("failed to load seeds: %v", err)
	}
	if result.Created != 6 {
		t.Errorf("created = %d, want 6", result.Created)
	}
	if result.Skipped != 0 {
		t.Errorf("skipped = %d, want 0", result.Skipped)
	}

	multi, err := store.GetCoreDetails(ctx, "multi-core")
	if err != nil {
		t.Fatalf("seeded core missing: %v", err)
	}
	if len(multi.Systems) != 2 {
		t.Errorf("multi-core has %d systems, want 2", len(multi.Systems))
	}
	if multi.Owner.Slug != "mister-devel" {
		t.Errorf("multi-core owner = %q, want mister-devel", multi.Owner.Slug)
	}
}

func TestLoadSeedsIsIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	path := writeSeedFile(t, seedYAML)

	if _, err := store.LoadSeeds(ctx, path); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	result, err := store.LoadSeeds(ctx, path)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if result.Created != 0 {
		t.Errorf("second load created = %d, want 0", result.Created)
	}
	if result.Skipped != 6 {
		t.Errorf("second load skipped = %d, want 6", result.Skipped)
	}

	cores, err := store.ListCores(ctx, core.Page{})
	if err != nil {
		t.Fatalf("failed to list cores: %v", err)
	}
	if len(cores) != 2 {
		t.Errorf("cores after reseed = %d, want 2", len(cores))
	}
}

func TestLoadSeedsUnknownReference(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.LoadSeeds(context.Background(), writeSeedFile(t, `cores:
  - slug: lost-core
    name: Lost Core
    owner_team: nobody
`))
	if err == nil {
		t.Fatal("seed referencing an unknown team should fail")
	}
}

func TestLoadSeedsMissingFile(t *testing.T) {
	store := setupTestStore(t)
	if _, err := store.LoadSeeds(context.Background(), filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing seed file should fail")
	}
}
