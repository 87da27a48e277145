package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSeedYAML = `teams:
  - slug: porting-crew
    name: Porting Crew
    description: Ports classic systems.
platforms:
  - slug: fpga-board
    name: FPGA Board
    owner_team: porting-crew
systems:
  - slug: nes
    name: Nintendo Entertainment System
    manufacturer: Nintendo
    owner_team: porting-crew
cores:
  - slug: mister-nes
    name: NES Core
    description: Cycle-accurate NES core.
    owner_team: porting-crew
    systems: [nes]
`

func writeTempSeedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeedYAML), 0o644))
	return path
}
