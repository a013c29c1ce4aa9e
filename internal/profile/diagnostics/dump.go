package diagnostics

import (
	"log"

	"github.com/banshee-data/birdprofile/internal/profile"
)

// DumpCellProperties logs one line per analyzed cell, gated by the
// PrintCellProperties toggle. Dropped cells are included with their
// dropped flag so a reader can see why a cell vanished from the renumbered
// label image.
func DumpCellProperties(props []profile.CellProperty) {
	for _, p := range props {
		log.Printf("cell idx=%d gates=%d clutterGates=%d avgDBZ=%.2f avgTexture=%.2f coeffVar=%.3f maxDBZ=%.2f dropped=%t",
			p.Index, p.GateCount, p.ClutterGateCount, p.AvgDBZ, p.AvgTexture, p.CoeffVar, p.MaxDBZ, p.Dropped)
	}
}

// DumpGateCodes logs one line per PointsTable row in [from, to), rendering
// its GateCode via its String method, gated by the PrintGateCodes toggle.
func DumpGateCodes(t *profile.PointsTable, from, to int) {
	for i := from; i < to; i++ {
		log.Printf("gate az=%.2f el=%.2f dBZ=%.2f vrad=%.2f cell=%d code=%s",
			t.Azimuth[i], t.Elevation[i], t.DBZ[i], t.Vrad[i], t.CellLabel[i], t.Code[i])
	}
}
