package profile

import "math"

// ClassifyParams bundles the thresholds the gate classifier needs; all are
// drawn from EngineParams / derived constants.
type ClassifyParams struct {
	DBZMax, VradMin float64
	AzimMin, AzimMax float64
}

// ClassifyGates sets bits 0,1,2,3,4,5,7,8 on every row of t. Bit 6
// (vradOutlier) is left untouched here; the profile engine sets it after a
// fit pass.
//
// Bit 1 (dynamicClutter) fires on cell-label == 1 and bit 2
// (dynamicClutterFringe) on cell-label == 2, per the documented bit table,
// even though the fringe/analyzer stages of this package label fringe
// gates 0 and the largest surviving cell 0 as well. This mismatch is
// carried forward unresolved (see FringeCells).
func ClassifyGates(t *PointsTable, p ClassifyParams) {
	for i := range t.Code {
		var code GateCode

		// staticClutter (bit 0) is reserved: the external clutter map is not
		// consulted here; the core admits the always-false case.

		switch t.CellLabel[i] {
		case 1:
			code |= BitDynamicClutter
		case 2:
			code |= BitDynamicClutterFringe
		}

		// A gate whose radial velocity decoded to the missing sentinel has
		// reflectivity but no usable velocity; it must never reach the fit.
		if t.Vrad[i] == MissingValue {
			code |= BitVradMissing
		}

		if t.DBZ[i] > p.DBZMax {
			code |= BitDBZTooHigh
		}
		if math.Abs(t.Vrad[i]) < p.VradMin {
			code |= BitVradTooLow
		}
		// azimMin > azimMax is treated as two independent, non-wrapping
		// comparisons; if azimMin > azimMax every gate fails on one side.
		if t.Azimuth[i] < p.AzimMin {
			code |= BitAzimuthTooLow
		}
		if t.Azimuth[i] > p.AzimMax {
			code |= BitAzimuthTooHigh
		}

		t.Code[i] |= code
	}
}
