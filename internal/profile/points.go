package profile

import "math"

// layerOf returns the altitude layer index for a beam height, or -1 if the
// height falls outside [0, nLayer*hLayer).
func layerOf(height, hLayer float64, nLayer int) int {
	if height < 0 {
		return -1
	}
	l := int(height / hLayer)
	if l >= nLayer {
		return -1
	}
	return l
}

func beamHeight(rng, elevationDeg, radarHeight float64) float64 {
	return rng*math.Sin(elevationDeg*math.Pi/180) + radarHeight
}

func includesRange(rng, rangeMin, rangeMax float64) bool {
	return rng >= rangeMin && rng <= rangeMax
}

// SizeLayers computes each layer's gate capacity across a whole volume by
// iterating scans and range bins with the same range/height inclusion test
// used by AppendScan, scaled by ray count, so the points table can be
// allocated exactly once.
func SizeLayers(scans []*PolarImage, rangeMin, rangeMax float64, hLayer float64, nLayer int) []int {
	capacity := make([]int, nLayer)
	for _, scan := range scans {
		for iRang := 0; iRang < scan.Bins; iRang++ {
			rng := (float64(iRang) + 0.5) * scan.RangeScale
			if !includesRange(rng, rangeMin, rangeMax) {
				continue
			}
			h := beamHeight(rng, scan.Elevation, scan.RadarHeight)
			l := layerOf(h, hLayer, nLayer)
			if l < 0 {
				continue
			}
			capacity[l] += scan.Rays
		}
	}
	return capacity
}

// AppendScan projects one scan's admitted gates into t. A gate
// contributes iff its along-beam range lies in [rangeMin, rangeMax] and its
// beam height falls within a layer's bounds. Admitted rows receive
// (azimuth, elevation, decoded dBZ, decoded vrad, cell label); the gate
// code column starts cleared, populated later by the classifier.
func AppendScan(t *PointsTable, dBZ, vrad *PolarImage, labels *CellLabelImage, rangeMin, rangeMax, hLayer float64, nLayer int) {
	nAzim, nRang := dBZ.Rays, dBZ.Bins
	for iAzim := 0; iAzim < nAzim; iAzim++ {
		azimuth := float64(iAzim) * dBZ.AzimScale
		for iRang := 0; iRang < nRang; iRang++ {
			rng := (float64(iRang) + 0.5) * dBZ.RangeScale
			if !includesRange(rng, rangeMin, rangeMax) {
				continue
			}
			h := beamHeight(rng, dBZ.Elevation, dBZ.RadarHeight)
			l := layerOf(h, hLayer, nLayer)
			if l < 0 {
				continue
			}

			dbzValue := dBZ.At(iAzim, iRang)
			vradValue := vrad.At(iAzim, iRang)
			var cellLabel int32 = -1
			if labels != nil {
				cellLabel = labels.At(iAzim, iRang)
			}
			t.Append(l, azimuth, dBZ.Elevation, dbzValue, vradValue, cellLabel)
		}
	}
}
