package profile

import (
	"math"
	"sort"
)

// AnalyzeCells accumulates per-cell statistics over a labelled dBZ/vrad/
// texture image triple. useStaticClutterData additionally
// treats clutter-map gates exceeding clutterValueMin as clutter; clutter
// may be nil when disabled.
func AnalyzeCells(dBZ, vrad, tex, clutter *PolarImage, labels *CellLabelImage, nCells int,
	vradMin, cellDbzMin, cellStdDevMax, cellClutterFractionMax float64, nGatesCellMin int,
	useStaticClutterData bool, clutterValueMin float64) []CellProperty {

	props := make([]CellProperty, nCells)
	for i := range props {
		props[i].MaxDBZ = dBZ.Offset
		props[i].Index = i
	}

	nAzim, nRang := dBZ.Rays, dBZ.Bins
	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			iGlobal := iAzim*nRang + iRang
			cell := labels.Labels[iGlobal]
			if cell < 0 || int(cell) >= nCells {
				continue
			}
			p := &props[cell]
			p.GateCount++

			dbzValue := dBZ.At(iAzim, iRang)
			vradValue := vrad.At(iAzim, iRang)

			if math.Abs(vradValue) < vradMin {
				p.ClutterGateCount++
				continue
			}
			if useStaticClutterData && clutter != nil {
				clutterValue := clutter.At(iAzim, iRang)
				if clutterValue > clutterValueMin {
					p.ClutterGateCount++
					continue
				}
			}

			if dbzValue > p.MaxDBZ {
				p.MaxDBZ = dbzValue
				p.MaxDBZRay = iAzim
				p.MaxDBZBin = iRang
			}
			p.AvgDBZ += dbzValue
			p.AvgTexture += tex.At(iAzim, iRang)
		}
	}

	for i := range props {
		validArea := float64(props[i].GateCount - props[i].ClutterGateCount)
		if validArea > 0 {
			props[i].AvgDBZ /= validArea
			props[i].AvgTexture /= validArea
			props[i].CoeffVar = props[i].AvgTexture / props[i].AvgDBZ
		}
	}

	for i := range props {
		p := &props[i]
		clutterFraction := 0.0
		if p.GateCount > 0 {
			clutterFraction = float64(p.ClutterGateCount) / float64(p.GateCount)
		}
		if p.GateCount < nGatesCellMin ||
			(p.AvgDBZ < cellDbzMin && p.AvgTexture > cellStdDevMax && clutterFraction < cellClutterFractionMax) {
			p.Dropped = true
			p.GateCount = 0
		}
	}

	return props
}

// effectiveArea is the cell-area sort key: the cell's gate count, or zero
// if dropped.
func effectiveArea(p CellProperty) int {
	if p.Dropped {
		return 0
	}
	return p.GateCount
}

// SortAndRenumber stably sorts cellProps by descending effective area,
// relabels labels in place to a 0-based contiguous range for surviving
// cells and -1 for dropped ones, and returns the valid-cell count.
func SortAndRenumber(labels *CellLabelImage, props []CellProperty) int {
	sorted := make([]CellProperty, len(props))
	copy(sorted, props)
	sort.SliceStable(sorted, func(i, j int) bool {
		return effectiveArea(sorted[i]) > effectiveArea(sorted[j])
	})

	nValid := len(sorted)
	for nValid > 0 && effectiveArea(sorted[nValid-1]) == 0 {
		nValid--
	}

	newIndex := make(map[int]int32, len(sorted))
	for newID, p := range sorted {
		if newID < nValid {
			newIndex[p.Index] = int32(newID)
		} else {
			newIndex[p.Index] = -1
		}
	}

	for i, old := range labels.Labels {
		if old < 0 {
			continue
		}
		labels.Labels[i] = newIndex[int(old)]
	}

	return nValid
}

// FringeCells grows fringe outward by fringeDist metres around cell gates.
// Only gates labelled >= 2 are grown from: such a gate is on the edge if
// any of its 8 neighbors is labelled <= 1, and every in-window neighbor
// currently labelled <= 0 and within fringeDist is relabelled to 0
// (fringe). Because SortAndRenumber numbers surviving cells from 0, the
// cells renumbered 0 and 1 (the two largest) grow no fringe.
//
// Labelling new fringe gates as 0 matches the data model's own sentinel
// convention (-1 no cell, 0 fringe, positive cell id); because renumbering
// also assigns 0 to the largest surviving cell, cell 0's gates and fringe
// gates are not distinguishable from the label value alone, and
// ClassifyGates reads labels 1 and 2 as clutter and fringe. This mismatch
// is inherent to the documented convention and is carried forward
// unresolved rather than silently patched.
func FringeCells(labels *CellLabelImage, rScale, aScale, fringeDist float64) error {
	nAzim, nRang := labels.Rays, labels.Bins
	rBlock := int(math.Round(fringeDist / rScale))

	snapshot := make([]int32, len(labels.Labels))
	copy(snapshot, labels.Labels)

	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			iGlobal := iAzim*nRang + iRang
			if snapshot[iGlobal] <= 1 {
				continue
			}

			isEdge := false
			for k := 0; k < 9 && !isEdge; k++ {
				iLocal, outOfRange, err := nearbyIndex(nAzim, nRang, iGlobal, 3, 3, k)
				if err != nil {
					return err
				}
				if outOfRange {
					continue
				}
				if snapshot[iLocal] <= 1 {
					isEdge = true
				}
			}
			if !isEdge {
				continue
			}

			// The widest angle the fringe circle subtends at the radar is
			// asin(fringeDist/range), not the arc-length ratio
			// fringeDist/circumference: a neighbor at a nearer or farther
			// bin can sit within fringeDist at a larger azimuth offset than
			// the same-range arc suggests. The source radius matches the one
			// the distance check below uses.
			actualRange := float64(iRang) * rScale
			halfAngle := math.Pi
			if actualRange > fringeDist {
				halfAngle = math.Asin(fringeDist / actualRange)
			}
			aBlock := int(math.Ceil(halfAngle / (2 * math.Pi) * float64(nAzim)))
			if aBlock > nAzim/2 {
				aBlock = nAzim / 2
			}

			nAzimChild := 2*aBlock + 1
			nRangChild := 2*rBlock + 1
			nNeighborhood := nAzimChild * nRangChild

			for k := 0; k < nNeighborhood; k++ {
				iLocal, outOfRange, err := nearbyIndex(nAzim, nRang, iGlobal, nAzimChild, nRangChild, k)
				if err != nil {
					return err
				}
				if outOfRange {
					continue
				}
				iAzimLocal := iLocal / nRang
				iRangLocal := iLocal % nRang

				dist := greatCircleDistance(iRang, iAzim, iRangLocal, iAzimLocal, rScale, aScale)
				if dist > fringeDist || labels.Labels[iLocal] >= 1 {
					continue
				}
				labels.Labels[iLocal] = 0
			}
		}
	}

	return nil
}
