package profile

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/birdprofile/internal/profile/svd"
)

// excludeMask returns the bit mask of GateCode positions that exclude a
// gate under the given variant: bits 0,3,5,7,8
// always exclude; bit 1 (dynamicClutter) and bit 4 (dBZTooHigh) and bit 6
// (vradOutlier) are admissible from variant 2 onward; bit 2
// (clutterFringe) is admissible only in variant 3.
func excludeMask(v ProfileVariant) GateCode {
	mask := BitStaticClutter | BitVradMissing | BitVradTooLow | BitAzimuthTooLow | BitAzimuthTooHigh
	switch v {
	case VariantBirdsOnly:
		mask |= BitDynamicClutter | BitDynamicClutterFringe | BitDBZTooHigh | BitVradOutlier
	case VariantBirdsAndWeather:
		mask |= BitDynamicClutterFringe
	case VariantAll:
		// bits 1, 2, 4, 6 all admissible.
	}
	return mask
}

func includeGate(v ProfileVariant, code GateCode) bool {
	return code&excludeMask(v) == 0
}

// hasAzimuthGap bins azimuths into nBinsGap equal sectors and reports
// whether any two cyclically adjacent sectors both fall below nObsGapMin
// observations.
func hasAzimuthGap(azimuths []float64, nBinsGap, nObsGapMin int) bool {
	counts := make([]int, nBinsGap)
	for _, az := range azimuths {
		bin := int(math.Floor(az/360.0*float64(nBinsGap))) % nBinsGap
		if bin < 0 {
			bin += nBinsGap
		}
		counts[bin]++
	}
	for i := 0; i < nBinsGap; i++ {
		next := (i + 1) % nBinsGap
		if counts[i] < nObsGapMin && counts[next] < nObsGapMin {
			return true
		}
	}
	return false
}

// Engine drives the profile computation over a pre-populated, classified
// PointsTable.
type Engine struct {
	Params EngineParams
}

// NewEngine constructs an Engine from validated parameters.
func NewEngine(p EngineParams) *Engine {
	return &Engine{Params: p}
}

// Result holds one profile table per variant.
type Result struct {
	Rows map[ProfileVariant][]ProfileRow
}

// RunProfiles computes the three profile variants, in reverse order
// (3 -> 2 -> 1), reusing the SVD-backed linear fit for each layer. t is
// mutated: bit 6 (vradOutlier) is cleared and re-set per variant and pass.
func (e *Engine) RunProfiles(t *PointsTable) (*Result, error) {
	nLayer := e.Params.NLayer
	scatterersAreNotBirds := make([]bool, nLayer)
	result := &Result{Rows: make(map[ProfileVariant][]ProfileRow, 3)}

	variants := []ProfileVariant{VariantAll, VariantBirdsAndWeather, VariantBirdsOnly}
	for _, variant := range variants {
		for i := range t.Code {
			t.Code[i] &^= BitVradOutlier
		}

		rows := make([]ProfileRow, nLayer)
		for layer := 0; layer < nLayer; layer++ {
			altMin := float64(layer) * e.Params.HLayer
			altMax := float64(layer+1) * e.Params.HLayer
			row, err := e.runLayer(t, layer, variant, altMin, altMax)
			if err != nil {
				return nil, err
			}
			rows[layer] = row

			if variant == VariantAll {
				scatterersAreNotBirds[layer] = row.Chi < StdDevBird
			}
		}
		result.Rows[variant] = rows

		if variant == VariantBirdsOnly {
			for layer := range rows {
				if scatterersAreNotBirds[layer] {
					rows[layer].BirdDensity = math.NaN()
				}
			}
		}
	}

	return result, nil
}

// runLayer performs one or two passes over a layer's window (two only if
// FitVrad is enabled). Each pass rebuilds the row from scratch; a pass
// that aborts (too few admitted points for the design matrix, a
// non-convergent decomposition, or chi-square under ChisqMin) leaves a
// NaN row with only the altitude bounds set, and the layer's final row is
// whatever the last pass produced. A layer with nPointsIncluded at or
// under NPointsIncludedMin never fits; its row keeps NaN wind fields
// alongside the observed gap flag and point count.
func (e *Engine) runLayer(t *PointsTable, layer int, variant ProfileVariant, altMin, altMax float64) (ProfileRow, error) {
	committed := nanRow(altMin, altMax)

	from := t.From[layer]
	nPasses := 1
	if e.Params.FitVrad {
		nPasses = 2
	}

	for pass := 0; pass < nPasses; pass++ {
		var (
			points     []float64 // flattened (azimuth, elevation) pairs
			azimuths   []float64
			yObs       []float64
			includedAt []int
			undbzSum   float64
		)

		limit := from + t.Written[layer]
		for idx := from; idx < limit; idx++ {
			if !includeGate(variant, t.Code[idx]) {
				continue
			}
			points = append(points, t.Azimuth[idx], t.Elevation[idx])
			azimuths = append(azimuths, t.Azimuth[idx])
			yObs = append(yObs, t.Vrad[idx])
			includedAt = append(includedAt, idx)
			undbzSum += math.Pow(10, t.DBZ[idx]/10)
		}
		nPointsIncluded := len(yObs)

		undbzAvg, dBZAvg := math.NaN(), math.NaN()
		if nPointsIncluded > NPointsIncludedMin {
			undbzAvg = undbzSum / float64(nPointsIncluded)
			dBZAvg = 10 * math.Log10(undbzAvg)
		}

		reflectivityEta := e.Params.DBZFactor * undbzAvg
		birdDensity := math.NaN()
		if variant == VariantBirdsOnly {
			birdDensity = reflectivityEta / SigmaBird
		}

		hasGap := true
		if nPointsIncluded > 0 {
			hasGap = hasAzimuthGap(azimuths, NBinsGap, NObsGapMin)
		}

		pending := ProfileRow{
			AltMin: altMin, AltMax: altMax,
			U: math.NaN(), V: math.NaN(), W: math.NaN(),
			HSpeed: math.NaN(), HDir: math.NaN(), Chi: math.NaN(),
			HasGap:          boolToFloat(hasGap),
			DBZAvg:          dBZAvg,
			NPointsIncluded: nPointsIncluded,
			ReflectivityEta: reflectivityEta,
			BirdDensity:     birdDensity,
		}

		var yFit []float64
		aborted := false

		if e.Params.FitVrad {
			if !hasGap && nPointsIncluded > NPointsIncludedMin {
				fit, err := svd.LinearFit(points, 2, yObs, nPointsIncluded, 3, svd.WindBasis)
				switch {
				case errors.Is(err, svd.ErrTooFewPoints):
					// Not enough admitted points to fit this layer/pass;
					// leave the row as NaN for this pass.
					aborted = true
				case errors.Is(err, svd.ErrNonConvergent):
					aborted = true
				case err != nil:
					return ProfileRow{}, fmt.Errorf("profile: layer %d: %w", layer, err)
				case fit.ChiSq < ChisqMin:
					aborted = true
				default:
					pending.U, pending.V, pending.W = fit.Params[0], fit.Params[1], fit.Params[2]
					pending.Chi = math.Sqrt(fit.ChiSq)
					pending.HSpeed = math.Hypot(fit.Params[0], fit.Params[1])
					hDir := math.Atan2(fit.Params[0], fit.Params[1]) * 180 / math.Pi
					if hDir < 0 {
						hDir += 360
					}
					pending.HDir = hDir
					yFit = fit.YFit
				}
			}
			// Outliers are judged against a fitted value, so the marking
			// only runs when a fit actually converged this pass; a gapped
			// or under-populated layer must keep its full selection for the
			// reported averages and point count.
			if yFit != nil {
				for i, idx := range includedAt {
					if math.Abs(yObs[i]-yFit[i]) > VDifMax {
						t.Code[idx] |= BitVradOutlier
					}
				}
			}
		}

		if aborted {
			committed = nanRow(altMin, altMax)
		} else {
			committed = pending
		}
	}

	return committed, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
