package profile

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Texture computes, for every gate of a co-registered (vrad, dBZ) scan
// pair, the local standard deviation of vrad over an nAzNbh x nRaNbh
// neighborhood (both odd), enumerated via nearbyIndex. Neighbors with missing
// vrad or dBZ, or that fall off the range axis, are skipped. Gates with
// fewer than nCountMin valid neighbors encode as the missing sentinel.
func Texture(vrad, dBZ *PolarImage, nAzNbh, nRaNbh, nCountMin int) (*PolarImage, error) {
	if vrad.Rays != dBZ.Rays || vrad.Bins != dBZ.Bins {
		return nil, fmt.Errorf("%w: vrad and dBZ images have mismatched geometry", ErrConfigInvalid)
	}

	tex := &PolarImage{
		Rays: vrad.Rays, Bins: vrad.Bins,
		RangeScale: vrad.RangeScale, AzimScale: vrad.AzimScale,
		Elevation: vrad.Elevation, RadarHeight: vrad.RadarHeight,
		// The texture image shares vrad's missing marker and scale but uses a
		// zero offset, since it encodes a non-negative standard deviation,
		// not velocity.
		Offset: 0, Scale: vrad.Scale, Missing: vrad.Missing,
		Data: make([]byte, vrad.Rays*vrad.Bins),
	}

	nAzim, nRang := vrad.Rays, vrad.Bins
	nNeighborhood := nAzNbh * nRaNbh
	diffs := make([]float64, 0, nNeighborhood)

	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			iGlobal := iAzim*nRang + iRang

			centerByte := vrad.Data[iGlobal]
			if centerByte == vrad.Missing {
				tex.Data[iGlobal] = tex.Missing
				continue
			}
			centerVal := vrad.Scale*float64(centerByte) + vrad.Offset

			diffs = diffs[:0]
			count := 0
			for k := 0; k < nNeighborhood; k++ {
				iLocal, outOfRange, err := nearbyIndex(nAzim, nRang, iGlobal, nAzNbh, nRaNbh, k)
				if err != nil {
					return nil, err
				}
				if outOfRange {
					continue
				}
				if vrad.Data[iLocal] == vrad.Missing || dBZ.Data[iLocal] == dBZ.Missing {
					continue
				}
				neighborVal := vrad.Scale*float64(vrad.Data[iLocal]) + vrad.Offset
				diffs = append(diffs, centerVal-neighborVal)
				count++
			}

			if count < nCountMin {
				tex.Data[iGlobal] = tex.Missing
				continue
			}

			m1 := stat.Mean(diffs, nil)
			sumSq := 0.0
			for _, d := range diffs {
				sumSq += d * d
			}
			m2 := sumSq / float64(count)
			t := math.Sqrt(math.Abs(m2 - m1*m1))

			b, ok := EncodeByte(t, tex.Offset, tex.Scale)
			if !ok {
				return nil, fmt.Errorf("%w: texture value %v at gate %d out of byte range", ErrRangeEncoding, t, iGlobal)
			}
			tex.Data[iGlobal] = b
		}
	}

	return tex, nil
}
