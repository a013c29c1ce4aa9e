package profile

// FindCells labels connected components of dBZ >= dbzThreshold on img using
// 3x3 (horizontal, vertical, diagonal) connectivity, with merge-on-conflict
// rewriting and a final azimuth-seam stitch. Bins whose along-beam
// range exceeds rCellMax are never considered. Returns the number of
// distinct identifiers assigned, which may include holes the analyzer
// removes. Returns ErrCellFinderDegenerate if dbzThreshold encodes to the
// image's missing sentinel.
func FindCells(img *PolarImage, dbzThreshold float64, rCellMax float64, nNeighborsMin int) (*CellLabelImage, int, error) {
	thresholdByte, ok := EncodeByte(dbzThreshold, img.Offset, img.Scale)
	if !ok {
		// A threshold outside the image's encodable range clamps to the
		// nearest representable byte: a threshold below the encoding floor
		// admits every echo, one above the ceiling admits none.
		if (dbzThreshold-img.Offset)/img.Scale < 0 {
			thresholdByte = 0
		} else {
			thresholdByte = 255
		}
	}
	if thresholdByte == img.Missing {
		return nil, 0, ErrCellFinderDegenerate
	}

	nAzim, nRang := img.Rays, img.Bins
	labels := NewCellLabelImage(nAzim, nRang)

	const nAzimNeighborhood, nRangNeighborhood = 3, 3
	nNeighborhood := nAzimNeighborhood * nRangNeighborhood
	nHalfNeighborhood := (nNeighborhood - 1) / 2

	nextID := int32(0)

	for iAzim := 0; iAzim < nAzim; iAzim++ {
		for iRang := 0; iRang < nRang; iRang++ {
			iGlobal := iAzim*nRang + iRang

			if float64(iRang+1)*img.RangeScale > rCellMax {
				continue
			}
			if img.Data[iGlobal] == img.Missing {
				continue
			}
			if img.Data[iGlobal] < thresholdByte {
				continue
			}

			count := 0
			for k := 0; k < nNeighborhood; k++ {
				iLocal, outOfRange, err := nearbyIndex(nAzim, nRang, iGlobal, nAzimNeighborhood, nRangNeighborhood, k)
				if err != nil {
					return nil, 0, err
				}
				if outOfRange {
					continue
				}
				if img.Data[iLocal] > thresholdByte {
					count++
				}
			}
			if count-1 < nNeighborsMin {
				continue
			}

			for k := 0; k < nHalfNeighborhood; k++ {
				iLocal, outOfRange, err := nearbyIndex(nAzim, nRang, iGlobal, nAzimNeighborhood, nRangNeighborhood, k)
				if err != nil {
					return nil, 0, err
				}
				if outOfRange {
					continue
				}
				if labels.Labels[iLocal] == -1 {
					continue
				}
				if labels.Labels[iGlobal] == -1 {
					labels.Labels[iGlobal] = labels.Labels[iLocal]
				} else if labels.Labels[iGlobal] != labels.Labels[iLocal] {
					stale := labels.Labels[iGlobal]
					fresh := labels.Labels[iLocal]
					for i := range labels.Labels {
						if labels.Labels[i] == stale {
							labels.Labels[i] = fresh
						}
					}
				}
			}

			if labels.Labels[iGlobal] == -1 {
				labels.Labels[iGlobal] = nextID
				nextID++
			}
		}
	}

	// Stitch the azimuth seam: ray 0 is adjacent to ray nAzim-1.
	for iRang := 0; iRang < nRang; iRang++ {
		iGlobal := iRang
		iOther, outOfRange, err := nearbyIndex(nAzim, nRang, iGlobal, 3, 3, 1)
		if err != nil {
			return nil, 0, err
		}
		if outOfRange {
			continue
		}
		a, b := labels.Labels[iGlobal], labels.Labels[iOther]
		if a != -1 && b != -1 && a != b {
			for i := range labels.Labels {
				if labels.Labels[i] == b {
					labels.Labels[i] = a
				}
			}
		}
	}

	return labels, int(nextID), nil
}
