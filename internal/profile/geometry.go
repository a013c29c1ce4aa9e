package profile

import (
	"fmt"
	"math"
)

// nearbyIndex maps a position in a centered child window (nAzChild x
// nRaChild, both odd) back onto the parent polar image, wrapping azimuth
// modulo nAzParent. iChild is a flat ray*nRaChild+bin index into the child
// window, centered on iParent (a flat ray*nRaParent+bin index into the
// parent). outOfRange is true when the mapped range coordinate falls
// outside [0, nRaParent).
func nearbyIndex(nAzParent, nRaParent, iParent, nAzChild, nRaChild, iChild int) (parentIdx int, outOfRange bool, err error) {
	if nAzChild%2 == 0 || nRaChild%2 == 0 {
		return 0, false, fmt.Errorf("%w: child window dimensions must be odd, got (%d, %d)", ErrConfigInvalid, nAzChild, nRaChild)
	}
	if iChild < 0 || iChild >= nAzChild*nRaChild {
		return 0, false, fmt.Errorf("%w: child index %d outside window of size %d", ErrConfigInvalid, iChild, nAzChild*nRaChild)
	}

	parentRay := iParent / nRaParent
	parentBin := iParent % nRaParent

	childRay := iChild / nRaChild
	childBin := iChild % nRaChild

	dRay := childRay - nAzChild/2
	dBin := childBin - nRaChild/2

	ray := ((parentRay+dRay)%nAzParent + nAzParent) % nAzParent
	bin := parentBin + dBin

	if bin < 0 || bin > nRaParent-1 {
		return 0, true, nil
	}
	return ray*nRaParent + bin, false, nil
}

// greatCircleDistance treats the polar grid as a plane: converts the two
// (range-index, azimuth-index) samples to (range, azimuth) via rScale and
// aScaleDeg, then returns sqrt(r1^2 + r2^2 - 2*r1*r2*cos(deltaAz)).
func greatCircleDistance(iRa1, iAz1, iRa2, iAz2 int, rScale, aScaleDeg float64) float64 {
	r1 := float64(iRa1) * rScale
	r2 := float64(iRa2) * rScale
	az1 := float64(iAz1) * aScaleDeg
	az2 := float64(iAz2) * aScaleDeg
	deltaAz := (az1 - az2) * math.Pi / 180
	return math.Sqrt(r1*r1 + r2*r2 - 2*r1*r2*math.Cos(deltaAz))
}
