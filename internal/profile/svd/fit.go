package svd

import (
	"fmt"
	"math"
)

// NParsFittedMax is the maximum number of fit parameters LinearFit accepts.
const NParsFittedMax = 16

// SVDTol is the fraction of the largest singular value below which a
// singular value is zeroed before back-substitution.
const SVDTol = 1e-5

// ErrTooFewPoints is returned when nPoints <= nPars.
var ErrTooFewPoints = fmt.Errorf("svd: too few points for requested parameters")

// ErrTooManyParams is returned when nPars exceeds NParsFittedMax.
var ErrTooManyParams = fmt.Errorf("svd: too many fit parameters requested")

// BasisFunc evaluates the nPars basis functions of a linear fit model at
// one nDims-dimensional sample, writing them into afunc[0:nPars]. The
// original hard-codes a single three-parameter wind basis; this type makes
// the basis pluggable so callers can fit richer models without touching
// the SVD core.
type BasisFunc func(sample []float64, afunc []float64) error

// WindBasis is the three-parameter linear wind-vector model used by the
// profile engine: a 2-D sample (azimuth alpha, elevation gamma, both in
// degrees) projects to (sin(alpha)*cos(gamma), cos(alpha)*cos(gamma),
// sin(gamma)), the coefficients of which are the wind components (u, v, w).
func WindBasis(sample []float64, afunc []float64) error {
	if len(sample) != 2 {
		return fmt.Errorf("svd: WindBasis expects 2 dims, got %d", len(sample))
	}
	if len(afunc) != 3 {
		return fmt.Errorf("svd: WindBasis expects 3 params, got %d", len(afunc))
	}
	const deg2rad = math.Pi / 180
	alpha := sample[0] * deg2rad
	gamma := sample[1] * deg2rad
	sinAlpha, cosAlpha := math.Sin(alpha), math.Cos(alpha)
	sinGamma, cosGamma := math.Sin(gamma), math.Cos(gamma)
	afunc[0] = sinAlpha * cosGamma
	afunc[1] = cosAlpha * cosGamma
	afunc[2] = sinGamma
	return nil
}

// FitResult holds the outcome of a LinearFit call.
type FitResult struct {
	Params    []float64
	Variances []float64
	YFit      []float64
	ChiSq     float64
}

// LinearFit drives the SVD core to perform a chi-square-minimizing linear
// fit of yObs against a design matrix built from evaluating basis at each
// of the nPoints samples (each of nDims dimensions, flattened row-major
// into points). Singular values below SVDTol*max(W) are treated as zero.
// Variances are computed as the diagonal of V*diag(1/W^2)*V^T.
func LinearFit(points []float64, nDims int, yObs []float64, nPoints int, nPars int, basis BasisFunc) (FitResult, error) {
	if nPars > NParsFittedMax {
		return FitResult{}, ErrTooManyParams
	}
	if nPoints <= nPars {
		return FitResult{}, ErrTooFewPoints
	}

	design := make([]float64, nPoints*nPars)
	afunc := make([]float64, nPars)
	for i := 0; i < nPoints; i++ {
		if err := basis(points[i*nDims:(i+1)*nDims], afunc); err != nil {
			return FitResult{}, err
		}
		copy(design[i*nPars:(i+1)*nPars], afunc)
	}

	w := make([]float64, nPars)
	v := make([]float64, nPars*nPars)
	if err := Decompose(design, nPoints, nPars, w, v); err != nil {
		return FitResult{}, err
	}

	wMax := 0.0
	for _, wj := range w {
		if wj > wMax {
			wMax = wj
		}
	}
	threshold := SVDTol * wMax
	for i, wj := range w {
		if wj < threshold {
			w[i] = 0
		}
	}

	params := make([]float64, nPars)
	BackSubstitute(design, w, v, nPoints, nPars, yObs, params)

	wInvSq := make([]float64, nPars)
	for i, wj := range w {
		if wj != 0 {
			wInvSq[i] = 1 / (wj * wj)
		}
	}
	variances := make([]float64, nPars)
	for j := 0; j < nPars; j++ {
		var sum float64
		for k := 0; k < nPars; k++ {
			vjk := v[k+nPars*j]
			sum += vjk * vjk * wInvSq[k]
		}
		variances[j] = sum
	}

	yFit := make([]float64, nPoints)
	var chiSq float64
	for i := 0; i < nPoints; i++ {
		if err := basis(points[i*nDims:(i+1)*nDims], afunc); err != nil {
			return FitResult{}, err
		}
		var sum float64
		for j := 0; j < nPars; j++ {
			sum += params[j] * afunc[j]
		}
		yFit[i] = sum
		diff := yObs[i] - sum
		chiSq += diff * diff
	}
	chiSq /= float64(nPoints - nPars)

	return FitResult{Params: params, Variances: variances, YFit: yFit, ChiSq: chiSq}, nil
}
