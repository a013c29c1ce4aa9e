package svd

import (
	"errors"
	"math"
	"testing"
)

func TestWindBasisProjection(t *testing.T) {
	afunc := make([]float64, 3)
	if err := WindBasis([]float64{90, 0}, afunc); err != nil {
		t.Fatalf("WindBasis: %v", err)
	}
	// azimuth 90deg, elevation 0: sin(90)*cos(0)=1, cos(90)*cos(0)=0, sin(0)=0.
	if math.Abs(afunc[0]-1) > 1e-9 || math.Abs(afunc[1]) > 1e-9 || math.Abs(afunc[2]) > 1e-9 {
		t.Errorf("afunc = %v, want [1 0 0]", afunc)
	}
}

func TestWindBasisRejectsWrongDims(t *testing.T) {
	afunc := make([]float64, 3)
	if err := WindBasis([]float64{1}, afunc); err == nil {
		t.Error("expected an error for a 1-dim sample")
	}
	if err := WindBasis([]float64{1, 2}, make([]float64, 2)); err == nil {
		t.Error("expected an error for a 2-param afunc")
	}
}

// TestLinearFitMinimumPoints: with exactly nPars+1 points (the minimum
// that is not rejected as too few), a noiseless wind sample is recovered to
// within the singular-value accuracy target.
func TestLinearFitMinimumPoints(t *testing.T) {
	const trueU, trueV, trueW = 6.0, -2.0, 1.0
	samples := [][2]float64{
		{0, 10}, {90, 20}, {180, 5}, {270, 15},
	}
	points := make([]float64, 0, len(samples)*2)
	yObs := make([]float64, 0, len(samples))
	for _, s := range samples {
		points = append(points, s[0], s[1])
		afunc := make([]float64, 3)
		if err := WindBasis(s[:], afunc); err != nil {
			t.Fatalf("WindBasis: %v", err)
		}
		yObs = append(yObs, trueU*afunc[0]+trueV*afunc[1]+trueW*afunc[2])
	}

	fit, err := LinearFit(points, 2, yObs, len(samples), 3, WindBasis)
	if err != nil {
		t.Fatalf("LinearFit: %v", err)
	}
	if math.Abs(fit.Params[0]-trueU) > 1e-4 {
		t.Errorf("U = %v, want %v", fit.Params[0], trueU)
	}
	if math.Abs(fit.Params[1]-trueV) > 1e-4 {
		t.Errorf("V = %v, want %v", fit.Params[1], trueV)
	}
	if math.Abs(fit.Params[2]-trueW) > 1e-4 {
		t.Errorf("W = %v, want %v", fit.Params[2], trueW)
	}
	if len(fit.YFit) != len(samples) {
		t.Errorf("YFit length = %d, want %d", len(fit.YFit), len(samples))
	}
}

func TestLinearFitTooFewPointsErrors(t *testing.T) {
	points := []float64{0, 10, 90, 20, 180, 5}
	yObs := []float64{1, 2, 3}
	_, err := LinearFit(points, 2, yObs, 3, 3, WindBasis)
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
}

func TestLinearFitTooManyParamsErrors(t *testing.T) {
	points := make([]float64, 40)
	yObs := make([]float64, 20)
	_, err := LinearFit(points, 2, yObs, 20, NParsFittedMax+1, WindBasis)
	if !errors.Is(err, ErrTooManyParams) {
		t.Errorf("expected ErrTooManyParams, got %v", err)
	}
}

func TestLinearFitChiSquareZeroForExactFit(t *testing.T) {
	const trueU, trueV, trueW = 3.0, 3.0, 3.0
	var points, yObs []float64
	for az := 0.0; az < 360; az += 30 {
		afunc := make([]float64, 3)
		sample := []float64{az, 10}
		if err := WindBasis(sample, afunc); err != nil {
			t.Fatalf("WindBasis: %v", err)
		}
		points = append(points, sample...)
		yObs = append(yObs, trueU*afunc[0]+trueV*afunc[1]+trueW*afunc[2])
	}
	fit, err := LinearFit(points, 2, yObs, len(yObs), 3, WindBasis)
	if err != nil {
		t.Fatalf("LinearFit: %v", err)
	}
	if fit.ChiSq > 1e-6 {
		t.Errorf("ChiSq = %v, want ~0 for a noiseless exact fit", fit.ChiSq)
	}
}
