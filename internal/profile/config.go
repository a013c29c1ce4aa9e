package profile

import (
	"fmt"
	"math"
)

// Derived constants. Compiled in but exported so test suites can
// override the package-level vars to exercise alternate thresholds.
var (
	AreaCell                = 4.0
	ChisqMin                = 1e-5
	ClutPercCell            = 0.5
	DBZCell                 = 15.0
	DBZClutter              = -10.0
	DBZMax                  = 20.0
	DBZMin                  = -100.0
	FringeDist              = 5000.0
	NBinsGap                = 8
	NDBZMin                 = 25
	Neighbors               = 5
	NObsGapMin              = 5
	NTexBinAzim             = 3
	NTexBinRang             = 3
	NTexMin                 = 4
	RefractiveIndexOfWater  = 0.964
	SigmaBird               = 11.0
	StdDevCell              = 5.0
	StdDevBird              = 2.0
	VDifMax                 = 10.0
	VradMin                 = 1.0
)

// NPointsIncludedMin is the admitted-point count a layer must exceed before
// its dBZAvg is reported and its wind is fitted. It is initialised from
// NDBZMin when the package loads.
var NPointsIncludedMin = NDBZMin

// SVDTol has the same value as svd.SVDTol, the singular-value threshold
// fraction LinearFit uses to zero small singular values before
// back-substitution; nothing in this package reads it.
const SVDTol = 1e-5

// Config is the caller-facing configuration record. DefaultConfig
// populates every documented default; With* setters mutate a copy for the
// handful of options callers commonly override; Validate checks bounds
// before ToEngineParams converts it to the immutable block the engine uses.
type Config struct {
	// HLayer is the altitude-layer thickness, in metres.
	HLayer float64
	// NLayer is the number of altitude layers in the output profile.
	NLayer int
	// RangeMin and RangeMax bound the admitted along-beam gate range, in metres.
	RangeMin float64
	RangeMax float64
	// AzimMin and AzimMax bound the admitted azimuth, in degrees.
	AzimMin float64
	AzimMax float64
	// RadarWavelengthCM is used to compute the reflectivity factor dBZFactor.
	RadarWavelengthCM float64
	// UseStaticClutterData enables consultation of an external clutter map.
	UseStaticClutterData bool
	// FitVrad enables the linear wind fit pass; when false only one pass runs per layer.
	FitVrad bool

	// PrintCellProperties and PrintGateCodes are diagnostic toggles; when
	// set, internal/profile/diagnostics renders the corresponding dump via
	// log.Printf without altering control flow. PrintImages is carried into
	// EngineParams, but no image dump exists and nothing reads it.
	PrintCellProperties bool
	PrintGateCodes      bool
	PrintImages         bool
}

// DefaultConfig returns the configuration with every documented default populated.
func DefaultConfig() Config {
	return Config{
		HLayer:            200,
		NLayer:            30,
		RangeMin:          5000,
		RangeMax:          25000,
		AzimMin:           0,
		AzimMax:           360,
		RadarWavelengthCM: 5.3,
		UseStaticClutterData: false,
		FitVrad:              true,
	}
}

// WithLayers overrides HLayer and NLayer.
func (c Config) WithLayers(hLayer float64, nLayer int) Config {
	c.HLayer = hLayer
	c.NLayer = nLayer
	return c
}

// WithRange overrides RangeMin and RangeMax.
func (c Config) WithRange(rangeMin, rangeMax float64) Config {
	c.RangeMin = rangeMin
	c.RangeMax = rangeMax
	return c
}

// WithAzimuth overrides AzimMin and AzimMax.
func (c Config) WithAzimuth(azimMin, azimMax float64) Config {
	c.AzimMin = azimMin
	c.AzimMax = azimMax
	return c
}

// WithStaticClutter enables or disables external clutter-map consultation.
func (c Config) WithStaticClutter(enabled bool) Config {
	c.UseStaticClutterData = enabled
	return c
}

// WithFitVrad enables or disables the linear wind fit pass.
func (c Config) WithFitVrad(enabled bool) Config {
	c.FitVrad = enabled
	return c
}

// Validate reports the first out-of-bounds field, wrapping ErrConfigInvalid.
func (c Config) Validate() error {
	if c.HLayer <= 0 {
		return fmt.Errorf("%w: HLayer must be positive, got %v", ErrConfigInvalid, c.HLayer)
	}
	if c.NLayer <= 0 {
		return fmt.Errorf("%w: NLayer must be positive, got %v", ErrConfigInvalid, c.NLayer)
	}
	if c.RangeMin < 0 || c.RangeMax <= c.RangeMin {
		return fmt.Errorf("%w: RangeMin/RangeMax invalid, got [%v, %v]", ErrConfigInvalid, c.RangeMin, c.RangeMax)
	}
	if c.RadarWavelengthCM <= 0 {
		return fmt.Errorf("%w: RadarWavelengthCM must be positive, got %v", ErrConfigInvalid, c.RadarWavelengthCM)
	}
	return nil
}

// EngineParams is the immutable parameter block the engine consumes,
// produced by Config.ToEngineParams once validation has passed.
type EngineParams struct {
	HLayer   float64
	NLayer   int
	RangeMin float64
	RangeMax float64
	AzimMin  float64
	AzimMax  float64

	DBZFactor float64

	UseStaticClutterData bool
	FitVrad              bool

	PrintCellProperties bool
	PrintGateCodes      bool
	PrintImages         bool
}

// ToEngineParams validates c and converts it into the engine's parameter
// block, computing dBZFactor = refracIndex^2 * 1000 * pi^5 / wavelength^4.
func (c Config) ToEngineParams() (EngineParams, error) {
	if err := c.Validate(); err != nil {
		return EngineParams{}, err
	}
	wavelength4 := math.Pow(c.RadarWavelengthCM, 4)
	dBZFactor := RefractiveIndexOfWater * RefractiveIndexOfWater * 1000.0 * math.Pow(math.Pi, 5) / wavelength4
	return EngineParams{
		HLayer: c.HLayer, NLayer: c.NLayer,
		RangeMin: c.RangeMin, RangeMax: c.RangeMax,
		AzimMin: c.AzimMin, AzimMax: c.AzimMax,
		DBZFactor:            dBZFactor,
		UseStaticClutterData: c.UseStaticClutterData,
		FitVrad:              c.FitVrad,
		PrintCellProperties:  c.PrintCellProperties,
		PrintGateCodes:       c.PrintGateCodes,
		PrintImages:          c.PrintImages,
	}, nil
}
