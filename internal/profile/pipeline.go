package profile

import (
	"errors"
	"fmt"
)

// Hooks carries optional diagnostic callbacks invoked at fixed points of
// Run, never altering control flow. A cmd-layer caller wires these to
// internal/profile/diagnostics when the matching Config Print* toggle is
// set; the engine itself never logs.
type Hooks struct {
	// OnCellProperties, if set, is called once per scan with that scan's
	// analyzed cell properties, before they are discarded (CellProperty's
	// documented lifecycle: created once per scan, discarded when the
	// analyzer exits).
	OnCellProperties func(scanIndex int, props []CellProperty)
	// OnGateCodes, if set, is called once after classification with the
	// fully populated PointsTable.
	OnGateCodes func(t *PointsTable)
}

// paramToImage builds a PolarImage view over one scan parameter, computing
// AzimScale as a full-circle step (360/rays) since Scan does not carry it
// directly.
func paramToImage(scan Scan, p *Parameter) *PolarImage {
	return &PolarImage{
		Rays: scan.Rays(), Bins: scan.Bins(),
		RangeScale:  scan.RangeScale(),
		AzimScale:   360.0 / float64(scan.Rays()),
		Elevation:   scan.Elevation(),
		RadarHeight: scan.RadarHeight(),
		Offset:      p.Offset, Scale: p.Scale, Missing: p.Missing,
		Data: p.Raw,
	}
}

func decodeScan(scan Scan) (dBZ, vrad *PolarImage, err error) {
	dbzParam, ok := scan.Parameter("DBZH")
	if !ok {
		return nil, nil, fmt.Errorf("%w: scan has no DBZH parameter", ErrMissingParameter)
	}
	vradParam, ok := scan.Parameter("VRAD")
	if !ok {
		return nil, nil, fmt.Errorf("%w: scan has no VRAD parameter", ErrMissingParameter)
	}
	return paramToImage(scan, dbzParam), paramToImage(scan, vradParam), nil
}

// Run drives the whole pipeline over a decoded volume: for every
// scan, texture -> cell finder -> cell analyzer/fringe -> points assembler;
// once every scan is merged into the points table, the gate classifier
// assigns codes and the profile engine generates all three variants.
//
// Degenerate inputs (no scans, a scan missing DBZH or VRAD) fail with a
// distinct error kind rather than silently producing NaN profiles.
// A per-layer PointsTable overflow (a programming error, since the sizing
// pass uses the same inclusion test as the append pass) is recovered here
// and returned as ErrIndexOverflow rather than crashing the caller.
func (e *Engine) Run(volume Volume, hooks Hooks) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(error); ok && errors.Is(perr, ErrIndexOverflow) {
				err = perr
				return
			}
			panic(r)
		}
	}()

	scans := volume.Scans()
	if len(scans) == 0 {
		return nil, fmt.Errorf("%w: volume has no scans", ErrConfigInvalid)
	}

	dBZImages := make([]*PolarImage, len(scans))
	vradImages := make([]*PolarImage, len(scans))
	for i, scan := range scans {
		dBZ, vrad, derr := decodeScan(scan)
		if derr != nil {
			return nil, fmt.Errorf("scan %d: %w", i, derr)
		}
		dBZImages[i] = dBZ
		vradImages[i] = vrad
	}

	capacity := SizeLayers(dBZImages, e.Params.RangeMin, e.Params.RangeMax, e.Params.HLayer, e.Params.NLayer)
	table := NewPointsTable(capacity)

	for i := range scans {
		dBZ, vrad := dBZImages[i], vradImages[i]

		tex, terr := Texture(vrad, dBZ, NTexBinAzim, NTexBinRang, NTexMin)
		if terr != nil {
			return nil, fmt.Errorf("scan %d: %w", i, terr)
		}

		// Cells may extend past the admitted gate range; the finder looks a
		// fringe distance beyond rangeMax so gates near the boundary still see
		// the cell they belong to. The labelling threshold is DBZMin: any
		// contiguous echo is a candidate cell, and the analyzer decides which
		// candidates are weather.
		labels, nCells, cerr := FindCells(dBZ, DBZMin, e.Params.RangeMax+FringeDist, Neighbors)
		if cerr != nil {
			if errors.Is(cerr, ErrCellFinderDegenerate) {
				labels = NewCellLabelImage(dBZ.Rays, dBZ.Bins)
				nCells = 0
			} else {
				return nil, fmt.Errorf("scan %d: %w", i, cerr)
			}
		}

		props := AnalyzeCells(dBZ, vrad, tex, nil, labels, nCells,
			VradMin, DBZCell, StdDevCell, ClutPercCell, int(AreaCell),
			e.Params.UseStaticClutterData, DBZClutter)
		if hooks.OnCellProperties != nil {
			hooks.OnCellProperties(i, props)
		}

		nValid := SortAndRenumber(labels, props)
		if nValid > 0 {
			if ferr := FringeCells(labels, dBZ.RangeScale, dBZ.AzimScale, FringeDist); ferr != nil {
				return nil, fmt.Errorf("scan %d: %w", i, ferr)
			}
		}

		AppendScan(table, dBZ, vrad, labels, e.Params.RangeMin, e.Params.RangeMax, e.Params.HLayer, e.Params.NLayer)
	}

	ClassifyGates(table, ClassifyParams{
		DBZMax: DBZMax, VradMin: VradMin,
		AzimMin: e.Params.AzimMin, AzimMax: e.Params.AzimMax,
	})
	if hooks.OnGateCodes != nil {
		hooks.OnGateCodes(table)
	}

	return e.RunProfiles(table)
}
