// Command birdprofile runs the profile engine over a synthetic polar volume
// and writes the resulting profile table as CSV. It exists to exercise
// internal/profile end to end without a radar-file reader, which is
// explicitly out of the core's scope.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/banshee-data/birdprofile/internal/profile"
	"github.com/banshee-data/birdprofile/internal/profile/diagnostics"
	"github.com/banshee-data/birdprofile/internal/profile/store/sqlite"
)

func main() {
	windU := flag.Float64("u", 5.0, "Synthetic wind u component (m/s)")
	windV := flag.Float64("v", -3.0, "Synthetic wind v component (m/s)")
	dbz := flag.Float64("dbz", 10.0, "Uniform synthetic dBZ value")
	elevation := flag.Float64("elev", 5.0, "Scan elevation angle (deg)")
	rays := flag.Int("rays", 360, "Rays per scan")
	bins := flag.Int("bins", 200, "Bins per ray")
	rangeScale := flag.Float64("range-scale", 500.0, "Range-bin width (m)")
	radarHeight := flag.Float64("radar-height", 0.0, "Radar antenna height (m)")

	hLayer := flag.Float64("h-layer", 200.0, "Altitude layer thickness (m)")
	nLayer := flag.Int("n-layer", 30, "Number of altitude layers")
	rangeMin := flag.Float64("range-min", 5000.0, "Minimum admitted gate range (m)")
	rangeMax := flag.Float64("range-max", 25000.0, "Maximum admitted gate range (m)")
	azimMin := flag.Float64("azim-min", 0.0, "Minimum admitted azimuth (deg)")
	azimMax := flag.Float64("azim-max", 360.0, "Maximum admitted azimuth (deg)")
	wavelength := flag.Float64("wavelength-cm", 5.3, "Radar wavelength (cm)")
	fitVrad := flag.Bool("fit-vrad", true, "Enable the linear wind-fit pass")

	variant := flag.Int("variant", 1, "Profile variant to write: 1 (birds only), 2 (birds+weather), 3 (all scatterers)")
	output := flag.String("output", "", "Output CSV path (default: stdout)")
	plotPath := flag.String("plot", "", "If set, render the variant's density-vs-altitude chart to this PNG")
	dbPath := flag.String("db", "", "If set, persist the run to this sqlite database")
	printCells := flag.Bool("print-cells", false, "Log per-scan cell properties")
	printGates := flag.Bool("print-gates", false, "Log the classified points table")

	flag.Parse()

	cfg := profile.DefaultConfig().
		WithLayers(*hLayer, *nLayer).
		WithRange(*rangeMin, *rangeMax).
		WithAzimuth(*azimMin, *azimMax).
		WithFitVrad(*fitVrad)
	cfg.RadarWavelengthCM = *wavelength
	cfg.PrintCellProperties = *printCells
	cfg.PrintGateCodes = *printGates

	params, err := cfg.ToEngineParams()
	if err != nil {
		log.Fatalf("birdprofile: invalid configuration: %v", err)
	}

	log.Printf("birdprofile: building synthetic volume (u=%.2f v=%.2f dbz=%.2f elev=%.1f)", *windU, *windV, *dbz, *elevation)
	volume, err := syntheticVolume(*windU, *windV, *dbz, *elevation, *rays, *bins, *rangeScale, *radarHeight)
	if err != nil {
		log.Fatalf("birdprofile: building synthetic volume: %v", err)
	}

	engine := profile.NewEngine(params)
	hooks := profile.Hooks{}
	if cfg.PrintCellProperties {
		hooks.OnCellProperties = func(scanIndex int, props []profile.CellProperty) {
			log.Printf("birdprofile: scan %d cell properties:", scanIndex)
			diagnostics.DumpCellProperties(props)
		}
	}
	if cfg.PrintGateCodes {
		hooks.OnGateCodes = func(t *profile.PointsTable) {
			diagnostics.DumpGateCodes(t, 0, len(t.Code))
		}
	}

	log.Printf("birdprofile: running pipeline")
	result, err := engine.Run(volume, hooks)
	if err != nil {
		log.Fatalf("birdprofile: run failed: %v", err)
	}

	pv := profile.ProfileVariant(*variant)
	run := profile.NewProfileRun(cfg, result)
	rows, err := run.Rows(pv)
	if err != nil {
		log.Fatalf("birdprofile: %v", err)
	}

	if *dbPath != "" {
		log.Printf("birdprofile: persisting run to %s", *dbPath)
		db, err := sqlite.Open(*dbPath)
		if err != nil {
			log.Fatalf("birdprofile: open sqlite store: %v", err)
		}
		defer db.Close()
		if err := sqlite.NewRunStore(db).Insert(run); err != nil {
			log.Fatalf("birdprofile: persist run: %v", err)
		}
		log.Printf("birdprofile: run id %s", run.ID)
	}

	if *plotPath != "" {
		log.Printf("birdprofile: plotting variant %d to %s", pv, *plotPath)
		if err := diagnostics.PlotVariant(rows, pv, *plotPath); err != nil {
			log.Fatalf("birdprofile: plot: %v", err)
		}
	}

	w := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("birdprofile: create %s: %v", *output, err)
		}
		defer f.Close()
		w = f
	}

	log.Printf("birdprofile: writing %d rows for variant %d", len(rows), pv)
	if err := writeCSV(w, rows); err != nil {
		log.Fatalf("birdprofile: write csv: %v", err)
	}
}

func writeCSV(f *os.File, rows []profile.ProfileRow) error {
	cw := csv.NewWriter(f)
	defer cw.Flush()

	header := []string{
		"altMin", "altMax", "u", "v", "w", "hSpeed", "hDir", "chi",
		"hasGap", "dBZAvg", "nPointsIncluded", "reflectivityEta", "birdDensity",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			formatFloat(row.AltMin), formatFloat(row.AltMax),
			formatFloat(row.U), formatFloat(row.V), formatFloat(row.W),
			formatFloat(row.HSpeed), formatFloat(row.HDir), formatFloat(row.Chi),
			formatFloat(row.HasGap), formatFloat(row.DBZAvg),
			strconv.Itoa(row.NPointsIncluded),
			formatFloat(row.ReflectivityEta), formatFloat(row.BirdDensity),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// syntheticVolume builds a one-scan smoke-test volume:
// uniform dBZ and a vrad field obeying the wind-basis model exactly, so the
// fitted (u, v) can be checked against the inputs.
func syntheticVolume(windU, windV, dbzValue, elevationDeg float64, rays, bins int, rangeScale, radarHeight float64) (profile.Volume, error) {
	const (
		dbzOffset, dbzScale   = -20.0, 0.5
		vradOffset, vradScale = -15.0, 30.0 / 254.0
		missing               = byte(255)
	)

	dbzRaw := make([]byte, rays*bins)
	vradRaw := make([]byte, rays*bins)

	dbzByte, ok := profile.EncodeByte(dbzValue, dbzOffset, dbzScale)
	if !ok {
		return nil, fmt.Errorf("dbz value %v does not fit byte encoding", dbzValue)
	}

	for iAzim := 0; iAzim < rays; iAzim++ {
		azimuthDeg := float64(iAzim) * 360.0 / float64(rays)
		alpha := azimuthDeg * math.Pi / 180
		gamma := elevationDeg * math.Pi / 180
		vradValue := windU*math.Sin(alpha)*math.Cos(gamma) + windV*math.Cos(alpha)*math.Cos(gamma)
		vradByte, ok := profile.EncodeByte(vradValue, vradOffset, vradScale)
		if !ok {
			return nil, fmt.Errorf("vrad value %v does not fit byte encoding", vradValue)
		}
		for iRang := 0; iRang < bins; iRang++ {
			idx := iAzim*bins + iRang
			dbzRaw[idx] = dbzByte
			vradRaw[idx] = vradByte
		}
	}

	scan := &memScan{
		elevation: elevationDeg, rays: rays, bins: bins,
		rangeScale: rangeScale, radarHeight: radarHeight,
		params: map[string]*profile.Parameter{
			"DBZH": {Offset: dbzOffset, Scale: dbzScale, Missing: missing, Raw: dbzRaw},
			"VRAD": {Offset: vradOffset, Scale: vradScale, Missing: missing, Raw: vradRaw},
		},
	}
	return &memVolume{scans: []profile.Scan{scan}}, nil
}

// memScan and memVolume are the minimal in-memory implementations of
// profile.Scan / profile.Volume needed to drive the pipeline without a
// radar-file reader.
type memScan struct {
	elevation, rangeScale, radarHeight float64
	rays, bins                         int
	params                             map[string]*profile.Parameter
}

func (s *memScan) Elevation() float64   { return s.elevation }
func (s *memScan) Rays() int            { return s.rays }
func (s *memScan) Bins() int            { return s.bins }
func (s *memScan) RangeScale() float64  { return s.rangeScale }
func (s *memScan) RadarHeight() float64 { return s.radarHeight }
func (s *memScan) Parameter(name string) (*profile.Parameter, bool) {
	p, ok := s.params[name]
	return p, ok
}

type memVolume struct {
	scans []profile.Scan
}

func (v *memVolume) Scans() []profile.Scan { return v.scans }
