// Package sqlite persists profile.ProfileRun results to a SQLite database,
// migrated with golang-migrate and opened through modernc.org/sqlite (no cgo).
package sqlite

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/banshee-data/birdprofile/internal/profile"

	// Registers the cgo-free "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

const (
	retryMaxAttempts = 5
	retryBaseDelay   = 10 * time.Millisecond
)

// Open opens (creating if absent) a SQLite database at path and brings its
// schema up to the latest migration.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("profile: open %s: %w", path, err)
	}
	if err := MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// RunStore persists ProfileRun records.
type RunStore struct {
	db *sql.DB
}

// NewRunStore wraps an already-migrated database connection.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Insert writes run and every variant's rows inside one transaction,
// retrying on SQLITE_BUSY since writers may overlap with a concurrent reader.
func (s *RunStore) Insert(run profile.ProfileRun) error {
	return retryOnBusy(func() error { return s.insert(run) })
}

func (s *RunStore) insert(run profile.ProfileRun) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("profile: begin insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO profile_runs (
			run_id, h_layer, n_layer, range_min, range_max, azim_min, azim_max,
			wavelength_cm, fit_vrad, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Config.HLayer, run.Config.NLayer,
		run.Config.RangeMin, run.Config.RangeMax, run.Config.AzimMin, run.Config.AzimMax,
		run.Config.RadarWavelengthCM, boolToInt(run.Config.FitVrad), time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("profile: insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO profile_rows (
			run_id, variant, layer, alt_min, alt_max, u, v, w, h_speed, h_dir,
			chi, has_gap, dbz_avg, n_points_included, reflectivity_eta, bird_density
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("profile: prepare row insert: %w", err)
	}
	defer stmt.Close()

	for variant, rows := range run.Result.Rows {
		for layer, row := range rows {
			_, err := stmt.Exec(
				run.ID.String(), int(variant), layer, row.AltMin, row.AltMax,
				nullFloat(row.U), nullFloat(row.V), nullFloat(row.W),
				nullFloat(row.HSpeed), nullFloat(row.HDir), nullFloat(row.Chi),
				row.HasGap, nullFloat(row.DBZAvg), row.NPointsIncluded,
				nullFloat(row.ReflectivityEta), nullFloat(row.BirdDensity),
			)
			if err != nil {
				return fmt.Errorf("profile: insert row (variant %d layer %d): %w", variant, layer, err)
			}
		}
	}

	return tx.Commit()
}

// Load reconstructs a run's rows for every variant present in the database.
func (s *RunStore) Load(runID string) (*profile.Result, error) {
	rows, err := s.db.Query(`
		SELECT variant, layer, alt_min, alt_max, u, v, w, h_speed, h_dir,
		       chi, has_gap, dbz_avg, n_points_included, reflectivity_eta, bird_density
		FROM profile_rows WHERE run_id = ? ORDER BY variant, layer`, runID)
	if err != nil {
		return nil, fmt.Errorf("profile: query rows: %w", err)
	}
	defer rows.Close()

	result := &profile.Result{Rows: make(map[profile.ProfileVariant][]profile.ProfileRow)}
	for rows.Next() {
		var variant, layer int
		var row profile.ProfileRow
		var u, v, w, hSpeed, hDir, chi, dBZAvg, reflEta, birdDensity sql.NullFloat64
		if err := rows.Scan(&variant, &layer, &row.AltMin, &row.AltMax,
			&u, &v, &w, &hSpeed, &hDir, &chi, &row.HasGap, &dBZAvg,
			&row.NPointsIncluded, &reflEta, &birdDensity); err != nil {
			return nil, fmt.Errorf("profile: scan row: %w", err)
		}
		row.U, row.V, row.W = orNaN(u), orNaN(v), orNaN(w)
		row.HSpeed, row.HDir, row.Chi = orNaN(hSpeed), orNaN(hDir), orNaN(chi)
		row.DBZAvg, row.ReflectivityEta, row.BirdDensity = orNaN(dBZAvg), orNaN(reflEta), orNaN(birdDensity)

		pv := profile.ProfileVariant(variant)
		result.Rows[pv] = append(result.Rows[pv], row)
	}
	return result, rows.Err()
}

// ListRunIDs returns every run id, most recently inserted first.
func (s *RunStore) ListRunIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id FROM profile_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("profile: list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("profile: scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func nullFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isSQLiteBusy reports whether err is a transient SQLITE_BUSY/locked error.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "database is locked") || strings.Contains(s, "SQLITE_BUSY")
}

// retryOnBusy retries operation with exponential backoff while it fails with
// SQLITE_BUSY, the usual symptom of SQLite's single-writer limitation.
func retryOnBusy(operation func() error) error {
	var err error
	for attempt := 0; attempt < retryMaxAttempts; attempt++ {
		err = operation()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		if attempt < retryMaxAttempts-1 {
			time.Sleep(retryBaseDelay * (1 << uint(attempt)))
		}
	}
	return err
}
