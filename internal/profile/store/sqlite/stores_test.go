package sqlite

import (
	"database/sql"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/birdprofile/internal/profile"
)

func openTestDB(t *testing.T) *RunStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRunStore(db)
}

func sampleRun() profile.ProfileRun {
	cfg := profile.DefaultConfig()
	result := &profile.Result{Rows: map[profile.ProfileVariant][]profile.ProfileRow{
		profile.VariantAll: {
			{
				AltMin: 0, AltMax: 200,
				U: 4.5, V: -2.25, W: 0.1,
				HSpeed: 5.03, HDir: 116.6, Chi: 1.2,
				HasGap: 0, DBZAvg: 12.5, NPointsIncluded: 42,
				ReflectivityEta: 3.1e-9, BirdDensity: math.NaN(),
			},
			{
				AltMin: 200, AltMax: 400,
				U: math.NaN(), V: math.NaN(), W: math.NaN(),
				HSpeed: math.NaN(), HDir: math.NaN(), Chi: math.NaN(),
				HasGap: 1, DBZAvg: math.NaN(), NPointsIncluded: 0,
				ReflectivityEta: math.NaN(), BirdDensity: math.NaN(),
			},
		},
	}}
	return profile.NewProfileRun(cfg, result)
}

func TestInsertAndLoadRoundTrips(t *testing.T) {
	store := openTestDB(t)
	run := sampleRun()

	require.NoError(t, store.Insert(run))

	got, err := store.Load(run.ID.String())
	require.NoError(t, err)

	rows, ok := got.Rows[profile.VariantAll]
	require.True(t, ok, "expected rows for VariantAll")
	require.Len(t, rows, 2)

	want := run.Result.Rows[profile.VariantAll]
	if diff := cmp.Diff(want, rows, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("round-tripped rows differ from what was inserted (-want +got):\n%s", diff)
	}
}

func TestListRunIDsReturnsInsertedRuns(t *testing.T) {
	store := openTestDB(t)
	run1 := sampleRun()
	run2 := sampleRun()

	if err := store.Insert(run1); err != nil {
		t.Fatalf("Insert run1: %v", err)
	}
	if err := store.Insert(run2); err != nil {
		t.Fatalf("Insert run2: %v", err)
	}

	ids, err := store.ListRunIDs()
	if err != nil {
		t.Fatalf("ListRunIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 run ids, got %d", len(ids))
	}
	want := map[string]bool{run1.ID.String(): true, run2.ID.String(): true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected run id %q", id)
		}
	}
}

func TestLoadUnknownRunReturnsEmptyResult(t *testing.T) {
	store := openTestDB(t)
	result, err := store.Load("does-not-exist")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(result.Rows) != 0 {
		t.Errorf("expected no rows for an unknown run id, got %+v", result.Rows)
	}
}

func TestNullFloatAndOrNaNHelpers(t *testing.T) {
	if nullFloat(math.NaN()) != nil {
		t.Error("nullFloat(NaN) should be nil")
	}
	if v := nullFloat(3.5); v != 3.5 {
		t.Errorf("nullFloat(3.5) = %v, want 3.5", v)
	}
	if v := orNaN(sql.NullFloat64{}); !math.IsNaN(v) {
		t.Errorf("orNaN(invalid) = %v, want NaN", v)
	}
	if v := orNaN(sql.NullFloat64{Float64: 3.5, Valid: true}); v != 3.5 {
		t.Errorf("orNaN(3.5) = %v, want 3.5", v)
	}
}

func TestBoolToInt(t *testing.T) {
	if boolToInt(true) != 1 {
		t.Error("boolToInt(true) should be 1")
	}
	if boolToInt(false) != 0 {
		t.Error("boolToInt(false) should be 0")
	}
}
