package profile

import "testing"

func TestNewProfileRunStampsID(t *testing.T) {
	result := &Result{Rows: map[ProfileVariant][]ProfileRow{
		VariantAll: {nanRow(0, 200)},
	}}
	run := NewProfileRun(DefaultConfig(), result)
	if run.ID.String() == "" {
		t.Error("expected a non-empty run id")
	}

	run2 := NewProfileRun(DefaultConfig(), result)
	if run.ID == run2.ID {
		t.Error("expected distinct runs to receive distinct ids")
	}
}

func TestProfileRunRowsReturnsVariant(t *testing.T) {
	rows := []ProfileRow{nanRow(0, 200), nanRow(200, 400)}
	result := &Result{Rows: map[ProfileVariant][]ProfileRow{VariantBirdsOnly: rows}}
	run := NewProfileRun(DefaultConfig(), result)

	got, err := run.Rows(VariantBirdsOnly)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 rows, got %d", len(got))
	}
}

func TestProfileRunRowsMissingVariantErrors(t *testing.T) {
	result := &Result{Rows: map[ProfileVariant][]ProfileRow{}}
	run := NewProfileRun(DefaultConfig(), result)
	if _, err := run.Rows(VariantAll); err == nil {
		t.Error("expected an error for a variant with no rows")
	}
}
