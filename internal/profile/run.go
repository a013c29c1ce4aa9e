package profile

import (
	"fmt"

	"github.com/google/uuid"
)

// ProfileRun wraps one Engine.RunProfiles result with a stable identity, so
// callers (CLI, sqlite store) can refer to a finished run without keeping
// the whole PointsTable alive.
type ProfileRun struct {
	ID      uuid.UUID
	Config  Config
	Result  *Result
}

// NewProfileRun stamps a fresh run id onto a completed Result.
func NewProfileRun(cfg Config, result *Result) ProfileRun {
	return ProfileRun{ID: uuid.New(), Config: cfg, Result: result}
}

// Rows returns the named variant's rows, or an error if the run has no
// rows for that variant.
func (r ProfileRun) Rows(variant ProfileVariant) ([]ProfileRow, error) {
	rows, ok := r.Result.Rows[variant]
	if !ok {
		return nil, fmt.Errorf("profile: run %s has no rows for variant %d", r.ID, variant)
	}
	return rows, nil
}
