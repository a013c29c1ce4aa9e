// Package diagnostics renders optional, non-authoritative views of a
// profile run: a vertical density chart and stderr-equivalent dumps of cell
// properties and gate codes. Nothing here participates in profile
// computation; callers gate it behind Config's Print* toggles.
package diagnostics

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/birdprofile/internal/profile"
)

// PlotVariant renders one variant's bird density against altitude midpoint
// and writes it as a PNG at path.
func PlotVariant(rows []profile.ProfileRow, variant profile.ProfileVariant, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("bird density, variant %d", variant)
	p.X.Label.Text = "density (birds/km^3)"
	p.Y.Label.Text = "altitude (m)"

	pts := make(plotter.XYs, 0, len(rows))
	for _, row := range rows {
		if row.BirdDensity != row.BirdDensity { // NaN
			continue
		}
		mid := (row.AltMin + row.AltMax) / 2
		pts = append(pts, plotter.XY{X: row.BirdDensity, Y: mid})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("diagnostics: build density line: %w", err)
	}
	p.Add(line)

	if err := p.Save(4*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("diagnostics: save plot %s: %w", path, err)
	}
	return nil
}
