package profile

import "testing"

func TestLayerOfBounds(t *testing.T) {
	cases := []struct {
		height float64
		want   int
	}{
		{-1, -1},
		{0, 0},
		{199, 0},
		{200, 1},
		{5999, 29},
		{6000, -1},
	}
	for _, c := range cases {
		got := layerOf(c.height, 200, 30)
		if got != c.want {
			t.Errorf("layerOf(%v) = %d, want %d", c.height, got, c.want)
		}
	}
}

func TestBeamHeightZeroElevation(t *testing.T) {
	h := beamHeight(10000, 0, 50)
	if h != 50 {
		t.Errorf("beamHeight = %v, want 50", h)
	}
}

func TestIncludesRangeBounds(t *testing.T) {
	if !includesRange(5000, 5000, 25000) {
		t.Error("lower bound should be inclusive")
	}
	if !includesRange(25000, 5000, 25000) {
		t.Error("upper bound should be inclusive")
	}
	if includesRange(4999, 5000, 25000) {
		t.Error("below range should be excluded")
	}
	if includesRange(25001, 5000, 25000) {
		t.Error("above range should be excluded")
	}
}

func makeTestScan(rays, bins int, elevation, radarHeight, rangeScale float64) (dBZ, vrad *PolarImage) {
	dBZ = &PolarImage{
		Rays: rays, Bins: bins, RangeScale: rangeScale, AzimScale: 360.0 / float64(rays),
		Elevation: elevation, RadarHeight: radarHeight,
		Offset: -20, Scale: 0.5, Missing: 255, Data: make([]byte, rays*bins),
	}
	vrad = &PolarImage{
		Rays: rays, Bins: bins, RangeScale: rangeScale, AzimScale: 360.0 / float64(rays),
		Elevation: elevation, RadarHeight: radarHeight,
		Offset: -20, Scale: 0.2, Missing: 255, Data: make([]byte, rays*bins),
	}
	b, _ := EncodeByte(10, dBZ.Offset, dBZ.Scale)
	for i := range dBZ.Data {
		dBZ.Data[i] = b
	}
	v, _ := EncodeByte(2, vrad.Offset, vrad.Scale)
	for i := range vrad.Data {
		vrad.Data[i] = v
	}
	return dBZ, vrad
}

func TestSizeLayersMatchesAppendScanCounts(t *testing.T) {
	const rays, bins = 36, 50
	dBZ, vrad := makeTestScan(rays, bins, 5, 0, 500)

	capacity := SizeLayers([]*PolarImage{dBZ}, 5000, 25000, 200, 30)

	table := NewPointsTable(capacity)
	AppendScan(table, dBZ, vrad, nil, 5000, 25000, 200, 30)

	for l := range capacity {
		if table.Written[l] > capacity[l] {
			t.Fatalf("layer %d: written %d exceeds capacity %d", l, table.Written[l], capacity[l])
		}
	}

	total := 0
	for _, w := range table.Written {
		total += w
	}
	if total == 0 {
		t.Fatal("expected at least one admitted gate")
	}
}

func TestAppendScanOverflowPanics(t *testing.T) {
	table := NewPointsTable([]int{1})
	table.Append(0, 0, 5, 10, 2, -1)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on index overflow")
		}
	}()
	table.Append(0, 0, 5, 10, 2, -1)
}

func TestAppendScanRowsStayWithinLayerWindow(t *testing.T) {
	const rays, bins = 8, 10
	dBZ, vrad := makeTestScan(rays, bins, 5, 0, 500)
	capacity := SizeLayers([]*PolarImage{dBZ}, 5000, 25000, 200, 30)
	table := NewPointsTable(capacity)
	AppendScan(table, dBZ, vrad, nil, 5000, 25000, 200, 30)

	for l := range capacity {
		from, to := table.From[l], table.To[l]
		for idx := from; idx < from+table.Written[l]; idx++ {
			if idx < from || idx >= to {
				t.Errorf("row %d outside layer %d window [%d,%d)", idx, l, from, to)
			}
		}
	}
}
