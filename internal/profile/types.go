package profile

import "math"

// MissingValue is the sentinel returned by decoded reads when the
// underlying raw byte equals a parameter's declared missing marker.
const MissingValue = math.MaxFloat64

// Parameter is one named quantity ("DBZH", "VRAD", "TH", ...) attached to a
// Scan: a raw byte grid plus the linear encoding needed to decode it.
type Parameter struct {
	// Offset and Scale encode raw bytes to physical units: value = Scale*raw + Offset.
	Offset float64
	Scale  float64
	// Missing is the raw byte value that denotes "no data" for this parameter.
	Missing byte
	// Raw is the ray-major byte grid, length Rays*Bins.
	Raw []byte
}

// Decode converts a raw byte at the given flat index to its physical value,
// returning MissingValue if the byte equals the parameter's missing marker.
func (p *Parameter) Decode(idx int) float64 {
	b := p.Raw[idx]
	if b == p.Missing {
		return MissingValue
	}
	return p.Scale*float64(b) + p.Offset
}

// EncodeByte maps a physical value back to its raw byte under the given
// linear encoding. ok is false when the encoded value would fall outside
// [0, 255], signalling ErrRangeEncoding to the caller.
func EncodeByte(value, offset, scale float64) (b byte, ok bool) {
	raw := math.Round((value - offset) / scale)
	if raw < 0 || raw > 255 {
		return 0, false
	}
	return byte(raw), true
}

// Scan is one elevation sweep of a polar volume: a fixed ray/bin geometry
// plus a set of named parameters sharing that geometry.
type Scan interface {
	// Elevation returns the sweep's elevation angle in degrees.
	Elevation() float64
	Rays() int
	Bins() int
	// RangeScale is the along-beam width of one bin, in metres.
	RangeScale() float64
	// RadarHeight is the antenna height above the reference surface, in metres.
	RadarHeight() float64
	// Parameter looks up a named parameter ("DBZH", "VRAD", "TH"). ok is
	// false if the scan does not carry it (see ErrMissingParameter).
	Parameter(name string) (*Parameter, bool)
}

// Volume is an ordered collection of scans forming one polar volume.
type Volume interface {
	Scans() []Scan
}

// PolarImage is a decoded single-parameter rectangular grid indexed by
// (ray, bin). The azimuth dimension is cyclic; the range dimension is not.
type PolarImage struct {
	Rays, Bins int
	// RangeScale is the bin width in metres; AzimScale is the ray step in degrees.
	RangeScale float64
	AzimScale  float64
	Elevation  float64
	RadarHeight float64
	Offset, Scale float64
	Missing       byte
	Data          []byte
}

// At returns the decoded value at (ray, bin), or MissingValue.
func (img *PolarImage) At(ray, bin int) float64 {
	b := img.Data[ray*img.Bins+bin]
	if b == img.Missing {
		return MissingValue
	}
	return img.Scale*float64(b) + img.Offset
}

// ScanMetadata is a PolarImage's geometry and encoding without its pixel array.
type ScanMetadata struct {
	Rays, Bins    int
	RangeScale    float64
	AzimScale     float64
	Elevation     float64
	RadarHeight   float64
	Offset, Scale float64
	Missing       byte
}

func (img *PolarImage) Metadata() ScanMetadata {
	return ScanMetadata{
		Rays: img.Rays, Bins: img.Bins,
		RangeScale: img.RangeScale, AzimScale: img.AzimScale,
		Elevation: img.Elevation, RadarHeight: img.RadarHeight,
		Offset: img.Offset, Scale: img.Scale, Missing: img.Missing,
	}
}

// CellLabelImage is an integer image parallel to a PolarImage's geometry.
// Sentinel -1 means no cell; 0 means fringe; a positive value is a cell id.
// After SortAndRenumber, surviving cells are numbered from 0, so label 0 is
// also the largest cell's id (see FringeCells).
type CellLabelImage struct {
	Rays, Bins int
	Labels     []int32
}

func NewCellLabelImage(rays, bins int) *CellLabelImage {
	l := &CellLabelImage{Rays: rays, Bins: bins, Labels: make([]int32, rays*bins)}
	for i := range l.Labels {
		l.Labels[i] = -1
	}
	return l
}

func (l *CellLabelImage) At(ray, bin int) int32 { return l.Labels[ray*l.Bins+bin] }
func (l *CellLabelImage) Set(ray, bin int, v int32) { l.Labels[ray*l.Bins+bin] = v }

// CellProperty holds the per-cell statistics E accumulates during analysis.
// It is created once per scan, mutated only by the analyzer, and discarded
// when the analyzer returns.
type CellProperty struct {
	GateCount        int
	ClutterGateCount int
	// AvgDBZ and AvgTexture are averaged over the non-clutter population only.
	AvgDBZ     float64
	AvgTexture float64
	// CoeffVar is AvgTexture / AvgDBZ.
	CoeffVar float64
	MaxDBZ   float64
	MaxDBZRay, MaxDBZBin int
	// Index is the cell's original (pre-renumbering) identifier.
	Index   int
	Dropped bool
}

// GateCode is a bit set with fixed positions, evolved in two stages: the
// classifier sets bits 0,1,2,3,4,5,7,8 at ingest, the profile engine sets
// bit 6 after a fit pass.
type GateCode uint16

const (
	BitStaticClutter     GateCode = 1 << 0
	BitDynamicClutter    GateCode = 1 << 1
	BitDynamicClutterFringe GateCode = 1 << 2
	BitVradMissing       GateCode = 1 << 3
	BitDBZTooHigh        GateCode = 1 << 4
	BitVradTooLow        GateCode = 1 << 5
	BitVradOutlier       GateCode = 1 << 6
	BitAzimuthTooLow     GateCode = 1 << 7
	BitAzimuthTooHigh    GateCode = 1 << 8
)

var gateCodeNames = [...]string{
	"staticClutter", "dynamicClutter", "dynamicClutterFringe", "vradMissing",
	"dBZTooHigh", "vradTooLow", "vradOutlier", "azimuthTooLow", "azimuthTooHigh",
}

// String renders the set bit names, joined by '|', or "clean" if none are set.
func (g GateCode) String() string {
	s := ""
	for i, name := range gateCodeNames {
		if g&(1<<uint(i)) != 0 {
			if s != "" {
				s += "|"
			}
			s += name
		}
	}
	if s == "" {
		return "clean"
	}
	return s
}

// PointsTable is a dense, volume-wide table of selected gates, one row per
// gate, partitioned into contiguous per-layer index windows.
type PointsTable struct {
	Azimuth   []float64
	Elevation []float64
	DBZ       []float64
	Vrad      []float64
	CellLabel []int32
	Code      []GateCode

	// From[l]/To[l] is layer l's index window [From[l], To[l]); Written[l]
	// is how many rows in that window are populated so far.
	From, To, Written []int
}

// NewPointsTable allocates a table sized by the per-layer capacities
// computed by the sizing pass (see points.go), one contiguous window per layer.
func NewPointsTable(layerCapacity []int) *PointsTable {
	n := 0
	from := make([]int, len(layerCapacity))
	to := make([]int, len(layerCapacity))
	for i, c := range layerCapacity {
		from[i] = n
		n += c
		to[i] = n
	}
	return &PointsTable{
		Azimuth:   make([]float64, n),
		Elevation: make([]float64, n),
		DBZ:       make([]float64, n),
		Vrad:      make([]float64, n),
		CellLabel: make([]int32, n),
		Code:      make([]GateCode, n),
		From:      from,
		To:        to,
		Written:   make([]int, len(layerCapacity)),
	}
}

// Append writes one admitted gate into layer's window. It panics with
// ErrIndexOverflow wrapped in if the layer's written count would exceed its
// capacity, a programming error.
func (t *PointsTable) Append(layer int, azimuth, elevation, dBZ, vrad float64, cellLabel int32) {
	w := t.Written[layer]
	idx := t.From[layer] + w
	if idx >= t.To[layer] {
		panic(errIndexOverflowf(layer))
	}
	t.Azimuth[idx] = azimuth
	t.Elevation[idx] = elevation
	t.DBZ[idx] = dBZ
	t.Vrad[idx] = vrad
	t.CellLabel[idx] = cellLabel
	t.Code[idx] = 0
	t.Written[layer] = w + 1
}

// ProfileVariant names the three profile variants processed in reverse
// order (3 -> 2 -> 1); variant 1 is the strictest.
type ProfileVariant int

const (
	VariantBirdsOnly       ProfileVariant = 1
	VariantBirdsAndWeather ProfileVariant = 2
	VariantAll             ProfileVariant = 3
)

// ProfileRow is one altitude layer's output across all 13 published columns.
// Missing values are NaN; HasGap is 0 or 1.
type ProfileRow struct {
	AltMin, AltMax float64
	U, V, W        float64
	HSpeed, HDir   float64
	// Chi is the residual scale, sqrt(reduced chi-squared).
	Chi             float64
	HasGap          float64
	DBZAvg          float64
	NPointsIncluded int
	ReflectivityEta float64
	BirdDensity     float64
}

func nanRow(altMin, altMax float64) ProfileRow {
	nan := math.NaN()
	return ProfileRow{
		AltMin: altMin, AltMax: altMax,
		U: nan, V: nan, W: nan, HSpeed: nan, HDir: nan, Chi: nan,
		DBZAvg: nan, ReflectivityEta: nan, BirdDensity: nan,
	}
}
