package profile

import (
	"math"
	"testing"
)

func uniformImage(rays, bins int, value, offset, scale float64, missing byte) *PolarImage {
	img := &PolarImage{
		Rays: rays, Bins: bins,
		RangeScale: 500, AzimScale: 360.0 / float64(rays),
		Elevation: 5, RadarHeight: 0,
		Offset: offset, Scale: scale, Missing: missing,
		Data: make([]byte, rays*bins),
	}
	b, ok := EncodeByte(value, offset, scale)
	if !ok {
		panic("test fixture value does not encode")
	}
	for i := range img.Data {
		img.Data[i] = b
	}
	return img
}

// TestTextureConstantVradIsZero: texture over a block of
// constant vrad equals 0 to within encoding resolution.
func TestTextureConstantVradIsZero(t *testing.T) {
	vrad := uniformImage(36, 20, 3.0, -20, 0.2, 255)
	dBZ := uniformImage(36, 20, 10.0, -20, 0.5, 255)

	tex, err := Texture(vrad, dBZ, 3, 3, 4)
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	for i, b := range tex.Data {
		if b == tex.Missing {
			continue
		}
		v := tex.Scale*float64(b) + tex.Offset
		if math.Abs(v) > tex.Scale {
			t.Fatalf("gate %d: texture = %v, want ~0 (within one encoding step)", i, v)
		}
	}
}

func TestTextureMissingNeighborsEncodeMissing(t *testing.T) {
	const rays, bins = 5, 5
	vrad := uniformImage(rays, bins, 1.0, -20, 0.2, 255)
	dBZ := uniformImage(rays, bins, 10.0, -20, 0.5, 255)

	// Mark every gate except the center missing, so the center gate's
	// neighborhood never has enough valid samples.
	for i := range vrad.Data {
		if i != 2*bins+2 {
			vrad.Data[i] = vrad.Missing
		}
	}

	tex, err := Texture(vrad, dBZ, 3, 3, 4)
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	if tex.Data[2*bins+2] != tex.Missing {
		t.Errorf("expected missing sentinel for under-sampled gate, got %d", tex.Data[2*bins+2])
	}
}

func TestTextureMismatchedGeometryErrors(t *testing.T) {
	vrad := uniformImage(10, 10, 1, -20, 0.2, 255)
	dBZ := uniformImage(5, 5, 10, -20, 0.5, 255)
	_, err := Texture(vrad, dBZ, 3, 3, 4)
	if err == nil {
		t.Fatal("expected error for mismatched geometry")
	}
}

func TestTextureVariesWithNeighborDifference(t *testing.T) {
	const rays, bins = 9, 9
	vrad := uniformImage(rays, bins, 0.0, -20, 0.2, 255)
	dBZ := uniformImage(rays, bins, 10.0, -20, 0.5, 255)

	// Perturb one neighbor of the center gate so its texture becomes non-zero.
	center := 4*bins + 4
	neighborIdx := 4*bins + 5
	b, ok := EncodeByte(5.0, vrad.Offset, vrad.Scale)
	if !ok {
		t.Fatal("fixture value does not encode")
	}
	vrad.Data[neighborIdx] = b

	tex, err := Texture(vrad, dBZ, 3, 3, 4)
	if err != nil {
		t.Fatalf("Texture: %v", err)
	}
	if tex.Data[center] == tex.Missing {
		t.Fatal("expected a computed texture value at the center gate")
	}
	v := tex.Scale*float64(tex.Data[center]) + tex.Offset
	if v <= 0 {
		t.Errorf("expected positive texture after perturbing a neighbor, got %v", v)
	}
}
