package display

import (
	"math"
	"testing"

	"github.com/mleroi/dicomstack/internal/dicomcore"
)

func record(modality, center, width string) *dicomcore.ImageRecord {
	return &dicomcore.ImageRecord{
		Modality:                  modality,
		BitsAllocated:             16,
		PhotometricInterpretation: "MONOCHROME2",
		WindowCenterRaw:           center,
		WindowWidthRaw:            width,
		RescaleSlope:              1,
	}
}

func TestResolve_UsesMetadataWhenValid(t *testing.T) {
	wl := Resolve(record("CT", "40", "400"), nil)
	if wl.Center != 40 || wl.Width != 400 {
		t.Errorf("Resolve = %+v, want 40/400", wl)
	}
}

func TestResolve_MultiValuedWindowKeepsFirst(t *testing.T) {
	wl := Resolve(record("CT", "40\\80", "400\\215"), nil)
	if wl.Center != 40 || wl.Width != 400 {
		t.Errorf("Resolve = %+v, want first value 40/400", wl)
	}
}

func TestResolve_ModalityFallbacks(t *testing.T) {
	tests := []struct {
		modality string
		want     WindowLevel
	}{
		{"CT", WindowLevel{Center: 0, Width: 400}},
		{"MR", WindowLevel{Center: 500, Width: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.modality, func(t *testing.T) {
			wl := Resolve(record(tt.modality, "", ""), nil)
			if wl != tt.want {
				t.Errorf("Resolve(%s) = %+v, want %+v", tt.modality, wl, tt.want)
			}
		})
	}
}

func TestResolve_BitDepthFallbacks(t *testing.T) {
	rec := record("US", "", "")
	wl := Resolve(rec, nil)
	if wl.Center != 2048 || wl.Width != 4096 {
		t.Errorf("16-bit monochrome fallback = %+v, want 2048/4096", wl)
	}

	rec.BitsAllocated = 8
	wl = Resolve(rec, nil)
	if wl.Center != 128 || wl.Width != 256 {
		t.Errorf("8-bit monochrome fallback = %+v, want 128/256", wl)
	}

	rec.PhotometricInterpretation = "RGB"
	rec.BitsAllocated = 16
	wl = Resolve(rec, nil)
	if wl.Center != 128 || wl.Width != 256 {
		t.Errorf("color fallback = %+v, want 128/256", wl)
	}
}

func TestResolve_MalformedWindowNeverProducesNaN(t *testing.T) {
	cases := [][2]string{
		{"abc", "400"},
		{"40", "abc"},
		{"NaN", "NaN"},
		{"40", "-10"},
		{"40", "0"},
		{"Inf", "Inf"},
	}
	for _, c := range cases {
		wl := Resolve(record("XA", c[0], c[1]), nil)
		if math.IsNaN(wl.Center) || math.IsNaN(wl.Width) {
			t.Errorf("window %v produced NaN: %+v", c, wl)
		}
		if math.IsInf(wl.Center, 0) || math.IsInf(wl.Width, 0) {
			t.Errorf("window %v produced Inf: %+v", c, wl)
		}
		if wl.Width <= 0 {
			t.Errorf("window %v produced non-positive width: %+v", c, wl)
		}
	}
}

func TestResolve_PercentileStats(t *testing.T) {
	stats := &PixelStats{Min: 0, Max: 3000, P01: 100, P99: 2100}
	wl := Resolve(record("XA", "", ""), stats)
	if wl.Width != 2000 || wl.Center != 1100 {
		t.Errorf("percentile window = %+v, want 1100/2000", wl)
	}
}

func TestResolve_StatsDegenerateCases(t *testing.T) {
	// Inverted percentiles fall back to the full range.
	wl := Resolve(record("XA", "", ""), &PixelStats{Min: 10, Max: 200, P01: 150, P99: 150})
	if wl.Width != 190 || wl.Center != 105 {
		t.Errorf("full-range fallback = %+v, want 105/190", wl)
	}

	// Flat image falls back to 500/1000.
	wl = Resolve(record("XA", "", ""), &PixelStats{Min: 7, Max: 7, P01: 7, P99: 7})
	if wl.Width != 1000 || wl.Center != 500 {
		t.Errorf("flat-image fallback = %+v, want 500/1000", wl)
	}
}

func TestPresetByName(t *testing.T) {
	wl, ok := PresetByName("ct lung")
	if !ok {
		t.Fatal("preset lookup failed")
	}
	if wl.Center != -600 || wl.Width != 1600 {
		t.Errorf("CT Lung = %+v, want -600/1600", wl)
	}

	if _, ok := PresetByName("PET Metabolic"); ok {
		t.Error("unknown preset should not resolve")
	}
}

func TestPresetsForModality(t *testing.T) {
	ct := PresetsForModality("CT")
	if len(ct) != 4 {
		t.Errorf("CT presets = %d, want 4", len(ct))
	}
	all := PresetsForModality("US")
	if len(all) != len(Presets) {
		t.Errorf("unknown modality should return the full table, got %d", len(all))
	}
}
