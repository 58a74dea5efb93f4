package imaging

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestThumbnail_SizeAndContrast(t *testing.T) {
	img := ramp(64, 64)
	thumb := Thumbnail(img, false, 100)

	if thumb.Bounds().Dx() != 100 || thumb.Bounds().Dy() != 100 {
		t.Fatalf("thumbnail size = %v, want 100x100", thumb.Bounds())
	}

	// Normalization stretches the ramp to full contrast: top-left near
	// black, bottom-right near white.
	r0, _, _, _ := thumb.At(0, 0).RGBA()
	r1, _, _, _ := thumb.At(99, 99).RGBA()
	if r0>>8 > 10 {
		t.Errorf("top-left = %d, want near 0", r0>>8)
	}
	if r1>>8 < 245 {
		t.Errorf("bottom-right = %d, want near 255", r1>>8)
	}
}

func TestThumbnail_DefaultEdge(t *testing.T) {
	thumb := Thumbnail(ramp(8, 8), false, 0)
	if thumb.Bounds().Dx() != 100 {
		t.Errorf("default edge = %d, want 100", thumb.Bounds().Dx())
	}
}

func TestPlaceholder_Deterministic(t *testing.T) {
	a := Placeholder("CT", 100)
	b := Placeholder("CT", 100)

	var bufA, bufB bytes.Buffer
	if err := png.Encode(&bufA, a); err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(&bufB, b); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bufA.Bytes(), bufB.Bytes()) {
		t.Error("placeholder rasters differ between runs")
	}
}

func TestPlaceholder_DiffersByModality(t *testing.T) {
	a := Placeholder("CT", 100)
	b := Placeholder("MR", 100)

	diff := false
	for y := 0; y < 100 && !diff; y++ {
		for x := 0; x < 100; x++ {
			if a.RGBAAt(x, y) != b.RGBAAt(x, y) {
				diff = true
				break
			}
		}
	}
	if !diff {
		t.Error("CT and MR placeholders should render different text")
	}
}

func TestDrawCornerText_DoesNotPanicOnSmallImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	DrawCornerText(img, CornerText{
		TopLeft:     {"DOE^JANE", "PID000001"},
		TopRight:    {"20240102", "CT"},
		BottomLeft:  {"AX TEST", "3/12"},
		BottomRight: {"C0 W400"},
	})
}
