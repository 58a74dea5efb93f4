package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	s := Load()

	if s.WheelThrottle != 150*time.Millisecond {
		t.Errorf("WheelThrottle = %v, want 150ms", s.WheelThrottle)
	}
	if s.LoadTimeout != 30*time.Second {
		t.Errorf("LoadTimeout = %v, want 30s", s.LoadTimeout)
	}
	if s.ThumbnailEdge != 100 {
		t.Errorf("ThumbnailEdge = %d, want 100", s.ThumbnailEdge)
	}
	if s.Occupancy != 0.9 {
		t.Errorf("Occupancy = %v, want 0.9", s.Occupancy)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DICOMSTACK_WHEEL_THROTTLE", "250ms")
	t.Setenv("DICOMSTACK_THUMBNAIL_EDGE", "64")
	t.Setenv("DICOMSTACK_OCCUPANCY", "0.8")

	s := Load()
	if s.WheelThrottle != 250*time.Millisecond {
		t.Errorf("WheelThrottle = %v, want 250ms", s.WheelThrottle)
	}
	if s.ThumbnailEdge != 64 {
		t.Errorf("ThumbnailEdge = %d, want 64", s.ThumbnailEdge)
	}
	if s.Occupancy != 0.8 {
		t.Errorf("Occupancy = %v, want 0.8", s.Occupancy)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("DICOMSTACK_WHEEL_THROTTLE", "soon")
	t.Setenv("DICOMSTACK_THUMBNAIL_EDGE", "-3")
	t.Setenv("DICOMSTACK_OCCUPANCY", "2.5")

	s := Load()
	d := Defaults()
	if s.WheelThrottle != d.WheelThrottle || s.ThumbnailEdge != d.ThumbnailEdge || s.Occupancy != d.Occupancy {
		t.Errorf("invalid values should fall back to defaults, got %+v", s)
	}
}
