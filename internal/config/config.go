// Package config loads viewer settings from the environment, with an
// optional .env file for local overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Settings holds the tunable parameters of the viewer pipeline.
type Settings struct {
	// WheelThrottle is the minimum interval between two wheel-driven
	// navigation steps.
	WheelThrottle time.Duration

	// LoadTimeout bounds a single load-and-display operation.
	LoadTimeout time.Duration

	// ThumbnailEdge is the pixel edge of generated series thumbnails.
	ThumbnailEdge int

	// Occupancy scales the fitted image inside the surface to leave a
	// visual margin.
	Occupancy float64

	// DefaultZoom is the zoom percentage applied when a series is first
	// displayed.
	DefaultZoom float64
}

// Defaults returns the documented default settings.
func Defaults() Settings {
	return Settings{
		WheelThrottle: 150 * time.Millisecond,
		LoadTimeout:   30 * time.Second,
		ThumbnailEdge: 100,
		Occupancy:     0.9,
		DefaultZoom:   100,
	}
}

// Load reads settings from the environment. A .env file in the working
// directory is merged first when present; a missing file is not an error.
func Load() Settings {
	_ = godotenv.Load()

	s := Defaults()
	if d, ok := envDuration("DICOMSTACK_WHEEL_THROTTLE"); ok {
		s.WheelThrottle = d
	}
	if d, ok := envDuration("DICOMSTACK_LOAD_TIMEOUT"); ok {
		s.LoadTimeout = d
	}
	if n, ok := envInt("DICOMSTACK_THUMBNAIL_EDGE"); ok && n > 0 {
		s.ThumbnailEdge = n
	}
	if f, ok := envFloat("DICOMSTACK_OCCUPANCY"); ok && f > 0 && f <= 1 {
		s.Occupancy = f
	}
	if f, ok := envFloat("DICOMSTACK_DEFAULT_ZOOM"); ok && f > 0 {
		s.DefaultZoom = f
	}
	return s
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envFloat(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
