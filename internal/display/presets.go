package display

import "strings"

// Preset is a named window/level pair offered for explicit user
// selection. Choosing a preset bypasses the resolver heuristics entirely.
type Preset struct {
	Name   string
	Width  float64
	Center float64
}

// Presets is the fixed preset table, in display order.
var Presets = []Preset{
	{Name: "CT Abdomen", Width: 400, Center: 40},
	{Name: "CT Bone", Width: 1000, Center: 400},
	{Name: "CT Brain", Width: 100, Center: 50},
	{Name: "CT Lung", Width: 1600, Center: -600},
	{Name: "MR T1", Width: 600, Center: 300},
	{Name: "MR T2", Width: 1000, Center: 500},
	{Name: "Full Range", Width: 4000, Center: 2000},
}

// PresetByName looks up a preset case-insensitively.
func PresetByName(name string) (WindowLevel, bool) {
	for _, p := range Presets {
		if strings.EqualFold(p.Name, name) {
			return WindowLevel{Center: p.Center, Width: p.Width}, true
		}
	}
	return WindowLevel{}, false
}

// PresetsForModality returns the presets relevant to a modality, with the
// full table as fallback for anything unrecognized.
func PresetsForModality(modality string) []Preset {
	prefix := strings.ToUpper(strings.TrimSpace(modality))
	var out []Preset
	for _, p := range Presets {
		if strings.HasPrefix(strings.ToUpper(p.Name), prefix) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return Presets
	}
	return out
}
