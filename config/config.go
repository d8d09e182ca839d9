package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Info struct {
	Name      string `yaml:"name"`
	City      string `yaml:"city"`
	Country   string `yaml:"country"`
	Length    int    `yaml:"length"`
	Pitboxes  int    `yaml:"pitboxes"`
	Direction string `yaml:"direction"`
	Author    string `yaml:"author"`
	Version   string `yaml:"version"`
}

type Surfaces struct {
	RoadFriction  float64 `yaml:"road_friction"`
	KerbFriction  float64 `yaml:"kerb_friction"`
	GrassFriction float64 `yaml:"grass_friction"`
}

// Speeds are km/h, the same unit the authoring side thinks in. The ai file
// itself stores m/s.
type AILine struct {
	DefaultSpeed   float64 `yaml:"default_speed"`
	MinCornerSpeed float64 `yaml:"min_corner_speed"`
	RoadObject     string  `yaml:"road_object"`
}

type Geometry struct {
	RoadWidth        float64 `yaml:"road_width"`
	MarkerHalfExtent float64 `yaml:"marker_half_extent"`
}

type Track struct {
	Info     Info     `yaml:"info"`
	Surfaces Surfaces `yaml:"surfaces"`
	AILine   AILine   `yaml:"ai_line"`
	Geometry Geometry `yaml:"geometry"`
}

func DefaultTrack() *Track {
	return &Track{
		Info: Info{
			Name:      "Unnamed Track",
			Direction: "clockwise",
			Pitboxes:  10,
			Version:   "1.0.0",
		},
		Surfaces: Surfaces{
			RoadFriction:  0.97,
			KerbFriction:  0.93,
			GrassFriction: 0.60,
		},
		AILine: AILine{
			DefaultSpeed:   80.0,
			MinCornerSpeed: 40.0,
			RoadObject:     "1ROAD",
		},
		Geometry: Geometry{
			RoadWidth:        7.5,
			MarkerHalfExtent: 0.25,
		},
	}
}

// LoadTrack reads a track yaml config. A missing file is not an error: the
// defaults describe a perfectly exportable track.
func LoadTrack(path string) (*Track, error) {
	t := DefaultTrack()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "Failed to read track config %q", path)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse track config %q", path)
	}
	return t, nil
}
