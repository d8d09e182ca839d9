// Package acmod lays out the distributable mod folder around the two binary
// artifacts: directory structure, surface physics, replay cameras, minimap
// and UI metadata. Pure templated text generation driven by the track
// config.
package acmod

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/ruggierom/ac_track_builder/config"
)

// Setup creates the mod folder skeleton and all engine config files under
// modDir. The kn5 and ai artifacts are placed by the pipeline afterwards.
func Setup(t *config.Track, modDir string) error {
	for _, d := range []string{"ai", "data", "ui"} {
		if err := os.MkdirAll(filepath.Join(modDir, d), 0777); err != nil {
			return errors.Wrapf(err, "Failed to create %q", filepath.Join(modDir, d))
		}
	}

	steps := []struct {
		name  string
		write func(*config.Track, string) error
	}{
		{"data/surfaces.ini", writeSurfaces},
		{"data/cameras.ini", writeCameras},
		{"data/map.ini", writeMap},
		{"data/lighting.ini", writeLighting},
		{"data/groove.ini", writeGroove},
		{"ui/ui_track.json", writeUITrack},
	}
	for _, s := range steps {
		if err := s.write(t, filepath.Join(modDir, filepath.FromSlash(s.name))); err != nil {
			return errors.Wrapf(err, "Failed to write %s", s.name)
		}
		log.Printf("[acmod] written %s", s.name)
	}
	return nil
}

func writeSurfaces(t *config.Track, path string) error {
	s := t.Surfaces
	content := fmt.Sprintf(`[SURFACE_0]
KEY=ROAD
FRICTION=%g
DAMPING=0.0
WAV=
WAV_PITCH=0
FF_EFFECT=NULL
DIRT_ADDITIVE=0.0
IS_VALID_TRACK=1
IS_PITLANE=0
BLACK_FLAG_TIME=0.0
SIN_HEIGHT=0
SIN_LENGTH=0
VIBRATION_GAIN=0
VIBRATION_LENGTH=0

[SURFACE_1]
KEY=KERB
FRICTION=%g
DAMPING=0.0
WAV=kerb
WAV_PITCH=1
FF_EFFECT=KERB
DIRT_ADDITIVE=0.0
IS_VALID_TRACK=1
IS_PITLANE=0
BLACK_FLAG_TIME=0.0
SIN_HEIGHT=0.005
SIN_LENGTH=0.15
VIBRATION_GAIN=0.5
VIBRATION_LENGTH=0.15

[SURFACE_2]
KEY=GRASS
FRICTION=%g
DAMPING=0.1
WAV=grass
WAV_PITCH=0
FF_EFFECT=GRASS
DIRT_ADDITIVE=0.5
IS_VALID_TRACK=0
IS_PITLANE=0
BLACK_FLAG_TIME=3.0
SIN_HEIGHT=0
SIN_LENGTH=0
VIBRATION_GAIN=0.2
VIBRATION_LENGTH=0.5

[SURFACE_3]
KEY=WALL
FRICTION=0.365
DAMPING=0.0
WAV=
WAV_PITCH=0
FF_EFFECT=NULL
DIRT_ADDITIVE=0.0
IS_VALID_TRACK=0
IS_PITLANE=0
BLACK_FLAG_TIME=0.0
SIN_HEIGHT=0
SIN_LENGTH=0
VIBRATION_GAIN=0.05
VIBRATION_LENGTH=0.05

[SURFACE_4]
KEY=PIT
FRICTION=0.97
DAMPING=0.0
WAV=
WAV_PITCH=0
FF_EFFECT=NULL
DIRT_ADDITIVE=0.0
IS_VALID_TRACK=1
IS_PITLANE=1
BLACK_FLAG_TIME=0.0
SIN_HEIGHT=0
SIN_LENGTH=0
VIBRATION_GAIN=0
VIBRATION_LENGTH=0

[SURFACE_5]
KEY=GROUND
FRICTION=%g
DAMPING=0.15
WAV=grass
WAV_PITCH=0
FF_EFFECT=GRASS
DIRT_ADDITIVE=0.5
IS_VALID_TRACK=0
IS_PITLANE=0
BLACK_FLAG_TIME=3.0
SIN_HEIGHT=0
SIN_LENGTH=0
VIBRATION_GAIN=0.3
VIBRATION_LENGTH=0.5
`, s.RoadFriction, s.KerbFriction, s.GrassFriction, s.GrassFriction)
	return os.WriteFile(path, []byte(content), 0666)
}

// Six replay cameras spread around the circuit. The engine requires the
// HEADER section.
func writeCameras(t *config.Track, path string) error {
	content := `[HEADER]
VERSION=2
CAMERA_COUNT=6
SET_NAME=replay


[CAMERA_0]
NAME=Start/Finish
POSITION=5.0, 3.0, 0.0
FORWARD=0.0, -0.3, 1.0
FOV=56.0
NEAR=0.1
FAR=800.0
MIN_DISTANCE=3.0
MAX_DISTANCE=120.0

[CAMERA_1]
NAME=Turn 1
POSITION=-30.0, 4.0, 50.0
FORWARD=0.5, -0.3, -0.5
FOV=50.0
NEAR=0.1
FAR=800.0
MIN_DISTANCE=3.0
MAX_DISTANCE=100.0

[CAMERA_2]
NAME=North Hairpin
POSITION=-50.0, 5.0, 100.0
FORWARD=0.7, -0.3, -0.3
FOV=48.0
NEAR=0.1
FAR=800.0
MIN_DISTANCE=3.0
MAX_DISTANCE=100.0

[CAMERA_3]
NAME=Chicane
POSITION=20.0, 3.5, 80.0
FORWARD=-0.5, -0.2, -0.5
FOV=52.0
NEAR=0.1
FAR=800.0
MIN_DISTANCE=3.0
MAX_DISTANCE=100.0

[CAMERA_4]
NAME=South Turn
POSITION=40.0, 4.0, -20.0
FORWARD=-0.6, -0.3, 0.4
FOV=50.0
NEAR=0.1
FAR=800.0
MIN_DISTANCE=3.0
MAX_DISTANCE=100.0

[CAMERA_5]
NAME=Overview
POSITION=0.0, 25.0, 50.0
FORWARD=0.0, -0.8, -0.2
FOV=70.0
NEAR=0.1
FAR=1200.0
MIN_DISTANCE=5.0
MAX_DISTANCE=200.0
`
	return os.WriteFile(path, []byte(content), 0666)
}

func writeMap(t *config.Track, path string) error {
	content := `[PARAMETERS]
WIDTH=250
HEIGHT=350
MARGIN=20
SCALE_FACTOR=1.0
X_OFFSET=0.0
Z_OFFSET=0.0
DRAWING_SIZE=10
`
	return os.WriteFile(path, []byte(content), 0666)
}

func writeLighting(t *config.Track, path string) error {
	content := `[LIGHTING]
SUN_PITCH_ANGLE=45
SUN_HEADING_ANGLE=45
`
	return os.WriteFile(path, []byte(content), 0666)
}

func writeGroove(t *config.Track, path string) error {
	content := `[HEADER]
GROOVES_NUMBER=0
`
	return os.WriteFile(path, []byte(content), 0666)
}

type uiTrack struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Country     string   `json:"country"`
	City        string   `json:"city"`
	Length      string   `json:"length"`
	Width       string   `json:"width"`
	Pitboxes    string   `json:"pitboxes"`
	Run         string   `json:"run"`
	Author      string   `json:"author"`
	Version     string   `json:"version"`
}

func writeUITrack(t *config.Track, path string) error {
	info := t.Info
	ui := uiTrack{
		Name: info.Name,
		Description: fmt.Sprintf("%s, %s (%s). %d meter circuit.",
			info.Name, info.City, info.Country, info.Length),
		Tags:     []string{"circuit"},
		Country:  info.Country,
		City:     info.City,
		Length:   fmt.Sprintf("%d", info.Length),
		Width:    fmt.Sprintf("%.0f-%.0f", t.Geometry.RoadWidth, t.Geometry.RoadWidth+1),
		Pitboxes: fmt.Sprintf("%d", info.Pitboxes),
		Run:      info.Direction,
		Author:   info.Author,
		Version:  info.Version,
	}
	data, err := json.MarshalIndent(&ui, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0666)
}

// CopyArtwork mirrors the optional authored images into the mod folder:
// layout.png becomes the minimap, cover.png becomes the UI preview and
// outline. Missing sources are skipped silently.
func CopyArtwork(srcDir, modDir string) error {
	pairs := [][2]string{
		{"layout.png", "map.png"},
		{"cover.png", "ui/preview.png"},
		{"cover.png", "ui/outline.png"},
	}
	for _, p := range pairs {
		src := filepath.Join(srcDir, p[0])
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(modDir, filepath.FromSlash(p[1]))
		if err := copyFile(src, dst); err != nil {
			return err
		}
		log.Printf("[acmod] copied %s -> %s", p[0], p[1])
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, "Failed to open %q", src)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", dst)
	}
	_, err = io.Copy(out, in)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	return err
}
