package acmod

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruggierom/ac_track_builder/config"
)

func TestSetup(t *testing.T) {
	modDir := filepath.Join(t.TempDir(), "test_track")
	cfg := config.DefaultTrack()
	cfg.Info.Name = "Test Ring"
	cfg.Info.Country = "Italy"
	cfg.Surfaces.RoadFriction = 0.98

	if err := Setup(cfg, modDir); err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{
		"ai",
		"data/surfaces.ini",
		"data/cameras.ini",
		"data/map.ini",
		"data/lighting.ini",
		"data/groove.ini",
		"ui/ui_track.json",
	} {
		if _, err := os.Stat(filepath.Join(modDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	surfaces, err := os.ReadFile(filepath.Join(modDir, "data", "surfaces.ini"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"KEY=ROAD", "FRICTION=0.98", "KEY=KERB", "IS_PITLANE=1"} {
		if !strings.Contains(string(surfaces), want) {
			t.Errorf("surfaces.ini missing %q", want)
		}
	}

	cameras, err := os.ReadFile(filepath.Join(modDir, "data", "cameras.ini"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cameras), "CAMERA_COUNT=6") {
		t.Error("cameras.ini missing camera count")
	}

	uiData, err := os.ReadFile(filepath.Join(modDir, "ui", "ui_track.json"))
	if err != nil {
		t.Fatal(err)
	}
	var ui map[string]interface{}
	if err := json.Unmarshal(uiData, &ui); err != nil {
		t.Fatalf("ui_track.json is not valid json: %v", err)
	}
	if ui["name"] != "Test Ring" || ui["country"] != "Italy" {
		t.Errorf("ui_track.json = %v", ui)
	}
}

func TestCopyArtwork(t *testing.T) {
	srcDir := t.TempDir()
	modDir := filepath.Join(t.TempDir(), "track")
	if err := Setup(config.DefaultTrack(), modDir); err != nil {
		t.Fatal(err)
	}

	// missing sources are skipped
	if err := CopyArtwork(srcDir, modDir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(modDir, "map.png")); err == nil {
		t.Error("map.png appeared without a source")
	}

	if err := os.WriteFile(filepath.Join(srcDir, "layout.png"), []byte{1}, 0666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "cover.png"), []byte{2}, 0666); err != nil {
		t.Fatal(err)
	}
	if err := CopyArtwork(srcDir, modDir); err != nil {
		t.Fatal(err)
	}
	for _, rel := range []string{"map.png", "ui/preview.png", "ui/outline.png"} {
		if _, err := os.Stat(filepath.Join(modDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s", rel)
		}
	}
}
