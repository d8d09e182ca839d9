package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestIsMarkerName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"AC_START_0", true},
		{"AC_PIT_3", true},
		{"1ROAD", false},
		{"ac_start_0", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsMarkerName(tc.name); got != tc.want {
			t.Errorf("IsMarkerName(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestMarkerPosition(t *testing.T) {
	m := &MarkerObject{
		Name:      "AC_START_0",
		Transform: mgl64.Translate3D(4, 5, 6),
	}
	if got := m.Position(); got != (mgl64.Vec3{4, 5, 6}) {
		t.Errorf("Position() = %v, want {4 5 6}", got)
	}
}

func TestSortedObjects(t *testing.T) {
	s := &Scene{
		Meshes: []*MeshObject{
			{Name: "2GRASS"},
			{Name: "1ROAD"},
			{Name: "3KERB"},
		},
		Markers: []*MarkerObject{
			{Name: "AC_START_1"},
			{Name: "AC_START_0"},
		},
	}

	meshes := s.SortedMeshes()
	for i, want := range []string{"1ROAD", "2GRASS", "3KERB"} {
		if meshes[i].Name != want {
			t.Errorf("meshes[%d] = %q, want %q", i, meshes[i].Name, want)
		}
	}
	// input untouched
	if s.Meshes[0].Name != "2GRASS" {
		t.Error("SortedMeshes reordered the scene slice")
	}

	markers := s.SortedMarkers()
	if markers[0].Name != "AC_START_0" || markers[1].Name != "AC_START_1" {
		t.Errorf("markers = %q, %q", markers[0].Name, markers[1].Name)
	}
}

func TestMeshByName(t *testing.T) {
	s := &Scene{Meshes: []*MeshObject{{Name: "1ROAD"}}}
	if s.MeshByName("1ROAD") == nil {
		t.Error("MeshByName missed an existing mesh")
	}
	if s.MeshByName("2GRASS") != nil {
		t.Error("MeshByName invented a mesh")
	}
}

func TestTextureBytes(t *testing.T) {
	embedded := &Texture{Name: "a.png", Data: []byte{1, 2, 3}}
	data, err := embedded.Bytes()
	if err != nil || len(data) != 3 {
		t.Errorf("embedded Bytes() = %v, %v", data, err)
	}

	path := filepath.Join(t.TempDir(), "b.png")
	if err := os.WriteFile(path, []byte{9, 9}, 0666); err != nil {
		t.Fatal(err)
	}
	onDisk := &Texture{Name: "b.png", Path: path}
	data, err = onDisk.Bytes()
	if err != nil || len(data) != 2 {
		t.Errorf("on-disk Bytes() = %v, %v", data, err)
	}

	missing := &Texture{Name: "c.png", Path: filepath.Join(t.TempDir(), "nope.png")}
	if _, err := missing.Bytes(); err == nil {
		t.Error("expected error for a missing texture file")
	}
}
