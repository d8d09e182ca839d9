// Package scene is the read-only view of an authored track scene that the
// exporter and the racing line generator consume. Nothing here knows about
// the kn5 or ai binary layouts; it is plain geometry in authoring space
// (Z-up, V texture origin at the bottom).
package scene

import (
	"os"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Objects whose name starts with this prefix carry engine semantics
// (start line, pit spots, timing lines, hotlap start).
const MarkerPrefix = "AC_"

type Vertex struct {
	Position mgl64.Vec3
	Normal   mgl64.Vec3
	UV       mgl64.Vec2
	Tangent  mgl64.Vec3
}

// Texture is a diffuse image referenced by a material, either embedded in
// the source scene or living next to it on disk.
type Texture struct {
	Name string
	Data []byte
	Path string
}

func (t *Texture) Bytes() ([]byte, error) {
	if t.Data != nil {
		return t.Data, nil
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read texture %q", t.Path)
	}
	return data, nil
}

type Material struct {
	Name    string
	Shader  string
	Props   map[string]float64
	Texture *Texture
}

// MeshObject keeps two views of the same triangles: indexed positions for
// topology queries and per-corner attributes for export. Both are local
// space; Transform places them in the world.
type MeshObject struct {
	Name      string
	Transform mgl64.Mat4
	Positions []mgl64.Vec3
	Triangles [][3]int
	Corners   []Vertex
	Material  *Material
}

// WorldPosition applies the object transform to a local position.
func (m *MeshObject) WorldPosition(i int) mgl64.Vec3 {
	return m.Transform.Mul4x1(m.Positions[i].Vec4(1)).Vec3()
}

type MarkerObject struct {
	Name      string
	Transform mgl64.Mat4
}

func (m *MarkerObject) Position() mgl64.Vec3 {
	return mgl64.Vec3{m.Transform.At(0, 3), m.Transform.At(1, 3), m.Transform.At(2, 3)}
}

type Scene struct {
	Meshes  []*MeshObject
	Markers []*MarkerObject
}

func (s *Scene) MeshByName(name string) *MeshObject {
	for _, m := range s.Meshes {
		if m.Name == name {
			return m
		}
	}
	return nil
}

func (s *Scene) MarkerByName(name string) *MarkerObject {
	for _, m := range s.Markers {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// SortedMeshes returns the mesh objects ordered by name so export output is
// deterministic regardless of scene file ordering.
func (s *Scene) SortedMeshes() []*MeshObject {
	meshes := make([]*MeshObject, len(s.Meshes))
	copy(meshes, s.Meshes)
	sort.Slice(meshes, func(i, j int) bool { return meshes[i].Name < meshes[j].Name })
	return meshes
}

func (s *Scene) SortedMarkers() []*MarkerObject {
	markers := make([]*MarkerObject, len(s.Markers))
	copy(markers, s.Markers)
	sort.Slice(markers, func(i, j int) bool { return markers[i].Name < markers[j].Name })
	return markers
}

func IsMarkerName(name string) bool {
	return strings.HasPrefix(name, MarkerPrefix)
}
