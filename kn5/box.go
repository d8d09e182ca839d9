package kn5

import (
	"github.com/go-gl/mathgl/mgl32"
)

const DefaultBoxHalfExtent = 0.25

// BoxMesh builds the small synthetic box wrapped under every marker dummy.
// The engine only resolves marker semantics (start line, pit spot, timing
// line) from the node name when renderable geometry hangs beneath it, so
// every marker gets one of these. 24 vertices, 36 indices, built directly
// in engine axes.
func BoxMesh(half float32) *MeshData {
	h := half
	faces := []struct {
		normal  mgl32.Vec3
		tangent mgl32.Vec3
		corners [4]mgl32.Vec3
	}{
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0},
			[4]mgl32.Vec3{{-h, h, -h}, {h, h, -h}, {h, h, h}, {-h, h, h}}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0},
			[4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, -h, -h}, {-h, -h, -h}}},
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, 1},
			[4]mgl32.Vec3{{h, -h, -h}, {h, -h, h}, {h, h, h}, {h, h, -h}}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, -1},
			[4]mgl32.Vec3{{-h, -h, h}, {-h, -h, -h}, {-h, h, -h}, {-h, h, h}}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0},
			[4]mgl32.Vec3{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0},
			[4]mgl32.Vec3{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	m := &MeshData{
		CastShadows:  1,
		IsVisible:    1,
		IsRenderable: 1,
		Vertices:     make([]Vertex, 0, 24),
		Indices:      make([]uint16, 0, 36),
	}
	for _, f := range faces {
		base := uint16(len(m.Vertices))
		for i, c := range f.corners {
			m.Vertices = append(m.Vertices, Vertex{
				Position: c,
				Normal:   f.normal,
				UV:       uvs[i],
				Tangent:  f.tangent,
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.BoundingCenter, m.BoundingRadius = boundingSphere(m.Vertices)
	return m
}
