// Package kn5 implements the engine scene-tree binary format: embedded
// textures, materials and a recursive dummy/mesh node hierarchy, all
// little-endian with length-prefixed strings.
package kn5

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const Magic = "sc6969"

// Version written by this tool. Reference tracks in the wild are v5/v6;
// v6 carries one extra header int32 and one extra material int32.
const CurrentVersion int32 = 6

const (
	NodeDummy int32 = 1
	NodeMesh  int32 = 2
)

// 16 bit triangle indices cap a single mesh node at 65535 vertices.
const MaxVertices = 65535

const DefaultShader = "ksPerPixel"

type Property struct {
	Name  string
	Value float32
}

// Scalar shader properties every material carries, in file order, with the
// fallback values used when the scene does not override them.
var DefaultProperties = []Property{
	{"ksAmbient", 0.5},
	{"ksDiffuse", 0.7},
	{"ksSpecular", 0.2},
	{"ksSpecularEXP", 15.0},
}

type Sampler struct {
	Name    string
	Slot    int32
	Texture string
}

type Material struct {
	Name       string
	Shader     string
	Properties []Property
	Samplers   []Sampler
}

type Texture struct {
	Name string
	Data []byte
}

type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Tangent  mgl32.Vec3
}

type MeshData struct {
	CastShadows   byte
	IsVisible     byte
	IsTransparent byte

	Vertices []Vertex
	Indices  []uint16

	MaterialID int32
	Layer      int32
	LodIn      float32
	LodOut     float32

	BoundingCenter mgl32.Vec3
	BoundingRadius float32
	IsRenderable   byte
}

type Node struct {
	Type int32
	Name string
	Flag byte

	// dummy nodes only
	Matrix [4][4]float32

	// mesh nodes only
	Mesh *MeshData

	Children []*Node
}

type File struct {
	Version   int32
	Textures  []*Texture
	Materials []*Material
	Root      *Node
}

// Meshes walks the node tree and returns every mesh node in file order.
func (f *File) Meshes() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		if n.Type == NodeMesh {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(f.Root)
	return out
}

func (f *File) TextureByName(name string) *Texture {
	for _, t := range f.Textures {
		if t.Name == name {
			return t
		}
	}
	return nil
}

// FormatError is a malformed or truncated scene file. The recursive node
// layout has no resynchronization points, so a FormatError kills the whole
// parse of that file; Offset tells where it died.
type FormatError struct {
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("kn5 format error at offset 0x%x: %v", e.Offset, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }
