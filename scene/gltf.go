package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/ruggierom/ac_track_builder/utils"
)

// LoadGLTF reads an authored track scene from a .gltf/.glb file. The scene
// is expected to be exported in the authoring axis convention (Z-up, the
// "+Y up" exporter option disabled); all axis conversion happens later, in
// the binary writers.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open scene %q", path)
	}
	return FromDocument(doc, filepath.Dir(path))
}

// FromDocument converts a parsed glTF document. dir resolves relative
// texture URIs.
func FromDocument(doc *gltf.Document, dir string) (*Scene, error) {
	s := &Scene{}
	l := &gltfLoader{doc: doc, dir: dir, materials: make(map[uint32]*Material)}

	var roots []uint32
	if doc.Scene != nil {
		roots = doc.Scenes[*doc.Scene].Nodes
	} else if len(doc.Scenes) > 0 {
		roots = doc.Scenes[0].Nodes
	}
	for _, ni := range roots {
		if err := l.addNode(s, doc.Nodes[ni], mgl64.Ident4()); err != nil {
			return nil, err
		}
	}
	return s, nil
}

type gltfLoader struct {
	doc       *gltf.Document
	dir       string
	materials map[uint32]*Material
}

func (l *gltfLoader) addNode(s *Scene, node *gltf.Node, parent mgl64.Mat4) error {
	world := parent.Mul4(nodeTransform(node))

	if node.Mesh != nil {
		mesh := l.doc.Meshes[*node.Mesh]
		name := node.Name
		if name == "" {
			name = mesh.Name
		}
		for i, prim := range mesh.Primitives {
			primName := name
			if i > 0 {
				primName = fmt.Sprintf("%s_%d", name, i)
			}
			mo, err := l.loadPrimitive(primName, world, prim)
			if err != nil {
				return errors.Wrapf(err, "Failed to load mesh %q", primName)
			}
			s.Meshes = append(s.Meshes, mo)
		}
	} else if IsMarkerName(node.Name) {
		s.Markers = append(s.Markers, &MarkerObject{Name: node.Name, Transform: world})
	}

	for _, ci := range node.Children {
		if err := l.addNode(s, l.doc.Nodes[ci], world); err != nil {
			return err
		}
	}
	return nil
}

func nodeTransform(n *gltf.Node) mgl64.Mat4 {
	if n.Matrix != ([16]float32{}) {
		// glTF matrices are column-major
		var out mgl64.Mat4
		for c := 0; c < 4; c++ {
			for r := 0; r < 4; r++ {
				out.Set(r, c, float64(n.Matrix[c*4+r]))
			}
		}
		return out
	}

	rot := n.Rotation
	if rot == ([4]float32{}) {
		rot = [4]float32{0, 0, 0, 1}
	}
	scale := n.Scale
	if scale == ([3]float32{}) {
		scale = [3]float32{1, 1, 1}
	}

	q := mgl64.Quat{
		W: float64(rot[3]),
		V: mgl64.Vec3{float64(rot[0]), float64(rot[1]), float64(rot[2])},
	}
	return mgl64.Translate3D(float64(n.Translation[0]), float64(n.Translation[1]), float64(n.Translation[2])).
		Mul4(q.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(float64(scale[0]), float64(scale[1]), float64(scale[2])))
}

func (l *gltfLoader) loadPrimitive(name string, world mgl64.Mat4, prim *gltf.Primitive) (*MeshObject, error) {
	doc := l.doc

	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, errors.Errorf("Primitive without POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read positions")
	}

	var normals [][3]float32
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return nil, errors.Wrapf(err, "Failed to read normals")
		}
	}
	var uvs [][2]float32
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return nil, errors.Wrapf(err, "Failed to read texture coords")
		}
	}
	var tangents [][4]float32
	if idx, ok := prim.Attributes[gltf.TANGENT]; ok {
		if tangents, err = modeler.ReadTangent(doc, doc.Accessors[idx], nil); err != nil {
			return nil, errors.Wrapf(err, "Failed to read tangents")
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return nil, errors.Wrapf(err, "Failed to read indices")
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if len(indices)%3 != 0 {
		return nil, errors.Errorf("Index count %d is not a triangle list", len(indices))
	}

	mo := &MeshObject{
		Name:      name,
		Transform: world,
	}

	// Weld the topology view by position so boundary edge queries see the
	// real connectivity even when the exporter split vertices on UV seams.
	weld := make(map[mgl64.Vec3]int)
	topo := make([]int, len(positions))
	for i, p := range positions {
		pos := utils.RoundVec6(mgl64.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
		idx, seen := weld[pos]
		if !seen {
			idx = len(mo.Positions)
			weld[pos] = idx
			mo.Positions = append(mo.Positions, pos)
		}
		topo[i] = idx
	}

	mo.Triangles = make([][3]int, 0, len(indices)/3)
	mo.Corners = make([]Vertex, 0, len(indices))
	for i := 0; i+2 < len(indices); i += 3 {
		tri := [3]int{topo[indices[i]], topo[indices[i+1]], topo[indices[i+2]]}
		mo.Triangles = append(mo.Triangles, tri)
		for k := 0; k < 3; k++ {
			mo.Corners = append(mo.Corners, cornerVertex(positions, normals, uvs, tangents, indices[i+k]))
		}
	}

	if prim.Material != nil {
		mo.Material = l.loadMaterial(*prim.Material)
	}
	return mo, nil
}

func cornerVertex(positions, normals [][3]float32, uvs [][2]float32, tangents [][4]float32, i uint32) Vertex {
	v := Vertex{
		Position: mgl64.Vec3{float64(positions[i][0]), float64(positions[i][1]), float64(positions[i][2])},
		Normal:   mgl64.Vec3{0, 0, 1},
		Tangent:  mgl64.Vec3{1, 0, 0},
	}
	if normals != nil {
		v.Normal = mgl64.Vec3{float64(normals[i][0]), float64(normals[i][1]), float64(normals[i][2])}
	}
	if uvs != nil {
		// glTF puts the V origin at the top, the authoring convention is
		// bottom; the kn5 writer flips it back on the way out
		v.UV = mgl64.Vec2{float64(uvs[i][0]), 1.0 - float64(uvs[i][1])}
	}
	if tangents != nil {
		v.Tangent = mgl64.Vec3{float64(tangents[i][0]), float64(tangents[i][1]), float64(tangents[i][2])}
	}
	return v
}

func (l *gltfLoader) loadMaterial(index uint32) *Material {
	if mat, ok := l.materials[index]; ok {
		return mat
	}
	gm := l.doc.Materials[index]

	mat := &Material{
		Name:  gm.Name,
		Props: make(map[string]float64),
	}
	if mat.Name == "" {
		mat.Name = fmt.Sprintf("material_%d", index)
	}

	// Shader id and scalar shader properties travel as authoring-side
	// custom properties in the material extras.
	if extras, ok := gm.Extras.(map[string]interface{}); ok {
		if shader, ok := extras["ac_shader"].(string); ok {
			mat.Shader = shader
		}
		for key, value := range extras {
			if f, ok := value.(float64); ok && strings.HasPrefix(key, "ks") {
				mat.Props[key] = f
			}
		}
	}

	if gm.PBRMetallicRoughness != nil && gm.PBRMetallicRoughness.BaseColorTexture != nil {
		texture := l.doc.Textures[gm.PBRMetallicRoughness.BaseColorTexture.Index]
		if texture.Source != nil {
			mat.Texture = l.loadImage(*texture.Source)
		}
	}

	l.materials[index] = mat
	return mat
}

func (l *gltfLoader) loadImage(index uint32) *Texture {
	img := l.doc.Images[index]

	if img.BufferView != nil {
		bv := l.doc.BufferViews[*img.BufferView]
		raw := l.doc.Buffers[bv.Buffer].Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
		data := make([]byte, len(raw))
		copy(data, raw)

		name := img.Name
		if name == "" {
			name = fmt.Sprintf("texture_%d", index)
		}
		if filepath.Ext(name) == "" {
			name += extensionForMime(img.MimeType)
		}
		return &Texture{Name: name, Data: data}
	}

	if img.URI != "" && !strings.HasPrefix(img.URI, "data:") {
		return &Texture{
			Name: filepath.Base(img.URI),
			Path: filepath.Join(l.dir, img.URI),
		}
	}
	return nil
}

func extensionForMime(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	default:
		return ".png"
	}
}
