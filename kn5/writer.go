package kn5

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/ruggierom/ac_track_builder/scene"
	"github.com/ruggierom/ac_track_builder/utils"
)

type ExportParams struct {
	// Root node name, usually the track directory name.
	Name string
	// 0 means CurrentVersion.
	Version int32
	// Half extent of marker box meshes, 0 means DefaultBoxHalfExtent.
	BoxHalfExtent float32
}

type ExportResult struct {
	Textures    int
	Materials   int
	MeshNodes   int
	MarkerNodes int
	// Warnings for files that were written anyway but need author
	// attention, like meshes past the 16 bit index ceiling.
	Warnings []string
}

// Export serializes the scene into the kn5 layout: header, textures,
// materials, then a node tree of one root dummy with all meshes and markers
// as direct children. Meshes and markers are visited in name order so the
// output is reproducible.
func Export(w io.Writer, sc *scene.Scene, p ExportParams) (*ExportResult, error) {
	f, res, err := Build(sc, p)
	if err != nil {
		return nil, err
	}
	if err := f.Write(w); err != nil {
		return nil, err
	}
	return res, nil
}

// ExportFile writes atomically enough for the pipeline: on error the
// partial file is removed so downstream stages never consume it.
func ExportFile(path string, sc *scene.Scene, p ExportParams) (*ExportResult, error) {
	fh, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create %q", path)
	}
	res, err := Export(fh, sc, p)
	if closeErr := fh.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}
	return res, nil
}

// Build assembles the in-memory File without serializing it.
func Build(sc *scene.Scene, p ExportParams) (*File, *ExportResult, error) {
	if p.Version == 0 {
		p.Version = CurrentVersion
	}
	if p.BoxHalfExtent == 0 {
		p.BoxHalfExtent = DefaultBoxHalfExtent
	}

	meshes := sc.SortedMeshes()
	markers := sc.SortedMarkers()

	res := &ExportResult{MeshNodes: len(meshes), MarkerNodes: len(markers)}

	materials, textures, matIDs := buildMaterials(meshes, res)
	res.Textures = len(textures)
	res.Materials = len(materials)

	root := &Node{
		Type:   NodeDummy,
		Name:   p.Name,
		Flag:   1,
		Matrix: identityMatrix(),
	}

	for _, obj := range meshes {
		matID := int32(0)
		if obj.Material != nil {
			if id, ok := matIDs[obj.Material.Name]; ok {
				matID = id
			}
		}
		mesh := buildMeshData(obj, matID, res)
		log.Printf("[kn5] mesh %q: %d vertices, %d indices, material %d",
			obj.Name, len(mesh.Vertices), len(mesh.Indices), matID)
		root.Children = append(root.Children, &Node{
			Type: NodeMesh,
			Name: obj.Name,
			Flag: 1,
			Mesh: mesh,
		})
	}

	box := BoxMesh(p.BoxHalfExtent)
	for _, marker := range markers {
		root.Children = append(root.Children, &Node{
			Type:   NodeDummy,
			Name:   marker.Name,
			Flag:   1,
			Matrix: utils.ToEngineMatrix(marker.Transform),
			Children: []*Node{{
				Type: NodeMesh,
				Name: marker.Name,
				Flag: 1,
				Mesh: box,
			}},
		})
	}

	f := &File{
		Version:   p.Version,
		Textures:  textures,
		Materials: materials,
		Root:      root,
	}
	return f, res, nil
}

// buildMaterials derives the material and texture tables from the first
// bound material of each mesh, deduplicating materials by name and
// embedding each texture at most once.
func buildMaterials(meshes []*scene.MeshObject, res *ExportResult) ([]*Material, []*Texture, map[string]int32) {
	materials := make([]*Material, 0)
	textures := make([]*Texture, 0)
	ids := make(map[string]int32)
	seenTex := make(map[string]bool)

	for _, obj := range meshes {
		src := obj.Material
		if src == nil {
			continue
		}
		if _, ok := ids[src.Name]; ok {
			continue
		}

		mat := &Material{
			Name:   src.Name,
			Shader: src.Shader,
		}
		if mat.Shader == "" {
			mat.Shader = DefaultShader
		}
		for _, def := range DefaultProperties {
			value := def.Value
			if v, ok := src.Props[def.Name]; ok {
				value = float32(v)
			}
			mat.Properties = append(mat.Properties, Property{Name: def.Name, Value: value})
		}

		if src.Texture != nil {
			data, err := src.Texture.Bytes()
			if err != nil {
				// missing texture degrades the material, it does not
				// abort the export
				log.Printf("[kn5] WARNING: texture %q for material %q: %v", src.Texture.Name, src.Name, err)
				res.Warnings = append(res.Warnings,
					fmt.Sprintf("texture %q for material %q unavailable", src.Texture.Name, src.Name))
			} else {
				mat.Samplers = append(mat.Samplers, Sampler{Name: "txDiffuse", Slot: 0, Texture: src.Texture.Name})
				if !seenTex[src.Texture.Name] {
					seenTex[src.Texture.Name] = true
					textures = append(textures, &Texture{Name: src.Texture.Name, Data: data})
				}
			}
		}

		ids[src.Name] = int32(len(materials))
		materials = append(materials, mat)
	}
	return materials, textures, ids
}

// buildMeshData bakes an authored mesh into file form: world transform
// applied, axes converted, V flipped, vertices deduplicated by
// (position, normal, uv). Tangents ride along but stay out of the dedup
// key, so distinct tangents on a shared corner collapse to the first one.
func buildMeshData(obj *scene.MeshObject, matID int32, res *ExportResult) *MeshData {
	normalMat := obj.Transform.Mat3().Inv().Transpose()
	rotMat := obj.Transform.Mat3()

	type dedupKey struct {
		pos    mgl64.Vec3
		normal mgl64.Vec3
		uv     mgl64.Vec2
	}

	m := &MeshData{
		CastShadows:  1,
		IsVisible:    1,
		IsRenderable: 1,
		MaterialID:   matID,
	}
	index := make(map[dedupKey]uint16)

	for _, c := range obj.Corners {
		pos := utils.RoundVec6(utils.ToEngineVec(obj.Transform.Mul4x1(c.Position.Vec4(1)).Vec3()))

		n := normalMat.Mul3x1(c.Normal)
		if n.Len() > 0 {
			n = n.Normalize()
		}
		n = utils.RoundVec6(utils.ToEngineVec(n))

		uv := mgl64.Vec2{utils.Round6(c.UV.X()), utils.Round6(1.0 - c.UV.Y())}

		t := rotMat.Mul3x1(c.Tangent)
		if t.Len() > 0 {
			t = t.Normalize()
		}
		t = utils.RoundVec6(utils.ToEngineVec(t))

		key := dedupKey{pos: pos, normal: n, uv: uv}
		idx, ok := index[key]
		if !ok {
			idx = uint16(len(m.Vertices))
			index[key] = idx
			m.Vertices = append(m.Vertices, Vertex{
				Position: vec3to32(pos),
				Normal:   vec3to32(n),
				UV:       mgl32.Vec2{float32(uv.X()), float32(uv.Y())},
				Tangent:  vec3to32(t),
			})
		}
		m.Indices = append(m.Indices, idx)
	}

	if len(m.Vertices) > MaxVertices {
		log.Printf("[kn5] WARNING: mesh %q has %d vertices (>%d), needs splitting", obj.Name, len(m.Vertices), MaxVertices)
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("mesh %q has %d vertices, over the 16 bit index limit", obj.Name, len(m.Vertices)))
	}

	m.BoundingCenter, m.BoundingRadius = boundingSphere(m.Vertices)
	return m
}

func vec3to32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v.X()), float32(v.Y()), float32(v.Z())}
}

// boundingSphere centers on the axis aligned bounding box and takes the
// max distance to any vertex as the radius.
func boundingSphere(verts []Vertex) (mgl32.Vec3, float32) {
	if len(verts) == 0 {
		return mgl32.Vec3{}, 0
	}
	min := verts[0].Position
	max := verts[0].Position
	for _, v := range verts[1:] {
		for i := 0; i < 3; i++ {
			if v.Position[i] < min[i] {
				min[i] = v.Position[i]
			}
			if v.Position[i] > max[i] {
				max[i] = v.Position[i]
			}
		}
	}
	center := min.Add(max).Mul(0.5)
	var radius float32
	for _, v := range verts {
		if d := v.Position.Sub(center).Len(); d > radius {
			radius = d
		}
	}
	return center, radius
}

func identityMatrix() (m [4][4]float32) {
	for i := 0; i < 4; i++ {
		m[i][i] = 1
	}
	return m
}

func (f *File) Write(w io.Writer) error {
	if _, err := w.Write([]byte(Magic)); err != nil {
		return err
	}
	if err := utils.WriteInt32(w, f.Version); err != nil {
		return err
	}
	if f.Version > 5 {
		if err := utils.WriteInt32(w, 0); err != nil {
			return err
		}
	}

	if err := utils.WriteInt32(w, int32(len(f.Textures))); err != nil {
		return err
	}
	for _, t := range f.Textures {
		if err := utils.WriteInt32(w, 1); err != nil {
			return err
		}
		if err := utils.WriteString(w, t.Name); err != nil {
			return err
		}
		if err := utils.WriteInt32(w, int32(len(t.Data))); err != nil {
			return err
		}
		if _, err := w.Write(t.Data); err != nil {
			return err
		}
	}

	if err := utils.WriteInt32(w, int32(len(f.Materials))); err != nil {
		return err
	}
	for _, m := range f.Materials {
		if err := f.writeMaterial(w, m); err != nil {
			return errors.Wrapf(err, "Failed to write material %q", m.Name)
		}
	}

	return f.writeNode(w, f.Root)
}

func (f *File) writeMaterial(w io.Writer, m *Material) error {
	if err := utils.WriteString(w, m.Name); err != nil {
		return err
	}
	if err := utils.WriteString(w, m.Shader); err != nil {
		return err
	}
	if _, err := w.Write([]byte{0, 0}); err != nil {
		return err
	}
	if f.Version > 4 {
		if err := utils.WriteInt32(w, 0); err != nil {
			return err
		}
	}

	if err := utils.WriteInt32(w, int32(len(m.Properties))); err != nil {
		return err
	}
	var padding [36]byte
	for _, p := range m.Properties {
		if err := utils.WriteString(w, p.Name); err != nil {
			return err
		}
		if err := utils.WriteFloat32(w, p.Value); err != nil {
			return err
		}
		if _, err := w.Write(padding[:]); err != nil {
			return err
		}
	}

	if err := utils.WriteInt32(w, int32(len(m.Samplers))); err != nil {
		return err
	}
	for _, s := range m.Samplers {
		if err := utils.WriteString(w, s.Name); err != nil {
			return err
		}
		if err := utils.WriteInt32(w, s.Slot); err != nil {
			return err
		}
		if err := utils.WriteString(w, s.Texture); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) writeNode(w io.Writer, n *Node) error {
	if err := utils.WriteInt32(w, n.Type); err != nil {
		return err
	}
	if err := utils.WriteString(w, n.Name); err != nil {
		return err
	}
	if err := utils.WriteInt32(w, int32(len(n.Children))); err != nil {
		return err
	}
	if err := utils.WriteByte(w, n.Flag); err != nil {
		return err
	}

	switch n.Type {
	case NodeDummy:
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				if err := utils.WriteFloat32(w, n.Matrix[r][c]); err != nil {
					return err
				}
			}
		}
	case NodeMesh:
		if err := f.writeMeshData(w, n.Mesh); err != nil {
			return errors.Wrapf(err, "Failed to write mesh %q", n.Name)
		}
	default:
		return errors.Errorf("Unsupported node type %d for node %q", n.Type, n.Name)
	}

	for _, c := range n.Children {
		if err := f.writeNode(w, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *File) writeMeshData(w io.Writer, m *MeshData) error {
	if _, err := w.Write([]byte{m.CastShadows, m.IsVisible, m.IsTransparent}); err != nil {
		return err
	}

	if err := utils.WriteInt32(w, int32(len(m.Vertices))); err != nil {
		return err
	}
	for _, v := range m.Vertices {
		for _, f32 := range []float32{
			v.Position.X(), v.Position.Y(), v.Position.Z(),
			v.Normal.X(), v.Normal.Y(), v.Normal.Z(),
			v.UV.X(), v.UV.Y(),
			v.Tangent.X(), v.Tangent.Y(), v.Tangent.Z(),
		} {
			if err := utils.WriteFloat32(w, f32); err != nil {
				return err
			}
		}
	}

	if err := utils.WriteInt32(w, int32(len(m.Indices))); err != nil {
		return err
	}
	for _, i := range m.Indices {
		if err := utils.WriteUint16(w, i); err != nil {
			return err
		}
	}

	if err := utils.WriteInt32(w, m.MaterialID); err != nil {
		return err
	}
	if err := utils.WriteInt32(w, m.Layer); err != nil {
		return err
	}
	if err := utils.WriteFloat32(w, m.LodIn); err != nil {
		return err
	}
	if err := utils.WriteFloat32(w, m.LodOut); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if err := utils.WriteFloat32(w, m.BoundingCenter[i]); err != nil {
			return err
		}
	}
	if err := utils.WriteFloat32(w, m.BoundingRadius); err != nil {
		return err
	}
	return utils.WriteByte(w, m.IsRenderable)
}
