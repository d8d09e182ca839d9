package scene

import (
	"math"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

// One quad road mesh with a material plus a start marker node, assembled the
// way an authoring-tool export comes out.
func quadDocument() *gltf.Document {
	doc := gltf.NewDocument()

	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}}
	normals := [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}}
	uvs := [][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	attributes := make(map[string]uint32)
	attributes["POSITION"] = modeler.WritePosition(doc, positions)
	attributes["NORMAL"] = modeler.WriteNormal(doc, normals)
	attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)
	indicesAccessor := modeler.WriteIndices(doc, indices)

	doc.Materials = append(doc.Materials, &gltf.Material{
		Name: "asphalt",
		Extras: map[string]interface{}{
			"ac_shader": "ksPerPixelNM",
			"ksAmbient": 0.9,
			"note":      "not a shader property",
		},
	})

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "1ROAD",
		Primitives: []*gltf.Primitive{{
			Indices:    &indicesAccessor,
			Attributes: attributes,
			Material:   gltf.Index(0),
		}},
	})

	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes,
		uint32(len(doc.Nodes)), uint32(len(doc.Nodes))+1)
	doc.Nodes = append(doc.Nodes,
		&gltf.Node{Name: "1ROAD", Mesh: gltf.Index(0)},
		&gltf.Node{Name: "AC_START_0", Translation: [3]float32{4, 5, 6}},
	)
	return doc
}

func TestFromDocument(t *testing.T) {
	s, err := FromDocument(quadDocument(), "")
	if err != nil {
		t.Fatal(err)
	}

	if len(s.Meshes) != 1 {
		t.Fatalf("got %d meshes", len(s.Meshes))
	}
	road := s.Meshes[0]
	if road.Name != "1ROAD" {
		t.Errorf("mesh name = %q", road.Name)
	}
	if len(road.Triangles) != 2 || len(road.Corners) != 6 {
		t.Fatalf("got %d triangles, %d corners, want 2 and 6", len(road.Triangles), len(road.Corners))
	}
	if len(road.Positions) != 4 {
		t.Errorf("got %d welded positions, want 4", len(road.Positions))
	}

	// corner attribute layout follows the index list
	c := road.Corners[2] // index 2 -> position (1,1,0)
	if c.Position != [3]float64{1, 1, 0} {
		t.Errorf("corner 2 position = %v", c.Position)
	}
	if c.Normal != [3]float64{0, 0, 1} {
		t.Errorf("corner 2 normal = %v", c.Normal)
	}
	// glTF top-origin (1,0) arrives as authoring bottom-origin (1,1)
	if math.Abs(c.UV.X()-1) > 1e-9 || math.Abs(c.UV.Y()-1) > 1e-9 {
		t.Errorf("corner 2 uv = %v, want {1 1}", c.UV)
	}

	if road.Material == nil {
		t.Fatal("material not loaded")
	}
	if road.Material.Shader != "ksPerPixelNM" {
		t.Errorf("shader = %q", road.Material.Shader)
	}
	if v, ok := road.Material.Props["ksAmbient"]; !ok || v != 0.9 {
		t.Errorf("ksAmbient = %v, %v", v, ok)
	}
	if _, ok := road.Material.Props["note"]; ok {
		t.Error("non ks* extras leaked into shader properties")
	}

	if len(s.Markers) != 1 {
		t.Fatalf("got %d markers", len(s.Markers))
	}
	if pos := s.Markers[0].Position(); pos != [3]float64{4, 5, 6} {
		t.Errorf("marker position = %v", pos)
	}
}

// Exporters split vertices at attribute seams; the welded topology view must
// still see one connected surface.
func TestFromDocumentWeldsSeams(t *testing.T) {
	doc := gltf.NewDocument()

	// two triangles of a quad as disconnected corner triples with a uv seam
	positions := [][3]float32{
		{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
		{0, 0, 0}, {1, 1, 0}, {0, 1, 0},
	}
	uvs := [][2]float32{
		{0, 0}, {0.5, 0}, {0.5, 1},
		{0.5, 0}, {1, 0}, {1, 1},
	}

	attributes := make(map[string]uint32)
	attributes["POSITION"] = modeler.WritePosition(doc, positions)
	attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, uvs)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Primitives: []*gltf.Primitive{{Attributes: attributes}},
	})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(len(doc.Nodes)))
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "1ROAD", Mesh: gltf.Index(0)})

	s, err := FromDocument(doc, "")
	if err != nil {
		t.Fatal(err)
	}
	road := s.Meshes[0]
	if len(road.Positions) != 4 {
		t.Fatalf("got %d welded positions, want 4", len(road.Positions))
	}
	if len(road.Corners) != 6 {
		t.Errorf("got %d corners, want all 6 kept", len(road.Corners))
	}

	// welding makes the shared diagonal an interior edge
	loops := road.BoundaryLoops()
	if len(loops) != 1 {
		t.Fatalf("got %d boundary loops, want 1", len(loops))
	}
	if len(loops[0]) != 4 {
		t.Errorf("boundary loop has %d points, want 4", len(loops[0]))
	}
}
