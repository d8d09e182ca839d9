package kn5

import (
	"bytes"
	"io"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/ruggierom/ac_track_builder/utils"
)

// Counts past these are assumed to be corruption, not real content.
const (
	maxTextureBytes = 1 << 30
	maxElementCount = 16 << 20
)

func ReadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read %q", path)
	}
	return Read(bytes.NewReader(data))
}

// Read parses a kn5 stream. The format has no type-skip capability: every
// field of every node must be decoded and exactly as many children as
// declared must follow, so any miscount or unknown node type surfaces as a
// FormatError carrying the byte offset where decoding stopped making sense.
func Read(r io.Reader) (*File, error) {
	d := &decoder{r: r}
	f, err := d.file()
	if err != nil {
		return nil, &FormatError{Offset: d.off, Err: err}
	}
	return f, nil
}

type decoder struct {
	r   io.Reader
	off int64
}

func (d *decoder) Read(p []byte) (int, error) {
	n, err := d.r.Read(p)
	d.off += int64(n)
	return n, err
}

func (d *decoder) file() (*File, error) {
	var magic [6]byte
	if _, err := io.ReadFull(d, magic[:]); err != nil {
		return nil, errors.Wrapf(err, "Failed to read magic")
	}
	if string(magic[:]) != Magic {
		return nil, errors.Errorf("Bad magic %q", magic)
	}

	f := &File{}
	var err error
	if f.Version, err = utils.ReadInt32(d); err != nil {
		return nil, errors.Wrapf(err, "Failed to read version")
	}
	if f.Version > 5 {
		if err := utils.Skip(d, 4); err != nil {
			return nil, err
		}
	}

	if err := d.textures(f); err != nil {
		return nil, err
	}
	if err := d.materials(f); err != nil {
		return nil, err
	}

	if f.Root, err = d.node(); err != nil {
		return nil, err
	}
	return f, nil
}

func (d *decoder) textures(f *File) error {
	count, err := utils.ReadInt32(d)
	if err != nil {
		return errors.Wrapf(err, "Failed to read texture count")
	}
	if count < 0 || count > maxElementCount {
		return errors.Errorf("Unreasonable texture count %d", count)
	}
	for i := int32(0); i < count; i++ {
		texType, err := utils.ReadInt32(d)
		if err != nil {
			return err
		}
		name, err := utils.ReadString(d)
		if err != nil {
			return errors.Wrapf(err, "Failed to read texture %d name", i)
		}
		size, err := utils.ReadInt32(d)
		if err != nil {
			return err
		}
		if size < 0 || size > maxTextureBytes {
			return errors.Errorf("Unreasonable texture %q size %d", name, size)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(d, data); err != nil {
			return errors.Wrapf(err, "Failed to read texture %q data", name)
		}
		if texType == 1 {
			f.Textures = append(f.Textures, &Texture{Name: name, Data: data})
		}
	}
	return nil
}

func (d *decoder) materials(f *File) error {
	count, err := utils.ReadInt32(d)
	if err != nil {
		return errors.Wrapf(err, "Failed to read material count")
	}
	if count < 0 || count > maxElementCount {
		return errors.Errorf("Unreasonable material count %d", count)
	}
	for i := int32(0); i < count; i++ {
		m := &Material{}
		if m.Name, err = utils.ReadString(d); err != nil {
			return errors.Wrapf(err, "Failed to read material %d name", i)
		}
		if m.Shader, err = utils.ReadString(d); err != nil {
			return errors.Wrapf(err, "Failed to read material %q shader", m.Name)
		}
		if err := utils.Skip(d, 2); err != nil {
			return err
		}
		if f.Version > 4 {
			if err := utils.Skip(d, 4); err != nil {
				return err
			}
		}

		propCount, err := utils.ReadInt32(d)
		if err != nil {
			return err
		}
		if propCount < 0 || propCount > maxElementCount {
			return errors.Errorf("Unreasonable property count %d in material %q", propCount, m.Name)
		}
		for j := int32(0); j < propCount; j++ {
			var p Property
			if p.Name, err = utils.ReadString(d); err != nil {
				return errors.Wrapf(err, "Failed to read property %d of material %q", j, m.Name)
			}
			if p.Value, err = utils.ReadFloat32(d); err != nil {
				return err
			}
			if err := utils.Skip(d, 36); err != nil {
				return err
			}
			m.Properties = append(m.Properties, p)
		}

		samplerCount, err := utils.ReadInt32(d)
		if err != nil {
			return err
		}
		if samplerCount < 0 || samplerCount > maxElementCount {
			return errors.Errorf("Unreasonable sampler count %d in material %q", samplerCount, m.Name)
		}
		for j := int32(0); j < samplerCount; j++ {
			var s Sampler
			if s.Name, err = utils.ReadString(d); err != nil {
				return errors.Wrapf(err, "Failed to read sampler %d of material %q", j, m.Name)
			}
			if s.Slot, err = utils.ReadInt32(d); err != nil {
				return err
			}
			if s.Texture, err = utils.ReadString(d); err != nil {
				return err
			}
			m.Samplers = append(m.Samplers, s)
		}

		f.Materials = append(f.Materials, m)
	}
	return nil
}

func (d *decoder) node() (*Node, error) {
	n := &Node{}
	var err error
	if n.Type, err = utils.ReadInt32(d); err != nil {
		return nil, errors.Wrapf(err, "Failed to read node type")
	}
	if n.Name, err = utils.ReadString(d); err != nil {
		return nil, errors.Wrapf(err, "Failed to read node name")
	}
	childCount, err := utils.ReadInt32(d)
	if err != nil {
		return nil, err
	}
	if childCount < 0 || childCount > maxElementCount {
		return nil, errors.Errorf("Unreasonable child count %d in node %q", childCount, n.Name)
	}
	if n.Flag, err = utils.ReadByte(d); err != nil {
		return nil, err
	}

	switch n.Type {
	case NodeDummy:
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				if n.Matrix[r][c], err = utils.ReadFloat32(d); err != nil {
					return nil, errors.Wrapf(err, "Failed to read matrix of node %q", n.Name)
				}
			}
		}
	case NodeMesh:
		if n.Mesh, err = d.meshData(n.Name); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("Unsupported node type %d for node %q", n.Type, n.Name)
	}

	for i := int32(0); i < childCount; i++ {
		child, err := d.node()
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, child)
	}
	return n, nil
}

func (d *decoder) meshData(name string) (*MeshData, error) {
	m := &MeshData{}
	var flags [3]byte
	if _, err := io.ReadFull(d, flags[:]); err != nil {
		return nil, err
	}
	m.CastShadows, m.IsVisible, m.IsTransparent = flags[0], flags[1], flags[2]

	vertCount, err := utils.ReadInt32(d)
	if err != nil {
		return nil, err
	}
	if vertCount < 0 || vertCount > maxElementCount {
		return nil, errors.Errorf("Unreasonable vertex count %d in mesh %q", vertCount, name)
	}
	m.Vertices = make([]Vertex, vertCount)
	for i := range m.Vertices {
		fields := []*float32{
			&m.Vertices[i].Position[0], &m.Vertices[i].Position[1], &m.Vertices[i].Position[2],
			&m.Vertices[i].Normal[0], &m.Vertices[i].Normal[1], &m.Vertices[i].Normal[2],
			&m.Vertices[i].UV[0], &m.Vertices[i].UV[1],
			&m.Vertices[i].Tangent[0], &m.Vertices[i].Tangent[1], &m.Vertices[i].Tangent[2],
		}
		for _, fp := range fields {
			if *fp, err = utils.ReadFloat32(d); err != nil {
				return nil, errors.Wrapf(err, "Failed to read vertex %d of mesh %q", i, name)
			}
		}
	}

	indexCount, err := utils.ReadInt32(d)
	if err != nil {
		return nil, err
	}
	if indexCount < 0 || indexCount > maxElementCount {
		return nil, errors.Errorf("Unreasonable index count %d in mesh %q", indexCount, name)
	}
	m.Indices = make([]uint16, indexCount)
	for i := range m.Indices {
		if m.Indices[i], err = utils.ReadUint16(d); err != nil {
			return nil, errors.Wrapf(err, "Failed to read index %d of mesh %q", i, name)
		}
	}

	if m.MaterialID, err = utils.ReadInt32(d); err != nil {
		return nil, err
	}
	if m.Layer, err = utils.ReadInt32(d); err != nil {
		return nil, err
	}
	if m.LodIn, err = utils.ReadFloat32(d); err != nil {
		return nil, err
	}
	if m.LodOut, err = utils.ReadFloat32(d); err != nil {
		return nil, err
	}
	var center mgl32.Vec3
	for i := 0; i < 3; i++ {
		if center[i], err = utils.ReadFloat32(d); err != nil {
			return nil, err
		}
	}
	m.BoundingCenter = center
	if m.BoundingRadius, err = utils.ReadFloat32(d); err != nil {
		return nil, err
	}
	if m.IsRenderable, err = utils.ReadByte(d); err != nil {
		return nil, err
	}
	return m, nil
}
