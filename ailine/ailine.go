// Package ailine generates and serializes the racing line file: a closed
// loop of centerline points with per-point speed, gas, brake and lateral
// offset profiles, derived from the road mesh geometry.
package ailine

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/ruggierom/ac_track_builder/utils"
)

const Version int32 = 7

const maxPointCount = 16 << 20

type Point struct {
	// engine axes
	Position mgl32.Vec3
	// cumulative arc length from point 0
	Distance float32
	ID       int32
}

// Line holds the point sequence plus four profile arrays aligned 1:1 with
// it. The loop is physically closed but stored open: the last point is
// adjacent to the first on track without an explicit link.
type Line struct {
	Points  []Point
	Speed   []float32 // m/s
	Gas     []float32 // 0..1
	Brake   []float32 // 0..1
	Lateral []float32 // reserved for manual tuning, always 0 here
}

// Length is the total arc length in meters.
func (l *Line) Length() float32 {
	if len(l.Points) == 0 {
		return 0
	}
	return l.Points[len(l.Points)-1].Distance
}

func (l *Line) Write(w io.Writer) error {
	for _, v := range []int32{Version, int32(len(l.Points)), 0, 0} {
		if err := utils.WriteInt32(w, v); err != nil {
			return err
		}
	}

	for _, p := range l.Points {
		for i := 0; i < 3; i++ {
			if err := utils.WriteFloat32(w, p.Position[i]); err != nil {
				return err
			}
		}
		if err := utils.WriteFloat32(w, p.Distance); err != nil {
			return err
		}
		if err := utils.WriteInt32(w, p.ID); err != nil {
			return err
		}
	}

	for _, section := range [][]float32{l.Speed, l.Gas, l.Brake, l.Lateral} {
		if err := utils.WriteInt32(w, int32(len(section))); err != nil {
			return err
		}
		for _, v := range section {
			if err := utils.WriteFloat32(w, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile creates parent directories and never leaves a partial file
// behind on error.
func (l *Line) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrapf(err, "Failed to create directory for %q", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Failed to create %q", path)
	}
	err = l.Write(f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func ReadFile(path string) (*Line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %q", path)
	}
	defer f.Close()
	return Read(f)
}

// Read parses a racing line file written by Write or any compliant tool.
func Read(r io.Reader) (*Line, error) {
	version, err := utils.ReadInt32(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read version")
	}
	if version != Version {
		return nil, errors.Errorf("Unsupported racing line version %d", version)
	}
	count, err := utils.ReadInt32(r)
	if err != nil {
		return nil, err
	}
	if count < 0 || count > maxPointCount {
		return nil, errors.Errorf("Unreasonable point count %d", count)
	}
	for i := 0; i < 2; i++ {
		if _, err := utils.ReadInt32(r); err != nil {
			return nil, err
		}
	}

	l := &Line{Points: make([]Point, count)}
	for i := range l.Points {
		p := &l.Points[i]
		for j := 0; j < 3; j++ {
			if p.Position[j], err = utils.ReadFloat32(r); err != nil {
				return nil, errors.Wrapf(err, "Failed to read point %d", i)
			}
		}
		if p.Distance, err = utils.ReadFloat32(r); err != nil {
			return nil, err
		}
		if p.ID, err = utils.ReadInt32(r); err != nil {
			return nil, err
		}
	}

	for _, section := range []*[]float32{&l.Speed, &l.Gas, &l.Brake, &l.Lateral} {
		n, err := utils.ReadInt32(r)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read section count")
		}
		if n != count {
			return nil, errors.Errorf("Section count %d does not match point count %d", n, count)
		}
		values := make([]float32, n)
		for i := range values {
			if values[i], err = utils.ReadFloat32(r); err != nil {
				return nil, err
			}
		}
		*section = values
	}
	return l, nil
}
