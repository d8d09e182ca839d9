package ailine

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/ruggierom/ac_track_builder/utils"
)

func sampleLine() *Line {
	l := &Line{}
	for i := 0; i < 4; i++ {
		l.Points = append(l.Points, Point{
			Position: [3]float32{float32(i), 0, float32(-i)},
			Distance: float32(i) * 10,
			ID:       int32(i),
		})
		l.Speed = append(l.Speed, 20+float32(i))
		l.Gas = append(l.Gas, 1)
		l.Brake = append(l.Brake, 0)
		l.Lateral = append(l.Lateral, 0)
	}
	return l
}

func TestLineRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleLine().Write(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	want := sampleLine()
	if len(got.Points) != len(want.Points) {
		t.Fatalf("got %d points, want %d", len(got.Points), len(want.Points))
	}
	for i := range want.Points {
		if got.Points[i] != want.Points[i] {
			t.Errorf("point %d = %+v, want %+v", i, got.Points[i], want.Points[i])
		}
		if got.Speed[i] != want.Speed[i] || got.Gas[i] != want.Gas[i] ||
			got.Brake[i] != want.Brake[i] || got.Lateral[i] != want.Lateral[i] {
			t.Errorf("profile %d differs", i)
		}
	}
}

func TestLineHeaderLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleLine().Write(&buf); err != nil {
		t.Fatal(err)
	}
	r := bytes.NewReader(buf.Bytes())
	header := make([]int32, 4)
	for i := range header {
		v, err := utils.ReadInt32(r)
		if err != nil {
			t.Fatal(err)
		}
		header[i] = v
	}
	if header[0] != Version || header[1] != 4 || header[2] != 0 || header[3] != 0 {
		t.Errorf("header = %v, want [%d 4 0 0]", header, Version)
	}

	// 4 points of 20 bytes, then 4 sections of 4 + 4*4 bytes
	want := 16 + 4*20 + 4*(4+16)
	if buf.Len() != want {
		t.Errorf("file size = %d, want %d", buf.Len(), want)
	}
}

func TestReadRejectsWrongVersion(t *testing.T) {
	var buf bytes.Buffer
	for _, v := range []int32{6, 4, 0, 0} {
		utils.WriteInt32(&buf, v)
	}
	if _, err := Read(&buf); err == nil {
		t.Error("expected error on version 6")
	}
}

func TestReadRejectsSectionMismatch(t *testing.T) {
	var buf bytes.Buffer
	l := sampleLine()
	l.Gas = l.Gas[:2]
	if err := l.Write(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(&buf); err == nil {
		t.Error("expected error on gas section shorter than the point list")
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ai", "fast_lane.ai")
	if err := sampleLine().WriteFile(path); err != nil {
		t.Fatal(err)
	}
	l, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Points) != 4 {
		t.Errorf("got %d points", len(l.Points))
	}
}

func TestLength(t *testing.T) {
	if got := sampleLine().Length(); got != 30 {
		t.Errorf("Length() = %v, want 30", got)
	}
	empty := &Line{}
	if got := empty.Length(); got != 0 {
		t.Errorf("empty Length() = %v, want 0", got)
	}
}
