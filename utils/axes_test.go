package utils

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestToEngineVec(t *testing.T) {
	tests := []struct {
		in, want mgl64.Vec3
	}{
		{mgl64.Vec3{1, 2, 3}, mgl64.Vec3{1, 3, -2}},
		{mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 0, 0}},
		{mgl64.Vec3{-1, 5, -2}, mgl64.Vec3{-1, -2, -5}},
	}
	for _, tc := range tests {
		if got := ToEngineVec(tc.in); got != tc.want {
			t.Errorf("ToEngineVec(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

// A pure translation keeps the basis change in the rotation block and stores
// the converted translation in the last row.
func TestToEngineMatrixTranslation(t *testing.T) {
	out := ToEngineMatrix(mgl64.Translate3D(1, 2, 3))

	want := [4][4]float32{
		{1, 0, 0, 0},
		{0, 0, -1, 0},
		{0, 1, 0, 0},
		{1, 3, -2, 1},
	}
	if out != want {
		t.Errorf("got %v, want %v", out, want)
	}
}

// The matrix conversion must agree with the vector conversion: applying the
// converted matrix to an authoring space point as a row vector gives the
// same result as transforming first and converting the world position.
func TestToEngineMatrixMatchesVec(t *testing.T) {
	m := mgl64.Translate3D(4, -2, 7).Mul4(mgl64.HomogRotate3DZ(0.7)).Mul4(mgl64.Scale3D(2, 2, 2))
	out := ToEngineMatrix(m)

	p := mgl64.Vec3{1.5, -3, 0.25}
	want := ToEngineVec(m.Mul4x1(p.Vec4(1)).Vec3())

	var got [3]float64
	for c := 0; c < 3; c++ {
		got[c] = p.X()*float64(out[0][c]) +
			p.Y()*float64(out[1][c]) +
			p.Z()*float64(out[2][c]) +
			float64(out[3][c])
	}
	for i := 0; i < 3; i++ {
		if math.Abs(got[i]-want[i]) > 1e-5 {
			t.Errorf("component %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRound6(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{1.0000004, 1.0},
		{1.0000006, 1.000001},
		{-2.5000004, -2.5},
		{0, 0},
	}
	for _, tc := range tests {
		if got := Round6(tc.in); got != tc.want {
			t.Errorf("Round6(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRoundVec6CollapsesNoise(t *testing.T) {
	a := RoundVec6(mgl64.Vec3{1.0000001, 2.0000002, 2.9999999})
	b := RoundVec6(mgl64.Vec3{1.0000002, 2.0000001, 3.0000001})
	if a != b {
		t.Errorf("%v != %v after rounding", a, b)
	}
}
