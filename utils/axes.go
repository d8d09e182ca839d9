package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// The authoring tool is Z-up right-handed, the engine is Y-up with Z flipped.
// Both the scene exporter and the racing line generator go through these two
// functions so the conventions cannot drift apart.

// ToEngineVec maps an authoring space vector to engine space: (x,y,z) -> (x,z,-y).
func ToEngineVec(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X(), v.Z(), -v.Y()}
}

// ToEngineMatrix converts an authoring world matrix to the engine's storage
// convention. The change of basis swaps rows 1 and 2 (negating the swapped-in
// row), matching ToEngineVec at the matrix level; the result is then
// transposed because the engine stores matrices row-major with the
// translation in the last row.
func ToEngineMatrix(m mgl64.Mat4) (out [4][4]float32) {
	var ct [4][4]float64
	for c := 0; c < 4; c++ {
		ct[0][c] = m.At(0, c)
		ct[1][c] = m.At(2, c)
		ct[2][c] = -m.At(1, c)
		ct[3][c] = m.At(3, c)
	}
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][c] = float32(ct[c][r])
		}
	}
	return out
}

// Round6 quantizes a coordinate to 6 decimals so that vertex deduplication
// is not defeated by float noise from the transform chain.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func RoundVec6(v mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{Round6(v.X()), Round6(v.Y()), Round6(v.Z())}
}
