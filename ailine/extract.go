package ailine

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ruggierom/ac_track_builder/scene"
	"github.com/ruggierom/ac_track_builder/utils"
)

const (
	// moving average window for the speed profile
	smoothingWindow = 15
	// fraction of the speed deficit applied as brake input
	brakeScale = 0.3
	// curvature normalization percentile
	curvaturePercentile = 95.0
)

type Params struct {
	// cruising speed on straights, km/h (default 80)
	DefaultSpeed float64
	// floor for the tightest corners, km/h (default 40)
	MinCornerSpeed float64
	// name of the road surface mesh (default 1ROAD)
	RoadObject string
	// marker giving the start/finish position (default AC_START_0)
	StartMarker string
}

func (p *Params) applyDefaults() {
	if p.DefaultSpeed == 0 {
		p.DefaultSpeed = 80.0
	}
	if p.MinCornerSpeed == 0 {
		p.MinCornerSpeed = 40.0
	}
	if p.RoadObject == "" {
		p.RoadObject = "1ROAD"
	}
	if p.StartMarker == "" {
		p.StartMarker = scene.MarkerPrefix + "START_0"
	}
}

// TopologyError means the road mesh is not a clean ribbon: anything but
// exactly two boundary loops (inner and outer road edge) cannot yield a
// centerline.
type TopologyError struct {
	Road  string
	Loops int
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("road mesh %q has %d boundary loops, expected 2 (inner and outer road edge)", e.Road, e.Loops)
}

// Extract derives the racing line from the road mesh: chain the two
// boundary loops, average them into a centerline, normalize the driving
// direction to clockwise, rotate the start to the start/finish marker and
// derive the speed profile from curvature.
func Extract(sc *scene.Scene, p Params) (*Line, error) {
	p.applyDefaults()

	road := sc.MeshByName(p.RoadObject)
	if road == nil {
		return nil, errors.Errorf("Road mesh %q not found in scene", p.RoadObject)
	}

	loops := road.BoundaryLoops()
	logrus.Infof("road %q: %d boundary loops", p.RoadObject, len(loops))
	if len(loops) != 2 {
		return nil, &TopologyError{Road: p.RoadObject, Loops: len(loops)}
	}

	centerline := buildCenterline(loops[0], loops[1])

	if signedArea2D(centerline) > 0 {
		// counter-clockwise, flip to the clockwise driving direction
		reverse(centerline)
		logrus.Infof("centerline reversed to clockwise")
	}

	if marker := sc.MarkerByName(p.StartMarker); marker != nil {
		start := nearestIndex2D(centerline, marker.Position())
		rotate(centerline, start)
		logrus.Infof("start/finish aligned to %s at index %d", p.StartMarker, start)
	} else {
		logrus.Warnf("marker %q not found, racing line starts at an arbitrary point", p.StartMarker)
	}

	curvature := computeCurvature(centerline)
	speeds := computeSpeeds(curvature, p.DefaultSpeed, p.MinCornerSpeed)
	speeds = smooth(speeds, smoothingWindow)

	return buildLine(centerline, speeds), nil
}

// buildCenterline aligns the two boundary loops and averages corresponding
// points. Loops of different length are truncated to the shorter one.
func buildCenterline(a, b []mgl64.Vec3) []mgl64.Vec3 {
	if len(a) != len(b) {
		logrus.Warnf("boundary loop sizes differ: %d vs %d", len(a), len(b))
		n := len(a)
		if len(b) < n {
			n = len(b)
		}
		a = a[:n]
		b = b[:n]
	}

	b = append([]mgl64.Vec3(nil), b...)
	rotate(b, nearestIndex(b, a[0]))

	// if b runs the opposite way, its second point sits closer to a's
	// last point than to a's second point
	if len(a) > 1 {
		dFwd := a[1].Sub(b[1]).LenSqr()
		dBwd := a[1].Sub(b[len(b)-1]).LenSqr()
		if dBwd < dFwd {
			reverse(b)
			rotate(b, nearestIndex(b, a[0]))
		}
	}

	center := make([]mgl64.Vec3, len(a))
	for i := range a {
		center[i] = a[i].Add(b[i]).Mul(0.5)
	}
	return center
}

func nearestIndex(pts []mgl64.Vec3, target mgl64.Vec3) int {
	best := 0
	bestDist := math.Inf(1)
	for i, p := range pts {
		if d := p.Sub(target).LenSqr(); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// nearestIndex2D ignores height, markers float above the road surface.
func nearestIndex2D(pts []mgl64.Vec3, target mgl64.Vec3) int {
	best := 0
	bestDist := math.Inf(1)
	for i, p := range pts {
		dx := p.X() - target.X()
		dy := p.Y() - target.Y()
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

func rotate(pts []mgl64.Vec3, start int) {
	if start <= 0 || start >= len(pts) {
		return
	}
	out := make([]mgl64.Vec3, 0, len(pts))
	out = append(out, pts[start:]...)
	out = append(out, pts[:start]...)
	copy(pts, out)
}

func reverse(pts []mgl64.Vec3) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// signedArea2D is the shoelace sum over the XY projection, without the
// closing segment. Positive means counter-clockwise.
func signedArea2D(pts []mgl64.Vec3) float64 {
	area := 0.0
	for i := 0; i+1 < len(pts); i++ {
		area += pts[i].X()*pts[i+1].Y() - pts[i+1].X()*pts[i].Y()
	}
	return area
}

// computeCurvature measures turn sharpness at every point on the XY
// projection, wrapping around the loop: |cross(v1,v2)| / (|v1|*|v2|).
func computeCurvature(pts []mgl64.Vec3) []float64 {
	n := len(pts)
	curvature := make([]float64, n)
	for i := 0; i < n; i++ {
		p0 := pts[(i-1+n)%n]
		p1 := pts[i]
		p2 := pts[(i+1)%n]
		v1x, v1y := p1.X()-p0.X(), p1.Y()-p0.Y()
		v2x, v2y := p2.X()-p1.X(), p2.Y()-p1.Y()
		cross := math.Abs(v1x*v2y - v1y*v2x)
		l1 := math.Hypot(v1x, v1y)
		l2 := math.Hypot(v2x, v2y)
		if l1 > 0 && l2 > 0 {
			curvature[i] = cross / (l1 * l2)
		}
	}
	return curvature
}

// computeSpeeds maps normalized curvature onto the speed band
// [minSpeed, maxSpeed] (km/h). Curvature is normalized by its 95th
// percentile so a single kink does not flatten the whole profile.
func computeSpeeds(curvature []float64, maxSpeed, minSpeed float64) []float64 {
	norm := 1.0
	if maxOf(curvature) > 0 {
		norm = percentile(curvature, curvaturePercentile)
		if norm <= 0 {
			norm = maxOf(curvature)
		}
	}

	speeds := make([]float64, len(curvature))
	for i, c := range curvature {
		nc := c / norm
		if nc > 1 {
			nc = 1
		}
		speeds[i] = maxSpeed - nc*(maxSpeed-minSpeed)
	}
	return speeds
}

func maxOf(values []float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}

// percentile with linear interpolation between ranks.
func percentile(values []float64, pct float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := pct / 100.0 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// smooth is a centered moving average in the convolution's same-size mode:
// edge samples see fewer neighbors but keep the full divisor, so the ends
// of the array dip slightly. The profile wraps physically but not here.
func smooth(values []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(values))
	for i := range values {
		acc := 0.0
		for j := i - half; j <= i+half; j++ {
			if j >= 0 && j < len(values) {
				acc += values[j]
			}
		}
		out[i] = acc / float64(window)
	}
	return out
}

// buildLine converts the centerline to engine axes and packs the profile
// sections. Speeds arrive in km/h and are stored in m/s.
func buildLine(centerline []mgl64.Vec3, speeds []float64) *Line {
	n := len(centerline)
	l := &Line{
		Points:  make([]Point, n),
		Speed:   make([]float32, n),
		Gas:     make([]float32, n),
		Brake:   make([]float32, n),
		Lateral: make([]float32, n),
	}

	maxSpeed := maxOf(speeds)
	if maxSpeed <= 0 {
		maxSpeed = 1
	}

	dist := 0.0
	var prev mgl64.Vec3
	for i, c := range centerline {
		pos := utils.ToEngineVec(c)
		if i > 0 {
			dist += pos.Sub(prev).Len()
		}
		prev = pos

		l.Points[i] = Point{
			Position: mgl32.Vec3{float32(pos.X()), float32(pos.Y()), float32(pos.Z())},
			Distance: float32(dist),
			ID:       int32(i),
		}

		gas := speeds[i] / maxSpeed
		brake := 1.0 - gas
		if brake < 0 {
			brake = 0
		} else if brake > 1 {
			brake = 1
		}
		l.Speed[i] = float32(speeds[i] / 3.6)
		l.Gas[i] = float32(gas)
		l.Brake[i] = float32(brake * brakeScale)
	}
	return l
}
