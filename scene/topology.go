package scene

import (
	"github.com/go-gl/mathgl/mgl64"
)

type edge struct {
	a, b int
}

func makeEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// BoundaryLoops chains the edges used by exactly one triangle into loops of
// world space points. For a well formed road ribbon this yields exactly two
// loops, the inner and the outer edge of the road. Degenerate chains of two
// points or less are dropped.
func (m *MeshObject) BoundaryLoops() [][]mgl64.Vec3 {
	uses := make(map[edge]int)
	order := make([]edge, 0, len(m.Triangles)*3)
	for _, tri := range m.Triangles {
		for k := 0; k < 3; k++ {
			e := makeEdge(tri[k], tri[(k+1)%3])
			if _, seen := uses[e]; !seen {
				order = append(order, e)
			}
			uses[e]++
		}
	}

	boundary := make([]edge, 0, len(order))
	for _, e := range order {
		if uses[e] == 1 {
			boundary = append(boundary, e)
		}
	}

	// vertex -> indices into boundary, in discovery order
	link := make(map[int][]int)
	for i, e := range boundary {
		link[e.a] = append(link[e.a], i)
		link[e.b] = append(link[e.b], i)
	}

	visited := make([]bool, len(boundary))
	loops := make([][]mgl64.Vec3, 0, 2)

	for start := range boundary {
		if visited[start] {
			continue
		}
		loop := make([]mgl64.Vec3, 0)
		current := start
		v := boundary[start].a
		for !visited[current] {
			visited[current] = true
			loop = append(loop, m.WorldPosition(v))
			other := boundary[current].a
			if other == v {
				other = boundary[current].b
			}
			next := -1
			for _, i := range link[other] {
				if !visited[i] {
					next = i
					break
				}
			}
			if next < 0 {
				break
			}
			v = other
			current = next
		}
		if len(loop) > 2 {
			loops = append(loops, loop)
		}
	}

	return loops
}
