// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hemesh

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuickHullTetrahedron(t *testing.T) {

	m := NewMesh()
	m.AddVertex(mgl32.Vec3{0, 0, 0})
	m.AddVertex(mgl32.Vec3{1, 0, 0})
	m.AddVertex(mgl32.Vec3{0, 1, 0})
	m.AddVertex(mgl32.Vec3{0, 0, 1})

	qh := NewQuickHull(0.0001)
	qh.Calculate(m)

	hull := qh.Mesh()
	assert.Equal(t, 4, hull.Vertices.Len())
	assert.Equal(t, 4, hull.Faces.Len())
	assertOutwardNormals(t, hull, qh.Normals())
}

func TestQuickHullCubeWithInteriorPoints(t *testing.T) {

	m, _ := buildCube(t)
	// Interior points must not appear in the hull
	m.AddVertex(mgl32.Vec3{0, 0, 0})
	m.AddVertex(mgl32.Vec3{0.1, 0.2, -0.1})
	m.AddVertex(mgl32.Vec3{-0.3, 0.1, 0.3})

	qh := NewQuickHull(0.0001)
	qh.Calculate(m)

	hull := qh.Mesh()
	assert.Equal(t, 8, hull.Vertices.Len())
	// Coplanar triangles merge back into the 6 cube faces
	assert.Equal(t, 6, hull.Faces.Len())
	assertOutwardNormals(t, hull, qh.Normals())

	// Every hull vertex is a cube corner
	hull.Vertices.Each(func(i int, v *Vertex) bool {
		for axis := 0; axis < 3; axis++ {
			assert.InDelta(t, 0.5, float64(abs32(v.Position[axis])), 1e-5)
		}
		return true
	})
}

func TestQuickHullPlanarFallback(t *testing.T) {

	m := NewMesh()
	m.AddVertex(mgl32.Vec3{0, 0, 0})
	m.AddVertex(mgl32.Vec3{2, 0, 0})
	m.AddVertex(mgl32.Vec3{2, 0, 2})
	m.AddVertex(mgl32.Vec3{0, 0, 2})
	m.AddVertex(mgl32.Vec3{1, 0, 1}) // interior

	qh := NewQuickHull(0.0001)
	qh.Calculate(m)

	hull := qh.Mesh()
	assert.Equal(t, 4, hull.Vertices.Len())
	// A double-sided polygon
	assert.Equal(t, 2, hull.Faces.Len())
}

func assertOutwardNormals(t *testing.T, hull *Mesh, normals map[int]mgl32.Vec3) {
	t.Helper()

	// Centroid of the hull vertices
	var centroid mgl32.Vec3
	count := 0
	hull.Vertices.Each(func(i int, v *Vertex) bool {
		centroid = centroid.Add(v.Position)
		count++
		return true
	})
	require.NotZero(t, count)
	centroid = centroid.Mul(1 / float32(count))

	hull.Faces.Each(func(iFace int, f *Face) bool {
		facePoint := hull.Vertices.At(hull.Edges.At(f.Edge).Vertex).Position
		assert.Greater(t, facePoint.Sub(centroid).Dot(normals[iFace]), float32(0),
			"face %d normal should point away from the centroid", iFace)
		return true
	})
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestHACDConvexInputSingleSurface(t *testing.T) {

	m, _ := buildCube(t)
	h := NewHACD(0.1, 0.0001)
	h.Calculate(m)

	// A convex mesh decomposes into a single surface with all 12 triangles
	surfaces := h.Surfaces()
	require.Len(t, surfaces, 1)
	assert.Equal(t, 12, surfaces[0].Faces.Len())
	assert.Equal(t, 8, surfaces[0].Vertices.Len())
}

func TestHACDDentedCube(t *testing.T) {

	// A unit cube whose top face is replaced by a pyramidal dent: four
	// triangles sloping from the top edges down to an interior apex
	m := NewMesh()
	positions := []mgl32.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5},
		{-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	}
	v := make([]int, len(positions))
	for i := range positions {
		v[i] = m.AddVertex(positions[i])
	}
	apex := m.AddVertex(mgl32.Vec3{0, 0.2, 0})

	m.AddFace([]int{v[0], v[1], v[2], v[3]}) // bottom
	m.AddFace([]int{v[4], v[5], v[1], v[0]}) // back
	m.AddFace([]int{v[6], v[7], v[3], v[2]}) // front
	m.AddFace([]int{v[5], v[6], v[2], v[1]}) // right
	m.AddFace([]int{v[7], v[4], v[0], v[3]}) // left
	// Dent walls
	m.AddFace([]int{v[5], v[4], apex})
	m.AddFace([]int{v[6], v[5], apex})
	m.AddFace([]int{v[7], v[6], apex})
	m.AddFace([]int{v[4], v[7], apex})

	h := NewHACD(0.1, 0.0001)
	h.Calculate(m)

	// The dent apex keeps the mesh from collapsing into a single
	// convex piece
	surfaces := h.Surfaces()
	require.NotEmpty(t, surfaces)
	assert.Greater(t, len(surfaces), 1)

	// Every input triangle ends up in exactly one surface
	total := 0
	for _, surface := range surfaces {
		total += surface.Faces.Len()
	}
	assert.Equal(t, Triangulate(m).Faces.Len(), total)
}
