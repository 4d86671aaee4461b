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

// buildCube returns a mesh with the 8 corners of an axis aligned cube and
// its 6 quad faces.
func buildCube(t *testing.T) (*Mesh, []int) {
	t.Helper()

	m := NewMesh()
	positions := []mgl32.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5},
		{-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	}
	vertices := make([]int, len(positions))
	for i, p := range positions {
		vertices[i] = m.AddVertex(p)
	}

	faces := [][]int{
		{0, 1, 2, 3}, // bottom (-y)
		{7, 6, 5, 4}, // top (+y)
		{4, 5, 1, 0}, // back (-z)
		{6, 7, 3, 2}, // front (+z)
		{5, 6, 2, 1}, // right (+x)
		{7, 4, 0, 3}, // left (-x)
	}
	for _, loop := range faces {
		iFace := m.AddFace([]int{vertices[loop[0]], vertices[loop[1]], vertices[loop[2]], vertices[loop[3]]})
		require.NotEqual(t, None, iFace)
	}
	return m, vertices
}

func TestArenaIndexStability(t *testing.T) {

	var a Arena[int]
	i0 := a.Create()
	i1 := a.Create()
	i2 := a.Create()
	*a.At(i0) = 10
	*a.At(i1) = 11
	*a.At(i2) = 12

	a.Release(i1)
	assert.False(t, a.Active(i1))
	assert.True(t, a.Active(i0))
	assert.True(t, a.Active(i2))
	assert.Equal(t, 10, *a.At(i0))
	assert.Equal(t, 12, *a.At(i2))
	assert.Equal(t, 2, a.Len())

	// The released slot is reused without moving live entries
	i3 := a.Create()
	assert.Equal(t, i1, i3)
	assert.Equal(t, 10, *a.At(i0))
	assert.Equal(t, 12, *a.At(i2))
	assert.Equal(t, []int{i0, i1, i2}, a.Indices())
}

func TestAddEdgePreconditions(t *testing.T) {

	m := NewMesh()
	v0 := m.AddVertex(mgl32.Vec3{0, 0, 0})
	v1 := m.AddVertex(mgl32.Vec3{1, 0, 0})

	assert.Equal(t, None, m.AddEdge(v0, v0))

	e := m.AddEdge(v0, v1)
	require.NotEqual(t, None, e)
	assert.Equal(t, None, m.AddEdge(v0, v1))

	// The opposite of the opposite is the edge itself
	opposite := m.Edges.At(e).Opposite
	assert.Equal(t, e, m.Edges.At(opposite).Opposite)
	assert.Equal(t, e, m.EdgeBetween(v0, v1))
	assert.Equal(t, opposite, m.EdgeBetween(v1, v0))
}

func TestAddFacePreconditions(t *testing.T) {

	m := NewMesh()
	v0 := m.AddVertex(mgl32.Vec3{0, 0, 0})
	v1 := m.AddVertex(mgl32.Vec3{1, 0, 0})
	assert.Equal(t, None, m.AddFace([]int{v0, v1}))
	assert.Equal(t, 0, m.Faces.Len())
}

func TestAddFaceLoop(t *testing.T) {

	m := NewMesh()
	loop := []int{
		m.AddVertex(mgl32.Vec3{0, 0, 0}),
		m.AddVertex(mgl32.Vec3{1, 0, 0}),
		m.AddVertex(mgl32.Vec3{1, 0, 1}),
		m.AddVertex(mgl32.Vec3{0, 0, 1}),
	}
	iFace := m.AddFace(loop)
	require.NotEqual(t, None, iFace)

	// Walking next |loop| times returns to the start visiting every vertex
	iCurrent := m.Faces.At(iFace).Edge
	var visited []int
	for i := 0; i < len(loop); i++ {
		edge := m.Edges.At(iCurrent)
		assert.Equal(t, iFace, edge.Face)
		visited = append(visited, m.Edges.At(edge.Opposite).Vertex)
		iCurrent = edge.Next
	}
	assert.Equal(t, m.Faces.At(iFace).Edge, iCurrent)
	assert.ElementsMatch(t, loop, visited)
	assert.Equal(t, loop, FaceIndices(m, iFace))
}

func TestRemoveFace(t *testing.T) {

	m, _ := buildCube(t)
	require.Equal(t, 6, m.Faces.Len())
	require.Equal(t, 24, m.Edges.Len())

	iFace := m.Faces.First()
	loop := FaceIndices(m, iFace)
	m.RemoveFace(iFace)

	// All edges were shared with other faces, so none is released
	assert.Equal(t, 5, m.Faces.Len())
	assert.Equal(t, 24, m.Edges.Len())

	// Every vertex of the removed face still has a valid outgoing edge
	for _, iVertex := range loop {
		iEdge := m.Vertices.At(iVertex).Edge
		require.True(t, m.Edges.Active(iEdge))
		assert.Equal(t, iVertex, m.Edges.At(m.Edges.At(iEdge).Opposite).Vertex)
	}

	// Removing the opposite face now releases the boundary edges between them
	// once every face around them is gone
	for _, iOther := range m.Faces.Indices() {
		m.RemoveFace(iOther)
	}
	assert.Equal(t, 0, m.Faces.Len())
	assert.Equal(t, 0, m.Edges.Len())
}

func TestRemoveVertex(t *testing.T) {

	m, vertices := buildCube(t)
	m.RemoveVertex(vertices[0])

	assert.False(t, m.Vertices.Active(vertices[0]))
	// The three faces touching the corner are gone
	assert.Equal(t, 3, m.Faces.Len())
	// No edge references the removed vertex
	m.Edges.Each(func(i int, e *Edge) bool {
		assert.NotEqual(t, vertices[0], e.Vertex)
		return true
	})
}

func TestMergeFaces(t *testing.T) {

	m := NewMesh()
	v := []int{
		m.AddVertex(mgl32.Vec3{0, 0, 0}),
		m.AddVertex(mgl32.Vec3{1, 0, 0}),
		m.AddVertex(mgl32.Vec3{1, 0, 1}),
		m.AddVertex(mgl32.Vec3{0, 0, 1}),
	}
	f1 := m.AddFace([]int{v[0], v[1], v[2]})
	f2 := m.AddFace([]int{v[0], v[2], v[3]})
	require.NotEqual(t, None, f1)
	require.NotEqual(t, None, f2)

	merged := m.MergeFaces(f1, f2)
	assert.Equal(t, f1, merged)
	assert.Equal(t, 1, m.Faces.Len())
	assert.ElementsMatch(t, v, FaceIndices(m, f1))
	// The shared diagonal is gone
	assert.Equal(t, None, m.EdgeBetween(v[0], v[2]))
	assert.Equal(t, None, m.EdgeBetween(v[2], v[0]))
}

func TestFaceNormal(t *testing.T) {

	m := NewMesh()
	f := m.AddFace([]int{
		m.AddVertex(mgl32.Vec3{0, 0, 0}),
		m.AddVertex(mgl32.Vec3{1, 0, 0}),
		m.AddVertex(mgl32.Vec3{0, 1, 0}),
	})
	normal := FaceNormal(m, f)
	assert.InDelta(t, 0, normal.X(), 1e-6)
	assert.InDelta(t, 0, normal.Y(), 1e-6)
	assert.InDelta(t, 1, normal.Z(), 1e-6)
}

func TestFurthestVertex(t *testing.T) {

	m, vertices := buildCube(t)
	iBest := FurthestVertex(m, mgl32.Vec3{1, 1, 1})
	assert.Equal(t, vertices[6], iBest)

	iBest = FurthestVertex(m, mgl32.Vec3{-1, -1, -1})
	assert.Equal(t, vertices[0], iBest)
}

func TestTriangulate(t *testing.T) {

	m, _ := buildCube(t)
	tri := Triangulate(m)
	assert.Equal(t, 8, tri.Vertices.Len())
	assert.Equal(t, 12, tri.Faces.Len())
	tri.Faces.Each(func(iFace int, f *Face) bool {
		assert.Len(t, FaceIndices(tri, iFace), 3)
		return true
	})
}

func TestHorizon(t *testing.T) {

	m, _ := buildCube(t)
	tri := Triangulate(m)
	normals := make(map[int]mgl32.Vec3)
	tri.Faces.Each(func(iFace int, f *Face) bool {
		normals[iFace] = FaceNormal(tri, iFace)
		return true
	})

	// An eye point above the cube sees exactly the two top triangles; the
	// horizon is the 4-edge boundary of the top face.
	eye := mgl32.Vec3{0, 5, 0}
	iTop := None
	tri.Faces.Each(func(iFace int, f *Face) bool {
		if normals[iFace].Y() > 0.9 {
			iTop = iFace
			return false
		}
		return true
	})
	require.NotEqual(t, None, iTop)

	horizonEdges, visibleFaces := Horizon(tri, normals, eye, iTop)
	assert.Len(t, visibleFaces, 2)
	assert.Len(t, horizonEdges, 4)

	// The horizon edges connect end to end in loop order
	for i := 0; i < len(horizonEdges); i++ {
		current := tri.Edges.At(horizonEdges[i])
		next := tri.Edges.At(horizonEdges[(i+1)%len(horizonEdges)])
		origin := tri.Edges.At(next.Opposite).Vertex
		assert.Equal(t, current.Vertex, origin)
	}
}
