// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hemesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const normalizationZero = 0.0001

// Triangulate returns a new mesh with every face of the original mesh
// split into a triangle fan from its first vertex.
func Triangulate(m *Mesh) *Mesh {

	t := NewMesh()
	t.Vertices = m.Vertices.Clone()
	t.Vertices.Each(func(i int, v *Vertex) bool {
		v.Edge = None
		return true
	})

	m.Faces.Each(func(iFace int, face *Face) bool {
		initial := *m.Edges.At(face.Edge)
		iInitialVertex := m.Edges.At(initial.Opposite).Vertex
		iLast := initial.Prev
		iCurrent := initial.Next
		for iCurrent != iLast {
			current := *m.Edges.At(iCurrent)
			iOrigin := m.Edges.At(current.Opposite).Vertex
			t.AddFace([]int{iInitialVertex, iOrigin, current.Vertex})
			iCurrent = current.Next
		}
		return true
	})

	return t
}

// FaceIndices returns the vertex indices of the given face in loop order.
func FaceIndices(m *Mesh, iFace int) []int {

	var indices []int
	if !m.Faces.Active(iFace) {
		return indices
	}

	iInitial := m.Faces.At(iFace).Edge
	iCurrent := iInitial
	for m.Edges.Active(iCurrent) {
		current := *m.Edges.At(iCurrent)
		indices = append(indices, m.Edges.At(current.Opposite).Vertex)
		iCurrent = current.Next
		if iCurrent == iInitial {
			break
		}
	}
	return indices
}

// FaceNormal computes the normal of the given face with Newell's formula.
// A degenerate face yields the zero vector.
func FaceNormal(m *Mesh, iFace int) mgl32.Vec3 {

	var normal mgl32.Vec3
	if !m.Faces.Active(iFace) {
		return normal
	}

	iInitial := m.Faces.At(iFace).Edge
	iCurrent := iInitial
	for {
		current := *m.Edges.At(iCurrent)
		p1 := m.Vertices.At(m.Edges.At(current.Opposite).Vertex).Position
		p2 := m.Vertices.At(current.Vertex).Position

		normal[0] += (p1.Y() - p2.Y()) * (p1.Z() + p2.Z())
		normal[1] += (p1.Z() - p2.Z()) * (p1.X() + p2.X())
		normal[2] += (p1.X() - p2.X()) * (p1.Y() + p2.Y())

		iCurrent = current.Next
		if iCurrent == iInitial {
			break
		}
	}

	length := normal.Len()
	if length < normalizationZero {
		return normal
	}
	return normal.Mul(1 / length)
}

// VertexNormal averages the normals of the faces around the given vertex.
// Boundary vertices are handled by walking the neighborhood in both
// directions. A vertex with no adjacent faces yields the zero vector.
func VertexNormal(m *Mesh, faceNormals map[int]mgl32.Vec3, iVertex int) mgl32.Vec3 {

	var normal mgl32.Vec3
	if !m.Vertices.Active(iVertex) {
		return normal
	}

	iInitial := m.Vertices.At(iVertex).Edge
	if !m.Edges.Active(iInitial) {
		return normal
	}

	iCurrent := iInitial
	for m.Edges.Active(iCurrent) {
		current := *m.Edges.At(iCurrent)
		if m.Faces.Active(current.Face) {
			normal = normal.Add(faceNormals[current.Face])
		}
		if current.Opposite == None {
			iCurrent = None
			break
		}
		iCurrent = m.Edges.At(current.Opposite).Next
		if iCurrent == iInitial {
			break
		}
	}

	// The loop did not close; check in the other direction
	if iCurrent != iInitial {
		iCurrent = m.Edges.At(iInitial).Prev
		if m.Edges.Active(iCurrent) {
			iCurrent = m.Edges.At(iCurrent).Opposite
			for m.Edges.Active(iCurrent) && iCurrent != iInitial {
				current := *m.Edges.At(iCurrent)
				if m.Faces.Active(current.Face) {
					normal = normal.Add(faceNormals[current.Face])
				}
				if current.Prev == None {
					break
				}
				iCurrent = m.Edges.At(current.Prev).Opposite
			}
		}
	}

	length := normal.Len()
	if length < normalizationZero {
		return normal
	}
	return normal.Mul(1 / length)
}

// FurthestVertex returns the index of the vertex furthest along the given
// direction, found by hill climbing over the vertex adjacency. The mesh
// must be convex, otherwise the result may be a local maximum.
func FurthestVertex(m *Mesh, direction mgl32.Vec3) int {

	iBest := m.Vertices.First()
	if iBest == None {
		return None
	}
	bestDistance := m.Vertices.At(iBest).Position.Dot(direction)

	for {
		iInitial := m.Vertices.At(iBest).Edge
		if !m.Edges.Active(iInitial) {
			return iBest
		}

		iBestNeighbor := None
		bestNeighborDistance := float32(math.Inf(-1))
		iCurrent := iInitial
		for m.Edges.Active(iCurrent) {
			current := *m.Edges.At(iCurrent)
			distance := m.Vertices.At(current.Vertex).Position.Dot(direction)
			if distance > bestNeighborDistance {
				bestNeighborDistance = distance
				iBestNeighbor = current.Vertex
			}
			iCurrent = m.Edges.At(current.Opposite).Next
			if iCurrent == iInitial {
				break
			}
		}

		if iBestNeighbor == None || bestNeighborDistance <= bestDistance {
			return iBest
		}
		bestDistance = bestNeighborDistance
		iBest = iBestNeighbor
	}
}

// Horizon performs a depth-first flood over the faces visible from the
// given eye point, starting at the given face, and returns the boundary
// edges between visible and hidden faces in loop order together with the
// visible faces. The initial face must be visible from the eye point.
func Horizon(m *Mesh, faceNormals map[int]mgl32.Vec3, eye mgl32.Vec3, iInitialFace int) (horizonEdges, visibleFaces []int) {

	initialFace := *m.Faces.At(iInitialFace)
	faceVertex := m.Vertices.At(m.Edges.At(initialFace.Edge).Vertex).Position
	if eye.Sub(faceVertex).Dot(faceNormals[iInitialFace]) <= 0 {
		return nil, nil
	}
	visibleFaces = append(visibleFaces, iInitialFace)

	visitedFaces := map[int]bool{iInitialFace: true}
	visibleSet := map[int]bool{iInitialFace: true}

	stack := []int{initialFace.Edge}
	for {
		iCurrent := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		current := *m.Edges.At(iCurrent)
		opposite := *m.Edges.At(current.Opposite)

		if !visitedFaces[opposite.Face] {
			visitedFaces[opposite.Face] = true

			// Test the visibility of the adjacent face from the eye point
			oppositeVertex := m.Vertices.At(opposite.Vertex).Position
			if eye.Sub(oppositeVertex).Dot(faceNormals[opposite.Face]) > 0 {
				// Visible; continue the search in the adjacent face
				visibleFaces = append(visibleFaces, opposite.Face)
				visibleSet[opposite.Face] = true
				stack = append(stack, iCurrent)
				stack = append(stack, opposite.Next)
			} else {
				// The edge belongs to the horizon; continue in this face
				horizonEdges = append(horizonEdges, iCurrent)
				stack = append(stack, current.Next)
			}
		} else {
			if len(horizonEdges) > 0 {
				if len(stack) > 0 && opposite.Face == m.Edges.At(stack[len(stack)-1]).Face {
					// Returning stage: continue in the parent face
					stack = stack[:len(stack)-1]
					stack = append(stack, opposite.Next)
				} else {
					if !visibleSet[opposite.Face] {
						horizonEdges = append(horizonEdges, iCurrent)
					}
					stack = append(stack, current.Next)
				}
			} else {
				stack = append(stack, current.Next)
			}
		}

		if len(stack) == 0 || stack[len(stack)-1] == initialFace.Edge {
			break
		}
	}

	return horizonEdges, visibleFaces
}

// CalculateAABB returns the minimum and maximum corners of the axis
// aligned bounding box enclosing the mesh vertices.
func CalculateAABB(m *Mesh) (min, max mgl32.Vec3) {

	inf := float32(math.Inf(1))
	min = mgl32.Vec3{inf, inf, inf}
	max = mgl32.Vec3{-inf, -inf, -inf}

	m.Vertices.Each(func(i int, v *Vertex) bool {
		for axis := 0; axis < 3; axis++ {
			if v.Position[axis] < min[axis] {
				min[axis] = v.Position[axis]
			}
			if v.Position[axis] > max[axis] {
				max[axis] = v.Position[axis]
			}
		}
		return true
	})
	return min, max
}
