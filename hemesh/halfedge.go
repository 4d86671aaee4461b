// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hemesh

import (
	"github.com/go-gl/mathgl/mgl32"
)

// None is the sentinel index returned by operations whose preconditions
// are not met and stored in unset topology fields.
const None = -1

// Vertex is a mesh vertex: a 3D position and one of its outgoing edges.
type Vertex struct {
	Position mgl32.Vec3
	Edge     int
}

// Edge is a directed half-edge. Its opposite runs between the same pair
// of vertices in the other direction. Prev and Next chain the edges of
// the owning face into a loop; a boundary edge has no face.
type Edge struct {
	Vertex   int // destination vertex
	Face     int
	Prev     int
	Next     int
	Opposite int
}

// Face stores one of the edges of its loop.
type Face struct {
	Edge int
}

// Mesh holds a 3D mesh in a half-edge data structure, which stores the
// adjacency of faces and edges for fast neighborhood traversals.
// Vertices, edges and faces live in index-stable arenas, so the indices
// of the live elements survive removals.
type Mesh struct {
	Vertices Arena[Vertex]
	Edges    Arena[Edge]
	Faces    Arena[Face]
	edgeMap  map[[2]int]int
}

// NewMesh creates and returns a pointer to a new empty Mesh.
func NewMesh() *Mesh {

	m := new(Mesh)
	m.edgeMap = make(map[[2]int]int)
	return m
}

// Clone returns a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {

	clone := new(Mesh)
	clone.Vertices = m.Vertices.Clone()
	clone.Edges = m.Edges.Clone()
	clone.Faces = m.Faces.Clone()
	clone.edgeMap = make(map[[2]int]int, len(m.edgeMap))
	for k, v := range m.edgeMap {
		clone.edgeMap[k] = v
	}
	return clone
}

// AddVertex adds the given point as a new vertex and returns its index.
func (m *Mesh) AddVertex(point mgl32.Vec3) int {

	iVertex := m.Vertices.Create()
	vertex := m.Vertices.At(iVertex)
	vertex.Position = point
	vertex.Edge = None
	return iVertex
}

// RemoveVertex removes the given vertex and every face and edge that
// references it.
func (m *Mesh) RemoveVertex(iVertex int) {

	if !m.Vertices.Active(iVertex) {
		return
	}

	for {
		iEdge := m.Vertices.At(iVertex).Edge
		if !m.Edges.Active(iEdge) {
			iEdge = m.outgoingEdge(iVertex)
			if iEdge == None {
				break
			}
		}
		edge := *m.Edges.At(iEdge)
		if m.Faces.Active(edge.Face) {
			m.RemoveFace(edge.Face)
			continue
		}
		if m.Faces.Active(m.Edges.At(edge.Opposite).Face) {
			m.RemoveFace(m.Edges.At(edge.Opposite).Face)
			continue
		}
		m.releaseEdgePair(iEdge)
		m.Vertices.At(iVertex).Edge = m.outgoingEdge(iVertex)
	}

	m.Vertices.Release(iVertex)
}

// EdgeBetween returns the index of the edge from vertex i to vertex j,
// or None if there is no such edge.
func (m *Mesh) EdgeBetween(i, j int) int {

	if iEdge, ok := m.edgeMap[[2]int{i, j}]; ok {
		return iEdge
	}
	return None
}

// AddEdge creates a new edge from vertex i to vertex j together with its
// opposite and returns the index of the first one. It returns None if
// both endpoints are the same vertex or if the edge already exists.
func (m *Mesh) AddEdge(i, j int) int {

	if i == j || !m.Vertices.Active(i) || !m.Vertices.Active(j) {
		return None
	}
	if _, ok := m.edgeMap[[2]int{i, j}]; ok {
		return None
	}

	iEdge1 := m.Edges.Create()
	iEdge2 := m.Edges.Create()

	edge1 := m.Edges.At(iEdge1)
	edge1.Vertex = j
	edge1.Face = None
	edge1.Prev = None
	edge1.Next = None
	edge1.Opposite = iEdge2

	edge2 := m.Edges.At(iEdge2)
	edge2.Vertex = i
	edge2.Face = None
	edge2.Prev = None
	edge2.Next = None
	edge2.Opposite = iEdge1

	m.edgeMap[[2]int{i, j}] = iEdge1
	m.edgeMap[[2]int{j, i}] = iEdge2

	return iEdge1
}

// AddFace creates a new face from the given vertex loop and returns its
// index. The boundary edges of the loop are created or reused. It returns
// None if the loop has fewer than 3 vertices.
func (m *Mesh) AddFace(vertexIndices []int) int {

	if len(vertexIndices) < 3 {
		return None
	}

	iFace := m.Faces.Create()
	m.Faces.At(iFace).Edge = None

	// Recover or create the boundary edges of the loop
	edgeIndices := make([]int, 0, len(vertexIndices))
	for i := 0; i < len(vertexIndices); i++ {
		iVertex1 := vertexIndices[i]
		iVertex2 := vertexIndices[(i+1)%len(vertexIndices)]

		iEdge, ok := m.edgeMap[[2]int{iVertex1, iVertex2}]
		if !ok {
			iEdge = m.AddEdge(iVertex1, iVertex2)
		}

		edgeIndices = append(edgeIndices, iEdge)
		if m.Faces.At(iFace).Edge == None {
			m.Faces.At(iFace).Edge = iEdge
		}
		if m.Vertices.At(iVertex1).Edge == None {
			m.Vertices.At(iVertex1).Edge = iEdge
		}
	}

	// Chain the edges of the loop
	for i, iEdge := range edgeIndices {
		edge := m.Edges.At(iEdge)
		edge.Face = iFace
		if i == 0 {
			edge.Prev = edgeIndices[len(edgeIndices)-1]
		} else {
			edge.Prev = edgeIndices[i-1]
		}
		edge.Next = edgeIndices[(i+1)%len(edgeIndices)]
	}

	return iFace
}

// RemoveFace removes the given face. Its boundary edges are released only
// when their opposite has no face; edges shared with another face just
// lose their face pointer.
func (m *Mesh) RemoveFace(iFace int) {

	if !m.Faces.Active(iFace) {
		return
	}

	// Collect the loop vertices and, for each one, its incident outgoing
	// edges while the topology around the face is still intact.
	var loopVertices []int
	candidates := make(map[int][]int)

	iInitial := m.Faces.At(iFace).Edge
	iCurrent := iInitial
	for {
		current := *m.Edges.At(iCurrent)
		iVertex := current.Vertex
		loopVertices = append(loopVertices, iVertex)
		candidates[iVertex] = m.incidentOutgoingEdges(iVertex)
		iCurrent = current.Next
		if iCurrent == iInitial {
			break
		}
	}

	iCurrent = iInitial
	for {
		current := *m.Edges.At(iCurrent)
		iNext := current.Next
		opposite := *m.Edges.At(current.Opposite)

		if !m.Faces.Active(opposite.Face) {
			m.releaseEdgePair(iCurrent)
		} else {
			edge := m.Edges.At(iCurrent)
			edge.Face = None
			edge.Prev = None
			edge.Next = None
		}

		iCurrent = iNext
		if iCurrent == iInitial {
			break
		}
	}

	// Fix the outgoing edge of the loop vertices whose edge was released
	for _, iVertex := range loopVertices {
		vertex := m.Vertices.At(iVertex)
		if m.Edges.Active(vertex.Edge) && m.Edges.At(m.Edges.At(vertex.Edge).Opposite).Vertex == iVertex {
			continue
		}
		vertex.Edge = None
		for _, iEdge := range candidates[iVertex] {
			if m.Edges.Active(iEdge) {
				vertex.Edge = iEdge
				break
			}
		}
	}

	m.Faces.Release(iFace)
}

// incidentOutgoingEdges returns the outgoing edges of the given vertex by
// walking its neighborhood in both directions from its current edge.
func (m *Mesh) incidentOutgoingEdges(iVertex int) []int {

	var edges []int
	iInitial := m.Vertices.At(iVertex).Edge
	if !m.Edges.Active(iInitial) {
		return edges
	}

	iCurrent := iInitial
	for m.Edges.Active(iCurrent) {
		edges = append(edges, iCurrent)
		iCurrent = m.Edges.At(m.Edges.At(iCurrent).Opposite).Next
		if iCurrent == iInitial {
			return edges
		}
	}

	// The walk hit a boundary; continue from the start in the other direction
	iCurrent = iInitial
	for {
		iPrev := m.Edges.At(iCurrent).Prev
		if !m.Edges.Active(iPrev) {
			break
		}
		iCurrent = m.Edges.At(iPrev).Opposite
		if !m.Edges.Active(iCurrent) || iCurrent == iInitial {
			break
		}
		edges = append(edges, iCurrent)
	}
	return edges
}

// outgoingEdge searches the edge map for a live edge leaving the given
// vertex, returning None when the vertex has become isolated.
func (m *Mesh) outgoingEdge(iVertex int) int {

	for key, iEdge := range m.edgeMap {
		if key[0] == iVertex && m.Edges.Active(iEdge) {
			return iEdge
		}
	}
	return None
}

// releaseEdgePair releases the given edge and its opposite, removing both
// from the edge map.
func (m *Mesh) releaseEdgePair(iEdge int) {

	if !m.Edges.Active(iEdge) {
		return
	}
	edge := *m.Edges.At(iEdge)
	opposite := *m.Edges.At(edge.Opposite)

	iVertex1 := opposite.Vertex
	iVertex2 := edge.Vertex

	delete(m.edgeMap, [2]int{iVertex1, iVertex2})
	delete(m.edgeMap, [2]int{iVertex2, iVertex1})

	m.Edges.Release(iEdge)
	m.Edges.Release(edge.Opposite)
}

// MergeFaces merges two faces into a single one along their longest
// contiguous section of shared edges. It returns the index of the
// resulting face, or None when the faces share no edge.
func (m *Mesh) MergeFaces(iFace1, iFace2 int) int {

	if iFace1 == iFace2 {
		return iFace1
	}
	if !m.Faces.Active(iFace1) || !m.Faces.Active(iFace2) {
		return None
	}

	// Find the contiguous sections of iFace1's loop shared with iFace2
	type section struct {
		iInitial int
		iFinal   int
		length   int
	}
	var sections []section

	iInitial := m.Faces.At(iFace1).Edge
	iCurrent := iInitial
	for {
		current := *m.Edges.At(iCurrent)
		if m.Edges.At(current.Opposite).Face == iFace2 {
			if len(sections) == 0 || sections[len(sections)-1].iFinal != current.Prev {
				sections = append(sections, section{iCurrent, iCurrent, 1})
			} else {
				sections[len(sections)-1].iFinal = iCurrent
				sections[len(sections)-1].length++
			}
		}
		iCurrent = current.Next
		if iCurrent == iInitial {
			break
		}
	}

	if len(sections) == 0 {
		return None
	}

	best := 0
	for i := 1; i < len(sections); i++ {
		if sections[i].length > sections[best].length {
			best = i
		}
	}
	cut := sections[best]

	// Splice the two loops together around the shared section
	initialEdge := *m.Edges.At(cut.iInitial)
	oppositeInitial := *m.Edges.At(initialEdge.Opposite)
	m.Edges.At(initialEdge.Prev).Next = oppositeInitial.Next
	m.Edges.At(oppositeInitial.Next).Prev = initialEdge.Prev

	finalEdge := *m.Edges.At(cut.iFinal)
	oppositeFinal := *m.Edges.At(finalEdge.Opposite)
	m.Edges.At(finalEdge.Next).Prev = oppositeFinal.Prev
	m.Edges.At(oppositeFinal.Prev).Next = finalEdge.Next

	m.Faces.At(iFace1).Edge = initialEdge.Prev

	// Make every edge of the new loop point at the surviving face
	iInitial = m.Faces.At(iFace1).Edge
	iCurrent = iInitial
	for {
		edge := m.Edges.At(iCurrent)
		edge.Face = iFace1
		iCurrent = edge.Next
		if iCurrent == iInitial {
			break
		}
	}

	// Release the shared section
	iCurrent = cut.iInitial
	iEnd := finalEdge.Next
	for iCurrent != iEnd {
		current := *m.Edges.At(iCurrent)
		iNext := current.Next
		iVertex := current.Vertex

		m.releaseEdgePair(iCurrent)

		vertex := m.Vertices.At(iVertex)
		if !m.Edges.Active(vertex.Edge) || m.Edges.At(m.Edges.At(vertex.Edge).Opposite).Vertex != iVertex {
			vertex.Edge = m.outgoingEdge(iVertex)
		}

		iCurrent = iNext
	}

	m.Faces.Release(iFace2)
	return iFace1
}
