// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hemesh

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// HACD approximates a concave mesh by a small set of convex sub-meshes
// with hierarchical approximate convex decomposition: the dual graph of
// the triangulated mesh is decimated by half-edge collapses, always
// picking the edge with the lowest concavity + aspect-ratio cost, until
// every remaining merge would exceed the maximum concavity.
type HACD struct {
	maxConcavity float32
	epsilon      float32

	mesh              *Mesh
	faceNormals       map[int]mgl32.Vec3
	graph             dualGraph
	normalization     float32
	aspectRatioFactor float32
	surfaces          []*Mesh
}

// dualGraphVertex is a node of the dual graph: a triangle of the mesh
// plus the triangles merged into it so far.
type dualGraphVertex struct {
	id        int
	neighbors []int
	ancestors []int
}

type dualGraph struct {
	vertices []dualGraphVertex
}

// NewHACD creates and returns a pointer to a new HACD. The maximum
// concavity is relative to the mesh AABB diagonal; epsilon is the
// comparison epsilon of the convex hulls computed internally.
func NewHACD(maxConcavity, epsilon float32) *HACD {

	h := new(HACD)
	h.maxConcavity = maxConcavity
	h.epsilon = epsilon
	return h
}

// Surfaces returns the convex sub-meshes of the last calculation.
func (h *HACD) Surfaces() []*Mesh {

	return h.surfaces
}

// Reset clears the decomposition data for the next calculation.
func (h *HACD) Reset() {

	h.mesh = nil
	h.faceNormals = nil
	h.graph = dualGraph{}
	h.surfaces = nil
}

// Calculate decomposes the given mesh into convex sub-meshes.
func (h *HACD) Calculate(mesh *Mesh) {

	h.initData(mesh)

	for {
		iBest1, iBest2 := -1, -1
		lowestCost := float32(math.Inf(1))
		anyBelowThreshold := false

		for v1 := range h.graph.vertices {
			vertex1 := &h.graph.vertices[v1]
			for _, id2 := range vertex1.neighbors {
				v2 := h.graph.find(id2)
				if v2 < 0 || h.graph.vertices[v2].id <= vertex1.id {
					continue
				}
				vertex2 := &h.graph.vertices[v2]

				faces := surfaceFaces(vertex1, vertex2)
				concavity := h.concavity(faces)
				aspectRatio := h.aspectRatio(faces)
				cost := concavity/h.normalization + h.aspectRatioFactor*aspectRatio

				if cost < lowestCost {
					lowestCost = cost
					iBest1, iBest2 = v1, v2
				}
				if concavity < h.maxConcavity*h.normalization {
					anyBelowThreshold = true
				}
			}
		}

		if !anyBelowThreshold || iBest1 < 0 {
			break
		}

		h.graph.vertices[iBest1].ancestors = mergeAncestors(
			&h.graph.vertices[iBest1], &h.graph.vertices[iBest2],
		)
		h.graph.collapse(h.graph.vertices[iBest1].id, h.graph.vertices[iBest2].id)
	}

	h.computeConvexSurfaces()
}

// initData triangulates the mesh and builds the dual graph and the
// normalization factors.
func (h *HACD) initData(mesh *Mesh) {

	h.Reset()
	h.mesh = Triangulate(mesh)

	h.faceNormals = make(map[int]mgl32.Vec3)
	h.mesh.Faces.Each(func(iFace int, face *Face) bool {
		h.faceNormals[iFace] = FaceNormal(h.mesh, iFace)
		return true
	})

	h.graph = createDualGraph(h.mesh)

	min, max := CalculateAABB(h.mesh)
	h.normalization = max.Sub(min).Len()
	if h.normalization == 0 {
		h.normalization = 1
	}
	h.aspectRatioFactor = h.maxConcavity / (10 * h.normalization)
}

// createDualGraph builds the dual graph of a triangulated mesh: one node
// per face, edges between faces sharing a half-edge.
func createDualGraph(mesh *Mesh) dualGraph {

	var graph dualGraph
	for _, iFace := range mesh.Faces.Indices() {
		graph.vertices = append(graph.vertices, dualGraphVertex{id: iFace})
	}

	for v := range graph.vertices {
		vertex := &graph.vertices[v]
		iInitial := mesh.Faces.At(vertex.id).Edge
		iCurrent := iInitial
		for {
			current := *mesh.Edges.At(iCurrent)
			iOther := mesh.Edges.At(current.Opposite).Face
			if iOther != None && iOther != vertex.id && graph.find(iOther) >= 0 {
				vertex.addNeighbor(iOther)
				other := &graph.vertices[graph.find(iOther)]
				other.addNeighbor(vertex.id)
			}
			iCurrent = current.Next
			if iCurrent == iInitial {
				break
			}
		}
	}

	return graph
}

// find returns the position of the vertex with the given id, or -1.
func (g *dualGraph) find(id int) int {

	pos := sort.Search(len(g.vertices), func(i int) bool { return g.vertices[i].id >= id })
	if pos < len(g.vertices) && g.vertices[pos].id == id {
		return pos
	}
	return -1
}

// addNeighbor inserts the given id into the sorted neighbor list.
func (v *dualGraphVertex) addNeighbor(id int) {

	pos := sort.SearchInts(v.neighbors, id)
	if pos < len(v.neighbors) && v.neighbors[pos] == id {
		return
	}
	v.neighbors = append(v.neighbors, 0)
	copy(v.neighbors[pos+1:], v.neighbors[pos:])
	v.neighbors[pos] = id
}

// removeNeighbor drops the given id from the neighbor list.
func (v *dualGraphVertex) removeNeighbor(id int) {

	pos := sort.SearchInts(v.neighbors, id)
	if pos < len(v.neighbors) && v.neighbors[pos] == id {
		v.neighbors = append(v.neighbors[:pos], v.neighbors[pos+1:]...)
	}
}

// collapse merges the vertex with the removed id into the kept one,
// transferring its neighbors.
func (g *dualGraph) collapse(iKeep, iRemove int) {

	posRemove := g.find(iRemove)
	posKeep := g.find(iKeep)
	if posRemove < 0 || posKeep < 0 {
		return
	}

	removed := g.vertices[posRemove]
	g.vertices = append(g.vertices[:posRemove], g.vertices[posRemove+1:]...)

	posKeep = g.find(iKeep)
	keep := &g.vertices[posKeep]
	keep.removeNeighbor(iRemove)

	for _, id := range removed.neighbors {
		if id == iKeep {
			continue
		}
		pos := g.find(id)
		if pos < 0 {
			continue
		}
		g.vertices[pos].removeNeighbor(iRemove)
		g.vertices[pos].addNeighbor(iKeep)
		keep.addNeighbor(id)
	}
}

// surfaceFaces returns the face indices of the surface formed by the two
// vertices and their ancestors.
func surfaceFaces(v1, v2 *dualGraphVertex) []int {

	faces := []int{v1.id, v2.id}
	faces = append(faces, v1.ancestors...)
	faces = append(faces, v2.ancestors...)
	return faces
}

// mergeAncestors returns the union of the ancestors of both vertices plus
// the id of the second one, sorted ascending.
func mergeAncestors(v1, v2 *dualGraphVertex) []int {

	set := make(map[int]bool, len(v1.ancestors)+len(v2.ancestors)+1)
	for _, id := range v1.ancestors {
		set[id] = true
	}
	for _, id := range v2.ancestors {
		set[id] = true
	}
	set[v2.id] = true

	merged := make([]int, 0, len(set))
	for id := range set {
		merged = append(merged, id)
	}
	sort.Ints(merged)
	return merged
}

// concavity returns the maximum distance from a surface vertex to its
// projection on the convex hull of the surface along the vertex normal.
func (h *HACD) concavity(iFaces []int) float32 {

	// Build the surface mesh from the given faces
	surface := NewMesh()
	vertexMap := make(map[int]int)
	surfaceVertices := make([]int, 0)

	for _, iFace := range iFaces {
		var loop []int
		for _, iVertex := range FaceIndices(h.mesh, iFace) {
			iSurface, ok := vertexMap[iVertex]
			if !ok {
				iSurface = surface.AddVertex(h.mesh.Vertices.At(iVertex).Position)
				vertexMap[iVertex] = iSurface
				surfaceVertices = append(surfaceVertices, iVertex)
			}
			loop = append(loop, iSurface)
		}
		surface.AddFace(loop)
	}

	// Convex hull of the surface
	qh := NewQuickHull(h.epsilon)
	qh.Calculate(surface)
	hull := qh.Mesh()
	hullNormals := qh.Normals()

	// Maximum distance from a surface vertex to its projection on the hull
	maxConcavity := float32(0)
	for _, iVertex := range surfaceVertices {
		location := h.mesh.Vertices.At(iVertex).Position
		normal := VertexNormal(h.mesh, h.faceNormals, iVertex)

		intersection, ok := raycastInsideMesh(hull, hullNormals, location, normal)
		if ok {
			if c := intersection.Sub(location).Len(); c > maxConcavity {
				maxConcavity = c
			}
		}
	}
	return maxConcavity
}

// aspectRatio returns perimeter^2 / (4*pi*area) of the surface formed by
// the given faces.
func (h *HACD) aspectRatio(iFaces []int) float32 {

	inSurface := make(map[int]bool, len(iFaces))
	for _, iFace := range iFaces {
		inSurface[iFace] = true
	}

	// Perimeter of the boundary of the surface
	perimeter := float32(0)
	for _, iFace := range iFaces {
		iInitial := h.mesh.Faces.At(iFace).Edge
		iCurrent := iInitial
		for {
			current := *h.mesh.Edges.At(iCurrent)
			opposite := *h.mesh.Edges.At(current.Opposite)
			if !inSurface[opposite.Face] {
				p1 := h.mesh.Vertices.At(opposite.Vertex).Position
				p2 := h.mesh.Vertices.At(current.Vertex).Position
				perimeter += p2.Sub(p1).Len()
			}
			iCurrent = current.Next
			if iCurrent == iInitial {
				break
			}
		}
	}

	// Area as the sum of the triangle areas
	area := float32(0)
	for _, iFace := range iFaces {
		indices := FaceIndices(h.mesh, iFace)
		area += TriangleArea([3]mgl32.Vec3{
			h.mesh.Vertices.At(indices[0]).Position,
			h.mesh.Vertices.At(indices[1]).Position,
			h.mesh.Vertices.At(indices[2]).Position,
		})
	}
	if area == 0 {
		return float32(math.Inf(1))
	}
	return perimeter * perimeter / (4 * math.Pi * area)
}

// raycastInsideMesh intersects a ray cast from inside the given convex
// mesh with its faces.
func raycastInsideMesh(mesh *Mesh, faceNormals map[int]mgl32.Vec3, origin, direction mgl32.Vec3) (mgl32.Vec3, bool) {

	for _, iFace := range mesh.Faces.Indices() {
		facePoint := mesh.Vertices.At(mesh.Edges.At(mesh.Faces.At(iFace).Edge).Vertex).Position
		faceNormal := faceNormals[iFace]

		intersection, ok := ProjectPointInDirection(origin, direction, facePoint, faceNormal)
		if !ok {
			continue
		}

		// The intersection must lie inside the face polygon
		inside := true
		iInitial := mesh.Faces.At(iFace).Edge
		iCurrent := iInitial
		for {
			current := *mesh.Edges.At(iCurrent)
			p1 := mesh.Vertices.At(mesh.Edges.At(current.Opposite).Vertex).Position
			p2 := mesh.Vertices.At(current.Vertex).Position
			if p2.Sub(p1).Cross(faceNormal).Dot(intersection.Sub(p1)) > 0 {
				inside = false
				break
			}
			iCurrent = current.Next
			if iCurrent == iInitial {
				break
			}
		}
		if inside {
			return intersection, true
		}
	}
	return mgl32.Vec3{}, false
}

// computeConvexSurfaces builds one convex sub-mesh per surviving dual
// graph vertex and its ancestor triangles.
func (h *HACD) computeConvexSurfaces() {

	h.surfaces = make([]*Mesh, 0, len(h.graph.vertices))
	for v := range h.graph.vertices {
		vertex := &h.graph.vertices[v]
		iFaces := append([]int{vertex.id}, vertex.ancestors...)

		surface := NewMesh()
		vertexMap := make(map[int]int)
		for _, iFace := range iFaces {
			var loop []int
			for _, iMeshVertex := range FaceIndices(h.mesh, iFace) {
				iSurface, ok := vertexMap[iMeshVertex]
				if !ok {
					iSurface = surface.AddVertex(h.mesh.Vertices.At(iMeshVertex).Position)
					vertexMap[iMeshVertex] = iSurface
				}
				loop = append(loop, iSurface)
			}
			surface.AddFace(loop)
		}
		h.surfaces = append(h.surfaces, surface)
	}
}
