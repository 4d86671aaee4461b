// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hemesh

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// QuickHull computes the 3D convex hull of the vertices of a mesh.
// The comparison epsilon is scaled by the diagonal of the input AABB, so
// the same tolerance works across mesh sizes. Point distribution over the
// hull faces is deterministic by input vertex index, which makes the
// output independent of iteration order.
type QuickHull struct {
	epsilon       float32
	scaledEpsilon float32
	mesh          *Mesh
	normals       map[int]mgl32.Vec3
	faceOutside   map[int][]int
	vertexMap     map[int]int
}

// NewQuickHull creates and returns a pointer to a new QuickHull with the
// given comparison epsilon.
func NewQuickHull(epsilon float32) *QuickHull {

	qh := new(QuickHull)
	qh.epsilon = epsilon
	qh.Reset()
	return qh
}

// Mesh returns the half-edge mesh of the computed convex hull.
func (qh *QuickHull) Mesh() *Mesh {

	return qh.mesh
}

// Normals returns the normal of each face of the computed convex hull.
func (qh *QuickHull) Normals() map[int]mgl32.Vec3 {

	return qh.normals
}

// Reset clears the convex hull data for the next calculation.
func (qh *QuickHull) Reset() {

	qh.scaledEpsilon = qh.epsilon
	qh.mesh = NewMesh()
	qh.normals = make(map[int]mgl32.Vec3)
	qh.faceOutside = make(map[int][]int)
	qh.vertexMap = make(map[int]int)
}

// Calculate computes the convex hull of the given mesh.
func (qh *QuickHull) Calculate(original *Mesh) {

	qh.Reset()

	indices := original.Vertices.Indices()
	if len(indices) < 3 {
		for _, i := range indices {
			qh.hullVertex(original, i)
		}
		return
	}

	min, max := CalculateAABB(original)
	diagonal := max.Sub(min).Len()
	if diagonal > 0 {
		qh.scaledEpsilon = qh.epsilon * diagonal
	}

	simplex, planar := qh.initialSimplex(original, indices)
	if len(simplex) < 3 {
		// Collinear input; the hull degenerates to the extreme vertices
		for _, i := range simplex {
			qh.hullVertex(original, i)
		}
		return
	}
	if planar {
		qh.calculate2D(original, indices, simplex)
		return
	}
	qh.calculate3D(original, indices, simplex)
}

// hullVertex adds the given original vertex to the hull mesh if it is not
// there yet and returns its index in the hull mesh.
func (qh *QuickHull) hullVertex(original *Mesh, iVertex int) int {

	if iHull, ok := qh.vertexMap[iVertex]; ok {
		return iHull
	}
	iHull := qh.mesh.AddVertex(original.Vertices.At(iVertex).Position)
	qh.vertexMap[iVertex] = iHull
	return iHull
}

// initialSimplex selects the vertices of the initial simplex: the two
// extreme points along X, the point furthest from their segment and the
// point furthest from the plane of the first three. The returned flag
// tells whether the input is planar within the scaled epsilon.
func (qh *QuickHull) initialSimplex(original *Mesh, indices []int) ([]int, bool) {

	position := func(i int) mgl32.Vec3 { return original.Vertices.At(i).Position }

	iA, iB := indices[0], indices[0]
	for _, i := range indices {
		if position(i).X() < position(iA).X() {
			iA = i
		}
		if position(i).X() > position(iB).X() {
			iB = i
		}
	}
	if iA == iB {
		for _, i := range indices {
			if i != iA {
				iB = i
				break
			}
		}
	}

	// Furthest point from the segment AB
	iC, bestDistance := None, qh.scaledEpsilon
	for _, i := range indices {
		if i == iA || i == iB {
			continue
		}
		if d := DistancePointEdge(position(i), position(iA), position(iB)); d > bestDistance {
			bestDistance = d
			iC = i
		}
	}
	if iC == None {
		return []int{iA, iB}, false
	}

	// Furthest point from the plane ABC
	normal := position(iB).Sub(position(iA)).Cross(position(iC).Sub(position(iA)))
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}
	iD, bestDistance := None, qh.scaledEpsilon
	for _, i := range indices {
		if i == iA || i == iB || i == iC {
			continue
		}
		if d := float32(math.Abs(float64(position(i).Sub(position(iA)).Dot(normal)))); d > bestDistance {
			bestDistance = d
			iD = i
		}
	}
	if iD == None {
		return []int{iA, iB, iC}, true
	}
	return []int{iA, iB, iC, iD}, false
}

// calculate2D computes the convex hull of a planar point set as a
// double-sided polygon.
func (qh *QuickHull) calculate2D(original *Mesh, indices, simplex []int) {

	position := func(i int) mgl32.Vec3 { return original.Vertices.At(i).Position }

	a, b, c := position(simplex[0]), position(simplex[1]), position(simplex[2])
	normal := b.Sub(a).Cross(c.Sub(a)).Normalize()

	// Gift wrapping over the supporting plane starting at the first
	// extreme vertex
	start := simplex[0]
	ring := []int{start}
	current := start
	for {
		next := None
		for _, i := range indices {
			if i == current {
				continue
			}
			if next == None {
				next = i
				continue
			}
			edge := position(next).Sub(position(current))
			candidate := position(i).Sub(position(current))
			turn := edge.Cross(candidate).Dot(normal)
			if turn < -qh.scaledEpsilon {
				next = i
			} else if float32(math.Abs(float64(turn))) <= qh.scaledEpsilon &&
				candidate.Len() > edge.Len() {
				next = i
			}
		}
		if next == None || next == start {
			break
		}
		ring = append(ring, next)
		current = next
		if len(ring) > len(indices) {
			break
		}
	}

	if len(ring) < 3 {
		return
	}

	hullRing := make([]int, len(ring))
	reversed := make([]int, len(ring))
	for i, iVertex := range ring {
		hullRing[i] = qh.hullVertex(original, iVertex)
	}
	for i := range hullRing {
		reversed[i] = hullRing[len(hullRing)-1-i]
	}

	iFront := qh.mesh.AddFace(hullRing)
	iBack := qh.mesh.AddFace(reversed)
	qh.normals[iFront] = FaceNormal(qh.mesh, iFront)
	qh.normals[iBack] = FaceNormal(qh.mesh, iBack)
}

// calculate3D runs the 3D QuickHull loop from the given initial simplex.
func (qh *QuickHull) calculate3D(original *Mesh, indices, simplex []int) {

	qh.createInitialHull(original, simplex)

	// Distribute every remaining input vertex over the initial faces
	remaining := make([]int, 0, len(indices))
	for _, i := range indices {
		if _, ok := qh.vertexMap[i]; !ok {
			remaining = append(remaining, i)
		}
	}
	qh.distributeOutside(original, remaining, qh.mesh.Faces.Indices())

	for {
		iFace := qh.nextFaceWithOutside()
		if iFace == None {
			break
		}

		// Furthest outside point of the face
		outside := qh.faceOutside[iFace]
		normal := qh.normals[iFace]
		iEye := outside[0]
		bestDistance := float32(math.Inf(-1))
		facePoint := qh.mesh.Vertices.At(qh.mesh.Edges.At(qh.mesh.Faces.At(iFace).Edge).Vertex).Position
		for _, i := range outside {
			if d := original.Vertices.At(i).Position.Sub(facePoint).Dot(normal); d > bestDistance {
				bestDistance = d
				iEye = i
			}
		}
		eye := original.Vertices.At(iEye).Position

		// Horizon of the hull as seen from the eye point
		horizonEdges, visibleFaces := Horizon(qh.mesh, qh.normals, eye, iFace)
		if len(horizonEdges) == 0 {
			// The eye point no longer sees the face; drop it
			qh.removeOutside(iFace, iEye)
			continue
		}

		// Collect the orphaned outside points of the visible faces
		orphanSet := make(map[int]bool)
		for _, iVisible := range visibleFaces {
			for _, i := range qh.faceOutside[iVisible] {
				if i != iEye {
					orphanSet[i] = true
				}
			}
		}
		orphans := make([]int, 0, len(orphanSet))
		for i := range orphanSet {
			orphans = append(orphans, i)
		}
		sort.Ints(orphans)

		// Record the horizon edge endpoints before removing the visible
		// faces, since face removal may release the edge slots
		type horizonPair struct{ iOrigin, iDest int }
		pairs := make([]horizonPair, 0, len(horizonEdges))
		for _, iEdge := range horizonEdges {
			edge := *qh.mesh.Edges.At(iEdge)
			pairs = append(pairs, horizonPair{qh.mesh.Edges.At(edge.Opposite).Vertex, edge.Vertex})
		}

		for _, iVisible := range visibleFaces {
			qh.mesh.RemoveFace(iVisible)
			delete(qh.normals, iVisible)
			delete(qh.faceOutside, iVisible)
		}

		// Rebuild the hole with a fan of faces from the eye point to the
		// horizon edges
		iHullEye := qh.hullVertex(original, iEye)
		newFaces := make([]int, 0, len(pairs))
		for _, pair := range pairs {
			iNew := qh.mesh.AddFace([]int{pair.iOrigin, pair.iDest, iHullEye})
			qh.normals[iNew] = FaceNormal(qh.mesh, iNew)
			newFaces = append(newFaces, iNew)
		}

		qh.distributeOutside(original, orphans, newFaces)

		for _, iNew := range newFaces {
			if qh.mesh.Faces.Active(iNew) {
				qh.mergeCoplanarFaces(iNew)
			}
		}
	}
}

// createInitialHull builds the initial tetrahedron with outward faces.
func (qh *QuickHull) createInitialHull(original *Mesh, simplex []int) {

	iV := make([]int, 4)
	for i, iVertex := range simplex {
		iV[i] = qh.hullVertex(original, iVertex)
	}

	p0 := qh.mesh.Vertices.At(iV[0]).Position
	p1 := qh.mesh.Vertices.At(iV[1]).Position
	p2 := qh.mesh.Vertices.At(iV[2]).Position
	p3 := qh.mesh.Vertices.At(iV[3]).Position

	var loops [][]int
	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	if p3.Sub(p0).Dot(normal) <= 0 {
		loops = [][]int{
			{iV[0], iV[1], iV[2]},
			{iV[0], iV[3], iV[1]},
			{iV[0], iV[2], iV[3]},
			{iV[1], iV[3], iV[2]},
		}
	} else {
		loops = [][]int{
			{iV[0], iV[2], iV[1]},
			{iV[0], iV[1], iV[3]},
			{iV[0], iV[3], iV[2]},
			{iV[1], iV[2], iV[3]},
		}
	}
	for _, loop := range loops {
		iFace := qh.mesh.AddFace(loop)
		qh.normals[iFace] = FaceNormal(qh.mesh, iFace)
	}
}

// distributeOutside assigns each of the given input vertices to the first
// of the given faces it lies strictly outside of.
func (qh *QuickHull) distributeOutside(original *Mesh, vertices, faces []int) {

	for _, i := range vertices {
		point := original.Vertices.At(i).Position
		for _, iFace := range faces {
			if !qh.mesh.Faces.Active(iFace) {
				continue
			}
			facePoint := qh.mesh.Vertices.At(qh.mesh.Edges.At(qh.mesh.Faces.At(iFace).Edge).Vertex).Position
			if point.Sub(facePoint).Dot(qh.normals[iFace]) > qh.scaledEpsilon {
				qh.faceOutside[iFace] = append(qh.faceOutside[iFace], i)
				break
			}
		}
	}
}

// nextFaceWithOutside returns the lowest-index face that still has
// outside points, or None.
func (qh *QuickHull) nextFaceWithOutside() int {

	best := None
	for iFace, outside := range qh.faceOutside {
		if len(outside) == 0 || !qh.mesh.Faces.Active(iFace) {
			continue
		}
		if best == None || iFace < best {
			best = iFace
		}
	}
	return best
}

// removeOutside drops the given vertex from the outside set of a face.
func (qh *QuickHull) removeOutside(iFace, iVertex int) {

	outside := qh.faceOutside[iFace]
	for pos, i := range outside {
		if i == iVertex {
			qh.faceOutside[iFace] = append(outside[:pos], outside[pos+1:]...)
			break
		}
	}
	if len(qh.faceOutside[iFace]) == 0 {
		delete(qh.faceOutside, iFace)
	}
}

// mergeCoplanarFaces merges the given face with every adjacent face that
// is coplanar with it within the scaled epsilon.
func (qh *QuickHull) mergeCoplanarFaces(iFace int) {

	for {
		merged := false
		facePoint := qh.mesh.Vertices.At(qh.mesh.Edges.At(qh.mesh.Faces.At(iFace).Edge).Vertex).Position
		normal := qh.normals[iFace]

		for _, iNeighbor := range qh.adjacentFaces(iFace) {
			if iNeighbor == iFace || !qh.mesh.Faces.Active(iNeighbor) {
				continue
			}
			coplanar := true
			for _, iVertex := range FaceIndices(qh.mesh, iNeighbor) {
				d := qh.mesh.Vertices.At(iVertex).Position.Sub(facePoint).Dot(normal)
				if float32(math.Abs(float64(d))) > qh.scaledEpsilon {
					coplanar = false
					break
				}
			}
			if !coplanar {
				continue
			}
			if qh.mesh.MergeFaces(iFace, iNeighbor) == iFace {
				qh.faceOutside[iFace] = append(qh.faceOutside[iFace], qh.faceOutside[iNeighbor]...)
				sort.Ints(qh.faceOutside[iFace])
				if len(qh.faceOutside[iFace]) == 0 {
					delete(qh.faceOutside, iFace)
				}
				delete(qh.faceOutside, iNeighbor)
				delete(qh.normals, iNeighbor)
				qh.normals[iFace] = FaceNormal(qh.mesh, iFace)
				merged = true
				break
			}
		}
		if !merged {
			return
		}
	}
}

// adjacentFaces returns the faces sharing an edge with the given face.
func (qh *QuickHull) adjacentFaces(iFace int) []int {

	var faces []int
	iInitial := qh.mesh.Faces.At(iFace).Edge
	iCurrent := iInitial
	for {
		current := *qh.mesh.Edges.At(iCurrent)
		iOther := qh.mesh.Edges.At(current.Opposite).Face
		if iOther != None && iOther != iFace {
			faces = append(faces, iOther)
		}
		iCurrent = current.Next
		if iCurrent == iInitial {
			break
		}
	}
	return faces
}
