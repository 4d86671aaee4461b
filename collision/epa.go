// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tachyon3d/engine/hemesh"
)

// EPA extracts the contact data of two intersecting convex colliders with
// the Expanding Polytope Algorithm: the GJK simplex is expanded until the
// face of the polytope closest to the origin stops improving by more than
// the minimum face difference, and that face yields the penetration
// depth, the contact normal and the witness points.
type EPA struct {
	minFDifference   float32
	contactPrecision float32
	maxIterations    int
}

// NewEPA creates and returns a pointer to a new EPA with the given
// minimum face distance difference, contact precision and iteration cap.
func NewEPA(minFDifference, contactPrecision float32, maxIterations int) *EPA {

	e := new(EPA)
	e.minFDifference = minFDifference
	e.contactPrecision = contactPrecision
	// The barycentric inside test needs slack above single precision
	// noise or border contacts are dropped
	if e.contactPrecision < 1e-5 {
		e.contactPrecision = 1e-5
	}
	e.maxIterations = maxIterations
	return e
}

// Calculate computes the contact between the two intersecting colliders
// from the terminal GJK simplex. It returns the contact and whether the
// expansion converged to a valid contact.
func (e *EPA) Calculate(c1, c2 IConvex, simplex []SupportPoint) (Contact, bool) {

	var contact Contact

	p := newPolytope(c1, c2, simplex, e.contactPrecision)
	if p == nil {
		return contact, false
	}

	iFace, converged := e.expand(c1, c2, p)
	if iFace < 0 {
		return contact, false
	}
	face := p.faces[iFace]

	// Project the origin onto the closest face to get its barycentric
	// coordinates
	a := p.vertices[face.a]
	b := p.vertices[face.b]
	c := p.vertices[face.c]
	coords, inside := hemesh.ProjectPointOnTriangle(
		mgl32.Vec3{}, [3]mgl32.Vec3{a.CSO, b.CSO, c.CSO}, e.contactPrecision,
	)
	if !inside {
		return contact, false
	}

	// Blend the witness points of the three supports with the barycentric
	// coordinates of the origin
	contact.Penetration = face.distance
	contact.Normal = face.normal
	for side := 0; side < 2; side++ {
		contact.World[side] = a.World[side].Mul(coords.X()).
			Add(b.World[side].Mul(coords.Y())).
			Add(c.World[side].Mul(coords.Z()))
		contact.Local[side] = a.Local[side].Mul(coords.X()).
			Add(b.Local[side].Mul(coords.Y())).
			Add(c.Local[side].Mul(coords.Z()))
	}
	return contact, converged
}

// expand grows the polytope until the closest face distance stops
// improving by more than the minimum face difference. It returns the
// index of the closest face and whether the loop converged within the
// iteration cap; on cap exhaustion the best face found so far is
// returned flagged as non-converged.
func (e *EPA) expand(c1, c2 IConvex, p *polytope) (int, bool) {

	for iteration := 0; iteration < e.maxIterations; iteration++ {
		iClosest := p.closestFace()
		if iClosest < 0 {
			return -1, false
		}
		closest := p.faces[iClosest]

		// New support along the closest face normal
		sp := NewSupportPoint(c1, c2, closest.normal)
		if sp.CSO.Dot(closest.normal)-closest.distance <= e.minFDifference {
			return iClosest, true
		}

		// Delete every face visible from the new point and collect the
		// unique edges bounding the hole
		type edge struct{ a, b int }
		var holeEdges []edge
		appendEdge := func(ed edge) {
			for i := range holeEdges {
				if (holeEdges[i].a == ed.b && holeEdges[i].b == ed.a) ||
					(holeEdges[i].a == ed.a && holeEdges[i].b == ed.b) {
					holeEdges[i] = holeEdges[len(holeEdges)-1]
					holeEdges = holeEdges[:len(holeEdges)-1]
					return
				}
			}
			holeEdges = append(holeEdges, ed)
		}

		remaining := p.faces[:0]
		for _, face := range p.faces {
			facePoint := p.vertices[face.a].CSO
			if face.normal.Dot(sp.CSO.Sub(facePoint)) > 0 {
				appendEdge(edge{face.a, face.b})
				appendEdge(edge{face.b, face.c})
				appendEdge(edge{face.c, face.a})
			} else {
				remaining = append(remaining, face)
			}
		}
		if len(holeEdges) == 0 {
			// The new point does not expand the polytope
			return iClosest, true
		}
		p.faces = remaining

		// Fan new faces from the hole edges to the new support point
		p.vertices = append(p.vertices, sp)
		iNew := len(p.vertices) - 1
		for _, ed := range holeEdges {
			p.addFace(ed.a, ed.b, iNew)
		}
	}

	// Iteration cap reached; report the best face found as non-converged
	return p.closestFace(), false
}
