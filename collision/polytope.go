// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// polytopeFace is a triangle of the EPA polytope, with its outward normal
// and its supporting plane distance to the origin.
type polytopeFace struct {
	a, b, c  int
	normal   mgl32.Vec3
	distance float32
}

// polytope holds the vertices and triangular faces that the EPA algorithm
// expands. It is created from the terminal GJK simplex, completed to a
// tetrahedron when the simplex has fewer than four points.
type polytope struct {
	vertices []SupportPoint
	faces    []polytopeFace
}

// newPolytope builds the initial polytope from a GJK simplex. It returns
// nil when no non-degenerate tetrahedron can be built.
func newPolytope(c1, c2 IConvex, simplex []SupportPoint, epsilon float32) *polytope {

	simplex = completeSimplex(c1, c2, simplex, epsilon)
	if len(simplex) < 4 {
		return nil
	}

	p := new(polytope)
	p.vertices = simplex

	// Orient the four faces outward
	p0, p1, p2, p3 := simplex[0].CSO, simplex[1].CSO, simplex[2].CSO, simplex[3].CSO
	normal := p1.Sub(p0).Cross(p2.Sub(p0))
	if p3.Sub(p0).Dot(normal) <= 0 {
		p.addFace(0, 1, 2)
		p.addFace(0, 3, 1)
		p.addFace(0, 2, 3)
		p.addFace(1, 3, 2)
	} else {
		p.addFace(0, 2, 1)
		p.addFace(0, 1, 3)
		p.addFace(0, 3, 2)
		p.addFace(1, 2, 3)
	}
	return p
}

// completeSimplex expands a 1, 2 or 3 point simplex into a tetrahedron by
// searching supports perpendicular to the current feature.
func completeSimplex(c1, c2 IConvex, simplex []SupportPoint, epsilon float32) []SupportPoint {

	if len(simplex) == 1 {
		// Search along the fixed axes for a second distinct point
		axes := []mgl32.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
		for _, axis := range axes {
			sp := NewSupportPoint(c1, c2, axis)
			if sp.CSO.Sub(simplex[0].CSO).Len() > epsilon {
				simplex = append(simplex, sp)
				break
			}
		}
		if len(simplex) < 2 {
			return simplex
		}
	}

	if len(simplex) == 2 {
		// Search perpendicular to the edge
		v := simplex[1].CSO.Sub(simplex[0].CSO)
		axis := mgl32.Vec3{1, 0, 0}
		if abs(v.X()) > abs(v.Y()) {
			axis = mgl32.Vec3{0, 1, 0}
		}
		perp := v.Cross(axis)
		if perp.Len() <= epsilon {
			return simplex
		}
		perp = perp.Normalize()
		for _, dir := range []mgl32.Vec3{perp, perp.Mul(-1), v.Cross(perp).Normalize(), v.Cross(perp).Normalize().Mul(-1)} {
			sp := NewSupportPoint(c1, c2, dir)
			area := simplex[1].CSO.Sub(simplex[0].CSO).Cross(sp.CSO.Sub(simplex[0].CSO))
			if area.Len() > epsilon {
				simplex = append(simplex, sp)
				break
			}
		}
		if len(simplex) < 3 {
			return simplex
		}
	}

	if len(simplex) == 3 {
		// Search along both triangle normals
		normal := simplex[1].CSO.Sub(simplex[0].CSO).Cross(simplex[2].CSO.Sub(simplex[0].CSO))
		if normal.Len() <= epsilon {
			return simplex
		}
		normal = normal.Normalize()
		for _, dir := range []mgl32.Vec3{normal, normal.Mul(-1)} {
			sp := NewSupportPoint(c1, c2, dir)
			if abs(sp.CSO.Sub(simplex[0].CSO).Dot(normal)) > epsilon {
				simplex = append(simplex, sp)
				break
			}
		}
	}

	return simplex
}

// addFace appends the triangle (a, b, c) with its outward normal and
// plane distance to the origin.
func (p *polytope) addFace(a, b, c int) {

	pa, pb, pc := p.vertices[a].CSO, p.vertices[b].CSO, p.vertices[c].CSO
	normal := pb.Sub(pa).Cross(pc.Sub(pa))
	if normal.Len() > 0 {
		normal = normal.Normalize()
	}
	// The winding keeps the normal outward; the distance is unsigned to
	// absorb the slightly negative values of faces through the origin.
	distance := abs(normal.Dot(pa))
	p.faces = append(p.faces, polytopeFace{a: a, b: b, c: c, normal: normal, distance: distance})
}

// closestFace returns the index of the face whose supporting plane is
// nearest to the origin.
func (p *polytope) closestFace() int {

	best := -1
	bestDistance := float32(3.4e38)
	for i := range p.faces {
		if p.faces[i].distance < bestDistance {
			bestDistance = p.faces[i].distance
			best = i
		}
	}
	return best
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
