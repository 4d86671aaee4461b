// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GJK decides whether two convex colliders intersect with the
// Gilbert-Johnson-Keerthi algorithm, by testing whether their Minkowski
// difference contains the origin. On intersection the terminal simplex
// brackets the origin and seeds the EPA expansion.
type GJK struct {
	epsilon float32
}

// maxGJKIterations bounds the main GJK loop against numerical cycling.
const maxGJKIterations = 64

// NewGJK creates and returns a pointer to a new GJK with the given
// comparison epsilon.
func NewGJK(epsilon float32) *GJK {

	return &GJK{epsilon: epsilon}
}

// Intersect tests the two colliders for intersection. It returns whether
// they intersect and the terminal simplex of 1 to 4 support points.
func (g *GJK) Intersect(c1, c2 IConvex) (bool, []SupportPoint) {

	// Seed with the direction between the collider centers; coincident
	// centers fall back to the world X axis so the pipeline never stalls.
	direction := Center(c2).Sub(Center(c1))
	if direction.Len() < g.epsilon {
		direction = mgl32.Vec3{1, 0, 0}
	} else {
		direction = direction.Normalize()
	}

	simplex := []SupportPoint{NewSupportPoint(c1, c2, direction)}
	contains := g.doSimplex(&simplex, &direction)
	for iteration := 0; !contains; iteration++ {
		if iteration >= maxGJKIterations {
			// Not converging; report the pair as disjoint
			return false, simplex
		}
		sp := NewSupportPoint(c1, c2, direction)
		if sp.CSO.Dot(direction) < -g.epsilon {
			return false, simplex
		}
		simplex = append(simplex, sp)
		contains = g.doSimplex(&simplex, &direction)
	}

	return true, simplex
}

// doSimplex updates the simplex and the search direction from the Voronoi
// region of the origin, dispatching on the simplex size. It returns true
// when the simplex contains the origin.
func (g *GJK) doSimplex(simplex *[]SupportPoint, direction *mgl32.Vec3) bool {

	switch len(*simplex) {
	case 1:
		return g.doSimplex0D(simplex, direction)
	case 2:
		return g.doSimplex1D(simplex, direction)
	case 3:
		return g.doSimplex2D(simplex, direction)
	case 4:
		return g.doSimplex3D(simplex, direction)
	}
	return false
}

func (g *GJK) doSimplex0D(simplex *[]SupportPoint, direction *mgl32.Vec3) bool {

	a := (*simplex)[0]
	a0 := a.CSO.Mul(-1)

	if a0.Len() <= g.epsilon {
		// The support point is the origin
		return true
	}
	*direction = a0.Normalize()
	return false
}

func (g *GJK) doSimplex1D(simplex *[]SupportPoint, direction *mgl32.Vec3) bool {

	a, b := (*simplex)[0], (*simplex)[1]
	ba := a.CSO.Sub(b.CSO)
	b0 := b.CSO.Mul(-1)

	if ba.Dot(b0) < -g.epsilon {
		// The origin is past b; drop a and search from the point
		*simplex = []SupportPoint{b}
		return g.doSimplex0D(simplex, direction)
	}

	n := ba.Cross(b0).Cross(ba)
	if n.Len() <= g.epsilon {
		// The origin is on the segment
		return true
	}
	n = n.Normalize()
	if b0.Dot(n) > g.epsilon {
		*direction = n
		return false
	}
	return true
}

func (g *GJK) doSimplex2D(simplex *[]SupportPoint, direction *mgl32.Vec3) bool {

	a, b, c := (*simplex)[0], (*simplex)[1], (*simplex)[2]
	ca := a.CSO.Sub(c.CSO)
	cb := b.CSO.Sub(c.CSO)
	c0 := c.CSO.Mul(-1)

	n := cb.Cross(ca)
	if n.Len() <= g.epsilon {
		// Degenerate triangle; retry as a segment
		*simplex = []SupportPoint{a, c}
		return g.doSimplex1D(simplex, direction)
	}
	n = n.Normalize()
	nxca := n.Cross(ca)
	cbxn := cb.Cross(n)
	if nxca.Len() > 0 {
		nxca = nxca.Normalize()
	}
	if cbxn.Len() > 0 {
		cbxn = cbxn.Normalize()
	}

	if nxca.Dot(c0) > g.epsilon {
		// The origin is outside the triangle past the ca edge
		*simplex = []SupportPoint{a, c}
		return g.doSimplex1D(simplex, direction)
	}
	if cbxn.Dot(c0) > g.epsilon {
		// The origin is outside the triangle past the cb edge
		*simplex = []SupportPoint{b, c}
		return g.doSimplex1D(simplex, direction)
	}

	dot := n.Dot(c0)
	if dot > g.epsilon {
		// The origin is above the triangle
		*direction = n
		return false
	}
	if dot < -g.epsilon {
		// The origin is below the triangle; reverse the winding
		*simplex = []SupportPoint{b, a, c}
		*direction = n.Mul(-1)
		return false
	}
	// The origin is on the triangle
	return true
}

func (g *GJK) doSimplex3D(simplex *[]SupportPoint, direction *mgl32.Vec3) bool {

	a, b, c, d := (*simplex)[0], (*simplex)[1], (*simplex)[2], (*simplex)[3]
	da := a.CSO.Sub(d.CSO)
	db := b.CSO.Sub(d.CSO)
	dc := c.CSO.Sub(d.CSO)
	d0 := d.CSO.Mul(-1)

	dbxda := db.Cross(da)
	daxdc := da.Cross(dc)
	dcxdb := dc.Cross(db)
	if dbxda.Len() > 0 {
		dbxda = dbxda.Normalize()
	}
	if daxdc.Len() > 0 {
		daxdc = daxdc.Normalize()
	}
	if dcxdb.Len() > 0 {
		dcxdb = dcxdb.Normalize()
	}

	if dbxda.Dot(d0) > g.epsilon {
		// The origin is outside the tetrahedron past the bda face
		*simplex = []SupportPoint{a, b, d}
		return g.doSimplex2D(simplex, direction)
	}
	if daxdc.Dot(d0) > g.epsilon {
		// The origin is outside the tetrahedron past the adc face
		*simplex = []SupportPoint{c, a, d}
		return g.doSimplex2D(simplex, direction)
	}
	if dcxdb.Dot(d0) > g.epsilon {
		// The origin is outside the tetrahedron past the cdb face
		*simplex = []SupportPoint{b, c, d}
		return g.doSimplex2D(simplex, direction)
	}
	// The origin is inside the tetrahedron
	return true
}
