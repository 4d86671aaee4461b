// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// GJKRayCaster tests rays against arbitrary convex colliders by
// iteratively advancing a hit fraction along the ray: at each step a GJK
// query decides whether the current ray point lies inside the collider;
// when a separating plane is found instead, the point is advanced to it
// and the plane normal is kept as the candidate surface normal.
//
// See "Ray Casting against General Convex Objects with Application to
// Continuous Collision Detection" by Gino van den Bergen.
type GJKRayCaster struct {
	epsilon       float32
	maxIterations int
}

// NewGJKRayCaster creates and returns a pointer to a new GJKRayCaster
// with the given comparison epsilon and iteration cap.
func NewGJKRayCaster(epsilon float32, maxIterations int) *GJKRayCaster {

	rc := new(GJKRayCaster)
	rc.epsilon = epsilon
	rc.maxIterations = maxIterations
	return rc
}

// Calculate checks whether the given ray intersects the given collider.
// It returns the ray cast data and whether the ray hits.
func (rc *GJKRayCaster) Calculate(ray Ray, collider IConvex) (RayCast, bool) {

	var result RayCast

	t := float32(0)
	var lastNormal mgl32.Vec3
	haveNormal := false

	for iteration := 0; iteration < rc.maxIterations; iteration++ {
		point := ray.Origin.Add(ray.Direction.Mul(t))

		inside, sepDir, sepSupport, decided := rc.pointQuery(point, collider)
		if !decided {
			// Non-converged; treated as a miss
			return result, false
		}
		if inside {
			result.Distance = t
			result.ContactWorld = point
			result.ContactLocal = collider.Transform().Inv().Mul4x1(point.Vec4(1)).Vec3()
			if haveNormal {
				result.ContactNormal = lastNormal.Mul(-1).Normalize()
			} else {
				result.ContactNormal = ray.Direction.Mul(-1).Normalize()
			}
			return result, true
		}

		// Advance the ray point to the separating plane through the
		// collider support point
		den := ray.Direction.Dot(sepDir)
		if den <= rc.epsilon {
			// The plane cannot be reached along the ray
			return result, false
		}
		advance := sepSupport.Sub(point).Dot(sepDir) / den
		if advance <= 0 {
			return result, false
		}
		t += advance
		lastNormal = sepDir
		haveNormal = true
	}

	return result, false
}

// pointQuery runs GJK between a point and the collider. It returns
// whether the point is inside, and otherwise a separating direction with
// the collider support point on the separating plane. The last result
// tells whether the query converged.
func (rc *GJKRayCaster) pointQuery(point mgl32.Vec3, collider IConvex) (inside bool, sepDir, sepSupport mgl32.Vec3, decided bool) {

	support := func(direction mgl32.Vec3) (cso, world mgl32.Vec3) {
		world, _ = collider.Support(direction.Mul(-1))
		return point.Sub(world), world
	}

	direction := point.Sub(Center(collider))
	if direction.Len() < rc.epsilon {
		direction = mgl32.Vec3{1, 0, 0}
	} else {
		direction = direction.Normalize()
	}

	cso, _ := support(direction)
	simplex := []mgl32.Vec3{cso}
	contains := rc.doSimplex(&simplex, &direction)

	for iteration := 0; iteration < maxGJKIterations; iteration++ {
		if contains {
			return true, mgl32.Vec3{}, mgl32.Vec3{}, true
		}
		cso, world := support(direction)
		if cso.Dot(direction) < -rc.epsilon {
			// The plane through the support point with the search
			// direction as normal separates the point from the collider
			return false, direction, world, true
		}
		simplex = append(simplex, cso)
		contains = rc.doSimplex(&simplex, &direction)
	}

	return false, mgl32.Vec3{}, mgl32.Vec3{}, false
}

// doSimplex mirrors the GJK simplex cases over plain CSO points.
func (rc *GJKRayCaster) doSimplex(simplex *[]mgl32.Vec3, direction *mgl32.Vec3) bool {

	points := make([]SupportPoint, len(*simplex))
	for i, cso := range *simplex {
		points[i] = SupportPoint{CSO: cso}
	}
	gjk := GJK{epsilon: rc.epsilon}
	contains := gjk.doSimplex(&points, direction)

	*simplex = (*simplex)[:0]
	for _, sp := range points {
		*simplex = append(*simplex, sp.CSO)
	}
	return contains
}
