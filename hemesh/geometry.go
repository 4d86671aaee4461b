// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hemesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ClosestPointInPlane returns the point of the plane through the three
// given points that is closest to p.
func ClosestPointInPlane(p mgl32.Vec3, planePoints [3]mgl32.Vec3) mgl32.Vec3 {

	v1 := planePoints[1].Sub(planePoints[0])
	v2 := planePoints[2].Sub(planePoints[0])
	normal := v1.Cross(v2)
	length := normal.Len()
	if length < normalizationZero {
		return planePoints[0]
	}
	normal = normal.Mul(1 / length)

	distance := p.Sub(planePoints[0]).Dot(normal)
	return p.Sub(normal.Mul(distance))
}

// ProjectPointOnTriangle computes the barycentric coordinates of the
// given point with respect to the given triangle. It returns the
// coordinates (u, v, w) and whether the point lies inside the triangle
// within the given precision.
func ProjectPointOnTriangle(point mgl32.Vec3, triangle [3]mgl32.Vec3, precision float32) (mgl32.Vec3, bool) {

	v0 := triangle[1].Sub(triangle[0])
	v1 := triangle[2].Sub(triangle[0])
	v2 := point.Sub(triangle[0])

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	den := d00*d11 - d01*d01
	if den == 0 {
		return mgl32.Vec3{}, false
	}

	v := (d11*d20 - d01*d21) / den
	w := (d00*d21 - d01*d20) / den
	u := 1 - v - w

	coords := mgl32.Vec3{u, v, w}
	inside := (-precision <= u) && (u <= 1+precision) &&
		(-precision <= v) && (v <= 1+precision) &&
		(-precision <= w) && (w <= 1+precision)
	return coords, inside
}

// ProjectPointInDirection computes the intersection of the line through
// the given origin along the given direction with the plane defined by a
// point and its normal. It returns the intersection point and whether the
// line hits the plane in the positive direction.
func ProjectPointInDirection(origin, direction, planePoint, planeNormal mgl32.Vec3) (mgl32.Vec3, bool) {

	den := direction.Dot(planeNormal)
	if float32(math.Abs(float64(den))) < normalizationZero {
		return mgl32.Vec3{}, false
	}

	t := planePoint.Sub(origin).Dot(planeNormal) / den
	if t < 0 {
		return mgl32.Vec3{}, false
	}
	return origin.Add(direction.Mul(t)), true
}

// TriangleArea returns the area of the given triangle.
func TriangleArea(triangle [3]mgl32.Vec3) float32 {

	v12 := triangle[1].Sub(triangle[0])
	v13 := triangle[2].Sub(triangle[0])
	return v12.Cross(v13).Len() / 2
}

// DistancePointEdge returns the minimum distance from p to the segment
// between e1 and e2.
func DistancePointEdge(p, e1, e2 mgl32.Vec3) float32 {

	length := e2.Sub(e1).Len()
	if length < normalizationZero {
		return p.Sub(e1).Len()
	}
	dir := e2.Sub(e1).Mul(1 / length)

	t := p.Sub(e1).Dot(dir)
	if t < 0 {
		return p.Sub(e1).Len()
	}
	if t > length {
		return p.Sub(e2).Len()
	}
	return p.Sub(e1.Add(dir.Mul(t))).Len()
}
