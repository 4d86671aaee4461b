// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package collision implements the collision pipeline: collider shapes,
// broad-phase culling by axis aligned bounding boxes, narrow-phase convex
// intersection (GJK) with penetration extraction (EPA), ray casting and
// persistent contact manifolds.
package collision

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// NewAABB returns an inverted AABB ready to be extended with points.
func NewAABB() AABB {

	inf := float32(math.Inf(1))
	return AABB{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// Extend grows the AABB to contain the given point.
func (b *AABB) Extend(point mgl32.Vec3) {

	for axis := 0; axis < 3; axis++ {
		if point[axis] < b.Min[axis] {
			b.Min[axis] = point[axis]
		}
		if point[axis] > b.Max[axis] {
			b.Max[axis] = point[axis]
		}
	}
}

// Union returns the smallest AABB containing both boxes.
func (b AABB) Union(other AABB) AABB {

	result := b
	result.Extend(other.Min)
	result.Extend(other.Max)
	return result
}

// Overlaps returns whether the two boxes overlap, with each box inflated
// by the given epsilon.
func (b AABB) Overlaps(other AABB, epsilon float32) bool {

	for axis := 0; axis < 3; axis++ {
		if b.Max[axis]+epsilon < other.Min[axis] || other.Max[axis]+epsilon < b.Min[axis] {
			return false
		}
	}
	return true
}

// Transformed returns the AABB of this box's eight corners transformed by
// the given matrix.
func (b AABB) Transformed(transform mgl32.Mat4) AABB {

	result := NewAABB()
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{b.Min.X(), b.Min.Y(), b.Min.Z()}
		if i&1 != 0 {
			corner[0] = b.Max.X()
		}
		if i&2 != 0 {
			corner[1] = b.Max.Y()
		}
		if i&4 != 0 {
			corner[2] = b.Max.Z()
		}
		result.Extend(transform.Mul4x1(corner.Vec4(1)).Vec3())
	}
	return result
}
