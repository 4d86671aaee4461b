// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half line with an origin and a direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// ICollider is the interface for all collision shapes. A collider carries
// a world transform, an updated flag and exposes a world space AABB.
type ICollider interface {
	SetTransform(transform mgl32.Mat4)
	Transform() mgl32.Mat4
	BoundingBox() AABB
	Updated() bool
	ResetUpdated()
}

// IConvex is the interface for convex colliders, which additionally
// expose a support function: the furthest point of the shape in a given
// world direction, in both world and local coordinates.
type IConvex interface {
	ICollider
	Support(direction mgl32.Vec3) (world, local mgl32.Vec3)
}

// IConcave is the interface for concave colliders, which enumerate the
// convex parts overlapping a query AABB or intersecting a query ray.
type IConcave interface {
	ICollider
	OverlappingParts(aabb AABB, epsilon float32, callback func(part IConvex))
	IntersectingParts(ray Ray, epsilon float32, callback func(part IConvex))
}

// Center returns the world position of the collider origin.
func Center(c ICollider) mgl32.Vec3 {

	t := c.Transform()
	return mgl32.Vec3{t.At(0, 3), t.At(1, 3), t.At(2, 3)}
}
