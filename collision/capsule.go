// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Capsule is a convex collider with the shape of a cylinder with
// hemispherical ends, aligned with the local Y axis.
type Capsule struct {
	radius    float32
	height    float32
	transform mgl32.Mat4
	inverse   mgl32.Mat4
	updated   bool
}

// NewCapsule creates and returns a pointer to a new Capsule with the
// given radius and height, located at the origin.
func NewCapsule(radius, height float32) *Capsule {

	c := new(Capsule)
	c.radius = radius
	c.height = height
	c.transform = mgl32.Ident4()
	c.inverse = mgl32.Ident4()
	c.updated = true
	return c
}

// Radius returns the radius of the capsule.
func (c *Capsule) Radius() float32 {

	return c.radius
}

// Height returns the height of the capsule.
func (c *Capsule) Height() float32 {

	return c.height
}

// SetTransform updates the translation and orientation of the capsule.
func (c *Capsule) SetTransform(transform mgl32.Mat4) {

	c.transform = transform
	c.inverse = transform.Inv()
	c.updated = true
}

// Transform returns the current transform matrix of the capsule.
func (c *Capsule) Transform() mgl32.Mat4 {

	return c.transform
}

// BoundingBox returns the world AABB of the capsule, wrapping both end
// spheres after the transform.
func (c *Capsule) BoundingBox() AABB {

	a := mgl32.Vec3{0, c.height / 2, 0}
	b := mgl32.Vec3{0, -c.height / 2, 0}
	a = c.transform.Mul4x1(a.Vec4(1)).Vec3()
	b = c.transform.Mul4x1(b.Vec4(1)).Vec3()

	box := NewAABB()
	r := mgl32.Vec3{c.radius, c.radius, c.radius}
	box.Extend(a.Sub(r))
	box.Extend(a.Add(r))
	box.Extend(b.Sub(r))
	box.Extend(b.Add(r))
	return box
}

// Updated returns whether the capsule changed since the last call to
// ResetUpdated.
func (c *Capsule) Updated() bool {

	return c.updated
}

// ResetUpdated resets the updated state of the capsule.
func (c *Capsule) ResetUpdated() {

	c.updated = false
}

// Support returns the furthest point of the capsule in the given world
// direction: the end of the transformed axis segment that lies furthest
// along the direction, pushed out by the radius.
func (c *Capsule) Support(direction mgl32.Vec3) (world, local mgl32.Vec3) {

	a := c.transform.Mul4x1(mgl32.Vec3{0, c.height / 2, 0}.Vec4(1)).Vec3()
	b := c.transform.Mul4x1(mgl32.Vec3{0, -c.height / 2, 0}.Vec4(1)).Vec3()

	dir := direction
	if dir.Len() > 0 {
		dir = dir.Normalize()
	} else {
		dir = mgl32.Vec3{1, 0, 0}
	}

	end := a
	if dir.Dot(b) > dir.Dot(a) {
		end = b
	}

	world = end.Add(dir.Mul(c.radius))
	local = c.inverse.Mul4x1(world.Vec4(1)).Vec3()
	return world, local
}
