// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Composite is a concave collider composed of a list of child colliders.
// Part enumeration forwards to the children: convex children are parts
// themselves, concave children enumerate their own parts.
type Composite struct {
	parts     []ICollider
	transform mgl32.Mat4
	updated   bool
}

// NewComposite creates and returns a pointer to a new Composite with the
// given child colliders.
func NewComposite(parts []ICollider) *Composite {

	c := new(Composite)
	c.parts = parts
	c.transform = mgl32.Ident4()
	c.updated = true
	return c
}

// Parts returns the child colliders of the composite.
func (c *Composite) Parts() []ICollider {

	return c.parts
}

// SetTransform updates the transform of the composite and of every child.
func (c *Composite) SetTransform(transform mgl32.Mat4) {

	c.transform = transform
	for _, part := range c.parts {
		part.SetTransform(transform)
	}
	c.updated = true
}

// Transform returns the current transform matrix of the composite.
func (c *Composite) Transform() mgl32.Mat4 {

	return c.transform
}

// BoundingBox returns the union of the world AABBs of the children.
func (c *Composite) BoundingBox() AABB {

	box := NewAABB()
	for _, part := range c.parts {
		box = box.Union(part.BoundingBox())
	}
	return box
}

// Updated returns whether the composite or any of its children changed
// since the last call to ResetUpdated.
func (c *Composite) Updated() bool {

	if c.updated {
		return true
	}
	for _, part := range c.parts {
		if part.Updated() {
			return true
		}
	}
	return false
}

// ResetUpdated resets the updated state of the composite and its children.
func (c *Composite) ResetUpdated() {

	c.updated = false
	for _, part := range c.parts {
		part.ResetUpdated()
	}
}

// OverlappingParts calls the given callback for each convex part of the
// composite overlapping the given world AABB.
func (c *Composite) OverlappingParts(aabb AABB, epsilon float32, callback func(part IConvex)) {

	for _, part := range c.parts {
		switch p := part.(type) {
		case IConcave:
			p.OverlappingParts(aabb, epsilon, callback)
		case IConvex:
			if p.BoundingBox().Overlaps(aabb, epsilon) {
				callback(p)
			}
		}
	}
}

// IntersectingParts calls the given callback for each convex part of the
// composite whose AABB is intersected by the given world ray.
func (c *Composite) IntersectingParts(ray Ray, epsilon float32, callback func(part IConvex)) {

	for _, part := range c.parts {
		switch p := part.(type) {
		case IConcave:
			p.IntersectingParts(ray, epsilon, callback)
		case IConvex:
			if rayIntersectsAABB(ray, p.BoundingBox(), epsilon) {
				callback(p)
			}
		}
	}
}

// rayIntersectsAABB is a slab test of a ray against an AABB.
func rayIntersectsAABB(ray Ray, box AABB, epsilon float32) bool {

	tMin, tMax := float32(0), float32(3.4e38)
	for axis := 0; axis < 3; axis++ {
		if ray.Direction[axis] == 0 {
			if ray.Origin[axis] < box.Min[axis]-epsilon || ray.Origin[axis] > box.Max[axis]+epsilon {
				return false
			}
			continue
		}
		inv := 1 / ray.Direction[axis]
		t1 := (box.Min[axis] - epsilon - ray.Origin[axis]) * inv
		t2 := (box.Max[axis] + epsilon - ray.Origin[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return false
		}
	}
	return true
}
