// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is a convex collider whose vertices form a triangle.
type Triangle struct {
	localVertices [3]mgl32.Vec3
	worldVertices [3]mgl32.Vec3
	transform     mgl32.Mat4
	updated       bool
}

// NewTriangle creates and returns a pointer to a new Triangle with the
// given vertices in local coordinates.
func NewTriangle(vertices [3]mgl32.Vec3) *Triangle {

	t := new(Triangle)
	t.localVertices = vertices
	t.worldVertices = vertices
	t.transform = mgl32.Ident4()
	t.updated = true
	return t
}

// LocalVertices returns the vertices of the triangle in local coordinates.
func (t *Triangle) LocalVertices() [3]mgl32.Vec3 {

	return t.localVertices
}

// SetLocalVertices sets the vertices of the triangle in local coordinates.
func (t *Triangle) SetLocalVertices(vertices [3]mgl32.Vec3) {

	t.localVertices = vertices
	t.SetTransform(t.transform)
}

// SetTransform updates the scale, translation and orientation of the
// triangle.
func (t *Triangle) SetTransform(transform mgl32.Mat4) {

	t.transform = transform
	for i := range t.localVertices {
		t.worldVertices[i] = transform.Mul4x1(t.localVertices[i].Vec4(1)).Vec3()
	}
	t.updated = true
}

// Transform returns the current transform matrix of the triangle.
func (t *Triangle) Transform() mgl32.Mat4 {

	return t.transform
}

// BoundingBox returns the world AABB of the triangle.
func (t *Triangle) BoundingBox() AABB {

	box := NewAABB()
	for i := range t.worldVertices {
		box.Extend(t.worldVertices[i])
	}
	return box
}

// Updated returns whether the triangle changed since the last call to
// ResetUpdated.
func (t *Triangle) Updated() bool {

	return t.updated
}

// ResetUpdated resets the updated state of the triangle.
func (t *Triangle) ResetUpdated() {

	t.updated = false
}

// Support returns the triangle vertex furthest along the given world
// direction.
func (t *Triangle) Support(direction mgl32.Vec3) (world, local mgl32.Vec3) {

	best := 0
	bestDot := t.worldVertices[0].Dot(direction)
	for i := 1; i < 3; i++ {
		if d := t.worldVertices[i].Dot(direction); d > bestDot {
			bestDot = d
			best = i
		}
	}
	return t.worldVertices[best], t.localVertices[best]
}
