// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package collision

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Sphere is a convex collider with the shape of a sphere.
type Sphere struct {
	radius    float32
	transform mgl32.Mat4
	inverse   mgl32.Mat4
	updated   bool
}

// NewSphere creates and returns a pointer to a new Sphere with the given
// radius, located at the origin.
func NewSphere(radius float32) *Sphere {

	s := new(Sphere)
	s.radius = radius
	s.transform = mgl32.Ident4()
	s.inverse = mgl32.Ident4()
	s.updated = true
	return s
}

// Radius returns the radius of the sphere.
func (s *Sphere) Radius() float32 {

	return s.radius
}

// SetRadius sets the radius of the sphere.
func (s *Sphere) SetRadius(radius float32) {

	s.radius = radius
	s.updated = true
}

// SetTransform updates the translation and orientation of the sphere.
func (s *Sphere) SetTransform(transform mgl32.Mat4) {

	s.transform = transform
	s.inverse = transform.Inv()
	s.updated = true
}

// Transform returns the current transform matrix of the sphere.
func (s *Sphere) Transform() mgl32.Mat4 {

	return s.transform
}

// BoundingBox returns the world AABB of the sphere: a translated cube of
// side two radii.
func (s *Sphere) BoundingBox() AABB {

	center := Center(s)
	r := mgl32.Vec3{s.radius, s.radius, s.radius}
	return AABB{Min: center.Sub(r), Max: center.Add(r)}
}

// Updated returns whether the sphere changed since the last call to
// ResetUpdated.
func (s *Sphere) Updated() bool {

	return s.updated
}

// ResetUpdated resets the updated state of the sphere.
func (s *Sphere) ResetUpdated() {

	s.updated = false
}

// Support returns the furthest point of the sphere in the given world
// direction.
func (s *Sphere) Support(direction mgl32.Vec3) (world, local mgl32.Vec3) {

	dir := direction
	if dir.Len() > 0 {
		dir = dir.Normalize()
	} else {
		dir = mgl32.Vec3{1, 0, 0}
	}

	world = Center(s).Add(dir.Mul(s.radius))
	local = s.inverse.Mul4x1(world.Vec4(1)).Vec3()
	return world, local
}
