// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package constraint

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/tachyon3d/engine/physics/object"
)

// NormalContact is the unilateral non-penetration constraint of one
// contact point. The impulse is bounded to [0, inf) so the constraint
// only pushes the bodies apart, with a Baumgarte bias proportional to
// the penetration beyond the slop.
type NormalContact struct {
	Base
	point       mgl32.Vec3
	normal      mgl32.Vec3
	penetration float32
	beta        float32
	slop        float32
}

// NewNormalContact creates and returns a pointer to a new NormalContact
// between the given bodies with the given positional Baumgarte factor
// and penetration slop.
func NewNormalContact(bodies [2]*object.Body, beta, slop float32) *NormalContact {

	nc := new(NormalContact)
	nc.Base = NewBase(bodies)
	nc.beta = beta
	nc.slop = slop
	return nc
}

// SetContactData updates the constraint with the current contact point,
// normal and penetration. The normal must be a unit vector in world
// space pointing outward from the first body.
func (nc *NormalContact) SetContactData(point, normal mgl32.Vec3, penetration float32) {

	nc.point = point
	nc.normal = normal
	nc.penetration = penetration
}

// arms returns the world vectors from each body center to the contact
// point.
func (nc *NormalContact) arms() [2]mgl32.Vec3 {

	bodies := nc.RigidBodies()
	var r [2]mgl32.Vec3
	for i := 0; i < 2; i++ {
		r[i] = nc.point.Sub(bodies[i].State().Position)
	}
	return r
}

// Jacobian satisfies the IConstraint interface:
// [-n, -(r1 x n), n, r2 x n].
func (nc *NormalContact) Jacobian() [12]float32 {

	r := nc.arms()
	jv1 := nc.normal.Mul(-1)
	jw1 := r[0].Cross(nc.normal).Mul(-1)
	jv2 := nc.normal
	jw2 := r[1].Cross(nc.normal)
	return jacobianRow(jv1, jw1, jv2, jw2)
}

// Bias satisfies the IConstraint interface.
func (nc *NormalContact) Bias() float32 {

	depth := nc.penetration - nc.slop
	if depth < 0 {
		depth = 0
	}
	return nc.beta * depth
}

// Bounds satisfies the IConstraint interface: contacts only push.
func (nc *NormalContact) Bounds() Bounds {

	return Bounds{Min: 0, Max: float32(math.Inf(1))}
}

// FrictionContact is one of the two tangential constraints paired with a
// NormalContact. Its impulse is bounded by the friction coefficient
// times the impulse of the paired normal constraint, read back from the
// solver as it iterates.
type FrictionContact struct {
	Base
	normal  *NormalContact
	tangent mgl32.Vec3
	mu      float32
}

// NewFrictionContact creates and returns a pointer to a new
// FrictionContact paired with the given normal constraint, with the
// given friction coefficient.
func NewFrictionContact(normal *NormalContact, mu float32) *FrictionContact {

	fc := new(FrictionContact)
	fc.Base = NewBase(normal.RigidBodies())
	fc.normal = normal
	fc.mu = mu
	return fc
}

// SetTangent sets the world space tangent direction of the constraint.
// The two friction constraints of a contact use orthogonal tangents.
func (fc *FrictionContact) SetTangent(tangent mgl32.Vec3) {

	fc.tangent = tangent
}

// Jacobian satisfies the IConstraint interface.
func (fc *FrictionContact) Jacobian() [12]float32 {

	r := fc.normal.arms()
	jv1 := fc.tangent.Mul(-1)
	jw1 := r[0].Cross(fc.tangent).Mul(-1)
	jv2 := fc.tangent
	jw2 := r[1].Cross(fc.tangent)
	return jacobianRow(jv1, jw1, jv2, jw2)
}

// Bias satisfies the IConstraint interface: friction has no positional
// target.
func (fc *FrictionContact) Bias() float32 {

	return 0
}

// Bounds satisfies the IConstraint interface: the friction impulse is
// limited by the current normal impulse scaled by the coefficient.
func (fc *FrictionContact) Bounds() Bounds {

	limit := fc.mu * fc.normal.Lambda()
	if limit < 0 {
		limit = -limit
	}
	return Bounds{Min: -limit, Max: limit}
}

// ContactTangents returns two unit vectors orthogonal to the given
// contact normal and to each other.
func ContactTangents(normal mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {

	axis := mgl32.Vec3{1, 0, 0}
	if abs32(normal.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	t1 := normal.Cross(axis).Normalize()
	t2 := normal.Cross(t1)
	return t1, t2
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
