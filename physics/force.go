// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tachyon3d/engine/physics/object"
)

// Gravity is a force generator that applies a constant acceleration
// along the Y axis, scaled by the body mass.
type Gravity struct {
	acceleration float32
}

// NewGravity creates and returns a pointer to a new Gravity force with
// the given acceleration (negative values pull downward).
func NewGravity(acceleration float32) *Gravity {

	return &Gravity{acceleration: acceleration}
}

// Acceleration returns the acceleration of the gravity force.
func (g *Gravity) Acceleration() float32 {

	return g.acceleration
}

// Apply satisfies the object.Force interface.
func (g *Gravity) Apply(body *object.Body) {

	invMass := body.Properties().InvMass
	if invMass <= 0 {
		return
	}
	body.AddWorldForce(mgl32.Vec3{0, g.acceleration / invMass, 0})
}

// DirectionalForce is a force generator that applies a constant world
// space force at the center of mass.
type DirectionalForce struct {
	force mgl32.Vec3
}

// NewDirectionalForce creates and returns a pointer to a new
// DirectionalForce with the given force vector.
func NewDirectionalForce(force mgl32.Vec3) *DirectionalForce {

	return &DirectionalForce{force: force}
}

// Force returns the force vector.
func (d *DirectionalForce) Force() mgl32.Vec3 {

	return d.force
}

// SetForce sets the force vector.
func (d *DirectionalForce) SetForce(force mgl32.Vec3) {

	d.force = force
}

// Apply satisfies the object.Force interface.
func (d *DirectionalForce) Apply(body *object.Body) {

	body.AddWorldForce(d.force)
}

// PunctualForce is a force generator that applies a constant world space
// force at a fixed world point, producing both force and torque.
type PunctualForce struct {
	force mgl32.Vec3
	point mgl32.Vec3
}

// NewPunctualForce creates and returns a pointer to a new PunctualForce
// with the given force vector and world application point.
func NewPunctualForce(force, point mgl32.Vec3) *PunctualForce {

	return &PunctualForce{force: force, point: point}
}

// Force returns the force vector.
func (p *PunctualForce) Force() mgl32.Vec3 {

	return p.force
}

// Point returns the world application point.
func (p *PunctualForce) Point() mgl32.Vec3 {

	return p.point
}

// Apply satisfies the object.Force interface.
func (p *PunctualForce) Apply(body *object.Body) {

	body.AddWorldForceAt(p.force, p.point)
}
