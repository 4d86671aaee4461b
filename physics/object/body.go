// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package object implements rigid bodies: mass properties, kinematic
// state, force accumulators, the semi-implicit Euler integrator and the
// sleeping state machine.
package object

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Status bits of a rigid body.
type Status uint8

const (
	// StatusSleeping marks a body whose motion dropped below its sleep
	// threshold; it skips integration until touched.
	StatusSleeping Status = 1 << iota
	// StatusIntegrated marks a body integrated in the current tick.
	StatusIntegrated
	// StatusConstraintsSolved marks a body whose velocity was corrected
	// by the constraint solver in the current tick.
	StatusConstraintsSolved
	// StatusUpdatedByUser marks a body whose state was replaced by the
	// user since the last tick.
	StatusUpdatedByUser
)

// Force is a force generator attached to a rigid body. Apply adds the
// generated force and torque to the body accumulators from its current
// state.
type Force interface {
	Apply(body *Body)
}

// Properties holds the configuration of a rigid body that stays constant
// between ticks.
type Properties struct {
	InvMass     float32
	InvInertia  mgl32.Mat3 // inverse inertia tensor in the body frame
	LinearDrag  float32
	AngularDrag float32
	SleepMotion float32
}

// NewProperties returns the properties of a dynamic body with the given
// mass and body frame inertia tensor, with no drag.
func NewProperties(mass float32, inertia mgl32.Mat3) Properties {

	return Properties{
		InvMass:     1 / mass,
		InvInertia:  inertia.Inv(),
		LinearDrag:  1,
		AngularDrag: 1,
		SleepMotion: 0.001,
	}
}

// NewStaticProperties returns the properties of a body with infinite
// mass, which never moves in response to forces or impulses.
func NewStaticProperties() Properties {

	return Properties{
		LinearDrag:  1,
		AngularDrag: 1,
		SleepMotion: 0.001,
	}
}

// State holds the kinematic state of a rigid body.
type State struct {
	Position            mgl32.Vec3
	Orientation         mgl32.Quat
	LinearVelocity      mgl32.Vec3
	AngularVelocity     mgl32.Vec3
	LinearAcceleration  mgl32.Vec3
	AngularAcceleration mgl32.Vec3
	ForceSum            mgl32.Vec3
	TorqueSum           mgl32.Vec3
	Motion              float32
}

// Body is a rigid body under simulation.
type Body struct {
	properties      Properties
	state           State
	status          Status
	forces          []Force
	transformMatrix mgl32.Mat4
	worldInvInertia mgl32.Mat3
}

// NewBody creates and returns a pointer to a new Body with the given
// properties and initial state.
func NewBody(properties Properties, state State) *Body {

	b := new(Body)
	b.properties = properties
	b.state = state
	b.state.Motion = 0
	b.status = StatusUpdatedByUser
	b.normalizeOrientation()
	b.synchronize()
	return b
}

// Properties returns the properties of the body.
func (b *Body) Properties() Properties {

	return b.properties
}

// State returns a copy of the current state of the body.
func (b *Body) State() State {

	return b.state
}

// SetState replaces the state of the body, waking it up and marking it as
// updated by the user. The motion metric restarts from zero.
func (b *Body) SetState(state State) {

	b.state = state
	b.state.Motion = 0
	b.normalizeOrientation()
	b.synchronize()
	b.SetStatus(StatusSleeping, false)
	b.SetStatus(StatusUpdatedByUser, true)
}

// Status returns whether the given status bit is set.
func (b *Body) Status(bit Status) bool {

	return b.status&bit != 0
}

// SetStatus sets or clears the given status bit.
func (b *Body) SetStatus(bit Status, state bool) {

	if state {
		b.status |= bit
	} else {
		b.status &^= bit
	}
}

// AddForce attaches a force generator to the body and wakes it up.
func (b *Body) AddForce(force Force) {

	b.forces = append(b.forces, force)
	b.SetStatus(StatusSleeping, false)
}

// RemoveForce detaches the given force generator from the body.
// It returns true if found.
func (b *Body) RemoveForce(force Force) bool {

	for pos, current := range b.forces {
		if current == force {
			b.forces = append(b.forces[:pos], b.forces[pos+1:]...)
			return true
		}
	}
	return false
}

// ApplyForces clears the force accumulators and reapplies every attached
// force generator. Bodies without generators keep their accumulated
// sums, so force sums seeded through SetState behave as constant forces.
func (b *Body) ApplyForces() {

	if len(b.forces) == 0 {
		return
	}
	b.state.ForceSum = mgl32.Vec3{}
	b.state.TorqueSum = mgl32.Vec3{}
	for _, force := range b.forces {
		force.Apply(b)
	}
}

// AddWorldForce adds a force applied at the center of mass.
func (b *Body) AddWorldForce(force mgl32.Vec3) {

	b.state.ForceSum = b.state.ForceSum.Add(force)
}

// AddWorldForceAt adds a force applied at the given world point,
// producing both force and torque.
func (b *Body) AddWorldForceAt(force, point mgl32.Vec3) {

	b.state.ForceSum = b.state.ForceSum.Add(force)
	r := point.Sub(b.state.Position)
	b.state.TorqueSum = b.state.TorqueSum.Add(r.Cross(force))
}

// IntegrateVelocities advances the velocities one step of semi-implicit
// Euler: the accumulated forces become accelerations and the velocities
// absorb them scaled by the per-second drag factors. The position and
// orientation are advanced separately, once per tick, after the
// constraint solver has corrected the velocities. The accumulators are
// kept for the solver and replaced on the next force application.
func (b *Body) IntegrateVelocities(dt float32) {

	b.state.LinearAcceleration = b.state.ForceSum.Mul(b.properties.InvMass)
	b.state.AngularAcceleration = b.worldInvInertia.Mul3x1(b.state.TorqueSum)

	linDrag := pow32(b.properties.LinearDrag, dt)
	angDrag := pow32(b.properties.AngularDrag, dt)
	b.state.LinearVelocity = b.state.LinearVelocity.
		Add(b.state.LinearAcceleration.Mul(dt)).Mul(linDrag)
	b.state.AngularVelocity = b.state.AngularVelocity.
		Add(b.state.AngularAcceleration.Mul(dt)).Mul(angDrag)

	b.SetStatus(StatusIntegrated, true)
}

// IntegrateTransforms advances the position and orientation of the body
// from its current velocities and rebuilds the derived matrices.
func (b *Body) IntegrateTransforms(dt float32) {

	b.state.Position = b.state.Position.Add(b.state.LinearVelocity.Mul(dt))

	w := b.state.AngularVelocity
	spin := mgl32.Quat{W: 0, V: w}.Mul(b.state.Orientation).Scale(0.5 * dt)
	b.state.Orientation = b.state.Orientation.Add(spin)
	b.normalizeOrientation()

	b.synchronize()
}

// UpdateMotion folds the current kinetic measure into the motion metric
// and puts the body to sleep when it stays below the sleep threshold.
// The world motion bias controls the exponential decay window. A zero or
// negative step leaves the metric untouched.
func (b *Body) UpdateMotion(dt, motionBias float32) {

	if dt <= 0 || b.Status(StatusSleeping) {
		return
	}

	current := b.state.LinearVelocity.Dot(b.state.LinearVelocity) +
		b.state.AngularVelocity.Dot(b.state.AngularVelocity)
	bias := pow32(motionBias, dt)
	motion := bias*b.state.Motion + (1-bias)*current

	if limit := 10 * b.properties.SleepMotion; motion > limit {
		motion = limit
	}
	b.state.Motion = motion

	if motion < b.properties.SleepMotion {
		b.SetStatus(StatusSleeping, true)
		b.state.LinearVelocity = mgl32.Vec3{}
		b.state.AngularVelocity = mgl32.Vec3{}
	}
}

// ApplyVelocityCorrection replaces the body velocities with the solved
// ones, performs the tick's position and orientation integration with
// them and flags the body as solved and awake.
func (b *Body) ApplyVelocityCorrection(linear, angular mgl32.Vec3, dt float32) {

	b.state.LinearVelocity = linear
	b.state.AngularVelocity = angular
	b.IntegrateTransforms(dt)
	b.SetStatus(StatusConstraintsSolved, true)
	b.SetStatus(StatusSleeping, false)
}

// TransformMatrix returns the world transform of the body, kept in sync
// with its position and orientation.
func (b *Body) TransformMatrix() mgl32.Mat4 {

	return b.transformMatrix
}

// WorldInvInertia returns the inverse inertia tensor in world space:
// R * InvInertia * R^T.
func (b *Body) WorldInvInertia() mgl32.Mat3 {

	return b.worldInvInertia
}

// synchronize rebuilds the transform matrix and the world space inverse
// inertia tensor from the position and orientation.
func (b *Body) synchronize() {

	rotation := b.state.Orientation.Mat4()
	translation := mgl32.Translate3D(
		b.state.Position.X(), b.state.Position.Y(), b.state.Position.Z(),
	)
	b.transformMatrix = translation.Mul4(rotation)

	r := rotation.Mat3()
	b.worldInvInertia = r.Mul3(b.properties.InvInertia).Mul3(r.Transpose())
}

// normalizeOrientation renormalizes the orientation quaternion, falling
// back to the identity when it degenerates.
func (b *Body) normalizeOrientation() {

	if b.state.Orientation.Len() < 1e-6 {
		b.state.Orientation = mgl32.QuatIdent()
		return
	}
	b.state.Orientation = b.state.Orientation.Normalize()
}

func pow32(base, exp float32) float32 {

	return float32(math.Pow(float64(base), float64(exp)))
}
