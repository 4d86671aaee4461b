// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package physics

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/tachyon3d/engine/collision"
	"github.com/tachyon3d/engine/physics/constraint"
	"github.com/tachyon3d/engine/physics/object"
	"github.com/tachyon3d/engine/physics/solver"
	"github.com/tachyon3d/engine/util/logger"
)

// Package logger
var log = logger.New("PHYSICS", logger.Default)

// CollisionListener receives the manifolds that were updated and are
// intersecting at the end of a tick.
type CollisionListener func(manifold *collision.Manifold)

// contactBinding is the triple of solver constraints backing one
// persistent contact of a manifold.
type contactBinding struct {
	normal   *constraint.NormalContact
	friction [2]*constraint.FrictionContact
}

// colliderEntry tracks a collider registered in the world and the body
// that owns it.
type colliderEntry struct {
	collider collision.ICollider
	body     *object.Body
}

// World is the top level rigid body world. One Update call runs a full
// simulation tick: force generators populate the body accumulators, the
// integrator advances the velocities and positions, colliders follow
// their owner bodies through the collision pipeline, the persistent
// contacts become solver constraints and the sleep logic decays the
// per-body motion metric.
type World struct {
	properties WorldProperties

	bodies  []*object.Body
	bodyIDs map[uuid.UUID]*object.Body

	colliders   map[uuid.UUID]*colliderEntry
	bodyByCol   map[collision.ICollider]*object.Body
	staticByCol map[collision.ICollider]*object.Body

	collisionWorld *collision.World
	manager        *solver.Manager
	constraintIDs  map[uuid.UUID]constraint.IConstraint

	contactBindings map[*collision.Manifold][]contactBinding
	listeners       []CollisionListener
}

// NewWorld creates and returns a pointer to a new World with the given
// properties. Zero valued properties fall back to their defaults.
func NewWorld(properties WorldProperties) *World {

	p := properties.withDefaults()

	w := new(World)
	w.properties = p
	w.bodyIDs = make(map[uuid.UUID]*object.Body)
	w.colliders = make(map[uuid.UUID]*colliderEntry)
	w.bodyByCol = make(map[collision.ICollider]*object.Body)
	w.staticByCol = make(map[collision.ICollider]*object.Body)
	w.constraintIDs = make(map[uuid.UUID]constraint.IConstraint)
	w.contactBindings = make(map[*collision.Manifold][]contactBinding)

	w.collisionWorld = collision.NewWorld(collision.Config{
		MaxManifolds:      p.MaxManifolds,
		CoarseEpsilon:     p.CoarseEpsilon,
		MinFDifference:    p.MinFDifference,
		ContactPrecision:  p.ContactPrecision,
		ContactSeparation: p.ContactSeparation,
		RaycastPrecision:  p.RaycastPrecision,
		MaxEPAIterations:  p.MaxEPAIterations,
		MaxRayIterations:  p.MaxRayIterations,
	})
	w.manager = solver.NewManager(p.MaxSolverIterations)
	return w
}

// Properties returns the world properties.
func (w *World) Properties() WorldProperties {

	return w.properties
}

// ConstraintManager returns the constraint solver of the world.
func (w *World) ConstraintManager() *solver.Manager {

	return w.manager
}

// CollisionWorld returns the collision world.
func (w *World) CollisionWorld() *collision.World {

	return w.collisionWorld
}

// AddBody creates a rigid body with the given properties and initial
// state, adds it to the world and returns its id.
func (w *World) AddBody(properties object.Properties, state object.State) uuid.UUID {

	if properties.SleepMotion == 0 {
		properties.SleepMotion = w.properties.SleepEpsilon
	}
	body := object.NewBody(properties, state)
	return w.AddRigidBody(body)
}

// AddRigidBody adds an existing rigid body to the world and returns its
// id. Adding the same body twice returns the existing id.
func (w *World) AddRigidBody(body *object.Body) uuid.UUID {

	for id, existing := range w.bodyIDs {
		if existing == body {
			return id
		}
	}
	id := uuid.New()
	w.bodyIDs[id] = body
	w.bodies = append(w.bodies, body)
	return id
}

// RemoveBody removes the body with the given id together with its
// constraints and the collider links that reference it. It returns true
// if found.
func (w *World) RemoveBody(id uuid.UUID) bool {

	body, ok := w.bodyIDs[id]
	if !ok {
		return false
	}
	delete(w.bodyIDs, id)
	for pos, current := range w.bodies {
		if current == body {
			w.bodies = append(w.bodies[:pos], w.bodies[pos+1:]...)
			break
		}
	}
	w.manager.RemoveBody(body)
	for colID, entry := range w.colliders {
		if entry.body == body {
			w.RemoveCollider(colID)
		}
	}
	return true
}

// Body returns the body with the given id, or nil.
func (w *World) Body(id uuid.UUID) *object.Body {

	return w.bodyIDs[id]
}

// GetState returns the state of the body with the given id.
func (w *World) GetState(id uuid.UUID) (object.State, bool) {

	body, ok := w.bodyIDs[id]
	if !ok {
		return object.State{}, false
	}
	return body.State(), true
}

// SetState replaces the state of the body with the given id, waking it
// up and marking it as updated by the user.
func (w *World) SetState(id uuid.UUID, state object.State) bool {

	body, ok := w.bodyIDs[id]
	if !ok {
		return false
	}
	body.SetState(state)
	return true
}

// AddForce attaches a force generator to the body with the given id.
func (w *World) AddForce(id uuid.UUID, force object.Force) bool {

	body, ok := w.bodyIDs[id]
	if !ok {
		return false
	}
	body.AddForce(force)
	return true
}

// AddCollider adds the given collider to the world, owned by the body
// with the given id, and returns the collider id. A zero body id
// registers the collider as static: contacts against it anchor to an
// internal infinite mass body.
func (w *World) AddCollider(bodyID uuid.UUID, collider collision.ICollider) uuid.UUID {

	var body *object.Body
	if bodyID != (uuid.UUID{}) {
		body = w.bodyIDs[bodyID]
	}

	id := uuid.New()
	w.colliders[id] = &colliderEntry{collider: collider, body: body}
	if body != nil {
		w.bodyByCol[collider] = body
		collider.SetTransform(body.TransformMatrix())
	} else {
		// Static anchors never integrate and start asleep, so they do
		// not keep their contact constraints active on their own
		static := object.NewBody(object.NewStaticProperties(), object.State{})
		static.SetStatus(object.StatusUpdatedByUser, false)
		static.SetStatus(object.StatusSleeping, true)
		w.staticByCol[collider] = static
	}
	w.collisionWorld.AddCollider(collider)
	return id
}

// RemoveCollider removes the collider with the given id from the world.
// It returns true if found.
func (w *World) RemoveCollider(id uuid.UUID) bool {

	entry, ok := w.colliders[id]
	if !ok {
		return false
	}
	delete(w.colliders, id)
	delete(w.bodyByCol, entry.collider)
	delete(w.staticByCol, entry.collider)
	return w.collisionWorld.RemoveCollider(entry.collider)
}

// SetColliderTransform sets the world transform of the collider with the
// given id. Colliders owned by a body follow it again on the next tick.
func (w *World) SetColliderTransform(id uuid.UUID, transform mgl32.Mat4) bool {

	entry, ok := w.colliders[id]
	if !ok {
		return false
	}
	entry.collider.SetTransform(transform)
	return true
}

// AddConstraint adds a user constraint to the solver and returns its id.
func (w *World) AddConstraint(c constraint.IConstraint) uuid.UUID {

	id := uuid.New()
	w.constraintIDs[id] = c
	w.manager.AddConstraint(c)
	return id
}

// RemoveConstraint removes the user constraint with the given id.
// It returns true if found.
func (w *World) RemoveConstraint(id uuid.UUID) bool {

	c, ok := w.constraintIDs[id]
	if !ok {
		return false
	}
	delete(w.constraintIDs, id)
	return w.manager.RemoveConstraint(c)
}

// ProcessCollisionManifolds calls the given callback for each active
// collision manifold of the last tick.
func (w *World) ProcessCollisionManifolds(callback func(manifold *collision.Manifold)) {

	w.collisionWorld.ProcessCollisionManifolds(callback)
}

// ProcessRayCast checks which colliders intersect the given ray and
// calls the callback for each of them.
func (w *World) ProcessRayCast(origin, direction mgl32.Vec3, callback func(collider collision.ICollider, rayCast collision.RayCast)) {

	w.collisionWorld.ProcessRayCast(origin, direction, callback)
}

// AddCollisionListener registers a callback invoked at the end of each
// tick for every manifold that is intersecting and was updated.
func (w *World) AddCollisionListener(listener CollisionListener) {

	w.listeners = append(w.listeners, listener)
}

// colliderOwner returns the dynamic or static body anchoring the given
// collider.
func (w *World) colliderOwner(collider collision.ICollider) *object.Body {

	if body, ok := w.bodyByCol[collider]; ok {
		return body
	}
	return w.staticByCol[collider]
}

// Update advances the simulation one tick of the given duration.
func (w *World) Update(dt float32) {

	// Reset the per-tick status bits
	for _, body := range w.bodies {
		body.SetStatus(object.StatusIntegrated, false)
		body.SetStatus(object.StatusConstraintsSolved, false)
		body.SetStatus(object.StatusUpdatedByUser, false)
	}

	// Apply the force generators
	for _, body := range w.bodies {
		if !body.Status(object.StatusSleeping) {
			body.ApplyForces()
		}
	}

	// Integrate the velocities of the non-sleeping bodies
	for _, body := range w.bodies {
		if !body.Status(object.StatusSleeping) {
			body.IntegrateVelocities(dt)
		}
	}

	// Colliders follow their owner bodies
	for _, entry := range w.colliders {
		if entry.body == nil || entry.body.Status(object.StatusSleeping) {
			continue
		}
		entry.collider.SetTransform(entry.body.TransformMatrix())
	}

	// Collision pipeline
	w.collisionWorld.Update()

	// Translate the persistent contacts into solver constraints
	w.updateContactConstraints()

	// Solve all constraints. The solver performs the position and
	// orientation integration for every body it corrects.
	w.manager.Update(dt)

	// Integrate the positions of the bodies the solver did not touch
	for _, body := range w.bodies {
		if body.Status(object.StatusIntegrated) &&
			!body.Status(object.StatusConstraintsSolved) {
			body.IntegrateTransforms(dt)
		}
	}

	// Sleep update
	for _, body := range w.bodies {
		body.UpdateMotion(dt, w.properties.MotionBias)
	}

	// Publish the collision events
	w.collisionWorld.ProcessCollisionManifolds(func(manifold *collision.Manifold) {
		if manifold.Intersecting && manifold.Updated {
			for _, listener := range w.listeners {
				listener(manifold)
			}
		}
	})
}

// updateContactConstraints synchronizes the solver constraints with the
// current manifold contacts: one normal and two friction constraints per
// contact, reused across ticks while the contact persists so the solved
// impulses warm-start the next solve.
func (w *World) updateContactConstraints() {

	seen := make(map[*collision.Manifold]bool)

	w.collisionWorld.ProcessCollisionManifolds(func(manifold *collision.Manifold) {
		seen[manifold] = true

		body1 := w.colliderOwner(manifold.Colliders[0])
		body2 := w.colliderOwner(manifold.Colliders[1])
		if body1 == nil || body2 == nil || body1 == body2 {
			return
		}

		bindings := w.contactBindings[manifold]

		// Grow or shrink the bindings to the current contact count
		for len(bindings) < len(manifold.Contacts) {
			normal := constraint.NewNormalContact(
				[2]*object.Body{body1, body2},
				w.properties.ContactBeta, w.properties.ContactSlop,
			)
			binding := contactBinding{normal: normal}
			for i := 0; i < 2; i++ {
				binding.friction[i] = constraint.NewFrictionContact(
					normal, w.properties.FrictionCoefficient,
				)
				w.manager.AddConstraint(binding.friction[i])
			}
			w.manager.AddConstraint(normal)
			bindings = append(bindings, binding)
		}
		for len(bindings) > len(manifold.Contacts) {
			w.removeBinding(bindings[len(bindings)-1])
			bindings = bindings[:len(bindings)-1]
		}

		// Refresh the constraint data from the current contacts
		for i, contact := range manifold.Contacts {
			point := contact.World[0].Add(contact.World[1]).Mul(0.5)
			bindings[i].normal.SetContactData(point, contact.Normal, contact.Penetration)
			t1, t2 := constraint.ContactTangents(contact.Normal)
			bindings[i].friction[0].SetTangent(t1)
			bindings[i].friction[1].SetTangent(t2)
		}

		w.contactBindings[manifold] = bindings
	})

	// Drop the bindings of the manifolds destroyed this tick
	for manifold, bindings := range w.contactBindings {
		if seen[manifold] {
			continue
		}
		for _, binding := range bindings {
			w.removeBinding(binding)
		}
		delete(w.contactBindings, manifold)
	}

	if total := w.manager.NumConstraints(); total > 0 {
		log.Debug("solving %d constraints", total)
	}
}

// removeBinding removes the constraint triple of one contact from the
// solver.
func (w *World) removeBinding(binding contactBinding) {

	w.manager.RemoveConstraint(binding.normal)
	w.manager.RemoveConstraint(binding.friction[0])
	w.manager.RemoveConstraint(binding.friction[1])
}
