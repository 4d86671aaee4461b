// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package solver implements the iterative impulse solver: projected
// Gauss-Seidel on J M^-1 J^T lambda = eta over the constraint rows, with
// an incremental M^-1 J^T lambda cache that avoids materializing the
// Schur complement matrix.
package solver

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/tachyon3d/engine/physics/constraint"
	"github.com/tachyon3d/engine/physics/object"
)

// Manager owns the active constraints and solves them each tick with a
// fixed number of projected Gauss-Seidel iterations. Solved impulses are
// stored back into the constraints, which warm-starts the next tick.
type Manager struct {
	maxIterations int
	constraints   []constraint.IConstraint
	pendingWake   map[*object.Body]bool

	// Per-tick state, rebuilt by Update
	bodies      []*object.Body
	bodyIndex   map[*object.Body]int
	jacobian    [][12]float32
	bias        []float32
	lambda      []float32
	pairs       [][2]int
	invMass     []float32
	invInertia  []mgl32.Mat3
	velocity    []mgl32.Vec3 // 2 entries per body: linear, angular
	forceExt    []mgl32.Vec3 // 2 entries per body: force, torque
	shouldSolve []bool
}

// NewManager creates and returns a pointer to a new constraint Manager
// with the given Gauss-Seidel iteration count.
func NewManager(maxIterations int) *Manager {

	m := new(Manager)
	m.maxIterations = maxIterations
	m.pendingWake = make(map[*object.Body]bool)
	return m
}

// NumConstraints returns the number of active constraints.
func (m *Manager) NumConstraints() int {

	return len(m.constraints)
}

// AddConstraint adds a constraint to the manager. Its bodies take part
// in the next solve even if they are sleeping.
func (m *Manager) AddConstraint(c constraint.IConstraint) {

	if c == nil {
		return
	}
	m.constraints = append(m.constraints, c)
	for _, body := range c.RigidBodies() {
		m.pendingWake[body] = true
	}
}

// RemoveConstraint removes the given constraint from the manager.
// It returns true if found.
func (m *Manager) RemoveConstraint(c constraint.IConstraint) bool {

	for pos, current := range m.constraints {
		if current == c {
			m.constraints = append(m.constraints[:pos], m.constraints[pos+1:]...)
			for _, body := range c.RigidBodies() {
				m.pendingWake[body] = true
			}
			return true
		}
	}
	return false
}

// RemoveBody removes every constraint that references the given body.
func (m *Manager) RemoveBody(body *object.Body) {

	kept := m.constraints[:0]
	for _, c := range m.constraints {
		bodies := c.RigidBodies()
		if bodies[0] == body || bodies[1] == body {
			m.pendingWake[bodies[0]] = true
			m.pendingWake[bodies[1]] = true
			continue
		}
		kept = append(kept, c)
	}
	m.constraints = kept
	delete(m.pendingWake, body)
}

// Update refreshes the constraint and body matrices, solves the lambda
// values with projected Gauss-Seidel and applies the resulting velocity
// corrections to the bodies.
func (m *Manager) Update(dt float32) {

	if len(m.constraints) == 0 || dt <= 0 {
		m.pendingWake = make(map[*object.Body]bool)
		return
	}

	m.refresh()
	m.solve(dt)
	m.applyCorrections(dt)
}

// refresh rebuilds the per-constraint and per-body matrices from the
// constraint objects and the current body state.
func (m *Manager) refresh() {

	n := len(m.constraints)
	m.jacobian = make([][12]float32, n)
	m.bias = make([]float32, n)
	m.lambda = make([]float32, n)
	m.pairs = make([][2]int, n)

	m.bodies = m.bodies[:0]
	m.bodyIndex = make(map[*object.Body]int)

	for i, c := range m.constraints {
		m.jacobian[i] = c.Jacobian()
		m.bias[i] = c.Bias()
		m.lambda[i] = c.Lambda()
		for j, body := range c.RigidBodies() {
			idx, ok := m.bodyIndex[body]
			if !ok {
				idx = len(m.bodies)
				m.bodies = append(m.bodies, body)
				m.bodyIndex[body] = idx
			}
			m.pairs[i][j] = idx
		}
	}

	nb := len(m.bodies)
	m.invMass = make([]float32, nb)
	m.invInertia = make([]mgl32.Mat3, nb)
	m.velocity = make([]mgl32.Vec3, 2*nb)
	m.forceExt = make([]mgl32.Vec3, 2*nb)
	m.shouldSolve = make([]bool, nb)

	for i, body := range m.bodies {
		state := body.State()
		m.invMass[i] = body.Properties().InvMass
		m.invInertia[i] = body.WorldInvInertia()
		m.velocity[2*i] = state.LinearVelocity
		m.velocity[2*i+1] = state.AngularVelocity
		m.forceExt[2*i] = state.ForceSum
		m.forceExt[2*i+1] = state.TorqueSum
		m.shouldSolve[i] = m.pendingWake[body] ||
			body.Status(object.StatusIntegrated) ||
			!body.Status(object.StatusSleeping)
	}
	m.pendingWake = make(map[*object.Body]bool)
}

// invMassMul multiplies the 3-vector block k (0 linear, 1 angular) of
// the given body by its inverse mass block.
func (m *Manager) invMassMul(iBody, k int, v mgl32.Vec3) mgl32.Vec3 {

	if k == 0 {
		return v.Mul(m.invMass[iBody])
	}
	return m.invInertia[iBody].Mul3x1(v)
}

// solve runs the fixed-iteration projected Gauss-Seidel loop.
func (m *Manager) solve(dt float32) {

	n := len(m.constraints)
	nb := len(m.bodies)

	// M^-1 J^T per constraint
	invMassJacobian := make([][12]float32, n)
	for i := range m.constraints {
		for j := 0; j < 2; j++ {
			iBody := m.pairs[i][j]
			for k := 0; k < 2; k++ {
				block := mgl32.Vec3{
					m.jacobian[i][6*j+3*k],
					m.jacobian[i][6*j+3*k+1],
					m.jacobian[i][6*j+3*k+2],
				}
				result := m.invMassMul(iBody, k, block)
				invMassJacobian[i][6*j+3*k] = result.X()
				invMassJacobian[i][6*j+3*k+1] = result.Y()
				invMassJacobian[i][6*j+3*k+2] = result.Z()
			}
		}
	}

	// diag(J M^-1 J^T)
	diagonal := make([]float32, n)
	for i := 0; i < n; i++ {
		var sum float32
		for k := 0; k < 12; k++ {
			sum += m.jacobian[i][k] * invMassJacobian[i][k]
		}
		if sum == 0 {
			sum = 1
		}
		diagonal[i] = sum
	}

	// eta = bias/dt - J * (v/dt + M^-1 * fExt)
	eta := make([]float32, n)
	for i := 0; i < n; i++ {
		var extAcceleration [12]float32
		for j := 0; j < 2; j++ {
			iBody := m.pairs[i][j]
			for k := 0; k < 2; k++ {
				acc := m.velocity[2*iBody+k].Mul(1 / dt).
					Add(m.invMassMul(iBody, k, m.forceExt[2*iBody+k]))
				extAcceleration[6*j+3*k] = acc.X()
				extAcceleration[6*j+3*k+1] = acc.Y()
				extAcceleration[6*j+3*k+2] = acc.Z()
			}
		}
		eta[i] = m.bias[i] / dt
		for k := 0; k < 12; k++ {
			eta[i] -= m.jacobian[i][k] * extAcceleration[k]
		}
	}

	// M^-1 J^T lambda accumulated per body, warm-started with the
	// impulses of the previous tick
	invMJLambda := make([]float32, 6*nb)
	for i := 0; i < n; i++ {
		iBody1, iBody2 := m.pairs[i][0], m.pairs[i][1]
		for k := 0; k < 6; k++ {
			invMJLambda[6*iBody1+k] += invMassJacobian[i][k] * m.lambda[i]
			invMJLambda[6*iBody2+k] += invMassJacobian[i][6+k] * m.lambda[i]
		}
	}

	for iteration := 0; iteration < m.maxIterations; iteration++ {
		for i := 0; i < n; i++ {
			iBody1, iBody2 := m.pairs[i][0], m.pairs[i][1]
			if !m.shouldSolve[iBody1] && !m.shouldSolve[iBody2] {
				continue
			}
			m.shouldSolve[iBody1] = true
			m.shouldSolve[iBody2] = true

			// Current J M^-1 J^T lambda for this row
			var jInvMJLambda float32
			for k := 0; k < 6; k++ {
				jInvMJLambda += m.jacobian[i][k] * invMJLambda[6*iBody1+k]
				jInvMJLambda += m.jacobian[i][6+k] * invMJLambda[6*iBody2+k]
			}

			deltaLambda := (eta[i] - jInvMJLambda) / diagonal[i]

			bounds := m.constraints[i].Bounds()
			oldLambda := m.lambda[i]
			newLambda := clamp(oldLambda+deltaLambda, bounds.Min, bounds.Max)
			m.lambda[i] = newLambda
			m.constraints[i].SetLambda(newLambda)

			// Fold the clamped change into the cached products
			deltaLambda = newLambda - oldLambda
			for k := 0; k < 6; k++ {
				invMJLambda[6*iBody1+k] += deltaLambda * invMassJacobian[i][k]
				invMJLambda[6*iBody2+k] += deltaLambda * invMassJacobian[i][6+k]
			}
		}
	}
}

// applyCorrections updates the velocities of the solved bodies with the
// final impulses and re-integrates their transforms.
func (m *Manager) applyCorrections(dt float32) {

	nb := len(m.bodies)
	jLambda := make([]float32, 6*nb)
	for i := range m.constraints {
		iBody1, iBody2 := m.pairs[i][0], m.pairs[i][1]
		for k := 0; k < 6; k++ {
			jLambda[6*iBody1+k] += m.lambda[i] * m.jacobian[i][k]
			jLambda[6*iBody2+k] += m.lambda[i] * m.jacobian[i][6+k]
		}
	}

	for i, body := range m.bodies {
		if !m.shouldSolve[i] || m.invMass[i] == 0 {
			continue
		}

		var corrected [2]mgl32.Vec3
		for k := 0; k < 2; k++ {
			impulse := mgl32.Vec3{
				jLambda[6*i+3*k],
				jLambda[6*i+3*k+1],
				jLambda[6*i+3*k+2],
			}
			total := impulse.Add(m.forceExt[2*i+k])
			corrected[k] = m.velocity[2*i+k].Add(m.invMassMul(i, k, total).Mul(dt))
		}
		body.ApplyVelocityCorrection(corrected[0], corrected[1], dt)
	}
}

func clamp(v, min, max float32) float32 {

	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
